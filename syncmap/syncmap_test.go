package syncmap

import (
	"sync"
	"testing"
	"testing/quick"
)

func TestMapConcurrent(t *testing.T) {
	m := New[int, int]()
	const goroutines = 50
	const operations = 2000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := range goroutines {
		go func(base int) {
			defer wg.Done()
			for j := range operations {
				key := base + j
				m.Store(key, key*2)
				if v, ok := m.Load(key); !ok || v != key*2 {
					t.Errorf("wrong value for %d: want %d, got %d (%t)", key, key*2, v, ok)
				}
				if v, ok := m.LoadAndDelete(key); !ok || v != key*2 {
					t.Errorf("wrong deleted value for %d: want %d, got %d (%t)", key, key*2, v, ok)
				}
				if _, ok := m.Load(key); ok {
					t.Errorf("%d still exists after delete", key)
				}
			}
		}(i * operations)
	}
	for k, v := range m.All() {
		if v != k*2 {
			t.Errorf("wrong value during iteration for %d: want %d, got %d", k, k*2, v)
		}
	}
	wg.Wait()
	if m.Len() != 0 {
		t.Errorf("map not empty: %d elements", m.Len())
	}
}

func TestLoadOrStore(t *testing.T) {
	m := New[string, int]()
	v, loaded := m.LoadOrStore("bocchi", 1)
	if loaded || v != 1 {
		t.Errorf("wrong first result: want 1 false, got %d %t", v, loaded)
	}
	v, loaded = m.LoadOrStore("bocchi", 2)
	if !loaded || v != 1 {
		t.Errorf("wrong second result: want 1 true, got %d %t", v, loaded)
	}
}

func TestDeleteFunc(t *testing.T) {
	m := New[int, int]()
	for i := range 10 {
		m.Store(i, i)
	}
	n := m.DeleteFunc(func(k, v int) bool { return k%2 == 0 })
	if n != 5 {
		t.Errorf("wrong number deleted: want 5, got %d", n)
	}
	for k := range m.All() {
		if k%2 == 0 {
			t.Errorf("%d should have been deleted", k)
		}
	}
}

func TestAllEarlyExit(t *testing.T) {
	m := New[string, int]()
	m.Store("bocchi", 1)
	m.Store("ryo", 2)
	m.Store("nijika", 3)
	count := 0
	for range m.All() {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("wrong count: want 2, got %d", count)
	}
	// The map must be unlocked after breaking.
	m.Store("kita", 4)
	if m.Len() != 4 {
		t.Errorf("wrong length: want 4, got %d", m.Len())
	}
}

func TestAllQuick(t *testing.T) {
	f := func(entries map[string]int) bool {
		m := New[string, int]()
		for k, v := range entries {
			m.Store(k, v)
		}
		seen := make(map[string]int)
		for k, v := range m.All() {
			seen[k] = v
		}
		if len(seen) != len(entries) {
			return false
		}
		for k, v := range entries {
			if seen[k] != v {
				return false
			}
		}
		return true
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
