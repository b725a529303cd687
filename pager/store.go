package pager

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zephyrtronium/bourse/deque"
	"github.com/zephyrtronium/bourse/metrics"
	"github.com/zephyrtronium/bourse/syncmap"
)

// Lifetime is the default time a view stays interactive. It matches the
// lifetime of a Discord interaction token.
const Lifetime = 15 * time.Minute

// Store holds live views by the platform key of the message displaying them.
// Views expire in the order they were stored. The store owns the files in
// every stored view's pages and releases them on expiry.
type Store struct {
	ttl   time.Duration
	views *syncmap.Map[string, entry]
	obs   metrics.Observer

	mu    sync.Mutex
	queue deque.Deque[expiry]

	// now is the clock. Tests replace it.
	now func() time.Time
}

type entry struct {
	view    *View
	expires time.Time
}

type expiry struct {
	key  string
	view *View
	at   time.Time
}

// NewStore creates a store whose views live for ttl.
// If ttl is not positive, Lifetime is used. obs may be nil.
func NewStore(ttl time.Duration, obs metrics.Observer) *Store {
	if ttl <= 0 {
		ttl = Lifetime
	}
	return &Store{
		ttl:   ttl,
		views: syncmap.New[string, entry](),
		obs:   obs,
		now:   time.Now,
	}
}

// Put stores a view under key. If a different view is already stored under
// the same key, it is replaced and released.
func (s *Store) Put(key string, v *View) {
	now := s.now()
	at := now.Add(s.ttl)
	s.mu.Lock()
	s.queue = s.queue.Append(expiry{key: key, view: v, at: at})
	old, replaced := s.views.Load(key)
	s.views.Store(key, entry{view: v, expires: at})
	s.mu.Unlock()
	switch {
	case !replaced:
		s.observe(1)
	case old.view != v:
		release(old.view)
	}
	s.Sweep()
}

// Get returns the live view stored under key.
func (s *Store) Get(key string) (*View, bool) {
	e, ok := s.views.Load(key)
	if !ok || !s.now().Before(e.expires) {
		return nil, false
	}
	return e.view, true
}

// Delete removes and releases the view stored under key, if any.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	e, ok := s.views.LoadAndDelete(key)
	s.mu.Unlock()
	if !ok {
		return
	}
	release(e.view)
	s.observe(-1)
}

// Len returns the number of stored views, including expired ones that have
// not been swept.
func (s *Store) Len() int {
	return s.views.Len()
}

// Sweep removes every expired view and reports how many it removed.
func (s *Store) Sweep() int {
	now := s.now()
	var gone []*View
	s.mu.Lock()
	s.queue = s.queue.DropFrontWhile(func(x expiry) bool {
		if now.Before(x.at) {
			return false
		}
		e, ok := s.views.Load(x.key)
		if ok && e.view == x.view && !now.Before(e.expires) {
			s.views.Delete(x.key)
			gone = append(gone, x.view)
		}
		// Otherwise the key was deleted or stored again since this expiry
		// was queued.
		return true
	})
	s.mu.Unlock()
	for _, v := range gone {
		release(v)
		s.observe(-1)
	}
	return len(gone)
}

// Run sweeps the store periodically until ctx is canceled.
func (s *Store) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				slog.DebugContext(ctx, "expired views", slog.Int("count", n))
			}
		}
	}
}

func (s *Store) observe(d float64) {
	if s.obs != nil {
		s.obs.Observe(d)
	}
}

func release(v *View) {
	if err := v.Release(); err != nil {
		slog.Warn("couldn't release view files", slog.Any("err", err))
	}
}
