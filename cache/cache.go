// Package cache stores upstream responses for a short time so that repeated
// commands don't repeat requests.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Cache is a TTL cache backed by badger.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// Open opens a cache at path with badger options given as a superflag
// string. If path is empty, the cache is in memory.
// Entries expire after ttl, rounded up to whole seconds.
func Open(path, flags string, ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts.FromSuperFlag(flags))
	if err != nil {
		return nil, fmt.Errorf("couldn't open cache: %w", err)
	}
	return New(db, ttl), nil
}

// New creates a cache using an existing DB.
func New(db *badger.DB, ttl time.Duration) *Cache {
	return &Cache{db: db, ttl: ttl}
}

// Get returns the value stored for key. The result is false if there is no
// unexpired entry.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	var r []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		r, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case err == nil:
		return r, true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("couldn't read cache: %w", err)
	}
}

// Set stores a value for key.
func (c *Cache) Set(key string, val []byte) error {
	e := badger.NewEntry([]byte(key), val).WithTTL(c.ttl)
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("couldn't write cache: %w", err)
	}
	return nil
}

// RunGC periodically collects expired entries until the context closes.
func (c *Cache) RunGC(ctx context.Context, every time.Duration) {
	if c.db.Opts().InMemory {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			// Collect until there's nothing left worth rewriting.
			for c.db.RunValueLogGC(0.5) == nil {
			}
		}
	}
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}
