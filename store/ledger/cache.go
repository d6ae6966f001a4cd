package ledger

import (
	"context"

	"huski/core"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// Cache read through lru cache of a ledger store
func Cache(store core.LedgerStore, size int) core.LedgerStore {
	if size <= 0 {
		size = 2048
	}

	return &cacheLedgerStore{
		LedgerStore: store,
		cache:       gcache.New(size).LRU().Build(),
		sf:          &singleflight.Group{},
	}
}

type cacheLedgerStore struct {
	core.LedgerStore
	cache gcache.Cache
	sf    *singleflight.Group
}

type cachedEntry struct {
	entry *core.LedgerEntry
	ok    bool
}

func (s *cacheLedgerStore) Write(ctx context.Context, entries []*core.LedgerEntry) error {
	if err := s.LedgerStore.Write(ctx, entries); err != nil {
		for _, entry := range entries {
			s.cache.Remove(entry.Key)
		}
		return err
	}

	for _, entry := range entries {
		s.cache.Set(entry.Key, cachedEntry{entry: entry, ok: true})
	}

	return nil
}

func (s *cacheLedgerStore) Get(ctx context.Context, key string) (*core.LedgerEntry, bool, error) {
	if v, err := s.cache.Get(key); err == nil {
		if c, ok := v.(cachedEntry); ok {
			return c.entry, c.ok, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		entry, ok, err := s.LedgerStore.Get(ctx, key)
		if err != nil {
			return nil, err
		}

		c := cachedEntry{entry: entry, ok: ok}
		s.cache.Set(key, c)
		return c, nil
	})
	if err != nil {
		return nil, false, err
	}

	c := v.(cachedEntry)
	return c.entry, c.ok, nil
}
