package ledger

import (
	"context"

	"huski/core"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type levelStore struct {
	db *leveldb.DB
}

// OpenLevelDB open leveldb at path
func OpenLevelDB(path string) (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		BlockCacheCapacity: 16 * opt.MiB,
		WriteBuffer:        8 * opt.MiB,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb %s", path)
	}

	return db, nil
}

// NewLevelDB new leveldb backed ledger store
func NewLevelDB(db *leveldb.DB) core.LedgerStore {
	return &levelStore{db: db}
}

func (s *levelStore) Write(ctx context.Context, entries []*core.LedgerEntry) error {
	batch := new(leveldb.Batch)
	for _, e := range entries {
		batch.Put([]byte(e.Key), e.Value)
	}

	if err := s.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return errors.Wrap(err, "leveldb write")
	}

	return nil
}

func (s *levelStore) Get(ctx context.Context, key string) (*core.LedgerEntry, bool, error) {
	v, err := s.db.Get([]byte(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.Wrapf(err, "leveldb get %s", key)
	}

	return &core.LedgerEntry{Key: key, Value: v}, true, nil
}

func (s *levelStore) Scan(ctx context.Context, prefix string, fn func(entry *core.LedgerEntry) error) error {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	for iter.Next() {
		key := string(iter.Key())
		value := append([]byte(nil), iter.Value()...)
		if err := fn(&core.LedgerEntry{Key: key, Value: value}); err != nil {
			return err
		}
	}

	return errors.Wrap(iter.Error(), "leveldb scan")
}
