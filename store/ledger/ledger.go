package ledger

import (
	"context"

	"huski/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type ledgerStore struct {
	db *db.DB
}

// New new sql backed ledger store
func New(db *db.DB) core.LedgerStore {
	return &ledgerStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.LedgerEntry{})
		if err := tx.AutoMigrate(core.LedgerEntry{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *ledgerStore) Write(ctx context.Context, entries []*core.LedgerEntry) error {
	return s.db.Tx(func(tx *db.DB) error {
		for _, entry := range entries {
			if err := save(tx, entry); err != nil {
				return err
			}
		}

		return nil
	})
}

func save(tx *db.DB, entry *core.LedgerEntry) error {
	var existing core.LedgerEntry
	err := tx.Update().Where("ledger_key = ?", entry.Key).First(&existing).Error
	if store.IsErrNotFound(err) {
		return tx.Update().Create(&core.LedgerEntry{Key: entry.Key, Value: entry.Value}).Error
	} else if err != nil {
		return err
	}

	update := tx.Update().Model(core.LedgerEntry{}).
		Where("ledger_key = ? AND version = ?", entry.Key, existing.Version).
		Updates(map[string]interface{}{
			"value":   entry.Value,
			"version": gorm.Expr("version + ?", 1),
		})
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func (s *ledgerStore) Get(ctx context.Context, key string) (*core.LedgerEntry, bool, error) {
	var entry core.LedgerEntry
	err := s.db.View().Where("ledger_key = ?", key).First(&entry).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	return &entry, true, nil
}

func (s *ledgerStore) Scan(ctx context.Context, prefix string, fn func(entry *core.LedgerEntry) error) error {
	var entries []*core.LedgerEntry
	if err := s.db.View().Where("ledger_key LIKE ?", prefix+"%").Order("ledger_key").Find(&entries).Error; err != nil {
		return err
	}

	for _, entry := range entries {
		if err := fn(entry); err != nil {
			return err
		}
	}

	return nil
}
