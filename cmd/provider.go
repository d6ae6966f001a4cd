package cmd

import (
	"time"

	"huski/core"
	"huski/pkg/txn"
	"huski/service/block"
	"huski/service/oracle"
	"huski/store/ledger"
	"huski/store/transaction"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

const ledgerCacheSize = 4096

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideTransactionStore(db *db.DB) core.TransactionStore {
	return transaction.New(db)
}

// provideLedgerStore engine state lives in leveldb unless app.storage is db
func provideLedgerStore(database *db.DB) (core.LedgerStore, func(), error) {
	if cfg.App.Storage == "db" {
		return ledger.Cache(ledger.New(database), ledgerCacheSize), func() {}, nil
	}

	ldb, err := ledger.OpenLevelDB(cfg.LevelDB.Path)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() { _ = ldb.Close() }
	return ledger.Cache(ledger.NewLevelDB(ldb), ledgerCacheSize), cleanup, nil
}

// ------------------service------------------------------------

func provideBlockService() core.IBlockService {
	return block.New(provideConfig())
}

func provideExecutor(store core.LedgerStore, blocks core.IBlockService) *txn.Executor {
	return txn.New(store, blocks)
}

func providePriceTickerService() core.IPriceTickerService {
	return oracle.NewTickerService(cfg.Oracle.EndPoint, 10*time.Second)
}
