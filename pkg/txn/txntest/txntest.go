// Package txntest builds executors on in-memory storage for engine tests
package txntest

import (
	"testing"

	"huski/pkg/txn"
	"huski/service/block"
	"huski/store/ledger"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// New executor backed by a memory leveldb and a manual clock at block
func New(t testing.TB, start int64) (*txn.Executor, *block.Manual) {
	t.Helper()

	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		t.Fatalf("open memory leveldb: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	clock := block.NewManual(start)
	return txn.New(ledger.NewLevelDB(db), clock), clock
}
