// Package txn runs ledger operations one at a time with all-or-nothing
// effects across every engine that takes part in the call chain.
package txn

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"huski/core"

	"github.com/pkg/errors"
)

type ctxKey struct{}

// Executor serializes ledger operations and persists their effects in one batch
type Executor struct {
	mu     sync.Mutex
	store  core.LedgerStore
	blocks core.IBlockService
}

// New new executor
func New(store core.LedgerStore, blocks core.IBlockService) *Executor {
	return &Executor{
		store:  store,
		blocks: blocks,
	}
}

// Store underlying ledger store
func (e *Executor) Store() core.LedgerStore {
	return e.store
}

// Tx a running operation
type Tx struct {
	exec     *Executor
	undo     []func()
	staged   map[string]func() interface{}
	block    int64
	hasBlock bool
}

func from(ctx context.Context) *Tx {
	tx, _ := ctx.Value(ctxKey{}).(*Tx)
	return tx
}

// Run executes fn as one atomic operation. Calls made inside a running
// operation of the same executor join it; a failed nested call is rolled
// back to the point it started.
func (e *Executor) Run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if tx := from(ctx); tx != nil && tx.exec == e {
		return tx.savepoint(ctx, fn)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tx := &Tx{exec: e, staged: map[string]func() interface{}{}}
	ctx = context.WithValue(ctx, ctxKey{}, tx)

	defer func() {
		if r := recover(); r != nil {
			tx.rollback(0)
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		tx.rollback(0)
		return err
	}

	if err := tx.commit(ctx); err != nil {
		tx.rollback(0)
		return err
	}

	return nil
}

// View runs fn under the executor lock without recording effects
func (e *Executor) View(ctx context.Context, fn func(ctx context.Context) error) error {
	return e.Run(ctx, fn)
}

func (tx *Tx) savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	mark := len(tx.undo)
	if err := fn(ctx); err != nil {
		tx.rollback(mark)
		return err
	}

	return nil
}

func (tx *Tx) rollback(mark int) {
	for i := len(tx.undo) - 1; i >= mark; i-- {
		tx.undo[i]()
	}

	tx.undo = tx.undo[:mark]
}

func (tx *Tx) commit(ctx context.Context) error {
	if len(tx.staged) == 0 || tx.exec.store == nil {
		return nil
	}

	keys := make([]string, 0, len(tx.staged))
	for key := range tx.staged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]*core.LedgerEntry, 0, len(keys))
	for _, key := range keys {
		data, err := json.Marshal(tx.staged[key]())
		if err != nil {
			return errors.Wrapf(err, "marshal %s", key)
		}

		entries = append(entries, &core.LedgerEntry{Key: key, Value: data})
	}

	return tx.exec.store.Write(ctx, entries)
}

// OnRollback registers fn to undo an effect if the operation fails
func OnRollback(ctx context.Context, fn func()) {
	if tx := from(ctx); tx != nil {
		tx.undo = append(tx.undo, fn)
	}
}

// Stage marks key dirty, value is read when the operation commits
func Stage(ctx context.Context, key string, value func() interface{}) {
	if tx := from(ctx); tx != nil {
		tx.staged[key] = value
	}
}

// Block current block, fixed for the whole operation
func Block(ctx context.Context) (int64, error) {
	tx := from(ctx)
	if tx == nil {
		return 0, errors.New("txn: no running operation")
	}

	if !tx.hasBlock {
		if tx.exec.blocks == nil {
			return 0, errors.New("txn: no block service")
		}

		b, err := tx.exec.blocks.CurrentBlock(ctx)
		if err != nil {
			return 0, err
		}

		tx.block, tx.hasBlock = b, true
	}

	return tx.block, nil
}

// Load decodes the persisted value of key into v
func (e *Executor) Load(ctx context.Context, key string, v interface{}) (bool, error) {
	if e.store == nil {
		return false, nil
	}

	entry, ok, err := e.store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}

	if err := json.Unmarshal(entry.Value, v); err != nil {
		return false, errors.Wrapf(err, "unmarshal %s", key)
	}

	return true, nil
}

// Scan decodes every persisted value under prefix
func (e *Executor) Scan(ctx context.Context, prefix string, fn func(key string, data []byte) error) error {
	if e.store == nil {
		return nil
	}

	return e.store.Scan(ctx, prefix, func(entry *core.LedgerEntry) error {
		return fn(entry.Key, entry.Value)
	})
}
