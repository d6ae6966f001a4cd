package token

import (
	"context"
	"sort"
	"sync"

	"huski/core"
)

// Bank registry of the token ledgers
type Bank struct {
	mu     sync.RWMutex
	tokens map[string]*Token
}

// NewBank new token bank
func NewBank(tokens ...*Token) *Bank {
	b := &Bank{tokens: map[string]*Token{}}
	for _, t := range tokens {
		b.Register(t)
	}

	return b
}

// Register add token, replaces a token with the same symbol
func (b *Bank) Register(t *Token) {
	b.mu.Lock()
	b.tokens[t.Symbol()] = t
	b.mu.Unlock()
}

// Find token ledger by symbol
func (b *Bank) Find(symbol string) (*Token, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.tokens[symbol]
	return t, ok
}

func (b *Bank) Token(ctx context.Context, symbol string) (core.IToken, error) {
	t, ok := b.Find(symbol)
	if !ok {
		return nil, core.ErrTokenNotFound
	}

	return t, nil
}

func (b *Bank) Tokens(ctx context.Context) ([]core.IToken, error) {
	b.mu.RLock()
	symbols := make([]string, 0, len(b.tokens))
	for symbol := range b.tokens {
		symbols = append(symbols, symbol)
	}
	b.mu.RUnlock()

	sort.Strings(symbols)
	tokens := make([]core.IToken, 0, len(symbols))
	for _, symbol := range symbols {
		t, _ := b.Find(symbol)
		tokens = append(tokens, t)
	}

	return tokens, nil
}

// Load restore every registered token
func (b *Bank) Load(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, t := range b.tokens {
		if err := t.Load(ctx); err != nil {
			return err
		}
	}

	return nil
}
