// Package address normalizes account addresses and derives module accounts
package address

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const modulePrefix = "huski/module/"

// Valid hex account address
func Valid(s string) bool {
	return common.IsHexAddress(strings.TrimSpace(s))
}

// Normalize checksum hex addresses, other names are trimmed as is
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if common.IsHexAddress(s) {
		return common.HexToAddress(s).Hex()
	}

	return s
}

// Module derived address of an in-ledger module account such as a vault
func Module(name string) string {
	hash := crypto.Keccak256([]byte(modulePrefix + name))
	return common.BytesToAddress(hash[12:]).Hex()
}
