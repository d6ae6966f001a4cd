package proposal

import (
	"huski/core"

	"github.com/shopspring/decimal"
)

// SetVaultParamsReq update vault params
type SetVaultParamsReq struct {
	Vault  string           `json:"vault"`
	Params core.VaultParams `json:"params"`
}

// SetWorkerReq update worker risk config
type SetWorkerReq struct {
	Vault  string          `json:"vault"`
	Worker string          `json:"worker"`
	Risk   core.WorkerRisk `json:"risk"`
}

// WithdrawReserveReq move reserve pool out of the vault
type WithdrawReserveReq struct {
	Vault  string          `json:"vault"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}
