package vaultapi

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tos-network/tosvault/common"
)

// SendTxArgs is the body of a transaction submission.
type SendTxArgs struct {
	Raw hexutil.Bytes `json:"raw"`
}

// StatusResult describes the serving ledger.
type StatusResult struct {
	ChainID  uint64 `json:"chainId"`
	Sequence uint64 `json:"sequence"`
	Version  string `json:"version"`
}

// AccountResult is the public view of one ledger account. Missing accounts
// are reported with Exists unset and zero values.
type AccountResult struct {
	Address common.Address `json:"address"`
	Exists  bool           `json:"exists"`
	Nonce   uint64         `json:"nonce"`
	Balance uint64         `json:"balance"`
	Owner   common.Address `json:"owner"`
	Data    hexutil.Bytes  `json:"data,omitempty"`
}

// MintResult describes a token type.
type MintResult struct {
	Address   common.Address `json:"address"`
	Authority common.Address `json:"authority"`
	Supply    uint64         `json:"supply"`
	Decimals  uint8          `json:"decimals"`
}

// TokenBalanceResult is an owner's associated token balance for a mint.
type TokenBalanceResult struct {
	Mint    common.Address `json:"mint"`
	Owner   common.Address `json:"owner"`
	Account common.Address `json:"account"`
	Exists  bool           `json:"exists"`
	Amount  uint64         `json:"amount"`
}

// RentResult reports the live rent parameters and the reserve for a data
// length (0 unless requested).
type RentResult struct {
	LamportsPerByteYear uint64  `json:"lamportsPerByteYear"`
	ExemptionThreshold  float64 `json:"exemptionThreshold"`
	DataLength          uint64  `json:"dataLength"`
	MinimumBalance      uint64  `json:"minimumBalance"`
}

// DeriveResult is a derived program address.
type DeriveResult struct {
	Address common.Address `json:"address"`
	Nonce   uint8          `json:"nonce"`
	Program common.Address `json:"program"`
}

// ErrorResult is the body of every non-2xx response.
type ErrorResult struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}
