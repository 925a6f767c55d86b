package types

import (
	"github.com/holiman/uint256"
	"github.com/tos-network/tosvault/common"
)

// StateAccount is the ledger consensus representation of an account.
// These objects are stored in the main account index.
type StateAccount struct {
	Nonce   uint64
	Balance *uint256.Int
	Owner   common.Address // program allowed to modify Data
	Data    []byte
}

// NewEmptyStateAccount constructs an empty state account.
func NewEmptyStateAccount() *StateAccount {
	return &StateAccount{
		Balance: new(uint256.Int),
	}
}

// Copy returns a deep-copied state account object.
func (acct *StateAccount) Copy() *StateAccount {
	var balance *uint256.Int
	if acct.Balance != nil {
		balance = new(uint256.Int).Set(acct.Balance)
	}
	return &StateAccount{
		Nonce:   acct.Nonce,
		Balance: balance,
		Owner:   acct.Owner,
		Data:    common.CopyBytes(acct.Data),
	}
}
