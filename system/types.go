// Package system implements the built-in system program: native transfers,
// account allocation and deallocation, and the rent sysvar used for minimum
// reserve queries.
package system

import (
	"errors"

	"github.com/tos-network/tosvault/common"
)

var (
	ErrInsufficientBalance      = errors.New("system: insufficient balance")
	ErrMissingAuthority         = errors.New("system: missing required authority")
	ErrTransferFromDataAccount  = errors.New("system: transfer from account carrying data")
	ErrAccountInUse             = errors.New("system: account already in use")
	ErrInvalidAccountOwner      = errors.New("system: account not owned by program")
	ErrInvalidAccountDataLength = errors.New("system: invalid account data length")
)

// Authority proves the right to move value out of, or allocate, an address.
// A verified transaction signer and a crypto.SeedProof are both authorities.
type Authority interface {
	Authorizes(addr common.Address) bool
}

// Signer is the authority of a verified transaction sender.
type Signer common.Address

// Authorizes implements Authority.
func (s Signer) Authorizes(addr common.Address) bool {
	return common.Address(s) == addr
}

// Authorities combines several authorities; it authorizes an address if any
// member does.
type Authorities []Authority

// Authorizes implements Authority.
func (as Authorities) Authorizes(addr common.Address) bool {
	for _, a := range as {
		if a != nil && a.Authorizes(addr) {
			return true
		}
	}
	return false
}
