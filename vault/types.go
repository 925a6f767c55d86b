// Package vault implements the custodial vault program.
//
// A vault is a per-owner escrow. On the native path a Vault Record at
// ["state", owner] stores the nonces that re-derive the record and its custody
// account at ["vault", record]; value leaves custody only through a seed proof
// of that address and never below the live minimum reserve. On the token path
// the custody is a token account at ["vault", owner, mint] whose token
// authority is the owner.
package vault

import (
	"errors"
	"fmt"

	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/vm"
	"github.com/tos-network/tosvault/crypto"
	"github.com/tos-network/tosvault/system"
	"github.com/tos-network/tosvault/token"
)

var (
	ErrAlreadyInitialized  = errors.New("vault: already initialized")
	ErrNotInitialized      = errors.New("vault: not initialized")
	ErrAddressMismatch     = errors.New("vault: address mismatch")
	ErrInsufficientReserve = errors.New("vault: insufficient reserve")
	ErrInvalidRecord       = errors.New("vault: invalid record")

	// ErrAlreadyClosed refines ErrAlreadyInitialized for an owner whose vault
	// was closed; a closed vault never reopens.
	ErrAlreadyClosed = fmt.Errorf("%w: vault closed", ErrAlreadyInitialized)

	// ErrInsufficientBalance is surfaced by the transfer gateway and the
	// token ledger.
	ErrInsufficientBalance = system.ErrInsufficientBalance
	// ErrPrecisionMismatch is surfaced by the token ledger.
	ErrPrecisionMismatch = token.ErrDecimalsMismatch
)

// Status is the lifecycle state of an owner's native vault.
type Status uint8

const (
	Uninitialized Status = iota
	Active
	Closed
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(input []byte) error {
	for _, st := range []Status{Uninitialized, Active, Closed} {
		if st.String() == string(input) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("vault: unknown status %q", input)
}

// Env is the execution environment of one vault operation.
type Env struct {
	StateDB   vm.StateDB
	Addresses *crypto.AddressCache
}

// addressCache is shared by handler-built environments.
var addressCache = crypto.NewAddressCache(0)

// NewEnv returns an environment over db using the shared derivation cache.
func NewEnv(db vm.StateDB) *Env {
	return &Env{StateDB: db, Addresses: addressCache}
}

func (env *Env) find(seeds [][]byte) (common.Address, uint8) {
	if env.Addresses != nil {
		return env.Addresses.Find(seeds, vaultProgram)
	}
	return crypto.FindProgramAddress(seeds, vaultProgram)
}

// atomically runs fn and reverts every state change it made if it fails.
func (env *Env) atomically(fn func() error) error {
	snap := env.StateDB.Snapshot()
	if err := fn(); err != nil {
		env.StateDB.RevertToSnapshot(snap)
		return err
	}
	return nil
}
