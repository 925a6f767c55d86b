package system

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/vm"
	"github.com/tos-network/tosvault/crypto"
)

// Transfer moves amount lamports from one account to another. auth must
// authorize from, and from must not carry data. A zero amount still performs
// every check but leaves state untouched.
func Transfer(db vm.StateDB, auth Authority, from, to common.Address, amount uint64) error {
	// ── Validation phase ─────────────────────────────────────────────────────
	if auth == nil || !auth.Authorizes(from) {
		return fmt.Errorf("%w: %s", ErrMissingAuthority, from.TerminalString())
	}
	if len(db.GetData(from)) > 0 {
		return fmt.Errorf("%w: %s", ErrTransferFromDataAccount, from.TerminalString())
	}
	value := uint256.NewInt(amount)
	if balance := db.GetBalance(from); balance.Lt(value) {
		return fmt.Errorf("%w: %s has %s, need %d", ErrInsufficientBalance, from.TerminalString(), balance, amount)
	}
	if amount == 0 || from == to {
		return nil
	}

	// ── Mutation phase ───────────────────────────────────────────────────────
	db.SubBalance(from, value)
	db.AddBalance(to, value)
	log.Trace("System transfer", "from", from, "to", to, "amount", amount)
	return nil
}

// TransferWithSeeds moves lamports out of a program derived address. The
// proof stands in for a signature and authorizes exactly the address it
// reproduces.
func TransferWithSeeds(db vm.StateDB, from, to common.Address, amount uint64, proof crypto.SeedProof) error {
	return Transfer(db, proof, from, to, amount)
}
