package system

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/vm"
	"github.com/tos-network/tosvault/params"
)

// CreateAccount allocates space bytes of zeroed data at addr, assigns it to
// owner and funds it from payer up to the rent-exempt minimum. auth must
// authorize both payer and addr. Lamports already sitting at addr count
// towards the minimum, so pre-funding an address cannot block its creation.
func CreateAccount(db vm.StateDB, payer common.Address, auth Authority, addr common.Address, space uint64, owner common.Address) error {
	// ── Validation phase ─────────────────────────────────────────────────────
	if space > params.MaxAccountDataSize {
		return fmt.Errorf("%w: %d > %d", ErrInvalidAccountDataLength, space, params.MaxAccountDataSize)
	}
	if auth == nil || !auth.Authorizes(payer) {
		return fmt.Errorf("%w: payer %s", ErrMissingAuthority, payer.TerminalString())
	}
	if !auth.Authorizes(addr) {
		return fmt.Errorf("%w: new account %s", ErrMissingAuthority, addr.TerminalString())
	}
	if len(db.GetData(addr)) > 0 || db.GetOwner(addr) != (common.Address{}) {
		return fmt.Errorf("%w: %s", ErrAccountInUse, addr.TerminalString())
	}
	required := MinimumBalance(db, space)
	var topUp uint64
	if have := db.GetBalance(addr).Uint64(); have < required {
		topUp = required - have
	}

	// ── Mutation phase ───────────────────────────────────────────────────────
	if err := Transfer(db, auth, payer, addr, topUp); err != nil {
		return err
	}
	db.CreateAccount(addr)
	db.SetOwner(addr, owner)
	db.SetData(addr, make([]byte, space))
	log.Debug("Allocated account", "address", addr, "owner", owner, "space", space, "funded", topUp)
	return nil
}

// CloseAccount deallocates a program-owned account and moves all of its
// lamports to refundTo. Only the owning program may close an account.
func CloseAccount(db vm.StateDB, program common.Address, addr common.Address, refundTo common.Address) (uint64, error) {
	if !db.Exist(addr) || db.GetOwner(addr) != program {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAccountOwner, addr.TerminalString())
	}
	refund := db.GetBalance(addr)
	db.AddBalance(refundTo, refund)
	db.DeleteAccount(addr)
	log.Debug("Deallocated account", "address", addr, "refundTo", refundTo, "refund", refund)
	return refund.Uint64(), nil
}
