package vault

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/crypto"
	"github.com/tos-network/tosvault/system"
)

// Initialize creates owner's Vault Record, paid by owner, and funds the
// custody account with exactly the live minimum reserve of an empty account.
func Initialize(env *Env, owner common.Address) error {
	return env.atomically(func() error {
		db := env.StateDB

		// ── Validation phase ─────────────────────────────────────────────────
		if readClosed(db, owner) {
			return ErrAlreadyClosed
		}
		recordAddr, stateNonce := env.find(RecordSeeds(owner))
		if db.GetOwner(recordAddr) == vaultProgram {
			return ErrAlreadyInitialized
		}
		custodyAddr, vaultNonce := env.find(CustodySeeds(recordAddr))

		// ── Mutation phase ───────────────────────────────────────────────────
		auth := system.Authorities{
			system.Signer(owner),
			crypto.SeedProof{Seeds: RecordSeeds(owner), Nonce: stateNonce, Program: vaultProgram},
		}
		if err := system.CreateAccount(db, owner, auth, recordAddr, RecordSize, vaultProgram); err != nil {
			return fmt.Errorf("vault: allocate record: %w", err)
		}
		reserve := system.MinimumBalance(db, 0)
		if err := system.Transfer(db, system.Signer(owner), owner, custodyAddr, reserve); err != nil {
			return fmt.Errorf("vault: fund custody: %w", err)
		}
		rec := &Record{StateNonce: stateNonce, VaultNonce: vaultNonce}
		data, _ := rec.MarshalBinary()
		db.SetData(recordAddr, data)

		log.Debug("Initialized vault", "owner", owner, "record", recordAddr, "custody", custodyAddr, "reserve", reserve)
		return nil
	})
}

// Deposit moves amount from owner's wallet into custody. A zero amount passes
// every check and moves nothing.
func Deposit(env *Env, owner common.Address, amount uint64) error {
	return env.atomically(func() error {
		v, err := env.load(owner)
		if err != nil {
			return err
		}
		if err := system.Transfer(env.StateDB, system.Signer(owner), owner, v.custodyAddr, amount); err != nil {
			return fmt.Errorf("vault: deposit: %w", err)
		}
		log.Debug("Vault deposit", "owner", owner, "custody", v.custodyAddr, "amount", amount)
		return nil
	})
}

// Withdraw moves amount from custody back to owner, authorized by the
// custody seed proof. Custody must keep the live minimum reserve.
func Withdraw(env *Env, owner common.Address, amount uint64) error {
	return env.atomically(func() error {
		db := env.StateDB

		// ── Validation phase ─────────────────────────────────────────────────
		v, err := env.load(owner)
		if err != nil {
			return err
		}
		reserve := system.MinimumBalance(db, 0)
		required, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(reserve), uint256.NewInt(amount))
		if overflow {
			return fmt.Errorf("%w: amount %d", ErrInsufficientReserve, amount)
		}
		if balance := db.GetBalance(v.custodyAddr); balance.Lt(required) {
			return fmt.Errorf("%w: custody holds %s, withdrawing %d needs %s", ErrInsufficientReserve, balance, amount, required)
		}

		// ── Mutation phase ───────────────────────────────────────────────────
		if err := system.TransferWithSeeds(db, v.custodyAddr, owner, amount, v.custodyProof()); err != nil {
			return fmt.Errorf("vault: withdraw: %w", err)
		}
		log.Debug("Vault withdrawal", "owner", owner, "custody", v.custodyAddr, "amount", amount)
		return nil
	})
}

// Close destroys owner's Vault Record and refunds its lamports to owner. The
// custody account is left as is; the vault cannot be initialized again.
func Close(env *Env, owner common.Address) error {
	return env.atomically(func() error {
		db := env.StateDB

		v, err := env.load(owner)
		if err != nil {
			return err
		}
		refund, err := system.CloseAccount(db, vaultProgram, v.recordAddr, owner)
		if err != nil {
			return fmt.Errorf("vault: close record: %w", err)
		}
		writeClosed(db, owner)

		if residual := db.GetBalance(v.custodyAddr); !residual.IsZero() {
			log.Warn("Vault closed with value left in custody", "owner", owner, "custody", v.custodyAddr, "residual", residual)
		}
		log.Debug("Closed vault", "owner", owner, "record", v.recordAddr, "refund", refund)
		return nil
	})
}
