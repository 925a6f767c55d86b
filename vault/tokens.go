package vault

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/crypto"
	"github.com/tos-network/tosvault/system"
	"github.com/tos-network/tosvault/token"
)

// The token path has no Vault Record and no seed-proof authority: the custody
// token account's authority is the owner, so unlock is authorized by the
// owner's signature alone and keeps no reserve.

// ensureTokenCustody returns owner's custody token account for mint,
// creating it at owner's expense when absent.
func (env *Env) ensureTokenCustody(owner, mint common.Address) (common.Address, error) {
	db := env.StateDB
	addr, nonce := env.find(TokenCustodySeeds(owner, mint))
	if acct, err := token.ReadAccount(db, addr); err == nil {
		if acct.Mint != mint || acct.Owner != owner {
			return addr, fmt.Errorf("%w: token custody %s", ErrAddressMismatch, addr.TerminalString())
		}
		return addr, nil
	}
	auth := system.Authorities{
		system.Signer(owner),
		crypto.SeedProof{Seeds: TokenCustodySeeds(owner, mint), Nonce: nonce, Program: vaultProgram},
	}
	if err := token.CreateAccount(db, owner, auth, addr, mint, owner); err != nil {
		return addr, fmt.Errorf("vault: create token custody: %w", err)
	}
	log.Debug("Created token custody", "owner", owner, "mint", mint, "custody", addr)
	return addr, nil
}

// checkPrecision fails before any write when decimals disagree with mint.
func (env *Env) checkPrecision(mint common.Address, decimals uint8) error {
	m, err := token.ReadMint(env.StateDB, mint)
	if err != nil {
		return err
	}
	if m.Decimals != decimals {
		return fmt.Errorf("%w: mint has %d, got %d", ErrPrecisionMismatch, m.Decimals, decimals)
	}
	return nil
}

// Lock moves amount of mint from owner's associated token account into the
// owner's custody token account.
func Lock(env *Env, owner, mint common.Address, amount uint64, decimals uint8) error {
	return env.atomically(func() error {
		if err := env.checkPrecision(mint, decimals); err != nil {
			return err
		}
		custody, err := env.ensureTokenCustody(owner, mint)
		if err != nil {
			return err
		}
		wallet, _ := token.AssociatedAddress(owner, mint)
		if err := token.TransferChecked(env.StateDB, system.Signer(owner), wallet, mint, custody, amount, decimals); err != nil {
			return fmt.Errorf("vault: lock: %w", err)
		}
		log.Debug("Vault lock", "owner", owner, "mint", mint, "custody", custody, "amount", amount)
		return nil
	})
}

// Unlock moves amount of mint from owner's custody token account back to the
// owner's associated token account. Custody may be drained to zero.
func Unlock(env *Env, owner, mint common.Address, amount uint64, decimals uint8) error {
	return env.atomically(func() error {
		if err := env.checkPrecision(mint, decimals); err != nil {
			return err
		}
		custody, err := env.ensureTokenCustody(owner, mint)
		if err != nil {
			return err
		}
		wallet, _ := token.AssociatedAddress(owner, mint)
		if err := token.TransferChecked(env.StateDB, system.Signer(owner), custody, mint, wallet, amount, decimals); err != nil {
			return fmt.Errorf("vault: unlock: %w", err)
		}
		log.Debug("Vault unlock", "owner", owner, "mint", mint, "custody", custody, "amount", amount)
		return nil
	})
}
