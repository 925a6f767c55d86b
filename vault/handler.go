package vault

import (
	"github.com/tos-network/tosvault/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&vaultHandler{})
}

// vaultHandler implements sysaction.Handler for the vault program. The owner
// of every action is the verified sender.
type vaultHandler struct{}

func (h *vaultHandler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionVaultInitialize,
		sysaction.ActionVaultDeposit,
		sysaction.ActionVaultWithdraw,
		sysaction.ActionVaultClose,
		sysaction.ActionVaultLock,
		sysaction.ActionVaultUnlock:
		return true
	}
	return false
}

func (h *vaultHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	env := NewEnv(ctx.StateDB)
	owner := ctx.From

	switch sa.Action {
	case sysaction.ActionVaultInitialize:
		return Initialize(env, owner)

	case sysaction.ActionVaultClose:
		return Close(env, owner)

	case sysaction.ActionVaultDeposit, sysaction.ActionVaultWithdraw:
		var p sysaction.VaultAmountPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		if sa.Action == sysaction.ActionVaultDeposit {
			return Deposit(env, owner, p.Amount)
		}
		return Withdraw(env, owner, p.Amount)

	case sysaction.ActionVaultLock, sysaction.ActionVaultUnlock:
		var p sysaction.VaultTokenPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return err
		}
		if sa.Action == sysaction.ActionVaultLock {
			return Lock(env, owner, p.Mint, p.Amount, p.Decimals)
		}
		return Unlock(env, owner, p.Mint, p.Amount, p.Decimals)
	}
	return nil
}
