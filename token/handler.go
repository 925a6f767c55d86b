package token

import (
	"github.com/tos-network/tosvault/crypto"
	"github.com/tos-network/tosvault/params"
	"github.com/tos-network/tosvault/sysaction"
	"github.com/tos-network/tosvault/system"
)

func init() {
	sysaction.DefaultRegistry.Register(&tokenHandler{})
}

// tokenHandler implements sysaction.Handler for the token program actions.
type tokenHandler struct{}

func (h *tokenHandler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionTokenCreateMint,
		sysaction.ActionTokenCreateAccount,
		sysaction.ActionTokenMintTo,
		sysaction.ActionTokenTransferChecked:
		return true
	}
	return false
}

func (h *tokenHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	switch sa.Action {
	case sysaction.ActionTokenCreateMint:
		return h.handleCreateMint(ctx, sa)
	case sysaction.ActionTokenCreateAccount:
		return h.handleCreateAccount(ctx, sa)
	case sysaction.ActionTokenMintTo:
		return h.handleMintTo(ctx, sa)
	case sysaction.ActionTokenTransferChecked:
		return h.handleTransferChecked(ctx, sa)
	}
	return nil
}

func (h *tokenHandler) handleCreateMint(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	var p sysaction.CreateMintPayload
	if err := sysaction.DecodePayload(sa, &p); err != nil {
		return err
	}
	addr, nonce, err := MintAddress(ctx.From, p.Symbol)
	if err != nil {
		return err
	}
	auth := system.Authorities{
		system.Signer(ctx.From),
		crypto.SeedProof{Seeds: MintSeeds(ctx.From, p.Symbol), Nonce: nonce, Program: params.TokenProgramAddress},
	}
	return CreateMint(ctx.StateDB, ctx.From, auth, addr, ctx.From, p.Decimals)
}

func (h *tokenHandler) handleCreateAccount(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	var p sysaction.CreateTokenAccountPayload
	if err := sysaction.DecodePayload(sa, &p); err != nil {
		return err
	}
	wallet := ctx.From
	if p.Wallet != nil {
		wallet = *p.Wallet
	}
	_, err := CreateAssociatedAccount(ctx.StateDB, ctx.From, system.Signer(ctx.From), wallet, p.Mint)
	return err
}

func (h *tokenHandler) handleMintTo(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	var p sysaction.MintToPayload
	if err := sysaction.DecodePayload(sa, &p); err != nil {
		return err
	}
	return MintTo(ctx.StateDB, system.Signer(ctx.From), p.Mint, p.To, p.Amount)
}

func (h *tokenHandler) handleTransferChecked(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	var p sysaction.TransferCheckedPayload
	if err := sysaction.DecodePayload(sa, &p); err != nil {
		return err
	}
	return TransferChecked(ctx.StateDB, system.Signer(ctx.From), p.From, p.Mint, p.To, p.Amount, p.Decimals)
}
