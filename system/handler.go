package system

import (
	"github.com/tos-network/tosvault/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&systemHandler{})
}

// systemHandler implements sysaction.Handler for wallet-to-wallet transfers.
type systemHandler struct{}

func (h *systemHandler) CanHandle(kind sysaction.ActionKind) bool {
	return kind == sysaction.ActionSystemTransfer
}

func (h *systemHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	var p sysaction.TransferPayload
	if err := sysaction.DecodePayload(sa, &p); err != nil {
		return err
	}
	return Transfer(ctx.StateDB, Signer(ctx.From), ctx.From, p.To, p.Amount)
}
