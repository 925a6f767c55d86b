package core

import (
	"errors"

	"github.com/tos-network/tosvault/crypto"
	"github.com/tos-network/tosvault/sysaction"
	"github.com/tos-network/tosvault/system"
	"github.com/tos-network/tosvault/token"
	"github.com/tos-network/tosvault/vault"
)

// Error kinds recorded in failed receipts.
const (
	KindAlreadyInitialized  = "AlreadyInitialized"
	KindAlreadyClosed       = "AlreadyClosed"
	KindNotInitialized      = "NotInitialized"
	KindAddressMismatch     = "AddressMismatch"
	KindInsufficientReserve = "InsufficientReserve"
	KindInsufficientBalance = "InsufficientBalance"
	KindPrecisionMismatch   = "PrecisionMismatch"
	KindMissingAuthority    = "MissingAuthority"
	KindInvalidAccount      = "InvalidAccount"
	KindInvalidAction       = "InvalidAction"
	KindActionFailed        = "ActionFailed"
)

// errorKinds is checked in order; refinements precede the errors they wrap.
var errorKinds = []struct {
	err  error
	kind string
}{
	{vault.ErrAlreadyClosed, KindAlreadyClosed},
	{vault.ErrAlreadyInitialized, KindAlreadyInitialized},
	{vault.ErrNotInitialized, KindNotInitialized},
	{vault.ErrInvalidRecord, KindNotInitialized},
	{vault.ErrAddressMismatch, KindAddressMismatch},
	{vault.ErrInsufficientReserve, KindInsufficientReserve},
	{vault.ErrInsufficientBalance, KindInsufficientBalance},
	{vault.ErrPrecisionMismatch, KindPrecisionMismatch},

	{system.ErrMissingAuthority, KindMissingAuthority},
	{token.ErrOwnerMismatch, KindMissingAuthority},
	{system.ErrTransferFromDataAccount, KindInvalidAccount},
	{system.ErrAccountInUse, KindInvalidAccount},
	{system.ErrInvalidAccountOwner, KindInvalidAccount},
	{system.ErrInvalidAccountDataLength, KindInvalidAccount},
	{token.ErrAlreadyInitialized, KindInvalidAccount},
	{token.ErrInvalidAccount, KindInvalidAccount},
	{token.ErrInvalidMint, KindInvalidAccount},
	{token.ErrMintMismatch, KindInvalidAccount},

	{sysaction.ErrInvalidSysAction, KindInvalidAction},
	{sysaction.ErrUnknownAction, KindInvalidAction},
	{token.ErrInvalidSymbol, KindInvalidAction},
	{crypto.ErrMaxSeedLengthExceeded, KindInvalidAction},
}

// ErrorKind classifies an action failure into a stable name clients can
// match on. Unclassified errors report KindActionFailed.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindActionFailed
}
