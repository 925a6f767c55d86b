// Package sysaction implements the ledger's system action protocol.
//
// Every transaction carries a JSON-encoded SysAction in its Data field. There
// is no interpreter; the ledger calls Execute which dispatches the action to
// the handler of the program that owns it (system, token or vault).
package sysaction

import (
	"encoding/json"

	"github.com/tos-network/tosvault/common"
)

// ActionKind identifies the type of system action.
type ActionKind string

const (
	// System program
	ActionSystemTransfer ActionKind = "SYSTEM_TRANSFER"

	// Token program
	ActionTokenCreateMint      ActionKind = "TOKEN_CREATE_MINT"
	ActionTokenCreateAccount   ActionKind = "TOKEN_CREATE_ACCOUNT"
	ActionTokenMintTo          ActionKind = "TOKEN_MINT_TO"
	ActionTokenTransferChecked ActionKind = "TOKEN_TRANSFER_CHECKED"

	// Vault program, native path
	ActionVaultInitialize ActionKind = "VAULT_INITIALIZE"
	ActionVaultDeposit    ActionKind = "VAULT_DEPOSIT"
	ActionVaultWithdraw   ActionKind = "VAULT_WITHDRAW"
	ActionVaultClose      ActionKind = "VAULT_CLOSE"

	// Vault program, token path
	ActionVaultLock   ActionKind = "VAULT_LOCK"
	ActionVaultUnlock ActionKind = "VAULT_UNLOCK"
)

// SysAction is the top-level envelope stored in tx.Data.
type SysAction struct {
	Action  ActionKind      `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TransferPayload is the payload for SYSTEM_TRANSFER.
type TransferPayload struct {
	To     common.Address `json:"to"`
	Amount uint64         `json:"amount"`
}

// CreateMintPayload is the payload for TOKEN_CREATE_MINT. The mint address is
// derived from the sender and Symbol.
type CreateMintPayload struct {
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// CreateTokenAccountPayload is the payload for TOKEN_CREATE_ACCOUNT. An empty
// Wallet means the sender's own associated account.
type CreateTokenAccountPayload struct {
	Wallet *common.Address `json:"wallet,omitempty"`
	Mint   common.Address  `json:"mint"`
}

// MintToPayload is the payload for TOKEN_MINT_TO.
type MintToPayload struct {
	Mint   common.Address `json:"mint"`
	To     common.Address `json:"to"` // token account
	Amount uint64         `json:"amount"`
}

// TransferCheckedPayload is the payload for TOKEN_TRANSFER_CHECKED.
type TransferCheckedPayload struct {
	From     common.Address `json:"from"` // token account
	Mint     common.Address `json:"mint"`
	To       common.Address `json:"to"` // token account
	Amount   uint64         `json:"amount"`
	Decimals uint8          `json:"decimals"`
}

// VaultAmountPayload is the payload for VAULT_DEPOSIT / VAULT_WITHDRAW.
type VaultAmountPayload struct {
	Amount uint64 `json:"amount"`
}

// VaultTokenPayload is the payload for VAULT_LOCK / VAULT_UNLOCK.
type VaultTokenPayload struct {
	Mint     common.Address `json:"mint"`
	Amount   uint64         `json:"amount"`
	Decimals uint8          `json:"decimals"`
}
