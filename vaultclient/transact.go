package vaultclient

import (
	"context"
	"crypto/ed25519"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/types"
	"github.com/tos-network/tosvault/crypto"
	"github.com/tos-network/tosvault/sysaction"
)

// Signer signs transactions on behalf of one account.
type Signer interface {
	Address() common.Address
	Sign(tx *types.Transaction) (*types.Transaction, error)
}

// Ed25519Signer signs with an ed25519 key.
type Ed25519Signer struct {
	Key ed25519.PrivateKey
}

func (s *Ed25519Signer) Address() common.Address {
	return crypto.Ed25519Address(s.Key.Public().(ed25519.PublicKey))
}

func (s *Ed25519Signer) Sign(tx *types.Transaction) (*types.Transaction, error) {
	return types.SignEd25519(tx, s.Key), nil
}

// Secp256k1Signer signs with a secp256k1 key.
type Secp256k1Signer struct {
	Key *btcec.PrivateKey
}

func (s *Secp256k1Signer) Address() common.Address {
	return crypto.Secp256k1Address(s.Key.PubKey())
}

func (s *Secp256k1Signer) Sign(tx *types.Transaction) (*types.Transaction, error) {
	return types.SignSecp256k1(tx, s.Key)
}

// Submit encodes the action, signs it with the signer's next nonce and sends
// it.
func (ec *Client) Submit(ctx context.Context, signer Signer, kind sysaction.ActionKind, payload interface{}) (*types.Receipt, error) {
	data, err := sysaction.MakeSysAction(kind, payload)
	if err != nil {
		return nil, err
	}
	status, err := ec.Status(ctx)
	if err != nil {
		return nil, err
	}
	nonce, err := ec.NonceAt(ctx, signer.Address())
	if err != nil {
		return nil, err
	}
	tx, err := signer.Sign(types.NewTransaction(status.ChainID, nonce, data))
	if err != nil {
		return nil, err
	}
	return ec.SendTransaction(ctx, tx)
}

// Initialize opens the signer's native vault.
func (ec *Client) Initialize(ctx context.Context, signer Signer) (*types.Receipt, error) {
	return ec.Submit(ctx, signer, sysaction.ActionVaultInitialize, nil)
}

// Deposit moves amount from the signer into its vault.
func (ec *Client) Deposit(ctx context.Context, signer Signer, amount uint64) (*types.Receipt, error) {
	return ec.Submit(ctx, signer, sysaction.ActionVaultDeposit, sysaction.VaultAmountPayload{Amount: amount})
}

// Withdraw moves amount from the signer's vault back to the signer.
func (ec *Client) Withdraw(ctx context.Context, signer Signer, amount uint64) (*types.Receipt, error) {
	return ec.Submit(ctx, signer, sysaction.ActionVaultWithdraw, sysaction.VaultAmountPayload{Amount: amount})
}

// CloseVault closes the signer's vault record.
func (ec *Client) CloseVault(ctx context.Context, signer Signer) (*types.Receipt, error) {
	return ec.Submit(ctx, signer, sysaction.ActionVaultClose, nil)
}

// Lock moves tokens from the signer's associated account into custody.
func (ec *Client) Lock(ctx context.Context, signer Signer, mint common.Address, amount uint64, decimals uint8) (*types.Receipt, error) {
	return ec.Submit(ctx, signer, sysaction.ActionVaultLock, sysaction.VaultTokenPayload{Mint: mint, Amount: amount, Decimals: decimals})
}

// Unlock moves tokens from custody back to the signer's associated account.
func (ec *Client) Unlock(ctx context.Context, signer Signer, mint common.Address, amount uint64, decimals uint8) (*types.Receipt, error) {
	return ec.Submit(ctx, signer, sysaction.ActionVaultUnlock, sysaction.VaultTokenPayload{Mint: mint, Amount: amount, Decimals: decimals})
}

// Transfer sends native value from the signer to another wallet.
func (ec *Client) Transfer(ctx context.Context, signer Signer, to common.Address, amount uint64) (*types.Receipt, error) {
	return ec.Submit(ctx, signer, sysaction.ActionSystemTransfer, sysaction.TransferPayload{To: to, Amount: amount})
}

// CreateMint creates a token type whose mint authority is the signer.
func (ec *Client) CreateMint(ctx context.Context, signer Signer, symbol string, decimals uint8) (*types.Receipt, error) {
	return ec.Submit(ctx, signer, sysaction.ActionTokenCreateMint, sysaction.CreateMintPayload{Symbol: symbol, Decimals: decimals})
}

// CreateTokenAccount creates wallet's associated account for mint, paid by
// the signer.
func (ec *Client) CreateTokenAccount(ctx context.Context, signer Signer, wallet, mint common.Address) (*types.Receipt, error) {
	return ec.Submit(ctx, signer, sysaction.ActionTokenCreateAccount, sysaction.CreateTokenAccountPayload{Wallet: &wallet, Mint: mint})
}

// MintTo issues amount new tokens into the token account to.
func (ec *Client) MintTo(ctx context.Context, signer Signer, mint, to common.Address, amount uint64) (*types.Receipt, error) {
	return ec.Submit(ctx, signer, sysaction.ActionTokenMintTo, sysaction.MintToPayload{Mint: mint, To: to, Amount: amount})
}
