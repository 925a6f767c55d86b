package types

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/crypto"
)

// SignerType identifies the signature scheme of a transaction.
type SignerType uint8

const (
	Ed25519Signer   SignerType = 1 // sender = public key
	Secp256k1Signer SignerType = 2 // sender = keccak256(recovered pubkey)
)

// String implements fmt.Stringer.
func (t SignerType) String() string {
	switch t {
	case Ed25519Signer:
		return "ed25519"
	case Secp256k1Signer:
		return "secp256k1"
	}
	return fmt.Sprintf("signer(%d)", uint8(t))
}

var (
	ErrInvalidSig        = errors.New("invalid transaction signature")
	ErrUnknownSignerType = errors.New("unknown transaction signer type")
	ErrInvalidChainID    = errors.New("invalid chain id for signer")
)

// Transaction is a signed system action submitted by an account owner.
type Transaction struct {
	ChainID    uint64
	Nonce      uint64
	SignerType SignerType
	PublicKey  []byte // ed25519 only; secp256k1 keys are recovered
	Data       []byte // encoded system action
	Signature  []byte

	hash atomic.Pointer[common.Hash]
}

type sigPayload struct {
	ChainID    uint64
	Nonce      uint64
	SignerType SignerType
	PublicKey  []byte
	Data       []byte
}

type txEnvelope struct {
	ChainID    uint64
	Nonce      uint64
	SignerType SignerType
	PublicKey  []byte
	Data       []byte
	Signature  []byte
}

// NewTransaction creates an unsigned transaction.
func NewTransaction(chainID, nonce uint64, data []byte) *Transaction {
	return &Transaction{ChainID: chainID, Nonce: nonce, Data: common.CopyBytes(data)}
}

// SigningHash returns the hash covered by the signature.
func (tx *Transaction) SigningHash() common.Hash {
	enc, _ := rlp.EncodeToBytes(&sigPayload{
		ChainID:    tx.ChainID,
		Nonce:      tx.Nonce,
		SignerType: tx.SignerType,
		PublicKey:  tx.PublicKey,
		Data:       tx.Data,
	})
	return crypto.Keccak256Hash(enc)
}

// Hash returns the transaction hash, covering the signature.
func (tx *Transaction) Hash() common.Hash {
	if hash := tx.hash.Load(); hash != nil {
		return *hash
	}
	enc, _ := tx.MarshalBinary()
	h := crypto.Keccak256Hash(enc)
	tx.hash.Store(&h)
	return h
}

// MarshalBinary returns the canonical encoding of the transaction.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	return rlp.EncodeToBytes(&txEnvelope{
		ChainID:    tx.ChainID,
		Nonce:      tx.Nonce,
		SignerType: tx.SignerType,
		PublicKey:  tx.PublicKey,
		Data:       tx.Data,
		Signature:  tx.Signature,
	})
}

// UnmarshalBinary decodes the canonical encoding of a transaction.
func (tx *Transaction) UnmarshalBinary(b []byte) error {
	var env txEnvelope
	if err := rlp.DecodeBytes(b, &env); err != nil {
		return err
	}
	tx.ChainID, tx.Nonce, tx.SignerType = env.ChainID, env.Nonce, env.SignerType
	tx.PublicKey, tx.Data, tx.Signature = env.PublicKey, env.Data, env.Signature
	tx.hash.Store(nil)
	return nil
}

// SignEd25519 signs tx with an ed25519 key. The transaction is modified in place
// and returned for chaining.
func SignEd25519(tx *Transaction, priv ed25519.PrivateKey) *Transaction {
	tx.SignerType = Ed25519Signer
	tx.PublicKey = common.CopyBytes(priv.Public().(ed25519.PublicKey))
	hash := tx.SigningHash()
	tx.Signature = ed25519.Sign(priv, hash[:])
	tx.hash.Store(nil)
	return tx
}

// SignSecp256k1 signs tx with a secp256k1 key.
func SignSecp256k1(tx *Transaction, priv *btcec.PrivateKey) (*Transaction, error) {
	tx.SignerType = Secp256k1Signer
	tx.PublicKey = nil
	hash := tx.SigningHash()
	sig, err := crypto.SignSecp256k1(hash[:], priv)
	if err != nil {
		return nil, err
	}
	tx.Signature = sig
	tx.hash.Store(nil)
	return tx, nil
}

// Sender verifies the signature of tx for chainID and returns the
// authenticated sender address.
func Sender(chainID uint64, tx *Transaction) (common.Address, error) {
	if tx.ChainID != chainID {
		return common.Address{}, fmt.Errorf("%w: have %d want %d", ErrInvalidChainID, tx.ChainID, chainID)
	}
	hash := tx.SigningHash()
	switch tx.SignerType {
	case Ed25519Signer:
		if len(tx.PublicKey) != ed25519.PublicKeySize || len(tx.Signature) != ed25519.SignatureSize {
			return common.Address{}, ErrInvalidSig
		}
		if !ed25519.Verify(ed25519.PublicKey(tx.PublicKey), hash[:], tx.Signature) {
			return common.Address{}, ErrInvalidSig
		}
		return crypto.Ed25519Address(tx.PublicKey), nil

	case Secp256k1Signer:
		if len(tx.PublicKey) != 0 || len(tx.Signature) != crypto.Secp256k1SignatureLength {
			return common.Address{}, ErrInvalidSig
		}
		pub, err := crypto.RecoverSecp256k1(hash[:], tx.Signature)
		if err != nil {
			return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
		}
		return crypto.Secp256k1Address(pub), nil
	}
	return common.Address{}, ErrUnknownSignerType
}

// Equal reports whether two transactions carry identical signed content.
func (tx *Transaction) Equal(other *Transaction) bool {
	a, _ := tx.MarshalBinary()
	b, _ := other.MarshalBinary()
	return bytes.Equal(a, b)
}
