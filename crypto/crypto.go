// Package crypto implements hashing, program address derivation and the
// signing primitives used by tosvault.
package crypto

import (
	"crypto/ed25519"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	becdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/tos-network/tosvault/common"
	"golang.org/x/crypto/sha3"
)

// Secp256k1SignatureLength is the size of a compact recoverable signature.
const Secp256k1SignatureLength = 65

var errInvalidPrivateKey = errors.New("crypto: invalid private key length")

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash calculates and returns the Keccak256 hash of the input data,
// converting it to an internal Hash data structure.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

// Ed25519Address returns the account identity of an ed25519 public key, which
// is the key itself.
func Ed25519Address(pub ed25519.PublicKey) common.Address {
	return common.BytesToAddress(pub)
}

// Secp256k1Address returns the account identity of a secp256k1 public key.
func Secp256k1Address(pub *btcec.PublicKey) common.Address {
	return common.BytesToAddress(Keccak256(pub.SerializeUncompressed()[1:]))
}

// GenerateSecp256k1Key creates a fresh secp256k1 private key.
func GenerateSecp256k1Key() (*btcec.PrivateKey, error) {
	return btcec.NewPrivateKey()
}

// ToSecp256k1 parses a raw 32 byte secp256k1 private key.
func ToSecp256k1(raw []byte) (*btcec.PrivateKey, error) {
	if len(raw) != 32 {
		return nil, errInvalidPrivateKey
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	return priv, nil
}

// SignSecp256k1 produces a 65 byte recoverable signature over hash.
func SignSecp256k1(hash []byte, priv *btcec.PrivateKey) ([]byte, error) {
	return becdsa.SignCompact(priv, hash, false), nil
}

// RecoverSecp256k1 returns the public key that produced sig over hash.
func RecoverSecp256k1(hash, sig []byte) (*btcec.PublicKey, error) {
	pub, _, err := becdsa.RecoverCompact(sig, hash)
	return pub, err
}
