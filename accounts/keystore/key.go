// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package keystore stores account keys in passphrase protected key files.
package keystore

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/google/uuid"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/crypto"
)

const (
	version = 3
)

// Signer type names stored in key files.
const (
	SignerTypeEd25519   = "ed25519"
	SignerTypeSecp256k1 = "secp256k1"
)

type Key struct {
	Id uuid.UUID // Version 4 "random" for unique id not derived from key data
	// to simplify lookups we also store the address
	Address common.Address
	// signer type associated with this key material.
	SignerType string
	// exactly one of the private keys is set, always in plaintext.
	Secp256k1PrivateKey *btcec.PrivateKey
	Ed25519PrivateKey   ed25519.PrivateKey
}

type plainKeyJSON struct {
	Address    string `json:"address"`
	SignerType string `json:"signerType"`
	PrivateKey string `json:"privatekey"`
	Id         string `json:"id"`
	Version    int    `json:"version"`
}

type encryptedKeyJSONV3 struct {
	Address    string     `json:"address"`
	Crypto     CryptoJSON `json:"crypto"`
	SignerType string     `json:"signerType"`
	Id         string     `json:"id"`
	Version    int        `json:"version"`
}

type CryptoJSON struct {
	Cipher       string                 `json:"cipher"`
	CipherText   string                 `json:"ciphertext"`
	CipherParams cipherparamsJSON       `json:"cipherparams"`
	KDF          string                 `json:"kdf"`
	KDFParams    map[string]interface{} `json:"kdfparams"`
	MAC          string                 `json:"mac"`
}

type cipherparamsJSON struct {
	IV string `json:"iv"`
}

func (k *Key) MarshalJSON() (j []byte, err error) {
	keyHex, err := k.privateKeyHex()
	if err != nil {
		return nil, err
	}
	jStruct := plainKeyJSON{
		hex.EncodeToString(k.Address[:]),
		k.SignerType,
		keyHex,
		k.Id.String(),
		version,
	}
	j, err = json.Marshal(jStruct)
	return j, err
}

func (k *Key) UnmarshalJSON(j []byte) (err error) {
	keyJSON := new(plainKeyJSON)
	err = json.Unmarshal(j, &keyJSON)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(keyJSON.Id)
	if err != nil {
		return err
	}
	raw, err := hex.DecodeString(keyJSON.PrivateKey)
	if err != nil {
		return err
	}
	key, err := keyFromRaw(keyJSON.SignerType, raw, id)
	if err != nil {
		return err
	}
	if addr := common.HexToAddress(keyJSON.Address); addr != key.Address {
		return fmt.Errorf("key file address %s does not match key %s", addr, key.Address)
	}
	*k = *key
	return nil
}

// PublicKey returns the serialized public key: 32 bytes for ed25519, 33
// compressed bytes for secp256k1.
func (k *Key) PublicKey() []byte {
	switch k.SignerType {
	case SignerTypeEd25519:
		return common.CopyBytes(k.Ed25519PrivateKey.Public().(ed25519.PublicKey))
	case SignerTypeSecp256k1:
		return k.Secp256k1PrivateKey.PubKey().SerializeCompressed()
	}
	return nil
}

// NewKey generates a fresh key of the given signer type.
func NewKey(signerType string, rand io.Reader) (*Key, error) {
	switch signerType {
	case SignerTypeEd25519:
		seed := make([]byte, ed25519.SeedSize)
		if _, err := io.ReadFull(rand, seed); err != nil {
			return nil, err
		}
		return NewKeyFromRaw(signerType, seed)
	case SignerTypeSecp256k1:
		priv, err := crypto.GenerateSecp256k1Key()
		if err != nil {
			return nil, err
		}
		return NewKeyFromRaw(signerType, priv.Serialize())
	}
	return nil, fmt.Errorf("unsupported signer type: %s", signerType)
}

// NewKeyFromRaw wraps raw private key material: a 32 byte ed25519 seed or a
// 32 byte secp256k1 scalar.
func NewKeyFromRaw(signerType string, raw []byte) (*Key, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("could not create random uuid: %w", err)
	}
	return keyFromRaw(signerType, raw, id)
}

func keyFromRaw(signerType string, raw []byte, id uuid.UUID) (*Key, error) {
	key := &Key{Id: id, SignerType: strings.ToLower(strings.TrimSpace(signerType))}
	switch key.SignerType {
	case SignerTypeEd25519:
		priv, err := decodeEd25519PrivateKey(raw)
		if err != nil {
			return nil, err
		}
		key.Ed25519PrivateKey = priv
		key.Address = crypto.Ed25519Address(priv.Public().(ed25519.PublicKey))
	case SignerTypeSecp256k1:
		priv, err := crypto.ToSecp256k1(raw)
		if err != nil {
			return nil, err
		}
		key.Secp256k1PrivateKey = priv
		key.Address = crypto.Secp256k1Address(priv.PubKey())
	default:
		return nil, fmt.Errorf("unsupported signer type: %s", signerType)
	}
	return key, nil
}

func decodeEd25519PrivateKey(raw []byte) (ed25519.PrivateKey, error) {
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize]), nil
	default:
		return nil, fmt.Errorf("invalid ed25519 private key size: %d", len(raw))
	}
}

func (k *Key) privateKeyBytes() ([]byte, error) {
	switch k.SignerType {
	case SignerTypeEd25519:
		if len(k.Ed25519PrivateKey) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("missing ed25519 private key")
		}
		return common.CopyBytes(k.Ed25519PrivateKey.Seed()), nil
	case SignerTypeSecp256k1:
		if k.Secp256k1PrivateKey == nil {
			return nil, fmt.Errorf("missing secp256k1 private key")
		}
		return k.Secp256k1PrivateKey.Serialize(), nil
	}
	return nil, fmt.Errorf("unsupported signer type: %s", k.SignerType)
}

func (k *Key) privateKeyHex() (string, error) {
	raw, err := k.privateKeyBytes()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// PrivateKeyHex returns the raw private key material in hex.
func (k *Key) PrivateKeyHex() string {
	s, _ := k.privateKeyHex()
	return s
}

func writeTemporaryKeyFile(file string, content []byte) (string, error) {
	// Create the keystore directory with appropriate permissions
	// in case it is not present yet.
	const dirPerm = 0700
	if err := os.MkdirAll(filepath.Dir(file), dirPerm); err != nil {
		return "", err
	}
	// Atomic write: create a temporary hidden file first
	// then move it into place. TempFile assigns mode 0600.
	f, err := os.CreateTemp(filepath.Dir(file), "."+filepath.Base(file)+".tmp")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	f.Close()
	return f.Name(), nil
}

// WriteKeyFile atomically writes content to file, creating its directory.
func WriteKeyFile(file string, content []byte) error {
	name, err := writeTemporaryKeyFile(file, content)
	if err != nil {
		return err
	}
	return os.Rename(name, file)
}

// KeyFileName implements the naming convention for keyfiles:
// UTC--<created_at UTC ISO8601>-<address hex>
func KeyFileName(keyAddr common.Address) string {
	ts := time.Now().UTC()
	return fmt.Sprintf("UTC--%s--%s", toISO8601(ts), hex.EncodeToString(keyAddr[:]))
}

func toISO8601(t time.Time) string {
	var tz string
	name, offset := t.Zone()
	if name == "UTC" {
		tz = "Z"
	} else {
		tz = fmt.Sprintf("%03d00", offset/3600)
	}
	return fmt.Sprintf("%04d-%02d-%02dT%02d-%02d-%02d.%09d%s",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), tz)
}

// KeyFileAddress returns the address recorded in an encrypted or plain key
// file without decrypting it.
func KeyFileAddress(keyjson []byte) (common.Address, error) {
	var m struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(keyjson, &m); err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(m.Address) {
		return common.Address{}, fmt.Errorf("invalid address %q in key file", m.Address)
	}
	return common.HexToAddress(m.Address), nil
}
