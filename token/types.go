// Package token implements the built-in token program: mints of fungible
// token types and per-owner token balance accounts.
package token

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/system"
)

const (
	// MintSize is the data size allocated for a mint account.
	MintSize = 82

	// AccountSize is the data size allocated for a token account.
	AccountSize = 165

	// MaxSymbolLength bounds the symbol seed of a derived mint address.
	MaxSymbolLength = 32
)

var (
	ErrDecimalsMismatch = errors.New("token: decimals mismatch")

	// ErrInsufficientFunds is the native shortage error, so one check covers
	// both ledgers.
	ErrInsufficientFunds = system.ErrInsufficientBalance

	ErrMintMismatch       = errors.New("token: account not associated with mint")
	ErrOwnerMismatch      = errors.New("token: owner does not match")
	ErrInvalidMint        = errors.New("token: invalid mint")
	ErrInvalidAccount     = errors.New("token: invalid token account")
	ErrAlreadyInitialized = errors.New("token: account already initialized")
	ErrOverflow           = errors.New("token: amount overflow")
	ErrInvalidSymbol      = errors.New("token: invalid symbol")
)

// Mint describes one fungible token type.
type Mint struct {
	MintAuthority common.Address
	Supply        uint64
	Decimals      uint8
	Initialized   bool
}

// Account is one owner's balance of one token type.
type Account struct {
	Mint        common.Address
	Owner       common.Address // token authority
	Amount      uint64
	Initialized bool
}

// encodeInto RLP-encodes v into a zero-padded buffer of exactly size bytes.
func encodeInto(v interface{}, size int) ([]byte, error) {
	enc, err := rlp.EncodeToBytes(v)
	if err != nil {
		return nil, err
	}
	if len(enc) > size {
		return nil, fmt.Errorf("token: encoded state %d exceeds %d bytes", len(enc), size)
	}
	buf := make([]byte, size)
	copy(buf, enc)
	return buf, nil
}

// decodeFrom decodes the leading RLP value of data; the zero padding behind
// it is ignored.
func decodeFrom(data []byte, v interface{}) error {
	return rlp.NewStream(bytes.NewReader(data), uint64(len(data))).Decode(v)
}
