package crypto

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/tos-network/tosvault/common"
	"golang.org/x/crypto/sha3"
)

const (
	// MaxSeeds is the maximum number of seeds, nonce included, accepted by
	// CreateProgramAddress.
	MaxSeeds = 16
	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32
)

var programAddressMarker = []byte("ProgramDerivedAddress")

var (
	ErrMaxSeedLengthExceeded = errors.New("crypto: length of the seed is too long for address generation")
	ErrInvalidSeeds          = errors.New("crypto: provided seeds do not result in a valid address")
	ErrNoViableNonce         = errors.New("crypto: unable to find a viable program address nonce")
)

// IsOnCurve reports whether b decodes as a point on the ed25519 curve. Only
// off-curve addresses can be derived, so no private key exists for them.
func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CreateProgramAddress derives the address owned by program for the given
// seeds. The caller is expected to have appended the nonce as the last seed.
func CreateProgramAddress(seeds [][]byte, program common.Address) (common.Address, error) {
	if len(seeds) > MaxSeeds {
		return common.Address{}, ErrMaxSeedLengthExceeded
	}
	h := sha3.NewLegacyKeccak256()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return common.Address{}, ErrMaxSeedLengthExceeded
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write(programAddressMarker)

	var addr common.Address
	h.Sum(addr[:0])
	if IsOnCurve(addr[:]) {
		return common.Address{}, ErrInvalidSeeds
	}
	return addr, nil
}

// TryFindProgramAddress searches nonces from 255 down to 0 and returns the
// first one whose derivation is off-curve.
func TryFindProgramAddress(seeds [][]byte, program common.Address) (common.Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return common.Address{}, 0, ErrMaxSeedLengthExceeded
	}
	buf := make([][]byte, len(seeds)+1)
	copy(buf, seeds)
	for nonce := 255; nonce >= 0; nonce-- {
		buf[len(seeds)] = []byte{byte(nonce)}
		addr, err := CreateProgramAddress(buf, program)
		switch {
		case err == nil:
			return addr, uint8(nonce), nil
		case !errors.Is(err, ErrInvalidSeeds):
			return common.Address{}, 0, err
		}
	}
	return common.Address{}, 0, ErrNoViableNonce
}

// FindProgramAddress is TryFindProgramAddress for static seed layouts. Running
// out of nonces is a configuration error and panics.
func FindProgramAddress(seeds [][]byte, program common.Address) (common.Address, uint8) {
	addr, nonce, err := TryFindProgramAddress(seeds, program)
	if err != nil {
		panic(fmt.Sprintf("crypto: derive program address: %v", err))
	}
	return addr, nonce
}

// SeedProof is the capability to act for a derived address: presenting the
// seeds and nonce that reproduce it. It authorizes exactly one address.
type SeedProof struct {
	Seeds   [][]byte
	Nonce   uint8
	Program common.Address
}

// Address re-derives the address the proof stands for.
func (p SeedProof) Address() (common.Address, error) {
	seeds := make([][]byte, len(p.Seeds), len(p.Seeds)+1)
	copy(seeds, p.Seeds)
	return CreateProgramAddress(append(seeds, []byte{p.Nonce}), p.Program)
}

// Authorizes reports whether the proof reproduces addr.
func (p SeedProof) Authorizes(addr common.Address) bool {
	derived, err := p.Address()
	return err == nil && derived == addr
}
