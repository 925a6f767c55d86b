package crypto

import (
	"encoding/binary"

	lru "github.com/hashicorp/golang-lru"
	"github.com/tos-network/tosvault/common"
)

const defaultAddressCacheSize = 4096

type derivedAddress struct {
	addr  common.Address
	nonce uint8
}

// AddressCache memoizes FindProgramAddress. Derivation is pure, so cached
// results are indistinguishable from fresh ones.
type AddressCache struct {
	cache *lru.ARCCache // derivation key -> derivedAddress
}

// NewAddressCache creates a cache holding up to size derivations. A
// non-positive size selects the default.
func NewAddressCache(size int) *AddressCache {
	if size <= 0 {
		size = defaultAddressCacheSize
	}
	cache, _ := lru.NewARC(size)
	return &AddressCache{cache: cache}
}

// Find returns the address and nonce for seeds under program.
func (c *AddressCache) Find(seeds [][]byte, program common.Address) (common.Address, uint8) {
	key := derivationKey(seeds, program)
	if v, ok := c.cache.Get(key); ok {
		d := v.(derivedAddress)
		return d.addr, d.nonce
	}
	addr, nonce := FindProgramAddress(seeds, program)
	c.cache.Add(key, derivedAddress{addr: addr, nonce: nonce})
	return addr, nonce
}

// Len returns the number of cached derivations.
func (c *AddressCache) Len() int { return c.cache.Len() }

func derivationKey(seeds [][]byte, program common.Address) string {
	size := common.AddressLength
	for _, s := range seeds {
		size += 1 + len(s)
	}
	buf := make([]byte, 0, size)
	for _, s := range seeds {
		buf = binary.AppendUvarint(buf, uint64(len(s)))
		buf = append(buf, s...)
	}
	buf = append(buf, program[:]...)
	return string(buf)
}
