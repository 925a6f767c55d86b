package rawdb

import (
	"encoding/binary"

	"github.com/tos-network/tosvault/common"
)

// The fields below define the low level database schema prefixing.
var (
	// headSequenceKey tracks the number of the latest applied transaction.
	headSequenceKey = []byte("LastSequence")

	// chainConfigKey stores the chain config written at genesis.
	chainConfigKey = []byte("ChainConfig")

	accountPrefix = []byte("a") // accountPrefix + address -> rlp(types.StateAccount)
	storagePrefix = []byte("o") // storagePrefix + address + slot -> slot value
	receiptPrefix = []byte("r") // receiptPrefix + tx hash -> rlp(types.Receipt)
	txSeqPrefix   = []byte("q") // txSeqPrefix + sequence (uint64 big endian) -> tx hash
)

// encodeSequence encodes a sequence number as big endian uint64
func encodeSequence(number uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, number)
	return enc
}

// accountKey = accountPrefix + address
func accountKey(addr common.Address) []byte {
	return append(append([]byte{}, accountPrefix...), addr.Bytes()...)
}

// storageKey = storagePrefix + address + slot
func storageKey(addr common.Address, slot common.Hash) []byte {
	buf := make([]byte, 0, len(storagePrefix)+common.AddressLength+common.HashLength)
	buf = append(buf, storagePrefix...)
	buf = append(buf, addr.Bytes()...)
	return append(buf, slot.Bytes()...)
}

// storagePrefixKey = storagePrefix + address
func storagePrefixKey(addr common.Address) []byte {
	return append(append([]byte{}, storagePrefix...), addr.Bytes()...)
}

// receiptKey = receiptPrefix + hash
func receiptKey(hash common.Hash) []byte {
	return append(append([]byte{}, receiptPrefix...), hash.Bytes()...)
}

// txSequenceKey = txSeqPrefix + sequence
func txSequenceKey(seq uint64) []byte {
	return append(append([]byte{}, txSeqPrefix...), encodeSequence(seq)...)
}
