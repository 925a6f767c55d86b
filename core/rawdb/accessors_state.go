package rawdb

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/types"
	"github.com/tos-network/tosvault/tosdb"
)

// ReadAccountRLP retrieves the encoded account of the provided address.
func ReadAccountRLP(db tosdb.KeyValueReader, addr common.Address) []byte {
	data, _ := db.Get(accountKey(addr))
	return data
}

// ReadAccount retrieves the account of the provided address, or nil if the
// account does not exist.
func ReadAccount(db tosdb.KeyValueReader, addr common.Address) *types.StateAccount {
	data := ReadAccountRLP(db, addr)
	if len(data) == 0 {
		return nil
	}
	acct := new(types.StateAccount)
	if err := rlp.DecodeBytes(data, acct); err != nil {
		log.Error("Invalid account RLP", "address", addr, "err", err)
		return nil
	}
	return acct
}

// WriteAccount stores the account of the provided address.
func WriteAccount(db tosdb.KeyValueWriter, addr common.Address, acct *types.StateAccount) {
	data, err := rlp.EncodeToBytes(acct)
	if err != nil {
		log.Crit("Failed to RLP encode account", "err", err)
	}
	if err := db.Put(accountKey(addr), data); err != nil {
		log.Crit("Failed to store account", "err", err)
	}
}

// DeleteAccount removes the account of the provided address.
func DeleteAccount(db tosdb.KeyValueWriter, addr common.Address) {
	if err := db.Delete(accountKey(addr)); err != nil {
		log.Crit("Failed to delete account", "err", err)
	}
}

// ReadStorage retrieves a storage slot of the provided account. Missing slots
// read as the zero hash.
func ReadStorage(db tosdb.KeyValueReader, addr common.Address, slot common.Hash) common.Hash {
	data, _ := db.Get(storageKey(addr, slot))
	return common.BytesToHash(data)
}

// WriteStorage stores a storage slot. Zero values delete the slot.
func WriteStorage(db tosdb.KeyValueWriter, addr common.Address, slot, value common.Hash) {
	if value == (common.Hash{}) {
		if err := db.Delete(storageKey(addr, slot)); err != nil {
			log.Crit("Failed to delete storage slot", "err", err)
		}
		return
	}
	if err := db.Put(storageKey(addr, slot), value.Bytes()); err != nil {
		log.Crit("Failed to store storage slot", "err", err)
	}
}

// DeleteStorage wipes every persisted storage slot of the provided account.
func DeleteStorage(db tosdb.KeyValueStore, batch tosdb.KeyValueWriter, addr common.Address) {
	it := db.NewIterator(storagePrefixKey(addr), nil)
	defer it.Release()

	for it.Next() {
		if err := batch.Delete(common.CopyBytes(it.Key())); err != nil {
			log.Crit("Failed to delete storage slot", "err", err)
		}
	}
}
