// Copyright 2017 The go-ethereum Authors
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

package state

import (
	"github.com/VictoriaMetrics/fastcache"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/rawdb"
	"github.com/tos-network/tosvault/core/types"
	"github.com/tos-network/tosvault/tosdb"
)

// accountCacheSize is the byte size of the clean account cache.
const accountCacheSize = 16 * 1024 * 1024

// Database wraps access to the persistent account store and keeps a cache of
// clean encoded accounts in front of it.
type Database struct {
	disk  tosdb.Database
	clean *fastcache.Cache
}

// NewDatabase creates a backing store for state. The returned database is
// safe for concurrent use, but StateDB instances built on it are not.
func NewDatabase(disk tosdb.Database) *Database {
	return NewDatabaseWithCache(disk, accountCacheSize)
}

// NewDatabaseWithCache creates a backing store with a clean cache of the
// given byte size.
func NewDatabaseWithCache(disk tosdb.Database, cacheSize int) *Database {
	return &Database{
		disk:  disk,
		clean: fastcache.New(cacheSize),
	}
}

// DiskDB returns the underlying key-value store.
func (db *Database) DiskDB() tosdb.Database {
	return db.disk
}

// readAccount loads the account at addr, consulting the clean cache first.
func (db *Database) readAccount(addr common.Address) *types.StateAccount {
	blob, ok := db.clean.HasGet(nil, addr.Bytes())
	if !ok {
		blob = rawdb.ReadAccountRLP(db.disk, addr)
		if len(blob) == 0 {
			return nil
		}
		db.clean.Set(addr.Bytes(), blob)
	}
	acct := new(types.StateAccount)
	if err := rlp.DecodeBytes(blob, acct); err != nil {
		log.Error("Failed to decode state account", "address", addr, "err", err)
		return nil
	}
	if acct.Balance == nil {
		acct.Balance = types.NewEmptyStateAccount().Balance
	}
	return acct
}

// readStorage loads a single storage slot. Slots are not cached.
func (db *Database) readStorage(addr common.Address, slot common.Hash) common.Hash {
	return rawdb.ReadStorage(db.disk, addr, slot)
}

// forget drops addr from the clean cache after its disk entry changed.
func (db *Database) forget(addr common.Address) {
	db.clean.Del(addr.Bytes())
}
