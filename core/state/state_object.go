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

package state

import (
	"github.com/holiman/uint256"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/types"
)

// Storage is a set of slot values keyed by slot hash.
type Storage map[common.Hash]common.Hash

func (s Storage) Copy() Storage {
	cpy := make(Storage, len(s))
	for key, value := range s {
		cpy[key] = value
	}
	return cpy
}

// stateObject represents an account which is being modified.
//
// The usage pattern is as follows:
// First you need to obtain a state object.
// Account values can be accessed and modified through the object.
// Finally, call Commit on the owning StateDB to write the changes to disk.
type stateObject struct {
	db      *StateDB
	address common.Address
	data    types.StateAccount

	originStorage Storage // Storage cache of original entries to dedup rewrites
	dirtyStorage  Storage // Storage entries that have been modified in the current session

	// wiped is set when the account was recreated after a deletion, so no
	// storage may be read through from disk.
	wiped   bool
	deleted bool
}

// empty returns whether the account is considered empty.
func (s *stateObject) empty() bool {
	return s.data.Nonce == 0 && s.data.Balance.IsZero() && len(s.data.Data) == 0 && s.data.Owner == (common.Address{})
}

// newObject creates a state object.
func newObject(db *StateDB, address common.Address, data *types.StateAccount) *stateObject {
	if data == nil {
		data = types.NewEmptyStateAccount()
	}
	if data.Balance == nil {
		data.Balance = new(uint256.Int)
	}
	return &stateObject{
		db:            db,
		address:       address,
		data:          *data,
		originStorage: make(Storage),
		dirtyStorage:  make(Storage),
	}
}

func (s *stateObject) markDeleted() {
	s.deleted = true
}

// GetState retrieves a value from the account storage.
func (s *stateObject) GetState(key common.Hash) common.Hash {
	if value, dirty := s.dirtyStorage[key]; dirty {
		return value
	}
	return s.GetCommittedState(key)
}

// GetCommittedState retrieves a value from the committed account storage.
func (s *stateObject) GetCommittedState(key common.Hash) common.Hash {
	if value, cached := s.originStorage[key]; cached {
		return value
	}
	var value common.Hash
	if !s.wiped {
		value = s.db.db.readStorage(s.address, key)
	}
	s.originStorage[key] = value
	return value
}

// SetState updates a value in account storage.
func (s *stateObject) SetState(key, value common.Hash) {
	prev := s.GetState(key)
	if prev == value {
		return
	}
	s.db.journal.append(storageChange{
		account:  &s.address,
		key:      key,
		prevalue: prev,
	})
	s.setState(key, value)
}

func (s *stateObject) setState(key, value common.Hash) {
	s.dirtyStorage[key] = value
}

// AddBalance adds amount to s's balance.
func (s *stateObject) AddBalance(amount *uint256.Int) {
	if amount.IsZero() {
		return
	}
	s.SetBalance(new(uint256.Int).Add(s.Balance(), amount))
}

// SubBalance removes amount from s's balance.
func (s *stateObject) SubBalance(amount *uint256.Int) {
	if amount.IsZero() {
		return
	}
	s.SetBalance(new(uint256.Int).Sub(s.Balance(), amount))
}

func (s *stateObject) SetBalance(amount *uint256.Int) {
	s.db.journal.append(balanceChange{
		account: &s.address,
		prev:    new(uint256.Int).Set(s.data.Balance),
	})
	s.setBalance(amount)
}

func (s *stateObject) setBalance(amount *uint256.Int) {
	s.data.Balance = amount
}

func (s *stateObject) SetNonce(nonce uint64) {
	s.db.journal.append(nonceChange{
		account: &s.address,
		prev:    s.data.Nonce,
	})
	s.setNonce(nonce)
}

func (s *stateObject) setNonce(nonce uint64) {
	s.data.Nonce = nonce
}

func (s *stateObject) SetOwner(owner common.Address) {
	s.db.journal.append(ownerChange{
		account: &s.address,
		prev:    s.data.Owner,
	})
	s.setOwner(owner)
}

func (s *stateObject) setOwner(owner common.Address) {
	s.data.Owner = owner
}

func (s *stateObject) SetData(data []byte) {
	s.db.journal.append(dataChange{
		account: &s.address,
		prev:    s.data.Data,
	})
	s.setData(common.CopyBytes(data))
}

func (s *stateObject) setData(data []byte) {
	s.data.Data = data
}

func (s *stateObject) Address() common.Address { return s.address }
func (s *stateObject) Balance() *uint256.Int   { return s.data.Balance }
func (s *stateObject) Nonce() uint64           { return s.data.Nonce }
func (s *stateObject) Owner() common.Address   { return s.data.Owner }
func (s *stateObject) Data() []byte            { return s.data.Data }
