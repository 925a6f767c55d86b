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

// Package state provides a caching layer atop the ledger account store.
package state

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/rawdb"
	"github.com/tos-network/tosvault/core/types"
	"github.com/tos-network/tosvault/tosdb"
)

type revision struct {
	id           int
	journalIndex int
}

// StateDB structs within the ledger are used to store anything
// within the account index. StateDBs take care of caching and storing
// nested states. It's the general query interface to retrieve:
// * Accounts
// * Program-owned account data
// * Program storage slots
type StateDB struct {
	db *Database

	// This map holds 'live' objects, which will get modified while processing a state transition.
	stateObjects map[common.Address]*stateObject

	// Accounts finalised since the last commit.
	stateObjectsPending mapset.Set

	// Journal of state modifications. This is the backbone of
	// Snapshot and RevertToSnapshot.
	journal        *journal
	validRevisions []revision
	nextRevisionId int
}

// New creates a new state on top of the given database.
func New(db *Database) (*StateDB, error) {
	if db == nil {
		return nil, fmt.Errorf("state: nil database")
	}
	return &StateDB{
		db:                  db,
		stateObjects:        make(map[common.Address]*stateObject),
		stateObjectsPending: mapset.NewThreadUnsafeSet(),
		journal:             newJournal(),
	}, nil
}

// Database retrieves the low level database supporting the state.
func (s *StateDB) Database() *Database {
	return s.db
}

// Exist reports whether the given account address exists in the state.
// Notably this also returns true for deleted accounts.
func (s *StateDB) Exist(addr common.Address) bool {
	return s.getStateObject(addr) != nil
}

// Empty returns whether the state object is either non-existent
// or empty according to the empty definition (balance = nonce = data = 0).
func (s *StateDB) Empty(addr common.Address) bool {
	so := s.getStateObject(addr)
	return so == nil || so.empty()
}

// GetBalance retrieves the balance from the given address or 0 if object not found.
func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return new(uint256.Int).Set(stateObject.Balance())
	}
	return new(uint256.Int)
}

// GetNonce retrieves the nonce from the given address or 0 if object not found.
func (s *StateDB) GetNonce(addr common.Address) uint64 {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return stateObject.Nonce()
	}
	return 0
}

// GetOwner retrieves the owning program of the given address.
func (s *StateDB) GetOwner(addr common.Address) common.Address {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return stateObject.Owner()
	}
	return common.Address{}
}

// GetData retrieves a copy of the account data of the given address.
func (s *StateDB) GetData(addr common.Address) []byte {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return common.CopyBytes(stateObject.Data())
	}
	return nil
}

// GetState retrieves a value from the given account's storage.
func (s *StateDB) GetState(addr common.Address, hash common.Hash) common.Hash {
	stateObject := s.getStateObject(addr)
	if stateObject != nil {
		return stateObject.GetState(hash)
	}
	return common.Hash{}
}

// GetAccount returns a detached copy of the account at addr, or nil.
func (s *StateDB) GetAccount(addr common.Address) *types.StateAccount {
	stateObject := s.getStateObject(addr)
	if stateObject == nil {
		return nil
	}
	return stateObject.data.Copy()
}

/*
 * SETTERS
 */

// AddBalance adds amount to the account associated with addr.
func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int) {
	stateObject := s.GetOrNewStateObject(addr)
	if stateObject != nil {
		stateObject.AddBalance(amount)
	}
}

// SubBalance subtracts amount from the account associated with addr.
func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int) {
	stateObject := s.GetOrNewStateObject(addr)
	if stateObject != nil {
		stateObject.SubBalance(amount)
	}
}

func (s *StateDB) SetBalance(addr common.Address, amount *uint256.Int) {
	stateObject := s.GetOrNewStateObject(addr)
	if stateObject != nil {
		stateObject.SetBalance(new(uint256.Int).Set(amount))
	}
}

func (s *StateDB) SetNonce(addr common.Address, nonce uint64) {
	stateObject := s.GetOrNewStateObject(addr)
	if stateObject != nil {
		stateObject.SetNonce(nonce)
	}
}

func (s *StateDB) SetOwner(addr common.Address, owner common.Address) {
	stateObject := s.GetOrNewStateObject(addr)
	if stateObject != nil {
		stateObject.SetOwner(owner)
	}
}

func (s *StateDB) SetData(addr common.Address, data []byte) {
	stateObject := s.GetOrNewStateObject(addr)
	if stateObject != nil {
		stateObject.SetData(data)
	}
}

func (s *StateDB) SetState(addr common.Address, key, value common.Hash) {
	stateObject := s.GetOrNewStateObject(addr)
	if stateObject != nil {
		stateObject.SetState(key, value)
	}
}

// DeleteAccount marks the given account as removed. Its balance, data and
// storage are cleared on commit; the change can be reverted until then.
func (s *StateDB) DeleteAccount(addr common.Address) {
	stateObject := s.getStateObject(addr)
	if stateObject == nil {
		return
	}
	s.journal.append(deleteAccountChange{
		account:     &addr,
		prevdeleted: stateObject.deleted,
		prev:        *stateObject.data.Copy(),
	})
	stateObject.markDeleted()
	stateObject.data = *types.NewEmptyStateAccount()
}

//
// Setting, updating & deleting state object methods.
//

// getStateObject retrieves a state object given by the address, returning nil if
// the object is not found or was deleted in this execution context.
func (s *StateDB) getStateObject(addr common.Address) *stateObject {
	if obj := s.getDeletedStateObject(addr); obj != nil && !obj.deleted {
		return obj
	}
	return nil
}

// getDeletedStateObject is similar to getStateObject, but instead of returning
// nil for a deleted state object, it returns the actual object with the deleted
// flag set.
func (s *StateDB) getDeletedStateObject(addr common.Address) *stateObject {
	// Prefer live objects if any is available
	if obj := s.stateObjects[addr]; obj != nil {
		return obj
	}
	data := s.db.readAccount(addr)
	if data == nil {
		return nil
	}
	obj := newObject(s, addr, data)
	s.setStateObject(obj)
	return obj
}

func (s *StateDB) setStateObject(object *stateObject) {
	s.stateObjects[object.Address()] = object
}

// GetOrNewStateObject retrieves a state object or create a new state object if nil.
func (s *StateDB) GetOrNewStateObject(addr common.Address) *stateObject {
	stateObject := s.getStateObject(addr)
	if stateObject == nil {
		stateObject, _ = s.createObject(addr)
	}
	return stateObject
}

// createObject creates a new state object. If there is an existing account with
// the given address, it is overwritten and returned as the second return value.
func (s *StateDB) createObject(addr common.Address) (newobj, prev *stateObject) {
	prev = s.getDeletedStateObject(addr)

	newobj = newObject(s, addr, nil)
	if prev == nil {
		s.journal.append(createObjectChange{account: &addr})
	} else {
		newobj.wiped = true
		s.journal.append(resetObjectChange{prev: prev})
	}
	s.setStateObject(newobj)
	if prev != nil && !prev.deleted {
		return newobj, prev
	}
	return newobj, nil
}

// CreateAccount explicitly creates a state object. If a state object with the
// address already exists the balance is carried over to the new account while
// data, owner and storage are reset.
func (s *StateDB) CreateAccount(addr common.Address) {
	newObj, prev := s.createObject(addr)
	if prev != nil {
		newObj.setBalance(new(uint256.Int).Set(prev.data.Balance))
	}
}

// Snapshot returns an identifier for the current revision of the state.
func (s *StateDB) Snapshot() int {
	id := s.nextRevisionId
	s.nextRevisionId++
	s.validRevisions = append(s.validRevisions, revision{id, s.journal.length()})
	return id
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (s *StateDB) RevertToSnapshot(revid int) {
	// Find the snapshot in the stack of valid snapshots.
	idx := sort.Search(len(s.validRevisions), func(i int) bool {
		return s.validRevisions[i].id >= revid
	})
	if idx == len(s.validRevisions) || s.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := s.validRevisions[idx].journalIndex

	// Replay the journal to undo changes and remove invalidated snapshots
	s.journal.revert(s, snapshot)
	s.validRevisions = s.validRevisions[:idx]
}

// Finalise moves every account touched since the last call into the pending
// set and clears the journal. Reverting past a finalise is not possible.
func (s *StateDB) Finalise() {
	for addr := range s.journal.dirties {
		s.stateObjectsPending.Add(addr)
	}
	s.journal = newJournal()
	s.validRevisions = s.validRevisions[:0]
}

// Commit writes the state to the underlying database in a single batch.
func (s *StateDB) Commit() error {
	return s.CommitWith(nil)
}

// CommitWith writes the state and whatever extra writes in one atomic batch.
func (s *StateDB) CommitWith(extra func(batch tosdb.KeyValueWriter)) error {
	s.Finalise()

	disk := s.db.DiskDB()
	batch := disk.NewBatch()

	var updated, deleted int
	for _, item := range s.stateObjectsPending.ToSlice() {
		addr := item.(common.Address)
		obj, exist := s.stateObjects[addr]
		if !exist {
			// Created and reverted before commit.
			continue
		}
		if obj.deleted {
			rawdb.DeleteAccount(batch, addr)
			rawdb.DeleteStorage(disk, batch, addr)
			deleted++
			continue
		}
		if obj.wiped {
			rawdb.DeleteStorage(disk, batch, addr)
		}
		rawdb.WriteAccount(batch, addr, &obj.data)
		for key, value := range obj.dirtyStorage {
			rawdb.WriteStorage(batch, addr, key, value)
		}
		updated++
	}
	if extra != nil {
		extra(batch)
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("state: commit: %w", err)
	}
	for _, item := range s.stateObjectsPending.ToSlice() {
		addr := item.(common.Address)
		s.db.forget(addr)

		obj, exist := s.stateObjects[addr]
		if !exist {
			continue
		}
		if obj.deleted {
			delete(s.stateObjects, addr)
			continue
		}
		for key, value := range obj.dirtyStorage {
			obj.originStorage[key] = value
		}
		obj.dirtyStorage = make(Storage)
		obj.wiped = false
	}
	s.stateObjectsPending.Clear()
	log.Debug("Committed state", "updated", updated, "deleted", deleted)
	return nil
}
