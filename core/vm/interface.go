// Copyright 2016 The go-ethereum Authors
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

// Package vm defines the state surface available to system-action handlers.
// There is no interpreter; programs are native Go handlers.
package vm

import (
	"github.com/holiman/uint256"
	"github.com/tos-network/tosvault/common"
)

// StateDB is a ledger database for full state querying.
type StateDB interface {
	CreateAccount(common.Address)

	SubBalance(common.Address, *uint256.Int)
	AddBalance(common.Address, *uint256.Int)
	GetBalance(common.Address) *uint256.Int

	GetNonce(common.Address) uint64
	SetNonce(common.Address, uint64)

	// GetOwner returns the program allowed to modify the account data.
	GetOwner(common.Address) common.Address
	SetOwner(common.Address, common.Address)

	GetData(common.Address) []byte
	SetData(common.Address, []byte)

	GetState(common.Address, common.Hash) common.Hash
	SetState(common.Address, common.Hash, common.Hash)

	// Exist reports whether the given account exists in state.
	// Notably this should also return true for deleted accounts.
	Exist(common.Address) bool
	// Empty returns whether the given account is empty. Empty
	// is defined as (balance = nonce = data = 0).
	Empty(common.Address) bool

	// DeleteAccount marks the account as removed. Its balance must already
	// have been moved out by the caller.
	DeleteAccount(common.Address)

	RevertToSnapshot(int)
	Snapshot() int
}
