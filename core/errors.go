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

package core

import "errors"

// List of transaction rejection errors. A rejected transaction leaves no trace
// in the ledger, unlike a transaction whose action fails.
var (
	// ErrNonceTooLow is returned if the nonce of a transaction is lower than the
	// one present in the local ledger.
	ErrNonceTooLow = errors.New("nonce too low")

	// ErrNonceTooHigh is returned if the nonce of a transaction is higher than the
	// next one expected based on the local ledger.
	ErrNonceTooHigh = errors.New("nonce too high")

	// ErrNonceMax is returned if the nonce of a transaction sender account has
	// maximum allowed value and would become invalid if incremented.
	ErrNonceMax = errors.New("nonce has max value")

	// ErrOversizedData is returned if the data of a transaction is too large.
	ErrOversizedData = errors.New("oversized data")

	// ErrAlreadyKnown is returned if the transaction was already applied.
	ErrAlreadyKnown = errors.New("already known")

	// ErrLedgerClosed is returned by operations on a closed ledger.
	ErrLedgerClosed = errors.New("ledger closed")

	// ErrGenesisMismatch is returned when a stored ledger was created with a
	// different chain config than the one supplied.
	ErrGenesisMismatch = errors.New("genesis mismatch")
)
