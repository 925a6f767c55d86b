// Copyright 2024 The gtos Authors
// This file is part of the gtos library.
//
// The gtos library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gtos library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gtos library. If not, see <http://www.gnu.org/licenses/>.

package params

import "github.com/tos-network/tosvault/common"

// Well-known identities of the built-in programs. Accounts owned by a program
// can only have their data changed by it.
var (
	// SystemProgramAddress performs native transfers, allocation and
	// deallocation. Plain wallet accounts carry the zero owner.
	SystemProgramAddress = common.HexToAddress("0x0000000000000000000000000000000000000000000000000000000054534f53") // "TOSS"

	// RentSysvarAddress holds the live rent parameters used for minimum reserves.
	RentSysvarAddress = common.HexToAddress("0x0000000000000000000000000000000000000000000000000000000054534f52") // "TOSR"

	// TokenProgramAddress owns mint and token balance accounts.
	TokenProgramAddress = common.HexToAddress("0x0000000000000000000000000000000000000000000000000000000054534f54") // "TOST"

	// AssociatedTokenProgramAddress is the derivation namespace of the canonical
	// per-(owner, mint) token account.
	AssociatedTokenProgramAddress = common.HexToAddress("0x0000000000000000000000000000000000000000000000000000000054534f41") // "TOSA"

	// VaultProgramAddress owns vault records and derives custody accounts.
	VaultProgramAddress = common.HexToAddress("0x0000000000000000000000000000000000000000000000000000000054534f56") // "TOSV"
)

// Derivation tags of the vault program.
var (
	VaultStateTag = []byte("state")
	VaultTag      = []byte("vault")
	MintTag       = []byte("mint")
)
