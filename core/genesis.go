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

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/rawdb"
	"github.com/tos-network/tosvault/core/state"
	"github.com/tos-network/tosvault/crypto"
	"github.com/tos-network/tosvault/params"
	"github.com/tos-network/tosvault/system"
	"github.com/tos-network/tosvault/token"
	"github.com/tos-network/tosvault/tosdb"
)

// Genesis specifies the initial state of a ledger.
type Genesis struct {
	Config *params.ChainConfig
	Rent   system.Rent
	Alloc  []GenesisAccount `toml:",omitempty"`
	Mints  []GenesisMint    `toml:",omitempty"`
}

// GenesisAccount is an account in the state of the genesis ledger.
type GenesisAccount struct {
	Address common.Address
	Balance uint64
}

// GenesisMint is a token type created at genesis, with initial holders.
type GenesisMint struct {
	Authority common.Address
	Symbol    string
	Decimals  uint8
	Holders   []GenesisHolder `toml:",omitempty"`
}

// GenesisHolder credits Amount tokens to Owner's associated account.
type GenesisHolder struct {
	Owner  common.Address
	Amount uint64
}

// DefaultGenesis returns the main ledger genesis.
func DefaultGenesis() *Genesis {
	return &Genesis{
		Config: params.MainnetChainConfig,
		Rent:   system.DefaultRent(),
	}
}

// DeveloperGenesis returns a test ledger genesis funding each of the given
// accounts with 1000 TOS.
func DeveloperGenesis(funded ...common.Address) *Genesis {
	g := &Genesis{
		Config: params.TestChainConfig,
		Rent:   system.DefaultRent(),
	}
	for _, addr := range funded {
		g.Alloc = append(g.Alloc, GenesisAccount{Address: addr, Balance: 1000 * params.TOS})
	}
	return g
}

// ToState writes the genesis allocation into statedb.
func (g *Genesis) ToState(statedb *state.StateDB) error {
	if err := system.SetRent(statedb, g.Rent); err != nil {
		return err
	}
	for _, acct := range g.Alloc {
		statedb.AddBalance(acct.Address, uint256.NewInt(acct.Balance))
	}
	// Genesis accounts are paid for by the system program, which is credited
	// exactly what each allocation costs.
	payer := params.SystemProgramAddress
	for _, m := range g.Mints {
		addr, nonce, err := token.MintAddress(m.Authority, m.Symbol)
		if err != nil {
			return err
		}
		statedb.AddBalance(payer, uint256.NewInt(system.MinimumBalance(statedb, token.MintSize)))
		auth := system.Authorities{
			system.Signer(payer),
			crypto.SeedProof{Seeds: token.MintSeeds(m.Authority, m.Symbol), Nonce: nonce, Program: params.TokenProgramAddress},
		}
		if err := token.CreateMint(statedb, payer, auth, addr, m.Authority, m.Decimals); err != nil {
			return fmt.Errorf("genesis mint %s: %w", m.Symbol, err)
		}
		for _, h := range m.Holders {
			statedb.AddBalance(payer, uint256.NewInt(system.MinimumBalance(statedb, token.AccountSize)))
			wallet, err := token.CreateAssociatedAccount(statedb, payer, system.Signer(payer), h.Owner, addr)
			if err != nil {
				return fmt.Errorf("genesis holder %s of %s: %w", h.Owner.TerminalString(), m.Symbol, err)
			}
			if err := token.MintTo(statedb, system.Signer(m.Authority), addr, wallet, h.Amount); err != nil {
				return fmt.Errorf("genesis holder %s of %s: %w", h.Owner.TerminalString(), m.Symbol, err)
			}
		}
		log.Info("Created genesis mint", "symbol", m.Symbol, "mint", addr, "decimals", m.Decimals, "holders", len(m.Holders))
	}
	return nil
}

// Commit writes the genesis state and config to db.
func (g *Genesis) Commit(db tosdb.Database) error {
	if g.Config == nil {
		return fmt.Errorf("genesis has no chain config")
	}
	statedb, err := state.New(state.NewDatabase(db))
	if err != nil {
		return err
	}
	if err := g.ToState(statedb); err != nil {
		return err
	}
	return statedb.CommitWith(func(batch tosdb.KeyValueWriter) {
		rawdb.WriteChainConfig(batch, g.Config)
		rawdb.WriteHeadSequence(batch, 0)
	})
}

// SetupGenesis writes genesis into an empty db, or returns the config stored
// in a db that already holds a ledger. A nil genesis selects DefaultGenesis.
func SetupGenesis(db tosdb.Database, genesis *Genesis) (*params.ChainConfig, error) {
	if stored := rawdb.ReadChainConfig(db); stored != nil {
		if _, ok := rawdb.ReadHeadSequence(db); ok {
			if genesis != nil && genesis.Config != nil && genesis.Config.ChainID != stored.ChainID {
				return stored, fmt.Errorf("%w: stored chain id %d, have %d", ErrGenesisMismatch, stored.ChainID, genesis.Config.ChainID)
			}
			return stored, nil
		}
	}
	if genesis == nil {
		log.Info("Writing default genesis")
		genesis = DefaultGenesis()
	} else {
		if genesis.Config == nil {
			return nil, fmt.Errorf("genesis has no chain config")
		}
		log.Info("Writing custom genesis", "chainid", genesis.Config.ChainID, "alloc", len(genesis.Alloc), "mints", len(genesis.Mints))
	}
	if err := genesis.Commit(db); err != nil {
		return nil, err
	}
	return genesis.Config, nil
}
