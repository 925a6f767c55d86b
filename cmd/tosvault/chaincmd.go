// Copyright 2015 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/tosvault/cmd/utils"
	"github.com/tos-network/tosvault/core"
	"github.com/tos-network/tosvault/core/rawdb"
	"github.com/urfave/cli/v2"
)

var initCommand = &cli.Command{
	Action:    initGenesis,
	Name:      "init",
	Usage:     "Bootstrap and initialize a new ledger",
	ArgsUsage: "<genesisPath>",
	Flags:     []cli.Flag{configFileFlag, utils.DataDirFlag, utils.CacheDatabaseFlag},
	Description: `
The init command initializes a new ledger database in --datadir from the given
genesis file: chain id, rent parameters, funded accounts and token mints.

It expects the genesis file as argument and fails if the database already holds
a ledger with a different chain id.`,
}

// readGenesis decodes a JSON genesis file.
func readGenesis(path string) (*core.Genesis, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis file: %w", err)
	}
	defer file.Close()

	genesis := new(core.Genesis)
	dec := json.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err := dec.Decode(genesis); err != nil {
		return nil, fmt.Errorf("invalid genesis file: %w", err)
	}
	return genesis, nil
}

// initGenesis will initialise the given JSON format genesis file and writes it as
// the zero'd sequence (i.e. genesis) or will fail hard if it can't succeed.
func initGenesis(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		utils.Fatalf("need genesis.json file as the only argument")
	}
	genesisPath := ctx.Args().First()
	if len(genesisPath) == 0 {
		utils.Fatalf("invalid path to genesis file")
	}
	genesis, err := readGenesis(genesisPath)
	if err != nil {
		utils.Fatalf("%v", err)
	}
	cfg := loadBaseConfig(ctx)
	dir := cfg.Node.LedgerDir()
	if dir == "" {
		utils.Fatalf("init needs a data directory (--datadir)")
	}
	db, err := rawdb.NewLevelDBDatabase(dir, cfg.Node.DatabaseCache, cfg.Node.DatabaseHandles, false)
	if err != nil {
		utils.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	config, err := core.SetupGenesis(db, genesis)
	if err != nil {
		utils.Fatalf("Failed to write genesis: %v", err)
	}
	log.Info("Successfully wrote genesis state", "database", dir, "chainid", config.ChainID)
	return nil
}
