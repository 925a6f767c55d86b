// Copyright 2017 The go-ethereum Authors
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

// vaultkey manages key files and drives vaults over the tosvault HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/tos-network/tosvault/cmd/utils"
	"github.com/tos-network/tosvault/internal/flags"
	"github.com/urfave/cli/v2"
)

const (
	defaultKeyfileName = "keyfile.json"
)

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit = ""
var gitDate = ""

var app *cli.App

func init() {
	app = flags.NewApp(gitCommit, gitDate, "a tosvault key manager and vault client")
	app.Commands = []*cli.Command{
		commandGenerate,
		commandAddress,
		commandInspect,
		commandChangePassphrase,
		commandInitialize,
		commandDeposit,
		commandWithdraw,
		commandClose,
		commandLock,
		commandUnlock,
		commandTransfer,
		commandVault,
	}
	app.Flags = utils.LoggingFlags
	app.Before = utils.SetupLogging
}

// Commonly used command line flags.
var (
	passphraseFlag = &cli.StringFlag{
		Name:     "passwordfile",
		Usage:    "the file that contains the password for the keyfile",
		Category: flags.AccountCategory,
	}
	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "output JSON instead of human-readable format",
	}
	keyfileFlag = &cli.StringFlag{
		Name:     "keyfile",
		Usage:    "keyfile of the signing account",
		Value:    defaultKeyfileName,
		Category: flags.AccountCategory,
	}
)

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
