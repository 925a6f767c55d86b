// Copyright 2014 The go-ethereum Authors
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

// tosvault is the custody ledger daemon.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/tosvault/cmd/utils"
	"github.com/tos-network/tosvault/internal/flags"
	"github.com/urfave/cli/v2"
)

const (
	clientIdentifier = "tosvault" // Client identifier to advertise over the network
)

var (
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app = flags.NewApp(gitCommit, gitDate, "the tosvault custody ledger")

	nodeFlags = []cli.Flag{
		configFileFlag,
		utils.DataDirFlag,
		utils.DeveloperFlag,
		utils.DeveloperFundFlag,
		utils.CacheDatabaseFlag,
	}

	httpFlags = []cli.Flag{
		utils.HTTPEnabledFlag,
		utils.HTTPListenAddrFlag,
		utils.HTTPPortFlag,
		utils.HTTPCORSDomainFlag,
		utils.HTTPRateLimitFlag,
		utils.HTTPRateBurstFlag,
	}

	runCommand = &cli.Command{
		Action: runNode,
		Name:   "run",
		Usage:  "Run the ledger and its HTTP API until interrupted",
		Flags:  flags.Merge(nodeFlags, httpFlags),
		Description: `
Opens the ledger in --datadir (creating it from the configured genesis when
empty) and serves the HTTP API. This is also the default when no command is
given.`,
	}
)

func init() {
	// Initialize the CLI app and start tosvault
	app.Action = runNode
	app.Commands = []*cli.Command{
		runCommand,
		initCommand,
		dumpConfigCommand,
		versionCommand,
		licenseCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	app.Flags = flags.Merge(nodeFlags, httpFlags, utils.LoggingFlags)
	app.Before = utils.SetupLogging
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runNode is the main entry point: it opens the ledger, starts the HTTP API
// and blocks until the node is shut down.
func runNode(ctx *cli.Context) error {
	if args := ctx.Args().Slice(); len(args) > 0 {
		return fmt.Errorf("invalid command: %q", args[0])
	}
	stack, cfg := makeConfigNode(ctx)
	defer stack.Close()

	utils.StartNode(stack)
	log.Info("Serving custody ledger", "datadir", cfg.Node.DataDir, "http", stack.HTTPEndpoint())
	stack.Wait()
	return nil
}
