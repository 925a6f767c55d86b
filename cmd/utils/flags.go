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

// Package utils contains internal helper functions for tosvault commands.
package utils

import (
	"fmt"
	"strings"

	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core"
	"github.com/tos-network/tosvault/internal/flags"
	"github.com/tos-network/tosvault/internal/vaultapi"
	"github.com/tos-network/tosvault/node"
	"github.com/urfave/cli/v2"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	// General settings
	DataDirFlag = &cli.StringFlag{
		Name:     "datadir",
		Usage:    "Data directory for the ledger database",
		Value:    node.DefaultDataDir(),
		Category: flags.LedgerCategory,
	}
	DeveloperFlag = &cli.BoolFlag{
		Name:     "dev",
		Usage:    "Ephemeral in-memory ledger with pre-funded developer accounts",
		Category: flags.LedgerCategory,
	}
	DeveloperFundFlag = &cli.StringFlag{
		Name:     "dev.fund",
		Usage:    "Comma separated addresses funded by the developer genesis",
		Category: flags.LedgerCategory,
	}

	// Performance tuning settings
	CacheDatabaseFlag = &cli.IntFlag{
		Name:     "cache.database",
		Usage:    "Megabytes of memory allocated to the ledger database",
		Value:    node.DefaultConfig.DatabaseCache,
		Category: flags.PerfCategory,
	}

	// HTTP API settings
	HTTPEnabledFlag = &cli.BoolFlag{
		Name:     "http",
		Usage:    "Enable the HTTP API server",
		Value:    true,
		Category: flags.APICategory,
	}
	HTTPListenAddrFlag = &cli.StringFlag{
		Name:     "http.addr",
		Usage:    "HTTP API server listening interface",
		Value:    vaultapi.DefaultConfig.Host,
		Category: flags.APICategory,
	}
	HTTPPortFlag = &cli.IntFlag{
		Name:     "http.port",
		Usage:    "HTTP API server listening port",
		Value:    vaultapi.DefaultConfig.Port,
		Category: flags.APICategory,
	}
	HTTPCORSDomainFlag = &cli.StringFlag{
		Name:     "http.corsdomain",
		Usage:    "Comma separated list of domains from which to accept cross origin requests (browser enforced)",
		Category: flags.APICategory,
	}
	HTTPRateLimitFlag = &cli.Float64Flag{
		Name:     "http.ratelimit",
		Usage:    "Maximum accepted API requests per second (0 = unlimited)",
		Value:    vaultapi.DefaultConfig.RateLimit,
		Category: flags.APICategory,
	}
	HTTPRateBurstFlag = &cli.IntFlag{
		Name:     "http.rateburst",
		Usage:    "Number of API requests accepted in a burst above the rate limit",
		Value:    vaultapi.DefaultConfig.RateBurst,
		Category: flags.APICategory,
	}

	// Logging and debug settings
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: flags.LoggingCategory,
	}
	VModuleFlag = &cli.StringFlag{
		Name:     "vmodule",
		Usage:    "Per-module verbosity: comma-separated list of <pattern>=<level> (e.g. vault/*=5,core=4)",
		Category: flags.LoggingCategory,
	}
	LogJSONFlag = &cli.BoolFlag{
		Name:     "log.json",
		Usage:    "Format logs with JSON",
		Category: flags.LoggingCategory,
	}

	// Endpoint used by client commands
	EndpointFlag = &cli.StringFlag{
		Name:     "endpoint",
		Usage:    "URL of the tosvault HTTP API",
		Value:    "http://" + vaultapi.DefaultConfig.Endpoint(),
		Category: flags.APICategory,
	}
)

// LoggingFlags are shared by all commands.
var LoggingFlags = []cli.Flag{
	VerbosityFlag,
	VModuleFlag,
	LogJSONFlag,
}

// MakeDataDir retrieves the currently requested data directory, terminating
// if none (or the empty string) is specified.
func MakeDataDir(ctx *cli.Context) string {
	if path := ctx.String(DataDirFlag.Name); path != "" {
		return flags.ExpandPath(path)
	}
	Fatalf("Cannot determine default data directory, please set manually (--datadir)")
	return ""
}

// SplitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func SplitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}

// ParseAddresses parses a comma separated address list.
func ParseAddresses(input string) ([]common.Address, error) {
	var addrs []common.Address
	for _, s := range SplitAndTrim(input) {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		addrs = append(addrs, common.HexToAddress(s))
	}
	return addrs, nil
}

// setHTTP applies the HTTP API flags to the config.
func setHTTP(ctx *cli.Context, cfg *vaultapi.Config) {
	if ctx.IsSet(HTTPEnabledFlag.Name) && !ctx.Bool(HTTPEnabledFlag.Name) {
		cfg.Host = ""
		return
	}
	if ctx.IsSet(HTTPListenAddrFlag.Name) {
		cfg.Host = ctx.String(HTTPListenAddrFlag.Name)
	}
	if ctx.IsSet(HTTPPortFlag.Name) {
		cfg.Port = ctx.Int(HTTPPortFlag.Name)
	}
	if ctx.IsSet(HTTPCORSDomainFlag.Name) {
		cfg.CorsOrigins = SplitAndTrim(ctx.String(HTTPCORSDomainFlag.Name))
	}
	if ctx.IsSet(HTTPRateLimitFlag.Name) {
		cfg.RateLimit = ctx.Float64(HTTPRateLimitFlag.Name)
	}
	if ctx.IsSet(HTTPRateBurstFlag.Name) {
		cfg.RateBurst = ctx.Int(HTTPRateBurstFlag.Name)
	}
}

// SetNodeConfig applies node-related command line flags to the config.
func SetNodeConfig(ctx *cli.Context, cfg *node.Config) {
	setHTTP(ctx, &cfg.HTTP)

	switch {
	case ctx.IsSet(DataDirFlag.Name):
		cfg.DataDir = MakeDataDir(ctx)
	case ctx.Bool(DeveloperFlag.Name):
		cfg.DataDir = "" // unless explicitly requested, use memory databases
	}
	if ctx.IsSet(CacheDatabaseFlag.Name) {
		cfg.DatabaseCache = ctx.Int(CacheDatabaseFlag.Name)
	}
	if ctx.Bool(DeveloperFlag.Name) {
		funded, err := ParseAddresses(ctx.String(DeveloperFundFlag.Name))
		if err != nil {
			Fatalf("Option %q: %v", DeveloperFundFlag.Name, err)
		}
		cfg.Genesis = core.DeveloperGenesis(funded...)
	} else if ctx.IsSet(DeveloperFundFlag.Name) {
		Fatalf("Option %q requires --%s", DeveloperFundFlag.Name, DeveloperFlag.Name)
	}
}

// CheckExclusive verifies that only a single instance of the provided flags was
// set by the user. Each flag might optionally be followed by a string type to
// specialize it further.
func CheckExclusive(ctx *cli.Context, args ...interface{}) {
	set := make([]string, 0, 1)
	for i := 0; i < len(args); i++ {
		// Make sure the next argument is a flag and skip if not set
		flag, ok := args[i].(cli.Flag)
		if !ok {
			panic(fmt.Sprintf("invalid argument, not cli.Flag type: %T", args[i]))
		}
		// Check if next arg extends current and expand its name if so
		name := flag.Names()[0]

		if i+1 < len(args) {
			switch option := args[i+1].(type) {
			case string:
				// Extended flag check, make sure value set doesn't conflict with passed in option
				if ctx.String(flag.Names()[0]) == option {
					name += "=" + option
					set = append(set, "--"+name)
				}
				// shift arguments and continue
				i++
				continue

			case cli.Flag:
			default:
				panic(fmt.Sprintf("invalid argument, not cli.Flag or string extension: %T", args[i+1]))
			}
		}
		// Mark the flag if it's set
		if ctx.IsSet(flag.Names()[0]) {
			set = append(set, "--"+name)
		}
	}
	if len(set) > 1 {
		Fatalf("Flags %v can't be used at the same time", strings.Join(set, ", "))
	}
}
