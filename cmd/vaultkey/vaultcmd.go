package main

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"github.com/tos-network/tosvault/accounts/keystore"
	"github.com/tos-network/tosvault/cmd/utils"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/types"
	"github.com/tos-network/tosvault/params"
	"github.com/tos-network/tosvault/vault"
	"github.com/tos-network/tosvault/vaultclient"
	"github.com/urfave/cli/v2"
)

var (
	decimalsFlag = &cli.IntFlag{
		Name:  "decimals",
		Usage: "token precision to assert (default: the mint's own precision)",
		Value: -1,
	}
	mintFlag = &cli.StringSliceFlag{
		Name:  "mint",
		Usage: "token mint whose custody is reported (repeatable)",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "dump the raw vault view",
	}
)

// signingFlags are shared by every command that sends a transaction.
var signingFlags = []cli.Flag{
	keyfileFlag,
	passphraseFlag,
	utils.EndpointFlag,
	jsonFlag,
}

var (
	commandInitialize = &cli.Command{
		Name:  "initialize",
		Usage: "create the vault of the keyfile account",
		Description: `
Creates the vault record and funds its custody account with the rent reserve,
both paid from the keyfile account.`,
		Flags: signingFlags,
		Action: func(ctx *cli.Context) error {
			return sendAction(ctx, func(c *vaultclient.Client, s vaultclient.Signer) (*types.Receipt, error) {
				return c.Initialize(ctx.Context, s)
			})
		},
	}
	commandDeposit = &cli.Command{
		Name:      "deposit",
		Usage:     "move native value into the vault",
		ArgsUsage: "<amount>",
		Description: `
Amounts are lamports, or TOS when suffixed with "tos" (e.g. 1.5tos).`,
		Flags: signingFlags,
		Action: func(ctx *cli.Context) error {
			amount, err := lamportsArg(ctx, 0)
			if err != nil {
				return err
			}
			return sendAction(ctx, func(c *vaultclient.Client, s vaultclient.Signer) (*types.Receipt, error) {
				return c.Deposit(ctx.Context, s, amount)
			})
		},
	}
	commandWithdraw = &cli.Command{
		Name:      "withdraw",
		Usage:     "move native value out of the vault",
		ArgsUsage: "<amount>",
		Description: `
The vault keeps its rent reserve; withdrawing into it fails. Amounts are
lamports, or TOS when suffixed with "tos".`,
		Flags: signingFlags,
		Action: func(ctx *cli.Context) error {
			amount, err := lamportsArg(ctx, 0)
			if err != nil {
				return err
			}
			return sendAction(ctx, func(c *vaultclient.Client, s vaultclient.Signer) (*types.Receipt, error) {
				return c.Withdraw(ctx.Context, s, amount)
			})
		},
	}
	commandClose = &cli.Command{
		Name:  "close",
		Usage: "close the vault of the keyfile account",
		Description: `
Destroys the vault record and returns its rent to the owner. Value left in the
custody account stays there; withdraw it first.`,
		Flags: signingFlags,
		Action: func(ctx *cli.Context) error {
			return sendAction(ctx, func(c *vaultclient.Client, s vaultclient.Signer) (*types.Receipt, error) {
				return c.CloseVault(ctx.Context, s)
			})
		},
	}
	commandLock = &cli.Command{
		Name:      "lock",
		Usage:     "move tokens into token custody",
		ArgsUsage: "<mint> <amount>",
		Flags:     append([]cli.Flag{decimalsFlag}, signingFlags...),
		Action: func(ctx *cli.Context) error {
			return tokenAction(ctx, func(c *vaultclient.Client, s vaultclient.Signer, mint common.Address, amount uint64, decimals uint8) (*types.Receipt, error) {
				return c.Lock(ctx.Context, s, mint, amount, decimals)
			})
		},
	}
	commandUnlock = &cli.Command{
		Name:      "unlock",
		Usage:     "move tokens out of token custody",
		ArgsUsage: "<mint> <amount>",
		Flags:     append([]cli.Flag{decimalsFlag}, signingFlags...),
		Action: func(ctx *cli.Context) error {
			return tokenAction(ctx, func(c *vaultclient.Client, s vaultclient.Signer, mint common.Address, amount uint64, decimals uint8) (*types.Receipt, error) {
				return c.Unlock(ctx.Context, s, mint, amount, decimals)
			})
		},
	}
	commandTransfer = &cli.Command{
		Name:      "transfer",
		Usage:     "send native value to another account",
		ArgsUsage: "<to> <amount>",
		Flags:     signingFlags,
		Action: func(ctx *cli.Context) error {
			to, err := addressArg(ctx, 0)
			if err != nil {
				return err
			}
			amount, err := lamportsArg(ctx, 1)
			if err != nil {
				return err
			}
			return sendAction(ctx, func(c *vaultclient.Client, s vaultclient.Signer) (*types.Receipt, error) {
				return c.Transfer(ctx.Context, s, to, amount)
			})
		},
	}
	commandVault = &cli.Command{
		Name:      "vault",
		Usage:     "show the state of a vault",
		ArgsUsage: "[ <owner> ]",
		Description: `
Prints the native vault of owner (default: the keyfile account) and, for each
--mint, its token custody.`,
		Flags:  []cli.Flag{keyfileFlag, utils.EndpointFlag, jsonFlag, mintFlag, debugFlag},
		Action: showVault,
	}
)

// sendAction signs and submits one transaction with the keyfile account and
// reports its receipt. Failed actions are returned as errors.
func sendAction(ctx *cli.Context, send func(*vaultclient.Client, vaultclient.Signer) (*types.Receipt, error)) error {
	client, err := dialEndpoint(ctx)
	if err != nil {
		return err
	}
	signer, err := keySigner(loadKey(ctx, ctx.String(keyfileFlag.Name)))
	if err != nil {
		return err
	}
	receipt, err := send(client, signer)
	if err != nil {
		return err
	}
	if ctx.Bool(jsonFlag.Name) {
		mustPrintJSON(receipt)
	} else {
		fmt.Println("Transaction:", receipt.TxHash.Hex())
		fmt.Println("Sequence:   ", receipt.Sequence)
		fmt.Println("Action:     ", receipt.Action)
	}
	if !receipt.Succeeded() {
		return fmt.Errorf("%s failed (%s): %s", receipt.Action, receipt.ErrorKind, receipt.Error)
	}
	return nil
}

// tokenAction parses <mint> <amount>, resolves the precision and submits.
func tokenAction(ctx *cli.Context, send func(*vaultclient.Client, vaultclient.Signer, common.Address, uint64, uint8) (*types.Receipt, error)) error {
	mint, err := addressArg(ctx, 0)
	if err != nil {
		return err
	}
	amount, err := uintArg(ctx, 1)
	if err != nil {
		return err
	}
	client, err := dialEndpoint(ctx)
	if err != nil {
		return err
	}
	decimals, err := resolveDecimals(ctx, client, mint)
	if err != nil {
		return err
	}
	return sendAction(ctx, func(c *vaultclient.Client, s vaultclient.Signer) (*types.Receipt, error) {
		return send(c, s, mint, amount, decimals)
	})
}

func resolveDecimals(ctx *cli.Context, client *vaultclient.Client, mint common.Address) (uint8, error) {
	if d := ctx.Int(decimalsFlag.Name); d >= 0 {
		if d > 255 {
			return 0, fmt.Errorf("decimals %d out of range", d)
		}
		return uint8(d), nil
	}
	m, err := client.Mint(ctx.Context, mint)
	if err != nil {
		return 0, fmt.Errorf("mint %s: %w", mint.TerminalString(), err)
	}
	return m.Decimals, nil
}

func showVault(ctx *cli.Context) error {
	var owner common.Address
	if ctx.NArg() > 0 {
		var err error
		if owner, err = addressArg(ctx, 0); err != nil {
			return err
		}
	} else {
		keyjson, err := os.ReadFile(ctx.String(keyfileFlag.Name))
		if err != nil {
			return fmt.Errorf("no owner given and keyfile unreadable: %w", err)
		}
		if owner, err = keystore.KeyFileAddress(keyjson); err != nil {
			return err
		}
	}
	client, err := dialEndpoint(ctx)
	if err != nil {
		return err
	}
	info, err := client.Vault(ctx.Context, owner)
	if err != nil {
		return err
	}
	var tokens []*vault.TokenInfo
	for _, s := range ctx.StringSlice(mintFlag.Name) {
		if !common.IsHexAddress(s) {
			return fmt.Errorf("invalid mint %q", s)
		}
		ti, err := client.VaultToken(ctx.Context, owner, common.HexToAddress(s))
		if err != nil {
			return err
		}
		tokens = append(tokens, ti)
	}
	switch {
	case ctx.Bool(debugFlag.Name):
		spew.Fdump(os.Stdout, info, tokens)
	case ctx.Bool(jsonFlag.Name):
		mustPrintJSON(struct {
			Vault  *vault.Info        `json:"vault"`
			Tokens []*vault.TokenInfo `json:"tokens,omitempty"`
		}{info, tokens})
	default:
		printVault(os.Stdout, info, tokens)
	}
	return nil
}

// printVault renders a vault and its token custody as tables.
func printVault(w io.Writer, info *vault.Info, tokens []*vault.TokenInfo) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk([][]string{
		{"Owner", info.Owner.Hex()},
		{"Status", info.Status.String()},
		{"Record", fmt.Sprintf("%s (nonce %d)", info.Record.Hex(), info.StateNonce)},
		{"Custody", fmt.Sprintf("%s (nonce %d)", info.Custody.Hex(), info.VaultNonce)},
		{"Balance", formatLamports(info.Balance)},
		{"Reserve", formatLamports(info.Reserve)},
		{"Withdrawable", formatLamports(info.Withdrawable)},
	})
	table.Render()

	if len(tokens) == 0 {
		return
	}
	fmt.Fprintln(w)
	table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Mint", "Custody", "Locked", "Free", "Decimals"})
	for _, t := range tokens {
		locked := "-"
		if t.Exists {
			locked = strconv.FormatUint(t.Locked, 10)
		}
		table.Append([]string{
			t.Mint.TerminalString(), t.Custody.TerminalString(),
			locked, strconv.FormatUint(t.Free, 10), strconv.Itoa(int(t.Decimals)),
		})
	}
	table.Render()
}

func addressArg(ctx *cli.Context, i int) (common.Address, error) {
	s := ctx.Args().Get(i)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("argument %d: invalid address %q", i+1, s)
	}
	return common.HexToAddress(s), nil
}

func uintArg(ctx *cli.Context, i int) (uint64, error) {
	s := ctx.Args().Get(i)
	if s == "" {
		return 0, fmt.Errorf("argument %d: missing amount", i+1)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("argument %d: invalid amount %q", i+1, s)
	}
	return v, nil
}

func lamportsArg(ctx *cli.Context, i int) (uint64, error) {
	s := ctx.Args().Get(i)
	if s == "" {
		return 0, fmt.Errorf("argument %d: missing amount", i+1)
	}
	v, err := parseLamports(s)
	if err != nil {
		return 0, fmt.Errorf("argument %d: %w", i+1, err)
	}
	return v, nil
}

var errAmountRange = errors.New("amount does not fit in 64 bits")

// parseLamports parses a lamport count, or a decimal TOS amount with a "tos"
// suffix.
func parseLamports(s string) (uint64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasSuffix(s, "tos") {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		return v, nil
	}
	num := strings.TrimSpace(strings.TrimSuffix(s, "tos"))
	r, ok := new(big.Rat).SetString(num)
	if !ok || r.Sign() < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	r.Mul(r, new(big.Rat).SetInt64(params.TOS))
	if !r.IsInt() {
		return 0, fmt.Errorf("amount %q has more than 9 decimals", s)
	}
	if !r.Num().IsUint64() {
		return 0, errAmountRange
	}
	return r.Num().Uint64(), nil
}

func formatLamports(v uint64) string {
	whole, frac := v/params.TOS, v%params.TOS
	if frac == 0 {
		return fmt.Sprintf("%d (%d TOS)", v, whole)
	}
	f := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
	return fmt.Sprintf("%d (%d.%s TOS)", v, whole, f)
}
