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

package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/tos-network/tosvault/accounts/keystore"
	"github.com/tos-network/tosvault/cmd/utils"
	"github.com/tos-network/tosvault/vault"
	"github.com/urfave/cli/v2"
)

type outputInspect struct {
	Address    string
	SignerType string
	PublicKey  string
	PrivateKey string `json:",omitempty"`
	Record     string
	Custody    string
}

type outputAddress struct {
	Address string
}

var (
	privateFlag = &cli.BoolFlag{
		Name:  "private",
		Usage: "include the private key in the output",
	}
)

var commandInspect = &cli.Command{
	Name:      "inspect",
	Usage:     "inspect a keyfile",
	ArgsUsage: "<keyfile>",
	Description: `
Print various information about the keyfile, including the vault record and
custody addresses owned by its account.

Private key information can be printed by using the --private flag;
make sure to use this feature with great caution!`,
	Flags: []cli.Flag{
		passphraseFlag,
		jsonFlag,
		privateFlag,
	},
	Action: func(ctx *cli.Context) error {
		keyfilepath := ctx.Args().First()
		key := loadKey(ctx, keyfilepath)

		record, _ := vault.RecordAddress(key.Address)
		custody, _ := vault.CustodyAddress(record)
		out := outputInspect{
			Address:    key.Address.Hex(),
			SignerType: key.SignerType,
			PublicKey:  hex.EncodeToString(key.PublicKey()),
			Record:     record.Hex(),
			Custody:    custody.Hex(),
		}
		if ctx.Bool(privateFlag.Name) {
			out.PrivateKey = key.PrivateKeyHex()
		}

		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
		} else {
			fmt.Println("Address:       ", out.Address)
			fmt.Println("Signer type:   ", out.SignerType)
			fmt.Println("Public key:    ", out.PublicKey)
			if out.PrivateKey != "" {
				fmt.Println("Private key:   ", out.PrivateKey)
			}
			fmt.Println("Vault record:  ", out.Record)
			fmt.Println("Vault custody: ", out.Custody)
		}
		return nil
	},
}

var commandAddress = &cli.Command{
	Name:      "address",
	Usage:     "print the address of a keyfile",
	ArgsUsage: "<keyfile>",
	Description: `
Print the account address stored in a keyfile. The key itself is not
decrypted, so no password is needed.`,
	Flags: []cli.Flag{
		jsonFlag,
	},
	Action: func(ctx *cli.Context) error {
		keyfilepath := ctx.Args().First()
		keyjson, err := os.ReadFile(keyfilepath)
		if err != nil {
			utils.Fatalf("Failed to read the keyfile at '%s': %v", keyfilepath, err)
		}
		addr, err := keystore.KeyFileAddress(keyjson)
		if err != nil {
			utils.Fatalf("Invalid keyfile: %v", err)
		}
		out := outputAddress{Address: addr.Hex()}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
		} else {
			fmt.Println(out.Address)
		}
		return nil
	},
}

var newPassphraseFlag = &cli.StringFlag{
	Name:  "newpasswordfile",
	Usage: "the file that contains the new password for the keyfile",
}

var commandChangePassphrase = &cli.Command{
	Name:      "changepassword",
	Usage:     "change the password on a keyfile",
	ArgsUsage: "<keyfile>",
	Description: `
Change the password of a keyfile.`,
	Flags: []cli.Flag{
		passphraseFlag,
		newPassphraseFlag,
		lightKDFFlag,
	},
	Action: func(ctx *cli.Context) error {
		keyfilepath := ctx.Args().First()
		key := loadKey(ctx, keyfilepath)

		// Get a new passphrase.
		fmt.Println("Please provide a new password")
		var newPhrase string
		if passFile := ctx.String(newPassphraseFlag.Name); passFile != "" {
			content, err := os.ReadFile(passFile)
			if err != nil {
				utils.Fatalf("Failed to read new password file '%s': %v", passFile, err)
			}
			newPhrase = string(trimNewline(content))
		} else {
			newPhrase = utils.GetPassPhrase("", true)
		}

		// Encrypt the key with the new passphrase.
		scryptN, scryptP := keystore.StandardScryptN, keystore.StandardScryptP
		if ctx.Bool(lightKDFFlag.Name) {
			scryptN, scryptP = keystore.LightScryptN, keystore.LightScryptP
		}
		newJSON, err := keystore.EncryptKey(key, newPhrase, scryptN, scryptP)
		if err != nil {
			utils.Fatalf("Error encrypting with new password: %v", err)
		}

		// Then write the new keyfile in place of the old one.
		if err := keystore.WriteKeyFile(keyfilepath, newJSON); err != nil {
			utils.Fatalf("Error writing new keyfile to disk: %v", err)
		}

		// Don't print anything.  Just return successfully,
		// producing a positive exit code.
		return nil
	},
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
