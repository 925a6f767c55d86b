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
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tos-network/tosvault/accounts/keystore"
	"github.com/tos-network/tosvault/cmd/utils"
	"github.com/urfave/cli/v2"
)

type outputGenerate struct {
	Address        string `json:"address"`
	SignerType     string `json:"signerType"`
	DerivationPath string `json:"derivationPath,omitempty"`
	Mnemonic       string `json:"mnemonic,omitempty"`
}

var (
	privateKeyFlag = &cli.StringFlag{
		Name:  "privatekey",
		Usage: "file containing a raw private key to encrypt",
	}
	lightKDFFlag = &cli.BoolFlag{
		Name:  "lightkdf",
		Usage: "use less secure scrypt parameters",
	}
	signerTypeFlag = &cli.StringFlag{
		Name:  "signer",
		Usage: "Signer algorithm for generated key (`secp256k1` or `ed25519`)",
		Value: keystore.SignerTypeSecp256k1,
	}
	mnemonicGenerateFlag = &cli.BoolFlag{
		Name:  "mnemonic-generate",
		Usage: "Generate a BIP39 mnemonic and derive key using --hd-path",
	}
	mnemonicFlag = &cli.StringFlag{
		Name:  "mnemonic",
		Usage: "Use existing BIP39 mnemonic to derive the key",
	}
	mnemonicPassphraseFlag = &cli.StringFlag{
		Name:  "mnemonic-passphrase",
		Usage: "Optional BIP39 passphrase for mnemonic-to-seed",
	}
	mnemonicBitsFlag = &cli.IntFlag{
		Name:  "mnemonic-bits",
		Usage: "Entropy bits for generated mnemonic (128,160,192,224,256)",
		Value: defaultMnemonicBits,
	}
	hdPathFlag = &cli.StringFlag{
		Name:  "hd-path",
		Usage: "Derivation path used with mnemonic flow",
		Value: defaultHDPath,
	}
)

var commandGenerate = &cli.Command{
	Name:      "generate",
	Usage:     "generate new keyfile",
	ArgsUsage: "[ <keyfile> ]",
	Description: `
Generate a new keyfile.

If you want to encrypt an existing private key, it can be specified by setting
--privatekey with the location of the file containing the private key. Keys can
also be derived from a BIP39 mnemonic, either given with --mnemonic or freshly
generated with --mnemonic-generate.
`,
	Flags: []cli.Flag{
		passphraseFlag,
		jsonFlag,
		privateKeyFlag,
		lightKDFFlag,
		signerTypeFlag,
		mnemonicGenerateFlag,
		mnemonicFlag,
		mnemonicPassphraseFlag,
		mnemonicBitsFlag,
		hdPathFlag,
	},
	Action: func(ctx *cli.Context) error {
		// Check if keyfile path given and make sure it doesn't already exist.
		keyfilepath := ctx.Args().First()
		if keyfilepath == "" {
			keyfilepath = defaultKeyfileName
		}
		if _, err := os.Stat(keyfilepath); err == nil {
			utils.Fatalf("Keyfile already exists at %s.", keyfilepath)
		} else if !os.IsNotExist(err) {
			utils.Fatalf("Error checking if keyfile exists: %v", err)
		}

		signerType := strings.ToLower(strings.TrimSpace(ctx.String(signerTypeFlag.Name)))
		switch signerType {
		case keystore.SignerTypeSecp256k1, keystore.SignerTypeEd25519:
		default:
			utils.Fatalf("Signer type %q is not supported by vaultkey generate", signerType)
		}

		var (
			key            *keystore.Key
			err            error
			derivationPath string
			mnemonicOutput string
			mnemonicInput  = strings.TrimSpace(ctx.String(mnemonicFlag.Name))
			mnemonicMode   = mnemonicInput != "" || ctx.Bool(mnemonicGenerateFlag.Name)
		)
		switch {
		case ctx.String(privateKeyFlag.Name) != "":
			if mnemonicMode {
				utils.Fatalf("Can't use --privatekey with mnemonic flags")
			}
			raw, loadErr := loadRawPrivateKeyHex(ctx.String(privateKeyFlag.Name))
			if loadErr != nil {
				utils.Fatalf("Can't load private key: %v", loadErr)
			}
			key, err = keystore.NewKeyFromRaw(signerType, raw)

		case mnemonicMode:
			if mnemonicInput == "" {
				mnemonicInput, err = generateMnemonic(ctx.Int(mnemonicBitsFlag.Name))
				if err != nil {
					utils.Fatalf("Failed to generate mnemonic: %v", err)
				}
				mnemonicOutput = mnemonicInput
			}
			derivationPath = ctx.String(hdPathFlag.Name)
			raw, deriveErr := deriveKeyFromMnemonic(signerType, mnemonicInput, ctx.String(mnemonicPassphraseFlag.Name), derivationPath)
			if deriveErr != nil {
				utils.Fatalf("Failed to derive %s private key from mnemonic: %v", signerType, deriveErr)
			}
			key, err = keystore.NewKeyFromRaw(signerType, raw)

		default:
			// If not loaded, generate random key material per signer type.
			key, err = keystore.NewKey(signerType, crand.Reader)
		}
		if err != nil {
			utils.Fatalf("Failed to create %s key: %v", signerType, err)
		}

		// Encrypt key with passphrase.
		passphrase := getPassphrase(ctx, true)
		scryptN, scryptP := keystore.StandardScryptN, keystore.StandardScryptP
		if ctx.Bool(lightKDFFlag.Name) {
			scryptN, scryptP = keystore.LightScryptN, keystore.LightScryptP
		}
		keyjson, err := keystore.EncryptKey(key, passphrase, scryptN, scryptP)
		if err != nil {
			utils.Fatalf("Error encrypting key: %v", err)
		}

		// Store the file to disk.
		if err := os.MkdirAll(filepath.Dir(keyfilepath), 0700); err != nil {
			utils.Fatalf("Could not create directory %s", filepath.Dir(keyfilepath))
		}
		if err := keystore.WriteKeyFile(keyfilepath, keyjson); err != nil {
			utils.Fatalf("Failed to write keyfile to %s: %v", keyfilepath, err)
		}

		// Output some information.
		out := outputGenerate{
			Address:        key.Address.Hex(),
			SignerType:     key.SignerType,
			DerivationPath: derivationPath,
			Mnemonic:       mnemonicOutput,
		}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
		} else {
			fmt.Println("Address:", out.Address)
			fmt.Println("Signer type:", out.SignerType)
			if out.DerivationPath != "" {
				fmt.Println("Derivation path:", out.DerivationPath)
			}
			if out.Mnemonic != "" {
				fmt.Println("Mnemonic:", out.Mnemonic)
			}
		}
		return nil
	},
}

func loadRawPrivateKeyHex(file string) ([]byte, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(content))
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		trimmed = trimmed[2:]
	}
	if trimmed == "" {
		return nil, fmt.Errorf("empty private key file")
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid hex data for private key: %w", err)
	}
	return raw, nil
}
