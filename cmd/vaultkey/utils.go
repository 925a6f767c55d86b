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
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tos-network/tosvault/accounts/keystore"
	"github.com/tos-network/tosvault/cmd/utils"
	"github.com/tos-network/tosvault/vaultclient"
	"github.com/urfave/cli/v2"
)

// getPassphrase obtains a passphrase given by the user. It first checks the
// --passwordfile command line flag and ultimately prompts the user for a
// passphrase.
func getPassphrase(ctx *cli.Context, confirmation bool) string {
	// Look for the --passwordfile flag.
	passphraseFile := ctx.String(passphraseFlag.Name)
	if passphraseFile != "" {
		content, err := os.ReadFile(passphraseFile)
		if err != nil {
			utils.Fatalf("Failed to read password file '%s': %v",
				passphraseFile, err)
		}
		return strings.TrimRight(string(content), "\r\n")
	}

	// Otherwise prompt the user for the passphrase.
	return utils.GetPassPhrase("", confirmation)
}

// mustPrintJSON prints the JSON encoding of the given object and
// exits the program with an error message when the marshaling fails.
func mustPrintJSON(jsonObject interface{}) {
	str, err := json.MarshalIndent(jsonObject, "", "  ")
	if err != nil {
		utils.Fatalf("Failed to marshal JSON object: %v", err)
	}
	fmt.Println(string(str))
}

// loadKey reads and decrypts the keyfile at path.
func loadKey(ctx *cli.Context, path string) *keystore.Key {
	keyjson, err := os.ReadFile(path)
	if err != nil {
		utils.Fatalf("Failed to read the keyfile at '%s': %v", path, err)
	}
	passphrase := getPassphrase(ctx, false)
	key, err := keystore.DecryptKey(keyjson, passphrase)
	if err != nil {
		utils.Fatalf("Error decrypting key: %v", err)
	}
	return key
}

// keySigner wraps a decrypted key as a transaction signer.
func keySigner(key *keystore.Key) (vaultclient.Signer, error) {
	switch key.SignerType {
	case keystore.SignerTypeEd25519:
		return &vaultclient.Ed25519Signer{Key: key.Ed25519PrivateKey}, nil
	case keystore.SignerTypeSecp256k1:
		return &vaultclient.Secp256k1Signer{Key: key.Secp256k1PrivateKey}, nil
	}
	return nil, fmt.Errorf("unsupported signer type in keyfile: %s", key.SignerType)
}

// dialEndpoint connects to the API named by --endpoint.
func dialEndpoint(ctx *cli.Context) (*vaultclient.Client, error) {
	return vaultclient.Dial(ctx.String(utils.EndpointFlag.Name))
}
