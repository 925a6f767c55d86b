package main

import (
	"encoding/hex"
	"testing"

	"github.com/tos-network/tosvault/accounts/keystore"
)

const testMnemonic = "test test test test test test test test test test test junk"

func TestDeriveSecp256k1FromMnemonicKnownVector(t *testing.T) {
	priv, err := deriveKeyFromMnemonic(keystore.SignerTypeSecp256k1, testMnemonic, "", "m/44'/60'/0'/0/0")
	if err != nil {
		t.Fatalf("derive mnemonic failed: %v", err)
	}
	got := hex.EncodeToString(priv)
	want := "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	if got != want {
		t.Fatalf("unexpected private key: have %s want %s", got, want)
	}
}

// SLIP-0010 test vector 1 for ed25519, chain m/0'.
func TestDeriveEd25519SLIP10Vector(t *testing.T) {
	seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")

	master := deriveEd25519FromSeed(seed, nil)
	if got, want := hex.EncodeToString(master), "2b4be7f19ee27bbf30c667b642d5f4aa69fd169872f8fc3059c08ebae2eb19e7"; got != want {
		t.Fatalf("master key: have %s want %s", got, want)
	}
	child := deriveEd25519FromSeed(seed, []uint32{0x80000000})
	if got, want := hex.EncodeToString(child), "68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3"; got != want {
		t.Fatalf("m/0' key: have %s want %s", got, want)
	}
	// Unhardened components are hardened implicitly.
	if got := deriveEd25519FromSeed(seed, []uint32{0}); hex.EncodeToString(got) != hex.EncodeToString(child) {
		t.Fatalf("m/0 and m/0' differ")
	}
}

func TestGenerateMnemonicBitsValidation(t *testing.T) {
	if _, err := generateMnemonic(129); err == nil {
		t.Fatalf("expected invalid mnemonic bits error")
	}
	if _, err := generateMnemonic(128); err != nil {
		t.Fatalf("expected valid mnemonic bits, got %v", err)
	}
}

func TestDeriveFromMnemonicInvalidPath(t *testing.T) {
	if _, err := deriveKeyFromMnemonic(keystore.SignerTypeSecp256k1, testMnemonic, "", "m/44'//0"); err == nil {
		t.Fatalf("expected invalid path error")
	}
}

func TestDeriveFromMnemonicInvalidWords(t *testing.T) {
	if _, err := deriveKeyFromMnemonic(keystore.SignerTypeEd25519, "test test test", "", defaultHDPath); err == nil {
		t.Fatalf("expected invalid mnemonic error")
	}
}

func TestDeriveEd25519FromMnemonicDeterministic(t *testing.T) {
	first, err := deriveKeyFromMnemonic(keystore.SignerTypeEd25519, testMnemonic, "", defaultHDPath)
	if err != nil {
		t.Fatalf("derive ed25519 failed: %v", err)
	}
	second, err := deriveKeyFromMnemonic(keystore.SignerTypeEd25519, testMnemonic, "", defaultHDPath)
	if err != nil {
		t.Fatalf("derive ed25519 failed: %v", err)
	}
	if hex.EncodeToString(first) != hex.EncodeToString(second) {
		t.Fatalf("ed25519 derivation is not deterministic")
	}
	other, _ := deriveKeyFromMnemonic(keystore.SignerTypeEd25519, testMnemonic, "pass", defaultHDPath)
	if hex.EncodeToString(first) == hex.EncodeToString(other) {
		t.Fatalf("mnemonic passphrase ignored")
	}
}
