package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tos-network/tosvault/accounts/keystore"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core"
	"github.com/tos-network/tosvault/core/rawdb"
	"github.com/tos-network/tosvault/internal/vaultapi"
	"github.com/tos-network/tosvault/params"
	"github.com/tos-network/tosvault/system"
	"github.com/tos-network/tosvault/vault"
)

type testEnv struct {
	ledger   *core.Ledger
	endpoint string
	keyfile  string
	password string
	address  common.Address
}

// newTestEnv serves a fresh ledger funding one keyfile account.
func newTestEnv(t *testing.T, signerType string) *testEnv {
	t.Helper()
	key, err := keystore.NewKeyFromRaw(signerType, bytes.Repeat([]byte{0x2a}, 32))
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	keyjson, err := keystore.EncryptKey(key, "secret", keystore.LightScryptN, keystore.LightScryptP)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	dir := t.TempDir()
	env := &testEnv{
		keyfile:  filepath.Join(dir, "key.json"),
		password: filepath.Join(dir, "password"),
		address:  key.Address,
	}
	if err := os.WriteFile(env.keyfile, keyjson, 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(env.password, []byte("secret\n"), 0600); err != nil {
		t.Fatal(err)
	}
	genesis := &core.Genesis{
		Config: params.TestChainConfig,
		Rent:   system.Rent{LamportsPerByteYear: 3125, ExemptionThreshold: 2.5},
		Alloc:  []core.GenesisAccount{{Address: key.Address, Balance: 10 * params.TOS}},
	}
	env.ledger, err = core.NewLedger(rawdb.NewMemoryDatabase(), genesis)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	server := httptest.NewServer(vaultapi.NewHandler(env.ledger, vaultapi.Config{}))
	env.endpoint = server.URL
	t.Cleanup(func() {
		server.Close()
		env.ledger.Close()
	})
	return env
}

func (env *testEnv) run(command string, args ...string) error {
	argv := []string{"vaultkey", command,
		"--keyfile", env.keyfile, "--passwordfile", env.password, "--endpoint", env.endpoint}
	return app.Run(append(argv, args...))
}

func TestVaultCommands(t *testing.T) {
	for _, signerType := range []string{keystore.SignerTypeEd25519, keystore.SignerTypeSecp256k1} {
		t.Run(signerType, func(t *testing.T) {
			env := newTestEnv(t, signerType)

			if err := env.run("initialize"); err != nil {
				t.Fatalf("initialize: %v", err)
			}
			if err := env.run("deposit", "0.5tos"); err != nil {
				t.Fatalf("deposit: %v", err)
			}
			if err := env.run("withdraw", "100000000"); err != nil {
				t.Fatalf("withdraw: %v", err)
			}
			info := env.ledger.Vault(env.address)
			if info.Status != vault.Active {
				t.Fatalf("status = %v", info.Status)
			}
			if want := uint64(1_000_000 + 400_000_000); info.Balance != want {
				t.Fatalf("custody balance = %d, want %d", info.Balance, want)
			}
			// The rent reserve can't be withdrawn.
			if err := env.run("withdraw", "400000001"); err == nil {
				t.Fatal("withdraw into the reserve succeeded")
			}
			if err := env.run("close"); err != nil {
				t.Fatalf("close: %v", err)
			}
			if err := env.run("initialize"); err == nil {
				t.Fatal("re-initialize after close succeeded")
			}
			if info := env.ledger.Vault(env.address); info.Status != vault.Closed {
				t.Fatalf("status after close = %v", info.Status)
			}
		})
	}
}

func TestTransferCommand(t *testing.T) {
	env := newTestEnv(t, keystore.SignerTypeEd25519)
	to := common.HexToAddress("0x" + strings.Repeat("99", common.AddressLength))

	if err := env.run("transfer", to.Hex(), "2tos"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if bal := env.ledger.Balance(to); bal != 2*params.TOS {
		t.Fatalf("recipient balance = %d", bal)
	}
	if err := env.run("transfer", "0x1234", "1"); err == nil {
		t.Fatal("short address accepted")
	}
}

func TestVaultStatusCommand(t *testing.T) {
	env := newTestEnv(t, keystore.SignerTypeEd25519)
	if err := env.run("initialize"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	// Owner defaults to the keyfile account; no password needed.
	err := app.Run([]string{"vaultkey", "vault", "--keyfile", env.keyfile, "--endpoint", env.endpoint, "--json"})
	if err != nil {
		t.Fatalf("vault: %v", err)
	}
	err = app.Run([]string{"vaultkey", "vault", "--endpoint", env.endpoint, "--mint", "nope", env.address.Hex()})
	if err == nil {
		t.Fatal("invalid mint accepted")
	}
}

func TestParseLamports(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
		fail bool
	}{
		{in: "0", want: 0},
		{in: "1000", want: 1000},
		{in: "1tos", want: params.TOS},
		{in: "1.5TOS", want: 1_500_000_000},
		{in: "0.000000001tos", want: 1},
		{in: "0.0000000001tos", fail: true},
		{in: "-1tos", fail: true},
		{in: "-1", fail: true},
		{in: "abc", fail: true},
		{in: "18446744073709551616", fail: true},
		{in: "20000000000tos", fail: true},
	}
	for _, tt := range tests {
		got, err := parseLamports(tt.in)
		if tt.fail {
			if err == nil {
				t.Errorf("parseLamports(%q) = %d, want error", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseLamports(%q) = %d, %v, want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestPrintVault(t *testing.T) {
	env := newTestEnv(t, keystore.SignerTypeEd25519)
	if err := env.run("initialize"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	info := env.ledger.Vault(env.address)

	var buf bytes.Buffer
	printVault(&buf, info, nil)
	out := buf.String()
	for _, want := range []string{"active", info.Custody.Hex(), "1000000 (0.001 TOS)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}
	if formatLamports(3*params.TOS) != "3000000000 (3 TOS)" {
		t.Errorf("formatLamports = %s", formatLamports(3*params.TOS))
	}
}

func TestKeySigner(t *testing.T) {
	for _, signerType := range []string{keystore.SignerTypeEd25519, keystore.SignerTypeSecp256k1} {
		key, err := keystore.NewKeyFromRaw(signerType, bytes.Repeat([]byte{7}, 32))
		if err != nil {
			t.Fatalf("%s: %v", signerType, err)
		}
		signer, err := keySigner(key)
		if err != nil {
			t.Fatalf("%s: %v", signerType, err)
		}
		if signer.Address() != key.Address {
			t.Fatalf("%s signer address %s, want %s", signerType, signer.Address(), key.Address)
		}
	}
}
