package vaultapi

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core"
	"github.com/tos-network/tosvault/core/rawdb"
	"github.com/tos-network/tosvault/core/types"
	"github.com/tos-network/tosvault/crypto"
	"github.com/tos-network/tosvault/params"
	"github.com/tos-network/tosvault/sysaction"
	"github.com/tos-network/tosvault/system"
	"github.com/tos-network/tosvault/vault"
)

type testEnv struct {
	ledger *core.Ledger
	server *httptest.Server
	key    ed25519.PrivateKey
	owner  common.Address
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	var seed [ed25519.SeedSize]byte
	seed[0] = 7
	key := ed25519.NewKeyFromSeed(seed[:])
	owner := crypto.Ed25519Address(key.Public().(ed25519.PublicKey))

	genesis := &core.Genesis{
		Config: params.TestChainConfig,
		Rent:   system.Rent{LamportsPerByteYear: 3125, ExemptionThreshold: 2.5},
		Alloc:  []core.GenesisAccount{{Address: owner, Balance: 10 * params.TOS}},
	}
	ledger, err := core.NewLedger(rawdb.NewMemoryDatabase(), genesis)
	require.NoError(t, err)
	server := httptest.NewServer(NewHandler(ledger, cfg))
	t.Cleanup(func() {
		server.Close()
		ledger.Close()
	})
	return &testEnv{ledger: ledger, server: server, key: key, owner: owner}
}

func (e *testEnv) get(t *testing.T, path string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *testEnv) send(t *testing.T, kind sysaction.ActionKind, payload interface{}) (*types.Receipt, int) {
	t.Helper()
	data, err := sysaction.MakeSysAction(kind, payload)
	require.NoError(t, err)
	tx := types.SignEd25519(types.NewTransaction(params.TestChainConfig.ChainID, e.ledger.Nonce(e.owner), data), e.key)
	return e.sendTx(t, tx)
}

func (e *testEnv) sendTx(t *testing.T, tx *types.Transaction) (*types.Receipt, int) {
	t.Helper()
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	body, err := json.Marshal(&SendTxArgs{Raw: raw})
	require.NoError(t, err)
	resp, err := http.Post(e.server.URL+"/v1/transactions", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode
	}
	receipt := new(types.Receipt)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(receipt))
	return receipt, resp.StatusCode
}

func TestAPIVaultLifecycle(t *testing.T) {
	env := newTestEnv(t, Config{})

	receipt, code := env.send(t, sysaction.ActionVaultInitialize, nil)
	require.Equal(t, http.StatusOK, code)
	require.True(t, receipt.Succeeded(), receipt.Error)

	_, code = env.send(t, sysaction.ActionVaultDeposit, sysaction.VaultAmountPayload{Amount: 250_000})
	require.Equal(t, http.StatusOK, code)

	var info vault.Info
	require.Equal(t, http.StatusOK, env.get(t, "/v1/vaults/"+env.owner.Hex(), &info))
	require.Equal(t, vault.Active, info.Status)
	require.EqualValues(t, 1_250_000, info.Balance)
	require.EqualValues(t, 1_000_000, info.Reserve)
	require.EqualValues(t, 250_000, info.Withdrawable)

	failed, code := env.send(t, sysaction.ActionVaultWithdraw, sysaction.VaultAmountPayload{Amount: 250_001})
	require.Equal(t, http.StatusOK, code)
	require.False(t, failed.Succeeded())
	require.Contains(t, failed.Error, vault.ErrInsufficientReserve.Error())

	var stored types.Receipt
	require.Equal(t, http.StatusOK, env.get(t, "/v1/transactions/"+failed.TxHash.Hex(), &stored))
	require.Equal(t, *failed, stored)

	var acct AccountResult
	require.Equal(t, http.StatusOK, env.get(t, "/v1/accounts/"+info.Custody.Hex(), &acct))
	require.True(t, acct.Exists)
	require.EqualValues(t, 1_250_000, acct.Balance)
	require.Empty(t, acct.Data)

	var status StatusResult
	require.Equal(t, http.StatusOK, env.get(t, "/v1/status", &status))
	require.EqualValues(t, 3, status.Sequence)
	require.Equal(t, params.TestChainConfig.ChainID, status.ChainID)
}

func TestAPIRejectsTransactions(t *testing.T) {
	env := newTestEnv(t, Config{})

	data, err := sysaction.MakeSysAction(sysaction.ActionVaultInitialize, nil)
	require.NoError(t, err)
	tx := types.SignEd25519(types.NewTransaction(params.TestChainConfig.ChainID, 0, data), env.key)
	_, code := env.sendTx(t, tx)
	require.Equal(t, http.StatusOK, code)
	_, code = env.sendTx(t, tx)
	require.Equal(t, http.StatusConflict, code)

	foreign := types.SignEd25519(types.NewTransaction(42, 1, data), env.key)
	_, code = env.sendTx(t, foreign)
	require.Equal(t, http.StatusBadRequest, code)

	resp, err := http.Post(env.server.URL+"/v1/transactions", "application/json", bytes.NewReader([]byte(`{"raw":"0xzz"}`)))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPILookups(t *testing.T) {
	env := newTestEnv(t, Config{})

	var errRes ErrorResult
	require.Equal(t, http.StatusBadRequest, env.get(t, "/v1/accounts/0x1234", &errRes))
	require.NotEmpty(t, errRes.RequestID)

	require.Equal(t, http.StatusNotFound, env.get(t, "/v1/transactions/"+common.Hash{1}.Hex(), nil))
	require.Equal(t, http.StatusNotFound, env.get(t, "/v1/tokens/"+env.owner.Hex(), nil))
	require.Equal(t, http.StatusNotFound, env.get(t, "/v1/nowhere", nil))

	var acct AccountResult
	require.Equal(t, http.StatusOK, env.get(t, "/v1/accounts/"+common.Address{9}.Hex(), &acct))
	require.False(t, acct.Exists)

	var rent RentResult
	require.Equal(t, http.StatusOK, env.get(t, "/v1/rent?len=10", &rent))
	require.EqualValues(t, 3125, rent.LamportsPerByteYear)
	require.EqualValues(t, 1_078_125, rent.MinimumBalance)
	require.Equal(t, http.StatusBadRequest, env.get(t, "/v1/rent?len=-1", nil))
}

func TestAPIDerive(t *testing.T) {
	env := newTestEnv(t, Config{})

	var res DeriveResult
	path := "/v1/derive?seeds=state," + hexutil.Encode(env.owner[:])
	require.Equal(t, http.StatusOK, env.get(t, path, &res))
	addr, nonce := vault.RecordAddress(env.owner)
	require.Equal(t, addr, res.Address)
	require.Equal(t, nonce, res.Nonce)
	require.Equal(t, params.VaultProgramAddress, res.Program)

	tooLong := "/v1/derive?seeds=" + hexutil.Encode(make([]byte, 33))
	require.Equal(t, http.StatusBadRequest, env.get(t, tooLong, nil))
}

func TestAPIRateLimit(t *testing.T) {
	env := newTestEnv(t, Config{RateLimit: 0.001, RateBurst: 1})

	require.Equal(t, http.StatusOK, env.get(t, "/v1/status", nil))
	require.Equal(t, http.StatusTooManyRequests, env.get(t, "/v1/status", nil))
}

func TestAPIMiddlewareHeaders(t *testing.T) {
	env := newTestEnv(t, Config{CorsOrigins: []string{"https://wallet.example"}})

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/v1/status", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://wallet.example")
	req.Header.Set(requestIDHeader, "2b0e9a0c-8a9f-4f57-9d51-3c1f5f0e8f11")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, "https://wallet.example", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "2b0e9a0c-8a9f-4f57-9d51-3c1f5f0e8f11", resp.Header.Get(requestIDHeader))
}

func TestServerStartStop(t *testing.T) {
	ledger, err := core.NewLedger(rawdb.NewMemoryDatabase(), core.DeveloperGenesis())
	require.NoError(t, err)
	defer ledger.Close()

	srv := NewServer(ledger, Config{Host: "127.0.0.1", Port: 0})
	require.NoError(t, srv.Start())
	addr := srv.ListenAddr()
	require.NotEmpty(t, addr)

	resp, err := http.Get("http://" + addr + "/v1/status")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop())
	require.Empty(t, srv.ListenAddr())
	require.NoError(t, srv.Stop())
}
