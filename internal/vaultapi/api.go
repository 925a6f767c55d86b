// Package vaultapi serves the ledger over a small JSON HTTP API.
package vaultapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/julienschmidt/httprouter"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/types"
	"github.com/tos-network/tosvault/crypto"
	"github.com/tos-network/tosvault/params"
	"github.com/tos-network/tosvault/system"
	"github.com/tos-network/tosvault/token"
	"github.com/tos-network/tosvault/vault"
)

// maxRequestContentLength bounds request bodies. A hex encoded transaction
// is at most twice its binary size.
const maxRequestContentLength = 4 * params.MaxTransactionDataSize

// Backend is the ledger surface used by the API.
type Backend interface {
	Config() *params.ChainConfig
	Apply(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	Sequence() uint64
	Receipt(hash common.Hash) *types.Receipt
	Account(addr common.Address) *types.StateAccount
	Rent() system.Rent
	Vault(owner common.Address) *vault.Info
	VaultToken(owner, mint common.Address) *vault.TokenInfo
	Mint(addr common.Address) (*token.Mint, error)
	TokenAccount(addr common.Address) (*token.Account, error)
}

// API implements the HTTP handlers on top of a Backend.
type API struct {
	b Backend
}

// NewAPI creates the API handlers for b.
func NewAPI(b Backend) *API {
	return &API{b: b}
}

// Routes registers the API on a new router.
func (api *API) Routes() *httprouter.Router {
	r := httprouter.New()
	r.GET("/v1/status", api.status)
	r.POST("/v1/transactions", api.sendTransaction)
	r.GET("/v1/transactions/:hash", api.getReceipt)
	r.GET("/v1/accounts/:address", api.getAccount)
	r.GET("/v1/vaults/:owner", api.getVault)
	r.GET("/v1/vaults/:owner/tokens/:mint", api.getVaultToken)
	r.GET("/v1/tokens/:mint", api.getMint)
	r.GET("/v1/tokens/:mint/holders/:owner", api.getTokenBalance)
	r.GET("/v1/rent", api.getRent)
	r.GET("/v1/derive", api.derive)
	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, fmt.Errorf("%w: %s", errNotFound, req.URL.Path))
	})
	return r
}

func (api *API) status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, &StatusResult{
		ChainID:  api.b.Config().ChainID,
		Sequence: api.b.Sequence(),
		Version:  params.VersionWithMeta,
	})
}

func (api *API) sendTransaction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var args SendTxArgs
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestContentLength)).Decode(&args); err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	if len(args.Raw) == 0 {
		writeError(w, r, fmt.Errorf("%w: missing raw transaction", errBadRequest))
		return
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(args.Raw); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	receipt, err := api.b.Apply(r.Context(), tx)
	if err != nil {
		log.Debug("Rejected transaction", "hash", tx.Hash(), "reqid", requestID(r), "err", err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (api *API) getReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	raw, err := hexutil.Decode(ps.ByName("hash"))
	if err != nil || len(raw) != common.HashLength {
		writeError(w, r, fmt.Errorf("%w: %q", errBadHash, ps.ByName("hash")))
		return
	}
	receipt := api.b.Receipt(common.BytesToHash(raw))
	if receipt == nil {
		writeError(w, r, fmt.Errorf("%w: transaction %s", errNotFound, common.BytesToHash(raw)))
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (api *API) getAccount(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	addr, err := parseAddress(ps.ByName("address"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	res := &AccountResult{Address: addr}
	if acct := api.b.Account(addr); acct != nil {
		res.Exists = true
		res.Nonce = acct.Nonce
		res.Balance = acct.Balance.Uint64()
		res.Owner = acct.Owner
		res.Data = acct.Data
	}
	writeJSON(w, http.StatusOK, res)
}

func (api *API) getVault(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	owner, err := parseAddress(ps.ByName("owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.b.Vault(owner))
}

func (api *API) getVaultToken(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	owner, err := parseAddress(ps.ByName("owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	mint, err := parseAddress(ps.ByName("mint"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.b.VaultToken(owner, mint))
}

func (api *API) getMint(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	addr, err := parseAddress(ps.ByName("mint"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	mint, err := api.b.Mint(addr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &MintResult{
		Address:   addr,
		Authority: mint.MintAuthority,
		Supply:    mint.Supply,
		Decimals:  mint.Decimals,
	})
}

func (api *API) getTokenBalance(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	mint, err := parseAddress(ps.ByName("mint"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	owner, err := parseAddress(ps.ByName("owner"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	account, _ := token.AssociatedAddress(owner, mint)
	res := &TokenBalanceResult{Mint: mint, Owner: owner, Account: account}
	if acct, err := api.b.TokenAccount(account); err == nil {
		res.Exists = true
		res.Amount = acct.Amount
	}
	writeJSON(w, http.StatusOK, res)
}

func (api *API) getRent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var dataLen uint64
	if s := r.URL.Query().Get("len"); s != "" {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: len: %v", errBadRequest, err))
			return
		}
		dataLen = n
	}
	rent := api.b.Rent()
	writeJSON(w, http.StatusOK, &RentResult{
		LamportsPerByteYear: rent.LamportsPerByteYear,
		ExemptionThreshold:  rent.ExemptionThreshold,
		DataLength:          dataLen,
		MinimumBalance:      rent.MinimumBalance(dataLen),
	})
}

// derive computes a program address. Seeds are comma separated; a seed with
// a 0x prefix is hex decoded, anything else is taken as UTF-8.
func (api *API) derive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	program := params.VaultProgramAddress
	if s := q.Get("program"); s != "" {
		addr, err := parseAddress(s)
		if err != nil {
			writeError(w, r, err)
			return
		}
		program = addr
	}
	seeds, err := ParseSeeds(q.Get("seeds"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	addr, nonce, err := crypto.TryFindProgramAddress(seeds, program)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &DeriveResult{Address: addr, Nonce: nonce, Program: program})
}

// ParseSeeds splits a comma separated seed list.
func ParseSeeds(s string) ([][]byte, error) {
	if s == "" {
		return nil, nil
	}
	var seeds [][]byte
	for _, part := range strings.Split(s, ",") {
		if strings.HasPrefix(part, "0x") || strings.HasPrefix(part, "0X") {
			b, err := hexutil.Decode(part)
			if err != nil {
				return nil, fmt.Errorf("%w: seed %q: %v", errBadRequest, part, err)
			}
			seeds = append(seeds, b)
			continue
		}
		seeds = append(seeds, []byte(part))
	}
	return seeds, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", errBadAddress, s)
	}
	return common.HexToAddress(s), nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("Failed to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		code = http.StatusRequestEntityTooLarge
	}
	if code == http.StatusInternalServerError {
		log.Warn("API request failed", "path", r.URL.Path, "reqid", requestID(r), "err", err)
	}
	writeJSON(w, code, &ErrorResult{Error: err.Error(), RequestID: requestID(r)})
}
