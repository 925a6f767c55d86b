// Package vaultclient provides a client for the tosvault HTTP API.
package vaultclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-resty/resty/v2"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/types"
	"github.com/tos-network/tosvault/internal/vaultapi"
	"github.com/tos-network/tosvault/vault"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Result types returned by the API.
type (
	Status       = vaultapi.StatusResult
	Account      = vaultapi.AccountResult
	Mint         = vaultapi.MintResult
	TokenBalance = vaultapi.TokenBalanceResult
	Rent         = vaultapi.RentResult
	Derived      = vaultapi.DeriveResult
)

// HTTPError is a non-2xx API response.
type HTTPError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *HTTPError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("http %d: %s (request %s)", e.StatusCode, e.Message, e.RequestID)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps well-known statuses to sentinel errors.
func (e *HTTPError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	}
	return nil
}

// DefaultTimeout bounds every request unless overridden.
const DefaultTimeout = 15 * time.Second

// Client talks to one tosvault node.
type Client struct {
	c *resty.Client
}

// Dial creates a client for the node at rawurl.
func Dial(rawurl string) (*Client, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
	return NewClient(rawurl, DefaultTimeout), nil
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{c: c}
}

func (ec *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	resp, err := ec.c.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetResult(out).
		SetError(&vaultapi.ErrorResult{}).
		Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return mapHTTPError(resp)
}

func mapHTTPError(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	herr := &HTTPError{StatusCode: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
	if body, ok := resp.Error().(*vaultapi.ErrorResult); ok && body.Error != "" {
		herr.Message, herr.RequestID = body.Error, body.RequestID
	}
	return herr
}

// Status returns the node's ledger status.
func (ec *Client) Status(ctx context.Context) (*Status, error) {
	res := new(Status)
	if err := ec.get(ctx, "/v1/status", nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

// SendTransaction submits a signed transaction and returns its receipt. A
// receipt with a failed status means the action was applied and reverted;
// a rejected transaction returns an error.
func (ec *Client) SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, err
	}
	receipt := new(types.Receipt)
	resp, err := ec.c.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(&vaultapi.SendTxArgs{Raw: raw}).
		SetResult(receipt).
		SetError(&vaultapi.ErrorResult{}).
		Post("/v1/transactions")
	if err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}
	if err := mapHTTPError(resp); err != nil {
		return nil, err
	}
	return receipt, nil
}

// TransactionReceipt returns the receipt of an applied transaction.
func (ec *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt := new(types.Receipt)
	if err := ec.get(ctx, "/v1/transactions/"+hash.Hex(), nil, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// Account returns the account at addr.
func (ec *Client) Account(ctx context.Context, addr common.Address) (*Account, error) {
	res := new(Account)
	if err := ec.get(ctx, "/v1/accounts/"+addr.Hex(), nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

// NonceAt returns the next nonce expected from addr.
func (ec *Client) NonceAt(ctx context.Context, addr common.Address) (uint64, error) {
	acct, err := ec.Account(ctx, addr)
	if err != nil {
		return 0, err
	}
	return acct.Nonce, nil
}

// Vault reports owner's native vault.
func (ec *Client) Vault(ctx context.Context, owner common.Address) (*vault.Info, error) {
	res := new(vault.Info)
	if err := ec.get(ctx, "/v1/vaults/"+owner.Hex(), nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

// VaultToken reports owner's token custody for mint.
func (ec *Client) VaultToken(ctx context.Context, owner, mint common.Address) (*vault.TokenInfo, error) {
	res := new(vault.TokenInfo)
	if err := ec.get(ctx, "/v1/vaults/"+owner.Hex()+"/tokens/"+mint.Hex(), nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Mint returns the token type at addr.
func (ec *Client) Mint(ctx context.Context, addr common.Address) (*Mint, error) {
	res := new(Mint)
	if err := ec.get(ctx, "/v1/tokens/"+addr.Hex(), nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

// TokenBalance returns owner's associated balance of mint.
func (ec *Client) TokenBalance(ctx context.Context, mint, owner common.Address) (*TokenBalance, error) {
	res := new(TokenBalance)
	if err := ec.get(ctx, "/v1/tokens/"+mint.Hex()+"/holders/"+owner.Hex(), nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Rent returns the rent parameters and the reserve for dataLen bytes.
func (ec *Client) Rent(ctx context.Context, dataLen uint64) (*Rent, error) {
	res := new(Rent)
	q := url.Values{"len": {strconv.FormatUint(dataLen, 10)}}
	if err := ec.get(ctx, "/v1/rent", q, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Derive asks the node to derive a program address from raw seeds.
func (ec *Client) Derive(ctx context.Context, program common.Address, seeds ...[]byte) (*Derived, error) {
	enc := make([]string, len(seeds))
	for i, s := range seeds {
		enc[i] = hexutil.Encode(s)
	}
	q := url.Values{"program": {program.Hex()}, "seeds": {strings.Join(enc, ",")}}
	res := new(Derived)
	if err := ec.get(ctx, "/v1/derive", q, res); err != nil {
		return nil, err
	}
	return res, nil
}
