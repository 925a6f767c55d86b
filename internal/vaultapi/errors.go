package vaultapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/tos-network/tosvault/core"
	"github.com/tos-network/tosvault/core/types"
	"github.com/tos-network/tosvault/crypto"
	"github.com/tos-network/tosvault/token"
)

var (
	errNotFound   = errors.New("not found")
	errBadAddress = errors.New("invalid address")
	errBadHash    = errors.New("invalid transaction hash")
	errBadRequest = errors.New("bad request")
	errRateLimit  = errors.New("rate limit exceeded")
)

// statusCode maps an error to the HTTP status reported for it.
func statusCode(err error) int {
	switch {
	case errors.Is(err, errNotFound),
		errors.Is(err, token.ErrInvalidMint),
		errors.Is(err, token.ErrInvalidAccount):
		return http.StatusNotFound

	case errors.Is(err, core.ErrNonceTooLow),
		errors.Is(err, core.ErrNonceTooHigh),
		errors.Is(err, core.ErrAlreadyKnown):
		return http.StatusConflict

	case errors.Is(err, errBadAddress),
		errors.Is(err, errBadHash),
		errors.Is(err, errBadRequest),
		errors.Is(err, core.ErrOversizedData),
		errors.Is(err, core.ErrNonceMax),
		errors.Is(err, types.ErrInvalidSig),
		errors.Is(err, types.ErrInvalidChainID),
		errors.Is(err, types.ErrUnknownSignerType),
		errors.Is(err, crypto.ErrMaxSeedLengthExceeded),
		errors.Is(err, crypto.ErrNoViableNonce):
		return http.StatusBadRequest

	case errors.Is(err, errRateLimit):
		return http.StatusTooManyRequests

	case errors.Is(err, core.ErrLedgerClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
