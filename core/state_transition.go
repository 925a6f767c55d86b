// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package core

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/state"
	"github.com/tos-network/tosvault/core/types"
	"github.com/tos-network/tosvault/params"
	"github.com/tos-network/tosvault/sysaction"

	// Programs register their action handlers on import.
	_ "github.com/tos-network/tosvault/system"
	_ "github.com/tos-network/tosvault/token"
	_ "github.com/tos-network/tosvault/vault"
)

// StateTransition applies one signed transaction.
//
// Ledger transaction rules:
//  1. The signature must verify for the ledger's chain id; the signer is the sender.
//  2. The nonce must equal the sender's account nonce.
//  3. tx.Data must decode as a system action, dispatched via sysaction.Execute.
//
// A transaction breaking rule 1 or 2 is rejected. Past that point the nonce is
// bumped and the action either applies in full or is reverted in full, leaving
// a failed receipt.
type StateTransition struct {
	config *params.ChainConfig
	state  *state.StateDB
	tx     *types.Transaction
	from   common.Address
}

// NewStateTransition initialises and returns a new state transition object.
func NewStateTransition(config *params.ChainConfig, statedb *state.StateDB, tx *types.Transaction) *StateTransition {
	return &StateTransition{config: config, state: statedb, tx: tx}
}

func (st *StateTransition) preCheck() error {
	from, err := types.Sender(st.config.ChainID, st.tx)
	if err != nil {
		return err
	}
	st.from = from

	if size := len(st.tx.Data); size > params.MaxTransactionDataSize {
		return fmt.Errorf("%w: %d > %d", ErrOversizedData, size, params.MaxTransactionDataSize)
	}
	stNonce := st.state.GetNonce(from)
	if msgNonce := st.tx.Nonce; stNonce < msgNonce {
		return fmt.Errorf("%w: address %v, tx: %d state: %d", ErrNonceTooHigh,
			from.Hex(), msgNonce, stNonce)
	} else if stNonce > msgNonce {
		return fmt.Errorf("%w: address %v, tx: %d state: %d", ErrNonceTooLow,
			from.Hex(), msgNonce, stNonce)
	} else if stNonce+1 < stNonce {
		return fmt.Errorf("%w: address %v, nonce: %d", ErrNonceMax,
			from.Hex(), stNonce)
	}
	return nil
}

// TransitionDb validates the transaction and executes its action. The
// returned error is non-nil only when the transaction is rejected.
func (st *StateTransition) TransitionDb(seq uint64) (*types.Receipt, error) {
	if err := st.preCheck(); err != nil {
		return nil, err
	}
	// Increment nonce for all accepted transactions.
	st.state.SetNonce(st.from, st.state.GetNonce(st.from)+1)

	ctx := &sysaction.Context{
		From:        st.from,
		Sequence:    seq,
		StateDB:     st.state,
		ChainConfig: st.config,
	}
	snap := st.state.Snapshot()
	sa, execErr := sysaction.Execute(ctx, st.tx.Data)

	receipt := &types.Receipt{
		TxHash:   st.tx.Hash(),
		Sequence: seq,
		From:     st.from,
		Status:   types.ReceiptStatusSuccessful,
	}
	if sa != nil {
		receipt.Action = string(sa.Action)
	}
	if execErr != nil {
		st.state.RevertToSnapshot(snap)
		receipt.Status = types.ReceiptStatusFailed
		receipt.Error = execErr.Error()
		receipt.ErrorKind = ErrorKind(execErr)
		log.Debug("Transaction action failed", "hash", receipt.TxHash, "from", st.from, "action", receipt.Action, "kind", receipt.ErrorKind, "err", execErr)
	}
	return receipt, nil
}

// ApplyTransaction attempts to apply a transaction to the given state
// database. It returns the receipt of the transaction, or an error if the
// transaction was rejected without touching state.
func ApplyTransaction(config *params.ChainConfig, statedb *state.StateDB, tx *types.Transaction, seq uint64) (*types.Receipt, error) {
	return NewStateTransition(config, statedb, tx).TransitionDb(seq)
}
