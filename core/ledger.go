package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/rawdb"
	"github.com/tos-network/tosvault/core/state"
	"github.com/tos-network/tosvault/core/types"
	"github.com/tos-network/tosvault/params"
	"github.com/tos-network/tosvault/system"
	"github.com/tos-network/tosvault/token"
	"github.com/tos-network/tosvault/tosdb"
	"github.com/tos-network/tosvault/vault"
)

// Ledger applies signed transactions one at a time and persists the result
// of each, together with its receipt, in a single batch. All access to the
// live state is serialised, so at most one action touches an account at a
// time.
type Ledger struct {
	mu sync.Mutex

	db      tosdb.Database
	config  *params.ChainConfig
	statedb *state.StateDB
	seq     uint64 // sequence of the last applied transaction
	closed  bool
}

// NewLedger opens the ledger stored in db, writing genesis first if db is
// empty.
func NewLedger(db tosdb.Database, genesis *Genesis) (*Ledger, error) {
	config, err := SetupGenesis(db, genesis)
	if err != nil {
		return nil, err
	}
	statedb, err := state.New(state.NewDatabase(db))
	if err != nil {
		return nil, err
	}
	seq, _ := rawdb.ReadHeadSequence(db)
	log.Info("Opened ledger", "chainid", config.ChainID, "sequence", seq)
	return &Ledger{
		db:      db,
		config:  config,
		statedb: statedb,
		seq:     seq,
	}, nil
}

// Config returns the ledger's chain config.
func (l *Ledger) Config() *params.ChainConfig { return l.config }

// Apply applies tx and commits the outcome. A failed action still produces a
// receipt and consumes the nonce; a rejected transaction returns an error and
// leaves no trace. ctx is only consulted before the action starts.
func (l *Ledger) Apply(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrLedgerClosed
	}
	if rawdb.ReadReceipt(l.db, tx.Hash()) != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyKnown, tx.Hash())
	}
	seq := l.seq + 1
	receipt, err := ApplyTransaction(l.config, l.statedb, tx, seq)
	if err != nil {
		return nil, err
	}
	err = l.statedb.CommitWith(func(batch tosdb.KeyValueWriter) {
		rawdb.WriteReceipt(batch, receipt)
		rawdb.WriteHeadSequence(batch, seq)
	})
	if err != nil {
		return nil, err
	}
	l.seq = seq
	log.Debug("Applied transaction", "seq", seq, "hash", receipt.TxHash, "from", receipt.From, "action", receipt.Action, "status", receipt.Status)
	return receipt, nil
}

// Sequence returns the sequence number of the last applied transaction.
func (l *Ledger) Sequence() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

// Receipt returns the receipt of an applied transaction, or nil.
func (l *Ledger) Receipt(hash common.Hash) *types.Receipt {
	return rawdb.ReadReceipt(l.db, hash)
}

// Account returns a copy of the account at addr, or nil.
func (l *Ledger) Account(addr common.Address) *types.StateAccount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.statedb.GetAccount(addr)
}

// Nonce returns the next nonce expected from addr.
func (l *Ledger) Nonce(addr common.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.statedb.GetNonce(addr)
}

// Balance returns the native balance of addr.
func (l *Ledger) Balance(addr common.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.statedb.GetBalance(addr).Uint64()
}

// Rent returns the live rent parameters.
func (l *Ledger) Rent() system.Rent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return system.GetRent(l.statedb)
}

// Vault reports owner's native vault.
func (l *Ledger) Vault(owner common.Address) *vault.Info {
	l.mu.Lock()
	defer l.mu.Unlock()
	return vault.Inspect(l.statedb, owner)
}

// VaultToken reports owner's token custody for mint.
func (l *Ledger) VaultToken(owner, mint common.Address) *vault.TokenInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	return vault.InspectToken(l.statedb, owner, mint)
}

// Mint returns the mint at addr.
func (l *Ledger) Mint(addr common.Address) (*token.Mint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return token.ReadMint(l.statedb, addr)
}

// TokenAccount returns the token account at addr.
func (l *Ledger) TokenAccount(addr common.Address) (*token.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return token.ReadAccount(l.statedb, addr)
}

// Close stops the ledger from accepting transactions and closes the
// database.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}
