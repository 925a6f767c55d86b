package token

import (
	"fmt"

	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/vm"
	"github.com/tos-network/tosvault/params"
)

// ReadMint loads the mint at addr.
func ReadMint(db vm.StateDB, addr common.Address) (*Mint, error) {
	data := db.GetData(addr)
	if db.GetOwner(addr) != params.TokenProgramAddress || len(data) != MintSize {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMint, addr.TerminalString())
	}
	mint := new(Mint)
	if err := decodeFrom(data, mint); err != nil || !mint.Initialized {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMint, addr.TerminalString())
	}
	return mint, nil
}

func writeMint(db vm.StateDB, addr common.Address, mint *Mint) error {
	data, err := encodeInto(mint, MintSize)
	if err != nil {
		return err
	}
	db.SetData(addr, data)
	return nil
}

// ReadAccount loads the token account at addr.
func ReadAccount(db vm.StateDB, addr common.Address) (*Account, error) {
	acct, err := readRawAccount(db, addr)
	if err != nil {
		return nil, err
	}
	if !acct.Initialized {
		return nil, fmt.Errorf("%w: %s not initialized", ErrInvalidAccount, addr.TerminalString())
	}
	return acct, nil
}

// readRawAccount decodes a token-program account of token account size,
// initialized or not.
func readRawAccount(db vm.StateDB, addr common.Address) (*Account, error) {
	data := db.GetData(addr)
	if db.GetOwner(addr) != params.TokenProgramAddress || len(data) != AccountSize {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccount, addr.TerminalString())
	}
	acct := new(Account)
	if err := decodeFrom(data, acct); err != nil {
		// Freshly allocated accounts are all zero.
		return new(Account), nil
	}
	return acct, nil
}

func writeAccount(db vm.StateDB, addr common.Address, acct *Account) error {
	data, err := encodeInto(acct, AccountSize)
	if err != nil {
		return err
	}
	db.SetData(addr, data)
	return nil
}

// BalanceOf returns the token amount held by addr, or 0 when addr is not a
// token account.
func BalanceOf(db vm.StateDB, addr common.Address) uint64 {
	acct, err := ReadAccount(db, addr)
	if err != nil {
		return 0
	}
	return acct.Amount
}
