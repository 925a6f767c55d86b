package system

import (
	"errors"
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/rawdb"
	"github.com/tos-network/tosvault/core/state"
	"github.com/tos-network/tosvault/crypto"
	"github.com/tos-network/tosvault/params"
	"github.com/tos-network/tosvault/sysaction"
)

// newTestState creates a fresh in-memory StateDB for tests.
func newTestState() *state.StateDB {
	db := state.NewDatabase(rawdb.NewMemoryDatabase())
	s, _ := state.New(db)
	return s
}

// tAddr generates a deterministic test address.
func tAddr(b byte) common.Address { return common.Address{b} }

func fund(st *state.StateDB, a common.Address, amount uint64) {
	st.AddBalance(a, uint256.NewInt(amount))
}

func TestTransfer(t *testing.T) {
	st := newTestState()
	a, b := tAddr(1), tAddr(2)
	fund(st, a, 100)

	if err := Transfer(st, Signer(a), a, b, 60); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if st.GetBalance(a).Uint64() != 40 || st.GetBalance(b).Uint64() != 60 {
		t.Fatalf("balances: a=%v b=%v", st.GetBalance(a), st.GetBalance(b))
	}
	if err := Transfer(st, Signer(a), a, b, 41); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("overdraw: want ErrInsufficientBalance, got %v", err)
	}
	if err := Transfer(st, Signer(b), a, b, 1); !errors.Is(err, ErrMissingAuthority) {
		t.Fatalf("foreign signer: want ErrMissingAuthority, got %v", err)
	}
	if err := Transfer(st, nil, a, b, 1); !errors.Is(err, ErrMissingAuthority) {
		t.Fatalf("nil authority: want ErrMissingAuthority, got %v", err)
	}
}

func TestTransferZeroLeavesStateUntouched(t *testing.T) {
	st := newTestState()
	a, b := tAddr(1), tAddr(2)
	if err := Transfer(st, Signer(a), a, b, 0); err != nil {
		t.Fatalf("zero transfer: %v", err)
	}
	if st.Exist(b) {
		t.Fatalf("zero transfer created the destination")
	}
}

func TestTransferFromDataAccount(t *testing.T) {
	st := newTestState()
	a := tAddr(1)
	fund(st, a, 10)
	st.SetData(a, []byte{1})
	if err := Transfer(st, Signer(a), a, tAddr(2), 1); !errors.Is(err, ErrTransferFromDataAccount) {
		t.Fatalf("want ErrTransferFromDataAccount, got %v", err)
	}
}

func TestTransferWithSeeds(t *testing.T) {
	st := newTestState()
	owner := tAddr(7)
	seeds := [][]byte{params.VaultTag, owner.Bytes()}
	pda, nonce := crypto.FindProgramAddress(seeds, params.VaultProgramAddress)
	fund(st, pda, 50)

	good := crypto.SeedProof{Seeds: seeds, Nonce: nonce, Program: params.VaultProgramAddress}
	if err := TransferWithSeeds(st, pda, owner, 20, good); err != nil {
		t.Fatalf("seeded transfer: %v", err)
	}
	bad := good
	bad.Nonce = nonce - 1
	if err := TransferWithSeeds(st, pda, owner, 1, bad); !errors.Is(err, ErrMissingAuthority) {
		t.Fatalf("wrong nonce: want ErrMissingAuthority, got %v", err)
	}
	// The proof is scoped to its own address.
	fund(st, tAddr(8), 5)
	if err := TransferWithSeeds(st, tAddr(8), owner, 1, good); !errors.Is(err, ErrMissingAuthority) {
		t.Fatalf("reused proof: want ErrMissingAuthority, got %v", err)
	}
	if got := st.GetBalance(pda).Uint64(); got != 30 {
		t.Fatalf("pda balance: have %d, want 30", got)
	}
}

func TestRentSysvar(t *testing.T) {
	st := newTestState()
	if got, want := MinimumBalance(st, 0), DefaultRent().MinimumBalance(0); got != want {
		t.Fatalf("default reserve: have %d, want %d", got, want)
	}
	if got := DefaultRent().MinimumBalance(0); got != 890880 {
		t.Fatalf("default reserve of empty account: have %d, want 890880", got)
	}
	if err := SetRent(st, Rent{LamportsPerByteYear: 3125, ExemptionThreshold: 2.5}); err != nil {
		t.Fatalf("set rent: %v", err)
	}
	if got := MinimumBalance(st, 0); got != 1_000_000 {
		t.Fatalf("live reserve: have %d, want 1000000", got)
	}
	if got := MinimumBalance(st, 10); got != 1_078_125 {
		t.Fatalf("live reserve for 10 bytes: have %d, want 1078125", got)
	}
	if err := SetRent(st, Rent{LamportsPerByteYear: 1, ExemptionThreshold: -1}); err == nil {
		t.Fatalf("negative threshold accepted")
	}
}

func TestRentMinimumBalanceSaturates(t *testing.T) {
	tests := []struct {
		rent    Rent
		dataLen uint64
		want    uint64
	}{
		{DefaultRent(), 0, 890_880},
		{Rent{LamportsPerByteYear: math.MaxUint64 / 2, ExemptionThreshold: 1}, 10, math.MaxUint64},
		{Rent{LamportsPerByteYear: 1 << 40, ExemptionThreshold: 1e9}, 0, math.MaxUint64},
		{Rent{LamportsPerByteYear: 1, ExemptionThreshold: 1}, math.MaxUint64, math.MaxUint64},
		{Rent{LamportsPerByteYear: 1000, ExemptionThreshold: 0}, 10, 0},
	}
	for i, tt := range tests {
		if have := tt.rent.MinimumBalance(tt.dataLen); have != tt.want {
			t.Errorf("test %d: have %d, want %d", i, have, tt.want)
		}
	}
}

func TestCreateAndCloseAccount(t *testing.T) {
	st := newTestState()
	payer, program := tAddr(1), tAddr(0xee)
	seeds := [][]byte{[]byte("rec"), payer.Bytes()}
	addr, nonce := crypto.FindProgramAddress(seeds, program)
	proof := crypto.SeedProof{Seeds: seeds, Nonce: nonce, Program: program}
	auth := Authorities{Signer(payer), proof}
	reserve := MinimumBalance(st, 10)
	fund(st, payer, reserve+5)

	if err := CreateAccount(st, payer, Signer(payer), addr, 10, program); !errors.Is(err, ErrMissingAuthority) {
		t.Fatalf("unsigned new account: want ErrMissingAuthority, got %v", err)
	}
	if err := CreateAccount(st, payer, auth, addr, 10, program); err != nil {
		t.Fatalf("create: %v", err)
	}
	if st.GetOwner(addr) != program || len(st.GetData(addr)) != 10 || st.GetBalance(addr).Uint64() != reserve {
		t.Fatalf("allocated account mismatch")
	}
	if err := CreateAccount(st, payer, auth, addr, 10, program); !errors.Is(err, ErrAccountInUse) {
		t.Fatalf("double create: want ErrAccountInUse, got %v", err)
	}
	if _, err := CloseAccount(st, tAddr(0xdd), addr, payer); !errors.Is(err, ErrInvalidAccountOwner) {
		t.Fatalf("foreign close: want ErrInvalidAccountOwner, got %v", err)
	}
	refund, err := CloseAccount(st, program, addr, payer)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if refund != reserve || st.GetBalance(payer).Uint64() != reserve+5 || st.Exist(addr) {
		t.Fatalf("close refund mismatch: refund=%d payer=%v", refund, st.GetBalance(payer))
	}
}

func TestCreateAccountPrefunded(t *testing.T) {
	st := newTestState()
	payer, program := tAddr(1), tAddr(0xee)
	seeds := [][]byte{[]byte("rec"), payer.Bytes()}
	addr, nonce := crypto.FindProgramAddress(seeds, program)
	auth := Authorities{Signer(payer), crypto.SeedProof{Seeds: seeds, Nonce: nonce, Program: program}}
	reserve := MinimumBalance(st, 0)
	fund(st, payer, reserve)
	fund(st, addr, reserve-1)

	if err := CreateAccount(st, payer, auth, addr, 0, program); err != nil {
		t.Fatalf("create prefunded: %v", err)
	}
	if got := st.GetBalance(payer).Uint64(); got != reserve-1 {
		t.Fatalf("payer charged for prefunded lamports: %d left", got)
	}
}

func TestHandlerTransfer(t *testing.T) {
	st := newTestState()
	a, b := tAddr(1), tAddr(2)
	fund(st, a, 10)
	data, _ := sysaction.MakeSysAction(sysaction.ActionSystemTransfer, sysaction.TransferPayload{To: b, Amount: 4})
	ctx := &sysaction.Context{From: a, StateDB: st, ChainConfig: params.TestChainConfig}
	if _, err := sysaction.Execute(ctx, data); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if st.GetBalance(b).Uint64() != 4 {
		t.Fatalf("recipient balance: %v", st.GetBalance(b))
	}
}
