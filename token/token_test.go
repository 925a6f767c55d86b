package token

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/rawdb"
	"github.com/tos-network/tosvault/core/state"
	"github.com/tos-network/tosvault/crypto"
	"github.com/tos-network/tosvault/params"
	"github.com/tos-network/tosvault/sysaction"
	"github.com/tos-network/tosvault/system"
)

// newTestState creates a fresh in-memory StateDB for tests.
func newTestState() *state.StateDB {
	db := state.NewDatabase(rawdb.NewMemoryDatabase())
	s, _ := state.New(db)
	return s
}

func tAddr(b byte) common.Address { return common.Address{b} }

func newCtx(st *state.StateDB, from common.Address) *sysaction.Context {
	return &sysaction.Context{From: from, StateDB: st, ChainConfig: params.TestChainConfig}
}

func exec(t *testing.T, ctx *sysaction.Context, kind sysaction.ActionKind, payload interface{}) error {
	t.Helper()
	data, err := sysaction.MakeSysAction(kind, payload)
	if err != nil {
		t.Fatalf("encode %s: %v", kind, err)
	}
	_, err = sysaction.Execute(ctx, data)
	return err
}

// setupMint creates a mint with the given decimals owned by creator and
// returns its address.
func setupMint(t *testing.T, st *state.StateDB, creator common.Address, decimals uint8) common.Address {
	t.Helper()
	st.AddBalance(creator, uint256.NewInt(100*params.TOS))
	if err := exec(t, newCtx(st, creator), sysaction.ActionTokenCreateMint, sysaction.CreateMintPayload{Symbol: "USDX", Decimals: decimals}); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	mint, _, _ := MintAddress(creator, "USDX")
	return mint
}

func TestCreateMint(t *testing.T) {
	st := newTestState()
	creator := tAddr(1)
	mint := setupMint(t, st, creator, 6)

	m, err := ReadMint(st, mint)
	if err != nil {
		t.Fatalf("read mint: %v", err)
	}
	if m.Decimals != 6 || m.MintAuthority != creator || m.Supply != 0 {
		t.Fatalf("mint mismatch: %+v", m)
	}
	if crypto.IsOnCurve(mint.Bytes()) {
		t.Fatalf("mint address on curve")
	}
	// Same creator and symbol collide.
	err = exec(t, newCtx(st, creator), sysaction.ActionTokenCreateMint, sysaction.CreateMintPayload{Symbol: "USDX", Decimals: 6})
	if !errors.Is(err, system.ErrAccountInUse) {
		t.Fatalf("duplicate mint: want ErrAccountInUse, got %v", err)
	}
	if _, _, err := MintAddress(creator, ""); !errors.Is(err, ErrInvalidSymbol) {
		t.Fatalf("empty symbol: want ErrInvalidSymbol, got %v", err)
	}
}

func TestAssociatedAccountIdempotent(t *testing.T) {
	st := newTestState()
	creator, wallet := tAddr(1), tAddr(2)
	mint := setupMint(t, st, creator, 6)

	ctx := newCtx(st, creator)
	payload := sysaction.CreateTokenAccountPayload{Wallet: &wallet, Mint: mint}
	if err := exec(t, ctx, sysaction.ActionTokenCreateAccount, payload); err != nil {
		t.Fatalf("create ata: %v", err)
	}
	paid := st.GetBalance(creator)
	if err := exec(t, ctx, sysaction.ActionTokenCreateAccount, payload); err != nil {
		t.Fatalf("repeat create ata: %v", err)
	}
	if st.GetBalance(creator).Cmp(paid) != 0 {
		t.Fatalf("idempotent create charged the payer again")
	}
	ata, _ := AssociatedAddress(wallet, mint)
	acct, err := ReadAccount(st, ata)
	if err != nil {
		t.Fatalf("read ata: %v", err)
	}
	if acct.Owner != wallet || acct.Mint != mint || acct.Amount != 0 {
		t.Fatalf("ata mismatch: %+v", acct)
	}
}

func TestMintToAndTransferChecked(t *testing.T) {
	st := newTestState()
	creator, alice, bob := tAddr(1), tAddr(2), tAddr(3)
	mint := setupMint(t, st, creator, 6)

	aliceATA, err := CreateAssociatedAccount(st, creator, system.Signer(creator), alice, mint)
	if err != nil {
		t.Fatalf("alice ata: %v", err)
	}
	bobATA, err := CreateAssociatedAccount(st, creator, system.Signer(creator), bob, mint)
	if err != nil {
		t.Fatalf("bob ata: %v", err)
	}
	if err := MintTo(st, system.Signer(alice), mint, aliceATA, 1); !errors.Is(err, ErrOwnerMismatch) {
		t.Fatalf("foreign mint authority: want ErrOwnerMismatch, got %v", err)
	}
	if err := MintTo(st, system.Signer(creator), mint, aliceATA, 5_000000); err != nil {
		t.Fatalf("mint to: %v", err)
	}
	if err := TransferChecked(st, system.Signer(alice), aliceATA, mint, bobATA, 1, 9); !errors.Is(err, ErrDecimalsMismatch) {
		t.Fatalf("bad decimals: want ErrDecimalsMismatch, got %v", err)
	}
	if err := TransferChecked(st, system.Signer(bob), aliceATA, mint, bobATA, 1, 6); !errors.Is(err, ErrOwnerMismatch) {
		t.Fatalf("foreign signer: want ErrOwnerMismatch, got %v", err)
	}
	if err := TransferChecked(st, system.Signer(alice), aliceATA, mint, bobATA, 6_000000, 6); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("overdraw: want ErrInsufficientFunds, got %v", err)
	}
	if err := TransferChecked(st, system.Signer(alice), aliceATA, mint, bobATA, 2_000000, 6); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if BalanceOf(st, aliceATA) != 3_000000 || BalanceOf(st, bobATA) != 2_000000 {
		t.Fatalf("balances: alice=%d bob=%d", BalanceOf(st, aliceATA), BalanceOf(st, bobATA))
	}
	m, _ := ReadMint(st, mint)
	if m.Supply != 5_000000 {
		t.Fatalf("supply: have %d, want 5000000", m.Supply)
	}
}

func TestTransferCheckedMintMismatch(t *testing.T) {
	st := newTestState()
	creator, alice := tAddr(1), tAddr(2)
	mint := setupMint(t, st, creator, 6)
	if err := exec(t, newCtx(st, creator), sysaction.ActionTokenCreateMint, sysaction.CreateMintPayload{Symbol: "OTHR", Decimals: 6}); err != nil {
		t.Fatalf("second mint: %v", err)
	}
	other, _, _ := MintAddress(creator, "OTHR")

	src, _ := CreateAssociatedAccount(st, creator, system.Signer(creator), alice, mint)
	dst, _ := CreateAssociatedAccount(st, creator, system.Signer(creator), alice, other)
	if err := TransferChecked(st, system.Signer(alice), src, mint, dst, 0, 6); !errors.Is(err, ErrMintMismatch) {
		t.Fatalf("cross-mint transfer: want ErrMintMismatch, got %v", err)
	}
	if _, err := ReadAccount(st, tAddr(9)); !errors.Is(err, ErrInvalidAccount) {
		t.Fatalf("missing account: want ErrInvalidAccount, got %v", err)
	}
}
