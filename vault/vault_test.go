package vault

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
	"github.com/tos-network/tosvault/system"
	"github.com/tos-network/tosvault/token"
)

const (
	testReserve       = 1_000_000 // MinimumBalance(0) under testRent
	testRecordReserve = 1_078_125 // MinimumBalance(RecordSize) under testRent
)

var testRent = system.Rent{LamportsPerByteYear: 3125, ExemptionThreshold: 2.5}

// newTestState creates a fresh in-memory StateDB with the test rent sysvar.
func newTestState(t *testing.T) *state.StateDB {
	t.Helper()
	db := state.NewDatabase(rawdb.NewMemoryDatabase())
	s, _ := state.New(db)
	if err := system.SetRent(s, testRent); err != nil {
		t.Fatalf("set rent: %v", err)
	}
	return s
}

// tAddr generates a deterministic test address.
func tAddr(b byte) common.Address { return common.Address{b} }

func fund(st *state.StateDB, a common.Address, amount uint64) {
	st.AddBalance(a, uint256.NewInt(amount))
}

func balance(st *state.StateDB, a common.Address) uint64 {
	return st.GetBalance(a).Uint64()
}

func custodyOf(owner common.Address) common.Address {
	record, _ := RecordAddress(owner)
	custody, _ := CustodyAddress(record)
	return custody
}

func TestReserveUnderTestRent(t *testing.T) {
	st := newTestState(t)
	if got := system.MinimumBalance(st, 0); got != testReserve {
		t.Fatalf("reserve: have %d, want %d", got, testReserve)
	}
	if got := system.MinimumBalance(st, RecordSize); got != testRecordReserve {
		t.Fatalf("record reserve: have %d, want %d", got, testRecordReserve)
	}
}

func TestDerivationDeterministic(t *testing.T) {
	owner := tAddr(0x11)
	r1, n1 := RecordAddress(owner)
	r2, n2 := RecordAddress(owner)
	if r1 != r2 || n1 != n2 {
		t.Fatalf("record derivation not deterministic")
	}
	c1, _ := CustodyAddress(r1)
	if c1 == r1 || c1 == owner {
		t.Fatalf("custody collides with record or owner")
	}
	env := NewEnv(nil)
	if cached, nonce := env.find(RecordSeeds(owner)); cached != r1 || nonce != n1 {
		t.Fatalf("cached derivation differs")
	}
	if r3, _ := RecordAddress(tAddr(0x12)); r3 == r1 {
		t.Fatalf("distinct owners share a record")
	}
}

func TestInitialize(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	fund(st, owner, 10_000_000)
	env := NewEnv(st)

	if got := ReadStatus(st, owner); got != Uninitialized {
		t.Fatalf("status before initialize: %v", got)
	}
	if err := Initialize(env, owner); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if got := balance(st, custodyOf(owner)); got != testReserve {
		t.Fatalf("custody after initialize: have %d, want %d", got, testReserve)
	}
	if got := balance(st, owner); got != 10_000_000-testReserve-testRecordReserve {
		t.Fatalf("owner after initialize: have %d", got)
	}
	if got := ReadStatus(st, owner); got != Active {
		t.Fatalf("status after initialize: %v", got)
	}
	record, stateNonce := RecordAddress(owner)
	var rec Record
	if err := rec.UnmarshalBinary(st.GetData(record)); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	_, vaultNonce := CustodyAddress(record)
	if rec.StateNonce != stateNonce || rec.VaultNonce != vaultNonce {
		t.Fatalf("stored nonces %+v, want %d/%d", rec, stateNonce, vaultNonce)
	}
	if st.GetOwner(record) != params.VaultProgramAddress {
		t.Fatalf("record not owned by vault program")
	}
}

func TestInitializeTwice(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	fund(st, owner, 10_000_000)
	env := NewEnv(st)

	if err := Initialize(env, owner); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	before, custodyBefore := balance(st, owner), balance(st, custodyOf(owner))
	if err := Initialize(env, owner); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second initialize: want ErrAlreadyInitialized, got %v", err)
	}
	if balance(st, owner) != before || balance(st, custodyOf(owner)) != custodyBefore {
		t.Fatalf("failed initialize changed balances")
	}
}

func TestInitializeInsufficientFunds(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	// Enough for the record, not for the custody reserve.
	fund(st, owner, testRecordReserve+10)
	env := NewEnv(st)

	if err := Initialize(env, owner); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
	record, _ := RecordAddress(owner)
	if st.Exist(record) || balance(st, owner) != testRecordReserve+10 {
		t.Fatalf("failed initialize left a partial vault")
	}
}

func TestDeposit(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	fund(st, owner, 10_000_000)
	env := NewEnv(st)

	if err := Deposit(env, owner, 5); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("deposit before initialize: want ErrNotInitialized, got %v", err)
	}
	if err := Initialize(env, owner); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	for _, amount := range []uint64{0, 1, 250_000} {
		owned, held := balance(st, owner), balance(st, custodyOf(owner))
		if err := Deposit(env, owner, amount); err != nil {
			t.Fatalf("deposit %d: %v", amount, err)
		}
		if balance(st, owner) != owned-amount || balance(st, custodyOf(owner)) != held+amount {
			t.Fatalf("deposit %d moved the wrong amount", amount)
		}
	}
	owned, held := balance(st, owner), balance(st, custodyOf(owner))
	if err := Deposit(env, owner, owned+1); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("overdraw deposit: want ErrInsufficientBalance, got %v", err)
	}
	if balance(st, owner) != owned || balance(st, custodyOf(owner)) != held {
		t.Fatalf("failed deposit changed balances")
	}
}

func TestWithdrawReserveBoundary(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	fund(st, owner, 10_000_000)
	env := NewEnv(st)
	if err := Initialize(env, owner); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := Deposit(env, owner, 300); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	custody := custodyOf(owner)

	tests := []struct {
		amount uint64
		ok     bool
	}{
		{301, false},
		{math.MaxUint64, false},
		{300, true}, // balance == reserve + amount
		{1, false},
		{0, true},
	}
	for _, tt := range tests {
		owned, held := balance(st, owner), balance(st, custody)
		err := Withdraw(env, owner, tt.amount)
		if tt.ok {
			if err != nil {
				t.Fatalf("withdraw %d: %v", tt.amount, err)
			}
			if balance(st, owner) != owned+tt.amount || balance(st, custody) != held-tt.amount {
				t.Fatalf("withdraw %d moved the wrong amount", tt.amount)
			}
			continue
		}
		if !errors.Is(err, ErrInsufficientReserve) {
			t.Fatalf("withdraw %d: want ErrInsufficientReserve, got %v", tt.amount, err)
		}
		if balance(st, owner) != owned || balance(st, custody) != held {
			t.Fatalf("failed withdraw %d changed balances", tt.amount)
		}
	}
}

func TestWithdrawReserveIsLive(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	fund(st, owner, 10_000_000)
	env := NewEnv(st)
	if err := Initialize(env, owner); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	// Halving the threshold frees half the reserve.
	if err := system.SetRent(st, system.Rent{LamportsPerByteYear: 3125, ExemptionThreshold: 1.25}); err != nil {
		t.Fatalf("set rent: %v", err)
	}
	if err := Withdraw(env, owner, testReserve/2); err != nil {
		t.Fatalf("withdraw under lowered reserve: %v", err)
	}
	if got := balance(st, custodyOf(owner)); got != testReserve/2 {
		t.Fatalf("custody: have %d, want %d", got, testReserve/2)
	}
}

func TestAddressMismatch(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	fund(st, owner, 10_000_000)
	env := NewEnv(st)
	if err := Initialize(env, owner); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := Deposit(env, owner, 1000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	record, _ := RecordAddress(owner)
	data := st.GetData(record)
	data[RecordSize-1]--
	st.SetData(record, data)

	held := balance(st, custodyOf(owner))
	if err := Withdraw(env, owner, 1000); !errors.Is(err, ErrAddressMismatch) {
		t.Fatalf("wrong vault nonce: want ErrAddressMismatch, got %v", err)
	}
	if err := Deposit(env, owner, 1); !errors.Is(err, ErrAddressMismatch) {
		t.Fatalf("wrong vault nonce on deposit: want ErrAddressMismatch, got %v", err)
	}
	if balance(st, custodyOf(owner)) != held {
		t.Fatalf("mismatched vault moved value")
	}

	data[0] ^= 0xff
	st.SetData(record, data)
	if err := Withdraw(env, owner, 0); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("bad discriminator: want ErrInvalidRecord, got %v", err)
	}
}

// TestVaultLifecycle walks the reserve scenario end to end: initialize,
// deposit, withdraw down to the reserve, fail one unit below it, then close.
func TestVaultLifecycle(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	fund(st, owner, 10_000_000)
	env := NewEnv(st)
	custody := custodyOf(owner)

	if err := Initialize(env, owner); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := Deposit(env, owner, 500_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if got := balance(st, custody); got != 1_500_000 {
		t.Fatalf("custody after deposit: have %d, want 1500000", got)
	}
	if err := Withdraw(env, owner, 500_000); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got := balance(st, custody); got != 1_000_000 {
		t.Fatalf("custody after withdraw: have %d, want 1000000", got)
	}
	if err := Withdraw(env, owner, 1); !errors.Is(err, ErrInsufficientReserve) {
		t.Fatalf("withdraw below reserve: want ErrInsufficientReserve, got %v", err)
	}
	if got := balance(st, custody); got != 1_000_000 {
		t.Fatalf("custody after failed withdraw: have %d, want 1000000", got)
	}

	before := balance(st, owner)
	if err := Close(env, owner); err != nil {
		t.Fatalf("close: %v", err)
	}
	record, _ := RecordAddress(owner)
	if st.Exist(record) {
		t.Fatalf("record survived close")
	}
	if got := balance(st, owner); got != before+testRecordReserve {
		t.Fatalf("close refund: owner has %d, want %d", got, before+testRecordReserve)
	}
	if got := balance(st, custody); got != 1_000_000 {
		t.Fatalf("close touched custody: %d", got)
	}
	if got := ReadStatus(st, owner); got != Closed {
		t.Fatalf("status after close: %v", got)
	}

	if err := Withdraw(env, owner, 0); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("withdraw after close: want ErrNotInitialized, got %v", err)
	}
	if err := Deposit(env, owner, 1); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("deposit after close: want ErrNotInitialized, got %v", err)
	}
	if err := Close(env, owner); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("close after close: want ErrNotInitialized, got %v", err)
	}
	if err := Initialize(env, owner); !errors.Is(err, ErrAlreadyClosed) || !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("initialize after close: want ErrAlreadyClosed, got %v", err)
	}

	info := Inspect(st, owner)
	if info.Status != Closed || info.Balance != 1_000_000 || info.Withdrawable != 0 {
		t.Fatalf("inspect after close: %+v", info)
	}
}

func TestInspectActive(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	fund(st, owner, 10_000_000)
	env := NewEnv(st)
	if info := Inspect(st, owner); info.Status != Uninitialized || info.Balance != 0 {
		t.Fatalf("inspect before initialize: %+v", info)
	}
	if err := Initialize(env, owner); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := Deposit(env, owner, 42); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	info := Inspect(st, owner)
	if info.Status != Active || info.Reserve != testReserve || info.Balance != testReserve+42 || info.Withdrawable != 42 {
		t.Fatalf("inspect: %+v", info)
	}
	if info.Custody != custodyOf(owner) {
		t.Fatalf("inspect custody mismatch")
	}
}

func TestSeparateOwners(t *testing.T) {
	st := newTestState(t)
	a, b := tAddr(1), tAddr(2)
	fund(st, a, 10_000_000)
	fund(st, b, 10_000_000)
	env := NewEnv(st)

	if err := Initialize(env, a); err != nil {
		t.Fatalf("initialize a: %v", err)
	}
	if err := Deposit(env, b, 1); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("b uses a's vault: %v", err)
	}
	if err := Initialize(env, b); err != nil {
		t.Fatalf("initialize b: %v", err)
	}
	if custodyOf(a) == custodyOf(b) {
		t.Fatalf("owners share custody")
	}
}

func TestHandlerDispatch(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	fund(st, owner, 10_000_000)
	ctx := &sysaction.Context{From: owner, StateDB: st, ChainConfig: params.TestChainConfig}

	run := func(kind sysaction.ActionKind, payload interface{}) error {
		data, err := sysaction.MakeSysAction(kind, payload)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		_, err = sysaction.Execute(ctx, data)
		return err
	}
	if err := run(sysaction.ActionVaultInitialize, nil); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := run(sysaction.ActionVaultDeposit, sysaction.VaultAmountPayload{Amount: 7}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := run(sysaction.ActionVaultWithdraw, sysaction.VaultAmountPayload{Amount: 8}); !errors.Is(err, ErrInsufficientReserve) {
		t.Fatalf("withdraw: want ErrInsufficientReserve, got %v", err)
	}
	if err := run(sysaction.ActionVaultClose, nil); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := balance(st, custodyOf(owner)); got != testReserve+7 {
		t.Fatalf("custody: have %d", got)
	}
}

func TestCustodyProofScopedToCustody(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	fund(st, owner, 10_000_000)
	env := NewEnv(st)
	if err := Initialize(env, owner); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	v, err := env.load(owner)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	proof := v.custodyProof()
	if !proof.Authorizes(v.custodyAddr) {
		t.Fatalf("proof does not authorize its custody")
	}
	for _, other := range []common.Address{owner, v.recordAddr, custodyOf(tAddr(2))} {
		if proof.Authorizes(other) {
			t.Fatalf("custody proof authorizes %v", other)
		}
	}
	if crypto.IsOnCurve(v.custodyAddr.Bytes()) || crypto.IsOnCurve(v.recordAddr.Bytes()) {
		t.Fatalf("derived vault address has a private key")
	}
}

// setupToken creates a mint with the given precision and credits amount to
// owner's associated token account.
func setupToken(t *testing.T, st *state.StateDB, owner common.Address, decimals uint8, amount uint64) (mint, wallet common.Address) {
	t.Helper()
	creator := tAddr(0xc0)
	fund(st, creator, 100*params.TOS)
	mint, nonce, err := token.MintAddress(creator, "USDX")
	if err != nil {
		t.Fatalf("mint address: %v", err)
	}
	auth := system.Authorities{
		system.Signer(creator),
		crypto.SeedProof{Seeds: token.MintSeeds(creator, "USDX"), Nonce: nonce, Program: params.TokenProgramAddress},
	}
	if err := token.CreateMint(st, creator, auth, mint, creator, decimals); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	wallet, err = token.CreateAssociatedAccount(st, owner, system.Signer(owner), owner, mint)
	if err != nil {
		t.Fatalf("create ata: %v", err)
	}
	if err := token.MintTo(st, system.Signer(creator), mint, wallet, amount); err != nil {
		t.Fatalf("mint to: %v", err)
	}
	return mint, wallet
}

func TestLockUnlockRoundTrip(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	fund(st, owner, 100*params.TOS)
	mint, wallet := setupToken(t, st, owner, 6, 2_000000)
	env := NewEnv(st)

	custody, _ := TokenCustodyAddress(owner, mint)
	if custody == wallet {
		t.Fatalf("token custody equals the owner's associated account")
	}
	if err := Lock(env, owner, mint, 2_000000, 6); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if token.BalanceOf(st, wallet) != 0 || token.BalanceOf(st, custody) != 2_000000 {
		t.Fatalf("after lock: wallet=%d custody=%d", token.BalanceOf(st, wallet), token.BalanceOf(st, custody))
	}
	acct, err := token.ReadAccount(st, custody)
	if err != nil || acct.Owner != owner || acct.Mint != mint {
		t.Fatalf("custody account: %+v %v", acct, err)
	}
	if err := Unlock(env, owner, mint, 2_000000, 6); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if token.BalanceOf(st, wallet) != 2_000000 || token.BalanceOf(st, custody) != 0 {
		t.Fatalf("after unlock: wallet=%d custody=%d", token.BalanceOf(st, wallet), token.BalanceOf(st, custody))
	}
	info := InspectToken(st, owner, mint)
	if !info.Exists || info.Locked != 0 || info.Free != 2_000000 || info.Decimals != 6 {
		t.Fatalf("inspect token: %+v", info)
	}
}

func TestLockPrecisionMismatch(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	fund(st, owner, 100*params.TOS)
	mint, wallet := setupToken(t, st, owner, 6, 2_000000)
	env := NewEnv(st)
	custody, _ := TokenCustodyAddress(owner, mint)

	lamports := balance(st, owner)
	if err := Lock(env, owner, mint, 1, 9); !errors.Is(err, ErrPrecisionMismatch) {
		t.Fatalf("lock: want ErrPrecisionMismatch, got %v", err)
	}
	if err := Unlock(env, owner, mint, 1, 2); !errors.Is(err, ErrPrecisionMismatch) {
		t.Fatalf("unlock: want ErrPrecisionMismatch, got %v", err)
	}
	if st.Exist(custody) || balance(st, owner) != lamports || token.BalanceOf(st, wallet) != 2_000000 {
		t.Fatalf("failed lock left state behind")
	}
}

func TestLockInsufficientFundsIsAtomic(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	fund(st, owner, 100*params.TOS)
	mint, _ := setupToken(t, st, owner, 6, 5)
	env := NewEnv(st)
	custody, _ := TokenCustodyAddress(owner, mint)

	if err := Lock(env, owner, mint, 6, 6); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("lock: want ErrInsufficientBalance, got %v", err)
	}
	if st.Exist(custody) {
		t.Fatalf("failed lock created the custody account")
	}
	// Unlock on a fresh custody creates it and moves nothing.
	if err := Unlock(env, owner, mint, 0, 6); err != nil {
		t.Fatalf("unlock zero: %v", err)
	}
	if _, err := token.ReadAccount(st, custody); err != nil {
		t.Fatalf("unlock did not create custody: %v", err)
	}
}

func TestUnlockOverdrawIsAtomic(t *testing.T) {
	st := newTestState(t)
	owner := tAddr(1)
	fund(st, owner, 100*params.TOS)
	mint, wallet := setupToken(t, st, owner, 6, 5_000000)
	env := NewEnv(st)
	custody, _ := TokenCustodyAddress(owner, mint)

	if err := Lock(env, owner, mint, 3_000000, 6); err != nil {
		t.Fatalf("lock: %v", err)
	}
	lamports := balance(st, owner)
	if err := Unlock(env, owner, mint, 3_000001, 6); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("unlock: want ErrInsufficientBalance, got %v", err)
	}
	if have := token.BalanceOf(st, wallet); have != 2_000000 {
		t.Fatalf("wallet after failed unlock: have %d, want %d", have, 2_000000)
	}
	if have := token.BalanceOf(st, custody); have != 3_000000 {
		t.Fatalf("custody after failed unlock: have %d, want %d", have, 3_000000)
	}
	if have := balance(st, owner); have != lamports {
		t.Fatalf("lamports after failed unlock: have %d, want %d", have, lamports)
	}
}
