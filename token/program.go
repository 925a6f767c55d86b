package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/vm"
	"github.com/tos-network/tosvault/crypto"
	"github.com/tos-network/tosvault/params"
	"github.com/tos-network/tosvault/system"
)

// MintSeeds returns the derivation seeds of the mint created by creator under
// symbol.
func MintSeeds(creator common.Address, symbol string) [][]byte {
	return [][]byte{params.MintTag, creator.Bytes(), []byte(symbol)}
}

// MintAddress derives the mint address created by creator under symbol.
func MintAddress(creator common.Address, symbol string) (common.Address, uint8, error) {
	if len(symbol) == 0 || len(symbol) > MaxSymbolLength {
		return common.Address{}, 0, fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	addr, nonce := crypto.FindProgramAddress(MintSeeds(creator, symbol), params.TokenProgramAddress)
	return addr, nonce, nil
}

// AssociatedSeeds returns the derivation seeds of wallet's canonical account
// for mint.
func AssociatedSeeds(wallet, mint common.Address) [][]byte {
	return [][]byte{wallet.Bytes(), params.TokenProgramAddress.Bytes(), mint.Bytes()}
}

// AssociatedAddress derives wallet's canonical token account for mint.
func AssociatedAddress(wallet, mint common.Address) (common.Address, uint8) {
	return crypto.FindProgramAddress(AssociatedSeeds(wallet, mint), params.AssociatedTokenProgramAddress)
}

// CreateMint allocates and initializes a mint at addr. auth must authorize
// payer and addr.
func CreateMint(db vm.StateDB, payer common.Address, auth system.Authority, addr common.Address, authority common.Address, decimals uint8) error {
	if err := system.CreateAccount(db, payer, auth, addr, MintSize, params.TokenProgramAddress); err != nil {
		return err
	}
	mint := &Mint{MintAuthority: authority, Decimals: decimals, Initialized: true}
	if err := writeMint(db, addr, mint); err != nil {
		return err
	}
	log.Debug("Created mint", "mint", addr, "authority", authority, "decimals", decimals)
	return nil
}

// InitializeAccount binds an allocated token-program account to mint and owner.
func InitializeAccount(db vm.StateDB, addr, mint, owner common.Address) error {
	acct, err := readRawAccount(db, addr)
	if err != nil {
		return err
	}
	if acct.Initialized {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, addr.TerminalString())
	}
	if _, err := ReadMint(db, mint); err != nil {
		return err
	}
	return writeAccount(db, addr, &Account{Mint: mint, Owner: owner, Initialized: true})
}

// CreateAccount allocates a token account at addr and initializes it for
// mint and owner. auth must authorize payer and addr.
func CreateAccount(db vm.StateDB, payer common.Address, auth system.Authority, addr, mint, owner common.Address) error {
	if _, err := ReadMint(db, mint); err != nil {
		return err
	}
	if err := system.CreateAccount(db, payer, auth, addr, AccountSize, params.TokenProgramAddress); err != nil {
		return err
	}
	return InitializeAccount(db, addr, mint, owner)
}

// CreateAssociatedAccount creates wallet's canonical account for mint, paid
// by payer. An existing account with the same mint and owner is accepted.
func CreateAssociatedAccount(db vm.StateDB, payer common.Address, auth system.Authority, wallet, mint common.Address) (common.Address, error) {
	addr, nonce := AssociatedAddress(wallet, mint)
	if acct, err := ReadAccount(db, addr); err == nil {
		if acct.Mint != mint || acct.Owner != wallet {
			return addr, fmt.Errorf("%w: %s", ErrInvalidAccount, addr.TerminalString())
		}
		return addr, nil
	}
	proof := crypto.SeedProof{
		Seeds:   AssociatedSeeds(wallet, mint),
		Nonce:   nonce,
		Program: params.AssociatedTokenProgramAddress,
	}
	return addr, CreateAccount(db, payer, system.Authorities{auth, proof}, addr, mint, wallet)
}

// MintTo issues amount new tokens into the token account to. auth must
// authorize the mint authority.
func MintTo(db vm.StateDB, auth system.Authority, mintAddr, to common.Address, amount uint64) error {
	// ── Validation phase ─────────────────────────────────────────────────────
	mint, err := ReadMint(db, mintAddr)
	if err != nil {
		return err
	}
	if auth == nil || !auth.Authorizes(mint.MintAuthority) {
		return fmt.Errorf("%w: mint authority %s", ErrOwnerMismatch, mint.MintAuthority.TerminalString())
	}
	dst, err := ReadAccount(db, to)
	if err != nil {
		return err
	}
	if dst.Mint != mintAddr {
		return fmt.Errorf("%w: %s", ErrMintMismatch, to.TerminalString())
	}
	if mint.Supply+amount < mint.Supply || dst.Amount+amount < dst.Amount {
		return ErrOverflow
	}

	// ── Mutation phase ───────────────────────────────────────────────────────
	mint.Supply += amount
	dst.Amount += amount
	if err := writeMint(db, mintAddr, mint); err != nil {
		return err
	}
	return writeAccount(db, to, dst)
}

// TransferChecked moves amount tokens between two accounts of mint. decimals
// must equal the mint's registered precision; auth must authorize the owner
// of the source account.
func TransferChecked(db vm.StateDB, auth system.Authority, from, mintAddr, to common.Address, amount uint64, decimals uint8) error {
	// ── Validation phase ─────────────────────────────────────────────────────
	src, err := ReadAccount(db, from)
	if err != nil {
		return err
	}
	if auth == nil || !auth.Authorizes(src.Owner) {
		return fmt.Errorf("%w: %s", ErrOwnerMismatch, src.Owner.TerminalString())
	}
	if src.Mint != mintAddr {
		return fmt.Errorf("%w: %s", ErrMintMismatch, from.TerminalString())
	}
	mint, err := ReadMint(db, mintAddr)
	if err != nil {
		return err
	}
	if mint.Decimals != decimals {
		return fmt.Errorf("%w: mint has %d, got %d", ErrDecimalsMismatch, mint.Decimals, decimals)
	}
	dst, err := ReadAccount(db, to)
	if err != nil {
		return err
	}
	if dst.Mint != mintAddr {
		return fmt.Errorf("%w: %s", ErrMintMismatch, to.TerminalString())
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientFunds, from.TerminalString(), src.Amount, amount)
	}
	if from == to || amount == 0 {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return ErrOverflow
	}

	// ── Mutation phase ───────────────────────────────────────────────────────
	src.Amount -= amount
	dst.Amount += amount
	if err := writeAccount(db, from, src); err != nil {
		return err
	}
	if err := writeAccount(db, to, dst); err != nil {
		return err
	}
	log.Trace("Token transfer", "mint", mintAddr, "from", from, "to", to, "amount", amount)
	return nil
}
