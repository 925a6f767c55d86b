package vault

import (
	"bytes"
	"fmt"

	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/vm"
	"github.com/tos-network/tosvault/crypto"
	"github.com/tos-network/tosvault/params"
)

// RecordSize is the data size of a Vault Record:
// discriminator[8] state_nonce[1] vault_nonce[1].
const RecordSize = params.DiscriminatorLength + 2

var (
	vaultProgram = params.VaultProgramAddress

	// recordDiscriminator tags Vault Record data.
	recordDiscriminator = crypto.Keccak256([]byte("account:VaultState"))[:params.DiscriminatorLength]
)

// Record is the persisted state of a native vault. Both nonces are written
// once by Initialize.
type Record struct {
	StateNonce uint8 `json:"stateNonce"`
	VaultNonce uint8 `json:"vaultNonce"`
}

// MarshalBinary encodes the record with its discriminator.
func (r *Record) MarshalBinary() ([]byte, error) {
	enc := make([]byte, RecordSize)
	copy(enc, recordDiscriminator)
	enc[params.DiscriminatorLength] = r.StateNonce
	enc[params.DiscriminatorLength+1] = r.VaultNonce
	return enc, nil
}

// UnmarshalBinary decodes a record, rejecting foreign or truncated data.
func (r *Record) UnmarshalBinary(data []byte) error {
	if len(data) != RecordSize {
		return fmt.Errorf("%w: length %d", ErrInvalidRecord, len(data))
	}
	if !bytes.Equal(data[:params.DiscriminatorLength], recordDiscriminator) {
		return fmt.Errorf("%w: discriminator %x", ErrInvalidRecord, data[:params.DiscriminatorLength])
	}
	r.StateNonce = data[params.DiscriminatorLength]
	r.VaultNonce = data[params.DiscriminatorLength+1]
	return nil
}

// RecordSeeds are the derivation seeds of owner's Vault Record.
func RecordSeeds(owner common.Address) [][]byte {
	return [][]byte{params.VaultStateTag, owner.Bytes()}
}

// CustodySeeds are the derivation seeds of the native custody account of a
// Vault Record.
func CustodySeeds(record common.Address) [][]byte {
	return [][]byte{params.VaultTag, record.Bytes()}
}

// TokenCustodySeeds are the derivation seeds of owner's custody token account
// for mint.
func TokenCustodySeeds(owner, mint common.Address) [][]byte {
	return [][]byte{params.VaultTag, owner.Bytes(), mint.Bytes()}
}

// RecordAddress derives owner's Vault Record address.
func RecordAddress(owner common.Address) (common.Address, uint8) {
	return crypto.FindProgramAddress(RecordSeeds(owner), vaultProgram)
}

// CustodyAddress derives the native custody address of a Vault Record.
func CustodyAddress(record common.Address) (common.Address, uint8) {
	return crypto.FindProgramAddress(CustodySeeds(record), vaultProgram)
}

// TokenCustodyAddress derives owner's custody token account for mint.
func TokenCustodyAddress(owner, mint common.Address) (common.Address, uint8) {
	return crypto.FindProgramAddress(TokenCustodySeeds(owner, mint), vaultProgram)
}

// closedSlot marks an owner whose vault was closed. It lives in the vault
// program's storage and outlives the record.
func closedSlot(owner common.Address) common.Hash {
	key := make([]byte, 0, common.AddressLength+1+len("closed"))
	key = append(key, owner.Bytes()...)
	key = append(key, 0x00)
	key = append(key, "closed"...)
	return crypto.Keccak256Hash(key)
}

func readClosed(db vm.StateDB, owner common.Address) bool {
	return db.GetState(vaultProgram, closedSlot(owner))[31] != 0
}

func writeClosed(db vm.StateDB, owner common.Address) {
	var val common.Hash
	val[31] = 1
	db.SetState(vaultProgram, closedSlot(owner), val)
}

// ReadStatus returns the lifecycle state of owner's native vault.
func ReadStatus(db vm.StateDB, owner common.Address) Status {
	if readClosed(db, owner) {
		return Closed
	}
	addr, _ := RecordAddress(owner)
	if db.GetOwner(addr) == vaultProgram {
		return Active
	}
	return Uninitialized
}

// vaultAccounts is an owner's verified native vault.
type vaultAccounts struct {
	record       Record
	recordAddr   common.Address
	custodyAddr  common.Address
	custodySeeds [][]byte
}

// load re-derives owner's record, checks it exists and that its stored
// nonces reproduce the record and custody addresses.
func (env *Env) load(owner common.Address) (*vaultAccounts, error) {
	db := env.StateDB
	recordAddr, _ := env.find(RecordSeeds(owner))
	if db.GetOwner(recordAddr) != vaultProgram {
		return nil, ErrNotInitialized
	}
	var rec Record
	if err := rec.UnmarshalBinary(db.GetData(recordAddr)); err != nil {
		return nil, err
	}
	stateProof := crypto.SeedProof{Seeds: RecordSeeds(owner), Nonce: rec.StateNonce, Program: vaultProgram}
	if !stateProof.Authorizes(recordAddr) {
		return nil, fmt.Errorf("%w: record %s", ErrAddressMismatch, recordAddr.TerminalString())
	}
	custodyAddr, _ := env.find(CustodySeeds(recordAddr))
	custodyProof := crypto.SeedProof{Seeds: CustodySeeds(recordAddr), Nonce: rec.VaultNonce, Program: vaultProgram}
	if !custodyProof.Authorizes(custodyAddr) {
		return nil, fmt.Errorf("%w: custody %s", ErrAddressMismatch, custodyAddr.TerminalString())
	}
	return &vaultAccounts{
		record:       rec,
		recordAddr:   recordAddr,
		custodyAddr:  custodyAddr,
		custodySeeds: custodyProof.Seeds,
	}, nil
}

// custodyProof is the authority of the custody account.
func (v *vaultAccounts) custodyProof() crypto.SeedProof {
	return crypto.SeedProof{Seeds: v.custodySeeds, Nonce: v.record.VaultNonce, Program: vaultProgram}
}
