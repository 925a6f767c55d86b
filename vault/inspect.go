package vault

import (
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/vm"
	"github.com/tos-network/tosvault/system"
	"github.com/tos-network/tosvault/token"
)

// Info is a read-only view of an owner's native vault.
type Info struct {
	Owner        common.Address `json:"owner"`
	Status       Status         `json:"status"`
	Record       common.Address `json:"record"`
	Custody      common.Address `json:"custody"`
	StateNonce   uint8          `json:"stateNonce"`
	VaultNonce   uint8          `json:"vaultNonce"`
	Balance      uint64         `json:"balance"`
	Reserve      uint64         `json:"reserve"`
	Withdrawable uint64         `json:"withdrawable"`
}

// Inspect reports owner's native vault. Addresses are derived even when no
// vault exists, so value stranded in the custody of a closed vault shows up.
func Inspect(db vm.StateDB, owner common.Address) *Info {
	recordAddr, stateNonce := RecordAddress(owner)
	custodyAddr, vaultNonce := CustodyAddress(recordAddr)
	info := &Info{
		Owner:      owner,
		Status:     ReadStatus(db, owner),
		Record:     recordAddr,
		Custody:    custodyAddr,
		StateNonce: stateNonce,
		VaultNonce: vaultNonce,
		Balance:    db.GetBalance(custodyAddr).Uint64(),
		Reserve:    system.MinimumBalance(db, 0),
	}
	if info.Status == Active {
		var rec Record
		if err := rec.UnmarshalBinary(db.GetData(recordAddr)); err == nil {
			info.StateNonce, info.VaultNonce = rec.StateNonce, rec.VaultNonce
		}
		if info.Balance > info.Reserve {
			info.Withdrawable = info.Balance - info.Reserve
		}
	}
	return info
}

// TokenInfo is a read-only view of an owner's custody for one mint.
type TokenInfo struct {
	Owner    common.Address `json:"owner"`
	Mint     common.Address `json:"mint"`
	Custody  common.Address `json:"custody"`
	Wallet   common.Address `json:"wallet"`
	Exists   bool           `json:"exists"`
	Locked   uint64         `json:"locked"`
	Free     uint64         `json:"free"`
	Decimals uint8          `json:"decimals"`
}

// InspectToken reports owner's token custody for mint.
func InspectToken(db vm.StateDB, owner, mint common.Address) *TokenInfo {
	custody, _ := TokenCustodyAddress(owner, mint)
	wallet, _ := token.AssociatedAddress(owner, mint)
	info := &TokenInfo{
		Owner:   owner,
		Mint:    mint,
		Custody: custody,
		Wallet:  wallet,
		Free:    token.BalanceOf(db, wallet),
	}
	if acct, err := token.ReadAccount(db, custody); err == nil {
		info.Exists = true
		info.Locked = acct.Amount
	}
	if m, err := token.ReadMint(db, mint); err == nil {
		info.Decimals = m.Decimals
	}
	return info
}
