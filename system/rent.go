package system

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/tos-network/tosvault/core/vm"
	"github.com/tos-network/tosvault/params"
)

// rentDataLength is the encoded size of the rent sysvar:
// lamports_per_byte_year[8] exemption_threshold[8], little endian.
const rentDataLength = 16

// maxReserve is 2^64, the first float64 past the uint64 range.
const maxReserve = float64(1 << 64)

// Rent holds the protocol parameters that determine minimum reserves.
type Rent struct {
	LamportsPerByteYear uint64  `json:"lamportsPerByteYear"`
	ExemptionThreshold  float64 `json:"exemptionThreshold"`
}

// DefaultRent returns the rent parameters used when none were configured.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: params.DefaultLamportsPerByteYear,
		ExemptionThreshold:  params.DefaultExemptionThreshold,
	}
}

// MinimumBalance returns the smallest balance an account holding dataLen bytes
// of data must keep to stay exempt. Results past the uint64 range saturate.
func (r Rent) MinimumBalance(dataLen uint64) uint64 {
	bytes, carry := bits.Add64(params.AccountStorageOverhead, dataLen, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	hi, lo := bits.Mul64(bytes, r.LamportsPerByteYear)
	if hi != 0 {
		return math.MaxUint64
	}
	reserve := float64(lo) * r.ExemptionThreshold
	if reserve >= maxReserve {
		return math.MaxUint64
	}
	return uint64(reserve)
}

// IsExempt reports whether balance covers the reserve of dataLen bytes.
func (r Rent) IsExempt(balance, dataLen uint64) bool {
	return balance >= r.MinimumBalance(dataLen)
}

// Validate checks that the parameters are usable.
func (r Rent) Validate() error {
	if math.IsNaN(r.ExemptionThreshold) || math.IsInf(r.ExemptionThreshold, 0) || r.ExemptionThreshold < 0 {
		return fmt.Errorf("system: invalid exemption threshold %v", r.ExemptionThreshold)
	}
	return nil
}

func (r Rent) encode() []byte {
	enc := make([]byte, rentDataLength)
	binary.LittleEndian.PutUint64(enc[:8], r.LamportsPerByteYear)
	binary.LittleEndian.PutUint64(enc[8:], math.Float64bits(r.ExemptionThreshold))
	return enc
}

// GetRent reads the live rent parameters from the rent sysvar. A ledger that
// never wrote the sysvar uses DefaultRent.
func GetRent(db vm.StateDB) Rent {
	data := db.GetData(params.RentSysvarAddress)
	if len(data) != rentDataLength {
		return DefaultRent()
	}
	return Rent{
		LamportsPerByteYear: binary.LittleEndian.Uint64(data[:8]),
		ExemptionThreshold:  math.Float64frombits(binary.LittleEndian.Uint64(data[8:])),
	}
}

// SetRent writes the rent sysvar.
func SetRent(db vm.StateDB, r Rent) error {
	if err := r.Validate(); err != nil {
		return err
	}
	db.SetOwner(params.RentSysvarAddress, params.SystemProgramAddress)
	db.SetData(params.RentSysvarAddress, r.encode())
	return nil
}

// MinimumBalance is the live reserve query: the minimum balance for an
// account of dataLen bytes under the current rent sysvar.
func MinimumBalance(db vm.StateDB, dataLen uint64) uint64 {
	return GetRent(db).MinimumBalance(dataLen)
}
