package params

const (
	// AccountStorageOverhead is the per-account byte overhead charged by rent on
	// top of the account's data length.
	AccountStorageOverhead uint64 = 128

	DefaultLamportsPerByteYear uint64  = 3480 // Default rent per byte-year.
	DefaultExemptionThreshold  float64 = 2.0  // Years of rent an account must hold to be exempt.

	// MaxAccountDataSize caps the space a single allocation may request.
	MaxAccountDataSize uint64 = 10 * 1024 * 1024

	// DiscriminatorLength is the size of the type tag prefixed to program
	// account data.
	DiscriminatorLength = 8

	// MaxTransactionDataSize caps the encoded system action carried by a transaction.
	MaxTransactionDataSize = 4096
)
