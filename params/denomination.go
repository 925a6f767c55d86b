package params

// These are the multipliers for native denominations.
// Example: To get the lamport value of an amount in 'TOS', use
//
//	amount * params.TOS
const (
	Lamport = 1
	TOS     = 1e9
)
