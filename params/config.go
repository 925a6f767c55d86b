package params

import "fmt"

// ChainConfig is the core config which determines the ledger settings.
type ChainConfig struct {
	ChainID uint64 `json:"chainId"` // replay protection between ledgers
}

var (
	// MainnetChainConfig is the chain parameters of the main ledger.
	MainnetChainConfig = &ChainConfig{ChainID: 1}

	// TestChainConfig is used by tests and developer ledgers.
	TestChainConfig = &ChainConfig{ChainID: 1337}
)

// String implements fmt.Stringer.
func (c *ChainConfig) String() string {
	return fmt.Sprintf("{ChainID: %d}", c.ChainID)
}
