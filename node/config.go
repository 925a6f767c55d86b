package node

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"

	"github.com/tos-network/tosvault/core"
	"github.com/tos-network/tosvault/internal/vaultapi"
)

const datadirLedger = "ledger" // directory of the ledger database inside DataDir

// Config represents a small collection of configuration values to fine tune
// the node. These values can be further extended by all registered services.
type Config struct {
	// Name sets the instance name of the node. It is used in log output.
	Name string `toml:"-"`

	// DataDir is the file system folder the node should use for any data
	// storage requirements. An empty DataDir keeps the ledger in memory.
	DataDir string

	// DatabaseCache is the megabytes of memory given to the database, and
	// DatabaseHandles the number of open files it may keep.
	DatabaseCache   int
	DatabaseHandles int `toml:"-"`

	// HTTP configures the API endpoint. An empty host disables it.
	HTTP vaultapi.Config

	// Genesis is written into an empty database. Nil means the main ledger
	// genesis.
	Genesis *core.Genesis `toml:",omitempty"`
}

// DefaultConfig contains reasonable default settings.
var DefaultConfig = Config{
	DataDir:         DefaultDataDir(),
	DatabaseCache:   256,
	DatabaseHandles: 512,
	HTTP:            vaultapi.DefaultConfig,
}

// LedgerDir returns the database directory, or "" for an in-memory ledger.
func (c *Config) LedgerDir() string {
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, datadirLedger)
}

// NodeName returns the name used in log output.
func (c *Config) NodeName() string {
	if c.Name == "" {
		return "tosvault"
	}
	return c.Name
}

// DefaultDataDir is the default data directory to use for the ledger
// database.
func DefaultDataDir() string {
	home := homeDir()
	if home == "" {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Tosvault")
	case "windows":
		if appdata := os.Getenv("LOCALAPPDATA"); appdata != "" {
			return filepath.Join(appdata, "Tosvault")
		}
		return filepath.Join(home, "AppData", "Local", "Tosvault")
	default:
		return filepath.Join(home, ".tosvault")
	}
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
