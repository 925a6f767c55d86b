package rawdb

import (
	"github.com/tos-network/tosvault/tosdb"
	"github.com/tos-network/tosvault/tosdb/leveldb"
	"github.com/tos-network/tosvault/tosdb/memorydb"
)

// NewMemoryDatabase creates an ephemeral in-memory key-value database.
func NewMemoryDatabase() tosdb.Database {
	return memorydb.New()
}

// NewLevelDBDatabase creates a persistent key-value database backed by LevelDB.
func NewLevelDBDatabase(file string, cache int, handles int, readonly bool) (tosdb.Database, error) {
	db, err := leveldb.New(file, cache, handles, readonly)
	if err != nil {
		return nil, err
	}
	return db, nil
}
