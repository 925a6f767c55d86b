package leveldb

import (
	"testing"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/tos-network/tosvault/tosdb"
	"github.com/tos-network/tosvault/tosdb/dbtest"
)

func TestLevelDB(t *testing.T) {
	t.Run("DatabaseSuite", func(t *testing.T) {
		dbtest.TestDatabaseSuite(t, func() tosdb.KeyValueStore {
			db, err := leveldb.Open(storage.NewMemStorage(), nil)
			if err != nil {
				t.Fatal(err)
			}
			return &Database{
				db: db,
			}
		})
	})
}

// Tests that batched writes are durable across a reopen and that a read-only
// handle refuses writes.
func TestLevelDBReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := New(dir, 16, 16, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	batch := db.NewBatch()
	batch.Put([]byte("vault-a"), []byte{1})
	batch.Put([]byte("vault-b"), []byte{2})
	if err := batch.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err = New(dir, 16, 16, true)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if db.Path() != dir {
		t.Fatalf("path = %s, want %s", db.Path(), dir)
	}
	v, err := db.Get([]byte("vault-b"))
	if err != nil || len(v) != 1 || v[0] != 2 {
		t.Fatalf("get after reopen: %x %v", v, err)
	}
	if err := db.Put([]byte("vault-c"), []byte{3}); err == nil {
		t.Fatal("write to read-only database succeeded")
	}
}
