package test

import "github.com/google/uuid"

// SQLiteMemoryDSN returns a DSN for a fresh in-memory database.
// The random name keeps tests from sharing a database while the shared cache
// lets every connection in the pool see the same one.
func SQLiteMemoryDSN() string {
	return "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
}
