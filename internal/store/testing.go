package store

import "testing"

// OpenTest opens a migrated in-memory database that is closed when the test
// finishes. This is only intended for use in tests.
func OpenTest(tb testing.TB) *DB {
	tb.Helper()

	db, err := Open(MemoryPath)
	if err != nil {
		tb.Fatalf("opening test database: %v", err)
	}
	tb.Cleanup(func() { db.Close() })
	return db
}
