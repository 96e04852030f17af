package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/storage/database"
)

// PrepareDB opens and migrates the test database, then empties it.
// Tests are skipped unless ENV=test, so `go test ./...` runs without a postgres server.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	conf := core.NewConfig()
	if !conf.TestMode {
		t.Skip("database tests need ENV=test and a running postgres")
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		t.Fatalf("database.CreateIfNotExist() failed: %v", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db.DB); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	if _, err = db.Exec("TRUNCATE TABLE grade, subject"); err != nil {
		t.Fatalf("truncating tables failed: %v", err)
	}
	return db
}
