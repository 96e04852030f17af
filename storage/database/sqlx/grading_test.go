package sqlxrepos_test

import (
	"testing"

	"github.com/trezcool/bulletin/core/grading"
	sqlxrepos "github.com/trezcool/bulletin/storage/database/sqlx"
	testutil "github.com/trezcool/bulletin/tests"
)

func TestGradingRepository(t *testing.T) {
	testutil.RunGradingRepositoryTests(t, func(t *testing.T) grading.Repository {
		return sqlxrepos.NewGradingRepository(testutil.PrepareDB(t))
	})
}
