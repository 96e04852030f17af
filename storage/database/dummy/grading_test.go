package dummydb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/bulletin/core/grading"
	"github.com/trezcool/bulletin/storage/database/dummy"
	testutil "github.com/trezcool/bulletin/tests"
)

func TestGradingRepository(t *testing.T) {
	testutil.RunGradingRepositoryTests(t, func(t *testing.T) grading.Repository {
		db, err := dummydb.Open()
		require.NoError(t, err)
		return dummydb.NewGradingRepository(db)
	})
}

func TestDB_Reset(t *testing.T) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewGradingRepository(db)
	maths := testutil.CreateSubject(t, repo, "6eA", "maths", nil)
	testutil.CreateGrade(t, repo, maths, "kofi", 12, nil, grading.Devoir, grading.Term1)

	db.Reset()

	subjects, err := repo.QuerySubjects(context.Background(), "6eA")
	require.NoError(t, err)
	require.Empty(t, subjects)
}
