package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/grading"
)

// RunGradingRepositoryTests checks the behaviour every grading.Repository must share.
// newRepo must return an empty repository.
func RunGradingRepositoryTests(t *testing.T, newRepo func(t *testing.T) grading.Repository) {
	ctx := context.Background()

	t.Run("subjects", func(t *testing.T) {
		repo := newRepo(t)
		maths := CreateSubject(t, repo, "6eA", "maths", Coef(3))
		CreateSubject(t, repo, "6eA", "Anglais", nil)
		CreateSubject(t, repo, "6eA", "français", Coef(2))
		CreateSubject(t, repo, "6eB", "maths", Coef(4))

		_, err := repo.CreateSubject(ctx, grading.SubjectMeta{
			SubjectID: uuid.New().String(),
			ClassID:   "6eA",
			Name:      "maths",
		})
		assert.Equal(t, grading.ErrSubjectExists, err)
		_, err = repo.CreateSubject(ctx, grading.SubjectMeta{
			SubjectID: uuid.New().String(),
			ClassID:   "6eA",
			Name:      "MATHS",
		})
		assert.Equal(t, grading.ErrSubjectExists, err, "names are unique regardless of case")

		subjects, err := repo.QuerySubjects(ctx, "6eA")
		require.NoError(t, err)
		require.Len(t, subjects, 3)
		assert.Equal(t, []string{"Anglais", "français", "maths"},
			[]string{subjects[0].Name, subjects[1].Name, subjects[2].Name})
		assert.Nil(t, subjects[0].Coefficient)
		require.NotNil(t, subjects[2].Coefficient)
		assert.Equal(t, 3.0, *subjects[2].Coefficient)

		subjects, err = repo.QuerySubjects(ctx, "5eA")
		require.NoError(t, err)
		assert.NotNil(t, subjects)
		assert.Empty(t, subjects)

		got, err := repo.GetSubject(ctx, "6eA", maths.SubjectID)
		require.NoError(t, err)
		assert.Equal(t, maths.Name, got.Name)

		_, err = repo.GetSubject(ctx, "6eB", maths.SubjectID)
		assert.Equal(t, grading.ErrNotFound, err)
		_, err = repo.GetSubject(ctx, "6eA", uuid.New().String())
		assert.Equal(t, grading.ErrNotFound, err)
		_, err = repo.GetSubject(ctx, "6eA", "lol")
		assert.Equal(t, grading.ErrNotFound, err)
	})

	t.Run("grades", func(t *testing.T) {
		repo := newRepo(t)
		maths := CreateSubject(t, repo, "6eA", "maths", Coef(3))
		french := CreateSubject(t, repo, "6eA", "français", nil)
		other := CreateSubject(t, repo, "6eB", "maths", nil)

		day := time.Date(2021, 1, 10, 8, 0, 0, 0, time.UTC)
		g1 := CreateGrade(t, repo, maths, "kofi", 12.5, Coef(2), grading.Devoir, grading.Term1, day)
		g2 := CreateGrade(t, repo, maths, "amina", 16, nil, grading.Composition, grading.Term1, day.Add(time.Hour))
		g3 := CreateGrade(t, repo, french, "kofi", 9, nil, grading.Devoir, grading.Term1, day.Add(2*time.Hour))
		g4 := CreateGrade(t, repo, maths, "kofi", 14, nil, grading.Devoir, grading.Term2, day.Add(3*time.Hour))
		CreateGrade(t, repo, other, "yao", 11, nil, grading.Devoir, grading.Term1, day)

		ids := func(grades []grading.GradeEntry) []string {
			res := make([]string, 0, len(grades))
			for _, g := range grades {
				res = append(res, g.ID)
			}
			return res
		}
		byDate := []core.DBOrdering{{Field: "date", Ascending: true}}

		tests := []struct {
			name     string
			filter   grading.GradeFilter
			ordering []core.DBOrdering
			want     []string
		}{
			{name: "class", ordering: byDate, want: ids([]grading.GradeEntry{g1, g2, g3, g4})},
			{name: "term", filter: grading.GradeFilter{Term: grading.Term1}, ordering: byDate, want: ids([]grading.GradeEntry{g1, g2, g3})},
			{name: "student", filter: grading.GradeFilter{StudentID: "kofi"}, ordering: byDate, want: ids([]grading.GradeEntry{g1, g3, g4})},
			{name: "subject", filter: grading.GradeFilter{SubjectID: maths.SubjectID}, ordering: byDate, want: ids([]grading.GradeEntry{g1, g2, g4})},
			{name: "unknown subject", filter: grading.GradeFilter{SubjectID: "lol"}, want: []string{}},
			{
				name:     "value desc",
				filter:   grading.GradeFilter{Term: grading.Term1},
				ordering: []core.DBOrdering{{Field: "value"}},
				want:     ids([]grading.GradeEntry{g2, g1, g3}),
			},
			{
				name:     "student then date desc",
				ordering: []core.DBOrdering{{Field: "student_id", Ascending: true}, {Field: "date"}},
				want:     ids([]grading.GradeEntry{g2, g4, g3, g1}),
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				grades, err := repo.QueryGrades(ctx, "6eA", tt.filter, tt.ordering)
				require.NoError(t, err)
				assert.Equal(t, tt.want, ids(grades))
			})
		}

		grades, err := repo.QueryGrades(ctx, "6eA", grading.GradeFilter{StudentID: "kofi", Term: grading.Term1, SubjectID: maths.SubjectID}, nil)
		require.NoError(t, err)
		require.Len(t, grades, 1)
		got := grades[0]
		assert.Equal(t, 12.5, got.Value)
		require.NotNil(t, got.NoteCoefficient)
		assert.Equal(t, 2.0, *got.NoteCoefficient)
		assert.Equal(t, grading.Devoir, got.EvaluationType)
		assert.True(t, day.Equal(got.Date), "date: got %v, want %v", got.Date, day)
	})

	t.Run("delete grades", func(t *testing.T) {
		repo := newRepo(t)
		maths := CreateSubject(t, repo, "6eA", "maths", nil)
		g1 := CreateGrade(t, repo, maths, "kofi", 12, nil, grading.Devoir, grading.Term1)
		g2 := CreateGrade(t, repo, maths, "kofi", 14, nil, grading.Devoir, grading.Term1)

		cnt, err := repo.DeleteGradesByID(ctx, []string{g1.ID, uuid.New().String(), "lol"})
		require.NoError(t, err)
		assert.Equal(t, 1, cnt)

		cnt, err = repo.DeleteGradesByID(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, cnt)

		grades, err := repo.QueryGrades(ctx, "6eA", grading.GradeFilter{}, nil)
		require.NoError(t, err)
		require.Len(t, grades, 1)
		assert.Equal(t, g2.ID, grades[0].ID)
	})
}
