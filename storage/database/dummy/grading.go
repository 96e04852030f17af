package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/grading"
)

type gradingRepository struct {
	db *gradingTables
}

var _ grading.Repository = (*gradingRepository)(nil) // interface compliance check

func NewGradingRepository(db *DB) grading.Repository {
	return &gradingRepository{db: db.grading}
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func (repo *gradingRepository) CreateSubject(_ context.Context, subject grading.SubjectMeta) (grading.SubjectMeta, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range repo.db.subjects {
		if s.ClassID == subject.ClassID && strings.EqualFold(s.Name, subject.Name) {
			return grading.SubjectMeta{}, grading.ErrSubjectExists
		}
	}
	subject.Coefficient = copyFloat(subject.Coefficient)
	repo.db.subjects = append(repo.db.subjects, subject)
	return subject, nil
}

func (repo *gradingRepository) QuerySubjects(_ context.Context, classID string) ([]grading.SubjectMeta, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]grading.SubjectMeta, 0)
	for _, s := range repo.db.subjects {
		if s.ClassID == classID {
			subjects = append(subjects, s)
		}
	}
	sort.SliceStable(subjects, func(i, j int) bool {
		return strings.ToLower(subjects[i].Name) < strings.ToLower(subjects[j].Name)
	})
	return subjects, nil
}

func (repo *gradingRepository) GetSubject(_ context.Context, classID, subjectID string) (grading.SubjectMeta, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.subjects {
		if s.ClassID == classID && s.SubjectID == subjectID {
			return s, nil
		}
	}
	return grading.SubjectMeta{}, grading.ErrNotFound
}

func (repo *gradingRepository) CreateGrade(_ context.Context, grade grading.GradeEntry) (grading.GradeEntry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	grade.NoteCoefficient = copyFloat(grade.NoteCoefficient)
	repo.db.grades = append(repo.db.grades, grade)
	return grade, nil
}

func (repo *gradingRepository) QueryGrades(
	_ context.Context,
	classID string,
	filter grading.GradeFilter,
	ordering []core.DBOrdering,
) ([]grading.GradeEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	grades := make([]grading.GradeEntry, 0)
	for _, g := range repo.db.grades {
		if g.ClassID == classID && filter.Match(g) {
			grades = append(grades, g)
		}
	}

	if len(ordering) > 0 {
		sort.SliceStable(grades, func(i, j int) bool {
			for _, ord := range ordering {
				if c := compareGrades(grades[i], grades[j], ord.Field); c != 0 {
					return (c < 0) == ord.Ascending
				}
			}
			return false
		})
	}
	return grades, nil
}

// compareGrades returns -1, 0 or 1; unknown fields compare equal.
func compareGrades(a, b grading.GradeEntry, field string) int {
	switch field {
	case "date":
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
	case "value":
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
	case "student_id":
		return strings.Compare(a.StudentID, b.StudentID)
	case "subject_id":
		return strings.Compare(a.SubjectID, b.SubjectID)
	}
	return 0
}

func (repo *gradingRepository) DeleteGradesByID(_ context.Context, ids []string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	toDelete := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		toDelete[id] = struct{}{}
	}

	kept := repo.db.grades[:0]
	for _, g := range repo.db.grades {
		if _, ok := toDelete[g.ID]; !ok {
			kept = append(kept, g)
		}
	}
	cnt := len(repo.db.grades) - len(kept)
	repo.db.grades = kept
	return cnt, nil
}
