package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/bulletin/core/grading"
)

func Coef(c float64) *float64 { return &c }

func CreateSubject(t *testing.T, repo grading.Repository, classID, name string, coef *float64) grading.SubjectMeta {
	t.Helper()
	subject, err := repo.CreateSubject(context.Background(), grading.SubjectMeta{
		SubjectID:   uuid.New().String(),
		ClassID:     classID,
		Name:        name,
		Coefficient: coef,
	})
	if err != nil {
		t.Fatalf("createSubject() failed: %v", err)
	}
	return subject
}

func CreateGrade(
	t *testing.T,
	repo grading.Repository,
	subject grading.SubjectMeta,
	studentID string,
	value float64,
	noteCoef *float64,
	evalType grading.EvaluationType,
	term grading.Term,
	date ...time.Time,
) grading.GradeEntry {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(date) > 0 {
		tstamp = date[0].UTC()
	}
	grade, err := repo.CreateGrade(context.Background(), grading.GradeEntry{
		ID:              uuid.New().String(),
		ClassID:         subject.ClassID,
		StudentID:       studentID,
		SubjectID:       subject.SubjectID,
		Value:           value,
		NoteCoefficient: noteCoef,
		EvaluationType:  evalType,
		Term:            term,
		Date:            tstamp,
	})
	if err != nil {
		t.Fatalf("createGrade() failed: %v", err)
	}
	return grade
}
