package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/grading"
)

const uniqueViolation = "23505"

// orderable grade columns
var gradeColumns = map[string]string{
	"date":       "date",
	"value":      "value",
	"student_id": "student_id",
	"subject_id": "subject_id",
}

type (
	subjectRow struct {
		ID          string       `db:"id"`
		ClassID     string       `db:"class_id"`
		Name        string       `db:"name"`
		Coefficient null.Float64 `db:"coefficient"`
	}

	gradeRow struct {
		ID              string       `db:"id"`
		ClassID         string       `db:"class_id"`
		StudentID       string       `db:"student_id"`
		SubjectID       string       `db:"subject_id"`
		Value           float64      `db:"value"`
		NoteCoefficient null.Float64 `db:"note_coefficient"`
		EvaluationType  string       `db:"evaluation_type"`
		Term            string       `db:"term"`
		Date            time.Time    `db:"date"`
	}
)

func (r subjectRow) unboil() grading.SubjectMeta {
	return grading.SubjectMeta{
		SubjectID:   r.ID,
		ClassID:     r.ClassID,
		Name:        r.Name,
		Coefficient: r.Coefficient.Ptr(),
	}
}

func (r gradeRow) unboil() grading.GradeEntry {
	return grading.GradeEntry{
		ID:              r.ID,
		ClassID:         r.ClassID,
		StudentID:       r.StudentID,
		SubjectID:       r.SubjectID,
		Value:           r.Value,
		NoteCoefficient: r.NoteCoefficient.Ptr(),
		EvaluationType:  grading.EvaluationType(r.EvaluationType),
		Term:            grading.Term(r.Term),
		Date:            r.Date,
	}
}

type gradingRepository struct {
	db *sqlx.DB
}

var _ grading.Repository = (*gradingRepository)(nil) // interface compliance check

func NewGradingRepository(db *sqlx.DB) grading.Repository {
	return &gradingRepository{db: db}
}

// trapNoRowsErr maps "no rows" err to grading.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return grading.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *gradingRepository) CreateSubject(ctx context.Context, subject grading.SubjectMeta) (grading.SubjectMeta, error) {
	row := subjectRow{
		ID:          subject.SubjectID,
		ClassID:     subject.ClassID,
		Name:        subject.Name,
		Coefficient: null.Float64FromPtr(subject.Coefficient),
	}
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO subject (id, class_id, name, coefficient) VALUES (:id, :class_id, :name, :coefficient)`, row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return grading.SubjectMeta{}, grading.ErrSubjectExists
		}
		return grading.SubjectMeta{}, errors.Wrap(err, "inserting subject")
	}
	return row.unboil(), nil
}

func (repo *gradingRepository) QuerySubjects(ctx context.Context, classID string) ([]grading.SubjectMeta, error) {
	var rows []subjectRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, class_id, name, coefficient FROM subject WHERE class_id = $1 ORDER BY lower(name)`, classID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}

	subjects := make([]grading.SubjectMeta, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, r.unboil())
	}
	return subjects, nil
}

func (repo *gradingRepository) GetSubject(ctx context.Context, classID, subjectID string) (grading.SubjectMeta, error) {
	if _, err := uuid.Parse(subjectID); err != nil {
		return grading.SubjectMeta{}, grading.ErrNotFound
	}

	var row subjectRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, class_id, name, coefficient FROM subject WHERE class_id = $1 AND id = $2`, classID, subjectID)
	if err != nil {
		return grading.SubjectMeta{}, trapNoRowsErr(err, "getting subject")
	}
	return row.unboil(), nil
}

func (repo *gradingRepository) CreateGrade(ctx context.Context, grade grading.GradeEntry) (grading.GradeEntry, error) {
	row := gradeRow{
		ID:              grade.ID,
		ClassID:         grade.ClassID,
		StudentID:       grade.StudentID,
		SubjectID:       grade.SubjectID,
		Value:           grade.Value,
		NoteCoefficient: null.Float64FromPtr(grade.NoteCoefficient),
		EvaluationType:  string(grade.EvaluationType),
		Term:            string(grade.Term),
		Date:            grade.Date.UTC(),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO grade (id, class_id, student_id, subject_id, value, note_coefficient, evaluation_type, term, date)
		VALUES (:id, :class_id, :student_id, :subject_id, :value, :note_coefficient, :evaluation_type, :term, :date)`,
		row)
	if err != nil {
		return grading.GradeEntry{}, errors.Wrap(err, "inserting grade")
	}
	return row.unboil(), nil
}

func (repo *gradingRepository) QueryGrades(
	ctx context.Context,
	classID string,
	filter grading.GradeFilter,
	ordering []core.DBOrdering,
) ([]grading.GradeEntry, error) {
	where := []string{"class_id = ?"}
	args := []interface{}{classID}
	if filter.Term != "" {
		where = append(where, "term = ?")
		args = append(args, string(filter.Term))
	}
	if filter.StudentID != "" {
		where = append(where, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		if _, err := uuid.Parse(filter.SubjectID); err != nil {
			return []grading.GradeEntry{}, nil
		}
		where = append(where, "subject_id = ?")
		args = append(args, filter.SubjectID)
	}

	q := `SELECT id, class_id, student_id, subject_id, value, note_coefficient, evaluation_type, term, date
		FROM grade WHERE ` + strings.Join(where, " AND ")

	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if col, ok := gradeColumns[ord.Field]; ok {
			orderList = append(orderList, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	orderList = append(orderList, "id ASC") // stable pagination & aggregation input
	q += " ORDER BY " + strings.Join(orderList, ", ")

	var rows []gradeRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting grades")
	}

	grades := make([]grading.GradeEntry, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, r.unboil())
	}
	return grades, nil
}

func (repo *gradingRepository) DeleteGradesByID(ctx context.Context, ids []string) (int, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}

	q, args, err := sqlx.In(`DELETE FROM grade WHERE id IN (?)`, valid)
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting grades")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted grades")
	}
	return int(cnt), nil
}
