package grading

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bulletin/core"
)

func newTestValidator() (*validator.Validate, func(error) error) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)
	return validate, func(err error) error { return core.TranslateValidationErrors(err, translator) }
}

func TestParseTerm(t *testing.T) {
	tests := []struct {
		in      string
		want    Term
		wantErr error
	}{
		{in: "1er trimestre", want: Term1},
		{in: " 2E Trimestre ", want: Term2},
		{in: "1", want: Term1},
		{in: "t3", want: Term3},
		{in: "T2", want: Term2},
		{in: "4", wantErr: ErrUnknownTerm},
		{in: "", wantErr: ErrUnknownTerm},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTerm(tc.in)
			assert.Equal(t, tc.wantErr, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, Admis, StatusFor(10))
	assert.Equal(t, Admis, StatusFor(20))
	assert.Equal(t, Echec, StatusFor(9.99))
	assert.Equal(t, Echec, StatusFor(0))
}

func TestNewGrade_Validate(t *testing.T) {
	validate, translate := newTestValidator()
	value := func(v float64) *float64 { return &v }
	valid := func() NewGrade {
		return NewGrade{
			StudentID:      " amina ",
			SubjectID:      "math",
			Value:          value(15),
			EvaluationType: " Devoir",
			Term:           "t1",
		}
	}

	t.Run("valid", func(t *testing.T) {
		ng := valid()
		require.NoError(t, ng.Validate(validate))
		assert.Equal(t, "amina", ng.StudentID)
		assert.Equal(t, Devoir, ng.EvaluationType)
		assert.Equal(t, Term1, ng.Term)
	})

	t.Run("zero value", func(t *testing.T) {
		ng := valid()
		ng.Value = value(0)
		assert.NoError(t, ng.Validate(validate))
	})

	tests := []struct {
		name   string
		modify func(ng *NewGrade)
		field  string
	}{
		{name: "missing student", modify: func(ng *NewGrade) { ng.StudentID = "  " }, field: "student_id"},
		{name: "missing value", modify: func(ng *NewGrade) { ng.Value = nil }, field: "value"},
		{name: "negative value", modify: func(ng *NewGrade) { ng.Value = value(-1) }, field: "value"},
		{name: "value above 20", modify: func(ng *NewGrade) { ng.Value = value(20.5) }, field: "value"},
		{name: "zero note coefficient", modify: func(ng *NewGrade) { ng.NoteCoefficient = value(0) }, field: "note_coefficient"},
		{name: "unknown evaluation type", modify: func(ng *NewGrade) { ng.EvaluationType = "oral" }, field: "evaluation_type"},
		{name: "unknown term", modify: func(ng *NewGrade) { ng.Term = "4e trimestre" }, field: "term"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ng := valid()
			tc.modify(&ng)
			err := translate(ng.Validate(validate))
			require.Error(t, err)

			vErr, ok := err.(*core.ValidationError)
			require.True(t, ok)
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, tc.field, vErr.Fields[0].Field)
		})
	}

	t.Run("translated messages", func(t *testing.T) {
		ng := valid()
		ng.Term = "x"
		ng.EvaluationType = "oral"
		err := translate(ng.Validate(validate))

		vErr, ok := err.(*core.ValidationError)
		require.True(t, ok)
		assert.Equal(t, []core.FieldError{
			{Field: "evaluation_type", Error: evalTypeText},
			{Field: "term", Error: termText},
		}, vErr.Fields)
	})
}

func TestNewSubject_Validate(t *testing.T) {
	validate, _ := newTestValidator()

	ns := NewSubject{Name: "  Mathématiques "}
	require.NoError(t, ns.Validate(validate))
	assert.Equal(t, "Mathématiques", ns.Name)

	ns = NewSubject{Name: "", Coefficient: coef(2)}
	assert.Error(t, ns.Validate(validate))

	ns = NewSubject{Name: "SVT", Coefficient: coef(-1)}
	assert.Error(t, ns.Validate(validate))
}

func TestGradeFilter(t *testing.T) {
	g := grade("amina", "math", 12, nil, Devoir, Term2)

	tests := []struct {
		filter GradeFilter
		match  bool
		str    string
	}{
		{filter: GradeFilter{}, match: true, str: ""},
		{filter: GradeFilter{Term: Term2}, match: true, str: "term=2e trimestre"},
		{filter: GradeFilter{Term: Term1}, match: false, str: "term=1er trimestre"},
		{filter: GradeFilter{StudentID: "amina", SubjectID: "math"}, match: true, str: "student=amina subject=math"},
		{filter: GradeFilter{StudentID: "kofi"}, match: false, str: "student=kofi"},
	}

	for _, tc := range tests {
		t.Run(tc.str, func(t *testing.T) {
			assert.Equal(t, tc.match, tc.filter.Match(g))
			assert.Equal(t, tc.str, tc.filter.String())
		})
	}
}
