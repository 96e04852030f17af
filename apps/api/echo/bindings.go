package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/grading"
)

const (
	orderingParam = "ordering"
	termParam     = "term"
	classParam    = "class"
	studentParam  = "student"
	subjectParam  = "subject"
	idParam       = "id"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	if val := ctx.QueryParam(orderingParam); val != "" {
		ord.Orderings = core.ParseOrdering(val)
	}
}

// bindTerm reads the required `term` query param.
func bindTerm(ctx echo.Context) (grading.Term, error) {
	term, err := grading.ParseTerm(ctx.QueryParam(termParam))
	if err != nil {
		return "", core.NewValidationError(err, core.FieldError{Field: termParam, Error: err.Error()})
	}
	return term, nil
}

// bindGradeFilter reads the optional `term`, `student` & `subject` query params.
func bindGradeFilter(ctx echo.Context) (grading.GradeFilter, error) {
	filter := grading.GradeFilter{
		StudentID: core.CleanString(ctx.QueryParam(studentParam)),
		SubjectID: core.CleanString(ctx.QueryParam(subjectParam)),
	}
	if ctx.QueryParam(termParam) != "" {
		term, err := bindTerm(ctx)
		if err != nil {
			return grading.GradeFilter{}, err
		}
		filter.Term = term
	}
	return filter, nil
}
