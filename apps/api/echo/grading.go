package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/grading"
)

type gradingApi struct {
	svc *grading.Service
}

func registerGradingAPI(g *echo.Group, svc *grading.Service) {
	api := gradingApi{svc: svc}

	cg := g.Group("/classes/:class")
	cg.GET("/subjects", api.querySubjects)
	cg.POST("/subjects", api.createSubject)
	cg.GET("/grades", api.queryGrades)
	cg.POST("/grades", api.createGrade)
	cg.GET("/results", api.classResults)
	cg.GET("/results/annual", api.annualResults)
	cg.GET("/summary", api.classSummary)
	cg.GET("/students/:student/bulletin", api.bulletin)

	g.DELETE("/grades", api.destroyGrades)
	g.GET("/results", api.schoolResults)
}

type deleteResponse struct {
	Deleted int `json:"deleted"`
}

// Handlers

func (api *gradingApi) querySubjects(ctx echo.Context) error {
	subjects, err := api.svc.Subjects(ctx.Request().Context(), ctx.Param(classParam))
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *gradingApi) createSubject(ctx echo.Context) error {
	var data grading.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}

	subject, err := api.svc.AddSubject(ctx.Request().Context(), ctx.Param(classParam), data)
	if err != nil {
		return errors.Wrap(err, "adding subject")
	}
	return ctx.JSON(http.StatusCreated, subject)
}

func (api *gradingApi) queryGrades(ctx echo.Context) error {
	filter, err := bindGradeFilter(ctx)
	if err != nil {
		return err
	}
	var ord Ordering
	ord.Bind(ctx)

	grades, err := api.svc.Grades(ctx.Request().Context(), ctx.Param(classParam), filter, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradingApi) createGrade(ctx echo.Context) error {
	var data grading.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}

	grade, err := api.svc.RecordGrade(ctx.Request().Context(), ctx.Param(classParam), data)
	if err != nil {
		return errors.Wrap(err, "recording grade")
	}
	return ctx.JSON(http.StatusCreated, grade)
}

func (api *gradingApi) destroyGrades(ctx echo.Context) error {
	ids := ctx.QueryParams()[idParam]
	if len(ids) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: idParam, Error: "this field is required"})
	}

	cnt, err := api.svc.DeleteGrades(ctx.Request().Context(), ids...)
	if err != nil {
		return errors.Wrap(err, "deleting grades")
	}
	return ctx.JSON(http.StatusOK, deleteResponse{Deleted: cnt})
}

func (api *gradingApi) classResults(ctx echo.Context) error {
	term, err := bindTerm(ctx)
	if err != nil {
		return err
	}

	results, err := api.svc.ClassResults(ctx.Request().Context(), ctx.Param(classParam), term)
	if err != nil {
		return errors.Wrap(err, "computing class results")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *gradingApi) annualResults(ctx echo.Context) error {
	results, err := api.svc.AnnualResults(ctx.Request().Context(), ctx.Param(classParam))
	if err != nil {
		return errors.Wrap(err, "computing annual results")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *gradingApi) classSummary(ctx echo.Context) error {
	term, err := bindTerm(ctx)
	if err != nil {
		return err
	}

	summary, err := api.svc.ClassSummary(ctx.Request().Context(), ctx.Param(classParam), term)
	if err != nil {
		return errors.Wrap(err, "computing class summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *gradingApi) bulletin(ctx echo.Context) error {
	term, err := bindTerm(ctx)
	if err != nil {
		return err
	}

	b, err := api.svc.Bulletin(ctx.Request().Context(), ctx.Param(classParam), ctx.Param(studentParam), term)
	if err != nil {
		return errors.Wrap(err, "building bulletin")
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *gradingApi) schoolResults(ctx echo.Context) error {
	term, err := bindTerm(ctx)
	if err != nil {
		return err
	}
	classIDs := ctx.QueryParams()[classParam]
	if len(classIDs) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: classParam, Error: "this field is required"})
	}

	results, err := api.svc.SchoolResults(ctx.Request().Context(), term, classIDs...)
	if err != nil {
		return errors.Wrap(err, "computing school results")
	}
	return ctx.JSON(http.StatusOK, results)
}
