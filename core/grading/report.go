package grading

import (
	"context"
	"net/mail"

	"github.com/trezcool/bulletin/core"
)

const classResultsTemplate = "class_results"

// ClassReport is the data of the class results email.
type ClassReport struct {
	ClassID string
	Term    Term
	Results []StudentResult
	Summary ClassSummary
}

func (svc *Service) ClassReport(ctx context.Context, classID string, term Term) (ClassReport, error) {
	results, err := svc.ClassResults(ctx, classID, term)
	if err != nil {
		return ClassReport{}, err
	}
	return ClassReport{
		ClassID: core.CleanString(classID),
		Term:    term,
		Results: results,
		Summary: Summarize(results),
	}, nil
}

func NewClassResultsEmail(report ClassReport, to ...mail.Address) *core.EmailMessage {
	return &core.EmailMessage{
		To:           to,
		Subject:      "Résultats " + report.ClassID + " - " + string(report.Term),
		TemplateName: classResultsTemplate,
		TemplateData: report,
	}
}
