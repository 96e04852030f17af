package grading

import (
	"sort"

	"github.com/trezcool/bulletin/core"
)

type SubjectSummary struct {
	SubjectID    string  `json:"subject_id"`
	Coefficient  float64 `json:"coefficient"`
	StudentCount int     `json:"student_count"`
	Average      float64 `json:"average"`
	Highest      float64 `json:"highest"`
	Lowest       float64 `json:"lowest"`
}

// ClassSummary is the class performance overview printed at the bottom of bulletins and reports.
type ClassSummary struct {
	StudentCount int              `json:"student_count"`
	Average      float64          `json:"average"`
	Highest      float64          `json:"highest"`
	Lowest       float64          `json:"lowest"`
	PassCount    int              `json:"pass_count"`
	PassRate     float64          `json:"pass_rate"` // percentage
	Subjects     []SubjectSummary `json:"subjects"`
}

// Summarize computes class-wide statistics from the output of Aggregate.
func Summarize(results []StudentResult) ClassSummary {
	summary := ClassSummary{StudentCount: len(results), Subjects: []SubjectSummary{}}
	if len(results) == 0 {
		return summary
	}

	var total float64
	summary.Highest = results[0].GeneralAverage
	summary.Lowest = results[0].GeneralAverage
	subjects := make(map[string]*SubjectSummary)
	subjectTotals := make(map[string]float64)

	for _, res := range results {
		total += res.GeneralAverage
		if res.GeneralAverage > summary.Highest {
			summary.Highest = res.GeneralAverage
		}
		if res.GeneralAverage < summary.Lowest {
			summary.Lowest = res.GeneralAverage
		}
		if res.Status == Admis {
			summary.PassCount++
		}

		for subjectID, sa := range res.SubjectAverages {
			ss, ok := subjects[subjectID]
			if !ok {
				ss = &SubjectSummary{
					SubjectID:   subjectID,
					Coefficient: sa.Coefficient,
					Highest:     sa.Average,
					Lowest:      sa.Average,
				}
				subjects[subjectID] = ss
			}
			ss.StudentCount++
			subjectTotals[subjectID] += sa.Average
			if sa.Average > ss.Highest {
				ss.Highest = sa.Average
			}
			if sa.Average < ss.Lowest {
				ss.Lowest = sa.Average
			}
		}
	}

	summary.Average = core.Round2(total / float64(len(results)))
	summary.PassRate = core.Round2(float64(summary.PassCount) * 100 / float64(len(results)))

	for subjectID, ss := range subjects {
		ss.Average = core.Round2(subjectTotals[subjectID] / float64(ss.StudentCount))
		summary.Subjects = append(summary.Subjects, *ss)
	}
	sort.Slice(summary.Subjects, func(i, j int) bool {
		return summary.Subjects[i].SubjectID < summary.Subjects[j].SubjectID
	})
	return summary
}

// AnnualResult ranks a student over the whole school year.
type AnnualResult struct {
	StudentID     string           `json:"student_id"`
	TermAverages  map[Term]float64 `json:"term_averages"`
	AnnualAverage float64          `json:"annual_average"`
	Rank          int              `json:"rank"`
	Status        Status           `json:"status"`
}

// AggregateYear runs Aggregate for every term and averages the general averages of the terms
// each student was graded in. Ranking, status and tie-break follow Aggregate.
func AggregateYear(entries []GradeEntry, subjects []SubjectMeta, opts ...Option) []AnnualResult {
	byStudent := make(map[string]*AnnualResult)
	for _, term := range Terms {
		for _, res := range Aggregate(entries, subjects, term, opts...) {
			ar, ok := byStudent[res.StudentID]
			if !ok {
				ar = &AnnualResult{StudentID: res.StudentID, TermAverages: make(map[Term]float64, len(Terms))}
				byStudent[res.StudentID] = ar
			}
			ar.TermAverages[term] = res.GeneralAverage
		}
	}

	results := make([]AnnualResult, 0, len(byStudent))
	for _, ar := range byStudent {
		var sum float64
		for _, term := range Terms {
			sum += ar.TermAverages[term]
		}
		ar.AnnualAverage = core.Round2(sum / float64(len(ar.TermAverages)))
		ar.Status = StatusFor(ar.AnnualAverage)
		results = append(results, *ar)
	}

	sort.Slice(results, func(i, j int) bool {
		return ranksBefore(results[i].AnnualAverage, results[j].AnnualAverage, results[i].StudentID, results[j].StudentID)
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}
