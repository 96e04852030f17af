package grading

import (
	"sort"

	"github.com/trezcool/bulletin/core"
)

type options struct {
	formativeWeight float64
	summativeWeight float64
}

// Option tunes how Aggregate computes subject averages.
type Option func(*options)

// WithEvaluationSplit blends the devoir and composition averages of a subject with fixed weights
// (e.g. 0.4 / 0.6) instead of pooling every grade by its own coefficient.
// Non-positive weights disable the split.
func WithEvaluationSplit(formative, summative float64) Option {
	return func(o *options) {
		o.formativeWeight = formative
		o.summativeWeight = summative
	}
}

// OptionsFromConfig returns the aggregation options matching the grading config.
func OptionsFromConfig(conf core.GradingConfig) []Option {
	if conf.FormativeWeight <= 0 && conf.SummativeWeight <= 0 {
		return nil
	}
	return []Option{WithEvaluationSplit(conf.FormativeWeight, conf.SummativeWeight)}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) split() bool {
	return o.formativeWeight > 0 || o.summativeWeight > 0
}

// Aggregate computes the ranked results of every student graded during `term`.
//
// Within a subject, grades are averaged by their note coefficient; subject averages are then
// averaged by subject coefficient into the general average, rounded to 2 decimals before ranking.
// Students without grades in `term` are left out. Equal averages are ranked by student ID.
// Inputs are not modified.
func Aggregate(entries []GradeEntry, subjects []SubjectMeta, term Term, opts ...Option) []StudentResult {
	o := newOptions(opts)
	coefs := subjectCoefficients(subjects)

	byStudent := make(map[string]map[string][]GradeEntry)
	for _, g := range entries {
		if g.Term != term {
			continue
		}
		bySubject, ok := byStudent[g.StudentID]
		if !ok {
			bySubject = make(map[string][]GradeEntry)
			byStudent[g.StudentID] = bySubject
		}
		bySubject[g.SubjectID] = append(bySubject[g.SubjectID], g)
	}

	results := make([]StudentResult, 0, len(byStudent))
	for studentID, bySubject := range byStudent {
		res := StudentResult{
			StudentID:       studentID,
			SubjectAverages: make(map[string]SubjectAverage, len(bySubject)),
		}
		var sum, weight float64
		for _, subjectID := range sortedKeys(bySubject) { // fixed summation order
			avg := o.subjectAverage(bySubject[subjectID])
			coef, ok := coefs[subjectID]
			if !ok {
				coef = 1
			}
			res.SubjectAverages[subjectID] = SubjectAverage{Average: core.Round2(avg), Coefficient: coef}
			sum += avg * coef
			weight += coef
		}
		res.GeneralAverage = core.Round2(weightedMean(sum, weight))
		res.Status = StatusFor(res.GeneralAverage)
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool {
		return ranksBefore(results[i].GeneralAverage, results[j].GeneralAverage, results[i].StudentID, results[j].StudentID)
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

func (o options) subjectAverage(grades []GradeEntry) float64 {
	if !o.split() {
		return pooledAverage(grades)
	}

	var devoirs, compositions []GradeEntry
	for _, g := range grades {
		if g.EvaluationType == Composition {
			compositions = append(compositions, g)
		} else {
			devoirs = append(devoirs, g)
		}
	}

	var sum, weight float64
	if len(devoirs) > 0 && o.formativeWeight > 0 {
		sum += o.formativeWeight * pooledAverage(devoirs)
		weight += o.formativeWeight
	}
	if len(compositions) > 0 && o.summativeWeight > 0 {
		sum += o.summativeWeight * pooledAverage(compositions)
		weight += o.summativeWeight
	}
	if weight == 0 { // only categories weighted 0 were graded
		return pooledAverage(grades)
	}
	return sum / weight
}

func pooledAverage(grades []GradeEntry) float64 {
	var sum, weight float64
	for _, g := range grades {
		c := g.coefficient()
		sum += g.Value * c
		weight += c
	}
	return weightedMean(sum, weight)
}

// weightedMean returns 0 for a zero total weight.
func weightedMean(sum, weight float64) float64 {
	if weight == 0 {
		return 0
	}
	return sum / weight
}

func subjectCoefficients(subjects []SubjectMeta) map[string]float64 {
	coefs := make(map[string]float64, len(subjects))
	for _, s := range subjects {
		coefs[s.SubjectID] = s.coefficient()
	}
	return coefs
}

// ranksBefore orders by descending average, then ascending ID.
func ranksBefore(avgI, avgJ float64, idI, idJ string) bool {
	if avgI != avgJ {
		return avgI > avgJ
	}
	return idI < idJ
}

func sortedKeys(m map[string][]GradeEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
