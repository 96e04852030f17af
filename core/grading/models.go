package grading

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/bulletin/core"
)

// Term is one of the three grading periods of a school year.
type Term string

const (
	Term1 Term = "1er trimestre"
	Term2 Term = "2e trimestre"
	Term3 Term = "3e trimestre"
)

var Terms = []Term{Term1, Term2, Term3}

var termAliases = map[string]Term{
	"1": Term1, "t1": Term1, string(Term1): Term1,
	"2": Term2, "t2": Term2, string(Term2): Term2,
	"3": Term3, "t3": Term3, string(Term3): Term3,
}

// ParseTerm accepts a canonical term label, its number ("1") or short form ("t1").
func ParseTerm(s string) (Term, error) {
	if t, ok := termAliases[core.CleanString(s, true /* lower */)]; ok {
		return t, nil
	}
	return "", ErrUnknownTerm
}

func (t Term) IsValid() bool {
	switch t {
	case Term1, Term2, Term3:
		return true
	}
	return false
}

// EvaluationType groups grades; only the split weighting policy looks at it.
type EvaluationType string

const (
	Devoir      EvaluationType = "devoir"      // formative
	Composition EvaluationType = "composition" // summative
)

func (et EvaluationType) IsValid() bool {
	return et == Devoir || et == Composition
}

type Status string

const (
	Admis Status = "admis"
	Echec Status = "échec"
)

const (
	MaxGrade = 20.0
	PassMark = 10.0
)

// StatusFor returns Admis for averages at or above PassMark.
func StatusFor(avg float64) Status {
	if avg >= PassMark {
		return Admis
	}
	return Echec
}

// GradeEntry is one recorded evaluation of a student in a subject.
type GradeEntry struct {
	ID              string         `json:"id"`
	ClassID         string         `json:"class_id"`
	StudentID       string         `json:"student_id"`
	SubjectID       string         `json:"subject_id"`
	Value           float64        `json:"value"`
	NoteCoefficient *float64       `json:"note_coefficient"` // nil means 1
	EvaluationType  EvaluationType `json:"evaluation_type"`
	Term            Term           `json:"term"`
	Date            time.Time      `json:"date"`
}

func (g GradeEntry) coefficient() float64 {
	if g.NoteCoefficient == nil {
		return 1
	}
	return *g.NoteCoefficient
}

// SubjectMeta holds the weight of a subject within the general average.
type SubjectMeta struct {
	SubjectID   string   `json:"subject_id"`
	ClassID     string   `json:"class_id"`
	Name        string   `json:"name"`
	Coefficient *float64 `json:"coefficient"` // nil means 1
}

// coefficient never returns less than or equal to 0: such coefficients fall back to 1.
func (s SubjectMeta) coefficient() float64 {
	if s.Coefficient == nil || *s.Coefficient <= 0 {
		return 1
	}
	return *s.Coefficient
}

type SubjectAverage struct {
	Average     float64 `json:"average"`
	Coefficient float64 `json:"coefficient"`
}

type StudentResult struct {
	StudentID       string                    `json:"student_id"`
	SubjectAverages map[string]SubjectAverage `json:"subject_averages"`
	GeneralAverage  float64                   `json:"general_average"`
	Rank            int                       `json:"rank"`
	Status          Status                    `json:"status"`
}

// NewGrade contains information needed to record a new GradeEntry.
type NewGrade struct {
	StudentID       string         `json:"student_id" validate:"required"`
	SubjectID       string         `json:"subject_id" validate:"required"`
	Value           *float64       `json:"value" validate:"required,gte=0,lte=20"`
	NoteCoefficient *float64       `json:"note_coefficient" validate:"omitempty,gt=0"`
	EvaluationType  EvaluationType `json:"evaluation_type" validate:"required,evaltype"`
	Term            Term           `json:"term" validate:"required,term"`
	Date            time.Time      `json:"date"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.StudentID = core.CleanString(ng.StudentID)
	ng.SubjectID = core.CleanString(ng.SubjectID)
	ng.EvaluationType = EvaluationType(core.CleanString(string(ng.EvaluationType), true /* lower */))
	if t, err := ParseTerm(string(ng.Term)); err == nil {
		ng.Term = t
	}
	return validate.Struct(ng)
}

// NewSubject contains information needed to add a subject to a class.
type NewSubject struct {
	Name        string   `json:"name" validate:"required"`
	Coefficient *float64 `json:"coefficient" validate:"omitempty,gt=0"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

// GradeFilter narrows a grades query. Zero values mean "any".
type GradeFilter struct {
	Term      Term
	StudentID string
	SubjectID string
}

func (gf GradeFilter) Match(g GradeEntry) bool {
	return (gf.Term == "" || g.Term == gf.Term) &&
		(gf.StudentID == "" || g.StudentID == gf.StudentID) &&
		(gf.SubjectID == "" || g.SubjectID == gf.SubjectID)
}

func (gf GradeFilter) String() string {
	parts := make([]string, 0, 3)
	if gf.Term != "" {
		parts = append(parts, "term="+string(gf.Term))
	}
	if gf.StudentID != "" {
		parts = append(parts, "student="+gf.StudentID)
	}
	if gf.SubjectID != "" {
		parts = append(parts, "subject="+gf.SubjectID)
	}
	return strings.Join(parts, " ")
}
