package grading

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/trezcool/bulletin/core"
)

var (
	// errors
	ErrNotFound       = errors.New("not found")
	ErrUnknownTerm    = errors.New("unknown term")
	ErrUnknownSubject = errors.New("subject not found in class")
	ErrSubjectExists  = errors.New("a subject with this name already exists in class")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateSubject(ctx context.Context, subject SubjectMeta) (SubjectMeta, error)
		// QuerySubjects returns the subjects of a class ordered by name.
		QuerySubjects(ctx context.Context, classID string) ([]SubjectMeta, error)
		GetSubject(ctx context.Context, classID, subjectID string) (SubjectMeta, error)
		CreateGrade(ctx context.Context, grade GradeEntry) (GradeEntry, error)
		// QueryGrades applies AND operation on available GradeFilter fields.
		QueryGrades(ctx context.Context, classID string, filter GradeFilter, ordering []core.DBOrdering) ([]GradeEntry, error)
		DeleteGradesByID(ctx context.Context, ids []string) (int, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger
		results  *cache.Cache // nil when caching is disabled
		opts     []Option

		genMu sync.Mutex
		epoch uint64            // bumped by writes that may span classes
		gens  map[string]uint64 // bumped by writes to a class
	}

	// generation identifies the state of a class's data; results are cached only if it did not change while computing.
	generation struct {
		epoch uint64
		class uint64
	}

	// Bulletin is a student's report card for a term.
	Bulletin struct {
		ClassID   string        `json:"class_id"`
		Term      Term          `json:"term"`
		Result    StudentResult `json:"result"`
		ClassSize int           `json:"class_size"`
		Summary   ClassSummary  `json:"summary"`
		Grades    []GradeEntry  `json:"grades"`
	}
)

var dateOrdering = []core.DBOrdering{{Field: "date", Ascending: true}}

func NewService(repo Repository, validate *validator.Validate, logger core.Logger, conf core.GradingConfig) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(validate, "validate"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	svc := &Service{
		repo:     repo,
		validate: validate,
		logger:   logger,
		opts:     OptionsFromConfig(conf),
		gens:     make(map[string]uint64),
	}
	if conf.ResultsCacheTTL > 0 {
		svc.results = cache.New(conf.ResultsCacheTTL, 2*conf.ResultsCacheTTL)
	}
	return svc
}

func checkIDs(ids map[string]string) error {
	val := vala.BeginValidation()
	names := make([]string, 0, len(ids))
	for name := range ids {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		val = val.Validate(vala.StringNotEmpty(ids[name], name))
	}
	if err := val.Check(); err != nil {
		return core.NewValidationError(err)
	}
	return nil
}

func cacheKey(classID string, term Term) string {
	if term == "" {
		return classID + "/annual"
	}
	return classID + "/" + string(term)
}

func (svc *Service) currentGeneration(classID string) generation {
	svc.genMu.Lock()
	defer svc.genMu.Unlock()
	return generation{epoch: svc.epoch, class: svc.gens[classID]}
}

// cacheResults stores `val` unless the class was written to since `gen` was taken.
func (svc *Service) cacheResults(classID, key string, gen generation, val interface{}) {
	svc.genMu.Lock()
	defer svc.genMu.Unlock()
	if svc.epoch != gen.epoch || svc.gens[classID] != gen.class {
		return
	}
	svc.results.SetDefault(key, val)
}

func (svc *Service) invalidate(classID string) {
	if svc.results == nil {
		return
	}
	svc.genMu.Lock()
	defer svc.genMu.Unlock()
	svc.gens[classID]++
	for _, term := range Terms {
		svc.results.Delete(cacheKey(classID, term))
	}
	svc.results.Delete(cacheKey(classID, ""))
}

func (svc *Service) AddSubject(ctx context.Context, classID string, ns NewSubject) (SubjectMeta, error) {
	classID = core.CleanString(classID)
	if err := checkIDs(map[string]string{"class_id": classID}); err != nil {
		return SubjectMeta{}, err
	}
	if err := ns.Validate(svc.validate); err != nil {
		return SubjectMeta{}, err
	}

	subject, err := svc.repo.CreateSubject(ctx, SubjectMeta{
		SubjectID:   uuid.New().String(),
		ClassID:     classID,
		Name:        ns.Name,
		Coefficient: ns.Coefficient,
	})
	if err != nil {
		if errors.Cause(err) == ErrSubjectExists {
			return SubjectMeta{}, core.NewValidationError(err, core.FieldError{Field: "name", Error: ErrSubjectExists.Error()})
		}
		return SubjectMeta{}, errors.Wrap(err, "creating subject")
	}
	svc.invalidate(classID)
	return subject, nil
}

func (svc *Service) Subjects(ctx context.Context, classID string) ([]SubjectMeta, error) {
	subjects, err := svc.repo.QuerySubjects(ctx, core.CleanString(classID))
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}

func (svc *Service) RecordGrade(ctx context.Context, classID string, ng NewGrade) (GradeEntry, error) {
	classID = core.CleanString(classID)
	if err := checkIDs(map[string]string{"class_id": classID}); err != nil {
		return GradeEntry{}, err
	}
	if err := ng.Validate(svc.validate); err != nil {
		return GradeEntry{}, err
	}

	if _, err := svc.repo.GetSubject(ctx, classID, ng.SubjectID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return GradeEntry{}, core.NewValidationError(ErrUnknownSubject,
				core.FieldError{Field: "subject_id", Error: ErrUnknownSubject.Error()})
		}
		return GradeEntry{}, errors.Wrap(err, "getting subject")
	}

	date := ng.Date
	if date.IsZero() {
		date = NowFunc()
	}
	grade, err := svc.repo.CreateGrade(ctx, GradeEntry{
		ID:              uuid.New().String(),
		ClassID:         classID,
		StudentID:       ng.StudentID,
		SubjectID:       ng.SubjectID,
		Value:           *ng.Value,
		NoteCoefficient: ng.NoteCoefficient,
		EvaluationType:  ng.EvaluationType,
		Term:            ng.Term,
		Date:            date.UTC(),
	})
	if err != nil {
		return GradeEntry{}, errors.Wrap(err, "creating grade")
	}
	svc.invalidate(classID)
	return grade, nil
}

// Grades are ordered by date unless `ordering` is given.
func (svc *Service) Grades(ctx context.Context, classID string, filter GradeFilter, ordering ...core.DBOrdering) ([]GradeEntry, error) {
	if len(ordering) == 0 {
		ordering = dateOrdering
	}
	grades, err := svc.repo.QueryGrades(ctx, core.CleanString(classID), filter, ordering)
	if err != nil {
		return nil, errors.Wrapf(err, "querying grades (%s)", filter)
	}
	return grades, nil
}

func (svc *Service) DeleteGrades(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cnt, err := svc.repo.DeleteGradesByID(ctx, ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting grades")
	}
	if cnt > 0 && svc.results != nil {
		svc.genMu.Lock()
		svc.epoch++
		svc.results.Flush() // deleted grades may span several classes
		svc.genMu.Unlock()
	}
	return cnt, nil
}

// fetch loads what Aggregate needs for a class. An empty term loads every term.
func (svc *Service) fetch(ctx context.Context, classID string, term Term) ([]GradeEntry, []SubjectMeta, error) {
	grades, err := svc.repo.QueryGrades(ctx, classID, GradeFilter{Term: term}, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying grades")
	}
	subjects, err := svc.repo.QuerySubjects(ctx, classID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying subjects")
	}

	var outOfRange int
	for _, g := range grades {
		if g.Value < 0 || g.Value > MaxGrade {
			outOfRange++
		}
	}
	if outOfRange > 0 {
		svc.logger.Warn("grades out of the [0, 20] range", map[string]interface{}{
			"class": classID, "term": string(term), "count": outOfRange,
		})
	}
	return grades, subjects, nil
}

// ClassResults returns the ranked results of a class for a term.
// The returned slice is a copy, but its SubjectAverages maps are shared with the cache and must not be modified.
func (svc *Service) ClassResults(ctx context.Context, classID string, term Term) ([]StudentResult, error) {
	classID = core.CleanString(classID)
	if err := checkIDs(map[string]string{"class_id": classID}); err != nil {
		return nil, err
	}
	if !term.IsValid() {
		return nil, core.NewValidationError(ErrUnknownTerm, core.FieldError{Field: "term", Error: ErrUnknownTerm.Error()})
	}

	key := cacheKey(classID, term)
	if svc.results != nil {
		if cached, ok := svc.results.Get(key); ok {
			return copyResults(cached.([]StudentResult)), nil
		}
	}

	gen := svc.currentGeneration(classID)
	grades, subjects, err := svc.fetch(ctx, classID, term)
	if err != nil {
		return nil, err
	}
	results := Aggregate(grades, subjects, term, svc.opts...)

	if svc.results != nil {
		svc.cacheResults(classID, key, gen, results)
	}
	return copyResults(results), nil
}

func copyResults(results []StudentResult) []StudentResult {
	return append(make([]StudentResult, 0, len(results)), results...)
}

func (svc *Service) ClassSummary(ctx context.Context, classID string, term Term) (ClassSummary, error) {
	results, err := svc.ClassResults(ctx, classID, term)
	if err != nil {
		return ClassSummary{}, err
	}
	return Summarize(results), nil
}

// Bulletin returns ErrNotFound if the student has no grade in the term.
func (svc *Service) Bulletin(ctx context.Context, classID, studentID string, term Term) (Bulletin, error) {
	studentID = core.CleanString(studentID)
	if err := checkIDs(map[string]string{"student_id": studentID}); err != nil {
		return Bulletin{}, err
	}
	results, err := svc.ClassResults(ctx, classID, term)
	if err != nil {
		return Bulletin{}, err
	}

	for _, res := range results {
		if res.StudentID != studentID {
			continue
		}
		classID = core.CleanString(classID)
		grades, err := svc.Grades(ctx, classID, GradeFilter{Term: term, StudentID: studentID})
		if err != nil {
			return Bulletin{}, err
		}
		return Bulletin{
			ClassID:   classID,
			Term:      term,
			Result:    res,
			ClassSize: len(results),
			Summary:   Summarize(results),
			Grades:    grades,
		}, nil
	}
	return Bulletin{}, ErrNotFound
}

func (svc *Service) AnnualResults(ctx context.Context, classID string) ([]AnnualResult, error) {
	classID = core.CleanString(classID)
	if err := checkIDs(map[string]string{"class_id": classID}); err != nil {
		return nil, err
	}

	key := cacheKey(classID, "")
	if svc.results != nil {
		if cached, ok := svc.results.Get(key); ok {
			results := cached.([]AnnualResult)
			return append(make([]AnnualResult, 0, len(results)), results...), nil
		}
	}

	gen := svc.currentGeneration(classID)
	grades, subjects, err := svc.fetch(ctx, classID, "")
	if err != nil {
		return nil, err
	}
	results := AggregateYear(grades, subjects, svc.opts...)

	if svc.results != nil {
		svc.cacheResults(classID, key, gen, results)
	}
	return append(make([]AnnualResult, 0, len(results)), results...), nil
}

// SchoolResults computes the results of several classes concurrently.
// The first error cancels the remaining work.
func (svc *Service) SchoolResults(ctx context.Context, term Term, classIDs ...string) (map[string][]StudentResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		results  = make(map[string][]StudentResult, len(classIDs))
	)
	for _, classID := range classIDs {
		classID := classID
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.ClassResults(ctx, classID, term)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = errors.Wrapf(err, "class %q", classID)
					cancel()
				}
				return
			}
			results[classID] = res
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
