package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/canvas-helper-api/internal/models"
	"github.com/noah-isme/canvas-helper-api/internal/observability"
)

// ErrNoCourses is wrapped by the FetchError returned when the user has no courses.
var ErrNoCourses = errors.New("no courses found")

// FetchError is the single failure a fetch cycle surfaces to its caller.
type FetchError struct {
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Planner runs one prioritization cycle.
type Planner interface {
	Run(ctx context.Context, fetcher AssignmentFetcher, prefs models.Preferences, now time.Time) ([]models.Assignment, error)
}

type planner struct {
	filter      AssignmentFilter
	recommender Recommender
	concurrency int
	tracer      trace.Tracer
	logger      zerolog.Logger
}

// NewPlanner wires the filter and recommender into a cycle. concurrency bounds parallel course fetches; zero
// means unbounded.
func NewPlanner(filter AssignmentFilter, recommender Recommender, concurrency int, logger zerolog.Logger) Planner {
	return &planner{
		filter:      filter,
		recommender: recommender,
		concurrency: concurrency,
		tracer:      otel.Tracer("github.com/noah-isme/canvas-helper-api/internal/service/planner"),
		logger:      logger.With().Str("component", "planner").Logger(),
	}
}

func (p *planner) Run(ctx context.Context, fetcher AssignmentFetcher, prefs models.Preferences, now time.Time) ([]models.Assignment, error) {
	ctx, span := p.tracer.Start(ctx, "planner.run", trace.WithAttributes(
		attribute.Int("buffer_days", prefs.BufferDays),
		attribute.Bool("ai_enabled", prefs.EnableAI),
	))
	defer span.End()

	courses, err := fetcher.FetchCourses(ctx)
	if err != nil {
		return nil, p.fail(span, &FetchError{Message: fmt.Sprintf("Failed to fetch courses: %v", err), Err: err})
	}
	if len(courses) == 0 {
		return nil, p.fail(span, &FetchError{Message: "No courses found", Err: ErrNoCourses})
	}

	perCourse := make([][]models.Candidate, len(courses))
	group, groupCtx := errgroup.WithContext(ctx)
	if p.concurrency > 0 {
		group.SetLimit(p.concurrency)
	}
	for i, course := range courses {
		group.Go(func() error {
			raw := fetcher.FetchAssignments(groupCtx, course.ID)
			perCourse[i] = p.filter.Apply(raw, course, now)
			return groupCtx.Err()
		})
	}
	if err := group.Wait(); err != nil {
		return nil, p.fail(span, &FetchError{Message: fmt.Sprintf("Fetching assignments was interrupted: %v", err), Err: err})
	}

	candidates := make([]models.Candidate, 0)
	for _, items := range perCourse {
		candidates = append(candidates, items...)
	}

	assignments := p.recommender.Recommend(ctx, candidates, prefs)
	ordered := ClassifyAndSort(assignments, now, prefs.BufferDays)

	span.SetAttributes(attribute.Int("courses", len(courses)), attribute.Int("assignments", len(ordered)))
	observability.FetchCycles().WithLabelValues("success").Inc()
	observability.AssignmentsPrioritized().Add(float64(len(ordered)))
	p.logger.Info().Int("courses", len(courses)).Int("assignments", len(ordered)).Msg("fetched upcoming assignments")

	return ordered, nil
}

func (p *planner) fail(span trace.Span, err *FetchError) error {
	observability.FetchCycles().WithLabelValues("failure").Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.logger.Error().Err(err.Err).Msg(err.Message)
	return err
}
