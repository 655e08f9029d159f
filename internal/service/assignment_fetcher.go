package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/canvas-helper-api/internal/models"
	"github.com/noah-isme/canvas-helper-api/internal/observability"
	"github.com/noah-isme/canvas-helper-api/pkg/canvas"
)

// CanvasAPI is the slice of the Canvas REST API the fetcher relies on.
type CanvasAPI interface {
	FavoriteCourses(ctx context.Context) ([]models.Course, error)
	ActiveCourses(ctx context.Context) ([]models.Course, error)
	CourseAssignments(ctx context.Context, courseID int64) ([]models.RawAssignment, error)
}

// AssignmentFetcher retrieves courses and their assignments for one session.
type AssignmentFetcher interface {
	FetchCourses(ctx context.Context) ([]models.Course, error)
	// FetchAssignments never fails; a broken course yields no assignments.
	FetchAssignments(ctx context.Context, courseID int64) []models.RawAssignment
}

// FetcherFactory builds a fetcher bound to a Canvas origin and the caller's session.
type FetcherFactory func(origin string, credentials canvas.Credentials) (AssignmentFetcher, error)

type canvasAssignmentFetcher struct {
	api    CanvasAPI
	logger zerolog.Logger
}

// NewAssignmentFetcher wraps a Canvas API with course fallback and per-course failure tolerance.
func NewAssignmentFetcher(api CanvasAPI, logger zerolog.Logger) AssignmentFetcher {
	return &canvasAssignmentFetcher{
		api:    api,
		logger: logger.With().Str("component", "assignment_fetcher").Logger(),
	}
}

// NewCanvasFetcherFactory returns a factory creating HTTP-backed fetchers.
func NewCanvasFetcherFactory(timeout time.Duration, logger zerolog.Logger) FetcherFactory {
	return func(origin string, credentials canvas.Credentials) (AssignmentFetcher, error) {
		client, err := canvas.NewClient(origin, credentials, canvas.WithTimeout(timeout))
		if err != nil {
			return nil, fmt.Errorf("build canvas client: %w", err)
		}
		return NewAssignmentFetcher(client, logger), nil
	}
}

func (f *canvasAssignmentFetcher) FetchCourses(ctx context.Context) ([]models.Course, error) {
	courses, err := f.api.FavoriteCourses(ctx)
	if err == nil {
		return courses, nil
	}

	f.logger.Warn().Err(err).Msg("favorites endpoint failed, falling back to active courses")
	observability.CourseFallbacks().Inc()

	courses, err = f.api.ActiveCourses(ctx)
	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (f *canvasAssignmentFetcher) FetchAssignments(ctx context.Context, courseID int64) []models.RawAssignment {
	assignments, err := f.api.CourseAssignments(ctx, courseID)
	if err != nil {
		f.logger.Error().Err(err).Int64("course_id", courseID).Msg("failed to fetch course assignments")
		observability.CourseFailures().Inc()
		return []models.RawAssignment{}
	}

	return assignments
}
