package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/canvas-helper-api/internal/models"
	"github.com/noah-isme/canvas-helper-api/pkg/canvas"
)

var (
	// ErrCanvasTabRequired signals the active tab is not on the Canvas domain.
	ErrCanvasTabRequired = errors.New("active tab is not a canvas page")
	// ErrSessionNotReady signals Canvas rejected the forwarded session.
	ErrSessionNotReady = errors.New("canvas session not ready")
)

// EnvironmentError is a failure the user fixes in the browser rather than by retrying.
type EnvironmentError struct {
	Err     error
	Message string
}

func (e *EnvironmentError) Error() string {
	return e.Message
}

func (e *EnvironmentError) Unwrap() error {
	return e.Err
}

// Session identifies who asked for assignments and from which tab.
type Session struct {
	TabURL      string
	ProfileID   string
	Credentials canvas.Credentials
}

// AssignmentService answers the popup's fetchAssignments message.
type AssignmentService interface {
	FetchAssignments(ctx context.Context, session Session) ([]models.Assignment, error)
}

// AssignmentServiceConfig tunes the message boundary.
type AssignmentServiceConfig struct {
	DomainSuffix string
	CycleTimeout time.Duration
}

type assignmentService struct {
	preferences PreferenceService
	planner     Planner
	newFetcher  FetcherFactory
	cfg         AssignmentServiceConfig
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService builds the message boundary service.
func NewAssignmentService(preferences PreferenceService, planner Planner, newFetcher FetcherFactory, cfg AssignmentServiceConfig, logger zerolog.Logger) AssignmentService {
	cfg.DomainSuffix = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(cfg.DomainSuffix), "."))
	if cfg.DomainSuffix == "" {
		cfg.DomainSuffix = "instructure.com"
	}

	return &assignmentService{
		preferences: preferences,
		planner:     planner,
		newFetcher:  newFetcher,
		cfg:         cfg,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) FetchAssignments(ctx context.Context, session Session) ([]models.Assignment, error) {
	origin, ok := CanvasOrigin(session.TabURL, s.cfg.DomainSuffix)
	if !ok {
		return nil, &EnvironmentError{
			Err:     ErrCanvasTabRequired,
			Message: fmt.Sprintf("Please navigate to a Canvas page (*.%s) first", s.cfg.DomainSuffix),
		}
	}

	preferences, err := s.preferences.Get(ctx, session.ProfileID)
	if err != nil {
		s.logger.Warn().Err(err).Str("profile_id", session.ProfileID).Msg("failed to load preferences, using defaults")
		preferences = models.DefaultPreferences(normalizeProfileID(session.ProfileID))
	}

	// Canvas only ever sees the caller's own session.
	fetcher, err := s.newFetcher(origin, session.Credentials)
	if err != nil {
		return nil, &FetchError{Message: fmt.Sprintf("Failed to reach Canvas: %v", err), Err: err}
	}

	if s.cfg.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CycleTimeout)
		defer cancel()
	}

	assignments, err := s.planner.Run(ctx, fetcher, preferences, s.now())
	if err != nil {
		var apiErr *canvas.APIError
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			return nil, &EnvironmentError{
				Err:     fmt.Errorf("%w: %v", ErrSessionNotReady, err),
				Message: "Canvas page not ready. Please refresh the page and try again.",
			}
		}
		return nil, err
	}

	return assignments, nil
}

// CanvasOrigin returns scheme://host of tabURL when its host is domainSuffix or one of its subdomains.
func CanvasOrigin(tabURL, domainSuffix string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(tabURL))
	if err != nil || parsed.Host == "" {
		return "", false
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return "", false
	}

	host := strings.ToLower(parsed.Hostname())
	if host != domainSuffix && !strings.HasSuffix(host, "."+domainSuffix) {
		return "", false
	}

	return parsed.Scheme + "://" + parsed.Host, true
}
