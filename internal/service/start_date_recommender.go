package service

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/noah-isme/canvas-helper-api/internal/models"
	"github.com/noah-isme/canvas-helper-api/internal/observability"
	"github.com/noah-isme/canvas-helper-api/pkg/ai"
)

// DefaultAdvisoryInterval is the minimum spacing between two advisory calls.
const DefaultAdvisoryInterval = 200 * time.Millisecond

// AdvisorFactory builds an advisor for the given credential.
type AdvisorFactory func(apiKey string) (ai.LeadTimeAdvisor, error)

// Recommender assigns a suggested start date to every candidate.
type Recommender interface {
	Recommend(ctx context.Context, candidates []models.Candidate, prefs models.Preferences) []models.Assignment
}

// StartDateRecommender derives start dates from the buffer setting or, when enabled, from advisory calls.
type StartDateRecommender struct {
	newAdvisor AdvisorFactory
	defaultKey string
	interval   time.Duration
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewStartDateRecommender constructs a recommender. defaultKey is used when the profile stores no credential.
func NewStartDateRecommender(newAdvisor AdvisorFactory, defaultKey string, interval time.Duration, logger zerolog.Logger) *StartDateRecommender {
	return &StartDateRecommender{
		newAdvisor: newAdvisor,
		defaultKey: defaultKey,
		interval:   interval,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "start_date_recommender").Logger(),
	}
}

// Recommend never fails: each advisory failure falls back to the buffer rule for that item only.
func (r *StartDateRecommender) Recommend(ctx context.Context, candidates []models.Candidate, prefs models.Preferences) []models.Assignment {
	advisor := r.advisorFor(prefs)
	if advisor == nil {
		observability.AdvisoryOutcomes().WithLabelValues("buffer").Add(float64(len(candidates)))
		return bufferedAssignments(candidates, prefs.BufferDays)
	}

	limit := rate.Inf
	if r.interval > 0 {
		limit = rate.Every(r.interval)
	}
	pacer := rate.NewLimiter(limit, 1)

	results := make([]models.Assignment, 0, len(candidates))
	for _, candidate := range candidates {
		days, err := r.advise(ctx, pacer, advisor, candidate)
		if err != nil {
			r.logger.Warn().Err(err).Int64("assignment_id", candidate.ID).Int("buffer_days", prefs.BufferDays).
				Msg("advisory call failed, using default buffer")
			observability.AdvisoryOutcomes().WithLabelValues("fallback").Inc()
			results = append(results, models.NewAssignment(candidate, prefs.BufferDays, false))
			continue
		}

		r.logger.Debug().Int64("assignment_id", candidate.ID).Int("lead_days", days).Msg("advisor recommendation applied")
		observability.AdvisoryOutcomes().WithLabelValues("ai").Inc()
		results = append(results, models.NewAssignment(candidate, days, true))
	}

	return results
}

func (r *StartDateRecommender) advisorFor(prefs models.Preferences) ai.LeadTimeAdvisor {
	if !prefs.EnableAI {
		return nil
	}

	key := strings.TrimSpace(prefs.AIAPIKey)
	if key == "" {
		key = r.defaultKey
	}
	if key == "" || r.newAdvisor == nil {
		r.logger.Warn().Str("profile_id", prefs.ProfileID).Msg("ai analysis enabled without a credential, using default buffer")
		return nil
	}

	advisor, err := r.newAdvisor(key)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to build advisor, using default buffer")
		return nil
	}

	return advisor
}

func (r *StartDateRecommender) advise(ctx context.Context, pacer *rate.Limiter, advisor ai.LeadTimeAdvisor, candidate models.Candidate) (int, error) {
	if err := pacer.Wait(ctx); err != nil {
		return 0, err
	}

	days, err := advisor.RecommendLeadTime(ctx, ai.LeadTimeInput{
		Title:      r.clean(candidate.Title),
		CourseName: r.clean(candidate.CourseName),
		Points:     candidate.Points,
	})
	if err != nil {
		return 0, err
	}

	return ai.ClampLeadDays(days), nil
}

// clean strips markup but keeps entities readable, so "Q&A" reaches the prompt as written.
func (r *StartDateRecommender) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(r.sanitizer.Sanitize(value)))
}

func bufferedAssignments(candidates []models.Candidate, bufferDays int) []models.Assignment {
	results := make([]models.Assignment, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, models.NewAssignment(candidate, bufferDays, false))
	}
	return results
}
