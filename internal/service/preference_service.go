package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/canvas-helper-api/internal/dto"
	"github.com/noah-isme/canvas-helper-api/internal/models"
	"github.com/noah-isme/canvas-helper-api/internal/observability"
	"github.com/noah-isme/canvas-helper-api/internal/repository"
)

// PreferenceService reads and writes the planning settings of a profile.
type PreferenceService interface {
	Get(ctx context.Context, profileID string) (models.Preferences, error)
	Update(ctx context.Context, profileID string, payload dto.PreferencesUpdateRequest) (models.Preferences, error)
}

type preferenceService struct {
	repo      repository.PreferenceRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewPreferenceService builds the preference service. cache may be nil.
func NewPreferenceService(repo repository.PreferenceRepository, cache *redis.Client, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) PreferenceService {
	return &preferenceService{
		repo:      repo,
		cache:     cache,
		cacheTTL:  ttl,
		validator: validate,
		logger:    logger.With().Str("component", "preference_service").Logger(),
	}
}

// Get returns the stored preferences, or the defaults when the profile never saved any.
func (s *preferenceService) Get(ctx context.Context, profileID string) (models.Preferences, error) {
	profileID = normalizeProfileID(profileID)
	cacheKey := preferenceCacheKey(profileID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var preferences models.Preferences
			if unmarshalErr := json.Unmarshal([]byte(cached), &preferences); unmarshalErr == nil {
				observability.PreferenceCache().WithLabelValues("hit").Inc()
				return preferences, nil
			}
		} else if err != redis.Nil {
			observability.PreferenceCache().WithLabelValues("error").Inc()
			s.logger.Warn().Err(err).Msg("failed to read preferences cache")
		} else {
			observability.PreferenceCache().WithLabelValues("miss").Inc()
		}
	}

	preferences, err := s.repo.FindByProfile(ctx, profileID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		preferences = models.DefaultPreferences(profileID)
	} else if err != nil {
		return models.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}

	s.store(ctx, cacheKey, preferences)
	return preferences, nil
}

// Update applies the provided fields and persists the result. Changes apply from the next fetch cycle.
func (s *preferenceService) Update(ctx context.Context, profileID string, payload dto.PreferencesUpdateRequest) (models.Preferences, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Preferences{}, err
	}

	profileID = normalizeProfileID(profileID)
	preferences, err := s.repo.FindByProfile(ctx, profileID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		preferences = models.DefaultPreferences(profileID)
	} else if err != nil {
		return models.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}

	if payload.BufferDays != nil {
		preferences.BufferDays = *payload.BufferDays
	}
	if payload.EnableAI != nil {
		preferences.EnableAI = *payload.EnableAI
	}
	if payload.AIAPIKey != nil {
		preferences.AIAPIKey = strings.TrimSpace(*payload.AIAPIKey)
	}

	if err := s.repo.Save(ctx, &preferences); err != nil {
		return models.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, preferenceCacheKey(profileID)).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate preferences cache")
		}
	}

	s.logger.Info().Str("profile_id", profileID).Int("buffer_days", preferences.BufferDays).
		Bool("enable_ai", preferences.EnableAI).Msg("preferences saved")

	return preferences, nil
}

// store caches preferences that carry no advisory key. Profiles holding a key are always read from the
// database so the key is never written to Redis.
func (s *preferenceService) store(ctx context.Context, key string, preferences models.Preferences) {
	if s.cache == nil || preferences.HasAICredential() {
		return
	}

	payload, err := json.Marshal(preferences)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store preferences cache")
	}
}

func preferenceCacheKey(profileID string) string {
	return fmt.Sprintf("preferences:profile:%s", profileID)
}

func normalizeProfileID(profileID string) string {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return models.DefaultProfileID
	}
	return profileID
}
