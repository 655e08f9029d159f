package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/canvas-helper-api/internal/dto"
	"github.com/noah-isme/canvas-helper-api/internal/models"
	"github.com/noah-isme/canvas-helper-api/internal/repository"
)

func intPointer(v int) *int {
	return &v
}

func boolPointer(v bool) *bool {
	return &v
}

func setupPreferenceService(t *testing.T) (PreferenceService, *gorm.DB, *redis.Client) {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Preferences{}))

	svc := NewPreferenceService(repository.NewPreferenceRepository(db), redisClient, time.Minute, validator.New(), zerolog.Nop())
	return svc, db, redisClient
}

func TestPreferenceServiceReturnsDefaults(t *testing.T) {
	svc, _, _ := setupPreferenceService(t)

	prefs, err := svc.Get(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, models.DefaultProfileID, prefs.ProfileID)
	require.Equal(t, 3, prefs.BufferDays)
	require.False(t, prefs.EnableAI)
}

func TestPreferenceServiceUpdateInvalidatesCache(t *testing.T) {
	svc, db, redisClient := setupPreferenceService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "student")
	require.NoError(t, err)
	require.Equal(t, int64(1), redisClient.Exists(ctx, "preferences:profile:student").Val())

	updated, err := svc.Update(ctx, "student", dto.PreferencesUpdateRequest{BufferDays: intPointer(5)})
	require.NoError(t, err)
	require.Equal(t, 5, updated.BufferDays)
	require.Equal(t, int64(0), redisClient.Exists(ctx, "preferences:profile:student").Val())

	fetched, err := svc.Get(ctx, "student")
	require.NoError(t, err)
	require.Equal(t, 5, fetched.BufferDays)

	// Cached copy is served until the next update.
	require.NoError(t, db.Model(&models.Preferences{}).Where("profile_id = ?", "student").Update("buffer_days", 9).Error)
	cached, err := svc.Get(ctx, "student")
	require.NoError(t, err)
	require.Equal(t, 5, cached.BufferDays)

	partial, err := svc.Update(ctx, "student", dto.PreferencesUpdateRequest{EnableAI: boolPointer(true)})
	require.NoError(t, err)
	require.Equal(t, 9, partial.BufferDays)
	require.True(t, partial.EnableAI)
}

func TestPreferenceServiceNeverCachesAIKey(t *testing.T) {
	svc, _, redisClient := setupPreferenceService(t)
	ctx := context.Background()

	updated, err := svc.Update(ctx, "alice", dto.PreferencesUpdateRequest{
		EnableAI: boolPointer(true),
		AIAPIKey: stringPointer("  sk-alice-secret  "),
	})
	require.NoError(t, err)
	require.Equal(t, "sk-alice-secret", updated.AIAPIKey)

	fetched, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "sk-alice-secret", fetched.AIAPIKey)
	require.True(t, fetched.EnableAI)
	require.Equal(t, int64(0), redisClient.Exists(ctx, "preferences:profile:alice").Val())

	partial, err := svc.Update(ctx, "alice", dto.PreferencesUpdateRequest{BufferDays: intPointer(0)})
	require.NoError(t, err)
	require.Equal(t, "sk-alice-secret", partial.AIAPIKey)

	_, err = svc.Get(ctx, "bob")
	require.NoError(t, err)
	for _, key := range redisClient.Keys(ctx, "preferences:*").Val() {
		require.NotContains(t, redisClient.Get(ctx, key).Val(), "sk-alice-secret")
	}

	raw, err := json.Marshal(fetched)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "sk-alice-secret")
}

func TestPreferenceServiceCacheHit(t *testing.T) {
	svc, _, redisClient := setupPreferenceService(t)
	ctx := context.Background()

	cached := models.Preferences{ProfileID: "seeded", BufferDays: 7, EnableAI: true}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, redisClient.Set(ctx, "preferences:profile:seeded", payload, time.Minute).Err())

	prefs, err := svc.Get(ctx, "seeded")
	require.NoError(t, err)
	require.Equal(t, cached, prefs)
}

func TestPreferenceServiceRejectsOutOfRangeBuffer(t *testing.T) {
	svc, _, _ := setupPreferenceService(t)

	_, err := svc.Update(context.Background(), "student", dto.PreferencesUpdateRequest{BufferDays: intPointer(15)})
	require.Error(t, err)

	_, err = svc.Update(context.Background(), "student", dto.PreferencesUpdateRequest{BufferDays: intPointer(-1)})
	require.Error(t, err)
}

func TestPreferenceServiceWorksWithoutCache(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Preferences{}))

	svc := NewPreferenceService(repository.NewPreferenceRepository(db), nil, time.Minute, validator.New(), zerolog.Nop())

	_, err = svc.Update(context.Background(), "solo", dto.PreferencesUpdateRequest{BufferDays: intPointer(0)})
	require.NoError(t, err)

	prefs, err := svc.Get(context.Background(), "solo")
	require.NoError(t, err)
	require.Equal(t, 0, prefs.BufferDays)
}
