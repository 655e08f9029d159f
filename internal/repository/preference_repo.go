package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/canvas-helper-api/internal/models"
)

// PreferenceRepository persists per-profile planning preferences.
type PreferenceRepository interface {
	FindByProfile(ctx context.Context, profileID string) (models.Preferences, error)
	Save(ctx context.Context, preferences *models.Preferences) error
}

type preferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository instantiates a GORM-backed repository.
func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) FindByProfile(ctx context.Context, profileID string) (models.Preferences, error) {
	var preferences models.Preferences
	if err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).First(&preferences).Error; err != nil {
		return models.Preferences{}, err
	}

	return preferences, nil
}

// Save upserts on profile_id, so two first writes for the same profile both succeed and the last one wins.
// preferences is reloaded with the stored row.
func (r *preferenceRepository) Save(ctx context.Context, preferences *models.Preferences) error {
	record := *preferences
	record.ID = 0

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}},
		UpdateAll: true,
	}).Create(&record).Error
	if err != nil {
		return err
	}

	stored, err := r.FindByProfile(ctx, preferences.ProfileID)
	if err != nil {
		return err
	}

	*preferences = stored
	return nil
}
