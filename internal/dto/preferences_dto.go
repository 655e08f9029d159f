package dto

import (
	"time"

	"github.com/noah-isme/canvas-helper-api/internal/models"
)

// PreferencesUpdateRequest carries a partial settings update; omitted fields keep their stored value.
type PreferencesUpdateRequest struct {
	BufferDays *int    `json:"bufferDays" validate:"omitempty,min=0,max=14"`
	EnableAI   *bool   `json:"enableAI"`
	AIAPIKey   *string `json:"geminiApiKey" validate:"omitempty,max=512"`
}

// PreferencesResponse is the settings view returned to the extension. The stored key is never echoed.
type PreferencesResponse struct {
	BufferDays      int       `json:"bufferDays"`
	EnableAI        bool      `json:"enableAI"`
	AIKeyConfigured bool      `json:"aiKeyConfigured"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewPreferencesResponse converts a model into a DTO.
func NewPreferencesResponse(model models.Preferences) PreferencesResponse {
	return PreferencesResponse{
		BufferDays:      model.BufferDays,
		EnableAI:        model.EnableAI,
		AIKeyConfigured: model.HasAICredential(),
		UpdatedAt:       model.UpdatedAt,
	}
}
