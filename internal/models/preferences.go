package models

import "time"

const (
	// DefaultBufferDays is the lead time used until the user picks one.
	DefaultBufferDays = 3
	// MaxBufferDays bounds the user-configurable lead time.
	MaxBufferDays = 14
	// DefaultProfileID identifies the preference row used when the caller sends none.
	DefaultProfileID = "default"
)

// Preferences stores the per-profile planning settings. The advisory key never leaves the database in JSON.
type Preferences struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProfileID  string    `gorm:"size:128;uniqueIndex;not null" json:"profile_id"`
	BufferDays int       `gorm:"not null" json:"buffer_days"`
	EnableAI   bool      `gorm:"not null" json:"enable_ai"`
	AIAPIKey   string    `gorm:"size:512" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DefaultPreferences returns the settings applied to a profile that never saved any.
func DefaultPreferences(profileID string) Preferences {
	return Preferences{
		ProfileID:  profileID,
		BufferDays: DefaultBufferDays,
		EnableAI:   false,
	}
}

// HasAICredential reports whether a stored advisory key exists.
func (p Preferences) HasAICredential() bool {
	return p.AIAPIKey != ""
}
