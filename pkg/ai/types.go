package ai

import (
	"context"
	"errors"
	"regexp"
	"strconv"
)

const (
	// MinLeadDays is the shortest lead time an advisor may recommend.
	MinLeadDays = 1
	// MaxLeadDays is the longest lead time an advisor may recommend.
	MaxLeadDays = 14
)

// ErrNoRecommendation is returned when the model reply carries no usable number.
var ErrNoRecommendation = errors.New("advisor response contains no day count")

var leadDaysPattern = regexp.MustCompile(`\d+`)

// LeadTimeInput describes the assignment the advisor is asked about.
type LeadTimeInput struct {
	Title      string
	CourseName string
	Points     *float64
}

// LeadTimeAdvisor recommends how many days ahead of the due date work should start.
type LeadTimeAdvisor interface {
	RecommendLeadTime(ctx context.Context, input LeadTimeInput) (int, error)
}

// ParseLeadDays extracts the first integer in a free-form reply and clamps it to [MinLeadDays, MaxLeadDays].
func ParseLeadDays(reply string) (int, error) {
	match := leadDaysPattern.FindString(reply)
	if match == "" {
		return 0, ErrNoRecommendation
	}

	days, err := strconv.Atoi(match)
	if err != nil {
		// Digit runs too long for int are still a recommendation far above the cap.
		return MaxLeadDays, nil
	}

	return ClampLeadDays(days), nil
}

// ClampLeadDays bounds a recommendation to the supported range.
func ClampLeadDays(days int) int {
	if days < MinLeadDays {
		return MinLeadDays
	}
	if days > MaxLeadDays {
		return MaxLeadDays
	}
	return days
}
