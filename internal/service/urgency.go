package service

import (
	"math"
	"sort"
	"time"

	"github.com/noah-isme/canvas-helper-api/internal/models"
)

const day = 24 * time.Hour

// DaysUntilDue rounds the remaining time up to whole days.
func DaysUntilDue(due, now time.Time) int {
	return int(math.Ceil(float64(due.Sub(now)) / float64(day)))
}

// ClassifyUrgency maps the days left to a tier relative to the user's buffer.
func ClassifyUrgency(daysUntilDue, bufferDays int) models.Urgency {
	switch {
	case daysUntilDue <= bufferDays:
		return models.UrgencyCritical
	case daysUntilDue <= bufferDays+2:
		return models.UrgencyHigh
	case daysUntilDue <= bufferDays+5:
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

// ClassifyAndSort tags every assignment with its urgency against the configured buffer and orders them by
// severity, then due date. Equal keys keep their input order.
func ClassifyAndSort(assignments []models.Assignment, now time.Time, bufferDays int) []models.Assignment {
	sorted := make([]models.Assignment, len(assignments))
	copy(sorted, assignments)

	for i := range sorted {
		sorted[i].Urgency = ClassifyUrgency(DaysUntilDue(sorted[i].DueDate, now), bufferDays)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		left, right := sorted[i], sorted[j]
		if left.Urgency.Rank() != right.Urgency.Rank() {
			return left.Urgency.Rank() < right.Urgency.Rank()
		}
		return left.DueDate.Before(right.DueDate)
	})

	return sorted
}
