package service

import (
	"time"

	"github.com/noah-isme/canvas-helper-api/internal/models"
)

// DefaultWindowDays bounds how far ahead assignments are planned.
const DefaultWindowDays = 30

// AssignmentFilter drops completed assignments and those outside the planning window.
type AssignmentFilter struct {
	windowDays int
}

// NewAssignmentFilter builds a filter keeping assignments due within windowDays of now.
func NewAssignmentFilter(windowDays int) AssignmentFilter {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return AssignmentFilter{windowDays: windowDays}
}

// Apply keeps outstanding, in-window assignments of one course, preserving their order.
func (f AssignmentFilter) Apply(raw []models.RawAssignment, course models.Course, now time.Time) []models.Candidate {
	candidates := make([]models.Candidate, 0, len(raw))
	for _, assignment := range raw {
		if !IsOutstanding(assignment) {
			continue
		}
		if !WithinWindow(assignment.DueAt, now, f.windowDays) {
			continue
		}

		candidates = append(candidates, models.Candidate{
			ID:         assignment.ID,
			Title:      assignment.Name,
			DueDate:    *assignment.DueAt,
			CourseID:   course.ID,
			CourseName: course.Name,
			HTMLURL:    assignment.HTMLURL,
			Points:     assignment.PointsPossible,
		})
	}

	return candidates
}

// IsOutstanding reports whether the assignment still needs work. Only a turned-in submission that is not
// explicitly marked unsubmitted counts as done.
func IsOutstanding(assignment models.RawAssignment) bool {
	submission := assignment.Submission
	if submission == nil {
		return true
	}

	return !submission.IsSubmitted() || submission.WorkflowState == models.WorkflowStateUnsubmitted
}

// WithinWindow reports whether due lies in [now, now+windowDays], using calendar-day arithmetic for the end.
func WithinWindow(due *time.Time, now time.Time, windowDays int) bool {
	if due == nil {
		return false
	}
	if due.Before(now) {
		return false
	}

	return !due.After(now.AddDate(0, 0, windowDays))
}
