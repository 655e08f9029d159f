package models

import "time"

// Urgency is the discrete priority tier shown next to each assignment.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// Rank orders urgencies from most to least severe.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	default:
		return 3
	}
}

// Candidate is an outstanding assignment inside the planning window that still needs a start date.
type Candidate struct {
	ID         int64
	Title      string
	DueDate    time.Time
	CourseID   int64
	CourseName string
	HTMLURL    string
	Points     *float64
}

// Assignment is a prioritized assignment ready to be rendered.
type Assignment struct {
	ID                    int64
	Title                 string
	DueDate               time.Time
	CourseID              int64
	CourseName            string
	HTMLURL               string
	Points                *float64
	SuggestedStartDate    *time.Time
	Urgency               Urgency
	AIAnalyzed            bool
	RecommendedBufferDays int
}

// NewAssignment derives a start date from the candidate's due date and the given lead time in days.
func NewAssignment(candidate Candidate, bufferDays int, aiAnalyzed bool) Assignment {
	start := candidate.DueDate.AddDate(0, 0, -bufferDays)
	return Assignment{
		ID:                    candidate.ID,
		Title:                 candidate.Title,
		DueDate:               candidate.DueDate,
		CourseID:              candidate.CourseID,
		CourseName:            candidate.CourseName,
		HTMLURL:               candidate.HTMLURL,
		Points:                candidate.Points,
		SuggestedStartDate:    &start,
		AIAnalyzed:            aiAnalyzed,
		RecommendedBufferDays: bufferDays,
	}
}
