package models

import "time"

// Course is an active Canvas course the user is enrolled in.
type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Submission captures the submission state Canvas reports for the current user.
type Submission struct {
	SubmittedAt   *time.Time `json:"submitted_at"`
	Grade         *string    `json:"grade"`
	WorkflowState string     `json:"workflow_state"`
}

const (
	// WorkflowStateUnsubmitted marks a submission record that was never turned in.
	WorkflowStateUnsubmitted = "unsubmitted"
	// WorkflowStateGraded marks a submission that has been evaluated.
	WorkflowStateGraded = "graded"
)

// IsSubmitted reports whether the submission was turned in.
func (s Submission) IsSubmitted() bool {
	return s.SubmittedAt != nil
}

// RawAssignment is an assignment exactly as fetched from Canvas.
type RawAssignment struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	DueAt          *time.Time  `json:"due_at"`
	PointsPossible *float64    `json:"points_possible"`
	HTMLURL        string      `json:"html_url"`
	Submission     *Submission `json:"submission"`
}
