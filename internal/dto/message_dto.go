package dto

import (
	"time"

	"github.com/noah-isme/canvas-helper-api/internal/models"
)

// ActionFetchAssignments is the only message action the service answers.
const ActionFetchAssignments = "fetchAssignments"

// MessageRequest is the message the extension relays from its popup.
type MessageRequest struct {
	Action string `json:"action" validate:"required"`
	TabURL string `json:"tabUrl"`
}

// MessageSuccess answers a fetchAssignments message with the prioritized list.
type MessageSuccess struct {
	Success     bool                 `json:"success"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// MessageFailure reports why no list could be produced, with remediation hints for the popup.
type MessageFailure struct {
	Success      bool   `json:"success"`
	Error        string `json:"error"`
	NeedsCanvas  bool   `json:"needsCanvas,omitempty"`
	NeedsRefresh bool   `json:"needsRefresh,omitempty"`
}

// AssignmentResponse is the per-assignment shape rendered by the popup.
type AssignmentResponse struct {
	ID                    int64      `json:"id"`
	Title                 string     `json:"title"`
	DueDate               time.Time  `json:"dueDate"`
	CourseName            string     `json:"courseName"`
	CourseID              int64      `json:"courseId"`
	HTMLURL               string     `json:"htmlUrl"`
	Points                *float64   `json:"points"`
	SuggestedStartDate    *time.Time `json:"suggestedStartDate"`
	Urgency               string     `json:"urgency"`
	AIAnalyzed            bool       `json:"aiAnalyzed"`
	RecommendedBufferDays int        `json:"recommendedBufferDays"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:                    model.ID,
		Title:                 model.Title,
		DueDate:               model.DueDate,
		CourseName:            model.CourseName,
		CourseID:              model.CourseID,
		HTMLURL:               model.HTMLURL,
		Points:                model.Points,
		SuggestedStartDate:    model.SuggestedStartDate,
		Urgency:               string(model.Urgency),
		AIAnalyzed:            model.AIAnalyzed,
		RecommendedBufferDays: model.RecommendedBufferDays,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
