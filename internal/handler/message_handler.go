package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/canvas-helper-api/internal/dto"
	"github.com/noah-isme/canvas-helper-api/internal/middleware"
	"github.com/noah-isme/canvas-helper-api/internal/service"
)

// MessageHandler answers the messages the extension relays from its popup.
type MessageHandler struct {
	service   service.AssignmentService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(service service.AssignmentService, validator *validator.Validate, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "message_handler").Logger(),
	}
}

// Register attaches the message endpoint to an authenticated group. limiter runs after authentication so it
// can key on the profile.
func (h *MessageHandler) Register(router fiber.Router, limiter ...fiber.Handler) {
	handlers := append(append([]fiber.Handler{}, limiter...),
		middleware.WithAuth(h.handle, middleware.AuthOptions{Scope: middleware.ScopeAssignments}))
	router.Post("/", handlers...)
}

func (h *MessageHandler) handle(c *fiber.Ctx) error {
	var request dto.MessageRequest
	if err := c.BodyParser(&request); err != nil {
		return h.failure(c, fiber.StatusBadRequest, dto.MessageFailure{Error: "invalid message body"})
	}
	if err := h.validator.Struct(request); err != nil {
		return h.failure(c, fiber.StatusBadRequest, dto.MessageFailure{Error: "message action is required"})
	}

	switch request.Action {
	case dto.ActionFetchAssignments:
		return h.fetchAssignments(c, request)
	default:
		return h.failure(c, fiber.StatusBadRequest, dto.MessageFailure{Error: "unsupported action: " + request.Action})
	}
}

func (h *MessageHandler) fetchAssignments(c *fiber.Ctx, request dto.MessageRequest) error {
	session := service.Session{
		TabURL:      request.TabURL,
		ProfileID:   middleware.GetProfileID(c),
		Credentials: sessionCredentials(c),
	}

	assignments, err := h.service.FetchAssignments(c.UserContext(), session)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.MessageSuccess{
		Success:     true,
		Assignments: dto.NewAssignmentResponseSlice(assignments),
	})
}

func (h *MessageHandler) mapError(c *fiber.Ctx, err error) error {
	logger := requestLogger(h.logger, c)

	var envErr *service.EnvironmentError
	if errors.As(err, &envErr) {
		logger.Warn().Err(envErr.Err).Msg("assignment fetch needs user action")
		if errors.Is(err, service.ErrCanvasTabRequired) {
			return h.failure(c, fiber.StatusUnprocessableEntity, dto.MessageFailure{Error: envErr.Message, NeedsCanvas: true})
		}
		return h.failure(c, fiber.StatusServiceUnavailable, dto.MessageFailure{Error: envErr.Message, NeedsRefresh: true})
	}

	var fetchErr *service.FetchError
	if errors.As(err, &fetchErr) {
		logger.Error().Err(fetchErr.Err).Msg("failed to fetch assignments")
		return h.failure(c, fiber.StatusBadGateway, dto.MessageFailure{Error: fetchErr.Message})
	}

	logger.Error().Err(err).Msg("unexpected assignment fetch failure")
	return h.failure(c, fiber.StatusInternalServerError, dto.MessageFailure{Error: "failed to fetch assignments"})
}

func (h *MessageHandler) failure(c *fiber.Ctx, status int, payload dto.MessageFailure) error {
	payload.Success = false
	return c.Status(status).JSON(payload)
}
