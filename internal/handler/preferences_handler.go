package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/canvas-helper-api/internal/dto"
	"github.com/noah-isme/canvas-helper-api/internal/middleware"
	"github.com/noah-isme/canvas-helper-api/internal/models"
	"github.com/noah-isme/canvas-helper-api/internal/service"
	"github.com/noah-isme/canvas-helper-api/internal/utils"
)

// PreferencesHandler exposes the settings read and save endpoints.
type PreferencesHandler struct {
	service   service.PreferenceService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewPreferencesHandler creates a new handler instance.
func NewPreferencesHandler(service service.PreferenceService, validator *validator.Validate, logger zerolog.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "preferences_handler").Logger(),
	}
}

// Register attaches preference endpoints to an authenticated group.
func (h *PreferencesHandler) Register(router fiber.Router) {
	router.Get("/", middleware.WithAuth(h.get, middleware.AuthOptions{Scope: middleware.ScopePreferencesRead}))
	router.Put("/", middleware.WithAuth(h.update, middleware.AuthOptions{Scope: middleware.ScopePreferencesWrite}))
}

func (h *PreferencesHandler) get(c *fiber.Ctx) error {
	profile := middleware.GetProfileID(c)
	preferences, err := h.service.Get(c.UserContext(), profile)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load preferences")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load preferences")
	}

	return utils.OK(c, dto.NewPreferencesResponse(preferences), "preferences retrieved", fiber.Map{
		"profileId": profile,
		"bufferMax": models.MaxBufferDays,
		"canWrite":  middleware.HasScope(c, middleware.ScopePreferencesWrite),
	})
}

func (h *PreferencesHandler) update(c *fiber.Ctx) error {
	var payload dto.PreferencesUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid preferences", validationDetails(err))
	}

	preferences, err := h.service.Update(c.UserContext(), middleware.GetProfileID(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.Fail(c, fiber.StatusBadRequest, "invalid preferences", validationDetails(err))
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to save preferences")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to save preferences")
	}

	return utils.SendSuccess(c, "preferences saved", dto.NewPreferencesResponse(preferences))
}
