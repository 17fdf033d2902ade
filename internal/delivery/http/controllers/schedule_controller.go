package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"whenworks/internal/delivery/http/helpers"
	"whenworks/internal/delivery/http/middleware"
	"whenworks/internal/domain"
)

type ScheduleController struct {
	Logger  *slog.Logger
	Service domain.ScheduleService
}

func NewScheduleController(logger *slog.Logger, svc domain.ScheduleService) *ScheduleController {
	return &ScheduleController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEventRequest is the request body for POST /api/events.
type CreateEventRequest struct {
	Name        string     `json:"name" validate:"required"`
	Description *string    `json:"description"`
	EventType   string     `json:"event_type" validate:"required"`
	FromDate    *time.Time `json:"from_date"`
	ToDate      *time.Time `json:"to_date"`
	Duration    int        `json:"duration"`
}

// EventSuccessResponse is the success envelope for event endpoints.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Create a schedulable event
// @Description Creates an event with a freshly generated public ID. The event type and date shape are validated atomically with the insert; nothing is stored on validation failure.
// @Tags events
// @Accept json
// @Produce json
// @Param body body controllers.CreateEventRequest true "Event to create"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [post]
func (c *ScheduleController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	event, err := c.Service.CreateEvent(r.Context(), domain.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		EventType:   req.EventType,
		FromDate:    req.FromDate,
		ToDate:      req.ToDate,
		Duration:    req.Duration,
	})
	if err != nil {
		if domain.IsValidation(err) || errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Fetch an event by public ID
// @Tags events
// @Produce json
// @Param publicID path string true "Event public ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{publicID} [get]
func (c *ScheduleController) GetEvent(w http.ResponseWriter, r *http.Request) {
	publicID := r.PathValue("publicID")
	if publicID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing publicID")
		return
	}

	event, err := c.Service.GetEvent(r.Context(), publicID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// AvailabilityWindowRequest is one proposed time window in a submission.
type AvailabilityWindowRequest struct {
	FromDate *time.Time `json:"from_date" validate:"required"`
	ToDate   *time.Time `json:"to_date" validate:"required"`
}

// SubmitAvailabilitiesRequest is the request body for
// POST /api/events/{publicID}/availabilities. The submitter IP is resolved
// from the connection, never from the body.
type SubmitAvailabilitiesRequest struct {
	Availabilities []AvailabilityWindowRequest `json:"availabilities" validate:"required,min=1,dive"`
	UserEmail      *string                     `json:"user_email" validate:"omitempty,email"`
	UserName       string                      `json:"user_name" validate:"required"`
}

// SubmitAvailabilities godoc
// @Summary Submit a batch of availability windows for an event
// @Description Stores every window in the batch atomically. A participant identity (email, source IP, or display name) that already submitted for this event is rejected with a conflict and nothing is stored.
// @Tags availabilities
// @Accept json
// @Produce json
// @Param publicID path string true "Event public ID"
// @Param body body controllers.SubmitAvailabilitiesRequest true "Availability windows and submitter identity"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{publicID}/availabilities [post]
func (c *ScheduleController) SubmitAvailabilities(w http.ResponseWriter, r *http.Request) {
	publicID := r.PathValue("publicID")
	if publicID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing publicID")
		return
	}

	var req SubmitAvailabilitiesRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	ip, ok := middleware.ClientIPFromContext(r.Context())
	if !ok {
		c.Logger.ErrorContext(r.Context(), "client ip missing from context", "path", r.URL.Path)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "unable to resolve client address")
		return
	}

	windows := make([]domain.AvailabilityWindow, 0, len(req.Availabilities))
	for _, a := range req.Availabilities {
		windows = append(windows, domain.AvailabilityWindow{FromDate: *a.FromDate, ToDate: *a.ToDate})
	}

	err := c.Service.SubmitAvailabilities(r.Context(), publicID, domain.AvailabilitySubmission{
		Windows:   windows,
		UserEmail: req.UserEmail,
		UserName:  req.UserName,
		UserIP:    ip,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrDuplicateSubmission):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, nil)
}

// ListAvailabilitiesSuccessResponse is the success envelope for
// GET /api/events/{publicID}/availabilities.
type ListAvailabilitiesSuccessResponse struct {
	Data  []*domain.Availability `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// ListAvailabilities godoc
// @Summary List submitted availabilities for an event
// @Description Returns every submitted window with its submitter display name. Emails and IPs are never exposed.
// @Tags availabilities
// @Produce json
// @Param publicID path string true "Event public ID"
// @Success 200 {object} controllers.ListAvailabilitiesSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{publicID}/availabilities [get]
func (c *ScheduleController) ListAvailabilities(w http.ResponseWriter, r *http.Request) {
	publicID := r.PathValue("publicID")
	if publicID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing publicID")
		return
	}

	availabilities, err := c.Service.ListAvailabilities(r.Context(), publicID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, availabilities)
}
