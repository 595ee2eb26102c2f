package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/meets/meets-go/internal/middleware"
	"github.com/meets/meets-go/internal/model"
	"github.com/meets/meets-go/internal/service"
	"github.com/meets/meets-go/internal/telemetry"
)

// EventHandler handles HTTP requests for meets.
type EventHandler struct {
	service  *service.EventService
	reporter *telemetry.Reporter
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(svc *service.EventService, reporter *telemetry.Reporter) *EventHandler {
	return &EventHandler{service: svc, reporter: reporter}
}

// HandleListEvents handles GET /api/v1/meets requests. Authentication is optional.
func (h *EventHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := model.ListEventsRequest{
		Cursor: q.Get("cursor"),
		SortBy: q.Get("sortBy"),
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse(service.ErrInvalidLimit.Error()))
			return
		}
		req.Limit = &limit
	}

	if v := q.Get("registered"); v != "" {
		registered, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse("registered must be a boolean"))
			return
		}
		req.Registered = registered
	}

	userID, _ := middleware.UserIDFromContext(r.Context())

	page, err := h.service.ListEvents(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, h.reporter, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// HandleCreateEvent handles POST /api/v1/meets requests.
func (h *EventHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.CreateEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.service.CreateEvent(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, h.reporter, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.CreateEventResponse{ID: id})
}

// HandleRegister handles POST /api/v1/meets/{event_id}/register requests.
func (h *EventHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	eventID := chi.URLParam(r, "event_id")
	if eventID == "" || len(eventID) > 36 {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid event id"))
		return
	}

	if err := h.service.Register(r.Context(), userID, eventID); err != nil {
		writeServiceError(w, r, h.reporter, err)
		return
	}

	writeJSON(w, http.StatusOK, true)
}
