package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"trip-planner/internal/api/dto"
	"trip-planner/internal/domain"
	"trip-planner/internal/ports"
	"trip-planner/internal/services"
)

// SessionHandler exposes the planner form as a set of session endpoints.
type SessionHandler struct {
	Store      ports.SessionStore[*services.TripPlanner]
	Trips      ports.TripRepository
	NewPlanner func() *services.TripPlanner
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	planner := h.NewPlanner()

	if name := strings.TrimSpace(req.Preset); name != "" {
		if h.Trips == nil {
			writeError(w, r, http.StatusNotFound, "trip presets are not configured")
			return
		}

		preset, err := h.Trips.GetTrip(r.Context(), name)
		if errors.Is(err, ports.ErrTripNotFound) {
			writeError(w, r, http.StatusNotFound, "trip preset not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "get trip failed", "name", name, "err", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}

		if err := planner.LoadPreset(preset); err != nil {
			writeError(w, r, statusFor(err), domain.UserMessage(err))
			return
		}
	}

	id, err := h.Store.Create(planner)
	if err != nil {
		slog.WarnContext(r.Context(), "create session failed", "err", err)
		writeError(w, r, http.StatusServiceUnavailable, "too many open sessions")
		return
	}

	writeJSON(w, r, http.StatusCreated, toSessionResponse(id, planner.View()))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, planner, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, toSessionResponse(id, planner.View()))
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.Store.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	id, planner, ok := h.lookup(w, r)
	if !ok {
		return
	}

	index, ok := pathIndex(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "index must be an integer")
		return
	}

	var req dto.SetLocationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	planner.SetLocation(index, req.Value)
	writeJSON(w, r, http.StatusOK, toSessionResponse(id, planner.View()))
}

func (h *SessionHandler) AddLocation(w http.ResponseWriter, r *http.Request) {
	id, planner, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := planner.AddLocation(); err != nil {
		writeError(w, r, statusFor(err), domain.UserMessage(err))
		return
	}

	writeJSON(w, r, http.StatusOK, toSessionResponse(id, planner.View()))
}

func (h *SessionHandler) RemoveLocation(w http.ResponseWriter, r *http.Request) {
	id, planner, ok := h.lookup(w, r)
	if !ok {
		return
	}

	index, ok := pathIndex(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "index must be an integer")
		return
	}

	planner.RemoveLocation(index)
	writeJSON(w, r, http.StatusOK, toSessionResponse(id, planner.View()))
}

func (h *SessionHandler) SetDesignatedEnd(w http.ResponseWriter, r *http.Request) {
	id, planner, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req dto.DesignatedEndRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if !planner.SetDesignatedEnd(req.Enabled) {
		writeError(w, r, http.StatusUnprocessableEntity, "designated end point is not supported")
		return
	}

	writeJSON(w, r, http.StatusOK, toSessionResponse(id, planner.View()))
}

// Submit runs the optimization synchronously and returns the session with the
// new itinerary. Failures leave the previous itinerary in the session.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, planner, ok := h.lookup(w, r)
	if !ok {
		return
	}

	// A started submission runs to completion even if the client goes away;
	// the planner's own timeout bounds it.
	if _, err := planner.Submit(context.WithoutCancel(r.Context())); err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			slog.WarnContext(r.Context(), "submit failed", "session", id, "err", err)
		}
		writeError(w, r, status, domain.UserMessage(err))
		return
	}

	writeJSON(w, r, http.StatusOK, toSessionResponse(id, planner.View()))
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (string, *services.TripPlanner, bool) {
	id := r.PathValue("id")
	planner, err := h.Store.Get(id)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "session not found")
		return "", nil, false
	}
	return id, planner, true
}
