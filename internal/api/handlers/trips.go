package handlers

import (
	"log/slog"
	"net/http"

	"trip-planner/internal/api/dto"
	"trip-planner/internal/ports"
)

// TripHandler exposes read-only preset retrieval.
type TripHandler struct {
	Repo ports.TripRepository
}

func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		writeJSON(w, r, http.StatusOK, dto.ListTripsResponse{Trips: []dto.TripResponse{}})
		return
	}

	trips, err := h.Repo.ListTrips(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list trips failed", "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListTripsResponse{
		Trips: make([]dto.TripResponse, 0, len(trips)),
	}
	for _, t := range trips {
		res.Trips = append(res.Trips, dto.TripResponse{
			Name:          t.Name,
			Locations:     t.Locations,
			DesignatedEnd: t.DesignatedEnd,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
