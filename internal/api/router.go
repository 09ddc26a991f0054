package api

import (
	"net/http"

	"trip-planner/internal/api/handlers"
	"trip-planner/internal/platform/metrics"
	"trip-planner/internal/ports"
	"trip-planner/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
// trips may be nil when no preset storage is configured.
func NewRouter(
	store ports.SessionStore[*services.TripPlanner],
	trips ports.TripRepository,
	newPlanner func() *services.TripPlanner,
) http.Handler {
	mux := http.NewServeMux()

	sessionHandler := &handlers.SessionHandler{
		Store:      store,
		Trips:      trips,
		NewPlanner: newPlanner,
	}
	tripHandler := &handlers.TripHandler{Repo: trips}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /trips", tripHandler.List)

	mux.HandleFunc("POST /sessions", sessionHandler.Create)
	mux.HandleFunc("GET /sessions/{id}", sessionHandler.Get)
	mux.HandleFunc("DELETE /sessions/{id}", sessionHandler.Delete)
	mux.HandleFunc("POST /sessions/{id}/locations", sessionHandler.AddLocation)
	mux.HandleFunc("PUT /sessions/{id}/locations/{index}", sessionHandler.SetLocation)
	mux.HandleFunc("DELETE /sessions/{id}/locations/{index}", sessionHandler.RemoveLocation)
	mux.HandleFunc("PUT /sessions/{id}/designated-end", sessionHandler.SetDesignatedEnd)
	mux.HandleFunc("POST /sessions/{id}/submit", sessionHandler.Submit)

	return requestIDMiddleware(loggingMiddleware(mux))
}
