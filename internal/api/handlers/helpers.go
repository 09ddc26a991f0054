package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"trip-planner/internal/api/dto"
	"trip-planner/internal/domain"
	"trip-planner/internal/services"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "encode failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeBody reads exactly one JSON object, rejecting unknown fields.
// An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

func pathIndex(r *http.Request) (int, bool) {
	i, err := strconv.Atoi(r.PathValue("index"))
	return i, err == nil
}

// statusFor maps planner errors to HTTP statuses.
func statusFor(err error) int {
	var se *domain.ServerReportedError
	var te *domain.TransportError
	switch {
	case errors.Is(err, domain.ErrInsufficientLocations):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrLimitReached), errors.Is(err, domain.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRequestTimedOut):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrMalformedResult), errors.As(err, &se), errors.As(err, &te):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToItineraryResponse is the JSON shape of an itinerary, shared by the API and the CLI.
func ToItineraryResponse(it *domain.Itinerary) *dto.ItineraryResponse {
	if it == nil {
		return nil
	}

	steps := make([]dto.RouteStepResponse, 0, len(it.Steps))
	for _, s := range it.Steps {
		step := dto.RouteStepResponse{
			Kind:             s.Kind.String(),
			LocationIndex:    s.LocationIndex,
			Location:         s.Location,
			LegSecondsToNext: s.LegSecondsToNext,
		}
		if s.LegSecondsToNext != nil {
			step.LegToNext = services.FormatDuration(*s.LegSecondsToNext)
		}
		steps = append(steps, step)
	}

	return &dto.ItineraryResponse{
		DesignatedEnd:    it.DesignatedEnd,
		Steps:            steps,
		TotalTimeSeconds: it.TotalTimeSeconds,
		TotalTime:        services.FormatDuration(it.TotalTimeSeconds),
		LegSumSeconds:    it.LegSumSeconds,
	}
}

func toSessionResponse(id string, v services.PlannerView) dto.SessionResponse {
	return dto.SessionResponse{
		ID:                    id,
		Locations:             v.Locations,
		Placeholders:          v.Placeholders,
		ValidCount:            v.ValidCount,
		CountStatus:           v.CountStatus.String(),
		MaxLocations:          v.MaxLocations,
		CanAdd:                v.CanAdd,
		CanRemove:             v.CanRemove,
		DesignatedEnd:         v.DesignatedEnd,
		SupportsDesignatedEnd: v.SupportsDesignatedEnd,
		EndPointPreview:       v.EndPointPreview,
		Loading:               v.Loading,
		State:                 v.State.String(),
		Tips:                  v.Tips,
		Itinerary:             ToItineraryResponse(v.Itinerary),
		Error:                 v.Error,
	}
}
