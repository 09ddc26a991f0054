package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner/internal/adapters/optimizer"
	"trip-planner/internal/adapters/repositories"
	"trip-planner/internal/api/dto"
	"trip-planner/internal/domain"
	"trip-planner/internal/ports"
	"trip-planner/internal/services"
)

type stubTrips struct {
	trips map[string]*domain.TripPreset
}

func (s *stubTrips) ListTrips(ctx context.Context) ([]*domain.TripPreset, error) {
	out := make([]*domain.TripPreset, 0, len(s.trips))
	for _, t := range s.trips {
		out = append(out, t)
	}
	return out, nil
}

func (s *stubTrips) GetTrip(ctx context.Context, name string) (*domain.TripPreset, error) {
	t, ok := s.trips[name]
	if !ok {
		return nil, fmt.Errorf("get trip %q: %w", name, ports.ErrTripNotFound)
	}
	return t, nil
}

func newTestRouter(t *testing.T, cfg domain.ListConfig) (http.Handler, *optimizer.MockOptimizer) {
	t.Helper()
	mock := optimizer.NewMockOptimizer()
	return newTestRouterWith(t, cfg, mock), mock
}

func newTestRouterWith(t *testing.T, cfg domain.ListConfig, opt ports.RouteOptimizer) http.Handler {
	t.Helper()

	list := services.NewLocationListController(cfg)
	store := repositories.NewMemorySessionStore[*services.TripPlanner](0, time.Hour)
	trips := &stubTrips{trips: map[string]*domain.TripPreset{
		"commute": {Name: "commute", Locations: []string{"Home", "Gym", "Work"}, DesignatedEnd: true},
	}}

	return NewRouter(store, trips, func() *services.TripPlanner {
		return services.NewTripPlanner(list, opt, time.Second)
	})
}

// cancelAwareOptimizer fails the way a real client does when its context ends.
type cancelAwareOptimizer struct {
	inner *optimizer.MockOptimizer
}

func (o cancelAwareOptimizer) Optimize(ctx context.Context, p domain.SubmissionPayload) (*domain.OptimizationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return o.inner.Optimize(ctx, p)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) dto.SessionResponse {
	t.Helper()
	var resp dto.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, domain.DefaultListConfig())

	rec := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestSessionFlow(t *testing.T) {
	router, mock := newTestRouter(t, domain.DefaultListConfig())
	mock.Register([]string{"A", "B", "C"}, &domain.OptimizationResult{
		OptimalRoute:   []int{0, 2, 1},
		DistanceMatrix: [][]float64{{0, 600, 1200}, {660, 0, 1800}, {1260, 1860, 0}},
		TotalTime:      3720,
	})

	rec := do(t, router, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	session := decodeSession(t, rec)
	assert.Equal(t, []string{"", ""}, session.Locations)
	assert.Equal(t, "Enter starting location", session.Placeholders[0])
	assert.Equal(t, "editing", session.State)

	base := "/sessions/" + session.ID
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPut, base+"/locations/0", `{"value":"A"}`).Code)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPut, base+"/locations/1", `{"value":"B"}`).Code)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, base+"/locations", "").Code)
	rec = do(t, router, http.MethodPut, base+"/locations/2", `{"value":"C"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decodeSession(t, rec).ValidCount)

	rec = do(t, router, http.MethodPost, base+"/submit", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session = decodeSession(t, rec)

	require.NotNil(t, session.Itinerary)
	steps := session.Itinerary.Steps
	require.Len(t, steps, 4)
	assert.Equal(t, "start", steps[0].Kind)
	assert.Equal(t, "C", steps[1].Location)
	assert.Equal(t, "end", steps[3].Kind)
	assert.Equal(t, "A", steps[3].Location)
	assert.Equal(t, "31 minutes", steps[1].LegToNext)
	assert.Equal(t, "1 hours 2 minutes", session.Itinerary.TotalTime)
	assert.Empty(t, session.Error)

	rec = do(t, router, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, base, "").Code)
}

func TestSubmitInsufficientLocations(t *testing.T) {
	router, mock := newTestRouter(t, domain.DefaultListConfig())

	session := decodeSession(t, do(t, router, http.MethodPost, "/sessions", ""))
	base := "/sessions/" + session.ID
	do(t, router, http.MethodPut, base+"/locations/0", `{"value":"A"}`)

	rec := do(t, router, http.MethodPost, base+"/submit", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Please enter at least 2 valid locations", errorOf(t, rec))
	assert.Zero(t, mock.Calls())

	session = decodeSession(t, do(t, router, http.MethodGet, base, ""))
	assert.Equal(t, "Please enter at least 2 valid locations", session.Error)
}

func TestAddLocationAtLimit(t *testing.T) {
	router, _ := newTestRouter(t, domain.ListConfig{MaxLocations: 3, WarningThreshold: 2, SupportsDesignatedEnd: true})

	session := decodeSession(t, do(t, router, http.MethodPost, "/sessions", ""))
	base := "/sessions/" + session.ID

	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, base+"/locations", "").Code)

	rec := do(t, router, http.MethodPost, base+"/locations", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Maximum number of locations reached", errorOf(t, rec))

	session = decodeSession(t, do(t, router, http.MethodGet, base, ""))
	assert.Len(t, session.Locations, 3)
	assert.False(t, session.CanAdd)
}

func TestRemoveLocationKeepsMinimum(t *testing.T) {
	router, _ := newTestRouter(t, domain.DefaultListConfig())

	session := decodeSession(t, do(t, router, http.MethodPost, "/sessions", ""))
	base := "/sessions/" + session.ID

	rec := do(t, router, http.MethodDelete, base+"/locations/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeSession(t, rec).Locations, 2)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodDelete, base+"/locations/x", "").Code)
}

func TestCreateSessionFromPreset(t *testing.T) {
	router, _ := newTestRouter(t, domain.DefaultListConfig())

	rec := do(t, router, http.MethodPost, "/sessions", `{"preset":"commute"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	session := decodeSession(t, rec)
	assert.Equal(t, []string{"Home", "Gym", "Work"}, session.Locations)
	assert.True(t, session.DesignatedEnd)
	assert.Equal(t, "Work", session.EndPointPreview)
	assert.Equal(t, "Enter ending location", session.Placeholders[2])

	rec = do(t, router, http.MethodPost, "/sessions", `{"preset":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSessionRejectsUnknownFields(t *testing.T) {
	router, _ := newTestRouter(t, domain.DefaultListConfig())

	rec := do(t, router, http.MethodPost, "/sessions", `{"presets":"commute"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDesignatedEndUnsupported(t *testing.T) {
	router, _ := newTestRouter(t, domain.ListConfig{MaxLocations: 10, WarningThreshold: 8})

	session := decodeSession(t, do(t, router, http.MethodPost, "/sessions", ""))

	rec := do(t, router, http.MethodPut, "/sessions/"+session.ID+"/designated-end", `{"enabled":true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListTrips(t *testing.T) {
	router, _ := newTestRouter(t, domain.DefaultListConfig())

	rec := do(t, router, http.MethodGet, "/trips", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ListTripsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Trips, 1)
	assert.Equal(t, "commute", resp.Trips[0].Name)
}

func TestUnknownSession(t *testing.T) {
	router, _ := newTestRouter(t, domain.DefaultListConfig())

	rec := do(t, router, http.MethodPost, "/sessions/does-not-exist/submit", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitSurvivesClientDisconnect(t *testing.T) {
	router := newTestRouterWith(t, domain.DefaultListConfig(), cancelAwareOptimizer{inner: optimizer.NewMockOptimizer()})

	session := decodeSession(t, do(t, router, http.MethodPost, "/sessions", ""))
	base := "/sessions/" + session.ID
	do(t, router, http.MethodPut, base+"/locations/0", `{"value":"A"}`)
	do(t, router, http.MethodPut, base+"/locations/1", `{"value":"B"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, base+"/submit", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	session = decodeSession(t, do(t, router, http.MethodGet, base, ""))
	require.NotNil(t, session.Itinerary)
	assert.Empty(t, session.Error)
}
