package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-planner/internal/domain"
	"trip-planner/internal/services"
)

const okBody = `{
	"optimal_route": [0, 2, 1],
	"distance_matrix": [[0, 600, 1200], [660, 0, 1800], [1260, 1860, 0]],
	"total_time": 3720
}`

var abc = domain.SubmissionPayload{Locations: []string{"A", "B", "C"}}

func newTestOptimizer(t *testing.T, h http.HandlerFunc, cache *memoryCache, opts Options) *HTTPOptimizer {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	if opts.InitialBackoff == 0 {
		opts.InitialBackoff = time.Millisecond
	}

	var o *HTTPOptimizer
	var err error
	if cache != nil {
		o, err = NewHTTPOptimizer(srv.URL+"/optimize", cache, opts)
	} else {
		o, err = NewHTTPOptimizer(srv.URL+"/optimize", nil, opts)
	}
	require.NoError(t, err)
	return o
}

func TestHTTPOptimizerSuccess(t *testing.T) {
	var got optimizeRequest
	o := newTestOptimizer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/optimize", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(okBody))
	}, nil, Options{})

	result, err := o.Optimize(context.Background(), abc)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, got.Locations)
	require.NotNil(t, got.DesignatedEnd)
	assert.False(t, *got.DesignatedEnd)

	assert.Equal(t, []int{0, 2, 1}, result.OptimalRoute)
	assert.Equal(t, 1860.0, result.DistanceMatrix[2][1])
	assert.Equal(t, 3720.0, result.TotalTime)
}

func TestHTTPOptimizerOmitsDesignatedEnd(t *testing.T) {
	var raw map[string]any
	o := newTestOptimizer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(okBody))
	}, nil, Options{OmitDesignatedEnd: true})

	_, err := o.Optimize(context.Background(), abc)
	require.NoError(t, err)

	_, present := raw["designated_end"]
	assert.False(t, present)
}

func TestHTTPOptimizerServerErrorOnOK(t *testing.T) {
	o := newTestOptimizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Could not geocode 'Atlantis'"}`))
	}, nil, Options{})

	_, err := o.Optimize(context.Background(), abc)

	var se *domain.ServerReportedError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusOK, se.Status)
	assert.Equal(t, "Could not geocode 'Atlantis'", domain.UserMessage(err))
}

func TestHTTPOptimizerServerErrorOnFailureStatus(t *testing.T) {
	o := newTestOptimizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Maximum 20 locations"}`))
	}, nil, Options{})

	_, err := o.Optimize(context.Background(), abc)

	var se *domain.ServerReportedError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Equal(t, "Maximum 20 locations", se.Message)
}

func TestHTTPOptimizerStatusWithoutMessage(t *testing.T) {
	var calls atomic.Int32
	o := newTestOptimizer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "internal", http.StatusInternalServerError)
	}, nil, Options{})

	_, err := o.Optimize(context.Background(), abc)

	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.Status)
	assert.Equal(t, "Error: Request failed with status code 500", domain.UserMessage(err))
	assert.Equal(t, int32(1), calls.Load(), "500 is not retried")
}

func TestHTTPOptimizerRetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	o := newTestOptimizer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(okBody))
	}, nil, Options{MaxAttempts: 3})

	result, err := o.Optimize(context.Background(), abc)
	require.NoError(t, err)
	assert.Equal(t, 3720.0, result.TotalTime)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPOptimizerNonJSONBody(t *testing.T) {
	o := newTestOptimizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway</html>"))
	}, nil, Options{})

	_, err := o.Optimize(context.Background(), abc)

	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusOK, te.Status)
}

func TestHTTPOptimizerMissingFields(t *testing.T) {
	o := newTestOptimizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"optimal_route": [0, 1, 2]}`))
	}, nil, Options{})

	_, err := o.Optimize(context.Background(), abc)
	assert.ErrorIs(t, err, domain.ErrMalformedResult)
}

func TestHTTPOptimizerWrongTypes(t *testing.T) {
	o := newTestOptimizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"optimal_route": "0,1,2", "distance_matrix": [], "total_time": 1}`))
	}, nil, Options{})

	_, err := o.Optimize(context.Background(), abc)
	assert.ErrorIs(t, err, domain.ErrMalformedResult)
}

func TestHTTPOptimizerNullMatrixCell(t *testing.T) {
	o := newTestOptimizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"optimal_route": [0, 1], "distance_matrix": [[0, null], [5, 0]], "total_time": 5}`))
	}, nil, Options{})

	result, err := o.Optimize(context.Background(), domain.SubmissionPayload{Locations: []string{"A", "B"}})
	require.NoError(t, err)
	assert.ErrorIs(t, result.Validate(2, false), domain.ErrMalformedResult)
}

func TestHTTPOptimizerHonorsDeadline(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	o := newTestOptimizer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, nil, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := o.Optimize(ctx, abc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHTTPOptimizerRateLimitPastDeadline(t *testing.T) {
	o := newTestOptimizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(okBody))
	}, nil, Options{RatePerSecond: 0.5})

	_, err := o.Optimize(context.Background(), abc)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = o.Optimize(ctx, domain.SubmissionPayload{Locations: []string{"B", "C"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Through the builder the same wait surfaces as a timeout.
	builder := services.NewSubmissionBuilder(o, domain.DefaultListConfig(), 100*time.Millisecond)
	_, err = builder.Submit(context.Background(), domain.SubmissionPayload{Locations: []string{"C", "D"}})
	assert.ErrorIs(t, err, domain.ErrRequestTimedOut)
	assert.Equal(t, "The route service did not respond in time. Please try again.", domain.UserMessage(err))
}

func TestHTTPOptimizerUsesCache(t *testing.T) {
	var calls atomic.Int32
	cache := newMemoryCache()
	o := newTestOptimizer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(okBody))
	}, cache, Options{})

	first, err := o.Optimize(context.Background(), abc)
	require.NoError(t, err)

	spaced := domain.SubmissionPayload{Locations: []string{"  A", "B ", "C"}}
	second, err := o.Optimize(context.Background(), spaced)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first.OptimalRoute, second.OptimalRoute)

	_, err = o.Optimize(context.Background(), domain.SubmissionPayload{Locations: abc.Locations, DesignatedEnd: true})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "designated end is part of the key")
}

func TestHTTPOptimizerSkipsCachingInvalidResults(t *testing.T) {
	cache := newMemoryCache()
	o := newTestOptimizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"optimal_route": [0, 0, 1], "distance_matrix": [[0]], "total_time": 1}`))
	}, cache, Options{})

	_, err := o.Optimize(context.Background(), abc)
	require.NoError(t, err)
	assert.Zero(t, cache.len())
}

func TestCacheKeyNormalizesWhitespace(t *testing.T) {
	a := CacheKey(domain.SubmissionPayload{Locations: []string{"New  York", "Boston"}})
	b := CacheKey(domain.SubmissionPayload{Locations: []string{"New York", "Boston"}})
	c := CacheKey(domain.SubmissionPayload{Locations: []string{"Boston", "New York"}})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestNewHTTPOptimizerRequiresEndpoint(t *testing.T) {
	_, err := NewHTTPOptimizer("  ", nil, Options{})
	assert.Error(t, err)
}

type memoryCache struct {
	mu      sync.Mutex
	results map[string]*domain.OptimizationResult
}

func newMemoryCache() *memoryCache {
	return &memoryCache{results: map[string]*domain.OptimizationResult{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) (*domain.OptimizationResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.results[key]
	return r, ok, nil
}

func (c *memoryCache) Put(ctx context.Context, key string, result *domain.OptimizationResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[key] = result
	return nil
}

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}
