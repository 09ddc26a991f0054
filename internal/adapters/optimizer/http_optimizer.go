package optimizer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"trip-planner/internal/domain"
	"trip-planner/internal/platform/metrics"
	"trip-planner/internal/platform/obs"
	"trip-planner/internal/ports"
)

const maxBodyBytes = 4 << 20

// HTTPOptimizer implements RouteOptimizer against the remote optimization service.
//
// It coordinates:
//   - Payload normalization for cache keys
//   - An optional persistent result cache
//   - The JSON POST with retry/backoff and client-side rate limiting
//
// The optimizer is safe for concurrent use.
type HTTPOptimizer struct {
	session           *http.Client
	endpoint          string
	sendDesignatedEnd bool
	maxAttempts       int
	backoff           time.Duration
	limiter           *rate.Limiter
	cache             ports.ResultCache
}

// Options tunes an HTTPOptimizer. Zero values pick the defaults.
type Options struct {
	// Client defaults to an http.Client without its own timeout; the caller's
	// context carries the deadline.
	Client *http.Client
	// MaxAttempts defaults to 3.
	MaxAttempts int
	// RatePerSecond of 0 disables throttling.
	RatePerSecond float64
	// InitialBackoff defaults to 200ms and doubles per retry.
	InitialBackoff time.Duration
	// OmitDesignatedEnd drops the designated_end field for services that
	// predate it; they treat the first location as both start and end.
	OmitDesignatedEnd bool
}

func NewHTTPOptimizer(endpoint string, cache ports.ResultCache, opts Options) (*HTTPOptimizer, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("optimizer endpoint is empty")
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}

	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 3
	}

	backoff := opts.InitialBackoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}

	return &HTTPOptimizer{
		session:           client,
		endpoint:          endpoint,
		sendDesignatedEnd: !opts.OmitDesignatedEnd,
		maxAttempts:       attempts,
		backoff:           backoff,
		limiter:           rate.NewLimiter(limit, 1),
		cache:             cache,
	}, nil
}

// CacheKey identifies a payload independent of incidental whitespace.
func CacheKey(p domain.SubmissionPayload) string {
	h := sha256.New()
	fmt.Fprintf(h, "designated_end=%t\n", p.DesignatedEnd)
	for _, loc := range p.Locations {
		h.Write([]byte(strings.Join(strings.Fields(loc), " ")))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Optimize answers from the cache when possible, otherwise posts the payload.
func (o *HTTPOptimizer) Optimize(
	ctx context.Context,
	payload domain.SubmissionPayload,
) (_ *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "optimizer.Optimize")(&err)

	if len(payload.Locations) == 0 {
		return nil, errors.New("optimize: payload has no locations")
	}

	key := CacheKey(payload)
	if o.cache != nil {
		cached, ok, err := o.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.ResultCacheRequests.WithLabelValues("error").Inc()
			slog.WarnContext(ctx, "result cache read failed", "err", err)
		case ok:
			metrics.ResultCacheRequests.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.ResultCacheRequests.WithLabelValues("miss").Inc()
		}
	}

	result, err := o.post(ctx, payload)
	if err != nil {
		return nil, err
	}

	// Only results that render cleanly are worth replaying.
	if o.cache != nil && result.Validate(len(payload.Locations), payload.DesignatedEnd) == nil {
		if err := o.cache.Put(ctx, key, result); err != nil {
			slog.WarnContext(ctx, "result cache write failed", "err", err)
		}
	}

	return result, nil
}

func (o *HTTPOptimizer) post(ctx context.Context, payload domain.SubmissionPayload) (*domain.OptimizationResult, error) {
	body, err := json.Marshal(newOptimizeRequest(payload, o.sendDesignatedEnd))
	if err != nil {
		return nil, fmt.Errorf("marshal optimize request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	})
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.TransportError{Status: resp.StatusCode, Message: "read response: " + err.Error(), Err: err}
	}

	var decoded optimizeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResult, err)
		}
		return nil, &domain.TransportError{Status: resp.StatusCode, Message: "decode response: " + err.Error(), Err: err}
	}

	if decoded.Error != nil && strings.TrimSpace(*decoded.Error) != "" {
		return nil, &domain.ServerReportedError{Status: resp.StatusCode, Message: strings.TrimSpace(*decoded.Error)}
	}

	return decoded.toResult()
}

// classify maps a failed exchange to the planner's error kinds, preferring a
// server-provided message when the body carries one.
func classify(err error) error {
	var he *httpStatusError
	if errors.As(err, &he) {
		if msg, ok := serverMessage([]byte(he.Body)); ok {
			return &domain.ServerReportedError{Status: he.Code, Message: msg}
		}
		return &domain.TransportError{
			Status:  he.Code,
			Message: fmt.Sprintf("Request failed with status code %d", he.Code),
			Err:     err,
		}
	}

	return &domain.TransportError{Message: err.Error(), Err: err}
}
