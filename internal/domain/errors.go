package domain

import (
	"errors"
	"fmt"
)

var (
	// Fewer than MinLocations non-empty entries at submit time. No request is sent.
	ErrInsufficientLocations = errors.New("at least 2 valid locations are required")
	// An add was attempted on a list already at its cap.
	ErrLimitReached = errors.New("location limit reached")
	// The optimizer answered with something that cannot be rendered safely.
	ErrMalformedResult = errors.New("malformed optimization result")
	// The optimizer did not answer within the configured deadline.
	ErrRequestTimedOut = errors.New("optimization request timed out")
	// A submission is already outstanding for this planner.
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
)

// ServerReportedError is returned when the optimizer responds with an
// {"error": "..."} body. Message is shown to the user verbatim.
type ServerReportedError struct {
	Status  int
	Message string
}

func (e *ServerReportedError) Error() string {
	return fmt.Sprintf("optimizer reported error (status %d): %s", e.Status, e.Message)
}

// TransportError covers network failures, unexpected statuses, and bodies
// that cannot be decoded.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error (status %d): %s", e.Status, e.Message)
	}
	return "transport error: " + e.Message
}

func (e *TransportError) Unwrap() error { return e.Err }

// GenericErrorMessage is shown when nothing more specific is known.
const GenericErrorMessage = "Something went wrong while calculating the route. Please try again."

// UserMessage maps an error from any planner layer to the text shown to the user.
// Server-provided messages win, then transport messages, then a generic fallback.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var se *ServerReportedError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}

	switch {
	case errors.Is(err, ErrInsufficientLocations):
		return "Please enter at least 2 valid locations"
	case errors.Is(err, ErrLimitReached):
		return "Maximum number of locations reached"
	case errors.Is(err, ErrSubmissionInFlight):
		return "A route is already being calculated"
	case errors.Is(err, ErrRequestTimedOut):
		return "The route service did not respond in time. Please try again."
	case errors.Is(err, ErrMalformedResult):
		return "The route service returned an invalid result"
	}

	var te *TransportError
	if errors.As(err, &te) && te.Message != "" {
		return "Error: " + te.Message
	}

	return GenericErrorMessage
}
