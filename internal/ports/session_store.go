package ports

import "errors"

var ErrSessionNotFound = errors.New("planner session not found")

// Keeps live planner sessions for the HTTP surface. S is the session type so
// the store stays unaware of the services package.
type SessionStore[S any] interface {
	Create(s S) (string, error)
	Get(id string) (S, error)
	Delete(id string)
}
