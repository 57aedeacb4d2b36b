// Package ratelimit bounds submission frequency per session.
package ratelimit

import "context"

// Result reports the outcome of one check-and-increment step.
type Result struct {
	Allowed           bool
	RetryAfterSeconds int
}

// Limiter is the sliding-counter port. The in-memory implementation is the
// single-process default; the Redis implementation externalizes the counter
// for horizontally scaled deployments.
type Limiter interface {
	Allow(ctx context.Context, sessionID string) (Result, error)
}
