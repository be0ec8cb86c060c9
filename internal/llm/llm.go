// Package llm talks to the generative analysis service. Every call asks for a
// JSON object and hands it back decoded; callers treat any error as "no result".
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrDisabled is returned by the disabled generator
	ErrDisabled = errors.New("generator disabled")
	// ErrMalformedResponse means the service answered with something other than a JSON object
	ErrMalformedResponse = errors.New("malformed generator response")
)

// Roles for Message
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one turn of the conversation sent to the generator
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tunes a single completion; zero values fall back to the client defaults
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Generator completes a conversation into a decoded JSON object
type Generator interface {
	Complete(ctx context.Context, messages []Message, opts Options) (map[string]any, error)
}

// StatusError is returned when the service replies with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generator returned status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed if sent again
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Disabled is a Generator that never produces output
type Disabled struct{}

// Complete always returns ErrDisabled
func (Disabled) Complete(context.Context, []Message, Options) (map[string]any, error) {
	return nil, ErrDisabled
}
