// Package tryon drives the virtual try-on flow: fetch the garment reference
// image, connect to the external inference provider, submit the user's photo
// together with the garment and a fixed parameter set, and surface the
// generated image URL. The provider is an injected interface so the
// orchestration is testable without the real network dependency.
package tryon

import (
	"context"
	"fmt"
	"sync"

	"stylecart/internal/logging"
)

// State is the phase of the current try-on attempt.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StateConnecting
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateConnecting:
		return "connecting"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Params is the fixed parameter set sent with every inference call.
type Params struct {
	Steps           int     // inference step count
	Scale           float64 // guidance scale
	Seed            int     // fixed for reproducible output
	ModelType       string
	GarmentType     string
	Repaint         bool
	RefAcceleration bool
}

// DefaultParams mirrors the storefront's tuned defaults: the minimum step
// count the API accepts, a standard guidance scale, and acceleration on.
func DefaultParams() Params {
	return Params{
		Steps:           30,
		Scale:           2.5,
		Seed:            42,
		ModelType:       "viton_hd",
		GarmentType:     "upper_body",
		Repaint:         false,
		RefAcceleration: true,
	}
}

// FileHandle is an in-memory file to pass to the inference provider.
type FileHandle struct {
	Name        string
	ContentType string
	Data        []byte
}

// Session is an established connection to the inference provider.
type Session interface {
	// Predict runs one inference call and returns the raw result list.
	Predict(ctx context.Context, endpoint string, person, garment FileHandle, params Params) ([]any, error)
}

// Provider connects to the external inference service.
type Provider interface {
	Connect(ctx context.Context, spaceID, token string) (Session, error)
}

// GarmentFetcher returns the fixed garment reference image as binary data.
type GarmentFetcher func(ctx context.Context) (FileHandle, error)

// Result is the outcome of a successful attempt.
type Result struct {
	ImageURL string
}

// Orchestrator runs try-on attempts. It does not enforce single-flight;
// the presentation layer disables the upload control while a request is in
// flight.
type Orchestrator struct {
	provider     Provider
	fetchGarment GarmentFetcher
	spaceID      string
	endpoint     string
	params       Params

	mu     sync.Mutex
	state  State
	result *Result
	errMsg string
}

// New creates an orchestrator for the given provider and garment source.
func New(provider Provider, fetchGarment GarmentFetcher, spaceID, endpoint string, params Params) *Orchestrator {
	return &Orchestrator{
		provider:     provider,
		fetchGarment: fetchGarment,
		spaceID:      spaceID,
		endpoint:     endpoint,
		params:       params,
		state:        StateIdle,
	}
}

// State returns the current attempt phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Result returns the most recent successful result, or nil.
func (o *Orchestrator) Result() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// ErrMessage returns the failure message of the last attempt, if any.
func (o *Orchestrator) ErrMessage() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.errMsg
}

// Dismiss clears any previous result or failure and returns to idle.
func (o *Orchestrator) Dismiss() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateIdle
	o.result = nil
	o.errMsg = ""
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	logging.TryOn("state -> %s", s)
}

func (o *Orchestrator) fail(msg string) error {
	o.mu.Lock()
	o.state = StateFailed
	o.result = nil
	o.errMsg = msg
	o.mu.Unlock()
	logging.Get(logging.CategoryTryOn).Error("attempt failed: %s", msg)
	return fmt.Errorf("tryon: %s", msg)
}

// Run performs one end-to-end try-on attempt with the user's photo.
// A new call always starts a fresh attempt, discarding any previous result.
// token is an optional bearer token for the provider; it is never persisted.
func (o *Orchestrator) Run(ctx context.Context, personPhoto FileHandle, token string) (Result, error) {
	o.mu.Lock()
	o.result = nil
	o.errMsg = ""
	o.mu.Unlock()

	timer := logging.StartTimer(logging.CategoryTryOn, "try-on attempt")
	defer timer.Stop()

	// 1. Fetch the garment reference image.
	o.setState(StatePreparing)
	garment, err := o.fetchGarment(ctx)
	if err != nil {
		return Result{}, o.fail(fmt.Sprintf("failed to fetch product image: %v", err))
	}

	// 2. Establish a session with the inference provider.
	o.setState(StateConnecting)
	if o.provider == nil {
		return Result{}, o.fail("try-on client not available")
	}
	session, err := o.provider.Connect(ctx, o.spaceID, token)
	if err != nil {
		return Result{}, o.fail(fmt.Sprintf("could not connect to %s: %v", o.spaceID, err))
	}

	// 3. Submit the inference call.
	o.setState(StateSubmitting)
	data, err := session.Predict(ctx, o.endpoint, personPhoto, garment, o.params)
	if err != nil {
		return Result{}, o.fail(fmt.Sprintf("inference call failed: %v", err))
	}

	// 4. Interpret the result list. The first element is the generated
	// image, either a direct URL string or an object carrying a url field.
	if len(data) == 0 {
		return Result{}, o.fail("no image returned from API")
	}

	imageURL := extractImageURL(data[0])
	if imageURL == "" {
		return Result{}, o.fail("invalid result format from API")
	}

	res := Result{ImageURL: imageURL}
	o.mu.Lock()
	o.state = StateSucceeded
	o.result = &res
	o.mu.Unlock()
	logging.TryOn("attempt succeeded: %s", imageURL)

	return res, nil
}

func extractImageURL(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case map[string]any:
		if u, ok := img["url"].(string); ok {
			return u
		}
	}
	return ""
}
