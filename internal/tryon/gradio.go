package tryon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"stylecart/internal/logging"
)

// GradioProvider talks to a Gradio-hosted inference space over its HTTP API.
// Connecting resolves the space to its serving host and verifies it is
// reachable; Predict uploads the two images and drives one call through the
// queue, waiting for the completion event.
type GradioProvider struct {
	http *http.Client

	// BaseHost overrides space-ID resolution, mainly for tests.
	BaseHost string
}

// NewGradioProvider creates a provider with the given request timeout.
// Inference jobs can queue for minutes, so the timeout covers the whole call.
func NewGradioProvider(timeout time.Duration) *GradioProvider {
	return &GradioProvider{
		http: &http.Client{Timeout: timeout},
	}
}

// hostFor resolves a "owner/space" ID to its serving host.
func (p *GradioProvider) hostFor(spaceID string) string {
	if p.BaseHost != "" {
		return p.BaseHost
	}
	sub := strings.ToLower(strings.NewReplacer("/", "-", "_", "-", ".", "-").Replace(spaceID))
	return "https://" + sub + ".hf.space"
}

// Connect verifies the space is reachable and returns a session bound to it.
func (p *GradioProvider) Connect(ctx context.Context, spaceID, token string) (Session, error) {
	host := p.hostFor(spaceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+"/config", nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("space unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("space returned status %d", resp.StatusCode)
	}

	logging.TryOn("connected to %s", host)
	return &gradioSession{
		http:  p.http,
		host:  host,
		token: token,
	}, nil
}

type gradioSession struct {
	http  *http.Client
	host  string
	token string
}

// fileRef is how an uploaded file is referenced inside a call payload.
type fileRef struct {
	Path string         `json:"path"`
	Meta map[string]any `json:"meta"`
}

func newFileRef(path string) fileRef {
	return fileRef{Path: path, Meta: map[string]any{"_type": "gradio.FileData"}}
}

// Predict uploads the person photo and garment image and runs one inference
// call, blocking until the queue reports completion.
func (s *gradioSession) Predict(ctx context.Context, endpoint string, person, garment FileHandle, params Params) ([]any, error) {
	personPath, err := s.upload(ctx, person)
	if err != nil {
		return nil, fmt.Errorf("upload person photo: %w", err)
	}
	garmentPath, err := s.upload(ctx, garment)
	if err != nil {
		return nil, fmt.Errorf("upload garment image: %w", err)
	}

	// Positional payload matching the space's predict signature:
	// src_image_path, ref_image_path, ref_acceleration, step, scale, seed,
	// vt_model_type, vt_garment_type, vt_repaint.
	payload := map[string]any{
		"data": []any{
			newFileRef(personPath),
			newFileRef(garmentPath),
			params.RefAcceleration,
			params.Steps,
			params.Scale,
			params.Seed,
			params.ModelType,
			params.GarmentType,
			params.Repaint,
		},
		"session_hash": uuid.NewString(),
	}

	eventID, err := s.submit(ctx, endpoint, payload)
	if err != nil {
		return nil, err
	}

	return s.waitForResult(ctx, endpoint, eventID)
}

// upload sends one file to the space and returns its server-side path.
func (s *gradioSession) upload(ctx context.Context, file FileHandle) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("files", file.Name)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(file.Data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	u := s.host + "/gradio_api/upload?upload_id=" + uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	s.authorize(req)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload returned status %d", resp.StatusCode)
	}

	var paths []string
	if err := json.NewDecoder(resp.Body).Decode(&paths); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("upload returned no paths")
	}
	return paths[0], nil
}

// submit enqueues the call and returns its event ID.
func (s *gradioSession) submit(ctx context.Context, endpoint string, payload map[string]any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	u := s.host + "/gradio_api/call" + ensureLeadingSlash(endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("call returned status %d", resp.StatusCode)
	}

	var out struct {
		EventID string `json:"event_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode call response: %w", err)
	}
	if out.EventID == "" {
		return "", fmt.Errorf("call returned no event id")
	}

	logging.TryOn("submitted call %s, event %s", endpoint, out.EventID)
	return out.EventID, nil
}

// waitForResult streams queue events until the call completes or errors.
func (s *gradioSession) waitForResult(ctx context.Context, endpoint, eventID string) ([]any, error) {
	u := s.host + "/gradio_api/call" + ensureLeadingSlash(endpoint) + "/" + eventID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	s.authorize(req)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("event stream returned status %d", resp.StatusCode)
	}

	var event string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch event {
			case "complete":
				var data []any
				if err := json.Unmarshal([]byte(raw), &data); err != nil {
					return nil, fmt.Errorf("decode result: %w", err)
				}
				return data, nil
			case "error":
				return nil, fmt.Errorf("inference error: %s", raw)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("event stream: %w", err)
	}
	return nil, fmt.Errorf("event stream ended without a result")
}

func (s *gradioSession) authorize(req *http.Request) {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
}

func ensureLeadingSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
