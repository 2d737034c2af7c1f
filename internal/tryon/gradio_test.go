package tryon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// newGradioTestServer fakes the relevant slice of a Gradio space:
// /config, file upload, call submission and the event stream.
func newGradioTestServer(t *testing.T) (*httptest.Server, *GradioProvider) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/config", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":"5.0.0"}`))
	})
	mux.HandleFunc("/gradio_api/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		files := r.MultipartForm.File["files"]
		if len(files) != 1 {
			http.Error(w, "expected one file", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode([]string{"/tmp/gradio/" + files[0].Filename})
	})
	mux.HandleFunc("/gradio_api/call/leffa_predict_vt", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Data        []any  `json:"data"`
			SessionHash string `json:"session_hash"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(payload.Data) != 9 {
			http.Error(w, fmt.Sprintf("expected 9 positional args, got %d", len(payload.Data)), http.StatusBadRequest)
			return
		}
		if payload.SessionHash == "" {
			http.Error(w, "missing session_hash", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"event_id":"ev123"}`))
	})
	mux.HandleFunc("/gradio_api/call/leffa_predict_vt/ev123", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: generating\ndata: null\n\n")
		fmt.Fprint(w, "event: complete\ndata: [{\"url\": \"https://space.example/file=result.png\"}, null, null]\n\n")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	provider := NewGradioProvider(10 * time.Second)
	provider.BaseHost = srv.URL
	return srv, provider
}

func TestGradioProvider_EndToEnd(t *testing.T) {
	_, provider := newGradioTestServer(t)

	session, err := provider.Connect(context.Background(), "franciszzj/Leffa", "")
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	data, err := session.Predict(context.Background(), "/leffa_predict_vt", photo(), FileHandle{
		Name: "product.png", ContentType: "image/png", Data: []byte{1},
	}, DefaultParams())
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if len(data) != 3 {
		t.Fatalf("expected 3 result entries, got %d", len(data))
	}
	first, ok := data[0].(map[string]any)
	if !ok || first["url"] != "https://space.example/file=result.png" {
		t.Errorf("unexpected first result entry: %v", data[0])
	}
}

func TestGradioProvider_ConnectSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	provider := NewGradioProvider(5 * time.Second)
	provider.BaseHost = srv.URL

	if _, err := provider.Connect(context.Background(), "some/space", "hf_token"); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer hf_token" {
		t.Errorf("expected bearer token header, got %q", gotAuth)
	}
}

func TestGradioProvider_ConnectRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	provider := NewGradioProvider(5 * time.Second)
	provider.BaseHost = srv.URL

	if _, err := provider.Connect(context.Background(), "some/space", ""); err == nil {
		t.Fatal("expected error for non-200 config response")
	}
}

func TestGradioProvider_HostResolution(t *testing.T) {
	p := NewGradioProvider(time.Second)
	if got := p.hostFor("franciszzj/Leffa"); got != "https://franciszzj-leffa.hf.space" {
		t.Errorf("unexpected host %q", got)
	}
}

func TestGarmentFromSource_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garment.jpg")
	if err := os.WriteFile(path, []byte("jpegdata"), 0644); err != nil {
		t.Fatal(err)
	}

	fetch := GarmentFromSource(path, nil)
	fh, err := fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if fh.Name != "garment.jpg" || fh.ContentType != "image/jpeg" || string(fh.Data) != "jpegdata" {
		t.Errorf("unexpected file handle: %+v", fh)
	}
}

func TestGarmentFromSource_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("pngdata"))
	}))
	defer srv.Close()

	fetch := GarmentFromSource(srv.URL+"/assets/product.png", srv.Client())
	fh, err := fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if fh.ContentType != "image/png" || string(fh.Data) != "pngdata" {
		t.Errorf("unexpected file handle: %+v", fh)
	}
}

func TestGarmentFromSource_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	fetch := GarmentFromSource(srv.URL+"/assets/product.png", srv.Client())
	if _, err := fetch(context.Background()); err == nil {
		t.Fatal("expected error for non-200 asset response")
	}
}
