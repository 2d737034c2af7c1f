package tryon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// GarmentFromSource builds a GarmentFetcher for the configured garment image,
// which may be a local file path or an http(s) URL. The same image is used
// for every product; per-product imagery is not part of the flow.
func GarmentFromSource(source string, client *http.Client) GarmentFetcher {
	if client == nil {
		client = http.DefaultClient
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return func(ctx context.Context) (FileHandle, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
			if err != nil {
				return FileHandle{}, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return FileHandle{}, err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return FileHandle{}, fmt.Errorf("unexpected status %s", resp.Status)
			}
			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return FileHandle{}, err
			}
			return FileHandle{
				Name:        "product.png",
				ContentType: contentTypeFor(resp.Header.Get("Content-Type"), source),
				Data:        data,
			}, nil
		}
	}

	return func(ctx context.Context) (FileHandle, error) {
		data, err := os.ReadFile(source)
		if err != nil {
			return FileHandle{}, err
		}
		return FileHandle{
			Name:        filepath.Base(source),
			ContentType: contentTypeFor("", source),
			Data:        data,
		}, nil
	}
}

func contentTypeFor(header, source string) string {
	if header != "" {
		return header
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
