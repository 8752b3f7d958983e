package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const rehostDefaultTimeout = 120 * time.Second

// maxRehostBytes bounds a single downloaded asset.
const maxRehostBytes = 64 << 20

// Rehoster converts remote or inline media payloads into durable URLs served
// from the file store. A post only ever persists durable URLs; provider-hosted
// links expire.
type Rehoster struct {
	store   *FileStore
	baseURL string
	client  *http.Client
	newID   func() string
}

// RehostOptions wires a Rehoster.
type RehostOptions struct {
	Store      *FileStore
	BaseURL    string
	HTTPClient *http.Client
	NewID      func() string
}

// NewRehoster constructs a Rehoster.
func NewRehoster(opts RehostOptions) *Rehoster {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: rehostDefaultTimeout}
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Rehoster{
		store:   opts.Store,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  client,
		newID:   newID,
	}
}

// Rehost accepts an http(s) URL or an inline data: payload, stores the bytes
// locally and returns the durable URL. URLs already under the durable base
// pass through unchanged.
func (r *Rehoster) Rehost(ctx context.Context, mediaURL string) (string, error) {
	mediaURL = strings.TrimSpace(mediaURL)
	switch {
	case mediaURL == "":
		return "", errors.New("storage: empty media url")
	case r.baseURL != "" && strings.HasPrefix(mediaURL, r.baseURL):
		return mediaURL, nil
	case strings.HasPrefix(mediaURL, "data:"):
		data, mime, err := decodeDataURL(mediaURL)
		if err != nil {
			return "", err
		}
		return r.RehostBytes(ctx, data, mime)
	case strings.HasPrefix(mediaURL, "http://"), strings.HasPrefix(mediaURL, "https://"):
		data, mime, err := r.download(ctx, mediaURL)
		if err != nil {
			return "", err
		}
		return r.RehostBytes(ctx, data, mime)
	default:
		return "", fmt.Errorf("storage: unsupported media url scheme: %q", mediaURL)
	}
}

// RehostBytes stores inline media bytes and returns the durable URL.
func (r *Rehoster) RehostBytes(ctx context.Context, data []byte, mime string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("storage: empty media payload")
	}
	key := fmt.Sprintf("media/%s%s", r.newID(), extensionFor(mime))
	stored, err := r.store.Write(ctx, key, data)
	if err != nil {
		return "", err
	}
	if r.baseURL == "" {
		return stored, nil
	}
	return r.baseURL + "/" + stored, nil
}

func (r *Rehoster) download(ctx context.Context, mediaURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("storage: create download request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("storage: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("storage: download failed with status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRehostBytes))
	if err != nil {
		return nil, "", fmt.Errorf("storage: read download: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func decodeDataURL(dataURL string) ([]byte, string, error) {
	rest := strings.TrimPrefix(dataURL, "data:")
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, "", errors.New("storage: malformed data url")
	}
	meta, payload := rest[:comma], rest[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", errors.New("storage: data url is not base64 encoded")
	}
	mime := strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("storage: decode data url: %w", err)
	}
	return data, mime, nil
}

func extensionFor(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		return ".jpg"
	}
}
