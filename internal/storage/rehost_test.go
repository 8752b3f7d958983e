package storage

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestRehoster(t *testing.T, transport roundTripFunc) *Rehoster {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	var client *http.Client
	if transport != nil {
		client = &http.Client{Transport: transport}
	}
	return NewRehoster(RehostOptions{
		Store:      store,
		BaseURL:    "http://localhost:8080/media",
		HTTPClient: client,
		NewID:      func() string { return "fixed" },
	})
}

func TestRehostDownloadsRemoteAsset(t *testing.T) {
	r := newTestRehoster(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.String() != "https://cdn.example.com/pic.png" {
			t.Fatalf("url = %s", req.URL)
		}
		return &http.Response{
			StatusCode: 200,
			Header:     http.Header{"Content-Type": []string{"image/png"}},
			Body:       io.NopCloser(strings.NewReader("pngbytes")),
		}, nil
	})

	url, err := r.Rehost(context.Background(), "https://cdn.example.com/pic.png")
	if err != nil {
		t.Fatalf("Rehost returned error: %v", err)
	}
	if url != "http://localhost:8080/media/media/fixed.png" {
		t.Fatalf("url = %q", url)
	}
	data, err := r.store.Read(context.Background(), "media/fixed.png")
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if string(data) != "pngbytes" {
		t.Fatalf("stored = %q", data)
	}
}

func TestRehostDecodesDataURL(t *testing.T) {
	r := newTestRehoster(t, nil)
	payload := base64.StdEncoding.EncodeToString([]byte("jpegbytes"))
	url, err := r.Rehost(context.Background(), "data:image/jpeg;base64,"+payload)
	if err != nil {
		t.Fatalf("Rehost returned error: %v", err)
	}
	if !strings.HasSuffix(url, "/media/fixed.jpg") {
		t.Fatalf("url = %q", url)
	}
	data, err := r.store.Read(context.Background(), "media/fixed.jpg")
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if string(data) != "jpegbytes" {
		t.Fatalf("stored = %q", data)
	}
}

func TestRehostPassesThroughDurableURLs(t *testing.T) {
	r := newTestRehoster(t, func(req *http.Request) (*http.Response, error) {
		t.Fatal("durable url must not be downloaded")
		return nil, nil
	})
	durable := "http://localhost:8080/media/media/older.png"
	url, err := r.Rehost(context.Background(), durable)
	if err != nil {
		t.Fatalf("Rehost returned error: %v", err)
	}
	if url != durable {
		t.Fatalf("url = %q", url)
	}
}

func TestRehostRejectsUnknownScheme(t *testing.T) {
	r := newTestRehoster(t, nil)
	if _, err := r.Rehost(context.Background(), "ftp://example.com/a.png"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}

func TestFileStoreRejectsTraversalKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Write(context.Background(), "../escape.txt", []byte("x")); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
}
