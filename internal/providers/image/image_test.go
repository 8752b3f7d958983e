package image

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"postpilot/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func response(status int, contentType, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestPortraitRatioYieldsPortraitSizes(t *testing.T) {
	size := PollinationsSize("9:16")
	if size.Height <= size.Width {
		t.Fatalf("size = %+v, want height > width", size)
	}
	if got := FalSize("9:16"); !strings.HasPrefix(got, "portrait") {
		t.Fatalf("FalSize(9:16) = %q, want portrait descriptor", got)
	}
}

func TestUnknownRatioDefaultsToSquare(t *testing.T) {
	if size := PollinationsSize("21:9"); size.Width != size.Height {
		t.Fatalf("size = %+v, want square", size)
	}
	if got := FalSize(""); got != "square_hd" {
		t.Fatalf("FalSize = %q", got)
	}
}

func TestFalGenerateReturnsHostedURL(t *testing.T) {
	gen := NewFalGenerator(FalOptions{
		APIKey: "key",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if got := r.Header.Get("Authorization"); got != "Key key" {
				t.Fatalf("Authorization = %q", got)
			}
			var req falImageRequest
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &req); err != nil {
				t.Fatalf("unmarshal request: %v", err)
			}
			if req.ImageSize != "portrait_16_9" || req.NumImages != 1 {
				t.Fatalf("request = %+v", req)
			}
			return response(200, "application/json", `{"images":[{"url":"https://cdn.fal.ai/x.png","content_type":"image/png"}]}`), nil
		})},
	})
	asset, err := gen.Generate(context.Background(), Request{Prompt: "a cat", AspectRatio: "9:16"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !asset.External || asset.URL != "https://cdn.fal.ai/x.png" {
		t.Fatalf("asset = %+v, want external URL asset", asset)
	}
}

func TestFalErrorDetailWinsOverMessage(t *testing.T) {
	gen := NewFalGenerator(FalOptions{
		APIKey: "key",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return response(422, "application/json", `{"detail":"prompt rejected","message":"other"}`), nil
		})},
	})
	_, err := gen.Generate(context.Background(), Request{Prompt: "x"})
	var provErr *domain.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("err = %v, want *domain.ProviderError", err)
	}
	if provErr.Status != 422 || provErr.Message != "prompt rejected" {
		t.Fatalf("provErr = %+v", provErr)
	}
}

func TestFalEmptyImagesIsGenerationError(t *testing.T) {
	gen := NewFalGenerator(FalOptions{
		APIKey: "key",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return response(200, "application/json", `{"images":[]}`), nil
		})},
	})
	_, err := gen.Generate(context.Background(), Request{Prompt: "x"})
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err = %v, want *domain.GenerationError", err)
	}
}

func TestPollinationsReturnsInlineBytes(t *testing.T) {
	gen := NewPollinationsGenerator(PollinationsOptions{
		Seed: func() int64 { return 42 },
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			q := r.URL.Query()
			w, _ := strconv.Atoi(q.Get("width"))
			h, _ := strconv.Atoi(q.Get("height"))
			if h <= w {
				t.Fatalf("width=%d height=%d, want portrait", w, h)
			}
			if q.Get("seed") != "42" {
				t.Fatalf("seed = %q", q.Get("seed"))
			}
			return response(200, "image/jpeg", "jpegbytes"), nil
		})},
	})
	asset, err := gen.Generate(context.Background(), Request{Prompt: "a cat", AspectRatio: "9:16"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if asset.External || string(asset.Data) != "jpegbytes" || asset.MIME != "image/jpeg" {
		t.Fatalf("asset = %+v, want inline bytes", asset)
	}
}

func TestGatewayPrefersPremiumOnlyWithCredentials(t *testing.T) {
	premiumCalled := false
	premium := NewFalGenerator(FalOptions{
		APIKey: "key",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			premiumCalled = true
			return response(200, "application/json", `{"images":[{"url":"https://cdn.fal.ai/a.png"}]}`), nil
		})},
	})
	fallbackCalled := false
	fallback := NewPollinationsGenerator(PollinationsOptions{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			fallbackCalled = true
			return response(200, "image/jpeg", "bytes"), nil
		})},
	})

	gw := NewGateway(premium, fallback)
	if _, err := gw.Generate(context.Background(), Request{Prompt: "x"}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !premiumCalled || fallbackCalled {
		t.Fatalf("premium=%v fallback=%v, want premium only", premiumCalled, fallbackCalled)
	}

	premiumCalled, fallbackCalled = false, false
	gw = NewGateway(NewFalGenerator(FalOptions{}), fallback)
	if _, err := gw.Generate(context.Background(), Request{Prompt: "x"}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if premiumCalled || !fallbackCalled {
		t.Fatalf("premium=%v fallback=%v, want fallback only", premiumCalled, fallbackCalled)
	}
}
