// Package image exposes the synchronous image generation gateway. Two
// interchangeable backends exist: fal.ai FLUX (premium, returns a hosted URL)
// and Pollinations (keyless, returns inline bytes). Selection is a pure
// capability check, never a fallback on failure.
package image

import "context"

// Request describes a single image generation call.
type Request struct {
	Prompt      string
	AspectRatio string
}

// Asset is a generated image. External assets live behind a remote URL and
// must be re-hosted before a post may reference them permanently; inline
// assets carry their bytes directly.
type Asset struct {
	URL      string
	External bool
	MIME     string
	Data     []byte
}

// Generator is the contract implemented by both image backends.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Asset, error)
}

// Size holds pixel dimensions for the Pollinations backend.
type Size struct {
	Width  int
	Height int
}

var pollinationsSizes = map[string]Size{
	"1:1":  {Width: 1024, Height: 1024},
	"9:16": {Width: 768, Height: 1344},
	"16:9": {Width: 1344, Height: 768},
	"4:3":  {Width: 1024, Height: 768},
	"3:4":  {Width: 768, Height: 1024},
}

var falSizes = map[string]string{
	"1:1":  "square_hd",
	"9:16": "portrait_16_9",
	"16:9": "landscape_16_9",
	"4:3":  "landscape_4_3",
	"3:4":  "portrait_4_3",
}

// PollinationsSize maps an aspect-ratio string to pixel dimensions,
// defaulting to square when unrecognized.
func PollinationsSize(aspectRatio string) Size {
	if size, ok := pollinationsSizes[aspectRatio]; ok {
		return size
	}
	return Size{Width: 1024, Height: 1024}
}

// FalSize maps an aspect-ratio string to a fal.ai size descriptor,
// defaulting to square when unrecognized.
func FalSize(aspectRatio string) string {
	if size, ok := falSizes[aspectRatio]; ok {
		return size
	}
	return "square_hd"
}
