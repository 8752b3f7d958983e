// Package text exposes the text and vision generation gateway. Backends take
// a self-contained request and perform a single round trip; retries, if any,
// belong to the caller.
package text

import "context"

// MaxInlineImages is the hard cap on vision attachments per request. Extra
// images are silently truncated; providers reject larger payloads outright.
const MaxInlineImages = 3

// InlineImage is an image attached to a vision request as inline bytes.
type InlineImage struct {
	MIME string
	Data []byte
}

// Request describes a single text or vision generation call. Immutable once
// submitted; the gateway never mutates it.
type Request struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
	Images      []InlineImage
}

// Generator is the contract implemented by all text providers.
type Generator interface {
	GenerateText(ctx context.Context, req Request) (string, error)
}

func capImages(images []InlineImage) []InlineImage {
	if len(images) > MaxInlineImages {
		return images[:MaxInlineImages]
	}
	return images
}
