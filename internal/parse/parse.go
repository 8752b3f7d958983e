// Package parse extracts structured JSON payloads embedded in free-form
// provider text. Providers are instructed to answer with bare JSON but often
// wrap it in prose or markdown fences; the extractor locates the first
// balanced object or array span and parses that.
package parse

import (
	"encoding/json"
	"strings"

	"postpilot/internal/domain"
)

// Object extracts and parses the first balanced {...} span in raw.
// Strict: any failure returns a *domain.MalformedResponseError.
func Object(raw string) (map[string]any, error) {
	fragment, ok := balancedSpan(raw, '{', '}')
	if !ok {
		return nil, malformed(raw)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(fragment), &out); err != nil {
		return nil, malformed(raw)
	}
	return out, nil
}

// Array extracts and parses the first balanced [...] span in raw.
// Strict: any failure returns a *domain.MalformedResponseError.
func Array(raw string) ([]any, error) {
	fragment, ok := balancedSpan(raw, '[', ']')
	if !ok {
		return nil, malformed(raw)
	}
	var out []any
	if err := json.Unmarshal([]byte(fragment), &out); err != nil {
		return nil, malformed(raw)
	}
	return out, nil
}

// Decode extracts the first balanced object span and unmarshals it into dst.
// Strict failure policy, same as Object.
func Decode(raw string, dst any) error {
	fragment, ok := balancedSpan(raw, '{', '}')
	if !ok {
		return malformed(raw)
	}
	if err := json.Unmarshal([]byte(fragment), dst); err != nil {
		return malformed(raw)
	}
	return nil
}

// ObjectOrFallback is the tolerant variant: on any parse failure it fabricates
// a uniform object re-using the raw text for every expected key, and never
// errors. Used for low-stakes fan-out where degraded output beats a rejection.
func ObjectOrFallback(raw string, keys ...string) map[string]string {
	if obj, err := Object(raw); err == nil {
		out := make(map[string]string, len(keys))
		for _, key := range keys {
			if v, ok := obj[key].(string); ok && v != "" {
				out[key] = v
			} else {
				out[key] = raw
			}
		}
		return out
	}
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		out[key] = raw
	}
	return out
}

// balancedSpan returns the first span starting at open and ending at its
// matching close, counting nesting but ignoring brackets inside JSON strings.
func balancedSpan(raw string, open, close byte) (string, bool) {
	text := trimCodeFence(raw)
	start := strings.IndexByte(text, open)
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func malformed(raw string) *domain.MalformedResponseError {
	snippet := strings.TrimSpace(raw)
	if len(snippet) > 120 {
		snippet = snippet[:120] + "…"
	}
	return &domain.MalformedResponseError{Snippet: snippet}
}
