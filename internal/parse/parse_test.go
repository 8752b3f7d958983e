package parse

import (
	"errors"
	"testing"

	"postpilot/internal/domain"
)

func TestObjectExtractsEmbeddedJSON(t *testing.T) {
	raw := "Sure! Here is the result:\n{\"instagram\":\"sunny day\",\"tiktok\":\"quick cut\"}\nHope it helps."
	obj, err := Object(raw)
	if err != nil {
		t.Fatalf("Object returned error: %v", err)
	}
	if obj["instagram"] != "sunny day" {
		t.Fatalf("instagram = %v, want %q", obj["instagram"], "sunny day")
	}
}

func TestObjectHandlesCodeFence(t *testing.T) {
	raw := "```json\n{\"title\":\"hello\"}\n```"
	obj, err := Object(raw)
	if err != nil {
		t.Fatalf("Object returned error: %v", err)
	}
	if obj["title"] != "hello" {
		t.Fatalf("title = %v, want %q", obj["title"], "hello")
	}
}

func TestObjectHandlesNestedBraces(t *testing.T) {
	raw := `prefix {"outer":{"inner":"v"},"tail":"x"} suffix`
	obj, err := Object(raw)
	if err != nil {
		t.Fatalf("Object returned error: %v", err)
	}
	inner, ok := obj["outer"].(map[string]any)
	if !ok || inner["inner"] != "v" {
		t.Fatalf("outer = %v, want nested object", obj["outer"])
	}
}

func TestObjectIgnoresBracesInsideStrings(t *testing.T) {
	raw := `{"caption":"use {curly} braces","n":1}`
	obj, err := Object(raw)
	if err != nil {
		t.Fatalf("Object returned error: %v", err)
	}
	if obj["caption"] != "use {curly} braces" {
		t.Fatalf("caption = %v", obj["caption"])
	}
}

func TestObjectNoBracketedSpan(t *testing.T) {
	_, err := Object("plain text without any json at all")
	var malformed *domain.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want *domain.MalformedResponseError", err)
	}
}

func TestObjectInvalidJSON(t *testing.T) {
	_, err := Object(`{"broken": }`)
	var malformed *domain.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want *domain.MalformedResponseError", err)
	}
}

func TestArrayExtractsEmbeddedList(t *testing.T) {
	raw := "ideas below\n[\"one\",\"two\"]"
	arr, err := Array(raw)
	if err != nil {
		t.Fatalf("Array returned error: %v", err)
	}
	if len(arr) != 2 || arr[0] != "one" {
		t.Fatalf("arr = %v", arr)
	}
}

func TestObjectOrFallbackParsesValidJSON(t *testing.T) {
	raw := `{"instagram":"ig","tiktok":"tt","youtube":"yt","facebook":"fb"}`
	out := ObjectOrFallback(raw, "instagram", "tiktok", "youtube", "facebook")
	if out["instagram"] != "ig" || out["facebook"] != "fb" {
		t.Fatalf("out = %v", out)
	}
}

func TestObjectOrFallbackUsesRawForEveryKey(t *testing.T) {
	raw := "just a caption, no json here"
	out := ObjectOrFallback(raw, "instagram", "tiktok", "youtube", "facebook")
	if len(out) != 4 {
		t.Fatalf("len(out) = %d, want 4", len(out))
	}
	for key, v := range out {
		if v != raw {
			t.Fatalf("out[%q] = %q, want raw text", key, v)
		}
	}
}

func TestObjectOrFallbackFillsMissingKeys(t *testing.T) {
	raw := `{"instagram":"ig"}`
	out := ObjectOrFallback(raw, "instagram", "tiktok")
	if out["instagram"] != "ig" {
		t.Fatalf("instagram = %q", out["instagram"])
	}
	if out["tiktok"] != raw {
		t.Fatalf("tiktok = %q, want raw fallback", out["tiktok"])
	}
}

func TestDecodeIntoStruct(t *testing.T) {
	var dst struct {
		Hook string `json:"hook"`
		CTA  string `json:"cta"`
	}
	raw := "script:\n{\"hook\":\"stop scrolling\",\"cta\":\"follow\"}"
	if err := Decode(raw, &dst); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if dst.Hook != "stop scrolling" || dst.CTA != "follow" {
		t.Fatalf("dst = %+v", dst)
	}
}
