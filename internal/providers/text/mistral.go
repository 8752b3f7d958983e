package text

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"postpilot/internal/domain"
)

const (
	mistralDefaultTimeout = 30 * time.Second
	mistralTextModel      = "mistral-small-latest"
	mistralVisionModel    = "pixtral-12b-2409"
)

// MistralOptions controls how the Mistral client is configured.
type MistralOptions struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	VisionModel string
	HTTPClient  *http.Client
}

// MistralGenerator calls the Mistral chat-completions API. Requests carrying
// images are routed to the vision model, text-only requests to the cheaper
// text model.
type MistralGenerator struct {
	apiKey      string
	baseURL     string
	textModel   string
	visionModel string
	client      *http.Client
}

type mistralMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type mistralContentPart struct {
	Type     string           `json:"type"`
	Text     string           `json:"text,omitempty"`
	ImageURL *mistralImageURL `json:"image_url,omitempty"`
}

type mistralImageURL struct {
	URL string `json:"url"`
}

type mistralRequest struct {
	Model       string           `json:"model"`
	Messages    []mistralMessage `json:"messages"`
	Temperature float64          `json:"temperature,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
}

type mistralResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type mistralErrorResponse struct {
	Message string `json:"message"`
}

// NewMistralGenerator constructs a Mistral client with sane defaults. The API
// key may be empty; calls then fail with a precondition error before any I/O.
func NewMistralGenerator(opts MistralOptions) *MistralGenerator {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.mistral.ai/v1"
	}
	textModel := strings.TrimSpace(opts.TextModel)
	if textModel == "" {
		textModel = mistralTextModel
	}
	visionModel := strings.TrimSpace(opts.VisionModel)
	if visionModel == "" {
		visionModel = mistralVisionModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: mistralDefaultTimeout}
	}
	return &MistralGenerator{
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     baseURL,
		textModel:   textModel,
		visionModel: visionModel,
		client:      client,
	}
}

// GenerateText performs a single chat-completions round trip and returns the
// first choice's content.
func (m *MistralGenerator) GenerateText(ctx context.Context, req Request) (string, error) {
	if m.apiKey == "" {
		return "", fmt.Errorf("mistral: %w", domain.ErrMissingCredential)
	}

	images := capImages(req.Images)
	model := m.textModel
	var content any = req.Prompt
	if len(images) > 0 {
		model = m.visionModel
		parts := make([]mistralContentPart, 0, len(images)+1)
		parts = append(parts, mistralContentPart{Type: "text", Text: req.Prompt})
		for _, img := range images {
			parts = append(parts, mistralContentPart{
				Type:     "image_url",
				ImageURL: &mistralImageURL{URL: dataURL(img)},
			})
		}
		content = parts
	}

	payload := mistralRequest{
		Model:       model,
		Messages:    []mistralMessage{{Role: "user", Content: content}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("mistral: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("mistral: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("mistral: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr mistralErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return "", &domain.ProviderError{Status: resp.StatusCode, Message: apiErr.Message}
	}

	var out mistralResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("mistral: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

func dataURL(img InlineImage) string {
	mime := img.MIME
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

var _ Generator = (*MistralGenerator)(nil)
