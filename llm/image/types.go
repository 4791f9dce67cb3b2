package image

import (
	"context"
	"strings"
	"time"
)

// GenerateRequest is a text-to-image request.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
	N      int    `json:"n,omitempty"`
	// Size as WxH, used by providers that accept one (openai)
	Size     string            `json:"size,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// GenerateResponse is a provider response carrying one or more images.
type GenerateResponse struct {
	Provider  string      `json:"provider"`
	Model     string      `json:"model"`
	Images    []ImageData `json:"images"`
	Text      string      `json:"text,omitempty"`
	Usage     ImageUsage  `json:"usage,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// ImageData is one generated image, either inline base64 or a data URI.
type ImageData struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	MimeType      string `json:"mime_type,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// Payload returns the image as a data URI. ok is false when the image has
// neither inline data nor a data:image URL.
func (d ImageData) Payload() (payload string, ok bool) {
	if d.B64JSON != "" {
		mime := d.MimeType
		if mime == "" {
			mime = "image/png"
		}
		return "data:" + mime + ";base64," + d.B64JSON, true
	}
	if strings.HasPrefix(d.URL, "data:image") {
		return d.URL, true
	}
	return "", false
}

// ImageUsage holds usage statistics.
type ImageUsage struct {
	ImagesGenerated int `json:"images_generated"`
	PromptTokens    int `json:"prompt_tokens,omitempty"`
	OutputTokens    int `json:"output_tokens,omitempty"`
}

// Provider generates images from a text prompt.
type Provider interface {
	// Generate returns at least one image with a payload, or an error.
	// Non-2xx and payload-less responses are PROVIDER_ERRORs; network
	// failures are TRANSPORT_ERRORs.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name returns the provider name.
	Name() string
}
