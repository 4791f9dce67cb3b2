package image

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"time"
)

// GeminiProvider implements image generation using Google Gemini's native multimodal capabilities.
type GeminiProvider struct {
	cfg    GeminiConfig
	client *http.Client
}

// NewGeminiProvider creates a new Gemini image provider.
func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	def := DefaultGeminiConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}

	return &GeminiProvider{
		cfg:    cfg,
		client: newHTTPClient(cfg.Timeout),
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiImageRequest struct {
	Contents         []geminiContent       `json:"contents"`
	GenerationConfig *geminiImageGenConfig `json:"generationConfig,omitempty"`
}

type geminiImageGenConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiImageResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text       string `json:"text,omitempty"`
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// Generate creates images using Gemini's native image generation.
func (p *GeminiProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	body := geminiImageRequest{
		Contents: []geminiContent{
			{
				Parts: []geminiPart{{Text: req.Prompt}},
				Role:  "user",
			},
		},
		GenerationConfig: &geminiImageGenConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}

	headers := maps.Clone(p.cfg.Headers)
	if headers == nil {
		headers = make(map[string]string, 1)
	}
	headers["x-goog-api-key"] = p.cfg.APIKey

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(p.cfg.BaseURL, "/"), model)

	var gResp geminiImageResponse
	if err := postJSON(ctx, p.client, p.Name(), url, headers, body, &gResp); err != nil {
		return nil, err
	}

	var (
		images []ImageData
		text   []string
	)
	for _, candidate := range gResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				images = append(images, ImageData{
					B64JSON:  part.InlineData.Data,
					MimeType: part.InlineData.MimeType,
				})
			} else if part.Text != "" {
				text = append(text, part.Text)
			}
		}
	}
	if len(images) == 0 {
		return nil, noImageError(p.Name())
	}

	return &GenerateResponse{
		Provider: p.Name(),
		Model:    model,
		Images:   images,
		Text:     strings.Join(text, "\n"),
		Usage: ImageUsage{
			ImagesGenerated: len(images),
			PromptTokens:    gResp.UsageMetadata.PromptTokenCount,
			OutputTokens:    gResp.UsageMetadata.CandidatesTokenCount,
		},
		CreatedAt: time.Now(),
	}, nil
}
