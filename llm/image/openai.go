package image

import (
	"context"
	"maps"
	"net/http"
	"strings"
	"time"
)

// OpenAIProvider generates images with the OpenAI images API.
type OpenAIProvider struct {
	cfg    OpenAIConfig
	client *http.Client
}

// NewOpenAIProvider creates a new OpenAI image provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	def := DefaultOpenAIConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}

	return &OpenAIProvider{
		cfg:    cfg,
		client: newHTTPClient(cfg.Timeout),
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

type dalleRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type dalleResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url,omitempty"`
		B64JSON       string `json:"b64_json,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// Generate requests base64 output so the payload can be persisted directly.
func (p *OpenAIProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	body := dalleRequest{
		Model:          model,
		Prompt:         req.Prompt,
		N:              req.N,
		Size:           req.Size,
		ResponseFormat: "b64_json",
	}
	if body.N == 0 {
		body.N = 1
	}
	if body.Size == "" {
		body.Size = "1024x1024"
	}

	headers := maps.Clone(p.cfg.Headers)
	if headers == nil {
		headers = make(map[string]string, 1)
	}
	headers["Authorization"] = "Bearer " + p.cfg.APIKey

	var dResp dalleResponse
	url := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/images/generations"
	if err := postJSON(ctx, p.client, p.Name(), url, headers, body, &dResp); err != nil {
		return nil, err
	}

	images := make([]ImageData, 0, len(dResp.Data))
	for _, d := range dResp.Data {
		img := ImageData{URL: d.URL, B64JSON: d.B64JSON, RevisedPrompt: d.RevisedPrompt}
		if _, ok := img.Payload(); ok {
			images = append(images, img)
		}
	}
	if len(images) == 0 {
		return nil, noImageError(p.Name())
	}

	created := time.Now()
	if dResp.Created > 0 {
		created = time.Unix(dResp.Created, 0)
	}

	return &GenerateResponse{
		Provider: p.Name(),
		Model:    model,
		Images:   images,
		Usage: ImageUsage{
			ImagesGenerated: len(images),
		},
		CreatedAt: created,
	}, nil
}
