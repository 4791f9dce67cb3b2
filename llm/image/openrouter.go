package image

import (
	"context"
	"maps"
	"net/http"
	"strings"
	"time"
)

// OpenRouterProvider generates images through an OpenAI-compatible
// chat-completions endpoint that returns images on the assistant message.
type OpenRouterProvider struct {
	cfg    OpenRouterConfig
	client *http.Client
}

// NewOpenRouterProvider creates a new OpenRouter image provider.
func NewOpenRouterProvider(cfg OpenRouterConfig) *OpenRouterProvider {
	def := DefaultOpenRouterConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}

	return &OpenRouterProvider{
		cfg:    cfg,
		client: newHTTPClient(cfg.Timeout),
	}
}

func (p *OpenRouterProvider) Name() string { return "openrouter" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatImageRequest struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Modalities []string      `json:"modalities,omitempty"`
}

type chatImageResponse struct {
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Images  []struct {
				Type     string `json:"type"`
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Generate sends the prompt as a single user message. Only data:image URLs
// count as images.
func (p *OpenRouterProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	body := chatImageRequest{
		Model:      model,
		Messages:   []chatMessage{{Role: "user", Content: req.Prompt}},
		Modalities: []string{"image", "text"},
	}

	headers := maps.Clone(p.cfg.Headers)
	if headers == nil {
		headers = make(map[string]string, 1)
	}
	headers["Authorization"] = "Bearer " + p.cfg.APIKey

	var cResp chatImageResponse
	url := strings.TrimRight(p.cfg.BaseURL, "/") + "/chat/completions"
	if err := postJSON(ctx, p.client, p.Name(), url, headers, body, &cResp); err != nil {
		return nil, err
	}

	if len(cResp.Choices) == 0 {
		return nil, noImageError(p.Name())
	}
	msg := cResp.Choices[0].Message

	var images []ImageData
	for _, img := range msg.Images {
		if strings.HasPrefix(img.ImageURL.URL, "data:image") {
			images = append(images, ImageData{URL: img.ImageURL.URL})
		}
	}
	if len(images) == 0 {
		return nil, noImageError(p.Name())
	}

	created := time.Now()
	if cResp.Created > 0 {
		created = time.Unix(cResp.Created, 0)
	}

	return &GenerateResponse{
		Provider: p.Name(),
		Model:    model,
		Images:   images,
		Text:     msg.Content,
		Usage: ImageUsage{
			ImagesGenerated: len(images),
			PromptTokens:    cResp.Usage.PromptTokens,
			OutputTokens:    cResp.Usage.CompletionTokens,
		},
		CreatedAt: created,
	}, nil
}
