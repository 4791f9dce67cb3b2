package image

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/imageflow/config"
	"github.com/BaSui01/imageflow/types"
)

const testDataURI = "data:image/png;base64,aGVsbG8="

func TestImageData_Payload(t *testing.T) {
	p, ok := ImageData{B64JSON: "aGVsbG8="}.Payload()
	assert.True(t, ok)
	assert.Equal(t, testDataURI, p)

	p, ok = ImageData{B64JSON: "abc", MimeType: "image/webp"}.Payload()
	assert.True(t, ok)
	assert.Equal(t, "data:image/webp;base64,abc", p)

	p, ok = ImageData{URL: testDataURI}.Payload()
	assert.True(t, ok)
	assert.Equal(t, testDataURI, p)

	_, ok = ImageData{URL: "https://cdn.example.com/a.png"}.Payload()
	assert.False(t, ok)
}

func TestOpenRouterProvider_Generate(t *testing.T) {
	var (
		gotAuth, gotTitle, gotPath string
		gotBody                    chatImageRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTitle = r.Header.Get("X-Title")
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "m",
			"choices": [{"message": {"content": "here you go", "images": [
				{"type": "image_url", "image_url": {"url": "` + testDataURI + `"}}
			]}}],
			"usage": {"prompt_tokens": 7, "completion_tokens": 1290}
		}`))
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL + "/",
		Headers: map[string]string{"X-Title": "ImageFlow"},
		Timeout: 5 * time.Second,
	})

	resp, err := p.Generate(context.Background(), &GenerateRequest{Prompt: "a red fox"})
	require.NoError(t, err)

	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "ImageFlow", gotTitle)
	assert.Equal(t, DefaultOpenRouterConfig().Model, gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "user", gotBody.Messages[0].Role)
	assert.Equal(t, "a red fox", gotBody.Messages[0].Content)

	require.Len(t, resp.Images, 1)
	payload, ok := resp.Images[0].Payload()
	assert.True(t, ok)
	assert.Equal(t, testDataURI, payload)
	assert.Equal(t, "here you go", resp.Text)
	assert.Equal(t, 1290, resp.Usage.OutputTokens)
}

func TestOpenRouterProvider_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantBody   string
	}{
		{"non-2xx", http.StatusTooManyRequests, `rate limited`, 429, "rate limited"},
		{"no choices", http.StatusOK, `{"choices": []}`, 200, "no image data in response"},
		{"text only", http.StatusOK, `{"choices": [{"message": {"content": "sorry"}}]}`, 200, "no image data in response"},
		{"remote url", http.StatusOK, `{"choices": [{"message": {"images": [{"image_url": {"url": "https://x/y.png"}}]}}]}`, 200, "no image data in response"},
		{"bad json", http.StatusOK, `{`, 200, "invalid response body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewOpenRouterProvider(OpenRouterConfig{APIKey: "k", BaseURL: srv.URL})
			_, err := p.Generate(context.Background(), &GenerateRequest{Prompt: "x"})
			require.Error(t, err)

			var typed *types.Error
			require.ErrorAs(t, err, &typed)
			assert.Equal(t, types.ErrProvider, typed.Code)
			assert.Equal(t, tt.wantStatus, typed.HTTPStatus)
			assert.Equal(t, tt.wantBody, typed.Body)
			assert.Equal(t, "openrouter", typed.Provider)
			assert.True(t, types.IsRetryable(err))
		})
	}
}

func TestOpenRouterProvider_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewOpenRouterProvider(OpenRouterConfig{APIKey: "k", BaseURL: url})
	_, err := p.Generate(context.Background(), &GenerateRequest{Prompt: "x"})

	require.Error(t, err)
	assert.Equal(t, types.ErrTransport, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}

func TestGeminiProvider_Generate(t *testing.T) {
	var gotKey, gotPath string
	var gotBody geminiImageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [
			{"text": "caption"},
			{"inlineData": {"mimeType": "image/jpeg", "data": "aGVsbG8="}}
		]}}]}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider(GeminiConfig{APIKey: "g-key", BaseURL: srv.URL, Model: "gemini-test"})
	resp, err := p.Generate(context.Background(), &GenerateRequest{Prompt: "a lighthouse"})
	require.NoError(t, err)

	assert.Equal(t, "g-key", gotKey)
	assert.Equal(t, "/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, []string{"IMAGE"}, gotBody.GenerationConfig.ResponseModalities)
	assert.Equal(t, "a lighthouse", gotBody.Contents[0].Parts[0].Text)

	require.Len(t, resp.Images, 1)
	payload, _ := resp.Images[0].Payload()
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", payload)
	assert.Equal(t, "caption", resp.Text)
}

func TestGeminiProvider_NoImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "blocked"}]}}]}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider(GeminiConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Generate(context.Background(), &GenerateRequest{Prompt: "x"})
	assert.Equal(t, types.ErrProvider, types.GetErrorCode(err))
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var gotBody dalleRequest
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"created": 1700000000, "data": [{"b64_json": "aGVsbG8=", "revised_prompt": "rp"}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: srv.URL})
	resp, err := p.Generate(context.Background(), &GenerateRequest{Prompt: "cat", Size: "1792x1024"})
	require.NoError(t, err)

	assert.Equal(t, "/v1/images/generations", gotPath)
	assert.Equal(t, "b64_json", gotBody.ResponseFormat)
	assert.Equal(t, 1, gotBody.N)
	assert.Equal(t, "1792x1024", gotBody.Size)
	require.Len(t, resp.Images, 1)
	assert.Equal(t, "rp", resp.Images[0].RevisedPrompt)
	assert.Equal(t, time.Unix(1700000000, 0), resp.CreatedAt)
}

func TestNewProvider(t *testing.T) {
	cfg := config.DefaultAPIConfig()
	cfg.Key = "k"

	p, err := NewProvider(cfg)
	require.NoError(t, err)
	assert.Equal(t, "openrouter", p.Name())

	cfg.Provider = config.ProviderGemini
	p, err = NewProvider(cfg)
	require.NoError(t, err)
	g := p.(*GeminiProvider)
	assert.Equal(t, DefaultGeminiConfig().BaseURL, g.cfg.BaseURL)
	assert.Equal(t, DefaultGeminiConfig().Model, g.cfg.Model)

	cfg.Provider = config.ProviderOpenAI
	cfg.BaseURL = "http://proxy.local"
	p, err = NewProvider(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://proxy.local", p.(*OpenAIProvider).cfg.BaseURL)

	cfg.Provider = "midjourney"
	_, err = NewProvider(cfg)
	assert.Equal(t, types.ErrConfiguration, types.GetErrorCode(err))
}
