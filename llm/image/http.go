package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BaSui01/imageflow/internal/tlsutil"
	"github.com/BaSui01/imageflow/types"
)

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 4096

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return tlsutil.SecureHTTPClient(timeout)
}

// postJSON sends body to url and decodes a 2xx response into out.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return types.NewTransportError(err).WithProvider(provider)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return types.NewProviderError(resp.StatusCode, string(errBody)).WithProvider(provider)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewProviderError(resp.StatusCode, "invalid response body").
			WithProvider(provider).
			WithCause(err)
	}
	return nil
}

func noImageError(provider string) error {
	return types.NewProviderError(http.StatusOK, "no image data in response").WithProvider(provider)
}
