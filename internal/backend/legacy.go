package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/quillworks/quillai/internal/domain"
	"github.com/quillworks/quillai/internal/ports"
)

const defaultLegacyEndpoint = "https://api.openai.com/v1/completions"

// errNoNativeStream marks a backend that only supports whole results.
var errNoNativeStream = errors.New("backend has no native streaming")

// LegacyClient is the legacy-compatible fallback backend: an older
// text-completions endpoint with whole-result delivery only.
type LegacyClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewLegacyClient builds the fallback backend. An empty endpoint selects the
// default completions URL.
func NewLegacyClient(endpoint string, client *http.Client) *LegacyClient {
	if endpoint == "" {
		endpoint = defaultLegacyEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: domain.DefaultHTTPClientTimeout}
	}
	return &LegacyClient{endpoint: endpoint, httpClient: client}
}

func (c *LegacyClient) Name() string {
	return "legacy"
}

type legacyRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type legacyResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

func (r legacyResponse) firstText() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Choices[0].Text)
}

// Complete implements ports.Backend.
func (c *LegacyClient) Complete(ctx context.Context, req ports.BackendRequest) (string, error) {
	body, err := json.Marshal(legacyRequest{Model: req.ModelID, Prompt: req.Prompt})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("legacy endpoint: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	var decoded legacyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return decoded.firstText(), nil
}

// Stream reports that this backend has no native incremental interface; the
// chain re-chunks Complete results instead.
func (c *LegacyClient) Stream(context.Context, ports.BackendRequest) (<-chan ports.StreamEvent, error) {
	return nil, errNoNativeStream
}

var _ ports.Backend = (*LegacyClient)(nil)
