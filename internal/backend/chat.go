package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/quillworks/quillai/internal/domain"
	"github.com/quillworks/quillai/internal/ports"
)

const (
	defaultChatEndpoint = "https://api.openai.com/v1/chat/completions"

	// sseMaxLineSize bounds a single server-sent event line.
	sseMaxLineSize = 1024 * 1024
)

// ChatClient is the primary SDK-style backend: an OpenAI-compatible
// chat-completions client with native incremental delivery over SSE.
type ChatClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewChatClient builds the primary backend. An empty endpoint selects the
// default chat-completions URL.
func NewChatClient(endpoint string, client *http.Client) *ChatClient {
	if endpoint == "" {
		endpoint = defaultChatEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: domain.DefaultHTTPClientTimeout}
	}
	return &ChatClient{endpoint: endpoint, httpClient: client}
}

func (c *ChatClient) Name() string {
	return "chat"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (r chatResponse) firstMessage() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Choices[0].Message.Content)
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (r chatStreamChunk) delta() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Delta.Content
}

// Complete implements ports.Backend.
func (c *ChatClient) Complete(ctx context.Context, req ports.BackendRequest) (string, error) {
	resp, err := c.post(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return decoded.firstMessage(), nil
}

// Stream implements ports.Backend using the endpoint's SSE protocol. The
// returned channel is closed on [DONE], on stream end, or after a terminal
// error event.
func (c *ChatClient) Stream(ctx context.Context, req ports.BackendRequest) (<-chan ports.StreamEvent, error) {
	resp, err := c.post(ctx, req, true)
	if err != nil {
		return nil, err
	}

	events := make(chan ports.StreamEvent)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, sseMaxLineSize), sseMaxLineSize)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, ":") {
				continue
			}
			data, ok := strings.CutPrefix(line, "data: ")
			if !ok {
				continue
			}
			if data == "[DONE]" {
				return
			}

			var chunk chatStreamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				send(ctx, events, ports.StreamEvent{Err: fmt.Errorf("parse chunk: %w", err)})
				return
			}
			if delta := chunk.delta(); delta != "" {
				if !send(ctx, events, ports.StreamEvent{Chunk: delta}) {
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			send(ctx, events, ports.StreamEvent{Err: fmt.Errorf("read stream: %w", err)})
		}
	}()
	return events, nil
}

func (c *ChatClient) post(ctx context.Context, req ports.BackendRequest, stream bool) (*http.Response, error) {
	payload := chatRequest{
		Model:    req.ModelID,
		Messages: []chatMessage{{Role: "user", Content: req.Prompt}},
		Stream:   stream,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("chat endpoint: HTTP %d %s", resp.StatusCode, resp.Status)
	}
	return resp, nil
}

var _ ports.Backend = (*ChatClient)(nil)
