package conversation

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WireMessage is one chat turn on the wire. Content is either a plain
// string or a multimodal part array.
type WireMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// ChatRequest is the body sent to the relay's chat endpoint.
type ChatRequest struct {
	System    string        `json:"system,omitempty"`
	Messages  []WireMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

// StreamEvent is one decoded SSE frame from the relay.
type StreamEvent struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Client consumes the backend's SSE chat endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a Client for the given backend base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// StreamChat posts the request and invokes onEvent for every decoded frame
// until the stream ends. A non-200 status (only possible before the relay
// commits to streaming) is returned as an error carrying the server's
// message.
func (c *Client) StreamChat(ctx context.Context, req ChatRequest, onEvent func(StreamEvent) error) error {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal chat request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build chat request failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error != "" {
			return fmt.Errorf("chat request rejected (%d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("chat request rejected with status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var ev StreamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			continue
		}
		if err := onEvent(ev); err != nil {
			return err
		}
		if ev.Type == "done" {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan chat stream failed: %w", err)
	}
	return nil
}
