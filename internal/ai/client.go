// Package ai is the hand-rolled client for the OpenAI-compatible completion
// and embedding APIs (OpenRouter upstream). The streaming path parses the
// upstream SSE framing incrementally and surfaces normalized events.
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// EventType tags one normalized upstream stream event.
type EventType int

const (
	EventText EventType = iota
	EventError
	EventDone
)

// Event is the tagged variant for inbound stream events. Exactly one of
// Text/Err is meaningful depending on Type.
type Event struct {
	Type EventType
	Text string
	Err  string
}

// Message is one chat turn on the wire. Content stays raw so multimodal
// payloads (text + image_url arrays) pass through untouched.
type Message struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// TextMessage builds a plain-text Message.
func TextMessage(role, content string) Message {
	raw, _ := json.Marshal(content)
	return Message{Role: role, Content: raw}
}

// Config holds the upstream API settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	AppReferer string
	AppTitle   string
}

// APIError is a non-2xx upstream response received before any stream bytes.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API %d: %s", e.StatusCode, e.Body)
}

// Client talks to an OpenAI-compatible API.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a Client with a generous timeout suited to streaming
// completions.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// StreamChat issues one streaming completion request and invokes emit for
// every normalized event, in arrival order. Text deltas are forwarded
// immediately, one event per delta. Upstream error payloads are emitted as
// EventError without ending the read; only stream exhaustion ends the loop,
// after which EventDone is emitted. A line that is blank, the [DONE]
// sentinel, or unparseable JSON produces no event. If emit returns an
// error (downstream gone), reading stops and that error is returned.
func (c *Client) StreamChat(ctx context.Context, cfg Config, messages []Message, maxTokens int, emit func(Event) error) error {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	reqBody := map[string]interface{}{
		"model":      cfg.Model,
		"max_tokens": maxTokens,
		"messages":   messages,
		"stream":     true,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal stream request failed: %w", err)
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build stream request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("HTTP-Referer", cfg.AppReferer)
	req.Header.Set("X-Title", cfg.AppTitle)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	// Line-buffered reassembly across arbitrary network read boundaries.
	// Splitting on the raw newline byte is UTF-8 safe: multi-byte runes
	// never contain 0x0A, so a rune split across two reads stays intact
	// inside one line.
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
			Error *struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// A single malformed line must not abort the relay.
			continue
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			if err := emit(Event{Type: EventText, Text: chunk.Choices[0].Delta.Content}); err != nil {
				return err
			}
		}

		if chunk.Error != nil {
			msg := chunk.Error.Message
			if msg == "" {
				msg = "알 수 없는 오류"
			}
			if err := emit(Event{Type: EventError, Err: msg}); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan stream failed: %w", err)
	}

	return emit(Event{Type: EventDone})
}
