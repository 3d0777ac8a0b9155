package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upstreamStub serves a fixed byte payload, split at the given offsets with
// a flush between every piece so each lands as its own network read.
func upstreamStub(t *testing.T, payload []byte, splits []int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)

		prev := 0
		for _, split := range splits {
			w.Write(payload[prev:split])
			flusher.Flush()
			prev = split
		}
		w.Write(payload[prev:])
		flusher.Flush()
	}))
}

func collectEvents(t *testing.T, baseURL string) []Event {
	t.Helper()
	client := NewClient()
	var events []Event
	err := client.StreamChat(context.Background(), Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "openai/gpt-4o",
	}, []Message{TextMessage("user", "안녕")}, 0, func(ev Event) error {
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)
	return events
}

func TestStreamChatChunkBoundaryInvariance(t *testing.T) {
	payload := []byte("data: {\"choices\":[{\"delta\":{\"content\":\"안녕\"}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"하세요\"}}]}\n\n" +
		"data: [DONE]\n\n")

	single := upstreamStub(t, payload, nil)
	defer single.Close()
	want := collectEvents(t, single.URL)

	require.Equal(t, []Event{
		{Type: EventText, Text: "안녕"},
		{Type: EventText, Text: "하세요"},
		{Type: EventDone},
	}, want)

	// Split inside a line, and inside the multi-byte rune 안 (3 bytes
	// starting at offset 39 in the first frame).
	midRune := 40
	require.True(t, payload[midRune-1] >= 0x80, "expected a continuation point inside a multi-byte rune")
	boundaries := [][]int{
		{10},                   // mid prefix
		{midRune, midRune + 1}, // mid rune, byte at a time
		{1, 2, 3, 40, 41, 80},
		{len(payload) - 3},
	}
	for _, splits := range boundaries {
		srv := upstreamStub(t, payload, splits)
		got := collectEvents(t, srv.URL)
		srv.Close()
		assert.Equal(t, want, got, "splits=%v", splits)
	}
}

func TestStreamChatSentinelAndMalformedLines(t *testing.T) {
	payload := []byte("data: [DONE]\n" +
		"data: \n" +
		"data: {not json}\n" +
		": comment line\n" +
		"event: ping\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n")

	srv := upstreamStub(t, payload, nil)
	defer srv.Close()

	events := collectEvents(t, srv.URL)
	assert.Equal(t, []Event{
		{Type: EventText, Text: "ok"},
		{Type: EventDone},
	}, events)
}

func TestStreamChatUpstreamErrorEventDoesNotEndLoop(t *testing.T) {
	payload := []byte("data: {\"choices\":[{\"delta\":{\"content\":\"처음\"}}]}\n" +
		"data: {\"error\":{\"message\":\"rate limited\"}}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"계속\"}}]}\n")

	srv := upstreamStub(t, payload, nil)
	defer srv.Close()

	events := collectEvents(t, srv.URL)
	assert.Equal(t, []Event{
		{Type: EventText, Text: "처음"},
		{Type: EventError, Err: "rate limited"},
		{Type: EventText, Text: "계속"},
		{Type: EventDone},
	}, events)
}

func TestStreamChatErrorEventWithoutMessage(t *testing.T) {
	srv := upstreamStub(t, []byte("data: {\"error\":{}}\n"), nil)
	defer srv.Close()

	events := collectEvents(t, srv.URL)
	require.Len(t, events, 2)
	assert.Equal(t, EventError, events[0].Type)
	assert.NotEmpty(t, events[0].Err)
	assert.Equal(t, EventDone, events[1].Type)
}

func TestStreamChatNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"no credits"}}`, http.StatusPaymentRequired)
	}))
	defer srv.Close()

	client := NewClient()
	err := client.StreamChat(context.Background(), Config{BaseURL: srv.URL, APIKey: "k", Model: "m"},
		[]Message{TextMessage("user", "hi")}, 0, func(Event) error {
			t.Fatal("no events expected")
			return nil
		})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "no credits")
}

func TestStreamChatEmitErrorStopsReading(t *testing.T) {
	payload := []byte("data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n")
	srv := upstreamStub(t, payload, nil)
	defer srv.Close()

	stop := errors.New("downstream gone")
	var events []Event
	client := NewClient()
	err := client.StreamChat(context.Background(), Config{BaseURL: srv.URL, APIKey: "k", Model: "m"},
		[]Message{TextMessage("user", "hi")}, 0, func(ev Event) error {
			events = append(events, ev)
			return stop
		})

	assert.ErrorIs(t, err, stop)
	assert.Len(t, events, 1)
}

func TestStreamChatSendsAuthAndAttributionHeaders(t *testing.T) {
	var gotAuth, gotReferer, gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		w.Write([]byte("data: [DONE]\n"))
	}))
	defer srv.Close()

	client := NewClient()
	err := client.StreamChat(context.Background(), Config{
		BaseURL:    srv.URL,
		APIKey:     "sk-test",
		Model:      "m",
		AppReferer: "https://playabot.vercel.app",
		AppTitle:   "PLAYA Concierge",
	}, []Message{TextMessage("user", "hi")}, 0, func(Event) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "https://playabot.vercel.app", gotReferer)
	assert.Equal(t, "PLAYA Concierge", gotTitle)
}
