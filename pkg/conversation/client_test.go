package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseBackend(t *testing.T, frames []string, gotReq *ChatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/chat", r.URL.Path)
		if gotReq != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(gotReq))
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		for _, f := range frames {
			fmt.Fprintf(w, "data: %s\n\n", f)
			flusher.Flush()
		}
	}))
}

func TestClientStreamChat(t *testing.T) {
	var gotReq ChatRequest
	srv := sseBackend(t, []string{
		`{"type":"text","text":"안녕"}`,
		`{"type":"text","text":"하세요"}`,
		`{"type":"done"}`,
	}, &gotReq)
	defer srv.Close()

	client := NewClient(srv.URL + "/")

	var events []StreamEvent
	err := client.StreamChat(context.Background(), ChatRequest{
		Messages:  []WireMessage{{Role: "user", Content: "문의"}},
		MaxTokens: 256,
	}, func(ev StreamEvent) error {
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, "안녕", events[0].Text)
	assert.Equal(t, "하세요", events[1].Text)
	assert.Equal(t, "done", events[2].Type)

	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "문의", gotReq.Messages[0].Content)
	assert.Equal(t, 256, gotReq.MaxTokens)
}

func TestClientStopsAfterDone(t *testing.T) {
	srv := sseBackend(t, []string{
		`{"type":"done"}`,
		`{"type":"text","text":"늦은 조각"}`,
	}, nil)
	defer srv.Close()

	var events []StreamEvent
	err := NewClient(srv.URL).StreamChat(context.Background(), ChatRequest{
		Messages: []WireMessage{{Role: "user", Content: "q"}},
	}, func(ev StreamEvent) error {
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "done", events[0].Type)
}

func TestClientSkipsBlankAndNonDataLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprint(w, "event: message\n")
		fmt.Fprint(w, "data: {\"type\":\"text\",\"text\":\"본문\"}\n\n")
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, "data: {\"type\":\"done\"}\n\n")
	}))
	defer srv.Close()

	var events []StreamEvent
	err := NewClient(srv.URL).StreamChat(context.Background(), ChatRequest{
		Messages: []WireMessage{{Role: "user", Content: "q"}},
	}, func(ev StreamEvent) error {
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "본문", events[0].Text)
}

func TestClientRejectedRequestCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "messages array is required"})
	}))
	defer srv.Close()

	err := NewClient(srv.URL).StreamChat(context.Background(), ChatRequest{}, func(StreamEvent) error {
		t.Fatal("no events expected on a rejected request")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "messages array is required")
	assert.Contains(t, err.Error(), "400")
}

func TestClientCallbackErrorStopsStream(t *testing.T) {
	srv := sseBackend(t, []string{
		`{"type":"text","text":"a"}`,
		`{"type":"text","text":"b"}`,
	}, nil)
	defer srv.Close()

	stop := fmt.Errorf("consumer gone")
	calls := 0
	err := NewClient(srv.URL).StreamChat(context.Background(), ChatRequest{
		Messages: []WireMessage{{Role: "user", Content: "q"}},
	}, func(StreamEvent) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
