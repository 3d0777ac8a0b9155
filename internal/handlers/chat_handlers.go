package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"playabot-backend/internal/ai"
	"playabot-backend/internal/models"
	"playabot-backend/internal/services"
	"playabot-backend/pkg/httputil"
	"playabot-backend/pkg/logx"
)

// ChatHandlers owns the inbound side of the streaming relay.
type ChatHandlers struct {
	chatService *services.ChatService
	apiKey      string
}

// NewChatHandlers creates a new ChatHandlers instance. apiKey is only
// checked for presence; an empty key is a configuration error reported per
// request.
func NewChatHandlers(chatService *services.ChatService, apiKey string) *ChatHandlers {
	return &ChatHandlers{
		chatService: chatService,
		apiKey:      apiKey,
	}
}

// HandleStreamChat relays one chat request to the completion API and
// re-emits its token stream as SSE frames.
//
// Failure contract: validation and configuration errors are rejected here
// with buffered JSON statuses. Once the SSE headers are flushed the
// response is committed; every later failure is encoded as an in-band
// {type:"error"} event, never as an HTTP status.
func (h *ChatHandlers) HandleStreamChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Messages == nil {
		httputil.RespondError(w, http.StatusBadRequest, "messages array is required")
		return
	}
	if h.apiKey == "" {
		httputil.RespondError(w, http.StatusInternalServerError, "OPENROUTER_API_KEY not configured")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Commit to SSE. Past this point the wire protocol is event-stream
	// framing and cannot fall back to a buffered error response.
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	writeEvent := func(ev models.StreamEvent) error {
		payload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		// No batching: each delta reaches the client as soon as it arrives.
		flusher.Flush()
		return nil
	}

	err := h.chatService.StreamChat(r.Context(), req, func(ev ai.Event) error {
		switch ev.Type {
		case ai.EventText:
			return writeEvent(models.StreamEvent{Type: "text", Text: ev.Text})
		case ai.EventError:
			return writeEvent(models.StreamEvent{Type: "error", Error: ev.Err})
		case ai.EventDone:
			return writeEvent(models.StreamEvent{Type: "done"})
		}
		return nil
	})
	if err != nil {
		// Best effort: the write itself may be what failed (client gone),
		// in which case this is a no-op and the stream is already over.
		logx.Error().Err(err).Msg("chat stream aborted")
		var apiErr *ai.APIError
		if errors.As(err, &apiErr) {
			_ = writeEvent(models.StreamEvent{Type: "error", Error: apiErr.Error()})
			return
		}
		_ = writeEvent(models.StreamEvent{Type: "error", Error: err.Error()})
	}
}
