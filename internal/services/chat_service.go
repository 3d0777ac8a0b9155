package services

import (
	"context"
	"encoding/json"
	"time"

	"playabot-backend/internal/ai"
	"playabot-backend/internal/config"
	"playabot-backend/internal/models"
	"playabot-backend/internal/persona"
	"playabot-backend/internal/rag"
	"playabot-backend/pkg/logx"
)

// ChatService drives one streaming chat turn: persona prompt resolution,
// keyword-context assembly, and the upstream completion call.
type ChatService struct {
	client    *ai.Client
	cfg       *config.Config
	persona   persona.Persona
	knowledge map[string]string

	// searchFallback supplies embedding-based context when the keyword layer
	// finds nothing. Optional; "" means no context.
	searchFallback func(ctx context.Context, userMessage string) string
}

// NewChatService creates a new ChatService. knowledge maps document name to
// Markdown content; an empty map disables context injection.
func NewChatService(client *ai.Client, cfg *config.Config, p persona.Persona, knowledge map[string]string) *ChatService {
	return &ChatService{
		client:    client,
		cfg:       cfg,
		persona:   p,
		knowledge: knowledge,
	}
}

// SetSearchFallback installs the embedding retrieval path used when keyword
// matching yields no context.
func (s *ChatService) SetSearchFallback(fn func(ctx context.Context, userMessage string) string) {
	s.searchFallback = fn
}

// StreamChat forwards the request upstream with streaming enabled and
// invokes emit for every normalized event. The system prompt is the request
// override when present, otherwise the persona default; the keyword-RAG
// context for the latest user message is appended for this turn only.
func (s *ChatService) StreamChat(ctx context.Context, req models.ChatRequest, emit func(ai.Event) error) error {
	system := req.System
	if system == "" {
		system = s.persona.SystemPrompt(time.Now())
	}

	if userText := lastUserText(req.Messages); userText != "" {
		contextBlock := rag.BuildContext(userText, s.knowledge)
		if contextBlock == "" && s.searchFallback != nil {
			contextBlock = s.searchFallback(ctx, userText)
		}
		if contextBlock != "" {
			system += contextBlock
			logx.Debug().Int("context_len", len(contextBlock)).Msg("retrieval context appended")
		}
	}

	messages := make([]ai.Message, 0, len(req.Messages)+1)
	messages = append(messages, ai.TextMessage("system", system))
	for _, m := range req.Messages {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}

	cfg := ai.Config{
		BaseURL:    s.cfg.OpenRouterBaseURL,
		APIKey:     s.cfg.OpenRouterAPIKey,
		Model:      s.cfg.ChatModel,
		AppReferer: s.cfg.AppReferer,
		AppTitle:   s.cfg.AppTitle,
	}
	return s.client.StreamChat(ctx, cfg, messages, req.MaxTokens, emit)
}

// lastUserText returns the plain text of the most recent user message. For
// multimodal content arrays the text parts are concatenated; image parts
// contribute nothing to keyword matching.
func lastUserText(messages []models.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != "user" {
			continue
		}

		var text string
		if err := json.Unmarshal(messages[i].Content, &text); err == nil {
			return text
		}

		var parts []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(messages[i].Content, &parts); err == nil {
			var out string
			for _, p := range parts {
				if p.Type == "text" {
					out += p.Text
				}
			}
			return out
		}
		return ""
	}
	return ""
}
