package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// --- Request Structs ---

// ChatMessage is one turn of the conversation as sent by the client.
type ChatMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// ChatRequest defines the expected body for the streaming chat endpoint.
// System overrides the persona default when set; the raw content form keeps
// multimodal (text + image_url array) payloads intact on the way upstream.
type ChatRequest struct {
	System    string        `json:"system,omitempty"`
	Messages  []ChatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

// LeadRequest defines the body for a contact-form submission. At least one
// of name/phone must be present.
type LeadRequest struct {
	Name     string `json:"name,omitempty" validate:"required_without=Phone"`
	Phone    string `json:"phone,omitempty" validate:"required_without=Name"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Interest string `json:"interest,omitempty"`
	Summary  string `json:"message_summary,omitempty"`
}

// --- Response Structs ---

// StreamEvent is one SSE frame payload emitted by the relay.
type StreamEvent struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// LeadResponse is returned after a successful lead submission.
type LeadResponse struct {
	Success bool      `json:"success"`
	ID      uuid.UUID `json:"id"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PersonaResponse exposes the persona record to the chat UI.
type PersonaResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	FirstVisitGreeting string `json:"first_visit_greeting"`
	ReturningGreeting  string `json:"returning_greeting"`
}

// KnowledgeSearchResult is one ranked chunk from the similarity search.
type KnowledgeSearchResult struct {
	ID         int64           `json:"id"`
	Content    string          `json:"content"`
	Category   string          `json:"category"`
	Source     string          `json:"source"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	Similarity float64         `json:"similarity"`
}

// KnowledgeSearchResponse wraps the ranked results.
type KnowledgeSearchResponse struct {
	Results []KnowledgeSearchResult `json:"results"`
}
