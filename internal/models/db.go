package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a contact-form submission row. Immutable after insert.
type Lead struct {
	ID        uuid.UUID `json:"id"`
	Name      *string   `json:"name,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Interest  *string   `json:"interest,omitempty"`
	Summary   *string   `json:"message_summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
