package conversation

import (
	"encoding/base64"
	"fmt"
	"sync"
)

// Attachment is an image selected for sending: base64 payload, MIME type,
// display name, and an ephemeral preview resource released on removal or
// send.
type Attachment struct {
	EncodedBytes string
	MimeType     string
	DisplayName  string

	releaseOnce sync.Once
	release     func()
}

// NewAttachment encodes raw bytes into an Attachment. release may be nil;
// when set it frees the preview resource and runs at most once.
func NewAttachment(data []byte, mimeType, displayName string, release func()) *Attachment {
	return &Attachment{
		EncodedBytes: base64.StdEncoding.EncodeToString(data),
		MimeType:     mimeType,
		DisplayName:  displayName,
		release:      release,
	}
}

// Release frees the preview resource. Safe to call repeatedly.
func (a *Attachment) Release() {
	a.releaseOnce.Do(func() {
		if a.release != nil {
			a.release()
		}
	})
}

// dataURL renders the attachment as an image_url data URI.
func (a *Attachment) dataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", a.MimeType, a.EncodedBytes)
}

// multimodalContent builds the part-array content for a user turn with
// attachments.
func multimodalContent(text string, attachments []*Attachment) []map[string]interface{} {
	parts := make([]map[string]interface{}, 0, len(attachments)+1)
	if text != "" {
		parts = append(parts, map[string]interface{}{"type": "text", "text": text})
	}
	for _, a := range attachments {
		parts = append(parts, map[string]interface{}{
			"type":      "image_url",
			"image_url": map[string]string{"url": a.dataURL()},
		})
	}
	return parts
}
