// extract_handler.go
package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ExtractAttachmentHandler saves dataset extract attachments (csv or xlsx)
// from matching mails into the data directory.
type ExtractAttachmentHandler struct {
	TargetSubject string
	DataDir       string
	processedUIDs map[uint32]bool
	mu            sync.RWMutex
}

func NewExtractAttachmentHandler(subject, dataDir string) *ExtractAttachmentHandler {
	return &ExtractAttachmentHandler{
		TargetSubject: subject,
		DataDir:       dataDir,
		processedUIDs: make(map[uint32]bool),
	}
}

func (h *ExtractAttachmentHandler) isProcessed(uid uint32) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.processedUIDs[uid]
}

func (h *ExtractAttachmentHandler) markAsProcessed(uid uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.processedUIDs[uid] = true
}

// Handle saves the first usable extract attachment of the mail and returns
// the saved path. It returns "" when the mail was already processed, does
// not match the subject, or carries no usable attachment.
func (h *ExtractAttachmentHandler) Handle(e *Email) (string, error) {
	if e == nil || h.isProcessed(e.UID) {
		return "", nil
	}

	if !strings.Contains(e.Subject, h.TargetSubject) {
		return "", nil
	}

	if err := os.MkdirAll(h.DataDir, 0755); err != nil {
		return "", fmt.Errorf("cannot create data dir: %w", err)
	}

	for _, attachment := range e.Attachments {
		ext := strings.ToLower(filepath.Ext(attachment.Filename))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}

		path := filepath.Join(h.DataDir, filepath.Base(attachment.Filename))
		if err := os.WriteFile(path, attachment.Content, 0644); err != nil {
			return "", fmt.Errorf("cannot save attachment: %w", err)
		}

		h.markAsProcessed(e.UID)
		return path, nil
	}

	return "", nil
}
