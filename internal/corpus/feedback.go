package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/poppitai/poppit/internal/models"
)

// FeedbackFile collects liked instruction/response pairs in a JSON array on
// disk, read-modify-write per append. A corrupt file starts fresh rather
// than failing.
type FeedbackFile struct {
	mu   sync.Mutex
	path string
}

// NewFeedbackFile creates a feedback sink writing to path.
func NewFeedbackFile(path string) *FeedbackFile {
	return &FeedbackFile{path: path}
}

// SendFeedback appends one pair to the file.
func (f *FeedbackFile) SendFeedback(_ context.Context, instruction, response string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	likes := f.readExisting()
	likes = append(likes, models.KnowledgeEntry{Instruction: instruction, Response: response})

	raw, err := json.MarshalIndent(likes, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal likes: %w", err)
	}
	if err := os.WriteFile(f.path, raw, 0o644); err != nil {
		return fmt.Errorf("write likes: %w", err)
	}
	return nil
}

// readExisting returns the current pairs, or an empty list for a missing,
// empty or corrupt file.
func (f *FeedbackFile) readExisting() []models.KnowledgeEntry {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil
	}
	var likes []models.KnowledgeEntry
	if err := json.Unmarshal(raw, &likes); err != nil {
		return nil
	}
	return likes
}
