package models

import "strings"

// titleLimit is the number of characters of the first user message used as
// the session title.
const titleLimit = 50

// ChatSession is a persistent conversation. The collection keeps the most
// recently created session first; updates happen in place.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
	Pinned    bool      `json:"pinned,omitempty"`
}

// DeriveTitle computes a session title from the first user message: the first
// 50 characters, with an ellipsis when truncated. Recomputed on every append
// so an edited history always shows a consistent title.
func DeriveTitle(messages []Message) string {
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		runes := []rune(m.Content)
		if len(runes) <= titleLimit {
			return m.Content
		}
		return string(runes[:titleLimit]) + "..."
	}
	return "New Chat"
}

// Clone returns a deep copy so callers can hand out sessions without sharing
// the message slice.
func (s ChatSession) Clone() ChatSession {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}

// LastUserMessage returns the most recent user turn, or "" if none exists.
func (s ChatSession) LastUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}

// Preview returns a trimmed single-line form of the title for list output.
func (s ChatSession) Preview() string {
	return strings.ReplaceAll(s.Title, "\n", " ")
}
