// Package export renders chat sessions as plain-text transcripts.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/poppitai/poppit/internal/models"
)

// ErrEmptySession means there is nothing to export.
var ErrEmptySession = errors.New("session has no messages")

const separatorWidth = 60

// Transcript writes a plain-text rendering of the session to w: a header
// with the session metadata, one timestamped block per turn and a footer.
func Transcript(w io.Writer, session models.ChatSession, now time.Time) error {
	if len(session.Messages) == 0 {
		return ErrEmptySession
	}

	sep := strings.Repeat("=", separatorWidth)
	rule := strings.Repeat("-", separatorWidth)
	exportDate := now.Format("Jan 2, 2006 03:04 PM")

	var b strings.Builder
	b.WriteString(sep + "\n")
	b.WriteString("POPPIT AI - CHAT HISTORY\n")
	b.WriteString(sep + "\n\n")
	fmt.Fprintf(&b, "Session: %s\n", session.Title)
	fmt.Fprintf(&b, "Export Date: %s\n", exportDate)
	fmt.Fprintf(&b, "Session Started: %s\n", displayTime(session.CreatedAt))
	fmt.Fprintf(&b, "Total Messages: %d\n", len(session.Messages))
	b.WriteString(sep + "\n\n")

	for _, msg := range session.Messages {
		fmt.Fprintf(&b, "[%s] %s:\n", displayTime(msg.Timestamp), roleLabel(msg.Role))
		b.WriteString(msg.Content + "\n")
		b.WriteString(rule + "\n\n")
	}

	b.WriteString(sep + "\n")
	b.WriteString("End of chat history\n")
	fmt.Fprintf(&b, "Exported by Poppit AI | %s\n", exportDate)

	_, err := io.WriteString(w, b.String())
	return err
}

// Filename builds the download-style name for an export taken at now,
// e.g. "PoppitAI-Chat-20260901-1542.txt".
func Filename(now time.Time) string {
	return fmt.Sprintf("PoppitAI-Chat-%s.txt", now.Format("20060102-1504"))
}

func roleLabel(role string) string {
	if role == models.RoleUser {
		return "USER"
	}
	return "AI"
}

// displayTime reformats a stored RFC 3339 stamp for reading; anything
// unparseable is shown as N/A.
func displayTime(stamp string) string {
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return "N/A"
	}
	return t.Local().Format("Jan 2, 2006 03:04 PM")
}
