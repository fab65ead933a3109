package models

import (
	"strings"
	"testing"
)

func TestDeriveTitle(t *testing.T) {
	long := strings.Repeat("a", 60)

	tests := []struct {
		name     string
		messages []Message
		want     string
	}{
		{
			name: "short first user message",
			messages: []Message{
				{Role: RoleUser, Content: "hello there"},
			},
			want: "hello there",
		},
		{
			name: "long message truncated with ellipsis",
			messages: []Message{
				{Role: RoleUser, Content: long},
			},
			want: strings.Repeat("a", 50) + "...",
		},
		{
			name: "exactly at the limit is not truncated",
			messages: []Message{
				{Role: RoleUser, Content: strings.Repeat("b", 50)},
			},
			want: strings.Repeat("b", 50),
		},
		{
			name: "skips leading assistant message",
			messages: []Message{
				{Role: RoleAssistant, Content: "welcome"},
				{Role: RoleUser, Content: "my question"},
			},
			want: "my question",
		},
		{
			name:     "no user message",
			messages: []Message{{Role: RoleAssistant, Content: "welcome"}},
			want:     "New Chat",
		},
		{
			name: "multibyte runes counted as characters",
			messages: []Message{
				{Role: RoleUser, Content: strings.Repeat("本", 51)},
			},
			want: strings.Repeat("本", 50) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.messages); got != tt.want {
				t.Errorf("DeriveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCloneDoesNotShareMessages(t *testing.T) {
	s := ChatSession{
		ID:       "s1",
		Messages: []Message{{Role: RoleUser, Content: "original"}},
	}
	c := s.Clone()
	c.Messages[0].Content = "changed"
	if s.Messages[0].Content != "original" {
		t.Error("Clone() must not share the message slice")
	}
}

func TestLastUserMessage(t *testing.T) {
	s := ChatSession{
		Messages: []Message{
			{Role: RoleUser, Content: "first"},
			{Role: RoleAssistant, Content: "reply"},
			{Role: RoleUser, Content: "second"},
			{Role: RoleAssistant, Content: "reply2"},
		},
	}
	if got := s.LastUserMessage(); got != "second" {
		t.Errorf("LastUserMessage() = %q, want %q", got, "second")
	}

	empty := ChatSession{}
	if got := empty.LastUserMessage(); got != "" {
		t.Errorf("LastUserMessage() on empty session = %q, want empty", got)
	}
}
