package corpus

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/poppitai/poppit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"instruction": "what is your name", "response": "I am Poppit"},
		{"instruction": "who made you", "response": "a developer"}
	]`), 0o644))

	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "what is your name", entries[0].Instruction)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"- instruction: hello\n  response: hi there\n"), 0o644))

	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hi there", entries[0].Response)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestFeedbackFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "like.json")
	f := NewFeedbackFile(path)
	ctx := context.Background()

	require.NoError(t, f.SendFeedback(ctx, "q1", "a1"))
	require.NoError(t, f.SendFeedback(ctx, "q2", "a2"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var likes []models.KnowledgeEntry
	require.NoError(t, json.Unmarshal(raw, &likes))
	require.Len(t, likes, 2)
	assert.Equal(t, "q2", likes[1].Instruction)
}

func TestFeedbackFileCorruptStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "like.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{corrupt"), 0o644))

	f := NewFeedbackFile(path)
	require.NoError(t, f.SendFeedback(context.Background(), "q", "a"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var likes []models.KnowledgeEntry
	require.NoError(t, json.Unmarshal(raw, &likes))
	require.Len(t, likes, 1)
}
