package match

import (
	"testing"

	"github.com/poppitai/poppit/internal/models"
)

func testCorpus() []models.KnowledgeEntry {
	return []models.KnowledgeEntry{
		{Instruction: "what is your name", Response: "I am Poppit"},
		{Instruction: "who created you", Response: "I was built by my developer"},
		{Instruction: "how do you work", Response: "I match questions against a corpus"},
	}
}

func TestBestMatch_PunctuationVariant(t *testing.T) {
	engine := NewEngine(testCorpus())

	m, ok := engine.BestMatch("what's your name")
	if !ok {
		t.Fatal("BestMatch returned no match")
	}
	if m.Response != "I am Poppit" {
		t.Errorf("BestMatch response = %q, want the name entry", m.Response)
	}
	if m.Score <= 0.3 {
		t.Errorf("BestMatch score = %v, want > 0.3 (retrieval threshold)", m.Score)
	}
}

func TestBestMatch_Unrelated(t *testing.T) {
	engine := NewEngine(testCorpus())

	_, ok := engine.BestMatch("quantum flux capacitors")
	if ok {
		t.Error("BestMatch found a match for an unrelated query, want none")
	}
}

func TestBestMatch_EmptyQueryAndCorpus(t *testing.T) {
	engine := NewEngine(testCorpus())
	if _, ok := engine.BestMatch("?!"); ok {
		t.Error("BestMatch matched a punctuation-only query")
	}

	empty := NewEngine(nil)
	if _, ok := empty.BestMatch("hello"); ok {
		t.Error("BestMatch matched against an empty corpus")
	}
}

func TestBestMatch_FirstEntryWinsTies(t *testing.T) {
	engine := NewEngine([]models.KnowledgeEntry{
		{Instruction: "ping", Response: "first"},
		{Instruction: "ping", Response: "second"},
	})

	m, ok := engine.BestMatch("ping")
	if !ok {
		t.Fatal("BestMatch returned no match")
	}
	if m.Response != "first" {
		t.Errorf("tie went to %q, want the first entry", m.Response)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  models.Confidence
	}{
		{0.75, models.ConfidenceHigh},
		{0.71, models.ConfidenceHigh},
		{0.7, models.ConfidenceMedium},
		{0.6, models.ConfidenceMedium},
		{0.5, models.ConfidenceLow},
		{0.31, models.ConfidenceLow},
		{0, models.ConfidenceLow},
	}

	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestSuggest(t *testing.T) {
	engine := NewEngine(testCorpus())

	got := engine.Suggest("name work", 3)
	if len(got) == 0 {
		t.Fatal("Suggest returned nothing for partially matching query")
	}
	// "name" matches entry 0, "work" matches entry 2; both have one matching
	// token, so corpus order is preserved.
	if got[0] != "what is your name" {
		t.Errorf("Suggest[0] = %q, want corpus order among equal counts", got[0])
	}
}

func TestSuggest_Limit(t *testing.T) {
	engine := NewEngine(testCorpus())

	got := engine.Suggest("you", 1)
	if len(got) > 1 {
		t.Errorf("Suggest returned %d items, want at most 1", len(got))
	}

	if got := engine.Suggest("you", 0); got != nil {
		t.Errorf("Suggest with limit 0 = %v, want nil", got)
	}
}

func TestSuggest_NoMatches(t *testing.T) {
	engine := NewEngine(testCorpus())
	if got := engine.Suggest("zzz qqq", 3); len(got) != 0 {
		t.Errorf("Suggest = %v, want none", got)
	}
}

func TestIsFollowUp(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"tell me more", true},
		{"can you explain", true},
		{"give me an example", true},
		{"go on", true},
		{"what is your name", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsFollowUp(tt.in); got != tt.want {
			t.Errorf("IsFollowUp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
