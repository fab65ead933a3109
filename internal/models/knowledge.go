package models

// KnowledgeEntry is one instruction/response pair from the offline corpus.
// Entries are immutable after load; identity is the position in the loaded
// sequence.
type KnowledgeEntry struct {
	Instruction string `json:"instruction"`
	Response    string `json:"response"`
}

// Confidence is the coarse quality label derived from a match score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)
