// Package corpus loads the offline knowledge base and records liked answers.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/poppitai/poppit/internal/models"
)

// Load reads an ordered sequence of knowledge entries from a JSON or YAML
// file. The on-disk order is preserved: it decides score ties downstream.
func Load(path string) ([]models.KnowledgeEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var entries []models.KnowledgeEntry
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("parse corpus yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("parse corpus json: %w", err)
		}
	}
	return entries, nil
}
