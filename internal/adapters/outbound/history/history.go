package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openkraft/buildgate/internal/domain"
)

const historyFile = ".buildgate/history/runs.json"

// DefaultLimit is the number of runs kept.
const DefaultLimit = 100

// FileHistory implements domain.RunHistory using JSON file storage. Only the
// newest Limit entries are kept.
type FileHistory struct {
	Limit int
}

func New() *FileHistory {
	return &FileHistory{Limit: DefaultLimit}
}

// Path returns the history file of a workspace.
func Path(root string) string {
	return filepath.Join(root, historyFile)
}

func (h *FileHistory) Save(root string, entry domain.RunEntry) error {
	entries, err := h.Load(root)
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if h.Limit > 0 && len(entries) > h.Limit {
		entries = entries[len(entries)-h.Limit:]
	}

	fp := Path(root)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fp, data, 0644)
}

func (h *FileHistory) Load(root string) ([]domain.RunEntry, error) {
	data, err := os.ReadFile(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", historyFile, err)
	}

	return entries, nil
}
