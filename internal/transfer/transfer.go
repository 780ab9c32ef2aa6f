// Package transfer moves note collections across the application boundary
// as JSON: manual import/export and an inbox directory watcher that imports
// dropped files automatically.
package transfer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stickon/stickon/internal/apperr"
	"github.com/stickon/stickon/internal/models"
)

// ParseImport decodes an exported JSON array of notes. Records missing an id
// or any content are dropped rather than failing the whole file; dropped
// reports how many. Absent fields take canvas defaults (origin position,
// unpinned, empty tag list).
func ParseImport(data []byte) (notes []models.Note, dropped int, err error) {
	var raw []models.Note
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("import: not a note export: %w", apperr.ErrValidation)
	}

	for _, n := range raw {
		if n.ID == "" || (n.Text == "" && n.ImageURL == "" && n.DrawingURL == "" && n.AudioURL == "") {
			dropped++
			continue
		}
		if n.Tags == nil {
			n.Tags = []string{}
		}
		if n.Color != "" && !n.Color.Valid() {
			n.Color = ""
		}
		notes = append(notes, n)
	}
	return notes, dropped, nil
}

// Export encodes the collection for download.
func Export(notes []models.Note) ([]byte, error) {
	if notes == nil {
		notes = []models.Note{}
	}
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return data, nil
}

// ExportFilename returns the suggested download name for an export taken at
// the given time.
func ExportFilename(now time.Time) string {
	return "stickon-export-" + now.Format("2006-01-02") + ".json"
}
