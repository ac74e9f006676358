package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/itsmeow/SpongeCommon/internal/tag"
)

// ExportVersion identifies the snapshot layout.
const ExportVersion = 1

// StackExport is the root JSON structure of a snapshot.
type StackExport struct {
	Version    int         `json:"version"`
	ExportedAt time.Time   `json:"exportedAt"`
	Stacks     []StackJSON `json:"stacks"`
}

// StackJSON is one stack in a snapshot.
type StackJSON struct {
	ID    uuid.UUID    `json:"id"`
	Type  string       `json:"type"`
	Count int          `json:"count"`
	Tag   tag.Compound `json:"tag,omitempty"`
}

// exportJSON writes all stacks to a JSON (or gzipped JSON) file. Callers hold mu.
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	filename := fmt.Sprintf("stacks_%s.json", export.ExportedAt.Format("20060102_150405"))
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() StackExport {
	ids := make([]uuid.UUID, 0, len(b.stacks))
	for id := range b.stacks {
		ids = append(ids, id)
	}
	sortIDs(ids)

	export := StackExport{
		Version:    ExportVersion,
		ExportedAt: b.now().UTC(),
		Stacks:     make([]StackJSON, 0, len(ids)),
	}
	for _, id := range ids {
		s := b.stacks[id]
		export.Stacks = append(export.Stacks, StackJSON{
			ID:    s.ID,
			Type:  s.Type.Name,
			Count: s.Count,
			Tag:   s.Tag,
		})
	}
	return export
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeGzipJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(v); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}
