package domain

import "time"

// CatalogState captures an immutable catalog snapshot with scan metadata.
// Readers always hold a complete state; rescans produce a new state that
// replaces the shared reference atomically.
type CatalogState struct {
	Catalog   Catalog
	Directory string
	Revision  uint64
	ScannedAt time.Time
}

// NewCatalogState builds a catalog state from a scan result.
func NewCatalogState(catalog Catalog, directory string, revision uint64, scannedAt time.Time) CatalogState {
	if scannedAt.IsZero() {
		scannedAt = time.Now()
	}
	return CatalogState{
		Catalog:   catalog,
		Directory: directory,
		Revision:  revision,
		ScannedAt: scannedAt,
	}
}

// ToolSummary is the schema-free view of a record used in listings
// and recommendation prompts.
type ToolSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	FilePath    string `json:"file_path"`
	ClassName   string `json:"class_name"`
}

// CatalogSummary describes a catalog snapshot without source code.
type CatalogSummary struct {
	Directory string        `json:"directory"`
	Revision  uint64        `json:"revision"`
	ScannedAt time.Time     `json:"scanned_at"`
	ToolCount int           `json:"tool_count"`
	Tools     []ToolSummary `json:"tools"`
}

// Summary returns the schema-free view of the snapshot.
func (s CatalogState) Summary() CatalogSummary {
	records := s.Catalog.Records()
	tools := make([]ToolSummary, len(records))
	for i, rec := range records {
		tools[i] = ToolSummary{
			Name:        rec.Name,
			Description: rec.Description,
			FilePath:    rec.FilePath,
			ClassName:   rec.ClassName,
		}
	}
	return CatalogSummary{
		Directory: s.Directory,
		Revision:  s.Revision,
		ScannedAt: s.ScannedAt,
		ToolCount: len(tools),
		Tools:     tools,
	}
}
