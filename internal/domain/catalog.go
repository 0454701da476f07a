package domain

// ToolRecord describes one tool class discovered by the scanner.
// Records are immutable once created; the full source text of the
// defining file is retained so it can be returned verbatim.
type ToolRecord struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	FilePath     string `json:"filePath"`
	ClassName    string `json:"className"`
	SourceCode   string `json:"sourceCode"`
	InputSchema  string `json:"inputSchema,omitempty"`
	OutputSchema string `json:"outputSchema,omitempty"`
}

// CatalogKey uniquely identifies a record within one scan pass.
type CatalogKey struct {
	FilePath  string
	ClassName string
}

// Key returns the catalog key for the record.
func (r ToolRecord) Key() CatalogKey {
	return CatalogKey{FilePath: r.FilePath, ClassName: r.ClassName}
}

// Catalog is an ordered, immutable collection of discovered tools.
// No two records share the same (file path, class name) key; later
// records replace earlier ones during construction.
type Catalog struct {
	records []ToolRecord
	byKey   map[CatalogKey]int
	byName  map[string]int
}

// NewCatalog builds a catalog from scanner output. Duplicate keys
// replace the prior record in place, preserving first-seen order.
func NewCatalog(records []ToolRecord) Catalog {
	c := Catalog{
		byKey:  make(map[CatalogKey]int, len(records)),
		byName: make(map[string]int, len(records)),
	}
	for _, rec := range records {
		key := rec.Key()
		if idx, ok := c.byKey[key]; ok {
			c.records[idx] = rec
			c.byName[rec.Name] = idx
			continue
		}
		c.records = append(c.records, rec)
		idx := len(c.records) - 1
		c.byKey[key] = idx
		if _, exists := c.byName[rec.Name]; !exists {
			c.byName[rec.Name] = idx
		}
	}
	return c
}

// Len returns the number of records in the catalog.
func (c Catalog) Len() int {
	return len(c.records)
}

// Records returns a copy of the catalog entries in scan order.
func (c Catalog) Records() []ToolRecord {
	out := make([]ToolRecord, len(c.records))
	copy(out, c.records)
	return out
}

// LookupName resolves a tool by its declared name.
func (c Catalog) LookupName(name string) (ToolRecord, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return ToolRecord{}, false
	}
	return c.records[idx], true
}

// LookupKey resolves a tool by its (file path, class name) key.
func (c Catalog) LookupKey(key CatalogKey) (ToolRecord, bool) {
	idx, ok := c.byKey[key]
	if !ok {
		return ToolRecord{}, false
	}
	return c.records[idx], true
}

// Names returns the declared tool names in scan order.
func (c Catalog) Names() []string {
	names := make([]string, len(c.records))
	for i, rec := range c.records {
		names[i] = rec.Name
	}
	return names
}
