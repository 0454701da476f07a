package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog_UniqueKeys(t *testing.T) {
	records := []ToolRecord{
		{Name: "CSVReader", FilePath: "a.py", ClassName: "CSVReader", SourceCode: "v1"},
		{Name: "JSONWriter", FilePath: "b.py", ClassName: "JSONWriter"},
		{Name: "CSVReader", FilePath: "a.py", ClassName: "CSVReader", SourceCode: "v2"},
	}

	catalog := NewCatalog(records)

	require.Equal(t, 2, catalog.Len())
	rec, ok := catalog.LookupKey(CatalogKey{FilePath: "a.py", ClassName: "CSVReader"})
	require.True(t, ok)
	assert.Equal(t, "v2", rec.SourceCode, "duplicate key should replace the prior record")
	assert.Equal(t, []string{"CSVReader", "JSONWriter"}, catalog.Names())
}

func TestCatalog_LookupName(t *testing.T) {
	catalog := NewCatalog([]ToolRecord{
		{Name: "CSVReader", FilePath: "a.py", ClassName: "CSVReader"},
	})

	rec, ok := catalog.LookupName("CSVReader")
	require.True(t, ok)
	assert.Equal(t, "a.py", rec.FilePath)

	_, ok = catalog.LookupName("missing")
	assert.False(t, ok)
}

func TestCatalog_RecordsIsACopy(t *testing.T) {
	catalog := NewCatalog([]ToolRecord{
		{Name: "CSVReader", FilePath: "a.py", ClassName: "CSVReader"},
	})

	records := catalog.Records()
	records[0].Name = "mutated"

	rec, ok := catalog.LookupName("CSVReader")
	require.True(t, ok)
	assert.Equal(t, "CSVReader", rec.Name)
}

func TestCatalogState_Summary(t *testing.T) {
	catalog := NewCatalog([]ToolRecord{
		{Name: "CSVReader", Description: "reads CSV", FilePath: "a.py", ClassName: "CSVReader", SourceCode: "class CSVReader: ..."},
	})
	state := NewCatalogState(catalog, "/tools", 3, time.Time{})

	summary := state.Summary()
	assert.Equal(t, "/tools", summary.Directory)
	assert.Equal(t, uint64(3), summary.Revision)
	assert.False(t, summary.ScannedAt.IsZero())
	require.Len(t, summary.Tools, 1)
	assert.Equal(t, "CSVReader", summary.Tools[0].Name)
}

func TestError_Chain(t *testing.T) {
	cause := errors.New("boom")
	err := E(CodeNotFound, "scanner.scan", "directory missing", cause)

	assert.Equal(t, "scanner.scan: NOT_FOUND: directory missing", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.True(t, IsCode(err, CodeNotFound))
}

func TestWrap_PreservesExistingCode(t *testing.T) {
	inner := E(CodeParse, "recommender.parse", "no tool names found", nil)
	wrapped := Wrap(CodeInternal, "recommender.recommend", inner)

	assert.Equal(t, CodeParse, CodeOf(wrapped))
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(CodeInternal, "op", nil))
}
