package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"toolscout/internal/domain"
)

func TestScanCacheRoundTrip(t *testing.T) {
	cache, err := OpenScanCache(filepath.Join(t.TempDir(), "scan.db"), nil)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, cache.Close())
	}()

	records := []domain.ToolRecord{{
		Name:      "csv_reader",
		FilePath:  "tools/csv.py",
		ClassName: "CSVReader",
	}}
	require.NoError(t, cache.Put("tools/csv.py", "hash-1", records))

	got, ok := cache.Get("tools/csv.py", "hash-1")
	require.True(t, ok)
	require.Equal(t, records, got)
}

func TestScanCacheMissOnChangedHash(t *testing.T) {
	cache, err := OpenScanCache(filepath.Join(t.TempDir(), "scan.db"), nil)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, cache.Close())
	}()

	require.NoError(t, cache.Put("tools/csv.py", "hash-1", nil))

	_, ok := cache.Get("tools/csv.py", "hash-2")
	require.False(t, ok)

	_, ok = cache.Get("tools/other.py", "hash-1")
	require.False(t, ok)
}

func TestOpenScanCacheUnusableDirCarriesCode(t *testing.T) {
	occupied := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(occupied, []byte("not a directory"), 0o600))

	_, err := OpenScanCache(filepath.Join(occupied, "nested", "scan.db"), nil)
	require.Error(t, err)
	require.True(t, domain.IsCode(err, domain.CodeUnavailable))
}

func TestScanCacheClosed(t *testing.T) {
	cache, err := OpenScanCache(filepath.Join(t.TempDir(), "scan.db"), nil)
	require.NoError(t, err)
	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())

	_, ok := cache.Get("tools/csv.py", "hash-1")
	require.False(t, ok)
	require.Error(t, cache.Put("tools/csv.py", "hash-1", nil))
}

func TestScannerWithCache(t *testing.T) {
	cache, err := OpenScanCache(filepath.Join(t.TempDir(), "scan.db"), nil)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, cache.Close())
	}()

	s := New(cache, nil, nil)
	first, err := s.Scan(context.Background(), "testdata")
	require.NoError(t, err)
	second, err := s.Scan(context.Background(), "testdata")
	require.NoError(t, err)
	require.Equal(t, first.Names(), second.Names())
}
