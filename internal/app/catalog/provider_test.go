package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolscout/internal/domain"
	"toolscout/internal/infra/scanner"
)

const readerTool = `
class Reader:
    def get_name(self):
        return "reader"

    def get_description(self):
        return "Reads things."

    def execute(self):
        return None
`

const writerTool = `
class Writer:
    def get_name(self):
        return "writer"

    def get_description(self):
        return "Writes things."

    def execute(self):
        return None
`

func writeTool(t *testing.T, dir, name, source string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(source), 0o644))
}

func TestProviderInitialScan(t *testing.T) {
	dir := t.TempDir()
	writeTool(t, dir, "reader.py", readerTool)

	provider := NewProvider(context.Background(), scanner.New(nil, nil, nil), dir, nil)

	snap, err := provider.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Revision)
	assert.Equal(t, dir, snap.Directory)
	assert.Equal(t, []string{"reader"}, snap.Catalog.Names())
}

func TestProviderInitialScanFailureYieldsEmptyCatalog(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	provider := NewProvider(context.Background(), scanner.New(nil, nil, nil), missing, nil)

	snap, err := provider.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Catalog.Len())
}

func TestProviderRescanSwapsSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeTool(t, dir, "reader.py", readerTool)

	provider := NewProvider(context.Background(), scanner.New(nil, nil, nil), dir, nil)

	writeTool(t, dir, "writer.py", writerTool)
	count, err := provider.Rescan(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	snap, err := provider.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.Revision)
	assert.ElementsMatch(t, []string{"reader", "writer"}, snap.Catalog.Names())
}

func TestProviderRescanFailureKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeTool(t, dir, "reader.py", readerTool)

	provider := NewProvider(context.Background(), scanner.New(nil, nil, nil), dir, nil)

	_, err := provider.Rescan(context.Background(), filepath.Join(dir, "missing"))
	require.Error(t, err)
	require.True(t, domain.IsCode(err, domain.CodeNotFound))

	snap, err := provider.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Revision)
	assert.Equal(t, []string{"reader"}, snap.Catalog.Names())
}

func TestProviderRescanNewDirectory(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeTool(t, first, "reader.py", readerTool)
	writeTool(t, second, "writer.py", writerTool)

	provider := NewProvider(context.Background(), scanner.New(nil, nil, nil), first, nil)

	count, err := provider.Rescan(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	snap, err := provider.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second, snap.Directory)
	assert.Equal(t, []string{"writer"}, snap.Catalog.Names())
}

func TestSnapshotConcurrentReads(t *testing.T) {
	dir := t.TempDir()
	writeTool(t, dir, "reader.py", readerTool)

	provider := NewProvider(context.Background(), scanner.New(nil, nil, nil), dir, nil)

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			snap, err := provider.Snapshot(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 1, snap.Catalog.Len())
		}()
	}
	wg.Wait()
}

func TestSnapshotContextCancellation(t *testing.T) {
	dir := t.TempDir()
	provider := NewProvider(context.Background(), scanner.New(nil, nil, nil), dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := provider.Snapshot(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWatchRescansOnNewFile(t *testing.T) {
	dir := t.TempDir()
	writeTool(t, dir, "reader.py", readerTool)

	provider := NewProvider(context.Background(), scanner.New(nil, nil, nil), dir, nil)
	provider.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	provider.Watch(ctx)

	// Rewrite on every poll so an event emitted before the watcher
	// registered the directory cannot strand the test.
	require.Eventually(t, func() bool {
		if err := os.WriteFile(filepath.Join(dir, "writer.py"), []byte(writerTool), 0o644); err != nil {
			return false
		}
		snap, err := provider.Snapshot(context.Background())
		return err == nil && snap.Catalog.Len() == 2
	}, 5*time.Second, 100*time.Millisecond)

	snap, err := provider.Snapshot(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, snap.Revision, uint64(2))
	assert.ElementsMatch(t, []string{"reader", "writer"}, snap.Catalog.Names())
}

func TestWatchFollowsCreatedSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeTool(t, dir, "reader.py", readerTool)

	provider := NewProvider(context.Background(), scanner.New(nil, nil, nil), dir, nil)
	provider.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	provider.Watch(ctx)

	sub := filepath.Join(dir, "extra")
	require.Eventually(t, func() bool {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return false
		}
		if err := os.WriteFile(filepath.Join(sub, "writer.py"), []byte(writerTool), 0o644); err != nil {
			return false
		}
		// Touching the root keeps rescans flowing even if the mkdir
		// event fired before the watcher was registered.
		if err := os.WriteFile(filepath.Join(dir, "reader.py"), []byte(readerTool), 0o644); err != nil {
			return false
		}
		snap, err := provider.Snapshot(context.Background())
		return err == nil && snap.Catalog.Len() == 2
	}, 5*time.Second, 100*time.Millisecond)

	snap, err := provider.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Contains(t, snap.Catalog.Names(), "writer")
}
