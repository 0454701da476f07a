// Package catalog owns the shared catalog snapshot. A provider scans
// the tool directory, publishes immutable snapshots, and optionally
// watches the directory tree to rescan on changes.
package catalog

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"toolscout/internal/domain"
	"toolscout/internal/infra/scanner"
)

const defaultRescanDebounce = time.Duration(domain.DefaultRescanDebounceMillis) * time.Millisecond

// Provider scans a directory and serves catalog snapshots. Snapshot
// reads never block on scans: the state is swapped atomically and only
// on a successful scan, so a failed rescan keeps the previous catalog.
type Provider struct {
	logger    *zap.Logger
	scanner   *scanner.Scanner
	directory string
	debounce  time.Duration

	state    atomic.Value
	revision atomic.Uint64

	rescanMu  sync.Mutex
	watchOnce sync.Once
}

// NewProvider performs the initial scan of directory and returns a
// provider holding the result. A failed initial scan is not fatal: the
// provider starts with an empty catalog so later rescans or directory
// creation can recover.
func NewProvider(ctx context.Context, sc *scanner.Scanner, directory string, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{
		logger:    logger.Named("catalog_provider"),
		scanner:   sc,
		directory: directory,
		debounce:  defaultRescanDebounce,
	}

	catalog, err := sc.Scan(ctx, directory)
	if err != nil {
		p.logger.Warn("initial scan failed, starting with empty catalog",
			zap.String("directory", directory), zap.Error(err))
		catalog = domain.NewCatalog(nil)
	}
	p.revision.Store(1)
	p.state.Store(domain.NewCatalogState(catalog, directory, 1, time.Now()))
	return p
}

// Snapshot returns the current catalog state.
func (p *Provider) Snapshot(ctx context.Context) (domain.CatalogState, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return domain.CatalogState{}, err
		}
	}
	return p.state.Load().(domain.CatalogState), nil
}

// Rescan scans directory (or the provider's directory when empty) and
// swaps the snapshot on success. Returns the new tool count.
func (p *Provider) Rescan(ctx context.Context, directory string) (int, error) {
	p.rescanMu.Lock()
	defer p.rescanMu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(directory) == "" {
		directory = p.directory
	}

	catalog, err := p.scanner.Scan(ctx, directory)
	if err != nil {
		return 0, err
	}

	revision := p.revision.Add(1)
	next := domain.NewCatalogState(catalog, directory, revision, time.Now())
	p.state.Store(next)
	p.directory = directory
	p.logger.Info("catalog updated",
		zap.String("directory", directory),
		zap.Uint64("revision", revision),
		zap.Int("tools", catalog.Len()))
	return catalog.Len(), nil
}

// Watch starts the filesystem watcher that rescans after changes in
// the tool directory tree. Safe to call more than once.
func (p *Provider) Watch(ctx context.Context) {
	p.watchOnce.Do(func() {
		go p.runWatcher(ctx)
	})
}

func (p *Provider) runWatcher(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Warn("directory watcher failed", zap.Error(err))
		return
	}
	defer watcher.Close()

	p.addWatchTree(watcher, p.directory)

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-watcher.Errors:
			if err != nil {
				p.logger.Warn("directory watcher error", zap.Error(err))
			}
		case event := <-watcher.Events:
			if !shouldRescanFor(event) {
				continue
			}
			// New subdirectories must be watched before their
			// contents change.
			if event.Op.Has(fsnotify.Create) {
				p.addWatchTree(watcher, event.Name)
			}
			if timer == nil {
				timer = time.NewTimer(p.debounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(p.debounce)
		case <-timerChan(timer):
			timer = nil
			if _, err := p.Rescan(ctx, ""); err != nil {
				p.logger.Warn("rescan failed", zap.Error(err))
			}
		}
	}
}

// addWatchTree registers path and every directory below it. Non
// directory paths are ignored.
func (p *Provider) addWatchTree(watcher *fsnotify.Watcher, path string) {
	_ = filepath.WalkDir(path, func(sub string, entry fs.DirEntry, err error) error {
		if err != nil || !entry.IsDir() {
			return nil
		}
		if sub != path && strings.HasPrefix(entry.Name(), ".") {
			return fs.SkipDir
		}
		if err := watcher.Add(sub); err != nil {
			p.logger.Warn("watch add failed", zap.String("path", sub), zap.Error(err))
		}
		return nil
	})
}

// shouldRescanFor filters watcher noise down to events that can change
// scan results: Python files and directory churn.
func shouldRescanFor(event fsnotify.Event) bool {
	if event.Name == "" {
		return false
	}
	if strings.HasSuffix(event.Name, ".py") {
		return true
	}
	return event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename)
}

func timerChan(timer *time.Timer) <-chan time.Time {
	if timer == nil {
		return nil
	}
	return timer.C
}
