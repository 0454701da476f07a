// Package scanner discovers tool classes in a directory of Python
// sources. Files are parsed structurally with tree-sitter; nothing is
// imported or executed. Results for unchanged files are served from a
// content-hash cache when one is configured.
package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"go.uber.org/zap"

	"toolscout/internal/domain"
)

// Scanner walks a directory tree and extracts tool records from every
// Python file found.
type Scanner struct {
	cache   *ScanCache
	metrics domain.Metrics
	logger  *zap.Logger

	// tree-sitter parsers are not safe for concurrent use.
	mu     sync.Mutex
	parser *sitter.Parser
}

// New builds a Scanner. cache may be nil to disable caching.
func New(cache *ScanCache, metrics domain.Metrics, logger *zap.Logger) *Scanner {
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &Scanner{
		cache:   cache,
		metrics: metrics,
		logger:  logger.Named("scanner"),
		parser:  parser,
	}
}

// Scan walks directory recursively and returns the catalog of every
// qualifying tool class. Unreadable or unparsable files are skipped
// with a warning; a missing or non-directory path is an error.
func (s *Scanner) Scan(ctx context.Context, directory string) (domain.Catalog, error) {
	const op = "scanner.Scan"
	start := time.Now()

	info, err := os.Stat(directory)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Catalog{}, domain.E(domain.CodeNotFound, op, "scan directory does not exist: "+directory, err)
		}
		return domain.Catalog{}, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	if !info.IsDir() {
		return domain.Catalog{}, domain.E(domain.CodeInvalidArgument, op, "scan path is not a directory: "+directory, nil)
	}

	var (
		records []domain.ToolRecord
		files   int
	)
	walkErr := filepath.WalkDir(directory, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if path != directory && strings.HasPrefix(entry.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(entry.Name(), ".py") {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		files++
		recs, err := s.scanFile(ctx, path)
		if err != nil {
			s.logger.Warn("skipping file", zap.String("path", path), zap.Error(err))
			return nil
		}
		records = append(records, recs...)
		return nil
	})
	if walkErr != nil {
		s.metrics.ObserveScan(time.Since(start), files, 0, walkErr)
		return domain.Catalog{}, domain.Wrap(domain.CodeUnavailable, op, walkErr)
	}

	catalog := domain.NewCatalog(records)
	s.metrics.ObserveScan(time.Since(start), files, catalog.Len(), nil)
	s.logger.Info("scan complete",
		zap.String("directory", directory),
		zap.Int("files", files),
		zap.Int("tools", catalog.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return catalog, nil
}

func (s *Scanner) scanFile(ctx context.Context, path string) ([]domain.ToolRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "scanner.scanFile", err)
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])
	if s.cache != nil {
		if recs, ok := s.cache.Get(path, hash); ok {
			return recs, nil
		}
	}

	recs, err := s.parseFile(ctx, path, content)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Put(path, hash, recs); err != nil {
			s.logger.Warn("scan cache write failed", zap.String("path", path), zap.Error(err))
		}
	}
	return recs, nil
}
