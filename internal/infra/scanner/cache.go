package scanner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"toolscout/internal/domain"
)

const scanBucketName = "scan_results"

// cacheEntry is the stored value per source file. A file is a cache
// hit only when its content hash matches.
type cacheEntry struct {
	Hash     string              `json:"hash"`
	Records  []domain.ToolRecord `json:"records"`
	StoredAt string              `json:"stored_at"`
}

// ScanCache persists per-file scan results keyed by file path so that
// rescans only pay the parse cost for changed files.
type ScanCache struct {
	mu     sync.RWMutex
	db     *bolt.DB
	logger *zap.Logger
	closed bool
}

// OpenScanCache opens (or creates) the cache database at path.
func OpenScanCache(path string, logger *zap.Logger) (*ScanCache, error) {
	const op = "scanner.OpenScanCache"
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, domain.E(domain.CodeInvalidArgument, op, "cache path is required", nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	db, err := bolt.Open(trimmed, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(scanBucketName))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	return &ScanCache{db: db, logger: logger.Named("scancache")}, nil
}

// Get returns the cached records for path when the stored content hash
// matches hash.
func (c *ScanCache) Get(path, hash string) ([]domain.ToolRecord, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, false
	}
	var entry cacheEntry
	err := c.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket([]byte(scanBucketName)).Get([]byte(path))
		if value == nil {
			return domain.E(domain.CodeNotFound, "scanner.cache.Get", "no entry", nil)
		}
		return json.Unmarshal(value, &entry)
	})
	if err != nil {
		if !domain.IsCode(err, domain.CodeNotFound) {
			c.logger.Warn("cache read failed", zap.String("path", path), zap.Error(err))
		}
		return nil, false
	}
	if entry.Hash != hash {
		return nil, false
	}
	return entry.Records, true
}

// Put stores the records for path under its content hash.
func (c *ScanCache) Put(path, hash string, records []domain.ToolRecord) error {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return domain.E(domain.CodeFailedPrecond, "scanner.cache.Put", "cache is closed", nil)
	}
	payload, err := json.Marshal(cacheEntry{
		Hash:     hash,
		Records:  records,
		StoredAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return domain.Wrap(domain.CodeInternal, "scanner.cache.Put", err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(scanBucketName)).Put([]byte(path), payload)
	})
}

// Close releases the underlying database.
func (c *ScanCache) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}
