// Package storage provides flat-file JSON persistence for run snapshots.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/vigil/internal/common"
)

// FileStore provides file-based JSON storage with optional versioning.
type FileStore struct {
	basePath string
	versions int
	logger   *common.Logger
}

// Subdirectories under basePath
const (
	dirReports      = "reports"
	dirFundamentals = "fundamentals"
	dirCharts       = "charts"
	dirFilings      = "filings"
)

var subdirectories = []string{dirReports, dirFundamentals, dirCharts, dirFilings}

// NewFileStore creates a new FileStore and ensures all subdirectories exist.
func NewFileStore(logger *common.Logger, config *common.StorageConfig) (*FileStore, error) {
	versions := config.Versions
	if versions < 0 {
		versions = 0
	}

	fs := &FileStore{
		basePath: config.Path,
		versions: versions,
		logger:   logger,
	}

	for _, sub := range subdirectories {
		dir := filepath.Join(fs.basePath, sub)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	logger.Debug().Str("path", config.Path).Int("versions", versions).Msg("FileStore opened")
	return fs, nil
}

// sanitizeKey makes a key safe for use as a filename.
// Replaces /, \, : with _ and collapses ".." to "_" to prevent path traversal.
// Preserves single dots (common in tickers like NWG.L).
func (fs *FileStore) sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

// filePath returns the full path for a key in a directory.
func (fs *FileStore) filePath(dir, key string) string {
	return filepath.Join(dir, fs.sanitizeKey(key)+".json")
}

// readJSON reads and unmarshals a JSON file.
func (fs *FileStore) readJSON(dir, key string, dest interface{}) error {
	path := fs.filePath(dir, key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' not found", key)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("'%s' is empty", key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSON marshals data to indented JSON and writes it atomically.
// When versioned and fs.versions > 0, previous copies are rotated to .v1..vN.
func (fs *FileStore) writeJSON(dir, key string, data interface{}, versioned bool) error {
	target := fs.filePath(dir, key)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	if versioned && fs.versions > 0 {
		fs.rotateVersions(target)
	}

	return fs.writeAtomic(dir, target, jsonData)
}

// writeAtomic writes to a temp file in dir, then renames it over target.
func (fs *FileStore) writeAtomic(dir, target string, data []byte) error {
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// rotateVersions shifts existing versions up and moves current to v1.
// v{N} -> deleted, v{N-1} -> v{N}, ..., v1 -> v2, current -> v1
func (fs *FileStore) rotateVersions(target string) {
	os.Remove(fmt.Sprintf("%s.v%d", target, fs.versions))

	for i := fs.versions; i > 1; i-- {
		src := fmt.Sprintf("%s.v%d", target, i-1)
		dst := fmt.Sprintf("%s.v%d", target, i)
		os.Rename(src, dst) // may not exist yet
	}

	if _, err := os.Stat(target); err == nil {
		os.Rename(target, target+".v1")
	}
}

// listKeys returns all keys in a directory (excluding version files and temp files).
func (fs *FileStore) listKeys(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, ".tmp-") {
			keys = append(keys, strings.TrimSuffix(name, ".json"))
		}
	}
	return keys, nil
}

// WriteRaw writes arbitrary binary data atomically and returns the file path.
// The key is sanitized for safe filenames (e.g. "holdings_pie.png").
func (fs *FileStore) WriteRaw(subdir, key string, data []byte) (string, error) {
	dir := filepath.Join(fs.basePath, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	target := filepath.Join(dir, fs.sanitizeKey(key))

	if err := fs.writeAtomic(dir, target, data); err != nil {
		return "", err
	}
	return target, nil
}

// ReadRaw reads binary data previously written with WriteRaw.
func (fs *FileStore) ReadRaw(subdir, key string) ([]byte, error) {
	path := filepath.Join(fs.basePath, subdir, fs.sanitizeKey(key))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("'%s' not found", key)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
