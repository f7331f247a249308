package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Manager handles file writes inside a user's asset directory. Writes are
// atomic (temporary file plus rename) and restore the asset's original
// modification time, so downloads interrupted mid-write never leave partial
// files behind.
type Manager struct {
	outputDir string
}

// NewManager creates a storage manager, creating the output directory if
// needed
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir: outputDir,
	}, nil
}

// SaveAsset saves an asset from the given reader under filename and sets
// both access and modification time to modTime. Existing files are
// overwritten.
func (m *Manager) SaveAsset(r io.Reader, filename string, modTime time.Time) error {
	target := filepath.Join(m.outputDir, filename)

	tempFile := target + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to save asset data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	if err := os.Chtimes(target, modTime, modTime); err != nil {
		return fmt.Errorf("failed to restore file time: %w", err)
	}

	return nil
}

// Exists reports whether filename is already present in the output directory
func (m *Manager) Exists(filename string) bool {
	_, err := os.Stat(filepath.Join(m.outputDir, filename))
	return err == nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}
