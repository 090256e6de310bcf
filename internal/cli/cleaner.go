package cli

import (
	"os"

	"github.com/toyz/autoiface/internal/errors"
	"github.com/toyz/autoiface/internal/templates"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	scanner *DirectoryScanner
}

// NewCleaner creates a cleaner for generated files with the given extension
func NewCleaner(extension string) *Cleaner {
	return &Cleaner{
		scanner: NewDirectoryScanner(extension),
	}
}

// CleanGeneratedFiles removes every "*.g.<ext>" file under the given paths
// that starts with the auto-generated banner. Hand-written files that only
// share the naming scheme are left alone. Returns the removed paths.
func (c *Cleaner) CleanGeneratedFiles(patterns []string) ([]string, error) {
	candidates, err := c.scanner.ScanGenerated(patterns)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, path := range candidates {
		ok, err := removeGenerated(path)
		if err != nil {
			return removed, err
		}
		if ok {
			removed = append(removed, path)
		}
	}
	return removed, nil
}

// removeGenerated deletes path when it carries the banner
func removeGenerated(path string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WrapFileSystemError("read", path, err)
	}
	if !templates.IsGenerated(string(content)) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, errors.WrapFileSystemError("remove", path, err)
	}
	return true, nil
}
