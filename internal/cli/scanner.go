package cli

import (
	"github.com/toyz/autoiface/internal/utils"
)

// DirectoryScanner resolves path arguments into input files
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
	extension     string
}

// NewDirectoryScanner creates a scanner for the given output extension.
// Files named like generated output are never treated as input.
func NewDirectoryScanner(extension string) *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(),
		extension:     extension,
	}
}

// ScanFiles expands paths into C# sources and manifests. Supports Go-style
// patterns like "./..." for recursive scanning; a plain directory is read
// without recursion.
func (s *DirectoryScanner) ScanFiles(patterns []string) ([]string, error) {
	return s.fileProcessor.ExpandPatterns(patterns, utils.SourceFileFilter(s.extension))
}

// ScanGenerated expands paths into files named like generated output
func (s *DirectoryScanner) ScanGenerated(patterns []string) ([]string, error) {
	return s.fileProcessor.ExpandPatterns(patterns, utils.GeneratedFileFilter(s.extension))
}

// ScanDirectories expands paths into the directories they cover
func (s *DirectoryScanner) ScanDirectories(patterns []string) ([]string, error) {
	return s.fileProcessor.ExpandDirectories(patterns)
}
