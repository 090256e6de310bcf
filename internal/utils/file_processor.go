package utils

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/autoiface/internal/errors"
)

// FileProcessor walks source trees and expands path patterns
type FileProcessor struct {
	dirFilter DirectoryFilter
}

// NewFileProcessor creates a new file processor with the default
// directory filter
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{dirFilter: DefaultDirectoryFilter()}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	Recursive       bool
	SkipErrors      bool
}

// GeneratedSuffix returns the ".g.<ext>" suffix of generated files
func GeneratedSuffix(ext string) string {
	return ".g." + strings.TrimPrefix(ext, ".")
}

// IsSourceFile reports whether a file name is a C# source or a
// declaration manifest, leaving out files the generator wrote itself
func IsSourceFile(name, ext string) bool {
	if strings.HasSuffix(name, ".autoiface.yaml") || strings.HasSuffix(name, ".autoiface.yml") {
		return true
	}
	return strings.HasSuffix(name, ".cs") && !strings.HasSuffix(name, GeneratedSuffix(ext))
}

// SourceFileFilter accepts files for which IsSourceFile holds
func SourceFileFilter(ext string) FileFilter {
	return func(path string, info os.DirEntry) bool {
		return !info.IsDir() && IsSourceFile(info.Name(), ext)
	}
}

// GeneratedFileFilter accepts files named like generated output
func GeneratedFileFilter(ext string) FileFilter {
	generated := GeneratedSuffix(ext)
	return func(path string, info os.DirEntry) bool {
		return !info.IsDir() && strings.HasSuffix(info.Name(), generated)
	}
}

// DefaultDirectoryFilter skips build output, dependency and VCS directories
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"bin":          true,
		"obj":          true,
		"node_modules": true,
		"packages":     true,
		"testdata":     true,
		"vendor":       true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}
		name := info.Name()
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}
		return !skipDirs[name]
	}
}

// WalkFiles collects the files under rootDir accepted by the options'
// file filter. Without Recursive only rootDir itself is read.
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	dirFilter := options.DirectoryFilter
	if dirFilter == nil {
		dirFilter = fp.dirFilter
	}

	var matched []string
	err := filepath.WalkDir(rootDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return errors.WrapFileSystemError("walk", path, err)
		}

		if entry.IsDir() {
			if path == rootDir {
				return nil
			}
			if !options.Recursive || !dirFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, entry) {
			matched = append(matched, path)
		}
		return nil
	})
	return matched, err
}

// ExpandPatterns resolves paths and Go-style "dir/..." patterns into a
// sorted, de-duplicated file list. Plain directories are read without
// recursion; plain files are taken as given.
func (fp *FileProcessor) ExpandPatterns(patterns []string, filter FileFilter) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		root, recursive := SplitPattern(pattern)
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, errors.WrapWithOperation("resolve", root, err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, errors.WrapFileSystemError("stat", root, err).
				WithSuggestion("Check that the path exists")
		}
		if !info.IsDir() {
			add(abs)
			continue
		}

		matched, err := fp.WalkFiles(abs, FileWalkOptions{FileFilter: filter, Recursive: recursive})
		if err != nil {
			return nil, err
		}
		for _, m := range matched {
			add(m)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ExpandDirectories resolves patterns into the directories they cover,
// which is what a file watcher needs
func (fp *FileProcessor) ExpandDirectories(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string

	for _, pattern := range patterns {
		root, recursive := SplitPattern(pattern)
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, errors.WrapWithOperation("resolve", root, err)
		}
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			abs = filepath.Dir(abs)
			recursive = false
		}

		err = filepath.WalkDir(abs, func(path string, entry os.DirEntry, err error) error {
			if err != nil {
				return errors.WrapFileSystemError("walk", path, err)
			}
			if !entry.IsDir() {
				return nil
			}
			if path != abs && (!recursive || !fp.dirFilter(path, entry)) {
				return filepath.SkipDir
			}
			if !seen[path] {
				seen[path] = true
				dirs = append(dirs, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(dirs)
	return dirs, nil
}

// SplitPattern splits "dir/..." into its root and a recursive flag
func SplitPattern(pattern string) (string, bool) {
	if pattern == "..." {
		return ".", true
	}
	if strings.HasSuffix(pattern, "/...") {
		root := strings.TrimSuffix(pattern, "/...")
		if root == "" {
			root = "."
		}
		return root, true
	}
	return pattern, false
}
