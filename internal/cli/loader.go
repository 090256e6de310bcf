package cli

import (
	"github.com/toyz/autoiface/internal/csharp"
	"github.com/toyz/autoiface/internal/manifest"
	"github.com/toyz/autoiface/internal/models"
	"github.com/toyz/autoiface/internal/utils"
)

// SourceFile is what one input file contributes to a run
type SourceFile struct {
	Path         string
	Declarations []models.TypeDeclaration
	Diagnostics  []models.Diagnostic
	Cached       bool
}

// SourceLoader reads C# sources and declaration manifests. Results are
// cached per file until its size or modification time changes.
type SourceLoader struct {
	parser *csharp.Parser
	cache  *utils.FileCache[SourceFile]
}

// NewSourceLoader creates a loader recognising the given marker names
func NewSourceLoader(markers ...string) *SourceLoader {
	return &SourceLoader{
		parser: csharp.NewParser(markers...),
		cache:  utils.NewFileCache[SourceFile](),
	}
}

// Load reads one file. Manifests are chosen by their .autoiface.yaml
// suffix, everything else goes through the C# front end.
func (l *SourceLoader) Load(path string) (SourceFile, error) {
	if cached, ok := l.cache.Get(path); ok {
		cached.Cached = true
		return cached, nil
	}

	src := SourceFile{Path: path}
	if manifest.IsManifest(path) {
		decls, err := manifest.Load(path)
		if err != nil {
			return src, err
		}
		src.Declarations = decls
	} else {
		file, err := l.parser.ParseFile(path)
		if err != nil {
			return src, err
		}
		src.Declarations = file.Declarations
		src.Diagnostics = file.Diagnostics
	}

	// a file removed mid-run simply is not cached
	_ = l.cache.Set(path, src)
	return src, nil
}

// Forget drops the cached result of a file
func (l *SourceLoader) Forget(path string) {
	l.cache.Delete(path)
}

// Reset drops every cached result
func (l *SourceLoader) Reset() {
	l.cache.Clear()
}

// Stats returns cache statistics
func (l *SourceLoader) Stats() utils.CacheStats {
	return l.cache.GetStats()
}
