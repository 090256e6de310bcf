package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toyz/autoiface/internal/errors"
	"github.com/toyz/autoiface/internal/logger"
	"github.com/toyz/autoiface/internal/models"
	"github.com/toyz/autoiface/internal/pipeline"
	"github.com/toyz/autoiface/internal/templates"
	"github.com/toyz/autoiface/internal/utils"
)

// ErrStale is returned by Check when generated files are missing or out of date
var ErrStale = errors.Plain("generated files are out of date")

// Mode selects what a run does with rendered contracts
type Mode int

const (
	// ModeWrite writes changed contracts and removes outputs of types that
	// no longer carry a marker
	ModeWrite Mode = iota
	// ModeCheck only compares rendered contracts with the files on disk
	ModeCheck
)

// GenerationSummary contains information about one run
type GenerationSummary struct {
	RunID          uuid.UUID
	FilesScanned   int
	FilesCached    int
	Declarations   int // marked types after partial parts were merged
	Synthesized    int // contracts rendered because their snapshot changed
	Written        int
	Unchanged      int
	Removed        int
	Warnings       int
	Errors         int
	GeneratedFiles []string
	RemovedFiles   []string
	StaleFiles     []string
	Duration       time.Duration
}

// Stats returns the summary counters for DiagnosticSystem.Summary
func (s GenerationSummary) Stats() map[string]interface{} {
	return map[string]interface{}{
		"Files scanned":       s.FilesScanned,
		"Types found":         s.Declarations,
		"Contracts written":   s.Written,
		"Contracts unchanged": s.Unchanged,
		"Outputs removed":     s.Removed,
		"Warnings":            s.Warnings,
		"Errors":              s.Errors,
	}
}

// Generator coordinates the CLI generation process. A Generator keeps its
// pipeline and file cache between runs, so watch mode only re-renders
// contracts whose snapshot changed.
type Generator struct {
	mu          sync.Mutex
	cfg         *Config
	scanner     *DirectoryScanner
	loader      *SourceLoader
	pipeline    *pipeline.Pipeline
	reporter    *DiagnosticReporter
	diagnostics *utils.DiagnosticSystem
	log         *zap.SugaredLogger
	outputs     map[pipeline.Identity]string // output path per identity of the last write run
}

// NewGenerator creates a CLI generator from a resolved configuration
func NewGenerator(cfg *Config, diagnostics *utils.DiagnosticSystem, reporter *DiagnosticReporter) (*Generator, error) {
	log := logger.Named("generate")
	p, err := pipeline.New(pipeline.Config{
		CacheSize:   cfg.Pipeline.CacheSize,
		Concurrency: cfg.Pipeline.Concurrency,
		Options:     cfg.GeneratorOptions(nil),
		Logger:      log.Named("pipeline"),
	})
	if err != nil {
		return nil, err
	}
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(cfg.DiagnosticLevel())
	}
	if reporter == nil {
		reporter = NewDiagnosticReporter(cfg.Verbose)
	}

	return &Generator{
		cfg:         cfg,
		scanner:     NewDirectoryScanner(cfg.Extension),
		loader:      NewSourceLoader(cfg.Markers...),
		pipeline:    p,
		reporter:    reporter,
		diagnostics: diagnostics,
		log:         log,
		outputs:     make(map[pipeline.Identity]string),
	}, nil
}

// Generate writes the contracts of every marked type found under patterns
func (g *Generator) Generate(ctx context.Context, patterns []string) (GenerationSummary, error) {
	return g.Run(ctx, patterns, ModeWrite)
}

// Check reports, without writing, whether generated files are up to date.
// The banner's Generated line is ignored in the comparison.
func (g *Generator) Check(ctx context.Context, patterns []string) (GenerationSummary, error) {
	return g.Run(ctx, patterns, ModeCheck)
}

// Run executes one complete generation pass. Front-end errors do not stop
// the run; they are collected and returned together at the end.
func (g *Generator) Run(ctx context.Context, patterns []string, mode Mode) (summary GenerationSummary, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	startTime := time.Now()
	summary.RunID = uuid.New()
	log := g.log.With("run", summary.RunID.String())
	defer func() {
		summary.Duration = time.Since(startTime)
	}()

	log.Debugw("run started", "patterns", patterns, "check", mode == ModeCheck)

	g.diagnostics.StartProgress("Scanning for sources")
	files, err := g.scanner.ScanFiles(patterns)
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return summary, err
	}
	summary.FilesScanned = len(files)
	g.diagnostics.EndProgress(true, fmt.Sprintf("%d files", len(files)))

	var failures *errors.MultipleErrors
	var decls []models.TypeDeclaration

	g.diagnostics.StartProgress("Reading declarations")
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			g.diagnostics.EndProgress(false, "")
			return summary, err
		}
		src, err := g.loader.Load(path)
		if err != nil {
			summary.Errors++
			collect(&failures, err)
			continue
		}
		if src.Cached {
			summary.FilesCached++
		}
		g.report(&summary, src.Diagnostics)
		decls = append(decls, src.Declarations...)
	}
	g.diagnostics.EndProgress(failures == nil, fmt.Sprintf("%d declarations", len(decls)))

	g.diagnostics.StartProgress("Synthesizing contracts")
	results, err := g.pipeline.ProcessAll(ctx, decls)
	if err != nil {
		g.diagnostics.EndProgress(false, "")
		return summary, err
	}
	g.diagnostics.EndProgress(true, "")
	summary.Declarations = len(results)

	current := make(map[pipeline.Identity]string, len(results))
	claimed := make(map[string]pipeline.Identity, len(results))

	for _, res := range results {
		g.report(&summary, res.Diagnostics)
		if res.Changed {
			summary.Synthesized++
		}

		path := g.outputPath(res)
		if owner, taken := claimed[path]; taken {
			summary.Errors++
			errors.AddToMultiple(&failures, errors.ConflictError(res.Location,
				"%s and %s both generate %s", owner, res.Identity, filepath.Base(path)).
				WithContext("path", path).
				WithSuggestion("Give one of the types a custom contract name in its marker"))
			continue
		}
		claimed[path] = res.Identity
		current[res.Identity] = path
		content := res.Contract.Bytes()

		if mode == ModeCheck {
			stale, err := isStale(path, content)
			if err != nil {
				summary.Errors++
				collect(&failures, err)
				continue
			}
			if stale {
				summary.StaleFiles = append(summary.StaleFiles, path)
				g.diagnostics.Warn("%s is out of date", path)
			} else {
				summary.Unchanged++
			}
			continue
		}

		written, err := writeIfChanged(path, content)
		if err != nil {
			summary.Errors++
			collect(&failures, err)
			continue
		}
		if written {
			summary.Written++
			summary.GeneratedFiles = append(summary.GeneratedFiles, path)
			g.diagnostics.PhaseItem(path)
			log.Infow("contract written", "identity", res.Identity, "path", path)
		} else {
			summary.Unchanged++
			g.diagnostics.Verbose("%s unchanged", path)
		}
	}

	if mode == ModeWrite {
		g.removeVanished(&summary, &failures, current, claimed)
		g.outputs = current
	}

	log.Infow("run finished",
		"files", summary.FilesScanned,
		"types", summary.Declarations,
		"written", summary.Written,
		"unchanged", summary.Unchanged,
		"removed", summary.Removed,
		"errors", summary.Errors,
		"duration", time.Since(startTime))

	if err := failures.ErrOrNil(); err != nil {
		return summary, err
	}
	if summary.Errors > 0 {
		return summary, errors.Newf(errors.ValidationErrorCode, "%d errors reported", summary.Errors).
			WithSuggestion("Fix the declarations reported above")
	}
	if len(summary.StaleFiles) > 0 {
		return summary, errors.Wrapf(errors.ValidationErrorCode, ErrStale,
			"%d generated files need regeneration", len(summary.StaleFiles)).
			WithContext("files", summary.StaleFiles).
			WithSuggestion("Run 'autoiface generate' and commit the result")
	}
	return summary, nil
}

// removeVanished deletes outputs of the previous run whose type is gone or
// now renders to a different file
func (g *Generator) removeVanished(summary *GenerationSummary, failures **errors.MultipleErrors,
	current map[pipeline.Identity]string, claimed map[string]pipeline.Identity) {
	for id, oldPath := range g.outputs {
		newPath, alive := current[id]
		if !alive {
			g.pipeline.Forget(id)
		}
		if alive && newPath == oldPath {
			continue
		}
		if _, reused := claimed[oldPath]; reused {
			continue
		}
		removed, err := removeGenerated(oldPath)
		if err != nil {
			summary.Errors++
			collect(failures, err)
			continue
		}
		if removed {
			summary.Removed++
			summary.RemovedFiles = append(summary.RemovedFiles, oldPath)
			g.diagnostics.PhaseItem("removed " + oldPath)
			g.log.Infow("output removed", "identity", id, "path", oldPath)
		}
	}
}

// outputPath places a contract in the configured output directory, or
// next to the file that declared the marked type
func (g *Generator) outputPath(res pipeline.Result) string {
	dir := g.cfg.Output
	if dir == "" {
		dir = filepath.Dir(res.Location.File)
	}
	return filepath.Join(dir, res.Contract.FileName)
}

// report prints diagnostics and counts them
func (g *Generator) report(summary *GenerationSummary, diags []models.Diagnostic) {
	for _, d := range diags {
		switch d.Severity {
		case models.SeverityError:
			summary.Errors++
		case models.SeverityWarning:
			summary.Warnings++
		}
		if d.Severity == models.SeverityError || g.diagnostics.Level() >= utils.DiagnosticWarn {
			g.reporter.ReportDiagnostic(d)
		}
	}
}

// collect adds err to the run's failures, giving uncoded errors a code
func collect(failures **errors.MultipleErrors, err error) {
	var coded errors.CodedError
	if !errors.As(err, &coded) {
		coded = errors.Wrap(errors.UnknownErrorCode, "generation step failed", err)
	}
	errors.AddToMultiple(failures, coded)
}

// writeIfChanged writes content unless the file already holds the same
// contract. Files without the generated banner are never overwritten.
func writeIfChanged(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if !templates.IsGenerated(string(existing)) {
			return false, errors.ConflictError(models.SourceLocation{File: path},
				"refusing to overwrite %s: file was not generated", filepath.Base(path)).
				WithSuggestion("Rename the hand-written file or give the contract a custom name")
		}
		if templates.StripTimestamp(string(existing)) == templates.StripTimestamp(string(content)) {
			return false, nil
		}
	case !os.IsNotExist(err):
		return false, errors.WrapFileSystemError("read", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, errors.WrapFileSystemError("create directory for", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return false, errors.WrapFileSystemError("write", path, err)
	}
	return true, nil
}

// isStale reports whether path is missing or differs from content
func isStale(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, errors.WrapFileSystemError("read", path, err)
	}
	return templates.StripTimestamp(string(existing)) != templates.StripTimestamp(string(content)), nil
}
