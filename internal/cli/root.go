package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/toyz/autoiface/internal/errors"
	"github.com/toyz/autoiface/internal/generator"
	"github.com/toyz/autoiface/internal/logger"
	"github.com/toyz/autoiface/internal/utils"
)

// App holds what the commands of one invocation share
type App struct {
	v           *viper.Viper
	cfg         *Config
	configFile  string
	workDir     string
	diagnostics *utils.DiagnosticSystem
	reporter    *DiagnosticReporter
}

// NewApp creates an application rooted at the working directory
func NewApp() *App {
	wd, _ := os.Getwd()
	return &App{
		v:        NewViper(),
		workDir:  wd,
		reporter: NewDiagnosticReporter(false),
	}
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string) int {
	app := NewApp()
	root := app.RootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	logger.Sync()
	return ExitError(app.reporter, err)
}

// RootCommand builds the command tree
func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "autoiface",
		Short: "Generate C# interfaces from annotated types",
		Long: `autoiface reads C# sources and *.autoiface.yaml manifests, finds types
carrying the [AutoInterface] marker and writes one interface per type,
mirroring its public instance members.

Paths may be files, directories or Go-style recursive patterns:
  ./...              Scan current directory and all subdirectories
  ./src/...          Scan src and all its subdirectories
  ./src/Services     Scan only the specific directory (no recursion)`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: "+ConfigFileName+" searched upward)")
	flags.BoolP("verbose", "v", false, "enable verbose output and detailed error reporting")
	flags.BoolP("quiet", "q", false, "only show errors and final results")
	flags.StringP("output", "o", "", "directory for generated files (default: next to each source)")
	flags.String("extension", generator.DefaultExtension, "extension of generated files")
	flags.StringSlice("marker", []string{generator.DefaultMarkerName}, "marker attribute names")
	flags.Bool("timestamp", false, "write a Generated line into the banner")
	flags.String("log-level", "warn", "structured log level (debug, info, warn, error)")
	flags.Bool("log-json", false, "write structured logs as JSON")

	bindings := map[string]string{
		"output":             "output",
		"extension":          "extension",
		"markers":            "marker",
		"contract.timestamp": "timestamp",
		"log.level":          "log-level",
		"log.json":           "log-json",
	}
	for key, flag := range bindings {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		a.generateCommand(),
		a.checkCommand(),
		a.cleanCommand(),
		a.watchCommand(),
		a.markerCommand(),
		a.versionCommand(),
	)
	return root
}

// setup resolves configuration and initializes output for every command
func (a *App) setup(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	if cmd.ErrOrStderr() != os.Stderr {
		a.reporter.SetOutput(cmd.ErrOrStderr())
	}
	a.reporter.verbose = verbose

	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := LoadConfig(a.v, a.configFile, a.workDir)
	if err != nil {
		return err
	}
	cfg.Verbose = verbose
	cfg.Quiet = quiet
	a.cfg = cfg

	if err := logger.Initialize(logger.Options{
		JSON:   cfg.Log.JSON,
		Level:  cfg.Log.Level,
		Output: cmd.ErrOrStderr(),
	}); err != nil {
		return err
	}

	a.diagnostics = utils.NewDiagnosticSystem(cfg.DiagnosticLevel())
	if cmd.OutOrStdout() != os.Stdout {
		a.diagnostics.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	if cfg.File != "" {
		a.diagnostics.Verbose("Using config %s", cfg.File)
	}
	return nil
}

// patterns defaults to the whole working tree
func patterns(args []string) []string {
	if len(args) == 0 {
		return []string{"./..."}
	}
	return args
}

func (a *App) newGenerator() (*Generator, error) {
	return NewGenerator(a.cfg, a.diagnostics, a.reporter)
}

func (a *App) generateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [paths...]",
		Short: "Write interfaces for all marked types",
		Example: `  autoiface generate ./...
  autoiface generate -o Generated ./src/...
  autoiface generate --marker GenerateInterface ./src/Services`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := a.newGenerator()
			if err != nil {
				return err
			}
			a.diagnostics.Header(a.cfg.Tool.Name, "generating contracts")
			a.diagnostics.Indent()
			summary, err := gen.Generate(cmd.Context(), patterns(args))
			a.diagnostics.Unindent()
			a.diagnostics.Summary("Generation complete", summary.Stats())
			return err
		},
	}
}

func (a *App) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [paths...]",
		Short: "Fail when generated interfaces are missing or out of date",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := a.newGenerator()
			if err != nil {
				return err
			}
			summary, err := gen.Check(cmd.Context(), patterns(args))
			if err == nil {
				a.diagnostics.Success("%d contracts up to date", summary.Unchanged)
			}
			return err
		},
	}
}

func (a *App) cleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [paths...]",
		Short: "Remove generated files",
		Long:  "Remove *.g.<ext> files that start with the auto-generated banner. Other files are left alone.",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := NewCleaner(a.cfg.Extension).CleanGeneratedFiles(patterns(args))
			a.diagnostics.Indent()
			for _, path := range removed {
				a.diagnostics.PhaseItem("removed " + path)
			}
			a.diagnostics.Unindent()
			if err != nil {
				return err
			}
			a.diagnostics.Success("%d generated files removed", len(removed))
			return nil
		},
	}
}

func (a *App) watchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Regenerate interfaces whenever sources change",
		RunE: func(cmd *cobra.Command, args []string) error {
			if d, _ := cmd.Flags().GetDuration("debounce"); cmd.Flags().Changed("debounce") {
				a.cfg.Watch.Debounce = d
			}
			gen, err := a.newGenerator()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := NewWatcher(gen, patterns(args))
			w.OnRun = func(summary GenerationSummary, err error) {
				if err != nil {
					a.diagnostics.Error("regeneration failed")
					a.reporter.ReportError(err)
					return
				}
				if summary.Written+summary.Removed > 0 {
					a.diagnostics.Success("%d written, %d removed, %d unchanged",
						summary.Written, summary.Removed, summary.Unchanged)
				}
			}
			a.diagnostics.Header(a.cfg.Tool.Name, "watching for changes (Ctrl+C to stop)")
			return w.Run(ctx)
		},
	}
	cmd.Flags().Duration("debounce", DefaultDebounce, "wait this long for changes to settle")
	return cmd
}

func (a *App) markerCommand() *cobra.Command {
	var name, namespace, dir string
	cmd := &cobra.Command{
		Use:   "marker",
		Short: "Print the marker attribute declaration",
		Long: `Print the C# source declaring the marker attribute. With --write the
source is written into the given directory instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := generator.MarkerOptions{Options: a.cfg.GeneratorOptions(nil)}
			opts.Name, opts.Namespace = splitMarker(a.cfg.Markers[0])
			if name != "" {
				opts.Name = name
			}
			if namespace != "" {
				opts.Namespace = namespace
			}
			if err := utils.IsCSharpIdentifier("name")(opts.Name); err != nil {
				return errors.NewValidationError("name", opts.Name, "must be a valid C# identifier")
			}
			if opts.Namespace != "" {
				if err := utils.IsQualifiedName("namespace")(opts.Namespace); err != nil {
					return errors.NewValidationError("namespace", opts.Namespace, "must be a dotted C# name")
				}
			}

			contract, err := generator.MarkerSource(opts)
			if err != nil {
				return err
			}
			if dir == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), contract.String())
				return err
			}

			path := filepath.Join(dir, contract.FileName)
			written, err := writeIfChanged(path, contract.Bytes())
			if err != nil {
				return err
			}
			if written {
				a.diagnostics.PhaseItem(path)
			} else {
				a.diagnostics.Info("%s unchanged", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "attribute name (default: the first configured marker)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace of the attribute (default: "+generator.DefaultMarkerNamespace+")")
	cmd.Flags().StringVarP(&dir, "write", "w", "", "write the declaration into this directory")
	return cmd
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s %s/%s)\n",
				generator.DefaultToolName, generator.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return err
		},
	}
}

// splitMarker splits a configured marker such as
// "Contracts.GenerateInterfaceAttribute" into name and namespace
func splitMarker(marker string) (string, string) {
	marker = strings.TrimPrefix(marker, "global::")
	i := strings.LastIndex(marker, ".")
	if i < 0 {
		return strings.TrimSuffix(marker, "Attribute"), ""
	}
	return strings.TrimSuffix(marker[i+1:], "Attribute"), marker[:i]
}

// ExitError reports err and converts it to an exit code: 2 when generated
// files are stale, 1 for any other failure
func ExitError(reporter *DiagnosticReporter, err error) int {
	if err == nil {
		return 0
	}
	reporter.ReportError(err)
	if errors.Is(err, ErrStale) {
		return 2
	}
	return 1
}
