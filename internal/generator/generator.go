// Package generator turns snapshots into contract text.
package generator

import (
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/toyz/autoiface/internal/errors"
	"github.com/toyz/autoiface/internal/format"
	"github.com/toyz/autoiface/internal/models"
	"github.com/toyz/autoiface/internal/snapshot"
	"github.com/toyz/autoiface/internal/templates"
)

const (
	// DefaultToolName is written into the banner when Options.ToolName is empty
	DefaultToolName = "autoiface"
	// Version is the tool version written into the banner by default
	Version = "1.0.0"
	// DefaultExtension is the output file extension
	DefaultExtension = "cs"
	// DefaultMarkerName is the marker attribute name without its suffix
	DefaultMarkerName = "AutoInterface"
	// DefaultMarkerNamespace holds the marker attribute declaration
	DefaultMarkerNamespace = "AutoInterfaces"
	// CompilerGeneratedAttribute is placed on contracts when requested
	CompilerGeneratedAttribute = "[global::System.Runtime.CompilerServices.CompilerGenerated]"
)

// Options controls contract rendering. The zero value is usable.
type Options struct {
	ToolName          string
	Version           string
	Now               func() time.Time // when set, the banner carries a Generated line
	IndentSize        int
	CompilerGenerated bool
	EventKeyword      bool
	Extension         string
}

func (o Options) toolName() string {
	if o.ToolName == "" {
		return DefaultToolName
	}
	return o.ToolName
}

func (o Options) version() string {
	if o.Version == "" {
		return Version
	}
	return o.Version
}

func (o Options) extension() string {
	if o.Extension == "" {
		return DefaultExtension
	}
	return strings.TrimPrefix(o.Extension, ".")
}

// NormalizeVersion validates a semantic version and returns it in
// canonical form without the leading "v", e.g. "1.2" becomes "1.2.0"
func NormalizeVersion(v string) (string, error) {
	raw := strings.TrimSpace(v)
	if !strings.HasPrefix(raw, "v") {
		raw = "v" + raw
	}
	if !semver.IsValid(raw) {
		return "", errors.Newf(errors.ConfigurationErrorCode, "invalid tool version %q", v).
			WithSuggestion("Use a semantic version such as 1.4.0")
	}
	return strings.TrimPrefix(semver.Canonical(raw), "v"), nil
}

// FileName returns the output file name for a snapshot, "<ContractName>.g.<ext>"
func FileName(snap snapshot.Snapshot, opts Options) string {
	return snap.ContractName() + ".g." + opts.extension()
}

// Synthesize renders the contract of a snapshot. The snapshot is only
// read. An error is returned only when the banner template fails.
func Synthesize(snap snapshot.Snapshot, opts Options) (models.Contract, error) {
	banner := templates.BannerData{
		ToolName: opts.toolName(),
		Version:  opts.version(),
	}
	if opts.Now != nil {
		banner.Generated = opts.Now().UTC().Format(time.RFC3339)
	}
	header, err := templates.RenderBanner(banner)
	if err != nil {
		return models.Contract{}, errors.WrapTemplateError("banner", "render", err)
	}

	b := templates.NewCodeBuilder(opts.IndentSize)
	b.WriteLines(header...)
	b.NewLine()

	if len(snap.Imports) > 0 {
		for _, imp := range snap.Imports {
			b.WriteLine("using " + imp + ";")
		}
		b.NewLine()
	}

	if snap.Namespace != "" {
		b.WriteLine("namespace " + snap.Namespace).OpenBlock()
	}
	if opts.CompilerGenerated {
		b.WriteLine(CompilerGeneratedAttribute)
	}

	decl := DeclarationLine(snap)
	if len(snap.Members) == 0 {
		b.WriteLine(decl + " { }")
	} else {
		b.WriteLine(decl).OpenBlock()
		sigOpts := format.Options{EventKeyword: opts.EventKeyword}
		for _, m := range snap.Members {
			b.WriteLine(format.Signature(m, sigOpts))
		}
	}
	b.CloseAllBlocks()

	return models.Contract{
		FileName: FileName(snap, opts),
		Lines:    b.Lines(),
	}, nil
}

// DeclarationLine renders "<modifier> interface <Name><TypeArgs>"
func DeclarationLine(snap snapshot.Snapshot) string {
	return snap.Modifier + " interface " + snap.ContractName() + snap.TypeArguments
}

// MarkerOptions controls the marker declaration source
type MarkerOptions struct {
	Options
	Name      string // attribute name without the Attribute suffix
	Namespace string
}

// MarkerFileName returns the file name of the marker declaration
func MarkerFileName(opts MarkerOptions) string {
	return markerName(opts) + "Attribute.g." + opts.extension()
}

// MarkerSource renders the static marker attribute declaration with the
// banner in front of it
func MarkerSource(opts MarkerOptions) (models.Contract, error) {
	header, err := templates.RenderBanner(templates.BannerData{
		ToolName: opts.toolName(),
		Version:  opts.version(),
	})
	if err != nil {
		return models.Contract{}, errors.WrapTemplateError("banner", "render", err)
	}

	ns := opts.Namespace
	if ns == "" {
		ns = DefaultMarkerNamespace
	}
	body, err := templates.RenderMarker(templates.MarkerData{
		Namespace:  ns,
		Name:       markerName(opts),
		IndentSize: opts.IndentSize,
	})
	if err != nil {
		return models.Contract{}, errors.WrapTemplateError("marker", "render", err)
	}

	lines := append(header, strings.Split(body, "\n")...)
	return models.Contract{FileName: MarkerFileName(opts), Lines: lines}, nil
}

func markerName(opts MarkerOptions) string {
	name := strings.TrimSuffix(opts.Name, "Attribute")
	if name == "" {
		return DefaultMarkerName
	}
	return name
}
