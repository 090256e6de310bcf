// Package autoiface is the public entry point for hosts that embed the
// generator. A host hands in type declarations, keeps the returned
// snapshots and only calls Synthesize when a snapshot changed:
//
//	snap := autoiface.Extract(decl)
//	if !snap.Equal(previous) {
//		contract, err := autoiface.Synthesize(snap, autoiface.Options{})
//		...
//	}
//
// NewPipeline wraps that discipline in a bounded cache.
package autoiface

import (
	"github.com/toyz/autoiface/internal/csharp"
	"github.com/toyz/autoiface/internal/generator"
	"github.com/toyz/autoiface/internal/manifest"
	"github.com/toyz/autoiface/internal/models"
	"github.com/toyz/autoiface/internal/pipeline"
	"github.com/toyz/autoiface/internal/snapshot"
)

// Input model
type (
	TypeDeclaration  = models.TypeDeclaration
	Member           = models.Member
	Parameter        = models.Parameter
	Accessor         = models.Accessor
	GenericParameter = models.GenericParameter
	Marker           = models.Marker
	MarkerArgument   = models.MarkerArgument
	Import           = models.Import
	Modifier         = models.Modifier
	MemberKind       = models.MemberKind
	AccessorKind     = models.AccessorKind
	EventStyle       = models.EventStyle
	SourceLocation   = models.SourceLocation
)

const (
	MemberMethod      = models.MemberMethod
	MemberProperty    = models.MemberProperty
	MemberEvent       = models.MemberEvent
	MemberField       = models.MemberField
	MemberIndexer     = models.MemberIndexer
	MemberConstructor = models.MemberConstructor
	MemberOperator    = models.MemberOperator

	AccessorGet    = models.AccessorKindGet
	AccessorSet    = models.AccessorKindSet
	AccessorInit   = models.AccessorKindInit
	AccessorAdd    = models.AccessorKindAdd
	AccessorRemove = models.AccessorKindRemove

	EventFieldLike    = models.EventFieldLike
	EventPropertyLike = models.EventPropertyLike

	ModPublic    = models.ModPublic
	ModPrivate   = models.ModPrivate
	ModProtected = models.ModProtected
	ModInternal  = models.ModInternal
	ModStatic    = models.ModStatic
	ModOverride  = models.ModOverride
	ModPartial   = models.ModPartial
)

// ParseModifier maps a keyword such as "public" or "static" to its flag
func ParseModifier(keyword string) (Modifier, bool) {
	return models.ParseModifier(keyword)
}

// Output model
type (
	Snapshot         = snapshot.Snapshot
	MemberDescriptor = models.MemberDescriptor
	Contract         = models.Contract
	Diagnostic       = models.Diagnostic
	Options          = generator.Options
)

// Incremental host
type (
	Pipeline       = pipeline.Pipeline
	PipelineConfig = pipeline.Config
	Identity       = pipeline.Identity
	Result         = pipeline.Result
)

// Extract builds the structural snapshot of a declaration. It never fails;
// members that cannot appear on the contract are left out.
func Extract(decl TypeDeclaration) Snapshot {
	return snapshot.Extract(decl)
}

// Synthesize renders the contract text of a snapshot
func Synthesize(snap Snapshot, opts Options) (Contract, error) {
	return generator.Synthesize(snap, opts)
}

// Merge folds the partial declarations of one type into one
func Merge(parts []TypeDeclaration) (TypeDeclaration, []Diagnostic) {
	return snapshot.MergeDeclarations(parts)
}

// IdentityOf returns the cache identity of a declaration
func IdentityOf(decl TypeDeclaration) Identity {
	return pipeline.IdentityOf(decl)
}

// NewPipeline creates an incremental pipeline. Zero config values take
// the defaults.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	return pipeline.New(cfg)
}

// ParseSource reads the marked declarations of a C# source text. An
// empty markers list recognises [AutoInterface].
func ParseSource(filename, src string, markers ...string) ([]TypeDeclaration, []Diagnostic, error) {
	file, err := csharp.NewParser(markers...).ParseSource(filename, src)
	if err != nil {
		return nil, nil, err
	}
	return file.Declarations, file.Diagnostics, nil
}

// ParseManifest reads declarations from YAML manifest content
func ParseManifest(filename string, content []byte) ([]TypeDeclaration, error) {
	return manifest.Parse(filename, content)
}
