// Package manifest reads declarations described as YAML documents. A
// manifest is an alternative to C# sources for hosts that already hold
// the structural facts of their types.
package manifest

import (
	"bytes"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/autoiface/internal/errors"
	"github.com/toyz/autoiface/internal/models"
)

// Suffix is the file name suffix of manifest files
const Suffix = ".autoiface.yaml"

// IsManifest reports whether path names a manifest file
func IsManifest(path string) bool {
	return strings.HasSuffix(path, Suffix) || strings.HasSuffix(path, ".autoiface.yml")
}

// Document is the YAML shape of one manifest file
type Document struct {
	Namespace string  `yaml:"namespace"`
	Usings    []Using `yaml:"usings"`
	Types     []Type  `yaml:"types"`
}

// Using is either a plain namespace string or a mapping with alias,
// static and global flags
type Using struct {
	Name   string `yaml:"name"`
	Alias  string `yaml:"alias,omitempty"`
	Global bool   `yaml:"global,omitempty"`
	Static bool   `yaml:"static,omitempty"`
}

// UnmarshalYAML accepts the scalar shorthand "System.Linq"
func (u *Using) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		u.Name = node.Value
		return nil
	}
	type plain Using
	return node.Decode((*plain)(u))
}

// Type describes one declaration
type Type struct {
	Name           string          `yaml:"name"`
	Kind           string          `yaml:"kind"`
	Namespace      string          `yaml:"namespace"`
	Modifiers      []string        `yaml:"modifiers"`
	Marker         *Marker         `yaml:"marker"`
	TypeParameters []TypeParameter `yaml:"typeParameters"`
	Members        []Member        `yaml:"members"`

	line int
}

// UnmarshalYAML remembers the line the type starts on
func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	type plain Type
	if err := node.Decode((*plain)(t)); err != nil {
		return err
	}
	t.line = node.Line
	return nil
}

// Marker requests a contract. An empty mapping or `true` means no
// custom name.
type Marker struct {
	Name       string `yaml:"name"`
	CustomName string `yaml:"customName"`

	off bool
}

// UnmarshalYAML accepts `marker: true`, `marker: false` and `marker: IName`
func (m *Marker) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Tag == "!!bool" {
			m.off = node.Value == "false"
			return nil
		}
		m.CustomName = node.Value
		return nil
	}
	type plain Marker
	return node.Decode((*plain)(m))
}

// TypeParameter is a type parameter with its constraint list written
// the way a where clause would be, e.g. [class, IComparable<T>, new()]
type TypeParameter struct {
	Name        string   `yaml:"name"`
	Constraints []string `yaml:"constraints"`
}

// UnmarshalYAML accepts the scalar shorthand "T"
func (p *TypeParameter) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Name = node.Value
		return nil
	}
	type plain TypeParameter
	return node.Decode((*plain)(p))
}

// Member describes one member
type Member struct {
	Kind           string          `yaml:"kind"`
	Name           string          `yaml:"name"`
	Type           string          `yaml:"type"`
	Modifiers      []string        `yaml:"modifiers"`
	Parameters     []Parameter     `yaml:"parameters"`
	TypeParameters []TypeParameter `yaml:"typeParameters"`
	Accessors      []Accessor      `yaml:"accessors"`
	Expression     bool            `yaml:"expression"`
}

// Parameter is a method parameter; modifier is ref, out, in, params or this
type Parameter struct {
	Modifier string `yaml:"modifier"`
	Type     string `yaml:"type"`
	Name     string `yaml:"name"`
}

// Accessor is either "get" or a mapping such as {kind: set, modifiers: [private]}
type Accessor struct {
	Kind      string   `yaml:"kind"`
	Modifiers []string `yaml:"modifiers"`
}

// UnmarshalYAML accepts the scalar shorthand "get"
func (a *Accessor) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		a.Kind = node.Value
		return nil
	}
	type plain Accessor
	return node.Decode((*plain)(a))
}

// Load reads and converts a manifest file
func Load(path string) ([]models.TypeDeclaration, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}
	return Parse(path, content)
}

// Parse decodes all YAML documents in content and converts their types
// into declarations. Errors carry the manifest line of the failing type.
func Parse(path string, content []byte) ([]models.TypeDeclaration, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var decls []models.TypeDeclaration
	for {
		var doc Document
		if err := dec.Decode(&doc); err != nil {
			if err == io.EOF {
				return decls, nil
			}
			return nil, errors.WrapParseError(path, err).
				WithSuggestion("check the manifest against the documented schema")
		}

		for _, t := range doc.Types {
			decl, err := t.declaration(path, doc)
			if err != nil {
				return nil, err
			}
			decls = append(decls, decl)
		}
	}
}

var typeKinds = map[string]models.TypeKind{
	"":              models.TypeKindClass,
	"class":         models.TypeKindClass,
	"struct":        models.TypeKindStruct,
	"record":        models.TypeKindRecord,
	"record class":  models.TypeKindRecord,
	"record struct": models.TypeKindRecordStruct,
}

var memberKinds = map[string]models.MemberKind{
	"method":      models.MemberMethod,
	"property":    models.MemberProperty,
	"event":       models.MemberEvent,
	"field":       models.MemberField,
	"indexer":     models.MemberIndexer,
	"constructor": models.MemberConstructor,
	"destructor":  models.MemberDestructor,
	"operator":    models.MemberOperator,
	"type":        models.MemberNestedType,
}

var accessorKinds = map[string]models.AccessorKind{
	"get":    models.AccessorKindGet,
	"set":    models.AccessorKindSet,
	"init":   models.AccessorKindInit,
	"add":    models.AccessorKindAdd,
	"remove": models.AccessorKindRemove,
}

func (t Type) declaration(path string, doc Document) (models.TypeDeclaration, error) {
	loc := models.SourceLocation{File: path, Line: t.line, Column: 1}
	invalid := func(format string, args ...interface{}) *errors.BaseError {
		return errors.Newf(errors.ValidationErrorCode, format, args...).WithLocation(loc)
	}

	if t.Name == "" {
		return models.TypeDeclaration{}, invalid("type without a name")
	}
	kind, ok := typeKinds[t.Kind]
	if !ok {
		return models.TypeDeclaration{}, invalid("type %s: unknown kind %q", t.Name, t.Kind).
			WithSuggestion("use class, struct, record or record struct")
	}
	mods, err := modifiers(t.Modifiers)
	if err != nil {
		return models.TypeDeclaration{}, invalid("type %s: %v", t.Name, err)
	}

	decl := models.TypeDeclaration{
		Name:      t.Name,
		Kind:      kind,
		Modifiers: mods,
		Partial:   mods.Has(models.ModPartial),
		Location:  loc,
	}
	ns := t.Namespace
	if ns == "" {
		ns = doc.Namespace
	}
	if ns != "" {
		decl.Namespaces = []string{ns}
	}
	for _, u := range doc.Usings {
		decl.Imports = append(decl.Imports, models.Import(u))
	}
	if t.Marker != nil && !t.Marker.off {
		name := t.Marker.Name
		if name == "" {
			name = "AutoInterface"
		}
		decl.Marker = &models.Marker{Name: name}
		if t.Marker.CustomName != "" {
			decl.Marker.Arguments = []models.MarkerArgument{{Value: t.Marker.CustomName}}
		}
	}
	decl.TypeParameters = typeParameters(t.TypeParameters)

	for i, m := range t.Members {
		member, err := m.member(loc)
		if err != nil {
			return models.TypeDeclaration{}, invalid("type %s, member %d: %v", t.Name, i+1, err)
		}
		decl.Members = append(decl.Members, member)
	}
	return decl, nil
}

func (m Member) member(loc models.SourceLocation) (models.Member, error) {
	kind, ok := memberKinds[m.Kind]
	if !ok {
		return models.Member{}, errors.Errorf("unknown member kind %q", m.Kind)
	}
	if m.Name == "" {
		return models.Member{}, errors.Errorf("%s without a name", m.Kind)
	}
	mods, err := modifiers(m.Modifiers)
	if err != nil {
		return models.Member{}, err
	}

	out := models.Member{
		Kind:             kind,
		Name:             m.Name,
		Type:             m.Type,
		Modifiers:        mods,
		TypeParameters:   typeParameters(m.TypeParameters),
		ExpressionBodied: m.Expression,
		Location:         loc,
	}
	for _, p := range m.Parameters {
		out.Parameters = append(out.Parameters, models.Parameter(p))
	}
	for _, a := range m.Accessors {
		ak, ok := accessorKinds[a.Kind]
		if !ok {
			return models.Member{}, errors.Errorf("unknown accessor %q", a.Kind)
		}
		amods, err := modifiers(a.Modifiers)
		if err != nil {
			return models.Member{}, err
		}
		out.Accessors = append(out.Accessors, models.Accessor{Kind: ak, Modifiers: amods})
	}
	if kind == models.MemberEvent && len(out.Accessors) > 0 {
		out.EventStyle = models.EventPropertyLike
	}
	return out, nil
}

func modifiers(words []string) (models.Modifier, error) {
	var mods models.Modifier
	for _, w := range words {
		for _, f := range strings.Fields(w) {
			m, ok := models.ParseModifier(f)
			if !ok {
				return 0, errors.Errorf("unknown modifier %q", f)
			}
			mods |= m
		}
	}
	return mods, nil
}

// typeParameters converts where-clause style constraint lists into
// constraint facts
func typeParameters(params []TypeParameter) []models.GenericParameter {
	var out []models.GenericParameter
	for _, p := range params {
		gp := models.GenericParameter{Name: p.Name}
		for _, c := range p.Constraints {
			switch c = strings.TrimSpace(c); c {
			case "class", "class?":
				gp.ReferenceType = true
			case "struct":
				gp.ValueType = true
			case "unmanaged":
				gp.Unmanaged = true
			case "notnull":
				gp.NotNull = true
			case "new()":
				gp.Constructor = true
			case "", "default":
			default:
				gp.TypeConstraints = append(gp.TypeConstraints, c)
			}
		}
		out = append(out, gp)
	}
	return out
}
