package models

import (
	"slices"
	"strings"
)

// TypeDeclaration is the read-only description of one annotated type as
// handed over by a front end. Type names inside it are expected to be
// fully qualified already.
type TypeDeclaration struct {
	Name           string             // type identifier without type arguments
	Kind           TypeKind           // class, struct or record
	Namespaces     []string           // enclosing namespace scopes, outermost first
	Modifiers      Modifier           // declared modifiers of the type
	Marker         *Marker            // marker annotation, nil for unannotated partial parts
	TypeParameters []GenericParameter // type parameters of the type itself
	Members        []Member           // declared members in source order
	Imports        []Import           // import directives in scope, in source order
	Partial        bool               // declared with the partial modifier
	Location       SourceLocation     // where the declaration starts
}

// Arity returns the number of type parameters of the declaration
func (d TypeDeclaration) Arity() int {
	return len(d.TypeParameters)
}

// Marker is the annotation that requests a contract for a type
type Marker struct {
	Name      string           // annotation name as written, without the Attribute suffix
	Arguments []MarkerArgument // constructor arguments in order
}

// MarkerArgument is a single marker annotation argument
type MarkerArgument struct {
	Name  string // empty for positional arguments
	Value string // unquoted literal value
}

// CustomName returns the contract name requested through the marker, or
// an empty string when none was given
func (m *Marker) CustomName() string {
	if m == nil {
		return ""
	}
	for _, arg := range m.Arguments {
		if arg.Name == "customName" {
			return arg.Value
		}
	}
	for _, arg := range m.Arguments {
		if arg.Name == "" {
			return arg.Value
		}
	}
	return ""
}

// Import is a single import directive
type Import struct {
	Name   string // imported namespace or type
	Alias  string // alias for `using Alias = Name;`
	Global bool   // `global using`
	Static bool   // `using static`
}

// Text renders the directive body as it appears between "using" and ";"
func (i Import) Text() string {
	switch {
	case i.Alias != "":
		return i.Alias + " = " + i.Name
	case i.Static:
		return "static " + i.Name
	default:
		return i.Name
	}
}

// GenericParameter describes one type parameter and its constraint facts
type GenericParameter struct {
	Name            string   // parameter name
	ReferenceType   bool     // class
	Unmanaged       bool     // unmanaged
	ValueType       bool     // struct
	NotNull         bool     // notnull
	TypeConstraints []string // interface and base type constraints in declaration order
	Constructor     bool     // new()
}

// HasConstraints reports whether any constraint fact is present
func (p GenericParameter) HasConstraints() bool {
	return p.ReferenceType || p.Unmanaged || p.ValueType || p.NotNull ||
		len(p.TypeConstraints) > 0 || p.Constructor
}

// predefined returns the one predefined constraint that renders, chosen by
// priority class > unmanaged > struct > notnull, or 0 for none
func (p GenericParameter) predefined() int {
	switch {
	case p.ReferenceType:
		return 1
	case p.Unmanaged:
		return 2
	case p.ValueType:
		return 3
	case p.NotNull:
		return 4
	}
	return 0
}

// Equal compares two generic parameters by their rendered constraints.
// Predefined flags that lose to a higher-priority one are ignored.
func (p GenericParameter) Equal(other GenericParameter) bool {
	if p.Name != other.Name ||
		p.predefined() != other.predefined() ||
		p.Constructor != other.Constructor ||
		len(p.TypeConstraints) != len(other.TypeConstraints) {
		return false
	}
	for i := range p.TypeConstraints {
		if p.TypeConstraints[i] != other.TypeConstraints[i] {
			return false
		}
	}
	return true
}

// Member is one declared member of a type
type Member struct {
	Kind             MemberKind
	Name             string
	Type             string             // return, property, event or field type
	Modifiers        Modifier           // declared modifiers
	Parameters       []Parameter        // method, constructor and indexer parameters
	TypeParameters   []GenericParameter // the member's own type parameters
	Accessors        []Accessor         // property, indexer and event accessors
	ExpressionBodied bool               // property declared as `T P => expr;`
	EventStyle       EventStyle
	Implicit         bool // synthesized by the compiler rather than written
	Location         SourceLocation
}

// IsExtension reports whether the member is an extension method
func (m Member) IsExtension() bool {
	if m.Kind != MemberMethod || len(m.Parameters) == 0 {
		return false
	}
	return slices.Contains(strings.Fields(m.Parameters[0].Modifier), "this")
}

// Parameter is one method parameter
type Parameter struct {
	Modifier string // space separated ref, out, in, params, scoped, this; empty when none
	Type     string
	Name     string
}

// Accessor is one accessor of a property or event
type Accessor struct {
	Kind      AccessorKind
	Modifiers Modifier
}
