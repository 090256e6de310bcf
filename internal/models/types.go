package models

import "strings"

// TypeKind represents the kind of an annotated type declaration
type TypeKind int

const (
	TypeKindClass TypeKind = iota
	TypeKindStruct
	TypeKindRecord
	TypeKindRecordStruct
)

// String returns the source keyword for the type kind
func (k TypeKind) String() string {
	switch k {
	case TypeKindStruct:
		return "struct"
	case TypeKindRecord:
		return "record"
	case TypeKindRecordStruct:
		return "record struct"
	default:
		return "class"
	}
}

// MemberKind represents the kind of a declared member
type MemberKind int

const (
	MemberMethod MemberKind = iota
	MemberProperty
	MemberEvent
	MemberField
	MemberIndexer
	MemberConstructor
	MemberDestructor
	MemberOperator
	MemberNestedType
)

// String returns a readable name for the member kind
func (k MemberKind) String() string {
	switch k {
	case MemberMethod:
		return "method"
	case MemberProperty:
		return "property"
	case MemberEvent:
		return "event"
	case MemberField:
		return "field"
	case MemberIndexer:
		return "indexer"
	case MemberConstructor:
		return "constructor"
	case MemberDestructor:
		return "destructor"
	case MemberOperator:
		return "operator"
	case MemberNestedType:
		return "nested type"
	default:
		return "unknown"
	}
}

// AccessorKind represents a property or event accessor
type AccessorKind int

const (
	AccessorKindGet AccessorKind = iota
	AccessorKindSet
	AccessorKindInit
	AccessorKindAdd
	AccessorKindRemove
)

// EventStyle tells how an event was declared in source
type EventStyle int

const (
	EventFieldLike    EventStyle = iota // event T Name;
	EventPropertyLike                   // event T Name { add; remove; }
)

// Modifier is a set of declaration modifiers
type Modifier uint32

const (
	ModPublic Modifier = 1 << iota
	ModPrivate
	ModProtected
	ModInternal
	ModFile
	ModStatic
	ModOverride
	ModVirtual
	ModAbstract
	ModSealed
	ModReadonly
	ModAsync
	ModNew
	ModPartial
	ModExtern
	ModUnsafe
	ModRequired
	ModConst
	ModVolatile
)

// accessMask covers every modifier that sets accessibility
const accessMask = ModPublic | ModPrivate | ModProtected | ModInternal | ModFile

var modifierKeywords = map[string]Modifier{
	"public":    ModPublic,
	"private":   ModPrivate,
	"protected": ModProtected,
	"internal":  ModInternal,
	"file":      ModFile,
	"static":    ModStatic,
	"override":  ModOverride,
	"virtual":   ModVirtual,
	"abstract":  ModAbstract,
	"sealed":    ModSealed,
	"readonly":  ModReadonly,
	"async":     ModAsync,
	"new":       ModNew,
	"partial":   ModPartial,
	"extern":    ModExtern,
	"unsafe":    ModUnsafe,
	"required":  ModRequired,
	"const":     ModConst,
	"volatile":  ModVolatile,
}

// ParseModifier maps a source keyword to its modifier flag
func ParseModifier(keyword string) (Modifier, bool) {
	m, ok := modifierKeywords[keyword]
	return m, ok
}

// Has reports whether every flag in other is set
func (m Modifier) Has(other Modifier) bool {
	return m&other == other
}

// HasAccessibility reports whether any accessibility keyword is present
func (m Modifier) HasAccessibility() bool {
	return m&accessMask != 0
}

// Accessibility renders the accessibility keywords of the set, defaulting
// to "public" when none is present
func (m Modifier) Accessibility() string {
	switch {
	case m.Has(ModProtected | ModInternal):
		return "protected internal"
	case m.Has(ModPrivate | ModProtected):
		return "private protected"
	case m.Has(ModPublic):
		return "public"
	case m.Has(ModInternal):
		return "internal"
	case m.Has(ModProtected):
		return "protected"
	case m.Has(ModPrivate):
		return "private"
	case m.Has(ModFile):
		return "file"
	default:
		return "public"
	}
}

// String lists the modifier keywords in a stable order
func (m Modifier) String() string {
	order := []string{
		"public", "private", "protected", "internal", "file", "static", "override",
		"virtual", "abstract", "sealed", "readonly", "async", "new", "partial",
		"extern", "unsafe", "required", "const", "volatile",
	}
	var parts []string
	for _, kw := range order {
		if m.Has(modifierKeywords[kw]) {
			parts = append(parts, kw)
		}
	}
	return strings.Join(parts, " ")
}
