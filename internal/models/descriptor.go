package models

// DescriptorKind tags the variant held by a MemberDescriptor
type DescriptorKind int

const (
	DescriptorMethod DescriptorKind = iota
	DescriptorProperty
	DescriptorEvent
)

// String returns a readable name for the descriptor kind
func (k DescriptorKind) String() string {
	switch k {
	case DescriptorMethod:
		return "method"
	case DescriptorProperty:
		return "property"
	case DescriptorEvent:
		return "event"
	default:
		return "unknown"
	}
}

// AccessorSet is the set of public property accessors kept in a contract
type AccessorSet uint8

const (
	GetAccessor AccessorSet = 1 << iota
	SetAccessor
	InitAccessor
)

// Has reports whether every accessor in other is present
func (a AccessorSet) Has(other AccessorSet) bool {
	return a&other == other
}

// MemberDescriptor is the normalized public shape of a kept member.
// Only the fields of the active Kind are meaningful:
//
//	Method:   Type (return), Name, Parameters, TypeParameters
//	Property: Type, Name, Accessors
//	Event:    Type, Name, EventStyle
type MemberDescriptor struct {
	Kind           DescriptorKind
	Name           string
	Type           string
	Parameters     []Parameter
	TypeParameters []GenericParameter
	Accessors      AccessorSet
	EventStyle     EventStyle
}

// Arity returns the number of the method's own type parameters
func (d MemberDescriptor) Arity() int {
	return len(d.TypeParameters)
}

// Equal compares two descriptors structurally
func (d MemberDescriptor) Equal(other MemberDescriptor) bool {
	if d.Kind != other.Kind || d.Name != other.Name || d.Type != other.Type {
		return false
	}
	switch d.Kind {
	case DescriptorMethod:
		if len(d.Parameters) != len(other.Parameters) ||
			len(d.TypeParameters) != len(other.TypeParameters) {
			return false
		}
		for i := range d.Parameters {
			if d.Parameters[i] != other.Parameters[i] {
				return false
			}
		}
		for i := range d.TypeParameters {
			if !d.TypeParameters[i].Equal(other.TypeParameters[i]) {
				return false
			}
		}
		return true
	case DescriptorProperty:
		return d.Accessors == other.Accessors
	case DescriptorEvent:
		return d.EventStyle == other.EventStyle
	}
	return true
}
