// Package classifier decides which declared members belong in a contract
// and normalizes the survivors into member descriptors.
package classifier

import (
	"slices"

	"github.com/toyz/autoiface/internal/models"
)

// Classify maps a declared member to its descriptor. The second result is
// false when the member does not belong in the contract.
//
// A member is kept when it is public, not static, not an override and not
// compiler-implicit, and is an ordinary method, a property or an event.
func Classify(m models.Member) (models.MemberDescriptor, bool) {
	if !IsVisible(m) || m.Name == "" || m.Type == "" {
		return models.MemberDescriptor{}, false
	}

	switch m.Kind {
	case models.MemberMethod:
		if m.IsExtension() {
			return models.MemberDescriptor{}, false
		}
		return models.MemberDescriptor{
			Kind:           models.DescriptorMethod,
			Name:           m.Name,
			Type:           m.Type,
			Parameters:     slices.Clone(m.Parameters),
			TypeParameters: cloneTypeParameters(m.TypeParameters),
		}, true

	case models.MemberProperty:
		accessors := PublicAccessors(m)
		if accessors == 0 {
			return models.MemberDescriptor{}, false
		}
		return models.MemberDescriptor{
			Kind:      models.DescriptorProperty,
			Name:      m.Name,
			Type:      m.Type,
			Accessors: accessors,
		}, true

	case models.MemberEvent:
		return models.MemberDescriptor{
			Kind:       models.DescriptorEvent,
			Name:       m.Name,
			Type:       m.Type,
			EventStyle: m.EventStyle,
		}, true
	}

	// fields, indexers, constructors, destructors, operators, nested types
	return models.MemberDescriptor{}, false
}

// cloneTypeParameters copies params so a descriptor never shares memory
// with the declaration it was built from
func cloneTypeParameters(params []models.GenericParameter) []models.GenericParameter {
	out := slices.Clone(params)
	for i := range out {
		out[i].TypeConstraints = slices.Clone(out[i].TypeConstraints)
	}
	return out
}

// IsVisible applies the visibility filter shared by every member kind
func IsVisible(m models.Member) bool {
	return m.Modifiers.Has(models.ModPublic) &&
		!m.Modifiers.Has(models.ModStatic) &&
		!m.Modifiers.Has(models.ModOverride) &&
		!m.Implicit
}

// PublicAccessors returns the public accessors of a property. An accessor
// is public when it has no accessibility of its own or is marked public.
// Init wins over set when both are present.
func PublicAccessors(m models.Member) models.AccessorSet {
	if len(m.Accessors) == 0 {
		if m.ExpressionBodied {
			return models.GetAccessor
		}
		return 0
	}

	var set models.AccessorSet
	for _, acc := range m.Accessors {
		if acc.Modifiers.HasAccessibility() && !acc.Modifiers.Has(models.ModPublic) {
			continue
		}
		switch acc.Kind {
		case models.AccessorKindGet:
			set |= models.GetAccessor
		case models.AccessorKindSet:
			set |= models.SetAccessor
		case models.AccessorKindInit:
			set |= models.InitAccessor
		}
	}
	if set.Has(models.InitAccessor) {
		set &^= models.SetAccessor
	}
	return set
}

// ClassifyAll classifies members in order and returns the kept descriptors
func ClassifyAll(members []models.Member) []models.MemberDescriptor {
	var out []models.MemberDescriptor
	for _, m := range members {
		if d, ok := Classify(m); ok {
			out = append(out, d)
		}
	}
	return out
}
