package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModifier_Accessibility(t *testing.T) {
	tests := []struct {
		mod  Modifier
		want string
	}{
		{0, "public"},
		{ModStatic, "public"},
		{ModPublic | ModStatic, "public"},
		{ModInternal, "internal"},
		{ModProtected | ModInternal, "protected internal"},
		{ModPrivate | ModProtected, "private protected"},
		{ModPrivate, "private"},
		{ModFile, "file"},
	}
	for _, tt := range tests {
		t.Run(tt.mod.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mod.Accessibility())
		})
	}
}

func TestModifier_String(t *testing.T) {
	assert.Equal(t, "public static", (ModStatic | ModPublic).String())
	assert.Equal(t, "", Modifier(0).String())
	assert.True(t, (ModPublic | ModOverride).Has(ModOverride))
	assert.False(t, ModStatic.HasAccessibility())
}

func TestParseModifier(t *testing.T) {
	m, ok := ParseModifier("readonly")
	assert.True(t, ok)
	assert.Equal(t, ModReadonly, m)

	_, ok = ParseModifier("Public")
	assert.False(t, ok)
}

func TestMarker_CustomName(t *testing.T) {
	tests := []struct {
		name   string
		marker *Marker
		want   string
	}{
		{"nil marker", nil, ""},
		{"no arguments", &Marker{Name: "AutoInterface"}, ""},
		{"positional", &Marker{Arguments: []MarkerArgument{{Value: "IFoo"}}}, "IFoo"},
		{"named wins", &Marker{Arguments: []MarkerArgument{{Value: "IFoo"}, {Name: "customName", Value: "IBar"}}}, "IBar"},
		{"other named ignored", &Marker{Arguments: []MarkerArgument{{Name: "other", Value: "x"}}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.marker.CustomName())
		})
	}
}

func TestImport_Text(t *testing.T) {
	assert.Equal(t, "System", Import{Name: "System"}.Text())
	assert.Equal(t, "static System.Math", Import{Name: "System.Math", Static: true}.Text())
	assert.Equal(t, "Json = System.Text.Json", Import{Name: "System.Text.Json", Alias: "Json"}.Text())
}

func TestGenericParameter(t *testing.T) {
	p := GenericParameter{Name: "T", Unmanaged: true, TypeConstraints: []string{"IEquatable<T>"}, Constructor: true}
	assert.True(t, p.HasConstraints())
	assert.False(t, GenericParameter{Name: "T"}.HasConstraints())

	q := p
	q.TypeConstraints = []string{"IEquatable<T>"}
	assert.True(t, p.Equal(q))

	q.TypeConstraints = []string{"IComparable<T>"}
	assert.False(t, p.Equal(q))
}

func TestGenericParameter_EqualFollowsRendering(t *testing.T) {
	tests := []struct {
		name string
		a, b GenericParameter
		want bool
	}{
		{"class hides notnull", GenericParameter{Name: "T", ReferenceType: true, NotNull: true}, GenericParameter{Name: "T", ReferenceType: true}, true},
		{"unmanaged hides struct", GenericParameter{Name: "T", Unmanaged: true, ValueType: true}, GenericParameter{Name: "T", Unmanaged: true}, true},
		{"class differs from struct", GenericParameter{Name: "T", ReferenceType: true}, GenericParameter{Name: "T", ValueType: true}, false},
		{"notnull differs from none", GenericParameter{Name: "T", NotNull: true}, GenericParameter{Name: "T"}, false},
		{"new() compared", GenericParameter{Name: "T", Constructor: true}, GenericParameter{Name: "T"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestMember_IsExtension(t *testing.T) {
	ext := Member{Kind: MemberMethod, Parameters: []Parameter{{Modifier: "this", Type: "string", Name: "s"}}}
	assert.True(t, ext.IsExtension())

	scoped := Member{Kind: MemberMethod, Parameters: []Parameter{{Modifier: "scoped ref", Type: "Span<int>", Name: "s"}}}
	assert.False(t, scoped.IsExtension())

	assert.False(t, Member{Kind: MemberProperty}.IsExtension())
}

func TestMemberDescriptor_Equal(t *testing.T) {
	method := MemberDescriptor{
		Kind:       DescriptorMethod,
		Name:       "Save",
		Type:       "void",
		Parameters: []Parameter{{Type: "int", Name: "id"}},
	}
	other := method
	other.Parameters = []Parameter{{Type: "int", Name: "id"}}
	assert.True(t, method.Equal(other))

	other.Parameters = []Parameter{{Type: "long", Name: "id"}}
	assert.False(t, method.Equal(other))

	prop := MemberDescriptor{Kind: DescriptorProperty, Name: "Name", Type: "string", Accessors: GetAccessor | SetAccessor}
	changed := prop
	changed.Accessors = GetAccessor | InitAccessor
	assert.False(t, prop.Equal(changed))
	assert.True(t, prop.Accessors.Has(SetAccessor))

	// fields of other variants are not compared
	event := MemberDescriptor{Kind: DescriptorEvent, Name: "Changed", Type: "EventHandler"}
	withAccessors := event
	withAccessors.Accessors = GetAccessor
	assert.True(t, event.Equal(withAccessors))
}

func TestContract_String(t *testing.T) {
	c := Contract{FileName: "IA.g.cs", Lines: []string{"// header", "", "public interface IA { }"}}
	assert.Equal(t, "// header\n\npublic interface IA { }\n", c.String())
	assert.Equal(t, []byte(c.String()), c.Bytes())
	assert.Equal(t, "", Contract{}.String())
}

func TestDiagnostic_String(t *testing.T) {
	loc := SourceLocation{File: "A.cs", Line: 3, Column: 9}
	assert.Equal(t, "A.cs:3:9: warning: careful", Warningf(loc, "careful").String())
	assert.Equal(t, "error: broken", Errorf(SourceLocation{}, "broken").String())

	assert.Equal(t, "unknown location", SourceLocation{}.String())
	assert.Equal(t, "A.cs", SourceLocation{File: "A.cs"}.String())
	assert.Equal(t, "A.cs:3", SourceLocation{File: "A.cs", Line: 3}.String())
}
