package format

import (
	"strings"

	"github.com/toyz/autoiface/internal/models"
)

// Options tunes how signatures are rendered
type Options struct {
	// EventKeyword prefixes event lines with "event ".
	EventKeyword bool
}

// Signature renders the single contract line of a member descriptor,
// including the trailing semicolon or accessor block.
func Signature(d models.MemberDescriptor, opts Options) string {
	switch d.Kind {
	case models.DescriptorMethod:
		return methodSignature(d)
	case models.DescriptorProperty:
		return propertySignature(d)
	case models.DescriptorEvent:
		return eventSignature(d, opts)
	default:
		return ""
	}
}

// Parameter renders one parameter as "[modifier ]Type name"
func Parameter(p models.Parameter) string {
	if p.Modifier != "" {
		return p.Modifier + " " + p.Type + " " + p.Name
	}
	return p.Type + " " + p.Name
}

// ParameterList renders parameters separated by ", " without parentheses
func ParameterList(params []models.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = Parameter(p)
	}
	return strings.Join(parts, ", ")
}

// AccessorBlock renders "{ get; set; }" for an accessor set
func AccessorBlock(set models.AccessorSet) string {
	var sb strings.Builder
	sb.WriteString("{ ")
	if set.Has(models.GetAccessor) {
		sb.WriteString("get; ")
	}
	if set.Has(models.SetAccessor) {
		sb.WriteString("set; ")
	}
	if set.Has(models.InitAccessor) {
		sb.WriteString("init; ")
	}
	sb.WriteString("}")
	return sb.String()
}

func methodSignature(d models.MemberDescriptor) string {
	var sb strings.Builder
	sb.WriteString(d.Type)
	sb.WriteByte(' ')
	sb.WriteString(d.Name)
	sb.WriteString(TypeParameterList(d.TypeParameters))
	sb.WriteByte('(')
	sb.WriteString(ParameterList(d.Parameters))
	sb.WriteByte(')')
	sb.WriteString(Constraints(d.TypeParameters))
	sb.WriteByte(';')
	return sb.String()
}

func propertySignature(d models.MemberDescriptor) string {
	return d.Type + " " + d.Name + " " + AccessorBlock(d.Accessors)
}

func eventSignature(d models.MemberDescriptor, opts Options) string {
	line := d.Type + " " + d.Name + ";"
	if opts.EventKeyword {
		return "event " + line
	}
	return line
}
