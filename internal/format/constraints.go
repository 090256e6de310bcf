// Package format renders generic parameter lists, constraint clauses and
// member signatures as contract text.
package format

import (
	"strings"

	"github.com/toyz/autoiface/internal/models"
)

// Predefined constraint keywords
const (
	KeywordClass       = "class"
	KeywordUnmanaged   = "unmanaged"
	KeywordStruct      = "struct"
	KeywordNotNull     = "notnull"
	KeywordConstructor = "new()"
)

// PredefinedConstraint returns the single predefined constraint keyword of
// a parameter, chosen by priority class > unmanaged > struct > notnull.
func PredefinedConstraint(p models.GenericParameter) string {
	switch {
	case p.ReferenceType:
		return KeywordClass
	case p.Unmanaged:
		return KeywordUnmanaged
	case p.ValueType:
		return KeywordStruct
	case p.NotNull:
		return KeywordNotNull
	default:
		return ""
	}
}

// ConstraintItems returns the ordered constraint items of a parameter:
// the predefined keyword, the type constraints, then new().
func ConstraintItems(p models.GenericParameter) []string {
	var items []string
	if kw := PredefinedConstraint(p); kw != "" {
		items = append(items, kw)
	}
	items = append(items, p.TypeConstraints...)
	if p.Constructor {
		items = append(items, KeywordConstructor)
	}
	return items
}

// ConstraintClause renders "where T : a, b, new()" for one parameter, or
// an empty string when the parameter is unconstrained.
func ConstraintClause(p models.GenericParameter) string {
	items := ConstraintItems(p)
	if len(items) == 0 {
		return ""
	}
	return "where " + p.Name + " : " + strings.Join(items, ", ")
}

// Constraints renders one clause per constrained parameter in declaration
// order, each clause preceded by a single space.
func Constraints(params []models.GenericParameter) string {
	var sb strings.Builder
	for _, p := range params {
		if clause := ConstraintClause(p); clause != "" {
			sb.WriteByte(' ')
			sb.WriteString(clause)
		}
	}
	return sb.String()
}

// TypeParameterList renders "<T1, T2>", or an empty string for no parameters
func TypeParameterList(params []models.GenericParameter) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return "<" + strings.Join(names, ", ") + ">"
}

// TypeArguments renders the parameter list followed by its constraint clauses
func TypeArguments(params []models.GenericParameter) string {
	return TypeParameterList(params) + Constraints(params)
}
