package snapshot

import (
	"strconv"
	"strings"

	"github.com/toyz/autoiface/internal/models"
)

// MergeDeclarations folds the partial parts of one type into a single
// declaration. The first specified accessibility, the first marker and the
// first constrained type-parameter list win; members and imports are
// concatenated in part order. A partial member keeps only its first
// declaration, so the defining and implementing halves yield one member.
// Conflicts are reported as diagnostics.
func MergeDeclarations(parts []models.TypeDeclaration) (models.TypeDeclaration, []models.Diagnostic) {
	if len(parts) == 0 {
		return models.TypeDeclaration{}, nil
	}
	if len(parts) == 1 {
		single := parts[0]
		single.Members = mergePartialMembers(single.Members)
		return single, nil
	}

	var diags []models.Diagnostic
	merged := models.TypeDeclaration{
		Name:       parts[0].Name,
		Kind:       parts[0].Kind,
		Namespaces: parts[0].Namespaces,
		Partial:    true,
		Location:   parts[0].Location,
	}

	var markerLoc models.SourceLocation
	for _, part := range parts {
		if !merged.Modifiers.HasAccessibility() && part.Modifiers.HasAccessibility() {
			merged.Modifiers |= part.Modifiers & accessibilityOf(part.Modifiers)
		}
		merged.Modifiers |= part.Modifiers &^ accessibilityOf(part.Modifiers)

		if part.Marker != nil {
			if merged.Marker == nil {
				merged.Marker = part.Marker
				markerLoc = part.Location
				merged.Location = part.Location
			} else if part.Marker.CustomName() != merged.Marker.CustomName() {
				diags = append(diags, models.Errorf(part.Location,
					"conflicting contract names for %s: %q here, %q at %s",
					part.Name, part.Marker.CustomName(), merged.Marker.CustomName(), markerLoc))
			} else {
				diags = append(diags, models.Warningf(part.Location,
					"marker repeated on partial declaration of %s", part.Name))
			}
		}

		if merged.TypeParameters == nil || (!hasConstraints(merged.TypeParameters) && hasConstraints(part.TypeParameters)) {
			if part.TypeParameters != nil {
				merged.TypeParameters = part.TypeParameters
			}
		}

		merged.Members = append(merged.Members, part.Members...)
		merged.Imports = append(merged.Imports, part.Imports...)
	}
	merged.Members = mergePartialMembers(merged.Members)

	return merged, diags
}

func accessibilityOf(m models.Modifier) models.Modifier {
	return m & (models.ModPublic | models.ModPrivate | models.ModProtected | models.ModInternal | models.ModFile)
}

func hasConstraints(params []models.GenericParameter) bool {
	for _, p := range params {
		if p.HasConstraints() {
			return true
		}
	}
	return false
}

// mergePartialMembers drops every partial member whose signature was
// already declared. The result never shares its backing array with members.
func mergePartialMembers(members []models.Member) []models.Member {
	if members == nil {
		return nil
	}
	out := make([]models.Member, 0, len(members))
	seen := make(map[string]bool)
	for _, m := range members {
		if m.Modifiers.Has(models.ModPartial) {
			key := partialSignature(m)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, m)
	}
	return out
}

// partialSignature identifies a member by kind, name, arity and parameter
// types, which is how a defining declaration pairs with its implementation
func partialSignature(m models.Member) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(m.Kind)))
	sb.WriteString(" ")
	sb.WriteString(m.Name)
	sb.WriteString("`")
	sb.WriteString(strconv.Itoa(len(m.TypeParameters)))
	sb.WriteString("(")
	for i, p := range m.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p.Modifier != "" {
			sb.WriteString(p.Modifier + " ")
		}
		sb.WriteString(p.Type)
	}
	sb.WriteString(")")
	return sb.String()
}
