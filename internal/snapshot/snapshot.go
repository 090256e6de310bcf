// Package snapshot extracts the value-equatable public surface of an
// annotated type declaration.
package snapshot

import (
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/toyz/autoiface/internal/classifier"
	"github.com/toyz/autoiface/internal/format"
	"github.com/toyz/autoiface/internal/models"
)

// Snapshot is the extracted public surface of one type. Two snapshots
// built from declarations that differ only in bodies, comments, layout or
// non-public members compare equal.
type Snapshot struct {
	Modifier      string                    // accessibility of the type, "public" when unspecified
	TypeName      string                    // type identifier
	TypeArguments string                    // "<T> where T : class", empty for non-generic types
	CustomName    string                    // contract name from the marker, empty for the default
	Namespace     string                    // dotted namespace path, empty for the global namespace
	Members       []models.MemberDescriptor // kept members in source order
	Imports       []string                  // non-global import directive bodies, deduplicated
}

// ContractName returns the custom name when supplied, else "I" + TypeName
func (s Snapshot) ContractName() string {
	if s.CustomName != "" {
		return s.CustomName
	}
	return "I" + s.TypeName
}

// Equal compares two snapshots by value, including sequence order
func (s Snapshot) Equal(other Snapshot) bool {
	if s.Modifier != other.Modifier ||
		s.TypeName != other.TypeName ||
		s.TypeArguments != other.TypeArguments ||
		s.CustomName != other.CustomName ||
		s.Namespace != other.Namespace ||
		len(s.Members) != len(other.Members) ||
		len(s.Imports) != len(other.Imports) {
		return false
	}
	for i := range s.Members {
		if !s.Members[i].Equal(other.Members[i]) {
			return false
		}
	}
	for i := range s.Imports {
		if s.Imports[i] != other.Imports[i] {
			return false
		}
	}
	return true
}

// Fingerprint hashes every field of the snapshot. Equal snapshots always
// have equal fingerprints.
func (s Snapshot) Fingerprint() uint64 {
	h := &hasher{d: xxhash.New()}
	h.str(s.Modifier)
	h.str(s.TypeName)
	h.str(s.TypeArguments)
	h.str(s.CustomName)
	h.str(s.Namespace)

	h.num(uint64(len(s.Members)))
	for _, m := range s.Members {
		h.num(uint64(m.Kind))
		h.str(m.Name)
		h.str(m.Type)
		switch m.Kind {
		case models.DescriptorMethod:
			h.num(uint64(len(m.Parameters)))
			for _, p := range m.Parameters {
				h.str(p.Modifier)
				h.str(p.Type)
				h.str(p.Name)
			}
			h.num(uint64(len(m.TypeParameters)))
			for _, tp := range m.TypeParameters {
				h.str(tp.Name)
				h.str(format.ConstraintClause(tp))
			}
		case models.DescriptorProperty:
			h.num(uint64(m.Accessors))
		case models.DescriptorEvent:
			h.num(uint64(m.EventStyle))
		}
	}

	h.num(uint64(len(s.Imports)))
	for _, imp := range s.Imports {
		h.str(imp)
	}
	return h.d.Sum64()
}

type hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func (h *hasher) num(n uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], n)
	_, _ = h.d.Write(h.buf[:])
}

// str writes a length-prefixed string so adjacent fields cannot collide
func (h *hasher) str(s string) {
	h.num(uint64(len(s)))
	_, _ = h.d.WriteString(s)
}

// Extract builds the snapshot of a declaration. It never fails: missing
// marker arguments, namespaces or members yield a minimal snapshot.
func Extract(decl models.TypeDeclaration) Snapshot {
	return Snapshot{
		Modifier:      decl.Modifiers.Accessibility(),
		TypeName:      decl.Name,
		TypeArguments: format.TypeArguments(decl.TypeParameters),
		CustomName:    decl.Marker.CustomName(),
		Namespace:     NamespacePath(decl.Namespaces),
		Members:       classifier.ClassifyAll(decl.Members),
		Imports:       ImportList(decl.Imports),
	}
}

// NamespacePath joins the non-empty namespace scopes with "."
func NamespacePath(scopes []string) string {
	parts := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ".")
}

// ImportList renders the non-global imports in order, dropping duplicates
func ImportList(imports []models.Import) []string {
	var out []string
	seen := make(map[string]bool, len(imports))
	for _, imp := range imports {
		if imp.Global || imp.Name == "" {
			continue
		}
		text := imp.Text()
		if seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, text)
	}
	return out
}
