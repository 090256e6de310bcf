package csharp

import (
	"strings"

	"github.com/toyz/autoiface/internal/format"
	"github.com/toyz/autoiface/internal/models"
)

// canStartType reports whether the token can begin a type reference
func canStartType(t token) bool {
	return t.isIdent() || t.is("(")
}

// typeRef parses a type reference and returns it in canonical text form:
// "global::" kept, generic arguments and tuple elements separated by ", ".
// Leading alias names are replaced by their targets.
func (r *reader) typeRef() (string, error) {
	var sb strings.Builder
	if r.s.at("ref") {
		r.s.next()
		sb.WriteString("ref ")
		if r.s.accept("readonly") {
			sb.WriteString("readonly ")
		}
	}

	base, err := r.baseType()
	if err != nil {
		return "", err
	}
	sb.WriteString(base)

	for {
		switch {
		case r.s.at("?"):
			r.s.next()
			sb.WriteString("?")
		case r.s.at("*"):
			r.s.next()
			sb.WriteString("*")
		case r.s.at("[") && (r.s.peekN(1).is("]") || r.s.peekN(1).is(",")):
			r.s.next()
			sb.WriteString("[")
			for r.s.accept(",") {
				sb.WriteString(",")
			}
			if _, err := r.s.expect("]"); err != nil {
				return "", err
			}
			sb.WriteString("]")
		default:
			return sb.String(), nil
		}
	}
}

func (r *reader) baseType() (string, error) {
	if r.s.at("(") {
		return r.tupleType()
	}

	var sb strings.Builder
	first := true
	for {
		name, err := r.s.expectIdent()
		if err != nil {
			return "", err
		}
		if first && r.s.at("::") {
			r.s.next()
			sb.WriteString(name + "::")
			first = false
			continue
		}
		if first && name != "global" {
			if target, ok := r.aliases[name]; ok && !r.s.at("<") {
				name = target
			} else if qualified, ok := r.nestedType(name); ok {
				name = qualified
			}
		}
		sb.WriteString(name)
		first = false

		if r.s.at("<") {
			args, err := r.typeArgumentList()
			if err != nil {
				return "", err
			}
			sb.WriteString(args)
		}
		if r.s.at(".") && r.s.peekN(1).isIdent() {
			r.s.next()
			sb.WriteString(".")
			continue
		}
		return sb.String(), nil
	}
}

func (r *reader) tupleType() (string, error) {
	if _, err := r.s.expect("("); err != nil {
		return "", err
	}
	var parts []string
	for {
		elem, err := r.typeRef()
		if err != nil {
			return "", err
		}
		if r.s.peek().isIdent() {
			elem += " " + r.s.next().text
		}
		parts = append(parts, elem)
		if r.s.accept(",") {
			continue
		}
		if _, err := r.s.expect(")"); err != nil {
			return "", err
		}
		return "(" + strings.Join(parts, ", ") + ")", nil
	}
}

// typeArgumentList parses "<A, B>" including unbound forms such as "<,>"
func (r *reader) typeArgumentList() (string, error) {
	if _, err := r.s.expect("<"); err != nil {
		return "", err
	}
	var parts []string
	for {
		if r.s.at(",") || r.s.at(">") {
			parts = append(parts, "")
		} else {
			arg, err := r.typeRef()
			if err != nil {
				return "", err
			}
			parts = append(parts, arg)
		}
		if r.s.accept(",") {
			continue
		}
		if _, err := r.s.expect(">"); err != nil {
			return "", err
		}
		if len(parts) > 1 && strings.Join(parts, "") == "" {
			return "<" + strings.Repeat(",", len(parts)-1) + ">", nil
		}
		return "<" + strings.Join(parts, ", ") + ">", nil
	}
}

// typeParameterList parses "<[in|out] T, ...>" into unconstrained parameters
func (r *reader) typeParameterList() ([]models.GenericParameter, error) {
	if !r.s.at("<") {
		return nil, nil
	}
	r.s.next()
	var params []models.GenericParameter
	for {
		if err := r.skipAttributes(); err != nil {
			return nil, err
		}
		if r.s.at("in") || r.s.at("out") {
			r.s.next()
		}
		name, err := r.s.expectIdent()
		if err != nil {
			return nil, err
		}
		params = append(params, models.GenericParameter{Name: name})
		if r.s.accept(",") {
			continue
		}
		if _, err := r.s.expect(">"); err != nil {
			return nil, err
		}
		return params, nil
	}
}

// constraintClauses parses any number of "where T : ..." clauses and
// records the constraint facts on the matching parameters
func (r *reader) constraintClauses(params []models.GenericParameter) error {
	for r.s.at("where") && r.s.peekN(1).isIdent() && r.s.peekN(2).is(":") {
		r.s.next()
		name := r.s.next().text
		r.s.next() // ":"

		idx := -1
		for i := range params {
			if params[i].Name == name {
				idx = i
				break
			}
		}
		var p models.GenericParameter
		for {
			if err := r.constraint(&p); err != nil {
				return err
			}
			if !r.s.accept(",") {
				break
			}
		}
		if idx < 0 {
			r.warnf(r.s.peek(), "constraint on unknown type parameter %s", name)
			continue
		}
		p.Name = params[idx].Name
		params[idx] = p
	}
	return nil
}

func (r *reader) constraint(p *models.GenericParameter) error {
	t := r.s.peek()
	switch {
	case t.is("class"):
		r.s.next()
		r.s.accept("?")
		p.ReferenceType = true
	case t.is("struct"):
		r.s.next()
		p.ValueType = true
	case t.is("unmanaged"):
		r.s.next()
		p.Unmanaged = true
	case t.is("notnull"):
		r.s.next()
		p.NotNull = true
	case t.is("default"):
		r.s.next()
	case t.is("new") && r.s.peekN(1).is("("):
		r.s.next()
		r.s.next()
		if _, err := r.s.expect(")"); err != nil {
			return err
		}
		p.Constructor = true
	case t.is("allows"):
		// anti-constraints such as "allows ref struct" carry no contract facts
		r.s.next()
		r.s.accept("ref")
		r.s.accept("struct")
	default:
		typ, err := r.typeRef()
		if err != nil {
			return err
		}
		p.TypeConstraints = append(p.TypeConstraints, typ)
	}
	return nil
}

// typeScope is the body of one enclosing type: its qualified path, e.g.
// "App.Outer<T>", and the names of the types declared directly in it
type typeScope struct {
	path   string
	nested map[string]bool
}

// enterType pushes the scope of the type whose header is being read. The
// body is scanned ahead so members may refer to nested types declared
// after them.
func (r *reader) enterType(name string, params []models.GenericParameter) {
	path := strings.Join(r.namespaces, ".")
	if n := len(r.scopes); n > 0 {
		path = r.scopes[n-1].path
	}
	if path != "" {
		path += "."
	}
	r.scopes = append(r.scopes, typeScope{
		path:   path + name + format.TypeParameterList(params),
		nested: r.s.nestedTypeNames(),
	})
}

func (r *reader) leaveType() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// nestedType resolves a simple name against the enclosing type bodies,
// innermost first, and returns its global:: qualified form
func (r *reader) nestedType(name string) (string, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if r.scopes[i].nested[name] {
			return "global::" + r.scopes[i].path + "." + name, true
		}
	}
	return "", false
}
