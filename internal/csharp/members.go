package csharp

import (
	"slices"
	"strings"

	"github.com/toyz/autoiface/internal/models"
)

var accessorKinds = map[string]models.AccessorKind{
	"get":    models.AccessorKindGet,
	"set":    models.AccessorKindSet,
	"init":   models.AccessorKindInit,
	"add":    models.AccessorKindAdd,
	"remove": models.AccessorKindRemove,
}

var parameterModifiers = map[string]bool{
	"this": true, "ref": true, "out": true, "in": true,
	"params": true, "scoped": true, "readonly": true,
}

// typeDecl parses a type declaration after its attributes and modifiers.
// Annotated types and partial parts are recorded; the type name is
// returned for the enclosing member list.
func (r *reader) typeDecl(sections []*attributeSection, mods models.Modifier, start token) (string, error) {
	kwTok := r.s.next()
	var kind models.TypeKind
	switch kwTok.text {
	case "class":
		kind = models.TypeKindClass
	case "struct":
		kind = models.TypeKindStruct
	case "record":
		kind = models.TypeKindRecord
		if r.s.accept("struct") {
			kind = models.TypeKindRecordStruct
		} else {
			r.s.accept("class")
		}
	case "delegate":
		if err := r.s.skipUntil(";"); err != nil {
			return "", err
		}
		r.s.next()
		return "", nil
	default:
		return r.skipTypeDecl(sections, kwTok)
	}

	name, err := r.s.expectIdent()
	if err != nil {
		return "", err
	}

	decl := models.TypeDeclaration{
		Name:       name,
		Kind:       kind,
		Namespaces: slices.Clone(r.namespaces),
		Modifiers:  mods,
		Imports:    slices.Clone(r.imports),
		Partial:    mods.Has(models.ModPartial),
		Location:   r.s.loc(start),
	}
	decl.Marker = r.findMarker(sections, start)

	if decl.TypeParameters, err = r.typeParameterList(); err != nil {
		return "", err
	}
	r.enterType(name, decl.TypeParameters)
	defer r.leaveType()

	var primary []models.Parameter
	if r.s.at("(") {
		if primary, err = r.parameterList(); err != nil {
			return "", err
		}
	}

	if r.s.accept(":") {
		if err := r.baseList(); err != nil {
			return "", err
		}
	}
	if err := r.constraintClauses(decl.TypeParameters); err != nil {
		return "", err
	}

	if kind == models.TypeKindRecord || kind == models.TypeKindRecordStruct {
		decl.Members = append(decl.Members, positionalProperties(kind, mods, primary, decl.Location)...)
	}

	// reserve the slot so outer types precede the nested types found in their body
	slot := len(r.decls)
	r.decls = append(r.decls, models.TypeDeclaration{})

	if !r.s.accept(";") {
		open, err := r.s.expect("{")
		if err != nil {
			return "", err
		}
		for !r.s.at("}") {
			if r.s.eof() {
				return "", r.s.errorf(open, "unterminated type %s", name)
			}
			if err := r.member(&decl); err != nil {
				return "", err
			}
		}
		r.s.next()
		r.s.accept(";")
	}

	if decl.Marker != nil || decl.Partial {
		r.decls[slot] = decl
	} else {
		r.decls = slices.Delete(r.decls, slot, slot+1)
	}
	return name, nil
}

// skipTypeDecl skips interfaces and enums, which never get contracts
func (r *reader) skipTypeDecl(sections []*attributeSection, kw token) (string, error) {
	name, err := r.s.expectIdent()
	if err != nil {
		return "", err
	}
	if m := r.findMarker(sections, kw); m != nil {
		r.warnf(kw, "marker %s ignored on %s %s", m.Name, kw.text, name)
	}
	if err := r.s.skipUntil("{", ";"); err != nil {
		return "", err
	}
	if r.s.at("{") {
		if err := r.s.skipBalanced(); err != nil {
			return "", err
		}
	}
	r.s.accept(";")
	return name, nil
}

func (r *reader) baseList() error {
	for {
		if _, err := r.typeRef(); err != nil {
			return err
		}
		// record base types may pass constructor arguments
		if r.s.at("(") {
			if err := r.s.skipBalanced(); err != nil {
				return err
			}
		}
		if !r.s.accept(",") {
			return nil
		}
	}
}

// positionalProperties synthesizes the properties a record's primary
// constructor declares
func positionalProperties(kind models.TypeKind, mods models.Modifier, params []models.Parameter, loc models.SourceLocation) []models.Member {
	second := models.AccessorKindInit
	if kind == models.TypeKindRecordStruct && !mods.Has(models.ModReadonly) {
		second = models.AccessorKindSet
	}
	members := make([]models.Member, 0, len(params))
	for _, p := range params {
		members = append(members, models.Member{
			Kind:      models.MemberProperty,
			Name:      p.Name,
			Type:      p.Type,
			Modifiers: models.ModPublic,
			Accessors: []models.Accessor{
				{Kind: models.AccessorKindGet},
				{Kind: second},
			},
			Implicit: true,
			Location: loc,
		})
	}
	return members
}

// member parses one member declaration inside a type body
func (r *reader) member(decl *models.TypeDeclaration) error {
	start := r.s.peek()
	if start.is(";") {
		r.s.next()
		return nil
	}

	sections, err := r.attributes()
	if err != nil {
		return err
	}
	mods := r.modifiers()
	loc := r.s.loc(start)
	add := func(m models.Member) {
		m.Modifiers = mods
		m.Location = loc
		decl.Members = append(decl.Members, m)
	}

	if r.atTypeKeyword() {
		name, err := r.typeDecl(sections, mods, start)
		if err != nil {
			return err
		}
		if name != "" {
			add(models.Member{Kind: models.MemberNestedType, Name: name})
		}
		return nil
	}

	t := r.s.peek()
	switch {
	case t.is("~"):
		r.s.next()
		name, err := r.s.expectIdent()
		if err != nil {
			return err
		}
		if _, err := r.parameterList(); err != nil {
			return err
		}
		if err := r.body(); err != nil {
			return err
		}
		add(models.Member{Kind: models.MemberDestructor, Name: "~" + name})
		return nil

	case t.is("event"):
		return r.event(add)

	case (t.is("implicit") || t.is("explicit")) && r.s.peekN(1).is("operator"):
		r.s.next()
		r.s.next()
		typ, err := r.typeRef()
		if err != nil {
			return err
		}
		params, err := r.parameterList()
		if err != nil {
			return err
		}
		if err := r.body(); err != nil {
			return err
		}
		add(models.Member{Kind: models.MemberOperator, Name: t.text + " operator " + typ, Type: typ, Parameters: params})
		return nil

	case t.isIdent() && t.text == decl.Name && r.s.peekN(1).is("("):
		r.s.next()
		params, err := r.parameterList()
		if err != nil {
			return err
		}
		if r.s.accept(":") {
			// base(...) or this(...) initializer
			r.s.next()
			if r.s.at("(") {
				if err := r.s.skipBalanced(); err != nil {
					return err
				}
			}
		}
		if err := r.body(); err != nil {
			return err
		}
		add(models.Member{Kind: models.MemberConstructor, Name: t.text, Parameters: params})
		return nil

	case !canStartType(t):
		return r.s.errorf(t, "unexpected %s in body of %s", describe(t), decl.Name)
	}

	typ, err := r.typeRef()
	if err != nil {
		return err
	}

	switch {
	case r.s.at("operator"):
		r.s.next()
		var sym strings.Builder
		for !r.s.at("(") {
			if r.s.eof() {
				return r.s.errorf(t, "unterminated operator declaration")
			}
			sym.WriteString(r.s.next().text)
		}
		params, err := r.parameterList()
		if err != nil {
			return err
		}
		if err := r.body(); err != nil {
			return err
		}
		add(models.Member{Kind: models.MemberOperator, Name: "operator " + sym.String(), Type: typ, Parameters: params})
		return nil

	case r.s.at("this") && r.s.peekN(1).is("["):
		r.s.next()
		if err := r.s.skipBalanced(); err != nil {
			return err
		}
		accessors, exprBodied, err := r.propertyBody()
		if err != nil {
			return err
		}
		add(models.Member{Kind: models.MemberIndexer, Name: "this[]", Type: typ, Accessors: accessors, ExpressionBodied: exprBodied})
		return nil
	}

	name, err := r.memberName()
	if err != nil {
		return err
	}

	switch {
	case r.s.at("<") || r.s.at("("):
		tps, err := r.typeParameterList()
		if err != nil {
			return err
		}
		params, err := r.parameterList()
		if err != nil {
			return err
		}
		if err := r.constraintClauses(tps); err != nil {
			return err
		}
		if err := r.body(); err != nil {
			return err
		}
		add(models.Member{Kind: models.MemberMethod, Name: name, Type: typ, Parameters: params, TypeParameters: tps})

	case r.s.at("{") || r.s.at("=>"):
		accessors, exprBodied, err := r.propertyBody()
		if err != nil {
			return err
		}
		add(models.Member{Kind: models.MemberProperty, Name: name, Type: typ, Accessors: accessors, ExpressionBodied: exprBodied})

	default:
		names := []string{name}
		for {
			if r.s.accept("=") {
				if err := r.s.skipUntil(",", ";"); err != nil {
					return err
				}
			}
			if r.s.at("[") {
				// fixed size buffer
				if err := r.s.skipBalanced(); err != nil {
					return err
				}
			}
			if !r.s.accept(",") {
				break
			}
			next, err := r.s.expectIdent()
			if err != nil {
				return err
			}
			names = append(names, next)
		}
		if _, err := r.s.expect(";"); err != nil {
			return err
		}
		for _, n := range names {
			add(models.Member{Kind: models.MemberField, Name: n, Type: typ})
		}
	}
	return nil
}

// memberName parses a member name, including explicit interface
// qualifiers such as "IEnumerable<T>.GetEnumerator"
func (r *reader) memberName() (string, error) {
	var sb strings.Builder
	for {
		name, err := r.s.expectIdent()
		if err != nil {
			return "", err
		}
		sb.WriteString(name)

		if r.s.at("<") {
			mark := r.s.i
			args, err := r.typeArgumentList()
			if err != nil || !r.s.at(".") {
				// method type parameters
				r.s.i = mark
				return sb.String(), nil
			}
			sb.WriteString(args)
		}
		if !r.s.at(".") {
			return sb.String(), nil
		}
		r.s.next()
		sb.WriteString(".")
	}
}

func (r *reader) event(add func(models.Member)) error {
	r.s.next()
	typ, err := r.typeRef()
	if err != nil {
		return err
	}
	name, err := r.memberName()
	if err != nil {
		return err
	}

	if r.s.at("{") {
		accessors, err := r.accessorList()
		if err != nil {
			return err
		}
		add(models.Member{Kind: models.MemberEvent, Name: name, Type: typ, Accessors: accessors, EventStyle: models.EventPropertyLike})
		return nil
	}

	names := []string{name}
	for {
		if r.s.accept("=") {
			if err := r.s.skipUntil(",", ";"); err != nil {
				return err
			}
		}
		if !r.s.accept(",") {
			break
		}
		next, err := r.s.expectIdent()
		if err != nil {
			return err
		}
		names = append(names, next)
	}
	if _, err := r.s.expect(";"); err != nil {
		return err
	}
	for _, n := range names {
		add(models.Member{Kind: models.MemberEvent, Name: n, Type: typ, EventStyle: models.EventFieldLike})
	}
	return nil
}

// propertyBody parses an accessor list with an optional initializer, or an
// expression body
func (r *reader) propertyBody() ([]models.Accessor, bool, error) {
	if r.s.accept("=>") {
		if err := r.s.skipUntil(";"); err != nil {
			return nil, false, err
		}
		r.s.next()
		return nil, true, nil
	}

	accessors, err := r.accessorList()
	if err != nil {
		return nil, false, err
	}
	if r.s.accept("=") {
		if err := r.s.skipUntil(";"); err != nil {
			return nil, false, err
		}
		r.s.next()
	}
	return accessors, false, nil
}

func (r *reader) accessorList() ([]models.Accessor, error) {
	open, err := r.s.expect("{")
	if err != nil {
		return nil, err
	}
	var accessors []models.Accessor
	for !r.s.accept("}") {
		if r.s.eof() {
			return nil, r.s.errorf(open, "unterminated accessor list")
		}
		if err := r.skipAttributes(); err != nil {
			return nil, err
		}
		mods := r.modifiers()
		t := r.s.peek()
		kind, ok := accessorKinds[t.text]
		if !ok || !t.isIdent() {
			return nil, r.s.errorf(t, "expected accessor, found %s", describe(t))
		}
		r.s.next()
		if err := r.body(); err != nil {
			return nil, err
		}
		accessors = append(accessors, models.Accessor{Kind: kind, Modifiers: mods})
	}
	return accessors, nil
}

// body skips a block, an expression body or a bare semicolon
func (r *reader) body() error {
	switch {
	case r.s.at("{"):
		return r.s.skipBalanced()
	case r.s.accept("=>"):
		if err := r.s.skipUntil(";"); err != nil {
			return err
		}
		r.s.next()
		return nil
	case r.s.accept(";"):
		return nil
	}
	t := r.s.peek()
	return r.s.errorf(t, "expected body, found %s", describe(t))
}

// parameterList parses "(...)" into parameters. Default values and
// attributes are dropped.
func (r *reader) parameterList() ([]models.Parameter, error) {
	if _, err := r.s.expect("("); err != nil {
		return nil, err
	}
	var params []models.Parameter
	if r.s.accept(")") {
		return params, nil
	}
	for {
		if err := r.skipAttributes(); err != nil {
			return nil, err
		}

		var mods []string
		for {
			t := r.s.peek()
			n := r.s.peekN(1)
			if !t.isIdent() || !parameterModifiers[t.text] || n.is(",") || n.is(")") || n.is("=") {
				break
			}
			mods = append(mods, r.s.next().text)
		}

		typ, err := r.typeRef()
		if err != nil {
			return nil, err
		}
		name := ""
		if r.s.peek().isIdent() {
			name = r.s.next().text
		}
		if r.s.accept("=") {
			if err := r.s.skipUntil(",", ")"); err != nil {
				return nil, err
			}
		}
		params = append(params, models.Parameter{Modifier: strings.Join(mods, " "), Type: typ, Name: name})

		if r.s.accept(",") {
			continue
		}
		if _, err := r.s.expect(")"); err != nil {
			return nil, err
		}
		return params, nil
	}
}
