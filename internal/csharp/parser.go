package csharp

import (
	"os"
	"strings"

	"github.com/toyz/autoiface/internal/errors"
	"github.com/toyz/autoiface/internal/models"
)

// DefaultMarker is the marker attribute name recognised when none is configured
const DefaultMarker = "AutoInterface"

// File is the result of reading one source file
type File struct {
	Path         string
	Declarations []models.TypeDeclaration // annotated types and unannotated partial parts
	Diagnostics  []models.Diagnostic
}

// Annotated returns the number of declarations carrying a marker
func (f *File) Annotated() int {
	n := 0
	for _, d := range f.Declarations {
		if d.Marker != nil {
			n++
		}
	}
	return n
}

// Parser reads C# declarations. It is safe for concurrent use.
type Parser struct {
	markers map[string]bool
}

// NewParser creates a parser that recognises the given marker attribute
// names. Names may be qualified and may carry the Attribute suffix.
func NewParser(markers ...string) *Parser {
	p := &Parser{markers: make(map[string]bool)}
	for _, m := range markers {
		if name := normalizeMarker(m); name != "" {
			p.markers[name] = true
		}
	}
	if len(p.markers) == 0 {
		p.markers[DefaultMarker] = true
	}
	return p
}

func normalizeMarker(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, ".:"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "Attribute")
}

// IsMarker reports whether an attribute name refers to a marker
func (p *Parser) IsMarker(name string) bool {
	return p.markers[normalizeMarker(name)]
}

// ParseFile reads and parses a file from disk
func (p *Parser) ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}
	return p.ParseSource(path, string(content))
}

// ParseSource parses source text. filename is used for locations only.
func (p *Parser) ParseSource(filename, src string) (*File, error) {
	toks, err := tokenize(filename, src)
	if err != nil {
		return nil, err
	}

	r := &reader{
		p:       p,
		s:       &stream{file: filename, toks: toks},
		src:     src,
		aliases: make(map[string]string),
	}
	if err := r.unit(); err != nil {
		return nil, err
	}

	return &File{
		Path:         filename,
		Declarations: r.decls,
		Diagnostics:  r.diags,
	}, nil
}

// reader walks the token stream of one file
type reader struct {
	p          *Parser
	s          *stream
	src        string
	aliases    map[string]string
	imports    []models.Import
	namespaces []string
	scopes     []typeScope // enclosing type bodies, innermost last
	decls      []models.TypeDeclaration
	diags      []models.Diagnostic
}

func (r *reader) warnf(t token, format string, args ...interface{}) {
	r.diags = append(r.diags, models.Warningf(r.s.loc(t), format, args...))
}

func (r *reader) errorf(t token, format string, args ...interface{}) {
	r.diags = append(r.diags, models.Errorf(r.s.loc(t), format, args...))
}

func (r *reader) unit() error {
	for !r.s.eof() {
		if err := r.namespaceMember(); err != nil {
			return err
		}
	}
	return nil
}

// namespaceMember reads one directive, namespace or type declaration
func (r *reader) namespaceMember() error {
	t := r.s.peek()
	switch {
	case t.is("extern") && r.s.peekN(1).is("alias"):
		return r.skipStatement()
	case t.is("using") || (t.is("global") && r.s.peekN(1).is("using")):
		if r.s.peekN(1).is("(") || r.s.peekN(1).is("var") {
			return r.skipStatement()
		}
		return r.usingDirective()
	case t.is("namespace"):
		return r.namespaceDecl()
	case t.is(";"):
		r.s.next()
		return nil
	}

	sections, err := r.attributes()
	if err != nil {
		return err
	}
	mods := r.modifiers()
	if r.atTypeKeyword() {
		_, err := r.typeDecl(sections, mods, t)
		return err
	}
	if len(sections) > 0 && mods == 0 {
		return nil
	}
	return r.skipStatement()
}

func (r *reader) usingDirective() error {
	start := r.s.peek()
	imp := models.Import{Global: r.s.accept("global")}
	if _, err := r.s.expect("using"); err != nil {
		return err
	}
	if r.s.accept("static") {
		imp.Static = true
	}
	r.s.accept("unsafe")
	if r.s.peek().isIdent() && r.s.peekN(1).is("=") {
		imp.Alias = r.s.next().text
		r.s.next()
	}

	// aliases never apply inside using directives
	saved := r.aliases
	r.aliases = nil
	name, err := r.typeRef()
	r.aliases = saved
	if err != nil {
		return err
	}
	if _, err := r.s.expect(";"); err != nil {
		return err
	}
	imp.Name = name

	if imp.Alias != "" {
		if _, dup := r.aliases[imp.Alias]; dup {
			r.warnf(start, "using alias %s redefined", imp.Alias)
		}
		r.aliases[imp.Alias] = imp.Name
	}
	r.imports = append(r.imports, imp)
	return nil
}

func (r *reader) qualifiedName() (string, error) {
	var parts []string
	for {
		name, err := r.s.expectIdent()
		if err != nil {
			return "", err
		}
		parts = append(parts, name)
		if !r.s.accept(".") {
			return strings.Join(parts, "."), nil
		}
	}
}

func (r *reader) namespaceDecl() error {
	r.s.next()
	name, err := r.qualifiedName()
	if err != nil {
		return err
	}

	// file-scoped namespaces cover the rest of the file
	if r.s.accept(";") {
		r.namespaces = append(r.namespaces, name)
		return nil
	}

	open, err := r.s.expect("{")
	if err != nil {
		return err
	}

	savedImports := len(r.imports)
	savedNamespaces := len(r.namespaces)
	savedAliases := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		savedAliases[k] = v
	}

	r.namespaces = append(r.namespaces, name)
	for !r.s.at("}") {
		if r.s.eof() {
			return r.s.errorf(open, "unterminated namespace %s", name)
		}
		if err := r.namespaceMember(); err != nil {
			return err
		}
	}
	r.s.next()
	r.s.accept(";")

	r.imports = r.imports[:savedImports]
	r.namespaces = r.namespaces[:savedNamespaces]
	r.aliases = savedAliases
	return nil
}

// skipStatement skips a top-level statement or unsupported construct.
// It always makes progress.
func (r *reader) skipStatement() error {
	first := true
	for {
		t := r.s.peek()
		if t.kind == "EOF" {
			return nil
		}
		if !first && (t.is("}") || r.atTypeKeyword()) {
			return nil
		}
		first = false
		switch {
		case t.is(";"):
			r.s.next()
			return nil
		case t.kind == "Punct" && closers[t.text] != "":
			if err := r.s.skipBalanced(); err != nil {
				return err
			}
			if t.is("{") {
				return nil
			}
		default:
			r.s.next()
		}
	}
}

// modifiers consumes declaration modifiers
func (r *reader) modifiers() models.Modifier {
	var mods models.Modifier
	for {
		t := r.s.peek()
		if !t.isIdent() {
			return mods
		}
		if t.text == "ref" && r.refStructAhead() {
			r.s.next()
			continue
		}
		m, ok := models.ParseModifier(t.text)
		if !ok {
			return mods
		}
		// a modifier keyword directly followed by a declarator is a name
		next := r.s.peekN(1)
		if next.is("(") || next.is(";") || next.is("=") || next.is(",") || next.is("{") {
			return mods
		}
		r.s.next()
		mods |= m
	}
}

func (r *reader) refStructAhead() bool {
	n := r.s.peekN(1)
	if n.is("struct") || n.is("partial") {
		return true
	}
	return n.is("readonly") && (r.s.peekN(2).is("struct") || r.s.peekN(2).is("partial"))
}

// atTypeKeyword reports whether a type declaration keyword is next
func (r *reader) atTypeKeyword() bool {
	t := r.s.peek()
	if !t.isIdent() {
		return false
	}
	switch t.text {
	case "class", "struct", "interface", "enum":
		return true
	case "delegate":
		return !r.s.peekN(1).is("*") && !r.s.peekN(1).is("(") && !r.s.peekN(1).is("{")
	case "record":
		n := r.s.peekN(1)
		return n.isIdent()
	}
	return false
}

// attributes reads consecutive attribute sections
func (r *reader) attributes() ([]*attributeSection, error) {
	var out []*attributeSection
	for r.s.at("[") {
		openTok := r.s.peek()
		open := r.s.i
		if err := r.s.skipBalanced(); err != nil {
			return nil, err
		}
		closeIdx := r.s.i - 1
		if closeIdx-open < 2 {
			continue
		}

		text := r.s.text(open+1, closeIdx-1, r.src)
		sec, err := parseAttributeSection(r.s.file, text)
		if err != nil {
			if r.mentionsMarker(open+1, closeIdx-1) {
				r.errorf(openTok, "cannot read marker attribute: %v", err)
			}
			continue
		}
		out = append(out, sec)
	}
	return out, nil
}

func (r *reader) skipAttributes() error {
	_, err := r.attributes()
	return err
}

func (r *reader) mentionsMarker(from, to int) bool {
	for i := from; i <= to && i < len(r.s.toks); i++ {
		if t := r.s.toks[i]; t.isIdent() && r.p.IsMarker(t.text) {
			return true
		}
	}
	return false
}

// findMarker returns the marker among the sections applied to a type
func (r *reader) findMarker(sections []*attributeSection, at token) *models.Marker {
	var found *models.Marker
	for _, sec := range sections {
		if sec.Target != "" && sec.Target != "type" {
			continue
		}
		for _, attr := range sec.Attributes {
			if !r.p.IsMarker(attr.simpleName()) {
				continue
			}
			if found != nil {
				r.warnf(at, "marker %s applied more than once", attr.simpleName())
				continue
			}
			m, ok := attr.marker()
			if !ok {
				r.errorf(at, "marker %s arguments must be string literals", attr.simpleName())
			}
			found = m
		}
	}
	return found
}
