package csharp

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/toyz/autoiface/internal/models"
)

// attributeSection is one "[target: A(...), B]" list
type attributeSection struct {
	Target     string       `parser:"( @Ident ':' )?"`
	Attributes []*attribute `parser:"@@ ( ',' @@ )* ','?"`
}

// attribute is a single attribute with its optional argument list
type attribute struct {
	Global    bool           `parser:"( @'global' DoubleColon )?"`
	Name      []string       `parser:"@Ident ( '.' @Ident )*"`
	Arguments []*attributeArg `parser:"( '(' ( @@ ( ',' @@ )* )? ')' )?"`
}

// attributeArg is "value", "name: value" or "Name = value"
type attributeArg struct {
	Name  string      `parser:"( @Ident ( ':' | '=' ) )?"`
	Value []*exprPart `parser:"@@+"`
}

// exprPart is a token of an argument expression or a parenthesized group
type exprPart struct {
	Group *exprGroup `parser:"  '(' @@ ')'"`
	Token *exprToken `parser:"| @@"`
}

type exprGroup struct {
	Parts []*groupPart `parser:"@@*"`
}

type groupPart struct {
	Group *exprGroup `parser:"  '(' @@ ')'"`
	Token string     `parser:"| @~( '(' | ')' )"`
}

type exprToken struct {
	Literal string `parser:"  @( String | VerbatimString | RawString )"`
	Other   string `parser:"| @~( ',' | '(' | ')' )"`
}

var attributeParser = participle.MustBuild[attributeSection](
	participle.Lexer(csLexer),
	participle.Elide("Whitespace", "Comment", "Directive"),
	participle.UseLookahead(3),
)

// simpleName returns the last name segment without the Attribute suffix
func (a *attribute) simpleName() string {
	if len(a.Name) == 0 {
		return ""
	}
	return strings.TrimSuffix(a.Name[len(a.Name)-1], "Attribute")
}

// marker converts the attribute into a marker annotation
func (a *attribute) marker() (*models.Marker, bool) {
	m := &models.Marker{Name: a.simpleName()}
	for _, arg := range a.Arguments {
		value, ok := arg.literal()
		if !ok {
			return m, false
		}
		m.Arguments = append(m.Arguments, models.MarkerArgument{Name: arg.Name, Value: value})
	}
	return m, true
}

// literal returns the unquoted value of an argument that is a single
// string literal or null
func (a *attributeArg) literal() (string, bool) {
	if len(a.Value) != 1 || a.Value[0].Token == nil {
		return "", false
	}
	tok := a.Value[0].Token
	if tok.Other == "null" {
		return "", true
	}
	if tok.Literal == "" {
		return "", false
	}
	return unquote(tok.Literal)
}

// unquote decodes regular, verbatim and raw string literals. Interpolated
// literals are rejected.
func unquote(lit string) (string, bool) {
	switch {
	case strings.HasPrefix(lit, "$"):
		return "", false
	case strings.HasPrefix(lit, `"""`):
		body := strings.TrimSuffix(strings.TrimPrefix(lit, `"""`), `"""`)
		return strings.TrimSpace(body), true
	case strings.HasPrefix(lit, `@"`):
		body := lit[2 : len(lit)-1]
		return strings.ReplaceAll(body, `""`, `"`), true
	default:
		s, err := strconv.Unquote(lit)
		if err != nil {
			return "", false
		}
		return s, true
	}
}

// parseAttributeSection parses the source text of one attribute section,
// brackets excluded
func parseAttributeSection(file, text string) (*attributeSection, error) {
	return attributeParser.ParseString(file, text)
}
