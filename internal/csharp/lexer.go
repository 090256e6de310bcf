// Package csharp reads C# source files and extracts the declarations of
// types carrying a marker attribute. It is a declaration reader, not a
// compiler: member bodies, initializers and attribute arguments other than
// the marker's are skipped as balanced token runs.
package csharp

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/autoiface/internal/errors"
	"github.com/toyz/autoiface/internal/models"
)

// csLexer tokenizes C# source. Every ">" is its own token so nested
// generic argument lists close one level at a time.
var csLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*[\s\S]*?\*/`},
	{Name: "Directive", Pattern: `#[^\n]*`},
	{Name: "RawString", Pattern: `\$*"""[\s\S]*?"""`},
	{Name: "VerbatimString", Pattern: `(?:\$@|@\$|@)"(?:[^"]|"")*"`},
	{Name: "String", Pattern: `\$?"(?:\\.|[^"\\\n])*"`},
	{Name: "Char", Pattern: `'(?:\\.|[^'\\\n])+'`},
	{Name: "Number", Pattern: `[0-9][0-9a-fA-FxX_]*(?:\.[0-9][0-9_]*)?(?:[eE][+-]?[0-9]+)?[uUlLfFdDmM]*`},
	{Name: "Ident", Pattern: `@?[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "DoubleColon", Pattern: `::`},
	{Name: "Arrow", Pattern: `=>`},
	{Name: "Punct", Pattern: `[{}()\[\]<>,;:.=?*&|!+\-/%^~]`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `.`},
})

var (
	symbols   = csLexer.Symbols()
	kindNames = func() map[lexer.TokenType]string {
		names := make(map[lexer.TokenType]string, len(symbols))
		for name, t := range symbols {
			names[t] = name
		}
		return names
	}()
)

// token is a lexed, significant token
type token struct {
	kind string // lexer rule name, "EOF" at the end
	text string
	pos  lexer.Position
}

func (t token) is(text string) bool {
	return t.text == text && t.kind != "String" && t.kind != "VerbatimString" && t.kind != "RawString"
}

func (t token) isIdent() bool {
	return t.kind == "Ident"
}

// tokenize lexes src and drops whitespace, comments and preprocessor lines
func tokenize(filename, src string) ([]token, error) {
	lex, err := csLexer.LexString(filename, src)
	if err != nil {
		return nil, errors.WrapParseError(filename, err)
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		var loc models.SourceLocation
		loc.File = filename
		if perr, ok := err.(interface{ Position() lexer.Position }); ok {
			loc.Line = perr.Position().Line
			loc.Column = perr.Position().Column
		}
		return nil, errors.WrapParseError(filename, err).WithLocation(loc)
	}

	toks := make([]token, 0, len(raw)/2)
	for _, t := range raw {
		kind := kindNames[t.Type]
		switch kind {
		case "Whitespace", "Comment", "Directive":
			continue
		}
		if t.EOF() {
			kind = "EOF"
		}
		toks = append(toks, token{kind: kind, text: t.Value, pos: t.Pos})
	}
	if len(toks) == 0 || toks[len(toks)-1].kind != "EOF" {
		toks = append(toks, token{kind: "EOF"})
	}
	return toks, nil
}
