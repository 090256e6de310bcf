package csharp

import (
	"strings"

	"github.com/toyz/autoiface/internal/errors"
	"github.com/toyz/autoiface/internal/models"
)

// stream is a cursor over significant tokens
type stream struct {
	file string
	toks []token
	i    int
}

func (s *stream) peek() token {
	return s.peekN(0)
}

func (s *stream) peekN(n int) token {
	if s.i+n >= len(s.toks) {
		return s.toks[len(s.toks)-1]
	}
	return s.toks[s.i+n]
}

func (s *stream) next() token {
	t := s.peek()
	if s.i < len(s.toks)-1 {
		s.i++
	}
	return t
}

func (s *stream) eof() bool {
	return s.peek().kind == "EOF"
}

func (s *stream) at(text string) bool {
	return s.peek().is(text)
}

func (s *stream) accept(text string) bool {
	if s.at(text) {
		s.next()
		return true
	}
	return false
}

func (s *stream) expect(text string) (token, error) {
	t := s.peek()
	if !t.is(text) {
		return t, s.errorf(t, "expected %q, found %s", text, describe(t))
	}
	return s.next(), nil
}

func (s *stream) expectIdent() (string, error) {
	t := s.peek()
	if !t.isIdent() {
		return "", s.errorf(t, "expected identifier, found %s", describe(t))
	}
	s.next()
	return t.text, nil
}

func (s *stream) loc(t token) models.SourceLocation {
	return models.SourceLocation{File: s.file, Line: t.pos.Line, Column: t.pos.Column}
}

func (s *stream) errorf(t token, format string, args ...interface{}) error {
	return errors.SyntaxError(s.loc(t), format, args...)
}

func describe(t token) string {
	if t.kind == "EOF" {
		return "end of file"
	}
	return "\"" + t.text + "\""
}

var closers = map[string]string{"{": "}", "(": ")", "[": "]"}

// skipBalanced consumes an opening bracket and everything up to and
// including its matching closer
func (s *stream) skipBalanced() error {
	open := s.next()
	closer, ok := closers[open.text]
	if !ok {
		return s.errorf(open, "expected bracket, found %s", describe(open))
	}
	stack := []string{closer}
	for len(stack) > 0 {
		t := s.next()
		switch {
		case t.kind == "EOF":
			return s.errorf(open, "unterminated %q", open.text)
		case t.kind == "Punct" && closers[t.text] != "":
			stack = append(stack, closers[t.text])
		case t.kind == "Punct" && t.text == stack[len(stack)-1]:
			stack = stack[:len(stack)-1]
		}
	}
	return nil
}

// skipUntil consumes tokens at bracket depth zero until one of stops is
// the next token. The stop token is not consumed.
func (s *stream) skipUntil(stops ...string) error {
	for {
		t := s.peek()
		if t.kind == "EOF" {
			return s.errorf(t, "expected one of %s, found end of file", strings.Join(stops, " "))
		}
		for _, stop := range stops {
			if t.is(stop) {
				return nil
			}
		}
		if t.kind == "Punct" && closers[t.text] != "" {
			if err := s.skipBalanced(); err != nil {
				return err
			}
			continue
		}
		s.next()
	}
}

// text returns the source between two token indexes, inclusive
func (s *stream) text(from, to int, src string) string {
	if from > to || to >= len(s.toks) {
		return ""
	}
	start := s.toks[from].pos.Offset
	last := s.toks[to]
	end := last.pos.Offset + len(last.text)
	if start < 0 || end > len(src) || start > end {
		return ""
	}
	return src[start:end]
}

// nestedTypeNames looks ahead from a type header to its body and returns
// the names of the types declared directly inside it. The cursor does not
// move.
func (s *stream) nestedTypeNames() map[string]bool {
	open := s.bodyStart()
	if open < 0 {
		return nil
	}
	names := make(map[string]bool)
	depth := 0
	for i := open + 1; i < len(s.toks); i++ {
		t := s.toks[i]
		switch {
		case t.kind == "EOF":
			return names
		case t.kind == "Punct" && closers[t.text] != "":
			depth++
		case t.is("}") || t.is(")") || t.is("]"):
			if depth == 0 {
				return names
			}
			depth--
		case depth == 0 && t.isIdent():
			if name := s.declaredTypeName(i); name != "" {
				names[name] = true
			}
		}
	}
	return names
}

// bodyStart returns the index of the "{" opening the body of the type
// header at the cursor, or -1 for a bodiless declaration
func (s *stream) bodyStart() int {
	depth := 0
	for i := s.i; i < len(s.toks); i++ {
		t := s.toks[i]
		switch {
		case t.kind == "EOF":
			return -1
		case depth == 0 && (t.is(";") || t.is("}")):
			return -1
		case depth == 0 && t.is("{"):
			return i
		case t.is("(") || t.is("["):
			depth++
		case t.is(")") || t.is("]"):
			depth--
		}
	}
	return -1
}

// declaredTypeName returns the type name declared by the keyword at i, or
// an empty string when the token does not start a type declaration
func (s *stream) declaredTypeName(i int) string {
	at := func(j int) token {
		if j >= len(s.toks) {
			return s.toks[len(s.toks)-1]
		}
		return s.toks[j]
	}
	// "where T : class" and "where T : struct"
	if i > 0 && (s.toks[i-1].is(":") || s.toks[i-1].is(",")) {
		return ""
	}

	switch s.toks[i].text {
	case "class", "struct", "interface", "enum":
		if n := at(i + 1); n.isIdent() {
			return n.text
		}
	case "record":
		j := i + 1
		if at(j).is("struct") || at(j).is("class") {
			j++
		}
		if n := at(j); n.isIdent() && (at(j+1).is("(") || at(j+1).is("{") || at(j+1).is("<") || at(j+1).is(":") || at(j+1).is(";")) {
			return n.text
		}
	case "delegate":
		// the name is the last identifier outside generic arguments before "("
		angle, last := 0, ""
		for j := i + 1; j < len(s.toks); j++ {
			t := s.toks[j]
			switch {
			case t.kind == "EOF" || t.is(";") || t.is("{"):
				return ""
			case t.is("<"):
				angle++
			case t.is(">"):
				angle--
			case angle == 0 && t.is("("):
				return last
			case angle == 0 && t.isIdent():
				last = t.text
			}
		}
	}
	return ""
}
