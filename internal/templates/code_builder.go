package templates

import "strings"

// DefaultIndentSize is the number of spaces per indentation level
const DefaultIndentSize = 4

// CodeBuilder assembles generated source line by line while tracking the
// brace nesting depth
type CodeBuilder struct {
	lines      []string
	indentSize int
	level      int
}

// NewCodeBuilder creates a builder indenting by indentSize spaces, or by
// DefaultIndentSize when indentSize is not positive
func NewCodeBuilder(indentSize int) *CodeBuilder {
	if indentSize <= 0 {
		indentSize = DefaultIndentSize
	}
	return &CodeBuilder{indentSize: indentSize}
}

// WriteLine appends one line at the current indentation
func (b *CodeBuilder) WriteLine(text string) *CodeBuilder {
	if text == "" {
		b.lines = append(b.lines, "")
		return b
	}
	b.lines = append(b.lines, b.indent()+text)
	return b
}

// WriteLines appends several lines at the current indentation
func (b *CodeBuilder) WriteLines(lines ...string) *CodeBuilder {
	for _, line := range lines {
		b.WriteLine(line)
	}
	return b
}

// NewLine appends an empty line
func (b *CodeBuilder) NewLine() *CodeBuilder {
	b.lines = append(b.lines, "")
	return b
}

// OpenBlock writes "{" and increases the indentation
func (b *CodeBuilder) OpenBlock() *CodeBuilder {
	b.WriteLine("{")
	b.level++
	return b
}

// CloseBlock decreases the indentation and writes "}"
func (b *CodeBuilder) CloseBlock() *CodeBuilder {
	if b.level > 0 {
		b.level--
	}
	b.WriteLine("}")
	return b
}

// CloseAllBlocks closes every open block
func (b *CodeBuilder) CloseAllBlocks() *CodeBuilder {
	for b.level > 0 {
		b.CloseBlock()
	}
	return b
}

// Lines returns a copy of the written lines
func (b *CodeBuilder) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// String joins the lines with newlines
func (b *CodeBuilder) String() string {
	return strings.Join(b.lines, "\n")
}

func (b *CodeBuilder) indent() string {
	return strings.Repeat(" ", b.level*b.indentSize)
}
