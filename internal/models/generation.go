package models

import "strings"

// Contract is the synthesized interface text for one type
type Contract struct {
	FileName string   // suggested output file name, e.g. IService.g.cs
	Lines    []string // output lines without trailing newlines
}

// String joins the lines with "\n" and terminates the text with a newline
func (c Contract) String() string {
	if len(c.Lines) == 0 {
		return ""
	}
	return strings.Join(c.Lines, "\n") + "\n"
}

// Bytes returns the contract text as bytes
func (c Contract) Bytes() []byte {
	return []byte(c.String())
}
