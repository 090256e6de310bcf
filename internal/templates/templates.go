package templates

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// BannerMarker is the first line of every generated file. The cleaner and
// the staleness check rely on it to recognise files they own.
const BannerMarker = "// <auto-generated>"

// GeneratedPrefix starts the optional timestamp line of the banner
const GeneratedPrefix = "// Generated: "

// BannerTemplate is the auto-generated header written at the top of every
// contract and marker file
const BannerTemplate = `// <auto-generated>
// This code was generated by a tool.
// Name: {{.ToolName}}
// Version: {{.Version}}
{{- if .Generated}}
// Generated: {{.Generated}}
{{- end}}
// </auto-generated>`

// MarkerTemplate is the static declaration of the marker attribute
const MarkerTemplate = `#pragma warning disable CS9113
namespace {{.Namespace}}
{
{{indent 1}}[global::System.Diagnostics.DebuggerNonUserCode]
{{indent 1}}[global::System.Runtime.CompilerServices.CompilerGenerated]
{{indent 1}}[global::System.Diagnostics.CodeAnalysis.ExcludeFromCodeCoverage]
{{indent 1}}[global::System.AttributeUsage(global::System.AttributeTargets.Class | global::System.AttributeTargets.Struct, AllowMultiple = false, Inherited = false)]
{{indent 1}}public sealed class {{.Name}}Attribute : global::System.Attribute
{{indent 1}}{
{{indent 2}}public {{.Name}}Attribute(string customName = "")
{{indent 2}}{
{{indent 2}}}
{{indent 1}}}
}
#pragma warning restore CS9113`

// BannerData holds the values rendered into BannerTemplate
type BannerData struct {
	ToolName  string
	Version   string
	Generated string // empty to omit the timestamp line
}

// MarkerData holds the values rendered into MarkerTemplate
type MarkerData struct {
	Namespace  string
	Name       string // attribute name without the Attribute suffix
	IndentSize int
}

// executeTemplate executes a Go template with the given data
func executeTemplate(name, templateStr string, data interface{}, indentSize int) (string, error) {
	funcMap := template.FuncMap{
		"indent": func(level int) string {
			return strings.Repeat(" ", level*indentSize)
		},
	}

	tmpl, err := template.New(name).Funcs(funcMap).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

// RenderBanner renders the banner as separate lines
func RenderBanner(data BannerData) ([]string, error) {
	text, err := executeTemplate("banner", BannerTemplate, data, DefaultIndentSize)
	if err != nil {
		return nil, err
	}
	return strings.Split(text, "\n"), nil
}

// RenderMarker renders the marker attribute declaration
func RenderMarker(data MarkerData) (string, error) {
	size := data.IndentSize
	if size <= 0 {
		size = DefaultIndentSize
	}
	return executeTemplate("marker", MarkerTemplate, data, size)
}

// IsGenerated reports whether text starts with the auto-generated banner
func IsGenerated(text string) bool {
	return strings.HasPrefix(text, BannerMarker)
}

// StripTimestamp removes the banner's Generated line so two renderings
// of the same contract at different times compare equal
func StripTimestamp(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, GeneratedPrefix) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
