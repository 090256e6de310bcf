package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBanner(t *testing.T) {
	lines, err := RenderBanner(BannerData{ToolName: "autoiface", Version: "1.2.0"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"// <auto-generated>",
		"// This code was generated by a tool.",
		"// Name: autoiface",
		"// Version: 1.2.0",
		"// </auto-generated>",
	}, lines)
}

func TestRenderBanner_WithTimestamp(t *testing.T) {
	lines, err := RenderBanner(BannerData{ToolName: "autoiface", Version: "1.2.0", Generated: "2024-01-02T03:04:05Z"})
	require.NoError(t, err)

	require.Len(t, lines, 6)
	assert.Equal(t, "// Generated: 2024-01-02T03:04:05Z", lines[4])
	assert.Equal(t, "// </auto-generated>", lines[5])
}

func TestRenderMarker(t *testing.T) {
	text, err := RenderMarker(MarkerData{Namespace: "AutoInterfaces", Name: "AutoInterface"})
	require.NoError(t, err)

	assert.Contains(t, text, "namespace AutoInterfaces\n{")
	assert.Contains(t, text, "    public sealed class AutoInterfaceAttribute : global::System.Attribute")
	assert.Contains(t, text, "        public AutoInterfaceAttribute(string customName = \"\")")
	assert.True(t, strings.HasPrefix(text, "#pragma warning disable CS9113"))
	assert.True(t, strings.HasSuffix(text, "#pragma warning restore CS9113"))
}

func TestRenderMarker_IndentSize(t *testing.T) {
	text, err := RenderMarker(MarkerData{Namespace: "N", Name: "Contract", IndentSize: 2})
	require.NoError(t, err)
	assert.Contains(t, text, "\n  public sealed class ContractAttribute")
}

func TestExecuteTemplate_ParseError(t *testing.T) {
	_, err := executeTemplate("broken", "{{.Missing", nil, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse template broken")
}

func TestExecuteTemplate_ExecError(t *testing.T) {
	_, err := executeTemplate("exec", "{{.Missing}}", BannerData{}, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute template exec")
}

func TestIsGeneratedAndStripTimestamp(t *testing.T) {
	text := "// <auto-generated>\n// Version: 1.0.0\n// Generated: 2024-01-01T00:00:00Z\n// </auto-generated>\n"
	assert.True(t, IsGenerated(text))
	assert.False(t, IsGenerated("namespace A {}"))

	assert.Equal(t, "// <auto-generated>\n// Version: 1.0.0\n// </auto-generated>\n", StripTimestamp(text))
}

func TestCodeBuilder(t *testing.T) {
	b := NewCodeBuilder(0)
	b.WriteLine("namespace A").OpenBlock()
	b.WriteLine("interface IB").OpenBlock()
	b.WriteLine("void C();")
	b.CloseAllBlocks()

	assert.Equal(t, []string{
		"namespace A",
		"{",
		"    interface IB",
		"    {",
		"        void C();",
		"    }",
		"}",
	}, b.Lines())
}

func TestCodeBuilder_EmptyLinesCarryNoIndent(t *testing.T) {
	b := NewCodeBuilder(2)
	b.OpenBlock().WriteLine("").WriteLines("a", "b").NewLine()

	assert.Equal(t, "{\n\n  a\n  b\n", b.String())
}
