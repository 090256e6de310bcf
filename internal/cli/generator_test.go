package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/autoiface/internal/errors"
	"github.com/toyz/autoiface/internal/utils"
)

const userService = `using System;

namespace App.Services
{
    [AutoInterface]
    public class UserService
    {
        public string Name { get; set; }
        public void Save(int id) { }
        private int _cache;
    }
}
`

// testGenerator builds a generator over dir with output captured
func testGenerator(t *testing.T, dir string, adjust ...func(*Config)) (*Generator, *bytes.Buffer) {
	t.Helper()
	cfg, err := LoadConfig(NewViper(), "", dir)
	require.NoError(t, err)
	for _, fn := range adjust {
		fn(cfg)
	}

	var out bytes.Buffer
	diagnostics := utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	diagnostics.SetOutput(&out, &out)
	reporter := NewDiagnosticReporter(false)
	reporter.SetOutput(&out)

	gen, err := NewGenerator(cfg, diagnostics, reporter)
	require.NoError(t, err)
	return gen, &out
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func read(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestGenerator_WritesContractNextToSource(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "Services", "UserService.cs"), userService)
	write(t, filepath.Join(dir, "Services", "Plain.cs"), "public class Plain { public int X { get; } }")

	gen, _ := testGenerator(t, dir)
	summary, err := gen.Generate(context.Background(), []string{dir + "/..."})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.FilesScanned)
	assert.Equal(t, 1, summary.Declarations)
	assert.Equal(t, 1, summary.Written)
	assert.NotEqual(t, [16]byte{}, [16]byte(summary.RunID))

	out := filepath.Join(dir, "Services", "IUserService.g.cs")
	require.Equal(t, []string{out}, summary.GeneratedFiles)

	text := read(t, out)
	assert.True(t, strings.HasPrefix(text, "// <auto-generated>"))
	assert.Contains(t, text, "using System;")
	assert.Contains(t, text, "namespace App.Services")
	assert.Contains(t, text, "public interface IUserService")
	assert.Contains(t, text, "string Name { get; set; }")
	assert.Contains(t, text, "void Save(int id);")
	assert.NotContains(t, text, "_cache")
}

func TestGenerator_PartialMembersAndNestedTypes(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "Svc.cs"), `namespace App;

[AutoInterface]
public partial class Svc
{
    public partial void Run(int x);
    public partial string Name { get; set; }
    public Options Current() => new Options();
    public class Options { }
}
`)
	write(t, filepath.Join(dir, "Svc.Impl.cs"), `namespace App;

public partial class Svc
{
    private string _name = "";
    public partial void Run(int x) { }
    public partial string Name { get => _name; set => _name = value; }
}
`)

	gen, _ := testGenerator(t, dir)
	_, err := gen.Generate(context.Background(), []string{dir})
	require.NoError(t, err)

	text := read(t, filepath.Join(dir, "ISvc.g.cs"))
	assert.Equal(t, 1, strings.Count(text, "void Run(int x);"))
	assert.Equal(t, 1, strings.Count(text, "string Name { get; set; }"))
	assert.Contains(t, text, "global::App.Svc.Options Current();")
}

func TestGenerator_WriteIfChanged(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "UserService.cs")
	write(t, src, userService)

	gen, _ := testGenerator(t, dir)
	ctx := context.Background()

	first, err := gen.Generate(ctx, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Written)

	second, err := gen.Generate(ctx, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Written)
	assert.Equal(t, 1, second.Unchanged)
	assert.Equal(t, 0, second.Synthesized)
	assert.Equal(t, 1, second.FilesCached)

	// a body-only edit keeps the snapshot and the file
	write(t, src, strings.Replace(userService, "public void Save(int id) { }", "public void Save(int id) { Console.WriteLine(id); }", 1))
	third, err := gen.Generate(ctx, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 0, third.Written)
	assert.Equal(t, 0, third.Synthesized)

	write(t, src, strings.Replace(userService, "public void Save(int id)", "public void Save(long id)", 1))
	fourth, err := gen.Generate(ctx, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 1, fourth.Written)
	assert.Contains(t, read(t, filepath.Join(dir, "IUserService.g.cs")), "void Save(long id);")
}

func TestGenerator_RemovesVanishedOutputs(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "UserService.cs")
	write(t, src, userService)

	gen, _ := testGenerator(t, dir)
	ctx := context.Background()
	_, err := gen.Generate(ctx, []string{dir})
	require.NoError(t, err)

	write(t, src, strings.Replace(userService, "[AutoInterface]", `[AutoInterface("IUsers")]`, 1))
	summary, err := gen.Generate(ctx, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Removed)
	assert.NoFileExists(t, filepath.Join(dir, "IUserService.g.cs"))
	assert.FileExists(t, filepath.Join(dir, "IUsers.g.cs"))

	write(t, src, strings.Replace(userService, "[AutoInterface]", "", 1))
	summary, err = gen.Generate(ctx, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Declarations)
	assert.Equal(t, []string{filepath.Join(dir, "IUsers.g.cs")}, summary.RemovedFiles)
	assert.NoFileExists(t, filepath.Join(dir, "IUsers.g.cs"))
}

func TestGenerator_OutputDirectory(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "src", "UserService.cs"), userService)
	outDir := filepath.Join(dir, "Generated")

	gen, _ := testGenerator(t, dir, func(c *Config) { c.Output = outDir })
	_, err := gen.Generate(context.Background(), []string{dir + "/..."})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "IUserService.g.cs"))
}

func TestGenerator_Manifest(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "api.autoiface.yaml"), `
namespace: App.Api
types:
  - name: Client
    modifiers: [public]
    marker: true
    members:
      - kind: method
        name: Send
        type: bool
        modifiers: [public]
        parameters:
          - {type: string, name: payload}
`)

	gen, _ := testGenerator(t, dir)
	_, err := gen.Generate(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Contains(t, read(t, filepath.Join(dir, "IClient.g.cs")), "bool Send(string payload);")
}

func TestGenerator_Check(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "UserService.cs")
	write(t, src, userService)

	gen, _ := testGenerator(t, dir)
	ctx := context.Background()

	summary, err := gen.Check(ctx, []string{dir})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStale))
	assert.Equal(t, []string{filepath.Join(dir, "IUserService.g.cs")}, summary.StaleFiles)
	assert.NoFileExists(t, filepath.Join(dir, "IUserService.g.cs"))

	_, err = gen.Generate(ctx, []string{dir})
	require.NoError(t, err)

	summary, err = gen.Check(ctx, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Unchanged)
}

func TestGenerator_CheckIgnoresTimestamp(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "UserService.cs"), userService)

	gen, _ := testGenerator(t, dir, func(c *Config) { c.Contract.Timestamp = true })
	ctx := context.Background()
	_, err := gen.Generate(ctx, []string{dir})
	require.NoError(t, err)
	assert.Contains(t, read(t, filepath.Join(dir, "IUserService.g.cs")), "// Generated: ")

	// a fresh generator renders with a new timestamp
	fresh, _ := testGenerator(t, dir, func(c *Config) { c.Contract.Timestamp = true })
	_, err = fresh.Check(ctx, []string{dir})
	assert.NoError(t, err)
}

func TestGenerator_RefusesHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "UserService.cs"), userService)
	handWritten := filepath.Join(dir, "IUserService.g.cs")
	write(t, handWritten, "public interface IUserService { }\n")

	gen, out := testGenerator(t, dir)
	summary, err := gen.Generate(context.Background(), []string{dir})
	require.Error(t, err)
	assert.Equal(t, errors.ConflictErrorCode, errors.CodeOf(err))
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, "public interface IUserService { }\n", read(t, handWritten))
	assert.NotContains(t, out.String(), "✓ "+handWritten)
}

func TestGenerator_ConflictingOutputs(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "A.cs"), `namespace A { [AutoInterface("IShared")] public class One { } }`)
	write(t, filepath.Join(dir, "B.cs"), `namespace A { [AutoInterface("IShared")] public class Two { } }`)

	gen, _ := testGenerator(t, dir)
	summary, err := gen.Generate(context.Background(), []string{dir})
	require.Error(t, err)
	assert.Equal(t, errors.ConflictErrorCode, errors.CodeOf(err))
	assert.Equal(t, 1, summary.Written)
	assert.Contains(t, err.Error(), "IShared.g.cs")
}

func TestGenerator_CollectsFrontEndErrors(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "Broken.cs"), "[AutoInterface] public class Broken { public void Run( }")
	write(t, filepath.Join(dir, "UserService.cs"), userService)

	gen, _ := testGenerator(t, dir)
	summary, err := gen.Generate(context.Background(), []string{dir})
	require.Error(t, err)
	assert.Equal(t, errors.SyntaxErrorCode, errors.CodeOf(err))
	assert.Equal(t, 1, summary.Errors)
	// the healthy file is still generated
	assert.Equal(t, 1, summary.Written)
}

func TestGenerator_ReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "Partial.cs"), `
namespace App
{
    [AutoInterface]
    public partial class Repo { public void A() { } }

    [AutoInterface]
    public partial class Repo { public void B() { } }
}
`)

	gen, out := testGenerator(t, dir)
	summary, err := gen.Generate(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Warnings)
	assert.Contains(t, out.String(), "marker repeated on partial declaration of Repo")

	text := read(t, filepath.Join(dir, "IRepo.g.cs"))
	assert.Contains(t, text, "void A();")
	assert.Contains(t, text, "void B();")
}

func TestGenerator_Cancelled(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "UserService.cs"), userService)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen, _ := testGenerator(t, dir)
	_, err := gen.Generate(ctx, []string{dir})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, "IUserService.g.cs"))
}
