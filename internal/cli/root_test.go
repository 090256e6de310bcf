package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the command tree rooted at dir and returns the exit code
// together with stdout and stderr
func runCLI(t *testing.T, dir string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	app := &App{v: NewViper(), workDir: dir, reporter: NewDiagnosticReporter(false)}
	root := app.RootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return ExitError(app.reporter, err), stdout.String(), stderr.String()
}

func TestCLI_GenerateAndCheck(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "UserService.cs"), userService)

	code, _, stderr := runCLI(t, dir, "check", dir)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "generated files are out of date")

	code, stdout, _ := runCLI(t, dir, "generate", dir)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Generation complete")
	assert.FileExists(t, filepath.Join(dir, "IUserService.g.cs"))

	code, stdout, _ = runCLI(t, dir, "check", dir)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "1 contracts up to date")
}

func TestCLI_GenerateFlags(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "Orders.cs"), `[GenerateInterface] public class Orders { public void Ship() { } }`)
	out := filepath.Join(dir, "Generated")

	code, _, _ := runCLI(t, dir, "generate", "--marker", "GenerateInterface", "-o", out, "--extension", "txt", dir)
	require.Equal(t, 0, code)

	text := read(t, filepath.Join(out, "IOrders.g.txt"))
	assert.Contains(t, text, "void Ship();")
}

func TestCLI_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, ConfigFileName), "contract:\n  indent: 2\n")
	write(t, filepath.Join(dir, "UserService.cs"), userService)

	code, _, _ := runCLI(t, dir, "generate", dir)
	require.Equal(t, 0, code)
	assert.Contains(t, read(t, filepath.Join(dir, "IUserService.g.cs")), "\n  public interface IUserService")
}

func TestCLI_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, ConfigFileName), "contract:\n  indent: 99\n")

	code, _, stderr := runCLI(t, dir, "generate", dir)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Type: ValidationError")
	assert.Contains(t, stderr, "contract.indent")
}

func TestCLI_Clean(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "UserService.cs"), userService)

	code, _, _ := runCLI(t, dir, "generate", dir)
	require.Equal(t, 0, code)

	code, stdout, _ := runCLI(t, dir, "clean", dir)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "1 generated files removed")
	assert.NoFileExists(t, filepath.Join(dir, "IUserService.g.cs"))
	assert.FileExists(t, filepath.Join(dir, "UserService.cs"))
}

func TestCLI_Marker(t *testing.T) {
	dir := t.TempDir()

	code, stdout, _ := runCLI(t, dir, "marker")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "// <auto-generated>")
	assert.Contains(t, stdout, "namespace AutoInterfaces")
	assert.Contains(t, stdout, "class AutoInterfaceAttribute")

	code, stdout, _ = runCLI(t, dir, "marker", "--marker", "Contracts.GenerateInterfaceAttribute")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "namespace Contracts")
	assert.Contains(t, stdout, "class GenerateInterfaceAttribute")

	code, _, _ = runCLI(t, dir, "marker", "--name", "Contract", "--namespace", "My.App", "-w", dir)
	require.Equal(t, 0, code)
	text := read(t, filepath.Join(dir, "ContractAttribute.g.cs"))
	assert.Contains(t, text, "namespace My.App")
}

func TestCLI_MarkerInvalidName(t *testing.T) {
	code, _, stderr := runCLI(t, t.TempDir(), "marker", "--name", "not valid")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Type: ValidationError")

	code, _, _ = runCLI(t, t.TempDir(), "marker", "--namespace", "My..App")
	assert.Equal(t, 1, code)
}

func TestCLI_Version(t *testing.T) {
	dir := t.TempDir()
	// a broken config must not matter for version
	write(t, filepath.Join(dir, ConfigFileName), "contract:\n  indent: 99\n")

	code, stdout, _ := runCLI(t, dir, "version")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "autoiface 1.0.0")
	assert.Contains(t, stdout, runtime.Version())
}

func TestExitError(t *testing.T) {
	r, _ := newTestReporter(false)
	assert.Equal(t, 0, ExitError(r, nil))
	assert.Equal(t, 1, ExitError(r, assert.AnError))
	assert.Equal(t, 2, ExitError(r, ErrStale))
}
