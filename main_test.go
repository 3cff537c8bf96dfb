package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func createSampleRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "src/lib.rs", `#[no_mangle]
pub extern "C" fn add(a: i32, b: i32) -> i32 { a + b }
`)
	writeTestFile(t, dir, "src/ffi/sys.rs", `#[link(name = "z")]
extern "C" {
    fn crc32(crc: u32, buf: *const u8, len: u32) -> u32;
}
`)
	writeTestFile(t, dir, "vendor/gen.rs", "pub unsafe fn raw() {}\n")
	writeTestFile(t, dir, "main.rs", "fn main() {}\n")
	return dir
}

func TestRunBasic(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{dir}, &stdout, &stderr), "stderr: %s", stderr.String())

	want := `Total lines of Rust code: 8
Total extern "C" blocks: 1
Total #[link(...)] attributes: 0
Total #[no_mangle] functions: 1
Maximum Rust file depth: 3
Repository classification: FFI-related
`
	assert.Equal(t, want, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRunPureRust(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "main.rs", "fn main() {\n    println!(\"hello\");\n}\n")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{dir}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Total lines of Rust code: 3\n")
	assert.Contains(t, stdout.String(), "Repository classification: Pure Rust\n")
}

func TestRunJSON(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--format", "json", dir}, &stdout, &stderr))

	var got map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.EqualValues(t, 8, got["total_lines"])
	assert.EqualValues(t, 1, got["unsafe_fn_count"])
	assert.EqualValues(t, 3, got["ffi_file_count"])
	assert.Equal(t, "FFI-related", got["classification"])
	assert.NotContains(t, got, "usage")
}

func TestRunYAMLExtended(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-f", "yaml", "--extended", "--top", "2", dir}, &stdout, &stderr))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, 4, got["files"])
	assert.Equal(t, 0, got["parse_failures"])
	hotspots, ok := got["hotspots"].([]any)
	require.True(t, ok)
	assert.Len(t, hotspots, 2)
}

func TestRunTOON(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--format", "toon", "--extended", dir}, &stdout, &stderr))

	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, "total_lines: 8\n"))
	assert.Contains(t, out, "usage[5]{role,files}:")
}

func TestRunBadFormat(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--format", "xml", dir}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
	assert.Empty(t, stdout.String())
}

func TestRunMissingPath(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run(nil, &stdout, &stderr)
	require.ErrorIs(t, err, errUsage)
	assert.Equal(t, usageLine+"\n", stderr.String())
	assert.Empty(t, stdout.String())
}

func TestRunNonexistentPath(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{filepath.Join(t.TempDir(), "nope")}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Total lines of Rust code: 0\n")
	assert.Contains(t, stdout.String(), "Repository classification: Pure Rust\n")
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-V"}, &stdout, &stderr))
	assert.Equal(t, "ffiscan dev\n", stdout.String())
}

func TestRunExclude(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--exclude", "src/ffi", "--exclude", "vendor", "-f", "json", dir}, &stdout, &stderr))

	var got map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.EqualValues(t, 0, got["extern_c"])
	assert.EqualValues(t, 0, got["unsafe_fn_count"])
	assert.EqualValues(t, 2, got["max_depth"])
}

func TestRunGitignore(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	writeTestFile(t, dir, ".gitignore", "vendor/\n")

	var without, with, stderr bytes.Buffer
	require.NoError(t, run([]string{"-f", "json", dir}, &without, &stderr))
	require.NoError(t, run([]string{"--gitignore", "-f", "json", dir}, &with, &stderr))

	var a, b map[string]any
	require.NoError(t, json.Unmarshal(without.Bytes(), &a))
	require.NoError(t, json.Unmarshal(with.Bytes(), &b))
	assert.EqualValues(t, 1, a["unsafe_fn_count"])
	assert.EqualValues(t, 0, b["unsafe_fn_count"])
}

func TestRunProgressGoesToStderr(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var plain, withBar, stderr bytes.Buffer
	require.NoError(t, run([]string{dir}, &plain, &bytes.Buffer{}))
	require.NoError(t, run([]string{"--progress", dir}, &withBar, &stderr))
	assert.Equal(t, plain.String(), withBar.String())
}

func TestRunVerbose(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	writeTestFile(t, dir, "broken.rs", "fn (")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-v", dir}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "skipping construct extraction")
	assert.Contains(t, stdout.String(), "Total lines of Rust code: 9\n")
}

func TestRunIdempotent(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var first, second, stderr bytes.Buffer
	require.NoError(t, run([]string{"-f", "json", "--extended", "--top", "3", dir}, &first, &stderr))
	require.NoError(t, run([]string{"-f", "json", "--extended", "--top", "3", dir}, &second, &stderr))
	assert.Equal(t, first.String(), second.String())
}
