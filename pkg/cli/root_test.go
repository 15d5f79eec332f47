package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/funvibe/shapeshift/internal/config"
)

const echoManifest = `capabilities:
  - name: Echo
    methods:
      - fn echo(&self) -> String
unions:
  - name: Foo
    pattern: "(T) | where T: ^Echo"
    variants:
      - name: A
        fields: [Inner]
      - B
`

const brokenManifest = `unions:
  - name: Bad
    pattern: "{ id: T }"
    variants:
      - name: A
        fields: [u8]
`

func testCommand(stdout, stderr *bytes.Buffer) *cobra.Command {
	a := &app{
		stdout:    stdout,
		stderr:    stderr,
		logger:    zap.NewNop(),
		newLogger: func(bool) (*zap.Logger, error) { return zap.NewNop(), nil },
	}
	return a.rootCommand()
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.ManifestFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := testCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerateStdout(t *testing.T) {
	path := writeManifest(t, echoManifest)
	out, _, err := execute(t, "generate", "--stdout", path)
	require.NoError(t, err)

	assert.Contains(t, out, config.GeneratedHeader)
	assert.Contains(t, out, "impl Echo for Foo {")
	assert.Contains(t, out, "Foo::A(val) => val.echo(),")
	assert.Contains(t, out, "Foo::B => Default::default(),")
}

func TestGenerateWritesOutputFile(t *testing.T) {
	path := writeManifest(t, echoManifest)
	out, _, err := execute(t, "generate", path)
	require.NoError(t, err)

	target := filepath.Join(filepath.Dir(path), config.DefaultOutputFile)
	assert.Contains(t, out, "wrote "+target)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "enum Foo {")
}

func TestCheckReportsDiagnostics(t *testing.T) {
	path := writeManifest(t, brokenManifest)
	_, stderr, err := execute(t, "check", path)
	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, stderr, "Bad: 1 error")
	assert.Contains(t, stderr, "[M001]")
	assert.Contains(t, stderr, path+":")
}

func TestCheckSuccess(t *testing.T) {
	path := writeManifest(t, echoManifest)
	out, stderr, err := execute(t, "check", path)
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Equal(t, "ok Foo (1 implementation)\n", out)
}

func TestGenerateSkipsFailedManifest(t *testing.T) {
	path := writeManifest(t, brokenManifest)
	_, _, err := execute(t, "generate", path)
	assert.ErrorIs(t, err, errFailed)
	_, statErr := os.Stat(filepath.Join(filepath.Dir(path), config.DefaultOutputFile))
	assert.True(t, os.IsNotExist(statErr), "no output may be written for a failed manifest")
}

func TestCapabilities(t *testing.T) {
	path := writeManifest(t, echoManifest)
	out, _, err := execute(t, "capabilities", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Echo")
	assert.Contains(t, out, "registered at 2:5")
	assert.Contains(t, out, "Display")

	out, _, err = execute(t, "--no-builtins", "capabilities", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "Display")
}

func TestMetricsFile(t *testing.T) {
	path := writeManifest(t, echoManifest)
	metricsPath := filepath.Join(t.TempDir(), "shapeshift.prom")
	_, _, err := execute(t, "--metrics-file", metricsPath, "check", path)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `shapeshift_synth_invocations_total{outcome="success"} 1`)
}

func TestMissingManifest(t *testing.T) {
	_, _, err := execute(t, "check", filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorContains(t, err, "reading manifest")
}
