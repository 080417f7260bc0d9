package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const seededTemplate = `name: seeded
format: logfmt
pattern: "$level $user"
fields:
  level:
    type: choice
    values: [INFO, WARN, ERROR]
  user:
    type: int
    min: 1
    max: 9999
`

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, ctx context.Context, args ...string) result {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if ctx != nil {
		cmd.SetContext(ctx)
	}
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func writeTemplate(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"run", "validate", "presets", "config", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	quiet := cmd.PersistentFlags().Lookup("quiet")
	require.NotNil(t, quiet)
	assert.Equal(t, "q", quiet.Shorthand)
}

func TestRunCommand_Flags(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{})
	shorthands := map[string]string{
		"template": "t", "rate": "r", "duration": "d", "count": "c",
		"output": "o", "seed": "s", "format": "f", "burst": "b", "preview": "p",
	}
	for name, short := range shorthands {
		f := cmd.Flags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, short, f.Shorthand, name)
	}
	assert.Equal(t, "text", cmd.Flags().Lookup("summary").DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("corrupt"))
	assert.NotNil(t, cmd.Flags().Lookup("max-write-rate"))
}

func TestRun_CountToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.log")
	res := execute(t, nil, "run", "nginx", "-c", "20", "-r", "1000", "-o", out, "-q")
	require.NoError(t, res.err)

	assert.Len(t, readLines(t, out), 20)
	assert.Contains(t, res.stdout, "logsynth - Run Summary")
	assert.Contains(t, res.stdout, "Lines:        20")
}

func TestRun_ParallelJSONSummary(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.log")
	res := execute(t, nil, "run", "nginx", "syslog", "-c", "11", "-r", "1000", "-o", out, "--summary", "json", "-q")
	require.NoError(t, res.err)

	assert.Len(t, readLines(t, out), 10)
	assert.Equal(t, int64(10), gjson.Get(res.stdout, "total").Int())
	assert.Equal(t, int64(1), gjson.Get(res.stdout, "dropped").Int())
	assert.Equal(t, []string{"nginx", "syslog"}, toStrings(gjson.Get(res.stdout, "streams.#.name").Array()))
	assert.Equal(t, int64(5), gjson.Get(res.stdout, "streams.0.emitted").Int())
}

func toStrings(rs []gjson.Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.String()
	}
	return out
}

func TestRun_Preview(t *testing.T) {
	res := execute(t, nil, "run", "nginx", "--preview")
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "HTTP/1.1")
}

func TestRun_SeedIsReproducible(t *testing.T) {
	tmpl := writeTemplate(t, seededTemplate)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	require.NoError(t, execute(t, nil, "run", "-t", tmpl, "-c", "25", "-r", "1000", "-s", "42", "-o", first, "-q").err)
	require.NoError(t, execute(t, nil, "run", "-t", tmpl, "-c", "25", "-r", "1000", "-s", "42", "-o", second, "-q").err)

	assert.Equal(t, readLines(t, first), readLines(t, second))
}

func TestRun_FormatOverride(t *testing.T) {
	tmpl := writeTemplate(t, seededTemplate)
	out := filepath.Join(t.TempDir(), "out.log")

	require.NoError(t, execute(t, nil, "run", "-t", tmpl, "-c", "3", "-r", "1000", "-f", "json", "-o", out, "-q").err)
	for _, line := range readLines(t, out) {
		assert.True(t, gjson.Valid(line), line)
		assert.True(t, gjson.Get(line, "user").Exists())
	}
}

func TestRun_StreamFailureExitsOne(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	res := execute(t, nil, "run", "nginx", "-c", "5", "-r", "1000", "-o", server.URL, "-q")
	require.Error(t, res.err)
	assert.Equal(t, ExitStreamFailed, ExitCode(res.err))
	assert.Contains(t, res.stdout, "error:")
}

func TestRun_StreamFailureWinsOverInterrupt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	res := execute(t, ctx, "run", "nginx", "-c", "5", "-r", "1000", "-o", server.URL, "-q")
	require.Error(t, res.err)
	assert.Equal(t, ExitStreamFailed, ExitCode(res.err))
	assert.Contains(t, res.stdout, "interrupted")
	assert.Contains(t, res.stdout, "error:")
}

func TestRun_Burst(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.log")
	res := execute(t, nil, "run", "nginx", "-b", "50:0.1s,10:0.1s", "-d", "1s", "-o", out, "--summary", "json", "-q")
	require.NoError(t, res.err)
	assert.Equal(t, ExitSuccess, ExitCode(res.err))

	total := gjson.Get(res.stdout, "total").Int()
	assert.Greater(t, total, int64(0))
	assert.False(t, gjson.Get(res.stdout, "interrupted").Bool())
	lines := readLines(t, out)
	assert.Len(t, lines, int(total))
	assert.Contains(t, lines[0], "HTTP/1.1")
}

func TestRun_InterruptedIsSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := filepath.Join(t.TempDir(), "out.log")

	res := execute(t, ctx, "run", "nginx", "-o", out, "-q")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "interrupted")
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no template", []string{"run"}, "no template specified"},
		{"burst without duration", []string{"run", "nginx", "-b", "10:1s"}, "--burst requires --duration"},
		{"burst with parallel streams", []string{"run", "nginx", "syslog", "-b", "10:1s", "-d", "1s"}, "not supported with parallel streams"},
		{"bad burst", []string{"run", "nginx", "-b", "fast", "-d", "1s"}, "burst"},
		{"unknown template", []string{"run", "no-such-template", "-c", "1"}, "not a preset name"},
		{"bad rate", []string{"run", "nginx", "-r", "0", "-c", "1"}, "rate"},
		{"bad duration", []string{"run", "nginx", "-d", "soon"}, "duration"},
		{"bad corrupt", []string{"run", "nginx", "--corrupt", "150", "-c", "1"}, "--corrupt"},
		{"bad summary", []string{"run", "nginx", "--summary", "xml", "-c", "1"}, "--summary"},
		{"bad format", []string{"run", "nginx", "-f", "xml", "-c", "1"}, "unknown format"},
		{"verbose and quiet", []string{"run", "nginx", "-v", "-q"}, "mutually exclusive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, nil, tt.args...)
			require.Error(t, res.err)
			assert.Equal(t, ExitUsage, ExitCode(res.err))
			assert.Contains(t, res.err.Error(), tt.want)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		res := execute(t, nil, "validate", writeTemplate(t, seededTemplate))
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Template 'seeded' is valid")
		assert.Contains(t, res.stdout, "Fields: level, user")
	})

	t.Run("invalid", func(t *testing.T) {
		path := writeTemplate(t, "name: broken\npattern: \"$ghost\"\nfields:\n  a:\n    type: nope\n")
		res := execute(t, nil, "validate", path)
		require.Error(t, res.err)
		assert.Equal(t, ExitStreamFailed, ExitCode(res.err))
		assert.Contains(t, res.stderr, "Validation failed")
		assert.Contains(t, res.stderr, "ghost")
	})

	t.Run("missing file", func(t *testing.T) {
		res := execute(t, nil, "validate", filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, res.err)
		assert.Equal(t, ExitUsage, ExitCode(res.err))
	})
}

func TestPresets(t *testing.T) {
	res := execute(t, nil, "presets", "list")
	require.NoError(t, res.err)
	for _, name := range []string{"nginx", "syslog", "app-json"} {
		assert.Contains(t, res.stdout, name)
	}

	res = execute(t, nil, "presets", "show", "nginx")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "name: nginx")

	res = execute(t, nil, "presets", "show", "apache")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "available: app-json, nginx, syslog")
}

func TestConfig_InitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logsynth", "config.yaml")

	res := execute(t, nil, "config", "init", "--config", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Created")
	assert.FileExists(t, path)

	res = execute(t, nil, "config", "init", "--config", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "already exists")

	t.Setenv("LOGSYNTH_RATE", "25")
	res = execute(t, nil, "config", "show", "--config", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "rate: 25")
	assert.Contains(t, res.stdout, "format: plain")
}

func TestVersion(t *testing.T) {
	res := execute(t, nil, "version")
	require.NoError(t, res.err)
	assert.Equal(t, "logsynth dev\n", res.stdout)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitStreamFailed, ExitCode(&ExitError{Code: ExitStreamFailed}))
	assert.Equal(t, ExitUsage, ExitCode(assert.AnError))
}
