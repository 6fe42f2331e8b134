package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/replkit/internal/commands"
	"github.com/oakwood-commons/replkit/pkg/settings"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	// Isolate from user config.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(settings.ConfigEnvVar, "")
	orig := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }
	t.Cleanup(func() { stdinIsTerminal = orig })

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "replkit "+settings.VersionInformation.BuildVersion))
}

func TestExec(t *testing.T) {
	out, err := runCLI(t, "", "exec", "--", "echo", "hi", "|", "echo", "--upper")
	require.NoError(t, err)
	assert.Equal(t, "HI\n", out)

	_, err = runCLI(t, "", "exec", "bogus")
	assert.ErrorIs(t, err, commands.ErrUnknownCommand)

	_, err = runCLI(t, "", "exec", "exit")
	assert.NoError(t, err)
}

func TestComplete(t *testing.T) {
	out, err := runCLI(t, "", "complete", "h")
	require.NoError(t, err)
	assert.Contains(t, out, "context: group-or-command")
	assert.Contains(t, out, `ghost:   "elp"`)
	assert.Contains(t, out, "  help ")
	assert.Contains(t, out, "  history ")

	out, err = runCLI(t, "", "complete", "server connect ")
	require.NoError(t, err)
	assert.Contains(t, out, "command: server connect <host>")
	assert.Contains(t, out, "alpha.local")

	out, err = runCLI(t, "", "complete", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "options: none")
}

func TestCompleteCursor(t *testing.T) {
	out, err := runCLI(t, "", "complete", "--cursor", "1", "hx")
	require.NoError(t, err)
	assert.Contains(t, out, `query:   "h"`)
}

func TestConfigCommands(t *testing.T) {
	out, err := runCLI(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "style: ghost")

	out, err = runCLI(t, "", "config", "--style", "cycle", "--theme", "light")
	require.NoError(t, err)
	assert.Contains(t, out, "style: cycle")
	assert.Contains(t, out, "theme: light")

	out, err = runCLI(t, "", "config", "themes")
	require.NoError(t, err)
	assert.Equal(t, "* dark\n  light\n  mono\n", out)

	out, err = runCLI(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, "(defaults)\n", out)
}

func TestConfigFileFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  prompt: \"$ \"\nui:\n  theme: mono\n"), 0o600))

	out, err := runCLI(t, "", "config", "path", "--config-file", path)
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	out, err = runCLI(t, "", "exec", "--config-file", path, "config get ui.theme")
	require.NoError(t, err)
	assert.Equal(t, "mono\n", out)
}

func TestBadFlagsAndConfig(t *testing.T) {
	_, err := runCLI(t, "", "config", "--style", "fancy")
	assert.Error(t, err)

	_, err = runCLI(t, "", "config", "--theme", "neon")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("completion:\n  menu_rows: 0\n"), 0o600))
	_, err = runCLI(t, "", "config", "--config-file", path)
	assert.Error(t, err)
}

func TestPressSnapshot(t *testing.T) {
	out, err := runCLI(t, "", "--no-color", "--press", "h")
	require.NoError(t, err)
	assert.Equal(t, "> help\n[mode=ghost cursor=1 ghost=\"elp\" options=help,history]\n", out)

	_, err = runCLI(t, "", "--press", "h,nosuchkey")
	assert.Error(t, err)
}

func TestScriptFromStdin(t *testing.T) {
	out, err := runCLI(t, "echo a\n# skipped\n\nserver connect beta.local\nserver status\nexit\necho never\n")
	require.NoError(t, err)
	assert.Equal(t, "a\nconnected to beta.local:22 over tcp (safe mode)\nconnected to beta.local:22\n", out)

	_, err = runCLI(t, "echo ok\nbogus\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLogOutput(t *testing.T) {
	w, err := logOutput(&settings.Run{Interactive: true})
	require.NoError(t, err)
	assert.Equal(t, io.Discard, w)

	w, err = logOutput(&settings.Run{})
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)

	path := filepath.Join(t.TempDir(), "replkit.log")
	w, err = logOutput(&settings.Run{LogFile: path, Interactive: true})
	require.NoError(t, err)
	f, ok := w.(*os.File)
	require.True(t, ok)
	require.NoError(t, f.Close())
	assert.FileExists(t, path)
}

func TestLogFileClosedAfterRun(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(settings.ConfigEnvVar, "")
	path := filepath.Join(t.TempDir(), "replkit.log")

	opts := &rootOptions{}
	var sink *os.File
	root := newRootCmd(opts)
	root.SetOut(io.Discard)
	root.SetArgs([]string{"--log-file", path, "exec", "echo", "hi"})
	root.PersistentPostRunE = func(*cobra.Command, []string) error {
		sink = opts.logSink
		return opts.closeLog()
	}
	require.NoError(t, root.Execute())

	require.NotNil(t, sink)
	assert.Nil(t, opts.logSink)
	assert.ErrorIs(t, sink.Close(), os.ErrClosed)
	assert.FileExists(t, path)
	assert.NoError(t, opts.closeLog(), "closing twice is a no-op")
}

func TestStyleValue(t *testing.T) {
	var s styleValue
	require.NoError(t, s.Set(" Cycle "))
	assert.Equal(t, "cycle", s.String())
	assert.Error(t, s.Set("fancy"))
	assert.Equal(t, "style", s.Type())
}
