package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/replkit/internal/completion"
	"github.com/oakwood-commons/replkit/internal/config"
)

func complete(t *testing.T, app *App, line string) *completion.OptionSet {
	t.Helper()
	e, err := app.Engine()
	require.NoError(t, err)
	return e.Complete(context.Background(), line, len(line))
}

func TestNewUsesConfig(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Completion.CaseSensitive = true
	app, err := New(cfg)
	require.NoError(t, err)
	assert.True(t, app.Registry.CaseSensitive())
	assert.Same(t, cfg, app.Config)

	names := app.Handlers.Names()
	assert.Equal(t, []string{"commands", "config-keys", "config-values", "history", "hosts", "paths"}, names)
}

func TestCompletesTopLevel(t *testing.T) {
	app := newTestApp(t)
	set := complete(t, app, "h")
	assert.Equal(t, []string{"help", "history"}, set.Values())
	assert.Equal(t, "elp", set.Ghost())
}

func TestConnectConditionFollowsSession(t *testing.T) {
	app := newTestApp(t)
	assert.Nil(t, complete(t, app, "server d"), "disconnect is hidden until connected")
	assert.Equal(t, []string{"connect"}, complete(t, app, "server conn").Values())

	mustRun(t, app, "server connect alpha.local")
	assert.Equal(t, []string{"disconnect"}, complete(t, app, "server d").Values())
	assert.Nil(t, complete(t, app, "server conn"), "connect is hidden while connected")
}

func TestHostCandidatesIncludeHistory(t *testing.T) {
	app := newTestApp(t)
	set := complete(t, app, "server connect ")
	assert.Equal(t, []string{"alpha.local", "beta.local", "gamma.internal"}, set.Values())

	mustRun(t, app, "server connect zeta.lan")
	mustRun(t, app, "server disconnect")
	set = complete(t, app, "server connect ")
	assert.Contains(t, set.Values(), "zeta.lan")
	i := set.Index("zeta.lan")
	assert.Equal(t, "recent", set.Options[i].Description)
}

func TestPortOfferedOnlyAfterHost(t *testing.T) {
	app := newTestApp(t)
	set := complete(t, app, "server connect --")
	assert.NotContains(t, set.Values(), "port")
	assert.Contains(t, set.Values(), "host")

	set = complete(t, app, "server connect alpha.local --")
	assert.Contains(t, set.Values(), "port")
	assert.NotContains(t, set.Values(), "host")
}

func TestConfigValueCandidatesDependOnKey(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, []string{"dark", "light", "mono"}, complete(t, app, "config set ui.theme ").Values())
	assert.Equal(t, []string{"cycle", "ghost"}, complete(t, app, "config set completion.style ").Values())
	assert.Contains(t, complete(t, app, "config get ui.").Values(), "ui.highlight")
}

func TestHelpTopicCandidates(t *testing.T) {
	app := newTestApp(t)
	values := complete(t, app, "help ser").Values()
	assert.Contains(t, values, "server")
	assert.Contains(t, values, "server.connect")
}

func TestEchoOffersHistory(t *testing.T) {
	app := newTestApp(t)
	mustRun(t, app, "echo remembered")
	assert.Equal(t, []string{"remembered"}, complete(t, app, "echo re").Values())
}

func TestPathCandidates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), nil, 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	app := newTestApp(t, WithPathRoot(dir))
	values := complete(t, app, "open n").Values()
	assert.Contains(t, values, "notes.md")
	assert.Contains(t, values, "nested/")
}
