package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/replkit/pkg/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	root := r.Root()
	require.NoError(t, root.AddCommand(&registry.Command{Name: "help", Description: "show help"}))
	require.NoError(t, root.AddCommand(&registry.Command{Name: "history", Description: "list history"}))
	require.NoError(t, root.AddCommand(&registry.Command{
		Name: "connect",
		Arguments: []*registry.Argument{
			{Name: "Host"},
			{Name: "Force", Flag: true},
		},
	}))
	require.NoError(t, root.AddCommand(&registry.Command{
		Name:      "CommandWithArg",
		Arguments: []*registry.Argument{{Name: "Alpha", Aliases: []string{"a"}}},
	}))
	require.NoError(t, root.AddCommand(&registry.Command{
		Name:      "disconnect",
		Condition: "session.connected",
	}))
	server, err := root.AddGroup("server", "manage servers")
	require.NoError(t, err)
	require.NoError(t, server.AddCommand(&registry.Command{
		Name: "connect",
		Arguments: []*registry.Argument{
			{Name: "host", Aliases: []string{"h"}, Position: 1, Handler: "hosts"},
			{Name: "port", Aliases: []string{"p"}, Type: registry.TypeInt, Position: 2, Condition: "has(args.host)"},
			{Name: "tls", Flag: true},
			{Name: "mode", Type: registry.TypeEnum, Enum: []string{"safe", "fast"}},
			{Name: "secure", Type: registry.TypeBool},
		},
	}))
	require.NoError(t, server.AddCommand(&registry.Command{Name: "list"}))
	return r
}

func TestResolveCommandSlots(t *testing.T) {
	r := testRegistry(t)
	tests := []struct {
		name      string
		line      string
		cursor    int
		query     string
		group     []string
		namespace string
		start     int
		end       int
	}{
		{name: "partial root command", line: "h", cursor: 1, query: "h", start: 0, end: 1},
		{name: "empty line", line: "", cursor: 0, query: ""},
		{name: "after group", line: "server ", cursor: 7, query: "", group: []string{"server"}, start: 7, end: 7},
		{name: "partial in group", line: "server co", cursor: 9, query: "co", group: []string{"server"}, start: 7, end: 9},
		{name: "group by unique prefix", line: "ser co", cursor: 6, query: "co", group: []string{"server"}, start: 4, end: 6},
		{name: "cursor mid token", line: "server connect", cursor: 9, query: "co", group: []string{"server"}, start: 7, end: 14},
		{name: "dotted namespace", line: "server.con", cursor: 10, query: "con", group: []string{"server"}, namespace: "server", start: 0, end: 10},
		{name: "second pipe segment", line: "help | h", cursor: 8, query: "h", start: 7, end: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := Resolve(tt.line, tt.cursor, r)
			require.Equal(t, ContextGroupOrCommand, cc.Type)
			assert.Equal(t, tt.query, cc.Query)
			assert.Equal(t, tt.namespace, cc.Namespace)
			require.NotNil(t, cc.Group)
			assert.Equal(t, tt.group, cc.Group.Path())
			assert.Equal(t, tt.start, cc.ReplaceStart)
			assert.Equal(t, tt.end, cc.ReplaceEnd)
		})
	}
}

func TestResolveNone(t *testing.T) {
	r := testRegistry(t)
	tests := []struct {
		name   string
		line   string
		cursor int
	}{
		{name: "unknown group stops walk", line: "nope co", cursor: 7},
		{name: "ambiguous prefix stops walk", line: "h x", cursor: 3},
		{name: "cursor past end", line: "help", cursor: 5},
		{name: "negative cursor", line: "help", cursor: -1},
		{name: "argument without command", line: "--x", cursor: 3},
		{name: "no positional slots", line: "connect --Force ", cursor: 16},
		{name: "flag value is not a value slot", line: "connect --Force x", cursor: 17},
		{name: "positional slots exhausted", line: "server connect a 80 ", cursor: 20},
		{name: "dotted past command", line: "help.x", cursor: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := Resolve(tt.line, tt.cursor, r)
			assert.Equal(t, ContextNone, cc.Type, "got %s", cc.Type)
		})
	}
}

func TestResolveNilRegistry(t *testing.T) {
	cc := Resolve("help", 4, nil)
	require.NotNil(t, cc)
	assert.Equal(t, ContextNone, cc.Type)
}

func TestResolveEmptyArgumentNameAfterFlag(t *testing.T) {
	r := testRegistry(t)
	line := "connect --Force --"
	cc := Resolve(line, len(line), r)
	require.Equal(t, ContextArgumentName, cc.Type)
	assert.Equal(t, "", cc.Query)
	assert.Equal(t, "connect", cc.Command.Name)
	assert.True(t, cc.Used["Force"])
	assert.Equal(t, "true", cc.Values["Force"])
	assert.Equal(t, 16, cc.ReplaceStart)
}

func TestResolveArgumentName(t *testing.T) {
	r := testRegistry(t)
	cc := Resolve("connect --H", 11, r)
	require.Equal(t, ContextArgumentName, cc.Type)
	assert.Equal(t, "H", cc.Query)
	assert.Equal(t, "--H", cc.Typed)
	assert.Equal(t, 8, cc.ReplaceStart)
	assert.False(t, cc.Used["Host"], "the slot under the cursor is not used")
}

func TestResolveAlias(t *testing.T) {
	r := testRegistry(t)
	cc := Resolve("CommandWithArg -", 16, r)
	require.Equal(t, ContextArgumentAlias, cc.Type)
	assert.Equal(t, "", cc.Query)
	assert.Equal(t, "-", cc.Typed)
}

func TestResolveArgumentValue(t *testing.T) {
	r := testRegistry(t)

	cc := Resolve("connect --Host ", 15, r)
	require.Equal(t, ContextArgumentValue, cc.Type)
	assert.Equal(t, "Host", cc.Argument.Name)
	assert.Equal(t, 15, cc.ReplaceStart)

	cc = Resolve("server connect -h al", 20, r)
	require.Equal(t, ContextArgumentValue, cc.Type)
	assert.Equal(t, "host", cc.Argument.Name)
	assert.Equal(t, "al", cc.Query)
}

func TestResolveQuotedValue(t *testing.T) {
	r := testRegistry(t)
	line := `server connect --host "my ho`
	cc := Resolve(line, len(line), r)
	require.Equal(t, ContextArgumentValue, cc.Type)
	assert.Equal(t, "my ho", cc.Query)
	assert.Equal(t, '"', cc.Quote)
	assert.Equal(t, 22, cc.ReplaceStart)
	assert.Equal(t, len(line), cc.ReplaceEnd)
}

func TestResolvePositional(t *testing.T) {
	r := testRegistry(t)
	tests := []struct {
		name        string
		line        string
		arg         string
		query       string
		positionals []string
		values      map[string]string
	}{
		{name: "first slot", line: "server connect ", arg: "host", values: map[string]string{}},
		{name: "partial first slot", line: "server connect al", arg: "host", query: "al", values: map[string]string{}},
		{
			name:        "second slot",
			line:        "server connect alpha ",
			arg:         "port",
			positionals: []string{"alpha"},
			values:      map[string]string{"host": "alpha"},
		},
		{
			name:   "slot supplied by name is skipped",
			line:   "server connect --host alpha ",
			arg:    "port",
			values: map[string]string{"host": "alpha"},
		},
		{
			name:        "value after flag is positional",
			line:        "server connect --tls alpha ",
			arg:         "port",
			positionals: []string{"alpha"},
			values:      map[string]string{"tls": "true", "host": "alpha"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := Resolve(tt.line, len(tt.line), r)
			require.Equal(t, ContextPositional, cc.Type, "got %s", cc.Type)
			assert.Equal(t, tt.arg, cc.Argument.Name)
			assert.Equal(t, tt.query, cc.Query)
			assert.Equal(t, tt.positionals, cc.Positionals)
			assert.Equal(t, tt.values, cc.Values)
		})
	}
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "", unquote(""))
	assert.Equal(t, "abc", unquote("abc"))
	assert.Equal(t, "a b", unquote(`"a b"`))
	assert.Equal(t, "a b", unquote(`'a b`))
	assert.Equal(t, `say "hi"`, unquote(`"say \"hi\""`))
}
