package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := NewEvaluator()
	require.NoError(t, err)
	return e
}

func TestEval(t *testing.T) {
	e := newEvaluator(t)
	vars := Vars{
		Args:    map[string]string{"host": "alpha"},
		Session: map[string]any{"connected": true, "user": "ops"},
	}
	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"true", true},
		{"session.connected", true},
		{"!session.connected", false},
		{"has(args.host)", true},
		{"has(args.port)", false},
		{"args.host.startsWith('al')", true},
		{`session.user == "ops" && args["host"] == "alpha"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := e.Eval(tt.expr, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalNilMaps(t *testing.T) {
	e := newEvaluator(t)
	got, err := e.Eval("!has(args.host)", Vars{})
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCompileErrors(t *testing.T) {
	e := newEvaluator(t)
	assert.Error(t, e.Compile("args.host =="))
	assert.Error(t, e.Compile("args.host"), "non-bool result")
	assert.Error(t, e.Compile("unknown.x"))
	assert.NoError(t, e.Compile("session.connected == true"))
}

func TestEvalMissingKeyIsError(t *testing.T) {
	e := newEvaluator(t)
	_, err := e.Eval("args.host == 'x'", Vars{})
	assert.Error(t, err)
}

func TestReferences(t *testing.T) {
	e := newEvaluator(t)
	refs, err := e.References(`has(args.host) && session.connected && args["port"] != "" && [args.user].size() > 0 && args.host != ""`)
	require.NoError(t, err)
	var got []string
	for _, r := range refs {
		got = append(got, r.String())
	}
	assert.Equal(t, []string{"args.host", "args.port", "args.user", "session.connected"}, got)

	_, err = e.References("args.")
	assert.Error(t, err)
}
