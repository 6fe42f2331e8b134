package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	run := &Run{Style: "cycle", Theme: "mono", LogFile: "/tmp/replkit.log"}
	tests := []struct {
		name   string
		ctx    context.Context
		want   *Run
		wantOk bool
	}{
		{name: "stored", ctx: IntoContext(context.Background(), run), want: run, wantOk: true},
		{name: "missing", ctx: context.Background()},
		{name: "foreign value under key", ctx: context.WithValue(context.Background(), settingsContextKey, "cycle")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromContext(tt.ctx)
			assert.Equal(t, tt.wantOk, ok)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestIntoContextKeepsPointer(t *testing.T) {
	run := NewCliParams()
	ctx := IntoContext(context.Background(), run)
	run.Interactive = false

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.False(t, got.Interactive, "later changes are visible through the context")
}

func TestFromContextOrDefault(t *testing.T) {
	got := FromContextOrDefault(context.Background())
	require.NotNil(t, got)
	assert.Equal(t, NewCliParams(), got)

	stored := &Run{Theme: "light"}
	assert.Same(t, stored, FromContextOrDefault(IntoContext(context.Background(), stored)))

	got = FromContextOrDefault(IntoContext(context.Background(), nil))
	require.NotNil(t, got)
	assert.True(t, got.Interactive)
}
