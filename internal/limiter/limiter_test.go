package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{name: "valid limit only", cfg: Config{Limit: 10}},
		{name: "valid offset only", cfg: Config{Offset: 5}},
		{name: "valid limit and offset", cfg: Config{Limit: 10, Offset: 5}},
		{name: "valid tail only", cfg: Config{Tail: 10}},
		{name: "tail ignores offset (valid)", cfg: Config{Tail: 10, Offset: 5}},
		{name: "limit and tail mutually exclusive", cfg: Config{Limit: 10, Tail: 5}, wantErr: true, errMsg: "mutually exclusive"},
		{name: "negative limit invalid", cfg: Config{Limit: -1}, wantErr: true, errMsg: "non-negative"},
		{name: "negative offset invalid", cfg: Config{Offset: -1}, wantErr: true, errMsg: "non-negative"},
		{name: "negative tail invalid", cfg: Config{Tail: -2}, wantErr: true, errMsg: "non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestIsActive(t *testing.T) {
	assert.False(t, Config{}.IsActive())
	assert.True(t, Config{Limit: 1}.IsActive())
	assert.True(t, Config{Offset: 1}.IsActive())
	assert.True(t, Config{Tail: 1}.IsActive())
}

func TestApply(t *testing.T) {
	records := []string{"a", "b", "c", "d", "e"}
	tests := []struct {
		name      string
		cfg       Config
		want      []string
		wantStart int
	}{
		{"inactive", Config{}, records, 0},
		{"limit", Config{Limit: 2}, []string{"a", "b"}, 0},
		{"offset", Config{Offset: 3}, []string{"d", "e"}, 3},
		{"offset and limit", Config{Offset: 1, Limit: 2}, []string{"b", "c"}, 1},
		{"limit past end", Config{Offset: 4, Limit: 10}, []string{"e"}, 4},
		{"offset past end", Config{Offset: 9}, []string{}, 5},
		{"tail", Config{Tail: 2}, []string{"d", "e"}, 3},
		{"tail longer than list", Config{Tail: 9}, records, 0},
		{"tail ignores offset", Config{Tail: 1, Offset: 2}, []string{"e"}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, start := Apply(tt.cfg, records)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantStart, start)
		})
	}
}

func TestApplyEmpty(t *testing.T) {
	got, start := Apply(Config{Tail: 3}, []int(nil))
	assert.Empty(t, got)
	assert.Zero(t, start)
}
