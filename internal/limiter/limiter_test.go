package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsConflictsAndNegatives(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		errMsg string // empty means valid
	}{
		{name: "inactive", cfg: Config{}},
		{name: "limit", cfg: Config{Limit: 10}},
		{name: "offset", cfg: Config{Offset: 5}},
		{name: "limit with offset", cfg: Config{Limit: 10, Offset: 5}},
		{name: "tail", cfg: Config{Tail: 3}},
		{name: "tail with offset", cfg: Config{Tail: 3, Offset: 5}},
		{name: "limit with tail", cfg: Config{Limit: 10, Tail: 3}, errMsg: "mutually exclusive"},
		{name: "negative limit", cfg: Config{Limit: -1}, errMsg: "non-negative"},
		{name: "negative offset", cfg: Config{Offset: -2}, errMsg: "non-negative"},
		{name: "negative tail", cfg: Config{Tail: -3}, errMsg: "non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestIsActive(t *testing.T) {
	assert.False(t, Config{}.IsActive())
	assert.True(t, Config{Limit: 1}.IsActive())
	assert.True(t, Config{Offset: 1}.IsActive())
	assert.True(t, Config{Tail: 1}.IsActive())
}

func TestApplyWindowsSequences(t *testing.T) {
	hosts := []interface{}{"web-1", "web-2", "web-3", "web-4", "web-5"}

	tests := []struct {
		name string
		cfg  Config
		want []interface{}
	}{
		{name: "limit trims the head", cfg: Config{Limit: 2}, want: []interface{}{"web-1", "web-2"}},
		{name: "offset skips the head", cfg: Config{Offset: 3}, want: []interface{}{"web-4", "web-5"}},
		{name: "offset then limit", cfg: Config{Limit: 2, Offset: 1}, want: []interface{}{"web-2", "web-3"}},
		{name: "tail keeps the end", cfg: Config{Tail: 2}, want: []interface{}{"web-4", "web-5"}},
		{name: "tail wins over offset", cfg: Config{Tail: 1, Offset: 3}, want: []interface{}{"web-5"}},
		{name: "offset past the end", cfg: Config{Offset: 9}, want: []interface{}{}},
		{name: "limit past the end", cfg: Config{Limit: 9, Offset: 4}, want: []interface{}{"web-5"}},
		{name: "tail past the start", cfg: Config{Tail: 9}, want: hosts},
		{name: "zero limit means everything", cfg: Config{}, want: hosts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Apply(hosts))
		})
	}
}

func TestApplyWindowsMappingsBySortedKey(t *testing.T) {
	services := map[string]interface{}{
		"auth":    1,
		"billing": 2,
		"cache":   3,
		"db":      4,
	}

	t.Run("limit keeps the first keys", func(t *testing.T) {
		got, ok := Config{Limit: 2}.Apply(services).(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, map[string]interface{}{"auth": 1, "billing": 2}, got)
	})

	t.Run("offset drops the first keys", func(t *testing.T) {
		got, ok := Config{Offset: 3}.Apply(services).(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, map[string]interface{}{"db": 4}, got)
	})

	t.Run("offset then limit", func(t *testing.T) {
		got, ok := Config{Limit: 1, Offset: 1}.Apply(services).(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, map[string]interface{}{"billing": 2}, got)
	})

	t.Run("tail keeps the last keys", func(t *testing.T) {
		got, ok := Config{Tail: 2}.Apply(services).(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, map[string]interface{}{"cache": 3, "db": 4}, got)
	})
}

func TestApplyPassesScalarsThrough(t *testing.T) {
	cfg := Config{Limit: 1}
	assert.Equal(t, "localhost", cfg.Apply("localhost"))
	assert.Equal(t, 8080, cfg.Apply(8080))
	assert.Equal(t, true, cfg.Apply(true))
	assert.Nil(t, cfg.Apply(nil))
}

func TestApplyEmptyCollections(t *testing.T) {
	assert.Equal(t, []interface{}{}, Config{Limit: 3}.Apply([]interface{}{}))
	assert.Equal(t, map[string]interface{}{}, Config{Limit: 3}.Apply(map[string]interface{}{}))
}
