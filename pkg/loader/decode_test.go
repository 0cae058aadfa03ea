package loader

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryDecode(t *testing.T) {
	t.Run("json object", func(t *testing.T) {
		decoded, ok := TryDecode(`{"image": "nginx", "replicas": 3}`)
		require.True(t, ok)
		m := decoded.(map[string]any)
		assert.Equal(t, "nginx", m["image"])
		assert.Equal(t, float64(3), m["replicas"])
	})

	t.Run("json array", func(t *testing.T) {
		decoded, ok := TryDecode(`["web", "api"]`)
		require.True(t, ok)
		assert.Equal(t, []any{"web", "api"}, decoded)
	})

	t.Run("yaml mapping", func(t *testing.T) {
		decoded, ok := TryDecode("host: db-1\nport: 5432\n")
		require.True(t, ok)
		m := decoded.(map[string]any)
		assert.Equal(t, 5432, m["port"])
	})

	t.Run("toml assignments", func(t *testing.T) {
		decoded, ok := TryDecode("host = \"db-1\"\nport = 5432\n")
		require.True(t, ok)
		m := decoded.(map[string]any)
		assert.Equal(t, int64(5432), m["port"])
	})

	// Scalars are not documents; callers get false and keep the string.
	t.Run("scalars report false", func(t *testing.T) {
		for _, input := range []string{"", "   ", "hello world", "42", "3.5", "true", "nginx:1.27"} {
			_, ok := TryDecode(input)
			assert.False(t, ok, "input %q should not decode", input)
		}
	})
}

func TestParseValueScalars(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"42", 42},
		{"-7", -7},
		{"3.5", 3.5},
		{"true", true},
		{"false", false},
		{"null", nil},
		{"hello", "hello"},
		{"nginx:1.27", "nginx:1.27"},
		{"1.0.3", "1.0.3"},
		{`"quoted"`, "quoted"},
		{"", ""},
		{"   ", "   "},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.raw), func(t *testing.T) {
			assert.Equal(t, tt.want, ParseValue(tt.raw))
		})
	}
}

func TestParseValueStructures(t *testing.T) {
	t.Run("json object", func(t *testing.T) {
		got := ParseValue(`{"cpu": "100m", "memory": "64Mi"}`)
		m, ok := got.(map[string]any)
		require.True(t, ok, "expected decoded mapping, got %T", got)
		assert.Equal(t, "100m", m["cpu"])
	})

	t.Run("json array", func(t *testing.T) {
		got := ParseValue(`[80, 443]`)
		require.IsType(t, []any{}, got)
		assert.Len(t, got, 2)
	})

	t.Run("yaml block mapping", func(t *testing.T) {
		got := ParseValue("cpu: 100m\nmemory: 64Mi\n")
		m, ok := got.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "64Mi", m["memory"])
	})
}

func TestRecursiveDecodeExpandsPayloads(t *testing.T) {
	input := map[string]any{
		"service": "auth",
		"payload": `{"token_ttl": 300}`,
	}

	got := RecursiveDecode(input).(map[string]any)
	payload, ok := got["payload"].(map[string]any)
	require.True(t, ok, "expected payload decoded, got %T", got["payload"])
	assert.Equal(t, float64(300), payload["token_ttl"])

	// The input tree is rebuilt, not mutated.
	assert.IsType(t, "", input["payload"])
}

func TestRecursiveDecodeNested(t *testing.T) {
	// A JSON payload whose own field holds another serialized document.
	input := map[string]any{
		"outer": `{"inner": "{\"depth\": 2}"}`,
	}

	got := RecursiveDecode(input).(map[string]any)
	outer := got["outer"].(map[string]any)
	inner, ok := outer["inner"].(map[string]any)
	require.True(t, ok, "expected inner payload decoded, got %T", outer["inner"])
	assert.Equal(t, float64(2), inner["depth"])
}

func TestRecursiveDecodeSequences(t *testing.T) {
	input := []any{`{"a": 1}`, "plain", 7}

	got := RecursiveDecode(input).([]any)
	require.Len(t, got, 3)
	assert.IsType(t, map[string]any{}, got[0])
	assert.Equal(t, "plain", got[1])
	assert.Equal(t, 7, got[2])
}

func TestRecursiveDecodeLeavesPlainTreesAlone(t *testing.T) {
	input := map[string]any{
		"name":  "web",
		"ports": []any{80, 443},
	}

	got := RecursiveDecode(input).(map[string]any)
	assert.Equal(t, "web", got["name"])
	assert.Equal(t, []any{80, 443}, got["ports"])
}

func TestRecursiveDecodeTypedContainers(t *testing.T) {
	t.Run("map of strings", func(t *testing.T) {
		input := map[string]string{
			"plain":   "value",
			"payload": `{"a": 1}`,
		}
		got, ok := RecursiveDecode(input).(map[string]any)
		require.True(t, ok, "expected canonical map")
		assert.Equal(t, "value", got["plain"])
		assert.IsType(t, map[string]any{}, got["payload"])
	})

	t.Run("slice of strings", func(t *testing.T) {
		got, ok := RecursiveDecode([]string{`[1]`, "x"}).([]any)
		require.True(t, ok, "expected canonical slice")
		assert.IsType(t, []any{}, got[0])
		assert.Equal(t, "x", got[1])
	})

	t.Run("non-string map keys are stringified", func(t *testing.T) {
		got, ok := RecursiveDecode(map[int]string{1: "one"}).(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "one", got["1"])
	})
}

func TestRecursiveDecodeDepthCap(t *testing.T) {
	// Build a tower of serialized documents past the cap; expansion must
	// stop instead of recursing to the bottom. Each wrap doubles the
	// escaping, so the tower stays modest in size.
	doc := `{"leaf": true}`
	for i := 0; i < 15; i++ {
		doc = fmt.Sprintf(`{"wrap": %q}`, doc)
	}

	cur := RecursiveDecode(doc)
	levels := 0
	for {
		m, ok := cur.(map[string]any)
		if !ok {
			break
		}
		levels++
		if next, found := m["wrap"]; found {
			cur = next
			continue
		}
		break
	}

	if _, isString := cur.(string); !isString {
		t.Fatalf("expected an unexpanded string below the depth cap, got %T", cur)
	}
	if levels >= 15 {
		t.Fatalf("expected expansion to stop before the full tower, expanded %d levels", levels)
	}
}

func TestIsContainer(t *testing.T) {
	assert.True(t, isContainer(map[string]any{}))
	assert.True(t, isContainer([]any{}))
	assert.True(t, isContainer(map[string]string{}))
	assert.True(t, isContainer([]int{}))
	assert.False(t, isContainer(nil))
	assert.False(t, isContainer("text"))
	assert.False(t, isContainer(42))
	assert.False(t, isContainer(true))
}
