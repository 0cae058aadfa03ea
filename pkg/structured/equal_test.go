package structured

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentical(t *testing.T) {
	sharedMap := map[string]any{"a": 1}
	sharedSlice := []any{1, 2}

	tests := []struct {
		name string
		a    any
		b    any
		want bool
	}{
		{name: "equal ints", a: 1, b: 1, want: true},
		{name: "different ints", a: 1, b: 2, want: false},
		{name: "int vs int64", a: 1, b: int64(1), want: false},
		{name: "equal strings", a: "x", b: "x", want: true},
		{name: "both nil", a: nil, b: nil, want: true},
		{name: "nil vs value", a: nil, b: 0, want: false},
		{name: "same map reference", a: sharedMap, b: sharedMap, want: true},
		{name: "equal but distinct maps", a: map[string]any{"a": 1}, b: map[string]any{"a": 1}, want: false},
		{name: "same slice reference", a: sharedSlice, b: sharedSlice, want: true},
		{name: "equal but distinct slices", a: []any{1, 2}, b: []any{1, 2}, want: false},
		{name: "reslice changes length", a: sharedSlice, b: sharedSlice[:1], want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, identical(tt.a, tt.b))
		})
	}
}

func TestEquivalent(t *testing.T) {
	tests := []struct {
		name string
		a    any
		b    any
		want bool
	}{
		{name: "int vs float64", a: 5, b: float64(5), want: true},
		{name: "int vs int64", a: 5, b: int64(5), want: true},
		{name: "uint vs float32", a: uint(5), b: float32(5), want: true},
		{name: "different numbers", a: 5, b: float64(5.5), want: false},
		{name: "number vs numeric string", a: 5, b: "5", want: false},
		{name: "equal strings", a: "x", b: "x", want: true},
		{name: "both nil", a: nil, b: nil, want: true},
		{name: "nil vs zero", a: nil, b: 0, want: false},
		{
			name: "distinct maps with mixed number types",
			a:    map[string]any{"spec": map[string]any{"replicas": float64(5)}},
			b:    map[string]any{"spec": map[string]any{"replicas": 5}},
			want: true,
		},
		{
			name: "extra key",
			a:    map[string]any{"a": 1},
			b:    map[string]any{"a": 1, "b": 2},
			want: false,
		},
		{
			name: "slices element-wise",
			a:    []any{1, []any{float64(2)}},
			b:    []any{float64(1), []any{2}},
			want: true,
		},
		{name: "slice length mismatch", a: []any{1}, b: []any{1, 2}, want: false},
		{name: "map vs slice", a: map[string]any{"0": 1}, b: []any{1}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equivalent(tt.a, tt.b))
			assert.Equal(t, tt.want, Equivalent(tt.b, tt.a), "must be symmetric")
		})
	}
}

func TestEquivalentDrivesSafeModeAcrossNumberTypes(t *testing.T) {
	// A JSON decode hands back float64 where a parsed CLI value is int.
	doc := map[string]any{"spec": map[string]any{"replicas": float64(5)}}

	assert.True(t, EqualAt(doc, "spec.replicas", 5, Equivalent))
	assert.False(t, EqualAt(doc, "spec.replicas", 5, nil), "strict identity cannot bridge number types")

	got, err := Set(doc, "spec.replicas", 5, WithSafe(true), WithEquality(Equivalent))
	assert.NoError(t, err)
	assert.True(t, Identical(got, doc), "safe no-op must return the original reference")
}

func TestEqualAtLeaf(t *testing.T) {
	doc := map[string]any{"spec": map[string]any{"replicas": 3}}

	assert.True(t, EqualAt(doc, "spec.replicas", 3, nil))
	assert.False(t, EqualAt(doc, "spec.replicas", 4, nil))
	assert.False(t, EqualAt(doc, "spec.missing", 3, nil))
	assert.False(t, EqualAt(doc, "spec.replicas.deeper", 3, nil))
}

func TestEqualAtTopLevel(t *testing.T) {
	doc := map[string]any{"a": 1}

	assert.True(t, EqualAt(doc, "", doc, nil))
	assert.False(t, EqualAt(doc, "", map[string]any{"a": 1}, nil), "distinct containers are not identical")
}

func TestEqualAtCustomEquality(t *testing.T) {
	doc := map[string]any{"env": "Production"}
	foldCase := func(a, b any) bool {
		as, aok := a.(string)
		bs, bok := b.(string)
		return aok && bok && strings.EqualFold(as, bs)
	}

	assert.True(t, EqualAt(doc, "env", "production", foldCase))
	assert.False(t, EqualAt(doc, "env", "production", nil))
}

func TestEqualAtGroup(t *testing.T) {
	doc := map[string]any{
		"servers": []any{
			map[string]any{"port": 80},
			map[string]any{"port": 443},
		},
	}
	path := Path{
		Field{Name: "servers"},
		Group{Members: []Segment{Index{N: 0}, Index{N: 1}}},
		Field{Name: "port"},
	}

	assert.True(t, EqualAt(doc, path, []any{80, 443}, nil))
	assert.False(t, EqualAt(doc, path, []any{80, 8443}, nil), "one differing member fails the whole group")

	short := Path{Field{Name: "servers"}, Group{Members: []Segment{Index{N: 0}, Index{N: 5}}}, Field{Name: "port"}}
	assert.False(t, EqualAt(doc, short, []any{80, 443}, nil), "a missing member fails the whole group")
}

func TestEqualAtKeyedGroup(t *testing.T) {
	doc := map[string]any{"limits": map[string]any{"cpu": "2", "mem": "1Gi"}}
	path := Path{Field{Name: "limits"}, Group{Members: []Segment{Field{Name: "cpu"}, Field{Name: "mem"}}}}

	assert.True(t, EqualAt(doc, path, map[string]any{"cpu": "2", "mem": "1Gi"}, nil))
	assert.False(t, EqualAt(doc, path, map[string]any{"cpu": "2", "mem": "2Gi"}, nil))
}
