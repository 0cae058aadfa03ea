package structured

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLeafOnMapping(t *testing.T) {
	base := map[string]any{"a": 1, "b": 2}

	got, err := Set(base, "a", 10)
	require.NoError(t, err)

	require.Equal(t, map[string]any{"a": 10, "b": 2}, got)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, base, "base must not change")
}

func TestSetCreatesIntermediateLevels(t *testing.T) {
	got, err := Set(map[string]any{}, "a.b.c", "deep")
	require.NoError(t, err)

	require.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": "deep"},
		},
	}, got)
}

func TestSetPathFormsAreEquivalent(t *testing.T) {
	base := map[string]any{"servers": []any{map[string]any{"port": 80}}}
	want := map[string]any{"servers": []any{map[string]any{"port": 443}}}

	byString, err := Set(base, "servers[0].port", 443)
	require.NoError(t, err)
	byPath, err := Set(base, Path{Field{Name: "servers"}, Index{N: 0}, Field{Name: "port"}}, 443)
	require.NoError(t, err)
	bySlice, err := Set(base, []any{"servers", 0, "port"}, 443)
	require.NoError(t, err)

	assert.Equal(t, want, byString)
	assert.Equal(t, want, byPath)
	assert.Equal(t, want, bySlice)
}

func TestSetImmutability(t *testing.T) {
	base := map[string]any{
		"users": []any{
			map[string]any{"name": "alice", "tags": []any{"admin"}},
			map[string]any{"name": "bob", "tags": []any{}},
		},
		"count": 2,
	}
	snapshot := map[string]any{
		"users": []any{
			map[string]any{"name": "alice", "tags": []any{"admin"}},
			map[string]any{"name": "bob", "tags": []any{}},
		},
		"count": 2,
	}

	_, err := Set(base, "users[0].tags[0]", "root")
	require.NoError(t, err)
	_, err = Set(base, "users[1].name", "carol")
	require.NoError(t, err)
	_, err = Set(base, "missing.level.here", 1)
	require.NoError(t, err)

	assert.Equal(t, snapshot, base, "no call may mutate the original at any depth")
}

func TestSetStructuralSharing(t *testing.T) {
	base := map[string]any{
		"x": map[string]any{"y": []any{1, 2}},
		"z": map[string]any{"w": 3},
	}

	got, err := Set(base, "x.y[0]", 9)
	require.NoError(t, err)

	result := got.(map[string]any)
	// Off-path sibling is the same object, not a copy.
	assert.True(t, identical(result["z"], base["z"]), "sibling sub-structure must be shared by reference")
	// Everything on the path is freshly allocated.
	assert.False(t, identical(result, base))
	assert.False(t, identical(result["x"], base["x"]))
	assert.False(t, identical(result["x"].(map[string]any)["y"], base["x"].(map[string]any)["y"]))
}

func TestSetArrayGrowth(t *testing.T) {
	got, err := Set([]any{}, []any{0}, "x")
	require.NoError(t, err)
	require.Equal(t, []any{"x"}, got)

	got, err = Set([]any{"x"}, []any{1}, "y")
	require.NoError(t, err)
	require.Equal(t, []any{"x", "y"}, got)
}

func TestSetSparseIndexPadsWithNil(t *testing.T) {
	got, err := Set([]any{"a"}, []any{3}, "d")
	require.NoError(t, err)
	require.Equal(t, []any{"a", nil, nil, "d"}, got)
}

func TestSetGroupPositionalGrowsSequence(t *testing.T) {
	// Numeric group members choose a sequence even under the default
	// container preference.
	got, err := Set(map[string]any{}, []any{"a", []any{0, 1}}, []any{10, 20})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": []any{10, 20}}, got)
}

func TestSetGroupKeyedOnEmptyBase(t *testing.T) {
	got, err := Set(map[string]any{}, []any{[]any{"x", "y"}}, map[string]any{"x": 1, "y": 2})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"x": 1, "y": 2}, got)
}

func TestSetGroupOverSequenceRejectsNonPositionalValues(t *testing.T) {
	base := []any{1, 2}
	group := Path{Group{Members: []Segment{Index{N: 0}, Index{N: 1}}}}

	tests := []struct {
		name  string
		value any
	}{
		{name: "keyed values", value: map[string]any{"0": 9}},
		{name: "single value", value: 9},
		{name: "explicit keyed wrapper", value: Keyed{Items: map[string]any{"0": 9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Set(base, group, tt.value)
			require.ErrorIs(t, err, ErrShapeMismatch)
			assert.Equal(t, []any{1, 2}, base)
		})
	}
}

func TestSetGroupOverMappingAcceptsAllPairings(t *testing.T) {
	base := map[string]any{"p": 0, "q": 0, "keep": true}
	group := []any{[]any{"p", "q"}}

	positional, err := Set(base, group, []any{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"p": 1, "q": 2, "keep": true}, positional)

	keyed, err := Set(base, group, map[string]any{"q": 2, "p": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"p": 1, "q": 2, "keep": true}, keyed)

	single, err := Set(base, group, Single{Value: 7})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"p": 7, "q": 7, "keep": true}, single)
}

func TestSetGroupMidPath(t *testing.T) {
	base := map[string]any{
		"servers": []any{
			map[string]any{"host": "a", "port": 80},
			map[string]any{"host": "b", "port": 80},
		},
	}
	path := Path{
		Field{Name: "servers"},
		Group{Members: []Segment{Index{N: 0}, Index{N: 1}}},
		Field{Name: "port"},
	}

	got, err := Set(base, path, []any{8080, 8081})
	require.NoError(t, err)

	require.Equal(t, map[string]any{
		"servers": []any{
			map[string]any{"host": "a", "port": 8080},
			map[string]any{"host": "b", "port": 8081},
		},
	}, got)
	assert.Equal(t, 80, base["servers"].([]any)[0].(map[string]any)["port"])
}

func TestSetGroupPositionalShorterThanMembers(t *testing.T) {
	got, err := Set(map[string]any{}, []any{[]any{"a", "b", "c"}}, []any{1})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": 1, "b": nil, "c": nil}, got)
}

func TestSetGroupAppendsToSequence(t *testing.T) {
	base := []any{"x"}
	group := Path{Group{Members: []Segment{Index{N: 1}, Index{N: 2}}}}

	got, err := Set(base, group, []any{"y", "z"})
	require.NoError(t, err)
	require.Equal(t, []any{"x", "y", "z"}, got)
}

func TestSetArrayPreferringControlsFreshContainers(t *testing.T) {
	preferred, err := Set(map[string]any{}, "a[0]", "x", WithArrayPreferring(true))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": []any{"x"}}, preferred)

	plain, err := Set(map[string]any{}, "a[0]", "x")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": map[string]any{"0": "x"}}, plain)
}

func TestSetOverwritesScalarMidPath(t *testing.T) {
	got, err := Set(map[string]any{"a": 5}, "a.b", "v")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": map[string]any{"b": "v"}}, got)
}

func TestSetStringKeyDemotesSequenceToMapping(t *testing.T) {
	got, err := Set(map[string]any{"a": []any{"p", "q"}}, "a.name", "x")
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"a": map[string]any{"0": "p", "1": "q", "name": "x"},
	}, got)
}

func TestSetNumericKeyAddressesMapping(t *testing.T) {
	base := map[string]any{"m": map[string]any{"keep": 1}}

	got, err := Set(base, "m[2]", "v")
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"m": map[string]any{"keep": 1, "2": "v"},
	}, got)
}

func TestSetTopLevelReplace(t *testing.T) {
	base := map[string]any{"a": 1}

	got, err := Set(base, nil, "replacement")
	require.NoError(t, err)
	assert.Equal(t, "replacement", got)

	got, err = Set(base, "", "replacement")
	require.NoError(t, err)
	assert.Equal(t, "replacement", got)

	got, err = Set(base, 42, "replacement")
	require.NoError(t, err)
	assert.Equal(t, "replacement", got)

	// Replacing a structure with itself keeps the original reference.
	got, err = Set(base, "", base)
	require.NoError(t, err)
	assert.True(t, identical(got, base))
}

func TestSetSafeModeIdempotence(t *testing.T) {
	base := map[string]any{"a": map[string]any{"b": 1}}

	got, err := Set(base, "a.b", 1, WithSafe(true))
	require.NoError(t, err)
	assert.True(t, identical(got, base), "safe no-op must return the original reference")

	got, err = Set(base, "a.b", 2, WithSafe(true))
	require.NoError(t, err)
	assert.False(t, identical(got, base))
	assert.Equal(t, map[string]any{"a": map[string]any{"b": 2}}, got)
}

func TestSetSafeModeCustomEquality(t *testing.T) {
	base := map[string]any{"port": 80}
	looseInt := func(a, b any) bool {
		ai, aok := intValue(a)
		bi, bok := intValue(b)
		return aok && bok && ai == bi
	}

	got, err := Set(base, "port", float64(80), WithSafe(true), WithEquality(looseInt))
	require.NoError(t, err)
	assert.True(t, identical(got, base))

	// Without safe mode the equality function is never consulted.
	got, err = Set(base, "port", float64(80), WithEquality(looseInt))
	require.NoError(t, err)
	assert.False(t, identical(got, base))
}

func TestSetSafeModeMissingLevelWrites(t *testing.T) {
	base := map[string]any{}

	got, err := Set(base, "a.b", 1, WithSafe(true))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": map[string]any{"b": 1}}, got)
}

func TestSetWrapperUnwrapsAtLeaf(t *testing.T) {
	got, err := Set(map[string]any{}, "a", Single{Value: []any{1, 2}})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": []any{1, 2}}, got)
}

func TestSetSingleWrapperReplicatesAcrossGroup(t *testing.T) {
	shared := []any{1, 2}

	got, err := Set(map[string]any{}, []any{[]any{"x", "y"}}, Single{Value: shared})
	require.NoError(t, err)

	result := got.(map[string]any)
	assert.Equal(t, shared, result["x"])
	assert.Equal(t, shared, result["y"])
}

func TestSetGroupDuplicateMembersReadOriginal(t *testing.T) {
	base := map[string]any{"a": 1}
	group := Path{Group{Members: []Segment{Field{Name: "a"}, Field{Name: "a"}}}}

	got, err := Set(base, group, []any{10, 20})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": 20}, got)
}
