package structured

import (
	"reflect"
	"testing"
)

func suggestDoc() map[string]any {
	return map[string]any{
		"config": map[string]any{"debug": false},
		"spec": map[string]any{
			"containers": []any{
				map[string]any{"image": "nginx"},
				map[string]any{"image": "envoy"},
			},
			"context": "prod",
		},
	}
}

func TestSuggestTopLevel(t *testing.T) {
	got := Suggest(suggestDoc(), "")
	want := []string{"config", "spec"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSuggestFiltersByToken(t *testing.T) {
	got := Suggest(suggestDoc(), "spec.con")
	want := []string{"spec.containers", "spec.context"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSuggestSequenceIndices(t *testing.T) {
	got := Suggest(suggestDoc(), "spec.containers[")
	want := []string{"spec.containers[0]", "spec.containers[1]"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSuggestThroughIndex(t *testing.T) {
	got := Suggest(suggestDoc(), "spec.containers[0].im")
	want := []string{"spec.containers[0].image"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSuggestUnresolvablePrefix(t *testing.T) {
	if got := Suggest(suggestDoc(), "nosuch.key"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestSuggestScalarLevel(t *testing.T) {
	if got := Suggest(suggestDoc(), "spec.context."); got != nil {
		t.Fatalf("expected nil for scalar level, got %v", got)
	}
}

func TestSuggestNoMatches(t *testing.T) {
	if got := Suggest(suggestDoc(), "spec.zzz"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
