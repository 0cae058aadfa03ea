package core

import "testing"

type fakeUpdater struct {
	base, path, value interface{}
	arrayPreferring   bool
	safe              bool
	setResult         interface{}
	getResult         interface{}
	err               error
}

func (f *fakeUpdater) Set(base, path, value interface{}, arrayPreferring, safe bool) (interface{}, error) {
	f.base = base
	f.path = path
	f.value = value
	f.arrayPreferring = arrayPreferring
	f.safe = safe
	return f.setResult, f.err
}

func (f *fakeUpdater) Get(base, path interface{}) (interface{}, error) {
	f.base = base
	f.path = path
	return f.getResult, f.err
}

type fakeRenderer struct {
	renderInput  interface{}
	renderFormat string
	renderOut    []byte
	tableIn      interface{}
	tableOut     string
	stringifyIn  interface{}
	stringifyOut string
}

func (f *fakeRenderer) Render(node interface{}, format string) ([]byte, error) {
	f.renderInput = node
	f.renderFormat = format
	return f.renderOut, nil
}

func (f *fakeRenderer) Table(node interface{}, width int, noColor bool) string {
	f.tableIn = node
	return f.tableOut
}

func (f *fakeRenderer) Stringify(node interface{}) string {
	f.stringifyIn = node
	return f.stringifyOut
}

func TestEngineUsesInjectedUpdater(t *testing.T) {
	upd := &fakeUpdater{setResult: "new-root"}
	engine, err := New(WithUpdater(upd), WithArrayPreferring(true), WithSafe(true))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	out, err := engine.Set(map[string]interface{}{}, "a.b", 1)
	if err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if out != "new-root" {
		t.Fatalf("Set = %v, want new-root", out)
	}
	if upd.path != "a.b" || upd.value != 1 {
		t.Fatalf("updater received path=%v value=%v", upd.path, upd.value)
	}
	if !upd.arrayPreferring || !upd.safe {
		t.Fatalf("engine modes not forwarded: arrayPreferring=%v safe=%v", upd.arrayPreferring, upd.safe)
	}
}

func TestEngineUsesInjectedUpdaterForGet(t *testing.T) {
	upd := &fakeUpdater{getResult: 7}
	engine, err := New(WithUpdater(upd))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	out, err := engine.Get(map[string]interface{}{"a": 7}, "a")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if out != 7 {
		t.Fatalf("Get = %v, want 7", out)
	}
	if upd.path != "a" {
		t.Fatalf("updater path = %q, want %q", upd.path, "a")
	}
}

func TestEngineUsesInjectedRenderer(t *testing.T) {
	rdr := &fakeRenderer{renderOut: []byte("rendered"), tableOut: "table", stringifyOut: "s"}
	engine, err := New(WithRenderer(rdr))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	out, err := engine.Render(123, "json")
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if string(out) != "rendered" {
		t.Fatalf("Render = %q, want %q", out, "rendered")
	}
	if rdr.renderInput != 123 || rdr.renderFormat != "json" {
		t.Fatalf("render input = %v format = %q", rdr.renderInput, rdr.renderFormat)
	}

	if tbl := engine.Table(456, 80, false); tbl != "table" {
		t.Fatalf("Table = %q, want %q", tbl, "table")
	}

	s := engine.Stringify(789)
	if s != "s" {
		t.Fatalf("Stringify = %q, want %q", s, "s")
	}
	if rdr.stringifyIn != 789 {
		t.Fatalf("stringify input = %v, want 789", rdr.stringifyIn)
	}
}
