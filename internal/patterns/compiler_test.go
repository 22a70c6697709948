package patterns

import (
	"testing"
)

func TestCompilerExpand(t *testing.T) {
	c := NewCompiler(nil, map[string]string{"LAT_DIR": `[NnSs]`})

	got := c.Expand(`{LAT_DIR}\s*{LAT_DEG}{DEG_SIGN}`)
	want := `[NnSs]\s*\d{1,2}°`
	if got != want {
		t.Errorf("Expand = %q, want %q", got, want)
	}

	// Unknown placeholders are left untouched.
	if got := c.Expand(`{NOPE}`); got != `{NOPE}` {
		t.Errorf("Expand unknown = %q", got)
	}
}

func TestCompilerParseOrder(t *testing.T) {
	formats := []Format{
		{Name: "block", Pattern: `{NORD}\s*(?P<lat>{LAT_BLOCK})`},
		{Name: "loose", Pattern: `{NORD}\D*(?P<lat>\d+)`},
	}
	c := MustCompile(formats, nil)

	m := c.Parse("nord 4833787")
	if m == nil {
		t.Fatal("expected match")
	}
	if m.FormatName != "block" {
		t.Errorf("FormatName = %q, want block", m.FormatName)
	}
	if got := m.GetCapture("lat", ""); got != "4833787" {
		t.Errorf("lat = %q", got)
	}

	m = c.Parse("NORD: 48")
	if m == nil || m.FormatName != "loose" {
		t.Fatalf("expected loose match, got %+v", m)
	}

	if c.Parse("nothing here") != nil {
		t.Error("expected nil match")
	}
}

func TestCompilerBadPattern(t *testing.T) {
	c := NewCompiler([]Format{{Name: "bad", Pattern: `(`}}, nil)
	if err := c.Compile(); err == nil {
		t.Fatal("expected compile error")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustCompile did not panic")
		}
	}()
	MustCompile([]Format{{Name: "bad", Pattern: `(`}}, nil)
}

func TestGetCaptureNil(t *testing.T) {
	var m *Match
	if got := m.GetCapture("x", "default"); got != "default" {
		t.Errorf("GetCapture on nil = %q", got)
	}
}

func TestParseWithTrace(t *testing.T) {
	formats := []Format{
		{Name: "first", Pattern: `{ROMAN}X`},
		{Name: "second", Pattern: `(?P<n>\d+)`},
		{Name: "third", Pattern: `(?P<n>\d)`},
	}
	c := MustCompile(formats, nil)

	m, traces := c.ParseWithTrace("abc 12")
	if m == nil || m.FormatName != "second" {
		t.Fatalf("first match = %+v, want second", m)
	}
	if len(traces) != 3 {
		t.Fatalf("len(traces) = %d, want 3", len(traces))
	}
	if traces[0].Matched {
		t.Error("first should not match")
	}
	if !traces[1].Matched || traces[1].Captures["n"] != "12" {
		t.Errorf("second trace = %+v", traces[1])
	}
	if !traces[2].Matched {
		t.Error("third should also be recorded as matched")
	}
	if traces[0].Pattern != `[IVXLCDM]+X` {
		t.Errorf("expanded pattern = %q", traces[0].Pattern)
	}
}
