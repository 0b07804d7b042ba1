package script

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/clozet/internal/gap"
)

func TestLuaRunner_Run(t *testing.T) {
	w := newTarget(t, "The sun is bright today. Rain falls later.")
	var out bytes.Buffer
	r := NewLuaRunner(WithOutput(&out))

	code := `
cloze.title("Weather")
cloze.set("word_bank", true)
cloze.set("gap_length", 7)

local i = cloze.find("sun")
cloze.single(i)

local s, e = cloze.phrase("rain falls")
cloze.range(s, e)

for _, tok in ipairs(cloze.tokens()) do
  if tok.text == "bright" then cloze.click(tok.index) end
end

print("gaps", cloze.count(), cloze.title())
`
	if err := r.Run(context.Background(), w, "weather.lua", code); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if strings.TrimSpace(out.String()) != "gaps\t3\tWeather" {
		t.Errorf("print output = %q", out.String())
	}
	s := w.Settings()
	if !s.IncludeWordBank || s.GapLength != 7 {
		t.Errorf("Settings = %+v", s)
	}
	gaps := w.Gaps().All()
	if len(gaps) != 3 || gaps[0] != gap.Single(2) || !gaps[1].IsRange() || gaps[2] != gap.Single(6) {
		t.Errorf("gaps = %v", gaps)
	}
}

func TestLuaRunner_ShiftClickAndMode(t *testing.T) {
	w := newTarget(t, "one two three")
	code := `
cloze.click(0)
cloze.click(4, true)
assert(cloze.count() == 1)
cloze.clear()
cloze.range_mode(true)
cloze.click(2)
cloze.click(4)
assert(cloze.find("missing") == nil)
`
	if err := NewLuaRunner().Run(context.Background(), w, "mode.lua", code); err != nil {
		t.Fatalf("Run: %v", err)
	}
	gaps := w.Gaps().All()
	if len(gaps) != 1 || gaps[0].Start != 2 || gaps[0].End != 4 {
		t.Errorf("gaps = %v", gaps)
	}
}

func TestLuaRunner_Sandbox(t *testing.T) {
	w := newTarget(t, "x")
	tests := []string{
		`os.exit(1)`,
		`io.write("x")`,
		`dofile("/etc/passwd")`,
		`require("os")`,
		`load("return 1")()`,
	}
	for _, code := range tests {
		if err := NewLuaRunner().Run(context.Background(), w, "evil.lua", code); err == nil {
			t.Errorf("%q: expected error", code)
		}
	}
}

func TestLuaRunner_Errors(t *testing.T) {
	w := newTarget(t, "a b")

	err := NewLuaRunner().Run(context.Background(), w, "bad.lua", `cloze.single(42)`)
	var se *Error
	if !errors.As(err, &se) || se.Source != "bad.lua" {
		t.Fatalf("err = %v, want *Error from bad.lua", err)
	}
	if !strings.Contains(err.Error(), "out of range") {
		t.Errorf("err = %v, want index message", err)
	}

	err = NewLuaRunner().Run(context.Background(), w, "set.lua", `cloze.set("colour", true)`)
	if err == nil || !strings.Contains(err.Error(), "unknown setting") {
		t.Errorf("set err = %v", err)
	}

	err = NewLuaRunner().Run(context.Background(), w, "syntax.lua", `cloze.single(`)
	if err == nil {
		t.Error("expected syntax error")
	}
}

func TestLuaRunner_Timeout(t *testing.T) {
	w := newTarget(t, "a")
	r := NewLuaRunner(WithTimeout(50 * time.Millisecond))

	err := r.Run(context.Background(), w, "loop.lua", `while true do end`)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestLuaRunner_RunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.lua")
	if err := os.WriteFile(path, []byte(`cloze.text("Blue sky.") cloze.single(cloze.find("sky"))`), 0o644); err != nil {
		t.Fatal(err)
	}
	w := newTarget(t, "")
	if err := NewLuaRunner().RunFile(context.Background(), w, path); err != nil {
		t.Fatalf("RunFile: %v", err)
	}
	if w.Gaps().Len() != 1 {
		t.Errorf("gaps = %d", w.Gaps().Len())
	}
}
