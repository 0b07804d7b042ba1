package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultLuaTimeout bounds a Lua script run.
const DefaultLuaTimeout = 5 * time.Second

// LuaRunner executes Lua selection scripts in a sandboxed state.
type LuaRunner struct {
	timeout time.Duration
	output  io.Writer
}

// LuaOption configures a LuaRunner.
type LuaOption func(*LuaRunner)

// WithTimeout sets the execution timeout.
func WithTimeout(d time.Duration) LuaOption {
	return func(r *LuaRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithOutput redirects print. Defaults to os.Stderr.
func WithOutput(w io.Writer) LuaOption {
	return func(r *LuaRunner) {
		if w != nil {
			r.output = w
		}
	}
}

// NewLuaRunner creates a runner.
func NewLuaRunner(opts ...LuaOption) *LuaRunner {
	r := &LuaRunner{timeout: DefaultLuaTimeout, output: os.Stderr}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunFile executes the Lua file at path against t.
func (r *LuaRunner) RunFile(ctx context.Context, t Target, path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return r.Run(ctx, t, path, string(code))
}

// Run executes code against t. name labels errors.
func (r *LuaRunner) Run(ctx context.Context, t Target, name, code string) (err error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	L := newSandbox()
	defer L.Close()
	L.SetContext(ctx)

	L.SetGlobal("print", L.NewFunction(r.print))
	L.SetGlobal("cloze", newModule(L, t))

	defer func() {
		if p := recover(); p != nil {
			err = &Error{Source: name, Err: fmt.Errorf("lua panic: %v", p)}
		}
	}()

	if err := L.DoString(code); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &Error{Source: name, Err: ctxErr}
		}
		return &Error{Source: name, Err: err}
	}
	return nil
}

// newSandbox opens only the base, table, string and math libraries and
// removes the loaders.
func newSandbox() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func (r *LuaRunner) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(r.output, strings.Join(parts, "\t"))
	return 0
}

// newModule builds the cloze table bound to t.
func newModule(L *lua.LState, t Target) *lua.LTable {
	check := func(L *lua.LState, err error) {
		if err != nil {
			L.RaiseError("%s", err.Error())
		}
	}

	fns := map[string]lua.LGFunction{
		"tokens": func(L *lua.LState) int {
			list := L.NewTable()
			for _, tok := range t.Tokens() {
				row := L.NewTable()
				row.RawSetString("index", lua.LNumber(tok.Index))
				row.RawSetString("text", lua.LString(tok.Text))
				row.RawSetString("kind", lua.LString(tok.Kind.String()))
				list.Append(row)
			}
			L.Push(list)
			return 1
		},
		"find": func(L *lua.LState) int {
			i, ok := FindWord(t.Tokens(), L.CheckString(1), L.OptInt(2, 1))
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LNumber(i))
			return 1
		},
		"phrase": func(L *lua.LState) int {
			start, end, ok := FindPhrase(t.Tokens(), L.CheckString(1), L.OptInt(2, 1))
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LNumber(start))
			L.Push(lua.LNumber(end))
			return 2
		},
		"single": func(L *lua.LState) int {
			_, err := t.ToggleSingle(L.CheckInt(1))
			check(L, err)
			return 0
		},
		"range": func(L *lua.LState) int {
			_, err := t.ToggleRange(L.CheckInt(1), L.CheckInt(2))
			check(L, err)
			return 0
		},
		"click": func(L *lua.LState) int {
			_, err := t.Click(L.CheckInt(1), L.OptBool(2, false))
			check(L, err)
			return 0
		},
		"clear": func(L *lua.LState) int {
			t.Clear()
			return 0
		},
		"text": func(L *lua.LState) int {
			t.SetText(L.CheckString(1))
			return 0
		},
		"title": func(L *lua.LState) int {
			if L.GetTop() >= 1 {
				t.SetTitle(L.CheckString(1))
			}
			L.Push(lua.LString(t.Title()))
			return 1
		},
		"set": func(L *lua.LState) int {
			name := L.CheckString(1)
			var value any
			switch v := L.CheckAny(2).(type) {
			case lua.LBool:
				value = bool(v)
			case lua.LNumber:
				value = float64(v)
			default:
				L.ArgError(2, "boolean or number expected")
			}
			check(L, setSetting(t, name, value))
			return 0
		},
		"range_mode": func(L *lua.LState) int {
			t.SetRangeMode(L.CheckBool(1))
			return 0
		},
		"count": func(L *lua.LState) int {
			L.Push(lua.LNumber(t.Gaps().Len()))
			return 1
		},
	}

	mod := L.NewTable()
	for name, fn := range fns {
		L.SetField(mod, name, L.NewFunction(fn))
	}
	return mod
}
