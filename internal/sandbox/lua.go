package sandbox

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/sakif/oracle-enclave/internal/hostapi"
	"github.com/sakif/oracle-enclave/internal/model"
)

// luaEngine is the Lua variant of the script engine adapter. A Lua chunk
// reports its result with `return`; the chunk's return value is the
// evaluation result.
type luaEngine struct {
	api *hostapi.Surface
}

func newLuaEngine(api *hostapi.Surface) *luaEngine {
	return &luaEngine{api: api}
}

func (e *luaEngine) Language() model.Language { return model.LanguageLua }

func (e *luaEngine) Eval(source string) (any, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	// Open only the value-manipulation libraries. io and os stay closed;
	// the loaders that reach the filesystem are removed below.
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage}, // must be first
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			return nil, &ScriptError{Kind: KindIsolation, Message: "opening lua stdlib: " + err.Error()}
		}
	}
	for _, name := range []string{"dofile", "loadfile", "require", "collectgarbage"} {
		L.SetGlobal(name, lua.LNil)
	}

	e.register(L)

	fn, err := L.LoadString(source)
	if err != nil {
		return nil, &ScriptError{Kind: KindSyntax, Message: err.Error()}
	}

	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return nil, &ScriptError{Kind: KindRuntime, Message: err.Error()}
	}

	// The chunk's return values remain on the stack; the last one is the
	// script result. A chunk with no return yields nil.
	var ret lua.LValue = lua.LNil
	if L.GetTop() > 0 {
		ret = L.Get(-1)
	}
	return hostapi.Normalize(fromLua(ret)), nil
}

// register binds the host API surface. Same names, same semantics as the
// JavaScript variant.
func (e *luaEngine) register(L *lua.LState) {
	bind := func(name string, fn lua.LGFunction) {
		L.SetGlobal(name, L.NewFunction(fn))
	}

	bind("fetch", func(L *lua.LState) int {
		L.Push(lua.LString(e.api.Fetch(L.CheckString(1))))
		return 1
	})
	bind("fetch_validated_json", func(L *lua.LState) int {
		L.Push(lua.LString(e.api.FetchValidatedJSON(L.CheckString(1))))
		return 1
	})
	bind("fetch_json", func(L *lua.LState) int {
		L.Push(toLua(L, e.api.FetchJSON(L.CheckString(1))))
		return 1
	})
	bind("parse_json", func(L *lua.LState) int {
		L.Push(toLua(L, e.api.ParseJSON(fromLua(L.CheckAny(1)))))
		return 1
	})

	bind("is_ok", func(L *lua.LState) int {
		L.Push(lua.LBool(hostapi.IsOk(fromLua(L.CheckAny(1)))))
		return 1
	})
	bind("is_err", func(L *lua.LState) int {
		L.Push(lua.LBool(hostapi.IsErr(fromLua(L.CheckAny(1)))))
		return 1
	})
	bind("unwrap", func(L *lua.LState) int {
		L.Push(toLua(L, hostapi.Unwrap(fromLua(L.CheckAny(1)))))
		return 1
	})
	bind("unwrap_as_text", func(L *lua.LState) int {
		L.Push(lua.LString(hostapi.UnwrapText(fromLua(L.CheckAny(1)))))
		return 1
	})
	bind("err", func(L *lua.LState) int {
		L.Push(toLua(L, hostapi.ErrOf(fromLua(L.CheckAny(1)))))
		return 1
	})
}

// fromLua converts a Lua value into the dynamic value shape. A table whose
// keys are the contiguous integers 1..n converts to a sequence; any other
// table converts to a string-keyed map; an empty table is a sequence.
func fromLua(lv lua.LValue) any {
	switch v := lv.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		maxn := v.MaxN()
		if maxn == 0 {
			m := make(map[string]any)
			v.ForEach(func(k, val lua.LValue) {
				m[k.String()] = fromLua(val)
			})
			if len(m) == 0 {
				return []any{}
			}
			return m
		}
		arr := make([]any, 0, maxn)
		for i := 1; i <= maxn; i++ {
			arr = append(arr, fromLua(v.RawGetInt(i)))
		}
		return arr
	default:
		return lv.String()
	}
}

// toLua converts a dynamic value into a Lua value.
func toLua(L *lua.LState, v any) lua.LValue {
	switch t := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(t)
	case int64:
		return lua.LNumber(t)
	case float64:
		return lua.LNumber(t)
	case string:
		return lua.LString(t)
	case []any:
		tbl := L.NewTable()
		for _, e := range t {
			tbl.Append(toLua(L, e))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		for k, e := range t {
			tbl.RawSetString(k, toLua(L, e))
		}
		return tbl
	default:
		return lua.LString(hostapi.Text(v))
	}
}
