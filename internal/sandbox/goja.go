package sandbox

import (
	"errors"

	"github.com/dop251/goja"

	"github.com/sakif/oracle-enclave/internal/hostapi"
	"github.com/sakif/oracle-enclave/internal/model"
)

// maxCallStackSize bounds JS recursion depth so a hostile script cannot
// blow the worker's stack.
const maxCallStackSize = 512

// gojaEngine is the JavaScript variant of the script engine adapter.
type gojaEngine struct {
	api *hostapi.Surface
}

func newGojaEngine(api *hostapi.Surface) *gojaEngine {
	return &gojaEngine{api: api}
}

func (e *gojaEngine) Language() model.Language { return model.LanguageJS }

func (e *gojaEngine) Eval(source string) (any, error) {
	vm := goja.New()
	vm.SetMaxCallStackSize(maxCallStackSize)

	// eval and the Function constructor are the only code-loading paths in a
	// bare goja runtime; remove the former, the latter has no host hooks to
	// reach anyway.
	vm.Set("eval", goja.Undefined())

	e.register(vm)

	value, err := vm.RunString(source)
	if err != nil {
		var syntaxErr *goja.CompilerSyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, &ScriptError{Kind: KindSyntax, Message: err.Error()}
		}
		return nil, &ScriptError{Kind: KindRuntime, Message: err.Error()}
	}

	return hostapi.Normalize(value.Export()), nil
}

// register binds the host API surface into the VM. This is the complete set
// of capabilities a script can reach.
func (e *gojaEngine) register(vm *goja.Runtime) {
	vm.Set("fetch", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(e.api.Fetch(call.Argument(0).String()))
	})
	vm.Set("fetch_validated_json", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(e.api.FetchValidatedJSON(call.Argument(0).String()))
	})
	vm.Set("fetch_json", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(e.api.FetchJSON(call.Argument(0).String()))
	})
	vm.Set("parse_json", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(e.api.ParseJSON(hostapi.Normalize(call.Argument(0).Export())))
	})

	vm.Set("is_ok", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(hostapi.IsOk(hostapi.Normalize(call.Argument(0).Export())))
	})
	vm.Set("is_err", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(hostapi.IsErr(hostapi.Normalize(call.Argument(0).Export())))
	})
	vm.Set("unwrap", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(hostapi.Unwrap(hostapi.Normalize(call.Argument(0).Export())))
	})
	vm.Set("unwrap_as_text", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(hostapi.UnwrapText(hostapi.Normalize(call.Argument(0).Export())))
	})
	vm.Set("err", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(hostapi.ErrOf(hostapi.Normalize(call.Argument(0).Export())))
	})
}
