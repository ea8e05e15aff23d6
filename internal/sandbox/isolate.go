package sandbox

import (
	"encoding/json"
	"fmt"

	"github.com/sakif/oracle-enclave/internal/hostapi"
	"github.com/sakif/oracle-enclave/internal/model"
)

// RunIsolated evaluates a script on a dedicated goroutine and returns its
// outcome over a one-shot channel. Host functions block on network I/O, so
// the evaluation must live outside the caller's scheduling path: one slow or
// hostile script parks its own goroutine, never a request-serving one.
//
// Only the transit form crosses the boundary. The interpreter's native value
// types (goja values hold their runtime, Lua values their state) are not safe
// to share, so the worker serializes the dynamic result to JSON inside the
// goroutine and the consuming side reconstructs it. The engine itself never
// escapes the worker.
//
// There is deliberately no timeout and no cancellation: once evaluation
// starts it runs to completion or failure, and a caller that gives up does
// not stop the worker.
func RunIsolated(lang model.Language, source string, api *hostapi.Surface) (any, error) {
	type outcome struct {
		transit string
		err     error
	}

	// Buffered so the worker can always deliver and exit, even if the
	// consuming side is gone.
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: &ScriptError{
					Kind:    KindIsolation,
					Message: fmt.Sprintf("sandbox worker panicked: %v", r),
				}}
			}
		}()

		eng, err := New(lang, api)
		if err != nil {
			ch <- outcome{err: err}
			return
		}

		result, err := eng.Eval(source)
		if err != nil {
			ch <- outcome{err: err}
			return
		}

		transit, err := json.Marshal(result)
		if err != nil {
			ch <- outcome{err: &ScriptError{
				Kind:    KindIsolation,
				Message: fmt.Sprintf("result is not transferable: %v", err),
			}}
			return
		}
		ch <- outcome{transit: string(transit)}
	}()

	out := <-ch
	if out.err != nil {
		return nil, out.err
	}

	value, err := hostapi.DecodeJSON(out.transit)
	if err != nil {
		return nil, &ScriptError{
			Kind:    KindIsolation,
			Message: fmt.Sprintf("decoding transit value: %v", err),
		}
	}
	return value, nil
}
