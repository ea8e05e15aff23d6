// Package sandbox hosts untrusted script execution. An Engine wraps exactly
// one embeddable interpreter instance: it registers the host API surface,
// evaluates one program, and is discarded. Nothing is pooled or reused
// between invocations, so no script can observe state left behind by another.
package sandbox

import (
	"fmt"

	"github.com/sakif/oracle-enclave/internal/apperror"
	"github.com/sakif/oracle-enclave/internal/hostapi"
	"github.com/sakif/oracle-enclave/internal/model"
)

// Engine evaluates one script program against the host API surface it was
// built with. Engines are single-shot: Eval must be called at most once.
type Engine interface {
	Language() model.Language
	// Eval runs source as a whole program and returns its final value in the
	// dynamic value shape, or a *ScriptError.
	Eval(source string) (any, error)
}

// New builds a fresh engine for the given language. The two variants honor
// the same contract and expose the same host functions; a caller cannot tell
// which one ran except through timing and interpreter diagnostic text.
func New(lang model.Language, api *hostapi.Surface) (Engine, error) {
	switch lang {
	case model.LanguageJS:
		return newGojaEngine(api), nil
	case model.LanguageLua:
		return newLuaEngine(api), nil
	}
	return nil, apperror.UnsupportedLanguage(string(lang))
}

// ErrorKind classifies a script execution failure.
type ErrorKind int

const (
	// KindSyntax: the interpreter rejected the program before running it.
	KindSyntax ErrorKind = iota
	// KindRuntime: the program trapped while running.
	KindRuntime
	// KindIsolation: the isolation boundary failed to deliver an outcome.
	KindIsolation
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax error"
	case KindRuntime:
		return "runtime error"
	case KindIsolation:
		return "isolation error"
	}
	return "unknown error"
}

// ScriptError is a structured execution failure carrying the interpreter's
// own diagnostic text.
type ScriptError struct {
	Kind    ErrorKind
	Message string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
