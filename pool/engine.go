package pool

import (
	"sync"

	"github.com/dop251/goja"
	"github.com/robertkrimen/otto"

	"github.com/ytsig/sighelperd/sig"
)

// engineKind records which embedded engine currently holds a context's
// loaded program, so evaluate can dispatch to the right one.
type engineKind int

const (
	engineNone engineKind = iota
	engineGoja
	engineOtto
)

// scriptContext is one evaluation scope (sig_context or nsig_context) of a
// pooled Interpreter. It caches the program for exactly one player_id at a
// time; loading a different id discards the old runtime.
type scriptContext struct {
	mu       sync.Mutex
	cachedID sig.PlayerID
	kind     engineKind
	goja     *goja.Runtime
	otto     *otto.Otto
}

// ensureLoaded evaluates code into this context if it is not already loaded
// for id. goja is tried first; if goja fails to compile or run the program,
// otto is tried once as a fallback before EvalFailed is returned. A failed
// load does not advance cachedID, so the next call retries.
func (c *scriptContext) ensureLoaded(id sig.PlayerID, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kind != engineNone && c.cachedID == id {
		return nil
	}

	vm := goja.New()
	if _, err := vm.RunString(code); err == nil {
		c.goja, c.otto, c.kind, c.cachedID = vm, nil, engineGoja, id
		return nil
	}

	ovm := otto.New()
	if _, err := ovm.Run(code); err == nil {
		c.otto, c.goja, c.kind, c.cachedID = ovm, nil, engineOtto, id
		return nil
	}

	return sig.NewError(sig.ErrCodeEvalFailed, "program failed to load in goja and otto", code)
}

// call invokes funcName(arg) in whichever engine currently holds this
// context's loaded program, returning its result coerced to a string.
func (c *scriptContext) call(funcName, arg string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.kind {
	case engineGoja:
		fn, ok := goja.AssertFunction(c.goja.Get(funcName))
		if !ok {
			return "", sig.NewError(sig.ErrCodeEvalFailed, "function not defined in loaded program", funcName)
		}
		result, err := fn(goja.Undefined(), c.goja.ToValue(arg))
		if err != nil {
			return "", sig.NewError(sig.ErrCodeEvalFailed, "goja evaluation failed", err.Error())
		}
		return result.String(), nil

	case engineOtto:
		result, err := c.otto.Call(funcName, nil, arg)
		if err != nil {
			return "", sig.NewError(sig.ErrCodeEvalFailed, "otto evaluation failed", err.Error())
		}
		str, err := result.ToString()
		if err != nil {
			return "", sig.NewError(sig.ErrCodeEvalFailed, "result is not a string", err.Error())
		}
		return str, nil

	default:
		return "", sig.NewError(sig.ErrCodeEvalFailed, "context has no program loaded", funcName)
	}
}
