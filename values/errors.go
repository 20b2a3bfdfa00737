package values

// LangError wraps a raised language-level exception instance (a Value of
// kind KindObject / ObjInstance whose class descends from Exception) so it
// can travel through Go's error-returning native-call protocol (§4.2
// "Native return protocol": "On failure (native returns false), the VM
// restores module/API window and propagates the exception already set on
// the stack"). A *LangError is never created for host-side misuse (nil
// context, bad opcode) — those are returned as plain Go errors and are
// fatal to the embedding call per §7, not unwindable J* exceptions.
type LangError struct {
	Exception Value
}

func (e *LangError) Error() string {
	return e.Exception.String()
}

// NewLangError constructs a *LangError from an already-built exception
// instance.
func NewLangError(exc Value) *LangError {
	return &LangError{Exception: exc}
}
