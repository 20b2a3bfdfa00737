// Package registry is the process-wide native-symbol registry consulted by
// the call protocol and class construction (§6 "Native registry":
// resolveNative(module, className, name) with builtins-first fallback).
package registry

import (
	"fmt"
	"sync"

	"github.com/jstar-lang/jstar/values"
)

// key identifies a native symbol: (module, class-or-empty, name).
type key struct {
	module string
	class  string
	name   string
}

// Registry holds natives keyed by (module, class, name); the process-wide
// builtins tier uses the empty module name and is consulted first.
type Registry struct {
	mu       sync.RWMutex
	byModule map[key]*values.Native
}

// Global is the process-wide registry, populated during VM bootstrap before
// any user code executes (§6 "Process-wide sentinels... created at VM init
// before any user code executes" — the same init-ordering guarantee applies
// to builtin native registration).
var Global = New()

func New() *Registry {
	return &Registry{byModule: make(map[key]*values.Native)}
}

// RegisterBuiltin registers a native under the process-wide builtins tier
// (module == ""), available as the fallback for every module.
func (r *Registry) RegisterBuiltin(class, name string, n *values.Native) {
	r.Register("", class, name, n)
}

// Register registers a native under a specific module/class/name triple.
func (r *Registry) Register(module, class, name string, n *values.Native) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byModule[key{module, class, name}] = n
}

// Resolve implements resolveNative(module, className, name) with
// builtins-first fallback (§6): it first checks the process-wide builtins
// tier, then falls back to the named module's own registrations.
// className is "" for free functions.
func (r *Registry) Resolve(module, className, name string) (*values.Native, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.byModule[key{"", className, name}]; ok {
		return n, nil
	}
	if n, ok := r.byModule[key{module, className, name}]; ok {
		return n, nil
	}
	if className != "" {
		return nil, fmt.Errorf("unresolved native: %s::%s (module %q)", className, name, module)
	}
	return nil, fmt.Errorf("unresolved native: %s (module %q)", name, module)
}
