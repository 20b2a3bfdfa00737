// Package text is the one worked foreign-function example SPEC_FULL.md
// calls for: a native `Regex` class backed by dlclark/regexp2, registered
// against the native registry the call protocol resolves OP_NAT_METHOD
// symbols through (§4.7, §6 "resolveNative"). It is intentionally small —
// the standard library itself is an out-of-scope external collaborator
// (§1); this package exists only to prove the FFI bridge end to end.
package text

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/jstar-lang/jstar/registry"
	"github.com/jstar-lang/jstar/values"
)

const (
	ModuleName = "text"
	ClassName  = "Regex"
)

// compiledField is the interned field name under which the Instance stores
// its compiled *regexp2.Regexp, tunneled through a Handle value since the
// value model has no dedicated "native resource" object kind (§3 lists
// none; Handle is the deliberate escape hatch for opaque host resources).
const compiledField = "__compiled"

// Register attaches the Regex class's natives to reg under the "text"
// module (§4.7 "Native method definition resolves the native pointer by
// (module, class, method) lookup against the module's native registry").
func Register(reg *registry.Registry) {
	reg.Register(ModuleName, ClassName, "init", initNative())
	reg.Register(ModuleName, ClassName, "match", matchNative())
	reg.Register(ModuleName, ClassName, "find", findNative())
	reg.Register(ModuleName, ClassName, "replace", replaceNative())
}

func initNative() *values.Native {
	return &values.Native{
		Name:      "init",
		ArgsCount: 1,
		Fn: func(ctx values.NativeCallContext, args []values.Value) (values.Value, error) {
			pattern := values.AsString(args[0])
			re, err := regexp2.Compile(pattern, regexp2.None)
			if err != nil {
				return values.Null(), ctx.Raise(values.InvalidArgExceptionClass, fmt.Sprintf("invalid pattern %q: %v", pattern, err))
			}
			inst := values.AsInstance(ctx.Receiver())
			inst.Fields[compiledField] = values.Handle(re)
			return ctx.Receiver(), nil
		},
	}
}

func matchNative() *values.Native {
	return &values.Native{
		Name:      "match",
		ArgsCount: 1,
		Fn: func(ctx values.NativeCallContext, args []values.Value) (values.Value, error) {
			re := compiledOf(ctx.Receiver())
			m, err := re.MatchString(values.AsString(args[0]))
			if err != nil {
				return values.Null(), ctx.Raise(values.InvalidArgExceptionClass, fmt.Sprintf("match failed: %v", err))
			}
			return values.Bool(m), nil
		},
	}
}

func findNative() *values.Native {
	return &values.Native{
		Name:      "find",
		ArgsCount: 1,
		Fn: func(ctx values.NativeCallContext, args []values.Value) (values.Value, error) {
			re := compiledOf(ctx.Receiver())
			m, err := re.FindStringMatch(values.AsString(args[0]))
			if err != nil {
				return values.Null(), ctx.Raise(values.InvalidArgExceptionClass, fmt.Sprintf("find failed: %v", err))
			}
			if m == nil {
				return values.Null(), nil
			}
			return values.NewString(m.String()), nil
		},
	}
}

func replaceNative() *values.Native {
	return &values.Native{
		Name:      "replace",
		ArgsCount: 2,
		Fn: func(ctx values.NativeCallContext, args []values.Value) (values.Value, error) {
			re := compiledOf(ctx.Receiver())
			out, err := re.Replace(values.AsString(args[0]), values.AsString(args[1]), -1, -1)
			if err != nil {
				return values.Null(), ctx.Raise(values.InvalidArgExceptionClass, fmt.Sprintf("replace failed: %v", err))
			}
			return values.NewString(out), nil
		},
	}
}

func compiledOf(receiver values.Value) *regexp2.Regexp {
	inst := values.AsInstance(receiver)
	return inst.Fields[compiledField].AsHandle().(*regexp2.Regexp)
}
