package values

// Exception class hierarchy (§7): a root Exception class plus its twelve
// named subclasses, every one a process-wide singleton like the other
// built-in classes in builtin_classes.go — this lets natives registered
// from outside the vm package (e.g. natives/text) raise a well-known
// exception kind via NativeCallContext.Raise without importing vm.
var (
	ExceptionClass = NewClass("Exception", nil, InstantiableInstance)

	TypeExceptionClass            = NewClass("TypeException", ExceptionClass, InstantiableInstance)
	NameExceptionClass            = NewClass("NameException", ExceptionClass, InstantiableInstance)
	FieldExceptionClass           = NewClass("FieldException", ExceptionClass, InstantiableInstance)
	MethodExceptionClass          = NewClass("MethodException", ExceptionClass, InstantiableInstance)
	ImportExceptionClass          = NewClass("ImportException", ExceptionClass, InstantiableInstance)
	StackOverflowExceptionClass   = NewClass("StackOverflowException", ExceptionClass, InstantiableInstance)
	IndexOutOfBoundExceptionClass = NewClass("IndexOutOfBoundException", ExceptionClass, InstantiableInstance)
	AssertExceptionClass          = NewClass("AssertException", ExceptionClass, InstantiableInstance)
	InvalidArgExceptionClass      = NewClass("InvalidArgException", ExceptionClass, InstantiableInstance)
	NotImplementedExceptionClass  = NewClass("NotImplementedException", ExceptionClass, InstantiableInstance)
	SyntaxExceptionClass          = NewClass("SyntaxException", ExceptionClass, InstantiableInstance)
	ProgramInterruptClass         = NewClass("ProgramInterrupt", ExceptionClass, InstantiableInstance)
)

// ExceptionClasses indexes every built-in exception kind by name,
// including the root "Exception" itself.
var ExceptionClasses = map[string]*Class{
	"Exception":                ExceptionClass,
	"TypeException":            TypeExceptionClass,
	"NameException":            NameExceptionClass,
	"FieldException":           FieldExceptionClass,
	"MethodException":          MethodExceptionClass,
	"ImportException":          ImportExceptionClass,
	"StackOverflowException":   StackOverflowExceptionClass,
	"IndexOutOfBoundException": IndexOutOfBoundExceptionClass,
	"AssertException":          AssertExceptionClass,
	"InvalidArgException":      InvalidArgExceptionClass,
	"NotImplementedException":  NotImplementedExceptionClass,
	"SyntaxException":          SyntaxExceptionClass,
	"ProgramInterrupt":         ProgramInterruptClass,
}

func init() {
	errMethod := NewNative(&Native{
		Name:      "err",
		ArgsCount: 0,
		Fn: func(ctx NativeCallContext, args []Value) (Value, error) {
			inst := AsInstance(ctx.Receiver())
			if m, ok := inst.Fields["msg"]; ok {
				return m, nil
			}
			return Null(), nil
		},
	})
	ctor := NewNative(&Native{
		Name:        SymConstructor,
		ArgsCount:   1,
		DefaultArgs: []Value{NewString("")},
		Fn: func(ctx NativeCallContext, args []Value) (Value, error) {
			AsInstance(ctx.Receiver()).Fields["msg"] = args[0]
			return ctx.Receiver(), nil
		},
	})
	for _, cls := range ExceptionClasses {
		cls.Methods["err"] = errMethod
		cls.Methods[SymConstructor] = ctor
	}
}
