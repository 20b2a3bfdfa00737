package values

// Class models a language class (§3 "Class"): name, optional superclass,
// and a flattened method table. Methods are copied down from the
// superclass at creation time (§4.7) so that method dispatch never has to
// walk the inheritance chain at call time — §9's design note documents
// this as intentional: later monkey-patching of a superclass does not
// propagate to already-created subclasses.
type Class struct {
	Name       string
	Super      *Class
	Methods    map[string]Value // string -> Closure or Native
	Fields     map[string]Value
	Instantiable InstantiableKind
}

// InstantiableKind distinguishes the three instantiation behaviors of
// §4.2 "Class": ordinary user classes get a fresh Instance, built-in value
// classes (list/tuple/number/boolean/string) hand the receiver slot to a
// native constructor as null, and non-instantiable built-ins always fail.
type InstantiableKind byte

const (
	InstantiableInstance InstantiableKind = iota // ordinary class: allocate Instance
	InstantiableBuiltinValue                     // list/tuple/number/boolean/string: native ctor fabricates it
	InstantiableNever                            // null/function/module/stacktrace/class/table/userdata
)

// NewClass allocates a class object. The returned *Class is also the
// Object's Payload and Class fields simultaneously is not meaningful for
// Class objects themselves (a class's own getClass is ClassClass, the
// built-in metaclass) — see builtin_classes.go.
func NewClass(name string, super *Class, instantiable InstantiableKind) *Class {
	return &Class{
		Name:         name,
		Super:        super,
		Methods:      make(map[string]Value),
		Fields:       make(map[string]Value),
		Instantiable: instantiable,
	}
}

// AsValue wraps the class in a Value of kind ObjClass.
func (c *Class) AsValue() Value {
	return FromObject(newObject(ObjClass, ClassClass, c))
}

// AsClass extracts the *Class payload of a class value.
func AsClass(v Value) *Class { return v.AsObject().Payload.(*Class) }

// IsClass reports whether v is a class object.
func IsClass(v Value) bool { return v.IsObject() && v.ObjectKind() == ObjClass }

// Method looks up name on c's own method table only (already flattened with
// inherited methods at creation — see createClass in the vm package).
func (c *Class) Method(name string) (Value, bool) {
	m, ok := c.Methods[name]
	return m, ok
}

// IsSubclassOf tests class membership along the superclass chain (§4.5
// "is"): true when c == target or target appears as an ancestor of c.
func (c *Class) IsSubclassOf(target *Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if cur == target {
			return true
		}
	}
	return false
}

// Instance is an object instance of a user (or built-in value) class (§3
// "Instance"): a class reference plus a field table.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

// NewInstance allocates an instance of class c.
func NewInstance(c *Class) Value {
	inst := &Instance{Class: c, Fields: make(map[string]Value)}
	obj := newObject(ObjInstance, c, inst)
	return FromObject(obj)
}

// AsInstance extracts the *Instance payload.
func AsInstance(v Value) *Instance { return v.AsObject().Payload.(*Instance) }

// IsInstance reports whether v is an instance object (of any class).
func IsInstance(v Value) bool { return v.IsObject() && v.ObjectKind() == ObjInstance }
