package values

import "strings"

// List is a growable array of values (§3 "List").
type List struct {
	Elements []Value
}

// NewList allocates an empty list object.
func NewList() Value {
	return FromObject(newObject(ObjList, ListClass, &List{}))
}

// NewListFrom allocates a list object seeded with elems (shared slice).
func NewListFrom(elems []Value) Value {
	return FromObject(newObject(ObjList, ListClass, &List{Elements: elems}))
}

// AsList extracts the *List payload.
func AsList(v Value) *List { return v.AsObject().Payload.(*List) }

// IsList reports whether v is a list object.
func IsList(v Value) bool { return v.IsObject() && v.ObjectKind() == ObjList }

func (l *List) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Tuple is a fixed-size array of values (§3 "Tuple"); the zero-length tuple
// is a process-wide singleton.
type Tuple struct {
	Elements []Value
}

var emptyTupleObj = newObject(ObjTuple, TupleClass, &Tuple{})

// NewTuple allocates a tuple object, returning the shared empty-tuple
// singleton when elems is empty (§3 "the zero-length tuple is a
// singleton").
func NewTuple(elems []Value) Value {
	if len(elems) == 0 {
		return FromObject(emptyTupleObj)
	}
	return FromObject(newObject(ObjTuple, TupleClass, &Tuple{Elements: elems}))
}

// AsTuple extracts the *Tuple payload.
func AsTuple(v Value) *Tuple { return v.AsObject().Payload.(*Tuple) }

// IsTuple reports whether v is a tuple object.
func IsTuple(v Value) bool { return v.IsObject() && v.ObjectKind() == ObjTuple }

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// tableKey boxes a Value into a Go-comparable key so a plain Go map can back
// Table. This is the idiomatic Go stand-in for "the hash table primitive"
// the spec names as an out-of-scope collaborator (§1) — Go's map already is
// that collaborator.
type tableKey struct {
	kind   Kind
	number float64
	handle interface{}
	obj    *Object
}

func keyOf(v Value) tableKey {
	return tableKey{kind: v.kind, number: v.number, handle: v.handle, obj: v.obj}
}

// Table is a hash map from value to value (§3 "Table"), the user-visible
// dict type.
type Table struct {
	entries map[tableKey]tableEntry
}

type tableEntry struct {
	key   Value
	value Value
}

// NewTable allocates an empty table object.
func NewTable() Value {
	return FromObject(newObject(ObjTable, TableClass, &Table{entries: make(map[tableKey]tableEntry)}))
}

// AsTable extracts the *Table payload.
func AsTable(v Value) *Table { return v.AsObject().Payload.(*Table) }

// IsTable reports whether v is a table object.
func IsTable(v Value) bool { return v.IsObject() && v.ObjectKind() == ObjTable }

func (t *Table) Get(key Value) (Value, bool) {
	e, ok := t.entries[keyOf(key)]
	if !ok {
		return Null(), false
	}
	return e.value, true
}

func (t *Table) Set(key, value Value) {
	t.entries[keyOf(key)] = tableEntry{key: key, value: value}
}

func (t *Table) Delete(key Value) {
	delete(t.entries, keyOf(key))
}

func (t *Table) Len() int { return len(t.entries) }

// Range visits every entry; order is unspecified, matching Go map iteration.
func (t *Table) Range(fn func(key, value Value) bool) {
	for _, e := range t.entries {
		if !fn(e.key, e.value) {
			return
		}
	}
}

func (t *Table) String() string {
	parts := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		parts = append(parts, e.key.String()+": "+e.value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
