// Package intrinsics implements the builtin function library described in
// spec §4.4: a process-wide table of named, numbered functions, each
// callable through the VM's CallIntrinsicA opcode and referenceable as a
// first-class value through vm.Machine's variable-lookup fallback.
package intrinsics

import (
	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/miniscript-lang/miniscript/internal/vm"
)

type entry struct {
	name  string
	arity int
	fn    vm.IntrinsicFunc
}

// Table is the concrete registry handed to vm.Machine as its
// vm.IntrinsicLookup (spec §9 "Intrinsic table as data").
type Table struct {
	entries []entry
	byName  map[string]int
	proto   *value.Map
}

// New builds the full intrinsic table (spec §4.4's required categories).
func New() *Table {
	t := &Table{byName: make(map[string]int)}
	registerMath(t)
	registerBitwise(t)
	registerChar(t)
	registerStrings(t)
	registerSequences(t)
	registerTypeProtos(t)
	registerControl(t)
	t.buildPrototype()
	return t
}

func (t *Table) register(name string, arity int, fn vm.IntrinsicFunc) {
	id := len(t.entries)
	t.entries = append(t.entries, entry{name: name, arity: arity, fn: fn})
	t.byName[name] = id
}

// ByName implements vm.IntrinsicLookup.
func (t *Table) ByName(name string) (int, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// ByID implements vm.IntrinsicLookup.
func (t *Table) ByID(id int) (vm.IntrinsicFunc, string, int, bool) {
	if id < 0 || id >= len(t.entries) {
		return nil, "", 0, false
	}
	e := t.entries[id]
	return e.fn, e.name, e.arity, true
}

func (t *Table) buildPrototype() {
	m := value.NewMap()
	for _, e := range t.entries {
		m.Set(value.Str(e.name), value.Str(e.name))
	}
	m.AssignOverride = func(value.Value, value.Value) bool { return true } // read-only: writes are silently rejected
	t.proto = m
}

// Prototype implements vm.IntrinsicLookup.
func (t *Table) Prototype() *value.Map { return t.proto }
