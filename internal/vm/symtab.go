package vm

import (
	"slices"

	"src.elv.sh/pkg/persistent/hash"
	"src.elv.sh/pkg/persistent/hashmap"

	"forkvm/internal/types"
)

// SymbolTable binds names to values. It is backed by a persistent map, so
// Copy is O(1) and a forked copy never observes later writes of its parent.
// A table belongs to one state and is not safe for concurrent writes.
type SymbolTable struct {
	m hashmap.Map
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{m: hashmap.New(equalString, hashString)}
}

func equalString(a, b any) bool { return a.(string) == b.(string) }
func hashString(k any) uint32   { return hash.String(k.(string)) }

// Declare adds a new binding.
func (t *SymbolTable) Declare(name string, v types.Value) error {
	if _, ok := t.m.Index(name); ok {
		return newError(CodeDuplicateKey, "variable %q is already declared", name)
	}
	t.m = t.m.Assoc(name, v)
	return nil
}

func (t *SymbolTable) Lookup(name string) (types.Value, error) {
	v, ok := t.m.Index(name)
	if !ok {
		return types.Value{}, newError(CodeMissingKey, "variable %q is not declared", name)
	}
	return v.(types.Value), nil
}

// Set overwrites an existing binding.
func (t *SymbolTable) Set(name string, v types.Value) error {
	if _, ok := t.m.Index(name); !ok {
		return newError(CodeMissingKey, "variable %q is not declared", name)
	}
	t.m = t.m.Assoc(name, v)
	return nil
}

func (t *SymbolTable) Has(name string) bool {
	_, ok := t.m.Index(name)
	return ok
}

func (t *SymbolTable) Len() int { return t.m.Len() }

func (t *SymbolTable) Copy() *SymbolTable { return &SymbolTable{m: t.m} }

// Names returns the bound names in sorted order.
func (t *SymbolTable) Names() []string {
	names := make([]string, 0, t.m.Len())
	for it := t.m.Iterator(); it.HasElem(); it.Next() {
		k, _ := it.Elem()
		names = append(names, k.(string))
	}
	slices.Sort(names)
	return names
}

// EachValue makes the table a garbage collection root set.
func (t *SymbolTable) EachValue(fn func(types.Value)) {
	for it := t.m.Iterator(); it.HasElem(); it.Next() {
		_, v := it.Elem()
		fn(v.(types.Value))
	}
}
