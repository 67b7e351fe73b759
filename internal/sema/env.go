// Package sema type-checks forkvm programs before they are scheduled.
package sema

import (
	"slices"

	"forkvm/internal/diag"
	"forkvm/internal/types"
)

// Env maps declared names to their static types.
// The zero value is not usable; call NewEnv.
type Env struct {
	vars map[string]types.Type
}

func NewEnv() Env {
	return Env{vars: make(map[string]types.Type)}
}

// Put declares name. Declaring an existing name is an error.
func (e Env) Put(name string, t types.Type) error {
	if _, exists := e.vars[name]; exists {
		return &TypeError{Code: diag.TypeDuplicateDecl, Msg: "variable " + name + " is already declared"}
	}
	e.vars[name] = t
	return nil
}

func (e Env) Lookup(name string) (types.Type, error) {
	t, ok := e.vars[name]
	if !ok {
		return types.Type{}, &TypeError{Code: diag.TypeUndefinedVar, Msg: "variable " + name + " is not declared"}
	}
	return t, nil
}

// Copy returns an independent environment. Types are values, so a
// shallow map copy is already deep.
func (e Env) Copy() Env {
	out := Env{vars: make(map[string]types.Type, len(e.vars))}
	for k, v := range e.vars {
		out.vars[k] = v
	}
	return out
}

// Names returns the declared names in sorted order.
func (e Env) Names() []string {
	names := make([]string, 0, len(e.vars))
	for k := range e.vars {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func (e Env) Len() int { return len(e.vars) }
