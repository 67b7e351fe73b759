package vm

import (
	"sync"

	"src.elv.sh/pkg/persistent/vector"

	"forkvm/internal/types"
)

// Output is the append-only print log. A fork shares its parent's
// Output, so appends are serialized; readers get an immutable view.
type Output struct {
	mu  sync.Mutex
	vec vector.Vector
}

func NewOutput() *Output {
	return &Output{vec: vector.Empty}
}

func (o *Output) Append(v types.Value) {
	o.mu.Lock()
	o.vec = o.vec.Conj(v)
	o.mu.Unlock()
}

func (o *Output) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.vec.Len()
}

// Values returns everything printed so far, in order.
func (o *Output) Values() []types.Value {
	o.mu.Lock()
	vec := o.vec
	o.mu.Unlock()

	out := make([]types.Value, 0, vec.Len())
	for it := vec.Iterator(); it.HasElem(); it.Next() {
		out = append(out, it.Elem().(types.Value))
	}
	return out
}
