package vm

// Snapshot is an immutable, printable copy of one state taken between
// rounds. Observers and loggers only ever see snapshots.
type Snapshot struct {
	ID      int        `json:"id" yaml:"id" msgpack:"id"`
	Stack   []string   `json:"stack" yaml:"stack" msgpack:"stack"` // most recent first
	Symbols []Binding  `json:"symbols" yaml:"symbols" msgpack:"symbols"`
	Output  []string   `json:"output" yaml:"output" msgpack:"output"`
	Files   []string   `json:"files" yaml:"files" msgpack:"files"`
	Heap    []HeapCell `json:"heap" yaml:"heap" msgpack:"heap"`
	Err     string     `json:"error,omitempty" yaml:"error,omitempty" msgpack:"error,omitempty"`
	Done    bool       `json:"done" yaml:"done" msgpack:"done"`
}

type Binding struct {
	Name  string `json:"name" yaml:"name" msgpack:"name"`
	Type  string `json:"type" yaml:"type" msgpack:"type"`
	Value string `json:"value" yaml:"value" msgpack:"value"`
}

type HeapCell struct {
	Addr  uint64 `json:"addr" yaml:"addr" msgpack:"addr"`
	Value string `json:"value" yaml:"value" msgpack:"value"`
}

// Snapshot copies the state. It must not run concurrently with Step on
// any state sharing the same heap.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{ID: s.ID, Done: s.Done()}

	for _, st := range s.Stack.Items() {
		snap.Stack = append(snap.Stack, st.String())
	}
	for _, name := range s.Symbols.Names() {
		v, _ := s.Symbols.Lookup(name)
		snap.Symbols = append(snap.Symbols, Binding{Name: name, Type: v.Type().String(), Value: v.String()})
	}
	for _, v := range s.Output.Values() {
		snap.Output = append(snap.Output, v.String())
	}
	snap.Files = s.Files.Names()
	if s.Heap != nil {
		for _, e := range s.Heap.Snapshot() {
			snap.Heap = append(snap.Heap, HeapCell{Addr: uint64(e.Addr), Value: e.Value.String()})
		}
	}
	if s.Err != nil {
		snap.Err = s.Err.Error()
	}
	return snap
}
