package tree

import (
	"fmt"
	"io"
)

// MutationOp identifies one kind of tree mutation.
type MutationOp string

const (
	OpSetText    MutationOp = "set_text"
	OpSplitText  MutationOp = "split_text"
	OpRemove     MutationOp = "remove"
	OpSetAttr    MutationOp = "set_attr"
	OpRemoveAttr MutationOp = "remove_attr"
	OpToggleAttr MutationOp = "toggle_attr"
	OpSetField   MutationOp = "set_field"
)

// Mutation records one write performed through a Recorder.
type Mutation struct {
	Op    MutationOp
	Node  Node
	Name  string
	Value any
}

// String renders a mutation for traces and logs.
func (m Mutation) String() string {
	switch m.Op {
	case OpSetText, OpSplitText, OpRemove:
		return fmt.Sprintf("%s %v", m.Op, m.Value)
	default:
		return fmt.Sprintf("%s %s=%v", m.Op, m.Name, m.Value)
	}
}

// Recorder decorates a Tree and appends every mutation performed through
// it to a log. Reads and traversal delegate untouched. The engine is
// single-threaded, so the log is not synchronized.
type Recorder struct {
	Tree
	log []Mutation
}

// NewRecorder wraps a tree so its mutations are recorded.
func NewRecorder(t Tree) *Recorder {
	return &Recorder{Tree: t}
}

// Mutations returns the mutations recorded so far, oldest first.
func (r *Recorder) Mutations() []Mutation {
	return r.log
}

// Take returns the recorded mutations and clears the log.
func (r *Recorder) Take() []Mutation {
	m := r.log
	r.log = nil
	return m
}

// Reset clears the log.
func (r *Recorder) Reset() {
	r.log = nil
}

// Len reports how many mutations have been recorded since the last reset.
func (r *Recorder) Len() int {
	return len(r.log)
}

// CloneDeep clones the underlying tree and wraps the clone in a fresh
// recorder with an empty log.
func (r *Recorder) CloneDeep() Tree {
	return NewRecorder(r.Tree.CloneDeep())
}

func (r *Recorder) SetText(n Node, text string) {
	r.Tree.SetText(n, text)
	r.log = append(r.log, Mutation{Op: OpSetText, Node: n, Value: text})
}

func (r *Recorder) SplitText(n Node, offset int) Node {
	rest := r.Tree.SplitText(n, offset)
	r.log = append(r.log, Mutation{Op: OpSplitText, Node: n, Value: offset})
	return rest
}

func (r *Recorder) Remove(n Node) {
	r.Tree.Remove(n)
	r.log = append(r.log, Mutation{Op: OpRemove, Node: n})
}

func (r *Recorder) SetAttr(n Node, name, value string) {
	r.Tree.SetAttr(n, name, value)
	r.log = append(r.log, Mutation{Op: OpSetAttr, Node: n, Name: name, Value: value})
}

func (r *Recorder) RemoveAttr(n Node, name string) {
	r.Tree.RemoveAttr(n, name)
	r.log = append(r.log, Mutation{Op: OpRemoveAttr, Node: n, Name: name})
}

func (r *Recorder) ToggleAttr(n Node, name string, present bool) {
	r.Tree.ToggleAttr(n, name, present)
	r.log = append(r.log, Mutation{Op: OpToggleAttr, Node: n, Name: name, Value: present})
}

func (r *Recorder) SetField(n Node, name string, value any) {
	r.Tree.SetField(n, name, value)
	r.log = append(r.log, Mutation{Op: OpSetField, Node: n, Name: name, Value: value})
}

// Render delegates to the underlying tree when it supports serialization.
func (r *Recorder) Render(w io.Writer) error {
	if rr, ok := r.Tree.(Renderer); ok {
		return rr.Render(w)
	}
	return fmt.Errorf("tree: %T does not support rendering", r.Tree)
}
