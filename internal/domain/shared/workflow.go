package shared

import "fmt"

// Workflow is a finite-state-machine transition table shared by all document kinds.
// Each document status type declares its legal transitions once; every state change
// is checked against the table before the aggregate mutates itself.
type Workflow[S ~string] struct {
	kind        string
	transitions map[S][]S
}

// NewWorkflow creates a workflow for the given document kind.
// The transitions map lists, for each status, the statuses reachable from it.
// Statuses absent from the map (or mapped to an empty slice) are terminal.
func NewWorkflow[S ~string](kind string, transitions map[S][]S) *Workflow[S] {
	return &Workflow[S]{
		kind:        kind,
		transitions: transitions,
	}
}

// Kind returns the document kind this workflow governs
func (w *Workflow[S]) Kind() string {
	return w.kind
}

// CanTransition returns true if the transition from -> to is listed in the table
func (w *Workflow[S]) CanTransition(from, to S) bool {
	for _, target := range w.transitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// Transition validates the transition from -> to.
// Returns an INVALID_TRANSITION domain error when the transition is not listed;
// the caller must leave the document unchanged in that case.
func (w *Workflow[S]) Transition(from, to S) error {
	if !w.CanTransition(from, to) {
		return NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("%s cannot transition from %s to %s", w.kind, from, to))
	}
	return nil
}

// IsTerminal returns true if no transitions leave the given status
func (w *Workflow[S]) IsTerminal(s S) bool {
	return len(w.transitions[s]) == 0
}

// LegalTargets returns the statuses reachable from the given status
func (w *Workflow[S]) LegalTargets(from S) []S {
	targets := w.transitions[from]
	out := make([]S, len(targets))
	copy(out, targets)
	return out
}
