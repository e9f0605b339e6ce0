package timeline

// History is a linear undo/redo stack over snapshot values. It knows
// nothing about segments: states are opaque values the caller promises not
// to mutate after handing them in (Sequence.Clone before Set).
//
// Set after an Undo discards the redo stack, standard linear-history
// semantics.
type History[S any] struct {
	past    []S
	present S
	future  []S
}

// NewHistory starts a history at the given initial state with empty
// undo/redo stacks.
func NewHistory[S any](initial S) *History[S] {
	return &History[S]{present: initial}
}

// Present returns the current state.
func (h *History[S]) Present() S {
	return h.present
}

// Set records a new current state, pushing the old one onto the undo stack
// and clearing any redo entries.
func (h *History[S]) Set(state S) {
	h.past = append(h.past, h.present)
	h.present = state
	h.future = nil
}

// Replace swaps the present state without recording an undo step. Meant
// for derived-data updates (word memoization) that are not edits.
func (h *History[S]) Replace(state S) {
	h.present = state
}

// Undo steps back one state. Reports false, leaving everything untouched,
// when there is nothing to undo.
func (h *History[S]) Undo() (S, bool) {
	if len(h.past) == 0 {
		return h.present, false
	}
	h.future = append([]S{h.present}, h.future...)
	h.present = h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	return h.present, true
}

// Redo steps forward one state. Reports false, leaving everything
// untouched, when there is nothing to redo.
func (h *History[S]) Redo() (S, bool) {
	if len(h.future) == 0 {
		return h.present, false
	}
	h.past = append(h.past, h.present)
	h.present = h.future[0]
	h.future = h.future[1:]
	return h.present, true
}

func (h *History[S]) CanUndo() bool {
	return len(h.past) > 0
}

func (h *History[S]) CanRedo() bool {
	return len(h.future) > 0
}
