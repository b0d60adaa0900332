// Package selection implements OS-style anchored multi-selection over an
// ordered view of asset ids.
package selection

// Modifiers describes the modifier keys held during an interaction.
type Modifiers struct {
	Toggle bool // ctrl/cmd: toggle membership
	Range  bool // shift: select the span between anchor and target
}

// State is the session-scoped selection. Selected ids are only
// meaningful against the collection they were taken from; Prune drops
// ids that no longer exist after a refresh.
type State struct {
	Selected      map[int64]bool
	Anchor        int64 // pivot for range selection, 0 when unset
	ContextTarget int64 // item the context menu targets, 0 when closed
}

// New returns an empty selection.
func New() *State {
	return &State{Selected: make(map[int64]bool)}
}

// Clear empties the selection and drops the anchor.
func (s *State) Clear() {
	s.Selected = make(map[int64]bool)
	s.Anchor = 0
	s.ContextTarget = 0
}

// IsSelected reports whether id is in the selection.
func (s *State) IsSelected(id int64) bool {
	return s.Selected[id]
}

// Count returns the number of selected ids.
func (s *State) Count() int {
	return len(s.Selected)
}

// IDs returns the selected ids in the order they appear in view. Ids
// not present in the view are appended afterwards in unspecified order.
func (s *State) IDs(view []int64) []int64 {
	out := make([]int64, 0, len(s.Selected))
	seen := make(map[int64]bool, len(s.Selected))
	for _, id := range view {
		if s.Selected[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for id := range s.Selected {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// OnPrimaryInteraction applies a click on id to the selection. The view
// is the currently displayed (filtered and sorted) id sequence; range
// selection is computed against it, never against the raw collection.
//
// Plain click: selection becomes {id}, anchor moves to id.
// Toggle click: id flips membership, anchor moves to id.
// Range click with an anchor: the inclusive span between anchor and id
// in the view replaces the selection, or unions into it when the toggle
// modifier is also held. The anchor does not move. If either endpoint
// is missing from the view the interaction is a no-op.
// Range click without an anchor degrades to a plain click.
func (s *State) OnPrimaryInteraction(id int64, mods Modifiers, view []int64) {
	switch {
	case mods.Range && s.Anchor != 0:
		anchorIdx, idIdx := indexOf(view, s.Anchor), indexOf(view, id)
		if anchorIdx < 0 || idIdx < 0 {
			return
		}
		lo, hi := anchorIdx, idIdx
		if lo > hi {
			lo, hi = hi, lo
		}
		if !mods.Toggle {
			s.Selected = make(map[int64]bool, hi-lo+1)
		}
		for _, spanID := range view[lo : hi+1] {
			s.Selected[spanID] = true
		}

	case mods.Toggle:
		if s.Selected[id] {
			delete(s.Selected, id)
		} else {
			s.Selected[id] = true
		}
		s.Anchor = id

	default:
		s.Selected = map[int64]bool{id: true}
		s.Anchor = id
	}
}

// OnContextInteraction applies a right-click on id. A context click on
// an unselected item collapses the selection to that item first; one on
// an already-selected item preserves the existing multi-selection.
// Either way the context menu targets id.
func (s *State) OnContextInteraction(id int64) {
	if !s.Selected[id] {
		s.Selected = map[int64]bool{id: true}
		s.Anchor = id
	}
	s.ContextTarget = id
}

// Prune drops selected ids (and the anchor) that are no longer in the
// live collection. Stale ids are not an error; assets deleted elsewhere
// simply vanish from the selection on the next refresh.
func (s *State) Prune(live map[int64]bool) {
	for id := range s.Selected {
		if !live[id] {
			delete(s.Selected, id)
		}
	}
	if s.Anchor != 0 && !live[s.Anchor] {
		s.Anchor = 0
	}
	if s.ContextTarget != 0 && !live[s.ContextTarget] {
		s.ContextTarget = 0
	}
}

func indexOf(view []int64, id int64) int {
	for i, v := range view {
		if v == id {
			return i
		}
	}
	return -1
}
