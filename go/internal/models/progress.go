package models

// Identity is the stable identifier of the player owning a progress record
type Identity string

// String returns the identity as a plain string
func (i Identity) String() string {
	return string(i)
}

// ProgressState represents a player's replicated progress record
type ProgressState struct {
	Identity       Identity `json:"identity,omitempty"`
	UserName       string   `json:"user_name,omitempty"`
	Score          int64    `json:"score"`
	StreakLength   int64    `json:"streak_length"`
	CompletedItems []string `json:"completed_items"`
}

// ProgressPatch represents a partial update of a progress record.
// A nil field is unset and leaves the stored value untouched.
type ProgressPatch struct {
	UserName       *string  `json:"user_name,omitempty"`
	Score          *int64   `json:"score,omitempty"`
	StreakLength   *int64   `json:"streak_length,omitempty"`
	CompletedItems []string `json:"completed_items,omitempty"`
}

// IsEmpty reports whether the patch sets no field at all
func (p ProgressPatch) IsEmpty() bool {
	return p.UserName == nil && p.Score == nil && p.StreakLength == nil && p.CompletedItems == nil
}

// PatchFrom builds a patch that sets every replicated field of state.
// The user name is owned by the account and is never part of it.
func PatchFrom(state ProgressState) ProgressPatch {
	score := state.Score
	streak := state.StreakLength
	completed := make([]string, len(state.CompletedItems))
	copy(completed, state.CompletedItems)

	return ProgressPatch{
		Score:          &score,
		StreakLength:   &streak,
		CompletedItems: completed,
	}
}

// Apply returns a copy of state with every set field of the patch written over it
func (p ProgressPatch) Apply(state ProgressState) ProgressState {
	out := state.Clone()
	if p.UserName != nil {
		out.UserName = *p.UserName
	}
	if p.Score != nil {
		out.Score = *p.Score
	}
	if p.StreakLength != nil {
		out.StreakLength = *p.StreakLength
	}
	if p.CompletedItems != nil {
		out.CompletedItems = make([]string, len(p.CompletedItems))
		copy(out.CompletedItems, p.CompletedItems)
	}
	return out
}

// Clone returns a deep copy of the state
func (s ProgressState) Clone() ProgressState {
	out := s
	out.CompletedItems = make([]string, len(s.CompletedItems))
	copy(out.CompletedItems, s.CompletedItems)
	return out
}

// HasCompleted reports whether item is in the completed set
func (s ProgressState) HasCompleted(item string) bool {
	for _, c := range s.CompletedItems {
		if c == item {
			return true
		}
	}
	return false
}
