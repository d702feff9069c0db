package core

import "github.com/kaiwa-go/kaiwa/pkg/core/types"

// History is the append-only store of one session's conversation turns.
// Turns are never mutated or removed; the store lives as long as the
// session. A single in-flight turn touches it at a time, so no locking.
type History struct {
	turns []types.Turn
}

// NewHistory creates an empty history, optionally seeded with replayed
// turns from a client.
func NewHistory(seed []types.Turn) *History {
	turns := make([]types.Turn, 0, max(len(seed), 16))
	turns = append(turns, seed...)
	return &History{turns: turns}
}

// Len returns the number of stored turns.
func (h *History) Len() int {
	return len(h.turns)
}

// AppendUser appends a user-role turn.
func (h *History) AppendUser(content string) {
	h.turns = append(h.turns, types.Turn{Role: types.RoleUser, Content: content})
}

// AppendModel appends a model-role turn.
func (h *History) AppendModel(content string) {
	h.turns = append(h.turns, types.Turn{Role: types.RoleModel, Content: content})
}

// Snapshot returns a copy of the turns. Callers get a transient view;
// the store keeps exclusive ownership of the backing sequence.
func (h *History) Snapshot() []types.Turn {
	out := make([]types.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}
