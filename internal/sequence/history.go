package sequence

import "github.com/claude/circuitry/internal/models"

// DefaultHistoryCapacity is the number of replacements kept for undo.
const DefaultHistoryCapacity = 50

// HistoryState is derived entirely from the cursor and the record count.
type HistoryState string

const (
	StateIdle           HistoryState = "idle"
	StateCanUndo        HistoryState = "can_undo"
	StateCanRedo        HistoryState = "can_redo"
	StateCanUndoAndRedo HistoryState = "can_undo_and_redo"
)

// HistoryStatus is a snapshot of a History for callers.
type HistoryStatus struct {
	CanUndo  bool         `json:"can_undo"`
	CanRedo  bool         `json:"can_redo"`
	Size     int          `json:"size"`
	Capacity int          `json:"capacity"`
	Cursor   int          `json:"cursor"`
	State    HistoryState `json:"state"`
}

// History is a bounded linear undo/redo log. Records at or before the cursor
// are undoable; records after it are redoable. Not safe for concurrent use.
type History struct {
	records  []models.ReplacementRecord
	cursor   int
	capacity int
}

// NewHistory creates an empty history. capacity <= 0 uses DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{cursor: -1, capacity: capacity}
}

// Push appends rec, discarding any redoable records first and evicting the
// oldest record when full.
func (h *History) Push(rec models.ReplacementRecord) {
	h.records = append(h.records[:h.cursor+1], rec)
	if over := len(h.records) - h.capacity; over > 0 {
		h.records = append(h.records[:0:0], h.records[over:]...)
	}
	h.cursor = len(h.records) - 1
}

// CanUndo reports whether a record exists at or before the cursor.
func (h *History) CanUndo() bool { return h.cursor >= 0 }

// CanRedo reports whether a record exists after the cursor.
func (h *History) CanRedo() bool { return h.cursor < len(h.records)-1 }

// Len returns the number of records held.
func (h *History) Len() int { return len(h.records) }

// Capacity returns the maximum number of records held.
func (h *History) Capacity() int { return h.capacity }

// peekUndo returns the record an undo would revert, without moving the cursor.
func (h *History) peekUndo() (models.ReplacementRecord, bool) {
	if !h.CanUndo() {
		return models.ReplacementRecord{}, false
	}
	return h.records[h.cursor], true
}

// peekRedo returns the record a redo would reapply, without moving the cursor.
func (h *History) peekRedo() (models.ReplacementRecord, bool) {
	if !h.CanRedo() {
		return models.ReplacementRecord{}, false
	}
	return h.records[h.cursor+1], true
}

func (h *History) stepBack()    { h.cursor-- }
func (h *History) stepForward() { h.cursor++ }

// Clear drops every record and returns to idle.
func (h *History) Clear() {
	h.records = nil
	h.cursor = -1
}

// Records returns a copy of the log in chronological order.
func (h *History) Records() []models.ReplacementRecord {
	out := make([]models.ReplacementRecord, len(h.records))
	copy(out, h.records)
	return out
}

// State returns the current state machine position.
func (h *History) State() HistoryState {
	switch undo, redo := h.CanUndo(), h.CanRedo(); {
	case undo && redo:
		return StateCanUndoAndRedo
	case undo:
		return StateCanUndo
	case redo:
		return StateCanRedo
	default:
		return StateIdle
	}
}

// Status returns a snapshot suitable for JSON output.
func (h *History) Status() HistoryStatus {
	return HistoryStatus{
		CanUndo:  h.CanUndo(),
		CanRedo:  h.CanRedo(),
		Size:     len(h.records),
		Capacity: h.capacity,
		Cursor:   h.cursor,
		State:    h.State(),
	}
}
