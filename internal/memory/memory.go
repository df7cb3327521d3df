// Package memory implements the per-session conversation buffer: an
// append-only, chronological log of turns replayed to the completion
// provider as prompt context.
package memory

// Role identifies the author of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystem is used for retrieval context injected ahead of the
	// conversation, never for stored turns.
	RoleSystem Role = "system"
)

// Turn is a single conversation entry. Owned exclusively by one Memory.
type Turn struct {
	Role Role
	Text string
}

// Memory is an ordered, append-only log of conversation turns.
//
// Growth is unbounded by default: every turn accumulates for the lifetime
// of the session. This is a deliberate, documented property, not an
// oversight — bounding must be opted into explicitly with WithMaxTurns.
//
// Memory is not safe for concurrent use; each session owns its own
// instance and resolves one message at a time.
type Memory struct {
	turns    []Turn
	maxTurns int // 0 = unbounded
}

// New creates an unbounded conversation memory.
func New() *Memory {
	return &Memory{}
}

// WithMaxTurns creates a bounded memory that evicts the oldest turns
// (FIFO) once more than maxTurns accumulate. maxTurns <= 0 means
// unbounded.
func WithMaxTurns(maxTurns int) *Memory {
	if maxTurns < 0 {
		maxTurns = 0
	}
	return &Memory{maxTurns: maxTurns}
}

// Append adds a turn at the end of the log, evicting from the front when
// a bound is configured.
func (m *Memory) Append(role Role, text string) {
	m.turns = append(m.turns, Turn{Role: role, Text: text})
	if m.maxTurns > 0 && len(m.turns) > m.maxTurns {
		// Shift instead of re-slicing so the backing array does not
		// pin evicted turns.
		n := copy(m.turns, m.turns[len(m.turns)-m.maxTurns:])
		m.turns = m.turns[:n]
	}
}

// History returns a chronological snapshot of all turns. The caller may
// keep the slice; later appends do not affect it.
func (m *Memory) History() []Turn {
	snapshot := make([]Turn, len(m.turns))
	copy(snapshot, m.turns)
	return snapshot
}

// Len returns the number of stored turns.
func (m *Memory) Len() int {
	return len(m.turns)
}
