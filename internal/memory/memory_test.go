package memory

import (
	"fmt"
	"testing"
)

func TestAppendHistory_RoundTrip(t *testing.T) {
	m := New()
	m.Append(RoleUser, "a")
	m.Append(RoleAssistant, "b")

	history := m.History()
	want := []Turn{
		{Role: RoleUser, Text: "a"},
		{Role: RoleAssistant, Text: "b"},
	}
	if len(history) != len(want) {
		t.Fatalf("History() has %d turns, want %d", len(history), len(want))
	}
	for i, turn := range want {
		if history[i] != turn {
			t.Errorf("History()[%d] = %+v, want %+v (order must be preserved)", i, history[i], turn)
		}
	}
}

func TestHistory_Snapshot(t *testing.T) {
	m := New()
	m.Append(RoleUser, "first")

	snapshot := m.History()
	m.Append(RoleAssistant, "second")

	if len(snapshot) != 1 {
		t.Errorf("snapshot grew after a later append: %v", snapshot)
	}
}

func TestUnboundedByDefault(t *testing.T) {
	m := New()
	for i := 0; i < 1000; i++ {
		m.Append(RoleUser, fmt.Sprintf("turn %d", i))
	}
	if m.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000 (default memory must not evict)", m.Len())
	}
}

func TestWithMaxTurns_FIFOEviction(t *testing.T) {
	m := WithMaxTurns(4)
	for i := 0; i < 6; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		m.Append(role, fmt.Sprintf("turn %d", i))
	}

	history := m.History()
	if len(history) != 4 {
		t.Fatalf("Len() = %d, want 4 after eviction", len(history))
	}
	if history[0].Text != "turn 2" {
		t.Errorf("oldest kept turn = %q, want %q", history[0].Text, "turn 2")
	}
	if history[3].Text != "turn 5" {
		t.Errorf("newest turn = %q, want %q", history[3].Text, "turn 5")
	}
}

func TestWithMaxTurns_NonPositiveMeansUnbounded(t *testing.T) {
	m := WithMaxTurns(0)
	for i := 0; i < 10; i++ {
		m.Append(RoleUser, "x")
	}
	if m.Len() != 10 {
		t.Errorf("Len() = %d, want 10", m.Len())
	}
}
