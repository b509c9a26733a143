// internal/board/status.go
//
// Status is the column a task lives in. Movement between columns follows a
// fixed ordering (Todo < Doing < Done) and only ever steps to a neighbour.

package board

import (
	"fmt"
	"strings"
)

// Status identifies the board column a task belongs to.
type Status int

const (
	Todo  Status = iota // Not started
	Doing               // In progress
	Done                // Finished
)

// neighbours is the whole transition table for single-step moves.
// A missing direction means the move is a no-op at that boundary.
var neighbours = map[Status]struct {
	left, right       Status
	hasLeft, hasRight bool
}{
	Todo:  {right: Doing, hasRight: true},
	Doing: {left: Todo, right: Done, hasLeft: true, hasRight: true},
	Done:  {left: Doing, hasLeft: true},
}

// Statuses returns the columns in board order.
func Statuses() []Status {
	return []Status{Todo, Doing, Done}
}

// String returns the persisted name of the status.
func (s Status) String() string {
	switch s {
	case Todo:
		return "todo"
	case Doing:
		return "doing"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Title returns the column heading shown to the user.
func (s Status) Title() string {
	switch s {
	case Todo:
		return "To Do"
	case Doing:
		return "Doing"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the three board columns.
func (s Status) Valid() bool {
	_, ok := neighbours[s]
	return ok
}

// Left returns the status one column to the left. The bool is false when
// there is no such column (Todo) or s is not a valid status.
func (s Status) Left() (Status, bool) {
	n, ok := neighbours[s]
	if !ok || !n.hasLeft {
		return s, false
	}
	return n.left, true
}

// Right returns the status one column to the right. The bool is false when
// there is no such column (Done) or s is not a valid status.
func (s Status) Right() (Status, bool) {
	n, ok := neighbours[s]
	if !ok || !n.hasRight {
		return s, false
	}
	return n.right, true
}

// ParseStatus accepts the persisted names and the column titles, ignoring case.
func ParseStatus(value string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, s := range Statuses() {
		if normalized == s.String() || normalized == strings.ToLower(s.Title()) {
			return s, nil
		}
	}
	switch normalized {
	case "to-do", "to_do":
		return Todo, nil
	}
	return Todo, fmt.Errorf("board: unknown status %q", value)
}

// MarshalText encodes the status as its persisted name.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("board: cannot encode status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a persisted status name.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
