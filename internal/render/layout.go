package render

import "github.com/kingrea/kanban/internal/board"

// Rect is a screen region in terminal cells, origin at the top-left.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// clipRows shifts r up by offset and keeps only the rows in [lo, hi).
func (r Rect) clipRows(offset, lo, hi int) (Rect, bool) {
	top := max(r.Y-offset, lo)
	bottom := min(r.Y-offset+r.H, hi)
	if bottom <= top {
		return Rect{}, false
	}
	return Rect{X: r.X, Y: top, W: r.W, H: bottom - top}, true
}

// Target names what a screen cell belongs to.
type Target int

const (
	TargetNone Target = iota
	TargetInput
	TargetAdd
	TargetColumn
	TargetCard
	TargetMoveLeft
	TargetDelete
	TargetMoveRight
)

func (t Target) String() string {
	switch t {
	case TargetInput:
		return "input"
	case TargetAdd:
		return "add"
	case TargetColumn:
		return "column"
	case TargetCard:
		return "card"
	case TargetMoveLeft:
		return "move-left"
	case TargetDelete:
		return "delete"
	case TargetMoveRight:
		return "move-right"
	default:
		return "none"
	}
}

// Hit is the result of resolving a screen cell. Status is set for anything
// inside a column; TaskID for cards and their controls.
type Hit struct {
	Target Target
	Status board.Status
	TaskID string
}

// InColumn reports whether the hit landed anywhere inside a column.
func (h Hit) InColumn() bool {
	switch h.Target {
	case TargetColumn, TargetCard, TargetMoveLeft, TargetDelete, TargetMoveRight:
		return true
	default:
		return false
	}
}

// ControlZone is one clickable control on a card.
type ControlZone struct {
	Target Target
	Rect   Rect
}

// CardZone is the screen region of one card and its visible controls.
type CardZone struct {
	TaskID   string
	Status   board.Status
	Rect     Rect
	Controls []ControlZone
}

// ColumnZone is the screen region of one column, border included.
type ColumnZone struct {
	Status board.Status
	Rect   Rect
}

// Layout records where everything was drawn in the last frame. It is the
// single place mouse events are resolved.
type Layout struct {
	Input   Rect
	Add     Rect
	Columns []ColumnZone
	Cards   []CardZone

	// Scroll is how many board rows are hidden above the visible window.
	Scroll int
	// BoardRows is the height of the visible board window; zero when the
	// whole board fits.
	BoardRows int
}

// window moves every board zone into screen coordinates for a board that is
// scrolled by offset and shown in rows [top, top+rows). Zones that end up
// off screen are dropped so they can never be hit.
func (l *Layout) window(top, rows, offset int) {
	lo, hi := top, top+rows
	cols := l.Columns[:0]
	for _, col := range l.Columns {
		if rect, ok := col.Rect.clipRows(offset, lo, hi); ok {
			col.Rect = rect
			cols = append(cols, col)
		}
	}
	l.Columns = cols

	cards := l.Cards[:0]
	for _, card := range l.Cards {
		rect, ok := card.Rect.clipRows(offset, lo, hi)
		if !ok {
			continue
		}
		var controls []ControlZone
		for _, ctrl := range card.Controls {
			if r, ok := ctrl.Rect.clipRows(offset, lo, hi); ok {
				ctrl.Rect = r
				controls = append(controls, ctrl)
			}
		}
		card.Rect = rect
		card.Controls = controls
		cards = append(cards, card)
	}
	l.Cards = cards
	l.Scroll = offset
	l.BoardRows = rows
}

// HitTest resolves a cell to the innermost element under it. Card controls
// win over the card body so a click on a control never starts a drag.
func (l Layout) HitTest(x, y int) Hit {
	for _, card := range l.Cards {
		if !card.Rect.Contains(x, y) {
			continue
		}
		for _, ctrl := range card.Controls {
			if ctrl.Rect.Contains(x, y) {
				return Hit{Target: ctrl.Target, Status: card.Status, TaskID: card.TaskID}
			}
		}
		return Hit{Target: TargetCard, Status: card.Status, TaskID: card.TaskID}
	}
	for _, col := range l.Columns {
		if col.Rect.Contains(x, y) {
			return Hit{Target: TargetColumn, Status: col.Status}
		}
	}
	if l.Add.Contains(x, y) {
		return Hit{Target: TargetAdd}
	}
	if l.Input.Contains(x, y) {
		return Hit{Target: TargetInput}
	}
	return Hit{Target: TargetNone}
}

// Card returns the zone for a task id.
func (l Layout) Card(id string) (CardZone, bool) {
	for _, card := range l.Cards {
		if card.TaskID == id {
			return card, true
		}
	}
	return CardZone{}, false
}

// Column returns the zone for a status.
func (l Layout) Column(status board.Status) (ColumnZone, bool) {
	for _, col := range l.Columns {
		if col.Status == status {
			return col, true
		}
	}
	return ColumnZone{}, false
}
