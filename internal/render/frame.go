package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/kingrea/kanban/internal/board"
)

const (
	// DefaultColumnWidth is the outer-less width of one column box.
	DefaultColumnWidth = 30
	minColumnWidth     = 24

	// rows above the columns: title, input row, blank
	boardTop = 3
	// rows inside a column above the first card: heading, blank
	columnHeaderRows = 2
	// bordered card: text, date, controls
	cardHeight = 5

	addLabel    = "[ Add ]"
	leftLabel   = "[<]"
	deleteLabel = "[x]"
	rightLabel  = "[>]"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	addStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))
	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	emptyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	dateStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	controlStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	logHeadStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	logBodyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	columnBorder   = lipgloss.Color("#444444")
	dropBorder     = lipgloss.Color("#5B8DEF")
	draggingBorder = lipgloss.Color("#666666")
)

var statusBorder = map[board.Status]lipgloss.Color{
	board.Todo:  lipgloss.Color("#FCA5A5"),
	board.Doing: lipgloss.Color("#FDE68A"),
	board.Done:  lipgloss.Color("#A7F3D0"),
}

// ViewState is the transient interaction state the frame reflects. It never
// feeds back into the task collection.
type ViewState struct {
	Input        string
	BoardFocused bool
	Selected     string
	SelectedCol  board.Status
	Dragging     string
	DropActive   bool
	DropTarget   board.Status
	Status       string
	Help         string
	Log          []string
	LogTitle     string

	// Height is the number of screen rows available; zero draws everything.
	Height int
	// Scroll is the requested number of board rows hidden above the window.
	Scroll int
	// Reveal is a card the window should scroll to, if it is off screen.
	Reveal string
}

// Frame draws a Board into terminal text.
type Frame struct {
	ColumnWidth int
	Gap         int
}

// NewFrame returns a frame with the given column width, clamped to the
// narrowest width that still fits a card's date and controls.
func NewFrame(columnWidth int) Frame {
	if columnWidth <= 0 {
		columnWidth = DefaultColumnWidth
	}
	if columnWidth < minColumnWidth {
		columnWidth = minColumnWidth
	}
	return Frame{ColumnWidth: columnWidth, Gap: 1}
}

// Width returns the total width of the three columns.
func (f Frame) Width() int {
	return 3*f.columnOuterWidth() + 2*f.Gap
}

func (f Frame) columnOuterWidth() int { return f.ColumnWidth + 2 }
func (f Frame) cardOuterWidth() int   { return f.ColumnWidth - 2 }
func (f Frame) cardTextWidth() int    { return f.ColumnWidth - 6 }

// Draw renders the screen and records where everything landed. When
// vs.Height is set and the columns do not fit, the title and add row stay
// pinned, the footer stays at the bottom and the columns scroll in between.
func (f Frame) Draw(b Board, vs ViewState) (string, Layout) {
	var layout Layout
	title := titleStyle.Render("▦ KANBAN")
	inputRow := addStyle.Render(addLabel) + " " + vs.Input
	layout.Add = Rect{X: 0, Y: 1, W: len(addLabel), H: 1}
	layout.Input = Rect{X: len(addLabel) + 1, Y: 1, W: max(1, f.Width()-len(addLabel)-1), H: 1}

	columns, colZones, cardZones := f.drawColumns(b, vs, boardTop)
	layout.Columns = colZones
	layout.Cards = cardZones

	var trailer []string
	if panel := f.drawLog(vs); panel != "" {
		trailer = append(trailer, panel)
	}
	if vs.Status != "" {
		trailer = append(trailer, footerStyle.Render(vs.Status))
	}
	if vs.Help != "" {
		trailer = append(trailer, helpStyle.Render(vs.Help))
	}

	if vs.Height > 0 {
		trailerRows := 0
		for _, section := range trailer {
			trailerRows += lipgloss.Height(section)
		}
		rows := max(1, vs.Height-boardTop-trailerRows)
		if lipgloss.Height(columns) > rows {
			columns = f.scrollColumns(columns, rows, &layout, vs)
		}
	}

	sections := append([]string{title, inputRow, "", columns}, trailer...)
	return strings.Join(sections, "\n"), layout
}

// scrollColumns cuts the visible window out of the column block and moves
// the layout to match it.
func (f Frame) scrollColumns(columns string, rows int, layout *Layout, vs ViewState) string {
	offset := vs.Scroll
	if vs.Reveal != "" {
		if card, ok := layout.Card(vs.Reveal); ok {
			cardTop := card.Rect.Y - boardTop
			cardBottom := cardTop + card.Rect.H
			if cardTop < offset {
				offset = cardTop
			}
			if cardBottom > offset+rows {
				offset = cardBottom - rows
			}
		}
	}

	vp := viewport.New(f.Width(), rows)
	vp.SetContent(columns)
	vp.SetYOffset(offset)
	layout.window(boardTop, rows, vp.YOffset)
	return vp.View()
}

// Columns renders only the three columns, for non-interactive output.
func (f Frame) Columns(b Board) string {
	out, _, _ := f.drawColumns(b, ViewState{}, 0)
	return out
}

func (f Frame) drawColumns(b Board, vs ViewState, top int) (string, []ColumnZone, []CardZone) {
	maxCards := 1
	for _, col := range b.Columns {
		maxCards = max(maxCards, len(col.Cards))
	}
	innerHeight := columnHeaderRows + maxCards*cardHeight
	outerW := f.columnOuterWidth()

	var (
		blocks    []string
		colZones  []ColumnZone
		cardZones []CardZone
	)
	gap := strings.Repeat(" ", f.Gap)
	for i, col := range b.Columns {
		colX := i * (outerW + f.Gap)
		colZones = append(colZones, ColumnZone{
			Status: col.Status,
			Rect:   Rect{X: colX, Y: top, W: outerW, H: innerHeight + 2},
		})

		heading := fmt.Sprintf("%s (%d)", col.Title, col.Count)
		headStyle := headingStyle
		if vs.BoardFocused && vs.Selected == "" && vs.SelectedCol == col.Status {
			headStyle = headStyle.Reverse(true)
		}
		rows := []string{headStyle.Render(heading), ""}
		if len(col.Cards) == 0 {
			rows = append(rows, emptyStyle.Render("no tasks"))
		}
		for k, card := range col.Cards {
			rows = append(rows, f.drawCard(card, vs))
			cardX := colX + 2
			cardY := top + 1 + columnHeaderRows + k*cardHeight
			cardZones = append(cardZones, CardZone{
				TaskID:   card.ID,
				Status:   col.Status,
				Rect:     Rect{X: cardX, Y: cardY, W: f.cardOuterWidth(), H: cardHeight},
				Controls: cardControls(card, cardX+2, cardY+3),
			})
		}

		border := columnBorder
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(f.ColumnWidth).
			Height(innerHeight)
		if vs.DropActive && vs.DropTarget == col.Status {
			border = dropBorder
			style = style.Border(lipgloss.DoubleBorder())
		}
		style = style.BorderForeground(border)

		if i > 0 {
			blocks = append(blocks, gap)
		}
		blocks = append(blocks, style.Render(strings.Join(rows, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...), colZones, cardZones
}

func (f Frame) drawCard(card Card, vs ViewState) string {
	textWidth := f.cardTextWidth()
	text := strings.Join(strings.Fields(card.Text), " ")
	lines := []string{
		ansi.Truncate(text, textWidth, "…"),
		dateStyle.Render(ansi.Truncate(card.Created, textWidth, "…")),
		controlStyle.Render(controlRow(card)),
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(statusBorder[card.Status]).
		Padding(0, 1).
		Width(f.ColumnWidth - 4)
	if vs.BoardFocused && vs.Selected == card.ID {
		style = style.Border(lipgloss.ThickBorder()).Bold(true)
	}
	if vs.Dragging == card.ID {
		style = style.Faint(true).BorderForeground(draggingBorder)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// controlRow keeps every control in a fixed slot; hidden ones become blanks.
func controlRow(card Card) string {
	left, right := leftLabel, rightLabel
	if !card.CanMoveLeft {
		left = strings.Repeat(" ", len(leftLabel))
	}
	if !card.CanMoveRight {
		right = strings.Repeat(" ", len(rightLabel))
	}
	return strings.Join([]string{left, deleteLabel, right}, " ")
}

func cardControls(card Card, x, y int) []ControlZone {
	slot := func(i int, label string) Rect {
		return Rect{X: x + i*(len(label)+1), Y: y, W: len(label), H: 1}
	}
	controls := make([]ControlZone, 0, 3)
	if card.CanMoveLeft {
		controls = append(controls, ControlZone{Target: TargetMoveLeft, Rect: slot(0, leftLabel)})
	}
	controls = append(controls, ControlZone{Target: TargetDelete, Rect: slot(1, deleteLabel)})
	if card.CanMoveRight {
		controls = append(controls, ControlZone{Target: TargetMoveRight, Rect: slot(2, rightLabel)})
	}
	return controls
}

func (f Frame) drawLog(vs ViewState) string {
	if len(vs.Log) == 0 {
		return ""
	}
	title := vs.LogTitle
	if title == "" {
		title = "log"
	}
	head := logHeadStyle.Render(fmt.Sprintf("LOG · %s", title))
	body := logBodyStyle.Render(strings.Join(vs.Log, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(columnBorder).
		Padding(0, 1).
		Width(f.Width() - 2).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
