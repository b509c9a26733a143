// internal/tui/app.go
//
// This is the terminal board. It uses bubbletea, which follows The Elm
// Architecture:
//
// 1. Model: the App below (input field, selection, drag state)
// 2. Update: turns key and mouse messages into session calls
// 3. View: draws the session's current view model
//
// The flow is: User Input -> Message -> Update -> Session (save, render) -> View

package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/kanban/internal/board"
	"github.com/kingrea/kanban/internal/logbook"
	"github.com/kingrea/kanban/internal/render"
	"github.com/kingrea/kanban/internal/session"
)

const (
	logPanelLines = 5
	inputCharLim  = 280
	noChange      = "No change"
	wheelStep     = 3
)

// focusArea is where key presses go.
type focusArea int

const (
	focusInput focusArea = iota // Typing a new task
	focusBoard                  // Navigating cards
)

// dragState tracks one drag gesture from start to drop or cancel.
type dragState struct {
	active  bool
	taskID  string
	byMouse bool
	over    bool         // a column is currently the drop target
	target  board.Status // that column
}

// App is the board's bubbletea model.
type App struct {
	session *session.Session
	logbook *logbook.Logbook
	frame   render.Frame
	input   textinput.Model
	focus   focusArea

	selCol board.Status
	selRow int
	drag   dragState
	layout render.Layout

	// board rows scrolled off the top when the terminal is too short
	scroll int
	reveal bool

	statusMsg string
	showLog   bool

	width  int
	height int
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithLogbook shows the log tail under the board when the panel is enabled.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// WithLogPanel toggles the log panel.
func WithLogPanel(show bool) AppOption {
	return func(a *App) {
		a.showLog = show
	}
}

// WithColumnWidth sets the width of each column.
func WithColumnWidth(width int) AppOption {
	return func(a *App) {
		a.frame = render.NewFrame(width)
	}
}

// NewApp creates the board model around an open session.
func NewApp(s *session.Session, opts ...AppOption) *App {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Add a new task…"
	ti.CharLimit = inputCharLim
	ti.Width = 40
	ti.Focus()

	app := &App{
		session: s,
		frame:   render.NewFrame(render.DefaultColumnWidth),
		input:   ti,
		focus:   focusInput,
		selCol:  board.Todo,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app
}

// Run starts the program and blocks until the user quits.
func Run(app *App, mouse bool) error {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if mouse {
		// cell motion reports movement only while a button is held, which is
		// exactly a drag
		opts = append(opts, tea.WithMouseCellMotion())
	}
	_, err := tea.NewProgram(app, opts...).Run()
	return err
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = max(10, min(a.frame.Width()-20, msg.Width-20))
		return a, nil

	case tea.MouseMsg:
		return a, a.handleMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.focus == focusInput {
			return a.handleInputKey(msg)
		}
		return a.handleBoardKey(msg.String())
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.submit()
		return a, nil
	case "tab", "esc":
		a.focusBoard()
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleBoardKey(key string) (tea.Model, tea.Cmd) {
	if a.drag.active && !a.drag.byMouse {
		a.handleKeyboardDrag(key)
		return a, nil
	}
	switch key {
	case "q":
		return a, tea.Quit
	case "tab", "a", "i":
		return a, a.focusInput()
	case "esc":
		if a.drag.active {
			a.cancelDrag()
		}
	case "left", "h":
		if prev, ok := a.selCol.Left(); ok {
			a.selCol = prev
			a.clampSelection()
			a.reveal = true
		}
	case "right", "l":
		if next, ok := a.selCol.Right(); ok {
			a.selCol = next
			a.clampSelection()
			a.reveal = true
		}
	case "up", "k":
		if a.selRow > 0 {
			a.selRow--
		}
		a.reveal = true
	case "down", "j":
		a.selRow++
		a.clampSelection()
		a.reveal = true
	case "pgup":
		a.scrollBy(-a.pageRows())
	case "pgdown":
		a.scrollBy(a.pageRows())
	case "<", "shift+left", "H":
		a.moveLeft(a.selectedID())
	case ">", "shift+right", "L":
		a.moveRight(a.selectedID())
	case "x", "delete", "backspace":
		a.deleteTask(a.selectedID())
	case " ", "space":
		if id := a.selectedID(); id != "" {
			a.beginDrag(id, false)
		}
	}
	return a, nil
}

// handleKeyboardDrag lets keyboard users pick a drop column for the grabbed card.
func (a *App) handleKeyboardDrag(key string) {
	switch key {
	case "left", "h":
		if prev, ok := a.drag.target.Left(); ok {
			a.drag.target = prev
		}
	case "right", "l":
		if next, ok := a.drag.target.Right(); ok {
			a.drag.target = next
		}
	case " ", "space", "enter":
		id, target := a.drag.taskID, a.drag.target
		a.endDrag()
		if !a.drop(id, target) {
			a.statusMsg = noChange
		}
	case "esc", "q":
		a.cancelDrag()
	}
}

// handleMouse is the single entry point for every mouse event; the last
// drawn layout decides what was under the pointer.
func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	hit := a.layout.HitTest(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.scrollBy(-wheelStep)
			return nil
		case tea.MouseButtonWheelDown:
			a.scrollBy(wheelStep)
			return nil
		case tea.MouseButtonLeft:
			return a.handlePress(hit)
		}
	case tea.MouseActionMotion:
		a.dragOver(hit)
	case tea.MouseActionRelease:
		a.dragRelease(hit)
	}
	return nil
}

func (a *App) handlePress(hit render.Hit) tea.Cmd {
	switch hit.Target {
	case render.TargetAdd:
		a.submit()
	case render.TargetInput:
		return a.focusInput()
	case render.TargetMoveLeft:
		a.focusBoard()
		a.moveLeft(hit.TaskID)
	case render.TargetMoveRight:
		a.focusBoard()
		a.moveRight(hit.TaskID)
	case render.TargetDelete:
		a.focusBoard()
		a.deleteTask(hit.TaskID)
	case render.TargetCard:
		a.focusBoard()
		a.selectTask(hit.TaskID)
		// the card is already under the pointer; keep the window still
		a.reveal = false
		a.beginDrag(hit.TaskID, true)
	case render.TargetColumn:
		a.focusBoard()
		a.selCol = hit.Status
		a.selRow = 0
		a.clampSelection()
	}
	return nil
}

func (a *App) dragOver(hit render.Hit) {
	if !a.drag.active || !a.drag.byMouse {
		return
	}
	if hit.InColumn() {
		a.drag.over = true
		a.drag.target = hit.Status
		return
	}
	a.drag.over = false
}

func (a *App) dragRelease(hit render.Hit) {
	if !a.drag.active || !a.drag.byMouse {
		return
	}
	id := a.drag.taskID
	a.endDrag()
	if hit.InColumn() {
		a.drop(id, hit.Status)
	}
}

func (a *App) beginDrag(id string, byMouse bool) {
	task, ok := a.session.Get(id)
	if !ok {
		return
	}
	a.drag = dragState{active: true, taskID: id, byMouse: byMouse}
	if !byMouse {
		a.drag.over = true
		a.drag.target = task.Status
		a.statusMsg = fmt.Sprintf("Moving %q: ←/→ pick a column, space drops, esc cancels", task.Text)
	}
}

// endDrag clears the dimmed card and any column highlight.
func (a *App) endDrag() {
	a.drag = dragState{}
}

func (a *App) cancelDrag() {
	a.endDrag()
	a.statusMsg = "Move cancelled"
}

func (a *App) submit() {
	task, ok := a.session.Add(a.input.Value())
	a.input.SetValue("")
	if !ok {
		return
	}
	a.selectTask(task.ID)
	a.statusMsg = fmt.Sprintf("Added %q", task.Text)
}

func (a *App) moveLeft(id string) {
	if a.session.MoveLeft(id) {
		a.afterMove(id)
		return
	}
	a.statusMsg = noChange
}

func (a *App) moveRight(id string) {
	if a.session.MoveRight(id) {
		a.afterMove(id)
		return
	}
	a.statusMsg = noChange
}

// drop reports whether the task changed column.
func (a *App) drop(id string, status board.Status) bool {
	if !a.session.SetStatus(id, status) {
		return false
	}
	a.afterMove(id)
	return true
}

func (a *App) afterMove(id string) {
	a.selectTask(id)
	if task, ok := a.session.Get(id); ok {
		a.statusMsg = fmt.Sprintf("Moved %q to %s", task.Text, task.Status.Title())
	}
}

func (a *App) deleteTask(id string) {
	task, ok := a.session.Get(id)
	if !ok || !a.session.Delete(id) {
		a.statusMsg = noChange
		return
	}
	a.clampSelection()
	a.statusMsg = fmt.Sprintf("Deleted %q", task.Text)
}

func (a *App) focusInput() tea.Cmd {
	a.focus = focusInput
	return a.input.Focus()
}

func (a *App) focusBoard() {
	a.focus = focusBoard
	a.input.Blur()
	a.clampSelection()
}

// selectTask also scrolls the board so the card is on screen.
func (a *App) selectTask(id string) {
	if status, idx, ok := a.session.Board().Find(id); ok {
		a.selCol = status
		a.selRow = idx
		a.reveal = true
	}
}

func (a *App) selectedID() string {
	col, ok := a.session.Board().Column(a.selCol)
	if !ok || len(col.Cards) == 0 {
		return ""
	}
	row := min(max(a.selRow, 0), len(col.Cards)-1)
	return col.Cards[row].ID
}

func (a *App) clampSelection() {
	col, _ := a.session.Board().Column(a.selCol)
	a.selRow = min(max(a.selRow, 0), max(len(col.Cards)-1, 0))
}

// scrollBy moves the board window; View clamps it to the board.
func (a *App) scrollBy(rows int) {
	a.scroll = max(0, a.scroll+rows)
	a.reveal = false
}

func (a *App) pageRows() int {
	return max(1, a.layout.BoardRows-1)
}

// View renders the current state to a string.
func (a *App) View() string {
	vs := render.ViewState{
		Input:        a.input.View(),
		BoardFocused: a.focus == focusBoard,
		Selected:     a.selectedID(),
		SelectedCol:  a.selCol,
		Status:       a.statusMsg,
		Help:         a.helpLine(),
		Height:       a.height,
		Scroll:       a.scroll,
	}
	if a.reveal {
		vs.Reveal = vs.Selected
	}
	if a.drag.active {
		vs.Dragging = a.drag.taskID
		vs.DropActive = a.drag.over
		vs.DropTarget = a.drag.target
	}
	if a.showLog && a.logbook != nil {
		vs.Log, _ = a.logbook.Tail(logPanelLines)
		vs.LogTitle = filepath.Base(a.logbook.Path())
	}
	out, layout := a.frame.Draw(a.session.Board(), vs)
	a.layout = layout
	a.scroll = layout.Scroll
	a.reveal = false
	return out
}

func (a *App) helpLine() string {
	switch {
	case a.drag.active && !a.drag.byMouse:
		return "←/→ choose column    space/enter drop    esc cancel"
	case a.focus == focusInput:
		return "enter add    tab board    ctrl+c quit"
	default:
		return "←↑↓→ select    </> move    x delete    space grab    pgup/pgdn scroll    a add    q quit"
	}
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
