// Package render projects the task collection onto the board: a view model
// rebuilt from scratch on every change, and the terminal frame drawn from it.
package render

import (
	"time"

	"github.com/kingrea/kanban/internal/board"
)

// Card is one task as shown inside a column.
type Card struct {
	ID           string
	Text         string
	Created      string
	Status       board.Status
	CanMoveLeft  bool
	CanMoveRight bool
}

// Column groups the cards sharing one status.
type Column struct {
	Status board.Status
	Title  string
	Count  int
	Cards  []Card
}

// Board is the full view model: three columns in board order.
type Board struct {
	Columns []Column
}

// RenderAll rebuilds the view model from scratch. Cards keep collection
// order within their column and nothing is carried over from earlier renders.
func RenderAll(tasks []board.Task) Board {
	statuses := board.Statuses()
	b := Board{Columns: make([]Column, len(statuses))}
	byStatus := make(map[board.Status]int, len(statuses))
	for i, status := range statuses {
		b.Columns[i] = Column{Status: status, Title: status.Title(), Cards: []Card{}}
		byStatus[status] = i
	}
	for _, task := range tasks {
		idx, ok := byStatus[task.Status]
		if !ok {
			continue
		}
		_, canLeft := task.Status.Left()
		_, canRight := task.Status.Right()
		b.Columns[idx].Cards = append(b.Columns[idx].Cards, Card{
			ID:           task.ID,
			Text:         task.Text,
			Created:      FormatCreated(task.CreatedAt),
			Status:       task.Status,
			CanMoveLeft:  canLeft,
			CanMoveRight: canRight,
		})
	}
	for i := range b.Columns {
		b.Columns[i].Count = len(b.Columns[i].Cards)
	}
	return b
}

// Column returns the column for status.
func (b Board) Column(status board.Status) (Column, bool) {
	for _, col := range b.Columns {
		if col.Status == status {
			return col, true
		}
	}
	return Column{}, false
}

// Count returns the number of cards shown for status.
func (b Board) Count(status board.Status) int {
	col, _ := b.Column(status)
	return col.Count
}

// Find locates a card by task id.
func (b Board) Find(id string) (board.Status, int, bool) {
	for _, col := range b.Columns {
		for i, card := range col.Cards {
			if card.ID == id {
				return col.Status, i, true
			}
		}
	}
	return board.Todo, -1, false
}

// FormatCreated renders a creation time like "Mar 9, 02:05 PM" in local time.
func FormatCreated(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Local().Format("Jan 2, 03:04 PM")
}
