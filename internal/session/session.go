// Package session is the board's controller core: it applies user intents
// to the task store and, whenever something actually changed, saves the
// collection and rebuilds the view, in that order.
package session

import (
	"fmt"

	"github.com/kingrea/kanban/internal/board"
	"github.com/kingrea/kanban/internal/logbook"
	"github.com/kingrea/kanban/internal/render"
)

// Persister is the persistence adapter the session writes through.
type Persister interface {
	Load() []board.Task
	Save(tasks []board.Task) error
}

// Session owns the store and the last rendered view model.
type Session struct {
	store     *board.Store
	persister Persister
	log       *logbook.Logbook
	view      render.Board
	saveErr   error
	storeOpts []board.StoreOption
}

// Option customizes a Session.
type Option func(*Session)

// WithLogbook records every applied change and any save failure.
func WithLogbook(lb *logbook.Logbook) Option {
	return func(s *Session) {
		s.log = lb
	}
}

// WithStoreOptions passes options (clock, id generator) to the task store.
func WithStoreOptions(opts ...board.StoreOption) Option {
	return func(s *Session) {
		s.storeOpts = append(s.storeOpts, opts...)
	}
}

// Open loads the persisted collection and renders the initial view.
func Open(p Persister, opts ...Option) *Session {
	s := &Session{persister: p}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.store = board.NewStore(p.Load(), s.storeOpts...)
	s.view = render.RenderAll(s.store.List())
	s.log.Info("Board opened · %d task(s)", s.store.Len())
	return s
}

// Add creates a task from text. Blank text changes nothing.
func (s *Session) Add(text string) (board.Task, bool) {
	task, ok := s.store.Create(text)
	if ok {
		s.commit("created", task.ID, task.Status)
	}
	return task, ok
}

// Delete removes a task.
func (s *Session) Delete(id string) bool {
	task, _ := s.store.Get(id)
	if !s.store.Delete(id) {
		return false
	}
	s.commit("deleted", id, task.Status)
	return true
}

// MoveLeft steps a task one column left.
func (s *Session) MoveLeft(id string) bool {
	if !s.store.MoveLeft(id) {
		return false
	}
	s.commitMove(id)
	return true
}

// MoveRight steps a task one column right.
func (s *Session) MoveRight(id string) bool {
	if !s.store.MoveRight(id) {
		return false
	}
	s.commitMove(id)
	return true
}

// SetStatus drops a task straight into a column.
func (s *Session) SetStatus(id string, status board.Status) bool {
	if !s.store.SetStatus(id, status) {
		return false
	}
	s.commitMove(id)
	return true
}

// Board returns the last rendered view model.
func (s *Session) Board() render.Board {
	return s.view
}

// Tasks returns a snapshot of the collection.
func (s *Session) Tasks() []board.Task {
	return s.store.List()
}

// Get returns one task.
func (s *Session) Get(id string) (board.Task, bool) {
	return s.store.Get(id)
}

// Counts tallies tasks per column.
func (s *Session) Counts() board.Counts {
	return s.store.Counts()
}

// LastSaveError returns the error from the most recent save, if any.
func (s *Session) LastSaveError() error {
	return s.saveErr
}

func (s *Session) commitMove(id string) {
	task, _ := s.store.Get(id)
	s.commit("moved", id, task.Status)
}

// commit persists the whole collection, then rebuilds the view. A failed
// save is logged and remembered; the board keeps working from memory.
func (s *Session) commit(action, id string, status board.Status) {
	tasks := s.store.List()
	s.saveErr = s.persister.Save(tasks)
	if s.saveErr != nil {
		s.log.Append(logbook.LevelError, logbook.Fields{"task": id}, fmt.Sprintf("save failed: %v", s.saveErr))
	}
	s.view = render.RenderAll(tasks)
	s.log.Append(logbook.LevelInfo, logbook.Fields{"task": id, "status": status.String()}, action)
}
