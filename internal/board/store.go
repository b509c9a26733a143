package board

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a single card on the board. Only Status changes after creation.
type Task struct {
	ID        string
	Text      string
	Status    Status
	CreatedAt time.Time
}

// Counts holds the number of tasks per column.
type Counts struct {
	Todo  int
	Doing int
	Done  int
}

// Of returns the count for one column.
func (c Counts) Of(s Status) int {
	switch s {
	case Todo:
		return c.Todo
	case Doing:
		return c.Doing
	case Done:
		return c.Done
	default:
		return 0
	}
}

// Store is the in-memory, ordered task collection. It is the only owner of
// the tasks; List hands out copies.
//
// Lookups that miss and moves that would not change anything are reported
// through the bool results and never as errors.
type Store struct {
	tasks []Task
	now   func() time.Time
	newID func() string
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithClock overrides the clock used for creation timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides how task ids are minted.
func WithIDGenerator(gen func() string) StoreOption {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewStore builds a store seeded with previously persisted tasks. Seed
// entries with an empty or repeated id, or an invalid status, are dropped.
func NewStore(seed []Task, opts ...StoreOption) *Store {
	s := &Store{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	seen := make(map[string]struct{}, len(seed))
	s.tasks = make([]Task, 0, len(seed))
	for _, task := range seed {
		if task.ID == "" || !task.Status.Valid() {
			continue
		}
		if _, dup := seen[task.ID]; dup {
			continue
		}
		seen[task.ID] = struct{}{}
		s.tasks = append(s.tasks, task)
	}
	return s
}

// Create appends a Todo task with the trimmed text. Blank text is ignored.
func (s *Store) Create(text string) (Task, bool) {
	// stored as JSON, which cannot carry invalid UTF-8
	text = strings.TrimSpace(strings.ToValidUTF8(text, "\uFFFD"))
	if text == "" {
		return Task{}, false
	}
	task := Task{
		ID:     s.uniqueID(),
		Text:   text,
		Status: Todo,
		// persisted timestamps carry millisecond precision
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	s.tasks = append(s.tasks, task)
	return task, true
}

// Delete removes the task with the given id.
func (s *Store) Delete(id string) bool {
	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	return true
}

// MoveLeft steps the task one column towards Todo.
func (s *Store) MoveLeft(id string) bool {
	return s.step(id, Status.Left)
}

// MoveRight steps the task one column towards Done.
func (s *Store) MoveRight(id string) bool {
	return s.step(id, Status.Right)
}

// SetStatus places the task directly in the given column. It reports false
// when the task is missing, the status is invalid, or nothing would change.
func (s *Store) SetStatus(id string, status Status) bool {
	if !status.Valid() {
		return false
	}
	idx := s.indexOf(id)
	if idx < 0 || s.tasks[idx].Status == status {
		return false
	}
	s.tasks[idx].Status = status
	return true
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Task{}, false
	}
	return s.tasks[idx], true
}

// List returns a snapshot of all tasks in insertion order.
func (s *Store) List() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks on the board.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Counts tallies tasks per column.
func (s *Store) Counts() Counts {
	return CountTasks(s.tasks)
}

// CountTasks tallies an arbitrary task slice per column.
func CountTasks(tasks []Task) Counts {
	var c Counts
	for _, task := range tasks {
		switch task.Status {
		case Todo:
			c.Todo++
		case Doing:
			c.Doing++
		case Done:
			c.Done++
		}
	}
	return c
}

func (s *Store) step(id string, next func(Status) (Status, bool)) bool {
	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	target, ok := next(s.tasks[idx].Status)
	if !ok {
		return false
	}
	s.tasks[idx].Status = target
	return true
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// maxIDAttempts bounds how often a custom generator may repeat itself before
// Create falls back to random ids.
const maxIDAttempts = 8

func (s *Store) uniqueID() string {
	for i := 0; i < maxIDAttempts; i++ {
		if id := s.newID(); id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
	for {
		if id := uuid.NewString(); s.indexOf(id) < 0 {
			return id
		}
	}
}
