// Package persist reads and writes the whole task collection as one JSON
// blob under a fixed storage key.
//
// Layout of the blob:
//
//	[{"id": "...", "text": "...", "status": "todo|doing|done", "createdAt": "2024-03-09T14:05:06.789Z"}]
//
// There is no schema version. Anything that cannot be read loads as an empty
// board.
package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kingrea/kanban/internal/board"
	"github.com/kingrea/kanban/internal/logbook"
	"github.com/kingrea/kanban/internal/storage"
)

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "kanban-tasks"

// timeLayout matches the ISO-8601 form browsers produce (UTC, milliseconds).
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type record struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// Adapter is the persistence adapter between the task store and a KV backend.
type Adapter struct {
	kv  storage.KV
	key string
	log *logbook.Logbook
}

// Option customizes an Adapter.
type Option func(*Adapter)

// WithLogbook records absorbed load failures and save errors.
func WithLogbook(lb *logbook.Logbook) Option {
	return func(a *Adapter) {
		a.log = lb
	}
}

// New builds an adapter writing under key (DefaultKey when empty).
func New(kv storage.KV, key string, opts ...Option) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	a := &Adapter{kv: kv, key: key}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the storage key in use.
func (a *Adapter) Key() string {
	return a.key
}

// Load returns the stored collection. A missing, unreadable, or corrupt blob
// yields an empty collection; the failure is logged and otherwise absorbed.
func (a *Adapter) Load() []board.Task {
	data, ok, err := a.kv.Get(a.key)
	if err != nil {
		a.log.Append(logbook.LevelWarn, logbook.Fields{"key": a.key}, fmt.Sprintf("load failed, starting empty: %v", err))
		return []board.Task{}
	}
	if !ok {
		return []board.Task{}
	}
	tasks, dropped, err := Decode(data)
	if err != nil {
		a.log.Append(logbook.LevelWarn, logbook.Fields{"key": a.key}, fmt.Sprintf("stored tasks unreadable, starting empty: %v", err))
		return []board.Task{}
	}
	if dropped > 0 {
		a.log.Append(logbook.LevelWarn, logbook.Fields{"key": a.key}, fmt.Sprintf("skipped %d unreadable task record(s)", dropped))
	}
	return tasks
}

// Save overwrites the stored blob with the whole collection.
func (a *Adapter) Save(tasks []board.Task) error {
	data, err := Encode(tasks)
	if err != nil {
		return err
	}
	if err := a.kv.Set(a.key, data); err != nil {
		return fmt.Errorf("persist: save %s: %w", a.key, err)
	}
	return nil
}

// Encode serialises tasks in the persisted layout.
func Encode(tasks []board.Task) ([]byte, error) {
	records := make([]record, 0, len(tasks))
	for _, task := range tasks {
		records = append(records, record{
			ID:        task.ID,
			Text:      task.Text,
			Status:    task.Status.String(),
			CreatedAt: task.CreatedAt.UTC().Format(timeLayout),
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("persist: encode tasks: %w", err)
	}
	return data, nil
}

// Decode parses the persisted layout. Records without an id or with an
// unknown status are skipped and counted; an unparsable creation time
// becomes the zero time. A JSON null decodes as an empty collection.
func Decode(data []byte) ([]board.Task, int, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, 0, fmt.Errorf("persist: decode tasks: %w", err)
	}
	tasks := make([]board.Task, 0, len(records))
	dropped := 0
	for _, rec := range records {
		status, err := board.ParseStatus(rec.Status)
		if rec.ID == "" || err != nil {
			dropped++
			continue
		}
		created, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
		if err != nil {
			created = time.Time{}
		}
		tasks = append(tasks, board.Task{
			ID:        rec.ID,
			Text:      rec.Text,
			Status:    status,
			CreatedAt: created.UTC(),
		})
	}
	return tasks, dropped, nil
}
