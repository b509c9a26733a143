package board

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(seed []Task) *Store {
	n := 0
	clock := time.Date(2024, 3, 9, 14, 5, 6, 789_123_456, time.UTC)
	return NewStore(seed,
		WithClock(func() time.Time { return clock }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("task-%d", n)
		}),
	)
}

func TestCreateAppendsTodoTask(t *testing.T) {
	s := newTestStore(nil)

	task, ok := s.Create("  Buy milk  ")
	require.True(t, ok)
	assert.Equal(t, "Buy milk", task.Text)
	assert.Equal(t, Todo, task.Status)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, time.Date(2024, 3, 9, 14, 5, 6, 789_000_000, time.UTC), task.CreatedAt)

	require.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.Counts().Todo)
}

func TestCreateIgnoresBlankText(t *testing.T) {
	s := newTestStore(nil)
	s.Create("keep")

	for _, text := range []string{"", " ", "\t\n", "   \r\n  "} {
		_, ok := s.Create(text)
		assert.False(t, ok, "blank %q should be ignored", text)
	}
	assert.Equal(t, 1, s.Len())
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	calls := 0
	ids := []string{"dup", "dup", "", "fresh"}
	s := NewStore(nil, WithIDGenerator(func() string {
		id := ids[calls]
		calls++
		return id
	}))

	first, _ := s.Create("one")
	second, _ := s.Create("two")

	assert.Equal(t, "dup", first.ID)
	assert.Equal(t, "fresh", second.ID)
}

func TestMoveRightAdvancesUntilDone(t *testing.T) {
	s := newTestStore(nil)
	task, _ := s.Create("A")

	want := []struct {
		ok     bool
		status Status
	}{
		{true, Doing},
		{true, Done},
		{false, Done},
		{false, Done},
	}
	for i, step := range want {
		ok := s.MoveRight(task.ID)
		got, _ := s.Get(task.ID)
		assert.Equal(t, step.ok, ok, "step %d", i)
		assert.Equal(t, step.status, got.Status, "step %d", i)
	}
}

func TestMoveLeftRegressesUntilTodo(t *testing.T) {
	s := newTestStore([]Task{{ID: "x", Text: "A", Status: Done}})

	want := []struct {
		ok     bool
		status Status
	}{
		{true, Doing},
		{true, Todo},
		{false, Todo},
	}
	for i, step := range want {
		ok := s.MoveLeft("x")
		got, _ := s.Get("x")
		assert.Equal(t, step.ok, ok, "step %d", i)
		assert.Equal(t, step.status, got.Status, "step %d", i)
	}
}

func TestMissingIDsAreNoOps(t *testing.T) {
	s := newTestStore(nil)
	s.Create("A")
	before := s.List()

	assert.False(t, s.Delete("nope"))
	assert.False(t, s.MoveLeft("nope"))
	assert.False(t, s.MoveRight("nope"))
	assert.False(t, s.SetStatus("nope", Done))
	assert.False(t, s.SetStatus("", Done))

	assert.Equal(t, before, s.List())
}

func TestSetStatusSkipsColumnsAndIgnoresSameStatus(t *testing.T) {
	s := newTestStore(nil)
	task, _ := s.Create("drag me")

	assert.False(t, s.SetStatus(task.ID, Todo))
	assert.False(t, s.SetStatus(task.ID, Status(42)))
	require.True(t, s.SetStatus(task.ID, Done))

	got, _ := s.Get(task.ID)
	assert.Equal(t, Done, got.Status)
	assert.Equal(t, Counts{Todo: 0, Doing: 0, Done: 1}, s.Counts())
}

func TestDeleteRemovesOnlyTarget(t *testing.T) {
	s := newTestStore(nil)
	first, _ := s.Create("first")
	second, _ := s.Create("second")
	third, _ := s.Create("third")
	s.MoveRight(second.ID)
	s.SetStatus(third.ID, Done)

	require.True(t, s.Delete(first.ID))
	assert.False(t, s.Delete(first.ID))

	tasks := s.List()
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[0].ID)
	assert.Equal(t, Doing, tasks[0].Status)
	assert.Equal(t, third.ID, tasks[1].ID)
	assert.Equal(t, Done, tasks[1].Status)
}

func TestListReturnsCopy(t *testing.T) {
	s := newTestStore(nil)
	task, _ := s.Create("A")

	snapshot := s.List()
	snapshot[0].Status = Done
	snapshot[0].Text = "mutated"

	got, _ := s.Get(task.ID)
	assert.Equal(t, Todo, got.Status)
	assert.Equal(t, "A", got.Text)
}

func TestNewStoreDropsInvalidSeedEntries(t *testing.T) {
	s := NewStore([]Task{
		{ID: "a", Text: "one", Status: Todo},
		{ID: "", Text: "no id", Status: Todo},
		{ID: "a", Text: "duplicate", Status: Done},
		{ID: "b", Text: "bad status", Status: Status(7)},
		{ID: "c", Text: "three", Status: Done},
	})

	tasks := s.List()
	require.Len(t, tasks, 2)
	assert.Equal(t, "one", tasks[0].Text)
	assert.Equal(t, "three", tasks[1].Text)
}

func TestCountsMatchColumnsAfterMutations(t *testing.T) {
	s := newTestStore(nil)
	var ids []string
	for i := 0; i < 6; i++ {
		task, _ := s.Create(fmt.Sprintf("t%d", i))
		ids = append(ids, task.ID)
	}
	s.MoveRight(ids[0])
	s.MoveRight(ids[1])
	s.MoveRight(ids[1])
	s.SetStatus(ids[2], Done)
	s.MoveLeft(ids[2])
	s.Delete(ids[3])

	var want Counts
	for _, task := range s.List() {
		switch task.Status {
		case Todo:
			want.Todo++
		case Doing:
			want.Doing++
		case Done:
			want.Done++
		}
	}
	assert.Equal(t, want, s.Counts())
	assert.Equal(t, Counts{Todo: 2, Doing: 2, Done: 1}, s.Counts())
	for _, status := range Statuses() {
		assert.Equal(t, want.Of(status), s.Counts().Of(status))
	}
}

func TestCreateSurvivesStuckIDGenerator(t *testing.T) {
	for name, gen := range map[string]func() string{
		"empty":    func() string { return "" },
		"constant": func() string { return "same" },
	} {
		t.Run(name, func(t *testing.T) {
			s := NewStore(nil, WithIDGenerator(gen))
			first, ok := s.Create("one")
			require.True(t, ok)
			second, ok := s.Create("two")
			require.True(t, ok)
			assert.NotEmpty(t, first.ID)
			assert.NotEmpty(t, second.ID)
			assert.NotEqual(t, first.ID, second.ID)
		})
	}
}

func TestCreateReplacesInvalidUTF8(t *testing.T) {
	s := newTestStore(nil)
	task, ok := s.Create("caf\xe9 list")
	require.True(t, ok)
	assert.Equal(t, "caf� list", task.Text)
	got, _ := s.Get(task.ID)
	assert.Equal(t, task.Text, got.Text)
}
