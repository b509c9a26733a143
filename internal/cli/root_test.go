package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listed struct {
	Status string `json:"status"`
	Data   []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		Status    string `json:"status"`
		CreatedAt string `json:"createdAt"`
	} `json:"data"`
}

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := execute(t, dir, args...)
	require.NoError(t, err, "kanban %v", args)
	return out
}

func listJSON(t *testing.T, dir string, extra ...string) listed {
	t.Helper()
	out := mustExecute(t, dir, append([]string{"list", "--format", "json"}, extra...)...)
	var got listed
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	return got
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "kanban", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"add", "list", "move", "delete"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	for flag, def := range map[string]string{"dir": "", "storage": "", "no-mouse": "false", "format": "text"} {
		f := cmd.PersistentFlags().Lookup(flag)
		require.NotNil(t, f, flag)
		assert.Equal(t, def, f.DefValue, flag)
	}
}

func TestAddPrintsIDAndPersists(t *testing.T) {
	dir := t.TempDir()
	id := strings.TrimSpace(mustExecute(t, dir, "add", "Buy", "milk"))
	require.NotEmpty(t, id)

	got := listJSON(t, dir)
	require.Len(t, got.Data, 1)
	assert.Equal(t, id, got.Data[0].ID)
	assert.Equal(t, "Buy milk", got.Data[0].Text)
	assert.Equal(t, "todo", got.Data[0].Status)

	assert.FileExists(t, filepath.Join(dir, "state", "kanban-tasks.json"))
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
}

func TestAddBlankPrintsNothing(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, mustExecute(t, dir, "add", "   "))
	assert.Empty(t, listJSON(t, dir).Data)
}

func TestListTextShowsColumns(t *testing.T) {
	dir := t.TempDir()
	mustExecute(t, dir, "add", "walk dog")
	out := mustExecute(t, dir, "list")
	for _, want := range []string{"To Do (1)", "Doing (0)", "Done (0)", "walk dog"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[")
}

func TestMoveFlags(t *testing.T) {
	dir := t.TempDir()
	id := strings.TrimSpace(mustExecute(t, dir, "add", "A"))

	mustExecute(t, dir, "move", id, "--right")
	assert.Equal(t, "doing", listJSON(t, dir).Data[0].Status)

	mustExecute(t, dir, "move", id, "--to", "Done")
	assert.Equal(t, "done", listJSON(t, dir).Data[0].Status)

	assert.Equal(t, "no change\n", mustExecute(t, dir, "move", id, "--right"))
	assert.Equal(t, "no change\n", mustExecute(t, dir, "move", id, "--to", "done"))

	mustExecute(t, dir, "move", id, "--left")
	assert.Equal(t, "doing", listJSON(t, dir).Data[0].Status)
}

func TestMoveRejectsBadFlags(t *testing.T) {
	dir := t.TempDir()
	id := strings.TrimSpace(mustExecute(t, dir, "add", "A"))

	_, err := execute(t, dir, "move", id, "--to", "later")
	assert.ErrorContains(t, err, "unknown status")
	_, err = execute(t, dir, "move", id, "--left", "--right")
	assert.Error(t, err)
	_, err = execute(t, dir, "move", id)
	assert.Error(t, err)
}

func TestMoveUnknownIDIsNoChange(t *testing.T) {
	dir := t.TempDir()
	out := mustExecute(t, dir, "move", "missing", "--right", "--format", "json")
	assert.JSONEq(t, `{"status":"unchanged"}`, out)
}

func TestDeleteFirstKeepsSecond(t *testing.T) {
	dir := t.TempDir()
	first := strings.TrimSpace(mustExecute(t, dir, "add", "first"))
	second := strings.TrimSpace(mustExecute(t, dir, "add", "second"))
	mustExecute(t, dir, "move", second, "--right")

	assert.Equal(t, "deleted "+first+"\n", mustExecute(t, dir, "delete", first))
	got := listJSON(t, dir)
	require.Len(t, got.Data, 1)
	assert.Equal(t, second, got.Data[0].ID)
	assert.Equal(t, "doing", got.Data[0].Status)

	assert.Equal(t, "no change\n", mustExecute(t, dir, "delete", first))
}

func TestSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	id := strings.TrimSpace(mustExecute(t, dir, "--storage", "sqlite", "add", "in sqlite"))

	got := listJSON(t, dir, "--storage", "sqlite")
	require.Len(t, got.Data, 1)
	assert.Equal(t, id, got.Data[0].ID)
	assert.FileExists(t, filepath.Join(dir, "state", "kanban.db"))
	assert.Empty(t, listJSON(t, dir).Data, "file backend is a separate store")
}

func TestMemoryBackendForgets(t *testing.T) {
	dir := t.TempDir()
	mustExecute(t, dir, "--storage", "memory", "add", "gone")
	assert.Empty(t, listJSON(t, dir, "--storage", "memory").Data)
}

func TestInvalidOptions(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, dir, "list", "--format", "yaml")
	assert.ErrorContains(t, err, "invalid format")
	_, err = execute(t, dir, "list", "--storage", "redis")
	assert.ErrorContains(t, err, "storage backend")
}

func TestDataDirFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KANBAN_DIR", dir)
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"add", "from env"})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(filepath.Join(dir, "state", "kanban-tasks.json"))
	assert.NoError(t, err)
}

func TestFailedSaveFailsAdd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "state", "kanban-tasks.json"), 0o755))

	out, err := execute(t, dir, "add", "lost")
	assert.ErrorContains(t, err, "save tasks")
	assert.Empty(t, out, "no id may be printed for an unsaved task")
}

func TestFailedSaveFailsMoveAndDelete(t *testing.T) {
	dir := t.TempDir()
	id := strings.TrimSpace(mustExecute(t, dir, "--storage", "sqlite", "add", "kept"))

	db, err := sql.Open("sqlite3", filepath.Join(dir, "state", "kanban.db"))
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TRIGGER kv_frozen BEFORE UPDATE ON kv BEGIN SELECT RAISE(ABORT, 'frozen'); END`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = execute(t, dir, "--storage", "sqlite", "move", id, "--right")
	assert.ErrorContains(t, err, "save tasks")
	_, err = execute(t, dir, "--storage", "sqlite", "delete", id)
	assert.ErrorContains(t, err, "save tasks")

	got := listJSON(t, dir, "--storage", "sqlite")
	require.Len(t, got.Data, 1)
	assert.Equal(t, "todo", got.Data[0].Status)
}
