package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/remindbot/internal/bot"
	"github.com/colonyops/remindbot/internal/core/config"
	"github.com/colonyops/remindbot/internal/core/reminder"
	"github.com/colonyops/remindbot/internal/data/db"
)

func newTestApp(t *testing.T) *bot.App {
	t.Helper()

	dir := t.TempDir()
	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	return bot.NewApp(&cfg, database)
}

// runTaskCmd runs "test task <args>" and returns stdout.
func runTaskCmd(t *testing.T, app *bot.App, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := &cli.Command{Name: "test", Writer: &out, ErrWriter: &errOut}
	root = NewTaskCmd(&Flags{}, app).Register(root)

	err := root.Run(context.Background(), append([]string{"test", "task"}, args...))
	return out.String(), err
}

func TestTaskCmd_AddAndList(t *testing.T) {
	app := newTestApp(t)

	out, err := runTaskCmd(t, app, "add", "--owner", "42", "--description", "Buy milk", "--time", "07:30")
	require.NoError(t, err)
	assert.Equal(t, "Task 1 added for 42 at 07:30\n", out)

	_, err = runTaskCmd(t, app, "add", "--owner", "7", "-d", "Stretch", "-t", "16:00")
	require.NoError(t, err)

	out, err = runTaskCmd(t, app, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[1], "Buy milk")
	assert.Contains(t, lines[2], "Stretch")

	out, err = runTaskCmd(t, app, "list", "--owner", "7", "--json")
	require.NoError(t, err)

	var task reminder.Task
	require.NoError(t, json.Unmarshal([]byte(out), &task))
	assert.Equal(t, reminder.Task{ID: 2, Owner: "7", Description: "Stretch", Time: "16:00"}, task)
}

func TestTaskCmd_AddRejectsBadTime(t *testing.T) {
	app := newTestApp(t)

	_, err := runTaskCmd(t, app, "add", "--owner", "42", "-d", "Buy milk", "-t", "7:30")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "time", fieldErrs[0].Field)
	assert.ErrorIs(t, fieldErrs[0].Err, reminder.ErrInvalidTime)

	tasks, err := app.Tasks.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskCmd_AddRequiresOwner(t *testing.T) {
	app := newTestApp(t)

	_, err := runTaskCmd(t, app, "add", "-d", "Buy milk", "-t", "07:30")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "owner", fieldErrs[0].Field)
}

func TestTaskCmd_Edit(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	id, err := app.Tasks.Insert(ctx, "42", "Buy milk", "07:30")
	require.NoError(t, err)

	out, err := runTaskCmd(t, app, "edit", "1", "--time", "08:15")
	require.NoError(t, err)
	assert.Equal(t, "Task 1 updated: Buy milk at 08:15\n", out)

	task, err := app.Tasks.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "08:15", task.Time)
	assert.Equal(t, "Buy milk", task.Description)
}

func TestTaskCmd_EditErrors(t *testing.T) {
	app := newTestApp(t)
	_, err := app.Tasks.Insert(context.Background(), "42", "Buy milk", "07:30")
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing task", []string{"edit", "9", "-t", "08:00"}, "task 9 not found"},
		{"nothing to change", []string{"edit", "1"}, "nothing to change"},
		{"bad id", []string{"edit", "one", "-t", "08:00"}, "invalid task id"},
		{"bad time", []string{"edit", "1", "-t", "25:00"}, "invalid time of day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runTaskCmd(t, app, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTaskCmd_Delete(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	_, err := app.Tasks.Insert(ctx, "42", "Buy milk", "07:30")
	require.NoError(t, err)

	out, err := runTaskCmd(t, app, "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "Task 1 deleted\n", out)

	tasks, err := app.Tasks.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = runTaskCmd(t, app, "rm", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task 1 not found")
}

func TestMergeTaskInput(t *testing.T) {
	file := TaskInput{Owner: "1", Description: "from file", Time: "07:00"}
	got := mergeTaskInput(TaskInput{Time: "08:00"}, file)
	assert.Equal(t, TaskInput{Owner: "1", Description: "from file", Time: "08:00"}, got)
}
