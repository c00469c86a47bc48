package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/remindbot/internal/bot"
	"github.com/colonyops/remindbot/internal/core/reminder"
	"github.com/colonyops/remindbot/internal/core/validate"
	"github.com/colonyops/remindbot/internal/data/stores"
	"github.com/colonyops/remindbot/pkg/iojson"
)

// TaskInput is the JSON accepted by "task add --file".
type TaskInput struct {
	Owner       string `json:"owner"`
	Description string `json:"description"`
	Time        string `json:"time"`
}

type TaskCmd struct {
	flags *Flags
	app   *bot.App

	// flags
	owner       string
	description string
	time        string
	jsonOutput  bool
	input       iojson.FileReader[TaskInput]
}

// NewTaskCmd creates a new task command.
func NewTaskCmd(flags *Flags, app *bot.App) *TaskCmd {
	return &TaskCmd{flags: flags, app: app}
}

// Register adds the task command to the application.
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "task",
		Usage: "Inspect and manage stored tasks",
		Description: `Operates on the task database directly, outside any chat session.
Owners are the chat session ids tasks belong to (the Telegram user id).`,
		Commands: []*cli.Command{
			cmd.listCmd(),
			cmd.addCmd(),
			cmd.editCmd(),
			cmd.deleteCmd(),
		},
	})

	return app
}

func (cmd *TaskCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List tasks",
		UsageText: "remindbot task list [--owner ID] [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "owner",
				Usage:       "only list tasks owned by this session id",
				Destination: &cmd.owner,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runList,
	}
}

func (cmd *TaskCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a task",
		UsageText: "remindbot task add --owner ID --description TEXT --time HH:MM\n   remindbot task add -f task.json",
		Description: `Adds a task for an owner. Without --description and --time, an interactive
form is shown when stdin is a terminal; otherwise the task is read as JSON from
--file or stdin:

  {"owner": "123456", "description": "Buy milk", "time": "07:30"}`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "owner",
				Usage:       "session id that owns the task",
				Destination: &cmd.owner,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "task description",
				Destination: &cmd.description,
			},
			&cli.StringFlag{
				Name:        "time",
				Aliases:     []string{"t"},
				Usage:       "reminder time of day (HH:MM)",
				Destination: &cmd.time,
			},
			cmd.input.Flag(),
		},
		Action: cmd.runAdd,
	}
}

func (cmd *TaskCmd) editCmd() *cli.Command {
	return &cli.Command{
		Name:          "edit",
		Usage:         "Change a task's description or time",
		UsageText:     "remindbot task edit <id> [--description TEXT] [--time HH:MM]",
		ShellComplete: TaskIDCompleter(cmd.app),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "new task description",
				Destination: &cmd.description,
			},
			&cli.StringFlag{
				Name:        "time",
				Aliases:     []string{"t"},
				Usage:       "new reminder time of day (HH:MM)",
				Destination: &cmd.time,
			},
		},
		Action: cmd.runEdit,
	}
}

func (cmd *TaskCmd) deleteCmd() *cli.Command {
	return &cli.Command{
		Name:          "delete",
		Aliases:       []string{"rm"},
		Usage:         "Delete a task",
		UsageText:     "remindbot task delete <id>",
		ShellComplete: TaskIDCompleter(cmd.app),
		Action:        cmd.runDelete,
	}
}

func (cmd *TaskCmd) runList(ctx context.Context, c *cli.Command) error {
	var (
		tasks []reminder.Task
		err   error
	)
	if cmd.owner != "" {
		tasks, err = cmd.app.Tasks.ListByOwner(ctx, cmd.owner)
	} else {
		tasks, err = cmd.app.Tasks.ListAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, t := range tasks {
			if err := iojson.WriteLine(out, t); err != nil {
				return err
			}
		}
		return nil
	}

	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tOWNER\tTIME\tDESCRIPTION")
	for _, t := range tasks {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Owner, t.Time, t.Description)
	}
	return w.Flush()
}

func (cmd *TaskCmd) runAdd(ctx context.Context, c *cli.Command) error {
	in := TaskInput{Owner: cmd.owner, Description: cmd.description, Time: cmd.time}

	if in.Description == "" || in.Time == "" {
		var err error
		in, err = cmd.collect(in)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
	}

	if err := validate.Task(in.Owner, in.Description, in.Time); err != nil {
		return err
	}

	id, err := cmd.app.Tasks.Insert(ctx, in.Owner, in.Description, in.Time)
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Task %d added for %s at %s\n", id, in.Owner, in.Time)
	return nil
}

// collect fills missing fields from a form on a terminal, or from JSON input
// otherwise. Flag values take precedence over JSON fields.
func (cmd *TaskCmd) collect(in TaskInput) (TaskInput, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) || cmd.hasFileInput() {
		read, err := cmd.input.Read()
		if err != nil {
			return in, err
		}
		return mergeTaskInput(in, read), nil
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Owner").
				Description("Session id the reminder is sent to").
				Validate(validate.Required).
				Value(&in.Owner),
			huh.NewInput().
				Title("Description").
				Validate(validate.Required).
				Value(&in.Description),
			huh.NewInput().
				Title("Time").
				Description("Time of day, HH:MM").
				Validate(validate.TimeOfDay).
				Value(&in.Time),
		),
	).Run()
	return in, err
}

func (cmd *TaskCmd) hasFileInput() bool {
	return cmd.input.Path() != ""
}

func (cmd *TaskCmd) runEdit(ctx context.Context, c *cli.Command) error {
	id, err := taskIDArg(c)
	if err != nil {
		return err
	}

	if cmd.description == "" && cmd.time == "" {
		return errors.New("nothing to change: pass --description and/or --time")
	}

	task, err := cmd.lookup(ctx, id)
	if err != nil {
		return err
	}

	if cmd.description != "" {
		task.Description = cmd.description
	}
	if cmd.time != "" {
		if err := validate.TimeOfDay(cmd.time); err != nil {
			return err
		}
		task.Time = cmd.time
	}

	if err := cmd.app.Tasks.Update(ctx, task.ID, task.Description, task.Time); err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Task %d updated: %s at %s\n", task.ID, task.Description, task.Time)
	return nil
}

func (cmd *TaskCmd) runDelete(ctx context.Context, c *cli.Command) error {
	id, err := taskIDArg(c)
	if err != nil {
		return err
	}

	if _, err := cmd.lookup(ctx, id); err != nil {
		return err
	}

	if err := cmd.app.Tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Task %d deleted\n", id)
	return nil
}

func (cmd *TaskCmd) lookup(ctx context.Context, id int64) (reminder.Task, error) {
	task, err := cmd.app.Tasks.Get(ctx, id)
	if stores.IsNotFoundError(err) {
		return task, fmt.Errorf("task %d not found", id)
	}
	return task, err
}

func taskIDArg(c *cli.Command) (int64, error) {
	if c.Args().Len() != 1 {
		return 0, errors.New("expected exactly one task id")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", c.Args().First())
	}
	return id, nil
}

func mergeTaskInput(flags, file TaskInput) TaskInput {
	if flags.Owner != "" {
		file.Owner = flags.Owner
	}
	if flags.Description != "" {
		file.Description = flags.Description
	}
	if flags.Time != "" {
		file.Time = flags.Time
	}
	return file
}
