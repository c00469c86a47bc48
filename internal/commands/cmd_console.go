package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/colonyops/remindbot/internal/bot"
	"github.com/colonyops/remindbot/internal/bot/sweep"
	"github.com/colonyops/remindbot/internal/core/conversation"
	"github.com/colonyops/remindbot/internal/transport/console"
)

type ConsoleCmd struct {
	flags *Flags
	app   *bot.App

	// flags
	session string
}

// NewConsoleCmd creates a new console command.
func NewConsoleCmd(flags *Flags, app *bot.App) *ConsoleCmd {
	return &ConsoleCmd{flags: flags, app: app}
}

// Register adds the console command to the application.
func (cmd *ConsoleCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "console",
		Usage:     "Chat with the bot from the terminal",
		UsageText: "remindbot console [--session ID]",
		Description: `Runs the task dialog and the reminder sweeper against stdin and stdout as
a single session. Tasks are stored in the same database the Telegram bot uses,
owned by the given session id. Only that session's reminders are fired here;
tasks of other owners are left for 'remindbot serve'.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "session",
				Usage:       "session id that owns the tasks created here",
				Value:       "console",
				Destination: &cmd.session,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ConsoleCmd) run(ctx context.Context, c *cli.Command) error {
	app := cmd.app
	term := console.New(os.Stdin, c.Root().Writer, cmd.session)

	ctrl, err := app.NewController(term)
	if err != nil {
		return fmt.Errorf("build controller: %w", err)
	}

	// The console can only deliver to its own session, so it must never fire
	// tasks that belong to chat users sharing the database.
	sweeper, err := app.NewSweeper(term, sweep.WithOwner(cmd.session))
	if err != nil {
		return fmt.Errorf("build sweeper: %w", err)
	}

	if err := ctrl.Handle(ctx, cmd.session, conversation.CommandStart); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		sweep.Start(ctx, sweeper, app.Config.Sweep.Interval)
		return nil
	})

	runErr := term.Run(ctx, ctrl.Handle)
	cancel()
	_ = g.Wait()
	return runErr
}
