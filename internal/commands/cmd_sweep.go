package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remindbot/internal/bot"
	"github.com/colonyops/remindbot/internal/core/reminder"
	"github.com/colonyops/remindbot/internal/core/validate"
	"github.com/colonyops/remindbot/pkg/iojson"
)

type SweepCmd struct {
	flags *Flags
	app   *bot.App
	tg    telegramFlags

	// flags
	at     string
	dryRun bool
}

// NewSweepCmd creates a new sweep command.
func NewSweepCmd(flags *Flags, app *bot.App) *SweepCmd {
	return &SweepCmd{flags: flags, app: app}
}

// Register adds the sweep command to the application.
func (cmd *SweepCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sweep",
		Usage:     "Fire due reminders once",
		UsageText: "remindbot sweep [--at HH:MM] [--dry-run]",
		Description: `Runs a single reminder sweep: every task scheduled for the given minute
(default: now) is sent to its owner over Telegram and then deleted, whether or
not delivery succeeded. The sweep summary is printed as JSON.

With --dry-run the due tasks are printed as JSON lines and nothing is sent or
deleted.`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "at",
				Usage:       "time of day to sweep for (HH:MM, defaults to the current minute)",
				Destination: &cmd.at,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "print due tasks without sending or deleting them",
				Destination: &cmd.dryRun,
			},
		}, cmd.tg.Flags()...),
		Action: cmd.run,
	})

	return app
}

func (cmd *SweepCmd) run(ctx context.Context, c *cli.Command) error {
	at := cmd.at
	if at == "" {
		at = reminder.FormatTimeOfDay(time.Now())
	}
	if err := validate.TimeOfDay(at); err != nil {
		return fmt.Errorf("--at: %w", err)
	}

	if cmd.dryRun {
		return cmd.printDue(ctx, c, at)
	}

	tg, err := cmd.tg.connect(cmd.flags, cmd.app)
	if err != nil {
		return err
	}

	sweeper, err := cmd.app.NewSweeper(tg)
	if err != nil {
		return fmt.Errorf("build sweeper: %w", err)
	}

	result, err := sweeper.SweepAt(ctx, at)
	if err != nil {
		return err
	}

	return iojson.WriteLine(c.Root().Writer, result)
}

func (cmd *SweepCmd) printDue(ctx context.Context, c *cli.Command, at string) error {
	tasks, err := cmd.app.Tasks.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	for _, t := range tasks {
		if t.Time != at {
			continue
		}
		if err := iojson.WriteLine(c.Root().Writer, t); err != nil {
			return err
		}
	}
	return nil
}
