package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/colonyops/remindbot/internal/bot"
	"github.com/colonyops/remindbot/internal/bot/sweep"
	"github.com/colonyops/remindbot/internal/core/logging"
	"github.com/colonyops/remindbot/internal/transport/telegram"
)

// errMissingToken is reported when serve or sweep run without a bot token.
var errMissingToken = errors.New("bot token is required: set BOT_TOKEN or pass --token")

// telegramFlags holds the connection flags shared by serve and sweep.
type telegramFlags struct {
	token string
	proxy string
}

// Flags are local so the copies registered on the root command do not clash
// with the subcommands' own.
func (tf *telegramFlags) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "token",
			Usage:       "Telegram bot token",
			Sources:     cli.EnvVars("BOT_TOKEN"),
			Local:       true,
			Destination: &tf.token,
		},
		&cli.StringFlag{
			Name:        "proxy",
			Usage:       "proxy URL for Bot API traffic (overrides telegram.proxy)",
			Sources:     cli.EnvVars("REMINDBOT_PROXY"),
			Local:       true,
			Destination: &tf.proxy,
		},
	}
}

// connect authenticates against the Bot API using flags over config.
func (tf *telegramFlags) connect(flags *Flags, app *bot.App) (*telegram.Bot, error) {
	if tf.token == "" {
		return nil, errMissingToken
	}

	cfg := app.Config.Telegram
	proxy := cfg.Proxy
	if tf.proxy != "" {
		proxy = tf.proxy
	}

	return telegram.New(telegram.Config{
		Token:       tf.token,
		Proxy:       proxy,
		PollTimeout: cfg.PollTimeout,
		Debug:       flags.LogLevel == "debug",
	}, app.KV, logging.Component("telegram"))
}

type ServeCmd struct {
	flags *Flags
	app   *bot.App
	tg    telegramFlags
}

// NewServeCmd creates a new serve command.
func NewServeCmd(flags *Flags, app *bot.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Flags returns the serve flags so the root command can accept them too.
func (cmd *ServeCmd) Flags() []cli.Flag {
	return cmd.tg.Flags()
}

// Register adds the serve command to the application.
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the Telegram bot",
		UsageText: "remindbot serve [--token TOKEN] [--proxy URL]",
		Description: `Polls Telegram for messages, drives the task dialog for every user, and
fires due reminders once a minute. Stops on SIGINT or SIGTERM.

This is the default action when remindbot runs without a subcommand.`,
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})

	return app
}

// Run starts the bot and the sweeper and blocks until interrupted.
func (cmd *ServeCmd) Run(ctx context.Context, c *cli.Command) error {
	tg, err := cmd.tg.connect(cmd.flags, cmd.app)
	if err != nil {
		return err
	}

	app := cmd.app

	ctrl, err := app.NewController(tg)
	if err != nil {
		return fmt.Errorf("build controller: %w", err)
	}

	sweeper, err := app.NewSweeper(tg)
	if err != nil {
		return fmt.Errorf("build sweeper: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.Component("serve")
	log.Info().
		Str("bot", tg.Username()).
		Dur("sweep_interval", app.Config.Sweep.Interval).
		Msg("bot started")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sweep.Start(ctx, sweeper, app.Config.Sweep.Interval)
		return nil
	})
	g.Go(func() error {
		return tg.Run(ctx, ctrl.Handle)
	})

	err = g.Wait()
	log.Info().Msg("bot stopped")
	return err
}
