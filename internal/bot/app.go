// Package bot assembles the reminder bot from its stores and configuration.
package bot

import (
	"fmt"

	"github.com/colonyops/remindbot/internal/bot/sweep"
	"github.com/colonyops/remindbot/internal/core/config"
	"github.com/colonyops/remindbot/internal/core/conversation"
	"github.com/colonyops/remindbot/internal/core/logging"
	"github.com/colonyops/remindbot/internal/core/reminder"
	"github.com/colonyops/remindbot/internal/data/db"
	"github.com/colonyops/remindbot/internal/data/stores"
	"github.com/colonyops/remindbot/pkg/tmpl"
)

// App is the central entry point for bot operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Config *config.Config
	DB     *db.DB
	Tasks  *stores.TaskStore
	KV     *stores.KVStore
}

// NewApp constructs an App over an open database.
func NewApp(cfg *config.Config, database *db.DB) *App {
	return &App{
		Config: cfg,
		DB:     database,
		Tasks:  stores.NewTaskStore(database),
		KV:     stores.NewKVStore(database),
	}
}

// NewController builds a conversation controller that replies through sender.
func (a *App) NewController(sender conversation.Sender) (*conversation.Controller, error) {
	listItem, err := tmpl.Parse("list_item", a.Config.Messages.ListItem)
	if err != nil {
		return nil, fmt.Errorf("messages.list_item: %w", err)
	}

	return conversation.NewController(a.Tasks, sender,
		conversation.WithListItemTemplate(listItem),
		conversation.WithSessionTTL(a.Config.Conversation.SessionTTL),
		conversation.WithLogger(logging.Component("conversation")),
	), nil
}

// NewSweeper builds a sweeper that delivers through notifier. Extra options
// are applied after the configured ones.
func (a *App) NewSweeper(notifier reminder.Notifier, opts ...sweep.Option) (*sweep.Sweeper, error) {
	message, err := tmpl.Parse("reminder", a.Config.Messages.Reminder)
	if err != nil {
		return nil, fmt.Errorf("messages.reminder: %w", err)
	}

	base := []sweep.Option{
		sweep.WithMessageTemplate(message),
		sweep.WithLogger(logging.Component("sweeper")),
	}
	return sweep.New(a.Tasks, notifier, append(base, opts...)...), nil
}
