// Package sweep fires reminders whose time of day has come.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/remindbot/internal/core/logging"
	"github.com/colonyops/remindbot/internal/core/reminder"
	"github.com/colonyops/remindbot/pkg/tmpl"
)

// Result summarizes one sweep.
type Result struct {
	At        string `json:"at"`
	Matched   int    `json:"matched"`
	Delivered int    `json:"delivered"`
	Failed    int    `json:"failed"`
}

// Sweeper delivers and removes tasks scheduled for the current minute.
// Every matched task is deleted whether or not delivery succeeded.
type Sweeper struct {
	store    reminder.Store
	notifier reminder.Notifier
	message  *tmpl.Template
	clock    func() time.Time
	owner    string
	log      zerolog.Logger
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Sweeper) { s.clock = clock }
}

// WithMessageTemplate sets the template rendered for each delivered reminder.
func WithMessageTemplate(t *tmpl.Template) Option {
	return func(s *Sweeper) { s.message = t }
}

// WithOwner restricts the sweeper to tasks owned by owner. Tasks of other
// owners are never matched, notified or deleted.
func WithOwner(owner string) Option {
	return func(s *Sweeper) { s.owner = owner }
}

// WithLogger sets the sweeper's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Sweeper) { s.log = l }
}

// New creates a Sweeper over store that delivers through notifier.
func New(store reminder.Store, notifier reminder.Notifier, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:    store,
		notifier: notifier,
		message:  tmpl.MustParse("reminder", reminder.DefaultMessageTemplate),
		clock:    time.Now,
		log:      logging.Component("sweeper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep fires every task due at the current local minute.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	return s.SweepAt(ctx, reminder.FormatTimeOfDay(s.clock()))
}

// SweepAt fires every task whose time equals at. An error is returned only
// when the task list cannot be read; per-task failures are logged and counted.
func (s *Sweeper) SweepAt(ctx context.Context, at string) (Result, error) {
	res := Result{At: at}

	tasks, err := s.candidates(ctx)
	if err != nil {
		return res, fmt.Errorf("list tasks: %w", err)
	}

	for _, task := range tasks {
		if task.Time != at {
			continue
		}
		res.Matched++

		tctx := logging.WithSessionID(logging.WithTaskID(ctx, task.ID), task.Owner)

		if err := s.notifier.Notify(tctx, task.Owner, s.render(tctx, task)); err != nil {
			res.Failed++
			s.log.Error().Ctx(tctx).Err(err).Msg("reminder delivery failed")
		} else {
			res.Delivered++
			s.log.Info().Ctx(tctx).Msg("reminder delivered")
		}

		if err := s.store.Delete(tctx, task.ID); err != nil {
			s.log.Error().Ctx(tctx).Err(err).Msg("delete fired task")
		}
	}

	if res.Matched > 0 {
		s.log.Info().
			Str("at", res.At).
			Int("matched", res.Matched).
			Int("delivered", res.Delivered).
			Int("failed", res.Failed).
			Msg("sweep finished")
	}

	return res, nil
}

func (s *Sweeper) candidates(ctx context.Context) ([]reminder.Task, error) {
	if s.owner != "" {
		return s.store.ListByOwner(ctx, s.owner)
	}
	return s.store.ListAll(ctx)
}

// render falls back to the built-in text if the configured template fails.
func (s *Sweeper) render(ctx context.Context, task reminder.Task) string {
	text, err := s.message.Execute(reminder.MessageDataFor(task))
	if err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("render reminder message, using default")
		return "Reminder: " + task.Description
	}
	return text
}

// Start runs a sweep immediately and then on every tick.
// It blocks until the context is cancelled.
func Start(ctx context.Context, s *Sweeper, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Msg("sweep failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
