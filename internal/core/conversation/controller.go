package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/remindbot/internal/core/logging"
	"github.com/colonyops/remindbot/internal/core/reminder"
	"github.com/colonyops/remindbot/pkg/kv"
	"github.com/colonyops/remindbot/pkg/tmpl"
)

// ErrUnknownTask is returned when an edit targets an ID the session does not own.
var ErrUnknownTask = errors.New("task not found for session")

// Controller routes inbound chat messages through the dialog state machine.
// Messages are handled one at a time in arrival order.
type Controller struct {
	store    reminder.Store
	sender   Sender
	sessions *kv.Store[string, *Session]
	listItem *tmpl.Template
	clock    func() time.Time
	ttl      time.Duration
	log      zerolog.Logger

	mu sync.Mutex
}

// Option configures a Controller.
type Option func(*Controller)

// WithSessionTTL resets sessions that sat mid-dialog for longer than ttl.
// Zero, the default, keeps abandoned sessions parked indefinitely.
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *Controller) { c.ttl = ttl }
}

// WithClock overrides the time source used for session activity.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithListItemTemplate sets the template used for each task list line.
func WithListItemTemplate(t *tmpl.Template) Option {
	return func(c *Controller) { c.listItem = t }
}

// WithLogger sets the controller's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// NewController creates a Controller over the given store and reply sender.
func NewController(store reminder.Store, sender Sender, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		sender:   sender,
		sessions: kv.New[string, *Session](),
		listItem: tmpl.MustParse("list_item", DefaultListItemTemplate),
		clock:    time.Now,
		log:      logging.Component("conversation"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state of a session. Unknown sessions are idle.
func (c *Controller) State(sessionID string) State {
	if sess, ok := c.sessions.Get(sessionID); ok {
		return sess.State
	}
	return StateIdle
}

// Sessions returns the number of sessions seen since start.
func (c *Controller) Sessions() int {
	return c.sessions.Len()
}

// Handle processes one inbound text message for a session and sends at most
// one reply. A failing store call fails the step: the user is told to retry,
// the session keeps its state, and the error is returned.
func (c *Controller) Handle(ctx context.Context, sessionID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx = logging.WithSessionID(ctx, sessionID)
	sess := c.session(ctx, sessionID)

	tr := Dispatch(sess.State, text)
	c.log.Debug().Ctx(ctx).
		Stringer("state", sess.State).
		Stringer("action", tr.Action).
		Msg("dispatch")

	reply, next, err := c.apply(ctx, sessionID, sess, tr, text)
	if err != nil {
		c.log.Error().Ctx(ctx).Err(err).Stringer("action", tr.Action).Msg("conversation step failed")
		if sendErr := c.sender.Send(ctx, sessionID, Reply{Text: msgStepFailed}); sendErr != nil {
			c.log.Warn().Ctx(ctx).Err(sendErr).Msg("send failure notice")
		}
		return fmt.Errorf("%s: %w", tr.Action, err)
	}

	if next == StateIdle {
		sess.reset()
	} else {
		sess.State = next
	}

	if tr.Action == ActionIgnore {
		return nil
	}

	if err := c.sender.Send(ctx, sessionID, reply); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// session returns the scratch record for sessionID, creating it on first
// contact and expiring it when a TTL is configured.
func (c *Controller) session(ctx context.Context, sessionID string) *Session {
	now := c.clock()

	sess, created := c.sessions.GetOrCreate(sessionID, func() *Session { return &Session{} })
	if created {
		c.log.Debug().Ctx(ctx).Msg("new session")
	}

	if c.ttl > 0 && sess.State != StateIdle && now.Sub(sess.LastActivity) > c.ttl {
		c.log.Info().Ctx(ctx).Stringer("state", sess.State).Msg("session expired, resetting")
		sess.reset()
	}

	sess.LastActivity = now
	return sess
}

// apply performs the transition's side effects and returns the reply and the
// state the session should move to.
func (c *Controller) apply(ctx context.Context, sessionID string, sess *Session, tr Transition, text string) (Reply, State, error) {
	switch tr.Action {
	case ActionIgnore:
		return Reply{}, tr.Next, nil
	case ActionWelcome:
		return Reply{Text: msgWelcome, Menu: MenuMain}, tr.Next, nil
	case ActionCancel:
		return Reply{Text: msgCancelled, Menu: MenuMain}, tr.Next, nil
	case ActionBack:
		return Reply{Text: msgBack, Menu: MenuMain}, tr.Next, nil
	case ActionHint:
		return Reply{Text: msgUseKeyboard, Menu: MenuMain}, tr.Next, nil
	case ActionStartAdd:
		return Reply{Text: msgEnterDescription, Menu: MenuRemove}, tr.Next, nil
	case ActionStartEdit:
		return Reply{Text: msgEnterEditID, Menu: MenuRemove}, tr.Next, nil

	case ActionList:
		reply, err := c.renderList(ctx, sessionID)
		if err != nil {
			return Reply{}, sess.State, err
		}
		return reply, tr.Next, nil

	case ActionCaptureDescription:
		sess.PendingDescription = text
		return Reply{Text: msgEnterTime}, tr.Next, nil

	case ActionCommitTask:
		id, err := c.store.Insert(ctx, sessionID, sess.PendingDescription, text)
		if err != nil {
			return Reply{}, sess.State, fmt.Errorf("insert task: %w", err)
		}
		c.log.Info().Ctx(logging.WithTaskID(ctx, id)).Str("time", text).Msg("task added")
		return Reply{
			Text: fmt.Sprintf(msgTaskAdded, sess.PendingDescription, text),
			Menu: MenuMain,
		}, tr.Next, nil

	case ActionRejectTime:
		return Reply{Text: msgInvalidTime}, tr.Next, nil

	case ActionSelectEdit:
		id, _ := parseTaskID(text)
		err := c.ownedTask(ctx, sessionID, id)
		if errors.Is(err, ErrUnknownTask) {
			return Reply{Text: msgTaskNotFound}, StateAwaitingEditID, nil
		}
		if err != nil {
			return Reply{}, sess.State, err
		}
		sess.PendingEditID = id
		return Reply{Text: msgEnterEditDescription}, tr.Next, nil

	case ActionRejectID:
		return Reply{Text: msgInvalidID}, tr.Next, nil

	case ActionCaptureEditDescription:
		sess.PendingEditDescription = text
		return Reply{Text: msgEnterEditTime}, tr.Next, nil

	case ActionCommitEdit:
		// The ID was checked when it was chosen; the task may have fired since,
		// in which case the update silently matches nothing.
		if err := c.store.Update(ctx, sess.PendingEditID, sess.PendingEditDescription, text); err != nil {
			return Reply{}, sess.State, fmt.Errorf("update task: %w", err)
		}
		c.log.Info().Ctx(logging.WithTaskID(ctx, sess.PendingEditID)).Str("time", text).Msg("task updated")
		return Reply{Text: msgTaskUpdated, Menu: MenuMain}, tr.Next, nil

	case ActionRejectEditTime:
		return Reply{Text: msgInvalidEditTime}, tr.Next, nil
	}

	return Reply{}, sess.State, fmt.Errorf("unhandled action %s", tr.Action)
}

// ownedTask checks that id names one of the session's tasks.
func (c *Controller) ownedTask(ctx context.Context, owner string, id int64) error {
	tasks, err := c.store.ListByOwner(ctx, owner)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	for _, t := range tasks {
		if t.ID == id {
			return nil
		}
	}
	return ErrUnknownTask
}

func (c *Controller) renderList(ctx context.Context, owner string) (Reply, error) {
	tasks, err := c.store.ListByOwner(ctx, owner)
	if err != nil {
		return Reply{}, fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return Reply{Text: msgNoTasks, Menu: MenuMain}, nil
	}

	var b strings.Builder
	b.WriteString(msgTaskListHeader)
	for i, t := range tasks {
		line, err := c.listItem.Execute(ListItemData{
			Index:       i + 1,
			ID:          t.ID,
			Description: t.Description,
			Time:        t.Time,
		})
		if err != nil {
			return Reply{}, fmt.Errorf("render list item: %w", err)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return Reply{Text: b.String(), Menu: MenuEdit}, nil
}
