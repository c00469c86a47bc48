// Package remindertest provides in-memory fakes of the reminder store and the
// outbound transport for tests.
package remindertest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/colonyops/remindbot/internal/core/conversation"
	"github.com/colonyops/remindbot/internal/core/reminder"
)

// MemoryStore is an in-memory reminder.Store that keeps insertion order.
// Setting Err makes every operation fail with it.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  []reminder.Task

	Err error
}

var _ reminder.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store. IDs start at 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(_ context.Context, owner, description, timeOfDay string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	s.nextID++
	s.tasks = append(s.tasks, reminder.Task{
		ID:          s.nextID,
		Owner:       owner,
		Description: description,
		Time:        timeOfDay,
	})
	return s.nextID, nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, owner string) ([]reminder.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []reminder.Task{}
	for _, t := range s.tasks {
		if t.Owner == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, id int64, description, timeOfDay string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Description = description
			s.tasks[i].Time = timeOfDay
		}
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.tasks = slices.DeleteFunc(s.tasks, func(t reminder.Task) bool { return t.ID == id })
	return nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]reminder.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return slices.Clone(s.tasks), nil
}

// Tasks returns a snapshot of all stored tasks.
func (s *MemoryStore) Tasks() []reminder.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Sent is a reply captured by Outbox.
type Sent struct {
	SessionID string
	Reply     conversation.Reply
}

// Notification is a reminder delivery attempt captured by Outbox.
type Notification struct {
	Owner string
	Text  string
}

// Outbox records replies and notifications. Owners listed in Fail have every
// delivery rejected with the mapped error.
type Outbox struct {
	mu            sync.Mutex
	replies       []Sent
	notifications []Notification

	Fail map[string]error
}

var (
	_ conversation.Sender = (*Outbox)(nil)
	_ reminder.Notifier   = (*Outbox)(nil)
)

// NewOutbox creates an empty Outbox.
func NewOutbox() *Outbox {
	return &Outbox{Fail: map[string]error{}}
}

func (o *Outbox) Send(_ context.Context, sessionID string, r conversation.Reply) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.replies = append(o.replies, Sent{SessionID: sessionID, Reply: r})
	return o.Fail[sessionID]
}

// Notify records the attempt before applying any configured failure, so failed
// attempts are counted too.
func (o *Outbox) Notify(_ context.Context, owner, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notifications = append(o.notifications, Notification{Owner: owner, Text: text})
	if err, ok := o.Fail[owner]; ok {
		return fmt.Errorf("notify %s: %w", owner, err)
	}
	return nil
}

// Replies returns all captured replies.
func (o *Outbox) Replies() []Sent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.replies)
}

// Last returns the most recent reply, or the zero Reply when none was sent.
func (o *Outbox) Last() conversation.Reply {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.replies) == 0 {
		return conversation.Reply{}
	}
	return o.replies[len(o.replies)-1].Reply
}

// Notifications returns all captured delivery attempts.
func (o *Outbox) Notifications() []Notification {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.notifications)
}
