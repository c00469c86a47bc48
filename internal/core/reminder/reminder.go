// Package reminder defines the reminder task model and the persistence and
// delivery ports used by the conversation controller and the sweeper.
package reminder

import "context"

// Task is a stored reminder. Time holds the HH:MM text exactly as entered.
type Task struct {
	ID          int64  `json:"id"`
	Owner       string `json:"owner"`
	Description string `json:"description"`
	Time        string `json:"time"`
}

// Store defines the interface for reminder task persistence.
// Every operation is atomic on its own; there is no transaction spanning calls.
type Store interface {
	// Insert persists a new task and returns its freshly assigned ID.
	Insert(ctx context.Context, owner, description, timeOfDay string) (int64, error)

	// ListByOwner returns the owner's tasks in insertion order.
	// Returns an empty slice when the owner has none.
	ListByOwner(ctx context.Context, owner string) ([]Task, error)

	// Update replaces description and time of the task with the given ID.
	// It does not check existence: updating a missing ID is a silent no-op.
	Update(ctx context.Context, id int64, description, timeOfDay string) error

	// Delete removes the task with the given ID. No-op when absent.
	Delete(ctx context.Context, id int64) error

	// ListAll returns every task in insertion order.
	ListAll(ctx context.Context) ([]Task, error)
}

// Notifier delivers a reminder text to a task owner.
type Notifier interface {
	Notify(ctx context.Context, owner, text string) error
}

// DefaultMessageTemplate renders the text delivered when a task fires.
const DefaultMessageTemplate = "Reminder: {{ .Description }}"

// MessageData is the data passed to the reminder message template.
type MessageData struct {
	ID          int64
	Owner       string
	Description string
	Time        string
}

// MessageDataFor builds template data from a task.
func MessageDataFor(t Task) MessageData {
	return MessageData{
		ID:          t.ID,
		Owner:       t.Owner,
		Description: t.Description,
		Time:        t.Time,
	}
}
