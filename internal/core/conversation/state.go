// Package conversation implements the reminder bot's dialog: a finite state
// machine keyed by chat session that collects task input over several
// messages and delegates persistence to a reminder.Store.
package conversation

import "time"

// State is the input-collection stage of a session.
type State int

const (
	StateIdle State = iota
	StateAwaitingTaskText
	StateAwaitingTaskTime
	StateAwaitingEditID
	StateAwaitingEditText
	StateAwaitingEditTime
)

var stateNames = map[State]string{
	StateIdle:             "idle",
	StateAwaitingTaskText: "awaiting_task_text",
	StateAwaitingTaskTime: "awaiting_task_time",
	StateAwaitingEditID:   "awaiting_edit_id",
	StateAwaitingEditText: "awaiting_edit_text",
	StateAwaitingEditTime: "awaiting_edit_time",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Session is the scratch state of one conversation. It lives only in memory.
type Session struct {
	State                  State
	PendingDescription     string
	PendingEditID          int64
	PendingEditDescription string
	LastActivity           time.Time
}

// reset discards all pending input and returns the session to idle.
func (s *Session) reset() {
	last := s.LastActivity
	*s = Session{LastActivity: last}
}
