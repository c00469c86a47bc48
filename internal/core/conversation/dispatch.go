package conversation

import (
	"strconv"
	"strings"

	"github.com/colonyops/remindbot/internal/core/reminder"
)

// Action is the work the controller performs for one inbound message.
type Action int

const (
	ActionIgnore Action = iota
	ActionWelcome
	ActionCancel
	ActionStartAdd
	ActionList
	ActionStartEdit
	ActionBack
	ActionHint
	ActionCaptureDescription
	ActionCommitTask
	ActionRejectTime
	ActionSelectEdit
	ActionRejectID
	ActionCaptureEditDescription
	ActionCommitEdit
	ActionRejectEditTime
)

var actionNames = [...]string{
	ActionIgnore:                 "ignore",
	ActionWelcome:                "welcome",
	ActionCancel:                 "cancel",
	ActionStartAdd:               "start_add",
	ActionList:                   "list",
	ActionStartEdit:              "start_edit",
	ActionBack:                   "back",
	ActionHint:                   "hint",
	ActionCaptureDescription:     "capture_description",
	ActionCommitTask:             "commit_task",
	ActionRejectTime:             "reject_time",
	ActionSelectEdit:             "select_edit",
	ActionRejectID:               "reject_id",
	ActionCaptureEditDescription: "capture_edit_description",
	ActionCommitEdit:             "commit_edit",
	ActionRejectEditTime:         "reject_edit_time",
}

func (a Action) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// Transition pairs an action with the state the session moves to when the
// action succeeds.
type Transition struct {
	Action Action
	Next   State
}

// Chat commands recognized in every state.
const (
	CommandStart  = "/start"
	CommandCancel = "/cancel"
)

// Dispatch maps the current state and the raw input text to a transition. It
// performs no I/O. ActionSelectEdit only tells that the input is numeric; the
// controller still has to confirm the ID belongs to the session.
func Dispatch(state State, text string) Transition {
	cmd, isCommand := command(text)
	switch {
	case isCommand && cmd == CommandStart:
		return Transition{ActionWelcome, StateIdle}
	case isCommand && cmd == CommandCancel, text == LabelCancel:
		return Transition{ActionCancel, StateIdle}
	}

	if state == StateIdle {
		switch text {
		case LabelAddTask:
			return Transition{ActionStartAdd, StateAwaitingTaskText}
		case LabelListTask:
			return Transition{ActionList, StateIdle}
		case LabelEditTask:
			return Transition{ActionStartEdit, StateAwaitingEditID}
		case LabelBack:
			return Transition{ActionBack, StateIdle}
		default:
			return Transition{ActionHint, StateIdle}
		}
	}

	// Input stages only take plain text; unknown commands are dropped.
	if isCommand {
		return Transition{ActionIgnore, state}
	}

	switch state {
	case StateAwaitingTaskText:
		return Transition{ActionCaptureDescription, StateAwaitingTaskTime}
	case StateAwaitingTaskTime:
		if reminder.ValidTimeOfDay(text) {
			return Transition{ActionCommitTask, StateIdle}
		}
		return Transition{ActionRejectTime, StateAwaitingTaskTime}
	case StateAwaitingEditID:
		if _, ok := parseTaskID(text); ok {
			return Transition{ActionSelectEdit, StateAwaitingEditText}
		}
		return Transition{ActionRejectID, StateAwaitingEditID}
	case StateAwaitingEditText:
		return Transition{ActionCaptureEditDescription, StateAwaitingEditTime}
	case StateAwaitingEditTime:
		if reminder.ValidTimeOfDay(text) {
			return Transition{ActionCommitEdit, StateIdle}
		}
		return Transition{ActionRejectEditTime, StateAwaitingEditTime}
	}

	return Transition{ActionHint, StateIdle}
}

// command returns the bot command in text, without any "@botname" suffix or
// arguments.
func command(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", false
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return cmd, true
}

func parseTaskID(text string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
