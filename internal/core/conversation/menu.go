package conversation

import "context"

// Button labels shown on the reply keyboards.
const (
	LabelAddTask  = "Add Task"
	LabelListTask = "List Task"
	LabelEditTask = "Edit Task"
	LabelBack     = "Back"
	LabelCancel   = "Cancel"
)

// Menu selects the suggested reply keyboard attached to a reply.
type Menu int

const (
	// MenuKeep attaches no keyboard markup; the client keeps what it shows.
	MenuKeep Menu = iota
	MenuMain
	MenuEdit
	// MenuRemove asks the client to hide the keyboard for free-text input.
	MenuRemove
)

// Buttons returns the keyboard rows for the menu, or nil when the menu carries
// no buttons.
func (m Menu) Buttons() [][]string {
	switch m {
	case MenuMain:
		return [][]string{{LabelAddTask, LabelListTask}}
	case MenuEdit:
		return [][]string{{LabelEditTask, LabelBack}}
	default:
		return nil
	}
}

// Reply is one outbound message.
type Reply struct {
	Text string
	Menu Menu
}

// Sender delivers replies to a chat session.
type Sender interface {
	Send(ctx context.Context, sessionID string, r Reply) error
}
