package conversation

// Reply texts. Every validation failure re-prompts in plain text.
const (
	msgWelcome              = "Welcome! Use the keyboard below to manage your tasks."
	msgCancelled            = "Operation cancelled."
	msgBack                 = "Back to main menu."
	msgUseKeyboard          = "Please use the keyboard below."
	msgEnterDescription     = "Please enter the task description:"
	msgEnterTime            = "Please enter the time for reminder (HH:MM):"
	msgTaskAdded            = "Task '%s' added for %s."
	msgInvalidTime          = "Invalid time format! Please use HH:MM."
	msgNoTasks              = "You have no tasks."
	msgTaskListHeader       = "Your tasks:\n"
	msgEnterEditID          = "Please enter the ID of the task you want to edit:"
	msgInvalidID            = "Invalid ID. Please enter a numeric task ID:"
	msgTaskNotFound         = "Task ID not found. Please enter a valid ID:"
	msgEnterEditDescription = "Enter the new task description:"
	msgEnterEditTime        = "Enter the new time for the task (HH:MM):"
	msgInvalidEditTime      = "Invalid time format! Please use HH:MM:"
	msgTaskUpdated          = "Task updated successfully!"
	msgStepFailed           = "Something went wrong, please try again."
)

// DefaultListItemTemplate renders one line of the task list.
const DefaultListItemTemplate = "{{ .Index }}. {{ .Description }} at {{ .Time }} (ID: {{ .ID }})"

// ListItemData is the data passed to the list item template.
type ListItemData struct {
	Index       int
	ID          int64
	Description string
	Time        string
}
