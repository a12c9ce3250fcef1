package models

import "time"

// CommandType tags the discriminated union produced by the command parser.
type CommandType string

const (
	CmdAdd          CommandType = "add"
	CmdAddSubtask   CommandType = "add_subtask"
	CmdTick         CommandType = "tick"
	CmdDelete       CommandType = "delete"
	CmdArchive      CommandType = "archive"
	CmdTag          CommandType = "tag"
	CmdFilter       CommandType = "filter"
	CmdPriority     CommandType = "priority"
	CmdDue          CommandType = "due"
	CmdSnooze       CommandType = "snooze"
	CmdRepeat       CommandType = "repeat"
	CmdRemind       CommandType = "remind"
	CmdProject      CommandType = "project"
	CmdListProjects CommandType = "list_projects"
	CmdSort         CommandType = "sort"
	CmdCalendar     CommandType = "calendar"
	CmdDark         CommandType = "dark"
	CmdLight        CommandType = "light"
	CmdSummarize    CommandType = "summarize"
	CmdHelp         CommandType = "help"
	CmdUnknown      CommandType = "unknown"
)

// Command is the structured result of parsing one line of user input.
// Only the fields relevant to Type are populated. Confidence is 1 when a
// grammar rule matched and 0 for unknown input.
type Command struct {
	Type       CommandType
	Confidence float64

	// TaskText is the task title (add) or the search text (tick, delete,
	// tag, priority, due, snooze, repeat, remind, archive). For unknown
	// commands it carries the original input.
	TaskText string

	Tag        string
	Priority   Priority
	AllMatches bool

	DueDate *time.Time

	SnoozeAmount int
	SnoozeUnit   string // "days", "weeks", "months"

	Recurrence *RecurrenceRule

	// Absolute reminder fire time, or a relative offset in hours before due.
	ReminderAt          *time.Time
	ReminderOffsetHours int

	// ParentText is the parent search text for add_subtask; ProjectName names
	// the target project for add-to-project and create-project forms.
	ParentText  string
	ProjectName string

	SortBy string // "priority", "due", "created", "alphabetical"
	Period string // "today", "tomorrow", "week"
}

// ParsedTask is the output of the natural-language extraction pipeline: a
// task record recovered from free text. Tags is always non-nil and Title
// always non-empty by the time the pipeline returns.
type ParsedTask struct {
	Title      string
	Due        *time.Time
	Tags       []string
	Priority   Priority
	ReminderAt *time.Time
}

// IntentLabel is the fixed label set the remote classifier scores against.
type IntentLabel string

const (
	IntentAddTask      IntentLabel = "add_task"
	IntentCompleteTask IntentLabel = "complete_task"
	IntentDeleteTask   IntentLabel = "delete_task"
	IntentChangeTag    IntentLabel = "change_tag"
	IntentSetPriority  IntentLabel = "set_priority"
	IntentFilterTasks  IntentLabel = "filter_tasks"
	IntentHelp         IntentLabel = "help"
)

// Intent is the result of remote intent classification: the winning label,
// the classifier's confidence, and the entity text extracted for that label.
type Intent struct {
	Label      IntentLabel
	Confidence float64
	Text       string
}
