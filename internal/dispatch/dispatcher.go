// Package dispatch routes one line of user input to a task-store mutation
// and a human-readable feedback message. The rule grammar is tried first;
// unmatched input goes through intent classification and then task
// extraction, so user input always ends as a task or a feedback message,
// never silently dropped.
package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/valter-silva-au/tasktalk/internal/nlp"
	"github.com/valter-silva-au/tasktalk/internal/observability"
	"github.com/valter-silva-au/tasktalk/internal/parser"
	"github.com/valter-silva-au/tasktalk/internal/sched"
	"github.com/valter-silva-au/tasktalk/internal/store"
	"github.com/valter-silva-au/tasktalk/pkg/models"
)

// intentThreshold is the minimum classifier confidence the dispatcher acts
// on; weaker intents fall through to task extraction.
const intentThreshold = 0.5

// Dispatcher owns the command-handling flow.
type Dispatcher struct {
	store      *store.TaskStore
	parser     *parser.Parser
	nl         *nlp.Pipeline
	conflicts  sched.ConflictDetector
	recurrence sched.RecurrenceEngine
	events     observability.EventLog
	logger     *log.Logger
	now        func() time.Time
}

// New wires a Dispatcher. events may be nil to disable event logging.
func New(
	s *store.TaskStore,
	p *parser.Parser,
	nl *nlp.Pipeline,
	conflicts sched.ConflictDetector,
	recurrence sched.RecurrenceEngine,
	events observability.EventLog,
	logger *log.Logger,
) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		store:      s,
		parser:     p,
		nl:         nl,
		conflicts:  conflicts,
		recurrence: recurrence,
		events:     events,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle interprets one line of input and applies it. The returned string is
// always a non-empty user-facing message; the error is reserved for
// persistence failures.
func (d *Dispatcher) Handle(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return `Nothing to do. Type "help" to see what I understand.`, nil
	}

	cmd := d.parser.Parse(input)
	if cmd.Type != models.CmdUnknown {
		d.emit(observability.EventCommandDispatched, input, map[string]any{"type": string(cmd.Type)})
		return d.apply(cmd)
	}

	// No grammar match: ask the classifier what the user meant before
	// treating the input as a task to record.
	if intent, err := d.nl.Classify(ctx, input); err == nil && intent.Confidence >= intentThreshold {
		if msg, handled, err := d.applyIntent(ctx, intent, input); handled {
			return msg, err
		}
	}

	return d.addFromText(ctx, input)
}

// apply executes one structured command.
func (d *Dispatcher) apply(cmd models.Command) (string, error) {
	switch cmd.Type {
	case models.CmdAdd:
		return d.addCommand(cmd)
	case models.CmdAddSubtask:
		return d.addSubtask(cmd)
	case models.CmdTick:
		return d.tick(cmd.TaskText, cmd.AllMatches)
	case models.CmdDelete:
		return d.deleteTasks(cmd.TaskText, cmd.AllMatches)
	case models.CmdArchive:
		return d.archive(cmd)
	case models.CmdTag:
		return d.tag(cmd.TaskText, cmd.Tag)
	case models.CmdFilter:
		return d.filter(cmd.Tag)
	case models.CmdPriority:
		return d.setPriority(cmd.TaskText, cmd.Priority)
	case models.CmdDue:
		return d.setDue(cmd.TaskText, *cmd.DueDate)
	case models.CmdSnooze:
		return d.snooze(cmd)
	case models.CmdRepeat:
		return d.repeat(cmd.TaskText, cmd.Recurrence)
	case models.CmdRemind:
		return d.remind(cmd)
	case models.CmdProject:
		return d.createProject(cmd.ProjectName)
	case models.CmdListProjects:
		return d.listProjects()
	case models.CmdSort:
		return d.setSort(cmd.SortBy)
	case models.CmdCalendar:
		return d.toggleCalendar()
	case models.CmdDark:
		return d.setDarkMode(true)
	case models.CmdLight:
		return d.setDarkMode(false)
	case models.CmdSummarize:
		return d.summarize(cmd.Period)
	case models.CmdHelp:
		return helpText, nil
	}
	return `I didn't catch that. Type "help" for the command list.`, nil
}

// applyIntent maps a classified intent onto a command. handled is false when
// the label should fall through to task extraction.
func (d *Dispatcher) applyIntent(ctx context.Context, intent models.Intent, input string) (string, bool, error) {
	switch intent.Label {
	case models.IntentAddTask:
		msg, err := d.addFromText(ctx, input)
		return msg, true, err
	case models.IntentCompleteTask:
		msg, err := d.tick(intent.Text, false)
		return msg, true, err
	case models.IntentDeleteTask:
		msg, err := d.deleteTasks(intent.Text, false)
		return msg, true, err
	case models.IntentFilterTasks:
		msg, err := d.filter(intent.Text)
		return msg, true, err
	case models.IntentChangeTag:
		return `Which task? Try "tag <task> as <tag>".`, true, nil
	case models.IntentSetPriority:
		return `Which task? Try "priority <task> <high|medium|low>".`, true, nil
	case models.IntentHelp:
		return helpText, true, nil
	}
	return "", false, nil
}

// addFromText runs the extraction pipeline and records the result as a task.
func (d *Dispatcher) addFromText(ctx context.Context, input string) (string, error) {
	parsed, err := d.nl.Extract(ctx, input)
	if err != nil {
		if errors.Is(err, nlp.ErrNotATask) {
			return `That looks like a command I don't recognize. Type "help" for the full list.`, nil
		}
		return "", err
	}

	task := d.newTask(parsed.Title)
	task.Tags = parsed.Tags
	task.Priority = parsed.Priority
	task.DueDate = parsed.Due
	if parsed.ReminderAt != nil {
		task.Reminders = []models.Reminder{{
			ID:   newID(),
			At:   *parsed.ReminderAt,
			Kind: models.ReminderAbsolute,
		}}
	}
	return d.insertTask(task)
}

// AddFromText records free text as a task through the extraction pipeline.
// Exposed for surfaces that bypass the grammar, like the MCP tools.
func (d *Dispatcher) AddFromText(ctx context.Context, text string) (string, error) {
	return d.addFromText(ctx, text)
}

// Complete finishes matching tasks, regenerating recurring ones.
func (d *Dispatcher) Complete(text string, all bool) (string, error) {
	return d.tick(text, all)
}

// Delete removes matching tasks.
func (d *Dispatcher) Delete(text string, all bool) (string, error) {
	return d.deleteTasks(text, all)
}

// Summarize reports on the given period ("today", "tomorrow", "week").
func (d *Dispatcher) Summarize(period string) (string, error) {
	return d.summarize(period)
}

func (d *Dispatcher) emit(eventType, msg string, data map[string]any) {
	if d.events == nil {
		return
	}
	if err := d.events.Write(observability.Event{Type: eventType, Message: msg, Data: data}); err != nil {
		d.logger.Warn("event log write failed", "err", err)
	}
}
