package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/valter-silva-au/tasktalk/internal/observability"
	"github.com/valter-silva-au/tasktalk/internal/parser"
	"github.com/valter-silva-au/tasktalk/internal/store"
	"github.com/valter-silva-au/tasktalk/pkg/models"
)

func newID() string {
	return uuid.NewString()
}

func (d *Dispatcher) newTask(title string) models.Task {
	return models.Task{
		ID:        newID(),
		Title:     title,
		Status:    models.StatusPending,
		Tags:      []string{},
		CreatedAt: d.now(),
	}
}

// matchTitle is the search predicate for text-addressed commands:
// case-insensitive substring containment against the title.
func matchTitle(t models.Task, text string) bool {
	return strings.Contains(strings.ToLower(t.Title), strings.ToLower(text))
}

// mutateMatching applies fn to matching non-archived tasks while rebuilding
// the full list. Without all, exactly the first match is mutated; iteration
// still visits every task so the rebuilt list is complete.
func (d *Dispatcher) mutateMatching(text string, all bool, fn func(*models.Task)) (int, error) {
	count := 0
	err := d.store.Apply(func(tasks []models.Task) []models.Task {
		out := make([]models.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.Status != models.StatusArchived && matchTitle(t, text) && (all || count == 0) {
				fn(&t)
				count++
			}
			out = append(out, t)
		}
		return out
	})
	return count, err
}

func noMatch(text string) string {
	return fmt.Sprintf("No matching tasks found for %q", text)
}

// addCommand handles the grammar's add forms, including add-to-project.
func (d *Dispatcher) addCommand(cmd models.Command) (string, error) {
	task := d.newTask(cmd.TaskText)
	if cmd.Tag != "" {
		task.Tags = []string{cmd.Tag}
	}
	task.Priority = cmd.Priority

	if cmd.ProjectName != "" {
		project, err := d.store.EnsureProject(cmd.ProjectName)
		if err != nil {
			return "", err
		}
		task.ProjectID = project.ID
	}
	return d.insertTask(task)
}

// insertTask persists the task and reports conflicts against the schedule as
// it stood before the insert.
func (d *Dispatcher) insertTask(task models.Task) (string, error) {
	conflict := d.conflicts.Detect(task, d.store.Snapshot())

	if err := d.store.Apply(func(tasks []models.Task) []models.Task {
		return append(tasks, task)
	}); err != nil {
		return "", err
	}
	d.emit(observability.EventTaskCreated, task.Title, map[string]any{"id": task.ID})

	msg := fmt.Sprintf("Added %q", task.Title)
	if task.DueDate != nil {
		msg += fmt.Sprintf(", due %s", task.DueDate.Format("Mon Jan 2 15:04"))
	}
	if conflict.HasConflict {
		msg += fmt.Sprintf(". Heads up: it overlaps %d scheduled task(s)", len(conflict.Conflicting))
		if conflict.SuggestedStart != nil {
			msg += fmt.Sprintf("; %s looks free", conflict.SuggestedStart.Format("Mon Jan 2 15:04"))
		}
	}
	return msg, nil
}

func (d *Dispatcher) addSubtask(cmd models.Command) (string, error) {
	sub := models.Subtask{ID: newID(), Text: cmd.TaskText}
	count, err := d.mutateMatching(cmd.ParentText, false, func(t *models.Task) {
		t.Subtasks = append(t.Subtasks, sub)
	})
	if err != nil {
		return "", err
	}
	if count == 0 {
		return noMatch(cmd.ParentText), nil
	}
	return fmt.Sprintf("Added subtask %q to %q", cmd.TaskText, cmd.ParentText), nil
}

// tick completes matching pending tasks. Completing a recurring task
// regenerates its next instance in the same mutation; the completed original
// stays in the store.
func (d *Dispatcher) tick(text string, all bool) (string, error) {
	count := 0
	regeneratedTitles := []string{}
	err := d.store.Apply(func(tasks []models.Task) []models.Task {
		out := make([]models.Task, 0, len(tasks))
		var regenerated []models.Task
		for _, t := range tasks {
			if !t.Done && t.Status != models.StatusArchived && matchTitle(t, text) && (all || count == 0) {
				t.SetCompleted()
				count++
				if next, ok := d.recurrence.Regenerate(t, d.now()); ok {
					regenerated = append(regenerated, next)
					regeneratedTitles = append(regeneratedTitles, next.Title)
				}
			}
			out = append(out, t)
		}
		return append(out, regenerated...)
	})
	if err != nil {
		return "", err
	}
	if count == 0 {
		return noMatch(text), nil
	}

	d.emit(observability.EventTaskCompleted, text, map[string]any{"count": count})
	msg := fmt.Sprintf("Completed %d task(s) matching %q", count, text)
	if len(regeneratedTitles) > 0 {
		d.emit(observability.EventTaskRegenerated, strings.Join(regeneratedTitles, ", "), nil)
		msg += fmt.Sprintf(". Next occurrence of %q scheduled", regeneratedTitles[0])
	}
	return msg, nil
}

func (d *Dispatcher) deleteTasks(text string, all bool) (string, error) {
	count := 0
	err := d.store.Apply(func(tasks []models.Task) []models.Task {
		out := make([]models.Task, 0, len(tasks))
		for _, t := range tasks {
			if matchTitle(t, text) && (all || count == 0) {
				count++
				continue
			}
			out = append(out, t)
		}
		return out
	})
	if err != nil {
		return "", err
	}
	if count == 0 {
		return noMatch(text), nil
	}
	d.emit(observability.EventTaskDeleted, text, map[string]any{"count": count})
	return fmt.Sprintf("Deleted %d task(s) matching %q", count, text), nil
}

// archive moves tasks out of the active list. "archive completed" archives
// every done task; any other text archives the first title match.
func (d *Dispatcher) archive(cmd models.Command) (string, error) {
	count := 0
	err := d.store.Apply(func(tasks []models.Task) []models.Task {
		out := make([]models.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.Status != models.StatusArchived {
				archiveAllDone := cmd.AllMatches && t.Done
				archiveByText := !cmd.AllMatches && matchTitle(t, cmd.TaskText) && count == 0
				if archiveAllDone || archiveByText {
					t.Status = models.StatusArchived
					count++
				}
			}
			out = append(out, t)
		}
		return out
	})
	if err != nil {
		return "", err
	}
	if count == 0 {
		return noMatch(cmd.TaskText), nil
	}
	return fmt.Sprintf("Archived %d task(s)", count), nil
}

func (d *Dispatcher) tag(text, tag string) (string, error) {
	count, err := d.mutateMatching(text, false, func(t *models.Task) {
		for _, have := range t.Tags {
			if have == tag {
				return
			}
		}
		t.Tags = append(t.Tags, tag)
	})
	if err != nil {
		return "", err
	}
	if count == 0 {
		return noMatch(text), nil
	}
	return fmt.Sprintf("Tagged %q as #%s", text, tag), nil
}

// filter is read-only: it reports the matching tasks without mutating.
func (d *Dispatcher) filter(tag string) (string, error) {
	var titles []string
	for _, t := range d.store.Snapshot() {
		if t.Status == models.StatusArchived {
			continue
		}
		if t.HasTag(tag) || matchTitle(t, tag) {
			titles = append(titles, t.Title)
		}
	}
	if len(titles) == 0 {
		return fmt.Sprintf("No tasks matching #%s", tag), nil
	}
	return fmt.Sprintf("%d task(s) matching #%s: %s", len(titles), tag, strings.Join(titles, ", ")), nil
}

func (d *Dispatcher) setPriority(text string, prio models.Priority) (string, error) {
	count, err := d.mutateMatching(text, false, func(t *models.Task) {
		t.Priority = prio
	})
	if err != nil {
		return "", err
	}
	if count == 0 {
		return noMatch(text), nil
	}
	return fmt.Sprintf("Set %q to %s priority", text, prio), nil
}

func (d *Dispatcher) setDue(text string, due time.Time) (string, error) {
	var updated *models.Task
	count, err := d.mutateMatching(text, false, func(t *models.Task) {
		t.DueDate = &due
		clone := t.Clone()
		updated = &clone
	})
	if err != nil {
		return "", err
	}
	if count == 0 {
		return noMatch(text), nil
	}

	msg := fmt.Sprintf("Due date for %q set to %s", text, due.Format("Mon Jan 2"))
	if updated != nil {
		if conflict := d.conflicts.Detect(*updated, d.store.Snapshot()); conflict.HasConflict {
			msg += fmt.Sprintf(". Heads up: it overlaps %d scheduled task(s)", len(conflict.Conflicting))
		}
	}
	return msg, nil
}

// snooze shifts the due date forward. A task without a due date is snoozed
// relative to the end of today.
func (d *Dispatcher) snooze(cmd models.Command) (string, error) {
	now := d.now()
	count, err := d.mutateMatching(cmd.TaskText, false, func(t *models.Task) {
		base := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
		if t.DueDate != nil {
			base = *t.DueDate
		}
		shifted := parser.AddSnooze(base, cmd.SnoozeAmount, cmd.SnoozeUnit)
		t.DueDate = &shifted
	})
	if err != nil {
		return "", err
	}
	if count == 0 {
		return noMatch(cmd.TaskText), nil
	}
	return fmt.Sprintf("Snoozed %q by %d %s", cmd.TaskText, cmd.SnoozeAmount, cmd.SnoozeUnit), nil
}

func (d *Dispatcher) repeat(text string, rule *models.RecurrenceRule) (string, error) {
	count, err := d.mutateMatching(text, false, func(t *models.Task) {
		t.Recurring = rule
	})
	if err != nil {
		return "", err
	}
	if count == 0 {
		return noMatch(text), nil
	}
	return fmt.Sprintf("%q now repeats %s", text, rule.Type), nil
}

// remind attaches a reminder to the first matching task. Relative reminders
// need a due date to count back from.
func (d *Dispatcher) remind(cmd models.Command) (string, error) {
	missingDue := false
	var firesAt time.Time
	count, err := d.mutateMatching(cmd.TaskText, false, func(t *models.Task) {
		if cmd.ReminderAt != nil {
			firesAt = *cmd.ReminderAt
			t.Reminders = append(t.Reminders, models.Reminder{
				ID:   newID(),
				At:   firesAt,
				Kind: models.ReminderAbsolute,
			})
			return
		}
		if t.DueDate == nil {
			missingDue = true
			return
		}
		firesAt = t.DueDate.Add(-time.Duration(cmd.ReminderOffsetHours) * time.Hour)
		t.Reminders = append(t.Reminders, models.Reminder{
			ID:            newID(),
			At:            firesAt,
			Kind:          models.ReminderRelative,
			OffsetMinutes: cmd.ReminderOffsetHours * 60,
		})
	})
	if err != nil {
		return "", err
	}
	if count == 0 {
		return noMatch(cmd.TaskText), nil
	}
	if missingDue {
		return fmt.Sprintf("%q has no due date to count back from. Set one first with \"due\"", cmd.TaskText), nil
	}
	return fmt.Sprintf("Reminder for %q set for %s", cmd.TaskText, firesAt.Format("Mon Jan 2 15:04")), nil
}

func (d *Dispatcher) createProject(name string) (string, error) {
	project, err := d.store.EnsureProject(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Project %q ready", project.Name), nil
}

func (d *Dispatcher) listProjects() (string, error) {
	projects := d.store.Projects()
	if len(projects) == 0 {
		return "No projects yet. Create one with \"create project <name>\"", nil
	}
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	return "Projects: " + strings.Join(names, ", "), nil
}

func (d *Dispatcher) setSort(key string) (string, error) {
	if err := d.store.UpdatePrefs(func(p *store.Prefs) { p.SortBy = key }); err != nil {
		return "", err
	}
	return fmt.Sprintf("Sorting by %s", key), nil
}

func (d *Dispatcher) toggleCalendar() (string, error) {
	visible := false
	if err := d.store.UpdatePrefs(func(p *store.Prefs) {
		p.CalendarVisible = !p.CalendarVisible
		visible = p.CalendarVisible
	}); err != nil {
		return "", err
	}
	if visible {
		return "Calendar shown", nil
	}
	return "Calendar hidden", nil
}

func (d *Dispatcher) setDarkMode(on bool) (string, error) {
	if err := d.store.UpdatePrefs(func(p *store.Prefs) { p.DarkMode = on }); err != nil {
		return "", err
	}
	if on {
		return "Dark mode on", nil
	}
	return "Light mode on", nil
}
