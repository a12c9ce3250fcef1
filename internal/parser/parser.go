// Package parser implements the deterministic rule-based command parser:
// an ordered list of pattern->extractor rules tested in sequence, first
// match wins. Input that matches no rule is reported as unknown with zero
// confidence so the natural-language pipeline can take over.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/valter-silva-au/tasktalk/pkg/models"
)

// Parser parses one line of already-trimmed, lower-cased user input into a
// structured Command.
type Parser struct {
	now func() time.Time
}

// New creates a Parser using the wall clock.
func New() *Parser {
	return &Parser{now: time.Now}
}

// NewAt creates a Parser with an injected clock for deterministic tests.
func NewAt(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// Parse runs the rule table in priority order and returns the first match.
// Unmatched input yields {Type: unknown, Confidence: 0} carrying the
// original text.
func (p *Parser) Parse(input string) models.Command {
	input = strings.ToLower(strings.TrimSpace(input))
	now := p.now()
	for _, r := range rules {
		if cmd, ok := r.extract(input, now); ok {
			cmd.Confidence = 1
			return cmd
		}
	}
	return models.Command{Type: models.CmdUnknown, Confidence: 0, TaskText: input}
}

// rule is one entry of the grammar: a name for test isolation and an
// extractor that either claims the input or declines it.
type rule struct {
	name    string
	extract func(input string, now time.Time) (models.Command, bool)
}

var (
	reAddSubtask   = regexp.MustCompile(`^add subtask (.+?) to (.+)$`)
	reAddToProject = regexp.MustCompile(`^add (.+?) to (.+) project$`)
	reAdd          = regexp.MustCompile(`^add (.+)$`)
	reTick         = regexp.MustCompile(`^(?:tick|complete) (all )?(.+)$`)
	reDelete       = regexp.MustCompile(`^(?:delete|remove) (all )?(.+)$`)
	reArchive      = regexp.MustCompile(`^archive (.+)$`)
	reTagAs        = regexp.MustCompile(`^tag (.+?) as ([\w-]+)$`)
	reCalendar     = regexp.MustCompile(`^(?:calendar|show calendar|hide calendar|toggle calendar)$`)
	reFilter       = regexp.MustCompile(`^filter ([\w-]+)$`)
	reShow         = regexp.MustCompile(`^show ([\w-]+?)(?: tasks)?$`)
	rePriority     = regexp.MustCompile(`^priority (.+) (high|medium|low)$`)
	reDue          = regexp.MustCompile(`^due (today|tomorrow|next [a-z]+) (.+)$`)
	reSnooze       = regexp.MustCompile(`^snooze (.+) (\d+) (days?|weeks?|months?)$`)
	reRepeatDaily  = regexp.MustCompile(`^repeat daily (.+)$`)
	reRepeatWeekly = regexp.MustCompile(`^repeat weekly on ([a-z]+) (.+)$`)
	reRepeatMonth  = regexp.MustCompile(`^repeat monthly (.+)$`)
	reRemindRel    = regexp.MustCompile(`^remind me (\d+) hours? before (.+)$`)
	reRemindAbs    = regexp.MustCompile(`^remind me (?:about )?(.+?) (today|tomorrow)(?: at)? (\d{1,2}(?::\d{2})?\s*(?:am|pm)?)$`)
	reNewProject   = regexp.MustCompile(`^create project (.+)$`)
	reSort         = regexp.MustCompile(`^sort by (priority|due date|created(?: date)?|alphabetical|name)$`)
	reSummarize    = regexp.MustCompile(`^summarize (today|this week|tomorrow)$`)
	reHelp         = regexp.MustCompile(`^(?:help|commands)$`)
	reDark         = regexp.MustCompile(`^dark(?: mode)?$`)
	reLight        = regexp.MustCompile(`^light(?: mode)?$`)

	reTrailingPriority = regexp.MustCompile(`\s+!([a-z]+)$`)
	reTrailingTag      = regexp.MustCompile(`\s+#([\w-]+)$`)
	reTrailingAs       = regexp.MustCompile(`\s+as ([\w-]+)$`)
)

// rules is the grammar in priority order. Sub-forms of add come before the
// generic add rule; the calendar literals come before filter/show so that
// "show calendar" is a toggle, not a tag filter.
var rules = []rule{
	{"add_subtask", func(in string, _ time.Time) (models.Command, bool) {
		m := reAddSubtask.FindStringSubmatch(in)
		if m == nil {
			return models.Command{}, false
		}
		return models.Command{Type: models.CmdAddSubtask, TaskText: m[1], ParentText: m[2]}, true
	}},
	{"add_to_project", func(in string, _ time.Time) (models.Command, bool) {
		m := reAddToProject.FindStringSubmatch(in)
		if m == nil {
			return models.Command{}, false
		}
		return models.Command{Type: models.CmdAdd, TaskText: m[1], ProjectName: m[2]}, true
	}},
	{"add", func(in string, _ time.Time) (models.Command, bool) {
		m := reAdd.FindStringSubmatch(in)
		if m == nil {
			return models.Command{}, false
		}
		cmd := models.Command{Type: models.CmdAdd}
		text := m[1]
		if pm := reTrailingPriority.FindStringSubmatch(text); pm != nil {
			if prio, ok := models.ParsePriority(pm[1]); ok {
				cmd.Priority = prio
				text = strings.TrimSuffix(text, pm[0])
			}
		}
		if tm := reTrailingTag.FindStringSubmatch(text); tm != nil {
			cmd.Tag = tm[1]
			text = strings.TrimSuffix(text, tm[0])
		} else if am := reTrailingAs.FindStringSubmatch(text); am != nil {
			cmd.Tag = am[1]
			text = strings.TrimSuffix(text, am[0])
		}
		cmd.TaskText = strings.TrimSpace(text)
		return cmd, cmd.TaskText != ""
	}},
	{"tick", func(in string, _ time.Time) (models.Command, bool) {
		m := reTick.FindStringSubmatch(in)
		if m == nil {
			return models.Command{}, false
		}
		return models.Command{Type: models.CmdTick, TaskText: m[2], AllMatches: m[1] != ""}, true
	}},
	{"delete", func(in string, _ time.Time) (models.Command, bool) {
		m := reDelete.FindStringSubmatch(in)
		if m == nil {
			return models.Command{}, false
		}
		return models.Command{Type: models.CmdDelete, TaskText: m[2], AllMatches: m[1] != ""}, true
	}},
	{"archive", func(in string, _ time.Time) (models.Command, bool) {
		m := reArchive.FindStringSubmatch(in)
		if m == nil {
			return models.Command{}, false
		}
		cmd := models.Command{Type: models.CmdArchive, TaskText: m[1]}
		// "archive completed" is a shortcut for all completed tasks.
		if m[1] == "completed" {
			cmd.AllMatches = true
		}
		return cmd, true
	}},
	{"tag_as", func(in string, _ time.Time) (models.Command, bool) {
		m := reTagAs.FindStringSubmatch(in)
		if m == nil {
			return models.Command{}, false
		}
		return models.Command{Type: models.CmdTag, TaskText: m[1], Tag: m[2]}, true
	}},
	{"calendar", func(in string, _ time.Time) (models.Command, bool) {
		if !reCalendar.MatchString(in) {
			return models.Command{}, false
		}
		return models.Command{Type: models.CmdCalendar}, true
	}},
	{"filter", func(in string, _ time.Time) (models.Command, bool) {
		if m := reFilter.FindStringSubmatch(in); m != nil {
			return models.Command{Type: models.CmdFilter, Tag: m[1]}, true
		}
		if m := reShow.FindStringSubmatch(in); m != nil {
			return models.Command{Type: models.CmdFilter, Tag: m[1]}, true
		}
		return models.Command{}, false
	}},
	{"priority", func(in string, _ time.Time) (models.Command, bool) {
		m := rePriority.FindStringSubmatch(in)
		if m == nil {
			return models.Command{}, false
		}
		prio, _ := models.ParsePriority(m[2])
		return models.Command{Type: models.CmdPriority, TaskText: m[1], Priority: prio}, true
	}},
	{"due", func(in string, now time.Time) (models.Command, bool) {
		m := reDue.FindStringSubmatch(in)
		if m == nil {
			return models.Command{}, false
		}
		due, ok := resolveDueSpec(m[1], now)
		if !ok {
			// Malformed spec falls through to unknown, no partial match.
			return models.Command{}, false
		}
		return models.Command{Type: models.CmdDue, TaskText: m[2], DueDate: &due}, true
	}},
	{"snooze", func(in string, _ time.Time) (models.Command, bool) {
		m := reSnooze.FindStringSubmatch(in)
		if m == nil {
			return models.Command{}, false
		}
		n, _ := strconv.Atoi(m[2])
		return models.Command{Type: models.CmdSnooze, TaskText: m[1], SnoozeAmount: n, SnoozeUnit: m[3]}, true
	}},
	{"repeat", func(in string, _ time.Time) (models.Command, bool) {
		if m := reRepeatDaily.FindStringSubmatch(in); m != nil {
			return models.Command{
				Type:       models.CmdRepeat,
				TaskText:   m[1],
				Recurrence: &models.RecurrenceRule{Type: models.RecurDaily, Interval: 1},
			}, true
		}
		if m := reRepeatWeekly.FindStringSubmatch(in); m != nil {
			wd, ok := weekdayNames[m[1]]
			if !ok {
				return models.Command{}, false
			}
			return models.Command{
				Type:     models.CmdRepeat,
				TaskText: m[2],
				Recurrence: &models.RecurrenceRule{
					Type:       models.RecurWeekly,
					Interval:   1,
					DaysOfWeek: []int{int(wd)},
				},
			}, true
		}
		if m := reRepeatMonth.FindStringSubmatch(in); m != nil {
			return models.Command{
				Type:       models.CmdRepeat,
				TaskText:   m[1],
				Recurrence: &models.RecurrenceRule{Type: models.RecurMonthly, Interval: 1},
			}, true
		}
		return models.Command{}, false
	}},
	{"remind_relative", func(in string, _ time.Time) (models.Command, bool) {
		m := reRemindRel.FindStringSubmatch(in)
		if m == nil {
			return models.Command{}, false
		}
		hours, _ := strconv.Atoi(m[1])
		return models.Command{Type: models.CmdRemind, TaskText: m[2], ReminderOffsetHours: hours}, true
	}},
	{"remind_absolute", func(in string, now time.Time) (models.Command, bool) {
		m := reRemindAbs.FindStringSubmatch(in)
		if m == nil {
			return models.Command{}, false
		}
		hour, minute, ok := ParseClock(m[3])
		if !ok {
			return models.Command{}, false
		}
		day := now
		if m[2] == "tomorrow" {
			day = now.AddDate(0, 0, 1)
		}
		at := AtClock(day, hour, minute)
		return models.Command{Type: models.CmdRemind, TaskText: m[1], ReminderAt: &at}, true
	}},
	{"project", func(in string, _ time.Time) (models.Command, bool) {
		if in == "list projects" {
			return models.Command{Type: models.CmdListProjects}, true
		}
		if m := reNewProject.FindStringSubmatch(in); m != nil {
			return models.Command{Type: models.CmdProject, ProjectName: m[1]}, true
		}
		return models.Command{}, false
	}},
	{"sort", func(in string, _ time.Time) (models.Command, bool) {
		m := reSort.FindStringSubmatch(in)
		if m == nil {
			return models.Command{}, false
		}
		return models.Command{Type: models.CmdSort, SortBy: canonicalSortKey(m[1])}, true
	}},
	{"dark", func(in string, _ time.Time) (models.Command, bool) {
		if !reDark.MatchString(in) {
			return models.Command{}, false
		}
		return models.Command{Type: models.CmdDark}, true
	}},
	{"light", func(in string, _ time.Time) (models.Command, bool) {
		if !reLight.MatchString(in) {
			return models.Command{}, false
		}
		return models.Command{Type: models.CmdLight}, true
	}},
	{"summarize", func(in string, _ time.Time) (models.Command, bool) {
		m := reSummarize.FindStringSubmatch(in)
		if m == nil {
			return models.Command{}, false
		}
		period := m[1]
		if period == "this week" {
			period = "week"
		}
		return models.Command{Type: models.CmdSummarize, Period: period}, true
	}},
	{"help", func(in string, _ time.Time) (models.Command, bool) {
		if !reHelp.MatchString(in) {
			return models.Command{}, false
		}
		return models.Command{Type: models.CmdHelp}, true
	}},
}

// canonicalSortKey normalizes the sort-by vocabulary to a single key per sort.
func canonicalSortKey(s string) string {
	switch s {
	case "due date":
		return "due"
	case "created", "created date":
		return "created"
	case "alphabetical", "name":
		return "alphabetical"
	}
	return s
}
