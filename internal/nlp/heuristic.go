package nlp

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/valter-silva-au/tasktalk/pkg/models"
)

var (
	deleteTagsRe = regexp.MustCompile(`(?i)\b(?:delete|remove|clear)\s+(?:all\s+)?(?:the\s+)?(?:tags?|hashtags?)\b`)
	hashTagRe    = regexp.MustCompile(`#([A-Za-z0-9_-]+)`)
	tagIsRe      = regexp.MustCompile(`(?i)\b(?:hash)?tag\s+is\s+([A-Za-z0-9_-]+)`)

	bangPriorityRe = regexp.MustCompile(`!([A-Za-z]+)`)
	priorityIsRe   = regexp.MustCompile(`(?i)\bpriority\s+is\s+([A-Za-z]+)`)

	reminderIntroRe = regexp.MustCompile(`(?i)^(?:please\s+)?(?:remind|alert|notify)\s+me\b[\s,]*`)

	// Reminder splits, tried in order from most to least structured: task
	// then time, time then task, and finally the bare remainder with the
	// date parser locating the time span.
	reminderTaskTimeRe = regexp.MustCompile(`(?i)^(?:to|of|about)\s+(.+?)\s+((?:today|tomorrow|tonight|this|next|on|at|in)\b.+)$`)
	reminderTimeTaskRe = regexp.MustCompile(`(?i)^((?:today|tomorrow|tonight|this|next|on|at|in)\b.+?)\s+(?:to|of|about)\s+(.+)$`)
	reminderBareRe     = regexp.MustCompile(`(?i)^(?:to|of|about)?\s*(.+)$`)

	leadingVerbRe = regexp.MustCompile(`(?i)^(?:please\s+)?(?:add|create|remember(?:\s+to)?|i\s+need\s+to|need\s+to)\s+`)

	datePhraseRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:next\s+)?(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
		regexp.MustCompile(`(?i)\b(?:today|tomorrow|tonight)\b`),
		regexp.MustCompile(`(?i)\b(?:at\s+)?\d{1,2}(?::\d{2})?\s*(?:am|pm)\b`),
		regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(?:st|nd|rd|th)?\b`),
		regexp.MustCompile(`(?i)\bnext\s+week\b`),
	}

	danglingPrepRe = regexp.MustCompile(`(?i)\s+\b(?:on|by|at|in|due)\b\s*$`)
	spaceRunRe     = regexp.MustCompile(`\s{2,}`)
	punctOnlyRe    = regexp.MustCompile(`^[\s[:punct:]]*$`)
)

// protectedTerms are observance names that embed weekday words. Date-phrase
// stripping would otherwise mangle them ("good friday" losing its friday).
var protectedTerms = []string{
	"good friday",
	"palm sunday",
	"easter sunday",
	"ash wednesday",
	"maundy thursday",
}

var protectedTermRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(protectedTerms))
	for i, term := range protectedTerms {
		res[i] = regexp.MustCompile(`(?i)\b` + strings.ReplaceAll(term, " ", `\s+`) + `\b`)
	}
	return res
}()

// HeuristicParser is the fully local extraction fallback. It cannot fail:
// every input yields a task with a non-empty title and non-nil tags.
type HeuristicParser struct {
	now func() time.Time
	w   *when.Parser
}

// NewHeuristicParser creates a parser anchored to the wall clock.
func NewHeuristicParser() *HeuristicParser {
	return NewHeuristicParserAt(time.Now)
}

// NewHeuristicParserAt creates a parser with an injected clock for tests.
func NewHeuristicParserAt(now func() time.Time) *HeuristicParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &HeuristicParser{now: now, w: w}
}

// Extract recovers a task record from free text without network access.
func (p *HeuristicParser) Extract(text string) models.ParsedTask {
	original := strings.TrimSpace(text)
	now := p.now()

	task := models.ParsedTask{Tags: []string{}}
	work := original

	// Delete-tags phrasing means any tag-looking tokens are operands of the
	// requested change, not tags for this task.
	suppressTags := deleteTagsRe.MatchString(work)

	if !suppressTags {
		for _, m := range hashTagRe.FindAllStringSubmatch(work, -1) {
			task.Tags = appendUnique(task.Tags, strings.ToLower(m[1]))
		}
		if m := tagIsRe.FindStringSubmatch(work); m != nil {
			task.Tags = appendUnique(task.Tags, strings.ToLower(m[1]))
		}
		work = hashTagRe.ReplaceAllString(work, "")
		work = tagIsRe.ReplaceAllString(work, "")
	}

	// Only a recognized priority word counts as a marker; "!asap" stays in
	// the title.
	work = bangPriorityRe.ReplaceAllStringFunc(work, func(match string) string {
		prio, ok := models.ParsePriority(strings.ToLower(strings.TrimPrefix(match, "!")))
		if !ok {
			return match
		}
		if task.Priority == "" {
			task.Priority = prio
		}
		return ""
	})
	if m := priorityIsRe.FindStringSubmatch(work); m != nil {
		if prio, ok := models.ParsePriority(strings.ToLower(m[1])); ok && task.Priority == "" {
			task.Priority = prio
		}
		work = priorityIsRe.ReplaceAllString(work, "")
	}

	work = tidy(work)

	var title string
	if loc := reminderIntroRe.FindStringIndex(work); loc != nil {
		remainder := work[loc[1]:]
		title = p.extractReminder(remainder, now, &task)
	} else {
		title = p.extractGeneric(work, original, now, &task)
	}

	if title == "" || punctOnlyRe.MatchString(title) {
		title = tidy(reminderIntroRe.ReplaceAllString(original, ""))
	}
	if title == "" || punctOnlyRe.MatchString(title) {
		title = "Task"
	}

	task.Title = capitalize(title)
	return task
}

// extractReminder splits a reminder phrase into a time expression and a task
// description, trying the three patterns in order. The parsed time becomes
// both the due date and the reminder fire time.
func (p *HeuristicParser) extractReminder(remainder string, now time.Time, task *models.ParsedTask) string {
	if m := reminderTaskTimeRe.FindStringSubmatch(remainder); m != nil {
		if due, ok := p.parseWhen(m[2], now); ok {
			task.Due = &due
			task.ReminderAt = &due
			return tidy(m[1])
		}
	}
	if m := reminderTimeTaskRe.FindStringSubmatch(remainder); m != nil {
		if due, ok := p.parseWhen(m[1], now); ok {
			task.Due = &due
			task.ReminderAt = &due
			return tidy(m[2])
		}
	}
	if m := reminderBareRe.FindStringSubmatch(remainder); m != nil {
		body := m[1]
		if r, err := p.w.Parse(body, now); err == nil && r != nil {
			due := r.Time
			task.Due = &due
			task.ReminderAt = &due
			stripped := body[:r.Index] + body[r.Index+len(r.Text):]
			return tidy(danglingPrepRe.ReplaceAllString(tidy(stripped), ""))
		}
		return tidy(body)
	}
	return tidy(remainder)
}

// extractGeneric strips leading verbs and date phrases from the working text
// while the due date is parsed independently from the original, unstripped
// input. Protected observance names survive the stripping intact.
func (p *HeuristicParser) extractGeneric(work, original string, now time.Time, task *models.ParsedTask) string {
	work = leadingVerbRe.ReplaceAllString(work, "")

	// Shield observance names behind placeholders so the weekday regexes
	// cannot bite pieces out of them.
	saved := make([]string, 0, 2)
	for _, re := range protectedTermRes {
		work = re.ReplaceAllStringFunc(work, func(match string) string {
			saved = append(saved, match)
			return fmt.Sprintf("\x00%d\x00", len(saved)-1)
		})
	}

	for _, re := range datePhraseRes {
		work = re.ReplaceAllString(work, "")
	}
	work = tidy(work)
	work = danglingPrepRe.ReplaceAllString(work, "")

	for i, match := range saved {
		work = strings.ReplaceAll(work, fmt.Sprintf("\x00%d\x00", i), match)
	}
	work = tidy(work)

	if due, ok := p.parseWhen(original, now); ok {
		task.Due = &due
	}
	return work
}

// parseWhen runs the natural-language date parser and reports whether it
// found anything.
func (p *HeuristicParser) parseWhen(text string, now time.Time) (time.Time, bool) {
	r, err := p.w.Parse(text, now)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	return r.Time, true
}

// tidy collapses whitespace runs and trims surrounding space and loose
// punctuation left behind by phrase removal.
func tidy(s string) string {
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.Trim(s, " \t,.;:")
}

func capitalize(s string) string {
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// hasExplicitTagMarker reports whether the raw input carries an explicit tag
// marker or a delete-tags phrase. Remote extractors' tag guesses are only
// trusted when this returns true.
func hasExplicitTagMarker(text string) bool {
	return hashTagRe.MatchString(text) || tagIsRe.MatchString(text) || deleteTagsRe.MatchString(text)
}

// hasExplicitPriorityMarker reports whether the raw input carries an explicit
// priority marker.
func hasExplicitPriorityMarker(text string) bool {
	return bangPriorityRe.MatchString(text) || priorityIsRe.MatchString(text)
}
