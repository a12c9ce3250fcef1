package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/valter-silva-au/tasktalk/pkg/models"
)

// extractionPrompt instructs the model to answer with nothing but one JSON
// object. The few-shot answers double as the echo-detection corpus below.
const extractionPrompt = `You convert one line of user text into a task record.
Respond with ONLY a JSON object of the shape {"title": string, "due": string|null, "tags": string[], "priority": "high"|"medium"|"low"|null}.
Do not add commentary. Do not wrap the object in markdown.

Examples:
Input: buy milk tomorrow
Output: {"title": "Buy milk", "due": "tomorrow", "tags": [], "priority": null}
Input: finish the quarterly report by friday #work
Output: {"title": "Finish the quarterly report", "due": "friday", "tags": ["work"], "priority": null}
Input: water the plants
Output: {"title": "Water the plants", "due": null, "tags": [], "priority": null}

Input: %s
Output:`

// echoTitles are the example answers above, lowercased. A response matching
// one of these verbatim means the model parroted its examples instead of
// reading the input.
var echoTitles = []string{
	"buy milk",
	"finish the quarterly report",
	"water the plants",
}

// commandMarkers are phrases that mark the input as an instruction to the
// application rather than a task to record.
var commandMarkers = []string{
	"change all",
	"hashtag",
	"settings",
}

// GenerativeExtractor is the remote extraction tier: it asks the generation
// collaborator for a structured task record and repairs or rejects what comes
// back.
type GenerativeExtractor struct {
	remote Generator
	now    func() time.Time
	dates  *HeuristicParser
	logger *log.Logger
}

// NewGenerativeExtractor creates the extractor. The heuristic parser is
// borrowed for natural-language due-date strings in the response.
func NewGenerativeExtractor(remote Generator, logger *log.Logger) *GenerativeExtractor {
	return newGenerativeExtractorAt(remote, logger, time.Now)
}

func newGenerativeExtractorAt(remote Generator, logger *log.Logger, now func() time.Time) *GenerativeExtractor {
	if logger == nil {
		logger = log.Default()
	}
	return &GenerativeExtractor{remote: remote, now: now, dates: NewHeuristicParserAt(now), logger: logger}
}

// rawExtraction is the wire shape the model is asked for.
type rawExtraction struct {
	Title    string   `json:"title"`
	Due      string   `json:"due"`
	Tags     []string `json:"tags"`
	Priority string   `json:"priority"`
}

// Extract asks the remote collaborator to structure the text. ErrNotATask
// means the input is an application command and the caller should stop
// extraction entirely; any other error means fall through to local parsing.
func (e *GenerativeExtractor) Extract(ctx context.Context, text string) (models.ParsedTask, error) {
	lowered := strings.ToLower(text)
	for _, marker := range commandMarkers {
		if strings.Contains(lowered, marker) {
			return models.ParsedTask{}, ErrNotATask
		}
	}

	raw, err := e.remote.Generate(ctx, fmt.Sprintf(extractionPrompt, text))
	if err != nil {
		return models.ParsedTask{}, fmt.Errorf("remote extraction: %w", err)
	}

	parsed, err := e.decodeExtraction(raw)
	if err != nil {
		return models.ParsedTask{}, fmt.Errorf("remote extraction: %w", err)
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		return models.ParsedTask{}, fmt.Errorf("remote extraction: empty title in response")
	}
	for _, echo := range echoTitles {
		if strings.EqualFold(title, echo) && !strings.Contains(lowered, echo) {
			e.logger.Warn("remote extraction echoed a few-shot example", "title", title)
			return models.ParsedTask{}, fmt.Errorf("remote extraction: response echoed few-shot example %q", echo)
		}
	}

	task := models.ParsedTask{Title: title, Tags: []string{}}

	// The model's tag and priority guesses are only trusted when the raw
	// input carries an explicit marker. Hallucinated metadata is dropped.
	if hasExplicitTagMarker(text) {
		for _, tag := range parsed.Tags {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
				task.Tags = appendUnique(task.Tags, tag)
			}
		}
	}
	if hasExplicitPriorityMarker(text) {
		if prio, ok := models.ParsePriority(strings.ToLower(parsed.Priority)); ok {
			task.Priority = prio
		}
	}

	if due, ok := e.parseDue(parsed.Due); ok {
		task.Due = &due
	}
	return task, nil
}

// decodeExtraction pulls the first JSON object out of the response and
// decodes it, repairing truncation and loose quoting before giving up.
func (e *GenerativeExtractor) decodeExtraction(raw string) (rawExtraction, error) {
	obj := firstJSONObject(raw)
	if obj == "" {
		return rawExtraction{}, fmt.Errorf("no JSON object in response")
	}

	var parsed rawExtraction
	if err := json.Unmarshal([]byte(obj), &parsed); err == nil {
		return parsed, nil
	}

	repaired := completeBraces(obj)
	if err := json.Unmarshal([]byte(repaired), &parsed); err == nil {
		e.logger.Debug("repaired truncated extraction response")
		return parsed, nil
	}

	repaired = normalizeQuotes(repaired)
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		return rawExtraction{}, fmt.Errorf("unparseable JSON after repair: %w", err)
	}
	e.logger.Debug("repaired loosely quoted extraction response")
	return parsed, nil
}

// parseDue accepts the due formats the model actually produces: RFC 3339, a
// bare date, or a natural-language phrase.
func (e *GenerativeExtractor) parseDue(due string) (time.Time, bool) {
	due = strings.TrimSpace(due)
	if due == "" || strings.EqualFold(due, "null") {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, due); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02", due, time.Local); err == nil {
		return t, true
	}
	return e.dates.parseWhen(due, e.now())
}
