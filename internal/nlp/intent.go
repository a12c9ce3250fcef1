package nlp

import (
	"context"
	"encoding/json"
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/tasktalk/pkg/models"
)

//go:embed examples.yaml
var examplesYAML []byte

type intentExample struct {
	Text  string `yaml:"text"`
	Label string `yaml:"label"`
}

type exampleCorpus struct {
	Examples []intentExample `yaml:"examples"`
}

var intentLabels = []models.IntentLabel{
	models.IntentAddTask,
	models.IntentCompleteTask,
	models.IntentDeleteTask,
	models.IntentChangeTag,
	models.IntentSetPriority,
	models.IntentFilterTasks,
	models.IntentHelp,
}

// Entity regexes keyed by label: once the classifier names the intent, the
// operand text is pulled out locally rather than trusted from the model.
var (
	addEntityRe      = regexp.MustCompile(`(?i)\b(?:add|create|remember(?:\s+to)?|i\s+need\s+to|need\s+to)\s+(?:a\s+task\s+(?:for|to)\s+)?([^#]+)`)
	completeEntityRe = regexp.MustCompile(`(?i)\b(?:complete|mark|tick(?:\s+off)?|finish|delete|remove|erase|get\s+rid\s+of)\s+(?:the\s+)?(.+?)(?:\s+(?:as\s+done|task))?$`)
	tagEntityRe      = regexp.MustCompile(`(?i)\b(?:to|as)\s+(\w+)\s*$`)
	priorityEntityRe = regexp.MustCompile(`(?i)\b(high|medium|low|urgent|normal|important)\b`)
	filterTagRe      = regexp.MustCompile(`(?i)\btag(?:ged)?\s+(?:with\s+)?(\w+)`)
	filterEntityRe   = regexp.MustCompile(`(?i)\b(?:show(?:\s+me)?|display|for|about)\s+(?:the\s+|only\s+|everything\s+)?(\w+)`)
)

// IntentClassifier is the remote intent-routing tier: a fixed-label few-shot
// classifier over the embedded corpus.
type IntentClassifier struct {
	remote   Generator
	examples []intentExample
	logger   *log.Logger
}

// NewIntentClassifier loads the embedded corpus. Corpus decode failure is a
// build defect, not a runtime condition, so it panics.
func NewIntentClassifier(remote Generator, logger *log.Logger) *IntentClassifier {
	if logger == nil {
		logger = log.Default()
	}
	var corpus exampleCorpus
	if err := yaml.Unmarshal(examplesYAML, &corpus); err != nil {
		panic(fmt.Sprintf("decoding embedded intent examples: %v", err))
	}
	return &IntentClassifier{remote: remote, examples: corpus.Examples, logger: logger}
}

type rawIntent struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classify scores the input against the fixed label set and returns the top
// label plus locally-extracted operand text.
func (c *IntentClassifier) Classify(ctx context.Context, text string) (models.Intent, error) {
	raw, err := c.remote.Generate(ctx, c.buildPrompt(text))
	if err != nil {
		return models.Intent{}, fmt.Errorf("intent classification: %w", err)
	}

	obj := firstJSONObject(raw)
	if obj == "" {
		return models.Intent{}, fmt.Errorf("intent classification: no JSON object in response")
	}

	var parsed rawIntent
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		if err = json.Unmarshal([]byte(normalizeQuotes(completeBraces(obj))), &parsed); err != nil {
			return models.Intent{}, fmt.Errorf("intent classification: unparseable response: %w", err)
		}
		c.logger.Debug("repaired malformed intent response")
	}

	label, ok := validLabel(parsed.Label)
	if !ok {
		return models.Intent{}, fmt.Errorf("intent classification: unknown label %q", parsed.Label)
	}

	return models.Intent{
		Label:      label,
		Confidence: parsed.Confidence,
		Text:       entityFor(label, text),
	}, nil
}

func (c *IntentClassifier) buildPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Classify the user's message into exactly one of these labels: ")
	for i, label := range intentLabels {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(label))
	}
	b.WriteString(".\nRespond with ONLY a JSON object {\"label\": string, \"confidence\": number between 0 and 1}.\n\nExamples:\n")
	for _, ex := range c.examples {
		fmt.Fprintf(&b, "Message: %s\nLabel: %s\n", ex.Text, ex.Label)
	}
	fmt.Fprintf(&b, "\nMessage: %s\nOutput:", text)
	return b.String()
}

func validLabel(s string) (models.IntentLabel, bool) {
	candidate := models.IntentLabel(strings.ToLower(strings.TrimSpace(s)))
	for _, label := range intentLabels {
		if candidate == label {
			return label, true
		}
	}
	return "", false
}

// entityFor extracts the operand for the given label with local regexes.
func entityFor(label models.IntentLabel, text string) string {
	switch label {
	case models.IntentAddTask:
		if m := addEntityRe.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	case models.IntentCompleteTask, models.IntentDeleteTask:
		if m := completeEntityRe.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	case models.IntentChangeTag:
		if m := tagEntityRe.FindStringSubmatch(text); m != nil {
			return strings.ToLower(m[1])
		}
	case models.IntentSetPriority:
		if m := priorityEntityRe.FindStringSubmatch(text); m != nil {
			return strings.ToLower(m[1])
		}
	case models.IntentFilterTasks:
		if m := filterTagRe.FindStringSubmatch(text); m != nil {
			return strings.ToLower(m[1])
		}
		if m := filterEntityRe.FindStringSubmatch(text); m != nil {
			return strings.ToLower(m[1])
		}
	}
	return strings.TrimSpace(text)
}
