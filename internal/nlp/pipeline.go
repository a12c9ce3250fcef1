// Package nlp is the natural-language interpretation layer: a tiered
// extraction pipeline (remote generative, remote intent classification,
// local heuristic) invoked when the rule grammar produces no match. Remote
// tiers degrade silently; the local tier always answers.
package nlp

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/valter-silva-au/tasktalk/pkg/models"
)

var (
	// ErrNotATask means the input looks like an application command, not a
	// task to record. The dispatcher should report it rather than create a
	// task from it.
	ErrNotATask = errors.New("input is a command, not a task")

	// ErrRemoteUnavailable means no remote collaborator is configured or
	// reachable.
	ErrRemoteUnavailable = errors.New("remote language service unavailable")
)

// Pipeline chains the tiers. A nil remote generator disables the remote
// tiers entirely and every call answers from the heuristic parser.
type Pipeline struct {
	generative *GenerativeExtractor
	classifier *IntentClassifier
	heuristic  *HeuristicParser
	logger     *log.Logger
}

// NewPipeline wires the tiers around one remote generator. remote may be a
// typed-nil *GeminiClient; it is treated as absent.
func NewPipeline(remote Generator, logger *log.Logger) *Pipeline {
	return NewPipelineAt(remote, logger, time.Now)
}

// NewPipelineAt is NewPipeline with an injected clock for deterministic
// date parsing in tests.
func NewPipelineAt(remote Generator, logger *log.Logger, now func() time.Time) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	p := &Pipeline{heuristic: NewHeuristicParserAt(now), logger: logger}
	if gc, ok := remote.(*GeminiClient); ok && gc == nil {
		remote = nil
	}
	if remote != nil {
		p.generative = newGenerativeExtractorAt(remote, logger, now)
		p.classifier = NewIntentClassifier(remote, logger)
	}
	return p
}

// Extract turns free text into a task record. The remote tier is tried
// first; its failures are logged and absorbed by the local tier, so the only
// returned error is ErrNotATask. The result always has a non-empty title and
// non-nil tags.
func (p *Pipeline) Extract(ctx context.Context, text string) (models.ParsedTask, error) {
	if p.generative != nil {
		task, err := p.generative.Extract(ctx, text)
		if err == nil {
			return task, nil
		}
		if errors.Is(err, ErrNotATask) {
			return models.ParsedTask{}, ErrNotATask
		}
		p.logger.Warn("remote extraction degraded to local parsing", "err", err)
	}
	return p.heuristic.Extract(text), nil
}

// Classify routes the input through the remote intent classifier. Unlike
// Extract there is no local fallback: callers receive ErrRemoteUnavailable
// (or the classification error) and decide what to do next.
func (p *Pipeline) Classify(ctx context.Context, text string) (models.Intent, error) {
	if p.classifier == nil {
		return models.Intent{}, ErrRemoteUnavailable
	}
	intent, err := p.classifier.Classify(ctx, text)
	if err != nil {
		p.logger.Warn("intent classification failed", "err", err)
		return models.Intent{}, err
	}
	return intent, nil
}
