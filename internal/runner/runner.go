// Package runner evaluates extraction models over a labelled dataset, one
// conversation at a time.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"lead-extract-eval/internal/aggregator"
	"lead-extract-eval/internal/compare"
	"lead-extract-eval/internal/dataset"
	"lead-extract-eval/internal/extractor"
	"lead-extract-eval/internal/logger"
	"lead-extract-eval/internal/normalize"
	"lead-extract-eval/internal/types"
)

// Variant is one model + prompt combination to evaluate.
type Variant struct {
	Model      string
	PromptName string
	Prompt     string
}

// RunState carries counters across every variant of a run. It is passed
// into and returned from each evaluation; nothing else mutates it.
type RunState struct {
	RunID            string          `json:"run_id"`
	Calls            int             `json:"calls"`
	ExtractionErrors int             `json:"extraction_errors"`
	Usage            extractor.Usage `json:"usage"`
	Latency          time.Duration   `json:"latency"`
}

// NewRunState starts a run with a fresh id.
func NewRunState() RunState {
	return RunState{RunID: uuid.New().String()}
}

// ConversationResult is the outcome for one conversation.
type ConversationResult struct {
	ChatID     string                 `json:"chat_id"`
	Skipped    bool                   `json:"skipped,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Prediction types.CanonicalRecord  `json:"prediction"`
	Expected   types.CanonicalRecord  `json:"expected"`
	Result     types.ComparisonResult `json:"result,omitempty"`
	LatencyMs  int64                  `json:"latency_ms"`
}

// ModelReport is the result of evaluating one Variant.
type ModelReport struct {
	Model            string               `json:"model"`
	Prompt           string               `json:"prompt"`
	Summary          aggregator.Summary   `json:"summary"`
	Usage            extractor.Usage      `json:"usage"`
	ExtractionErrors int                  `json:"extraction_errors"`
	TotalLatencyMs   int64                `json:"total_latency_ms"`
	AvgLatencyMs     float64              `json:"avg_latency_ms"`
	Conversations    []ConversationResult `json:"conversations"`
}

// Runner holds the inputs shared by every variant.
type Runner struct {
	extractor     extractor.Extractor
	conversations []types.Conversation
	groundTruth   dataset.GroundTruth
	opts          normalize.Options
	log           *logger.Logger
	onField       compare.FieldHook
}

// New builds a Runner. A nil log falls back to logger.New.
func New(ex extractor.Extractor, convs []types.Conversation, gt dataset.GroundTruth, opts normalize.Options, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.New()
	}
	return &Runner{
		extractor:     ex,
		conversations: convs,
		groundTruth:   gt,
		opts:          opts,
		log:           log,
	}
}

// WithFieldHook registers a hook that sees every field comparison, after
// the runner's own debug logging.
func (r *Runner) WithFieldHook(h compare.FieldHook) *Runner {
	r.onField = h
	return r
}

// EvaluateAll runs every variant in order, threading one RunState through.
func (r *Runner) EvaluateAll(ctx context.Context, variants []Variant) ([]ModelReport, RunState, error) {
	state := NewRunState()
	reports := make([]ModelReport, 0, len(variants))
	for _, v := range variants {
		rep, next, err := r.EvaluateModel(ctx, v, state)
		state = next
		if err != nil {
			return reports, state, err
		}
		reports = append(reports, rep)
	}
	return reports, state, nil
}

// EvaluateModel scores one variant over the dataset. Conversations without
// ground truth are skipped; a failure on one conversation never stops the
// rest. The only error returned is context cancellation.
func (r *Runner) EvaluateModel(ctx context.Context, v Variant, state RunState) (ModelReport, RunState, error) {
	log := r.log.WithRun(state.RunID, v.Model, v.PromptName)
	log.WithField("conversations", len(r.conversations)).Info("evaluation started")

	acc := aggregator.NewAccumulator()
	rep := ModelReport{Model: v.Model, Prompt: v.PromptName}
	var (
		latency time.Duration
		calls   int
	)

	for _, conv := range r.conversations {
		if err := ctx.Err(); err != nil {
			return rep, state, fmt.Errorf("evaluate %s: %w", v.Model, err)
		}
		convLog := log.WithField("chat_id", conv.ChatID)

		gt, ok := r.groundTruth.Lookup(conv.ChatID)
		if !ok {
			convLog.Warn("no ground truth for conversation, skipping")
			acc.Skip()
			rep.Conversations = append(rep.Conversations, ConversationResult{ChatID: conv.ChatID, Skipped: true, Error: "missing ground truth"})
			continue
		}

		start := time.Now()
		resp, err := r.extractor.Extract(ctx, extractor.Request{
			Model:  v.Model,
			Prompt: extractor.BuildPrompt(v.Prompt, conv.Text),
		})
		took := time.Since(start)
		latency += took
		calls++
		state.Calls++
		state.Latency += took

		cr := ConversationResult{ChatID: conv.ChatID, LatencyMs: took.Milliseconds()}
		if err != nil {
			if ctx.Err() != nil {
				return rep, state, fmt.Errorf("evaluate %s: %w", v.Model, ctx.Err())
			}
			convLog.WithField("error", err.Error()).Warn("extraction failed, scoring empty prediction")
			state.ExtractionErrors++
			rep.ExtractionErrors++
			cr.Error = err.Error()
			resp = extractor.Response{Record: types.RawRecord{}}
		}
		state.Usage = state.Usage.Add(resp.Usage)
		rep.Usage = rep.Usage.Add(resp.Usage)

		if err := r.score(convLog, resp.Record, gt, &cr); err != nil {
			convLog.WithField("error", err.Error()).Error("scoring failed, skipping conversation")
			acc.Skip()
			cr.Skipped = true
			cr.Error = err.Error()
			rep.Conversations = append(rep.Conversations, cr)
			continue
		}
		acc.Add(cr.Result)
		rep.Conversations = append(rep.Conversations, cr)
	}

	rep.Summary = acc.Summary()
	rep.TotalLatencyMs = latency.Milliseconds()
	if calls > 0 {
		rep.AvgLatencyMs = float64(latency.Milliseconds()) / float64(calls)
	}

	log.WithFields(logrus.Fields{
		"accuracy":       rep.Summary.Accuracy,
		"correct":        rep.Summary.Correct,
		"total":          rep.Summary.Total,
		"skipped":        rep.Summary.Skipped,
		"total_tokens":   rep.Usage.TotalTokens,
		"avg_latency_ms": rep.AvgLatencyMs,
	}).Info("evaluation finished")
	return rep, state, nil
}

// score normalizes and compares one conversation. Panics from malformed
// input are turned into errors so the run can move on.
func (r *Runner) score(log *logrus.Entry, pred, gt types.RawRecord, cr *ConversationResult) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("scoring panic: %v", p)
		}
	}()

	cr.Prediction = normalize.Prediction(pred, r.opts)
	cr.Expected = normalize.GroundTruth(gt, r.opts)
	cmp := compare.Comparator{OnField: func(field string, predicted, expected any, match bool) {
		log.WithFields(logrus.Fields{
			"field":     field,
			"predicted": predicted,
			"expected":  expected,
			"match":     match,
		}).Debug("field compared")
		if r.onField != nil {
			r.onField(field, predicted, expected, match)
		}
	}}
	cr.Result = cmp.Compare(cr.Prediction, cr.Expected)
	return nil
}
