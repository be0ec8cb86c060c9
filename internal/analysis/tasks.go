package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/xolan/tally/internal/insight"
	"github.com/xolan/tally/internal/llm"
)

// DefaultTaskTimeout bounds a single generator call
const DefaultTaskTimeout = 45 * time.Second

// Task is one independent analysis sent to the generator
type Task struct {
	Name              string
	ResultKey         string
	DefaultType       insight.Type
	DefaultConfidence float64
	Instruction       string
	Payload           func(Contexts) any
}

// Tasks returns the five analysis tasks in merge order
func Tasks() []Task {
	return []Task{
		{
			Name:              "predictions",
			ResultKey:         "predictions",
			DefaultType:       insight.TypePrediction,
			DefaultConfidence: 0.70,
			Instruction:       predictionsInstruction,
			Payload:           func(c Contexts) any { return c.Predictions },
		},
		{
			Name:              "anomalies",
			ResultKey:         "anomalies",
			DefaultType:       insight.TypeAnomaly,
			DefaultConfidence: 0.80,
			Instruction:       anomaliesInstruction,
			Payload:           func(c Contexts) any { return c.Anomalies },
		},
		{
			Name:              "recommendations",
			ResultKey:         "recommendations",
			DefaultType:       insight.TypeRecommendation,
			DefaultConfidence: 0.75,
			Instruction:       recommendationsInstruction,
			Payload:           func(c Contexts) any { return c.Recommendations },
		},
		{
			Name:              "patterns",
			ResultKey:         "patterns",
			DefaultType:       insight.TypeAnalysis,
			DefaultConfidence: 0.70,
			Instruction:       patternsInstruction,
			Payload:           func(c Contexts) any { return c.Patterns },
		},
		{
			Name:              "opportunities",
			ResultKey:         "opportunities",
			DefaultType:       insight.TypeOpportunity,
			DefaultConfidence: 0.65,
			Instruction:       opportunitiesInstruction,
			Payload:           func(c Contexts) any { return c.Opportunities },
		},
	}
}

// Messages renders the conversation sent for payload
func Messages(instruction string, payload any) ([]llm.Message, error) {
	data, err := sonic.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render context: %w", err)
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: instruction},
		{Role: llm.RoleUser, Content: "Analyze the following metrics and respond with a JSON object.\n\n" + string(data)},
	}, nil
}

// Outcome is the result of running one task
type Outcome struct {
	Task     string
	Insights []insight.Insight
	Err      error
	Duration time.Duration
}

// Runner executes tasks against a generator
type Runner struct {
	generator llm.Generator
	options   llm.Options
	timeout   time.Duration
	logger    *slog.Logger
	newID     func() string
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithTimeout sets the per-task generator timeout
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithOptions sets the options passed on every generator call
func WithOptions(opts llm.Options) RunnerOption {
	return func(r *Runner) { r.options = opts }
}

// WithIDFunc replaces the insight ID generator
func WithIDFunc(fn func() string) RunnerOption {
	return func(r *Runner) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// NewRunner creates a Runner over generator
func NewRunner(generator llm.Generator, logger *slog.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Runner{
		generator: generator,
		timeout:   DefaultTaskTimeout,
		logger:    logger,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunAll runs every task concurrently and returns their outcomes in task order.
// A failing task yields an outcome with Err set and no insights.
func (r *Runner) RunAll(ctx context.Context, tasks []Task, contexts Contexts) []Outcome {
	outcomes := make([]Outcome, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			outcomes[i] = r.Run(ctx, task, contexts)
		}(i, task)
	}
	wg.Wait()
	return outcomes
}

// Run executes a single task. It never panics.
func (r *Runner) Run(ctx context.Context, task Task, contexts Contexts) (out Outcome) {
	start := time.Now()
	out.Task = task.Name
	defer func() {
		if rec := recover(); rec != nil {
			out.Insights = nil
			out.Err = fmt.Errorf("task panicked: %v", rec)
		}
		out.Duration = time.Since(start)
		if out.Err != nil {
			r.logger.Warn("analysis task failed",
				"task", task.Name, "duration", out.Duration, "error", out.Err)
			return
		}
		r.logger.Debug("analysis task finished",
			"task", task.Name, "duration", out.Duration, "insights", len(out.Insights))
	}()

	messages, err := Messages(task.Instruction, task.Payload(contexts))
	if err != nil {
		out.Err = err
		return out
	}

	raw, err := r.complete(ctx, messages)
	if err != nil {
		out.Err = err
		return out
	}

	out.Insights = MapInsights(raw, task, r.newID)
	return out
}

// Complete sends messages with the runner's timeout and options
func (r *Runner) Complete(ctx context.Context, messages []llm.Message) (map[string]any, error) {
	return r.complete(ctx, messages)
}

// complete calls the generator under the task timeout. The call runs in its
// own goroutine so a generator that ignores ctx cannot hold the task past it.
func (r *Runner) complete(ctx context.Context, messages []llm.Message) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		raw map[string]any
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("generator panicked: %v", rec)}
			}
		}()
		raw, err := r.generator.Complete(ctx, messages, r.options)
		done <- result{raw: raw, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("generator call failed: %w", res.err)
		}
		return res.raw, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("generator call failed: %w", ctx.Err())
	}
}
