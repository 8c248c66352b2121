package planning

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crisisd/internal/costing"
	"github.com/fyrsmithlabs/crisisd/internal/docks"
	"github.com/fyrsmithlabs/crisisd/internal/llm"
)

// optionCount is how many options a workflow carries.
const optionCount = 3

// GenerateInput is the context the generator builds its prompt from.
type GenerateInput struct {
	Crisis  string
	Docks   docks.Snapshot
	Context string
}

// GenerateResult is a set of costed options. Degraded marks the
// fallback path; the options are still fully usable.
type GenerateResult struct {
	Options  []Option
	Degraded bool
	Reason   string
}

// Generator produces resolution options for a crisis.
type Generator struct {
	llm       llm.Client
	estimator *costing.Estimator
	logger    *zap.Logger
}

// NewGenerator creates a generator.
func NewGenerator(client llm.Client, estimator *costing.Estimator, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{llm: client, estimator: estimator, logger: logger}
}

// Generate asks the model for three options and attaches a cost
// breakdown to each. Transport failures, missing JSON, and invalid
// option fields all fall back to the built-in defaults; the result is
// never empty.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) GenerateResult {
	options, reason := g.generate(ctx, in)

	degraded := reason != ""
	if degraded {
		g.logger.Warn("option generation degraded, using defaults", zap.String("reason", reason))
		options = defaultOptions()
	}

	for i := range options {
		options[i].Cost = g.estimator.Estimate(options[i].Description, options[i].DurationDays)
	}

	return GenerateResult{Options: options, Degraded: degraded, Reason: reason}
}

// generate runs the model call and parse. A non-empty reason signals
// the caller to substitute defaults.
func (g *Generator) generate(ctx context.Context, in GenerateInput) ([]Option, string) {
	raw, err := g.llm.Generate(ctx, optionsPrompt(in.Crisis, in.Docks, in.Context))
	if err != nil {
		return nil, fmt.Sprintf("generation call failed: %v", err)
	}

	extracted, err := llm.ExtractArray(raw)
	if err != nil {
		return nil, fmt.Sprintf("no JSON array in output: %v", err)
	}

	var options []Option
	if err := json.Unmarshal([]byte(extracted), &options); err != nil {
		return nil, fmt.Sprintf("unmarshaling options: %v", err)
	}

	if err := validateOptions(options); err != nil {
		return nil, fmt.Sprintf("invalid options: %v", err)
	}

	return options, ""
}

// validateOptions checks the parsed options are usable: correct count,
// required fields, sane durations, known risk levels, unique numbers.
func validateOptions(options []Option) error {
	if len(options) != optionCount {
		return fmt.Errorf("expected %d options, got %d", optionCount, len(options))
	}

	seen := make(map[int]bool, len(options))
	for i, opt := range options {
		if opt.Number <= 0 {
			return fmt.Errorf("option %d: missing option_number", i+1)
		}
		if seen[opt.Number] {
			return fmt.Errorf("option_number %d is duplicated", opt.Number)
		}
		seen[opt.Number] = true
		if opt.Title == "" {
			return fmt.Errorf("option %d: missing title", opt.Number)
		}
		if opt.Description == "" {
			return fmt.Errorf("option %d: missing description", opt.Number)
		}
		if opt.DurationDays < 0 {
			return fmt.Errorf("option %d: negative duration", opt.Number)
		}
		if !opt.Risk.Known() {
			return fmt.Errorf("option %d: unknown risk level %q", opt.Number, opt.Risk)
		}
	}
	return nil
}
