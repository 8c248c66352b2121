package planning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crisisd/internal/llm"
)

// ErrNoOptions indicates Select was called with an empty option list.
// The workflow engine skips selection in that case; reaching here with
// no options is a caller bug.
var ErrNoOptions = errors.New("planning: no options to select from")

// defaultJustification is the canned text used on the rule-based
// fallback path.
const defaultJustification = "Selected lowest risk option as default"

// Selection is the chosen option with its justification.
type Selection struct {
	Option        Option
	Justification string
	KeyFactors    []string

	// Degraded marks the rule-based fallback path.
	Degraded bool
	Reason   string
}

// recommendation is the JSON shape requested from the model.
type recommendation struct {
	RecommendedOptionNumber int      `json:"recommended_option_number"`
	Justification           string   `json:"justification"`
	KeyFactors              []string `json:"key_factors"`
}

// Selector picks the recommended option from a generated set.
type Selector struct {
	llm    llm.Client
	logger *zap.Logger
}

// NewSelector creates a selector.
func NewSelector(client llm.Client, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{llm: client, logger: logger}
}

// Select asks the model to recommend one option. On transport or parse
// failure it falls back to the lowest-risk option (earliest in sequence
// on ties) with a canned justification. Always returns a selection when
// options is non-empty.
func (s *Selector) Select(ctx context.Context, crisis string, options []Option) (Selection, error) {
	if len(options) == 0 {
		return Selection{}, ErrNoOptions
	}

	sel, reason := s.recommend(ctx, crisis, options)
	if reason == "" {
		return sel, nil
	}

	s.logger.Warn("recommendation degraded, using lowest-risk rule", zap.String("reason", reason))

	best := options[0]
	for _, opt := range options[1:] {
		if opt.Risk.Rank() < best.Risk.Rank() {
			best = opt
		}
	}
	return Selection{
		Option:        best,
		Justification: defaultJustification,
		Degraded:      true,
		Reason:        reason,
	}, nil
}

func (s *Selector) recommend(ctx context.Context, crisis string, options []Option) (Selection, string) {
	optionsJSON, err := json.MarshalIndent(options, "", "  ")
	if err != nil {
		return Selection{}, fmt.Sprintf("encoding options: %v", err)
	}

	raw, err := s.llm.Generate(ctx, recommendPrompt(crisis, string(optionsJSON)))
	if err != nil {
		return Selection{}, fmt.Sprintf("generation call failed: %v", err)
	}

	extracted, err := llm.ExtractObject(raw)
	if err != nil {
		return Selection{}, fmt.Sprintf("no JSON object in output: %v", err)
	}

	var rec recommendation
	if err := json.Unmarshal([]byte(extracted), &rec); err != nil {
		return Selection{}, fmt.Sprintf("unmarshaling recommendation: %v", err)
	}
	if rec.Justification == "" {
		return Selection{}, "recommendation missing justification"
	}

	// An unknown option number is a defensive default, not an error:
	// fall back to the first option in sequence order.
	chosen := options[0]
	for _, opt := range options {
		if opt.Number == rec.RecommendedOptionNumber {
			chosen = opt
			break
		}
	}

	return Selection{
		Option:        chosen,
		Justification: rec.Justification,
		KeyFactors:    rec.KeyFactors,
	}, ""
}
