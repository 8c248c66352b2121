package planning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeOptions() []Option {
	return []Option{
		{Number: 1, Title: "Extend stay", Description: "stay", Risk: RiskMedium},
		{Number: 2, Title: "External lift", Description: "lift", Risk: RiskHigh},
		{Number: 3, Title: "Transfer", Description: "move", Risk: RiskLow},
	}
}

func TestSelectParsesRecommendation(t *testing.T) {
	client := &fakeLLM{response: `Based on my analysis:
{"recommended_option_number": 2, "justification": "Dock must be freed", "key_factors": ["schedule", "cost"]}`}
	s := NewSelector(client, nil)

	sel, err := s.Select(context.Background(), "shaft failure", threeOptions())
	require.NoError(t, err)

	assert.False(t, sel.Degraded)
	assert.Equal(t, 2, sel.Option.Number)
	assert.Equal(t, "Dock must be freed", sel.Justification)
	assert.Equal(t, []string{"schedule", "cost"}, sel.KeyFactors)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "shaft failure")
	assert.Contains(t, client.prompts[0], "External lift")
}

func TestSelectUnknownNumberDefaultsToFirst(t *testing.T) {
	client := &fakeLLM{response: `{"recommended_option_number": 99, "justification": "because"}`}
	s := NewSelector(client, nil)

	sel, err := s.Select(context.Background(), "c", threeOptions())
	require.NoError(t, err)

	assert.False(t, sel.Degraded)
	assert.Equal(t, 1, sel.Option.Number)
	assert.Equal(t, "because", sel.Justification)
}

func TestSelectFallsBackToLowestRisk(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeLLM
	}{
		{"transport error", &fakeLLM{err: errors.New("timeout")}},
		{"garbage output", &fakeLLM{response: "no json at all"}},
		{"missing justification", &fakeLLM{response: `{"recommended_option_number": 1}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelector(tt.client, nil)

			sel, err := s.Select(context.Background(), "c", threeOptions())
			require.NoError(t, err)

			assert.True(t, sel.Degraded)
			assert.Equal(t, 3, sel.Option.Number, "option 3 has the lowest risk")
			assert.Equal(t, "Selected lowest risk option as default", sel.Justification)
		})
	}
}

func TestSelectFallbackTiesBreakToEarliest(t *testing.T) {
	options := []Option{
		{Number: 1, Title: "A", Risk: RiskLow},
		{Number: 2, Title: "B", Risk: RiskLow},
		{Number: 3, Title: "C", Risk: RiskHigh},
	}
	s := NewSelector(&fakeLLM{err: errors.New("down")}, nil)

	sel, err := s.Select(context.Background(), "c", options)
	require.NoError(t, err)
	assert.Equal(t, 1, sel.Option.Number)
}

func TestSelectEmptyOptions(t *testing.T) {
	s := NewSelector(&fakeLLM{}, nil)

	_, err := s.Select(context.Background(), "c", nil)
	assert.ErrorIs(t, err, ErrNoOptions)
}
