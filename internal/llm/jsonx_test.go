package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare array",
			in:   `[1, 2, 3]`,
			want: `[1, 2, 3]`,
		},
		{
			name: "prose around array",
			in:   "Here are the options:\n[{\"a\": 1}]\nLet me know!",
			want: `[{"a": 1}]`,
		},
		{
			name: "code fence",
			in:   "```json\n[{\"title\": \"x\"}]\n```",
			want: `[{"title": "x"}]`,
		},
		{
			name: "nested arrays",
			in:   `result: [[1, 2], [3]] trailing`,
			want: `[[1, 2], [3]]`,
		},
		{
			name: "bracket inside string",
			in:   `[{"note": "see [ref] for details"}]`,
			want: `[{"note": "see [ref] for details"}]`,
		},
		{
			name: "escaped quote inside string",
			in:   `[{"note": "a \"quoted]\" value"}]`,
			want: `[{"note": "a \"quoted]\" value"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractArray(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, json.Valid([]byte(got)), "extracted text should be valid JSON")
		})
	}
}

func TestExtractArrayNoJSON(t *testing.T) {
	for _, in := range []string{"", "no json here", "{\"object\": true}", "[1, 2"} {
		_, err := ExtractArray(in)
		assert.ErrorIs(t, err, ErrNoJSON, "input %q", in)
	}
}

func TestExtractObject(t *testing.T) {
	in := "I recommend option 2.\n\n{\"recommended_option_number\": 2, \"justification\": \"fastest {safe} path\"}"
	got, err := ExtractObject(in)
	require.NoError(t, err)
	assert.Equal(t, `{"recommended_option_number": 2, "justification": "fastest {safe} path"}`, got)
}

func TestExtractObjectNoJSON(t *testing.T) {
	_, err := ExtractObject("[3, 4]")
	assert.ErrorIs(t, err, ErrNoJSON)
}
