package planning

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/crisisd/internal/docks"
)

// optionsPrompt asks the model for exactly three resolution options as
// a JSON array.
func optionsPrompt(crisis string, snapshot docks.Snapshot, historicalContext string) string {
	var b strings.Builder

	b.WriteString("You are a shipyard crisis management expert. Analyze this situation and provide 3 concrete options.\n\n")
	fmt.Fprintf(&b, "CRISIS: %s\n\n", crisis)

	b.WriteString("DOCK STATUS:\n")
	names := make([]string, 0, len(snapshot.Docks))
	for name := range snapshot.Docks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s\n", name, snapshot.Docks[name].Status)
	}

	fmt.Fprintf(&b, "\nHISTORICAL CONTEXT:\n%s\n", historicalContext)

	b.WriteString(`
Provide 3 options as a JSON array with this structure:
[
  {
    "option_number": 1,
    "title": "Short title",
    "description": "Detailed description",
    "duration_days": estimated_days,
    "risk_level": "low/medium/high",
    "pros": ["pro1", "pro2"],
    "cons": ["con1", "con2"]
  }
]

Return ONLY the JSON array, no other text.`)

	return b.String()
}

// recommendPrompt asks the model to pick one option and justify it.
func recommendPrompt(crisis, optionsJSON string) string {
	var b strings.Builder

	b.WriteString("You are a shipyard operations expert. Review these options and recommend the best one.\n\n")
	fmt.Fprintf(&b, "OPTIONS:\n%s\n\n", optionsJSON)
	fmt.Fprintf(&b, "CRISIS CONTEXT: %s\n", crisis)

	b.WriteString(`
Provide your recommendation as JSON:
{
  "recommended_option_number": 1,
  "justification": "Detailed explanation of why this is the best choice",
  "key_factors": ["factor1", "factor2", "factor3"]
}

Return ONLY the JSON, no other text.`)

	return b.String()
}
