package lookup

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// maxRenderedSources caps how many supporting sources appear in the
// rendered context text.
const maxRenderedSources = 3

// Result is the outcome of a context fetch. Upstream failures are
// captured in-band: Degraded is set, Text carries an error marker, and
// the workflow proceeds without historical context.
type Result struct {
	// Text is the formatted context blob, or an error marker when
	// degraded.
	Text string `json:"text"`

	// Degraded indicates the lookup failed and Text is a marker.
	Degraded bool `json:"degraded,omitempty"`

	// Reason is the failure reason when degraded.
	Reason string `json:"reason,omitempty"`
}

// Adapter fetches and formats historical context. It never returns an
// error; failures become degraded Results.
type Adapter struct {
	client Client
	topK   int
	logger *zap.Logger
}

// NewAdapter creates an adapter over the given client.
func NewAdapter(client Client, topK int, logger *zap.Logger) *Adapter {
	if topK <= 0 {
		topK = maxRenderedSources
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{client: client, topK: topK, logger: logger}
}

// Fetch queries the lookup service and renders the answer with up to
// three supporting sources.
func (a *Adapter) Fetch(ctx context.Context, query string) Result {
	resp, err := a.client.Query(ctx, QueryRequest{Message: query, TopK: a.topK})
	if err != nil {
		a.logger.Warn("context lookup failed", zap.Error(err))
		return Result{
			Text:     fmt.Sprintf("Error querying historical context: %v", err),
			Degraded: true,
			Reason:   err.Error(),
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Historical context: %s\n\nSources:\n", resp.Answer)
	for i, src := range resp.Sources {
		if i >= maxRenderedSources {
			break
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, src.SenderRole, src.Sender)
		fmt.Fprintf(&b, "   Subject: %s\n", src.Subject)
		fmt.Fprintf(&b, "   Vessel: %s\n\n", src.Vessel)
	}

	return Result{Text: b.String()}
}
