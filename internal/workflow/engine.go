package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crisisd/internal/docks"
	"github.com/fyrsmithlabs/crisisd/internal/drafting"
	"github.com/fyrsmithlabs/crisisd/internal/lookup"
	"github.com/fyrsmithlabs/crisisd/internal/planning"
)

const instrumentationName = "github.com/fyrsmithlabs/crisisd/internal/workflow"

// ErrInvalidTransition is returned when a decision is requested out of
// order: the workflow is not suspended at the approval gate, or an
// approval targets a workflow with nothing to execute.
var ErrInvalidTransition = errors.New("invalid workflow transition")

// ContextFetcher retrieves historical context for a crisis.
type ContextFetcher interface {
	Fetch(ctx context.Context, query string) lookup.Result
}

// DockMonitor derives the current dock status snapshot.
type DockMonitor interface {
	Snapshot(ctx context.Context) docks.Snapshot
}

// OptionGenerator produces costed resolution options.
type OptionGenerator interface {
	Generate(ctx context.Context, in planning.GenerateInput) planning.GenerateResult
}

// RecommendationSelector picks the recommended option.
type RecommendationSelector interface {
	Select(ctx context.Context, crisis string, options []planning.Option) (planning.Selection, error)
}

// Drafter renders stakeholder notifications.
type Drafter interface {
	Draft(role, situation, recommendation string) drafting.Message
}

// Config configures the engine.
type Config struct {
	// Stakeholders are the roles notified for every recommendation.
	Stakeholders []string
}

// DefaultConfig returns the reference three-role stakeholder set.
func DefaultConfig() *Config {
	return &Config{
		Stakeholders: []string{
			drafting.RoleOperationsManager,
			drafting.RoleDockScheduler,
			drafting.RoleTechnicalLead,
		},
	}
}

// Engine runs crisis workflows. All collaborators are injected; the
// engine owns only the phase sequence and the approval gate.
type Engine struct {
	config    *Config
	store     Store
	contexts  ContextFetcher
	docks     DockMonitor
	generator OptionGenerator
	selector  RecommendationSelector
	drafter   Drafter
	logger    *zap.Logger

	tracer          trace.Tracer
	meter           metric.Meter
	analyzeCounter  metric.Int64Counter
	decisionCounter metric.Int64Counter
}

// NewEngine creates an engine. Store, fetcher, monitor, generator,
// selector and drafter are all required.
func NewEngine(
	cfg *Config,
	store Store,
	contexts ContextFetcher,
	dockMonitor DockMonitor,
	generator OptionGenerator,
	selector RecommendationSelector,
	drafter Drafter,
	logger *zap.Logger,
) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if store == nil {
		return nil, errors.New("store is required")
	}
	if contexts == nil {
		return nil, errors.New("context fetcher is required")
	}
	if dockMonitor == nil {
		return nil, errors.New("dock monitor is required")
	}
	if generator == nil {
		return nil, errors.New("option generator is required")
	}
	if selector == nil {
		return nil, errors.New("recommendation selector is required")
	}
	if drafter == nil {
		return nil, errors.New("drafter is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		config:    cfg,
		store:     store,
		contexts:  contexts,
		docks:     dockMonitor,
		generator: generator,
		selector:  selector,
		drafter:   drafter,
		logger:    logger,
		tracer:    otel.Tracer(instrumentationName),
		meter:     otel.Meter(instrumentationName),
	}

	var err error
	e.analyzeCounter, err = e.meter.Int64Counter(
		"crisisd.workflow.analyses_total",
		metric.WithDescription("Total analysis invocations, labeled by degraded phases"),
		metric.WithUnit("{workflow}"),
	)
	if err != nil {
		logger.Warn("failed to create analyze counter", zap.Error(err))
	}
	e.decisionCounter, err = e.meter.Int64Counter(
		"crisisd.workflow.decisions_total",
		metric.WithDescription("Total terminal decisions, labeled by outcome"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		logger.Warn("failed to create decision counter", zap.Error(err))
	}

	return e, nil
}

// Analyze runs the full planning pipeline for a crisis and suspends the
// workflow at the approval gate. The returned workflow is persisted and
// awaits a Decide call.
//
// Phases run strictly in order; upstream failures degrade in-band (an
// error-marker context, default options, a rule-based recommendation)
// and are recorded in the progress log rather than surfaced as errors.
func (e *Engine) Analyze(ctx context.Context, crisis Crisis) (*Workflow, error) {
	ctx, span := e.tracer.Start(ctx, "workflow.analyze",
		trace.WithAttributes(attribute.String("crisis.vessel", crisis.Vessel)))
	defer span.End()

	w := New(uuid.NewString(), crisis)
	e.logger.Info("crisis workflow started",
		zap.String("workflow_id", w.ID),
		zap.String("vessel", crisis.Vessel))

	e.analyzePhase(ctx, w)
	e.optionsPhase(ctx, w)
	e.recommendPhase(ctx, w)
	e.draftPhase(w)
	e.suspendPhase(w)

	w.UpdatedAt = time.Now().UTC()
	if err := e.store.Save(ctx, w); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("persisting workflow %s: %w", w.ID, err)
	}

	if e.analyzeCounter != nil {
		e.analyzeCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.Bool("context_degraded", w.Context.Degraded),
		))
	}
	span.SetAttributes(attribute.String("workflow.id", w.ID))
	return w, nil
}

// analyzePhase gathers historical context and dock status.
func (e *Engine) analyzePhase(ctx context.Context, w *Workflow) {
	query := fmt.Sprintf("What happened with %s? Any similar emergencies in the past? Current crisis: %s",
		w.Crisis.Vessel, w.Crisis.Description)
	w.Context = e.contexts.Fetch(ctx, query)
	w.Docks = e.docks.Snapshot(ctx)
	w.State = StateAnalyzed

	status, err := json.Marshal(w.Docks.Docks)
	if err != nil {
		status = []byte("{}")
	}
	w.Logf("Analysis complete. Historical context retrieved. Dock status: %s", status)
	if w.Context.Degraded {
		w.Logf("Context lookup degraded: %s", w.Context.Reason)
	}
	if w.Docks.Err != "" {
		w.Logf("Dock status degraded: %s", w.Docks.Err)
	}
}

// optionsPhase generates costed resolution options.
func (e *Engine) optionsPhase(ctx context.Context, w *Workflow) {
	res := e.generator.Generate(ctx, planning.GenerateInput{
		Crisis:  w.Crisis.Description,
		Docks:   w.Docks,
		Context: w.Context.Text,
	})
	w.Options = res.Options
	w.State = StateOptionsGenerated

	w.Logf("Generated %d options with cost analysis", len(w.Options))
	if res.Degraded {
		w.Logf("Option generation degraded, used built-in defaults: %s", res.Reason)
	}
}

// recommendPhase selects the recommended option. With zero options the
// phase is skipped but the workflow still advances.
func (e *Engine) recommendPhase(ctx context.Context, w *Workflow) {
	defer func() { w.State = StateRecommended }()

	if len(w.Options) == 0 {
		w.Logf("No options available for recommendation")
		return
	}

	sel, err := e.selector.Select(ctx, w.Crisis.Description, w.Options)
	if err != nil {
		// Select only fails on an empty option list, which is excluded
		// above. Log and continue without a recommendation.
		e.logger.Error("recommendation selection failed", zap.Error(err))
		w.Logf("Recommendation failed: %v", err)
		return
	}

	opt := sel.Option
	w.Recommended = &opt
	w.Justification = sel.Justification
	w.Logf("Recommended Option %d: %s", opt.Number, opt.Title)
	if sel.Degraded {
		w.Logf("Recommendation degraded, used lowest-risk rule: %s", sel.Reason)
	}
}

// draftPhase renders one notification per stakeholder role.
func (e *Engine) draftPhase(w *Workflow) {
	defer func() { w.State = StateDrafted }()

	if w.Recommended == nil {
		w.Logf("No recommendation available; skipping stakeholder communications")
		return
	}

	recommendation := fmt.Sprintf("%s: %s\n\nJustification: %s",
		w.Recommended.Title, w.Recommended.Description, w.Justification)
	for _, role := range e.config.Stakeholders {
		w.Emails = append(w.Emails, e.drafter.Draft(role, w.Crisis.Description, recommendation))
	}
	w.Logf("Drafted %d stakeholder communications", len(w.Emails))
}

// suspendPhase parks the workflow at the approval gate. Control returns
// to the caller; a separate Decide invocation resumes it.
func (e *Engine) suspendPhase(w *Workflow) {
	w.Approval = ApprovalPending
	w.State = StateAwaitingApproval
	w.Logf("Workflow paused. Awaiting human approval to proceed.")
}

// Decide applies the human decision to a suspended workflow. Approval
// executes the plan; rejection terminates without actions. Decisions
// against workflows not suspended at the gate, or approvals with
// nothing to execute, fail with ErrInvalidTransition. Concurrent
// decisions are serialized by the store: the loser gets
// ErrAlreadyDecided.
func (e *Engine) Decide(ctx context.Context, id string, approve bool) (*Workflow, error) {
	ctx, span := e.tracer.Start(ctx, "workflow.decide",
		trace.WithAttributes(
			attribute.String("workflow.id", id),
			attribute.Bool("workflow.approve", approve)))
	defer span.End()

	w, err := e.store.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if w.State != StateAwaitingApproval || w.Decided() {
		span.SetStatus(codes.Error, "invalid transition")
		return nil, fmt.Errorf("%w: workflow %s is %s/%s", ErrInvalidTransition, id, w.State, w.Approval)
	}
	if approve && w.Recommended == nil {
		// Nothing to execute: approving empty state must fail loudly
		// instead of silently executing nothing.
		span.SetStatus(codes.Error, "invalid transition")
		return nil, fmt.Errorf("%w: workflow %s has no recommendation to approve", ErrInvalidTransition, id)
	}

	if approve {
		w.Approval = ApprovalApproved
		e.execute(w)
	} else {
		w.Approval = ApprovalRejected
		w.State = StateRejected
		w.Logf("Plan rejected by human operator")
	}

	w.UpdatedAt = time.Now().UTC()
	if err := e.store.Decide(ctx, w); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	outcome := "rejected"
	if approve {
		outcome = "approved"
	}
	if e.decisionCounter != nil {
		e.decisionCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	e.logger.Info("workflow decided",
		zap.String("workflow_id", id),
		zap.String("outcome", outcome))
	return w, nil
}

// execute performs the approved plan: one action per drafted message,
// the schedule update, and the decision log entry. Runs only with
// Approval == ApprovalApproved.
func (e *Engine) execute(w *Workflow) {
	for _, email := range w.Emails {
		w.Actions = append(w.Actions, Action{Description: fmt.Sprintf("Sent email to %s", email.RecipientRole)})
	}
	w.Actions = append(w.Actions, Action{Description: fmt.Sprintf("Updated schedule: %s", w.Recommended.Title)})
	w.Actions = append(w.Actions, Action{Description: "Logged crisis resolution in system"})

	w.State = StateExecuted
	w.Logf("Executed %d actions successfully", len(w.Actions))
}

// Get returns the stored workflow for id.
func (e *Engine) Get(ctx context.Context, id string) (*Workflow, error) {
	return e.store.Get(ctx, id)
}
