package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driving"
	"github.com/knowbeforeyouvote/kbyv/internal/logger"
)

// Ensure PipelineOrchestrator implements the interface.
var _ driving.Pipeline = (*PipelineOrchestrator)(nil)

var pipelineTracer = otel.Tracer("github.com/knowbeforeyouvote/kbyv/pipeline")

// PipelineDeps holds the collaborators of a pipeline run.
// Faults, Audit, Metrics and Reasoning may be nil.
type PipelineDeps struct {
	Roster    driven.CandidateRoster
	Sources   []driven.EntitySource
	Publisher driven.Publisher

	Normalizer *NameNormalizer
	Matcher    *Matcher
	Oracle     *OracleAdapter
	Classifier *Classifier
	Citations  *CitationAssembler
	Reasoning  *ReasoningClient

	Faults  driven.FaultStore
	Audit   driven.AuditStore
	Metrics driven.Metrics
}

// PipelineConfig tunes a pipeline.
type PipelineConfig struct {
	Thresholds domain.Thresholds

	// Workers sizes the per-stage worker pools.
	Workers int

	// Now and NewRunID are replaced in tests.
	Now      func() time.Time
	NewRunID func() string
}

// PipelineOrchestrator sequences a run through
// INGESTED, NORMALIZED, SHORTLISTED, DISAMBIGUATED, CORROBORATED, CLASSIFIED
// and PUBLISHED. Each stage consumes the full output of the previous one.
// Faults are isolated to the candidate, pair or source they concern.
type PipelineOrchestrator struct {
	deps PipelineDeps
	cfg  PipelineConfig

	running atomic.Bool

	mu     sync.RWMutex
	status driving.PipelineStatus
}

// NewPipelineOrchestrator creates an orchestrator.
func NewPipelineOrchestrator(deps PipelineDeps, cfg PipelineConfig) (*PipelineOrchestrator, error) {
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}
	if deps.Roster == nil || deps.Publisher == nil {
		return nil, fmt.Errorf("create pipeline: %w: roster and publisher are required", domain.ErrInvalidInput)
	}
	if deps.Normalizer == nil {
		deps.Normalizer = NewNameNormalizer(nil)
	}
	if deps.Matcher == nil {
		m, err := NewMatcher(deps.Normalizer, cfg.Thresholds, cfg.Workers)
		if err != nil {
			return nil, err
		}
		deps.Matcher = m
	}
	if deps.Oracle == nil {
		deps.Oracle = NewOracleAdapter(deps.Reasoning, nil, nil, deps.Metrics)
	}
	if deps.Classifier == nil {
		deps.Classifier = NewClassifier(deps.Reasoning, nil)
	}
	if deps.Citations == nil {
		deps.Citations = NewCitationAssembler(defaultMaxCitations)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewRunID == nil {
		cfg.NewRunID = uuid.NewString
	}
	return &PipelineOrchestrator{deps: deps, cfg: cfg}, nil
}

// Status returns the state of the current or last run.
func (p *PipelineOrchestrator) Status() driving.PipelineStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// runState is the per-run working set passed between stages.
type runState struct {
	report     *domain.RunReport
	candidates []domain.Candidate
	entities   []domain.Entity
	pairs      map[string][]domain.MatchCandidatePair
	links      map[string][]domain.ConfirmedLink

	faultsMu sync.Mutex
}

// Run executes one full run. A run aborts only when the roster cannot be
// loaded, no source could be ingested, the context is cancelled, or the
// publication cannot be written.
func (p *PipelineOrchestrator) Run(ctx context.Context) (*domain.RunReport, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, domain.ErrRunInProgress
	}
	defer p.running.Store(false)

	runID := p.cfg.NewRunID()
	st := &runState{
		report: domain.NewRunReport(runID, p.cfg.Now()),
		pairs:  make(map[string][]domain.MatchCandidatePair),
		links:  make(map[string][]domain.ConfirmedLink),
	}
	p.setStatus(driving.PipelineStatus{RunID: runID, Running: true, Stage: domain.StagePending})
	defer func() {
		st.report.FinishedAt = p.cfg.Now()
		p.mu.Lock()
		p.status.Running = false
		p.status.Faults = len(st.report.Faults)
		p.mu.Unlock()
	}()

	ctx, span := pipelineTracer.Start(ctx, "pipeline.run", trace.WithAttributes(attribute.String("run_id", runID)))
	defer span.End()

	if p.deps.Reasoning != nil {
		p.deps.Reasoning.ResetBudget()
	}
	p.deps.Oracle.Reset()
	p.loadDeferred(ctx, st)

	stages := []struct {
		stage domain.RunStage
		fn    func(context.Context, *runState) error
	}{
		{domain.StageIngested, p.ingest},
		{domain.StageNormalized, p.normalize},
		{domain.StageShortlisted, p.shortlist},
		{domain.StageDisambiguated, p.disambiguate},
		{domain.StageCorroborated, p.corroborate},
		{domain.StageClassified, p.classify},
		{domain.StagePublished, p.publish},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return st.report, fmt.Errorf("run %s aborted before %s: %w", runID, s.stage, err)
		}
		if err := p.runStage(ctx, s.stage, st, s.fn); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return st.report, fmt.Errorf("run %s: %s: %w", runID, s.stage, err)
		}
	}

	logger.Info("run %s published %d candidates (%d faults)", runID, len(st.candidates), len(st.report.Faults))
	return st.report, nil
}

func (p *PipelineOrchestrator) runStage(
	ctx context.Context,
	stage domain.RunStage,
	st *runState,
	fn func(context.Context, *runState) error,
) error {
	logger.Section(stage.String())
	ctx, span := pipelineTracer.Start(ctx, "pipeline.stage."+stage.String())
	defer span.End()

	start := time.Now()
	err := fn(ctx, st)
	if p.deps.Metrics != nil {
		p.deps.Metrics.ObserveStage(stage, time.Since(start))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	st.report.Stage = stage
	p.mu.Lock()
	p.status.Stage = stage
	p.mu.Unlock()
	return nil
}

func (p *PipelineOrchestrator) loadDeferred(ctx context.Context, st *runState) {
	if p.deps.Faults == nil {
		return
	}
	deferred, err := p.deps.Faults.List(ctx)
	if err != nil {
		logger.Warn("list deferred faults: %v", err)
		return
	}
	st.report.DeferredFromPrevious = len(deferred)
	if len(deferred) > 0 {
		logger.Warn("%d faults deferred from previous runs will be retried", len(deferred))
	}
}

// ingest loads the roster and every source. A failing source is recorded
// as unavailable; the run continues with the remaining sources.
func (p *PipelineOrchestrator) ingest(ctx context.Context, st *runState) error {
	roster, err := p.deps.Roster.Load(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	st.candidates = MergeRoster(p.deps.Normalizer, roster)
	st.report.Candidates = len(st.candidates)

	batches := make([][]domain.Entity, len(p.deps.Sources))
	failures := make([]error, len(p.deps.Sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, src := range p.deps.Sources {
		g.Go(func() error {
			entities, err := src.Load(gctx)
			if err != nil {
				failures[i] = err
				return nil
			}
			batches[i] = entities
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, src := range p.deps.Sources {
		id := src.ID()
		if failures[i] != nil {
			logger.Warn("source %s unavailable: %v", id, failures[i])
			st.report.UnavailableSources = append(st.report.UnavailableSources, id)
			p.recordFault(ctx, st, domain.Fault{
				Kind:     domain.FaultCollaborator,
				Stage:    domain.StageIngested,
				SourceID: id,
				Reason:   failures[i].Error(),
			})
			continue
		}
		p.resolveFault(ctx, domain.Fault{Stage: domain.StageIngested, SourceID: id})

		kept := 0
		for _, e := range batches[i] {
			if e.SourceID == "" {
				e.SourceID = id
			}
			if e.SourceID != id {
				err = fmt.Errorf("%w: entity %q tagged %s in batch %s", domain.ErrInvalidInput, e.RawName, e.SourceID, id)
			} else {
				err = e.Validate()
			}
			if err != nil {
				p.recordFault(ctx, st, domain.Fault{
					Kind:     domain.FaultDataQuality,
					Stage:    domain.StageIngested,
					SourceID: id,
					Subject:  domain.EntityKey(id, e.RawName, e.DocumentRefs...),
					Reason:   err.Error(),
				})
				continue
			}
			st.entities = append(st.entities, e)
			kept++
		}
		st.report.EntitiesBySource[id] += kept
	}

	sort.Slice(st.report.UnavailableSources, func(i, j int) bool {
		return st.report.UnavailableSources[i] < st.report.UnavailableSources[j]
	})
	if len(st.report.EntitiesBySource) == 0 {
		return domain.ErrNoSources
	}

	sort.SliceStable(st.entities, func(i, j int) bool {
		return st.entities[i].Key() < st.entities[j].Key()
	})
	for _, c := range st.candidates {
		st.report.Outcomes[c.ID] = &domain.CandidateOutcome{CandidateID: c.ID}
	}
	return nil
}

// normalize derives the canonical name of every entity.
func (p *PipelineOrchestrator) normalize(_ context.Context, st *runState) error {
	for i := range st.entities {
		st.entities[i] = st.entities[i].WithCanonicalName(p.deps.Normalizer.Normalize(st.entities[i].RawName))
	}
	return nil
}

// shortlist scores every candidate against every entity.
func (p *PipelineOrchestrator) shortlist(ctx context.Context, st *runState) error {
	results := make([][]domain.MatchCandidatePair, len(st.candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, c := range st.candidates {
		g.Go(func() error {
			pairs, err := p.deps.Matcher.Shortlist(gctx, c, st.entities)
			if err != nil {
				return err
			}
			results[i] = pairs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, c := range st.candidates {
		st.pairs[c.ID] = results[i]
		st.report.Outcomes[c.ID].Shortlisted = len(results[i])
		st.report.Pairs += len(results[i])
	}
	logger.Info("shortlisted %d pairs for %d candidates at score >= %d",
		st.report.Pairs, len(st.candidates), p.deps.Matcher.Threshold())
	return nil
}

// disambiguate asks the oracle about every shortlisted pair. All pairs of a
// candidate complete before that candidate is corroborated.
func (p *PipelineOrchestrator) disambiguate(ctx context.Context, st *runState) error {
	type job struct {
		candidate domain.Candidate
		pair      domain.MatchCandidatePair
	}
	var jobs []job
	for _, c := range st.candidates {
		for _, pair := range st.pairs[c.ID] {
			jobs = append(jobs, job{candidate: c, pair: pair})
		}
	}

	verdicts := make([]domain.Verdict, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, j := range jobs {
		g.Go(func() error {
			verdict, err := p.deps.Oracle.Judge(gctx, j.pair, j.candidate)
			fault := domain.Fault{
				Kind:        domain.FaultCollaborator,
				Stage:       domain.StageDisambiguated,
				CandidateID: j.candidate.ID,
				SourceID:    j.pair.Entity.SourceID,
				Subject:     j.pair.Entity.Key(),
			}
			if err != nil {
				logger.Warn("oracle fault for %s / %s: %v", j.candidate.ID, j.pair.Entity.Key(), err)
				fault.Reason = err.Error()
				p.recordFault(gctx, st, fault)
			} else {
				p.resolveFault(gctx, fault)
			}
			verdicts[i] = verdict
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.deps.Reasoning.Available() {
		logger.Debug("disambiguated %d pairs with %d oracle calls", len(jobs), p.deps.Reasoning.Used())
	}

	for i, j := range jobs {
		outcome := st.report.Outcomes[j.candidate.ID]
		switch verdicts[i] {
		case domain.VerdictConfirm:
			link, err := domain.NewConfirmedLink(j.pair, verdicts[i])
			if err != nil {
				return err
			}
			st.links[j.candidate.ID] = append(st.links[j.candidate.ID], link)
			outcome.Confirmed++
		case domain.VerdictReject:
			outcome.Rejected++
		default:
			outcome.Uncertain++
		}
	}
	return nil
}

// corroborate computes every candidate's verdict from its confirmed links.
func (p *PipelineOrchestrator) corroborate(_ context.Context, st *runState) error {
	for _, c := range st.candidates {
		st.report.Outcomes[c.ID].Verdict = Aggregate(c.ID, st.links[c.ID], p.cfg.Thresholds)
	}
	return nil
}

// classify classifies and cites every MEDIUM or HIGH candidate. Failures
// block that candidate's publication only.
func (p *PipelineOrchestrator) classify(ctx context.Context, st *runState) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for _, c := range st.candidates {
		outcome := st.report.Outcomes[c.ID]
		if !outcome.Verdict.Tier.IsPublic() {
			continue
		}
		g.Go(func() error {
			conn, kind, err := p.classifyOne(gctx, c, outcome.Verdict)
			fault := domain.Fault{Stage: domain.StageClassified, CandidateID: c.ID}
			if err != nil {
				outcome.Blocked = true
				outcome.BlockReason = err.Error()
				fault.Kind = kind
				fault.Reason = err.Error()
				if kind == domain.FaultInvariant {
					logger.Error("candidate %s blocked: %v", c.ID, err)
				} else {
					logger.Warn("candidate %s blocked: %v", c.ID, err)
				}
				p.recordFault(gctx, st, fault)
				return nil
			}
			outcome.Connection = &conn
			p.resolveFault(gctx, fault)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

func (p *PipelineOrchestrator) classifyOne(
	ctx context.Context,
	candidate domain.Candidate,
	verdict domain.CorroborationVerdict,
) (domain.ClassifiedConnection, domain.FaultKind, error) {
	result, err := p.deps.Classifier.Classify(ctx, candidate, verdict)
	if err != nil {
		return domain.ClassifiedConnection{}, faultKindOf(err), err
	}
	citations, err := p.deps.Citations.Assemble(verdict)
	if err != nil {
		return domain.ClassifiedConnection{}, faultKindOf(err), err
	}
	conn, err := domain.NewClassifiedConnection(verdict, result.Level, result.Reasoning, citations)
	if err != nil {
		return domain.ClassifiedConnection{}, faultKindOf(err), err
	}
	return conn, "", nil
}

func faultKindOf(err error) domain.FaultKind {
	switch {
	case errors.Is(err, domain.ErrInvariantViolation):
		return domain.FaultInvariant
	case errors.Is(err, domain.ErrUncitedConnection),
		errors.Is(err, domain.ErrMissingDocumentRef),
		errors.Is(err, domain.ErrInvalidInput):
		return domain.FaultDataQuality
	default:
		return domain.FaultCollaborator
	}
}

// publish writes the public mapping. Only classified, cited MEDIUM and HIGH
// connections are published; every other candidate gets the no-connection record.
func (p *PipelineOrchestrator) publish(ctx context.Context, st *runState) error {
	searched := st.report.SourcesSearched()
	pub := domain.Publication{
		Records:    make(map[string]domain.PublicRecord, len(st.candidates)),
		Candidates: st.candidates,
		Metadata: domain.PublicationMetadata{
			RunID:              st.report.RunID,
			GeneratedAt:        p.cfg.Now(),
			SourcesSearched:    searched,
			SourcesUnavailable: st.report.UnavailableSources,
			Thresholds:         p.cfg.Thresholds,
		},
	}
	if p.deps.Reasoning != nil {
		pub.Metadata.OracleModel = p.deps.Reasoning.ModelName()
	}

	outcomes := make([]domain.CandidateOutcome, 0, len(st.candidates))
	for _, c := range st.candidates {
		outcome := st.report.Outcomes[c.ID]
		outcomes = append(outcomes, *outcome)

		conn := outcome.Connection
		if conn == nil || !conn.Tier.IsPublic() || conn.Tier != outcome.Verdict.Tier {
			pub.Records[c.ID] = domain.NoConnectionRecord(c.ID, searched)
			continue
		}
		pub.Records[c.ID] = domain.ConnectionRecord(*conn, p.deps.Citations.Summary(outcome.Verdict))
	}

	if p.deps.Audit != nil {
		if err := p.deps.Audit.SaveVerdicts(ctx, st.report.RunID, outcomes); err != nil {
			logger.Warn("save audit verdicts: %v", err)
		}
	}

	if err := p.deps.Publisher.Publish(ctx, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	if p.deps.Metrics != nil {
		counts := st.report.TierCounts()
		for _, tier := range []domain.ConfidenceTier{
			domain.TierNone, domain.TierNotDisplayed, domain.TierMedium, domain.TierHigh,
		} {
			p.deps.Metrics.SetTierCount(tier, counts[tier])
		}
	}
	return nil
}

func (p *PipelineOrchestrator) recordFault(ctx context.Context, st *runState, fault domain.Fault) {
	fault.RunID = st.report.RunID
	fault.At = p.cfg.Now()

	st.faultsMu.Lock()
	st.report.Faults = append(st.report.Faults, fault)
	n := len(st.report.Faults)
	st.faultsMu.Unlock()

	p.mu.Lock()
	p.status.Faults = n
	p.mu.Unlock()

	if p.deps.Metrics != nil {
		p.deps.Metrics.IncFault(fault.Kind)
	}
	if p.deps.Faults != nil {
		if err := p.deps.Faults.Record(context.WithoutCancel(ctx), fault); err != nil {
			logger.Warn("record fault %s: %v", fault.Key(), err)
		}
	}
}

func (p *PipelineOrchestrator) resolveFault(ctx context.Context, fault domain.Fault) {
	if p.deps.Faults == nil {
		return
	}
	if err := p.deps.Faults.Resolve(ctx, fault.Key()); err != nil {
		logger.Warn("resolve fault %s: %v", fault.Key(), err)
	}
}

func (p *PipelineOrchestrator) setStatus(s driving.PipelineStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = s
}
