package domain

import (
	"sort"
	"time"
)

// RunStage is a pipeline state. Stages advance in declaration order.
type RunStage string

// Pipeline stages.
const (
	StagePending       RunStage = "PENDING"
	StageIngested      RunStage = "INGESTED"
	StageNormalized    RunStage = "NORMALIZED"
	StageShortlisted   RunStage = "SHORTLISTED"
	StageDisambiguated RunStage = "DISAMBIGUATED"
	StageCorroborated  RunStage = "CORROBORATED"
	StageClassified    RunStage = "CLASSIFIED"
	StagePublished     RunStage = "PUBLISHED"
)

var stageSequence = []RunStage{
	StagePending,
	StageIngested,
	StageNormalized,
	StageShortlisted,
	StageDisambiguated,
	StageCorroborated,
	StageClassified,
	StagePublished,
}

// Order returns the position of the stage in the state machine, or -1.
func (s RunStage) Order() int {
	for i, stage := range stageSequence {
		if stage == s {
			return i
		}
	}
	return -1
}

// Next returns the stage that follows s, or s itself when s is terminal.
func (s RunStage) Next() RunStage {
	i := s.Order()
	if i < 0 || i == len(stageSequence)-1 {
		return s
	}
	return stageSequence[i+1]
}

// String returns the string representation.
func (s RunStage) String() string {
	return string(s)
}

// FaultKind follows the error taxonomy.
type FaultKind string

// Fault kinds.
const (
	FaultDataQuality  FaultKind = "data_quality"
	FaultCollaborator FaultKind = "collaborator"
	FaultInvariant    FaultKind = "invariant"
)

// Fault records a failure isolated to one record, pair or source.
type Fault struct {
	RunID       string
	Kind        FaultKind
	Stage       RunStage
	CandidateID string
	SourceID    SourceID

	// Subject is the entity key, or empty for candidate- or source-level faults.
	Subject string

	Reason string
	At     time.Time
}

// Key identifies the faulted unit independently of the run.
func (f Fault) Key() string {
	return string(f.Stage) + "|" + f.CandidateID + "|" + string(f.SourceID) + "|" + f.Subject
}

// CandidateOutcome is the internal (audit) result for one candidate.
type CandidateOutcome struct {
	CandidateID string
	Shortlisted int
	Confirmed   int
	Rejected    int
	Uncertain   int
	Verdict     CorroborationVerdict

	// Connection is set only when classification and citation succeeded.
	Connection *ClassifiedConnection

	// Blocked is set when a public-tier candidate could not be classified or cited.
	Blocked     bool
	BlockReason string
}

// RunReport summarises a pipeline run.
type RunReport struct {
	RunID      string
	Stage      RunStage
	StartedAt  time.Time
	FinishedAt time.Time

	Candidates         int
	EntitiesBySource   map[SourceID]int
	UnavailableSources []SourceID
	Pairs              int

	Outcomes map[string]*CandidateOutcome
	Faults   []Fault

	// DeferredFromPrevious counts faults carried over from earlier runs.
	DeferredFromPrevious int
}

// NewRunReport creates an empty report.
func NewRunReport(runID string, started time.Time) *RunReport {
	return &RunReport{
		RunID:            runID,
		Stage:            StagePending,
		StartedAt:        started,
		EntitiesBySource: make(map[SourceID]int),
		Outcomes:         make(map[string]*CandidateOutcome),
	}
}

// TierCounts tallies candidates per confidence tier.
func (r *RunReport) TierCounts() map[ConfidenceTier]int {
	counts := make(map[ConfidenceTier]int)
	for _, o := range r.Outcomes {
		tier := o.Verdict.Tier
		if tier == "" {
			tier = TierNone
		}
		counts[tier]++
	}
	return counts
}

// SourcesSearched lists the sources that were ingested, in stable order.
func (r *RunReport) SourcesSearched() []SourceID {
	out := make([]SourceID, 0, len(r.EntitiesBySource))
	for s := range r.EntitiesBySource {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CandidateIDs returns the outcome keys in stable order.
func (r *RunReport) CandidateIDs() []string {
	ids := make([]string, 0, len(r.Outcomes))
	for id := range r.Outcomes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
