package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunStage_Order(t *testing.T) {
	stages := []RunStage{
		StagePending, StageIngested, StageNormalized, StageShortlisted,
		StageDisambiguated, StageCorroborated, StageClassified, StagePublished,
	}
	for i := 1; i < len(stages); i++ {
		assert.Greater(t, stages[i].Order(), stages[i-1].Order())
		assert.Equal(t, stages[i], stages[i-1].Next())
	}
	assert.Equal(t, StagePublished, StagePublished.Next())
	assert.Equal(t, -1, RunStage("BOGUS").Order())
}

func TestRunReport_TierCounts(t *testing.T) {
	r := NewRunReport("run-1", time.Unix(0, 0))
	r.Outcomes["a"] = &CandidateOutcome{CandidateID: "a", Verdict: CorroborationVerdict{Tier: TierHigh}}
	r.Outcomes["b"] = &CandidateOutcome{CandidateID: "b", Verdict: CorroborationVerdict{Tier: TierNotDisplayed}}
	r.Outcomes["c"] = &CandidateOutcome{CandidateID: "c"}

	counts := r.TierCounts()
	assert.Equal(t, 1, counts[TierHigh])
	assert.Equal(t, 1, counts[TierNotDisplayed])
	assert.Equal(t, 1, counts[TierNone])
	assert.Equal(t, []string{"a", "b", "c"}, r.CandidateIDs())
}

func TestRunReport_SourcesSearched(t *testing.T) {
	r := NewRunReport("run-1", time.Unix(0, 0))
	r.EntitiesBySource[SourcePhelix] = 2
	r.EntitiesBySource[SourceDOJ] = 0

	assert.Equal(t, []SourceID{SourceDOJ, SourcePhelix}, r.SourcesSearched())
}

func TestFault_Key(t *testing.T) {
	a := Fault{RunID: "r1", Stage: StageDisambiguated, CandidateID: "c", SourceID: SourcePhelix, Subject: "phelix/jane doe"}
	b := a
	b.RunID = "r2"
	b.Reason = "different"
	assert.Equal(t, a.Key(), b.Key())
}
