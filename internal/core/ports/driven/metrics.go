package driven

import (
	"time"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

// Metrics receives run instrumentation. Implementations must be safe for
// concurrent use.
type Metrics interface {
	// ObserveStage records the duration of one pipeline stage.
	ObserveStage(stage domain.RunStage, d time.Duration)

	// IncOracleCall records an oracle call outcome ("confirm", "reject",
	// "uncertain", "cache_hit", "fault").
	IncOracleCall(outcome string)

	// IncFault records a fault by kind.
	IncFault(kind domain.FaultKind)

	// SetTierCount records how many candidates ended in a tier.
	SetTierCount(tier domain.ConfidenceTier, n int)
}
