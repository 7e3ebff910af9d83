package domain

import "fmt"

// MatchCandidatePair is a shortlisted candidate/entity pair. It exists only
// between the matcher and the oracle adapter.
type MatchCandidatePair struct {
	CandidateID string
	Entity      Entity

	// Score is the best similarity across all name variants, 0-100.
	Score int

	// CandidateVariant and EntityVariant are the forms that produced Score.
	CandidateVariant string
	EntityVariant    string
}

// Verdict is the oracle's categorical identity judgement.
type Verdict string

// Verdict values.
const (
	VerdictConfirm   Verdict = "CONFIRM"
	VerdictReject    Verdict = "REJECT"
	VerdictUncertain Verdict = "UNCERTAIN"
)

// IsValid returns true if the verdict is recognised.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictConfirm, VerdictReject, VerdictUncertain:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (v Verdict) String() string {
	return string(v)
}

// ConfirmedLink records a pair the oracle confirmed as the same person.
type ConfirmedLink struct {
	CandidateID string
	SourceID    SourceID
	Entity      Entity

	// VerdictConfidence is the similarity score the confirmed pair carried, 0-100.
	VerdictConfidence int
}

// NewConfirmedLink builds a link from a pair and its verdict.
// Only CONFIRM produces a link; anything else is a programming error.
func NewConfirmedLink(pair MatchCandidatePair, verdict Verdict) (ConfirmedLink, error) {
	if verdict != VerdictConfirm {
		return ConfirmedLink{}, fmt.Errorf("%w: link from %s verdict for %s/%s",
			ErrInvariantViolation, verdict, pair.CandidateID, pair.Entity.Key())
	}
	return ConfirmedLink{
		CandidateID:       pair.CandidateID,
		SourceID:          pair.Entity.SourceID,
		Entity:            pair.Entity,
		VerdictConfidence: pair.Score,
	}, nil
}

// Key identifies the link by candidate and entity.
func (l ConfirmedLink) Key() string {
	return l.CandidateID + "|" + l.Entity.Key()
}
