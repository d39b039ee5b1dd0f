package capture

import "github.com/irislab/irisgo/internal/model"

// StatusEvent is emitted on every quick-detect analysis during live
// detection, destined for the status-push (WebSocket) and UI layers.
type StatusEvent struct {
	Status model.DetectionStatus
	Phase  Phase
}

// MatchType is the tagged decision spec.md §9 calls for in place of a
// match-result class hierarchy.
type MatchType int

const (
	MatchNone MatchType = iota
	MatchSuggested
	MatchConfirmed
)

func (m MatchType) String() string {
	switch m {
	case MatchConfirmed:
		return "confirmed"
	case MatchSuggested:
		return "suggested"
	default:
		return "none"
	}
}

// Candidate is one scored verification result.
type Candidate struct {
	SubjectID string
	Distance  float64
	Type      MatchType
}

// DecisionEvent is emitted once a burst finishes processing: either an
// enrollment completion or a verification decision.
type DecisionEvent struct {
	Enrolled   *model.SubjectRecord
	Candidates []Candidate
	Err        error
}

// StatusHandler and DecisionHandler are typed per event rather than one
// shared EventHandler signature, since the controller only ever emits
// these two kinds.
type StatusHandler func(StatusEvent)
type DecisionHandler func(DecisionEvent)
