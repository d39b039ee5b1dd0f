package capture

import (
	"sync/atomic"
	"testing"

	"github.com/irislab/irisgo/internal/config"
	"github.com/irislab/irisgo/internal/match"
	"github.com/irislab/irisgo/internal/model"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{})      {}
func (nopLogger) Info(string, string, map[string]interface{})       {}
func (nopLogger) Warning(string, string, map[string]interface{})    {}
func (nopLogger) Error(string, error, map[string]interface{})       {}

type fakeRepo struct {
	records   []*model.SubjectRecord
	insertErr error
	inserted  []*model.SubjectRecord
}

func (f *fakeRepo) ListWithTemplates() ([]*model.SubjectRecord, error) {
	return f.records, nil
}

func (f *fakeRepo) Insert(record *model.SubjectRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, record)
	return nil
}

func newTestController(repo SubjectSource) *Controller {
	return NewController(config.Default(), nopLogger{}, repo)
}

func TestStartSetsLiveDetectAndResetsSession(t *testing.T) {
	c := newTestController(nil)
	c.phase = PhaseProcess
	c.burstsCompleted = 2
	c.templatePool = []*model.Template{model.NewTemplate()}

	c.Start(config.ModeEnrollment)

	if c.phase != PhaseLiveDetect {
		t.Fatalf("phase = %v, want liveDetect", c.phase)
	}
	if c.burstsCompleted != 0 {
		t.Fatalf("burstsCompleted = %d, want 0", c.burstsCompleted)
	}
	if c.templatePool != nil {
		t.Fatalf("templatePool = %v, want nil", c.templatePool)
	}
	if c.mode != config.ModeEnrollment {
		t.Fatalf("mode = %v, want enrollment", c.mode)
	}
}

func TestCancelReturnsToIdleAndReleasesFrames(t *testing.T) {
	c := newTestController(nil)
	frame := &model.ScoredFrame{Image: &model.GrayImage{}}
	c.phase = PhaseBurst
	c.burstFrames = []*model.ScoredFrame{frame}

	c.Cancel()

	if c.phase != PhaseIdle {
		t.Fatalf("phase = %v, want idle", c.phase)
	}
	if c.burstFrames != nil {
		t.Fatalf("burstFrames = %v, want nil", c.burstFrames)
	}
	if frame.Image != nil {
		t.Fatalf("frame not released: Image still set")
	}
}

func TestFeedDropsFramesWhenIdle(t *testing.T) {
	c := newTestController(nil)
	calls := int32(0)
	c.OnStatus(func(StatusEvent) { atomic.AddInt32(&calls, 1) })

	if err := c.Feed(nil, &model.GrayImage{Width: 4, Height: 4, Pix: make([]uint8, 16)}); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no status events while idle")
	}
}

func TestMinScoreByMode(t *testing.T) {
	c := newTestController(nil)
	c.mode = config.ModeEnrollment
	if got := c.minScore(); got != c.cfg.Quality.MinScoreEnroll {
		t.Fatalf("enrollment minScore = %v, want %v", got, c.cfg.Quality.MinScoreEnroll)
	}
	c.mode = config.ModeVerification
	if got := c.minScore(); got != c.cfg.Quality.MinScoreVerify {
		t.Fatalf("verification minScore = %v, want %v", got, c.cfg.Quality.MinScoreVerify)
	}
}

func TestZoneToMatchType(t *testing.T) {
	cases := []struct {
		zone match.Zone
		want MatchType
	}{
		{match.ZoneConfirmed, MatchConfirmed},
		{match.ZoneSuggested, MatchSuggested},
		{match.ZoneNone, MatchNone},
	}
	for _, tc := range cases {
		if got := zoneToMatchType(tc.zone); got != tc.want {
			t.Errorf("zoneToMatchType(%v) = %v, want %v", tc.zone, got, tc.want)
		}
	}
}

func TestDecideCandidatesConfirmedWinsAlone(t *testing.T) {
	sorted := []Candidate{
		{SubjectID: "a", Distance: 0.10, Type: MatchConfirmed},
		{SubjectID: "b", Distance: 0.30, Type: MatchSuggested},
	}
	got := decideCandidates(sorted)
	if len(got) != 1 || got[0].SubjectID != "a" {
		t.Fatalf("decideCandidates = %+v, want single confirmed candidate a", got)
	}
}

func TestDecideCandidatesSuggestedListWithoutConfirmed(t *testing.T) {
	sorted := []Candidate{
		{SubjectID: "a", Distance: 0.30, Type: MatchSuggested},
		{SubjectID: "b", Distance: 0.33, Type: MatchSuggested},
		{SubjectID: "c", Distance: 0.50, Type: MatchNone},
	}
	got := decideCandidates(sorted)
	if len(got) != 2 || got[0].SubjectID != "a" || got[1].SubjectID != "b" {
		t.Fatalf("decideCandidates = %+v, want [a b]", got)
	}
}

func TestDecideCandidatesNoMatch(t *testing.T) {
	sorted := []Candidate{
		{SubjectID: "a", Distance: 0.50, Type: MatchNone},
	}
	if got := decideCandidates(sorted); got != nil {
		t.Fatalf("decideCandidates = %+v, want nil", got)
	}
	if got := decideCandidates(nil); got != nil {
		t.Fatalf("decideCandidates(nil) = %+v, want nil", got)
	}
}

func TestEmitStatusAndDecisionReachSubscribers(t *testing.T) {
	c := newTestController(nil)
	var gotStatus StatusEvent
	var gotDecision DecisionEvent
	c.OnStatus(func(e StatusEvent) { gotStatus = e })
	c.OnDecision(func(e DecisionEvent) { gotDecision = e })

	c.emitStatus(StatusEvent{Status: model.StatusReady, Phase: PhaseLiveDetect})
	c.emitDecision(DecisionEvent{Err: ErrQualityTooLow})

	if gotStatus.Status != model.StatusReady {
		t.Fatalf("status handler did not receive event")
	}
	if gotDecision.Err != ErrQualityTooLow {
		t.Fatalf("decision handler did not receive event")
	}
}

func TestProcessEnrollmentBurstAccumulatesAcrossBursts(t *testing.T) {
	repo := &fakeRepo{}
	c := newTestController(repo)
	c.mode = config.ModeEnrollment
	c.cfg.Controller.EnrollmentBursts = 2

	var decision DecisionEvent
	c.OnDecision(func(e DecisionEvent) { decision = e })

	c.processEnrollmentBurst([]*model.Template{model.NewTemplate()}, nil)
	if len(repo.inserted) != 0 {
		t.Fatalf("expected no insert after first of two bursts")
	}
	if c.phase != PhaseLiveDetect {
		t.Fatalf("phase after first burst = %v, want liveDetect (repositioning)", c.phase)
	}

	c.phase = PhaseProcess
	c.processEnrollmentBurst([]*model.Template{model.NewTemplate(), model.NewTemplate()}, nil)
	if len(repo.inserted) != 1 {
		t.Fatalf("expected one insert after final burst, got %d", len(repo.inserted))
	}
	if decision.Enrolled == nil {
		t.Fatalf("expected Enrolled decision event")
	}
	if c.phase != PhaseIdle {
		t.Fatalf("phase after enrollment complete = %v, want idle", c.phase)
	}
}

func TestProcessVerificationBurstNoRepository(t *testing.T) {
	c := newTestController(nil)
	var decision DecisionEvent
	c.OnDecision(func(e DecisionEvent) { decision = e })

	c.processVerificationBurst([]*model.Template{model.NewTemplate()})

	if decision.Err != ErrRepositoryUnavailable {
		t.Fatalf("decision.Err = %v, want ErrRepositoryUnavailable", decision.Err)
	}
	if c.phase != PhaseIdle {
		t.Fatalf("phase = %v, want idle", c.phase)
	}
}
