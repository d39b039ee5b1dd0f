package capture

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/irislab/irisgo/internal/config"
	"github.com/irislab/irisgo/internal/imagestore"
	"github.com/irislab/irisgo/internal/imaging"
	"github.com/irislab/irisgo/internal/logger"
	"github.com/irislab/irisgo/internal/match"
	"github.com/irislab/irisgo/internal/metrics"
	"github.com/irislab/irisgo/internal/model"
	"github.com/irislab/irisgo/internal/opencv/convert"
	"github.com/irislab/irisgo/internal/opencv/memory"
	"github.com/irislab/irisgo/internal/segmentation"

	"github.com/google/uuid"
)

// Controller is the stateful C7 capture session. One Controller handles
// one capture session; the caller creates a new one (or calls Start again)
// for the next session.
type Controller struct {
	mu  sync.Mutex
	log logger.Logger
	cfg config.Config
	pre *imaging.Preprocessor
	repo SubjectSource
	store imagestore.Store

	statusMu sync.RWMutex
	onStatus []StatusHandler
	onDecision []DecisionHandler

	phase       Phase
	mode        config.Mode
	isAnalyzing bool

	lastAnalysis time.Time
	readySince   time.Time

	burstFrames []*model.ScoredFrame
	burstStart  time.Time

	burstsCompleted int
	templatePool    []*model.Template

	frameInterval time.Duration
	readyHold     time.Duration
	burstMax      time.Duration
}

// NewController builds an idle controller. repo may be nil for pure
// enrollment-testing scenarios that never reach the verification branch.
func NewController(cfg config.Config, log logger.Logger, repo SubjectSource) *Controller {
	return &Controller{
		log:           log,
		cfg:           cfg,
		pre:           imaging.NewPreprocessor(),
		repo:          repo,
		phase:         PhaseIdle,
		frameInterval: time.Duration(cfg.Controller.FrameIntervalMs) * time.Millisecond,
		readyHold:     time.Duration(cfg.Controller.ReadyHoldMs) * time.Millisecond,
		burstMax:      time.Duration(cfg.Controller.BurstMaxMs) * time.Millisecond,
	}
}

// NewControllerWithMemory is NewController with its preprocessor allocating
// through mgr, so a daemon that runs for hours gets leak accounting on
// every frame it analyzes.
func NewControllerWithMemory(cfg config.Config, log logger.Logger, repo SubjectSource, mgr *memory.Manager) *Controller {
	c := NewController(cfg, log, repo)
	c.pre = imaging.NewPreprocessorWithMemory(mgr)
	return c
}

// SetImageStore attaches the still-capture backend an enrolled subject's
// representative frame is persisted to. A nil store (the default) skips
// persistence, which existing tests rely on.
func (c *Controller) SetImageStore(store imagestore.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = store
}

// OnStatus subscribes to live-detection status transitions.
func (c *Controller) OnStatus(h StatusHandler) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	c.onStatus = append(c.onStatus, h)
}

// OnDecision subscribes to burst-completion outcomes.
func (c *Controller) OnDecision(h DecisionHandler) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	c.onDecision = append(c.onDecision, h)
}

func (c *Controller) emitStatus(e StatusEvent) {
	c.statusMu.RLock()
	handlers := append([]StatusHandler(nil), c.onStatus...)
	c.statusMu.RUnlock()
	for _, h := range handlers {
		h(e)
	}
}

func (c *Controller) emitDecision(e DecisionEvent) {
	c.statusMu.RLock()
	handlers := append([]DecisionHandler(nil), c.onDecision...)
	c.statusMu.RUnlock()
	for _, h := range handlers {
		h(e)
	}
}

// Start begins a capture session in the given mode, resetting any prior
// enrollment burst progress.
func (c *Controller) Start(mode config.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = mode
	c.phase = PhaseLiveDetect
	c.readySince = time.Time{}
	c.burstsCompleted = 0
	c.templatePool = nil
	c.releaseBurstFramesLocked()

	c.log.Info("capture_controller", "session started", map[string]interface{}{"mode": string(mode)})
}

// Cancel implements spec.md §5's cancellation path: stop analysing frames,
// release the burst buffer, and return to idle. AF/AE is a camera-owned
// concern outside this package; restoring it is the caller's
// responsibility once Cancel returns.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releaseBurstFramesLocked()
	c.phase = PhaseIdle
	c.readySince = time.Time{}
	c.log.Info("capture_controller", "session cancelled", nil)
}

func (c *Controller) releaseBurstFramesLocked() {
	for _, f := range c.burstFrames {
		f.Release()
	}
	c.burstFrames = nil
}

// Feed delivers one camera frame. Overlapping frames are dropped per
// spec.md §5's isAnalyzing guard; the controller only ever has one frame
// under analysis at a time.
func (c *Controller) Feed(ctx context.Context, raw *model.GrayImage) error {
	c.mu.Lock()
	if c.phase == PhaseIdle || c.isAnalyzing {
		c.mu.Unlock()
		return nil
	}
	c.isAnalyzing = true
	phase := c.phase
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.isAnalyzing = false
		c.mu.Unlock()
	}()

	switch phase {
	case PhaseLiveDetect:
		return c.analyzeLiveDetect(ctx, raw)
	case PhaseBurst:
		return c.analyzeBurstFrame(ctx, raw)
	default:
		return nil
	}
}

func (c *Controller) analyzeLiveDetect(ctx context.Context, raw *model.GrayImage) error {
	now := time.Now()

	c.mu.Lock()
	if now.Sub(c.lastAnalysis) < c.frameInterval {
		c.mu.Unlock()
		return nil
	}
	c.lastAnalysis = now
	c.mu.Unlock()

	pre, err := c.pre.Process(ctx, raw)
	if err != nil {
		c.log.Debug("capture_controller", "preprocess failed during live detect", map[string]interface{}{"error": err.Error()})
		return nil
	}

	result, err := segmentation.QuickDetect(pre.Image, c.cfg.Quality.SharpnessMinPreview)
	if err != nil {
		c.log.Debug("capture_controller", "quick detect failed", map[string]interface{}{"error": err.Error()})
		return nil
	}

	c.emitStatus(StatusEvent{Status: result.Status, Phase: PhaseLiveDetect})

	c.mu.Lock()
	defer c.mu.Unlock()

	if result.Status != model.StatusReady {
		c.readySince = time.Time{}
		return nil
	}
	if c.readySince.IsZero() {
		c.readySince = now
		return nil
	}
	if now.Sub(c.readySince) >= c.readyHold {
		c.transitionToBurstLocked()
	}
	return nil
}

func (c *Controller) transitionToBurstLocked() {
	c.phase = PhaseBurst
	c.burstFrames = nil
	c.burstStart = time.Now()
	c.log.Info("capture_controller", "entering burst", nil)
}

func (c *Controller) analyzeBurstFrame(ctx context.Context, raw *model.GrayImage) error {
	frame, err := scoreFrame(ctx, c.pre, raw, c.cfg.Quality.SharpnessMinFull)
	if err != nil {
		c.log.Debug("capture_controller", "burst frame scoring failed", map[string]interface{}{"error": err.Error()})
	}

	c.mu.Lock()
	if frame != nil {
		c.burstFrames = append(c.burstFrames, frame)
	}
	full := len(c.burstFrames) >= c.cfg.Controller.BurstTargetFrames
	timedOut := time.Since(c.burstStart) >= c.burstMax
	c.mu.Unlock()

	if full || timedOut {
		c.processBurst(ctx)
	}
	return nil
}

func (c *Controller) minScore() float64 {
	if c.mode == config.ModeEnrollment {
		return c.cfg.Quality.MinScoreEnroll
	}
	return c.cfg.Quality.MinScoreVerify
}

func (c *Controller) processBurst(ctx context.Context) {
	c.mu.Lock()
	frames := c.burstFrames
	c.burstFrames = nil
	c.phase = PhaseProcess
	mode := c.mode
	c.mu.Unlock()

	selected := selectTopFrames(frames, c.minScore())
	if len(selected) == 0 {
		c.releaseFrames(frames)
		metrics.BurstsCompleted.WithLabelValues(string(mode), "quality_too_low").Inc()
		c.emitDecision(DecisionEvent{Err: ErrQualityTooLow})
		c.restartLiveDetect()
		return
	}

	keep := verificationPoolSize
	if mode == config.ModeEnrollment {
		keep = enrollmentPoolSize
	}
	survivors := encodeAndFilter(ctx, selected, keep)

	var stillPNG []byte
	if mode == config.ModeEnrollment {
		if png, err := convert.EncodePNG(selected[0].Image); err == nil {
			stillPNG = png
		} else {
			c.log.Debug("capture_controller", "still encode failed", map[string]interface{}{"error": err.Error()})
		}
	}
	c.releaseFrames(frames)

	if len(survivors) == 0 {
		metrics.BurstsCompleted.WithLabelValues(string(mode), "quality_too_low").Inc()
		c.emitDecision(DecisionEvent{Err: ErrQualityTooLow})
		c.restartLiveDetect()
		return
	}

	if mode == config.ModeEnrollment {
		c.processEnrollmentBurst(survivors, stillPNG)
		return
	}
	c.processVerificationBurst(survivors)
}

func (c *Controller) releaseFrames(frames []*model.ScoredFrame) {
	for _, f := range frames {
		f.Release()
	}
}

func (c *Controller) restartLiveDetect() {
	c.mu.Lock()
	c.phase = PhaseLiveDetect
	c.readySince = time.Time{}
	c.mu.Unlock()
}

func (c *Controller) processEnrollmentBurst(survivors []*model.Template, stillPNG []byte) {
	c.mu.Lock()
	c.templatePool = append(c.templatePool, survivors...)
	c.burstsCompleted++
	done := c.burstsCompleted >= c.cfg.Controller.EnrollmentBursts
	pool := c.templatePool
	store := c.store
	c.mu.Unlock()

	if !done {
		c.log.Info("capture_controller", "burst complete, reposition for next burst", map[string]interface{}{"burstsCompleted": c.burstsCompleted})
		c.restartLiveDetect()
		return
	}

	diverse := diverseSelect(pool, enrollmentPoolSize)
	record := &model.SubjectRecord{
		ID:        uuid.NewString(),
		Templates: diverse,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if store != nil && stillPNG != nil {
		path, err := store.Put(context.Background(), record.ID, stillPNG)
		if err != nil {
			c.log.Error("capture_controller", err, map[string]interface{}{"stage": "still_persist", "subjectID": record.ID})
		} else {
			record.IrisImagePath = path
		}
	}

	if c.repo != nil {
		if err := c.repo.Insert(record); err != nil {
			metrics.BurstsCompleted.WithLabelValues(string(config.ModeEnrollment), "repository_unavailable").Inc()
			c.emitDecision(DecisionEvent{Err: ErrRepositoryUnavailable})
			c.mu.Lock()
			c.phase = PhaseIdle
			c.mu.Unlock()
			return
		}
	}

	metrics.BurstsCompleted.WithLabelValues(string(config.ModeEnrollment), "enrolled").Inc()
	metrics.EnrolledSubjects.Inc()
	c.emitDecision(DecisionEvent{Enrolled: record})
	c.mu.Lock()
	c.phase = PhaseIdle
	c.mu.Unlock()
}

func (c *Controller) processVerificationBurst(survivors []*model.Template) {
	probe := survivors[0]

	if c.repo == nil {
		c.emitDecision(DecisionEvent{Err: ErrRepositoryUnavailable})
		c.mu.Lock()
		c.phase = PhaseIdle
		c.mu.Unlock()
		return
	}

	records, err := c.repo.ListWithTemplates()
	if err != nil {
		metrics.BurstsCompleted.WithLabelValues(string(config.ModeVerification), "repository_unavailable").Inc()
		c.emitDecision(DecisionEvent{Err: ErrRepositoryUnavailable})
		c.mu.Lock()
		c.phase = PhaseIdle
		c.mu.Unlock()
		return
	}

	thresholds := match.Thresholds{ConfirmedMax: c.cfg.Match.ConfirmedMax, SuggestedMax: c.cfg.Match.SuggestedMax}

	candidates := make([]Candidate, 0, len(records))
	for _, rec := range records {
		best := 2.0
		for _, tmpl := range rec.Templates {
			d := match.Distance(probe, tmpl)
			if d < best {
				best = d
			}
		}
		zone := match.Classify(best, thresholds)
		metrics.MatchDistance.Observe(best)
		candidates = append(candidates, Candidate{
			SubjectID: rec.ID,
			Distance:  best,
			Type:      zoneToMatchType(zone),
		})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Distance < candidates[j].Distance })

	result := decideCandidates(candidates)
	outcome := "no_match"
	if len(result) > 0 {
		outcome = result[0].Type.String()
	}
	metrics.BurstsCompleted.WithLabelValues(string(config.ModeVerification), outcome).Inc()
	c.emitDecision(DecisionEvent{Candidates: result})

	c.mu.Lock()
	c.phase = PhaseIdle
	c.mu.Unlock()
}

func zoneToMatchType(z match.Zone) MatchType {
	switch z {
	case match.ZoneConfirmed:
		return MatchConfirmed
	case match.ZoneSuggested:
		return MatchSuggested
	default:
		return MatchNone
	}
}

// decideCandidates applies spec.md §4.7's verification decision: a
// confirmed top hit is reported alone; otherwise any suggested-zone
// candidates are returned for disambiguation; otherwise no candidates.
func decideCandidates(sorted []Candidate) []Candidate {
	if len(sorted) == 0 {
		return nil
	}
	if sorted[0].Type == MatchConfirmed {
		return sorted[:1]
	}
	var suggested []Candidate
	for _, c := range sorted {
		if c.Type == MatchSuggested {
			suggested = append(suggested, c)
		}
	}
	return suggested
}
