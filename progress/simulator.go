// Package progress fabricates plausible stage statuses while an analysis
// request is in flight. It knows nothing about the real backend state; the
// authoritative pipeline status replaces whatever it shows.
package progress

import (
	"sync"
	"time"

	"agent-console/models"
)

// StageSetter is the board a progress source writes to.
type StageSetter interface {
	StageDisplay(stage models.Stage) models.StageDisplay
	SetStage(stage models.Stage, display models.StageDisplay)
}

// Stopper cancels a running progress source. Stop is idempotent; once it
// returns no further stage update is made.
type Stopper interface {
	Stop()
}

// Source produces interim stage statuses for one submission.
type Source interface {
	Start(target StageSetter) Stopper
}

// Config holds the simulator timings.
type Config struct {
	Tick         time.Duration
	CollectAfter time.Duration
	AnalyzeAfter time.Duration
	Bound        time.Duration
}

// NewConfig expresses the thresholds as multiples of the tick period.
func NewConfig(tick time.Duration, collectTicks, analyzeTicks, boundTicks int) Config {
	return Config{
		Tick:         tick,
		CollectAfter: time.Duration(collectTicks) * tick,
		AnalyzeAfter: time.Duration(analyzeTicks) * tick,
		Bound:        time.Duration(boundTicks) * tick,
	}
}

// DefaultConfig ticks every second: collection done after 3s, analysis after
// 6s, give up after 20s.
var DefaultConfig = NewConfig(time.Second, 3, 6, 20)

// Simulator advances the stage board from elapsed time alone.
type Simulator struct {
	cfg   Config
	clock Clock
}

func NewSimulator(cfg Config) *Simulator {
	return &Simulator{cfg: cfg, clock: realClock{}}
}

// WithClock replaces the time source.
func (s *Simulator) WithClock(c Clock) *Simulator {
	s.clock = c
	return s
}

// Start marks data collection as processing and begins ticking.
func (s *Simulator) Start(target StageSetter) Stopper {
	target.SetStage(models.StageDataCollection, models.NewStageDisplay(models.StageStatusProcessing))

	r := &Run{
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}

	start := s.clock.Now()
	ticker := s.clock.NewTicker(s.cfg.Tick)

	go func() {
		defer close(r.exited)
		defer ticker.Stop()

		for {
			select {
			case <-r.done:
				return
			case <-ticker.C():
				select {
				case <-r.done:
					return
				default:
				}
				if s.Advance(target, s.clock.Now().Sub(start)) {
					return
				}
			}
		}
	}()

	return r
}

// Advance applies the transitions due at elapsed and reports whether the
// simulator has reached its bound.
func (s *Simulator) Advance(target StageSetter, elapsed time.Duration) bool {
	if elapsed > s.cfg.CollectAfter &&
		target.StageDisplay(models.StageDataCollection).Status == models.StageStatusProcessing &&
		target.StageDisplay(models.StageAnalysis).Status == models.StageStatusIdle {
		target.SetStage(models.StageDataCollection, models.NewStageDisplay(models.StageStatusCompleted))
		target.SetStage(models.StageAnalysis, models.NewStageDisplay(models.StageStatusProcessing))
	}

	if elapsed > s.cfg.AnalyzeAfter &&
		target.StageDisplay(models.StageAnalysis).Status == models.StageStatusProcessing &&
		target.StageDisplay(models.StageVisualization).Status == models.StageStatusIdle {
		target.SetStage(models.StageAnalysis, models.NewStageDisplay(models.StageStatusCompleted))
		target.SetStage(models.StageVisualization, models.NewStageDisplay(models.StageStatusProcessing))
	}

	return elapsed > s.cfg.Bound
}

// Run is a started simulator.
type Run struct {
	once   sync.Once
	done   chan struct{}
	exited chan struct{}
}

// Stop cancels the ticker and waits for the tick loop to exit.
func (r *Run) Stop() {
	r.once.Do(func() { close(r.done) })
	<-r.exited
}

// Done is closed when the tick loop has exited, either stopped or bounded.
func (r *Run) Done() <-chan struct{} {
	return r.exited
}

// Static only marks data collection as processing. It suits callers that
// cannot observe interim updates.
type Static struct{}

func (Static) Start(target StageSetter) Stopper {
	target.SetStage(models.StageDataCollection, models.NewStageDisplay(models.StageStatusProcessing))
	return nopStopper{}
}

type nopStopper struct{}

func (nopStopper) Stop() {}
