package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pkt.systems/pslog"

	"rhythm/pkg/realtime"
)

// DefaultTickInterval is the wall-clock length of one timer second.
const DefaultTickInterval = time.Second

// Scheduler delivers a callback periodically until the returned cancel is called.
type Scheduler interface {
	Schedule(interval time.Duration, fn func()) (cancel func())
}

// Snapshot is a read-only view of the engine.
type Snapshot struct {
	RunState        RunState      `json:"runState"`
	Phase           Phase         `json:"phase"`
	CurrentRound    int           `json:"currentRound"`
	TotalRounds     int           `json:"totalRounds"`
	TimeRemaining   int           `json:"timeRemaining"`
	PhaseDuration   int           `json:"phaseDuration"`
	ExerciseIndex   int           `json:"exerciseIndex"`
	Exercise        string        `json:"exercise,omitempty"`
	Exercises       []string      `json:"exercises"`
	Configuration   Configuration `json:"configuration"`
	PhaseProgress   float64       `json:"phaseProgress"`
	OverallProgress float64       `json:"overallProgress"`
}

// Session returns the session portion of the snapshot.
func (s Snapshot) Session() Session {
	return Session{
		RunState:      s.RunState,
		Phase:         s.Phase,
		CurrentRound:  s.CurrentRound,
		TimeRemaining: s.TimeRemaining,
		ExerciseIndex: s.ExerciseIndex,
	}
}

// Engine runs one interval workout. It owns no goroutine; time advances
// through Tick, called by the Scheduler while running.
type Engine struct {
	mu         sync.Mutex
	cfg        Configuration
	exercises  []string
	session    Session
	scheduler  Scheduler
	interval   time.Duration
	cancel     func()
	generation uint64
	events     *realtime.Broadcaster[Event]
	logger     pslog.Logger
	now        func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithScheduler replaces the default interval scheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		if s != nil {
			e.scheduler = s
		}
	}
}

// WithTickInterval sets how long one timer second lasts on the wall clock.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l pslog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an idle engine for cfg.
func New(cfg Configuration, opts ...Option) *Engine {
	cfg = cfg.Normalize()
	e := &Engine{
		cfg:       cfg,
		session:   InitialSession(cfg),
		scheduler: realtime.IntervalScheduler{},
		interval:  DefaultTickInterval,
		events:    realtime.NewBroadcaster[Event](),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = pslog.Ctx(context.Background())
	}
	return e
}

// Subscribe returns a channel of engine events holding up to buffer pending
// events, and a function that ends the subscription. Events are dropped for a
// subscriber whose buffer is full.
func (e *Engine) Subscribe(buffer int) (<-chan Event, func()) {
	ch := e.events.SubscribeDepth(buffer)
	var once sync.Once
	return ch, func() {
		once.Do(func() { e.events.Unsubscribe(ch) })
	}
}

// Start begins or resumes the workout. Starting a running engine does nothing.
// A finished workout must be reset before it can start again.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.session.RunState {
	case Running:
		return nil
	case Idle:
		if e.session.Phase == PhaseFinished {
			return fmt.Errorf("start from %s: %w", e.session.Phase, ErrIllegalTransition)
		}
	}
	resumed := e.session.RunState == Paused
	e.session.RunState = Running
	e.scheduleLocked()
	e.logger.Debug("timer started", "resumed", resumed, "round", e.session.CurrentRound, "phase", e.session.Phase.String())
	e.emitLocked(Event{
		Kind:     EventStarted,
		Phase:    e.session.Phase,
		Round:    e.session.CurrentRound,
		Exercise: e.currentExerciseLocked(),
		Duration: e.cfg.PhaseDuration(e.session.Phase),
		Resumed:  resumed,
	})
	return nil
}

// Pause stops the clock and keeps the remaining time.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.RunState != Running {
		return fmt.Errorf("pause from %s: %w", e.session.RunState, ErrIllegalTransition)
	}
	e.cancelLocked()
	e.session.RunState = Paused
	e.logger.Debug("timer paused", "round", e.session.CurrentRound, "remaining", e.session.TimeRemaining)
	e.emitLocked(Event{
		Kind:        EventPaused,
		Phase:       e.session.Phase,
		Round:       e.session.CurrentRound,
		SecondsLeft: e.session.TimeRemaining,
	})
	return nil
}

// Reset stops the clock and returns to the first work phase.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

// Tick advances the clock by one second. It does nothing unless running.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickLocked()
}

// UpdateConfiguration replaces the configuration while idle. Values below one
// are raised to one.
func (e *Engine) UpdateConfiguration(cfg Configuration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.RunState != Idle {
		return fmt.Errorf("update configuration while %s: %w", e.session.RunState, ErrIllegalTransition)
	}
	e.cfg = cfg.Normalize()
	e.resetLocked()
	return nil
}

// SetExercises replaces the exercise list while idle.
func (e *Engine) SetExercises(list []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.RunState != Idle {
		return fmt.Errorf("set exercises while %s: %w", e.session.RunState, ErrIllegalTransition)
	}
	valid, err := ValidateExercises(list)
	if err != nil {
		return err
	}
	e.exercises = copyExercises(valid)
	e.resetLocked()
	return nil
}

// Configure replaces configuration and exercises together while idle. Nothing
// changes if either is rejected.
func (e *Engine) Configure(cfg Configuration, list []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.RunState != Idle {
		return fmt.Errorf("configure while %s: %w", e.session.RunState, ErrIllegalTransition)
	}
	valid, err := ValidateExercises(list)
	if err != nil {
		return err
	}
	e.cfg = cfg.Normalize()
	e.exercises = copyExercises(valid)
	e.resetLocked()
	return nil
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Close stops any scheduled ticks.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
}

func (e *Engine) resetLocked() {
	e.cancelLocked()
	e.session = InitialSession(e.cfg)
	e.emitLocked(Event{
		Kind:     EventReset,
		Phase:    e.session.Phase,
		Round:    e.session.CurrentRound,
		Duration: e.cfg.WorkDuration,
	})
}

func (e *Engine) scheduleLocked() {
	e.cancelLocked()
	gen := e.generation
	e.cancel = e.scheduler.Schedule(e.interval, func() {
		e.tickGeneration(gen)
	})
}

// cancelLocked invalidates every callback scheduled so far.
func (e *Engine) cancelLocked() {
	e.generation++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) tickGeneration(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		e.logger.Trace("stale tick dropped", "generation", gen, "current", e.generation)
		return
	}
	e.tickLocked()
}

func (e *Engine) tickLocked() {
	if e.session.RunState != Running || e.session.Phase == PhaseFinished {
		return
	}
	if e.session.TimeRemaining > 0 {
		e.session.TimeRemaining--
	}
	left := e.session.TimeRemaining
	if left >= 1 && left <= 3 {
		e.emitLocked(Event{
			Kind:        EventCountdown,
			Phase:       e.session.Phase,
			Round:       e.session.CurrentRound,
			SecondsLeft: left,
		})
	}
	if left == 0 {
		e.transitionLocked()
	}
}

func (e *Engine) transitionLocked() {
	switch e.session.Phase {
	case PhaseWork:
		e.session.Phase = PhaseRest
		e.session.TimeRemaining = e.cfg.RestDuration
		e.logger.Debug("rest entered", "round", e.session.CurrentRound)
		e.emitLocked(Event{
			Kind:     EventPhaseEntered,
			Phase:    PhaseRest,
			Round:    e.session.CurrentRound,
			Duration: e.cfg.RestDuration,
		})
	case PhaseRest:
		if e.session.CurrentRound < e.cfg.Rounds {
			e.session.CurrentRound++
			e.session.Phase = PhaseWork
			e.session.TimeRemaining = e.cfg.WorkDuration
			e.session.ExerciseIndex = nextExerciseIndex(e.session.ExerciseIndex, len(e.exercises))
			exercise := e.currentExerciseLocked()
			e.logger.Debug("work entered", "round", e.session.CurrentRound, "exercise", exercise)
			e.emitLocked(Event{
				Kind:     EventPhaseEntered,
				Phase:    PhaseWork,
				Round:    e.session.CurrentRound,
				Exercise: exercise,
				Duration: e.cfg.WorkDuration,
			})
			return
		}
		e.cancelLocked()
		e.session.Phase = PhaseFinished
		e.session.RunState = Idle
		e.session.TimeRemaining = 0
		e.logger.Info("workout finished", "rounds", e.cfg.Rounds)
		e.emitLocked(Event{
			Kind:  EventWorkoutFinished,
			Phase: PhaseFinished,
			Round: e.session.CurrentRound,
		})
	}
}

func (e *Engine) emitLocked(ev Event) {
	ev.Session = e.snapshotLocked()
	ev.TotalRounds = e.cfg.Rounds
	ev.At = e.now()
	if dropped := e.events.Publish(ev); dropped > 0 {
		e.logger.Trace("timer event dropped", "kind", ev.Kind.String(), "subscribers", dropped)
	}
}

func (e *Engine) currentExerciseLocked() string {
	return ExerciseAt(e.exercises, e.session.ExerciseIndex)
}

func (e *Engine) snapshotLocked() Snapshot {
	exercises := copyExercises(e.exercises)
	if exercises == nil {
		exercises = []string{}
	}
	return Snapshot{
		RunState:        e.session.RunState,
		Phase:           e.session.Phase,
		CurrentRound:    e.session.CurrentRound,
		TotalRounds:     e.cfg.Rounds,
		TimeRemaining:   e.session.TimeRemaining,
		PhaseDuration:   e.cfg.PhaseDuration(e.session.Phase),
		ExerciseIndex:   e.session.ExerciseIndex,
		Exercise:        e.currentExerciseLocked(),
		Exercises:       exercises,
		Configuration:   e.cfg,
		PhaseProgress:   PhaseProgress(e.session, e.cfg),
		OverallProgress: OverallProgress(e.session, e.cfg),
	}
}
