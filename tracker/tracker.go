// Package tracker runs the three perpetual loops of the engine:
// classify new processes, accumulate per-day game timings, and enforce
// time limits. The loops share the ledger and the classifier and stop
// together through one cancellation signal.
package tracker

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/generalpy101/fix-life/entity"
	"github.com/generalpy101/fix-life/notify"
	"github.com/generalpy101/fix-life/query"
	"github.com/generalpy101/fix-life/snapshot"
)

const (
	defaultTick             = 2 * time.Second
	defaultClassifyInterval = 60 * time.Second
	defaultEnforceInterval  = 10 * time.Second

	// violationCountLimit is how many recorded violations a game gets
	// before enforcement switches from warning to killing.
	violationCountLimit = 3

	joinTimeout = 2 * time.Second
)

// Classifier is the slice of the classification engine the tracker
// needs.
type Classifier interface {
	Classify(procs []snapshot.Process)
	IsGame(p snapshot.Process) (bool, error)
}

// Options tunes the tracker. Zero values fall back to the production
// cadences (2s tick, 60s classify, 10s enforce) and the real clock.
type Options struct {
	Clock            clockwork.Clock
	Tick             time.Duration
	ClassifyInterval time.Duration
	EnforceInterval  time.Duration
}

// Tracker orchestrates the three loops. Exactly one instance should
// run per host; the accounting arithmetic assumes singleton workers.
type Tracker struct {
	db         *query.Database
	classifier Classifier
	provider   snapshot.Provider
	notifier   notify.Notifier
	clock      clockwork.Clock
	seen       *seenSet
	stop       chan struct{}
	log        zerolog.Logger
	wg         sync.WaitGroup
	stopOnce   sync.Once

	tick             time.Duration
	classifyInterval time.Duration
	enforceInterval  time.Duration
}

func NewTracker(
	db *query.Database,
	classifier Classifier,
	provider snapshot.Provider,
	notifier notify.Notifier,
	opts Options,
) *Tracker {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Tick == 0 {
		opts.Tick = defaultTick
	}
	if opts.ClassifyInterval == 0 {
		opts.ClassifyInterval = defaultClassifyInterval
	}
	if opts.EnforceInterval == 0 {
		opts.EnforceInterval = defaultEnforceInterval
	}
	return &Tracker{
		db:               db,
		classifier:       classifier,
		provider:         provider,
		notifier:         notifier,
		clock:            opts.Clock,
		stop:             make(chan struct{}),
		log:              log.With().Str("component", "tracker").Logger(),
		tick:             opts.Tick,
		classifyInterval: opts.ClassifyInterval,
		enforceInterval:  opts.EnforceInterval,
	}
}

// Start bootstraps today's data, seeds the session seen-set from the
// ledger and launches the three loops.
func (t *Tracker) Start() error {
	if err := t.ensureTodayPopulated(); err != nil {
		return err
	}

	classified, err := t.db.GetClassifiedNames()
	if err != nil {
		return err
	}
	t.seen = newSeenSet(classified)

	t.wg.Add(3)
	go t.runLoop("classify", t.classifyInterval, t.classifyPass)
	go t.runAccounting()
	go t.runLoop("enforce", t.enforceInterval, t.enforcePass)

	t.log.Info().Msg("tracker started")
	return nil
}

// Stop signals all loops and waits for them with a bounded timeout.
// In-flight ledger writes are not guaranteed to finish before return.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		t.log.Info().Msg("tracker stopped")
	case <-time.After(joinTimeout):
		t.log.Warn().Msg("tracker loops did not stop in time")
	}
}

// runLoop drives one pass function on a fixed cadence. All loops share
// the same failure policy: log and continue to the next iteration.
func (t *Tracker) runLoop(name string, interval time.Duration, pass func() error) {
	defer t.wg.Done()
	for {
		select {
		case <-t.stop:
			return
		default:
		}

		if err := pass(); err != nil {
			t.log.Error().Err(err).Str("loop", name).Msg("loop iteration failed")
		}

		select {
		case <-t.stop:
			return
		case <-t.clock.After(interval):
		}
	}
}

// classifyPass snapshots processes and hands the ones never seen this
// session to the classifier.
func (t *Tracker) classifyPass() error {
	procs := t.provider.Snapshot()

	var fresh []snapshot.Process
	for _, p := range procs {
		if name := p.Name(); name != "" && !t.seen.Contains(name) {
			fresh = append(fresh, p)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	t.classifier.Classify(fresh)
	for _, p := range fresh {
		t.seen.Add(p.Name())
	}
	t.log.Info().Int("count", len(fresh)).Msg("classified new processes")
	return nil
}

// pidEntry is the accounting loop's per-PID cache value. The cache is
// owned exclusively by the accounting goroutine; nothing else may
// touch it.
type pidEntry struct {
	name    string
	created time.Time
}

func (t *Tracker) runAccounting() {
	defer t.wg.Done()

	cache := make(map[int32]pidEntry)
	previousTick := t.clock.Now()

	for {
		select {
		case <-t.stop:
			return
		default:
		}

		next, err := t.accountingTick(cache, previousTick)
		if err != nil {
			// A dead accounting loop means silently undercounted
			// playtime, so failures stay loud but the loop lives on.
			t.log.Error().Err(err).Msg("accounting tick failed")
		}
		previousTick = next

		select {
		case <-t.stop:
			return
		case <-t.clock.After(t.tick):
		}
	}
}

// accountingTick performs one accounting pass and returns the timestamp
// the next tick's delta starts from. Both delta endpoints come from
// this iteration (and the previous one's tail), so overlapping ticks
// cannot double count.
func (t *Tracker) accountingTick(cache map[int32]pidEntry, previousTick time.Time) (time.Time, error) {
	if err := t.ensureTodayPopulated(); err != nil {
		return t.clock.Now(), err
	}

	procs := t.provider.Snapshot()
	currentTick := t.clock.Now()
	updated := make(map[string]int64)

	for _, p := range procs {
		isGame, err := t.classifier.IsGame(p)
		if err != nil || !isGame {
			continue
		}
		name := p.Name()
		pid := p.Pid()

		if _, cached := cache[pid]; !cached {
			cache[pid] = pidEntry{name: name, created: p.CreateTime()}

			existing, err := t.db.GetTimingForExe(name)
			if err != nil {
				t.log.Error().Err(err).Str("exe", name).Msg("timing lookup failed")
				continue
			}
			if existing == 0 {
				// The game was already running before we started
				// watching: credit the time since process creation as
				// an absolute value and skip the delta this tick.
				backfilled := int64(currentTick.Sub(p.CreateTime()).Seconds())
				if backfilled < 0 {
					backfilled = 0
				}
				if err := t.db.SetDuration(name, backfilled); err != nil {
					t.log.Error().Err(err).Str("exe", name).Msg("backfill failed")
				}
				continue
			}
		}

		if delta := int64(currentTick.Sub(previousTick).Seconds()); delta > 0 {
			updated[name] += delta
		}
	}

	for name, delta := range updated {
		if err := t.db.AddDuration(name, delta); err != nil {
			t.log.Error().Err(err).Str("exe", name).Msg("duration update failed")
		}
	}

	// Evict PIDs that are gone; a reused PID then starts from a fresh
	// cache entry and can never inherit a stale name.
	live := make(map[int32]struct{}, len(procs))
	for _, p := range procs {
		live[p.Pid()] = struct{}{}
	}
	for pid := range cache {
		if _, ok := live[pid]; !ok {
			delete(cache, pid)
		}
	}

	return t.clock.Now(), nil
}

// enforcePass checks running games against their limits, then warns or
// kills depending on how often each game has been flagged today.
func (t *Tracker) enforcePass() error {
	procs := t.provider.Snapshot()

	running := make(map[string]struct{}, len(procs))
	runningNames := make([]string, 0, len(procs))
	for _, p := range procs {
		if name := p.Name(); name != "" {
			if _, dup := running[name]; !dup {
				running[name] = struct{}{}
				runningNames = append(runningNames, name)
			}
		}
	}

	violations, err := t.db.ViolationsFor(runningNames)
	if err != nil {
		return err
	}

	for _, v := range violations {
		if _, isRunning := running[v.ExeName]; !isRunning {
			continue
		}

		count, err := t.db.GetViolationCount(v.ExeName)
		if err != nil {
			t.log.Error().Err(err).Str("exe", v.ExeName).Msg("violation count lookup failed")
			continue
		}

		state := entity.EscalationFor(count, violationCountLimit)
		switch state.Kind {
		case entity.Warned:
			t.log.Warn().Str("exe", v.ExeName).Stringer("state", state).
				Msg("time limit exceeded, warning user")
			t.notifier.Warn(v.ExeName, v.MaxTime)
		case entity.Killed:
			t.log.Warn().Str("exe", v.ExeName).Stringer("state", state).
				Msg("killing process for exceeding violation limit")
			for _, p := range procs {
				if p.Name() != v.ExeName {
					continue
				}
				if err := p.Kill(); err != nil {
					t.log.Error().Err(err).Str("exe", v.ExeName).Int32("pid", p.Pid()).
						Msg("kill failed")
				}
			}
			t.notifier.ForceKill(v.ExeName)
		case entity.WithinLimit:
			// Reported but not re-flagged this pass (e.g. no longer
			// running); nothing to do.
		}
	}
	return nil
}

// ensureTodayPopulated runs the idempotent daily bootstrap.
func (t *Tracker) ensureTodayPopulated() error {
	populated, err := t.db.IsPopulatedToday()
	if err != nil {
		return err
	}
	if populated {
		return nil
	}
	t.log.Info().Msg("populating initial data for today")
	return t.db.PopulateToday()
}
