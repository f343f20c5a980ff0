package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// resolvedCacheSize bounds how many resolved conflicts remain queryable by id.
const resolvedCacheSize = 1024

var errTickPanic = errors.New("conflict tick panicked")

// ConflictEventKind describes a transition of a conflict.
type ConflictEventKind int

const (
	ConflictDetected ConflictEventKind = iota
	ConflictUpdated
	ConflictResolved
)

func (k ConflictEventKind) String() string {
	switch k {
	case ConflictDetected:
		return "detected"
	case ConflictUpdated:
		return "updated"
	case ConflictResolved:
		return "resolved"
	}
	return "unknown"
}

// ConflictEvent carries a snapshot of the conflict after the transition.
type ConflictEvent struct {
	Kind     ConflictEventKind
	Conflict Conflict
}

// ActiveTrackSource provides the snapshot the detector scans on every tick.
type ActiveTrackSource interface {
	GetActive() []AircraftTrack
}

// TickResult counts the transitions of one detector tick.
type TickResult struct {
	Flying   int
	Detected int
	Updated  int
	Resolved int
}

// ConflictDetector compares every pair of flying aircraft on each tick and keeps the set of
// active conflicts. At most one active conflict exists per pair of aircraft.
type ConflictDetector struct {
	tickMu    sync.Mutex // serializes ticks
	mu        sync.RWMutex
	active    map[string]*Conflict // keyed by pair key
	resolved  *expirable.LRU[string, Conflict]
	source    ActiveTrackSource
	cfg       Config
	persister Persister
	events    *broadcaster[ConflictEvent]
	logger    *slog.Logger

	// evaluate checks one pair, tests replace it to inject failures.
	evaluate func(a, b *AircraftTrack) *Conflict
}

func NewConflictDetector(
	cfg Config,
	source ActiveTrackSource,
	persister Persister,
	logger *slog.Logger,
) (*ConflictDetector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("newConflictDetector: %w", err)
	}
	if logger == nil {
		logger = discardLogger()
	}
	logger = logger.With(slog.String("component", "detector"))

	detector := &ConflictDetector{
		active:    make(map[string]*Conflict),
		resolved:  expirable.NewLRU[string, Conflict](resolvedCacheSize, nil, cfg.ResolvedRetained),
		source:    source,
		cfg:       cfg,
		persister: persister,
		events:    newBroadcaster[ConflictEvent](logger),
		logger:    logger,
		evaluate:  nil,
	}
	detector.evaluate = detector.evaluatePair

	return detector, nil
}

// Subscribe returns a channel receiving every detected, updated and resolved transition.
func (d *ConflictDetector) Subscribe(buffer int) (<-chan ConflictEvent, func(), error) {
	return d.events.subscribe(buffer)
}

// GetActiveConflicts returns snapshots of all active conflicts, most urgent first.
func (d *ConflictDetector) GetActiveConflicts() []Conflict {
	d.mu.RLock()
	conflicts := make([]Conflict, 0, len(d.active))
	for _, c := range d.active {
		conflicts = append(conflicts, *c)
	}
	d.mu.RUnlock()

	return SortConflicts(conflicts)
}

// GetConflictByID looks up an active conflict, or one resolved within the retention window.
func (d *ConflictDetector) GetConflictByID(id string) (Conflict, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, c := range d.active {
		if c.ID == id {
			return *c, true
		}
	}

	return d.resolved.Get(id)
}

// Tick runs one detection pass. It never panics: a failure while fetching the tracks aborts
// the tick, a failure while evaluating a pair skips only that pair.
func (d *ConflictDetector) Tick() TickResult {
	d.tickMu.Lock()
	defer d.tickMu.Unlock()

	now := d.cfg.Now()
	tracks, err := d.fetchActive()
	if err != nil {
		d.logger.Error("tick aborted", slog.Any("error", err))
		return TickResult{}
	}

	flying := make([]*AircraftTrack, 0, len(tracks))
	for i := range tracks {
		if d.isFlying(&tracks[i]) {
			flying = append(flying, &tracks[i])
		}
	}

	candidates := make(map[string]*Conflict)
	for i := 0; i < len(flying); i++ {
		for j := i + 1; j < len(flying); j++ {
			if c := d.safeEvaluatePair(flying[i], flying[j]); c != nil {
				candidates[c.PairKey()] = c
			}
		}
	}

	events := d.apply(candidates, now)
	result := TickResult{Flying: len(flying)}
	for _, ev := range events {
		switch ev.Kind {
		case ConflictDetected:
			result.Detected++
		case ConflictUpdated:
			result.Updated++
		case ConflictResolved:
			result.Resolved++
		}
		d.persist(ev.Conflict)
	}
	d.events.publish(events...)

	return result
}

func (d *ConflictDetector) fetchActive() (tracks []AircraftTrack, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetchActive: %w: %v", errTickPanic, r)
		}
	}()

	return d.source.GetActive(), nil
}

// apply diffs the candidate set against the active map and returns the transitions,
// resolved first, then detected and updated, each ordered by id.
func (d *ConflictDetector) apply(candidates map[string]*Conflict, now time.Time) []ConflictEvent {
	var resolved, detected, updated []ConflictEvent

	d.mu.Lock()
	for key, old := range d.active {
		if _, still := candidates[key]; still {
			continue
		}
		resolvedAt := now
		old.ResolvedAt = &resolvedAt
		old.Status = ConflictStatusResolved
		delete(d.active, key)
		d.resolved.Add(old.ID, *old)
		resolved = append(resolved, ConflictEvent{Kind: ConflictResolved, Conflict: *old})
	}

	for key, c := range candidates {
		old, exists := d.active[key]
		if !exists {
			c.DetectedAt = now
			c.ID = conflictID(c.Aircraft1ID, c.Aircraft2ID, now)
			c.Status = ConflictStatusActive
			d.active[key] = c
			detected = append(detected, ConflictEvent{Kind: ConflictDetected, Conflict: *c})
			continue
		}

		old.Aircraft1Callsign = c.Aircraft1Callsign
		old.Aircraft2Callsign = c.Aircraft2Callsign
		old.MinHorizontalNM = c.MinHorizontalNM
		old.MinVerticalFt = c.MinVerticalFt
		old.TimeToCPASeconds = c.TimeToCPASeconds
		old.Severity = c.Severity
		old.PredictedViolation = c.PredictedViolation
		updated = append(updated, ConflictEvent{Kind: ConflictUpdated, Conflict: *old})
	}
	d.mu.Unlock()

	for _, group := range [][]ConflictEvent{resolved, detected, updated} {
		sort.Slice(group, func(i, j int) bool { return group[i].Conflict.ID < group[j].Conflict.ID })
	}

	events := make([]ConflictEvent, 0, len(resolved)+len(detected)+len(updated))
	events = append(events, resolved...)
	events = append(events, detected...)
	return append(events, updated...)
}

// isFlying excludes aircraft on the ground or taxiing, and those without a usable position.
func (d *ConflictDetector) isFlying(track *AircraftTrack) bool {
	last := track.LastPosition
	if last == nil || !last.Position.IsValid() || last.Altitude == nil || last.OnGround {
		return false
	}

	speed := -1.0
	switch {
	case last.GroundSpeed != nil:
		speed = *last.GroundSpeed
	case track.Velocity != nil:
		speed = track.Velocity.GroundSpeedKt
	}

	return *last.Altitude > d.cfg.FlyingMinAltitudeFt && speed > d.cfg.FlyingMinGroundSpeed
}

func (d *ConflictDetector) safeEvaluatePair(a, b *AircraftTrack) (conflict *Conflict) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("pair evaluation failed",
				slog.String("aircraft_1", a.ID), slog.String("aircraft_2", b.ID), slog.Any("panic", r))
			conflict = nil
		}
	}()

	return d.evaluate(a, b)
}

// evaluatePair checks the current separation, the predicted paths and finally the close
// encounter margin. It returns nil when the pair is not in conflict.
func (d *ConflictDetector) evaluatePair(a, b *AircraftTrack) *Conflict {
	if b.ID < a.ID {
		a, b = b, a
	}

	horizontal := a.LastPosition.Position.DistanceNM(b.LastPosition.Position)
	vertical := math.Abs(*a.LastPosition.Altitude - *b.LastPosition.Altitude)

	conflict := &Conflict{
		Aircraft1ID:       a.ID,
		Aircraft2ID:       b.ID,
		Aircraft1Callsign: a.Callsign(),
		Aircraft2Callsign: b.Callsign(),
		MinHorizontalNM:   horizontal,
		MinVerticalFt:     vertical,
		TimeToCPASeconds:  0,
		Severity:          SeverityCritical,
		Status:            ConflictStatusActive,
	}

	if d.violatesMinima(horizontal, vertical, 1) {
		return conflict
	}

	if len(a.PredictedPath) > 0 && len(b.PredictedPath) > 0 {
		if predicted := d.scanPredictedPaths(a.PredictedPath, b.PredictedPath); predicted != nil {
			conflict.MinHorizontalNM = predicted.MinHorizontalNM
			conflict.MinVerticalFt = predicted.MinVerticalFt
			conflict.TimeToCPASeconds = predicted.TimeToCPASeconds
			conflict.Severity = predicted.Severity
			conflict.PredictedViolation = true
			return conflict
		}
	}

	if d.violatesMinima(horizontal, vertical, d.cfg.CloseEncounterFactor) {
		conflict.Severity = SeverityMedium
		return conflict
	}

	return nil
}

// violatesMinima is strict, a separation exactly at the minimum is not a violation.
func (d *ConflictDetector) violatesMinima(horizontalNM, verticalFt, factor float64) bool {
	return horizontalNM < d.cfg.HorizontalMinimumNM*factor && verticalFt < d.cfg.VerticalMinimumFt*factor
}

// scanPredictedPaths walks both paths minute by minute and stops at the first minute where
// both minima are violated. The reported horizontal distance is the smallest seen until then.
func (d *ConflictDetector) scanPredictedPaths(pathA, pathB []PositionSample) *Conflict {
	minSeen := math.Inf(1)

	for i := 0; i < len(pathA) && i < len(pathB); i++ {
		pa, pb := pathA[i], pathB[i]
		horizontal := pa.Position.DistanceNM(pb.Position)
		minSeen = math.Min(minSeen, horizontal)

		if pa.Altitude == nil || pb.Altitude == nil {
			continue
		}
		vertical := math.Abs(*pa.Altitude - *pb.Altitude)

		if d.violatesMinima(horizontal, vertical, 1) {
			timeToCPA := (i + 1) * 60 //nolint: mnd // one path point per minute
			return &Conflict{
				MinHorizontalNM:  minSeen,
				MinVerticalFt:    vertical,
				TimeToCPASeconds: timeToCPA,
				Severity:         severityForTimeToCPA(timeToCPA),
			}
		}
	}

	return nil
}

func (d *ConflictDetector) persist(conflict Conflict) {
	if d.persister == nil {
		return
	}
	if err := d.persister.SaveConflict(context.Background(), conflict); err != nil {
		d.logger.Warn("conflict not persisted", slog.String("conflict", conflict.ID), slog.Any("error", err))
	}
}
