package internal

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// TrackEventKind tells subscribers what happened to a track.
type TrackEventKind int

const (
	TrackUpdated TrackEventKind = iota
	TrackRemoved
)

func (k TrackEventKind) String() string {
	if k == TrackRemoved {
		return "removed"
	}
	return "updated"
}

// TrackEvent carries a full snapshot of the track at the time of the event.
type TrackEvent struct {
	Kind  TrackEventKind
	Track AircraftTrack
}

// CleanupStats summarizes one cleanup pass.
type CleanupStats struct {
	Evicted int
	Tagged  int
}

// TrackStore owns the in-memory state of every aircraft currently observed.
// All methods are safe for concurrent use, snapshots handed out are deep copies.
type TrackStore struct {
	mu           sync.RWMutex
	tracks       map[string]*AircraftTrack
	cfg          Config
	predictor    *Predictor
	persister    Persister
	classifyIdle IdleClassifier
	events       *broadcaster[TrackEvent]
	logger       *slog.Logger
}

// NewTrackStore creates an empty store. The persister may be nil, in which case nothing is
// saved. It should not block, wrap slow storage in an AsyncPersister.
func NewTrackStore(cfg Config, persister Persister, logger *slog.Logger) (*TrackStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("newTrackStore: %w", err)
	}
	if logger == nil {
		logger = discardLogger()
	}
	logger = logger.With(slog.String("component", "trackstore"))

	return &TrackStore{
		tracks:       make(map[string]*AircraftTrack),
		cfg:          cfg,
		predictor:    NewPredictor(cfg),
		persister:    persister,
		classifyIdle: NewHomeBaseClassifier(cfg),
		events:       newBroadcaster[TrackEvent](logger),
		logger:       logger,
	}, nil
}

// SetIdleClassifier replaces the policy applied to idle tracks during cleanup.
// A nil classifier disables status tagging.
func (s *TrackStore) SetIdleClassifier(classifier IdleClassifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classifyIdle = classifier
}

// Subscribe returns a channel receiving an event for every update and eviction.
func (s *TrackStore) Subscribe(buffer int) (<-chan TrackEvent, func(), error) {
	return s.events.subscribe(buffer)
}

// Update applies one normalized position update. Updates without a derivable identity or
// with an out of range position are rejected without touching any state.
func (s *TrackStore) Update(update PositionUpdate) error {
	key, err := update.Validate()
	if err != nil {
		return fmt.Errorf("trackStore.Update: %w", err)
	}

	now := s.cfg.Now()
	if update.Timestamp.IsZero() {
		update.Timestamp = now
	}

	s.mu.Lock()
	track, exists := s.tracks[key]
	if !exists {
		track = newTrack(key, &update)
		s.tracks[key] = track
		s.logger.Debug("new track", slog.String("track", key))
	}

	if track.Status == StatusParking {
		track.Status = StatusNormal
	}
	track.applyMetadata(&update)

	if update.Position != nil {
		track.addSample(update.sample(), &s.cfg)
		if len(track.Positions) >= 2 { //nolint: mnd // two samples give a direction
			s.applyPrediction(track)
		}
	}

	var toPersist *AircraftTrack
	if track.lastPersisted.IsZero() || now.Sub(track.lastPersisted) >= s.cfg.PersistInterval {
		track.lastPersisted = now
		snapshot := track.Clone()
		toPersist = &snapshot
	}
	snapshot := track.Clone()
	s.mu.Unlock()

	if toPersist != nil {
		s.persist(toPersist)
	}
	s.events.publish(TrackEvent{Kind: TrackUpdated, Track: snapshot})

	return nil
}

// applyPrediction stores the predictor result on the track. An empty prediction clears the
// previous path, so no stale path survives a stop.
func (s *TrackStore) applyPrediction(track *AircraftTrack) {
	prediction := s.predictor.Predict(track, s.cfg.PredictionHorizonMins)
	track.PredictedPath = prediction.Path
	track.PredictionConfidence = prediction.Confidence
	track.Velocity = prediction.Velocity
}

// GetActive returns snapshots of every track seen within the inactivity timeout, ordered by id.
func (s *TrackStore) GetActive() []AircraftTrack {
	now := s.cfg.Now()

	s.mu.RLock()
	active := make([]AircraftTrack, 0, len(s.tracks))
	for _, track := range s.tracks {
		if track.IdleFor(now) <= s.cfg.InactivityTimeout {
			active = append(active, track.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Sort(TracksByID(active))
	return active
}

// GetTrack returns a snapshot of the live track with the given id.
func (s *TrackStore) GetTrack(id string) (AircraftTrack, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	track, ok := s.tracks[id]
	if !ok {
		return AircraftTrack{}, false
	}
	return track.Clone(), true
}

// Len returns the number of tracks held in memory, including idle ones awaiting cleanup.
func (s *TrackStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}

// Cleanup evicts tracks idle beyond the inactivity timeout after handing their final state to
// the persister. Tracks that are idle but not yet expired run through the idle classifier.
func (s *TrackStore) Cleanup() CleanupStats {
	now := s.cfg.Now()
	var evicted, tagged []AircraftTrack

	s.mu.Lock()
	for id, track := range s.tracks {
		if track.IdleFor(now) > s.cfg.InactivityTimeout {
			evicted = append(evicted, track.Clone())
			delete(s.tracks, id)
			continue
		}

		// An emergency squawk outranks any idle tag.
		if s.classifyIdle == nil || track.Status == StatusEmergency {
			continue
		}
		if status := s.classifyIdle(track, now); status != "" && status != track.Status {
			track.Status = status
			tagged = append(tagged, track.Clone())
		}
	}
	s.mu.Unlock()

	events := make([]TrackEvent, 0, len(evicted)+len(tagged))
	for i := range tagged {
		s.logger.Info("track tagged", slog.String("track", tagged[i].ID), slog.String("status", tagged[i].Status))
		s.persist(&tagged[i])
		events = append(events, TrackEvent{Kind: TrackUpdated, Track: tagged[i]})
	}
	for i := range evicted {
		s.logger.Debug("track evicted", slog.String("track", evicted[i].ID))
		s.persist(&evicted[i])
		events = append(events, TrackEvent{Kind: TrackRemoved, Track: evicted[i]})
	}
	s.events.publish(events...)

	return CleanupStats{Evicted: len(evicted), Tagged: len(tagged)}
}

// persist hands a snapshot to the persister, failures are logged and otherwise ignored.
func (s *TrackStore) persist(track *AircraftTrack) {
	if s.persister == nil {
		return
	}
	if err := s.persister.SaveTrack(context.Background(), *track); err != nil {
		s.logger.Warn("track not persisted", slog.String("track", track.ID), slog.Any("error", err))
	}
}
