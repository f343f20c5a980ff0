package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/brunoga/deep"
)

// Track status tags. The status is informational, it never affects eviction.
const (
	StatusNormal    = "normal"
	StatusParking   = "parking"
	StatusEmergency = "emergency"
)

// emergencySquawks are the transponder codes reserved for hijack, radio failure and emergency.
var emergencySquawks = map[string]bool{ //nolint: gochecknoglobals // constant lookup table
	"7500": true,
	"7600": true,
	"7700": true,
}

// AircraftTrack is the evolving record of one aircraft.
// Identity fields are fixed at creation, everything else is refreshed by updates.
type AircraftTrack struct {
	ID           string `msgpack:"id"`
	Hex          string `msgpack:"hex,omitempty"`
	Tail         string `msgpack:"tail,omitempty"`
	Flight       string `msgpack:"flight,omitempty"` // callsign, may change during the life of the track
	AircraftType string `msgpack:"type,omitempty"`
	Squawk       string `msgpack:"squawk,omitempty"`
	Status       string `msgpack:"status"`

	FirstSeen time.Time `msgpack:"first_seen"`
	LastSeen  time.Time `msgpack:"last_seen"`

	// Positions is the time ordered, noise filtered history, oldest samples are dropped first.
	Positions []PositionSample `msgpack:"positions"`
	// LastPosition is the most recent reported sample, even if it was too close to be kept.
	LastPosition *PositionSample `msgpack:"last_position,omitempty"`

	PredictedPath        []PositionSample `msgpack:"predicted_path,omitempty"`
	PredictionConfidence float64          `msgpack:"prediction_confidence"`
	Velocity             *Velocity        `msgpack:"velocity,omitempty"`

	lastPersisted time.Time
}

func newTrack(key string, update *PositionUpdate) *AircraftTrack {
	return &AircraftTrack{
		ID:        key,
		Hex:       strings.ToLower(strings.TrimSpace(update.Identity.Hex)),
		Tail:      strings.ToUpper(strings.TrimSpace(update.Identity.Tail)),
		Status:    StatusNormal,
		FirstSeen: update.Timestamp,
		LastSeen:  update.Timestamp,
	}
}

// Callsign returns the trimmed flight number, falling back to tail and id.
func (t *AircraftTrack) Callsign() string {
	if flight := strings.TrimSpace(t.Flight); flight != "" {
		return flight
	}
	if t.Tail != "" {
		return t.Tail
	}
	return t.ID
}

// Clone returns a deep copy that shares no memory with the live track.
func (t *AircraftTrack) Clone() AircraftTrack {
	return deep.MustCopy(*t)
}

func (t *AircraftTrack) String() string {
	return fmt.Sprintf("Track %s (%s): %d points, %s -> %s, status=%s", t.ID, t.Callsign(),
		len(t.Positions), t.FirstSeen.Format(time.TimeOnly), t.LastSeen.Format(time.TimeOnly), t.Status)
}

// applyMetadata refreshes the non-positional fields from an update.
// Empty fields in the update keep the previous value.
func (t *AircraftTrack) applyMetadata(update *PositionUpdate) {
	if flight := strings.TrimSpace(update.Flight); flight != "" {
		t.Flight = flight
	}
	if update.AircraftType != "" {
		t.AircraftType = update.AircraftType
	}
	if t.Tail == "" && update.Identity.Tail != "" {
		t.Tail = strings.ToUpper(strings.TrimSpace(update.Identity.Tail))
	}

	if update.Squawk != "" {
		t.Squawk = update.Squawk
		switch {
		case emergencySquawks[update.Squawk]:
			t.Status = StatusEmergency
		case t.Status == StatusEmergency:
			t.Status = StatusNormal
		}
	}

	if update.Timestamp.After(t.LastSeen) {
		t.LastSeen = update.Timestamp
	}
}

// addSample records the latest reported sample and appends it to the history when it is
// at least minGap later and minMoveKm away from the last stored one.
// Returns whether the history was extended.
func (t *AircraftTrack) addSample(sample PositionSample, cfg *Config) bool {
	if t.LastPosition == nil || !sample.Timestamp.Before(t.LastPosition.Timestamp) {
		latest := sample
		t.LastPosition = &latest
	}

	if n := len(t.Positions); n > 0 {
		last := t.Positions[n-1]
		if sample.Timestamp.Sub(last.Timestamp) < cfg.MinSampleGap {
			return false
		}
		moved := Distance(last.Position.coordinates(), sample.Position.coordinates()).Kilometers()
		if moved < cfg.MinSampleMoveKm {
			return false
		}
	}

	t.Positions = append(t.Positions, sample)
	if excess := len(t.Positions) - cfg.MaxPositions; excess > 0 {
		copy(t.Positions, t.Positions[excess:])
		t.Positions = t.Positions[:cfg.MaxPositions]
	}

	return true
}

// IdleFor returns how long the track has not been seen at the given time.
func (t *AircraftTrack) IdleFor(now time.Time) time.Duration {
	return now.Sub(t.LastSeen)
}
