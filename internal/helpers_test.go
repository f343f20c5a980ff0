package internal

import (
	"context"
	"sync"
	"time"
)

var testEpoch = time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testEpoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig(clock *fakeClock) Config {
	cfg := DefaultConfig()
	cfg.Now = clock.Now
	return cfg
}

type recordingPersister struct {
	mu        sync.Mutex
	tracks    []AircraftTrack
	conflicts []Conflict
}

func (rp *recordingPersister) SaveTrack(_ context.Context, track AircraftTrack) error {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.tracks = append(rp.tracks, track)
	return nil
}

func (rp *recordingPersister) SaveConflict(_ context.Context, conflict Conflict) error {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.conflicts = append(rp.conflicts, conflict)
	return nil
}

func (rp *recordingPersister) savedTracks() []AircraftTrack {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return append([]AircraftTrack(nil), rp.tracks...)
}

func (rp *recordingPersister) savedConflicts() []Conflict {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return append([]Conflict(nil), rp.conflicts...)
}

// airborneUpdate builds a complete update for an aircraft in cruise.
func airborneUpdate(hex string, lat, lon, altitude, heading, speed float64, ts time.Time) PositionUpdate {
	return PositionUpdate{
		Identity:     Identity{Hex: hex},
		Position:     &LatLon{Lat: lat, Lon: lon},
		Altitude:     floatPtr(altitude),
		Heading:      floatPtr(heading),
		GroundSpeed:  floatPtr(speed),
		VerticalRate: floatPtr(0),
		Flight:       "TST" + hex,
		Timestamp:    ts,
	}
}

// sampleAt builds an observed sample for tests that assemble tracks by hand.
func sampleAt(ts time.Time, lat, lon, altitude, heading, speed float64) PositionSample {
	return PositionSample{
		Timestamp:    ts,
		Position:     LatLon{Lat: lat, Lon: lon},
		Altitude:     floatPtr(altitude),
		Heading:      floatPtr(heading),
		GroundSpeed:  floatPtr(speed),
		VerticalRate: floatPtr(0),
		Confidence:   1,
	}
}
