package internal

import (
	"testing"
	"time"
)

func TestIdentityKey(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		expected string
		ok       bool
	}{
		{"hex wins", Identity{Hex: "76CDB1", Tail: "9V-SMF", ID: "x"}, "76cdb1", true},
		{"tail without hex", Identity{Tail: " 9v-smf ", ID: "x"}, "9V-SMF", true},
		{"external id last", Identity{ID: "mlat-17"}, "mlat-17", true},
		{"blank fields", Identity{Hex: "  ", Tail: ""}, "", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			key, ok := test.identity.Key()
			if key != test.expected || ok != test.ok {
				t.Errorf("Key() = %q, %v, want %q, %v", key, ok, test.expected, test.ok)
			}
		})
	}
}

func TestAddSampleSignificanceFilter(t *testing.T) {
	cfg := DefaultConfig()
	track := &AircraftTrack{ID: "abc"}

	steps := []struct {
		name     string
		sample   PositionSample
		appended bool
	}{
		{"first sample", sampleAt(testEpoch, 40, -73, 10000, 90, 400), true},
		{"too soon", sampleAt(testEpoch.Add(500*time.Millisecond), 40.1, -73, 10000, 90, 400), false},
		{"too close", sampleAt(testEpoch.Add(2*time.Second), 40.0003, -73, 10000, 90, 400), false},
		{"significant", sampleAt(testEpoch.Add(3*time.Second), 40.01, -73, 10000, 90, 400), true},
	}

	for _, step := range steps {
		if got := track.addSample(step.sample, &cfg); got != step.appended {
			t.Errorf("%s: addSample() = %v, want %v", step.name, got, step.appended)
		}
		if !track.LastPosition.Timestamp.Equal(step.sample.Timestamp) {
			t.Errorf("%s: last position not refreshed", step.name)
		}
	}

	if len(track.Positions) != 2 {
		t.Errorf("want 2 stored positions, got %d", len(track.Positions))
	}
}

func TestAddSampleCapsHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPositions = 5
	track := &AircraftTrack{ID: "abc"}

	for i := 0; i < 8; i++ {
		ts := testEpoch.Add(time.Duration(i) * 10 * time.Second)
		track.addSample(sampleAt(ts, 40+0.01*float64(i), -73, 10000, 0, 400), &cfg)
	}

	if len(track.Positions) != cfg.MaxPositions {
		t.Fatalf("want %d positions, got %d", cfg.MaxPositions, len(track.Positions))
	}
	if want := testEpoch.Add(30 * time.Second); !track.Positions[0].Timestamp.Equal(want) {
		t.Errorf("oldest kept sample at %v, want %v", track.Positions[0].Timestamp, want)
	}
	for i := 1; i < len(track.Positions); i++ {
		if !track.Positions[i].Timestamp.After(track.Positions[i-1].Timestamp) {
			t.Errorf("positions out of order at %d", i)
		}
	}
}

func TestAddSampleKeepsNewestLastPosition(t *testing.T) {
	cfg := DefaultConfig()
	track := &AircraftTrack{ID: "abc"}

	track.addSample(sampleAt(testEpoch.Add(time.Minute), 40, -73, 10000, 0, 400), &cfg)
	track.addSample(sampleAt(testEpoch, 41, -73, 10000, 0, 400), &cfg)

	if !track.LastPosition.Timestamp.Equal(testEpoch.Add(time.Minute)) {
		t.Errorf("late sample replaced the newest one: %v", track.LastPosition)
	}
}

func TestApplyMetadata(t *testing.T) {
	update := PositionUpdate{Identity: Identity{Hex: "abc"}, Flight: "SIA1  ", Squawk: "7700", Timestamp: testEpoch}
	track := newTrack("abc", &update)
	track.applyMetadata(&update)

	if track.Callsign() != "SIA1" {
		t.Errorf("callsign = %q", track.Callsign())
	}
	if track.Status != StatusEmergency {
		t.Errorf("emergency squawk not tagged, status %s", track.Status)
	}

	older := PositionUpdate{Identity: Identity{Hex: "abc"}, Squawk: "2000", Timestamp: testEpoch.Add(-time.Minute)}
	track.applyMetadata(&older)

	if !track.LastSeen.Equal(testEpoch) {
		t.Errorf("last seen moved backwards to %v", track.LastSeen)
	}
	if track.Status != StatusNormal {
		t.Errorf("status not cleared after squawk change: %s", track.Status)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := DefaultConfig()
	track := &AircraftTrack{ID: "abc"}
	track.addSample(sampleAt(testEpoch, 40, -73, 10000, 0, 400), &cfg)

	snapshot := track.Clone()
	snapshot.Positions[0].Position.Lat = 0
	*snapshot.LastPosition.Altitude = 0

	if track.Positions[0].Position.Lat != 40 || *track.LastPosition.Altitude != 10000 {
		t.Error("mutating the snapshot changed the live track")
	}
}
