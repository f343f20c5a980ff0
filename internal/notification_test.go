package internal

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestConflictTransition(t *testing.T) {
	tests := []struct {
		name     string
		event    ConflictEvent
		expected int // desktop notifications
	}{
		{"new critical", ConflictEvent{Kind: ConflictDetected, Conflict: Conflict{Severity: SeverityCritical}}, 1},
		{"new high", ConflictEvent{Kind: ConflictDetected, Conflict: Conflict{Severity: SeverityHigh}}, 1},
		{"new medium", ConflictEvent{Kind: ConflictDetected, Conflict: Conflict{Severity: SeverityMedium}}, 0},
		{"updated critical", ConflictEvent{Kind: ConflictUpdated, Conflict: Conflict{Severity: SeverityCritical}}, 0},
		{"resolved", ConflictEvent{Kind: ConflictResolved, Conflict: Conflict{Severity: SeverityCritical}}, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var out bytes.Buffer
			var titles []string
			notify := NewNotify("airsep-test", &out, false, nil)
			notify.desktop = func(title, _ string) error {
				titles = append(titles, title)
				return nil
			}

			notify.ConflictTransition(test.event)

			if len(titles) != test.expected {
				t.Errorf("want %d desktop notifications, got %v", test.expected, titles)
			}
			if !strings.Contains(out.String(), test.event.Kind.String()) {
				t.Errorf("console line misses the transition: %q", out.String())
			}
		})
	}
}

func TestConflictTransitionDesktopFailure(t *testing.T) {
	var out bytes.Buffer
	notify := NewNotify("airsep-test", &out, false, nil)
	notify.desktop = func(string, string) error { return errors.New("no notification daemon") }

	notify.ConflictTransition(ConflictEvent{Kind: ConflictDetected, Conflict: Conflict{Severity: SeverityCritical}})

	if out.Len() == 0 {
		t.Error("console line missing")
	}
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	notify := NewNotify("airsep-test", &out, false, nil)

	tracks := []AircraftTrack{{ID: "a", Status: StatusEmergency, Squawk: "7700"}, {ID: "b", Status: StatusNormal}}
	notify.PrintSummary(tracks, []Conflict{{Aircraft1Callsign: "A", Aircraft2Callsign: "B"}})

	summary := out.String()
	for _, want := range []string{"2 aircraft tracked, 1 squawking emergency", "1 active conflicts", "A <-> B"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary misses %q:\n%s", want, summary)
		}
	}
}

func TestTrackTransition(t *testing.T) {
	var out bytes.Buffer
	notify := NewNotify("airsep-test", &out, false, nil)

	notify.TrackTransition(TrackEvent{Kind: TrackUpdated, Track: AircraftTrack{ID: "a"}})
	if out.Len() != 0 {
		t.Errorf("update printed: %q", out.String())
	}

	notify.TrackTransition(TrackEvent{Kind: TrackRemoved, Track: AircraftTrack{ID: "a"}})
	if !strings.Contains(out.String(), "removed") {
		t.Errorf("removal not printed: %q", out.String())
	}
}
