package internal

import (
	"fmt"
	"time"
)

// Severity ranks how urgent a conflict is.
type Severity int

const (
	SeverityMedium Severity = iota
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	}
	return "unknown"
}

// ConflictStatus is either active or resolved.
type ConflictStatus string

const (
	ConflictStatusActive   ConflictStatus = "active"
	ConflictStatusResolved ConflictStatus = "resolved"
)

// Conflict is a current or predicted separation violation between exactly two tracks.
// Aircraft1ID always sorts before Aircraft2ID.
type Conflict struct {
	ID                 string         `msgpack:"id"`
	Aircraft1ID        string         `msgpack:"aircraft_1_id"`
	Aircraft2ID        string         `msgpack:"aircraft_2_id"`
	Aircraft1Callsign  string         `msgpack:"aircraft_1_callsign"`
	Aircraft2Callsign  string         `msgpack:"aircraft_2_callsign"`
	DetectedAt         time.Time      `msgpack:"detected_at"`
	ResolvedAt         *time.Time     `msgpack:"resolved_at,omitempty"`
	MinHorizontalNM    float64        `msgpack:"min_horizontal_distance"`
	MinVerticalFt      float64        `msgpack:"min_vertical_distance"`
	TimeToCPASeconds   int            `msgpack:"time_to_cpa"` // 0 when the violation is current
	Severity           Severity       `msgpack:"severity"`
	Status             ConflictStatus `msgpack:"status"`
	PredictedViolation bool           `msgpack:"predicted"`
}

// pairKey is the order independent key of two aircraft ids, together with the sorted ids.
func pairKey(id1, id2 string) (key, first, second string) {
	if id2 < id1 {
		id1, id2 = id2, id1
	}
	return id1 + "|" + id2, id1, id2
}

// conflictID derives the id from the sorted pair and the detection time, so a pair that
// separates and converges again gets a new id.
func conflictID(first, second string, detectedAt time.Time) string {
	return fmt.Sprintf("%s-%s-%d", first, second, detectedAt.UnixMilli())
}

// PairKey returns the key under which the conflict is tracked while active.
func (c *Conflict) PairKey() string {
	key, _, _ := pairKey(c.Aircraft1ID, c.Aircraft2ID)
	return key
}

func (c *Conflict) String() string {
	kind := "current"
	if c.PredictedViolation {
		kind = fmt.Sprintf("in %ds", c.TimeToCPASeconds)
	}
	return fmt.Sprintf("%-8s %s <-> %s %.2f NM / %.0f ft (%s)", c.Severity, c.Aircraft1Callsign,
		c.Aircraft2Callsign, c.MinHorizontalNM, c.MinVerticalFt, kind)
}

// severityForTimeToCPA buckets predicted conflicts by how soon they occur.
func severityForTimeToCPA(seconds int) Severity {
	switch {
	case seconds < 120: //nolint: mnd // two minutes
		return SeverityCritical
	case seconds < 300: //nolint: mnd // five minutes
		return SeverityHigh
	default:
		return SeverityMedium
	}
}
