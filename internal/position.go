package internal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Errors returned at the ingestion boundary.
var (
	ErrInvalidInput  = errors.New("invalid position update")
	ErrNoIdentity    = errors.New("no hex code, tail number or id")
	ErrLatOutOfRange = errors.New("latitude out of range [-90,90]")
	ErrLonOutOfRange = errors.New("longitude out of range [-180,180]")
)

// LatLon is a position in decimal degrees.
type LatLon struct {
	Lat float64 `msgpack:"lat"`
	Lon float64 `msgpack:"lon"`
}

func (ll LatLon) IsValid() bool {
	return ll.Lat >= -90 && ll.Lat <= 90 && ll.Lon >= -180 && ll.Lon <= 180
}

func (ll LatLon) String() string {
	return fmt.Sprintf("(%.5f, %.5f)", ll.Lat, ll.Lon)
}

func (ll LatLon) coordinates() coordinates {
	return newCoordinates(ll.Lat, ll.Lon)
}

// DistanceNM returns the great-circle distance to another position in [NM].
func (ll LatLon) DistanceNM(other LatLon) float64 {
	return Distance(ll.coordinates(), other.coordinates()).NauticalMiles()
}

// DirectionTo names the compass point in which the other position lies.
func (ll LatLon) DirectionTo(other LatLon) string {
	return compassDirection(calculateBearing(ll.Lat, ll.Lon, other.Lat, other.Lon))
}

// Identity holds the identifiers an update may carry. The first non-empty one of
// hex, tail and id is the key of the track.
type Identity struct {
	Hex  string
	Tail string
	ID   string
}

// Key derives the track key following the precedence hex > tail > id.
func (id Identity) Key() (string, bool) {
	if hex := strings.ToLower(strings.TrimSpace(id.Hex)); hex != "" {
		return hex, true
	}
	if tail := strings.ToUpper(strings.TrimSpace(id.Tail)); tail != "" {
		return tail, true
	}
	if ext := strings.TrimSpace(id.ID); ext != "" {
		return ext, true
	}
	return "", false
}

// PositionUpdate is the one normalized shape every ingestion adapter produces.
// Nil pointer fields were not reported by the feed, which is different from zero.
type PositionUpdate struct {
	Identity     Identity
	Position     *LatLon
	Altitude     *float64 // [ft]
	OnGround     bool
	Heading      *float64 // [deg] 0-359
	GroundSpeed  *float64 // [kt]
	VerticalRate *float64 // [ft/min]
	Squawk       string
	Flight       string
	AircraftType string
	Timestamp    time.Time
}

// Validate checks the update once at the boundary and returns the track key.
func (u *PositionUpdate) Validate() (string, error) {
	key, ok := u.Identity.Key()
	if !ok {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, ErrNoIdentity)
	}

	if u.Position != nil {
		if u.Position.Lat < -90 || u.Position.Lat > 90 {
			return "", fmt.Errorf("%w: %s: %w %f", ErrInvalidInput, key, ErrLatOutOfRange, u.Position.Lat)
		}
		if u.Position.Lon < -180 || u.Position.Lon > 180 {
			return "", fmt.Errorf("%w: %s: %w %f", ErrInvalidInput, key, ErrLonOutOfRange, u.Position.Lon)
		}
	}

	return key, nil
}

// sample converts the update into a position sample, only valid when Position is set.
func (u *PositionUpdate) sample() PositionSample {
	return PositionSample{
		Timestamp:    u.Timestamp.Truncate(time.Millisecond),
		Position:     *u.Position,
		Altitude:     u.Altitude,
		OnGround:     u.OnGround,
		Heading:      u.Heading,
		GroundSpeed:  u.GroundSpeed,
		VerticalRate: u.VerticalRate,
		Squawk:       u.Squawk,
		Confidence:   1.0,
	}
}

// PositionSample is one observed or predicted point in time.
type PositionSample struct {
	Timestamp    time.Time `msgpack:"ts"`
	Position     LatLon    `msgpack:"pos"`
	Altitude     *float64  `msgpack:"alt,omitempty"`
	OnGround     bool      `msgpack:"gnd,omitempty"`
	Heading      *float64  `msgpack:"hdg,omitempty"`
	GroundSpeed  *float64  `msgpack:"gs,omitempty"`
	VerticalRate *float64  `msgpack:"vr,omitempty"`
	Squawk       string    `msgpack:"sqk,omitempty"`
	Confidence   float64   `msgpack:"conf"` // 1 for observed samples, decaying for predicted ones
}

// AltitudeOr returns the altitude or the fallback when it is unknown.
func (s *PositionSample) AltitudeOr(fallback float64) float64 {
	if s.Altitude == nil {
		return fallback
	}
	return *s.Altitude
}

// GroundSpeedOr returns the ground speed or the fallback when it is unknown.
func (s *PositionSample) GroundSpeedOr(fallback float64) float64 {
	if s.GroundSpeed == nil {
		return fallback
	}
	return *s.GroundSpeed
}

func (s PositionSample) String() string {
	alt := "n/a"
	if s.Altitude != nil {
		alt = fmt.Sprintf("%.0fft", *s.Altitude)
	}
	return fmt.Sprintf("[%s] %s %s, %.0fkts", s.Timestamp.Format(time.TimeOnly), s.Position, alt,
		s.GroundSpeedOr(0))
}

func floatPtr(f float64) *float64 {
	return &f
}
