package internal

import "time"

// IdleClassifier inspects an idle track during cleanup and returns the status tag it should
// carry, or an empty string to leave the status untouched.
type IdleClassifier func(track *AircraftTrack, now time.Time) string

// HomeBaseClassifier tags aircraft that sit still near a home base, e.g. an airport apron.
type HomeBaseClassifier struct {
	Home       LatLon
	RadiusNM   float64
	IdleAfter  time.Duration
	MaxSpeedKt float64
}

// NewHomeBaseClassifier builds the parking classifier from the configuration.
// It returns nil when no home base is configured.
func NewHomeBaseClassifier(cfg Config) IdleClassifier {
	if cfg.HomeBase == nil {
		return nil
	}

	hbc := HomeBaseClassifier{
		Home:       *cfg.HomeBase,
		RadiusNM:   cfg.ParkingRadiusNM,
		IdleAfter:  cfg.ParkingIdle,
		MaxSpeedKt: cfg.ParkingSpeedKt,
	}

	return hbc.Classify
}

// Classify returns StatusParking for a track idle longer than IdleAfter, on the ground or
// slow, and within RadiusNM of the home base.
func (hbc HomeBaseClassifier) Classify(track *AircraftTrack, now time.Time) string {
	if track.IdleFor(now) <= hbc.IdleAfter || track.LastPosition == nil {
		return ""
	}

	last := track.LastPosition
	// An unknown speed counts as slow, most feeds omit it for parked aircraft.
	isSlow := last.OnGround || last.GroundSpeedOr(0) < hbc.MaxSpeedKt
	if !isSlow {
		return ""
	}

	if last.Position.DistanceNM(hbc.Home) > hbc.RadiusNM {
		return ""
	}

	return StatusParking
}
