package internal

import (
	"errors"
	"fmt"
	"time"
)

const (
	// AircraftUpdateInterval determines how often the live feed is polled.
	AircraftUpdateInterval = 10 * time.Second
	// FeedRadiusNM is the radius around the polling centre requested from the feed.
	FeedRadiusNM = 250
)

// ErrInvalidConfig is returned by Config.Validate for unusable settings.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config carries every tuning knob of the track store, predictor and conflict detector.
// The core never loads configuration on its own, callers hand it a Config.
type Config struct {
	// Separation minima.
	HorizontalMinimumNM   float64 // horizontal separation minimum in [NM]
	VerticalMinimumFt     float64 // vertical separation minimum in [ft]
	CloseEncounterFactor  float64 // multiple of the minima that counts as a close encounter
	FlyingMinAltitudeFt   float64 // aircraft at or below this altitude are not checked
	FlyingMinGroundSpeed  float64 // aircraft at or below this speed in [kt] are not checked
	StationarySpeedKt     float64 // below this speed no trajectory is extrapolated
	PredictionHorizonMins int     // number of whole minutes to predict ahead

	// Timers.
	TickInterval      time.Duration // conflict detector cadence
	CleanupInterval   time.Duration // track store cleanup cadence
	InactivityTimeout time.Duration // tracks not seen for this long are evicted
	PersistInterval   time.Duration // per-track minimum gap between two saves
	Freshness         time.Duration // samples older than this reduce prediction confidence

	// Track history.
	MaxPositions    int     // number of samples kept per track
	MinSampleGap    time.Duration
	MinSampleMoveKm float64

	// Parking heuristic. A zero HomeBase disables it.
	HomeBase         *LatLon
	ParkingIdle      time.Duration
	ParkingRadiusNM  float64
	ParkingSpeedKt   float64
	ResolvedRetained time.Duration // how long resolved conflicts stay queryable by id

	// Now is the clock used by all components, tests replace it.
	Now func() time.Time
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() Config {
	return Config{
		HorizontalMinimumNM:   5.0,
		VerticalMinimumFt:     1000.0,
		CloseEncounterFactor:  1.5,
		FlyingMinAltitudeFt:   500.0,
		FlyingMinGroundSpeed:  50.0,
		StationarySpeedKt:     50.0,
		PredictionHorizonMins: 10,
		TickInterval:          30 * time.Second,
		CleanupInterval:       60 * time.Second,
		InactivityTimeout:     20 * time.Minute,
		PersistInterval:       5 * time.Second,
		Freshness:             30 * time.Second,
		MaxPositions:          1000,
		MinSampleGap:          time.Second,
		MinSampleMoveKm:       0.1,
		HomeBase:              nil,
		ParkingIdle:           15 * time.Minute,
		ParkingRadiusNM:       2.0,
		ParkingSpeedKt:        50.0,
		ResolvedRetained:      time.Hour,
		Now:                   time.Now,
	}
}

// Validate checks the configuration for values the components cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.HorizontalMinimumNM <= 0 || c.VerticalMinimumFt <= 0:
		return fmt.Errorf("config: %w: separation minima must be positive", ErrInvalidConfig)
	case c.CloseEncounterFactor < 1:
		return fmt.Errorf("config: %w: close encounter factor below 1", ErrInvalidConfig)
	case c.PredictionHorizonMins < 1:
		return fmt.Errorf("config: %w: prediction horizon must be at least one minute", ErrInvalidConfig)
	case c.TickInterval <= 0 || c.CleanupInterval <= 0:
		return fmt.Errorf("config: %w: tick and cleanup intervals must be positive", ErrInvalidConfig)
	case c.InactivityTimeout <= 0:
		return fmt.Errorf("config: %w: inactivity timeout must be positive", ErrInvalidConfig)
	case c.MaxPositions < 2:
		return fmt.Errorf("config: %w: at least two positions must be kept", ErrInvalidConfig)
	case c.HomeBase != nil && c.ParkingIdle >= c.InactivityTimeout:
		// Tracks are evicted before they could ever be tagged as parked.
		return fmt.Errorf(
			"config: %w: parking idle time %s must be shorter than inactivity timeout %s",
			ErrInvalidConfig, c.ParkingIdle, c.InactivityTimeout)
	case c.HomeBase != nil && !c.HomeBase.IsValid():
		return fmt.Errorf("config: %w: home base %s out of range", ErrInvalidConfig, c.HomeBase)
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	return nil
}
