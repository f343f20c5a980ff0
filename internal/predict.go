package internal

import (
	"math"
	"time"
)

const (
	// maxConfidence and minConfidence bound the track level confidence.
	maxConfidence = 1.0
	minConfidence = 0.05
	// stationaryConfidence is reported for aircraft too slow to extrapolate.
	stationaryConfidence = 0.01
	// staleConfidenceFloor is the lowest factor that data age alone can apply.
	staleConfidenceFloor = 0.3
	// staleDecaySpan is how long after the freshness threshold the age factor reaches its floor.
	staleDecaySpan = 5 * time.Minute
	// horizonConfidenceDecay is the share of confidence lost at the far end of the horizon.
	horizonConfidenceDecay = 0.3
	// speedSpreadLimit is the stddev to mean ratio above which speeds count as inconsistent.
	speedSpreadLimit = 0.3
)

// Velocity is the motion vector the prediction extrapolates.
type Velocity struct {
	HeadingDeg      float64 `msgpack:"hdg"`
	GroundSpeedKt   float64 `msgpack:"gs"`
	VerticalRateFpm float64 `msgpack:"vr"`
}

// Prediction is the result of one trajectory prediction pass.
// An empty path means no prediction is available this cycle, which is not an error.
type Prediction struct {
	Path       []PositionSample
	Confidence float64
	Velocity   *Velocity
}

// Empty reports whether the prediction holds no path.
func (p Prediction) Empty() bool {
	return len(p.Path) == 0
}

// Predictor extrapolates a constant velocity, constant vertical rate trajectory.
// It holds no state besides its settings.
type Predictor struct {
	stationarySpeedKt float64
	freshness         time.Duration
	now               func() time.Time
}

func NewPredictor(cfg Config) *Predictor {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Predictor{
		stationarySpeedKt: cfg.StationarySpeedKt,
		freshness:         cfg.Freshness,
		now:               now,
	}
}

// Predict computes the path for each whole minute up to horizonMinutes.
func (p *Predictor) Predict(track *AircraftTrack, horizonMinutes int) Prediction {
	samples := observedSamples(track)
	if len(samples) < 2 || horizonMinutes < 1 {
		return Prediction{Path: nil, Confidence: 0, Velocity: nil}
	}

	latest := samples[len(samples)-1]
	velocity := deriveVelocity(samples[len(samples)-2], latest)

	if velocity.GroundSpeedKt < p.stationarySpeedKt {
		return Prediction{Path: nil, Confidence: stationaryConfidence, Velocity: &velocity}
	}

	confidence := p.confidence(samples, latest)
	origin := latest.Position.coordinates()
	path := make([]PositionSample, 0, horizonMinutes)

	for i := 1; i <= horizonMinutes; i++ {
		minutes := float64(i)
		dest := destination(origin, velocity.HeadingDeg, velocity.GroundSpeedKt/60*minutes) //nolint: mnd // per minute

		var altitude *float64
		if latest.Altitude != nil {
			climb := velocity.VerticalRateFpm / 60 * minutes //nolint: mnd // rate scaled per minute index
			altitude = floatPtr(math.Max(0, *latest.Altitude+climb))
		}

		path = append(path, PositionSample{
			Timestamp:    latest.Timestamp.Add(time.Duration(i) * time.Minute),
			Position:     LatLon{Lat: dest.Latitude, Lon: dest.Longitude},
			Altitude:     altitude,
			Heading:      floatPtr(velocity.HeadingDeg),
			GroundSpeed:  floatPtr(velocity.GroundSpeedKt),
			VerticalRate: floatPtr(velocity.VerticalRateFpm),
			Confidence:   confidence * (1 - horizonConfidenceDecay*minutes/float64(horizonMinutes)),
		})
	}

	return Prediction{Path: path, Confidence: confidence, Velocity: &velocity}
}

// observedSamples returns the history plus the latest report if it was filtered as noise.
func observedSamples(track *AircraftTrack) []PositionSample {
	samples := make([]PositionSample, 0, len(track.Positions)+1)
	samples = append(samples, track.Positions...)

	if track.LastPosition != nil {
		n := len(samples)
		if n == 0 || track.LastPosition.Timestamp.After(samples[n-1].Timestamp) {
			samples = append(samples, *track.LastPosition)
		}
	}

	return samples
}

// deriveVelocity prefers the values reported with the latest sample and falls back to the
// motion between the last two samples.
func deriveVelocity(prev, latest PositionSample) Velocity {
	elapsed := latest.Timestamp.Sub(prev.Timestamp)
	v := Velocity{HeadingDeg: 0, GroundSpeedKt: 0, VerticalRateFpm: 0}

	if latest.Heading != nil {
		v.HeadingDeg = *latest.Heading
	} else {
		v.HeadingDeg = calculateBearing(prev.Position.Lat, prev.Position.Lon, latest.Position.Lat, latest.Position.Lon)
	}

	switch {
	case latest.GroundSpeed != nil:
		v.GroundSpeedKt = *latest.GroundSpeed
	case elapsed > 0:
		v.GroundSpeedKt = prev.Position.DistanceNM(latest.Position) / elapsed.Hours()
	}

	switch {
	case latest.VerticalRate != nil:
		v.VerticalRateFpm = *latest.VerticalRate
	case elapsed > 0 && latest.Altitude != nil && prev.Altitude != nil:
		v.VerticalRateFpm = (*latest.Altitude - *prev.Altitude) / elapsed.Minutes()
	}

	return v
}

// confidence starts at 1 and is reduced for stale data, sparse history and erratic speed.
func (p *Predictor) confidence(samples []PositionSample, latest PositionSample) float64 {
	confidence := maxConfidence

	if age := p.now().Sub(latest.Timestamp); age > p.freshness {
		overdue := float64(age-p.freshness) / float64(staleDecaySpan)
		confidence *= math.Max(staleConfidenceFloor, 1-overdue*(1-staleConfidenceFloor))
	}

	switch n := len(samples); {
	case n < 3: //nolint: mnd // sparse history
		confidence *= 0.5
	case n < 5: //nolint: mnd // short history
		confidence *= 0.7
	}

	if speedsInconsistent(samples) {
		confidence *= 0.7
	}

	return math.Min(maxConfidence, math.Max(minConfidence, confidence))
}

// speedsInconsistent checks the spread of the last three reported ground speeds.
func speedsInconsistent(samples []PositionSample) bool {
	speeds := make([]float64, 0, 3)
	for i := len(samples) - 1; i >= 0 && len(speeds) < 3; i-- {
		if samples[i].GroundSpeed != nil {
			speeds = append(speeds, *samples[i].GroundSpeed)
		}
	}
	if len(speeds) < 3 {
		return false
	}

	mean := (speeds[0] + speeds[1] + speeds[2]) / 3
	if mean <= 0 {
		return false
	}

	variance := 0.0
	for _, s := range speeds {
		variance += (s - mean) * (s - mean)
	}
	stddev := math.Sqrt(variance / 3)

	return stddev > speedSpreadLimit*mean
}
