package internal

import (
	"math"
	"testing"
)

// Point represents a geographic location.
type Point struct {
	Lat float64
	Lon float64
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name     string
		p1       Point
		p2       Point
		expected float64
	}{
		{
			name:     "Due North",
			p1:       Point{Lat: 0, Lon: 0},
			p2:       Point{Lat: 10, Lon: 0},
			expected: 0.0,
		},
		{
			name:     "Due East",
			p1:       Point{Lat: 0, Lon: 0},
			p2:       Point{Lat: 0, Lon: 10},
			expected: 90.0,
		},
		{
			name:     "Due South",
			p1:       Point{Lat: 10, Lon: 0},
			p2:       Point{Lat: 0, Lon: 0},
			expected: 180.0,
		},
		{
			name:     "Due West",
			p1:       Point{Lat: 0, Lon: 10},
			p2:       Point{Lat: 0, Lon: 0},
			expected: 270.0,
		},
		{
			name:     "New York to London",
			p1:       Point{Lat: 40.7128, Lon: -74.0060},
			p2:       Point{Lat: 51.5074, Lon: -0.1278},
			expected: 51.21,
		},
		{
			name:     "Auckland to Honolulu", // Crossing International Date Line
			p1:       Point{Lat: -36.8485, Lon: 174.7633},
			p2:       Point{Lat: 21.3069, Lon: -157.8583},
			expected: 28.57,
		},
	}

	// Precision threshold for floating point comparison
	const epsilon = 0.01

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBearing(tt.p1.Lat, tt.p1.Lon, tt.p2.Lat, tt.p2.Lon)
			if math.Abs(got-tt.expected) > epsilon {
				t.Errorf("Bearing() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDistanceNauticalMiles(t *testing.T) {
	origin := newCoordinates(40.0, -73.0)
	other := newCoordinates(40.0, -72.92)

	got := Distance(origin, other).NauticalMiles()
	if got < 3.6 || got > 3.8 {
		t.Errorf("Distance() = %.3f NM, want roughly 3.7 NM", got)
	}

	if same := Distance(origin, origin).NauticalMiles(); same != 0 {
		t.Errorf("Distance() to itself = %v, want 0", same)
	}
}

func TestDestinationRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		origin     Point
		bearing    float64
		distanceNM float64
	}{
		{name: "east", origin: Point{Lat: 40, Lon: -73}, bearing: 90, distanceNM: 6.5},
		{name: "north", origin: Point{Lat: 1.36, Lon: 103.99}, bearing: 0, distanceNM: 60},
		{name: "southwest", origin: Point{Lat: -33.87, Lon: 151.21}, bearing: 225, distanceNM: 120},
		{name: "date line", origin: Point{Lat: 10, Lon: 179.9}, bearing: 90, distanceNM: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := newCoordinates(tt.origin.Lat, tt.origin.Lon)
			end := destination(start, tt.bearing, tt.distanceNM)

			if end.Longitude < -180 || end.Longitude > 180 {
				t.Fatalf("destination longitude %v out of range", end.Longitude)
			}

			dist := Distance(start, end).NauticalMiles()
			if math.Abs(dist-tt.distanceNM) > 1e-6 {
				t.Errorf("distance back to origin = %v, want %v", dist, tt.distanceNM)
			}

			brng := calculateBearing(start.Latitude, start.Longitude, end.Latitude, end.Longitude)
			diff := math.Abs(math.Mod(brng-tt.bearing+540, 360) - 180)
			if diff > 0.01 {
				t.Errorf("initial bearing = %v, want %v", brng, tt.bearing)
			}
		})
	}
}

func TestCompassDirection(t *testing.T) {
	tests := []struct {
		bearing  float64
		expected string
	}{
		{0, "north"},
		{5.6, "north"},
		{5.7, "north by east"},
		{90, "east"},
		{181, "south"},
		{270, "west"},
		{355, "north"},
		{-90, "west"},
	}

	for _, test := range tests {
		if got := compassDirection(test.bearing); got != test.expected {
			t.Errorf("compassDirection(%v) = %q, want %q", test.bearing, got, test.expected)
		}
	}

	centre := LatLon{Lat: 1.35, Lon: 103.99}
	if got := centre.DirectionTo(LatLon{Lat: 1.35, Lon: 104.5}); got != "east" {
		t.Errorf("DirectionTo() = %q, want east", got)
	}
}
