package internal

import (
	"math"
)

// Inspired by https://github.com/LucaTheHacker/go-haversine

// Constants

const (
	earthRadiusKilometers    float64 = 6371 // Radius of Earth in kilometers
	earthRadiusNauticalMiles float64 = 3443 // Radius of Earth in nautical miles
	piHalf                   float64 = math.Pi / 180
)

// directions are the 32 points of the compass, clockwise starting at north.
var directions = []string{ //nolint: gochecknoglobals // constant lookup table
	"north", "north by east", "north-northeast", "northeast by north",
	"northeast", "northeast by east", "east-northeast", "east by north",
	"east", "east by south", "east-southeast", "southeast by east",
	"southeast", "southeast by south", "south-southeast", "south by east",
	"south", "south by west", "south-southwest", "southwest by south",
	"southwest", "southwest by west", "west-southwest", "west by south",
	"west", "west by north", "west-northwest", "northwest by west",
	"northwest", "northwest by north", "north-northwest", "north by west",
}

// Conversion functions

func degreesToRadian(d float64) float64 {
	return d * piHalf
}

func radianToDegrees(r float64) float64 {
	return r / piHalf
}

// Coordinate type

type coordinates struct {
	Latitude  float64
	Longitude float64
}

func (c coordinates) toRadians() coordinates {
	return coordinates{
		Latitude:  degreesToRadian(c.Latitude),
		Longitude: degreesToRadian(c.Longitude),
	}
}

// newCoordinates returns a coordinates struct based on parameters passed.
func newCoordinates(latitude, longitude float64) coordinates {
	return coordinates{
		Latitude:  latitude,
		Longitude: longitude,
	}
}

// distance type

type DistanceStruct struct {
	C float64 // Must be multiplied to obtain distance. Public in order to allow unexpected calculations.
}

func newDistanceStruct(distance float64) DistanceStruct {
	return DistanceStruct{C: distance}
}

func (d DistanceStruct) Kilometers() float64 {
	return d.C * earthRadiusKilometers
}

func (d DistanceStruct) NauticalMiles() float64 {
	return d.C * earthRadiusNauticalMiles
}

// Distance calculates distance using the haversine formula.
//
//nolint:mnd // readability of mathmatic formula
func Distance(p, q coordinates) DistanceStruct {
	fromPos := p.toRadians()
	toPos := q.toRadians()

	deltaLat := toPos.Latitude - fromPos.Latitude
	deltaLon := toPos.Longitude - fromPos.Longitude

	a := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(fromPos.Latitude)*
			math.Cos(toPos.Latitude)*
			math.Pow(math.Sin(deltaLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return newDistanceStruct(c)
}

// calculateBearing calculates the initial bearing (forward azimuth) from point 1 to point 2.
func calculateBearing(lat1, lon1, lat2, lon2 float64) float64 {
	fLat := degreesToRadian(lat1)
	fLong := degreesToRadian(lon1)
	tLat := degreesToRadian(lat2)
	tLong := degreesToRadian(lon2)

	dLon := tLong - fLong

	y := math.Sin(dLon) * math.Cos(tLat)
	x := math.Cos(fLat)*math.Sin(tLat) - math.Sin(fLat)*math.Cos(tLat)*math.Cos(dLon)

	brngDeg := radianToDegrees(math.Atan2(y, x))

	// The result from Atan2 ranges from -180 to +180
	return math.Mod(brngDeg+360.0, 360.0) //nolint: mnd // readability
}

// destination returns the point reached when travelling distanceNM along the great circle
// starting at origin with the given initial bearing.
func destination(origin coordinates, bearingDeg, distanceNM float64) coordinates {
	from := origin.toRadians()
	brng := degreesToRadian(bearingDeg)
	angular := distanceNM / earthRadiusNauticalMiles

	lat := math.Asin(math.Sin(from.Latitude)*math.Cos(angular) +
		math.Cos(from.Latitude)*math.Sin(angular)*math.Cos(brng))
	lon := from.Longitude + math.Atan2(
		math.Sin(brng)*math.Sin(angular)*math.Cos(from.Latitude),
		math.Cos(angular)-math.Sin(from.Latitude)*math.Sin(lat),
	)

	lonDeg := math.Mod(radianToDegrees(lon)+540.0, 360.0) - 180.0 //nolint: mnd // normalise to [-180,180)

	return newCoordinates(radianToDegrees(lat), lonDeg)
}

// compassDirection maps a bearing onto the nearest of the 32 compass points.
func compassDirection(bearingDeg float64) string {
	step := 360.0 / float64(len(directions))
	idx := int(math.Mod(math.Mod(bearingDeg, 360)+360+step/2, 360) / step) //nolint: mnd // full circle
	return directions[idx%len(directions)]
}
