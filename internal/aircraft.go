package internal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// See https://www.adsbexchange.com/version-2-api-wip/
// for further explanations of the fields

const altitudeGround = "ground"

// civAircraftResult mirrors the JSON which is returned for aircraft queries within a given distance.
type civAircraftResult struct {
	Now         float64          `json:"now"`         // time this file was generated in [ms]
	ResultCount int              `json:"resultCount"` // total count of aircraft returned
	Ptime       float64          `json:"ptime"`       // server processing time required in [ms]
	Aircraft    []AircraftRecord `json:"aircraft"`    // list of Aircraft records
}

// AircraftRecord is one aircraft entry of the feed. Pointer fields are absent from the JSON when
// the receiver did not decode them, which must not be confused with zero.
type AircraftRecord struct {
	Hex          string   `json:"hex"`       // hex code ID for aircraft, assumed to be unique
	Registration string   `json:"r"`         // Registration of the aircraft
	Flight       string   `json:"flight"`    // Flight number
	IcaoType     string   `json:"t"`         // aircraft ICAO type pulled from database
	Description  string   `json:"desc"`      // aircraft type description
	AltBaro      any      `json:"alt_baro"`  // altitude in [feet] or string "ground"
	AltGeom      *float64 `json:"alt_geom"`  // altitude in [feet]
	BaroRate     *float64 `json:"baro_rate"` // rate of change of baro alt in [feet/minute]
	GeomRate     *float64 `json:"geom_rate"` // rate of change of geometric alt in [feet/minute]
	GroundSpeed  *float64 `json:"gs"`        // ground speed in [knots]
	Track        *float64 `json:"track"`     // true track over ground in degrees (0-359)
	Lat          *float64 `json:"lat"`       // Latitude in [decimal degrees]
	Lon          *float64 `json:"lon"`       // Longitude in [decimal degrees]
	Squawk       string   `json:"squawk"`    // Mode A code (Squawk) encoded as 4 octal digits
	Emergency    string   `json:"emergency"` // emergency/priority status
	Seen         float64  `json:"seen"`      // last message received from aircraft in [seconds] from 'now'
	SeenPos      float64  `json:"seen_pos"`  // last update of position from aircraft in [seconds] from 'now'
	Messages     int      `json:"messages"`  // total number of Mode-S msg received from aircraft
}

// ParseAircraftJSON decodes a feed response into its aircraft records.
func ParseAircraftJSON(jsonBytes []byte) ([]AircraftRecord, error) {
	var data civAircraftResult
	if err := json.Unmarshal(jsonBytes, &data); err != nil {
		return nil, fmt.Errorf("parseAircraftJSON: failed to unmarshal: %w", err)
	}

	return data.Aircraft, nil
}

// altitude reads the barometric altitude, falling back to the geometric one.
// The barometric altitude is either a number or the string 'ground'.
func (ac *AircraftRecord) altitude() (altitude *float64, onGround bool) {
	if num, numOk := ac.AltBaro.(float64); numOk {
		return floatPtr(num), false
	}

	if str, strOk := ac.AltBaro.(string); strOk && str == altitudeGround {
		return floatPtr(0), true
	}

	return ac.AltGeom, false
}

func (ac *AircraftRecord) verticalRate() *float64 {
	if ac.BaroRate != nil {
		return ac.BaroRate
	}
	return ac.GeomRate
}

// ToPositionUpdate normalizes the record into a position update. The timestamp is derived from
// the age of the position report relative to now.
func (ac *AircraftRecord) ToPositionUpdate(now time.Time) PositionUpdate {
	altitude, onGround := ac.altitude()

	update := PositionUpdate{
		Identity: Identity{
			Hex:  strings.TrimPrefix(ac.Hex, "~"), // '~' marks non-ICAO addresses
			Tail: ac.Registration,
			ID:   "",
		},
		Position:     nil,
		Altitude:     altitude,
		OnGround:     onGround,
		Heading:      ac.Track,
		GroundSpeed:  ac.GroundSpeed,
		VerticalRate: ac.verticalRate(),
		Squawk:       ac.Squawk,
		Flight:       strings.TrimSpace(ac.Flight),
		AircraftType: ac.IcaoType,
		Timestamp:    now.Add(-time.Duration(ac.Seen * float64(time.Second))),
	}

	if ac.Lat != nil && ac.Lon != nil {
		update.Position = &LatLon{Lat: *ac.Lat, Lon: *ac.Lon}
		update.Timestamp = now.Add(-time.Duration(ac.SeenPos * float64(time.Second)))
	}

	return update
}
