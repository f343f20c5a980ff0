package tuiapp

import (
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/micutio/airsep/internal"
)

func TestTableFormat(t *testing.T) {
	tests := []struct {
		name                       string
		format                     tableFormat
		expectedFixedWidth         int
		expectedFillWidthCount     int
		expectedTotalRelativeWidth float32
	}{
		{
			name:                       "singleFixed",
			format:                     newTableFormat(columnFormat{fixed, 10.0}),
			expectedFixedWidth:         10,
			expectedFillWidthCount:     0,
			expectedTotalRelativeWidth: 0.0,
		},
		{
			name:                       "singleRelative",
			format:                     newTableFormat(columnFormat{relative, 0.254}),
			expectedFixedWidth:         0,
			expectedFillWidthCount:     0,
			expectedTotalRelativeWidth: 0.254,
		},
		{
			name:                       "singleFill",
			format:                     newTableFormat(columnFormat{fill, 0.0}),
			expectedFixedWidth:         0,
			expectedFillWidthCount:     1,
			expectedTotalRelativeWidth: 0.0,
		},
		{
			name: "multiFill",
			format: newTableFormat(
				columnFormat{fill, 0},
				columnFormat{fixed, 90},
				columnFormat{fill, 0},
				columnFormat{fill, 0},
			),
			expectedFixedWidth:         90,
			expectedFillWidthCount:     3,
			expectedTotalRelativeWidth: 0.0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.expectedFixedWidth != test.format.fixedWidth {
				t.Errorf(
					"Expected fixedWidth %d, got %d",
					test.expectedFixedWidth,
					test.format.fixedWidth)
			}

			if test.expectedFillWidthCount != test.format.fillWidthCount {
				t.Errorf(
					"Expected fillWidthCount %d, got %d",
					test.expectedFillWidthCount,
					test.format.fillWidthCount)
			}

			if test.expectedTotalRelativeWidth != test.format.totalRelativeWidth {
				t.Errorf(
					"Expected totalRelativeWidth %f, got %f",
					test.expectedTotalRelativeWidth,
					test.format.totalRelativeWidth)
			}
		})
	}
}

func TestAutoFormatTableResize(t *testing.T) {
	tests := []struct {
		name                            string
		columns                         []table.Column
		tableFormat                     tableFormat
		resizeWidth                     int
		expectedTableWidthAfterResize   int
		expectedColumnWidthsAfterResize []int
	}{
		{
			name:                            "SingleColumnFixed",
			columns:                         []table.Column{{Title: "A", Width: 3}},
			tableFormat:                     newTableFormat(columnFormat{fixed, 10.0}),
			resizeWidth:                     20,
			expectedTableWidthAfterResize:   18,
			expectedColumnWidthsAfterResize: []int{10},
		},
		{
			name:                            "SingleColumnRelative",
			columns:                         []table.Column{{Title: "A", Width: 5}},
			tableFormat:                     newTableFormat(columnFormat{relative, .5}),
			resizeWidth:                     40,
			expectedTableWidthAfterResize:   38,
			expectedColumnWidthsAfterResize: []int{19},
		},
		{
			name:                            "SingleColumnFill",
			columns:                         []table.Column{{Title: "A", Width: 10}},
			tableFormat:                     newTableFormat(columnFormat{fill, .0}),
			resizeWidth:                     15,
			expectedTableWidthAfterResize:   13,
			expectedColumnWidthsAfterResize: []int{13},
		},
		{
			name:    "Mixed",
			columns: []table.Column{{Title: "A"}, {Title: "B"}, {Title: "C"}},
			tableFormat: newTableFormat(
				columnFormat{fixed, 10},
				columnFormat{fill, 0},
				columnFormat{relative, .25},
			),
			resizeWidth:                     84,
			expectedTableWidthAfterResize:   80,
			expectedColumnWidthsAfterResize: []int{10, 50, 20},
		},
		{
			name:                            "TwoFill",
			columns:                         []table.Column{{Title: "A"}, {Title: "B"}},
			tableFormat:                     newTableFormat(columnFormat{fill, 0}, columnFormat{fill, 0}),
			resizeWidth:                     45,
			expectedTableWidthAfterResize:   42,
			expectedColumnWidthsAfterResize: []int{21, 21},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			aft := autoFormatTable{
				table:  table.New(table.WithColumns(test.columns)),
				format: test.tableFormat,
			}

			err := aft.resize(test.resizeWidth)
			if err != nil {
				t.Errorf(
					"resize(%d) failed: %v",
					test.resizeWidth,
					err)
			}

			if aft.table.Width() != test.expectedTableWidthAfterResize {
				t.Errorf(
					"resized table width -> expected: %d, got: %d",
					test.expectedTableWidthAfterResize,
					aft.table.Width())
			}

			for i, col := range aft.table.Columns() {
				if col.Width != test.expectedColumnWidthsAfterResize[i] {
					t.Errorf(
						"resized table col '%s' width -> expected: %d, got: %d",
						col.Title,
						test.expectedColumnWidthsAfterResize[i],
						col.Width)
				}
			}
		})
	}
}

func TestAutoFormatTableColumnMismatch(t *testing.T) {
	aft := autoFormatTable{
		table:  table.New(table.WithColumns([]table.Column{{Title: "A"}})),
		format: newTableFormat(columnFormat{fixed, 5}, columnFormat{fill, 0}),
	}

	if err := aft.resize(40); !errors.Is(err, errColumnMismatch) {
		t.Errorf("want %v, got %v", errColumnMismatch, err)
	}
}

func TestTrackToRow(t *testing.T) {
	altitude, speed, heading := 36000.0, 480.0, 5.0
	track := internal.AircraftTrack{
		ID:           "76cdb1",
		Flight:       "SIA106",
		AircraftType: "A359",
		Status:       internal.StatusNormal,
		LastPosition: &internal.PositionSample{
			Position:    internal.LatLon{Lat: 1.5, Lon: 104},
			Altitude:    &altitude,
			GroundSpeed: &speed,
			Heading:     &heading,
		},
	}

	row := trackToRow(&track, internal.LatLon{Lat: 1.5, Lon: 104})
	expected := table.Row{"76cdb1", "SIA106", "A359", "  0", "-", "36000", "480", "005", "normal"}
	for i := range expected {
		if row[i] != expected[i] {
			t.Errorf("column %d: expected %q, got %q", i, expected[i], row[i])
		}
	}

	bare := trackToRow(&internal.AircraftTrack{ID: "abc", Status: internal.StatusNormal}, internal.LatLon{})
	if bare[3] != "-" || bare[4] != "-" || bare[5] != "-" {
		t.Errorf("track without position rendered as %v", bare)
	}

	north := trackToRow(&track, internal.LatLon{Lat: 1, Lon: 104})
	if north[4] != "north" {
		t.Errorf("direction = %q, want north", north[4])
	}
}

func TestConflictToRow(t *testing.T) {
	detectedAt := time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC)
	conflict := internal.Conflict{
		Aircraft1Callsign:  "SIA106",
		Aircraft2Callsign:  "QFA1",
		DetectedAt:         detectedAt,
		MinHorizontalNM:    3.04,
		MinVerticalFt:      400,
		TimeToCPASeconds:   120,
		Severity:           internal.SeverityHigh,
		PredictedViolation: true,
	}

	row := conflictToRow(&conflict, detectedAt.Add(90*time.Second))
	expected := table.Row{"high", "SIA106 / QFA1", "3.0NM", "400ft", "120s", "1m30s"}
	for i := range expected {
		if row[i] != expected[i] {
			t.Errorf("column %d: expected %q, got %q", i, expected[i], row[i])
		}
	}
}
