package tuiapp

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/micutio/airsep/internal"
)

// Error types

var errColumnMismatch = errors.New("number of columns does not match number of format columns")

// Automated Table Formatting

type tableColumnSizingOption int

const (
	// fixed column width, regardless of table width.
	fixed tableColumnSizingOption = iota
	// relative column with, given as percentage of the total table width.
	relative
	// fill columns receive any remaining table space, evenly distributed.
	fill
)

type columnFormat struct {
	option tableColumnSizingOption
	value  float32
}

type tableFormat struct {
	columnSizes        []columnFormat
	fixedWidth         int     // fixedWidth is the total space taken up by all fixed-width columns.
	fillWidthCount     int     // fillWidthCount indicates how many columns have fill width.
	totalRelativeWidth float32 // how much width is taken by relative columns.
}

func newTableFormat(items ...columnFormat) tableFormat {
	var totalRelativeWidth float32
	fixedWidth := 0
	fillWidthCount := 0

	for _, item := range items {
		switch item.option {
		case relative:
			totalRelativeWidth += item.value
		case fixed:
			fixedWidth += int(item.value)
		case fill:
			fillWidthCount++
		}
	}

	return tableFormat{
		columnSizes:        items,
		fixedWidth:         fixedWidth,
		fillWidthCount:     fillWidthCount,
		totalRelativeWidth: totalRelativeWidth,
	}
}

// Integrated Formatted Table Type

type autoFormatTable struct {
	table  table.Model
	format tableFormat
}

// resize distributes the new width over the columns. One cell of padding per column and the
// table border are subtracted first.
func (aft *autoFormatTable) resize(newWidth int) error {
	columns := aft.table.Columns()
	columnCount := len(columns)
	if columnCount != len(aft.format.columnSizes) {
		return fmt.Errorf(
			"table.resize: %w -> %d in table, %d in tableFormat",
			errColumnMismatch,
			columnCount,
			len(aft.format.columnSizes))
	}

	adjustedWidth := newWidth - 1 - columnCount
	aft.table.SetWidth(adjustedWidth)
	totalRelativeWidth := int(float32(adjustedWidth) * aft.format.totalRelativeWidth)
	totalFillWidth := adjustedWidth - totalRelativeWidth - aft.format.fixedWidth

	fillPerColumn := 0
	if aft.format.fillWidthCount > 0 && totalFillWidth > 0 {
		fillPerColumn = totalFillWidth / aft.format.fillWidthCount
	}

	for idx := 0; idx < columnCount; idx++ {
		format := aft.format.columnSizes[idx]
		switch format.option {
		case fixed:
			columns[idx].Width = int(format.value)
		case relative:
			columns[idx].Width = int(format.value * float32(adjustedWidth))
		case fill:
			columns[idx].Width = fillPerColumn
		}
	}
	aft.table.SetColumns(columns)

	return nil
}

func (aft *autoFormatTable) SetHeight(height int) {
	aft.table.SetHeight(height)
}

func newCurrentAircraftTable(tableStyle table.Styles) autoFormatTable {
	idLen := 8
	fnoLen := 9
	numLen := 7
	dirLen := 18
	statusLen := 10
	initialTableHeight := 5
	format := newTableFormat(
		columnFormat{fixed, float32(idLen)},
		columnFormat{fixed, float32(fnoLen)},
		columnFormat{fill, 0.0},
		columnFormat{fixed, float32(numLen)},
		columnFormat{fixed, float32(dirLen)},
		columnFormat{fixed, float32(numLen)},
		columnFormat{fixed, float32(numLen)},
		columnFormat{fixed, float32(numLen)},
		columnFormat{fixed, float32(statusLen)},
	)

	currentAircraftTbl := table.New(
		// table header
		table.WithColumns(
			[]table.Column{
				{Title: "ID", Width: idLen},
				{Title: "FNO", Width: fnoLen},
				{Title: "TID", Width: 0},
				{Title: "DST", Width: numLen},
				{Title: "DIR", Width: dirLen},
				{Title: "ALT", Width: numLen},
				{Title: "SPD", Width: numLen},
				{Title: "HDG", Width: numLen},
				{Title: "STATUS", Width: statusLen},
			},
		),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(initialTableHeight),
		table.WithStyles(tableStyle),
	)

	return autoFormatTable{
		table:  currentAircraftTbl,
		format: format,
	}
}

func newConflictTable(tableStyle table.Styles) autoFormatTable {
	sevLen := 9
	numLen := 8
	kindLen := 10
	initialTableHeight := 5
	format := newTableFormat(
		columnFormat{fixed, float32(sevLen)},
		columnFormat{fill, 0.0},
		columnFormat{fixed, float32(numLen)},
		columnFormat{fixed, float32(numLen)},
		columnFormat{fixed, float32(numLen)},
		columnFormat{fixed, float32(kindLen)},
	)

	conflictTbl := table.New(
		// table header
		table.WithColumns(
			[]table.Column{
				{Title: "SEV", Width: sevLen},
				{Title: "PAIR", Width: 0},
				{Title: "HDIST", Width: numLen},
				{Title: "VDIST", Width: numLen},
				{Title: "CPA", Width: numLen},
				{Title: "SINCE", Width: kindLen},
			},
		),
		table.WithRows([]table.Row{}),
		table.WithFocused(false),
		table.WithHeight(initialTableHeight),
		table.WithStyles(tableStyle),
	)

	return autoFormatTable{
		table:  conflictTbl,
		format: format,
	}
}

// overheadNM is the distance from the centre below which no direction is shown.
const overheadNM = 0.5

func trackToRow(track *internal.AircraftTrack, centre internal.LatLon) table.Row {
	dist, dir, alt, spd, hdg := "-", "-", "-", "-", "-"
	if last := track.LastPosition; last != nil {
		distNM := last.Position.DistanceNM(centre)
		dist = fmt.Sprintf("%3.0f", distNM)
		if distNM >= overheadNM {
			dir = centre.DirectionTo(last.Position)
		}
		switch {
		case last.OnGround:
			alt = "ground"
		case last.Altitude != nil:
			alt = fmt.Sprintf("%5.0f", *last.Altitude)
		}
		if last.GroundSpeed != nil {
			spd = fmt.Sprintf("%3.0f", *last.GroundSpeed)
		}
		if last.Heading != nil {
			hdg = fmt.Sprintf("%03.0f", *last.Heading)
		}
	}

	return table.Row{
		track.ID,
		track.Callsign(),
		track.AircraftType,
		dist,
		dir,
		alt,
		spd,
		hdg,
		track.Status,
	}
}

func conflictToRow(conflict *internal.Conflict, now time.Time) table.Row {
	cpa := "now"
	if conflict.PredictedViolation {
		cpa = fmt.Sprintf("%ds", conflict.TimeToCPASeconds)
	}

	return table.Row{
		conflict.Severity.String(),
		conflict.Aircraft1Callsign + " / " + conflict.Aircraft2Callsign,
		fmt.Sprintf("%.1fNM", conflict.MinHorizontalNM),
		fmt.Sprintf("%.0fft", conflict.MinVerticalFt),
		cpa,
		now.Sub(conflict.DetectedAt).Truncate(time.Second).String(),
	}
}
