package tuiapp

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/micutio/airsep/internal"
)

// maxRecentTransitions is the number of conflict transitions listed below the tables.
const maxRecentTransitions = 5

type trackSource interface {
	GetActive() []internal.AircraftTrack
}

type conflictSource interface {
	GetActiveConflicts() []internal.Conflict
}

// Model implements the bubbletea.Model interface, which requires three methods:
// - Init() Cmd
// - Update(Msg) (Model, Cmd)
// - View() string
// This forms the base for the TUI app.
type model struct {
	width      int
	height     int
	baseStyle  lipgloss.Style
	viewStyle  lipgloss.Style
	theme      Theme
	tableStyle table.Styles
	page       uiState

	aircraftTbl autoFormatTable
	conflictTbl autoFormatTable

	tracks    trackSource
	conflicts conflictSource
	events    <-chan internal.ConflictEvent
	notify    *internal.Notify
	centre    internal.LatLon

	lastUpdate    time.Time
	trackCount    int
	severityCount map[internal.Severity]int
	recent        []internal.ConflictEvent
}

func newModel(
	tracks trackSource,
	conflicts conflictSource,
	events <-chan internal.ConflictEvent,
	notify *internal.Notify,
	centre internal.LatLon,
) *model {
	tableStyle := table.DefaultStyles()
	tableStyle.Selected = lipgloss.NewStyle().Background(Color.Highlight)

	return &model{
		width:         0,
		height:        0,
		baseStyle:     lipgloss.NewStyle(),
		viewStyle:     lipgloss.NewStyle(),
		theme:         Color,
		tableStyle:    tableStyle,
		page:          aircraftPage,
		aircraftTbl:   newCurrentAircraftTable(tableStyle),
		conflictTbl:   newConflictTable(tableStyle),
		tracks:        tracks,
		conflicts:     conflicts,
		events:        events,
		notify:        notify,
		centre:        centre,
		lastUpdate:    time.Time{},
		trackCount:    0,
		severityCount: make(map[internal.Severity]int),
		recent:        nil,
	}
}

// Init starts the refresh ticks and the wait for the first conflict transition.
func (m *model) Init() tea.Cmd {
	return tea.Batch(updateTick(), waitForConflict(m.events))
}

// Update takes a tea.Msg as input and uses a type switch to handle different types of messages.
// Each case in the switch statement corresponds to a specific message type.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn // required by interface
	switch thisMsg := msg.(type) {
	// message is sent when the window size changes
	// save to reflect the new dimensions of the terminal window.
	case tea.WindowSizeMsg:
		m.height = thisMsg.Height
		m.width = thisMsg.Width
		m.layout()

	// message is sent when a key is pressed.
	case tea.KeyMsg:
		switch thisMsg.String() {
		// Switches between the aircraft and the conflict page.
		case "tab":
			m.page = m.page.next()
			m.activeTable().table.Focus()
		// Toggles the focus state of the visible table
		case "esc":
			tbl := &m.activeTable().table
			if tbl.Focused() {
				tbl.Blur()
			} else {
				tbl.Focus()
			}
		// Moves the focus up in the visible table if the table is focused.
		case "up", "k":
			if tbl := &m.activeTable().table; tbl.Focused() {
				tbl.MoveUp(1)
			}
		// Moves the focus down in the visible table if the table is focused.
		case "down", "j":
			if tbl := &m.activeTable().table; tbl.Focused() {
				tbl.MoveDown(1)
			}
		// Quits the program by returning the tea.Quit command.
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case UpdateTickMsg:
		m.refresh(time.Time(thisMsg))
		return m, updateTick()

	case ConflictMsg:
		event := internal.ConflictEvent(thisMsg)
		m.recent = append([]internal.ConflictEvent{event}, m.recent...)
		if len(m.recent) > maxRecentTransitions {
			m.recent = m.recent[:maxRecentTransitions]
		}
		if m.notify != nil {
			m.notify.ConflictTransition(event)
		}
		return m, waitForConflict(m.events)

	case conflictsClosedMsg:
		return m, nil
	}

	// If the message type does not match any of the handled cases, the model is returned unchanged,
	// and no new command is issued.
	return m, nil
}

func (m *model) activeTable() *autoFormatTable {
	if m.page == conflictsPage {
		return &m.conflictTbl
	}
	return &m.aircraftTbl
}

// layout fits both tables to the window, leaving room for the header and the transitions.
func (m *model) layout() {
	headerHeight := 4
	recentHeight := maxRecentTransitions + 2
	tableHeight := max(m.height-headerHeight-recentHeight, 3) //nolint: mnd // header row and border

	for _, tbl := range []*autoFormatTable{&m.aircraftTbl, &m.conflictTbl} {
		_ = tbl.resize(m.width)
		tbl.SetHeight(tableHeight)
	}
}

// refresh pulls fresh snapshots and rebuilds the table rows.
func (m *model) refresh(now time.Time) {
	m.lastUpdate = now

	tracks := m.tracks.GetActive()
	sort.Sort(internal.TracksByCallsign(tracks))
	m.trackCount = len(tracks)
	trackRows := make([]table.Row, 0, len(tracks))
	for i := range tracks {
		trackRows = append(trackRows, trackToRow(&tracks[i], m.centre))
	}
	m.aircraftTbl.table.SetRows(trackRows)

	conflicts := m.conflicts.GetActiveConflicts()
	clear(m.severityCount)
	conflictRows := make([]table.Row, 0, len(conflicts))
	for i := range conflicts {
		m.severityCount[conflicts[i].Severity]++
		conflictRows = append(conflictRows, conflictToRow(&conflicts[i], now))
	}
	m.conflictTbl.table.SetRows(conflictRows)
}

func (m *model) View() string {
	// Sets the width of the column to the width of the terminal (m.width) and adds padding of 1 unit
	// on the top.
	column := m.baseStyle.Width(m.width).Padding(1, 0, 0, 0).Render
	// Set the content to match the terminal dimensions (m.width and m.height).
	content := m.baseStyle.
		Width(m.width).
		Height(m.height).
		Render(
			// Vertically join multiple elements aligned to the left.
			lipgloss.JoinVertical(lipgloss.Left,
				column(m.viewHeader()),
				column(m.viewStyle.Render(m.activeTable().table.View())),
				column(m.viewRecent()),
			),
		)

	return content
}

// viewHeader shows the time of the last refresh and the current counts.
func (m *model) viewHeader() string {
	listHeader := m.baseStyle.Bold(true).Render

	// Helper function that formats a key-value pair, the value is aligned to the right.
	listItem := func(key string, value string, color lipgloss.AdaptiveColor) string {
		listItemValue := m.baseStyle.Foreground(color).Align(lipgloss.Right).Render(value)
		return fmt.Sprintf("%s %s  ", m.baseStyle.Render(key+":"), listItemValue)
	}

	title := "Aircraft"
	if m.page == conflictsPage {
		title = "Conflicts"
	}

	return m.viewStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			fmt.Sprintf("Last update: %s  [tab] switch page  [q] quit", m.lastUpdate.Format(time.TimeOnly)),
			lipgloss.JoinHorizontal(
				lipgloss.Left,
				listItem("Tracked", fmt.Sprintf("%d", m.trackCount), m.theme.Primary),
				listItem("Critical", fmt.Sprintf("%d", m.severityCount[internal.SeverityCritical]), m.theme.Red),
				listItem("High", fmt.Sprintf("%d", m.severityCount[internal.SeverityHigh]), m.theme.Red),
				listItem("Medium", fmt.Sprintf("%d", m.severityCount[internal.SeverityMedium]), m.theme.Primary),
			),
			listHeader(title),
		),
	)
}

// viewRecent lists the latest conflict transitions, newest first.
func (m *model) viewRecent() string {
	lines := make([]string, 0, len(m.recent)+1)
	lines = append(lines, m.baseStyle.Bold(true).Render("Recent transitions"))
	for _, event := range m.recent {
		color := m.theme.Secondary
		if event.Kind == internal.ConflictDetected {
			color = m.theme.Red
		} else if event.Kind == internal.ConflictResolved {
			color = m.theme.Green
		}
		lines = append(lines, m.baseStyle.Foreground(color).Render(
			fmt.Sprintf("%-8s %s", event.Kind, event.Conflict.String())))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
