package tuiapp

type uiState int

const (
	aircraftPage  uiState = iota // first page on startup, showing current aircraft
	conflictsPage                // active conflicts, most urgent first
)

func (s uiState) next() uiState {
	if s == aircraftPage {
		return conflictsPage
	}
	return aircraftPage
}
