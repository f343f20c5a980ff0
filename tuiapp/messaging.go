package tuiapp

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/micutio/airsep/internal"
)

// UpdateTickMsg triggers a refresh of the tables from the latest snapshots.
type UpdateTickMsg time.Time

func updateTick() tea.Cmd {
	return tea.Every(
		time.Second,
		func(t time.Time) tea.Msg {
			return UpdateTickMsg(t)
		},
	)
}

// ConflictMsg carries one transition received from the detector.
type ConflictMsg internal.ConflictEvent

type conflictsClosedMsg struct{}

// waitForConflict blocks on the subscription until the next transition arrives.
func waitForConflict(events <-chan internal.ConflictEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return conflictsClosedMsg{}
		}
		return ConflictMsg(event)
	}
}
