// Package tuiapp provides the TUI app which displays the tracked aircraft and the active
// separation conflicts, updates continuously and can be interacted with.
// Layout:
// +-------------------------------------------------+
// | last update time: 00:00:00                      |
// | Tracked: n  Critical: n  High: n  Medium: n     |
// |  ___________________________________________    |
// | | aircraft table or conflict table ([tab])  |   |
// | | entry 0                                   |   |
// | | ...                                       |   |
// |  -------------------------------------------    |
// | Recent transitions                              |
// +-------------------------------------------------+
// .
package tuiapp

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/micutio/airsep/internal"
)

const defaultLogFile = "airsep.log"

type Theme struct {
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Green     lipgloss.AdaptiveColor
	Red       lipgloss.AdaptiveColor
}

var Color = Theme{ //nolint: gochecknoglobals // read-only theme
	Primary:   lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"},
	Secondary: lipgloss.AdaptiveColor{Light: "#969B86", Dark: "#696969"},
	Highlight: lipgloss.AdaptiveColor{Light: "#8b2def", Dark: "#8b2def"},
	Border:    lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"},
	Green:     lipgloss.AdaptiveColor{Light: "#00FF00", Dark: "#00FF00"},
	Red:       lipgloss.AdaptiveColor{Light: "#FF0000", Dark: "#FF0000"},
}

// Run starts the service in the background and blocks until the user quits the TUI.
// The terminal belongs to the TUI, so all logs go to a rotating log file.
func Run(appName string, cfg internal.Config, opts internal.AppOptions) error {
	logPath := opts.LogFile
	if logPath == "" {
		logPath = defaultLogFile
	}
	logFile := internal.NewRotatingLogFile(logPath)
	defer logFile.Close()

	logParams := internal.LogParams{
		ConsoleOut: io.Discard,
		ErrorOut:   logFile,
	}
	logger := internal.NewLogger(logParams, opts.LogLevel)

	svc, err := internal.NewService(cfg, opts.Service, logger)
	if err != nil {
		return fmt.Errorf("tuiapp: %w", err)
	}

	events, unsubscribe, err := svc.Detector.Subscribe(internal.DefaultSubscriberBuffer)
	if err != nil {
		return fmt.Errorf("tuiapp: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	svcDone := make(chan error, 1)
	go func() { svcDone <- svc.Run(ctx) }()

	notify := internal.NewNotify(appName, logParams.ConsoleOut, opts.Desktop, logger)
	centre := internal.LatLon{Lat: opts.Service.Request.Lat, Lon: opts.Service.Request.Lon}
	m := newModel(svc.Store, svc.Detector, events, notify, centre)

	// Create a new Bubble Tea program with the model and enable alternate screen
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := p.Run()

	cancel()
	unsubscribe()
	if err := errors.Join(runErr, <-svcDone); err != nil {
		return fmt.Errorf("tuiapp: %w", err)
	}

	return nil
}
