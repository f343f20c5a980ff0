package internal

import (
	"fmt"
	"io"
	"log" //nolint:depguard // Don't feel like using slog
	"log/slog"
	"time"

	"github.com/gen2brain/beeep"
)

const (
	// appIconPath is the file path to the icon png for this application.
	appIconPath = "./assets/icon.png"
	// SummaryInterval determines how often the summary is shown.
	SummaryInterval = 1 * time.Hour
)

// Notify is the alert sink for conflict transitions. Every transition is printed as a one-liner
// to the console output, new high and critical conflicts also raise a desktop notification.
type Notify struct {
	Stdout  log.Logger
	desktop func(title, message string) error
	logger  *slog.Logger
}

func NewNotify(appName string, consoleOut io.Writer, withDesktop bool, logger *slog.Logger) *Notify {
	beeep.AppName = appName //nolint:reassign // This is the only way to set app name in beeep.
	if logger == nil {
		logger = discardLogger()
	}

	notify := &Notify{
		Stdout:  *log.New(consoleOut, "", log.LstdFlags),
		desktop: nil,
		logger:  logger.With(slog.String("component", "notify")),
	}
	if withDesktop {
		notify.desktop = func(title, message string) error {
			return beeep.Notify(title, message, appIconPath)
		}
	}

	return notify
}

// ConflictTransition reports one conflict event.
func (notify *Notify) ConflictTransition(event ConflictEvent) {
	c := event.Conflict
	notify.Stdout.Printf("%-8s %s\n", event.Kind, c.String())

	if event.Kind != ConflictDetected || c.Severity == SeverityMedium || notify.desktop == nil {
		return
	}

	msgTitle := fmt.Sprintf("%s Separation Conflict", titleCase(c.Severity.String()))
	msgBody := fmt.Sprintf("%s and %s\n%.1f NM / %.0f ft", c.Aircraft1Callsign, c.Aircraft2Callsign,
		c.MinHorizontalNM, c.MinVerticalFt)
	if c.PredictedViolation {
		msgBody += fmt.Sprintf(" in %ds", c.TimeToCPASeconds)
	}

	// A missing notification daemon must not take the detector down.
	if err := notify.desktop(msgTitle, msgBody); err != nil {
		notify.logger.Warn("desktop notification failed", slog.Any("error", err))
	}
}

// TrackTransition prints tracks leaving the store. Regular updates are too frequent to print.
func (notify *Notify) TrackTransition(event TrackEvent) {
	if event.Kind != TrackRemoved {
		return
	}
	notify.Stdout.Printf("%-8s %s\n", event.Kind, event.Track.String())
}

// PrintSummary prints the number of tracked aircraft and lists all active conflicts.
func (notify *Notify) PrintSummary(tracks []AircraftTrack, conflicts []Conflict) {
	notify.Stdout.Println("=== Summary ===")
	emergencies := 0
	for i := range tracks {
		if tracks[i].Status == StatusEmergency {
			notify.Stdout.Printf("emergency squawk %s: %s\n", tracks[i].Squawk, tracks[i].String())
			emergencies++
		}
	}
	notify.Stdout.Printf("%d aircraft tracked, %d squawking emergency\n", len(tracks), emergencies)
	notify.Stdout.Printf("%d active conflicts\n", len(conflicts))
	for i := range conflicts {
		notify.Stdout.Println(conflicts[i].String())
	}
	notify.Stdout.Println("=== End Summary ===")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
