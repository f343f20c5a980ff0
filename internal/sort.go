package internal

import "sort"

// TracksByID implements the comparator interface and allows sorting track snapshots by id.
type TracksByID []AircraftTrack

func (a TracksByID) Len() int           { return len(a) }
func (a TracksByID) Less(i, j int) bool { return a[i].ID < a[j].ID }
func (a TracksByID) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }

// TracksByCallsign implements the comparator interface and allows sorting track snapshots by
// callsign, ties are broken by id.
type TracksByCallsign []AircraftTrack

func (a TracksByCallsign) Len() int { return len(a) }
func (a TracksByCallsign) Less(i, j int) bool {
	ci, cj := a[i].Callsign(), a[j].Callsign()
	if ci == cj {
		return a[i].ID < a[j].ID
	}
	return ci < cj
}
func (a TracksByCallsign) Swap(i, j int) { a[i], a[j] = a[j], a[i] }

// ConflictsByUrgency implements the comparator interface and orders conflicts from most to
// least severe, then by time to CPA and id.
type ConflictsByUrgency []Conflict

func (a ConflictsByUrgency) Len() int { return len(a) }
func (a ConflictsByUrgency) Less(i, j int) bool {
	if a[i].Severity != a[j].Severity {
		return a[i].Severity > a[j].Severity
	}
	if a[i].TimeToCPASeconds != a[j].TimeToCPASeconds {
		return a[i].TimeToCPASeconds < a[j].TimeToCPASeconds
	}
	return a[i].ID < a[j].ID
}
func (a ConflictsByUrgency) Swap(i, j int) { a[i], a[j] = a[j], a[i] }

// SortConflicts orders conflicts in place by urgency and returns them.
func SortConflicts(conflicts []Conflict) []Conflict {
	sort.Sort(ConflictsByUrgency(conflicts))
	return conflicts
}
