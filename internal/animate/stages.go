// Package animate turns caller event logs into an animated caller-flow
// figure: per-step snapshots of where every caller is, rendered as a
// self-contained plotly HTML page.
package animate

import "fmt"

// Stage is one labelled position on the animation canvas. A stage with
// Resources > 0 draws that many fixed resource slots and places callers
// by their server ID; other stages lay callers out as a wrapped queue.
type Stage struct {
	Event     string  `json:"event"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Label     string  `json:"label"`
	Resources int     `json:"resources,omitempty"`
}

// CallCentreStages lays out the urgent care call centre: arrival,
// operator queue and desks, nurse queue and desks, exit.
func CallCentreStages(nOperators, nNurses int) []Stage {
	return []Stage{
		{Event: "arrival", X: 30, Y: 350, Label: "Arrival"},
		{Event: "operator_wait_begins", X: 220, Y: 270, Label: "Waiting for Operator"},
		{Event: "operator_begins", X: 220, Y: 210, Label: "Speaking to operator", Resources: nOperators},
		{Event: "nurse_wait_begins", X: 220, Y: 110, Label: "Waiting for Nurse"},
		{Event: "nurse_begins", X: 220, Y: 50, Label: "Speaking to Nurse", Resources: nNurses},
		{Event: "exit", X: 270, Y: 10, Label: "Exit"},
	}
}

// Options configures snapshotting and rendering. The defaults follow
// the dashboard's animation settings.
type Options struct {
	EveryXTimeUnits    float64 // snapshot interval in model minutes
	LimitDuration      float64 // stop snapshotting at this time
	WrapQueuesAt       int     // queue positions per row
	StepSnapshotMax    int     // most callers shown per stage per step
	FrameDurationMS    int     // playback speed
	Width              int
	Height             int
	XMax               float64
	YMax               float64
	GapBetweenEntities float64
	GapBetweenRows     float64
	IconSize           int
	DisplayStageLabels bool
}

// DefaultOptions returns the dashboard's animation settings.
func DefaultOptions() Options {
	return Options{
		EveryXTimeUnits:    1,
		LimitDuration:      1000,
		WrapQueuesAt:       25,
		StepSnapshotMax:    75,
		FrameDurationMS:    200,
		Width:              1200,
		Height:             700,
		XMax:               300,
		YMax:               400,
		GapBetweenEntities: 8,
		GapBetweenRows:     25,
		IconSize:           20,
		DisplayStageLabels: true,
	}
}

// Validate checks option values that would break snapshotting.
func (o Options) Validate() error {
	if o.EveryXTimeUnits <= 0 {
		return fmt.Errorf("snapshot interval must be positive, got %v", o.EveryXTimeUnits)
	}
	if o.LimitDuration <= 0 {
		return fmt.Errorf("limit duration must be positive, got %v", o.LimitDuration)
	}
	if o.WrapQueuesAt < 1 {
		return fmt.Errorf("wrap queues at must be >= 1, got %d", o.WrapQueuesAt)
	}
	if o.StepSnapshotMax < 1 {
		return fmt.Errorf("step snapshot max must be >= 1, got %d", o.StepSnapshotMax)
	}
	return nil
}

// callerIcons is the repeating set of person icons assigned to callers.
var callerIcons = []string{
	"\U0001F9CD", // person standing
	"\U0001F471", // person: blond hair
	"\U0001F474", // old man
	"\U0001F475", // old woman
	"\U0001F9D4", // person: beard
	"\U0001F469", // woman
	"\U0001F468", // man
	"\U0001F9D1", // person
	"\U0001F472", // person with skullcap
	"\U0001F9D3", // older person
}

// iconFor deterministically assigns an icon to a caller.
func iconFor(caller int) string {
	if caller < 0 {
		caller = -caller
	}
	return callerIcons[caller%len(callerIcons)]
}
