package animate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Bergam0t/ciw-example-animation/internal/eventlog"
)

// Marker is one caller (or an overflow counter) drawn at a position.
type Marker struct {
	Caller int     `json:"caller"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Text   string  `json:"text"`
}

// Snapshot is the state of the animation at one point in model time.
type Snapshot struct {
	Time    float64  `json:"time"`
	Label   string   `json:"label"`
	Markers []Marker `json:"markers"`
}

// callerState is a caller's position in its own event sequence.
type callerState struct {
	caller  int
	entries []eventlog.Entry
}

// currentAt returns the latest entry at or before t, or nil if the
// caller has not arrived yet.
func (c *callerState) currentAt(t float64) *eventlog.Entry {
	var cur *eventlog.Entry
	for i := range c.entries {
		if c.entries[i].Time > t {
			break
		}
		cur = &c.entries[i]
	}
	return cur
}

// BuildSnapshots samples the event log every EveryXTimeUnits model
// minutes up to LimitDuration. Queueing callers are laid out leftwards
// from the stage anchor, wrapping onto new rows; callers in service sit
// on the slot of the server holding them. At most StepSnapshotMax
// callers are drawn per stage per step, with an overflow marker for the
// rest.
func BuildSnapshots(entries []eventlog.Entry, stages []Stage, opts Options) ([]Snapshot, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	stageByEvent := map[string]Stage{}
	for _, st := range stages {
		stageByEvent[st.Event] = st
	}

	// Group entries by caller, preserving log order within a caller so
	// same-time events resolve by sequence.
	order := []int{}
	grouped := map[int][]eventlog.Entry{}
	for _, e := range entries {
		if _, seen := grouped[e.Caller]; !seen {
			order = append(order, e.Caller)
		}
		grouped[e.Caller] = append(grouped[e.Caller], e)
	}
	sort.Ints(order)

	states := make([]*callerState, 0, len(order))
	for _, id := range order {
		states = append(states, &callerState{caller: id, entries: grouped[id]})
	}

	// Step by index, not by accumulation: repeated float addition of a
	// fractional interval drifts and can drop the final frame.
	var snaps []Snapshot
	for i := 0; ; i++ {
		t := float64(i) * opts.EveryXTimeUnits
		if t > opts.LimitDuration {
			break
		}
		snaps = append(snaps, buildSnapshot(t, states, stageByEvent, opts))
	}
	return snaps, nil
}

// placement is an intermediate caller-at-stage assignment.
type placement struct {
	caller   int
	time     float64
	resource int
}

func buildSnapshot(t float64, states []*callerState, stageByEvent map[string]Stage, opts Options) Snapshot {
	snap := Snapshot{Time: t, Label: formatClock(t)}

	queued := map[string][]placement{}  // queue stage event -> waiting callers
	serving := map[string][]placement{} // resource stage event -> callers in service

	for _, st := range states {
		cur := st.currentAt(t)
		if cur == nil {
			continue
		}

		switch {
		case cur.Event == eventlog.EventDepart:
			// Shown at the exit stage for one step, then gone.
			if t-cur.Time < opts.EveryXTimeUnits {
				queued["exit"] = append(queued["exit"], placement{caller: st.caller, time: cur.Time})
			}
		case cur.Event == eventlog.EventArrival:
			queued["arrival"] = append(queued["arrival"], placement{caller: st.caller, time: cur.Time})
		case strings.HasSuffix(cur.Event, "_wait_begins"):
			queued[cur.Event] = append(queued[cur.Event], placement{caller: st.caller, time: cur.Time})
		case strings.HasSuffix(cur.Event, "_begins") || strings.HasSuffix(cur.Event, "_ends"):
			node := strings.TrimSuffix(strings.TrimSuffix(cur.Event, "_ends"), "_begins")
			serving[node+"_begins"] = append(serving[node+"_begins"],
				placement{caller: st.caller, time: cur.Time, resource: cur.ResourceID})
		}
	}

	for event, ps := range queued {
		stage, ok := stageByEvent[event]
		if !ok {
			continue
		}
		// FIFO display order: longest-waiting caller at the head.
		sort.Slice(ps, func(i, j int) bool {
			if ps[i].time != ps[j].time {
				return ps[i].time < ps[j].time
			}
			return ps[i].caller < ps[j].caller
		})

		shown := ps
		overflow := 0
		if len(shown) > opts.StepSnapshotMax {
			overflow = len(shown) - opts.StepSnapshotMax
			shown = shown[:opts.StepSnapshotMax]
		}
		for i, p := range shown {
			x, y := slotPosition(stage, i, opts)
			snap.Markers = append(snap.Markers, Marker{Caller: p.caller, X: x, Y: y, Text: iconFor(p.caller)})
		}
		if overflow > 0 {
			x, y := slotPosition(stage, opts.StepSnapshotMax, opts)
			snap.Markers = append(snap.Markers, Marker{Caller: -1, X: x, Y: y, Text: fmt.Sprintf("+%d", overflow)})
		}
	}

	for event, ps := range serving {
		stage, ok := stageByEvent[event]
		if !ok {
			continue
		}
		for _, p := range ps {
			slot := p.resource - 1
			if slot < 0 {
				slot = 0
			}
			x, y := slotPosition(stage, slot, opts)
			snap.Markers = append(snap.Markers, Marker{Caller: p.caller, X: x, Y: y, Text: iconFor(p.caller)})
		}
	}

	// Deterministic marker order for stable frames and tests.
	sort.Slice(snap.Markers, func(i, j int) bool {
		return snap.Markers[i].Caller < snap.Markers[j].Caller
	})
	return snap
}

// slotPosition computes the canvas position of the i-th slot at a
// stage: leftwards from the anchor, wrapping onto lower rows.
func slotPosition(stage Stage, i int, opts Options) (float64, float64) {
	col := i % opts.WrapQueuesAt
	row := i / opts.WrapQueuesAt
	return stage.X - float64(col)*opts.GapBetweenEntities,
		stage.Y - float64(row)*opts.GapBetweenRows
}

// ResourceSlots returns the fixed slot positions for every resource
// stage, drawn as the background dots marking available resources.
func ResourceSlots(stages []Stage, opts Options) []Marker {
	var slots []Marker
	for _, st := range stages {
		for i := 0; i < st.Resources; i++ {
			x, y := slotPosition(st, i, opts)
			slots = append(slots, Marker{Caller: 0, X: x, Y: y})
		}
	}
	return slots
}

// formatClock renders model minutes as a day/hour/minute clock,
// e.g. minute 1505 -> "day 2, 01:05".
func formatClock(t float64) string {
	total := int(t)
	day := total/1440 + 1
	rem := total % 1440
	return fmt.Sprintf("day %d, %02d:%02d", day, rem/60, rem%60)
}
