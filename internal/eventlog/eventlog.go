// Package eventlog derives caller-level event logs from simulation
// records and persists them in JSONL form for later animation.
package eventlog

import (
	"fmt"
	"sort"

	"github.com/Bergam0t/ciw-example-animation/internal/sim"
)

// Event type values.
const (
	TypeArrivalDeparture = "arrival_departure"
	TypeQueue            = "queue"
	TypeResourceUse      = "resource_use"
)

// Boundary event names.
const (
	EventArrival = "arrival"
	EventDepart  = "depart"
)

// Entry is a single caller event. Node-specific events are named
// "<node>_wait_begins", "<node>_begins" and "<node>_ends".
type Entry struct {
	Caller     int     `json:"caller"`
	Pathway    string  `json:"pathway"`
	EventType  string  `json:"event_type"`
	Event      string  `json:"event"`
	Time       float64 `json:"time"`
	ResourceID int     `json:"resource_id,omitempty"`
}

// pathway is the single pathway label used by this model.
const pathway = "Model"

// FromRecords converts one replication's visit records into an event
// log. For each caller: an arrival entry at the first node's arrival
// time, then per visited node a wait-begins, a resource-use-begins and
// a resource-use-ends entry, and finally a depart entry at the last
// node's exit time. nodeNames[i] labels the i-th visit; a caller with
// more visits than names is an error.
func FromRecords(recs []sim.Record, nodeNames []string) ([]Entry, error) {
	byCaller := map[int][]sim.Record{}
	var ids []int
	for _, rec := range recs {
		if _, seen := byCaller[rec.ID]; !seen {
			ids = append(ids, rec.ID)
		}
		byCaller[rec.ID] = append(byCaller[rec.ID], rec)
	}
	sort.Ints(ids)

	var entries []Entry
	for _, id := range ids {
		visits := byCaller[id]
		sort.Slice(visits, func(i, j int) bool {
			return visits[i].ArrivalDate < visits[j].ArrivalDate
		})
		if len(visits) > len(nodeNames) {
			return nil, fmt.Errorf("caller %d has %d visits but only %d node names", id, len(visits), len(nodeNames))
		}

		for i, v := range visits {
			if i == 0 {
				entries = append(entries, Entry{
					Caller:    id,
					Pathway:   pathway,
					EventType: TypeArrivalDeparture,
					Event:     EventArrival,
					Time:      v.ArrivalDate,
				})
			}

			name := nodeNames[i]
			entries = append(entries,
				Entry{
					Caller:    id,
					Pathway:   pathway,
					EventType: TypeQueue,
					Event:     name + "_wait_begins",
					Time:      v.ArrivalDate,
				},
				Entry{
					Caller:     id,
					Pathway:    pathway,
					EventType:  TypeResourceUse,
					Event:      name + "_begins",
					Time:       v.ServiceStartDate,
					ResourceID: v.ServerID,
				},
				Entry{
					Caller:     id,
					Pathway:    pathway,
					EventType:  TypeResourceUse,
					Event:      name + "_ends",
					Time:       v.ServiceEndDate,
					ResourceID: v.ServerID,
				},
			)

			if i == len(visits)-1 {
				entries = append(entries, Entry{
					Caller:    id,
					Pathway:   pathway,
					EventType: TypeArrivalDeparture,
					Event:     EventDepart,
					Time:      v.ExitDate,
				})
			}
		}
	}

	return entries, nil
}
