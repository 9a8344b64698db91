package sim

import (
	"container/heap"
	"fmt"
	"math/rand"
	"sort"
)

// Record is one completed node visit, mirroring the per-entity tuples
// the model layer turns into metrics and event logs.
type Record struct {
	ID               int     `json:"id"`
	Node             int     `json:"node"` // 1-based node number
	ArrivalDate      float64 `json:"arrival_date"`
	WaitingTime      float64 `json:"waiting_time"`
	ServiceStartDate float64 `json:"service_start_date"`
	ServiceEndDate   float64 `json:"service_end_date"`
	ExitDate         float64 `json:"exit_date"`
	ServerID         int     `json:"server_id"` // 1-based within the node
}

// NodeConfig describes one service station.
type NodeConfig struct {
	Name    string
	Servers int
	Service Dist
}

// Network describes the simulated system: an external arrival process
// feeding the first node, and a routing function deciding where an
// entity goes after completing service.
type Network struct {
	Arrival Dist
	Nodes   []NodeConfig

	// Route returns the 0-based index of the next node after finishing
	// service at node idx, or -1 to leave the system.
	Route func(r *rand.Rand, idx int) int
}

// Validate checks the network is runnable.
func (n Network) Validate() error {
	if n.Arrival == nil {
		return fmt.Errorf("network has no arrival distribution")
	}
	if len(n.Nodes) == 0 {
		return fmt.Errorf("network has no nodes")
	}
	for i, node := range n.Nodes {
		if node.Servers < 1 {
			return fmt.Errorf("node %d (%s): servers must be >= 1, got %d", i+1, node.Name, node.Servers)
		}
		if node.Service == nil {
			return fmt.Errorf("node %d (%s): no service distribution", i+1, node.Name)
		}
	}
	if n.Route == nil {
		return fmt.Errorf("network has no routing function")
	}
	return nil
}

// event kinds on the future-event list.
const (
	evArrival = iota // external arrival at node 0
	evEndService
)

type event struct {
	time float64
	seq  int // FIFO tie-break for simultaneous events
	kind int

	// evEndService payload
	visit *visit
	node  int
}

type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(*event)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// visit tracks one entity's passage through one node.
type visit struct {
	entityID     int
	arrival      float64
	serviceStart float64
	serverID     int
}

// nodeState is the runtime state of one node.
type nodeState struct {
	cfg   NodeConfig
	queue []*visit
	free  []int   // free server IDs, kept sorted ascending
	busy  float64 // accumulated service time of completed services
}

// Simulation runs a Network until a time horizon and collects records.
type Simulation struct {
	net    Network
	rng    *rand.Rand
	events eventHeap
	seq    int
	now    float64
	nextID int
	nodes  []*nodeState
	recs   []Record
}

// New creates a simulation for the network seeded with the given seed.
func New(net Network, seed int64) (*Simulation, error) {
	if err := net.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{
		net:    net,
		rng:    rand.New(rand.NewSource(seed)),
		nextID: 1,
	}
	for _, cfg := range net.Nodes {
		ns := &nodeState{cfg: cfg}
		for id := 1; id <= cfg.Servers; id++ {
			ns.free = append(ns.free, id)
		}
		s.nodes = append(s.nodes, ns)
	}
	return s, nil
}

// Run executes the simulation until the next event would occur after
// the horizon, and returns the completed visit records sorted by
// entity ID then arrival time.
func (s *Simulation) Run(horizon float64) []Record {
	heap.Init(&s.events)
	s.schedule(s.net.Arrival.Sample(s.rng), evArrival, nil, 0)

	for s.events.Len() > 0 {
		e := heap.Pop(&s.events).(*event)
		if e.time > horizon {
			break
		}
		s.now = e.time
		switch e.kind {
		case evArrival:
			s.handleArrival()
		case evEndService:
			s.handleEndService(e.visit, e.node)
		}
	}

	sort.Slice(s.recs, func(i, j int) bool {
		if s.recs[i].ID != s.recs[j].ID {
			return s.recs[i].ID < s.recs[j].ID
		}
		return s.recs[i].ArrivalDate < s.recs[j].ArrivalDate
	})
	return s.recs
}

// Utilisation returns the fraction of total server capacity at the
// 0-based node that was busy with completed services over the horizon.
func (s *Simulation) Utilisation(node int, horizon float64) float64 {
	ns := s.nodes[node]
	if horizon <= 0 || ns.cfg.Servers == 0 {
		return 0
	}
	return ns.busy / (float64(ns.cfg.Servers) * horizon)
}

func (s *Simulation) schedule(t float64, kind int, v *visit, node int) {
	s.seq++
	heap.Push(&s.events, &event{time: t, seq: s.seq, kind: kind, visit: v, node: node})
}

func (s *Simulation) handleArrival() {
	id := s.nextID
	s.nextID++
	s.enter(&visit{entityID: id, arrival: s.now}, 0)

	// Keep the arrival process going.
	s.schedule(s.now+s.net.Arrival.Sample(s.rng), evArrival, nil, 0)
}

// enter places a visit at a node, starting service if a server is free.
func (s *Simulation) enter(v *visit, node int) {
	ns := s.nodes[node]
	if len(ns.free) > 0 {
		s.startService(v, node)
		return
	}
	ns.queue = append(ns.queue, v)
}

func (s *Simulation) startService(v *visit, node int) {
	ns := s.nodes[node]
	v.serverID = ns.free[0]
	ns.free = ns.free[1:]
	v.serviceStart = s.now
	end := s.now + ns.cfg.Service.Sample(s.rng)
	s.schedule(end, evEndService, v, node)
}

func (s *Simulation) handleEndService(v *visit, node int) {
	ns := s.nodes[node]
	ns.busy += s.now - v.serviceStart

	s.recs = append(s.recs, Record{
		ID:               v.entityID,
		Node:             node + 1,
		ArrivalDate:      v.arrival,
		WaitingTime:      v.serviceStart - v.arrival,
		ServiceStartDate: v.serviceStart,
		ServiceEndDate:   s.now,
		ExitDate:         s.now,
		ServerID:         v.serverID,
	})

	// Return the server, handing it straight to the head of the queue.
	if len(ns.queue) > 0 {
		next := ns.queue[0]
		ns.queue = ns.queue[1:]
		next.serverID = v.serverID
		next.serviceStart = s.now
		end := s.now + ns.cfg.Service.Sample(s.rng)
		s.schedule(end, evEndService, next, node)
	} else {
		ns.free = insertSorted(ns.free, v.serverID)
	}

	if next := s.net.Route(s.rng, node); next >= 0 {
		s.enter(&visit{entityID: v.entityID, arrival: s.now}, next)
	}
}

// insertSorted keeps free server IDs ascending so the lowest-numbered
// free server is always picked next.
func insertSorted(ids []int, id int) []int {
	i := sort.SearchInts(ids, id)
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}
