// Package history tracks each router's per-peer contact durations:
// finished (startTime, endTime) pairs plus any currently open contact,
// feeding Bubble Rap's community detection and centrality computation.
package history

import "github.com/AgentDudu/the-one/internal/sim"

// Interval is one finished contact with a peer.
type Interval struct {
	Start, End float64
}

// Manager is the per-router contact history. It assumes single-threaded
// replay and is not safe for concurrent use from multiple goroutines.
type Manager struct {
	finished  map[sim.HostID][]Interval
	openSince map[sim.HostID]float64
}

// NewManager creates an empty contact history.
func NewManager() *Manager {
	return &Manager{
		finished:  make(map[sim.HostID][]Interval),
		openSince: make(map[sim.HostID]float64),
	}
}

// Open records the start of a new contact with peer at time now. A
// second Open call while the contact is already open is a no-op.
func (m *Manager) Open(peer sim.HostID, now float64) {
	if _, already := m.openSince[peer]; already {
		return
	}
	m.openSince[peer] = now
}

// Close records the end of an open contact with peer at time now,
// appending it to the finished history. A Close with no matching Open
// is a no-op.
func (m *Manager) Close(peer sim.HostID, now float64) {
	start, ok := m.openSince[peer]
	if !ok {
		return
	}
	delete(m.openSince, peer)
	m.finished[peer] = append(m.finished[peer], Interval{Start: start, End: now})
}

// IsOpen reports whether a contact with peer is currently open.
func (m *Manager) IsOpen(peer sim.HostID) bool {
	_, ok := m.openSince[peer]
	return ok
}

// Finished returns the finished contact intervals with peer.
func (m *Manager) Finished(peer sim.HostID) []Interval {
	return m.finished[peer]
}

// AllFinished returns every peer's finished interval list. Callers
// must not mutate the returned slices.
func (m *Manager) AllFinished() map[sim.HostID][]Interval {
	return m.finished
}

// AllOpen returns every peer currently in an open contact, mapped to
// its start time. Callers must not mutate the returned map.
func (m *Manager) AllOpen() map[sim.HostID]float64 {
	return m.openSince
}

// CumulativeContactTime returns the total finished contact duration
// with peer, in seconds, and (if includeOpen) adds the duration of any
// currently open contact up to now.
func (m *Manager) CumulativeContactTime(peer sim.HostID, now float64, includeOpen bool) float64 {
	total := 0.0
	for _, iv := range m.finished[peer] {
		total += iv.End - iv.Start
	}
	if includeOpen {
		if start, ok := m.openSince[peer]; ok {
			total += now - start
		}
	}
	return total
}

// Peers returns every peer this manager has ever recorded a contact
// with, finished or currently open.
func (m *Manager) Peers() []sim.HostID {
	seen := make(map[sim.HostID]bool)
	for p := range m.finished {
		seen[p] = true
	}
	for p := range m.openSince {
		seen[p] = true
	}
	out := make([]sim.HostID, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	return out
}
