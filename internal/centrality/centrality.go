// Package centrality computes Bubble Rap's global and local centrality
// approximations from a host's contact history, using either the
// S-Window (per-window unique encounter count) or C-Window (cumulative
// unique encounter count) algorithm.
package centrality

import (
	"github.com/AgentDudu/the-one/internal/history"
	"github.com/AgentDudu/the-one/internal/sim"
)

// Kind selects the centrality algorithm.
type Kind int

const (
	SWindow Kind = iota
	CWindow
)

// Calculator memoizes global and local centrality, recomputing at most
// once per ComputeInterval seconds of simulated time (centrality is
// expensive to recompute and changes slowly compared to contact
// events).
type Calculator struct {
	Kind            Kind
	TimeWindow      float64
	WindowCount     int
	ComputeInterval float64

	haveGlobal, haveLocal bool
	lastGlobal, lastLocal float64
	global                float64
	local                 float64
}

// NewCalculator creates a Calculator with the given window parameters.
func NewCalculator(kind Kind, timeWindow float64, windowCount int, computeInterval float64) *Calculator {
	if windowCount < 1 {
		windowCount = 1
	}
	return &Calculator{Kind: kind, TimeWindow: timeWindow, WindowCount: windowCount, ComputeInterval: computeInterval}
}

// GlobalCentrality returns the centrality computed over all known
// peers, recomputing if ComputeInterval has elapsed.
func (c *Calculator) GlobalCentrality(now float64, hist *history.Manager) float64 {
	if c.due(c.haveGlobal, c.lastGlobal, now) {
		c.haveGlobal, c.lastGlobal = true, now
		c.global = c.compute(now, hist, nil)
	}
	return c.global
}

// LocalCentrality returns the centrality computed restricted to the
// given community membership set, recomputing if ComputeInterval has
// elapsed.
func (c *Calculator) LocalCentrality(now float64, hist *history.Manager, community map[sim.HostID]bool) float64 {
	if c.due(c.haveLocal, c.lastLocal, now) {
		c.haveLocal, c.lastLocal = true, now
		c.local = c.compute(now, hist, community)
	}
	return c.local
}

func (c *Calculator) due(have bool, last, now float64) bool {
	return !have || now-last >= c.ComputeInterval
}

func (c *Calculator) compute(now float64, hist *history.Manager, restrict map[sim.HostID]bool) float64 {
	switch c.Kind {
	case CWindow:
		return c.cWindow(now, hist, restrict)
	default:
		return c.sWindow(now, hist, restrict)
	}
}

// encounteredBetween returns the set of peers (restricted to restrict,
// if non-nil) with any contact overlapping the half-open window
// (lo, hi].
func encounteredBetween(hist *history.Manager, lo, hi float64, restrict map[sim.HostID]bool) map[sim.HostID]bool {
	out := make(map[sim.HostID]bool)
	for peer, ivs := range hist.AllFinished() {
		if restrict != nil && !restrict[peer] {
			continue
		}
		for _, iv := range ivs {
			if iv.Start < hi && iv.End > lo {
				out[peer] = true
				break
			}
		}
	}
	for peer, start := range hist.AllOpen() {
		if restrict != nil && !restrict[peer] {
			continue
		}
		if start < hi {
			out[peer] = true
		}
	}
	return out
}

// sWindow averages the unique-encounter count of each of the last
// WindowCount disjoint windows of length TimeWindow.
func (c *Calculator) sWindow(now float64, hist *history.Manager, restrict map[sim.HostID]bool) float64 {
	sum := 0.0
	for i := 0; i < c.WindowCount; i++ {
		hi := now - float64(i)*c.TimeWindow
		lo := hi - c.TimeWindow
		sum += float64(len(encounteredBetween(hist, lo, hi, restrict)))
	}
	return sum / float64(c.WindowCount)
}

// cWindow averages the cumulative unique-encounter count measured at
// the end of each of the last WindowCount window boundaries.
func (c *Calculator) cWindow(now float64, hist *history.Manager, restrict map[sim.HostID]bool) float64 {
	sum := 0.0
	for i := 0; i < c.WindowCount; i++ {
		hi := now - float64(i)*c.TimeWindow
		sum += float64(len(encounteredBetween(hist, -1, hi, restrict)))
	}
	return sum / float64(c.WindowCount)
}
