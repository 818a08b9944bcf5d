// Package community implements the local-community detectors used by
// Bubble Rap: K-Clique Community Detection and a Simple variant that
// treats the familiar set itself as the community.
package community

import "github.com/AgentDudu/the-one/internal/sim"

// Detector tracks one host's familiar set and local community as
// contacts accumulate. A contact's cumulative duration and the peer's
// own familiar set (read via the peer-view pattern, since no shared
// state exists between routers) drive admission.
type Detector interface {
	// OnContact updates familiarity and community membership given the
	// cumulative contact duration with peer and peer's own familiar
	// set (nil if unavailable, e.g. the peer runs a different
	// strategy).
	OnContact(peer sim.HostID, cumulativeContactSeconds float64, peerFamiliar map[sim.HostID]bool)

	// Familiar returns the set of hosts familiar enough to be
	// considered, including self.
	Familiar() map[sim.HostID]bool

	// LocalCommunity returns the current local community, including
	// self.
	LocalCommunity() map[sim.HostID]bool
}

// KClique is the K-Clique Community Detection algorithm: a peer
// becomes familiar once cumulative contact time crosses
// FamiliarThreshold, and joins the local community once its own
// familiar set overlaps the current community in at least K hosts.
type KClique struct {
	K                 int
	FamiliarThreshold float64

	self     sim.HostID
	familiar map[sim.HostID]bool
	comm     map[sim.HostID]bool
}

// NewKClique creates a K-Clique detector for self, seeded with self as
// both familiar and in its own community.
func NewKClique(self sim.HostID, k int, familiarThreshold float64) *KClique {
	if k < 1 {
		k = 1
	}
	return &KClique{
		K:                 k,
		FamiliarThreshold: familiarThreshold,
		self:              self,
		familiar:          map[sim.HostID]bool{self: true},
		comm:              map[sim.HostID]bool{self: true},
	}
}

func (d *KClique) Familiar() map[sim.HostID]bool       { return d.familiar }
func (d *KClique) LocalCommunity() map[sim.HostID]bool { return d.comm }

func (d *KClique) OnContact(peer sim.HostID, cumulativeContactSeconds float64, peerFamiliar map[sim.HostID]bool) {
	if cumulativeContactSeconds >= d.FamiliarThreshold {
		d.familiar[peer] = true
	}
	if d.comm[peer] || peerFamiliar == nil {
		return
	}
	overlap := 0
	for h := range peerFamiliar {
		if d.comm[h] {
			overlap++
		}
	}
	if overlap >= d.K {
		d.comm[peer] = true
	}
}

// Simple treats the familiar set itself as the local community: a peer
// familiar enough (cumulative contact time over FamiliarThreshold) is
// immediately a community member, with no K-clique overlap check.
type Simple struct {
	FamiliarThreshold float64

	self     sim.HostID
	familiar map[sim.HostID]bool
}

// NewSimple creates a Simple community detector for self.
func NewSimple(self sim.HostID, familiarThreshold float64) *Simple {
	return &Simple{
		FamiliarThreshold: familiarThreshold,
		self:              self,
		familiar:          map[sim.HostID]bool{self: true},
	}
}

func (d *Simple) Familiar() map[sim.HostID]bool       { return d.familiar }
func (d *Simple) LocalCommunity() map[sim.HostID]bool { return d.familiar }

func (d *Simple) OnContact(peer sim.HostID, cumulativeContactSeconds float64, _ map[sim.HostID]bool) {
	if cumulativeContactSeconds >= d.FamiliarThreshold {
		d.familiar[peer] = true
	}
}
