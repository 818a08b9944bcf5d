package router_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AgentDudu/the-one/internal/centrality"
	"github.com/AgentDudu/the-one/internal/community"
	"github.com/AgentDudu/the-one/internal/router"
	"github.com/AgentDudu/the-one/internal/sim"
)

func newBubbleRapHost(id sim.HostID, at sim.Point) *sim.Host {
	return newBubbleRapHostWithThreshold(id, at, 1)
}

func newBubbleRapHostWithThreshold(id sim.HostID, at sim.Point, familiarThreshold float64) *sim.Host {
	detector := community.NewKClique(id, 1, familiarThreshold)
	cent := centrality.NewCalculator(centrality.SWindow, 100, 1, 0)
	r := router.NewBubbleRap(detector, cent)
	h := sim.NewHost(id, "N", int(id), 1_000_000, r)
	h.Location = at
	h.AddInterface(sim.NewInterface(sim.InterfaceID{Host: id, Index: 0}, 5, 1_000_000))
	return h
}

// Two hosts that stay in contact long enough to cross the familiar
// threshold should end up with each other in their local community,
// without ever disconnecting: a continuously-open contact must still
// be re-checked against the threshold on every tick.
func TestBubbleRap_SustainedContactBuildsCommunity(t *testing.T) {
	const dt = 1.0
	w := sim.NewWorld(dt, 1, 200)

	a := newBubbleRapHost(1, sim.Point{X: 0, Y: 0})
	b := newBubbleRapHost(2, sim.Point{X: 1, Y: 0})
	w.AddHost(a)
	w.AddHost(b)

	for i := 0; i < 5; i++ {
		w.Tick()
	}

	aRouter := a.Router.(*router.BubbleRap)
	bRouter := b.Router.(*router.BubbleRap)
	require.True(t, aRouter.InCommunity(2) || bRouter.InCommunity(1),
		"expected at least one host to have admitted the other into its local community after sustained, uninterrupted contact")
	require.True(t, aRouter.Detector.Familiar()[2] && bRouter.Detector.Familiar()[1],
		"expected both hosts to have marked each other familiar after 5s of contact over a 1s threshold, with the connection still up")
}

// A contact that ends before crossing the threshold, by contrast,
// should never mark the peer familiar.
func TestBubbleRap_ShortContactNeverMarksFamiliar(t *testing.T) {
	const dt = 1.0
	w := sim.NewWorld(dt, 1, 200)

	a := newBubbleRapHostWithThreshold(1, sim.Point{X: 0, Y: 0}, 5)
	b := newBubbleRapHostWithThreshold(2, sim.Point{X: 1, Y: 0}, 5)
	w.AddHost(a)
	w.AddHost(b)

	w.Tick() // contact opens; cumulative time so far is ~0, below the 5s threshold

	b.Location = sim.Point{X: 1_000_000, Y: 0}
	w.Tick() // disconnects immediately, before the threshold is crossed

	aRouter := a.Router.(*router.BubbleRap)
	require.False(t, aRouter.Detector.Familiar()[2],
		"expected a contact shorter than the familiar threshold to never mark the peer familiar")
}
