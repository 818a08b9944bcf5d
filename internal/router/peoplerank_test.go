package router_test

import (
	"math"
	"testing"

	"github.com/AgentDudu/the-one/internal/router"
	"github.com/AgentDudu/the-one/internal/sim"
)

func TestComputeRanks_StarGraphHubOutranksLeaves(t *testing.T) {
	graph := router.NewStaticSocialGraph()
	graph.AddEdge(1, 2)
	graph.AddEdge(1, 3)
	graph.AddEdge(1, 4)

	hosts := []sim.HostID{1, 2, 3, 4}
	ranks := router.ComputeRanks(graph, hosts, 0.85, 50)

	if ranks[1] <= ranks[2] {
		t.Fatalf("expected the hub (host 1) to outrank a leaf, hub=%.4f leaf=%.4f", ranks[1], ranks[2])
	}
	if math.Abs(ranks[2]-ranks[3]) > 1e-9 || math.Abs(ranks[3]-ranks[4]) > 1e-9 {
		t.Fatalf("expected the three symmetric leaves to converge to equal rank, got %v %v %v", ranks[2], ranks[3], ranks[4])
	}
}

func peopleRankHost(id sim.HostID, at sim.Point, rank float64) *sim.Host {
	h := sim.NewHost(id, "N", int(id), 1_000_000, router.NewPeopleRank(rank))
	h.Location = at
	h.AddInterface(sim.NewInterface(sim.InterfaceID{Host: id, Index: 0}, 5, 1_000_000))
	return h
}

// A message should only flow to a peer with strictly higher rank, and
// a lower-ranked peer should never receive it.
func TestPeopleRank_ForwardsOnlyToHigherRankedPeer(t *testing.T) {
	const dt = 1.0
	w := sim.NewWorld(dt, 1, 200)

	low := peopleRankHost(1, sim.Point{X: 0, Y: 0}, 0.1)
	lower := peopleRankHost(2, sim.Point{X: 1, Y: 0}, 0.05)
	higher := peopleRankHost(3, sim.Point{X: 1, Y: 0}, 0.9)
	w.AddHost(low)
	w.AddHost(lower)
	w.AddHost(higher)

	m := sim.NewMessage("M1", 1, 99, 1000, 300, 0)
	w.NewMessage(m)

	for i := 0; i < 3; i++ {
		w.Tick()
	}

	if lower.Buffer.Has("M1") {
		t.Fatalf("expected the lower-ranked peer to never receive the message")
	}
	if !higher.Buffer.Has("M1") {
		t.Fatalf("expected the higher-ranked peer to receive the message")
	}
}

// EnableContactUpdates should replace the frozen offline snapshot with
// a rank recomputed from the neighbor's current rank/degree as soon as
// the two actually meet.
func TestPeopleRank_ContactRefreshesRankFromNeighbor(t *testing.T) {
	const dt = 1.0
	w := sim.NewWorld(dt, 1, 200)

	graph := router.NewStaticSocialGraph()
	graph.AddEdge(1, 2)

	selfR := router.NewPeopleRank(0.1) // stale offline snapshot for host 1
	peerR := router.NewPeopleRank(0.9) // host 2's current (higher) rank

	initialRanks := map[sim.HostID]float64{1: 0.1, 2: 0.1} // host 1's stale view of host 2
	selfR.EnableContactUpdates(1, graph, initialRanks, 0.8)
	peerR.EnableContactUpdates(2, graph, initialRanks, 0.8)

	self := sim.NewHost(1, "N", 1, 1_000_000, selfR)
	self.Location = sim.Point{X: 0, Y: 0}
	self.AddInterface(sim.NewInterface(sim.InterfaceID{Host: 1, Index: 0}, 5, 1_000_000))
	peer := sim.NewHost(2, "N", 2, 1_000_000, peerR)
	peer.Location = sim.Point{X: 1, Y: 0}
	peer.AddInterface(sim.NewInterface(sim.InterfaceID{Host: 2, Index: 0}, 5, 1_000_000))

	w.AddHost(self)
	w.AddHost(peer)

	before := selfR.Rank()
	if math.Abs(before-0.1) > 1e-9 {
		t.Fatalf("expected host 1's rank to start at its offline snapshot 0.1, got %.6f", before)
	}

	w.Tick() // brings the connection up; ChangedConnection should refresh host 1's rank from host 2's live 0.9

	after := selfR.Rank()
	if math.Abs(after-before) < 1e-9 {
		t.Fatalf("expected contact with a social neighbor to change host 1's rank, stayed at %.6f", after)
	}
	// PeR_1 = (1-0.8) + 0.8 * (PeR_2/degree(2)) = 0.2 + 0.8*(0.9/1) = 0.92
	want := 0.2 + 0.8*0.9
	if math.Abs(after-want) > 1e-9 {
		t.Fatalf("expected host 1's rank to recompute to %.6f using host 2's latest rank/degree, got %.6f", want, after)
	}
}

// A peer outside the social neighbor set must never influence rank,
// even on contact.
func TestPeopleRank_ContactWithNonNeighborDoesNotChangeRank(t *testing.T) {
	const dt = 1.0
	w := sim.NewWorld(dt, 1, 200)

	graph := router.NewStaticSocialGraph()
	graph.AddEdge(1, 2) // host 3 is not a social neighbor of host 1

	selfR := router.NewPeopleRank(0.1)
	strangerR := router.NewPeopleRank(0.99)

	selfR.EnableContactUpdates(1, graph, map[sim.HostID]float64{1: 0.1, 2: 0.1}, 0.8)

	self := sim.NewHost(1, "N", 1, 1_000_000, selfR)
	self.Location = sim.Point{X: 0, Y: 0}
	self.AddInterface(sim.NewInterface(sim.InterfaceID{Host: 1, Index: 0}, 5, 1_000_000))
	stranger := sim.NewHost(3, "N", 3, 1_000_000, strangerR)
	stranger.Location = sim.Point{X: 1, Y: 0}
	stranger.AddInterface(sim.NewInterface(sim.InterfaceID{Host: 3, Index: 0}, 5, 1_000_000))

	w.AddHost(self)
	w.AddHost(stranger)

	w.Tick() // brings the connection up; host 3 is not in host 1's known set

	if got := selfR.Rank(); math.Abs(got-0.1) > 1e-9 {
		t.Fatalf("expected contact with a non-neighbor to leave rank unchanged at 0.1, got %.6f", got)
	}
}
