package router_test

import (
	"testing"

	"github.com/AgentDudu/the-one/internal/router"
	"github.com/AgentDudu/the-one/internal/sim"
)

func staticHost(id sim.HostID, at sim.Point, r sim.Router) *sim.Host {
	h := sim.NewHost(id, "N", int(id), 10_000_000, r)
	h.Location = at
	h.AddInterface(sim.NewInterface(sim.InterfaceID{Host: id, Index: 0}, 5, 1_000_000))
	return h
}

const farAway = 1_000_000.0

// After a source relays to three distinct peers in turn under binary
// Spray-and-Wait starting with 8 copies, the source should be left
// holding exactly 1 copy (8 -> 4 -> 2 -> 1). Peers are brought into
// range one at a time so each relay is unambiguous.
func TestSprayAndWait_SourceConvergesToSingleCopyAfterRelays(t *testing.T) {
	const dt = 1.0
	w := sim.NewWorld(dt, 1, 200)

	src := staticHost(1, sim.Point{X: 0, Y: 0}, router.NewSprayAndWait(8, true))
	w.AddHost(src)

	peers := []*sim.Host{
		staticHost(2, sim.Point{X: farAway, Y: 0}, router.NewSprayAndWait(8, true)),
		staticHost(3, sim.Point{X: farAway * 2, Y: 0}, router.NewSprayAndWait(8, true)),
		staticHost(4, sim.Point{X: farAway * 3, Y: 0}, router.NewSprayAndWait(8, true)),
	}
	for _, p := range peers {
		w.AddHost(p)
	}

	m := sim.NewMessage("M1", 1, 99, 1000, 300, 0)
	if res := w.NewMessage(m); !res.OK() {
		t.Fatalf("NewMessage: %v", res)
	}

	for _, p := range peers {
		p.Location = sim.Point{X: 1, Y: 0}
		for i := 0; i < 3 && !p.Buffer.Has("M1"); i++ {
			w.Tick()
		}
		if !p.Buffer.Has("M1") {
			t.Fatalf("peer %v never received the message while in range", p.ID)
		}
		p.Location = sim.Point{X: farAway, Y: 0}
		w.Tick() // tears the now-out-of-range connection back down
	}

	orig, ok := src.Buffer.Get("M1")
	if !ok {
		t.Fatalf("source should still hold its own copy")
	}
	v, _ := orig.Prop(router.SprayAndWaitCopiesProp)
	copies, _ := v.(int)
	if copies != 1 {
		t.Fatalf("expected source to converge to 1 copy after 3 relays, got %d", copies)
	}
}
