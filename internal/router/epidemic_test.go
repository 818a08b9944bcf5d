package router_test

import (
	"testing"

	"github.com/AgentDudu/the-one/internal/router"
	"github.com/AgentDudu/the-one/internal/sim"
)

func epidemicHost(id sim.HostID, at sim.Point, bufferCapacity int64) *sim.Host {
	h := sim.NewHost(id, "N", int(id), bufferCapacity, router.NewEpidemic())
	h.Location = at
	h.AddInterface(sim.NewInterface(sim.InterfaceID{Host: id, Index: 0}, 5, 1_000_000))
	return h
}

// Epidemic should flood a message to every peer it meets that doesn't
// already have it, regardless of final destination.
func TestEpidemic_FloodsToEveryPeerLackingTheMessage(t *testing.T) {
	const dt = 1.0
	w := sim.NewWorld(dt, 1, 200)

	src := epidemicHost(1, sim.Point{X: 0, Y: 0}, 1_000_000)
	a := epidemicHost(2, sim.Point{X: 1, Y: 0}, 1_000_000)
	b := epidemicHost(3, sim.Point{X: 1, Y: 0}, 1_000_000)
	w.AddHost(src)
	w.AddHost(a)
	w.AddHost(b)

	m := sim.NewMessage("M1", 1, 99, 1000, 300, 0)
	if res := w.NewMessage(m); !res.OK() {
		t.Fatalf("NewMessage: %v", res)
	}

	for i := 0; i < 3; i++ {
		w.Tick()
	}

	if !a.Buffer.Has("M1") {
		t.Fatalf("expected peer a to receive the flooded message")
	}
	if !b.Buffer.Has("M1") {
		t.Fatalf("expected peer b to receive the flooded message")
	}
}

func TestEpidemic_DoesNotReflowAMessageAlreadyHeld(t *testing.T) {
	const dt = 1.0
	w := sim.NewWorld(dt, 1, 200)

	a := epidemicHost(1, sim.Point{X: 0, Y: 0}, 1_000_000)
	b := epidemicHost(2, sim.Point{X: 1, Y: 0}, 1_000_000)
	w.AddHost(a)
	w.AddHost(b)

	m := sim.NewMessage("M1", 1, 99, 1000, 300, 0)
	w.NewMessage(m)

	var delivered int
	w.AddMessageListener(sim.MessageListenerFuncs{
		OnRelayed: func(m *sim.Message, from, to sim.HostID) { delivered++ },
	})

	for i := 0; i < 5; i++ {
		w.Tick()
	}

	if delivered > 1 {
		t.Fatalf("expected at most one relay of M1 to b, got %d", delivered)
	}
}
