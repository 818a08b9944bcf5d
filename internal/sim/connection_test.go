package sim_test

import (
	"testing"

	"github.com/AgentDudu/the-one/internal/sim"
)

func TestConnection_SpeedIsMinimumOfBothInterfaces(t *testing.T) {
	a := sim.NewInterface(sim.InterfaceID{Host: 1, Index: 0}, 10, 1000)
	b := sim.NewInterface(sim.InterfaceID{Host: 2, Index: 0}, 10, 500)
	c := sim.NewConnection(a, b)

	if c.Speed != 500 {
		t.Fatalf("expected connection speed to be the slower interface's 500, got %v", c.Speed)
	}
	if c.State() != sim.StateUpIdle {
		t.Fatalf("expected a new connection to start idle")
	}
}

func TestConnection_BeginTransferRejectedWhenNotIdle(t *testing.T) {
	a := sim.NewInterface(sim.InterfaceID{Host: 1, Index: 0}, 10, 1000)
	b := sim.NewInterface(sim.InterfaceID{Host: 2, Index: 0}, 10, 1000)
	c := sim.NewConnection(a, b)

	m1 := sim.NewMessage("M1", 1, 2, 100, 300, 0)
	if !c.BeginTransfer(m1, 1, 2) {
		t.Fatalf("expected the first BeginTransfer to succeed on an idle connection")
	}

	m2 := sim.NewMessage("M2", 1, 2, 100, 300, 0)
	if c.BeginTransfer(m2, 1, 2) {
		t.Fatalf("expected a second BeginTransfer to fail while one is already in flight")
	}
}

func TestConnection_AdvanceCompletesExactlyAtFullSize(t *testing.T) {
	a := sim.NewInterface(sim.InterfaceID{Host: 1, Index: 0}, 10, 100)
	b := sim.NewInterface(sim.InterfaceID{Host: 2, Index: 0}, 10, 100)
	c := sim.NewConnection(a, b)

	m := sim.NewMessage("M1", 1, 2, 250, 300, 0)
	c.BeginTransfer(m, 1, 2)

	if c.Advance(1.0) {
		t.Fatalf("expected transfer not yet complete after 100 bytes of 250")
	}
	if c.Advance(1.0) {
		t.Fatalf("expected transfer not yet complete after 200 bytes of 250")
	}
	if !c.Advance(1.0) {
		t.Fatalf("expected transfer complete after 300 bytes moved for a 250-byte message")
	}

	done, from, to := c.FinishTransfer()
	if done.ID != "M1" || from != 1 || to != 2 {
		t.Fatalf("unexpected FinishTransfer result: %v %v %v", done, from, to)
	}
	if c.State() != sim.StateUpIdle {
		t.Fatalf("expected connection back to idle after FinishTransfer")
	}
}

func TestConnection_AbortClearsInFlightWithoutDelivering(t *testing.T) {
	a := sim.NewInterface(sim.InterfaceID{Host: 1, Index: 0}, 10, 100)
	b := sim.NewInterface(sim.InterfaceID{Host: 2, Index: 0}, 10, 100)
	c := sim.NewConnection(a, b)

	m := sim.NewMessage("M1", 1, 2, 250, 300, 0)
	c.BeginTransfer(m, 1, 2)
	c.Advance(1.0)

	aborted, from, to := c.Abort()
	if aborted.ID != "M1" || from != 1 || to != 2 {
		t.Fatalf("unexpected Abort result: %v %v %v", aborted, from, to)
	}
	if _, ok := c.InFlight(); ok {
		t.Fatalf("expected no in-flight message after Abort")
	}
}

func TestConnection_TearDownRemovesFromBothInterfaces(t *testing.T) {
	a := sim.NewInterface(sim.InterfaceID{Host: 1, Index: 0}, 10, 100)
	b := sim.NewInterface(sim.InterfaceID{Host: 2, Index: 0}, 10, 100)
	c := sim.NewConnection(a, b)

	ifaces := map[sim.InterfaceID]*sim.Interface{a.ID: a, b.ID: b}
	c.TearDown(ifaces)

	if c.IsUp() {
		t.Fatalf("expected connection to report down after TearDown")
	}
	if len(a.Connections()) != 0 || len(b.Connections()) != 0 {
		t.Fatalf("expected TearDown to detach the connection from both interfaces")
	}
}
