package movement_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/AgentDudu/the-one/internal/movement"
	"github.com/AgentDudu/the-one/internal/sim"
)

func TestStationary_NeverMoves(t *testing.T) {
	anchor := sim.Point{X: 5, Y: 5}
	m := movement.NewStationary(anchor)
	if got := m.InitialPosition(); got != anchor {
		t.Fatalf("expected initial position %v, got %v", anchor, got)
	}
	if got := m.NextPath(sim.Point{X: 100, Y: 100}, 10, 1); got != anchor {
		t.Fatalf("expected NextPath to always return the anchor, got %v", got)
	}
}

func TestRandomWaypoint_InitialPositionWithinArea(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := movement.NewRandomWaypoint(0, 0, 100, 100, 1, 1, 0, 0, rng)
	p := m.InitialPosition()
	if p.X < 0 || p.X > 100 || p.Y < 0 || p.Y > 100 {
		t.Fatalf("expected initial position within [0,100]x[0,100], got %v", p)
	}
}

func TestRandomWaypoint_StepsTowardTargetAtConstantSpeed(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := movement.NewRandomWaypoint(0, 0, 100, 100, 10, 10, 0, 0, rng)
	start := m.InitialPosition()

	next := m.NextPath(start, 0, 0.5)
	dx := next.X - start.X
	dy := next.Y - start.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if math.Abs(dist-5) > 1e-9 {
		t.Fatalf("expected a step of speed*dt=5 units toward the target, got distance %v", dist)
	}
}

func TestRandomWaypoint_PausesAtArrivalForMinPauseSeconds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := movement.NewRandomWaypoint(0, 0, 100, 100, 1_000_000, 1_000_000, 10, 10, rng)
	start := m.InitialPosition()

	arrived := m.NextPath(start, 0, 1) // huge speed covers the whole area in one step
	// Immediately after arrival, the host should be paused: a NextPath
	// call at a time still within the pause window must not move.
	held := m.NextPath(arrived, 5, 1)
	if held != arrived {
		t.Fatalf("expected the host to remain paused at %v, got %v", arrived, held)
	}
}

func TestRandomWaypoint_ResumesMovementAfterPauseElapses(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := movement.NewRandomWaypoint(0, 0, 100, 100, 1_000_000, 1_000_000, 10, 10, rng)
	start := m.InitialPosition()
	arrived := m.NextPath(start, 0, 1)

	// At t=11, the 10-second pause (starting at t=0) has elapsed.
	moved := m.NextPath(arrived, 11, 1)
	if moved == arrived {
		t.Fatalf("expected movement to resume toward a new target once the pause elapses")
	}
}
