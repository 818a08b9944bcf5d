// Package movement implements the sim.MovementModel strategies hosts
// can be assigned: a fixed Stationary model and a Random Waypoint
// model driven by a per-host RNG sub-generator.
package movement

import (
	"math"
	"math/rand"

	"github.com/AgentDudu/the-one/internal/sim"
)

// Stationary keeps a host fixed at one location forever.
type Stationary struct {
	At sim.Point
}

// NewStationary creates a Stationary model anchored at p.
func NewStationary(p sim.Point) *Stationary { return &Stationary{At: p} }

func (s *Stationary) InitialPosition() sim.Point { return s.At }

func (s *Stationary) NextPath(current sim.Point, now, dt float64) sim.Point { return s.At }

// RandomWaypoint moves a host in straight lines at a constant speed
// between uniformly sampled waypoints within a rectangular area,
// pausing for a random duration at each one.
type RandomWaypoint struct {
	MinX, MinY, MaxX, MaxY float64
	MinSpeed, MaxSpeed     float64
	MinPause, MaxPause     float64

	rng *rand.Rand

	start, target sim.Point
	speed         float64
	pauseUntil    float64
	initialized   bool
}

// NewRandomWaypoint creates a Random Waypoint model over the given
// area, speed range, and pause range, using rng for every sampled
// waypoint/speed/pause (callers pass a per-host sub-generator so runs
// are reproducible).
func NewRandomWaypoint(minX, minY, maxX, maxY, minSpeed, maxSpeed, minPause, maxPause float64, rng *rand.Rand) *RandomWaypoint {
	return &RandomWaypoint{
		MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY,
		MinSpeed: minSpeed, MaxSpeed: maxSpeed,
		MinPause: minPause, MaxPause: maxPause,
		rng: rng,
	}
}

func (m *RandomWaypoint) randomPoint() sim.Point {
	return sim.Point{
		X: m.MinX + m.rng.Float64()*(m.MaxX-m.MinX),
		Y: m.MinY + m.rng.Float64()*(m.MaxY-m.MinY),
	}
}

func (m *RandomWaypoint) randomSpeed() float64 {
	return m.MinSpeed + m.rng.Float64()*(m.MaxSpeed-m.MinSpeed)
}

func (m *RandomWaypoint) randomPause() float64 {
	if m.MaxPause <= m.MinPause {
		return m.MinPause
	}
	return m.MinPause + m.rng.Float64()*(m.MaxPause-m.MinPause)
}

func (m *RandomWaypoint) InitialPosition() sim.Point {
	m.start = m.randomPoint()
	m.target = m.randomPoint()
	m.speed = m.randomSpeed()
	m.initialized = true
	return m.start
}

// NextPath advances current toward the active target by speed*dt. On
// arrival it samples a pause duration; once the pause elapses it picks
// a fresh target and speed.
func (m *RandomWaypoint) NextPath(current sim.Point, now, dt float64) sim.Point {
	if !m.initialized {
		m.start = current
		m.target = m.randomPoint()
		m.speed = m.randomSpeed()
		m.initialized = true
	}
	if now < m.pauseUntil {
		return current
	}
	dx := m.target.X - current.X
	dy := m.target.Y - current.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	step := m.speed * dt
	if dist <= step || dist == 0 {
		arrived := m.target
		m.pauseUntil = now + m.randomPause()
		m.target = m.randomPoint()
		m.speed = m.randomSpeed()
		return arrived
	}
	ratio := step / dist
	return sim.Point{X: current.X + dx*ratio, Y: current.Y + dy*ratio}
}
