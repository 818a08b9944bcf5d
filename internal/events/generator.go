// Package events implements the two sim.EventSource producers: a
// periodic synthetic message generator and a deterministic replay of
// an externally authored contact-event trace.
package events

import (
	"fmt"
	"math/rand"

	"github.com/AgentDudu/the-one/internal/sim"
)

// MessageEventGenerator periodically originates new messages between
// hosts drawn from a configured range, with interval and size sampled
// uniformly from configured ranges.
type MessageEventGenerator struct {
	MinInterval, MaxInterval float64
	MinSize, MaxSize         int64
	MinTTL, MaxTTL           float64
	HostRange                []sim.HostID
	IDPrefix                 string

	rng      *rand.Rand
	nextAt   float64
	seq      int
	armed    bool
}

// NewMessageEventGenerator creates a generator. rng should be a
// per-source sub-generator (see sim.RNGFactory) so runs stay
// reproducible.
func NewMessageEventGenerator(hostRange []sim.HostID, minInterval, maxInterval float64, minSize, maxSize int64, minTTL, maxTTL float64, idPrefix string, rng *rand.Rand) *MessageEventGenerator {
	return &MessageEventGenerator{
		MinInterval: minInterval, MaxInterval: maxInterval,
		MinSize: minSize, MaxSize: maxSize,
		MinTTL: minTTL, MaxTTL: maxTTL,
		HostRange: hostRange,
		IDPrefix:  idPrefix,
		rng:       rng,
	}
}

func (g *MessageEventGenerator) sampleInterval() float64 {
	if g.MaxInterval <= g.MinInterval {
		return g.MinInterval
	}
	return g.MinInterval + g.rng.Float64()*(g.MaxInterval-g.MinInterval)
}

func (g *MessageEventGenerator) sampleSize() int64 {
	if g.MaxSize <= g.MinSize {
		return g.MinSize
	}
	return g.MinSize + int64(g.rng.Float64()*float64(g.MaxSize-g.MinSize))
}

func (g *MessageEventGenerator) sampleTTL() float64 {
	if g.MaxTTL <= g.MinTTL {
		return g.MinTTL
	}
	return g.MinTTL + g.rng.Float64()*(g.MaxTTL-g.MinTTL)
}

func (g *MessageEventGenerator) pickDistinctPair() (sim.HostID, sim.HostID, bool) {
	n := len(g.HostRange)
	if n < 2 {
		return 0, 0, false
	}
	from := g.HostRange[g.rng.Intn(n)]
	to := from
	for to == from {
		to = g.HostRange[g.rng.Intn(n)]
	}
	return from, to, true
}

func (g *MessageEventGenerator) nextID() string {
	g.seq++
	return fmt.Sprintf("%s%d", g.IDPrefix, g.seq)
}

// FireDue originates every message whose scheduled time has arrived,
// in order, re-arming the next scheduled time each time.
func (g *MessageEventGenerator) FireDue(world *sim.World, now float64) {
	if !g.armed {
		g.nextAt = now + g.sampleInterval()
		g.armed = true
	}
	for g.nextAt <= now {
		from, to, ok := g.pickDistinctPair()
		if ok {
			m := sim.NewMessage(g.nextID(), from, to, g.sampleSize(), g.sampleTTL(), now)
			world.NewMessage(m)
		}
		g.nextAt += g.sampleInterval()
	}
}
