package router

import (
	"math"
	"math/rand"
	"sort"

	"github.com/AgentDudu/the-one/internal/sim"
)

// ProphetMoprProp accumulates the destination delivery predictability
// recorded at each successful forward, for the MOPR drop policy.
const ProphetMoprProp = "Prophet.mopr"

// ForwardStrategy selects how PRoPHET decides whether a message is
// worth forwarding to a given peer.
type ForwardStrategy int

const (
	// GRTR forwards whenever the peer's predictability to the
	// message's destination exceeds this host's own.
	GRTR ForwardStrategy = iota
	// GRTRSort behaves like GRTR but offers messages to peers ordered
	// by descending predictability advantage, so the most promising
	// forward wins the single-transfer-per-tick slot.
	GRTRSort
	// GRTRMax forwards a message only through the single connected
	// peer with the highest predictability to its destination, and
	// only if that peer beats this host's own.
	GRTRMax
	// COIN forwards on a coin flip, ignoring predictability entirely.
	COIN
)

// QueuePolicy selects the drop-victim ordering.
type QueuePolicy int

const (
	FIFO QueuePolicy = iota
	MOFO
	MOPR
	SHLI
	LEPR
)

// ProphetPeerView exposes the read-only slice of a peer's PRoPHET state
// another PRoPHET router needs: its delivery predictability to a given
// destination. Concrete routers that are not PRoPHET simply fail the
// type assertion, and transitive/forwarding logic degrades to treating
// the peer as having zero predictability everywhere.
type ProphetPeerView interface {
	Predictability(dest sim.HostID) float64
	AllPredictabilities() map[sim.HostID]float64
}

// Prophet implements the PRoPHET family of routers: a delivery
// predictability map aged lazily and updated on direct contact and
// transitively through peers, combined with a configurable forwarding
// strategy and drop policy. The PREP and Random variants below reuse
// this type with different Forward/Queue settings.
type Prophet struct {
	Base

	PInit           float64
	Beta            float64
	Gamma           float64
	SecondsInUnit   float64
	Forward         ForwardStrategy
	Queue           QueuePolicy
	RandomVariant   bool // true selects the Random variant: coin-flip candidate inclusion, no P-based filtering
	PREPVariant     bool // true selects the PREP variant: preP bookkeeping gates GRTR_MAX forwarding

	pred      map[sim.HostID]float64
	prePSnap  map[sim.HostID]float64
	lastAged  float64
	rng       *rand.Rand
}

// NewProphet creates a PRoPHET router with the literature-default
// constants (PInit=0.75, Beta=0.25, Gamma=0.98, secondsInTimeUnit=30)
// unless overridden on the returned value before Init.
func NewProphet(forward ForwardStrategy, queue QueuePolicy) *Prophet {
	return &Prophet{
		PInit:         0.75,
		Beta:          0.25,
		Gamma:         0.98,
		SecondsInUnit: 30,
		Forward:       forward,
		Queue:         queue,
	}
}

// NewProphetPREP creates the PREP variant: GRTR_MAX-style forwarding,
// gated by preP bookkeeping — each destination's predictability is
// snapshotted as preP[d] whenever this host itself receives a message
// bound for d, and a peer is only forwarded to if its predictability
// also clears that snapshot (not just this host's live P(d)).
func NewProphetPREP() *Prophet {
	p := NewProphet(GRTRMax, MOPR)
	p.PREPVariant = true
	return p
}

// NewProphetRandom creates the Random variant: forwarding ignores
// predictability comparison in favor of a coin flip, while the
// predictability map is still maintained for reporting.
func NewProphetRandom() *Prophet {
	p := NewProphet(COIN, FIFO)
	p.RandomVariant = true
	return p
}

func (r *Prophet) Init(host *sim.Host, world *sim.World) {
	r.Base.Init(host, world)
	r.pred = make(map[sim.HostID]float64)
	r.prePSnap = make(map[sim.HostID]float64)
	r.lastAged = world.Clock.Seconds()
	r.rng = world.RNG.Sub("prophet." + host.ID.String())
	switch r.Queue {
	case MOFO:
		r.Victim = r.mofoVictim
	case MOPR:
		r.Victim = r.moprVictim
	case SHLI:
		r.Victim = r.shliVictim
	case LEPR:
		r.Victim = r.leprVictim
	default:
		r.Victim = FIFOVictim
	}
}

// Predictability returns the current delivery predictability to dest,
// applying lazy aging first.
func (r *Prophet) Predictability(dest sim.HostID) float64 {
	r.ensureAged()
	return r.pred[dest]
}

// PreP returns the preP snapshot recorded for dest — this host's own
// predictability at the moment it last received a message bound for
// dest — and whether a snapshot has been recorded yet. Only populated
// when PREPVariant is set.
func (r *Prophet) PreP(dest sim.HostID) (float64, bool) {
	v, ok := r.prePSnap[dest]
	return v, ok
}

// AllPredictabilities returns a copy of the full predictability map,
// aged to the current time.
func (r *Prophet) AllPredictabilities() map[sim.HostID]float64 {
	r.ensureAged()
	out := make(map[sim.HostID]float64, len(r.pred))
	for k, v := range r.pred {
		out[k] = v
	}
	return out
}

// ensureAged applies exponential decay proportional to the simulated
// time elapsed since the last aging pass, in units of
// SecondsInUnit (possibly fractional: gamma^(elapsed/secondsInUnit)).
// Aging is lazy — it only runs when something actually needs the
// predictability map, not on a fixed per-tick hook — but because decay
// is computed from elapsed wall time rather than a counted number of
// ticks, any number of intermediate calls yields the same result as a
// single call spanning the same elapsed time (gamma^a * gamma^b ==
// gamma^(a+b)).
func (r *Prophet) ensureAged() {
	now := r.World().Clock.Seconds()
	elapsed := now - r.lastAged
	if elapsed <= 0 || r.SecondsInUnit <= 0 {
		return
	}
	factor := math.Pow(r.Gamma, elapsed/r.SecondsInUnit)
	for dest := range r.pred {
		r.pred[dest] *= factor
	}
	r.lastAged = now
}

func (r *Prophet) directUpdate(peer sim.HostID) {
	r.ensureAged()
	p := r.pred[peer]
	r.pred[peer] = p + (1-p)*r.PInit
}

func (r *Prophet) transitiveUpdate(peer sim.HostID, peerPred map[sim.HostID]float64) {
	r.ensureAged()
	pAB := r.pred[peer]
	for dest, pBD := range peerPred {
		if dest == r.HostID() {
			continue
		}
		pAD := r.pred[dest]
		r.pred[dest] = pAD + (1-pAD)*pAB*pBD*r.Beta
	}
}

func (r *Prophet) ChangedConnection(conn *sim.Connection, up bool) {
	if !up {
		return
	}
	peer, ok := r.PeerOf(conn)
	if !ok {
		return
	}
	r.directUpdate(peer.ID)
	if view, ok := peerProphetView(peer); ok {
		r.transitiveUpdate(peer.ID, view.AllPredictabilities())
	}
}

func peerProphetView(peer *sim.Host) (ProphetPeerView, bool) {
	view, ok := peer.Router.(ProphetPeerView)
	return view, ok
}

func (r *Prophet) shouldForward(dest, peerID sim.HostID, peerView ProphetPeerView, candidates []*sim.Host) bool {
	if r.RandomVariant || r.Forward == COIN {
		return r.rng.Intn(2) == 0
	}
	selfP := r.Predictability(dest)
	var peerP float64
	if peerView != nil {
		peerP = peerView.Predictability(dest)
	}
	var ok bool
	switch r.Forward {
	case GRTRMax:
		best := peerP
		bestIsThisPeer := true
		for _, other := range candidates {
			if other.ID == peerID {
				continue
			}
			if v, ok := peerProphetView(other); ok {
				if op := v.Predictability(dest); op > best {
					best = op
					bestIsThisPeer = false
				}
			}
		}
		ok = bestIsThisPeer && peerP > selfP
	default: // GRTR, GRTRSort
		ok = peerP > selfP
	}
	if ok && r.PREPVariant {
		if snap, have := r.prePSnap[dest]; have {
			ok = peerP >= snap
		}
	}
	return ok
}

func (r *Prophet) Update() {
	r.ensureAged()
	r.ExchangeDeliverableMessages()

	peers := make([]*sim.Host, 0)
	conns := r.OpenConnections()
	for _, c := range conns {
		if peer, ok := r.PeerOf(c); ok {
			peers = append(peers, peer)
		}
	}

	for _, c := range conns {
		if c.IsTransferring() {
			continue
		}
		peer, ok := r.PeerOf(c)
		if !ok {
			continue
		}
		peerView, _ := peerProphetView(peer)

		msgs := make([]*sim.Message, 0, r.Host().Buffer.Count())
		for _, m := range r.Host().Buffer.Messages() {
			if m.To == peer.ID || peer.Buffer.Has(m.ID) || peer.HasDelivered(m.ID) {
				continue
			}
			msgs = append(msgs, m)
		}
		if r.Forward == GRTRSort {
			sort.SliceStable(msgs, func(i, j int) bool {
				return r.advantage(msgs[i].To, peerView) > r.advantage(msgs[j].To, peerView)
			})
		}

		for _, m := range msgs {
			if !r.shouldForward(m.To, peer.ID, peerView, peers) {
				continue
			}
			if res := r.World().Transfer(c, m, r.Host(), peer); res.OK() {
				break
			}
		}
	}
}

func (r *Prophet) advantage(dest sim.HostID, peerView ProphetPeerView) float64 {
	var peerP float64
	if peerView != nil {
		peerP = peerView.Predictability(dest)
	}
	return peerP - r.Predictability(dest)
}

func (r *Prophet) StartTransfer(m *sim.Message, from sim.HostID) sim.ResultCode {
	return r.DefaultStartTransfer(m)
}

func (r *Prophet) ReceiveMessage(m *sim.Message, from sim.HostID) sim.ResultCode {
	res := r.StoreIncoming(m)
	if res.OK() && r.PREPVariant {
		r.prePSnap[m.To] = r.Predictability(m.To)
	}
	return res
}

func (r *Prophet) TransferDone(m *sim.Message, peer sim.HostID) {
	r.RecordForward(m.ID)
	var peerP float64
	if peerHost, ok := r.World().Host(peer); ok {
		if view, ok := peerHost.Router.(ProphetPeerView); ok {
			peerP = view.Predictability(m.To)
		}
	}
	cur, _ := m.Prop(ProphetMoprProp)
	sum, _ := cur.(float64)
	m.SetProp(ProphetMoprProp, sum+peerP)
}

func (r *Prophet) mofoVictim(msgs []*sim.Message, b *Base) []*sim.Message {
	out := append([]*sim.Message(nil), msgs...)
	sort.SliceStable(out, func(i, j int) bool {
		return r.ForwardCount[out[i].ID] > r.ForwardCount[out[j].ID]
	})
	return out
}

func (r *Prophet) moprVictim(msgs []*sim.Message, b *Base) []*sim.Message {
	out := append([]*sim.Message(nil), msgs...)
	moprOf := func(m *sim.Message) float64 {
		v, _ := m.Prop(ProphetMoprProp)
		f, _ := v.(float64)
		return f
	}
	sort.SliceStable(out, func(i, j int) bool {
		return moprOf(out[i]) > moprOf(out[j])
	})
	return out
}

func (r *Prophet) shliVictim(msgs []*sim.Message, b *Base) []*sim.Message {
	out := append([]*sim.Message(nil), msgs...)
	now := r.World().Clock.Seconds()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RemainingTTL(now) < out[j].RemainingTTL(now)
	})
	return out
}

func (r *Prophet) leprVictim(msgs []*sim.Message, b *Base) []*sim.Message {
	out := append([]*sim.Message(nil), msgs...)
	sort.SliceStable(out, func(i, j int) bool {
		return r.Predictability(out[i].To) < r.Predictability(out[j].To)
	})
	return out
}
