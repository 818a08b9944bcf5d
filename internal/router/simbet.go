package router

import "github.com/AgentDudu/the-one/internal/sim"

// SimBetBetaAging is the exponential aging factor applied to
// betweenness each time it is recomputed.
const SimBetBetaAging = 0.3

// SimBetAlpha weights similarity against betweenness in the combined
// forwarding utility.
const SimBetAlpha = 0.7

// SimBetPeerView exposes a peer's ego contact set and aged betweenness,
// the two ingredients of the forwarding utility.
type SimBetPeerView interface {
	ContactSet() map[sim.HostID]bool
	Betweenness() float64
}

// SimBet tracks the set of hosts ever directly contacted (the ego
// network) and an aged local betweenness approximation over that set,
// and forwards a message toward whichever of self/peer has the higher
// combined similarity-to-destination and betweenness utility.
type SimBet struct {
	Base

	contacts    map[sim.HostID]bool
	betweenness float64
}

// NewSimBet creates a SimBet router.
func NewSimBet() *SimBet {
	return &SimBet{contacts: make(map[sim.HostID]bool)}
}

func (r *SimBet) Init(host *sim.Host, world *sim.World) {
	r.Base.Init(host, world)
	r.contacts[host.ID] = true
}

// ContactSet returns the set of hosts ever directly met, including
// self.
func (r *SimBet) ContactSet() map[sim.HostID]bool { return r.contacts }

// Betweenness returns the current aged betweenness estimate.
func (r *SimBet) Betweenness() float64 { return r.betweenness }

func (r *SimBet) ChangedConnection(conn *sim.Connection, up bool) {
	if !up {
		return
	}
	peer, ok := r.PeerOf(conn)
	if !ok {
		return
	}
	r.contacts[peer.ID] = true
	r.recomputeBetweenness()
}

// recomputeBetweenness counts, among every pair of this host's known
// contacts, how many pairs are NOT themselves directly connected (this
// host "bridges" them), as a proxy for ego betweenness, then blends it
// into the aged running estimate.
func (r *SimBet) recomputeBetweenness() {
	contacts := make([]sim.HostID, 0, len(r.contacts))
	for h := range r.contacts {
		if h == r.HostID() {
			continue
		}
		contacts = append(contacts, h)
	}
	bridged := 0.0
	for i := 0; i < len(contacts); i++ {
		aHost, ok := r.World().Host(contacts[i])
		if !ok {
			continue
		}
		aView, ok := aHost.Router.(SimBetPeerView)
		if !ok {
			continue
		}
		aSet := aView.ContactSet()
		for j := i + 1; j < len(contacts); j++ {
			if !aSet[contacts[j]] {
				bridged++
			}
		}
	}
	r.betweenness = r.betweenness*(1-SimBetBetaAging) + bridged*SimBetBetaAging
}

func jaccard(a, b map[sim.HostID]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter, union := 0, 0
	seen := make(map[sim.HostID]bool, len(a)+len(b))
	for h := range a {
		seen[h] = true
		if b[h] {
			inter++
		}
	}
	for h := range b {
		seen[h] = true
	}
	union = len(seen)
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// destinationContactSet looks up the destination's own SimBet contact
// set, if the destination host runs SimBet (a simulator-global lookup
// standing in for the social-similarity side-channel SimBet's utility
// function requires).
func (r *SimBet) destinationContactSet(dest sim.HostID) (map[sim.HostID]bool, bool) {
	h, ok := r.World().Host(dest)
	if !ok {
		return nil, false
	}
	view, ok := h.Router.(SimBetPeerView)
	if !ok {
		return nil, false
	}
	return view.ContactSet(), true
}

func (r *SimBet) utility(dest sim.HostID, contacts map[sim.HostID]bool, betweenness float64) float64 {
	destSet, ok := r.destinationContactSet(dest)
	similarity := 0.0
	if ok {
		similarity = jaccard(contacts, destSet)
	}
	return SimBetAlpha*similarity + (1-SimBetAlpha)*betweenness
}

func (r *SimBet) shouldForward(dest sim.HostID, peer *sim.Host) bool {
	view, ok := peer.Router.(SimBetPeerView)
	if !ok {
		return false
	}
	selfUtil := r.utility(dest, r.contacts, r.betweenness)
	peerUtil := r.utility(dest, view.ContactSet(), view.Betweenness())
	return peerUtil > selfUtil
}

func (r *SimBet) Update() {
	r.ExchangeDeliverableMessages()

	for _, c := range r.OpenConnections() {
		if c.IsTransferring() {
			continue
		}
		peer, ok := r.PeerOf(c)
		if !ok {
			continue
		}
		for _, m := range r.Host().Buffer.Messages() {
			if m.To == peer.ID || peer.Buffer.Has(m.ID) || peer.HasDelivered(m.ID) {
				continue
			}
			if !r.shouldForward(m.To, peer) {
				continue
			}
			if res := r.World().Transfer(c, m, r.Host(), peer); res.OK() {
				break
			}
		}
	}
}

func (r *SimBet) StartTransfer(m *sim.Message, from sim.HostID) sim.ResultCode {
	return r.DefaultStartTransfer(m)
}

func (r *SimBet) ReceiveMessage(m *sim.Message, from sim.HostID) sim.ResultCode {
	return r.StoreIncoming(m)
}

func (r *SimBet) TransferDone(m *sim.Message, peer sim.HostID) {
	r.RecordForward(m.ID)
}
