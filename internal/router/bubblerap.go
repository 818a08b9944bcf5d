package router

import (
	"github.com/AgentDudu/the-one/internal/centrality"
	"github.com/AgentDudu/the-one/internal/community"
	"github.com/AgentDudu/the-one/internal/history"
	"github.com/AgentDudu/the-one/internal/sim"
)

// BubbleRapPeerView exposes the read-only slice of a peer's Bubble Rap
// state another Bubble Rap router needs to decide whether to forward
// through it: its local community membership and both centrality
// measures.
type BubbleRapPeerView interface {
	InCommunity(host sim.HostID) bool
	GlobalCentrality() float64
	LocalCentralityFor(community map[sim.HostID]bool) float64
}

// BubbleRap implements the Bubble Rap forwarding algorithm: messages
// bubble up through increasingly central nodes until they reach a
// member of the destination's local community, then bubble up within
// that community until they reach the destination directly.
type BubbleRap struct {
	Base

	Detector   community.Detector
	Centrality *centrality.Calculator
	History    *history.Manager
}

// NewBubbleRap creates a Bubble Rap router from an already-configured
// community detector and centrality calculator (K-Clique or Simple;
// S-Window or C-Window, per the caller's choice).
func NewBubbleRap(detector community.Detector, cent *centrality.Calculator) *BubbleRap {
	return &BubbleRap{Detector: detector, Centrality: cent, History: history.NewManager()}
}

func (r *BubbleRap) Init(host *sim.Host, world *sim.World) {
	r.Base.Init(host, world)
}

func (r *BubbleRap) ChangedConnection(conn *sim.Connection, up bool) {
	peer, ok := r.PeerOf(conn)
	if !ok {
		return
	}
	now := r.World().Clock.Seconds()
	if up {
		r.History.Open(peer.ID, now)
		r.checkFamiliarity(peer)
		return
	}
	r.History.Close(peer.ID, now)
	r.checkFamiliarity(peer)
}

// checkFamiliarity re-runs the community detector's familiarity/
// admission check against peer using the cumulative contact time to
// date, including any still-open contact. Called on every connectivity
// transition and every tick a contact stays open, so two hosts that
// never disconnect still cross FamiliarThreshold once their running
// contact time warrants it, instead of only at Close.
func (r *BubbleRap) checkFamiliarity(peer *sim.Host) {
	now := r.World().Clock.Seconds()
	var peerFamiliar map[sim.HostID]bool
	if view, ok := peer.Router.(*BubbleRap); ok {
		peerFamiliar = view.Detector.Familiar()
	}
	r.Detector.OnContact(peer.ID, r.History.CumulativeContactTime(peer.ID, now, true), peerFamiliar)
}

func (r *BubbleRap) InCommunity(host sim.HostID) bool {
	return r.Detector.LocalCommunity()[host]
}

func (r *BubbleRap) GlobalCentrality() float64 {
	return r.Centrality.GlobalCentrality(r.World().Clock.Seconds(), r.History)
}

func (r *BubbleRap) LocalCentralityFor(community map[sim.HostID]bool) float64 {
	return r.Centrality.LocalCentrality(r.World().Clock.Seconds(), r.History, community)
}

func (r *BubbleRap) localCentrality() float64 {
	return r.Centrality.LocalCentrality(r.World().Clock.Seconds(), r.History, r.Detector.LocalCommunity())
}

// shouldForward implements the Bubble Rap bubbling rule: within the
// destination's local community, forward to any peer with higher local
// centrality in that community; outside it, forward to any peer whose
// local community contains the destination, or otherwise to any peer
// with higher global centrality.
func (r *BubbleRap) shouldForward(dest sim.HostID, peer *sim.Host) bool {
	selfComm := r.Detector.LocalCommunity()
	view, isBubbleRap := peer.Router.(BubbleRapPeerView)

	if selfComm[dest] {
		if !isBubbleRap {
			return false
		}
		if !view.InCommunity(dest) {
			return false
		}
		return view.LocalCentralityFor(selfComm) > r.localCentrality()
	}

	if isBubbleRap && view.InCommunity(dest) {
		return true
	}
	if !isBubbleRap {
		return false
	}
	return view.GlobalCentrality() > r.GlobalCentrality()
}

func (r *BubbleRap) Update() {
	for _, c := range r.OpenConnections() {
		if peer, ok := r.PeerOf(c); ok {
			r.checkFamiliarity(peer)
		}
	}

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

func (r *BubbleRap) StartTransfer(m *sim.Message, from sim.HostID) sim.ResultCode {
	return r.DefaultStartTransfer(m)
}

func (r *BubbleRap) ReceiveMessage(m *sim.Message, from sim.HostID) sim.ResultCode {
	return r.StoreIncoming(m)
}

func (r *BubbleRap) TransferDone(m *sim.Message, peer sim.HostID) {
	r.RecordForward(m.ID)
}
