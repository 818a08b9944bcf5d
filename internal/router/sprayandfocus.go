package router

import "github.com/AgentDudu/the-one/internal/sim"

// SprayAndFocusCopiesProp is the property key holding a message's
// remaining spray-phase copy count, reusing Spray-and-Wait's binary
// split mechanics.
const SprayAndFocusCopiesProp = "SprayAndFocus.copies"

// SprayAndFocusPeerView exposes a peer's last-encounter timestamps,
// the focus-phase forwarding signal.
type SprayAndFocusPeerView interface {
	LastEncounter(host sim.HostID) float64
	AllLastEncounters() map[sim.HostID]float64
}

// SprayAndFocus sprays copies exactly like binary Spray-and-Wait until
// a holder is down to its last copy, then switches to the focus phase:
// a single-copy message is handed to any peer that encountered the
// destination more recently than the current holder has.
type SprayAndFocus struct {
	Base

	NrofCopies int

	lastEncounter map[sim.HostID]float64
}

// NewSprayAndFocus creates a Spray-and-Focus router with the given
// initial copy count.
func NewSprayAndFocus(nrofCopies int) *SprayAndFocus {
	if nrofCopies < 1 {
		nrofCopies = 1
	}
	return &SprayAndFocus{NrofCopies: nrofCopies, lastEncounter: make(map[sim.HostID]float64)}
}

func (r *SprayAndFocus) Init(host *sim.Host, world *sim.World) {
	r.Base.Init(host, world)
}

// LastEncounter returns the simulated time this host last had a
// contact with host, or 0 if never.
func (r *SprayAndFocus) LastEncounter(host sim.HostID) float64 {
	return r.lastEncounter[host]
}

// AllLastEncounters returns this host's full last-encounter table, for
// a meeting peer to gossip-merge against its own.
func (r *SprayAndFocus) AllLastEncounters() map[sim.HostID]float64 {
	return r.lastEncounter
}

func (r *SprayAndFocus) ChangedConnection(conn *sim.Connection, up bool) {
	if !up {
		return
	}
	peer, ok := r.PeerOf(conn)
	if !ok {
		return
	}
	now := r.World().Clock.Seconds()
	r.lastEncounter[peer.ID] = now
	if view, ok := peer.Router.(SprayAndFocusPeerView); ok {
		for host, t := range view.AllLastEncounters() {
			if host == r.HostID() {
				continue
			}
			if t > r.lastEncounter[host] {
				r.lastEncounter[host] = t
			}
		}
	}
}

func (r *SprayAndFocus) CreateNewMessage(m *sim.Message) sim.ResultCode {
	m.SetProp(SprayAndFocusCopiesProp, r.NrofCopies)
	return r.Base.CreateNewMessage(m)
}

func sprayAndFocusCopies(m *sim.Message) int {
	v, ok := m.Prop(SprayAndFocusCopiesProp)
	if !ok {
		return 1
	}
	c, _ := v.(int)
	if c < 1 {
		return 1
	}
	return c
}

func (r *SprayAndFocus) Update() {
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
			l := sprayAndFocusCopies(m)
			var started sim.ResultCode
			if l > 1 {
				forward := l / 2
				retain := l - forward
				if forward < 1 {
					forward = 1
				}
				if retain < 1 {
					retain = 1
				}
				tx := m.Clone()
				tx.SetProp(SprayAndFocusCopiesProp, forward)
				started = r.World().Transfer(c, tx, r.Host(), peer)
			} else {
				view, ok := peer.Router.(SprayAndFocusPeerView)
				if !ok || view.LastEncounter(m.To) <= r.LastEncounter(m.To) {
					continue
				}
				started = r.World().Transfer(c, m, r.Host(), peer)
			}
			if started.OK() {
				break
			}
		}
	}
}

func (r *SprayAndFocus) StartTransfer(m *sim.Message, from sim.HostID) sim.ResultCode {
	return r.DefaultStartTransfer(m)
}

func (r *SprayAndFocus) ReceiveMessage(m *sim.Message, from sim.HostID) sim.ResultCode {
	return r.StoreIncoming(m)
}

func (r *SprayAndFocus) TransferDone(m *sim.Message, peer sim.HostID) {
	r.RecordForward(m.ID)
	orig, ok := r.Host().Buffer.Get(m.ID)
	if !ok {
		return
	}
	l := sprayAndFocusCopies(orig)
	if l <= 1 {
		// Focus phase: the single copy has just moved to a peer with a
		// more recent encounter of the destination, so this holder's
		// local copy is spent.
		r.Host().Buffer.Remove(m.ID)
		return
	}
	retain := l - l/2
	if retain < 1 {
		retain = 1
	}
	orig.SetProp(SprayAndFocusCopiesProp, retain)
}
