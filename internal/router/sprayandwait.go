package router

import "github.com/AgentDudu/the-one/internal/sim"

// SprayAndWaitCopiesProp is the strategy-qualified property key
// holding a message's remaining copy count.
const SprayAndWaitCopiesProp = "SprayAndWait.copies"

// SprayAndWait implements binary or standard Spray-and-Wait. Each new
// message starts with NrofCopies copies; forwarding to
// a non-destination peer splits the count, and a holder with a single
// remaining copy may only hand it directly to the destination.
type SprayAndWait struct {
	Base

	// NrofCopies is L, the initial copy count for messages originated
	// at this host (SprayAndWaitRouter.nrofCopies).
	NrofCopies int

	// Binary selects binary mode (⌊L/2⌋ sent, ⌈L/2⌉ retained) over
	// standard mode (1 sent, L−1 retained).
	Binary bool
}

// NewSprayAndWait creates a Spray-and-Wait router with the given
// initial copy count and mode.
func NewSprayAndWait(nrofCopies int, binary bool) *SprayAndWait {
	if nrofCopies < 1 {
		nrofCopies = 1
	}
	return &SprayAndWait{NrofCopies: nrofCopies, Binary: binary}
}

func (r *SprayAndWait) Init(host *sim.Host, world *sim.World) {
	r.Base.Init(host, world)
}

func (r *SprayAndWait) ChangedConnection(conn *sim.Connection, up bool) {}

// CreateNewMessage assigns the initial copy count before storing the
// message in its originator's own buffer.
func (r *SprayAndWait) CreateNewMessage(m *sim.Message) sim.ResultCode {
	m.SetProp(SprayAndWaitCopiesProp, r.NrofCopies)
	return r.Base.CreateNewMessage(m)
}

func sprayAndWaitCopies(m *sim.Message) int {
	v, ok := m.Prop(SprayAndWaitCopiesProp)
	if !ok {
		return 1
	}
	c, _ := v.(int)
	if c < 1 {
		return 1
	}
	return c
}

// split computes how many copies travel with the forwarded message and
// how many the current holder retains.
func (r *SprayAndWait) split(l int) (forward, retain int) {
	if r.Binary {
		forward = l / 2
		retain = l - forward
	} else {
		forward = 1
		retain = l - 1
	}
	if forward < 1 {
		forward = 1
	}
	if retain < 1 {
		retain = 1
	}
	return forward, retain
}

func (r *SprayAndWait) Update() {
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
			if m.To == peer.ID {
				continue
			}
			if peer.Buffer.Has(m.ID) || peer.HasDelivered(m.ID) {
				continue
			}
			l := sprayAndWaitCopies(m)
			if l <= 1 {
				continue // single copy left: only a direct hand-off to the destination is allowed
			}
			forward, _ := r.split(l)
			// A fresh clone carries the forwarded copy count so the
			// original stays untouched until TransferDone confirms
			// the forward actually completed: an aborted transfer
			// must not cost the sender a copy.
			tx := m.Clone()
			tx.SetProp(SprayAndWaitCopiesProp, forward)
			if res := r.World().Transfer(c, tx, r.Host(), peer); res.OK() {
				break
			}
		}
	}
}

func (r *SprayAndWait) StartTransfer(m *sim.Message, from sim.HostID) sim.ResultCode {
	return r.DefaultStartTransfer(m)
}

func (r *SprayAndWait) ReceiveMessage(m *sim.Message, from sim.HostID) sim.ResultCode {
	return r.StoreIncoming(m)
}

func (r *SprayAndWait) TransferDone(m *sim.Message, peer sim.HostID) {
	r.RecordForward(m.ID)
	orig, ok := r.Host().Buffer.Get(m.ID)
	if !ok {
		return // delivered directly, or already evicted
	}
	l := sprayAndWaitCopies(orig)
	if l <= 1 {
		return
	}
	_, retain := r.split(l)
	orig.SetProp(SprayAndWaitCopiesProp, retain)
}
