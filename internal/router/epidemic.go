package router

import "github.com/AgentDudu/the-one/internal/sim"

// Epidemic forwards any buffered message to any peer that lacks it,
// subject to buffer space and TTL.
type Epidemic struct {
	Base
}

// NewEpidemic creates an Epidemic router.
func NewEpidemic() *Epidemic {
	return &Epidemic{}
}

func (r *Epidemic) Init(host *sim.Host, world *sim.World) {
	r.Base.Init(host, world)
}

func (r *Epidemic) ChangedConnection(conn *sim.Connection, up bool) {}

func (r *Epidemic) Update() {
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
				continue // already offered by ExchangeDeliverableMessages
			}
			if peer.Buffer.Has(m.ID) || peer.HasDelivered(m.ID) {
				continue
			}
			if res := r.World().Transfer(c, m, r.Host(), peer); res.OK() {
				break
			}
		}
	}
}

func (r *Epidemic) StartTransfer(m *sim.Message, from sim.HostID) sim.ResultCode {
	return r.DefaultStartTransfer(m)
}

func (r *Epidemic) ReceiveMessage(m *sim.Message, from sim.HostID) sim.ResultCode {
	return r.StoreIncoming(m)
}

func (r *Epidemic) TransferDone(m *sim.Message, peer sim.HostID) {
	r.RecordForward(m.ID)
}
