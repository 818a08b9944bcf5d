// Package router implements the routing strategies: a shared Base
// providing the buffer/FIFO/eviction/delivery mechanics common to
// every strategy, plus one file per concrete strategy. Strategies
// embed *Base and reuse its helpers rather than inheriting a template
// method, avoiding deep hierarchies.
package router

import (
	"sort"

	"github.com/AgentDudu/the-one/internal/sim"
)

// VictimPicker orders a snapshot of buffered messages so the first
// entry is the preferred drop victim. Strategies that override the
// default FIFO policy (PRoPHET's MOFO/MOPR/SHLI/LEPR) supply their
// own.
type VictimPicker func(msgs []*sim.Message, b *Base) []*sim.Message

// Base holds the state and mechanics every routing strategy shares:
// the owning host/world, per-message forward counts, and buffer
// eviction/delivery helpers.
type Base struct {
	host  *sim.Host
	world *sim.World

	// ForwardCount is the number of times each message ID has been
	// forwarded from this host, used by MOFO and available to any
	// strategy.
	ForwardCount map[string]int

	// Victim orders drop candidates; defaults to oldest-ReceiveTime-
	// first (FIFO).
	Victim VictimPicker
}

// Init binds the base to its host and world. Concrete strategies call
// this from their own Init.
func (b *Base) Init(host *sim.Host, world *sim.World) {
	b.host = host
	b.world = world
	b.ForwardCount = make(map[string]int)
	if b.Victim == nil {
		b.Victim = FIFOVictim
	}
}

// Host returns the bound host.
func (b *Base) Host() *sim.Host { return b.host }

// World returns the bound world.
func (b *Base) World() *sim.World { return b.world }

// HostID returns the bound host's ID.
func (b *Base) HostID() sim.HostID { return b.host.ID }

// FIFOVictim sorts messages oldest-ReceiveTime-first, the default
// queueing policy used as the base policy for every non-PRoPHET
// strategy too.
func FIFOVictim(msgs []*sim.Message, b *Base) []*sim.Message {
	out := make([]*sim.Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReceiveTime < out[j].ReceiveTime
	})
	return out
}

// sendingIDs returns the set of message IDs currently being
// transferred out of this host on any open connection. A host sends
// only messages it holds and never holds one it is receiving, so
// buffer membership identifies the sending side.
func (b *Base) sendingIDs() map[string]bool {
	out := make(map[string]bool)
	for _, c := range b.world.ConnectionsOf(b.host) {
		m, ok := c.InFlight()
		if !ok {
			continue
		}
		if b.host.Buffer.Has(m.ID) {
			out[m.ID] = true
		}
	}
	return out
}

// NextMessageToRemove picks a drop victim from the buffer ordered by
// b.Victim. With excludeSending true it skips messages currently being
// sent and reports false if every candidate is being sent; with
// excludeSending false it returns the first candidate even if it is
// mid-transfer, which MakeRoom falls back to only as a last resort.
func (b *Base) NextMessageToRemove(excludeSending bool) (*sim.Message, bool) {
	candidates := b.Victim(b.host.Buffer.Messages(), b)
	if len(candidates) == 0 {
		return nil, false
	}
	if !excludeSending {
		return candidates[0], true
	}
	sending := b.sendingIDs()
	for _, m := range candidates {
		if !sending[m.ID] {
			return m, true
		}
	}
	return nil, false
}

// MakeRoom evicts victims (via the router's NextMessageToRemove, so
// strategy-specific ordering applies) until need bytes are free or no
// victim remains. Returns false if it could not make enough room.
func (b *Base) MakeRoom(need int64, picker func(excludeSending bool) (*sim.Message, bool)) bool {
	if b.host.Buffer.Free() >= need {
		return true
	}
	for b.host.Buffer.Free() < need {
		victim, ok := picker(true)
		if !ok {
			victim, ok = picker(false)
			if !ok {
				return false
			}
		}
		b.host.Buffer.Remove(victim.ID)
		b.world.NotifyDropped(victim, b.host.ID, b.host.HasDelivered(victim.ID))
	}
	return true
}

// AdmitDuplicateOrDelivered reports the terminal ResultCode if m must
// be rejected outright: already delivered to its destination, or
// already present in this host's buffer. Every strategy's
// StartTransfer/ReceiveMessage should check this first.
func (b *Base) AdmitDuplicateOrDelivered(m *sim.Message) (sim.ResultCode, bool) {
	if m.To == b.host.ID && b.host.HasDelivered(m.ID) {
		return sim.DeniedOld, true
	}
	if b.host.Buffer.Has(m.ID) {
		return sim.DeniedOld, true
	}
	return sim.RcvOK, false
}

// DefaultStartTransfer performs the generic receiver-side admission
// check shared by every strategy that has no predictability- or
// copy-based policy gate of its own: reject duplicates/already-
// delivered messages and expired TTLs, and make room via the
// router's own victim policy.
func (b *Base) DefaultStartTransfer(m *sim.Message) sim.ResultCode {
	if res, deny := b.AdmitDuplicateOrDelivered(m); deny {
		return res
	}
	if m.Expired(b.world.Clock.Seconds()) {
		return sim.DeniedTTLExpired
	}
	if !b.host.Buffer.FitsWithoutEviction(m.Size) {
		if !b.MakeRoom(m.Size, b.NextMessageToRemove) {
			return sim.DeniedNoSpace
		}
	}
	return sim.RcvOK
}

// StoreIncoming admits m into the buffer, making room via
// NextMessageToRemove if needed. If m's destination is this host, it
// is delivered instead of stored, idempotently.
func (b *Base) StoreIncoming(m *sim.Message) sim.ResultCode {
	if m.Expired(b.world.Clock.Seconds()) {
		return sim.DeniedTTLExpired
	}
	if res, deny := b.AdmitDuplicateOrDelivered(m); deny {
		return res
	}
	if m.To == b.host.ID {
		b.host.MarkDelivered(m.ID)
		return sim.RcvOK
	}
	stored := m.Clone()
	stored.ReceiveTime = b.world.Clock.Seconds()
	stored.AppendHop(b.host.ID)
	if !b.host.Buffer.FitsWithoutEviction(stored.Size) {
		if !b.MakeRoom(stored.Size, b.NextMessageToRemove) {
			return sim.DeniedNoSpace
		}
	}
	b.host.Buffer.Add(stored)
	return sim.RcvOK
}

// CreateNewMessage is the default message-origination behavior: assign
// the message to this host's own buffer, making room if necessary.
func (b *Base) CreateNewMessage(m *sim.Message) sim.ResultCode {
	if !b.host.Buffer.FitsWithoutEviction(m.Size) {
		if !b.MakeRoom(m.Size, b.NextMessageToRemove) {
			return sim.DeniedNoSpace
		}
	}
	b.host.Buffer.Add(m)
	return sim.RcvOK
}

// ExchangeDeliverableMessages implements the base-strategy priority
// rule: among open connections, first offer any buffered message whose
// destination is directly reachable. Returns true if any transfer was
// started.
func (b *Base) ExchangeDeliverableMessages() bool {
	started := false
	for _, c := range b.world.ConnectionsOf(b.host) {
		if c.IsTransferring() {
			continue
		}
		peerIface := c.Other(b.host.ID)
		peer, ok := b.world.Host(peerIface.Host)
		if !ok {
			continue
		}
		for _, m := range b.host.Buffer.Messages() {
			if m.To != peer.ID {
				continue
			}
			if res := b.world.Transfer(c, m, b.host, peer); res.OK() {
				started = true
				break
			}
		}
	}
	return started
}

// OpenConnections returns every connection currently up on this host.
func (b *Base) OpenConnections() []*sim.Connection {
	return b.world.ConnectionsOf(b.host)
}

// PeerOf returns the peer host at the far end of conn from this
// router's host.
func (b *Base) PeerOf(conn *sim.Connection) (*sim.Host, bool) {
	peerIface := conn.Other(b.host.ID)
	return b.world.Host(peerIface.Host)
}

// PeerRouter returns the concrete router instance of the peer at the
// far end of conn, for the peer-view inspection pattern used by
// PRoPHET/Bubble Rap/PeopleRank/SimBet.
func (b *Base) PeerRouter(conn *sim.Connection) (sim.Router, bool) {
	peer, ok := b.PeerOf(conn)
	if !ok {
		return nil, false
	}
	return peer.Router, true
}

// RecordForward increments the forward count used by MOFO/MOPR.
func (b *Base) RecordForward(id string) {
	b.ForwardCount[id]++
}
