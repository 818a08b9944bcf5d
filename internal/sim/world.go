package sim

import (
	"math/rand"

	"github.com/AgentDudu/the-one/internal/simclock"
)

// EventSource is the shared contract for the two event producers: the
// periodic message generator and the external contact-event replay.
// World drains every source once per tick, after routing and transfer
// advancement.
type EventSource interface {
	// FireDue applies every scheduled event whose time is ≤ now to the
	// world, in chronological order.
	FireDue(world *World, now float64)
}

// World owns every Host and drives the per-tick simulation loop:
// mobility, connectivity detection, routing, transfer advancement,
// event-source draining, and TTL expiry, in that order.
type World struct {
	Clock *simclock.Clock

	hosts     map[HostID]*Host
	hostOrder []HostID

	interfaces  map[InterfaceID]*Interface
	connections map[ConnectionID]*Connection

	grid *Grid

	connListeners []ConnectionListener
	msgListeners  []MessageListener

	eventSources []EventSource

	RNG *RNGFactory

	// RandomizeUpdateOrder toggles per-tick shuffling of host update
	// order.
	RandomizeUpdateOrder bool
	orderRNG             *rand.Rand
}

// NewWorld creates an empty World with the given tick step, RNG seed,
// and spatial-grid cell size (callers compute this as cellSizeMult ×
// the scenario's max transmit range).
func NewWorld(updateInterval float64, seed int64, gridCellSize float64) *World {
	f := NewRNGFactory(seed)
	return &World{
		Clock:       simclock.New(updateInterval),
		hosts:       make(map[HostID]*Host),
		interfaces:  make(map[InterfaceID]*Interface),
		connections: make(map[ConnectionID]*Connection),
		grid:        NewGrid(gridCellSize),
		RNG:         f,
		orderRNG:    f.Sub("world.order"),
	}
}

// AddHost registers a host, binds its router, and indexes its
// interfaces.
func (w *World) AddHost(h *Host) {
	w.hosts[h.ID] = h
	w.hostOrder = append(w.hostOrder, h.ID)
	for _, iface := range h.Interfaces {
		w.interfaces[iface.ID] = iface
	}
	if h.Movement != nil {
		h.Location = h.Movement.InitialPosition()
	}
	h.Router.Init(h, w)
}

// Host looks up a host by ID.
func (w *World) Host(id HostID) (*Host, bool) {
	h, ok := w.hosts[id]
	return h, ok
}

// Hosts returns every host, in stable registration order.
func (w *World) Hosts() []*Host {
	out := make([]*Host, 0, len(w.hostOrder))
	for _, id := range w.hostOrder {
		out = append(out, w.hosts[id])
	}
	return out
}

// AddEventSource registers a periodic generator or external-event
// replay source to be drained every tick.
func (w *World) AddEventSource(s EventSource) {
	w.eventSources = append(w.eventSources, s)
}

// AddConnectionListener registers an observer for connect/disconnect
// events.
func (w *World) AddConnectionListener(l ConnectionListener) {
	w.connListeners = append(w.connListeners, l)
}

// AddMessageListener registers an observer for the message lifecycle.
func (w *World) AddMessageListener(l MessageListener) {
	w.msgListeners = append(w.msgListeners, l)
}

func (w *World) fireConnected(a, b HostID, c *Connection) {
	w.notifyRoutersChanged(a, b, c, true)
	for _, l := range w.connListeners {
		l.HostsConnected(a, b, c)
	}
}

func (w *World) fireDisconnected(a, b HostID, c *Connection) {
	w.notifyRoutersChanged(a, b, c, false)
	for _, l := range w.connListeners {
		l.HostsDisconnected(a, b, c)
	}
}

// notifyRoutersChanged calls ChangedConnection on both endpoints'
// routers, the mechanism strategies use to update per-peer state
// (PRoPHET's predictability, Bubble Rap's contact history, ...) on
// every up/down transition.
func (w *World) notifyRoutersChanged(a, b HostID, c *Connection, up bool) {
	if aHost, ok := w.hosts[a]; ok {
		aHost.Router.ChangedConnection(c, up)
	}
	if bHost, ok := w.hosts[b]; ok {
		bHost.Router.ChangedConnection(c, up)
	}
}

func (w *World) fireNewMessage(m *Message, at HostID) {
	for _, l := range w.msgListeners {
		l.NewMessage(m, at)
	}
}

func (w *World) fireTransferStarted(m *Message, from, to HostID) {
	for _, l := range w.msgListeners {
		l.TransferStarted(m, from, to)
	}
}

func (w *World) fireTransferAborted(m *Message, from, to HostID) {
	for _, l := range w.msgListeners {
		l.TransferAborted(m, from, to)
	}
}

func (w *World) fireRelayed(m *Message, from, to HostID) {
	for _, l := range w.msgListeners {
		l.MessageRelayed(m, from, to)
	}
}

func (w *World) fireDelivered(m *Message, to HostID, first bool) {
	for _, l := range w.msgListeners {
		l.MessageDelivered(m, to, first)
	}
}

func (w *World) fireDropped(m *Message, at HostID, wasDelivered bool) {
	for _, l := range w.msgListeners {
		l.MessageDropped(m, at, wasDelivered)
	}
}

// NotifyDropped lets a Router report a buffer-overflow eviction to
// World's message listeners; TTL-expiry drops are reported directly by
// World itself in expireAndDropTTL.
func (w *World) NotifyDropped(m *Message, at HostID, wasDelivered bool) {
	w.fireDropped(m, at, wasDelivered)
}

// NewMessage originates a message at its source host's router and
// notifies listeners. Returns the result code from the source
// router's own buffer admission (normally RcvOK; DeniedNoSpace if even
// the originating host cannot hold it).
func (w *World) NewMessage(m *Message) ResultCode {
	src, ok := w.hosts[m.From]
	if !ok {
		return DeniedUnreachable
	}
	res := src.Router.CreateNewMessage(m)
	if res.OK() {
		w.fireNewMessage(m, m.From)
	}
	return res
}

// Transfer is the sole entry point routers use to attempt sending a
// message across an open connection. It validates the attempt with
// the receiver's StartTransfer before moving the connection into
// StateUpTransferring.
func (w *World) Transfer(conn *Connection, m *Message, from, to *Host) ResultCode {
	if !conn.IsUp() {
		return DeniedUnreachable
	}
	if conn.State() != StateUpIdle {
		return TryLaterBusy
	}
	if m.Expired(w.Clock.Seconds()) {
		return DeniedTTLExpired
	}
	res := to.Router.StartTransfer(m, from.ID)
	if !res.OK() {
		return res
	}
	conn.BeginTransfer(m, from.ID, to.ID)
	w.fireTransferStarted(m, from.ID, to.ID)
	return RcvOK
}

// ConnectionsOf returns every connection currently open on the given
// host, across all of its interfaces.
func (w *World) ConnectionsOf(h *Host) []*Connection {
	var out []*Connection
	for _, iface := range h.Interfaces {
		out = append(out, iface.Connections()...)
	}
	return out
}

// ForceConnection brings the connection between two interfaces up or
// down directly, independent of spatial in-range detection. This is
// how an externally authored contact trace drives connectivity instead
// of host movement.
func (w *World) ForceConnection(a, b InterfaceID, up bool) {
	aIface, aOk := w.interfaces[a]
	bIface, bOk := w.interfaces[b]
	if !aOk || !bOk {
		return
	}
	cid := NewConnectionID(a, b)
	existing, isUp := w.connections[cid]
	switch {
	case up && !isUp:
		c := NewConnection(aIface, bIface)
		w.connections[cid] = c
		w.fireConnected(a.Host, b.Host, c)
	case !up && isUp:
		w.tearDownConnection(existing, a.Host, b.Host)
	}
}

// Tick advances the simulation by one updateInterval: mobility, then
// connectivity detection, then routing and transfer advancement, then
// event sources, then TTL expiry.
func (w *World) Tick() {
	w.Clock.Advance()
	now := w.Clock.Seconds()
	dt := w.Clock.UpdateInterval()

	w.updateMobility(dt, now)
	w.detectConnectivity()
	w.updateRoutersAndTransfers(dt, now)

	for _, s := range w.eventSources {
		s.FireDue(w, now)
	}

	w.expireAndDropTTL(now)
}

func (w *World) updateMobility(dt, now float64) {
	order := w.orderedHostIDs()
	for _, id := range order {
		h := w.hosts[id]
		if h.Movement == nil {
			continue
		}
		h.Location = h.Movement.NextPath(h.Location, now, dt)
	}
}

func (w *World) orderedHostIDs() []HostID {
	if !w.RandomizeUpdateOrder {
		return w.hostOrder
	}
	order := make([]HostID, len(w.hostOrder))
	copy(order, w.hostOrder)
	w.orderRNG.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	return order
}

// detectConnectivity creates connections for newly-in-range interface
// pairs and tears down connections for pairs that have left range,
// using the spatial grid so each host only scans nearby cells.
func (w *World) detectConnectivity() {
	w.grid.Rebuild(w.hosts)

	seenPairs := make(map[ConnectionID]bool)

	for _, a := range w.hosts {
		candidates := w.grid.CandidatesNear(a.Location)
		for _, bID := range candidates {
			if bID <= a.ID {
				continue // each unordered pair considered once
			}
			b, ok := w.hosts[bID]
			if !ok {
				continue
			}
			for _, aIface := range a.Interfaces {
				for _, bIface := range b.Interfaces {
					cid := NewConnectionID(aIface.ID, bIface.ID)
					seenPairs[cid] = true
					inRange := aIface.InRange(a.Location, b.Location) && bIface.InRange(b.Location, a.Location)
					existing, up := w.connections[cid]
					switch {
					case inRange && !up:
						c := NewConnection(aIface, bIface)
						w.connections[cid] = c
						w.fireConnected(a.ID, b.ID, c)
					case !inRange && up:
						w.tearDownConnection(existing, a.ID, b.ID)
					}
				}
			}
		}
	}

	// Any open connection whose pair no longer appeared as a grid
	// candidate (hosts moved far enough apart to leave each other's
	// neighborhood entirely) must also be torn down.
	for cid, c := range w.connections {
		if !c.IsUp() {
			delete(w.connections, cid)
			continue
		}
		if !seenPairs[cid] {
			aHost := cid.A.Host
			bHost := cid.B.Host
			w.tearDownConnection(c, aHost, bHost)
		}
	}
}

func (w *World) tearDownConnection(c *Connection, a, b HostID) {
	if c.IsTransferring() {
		m, from, to := c.Abort()
		if m != nil {
			w.fireTransferAborted(m, from, to)
		}
	}
	c.TearDown(w.interfaces)
	delete(w.connections, c.ID)
	w.fireDisconnected(a, b, c)
}

func (w *World) updateRoutersAndTransfers(dt, now float64) {
	order := w.orderedHostIDs()
	for _, id := range order {
		h := w.hosts[id]
		h.Router.Update()
	}

	for _, c := range w.connections {
		if !c.IsTransferring() {
			continue
		}
		if !c.Advance(dt) {
			continue
		}
		m, fromID, toID := c.FinishTransfer()
		fromHost, fOk := w.hosts[fromID]
		toHost, tOk := w.hosts[toID]
		if !fOk || !tOk {
			continue
		}
		res := toHost.Router.ReceiveMessage(m, fromID)
		if res.OK() {
			fromHost.Router.TransferDone(m, toID)
			if toID == m.To {
				delivered := m.Clone()
				delivered.ReceiveTime = now
				delivered.AppendHop(toID)
				w.fireDelivered(delivered, toID, true)
			} else {
				w.fireRelayed(m, fromID, toID)
			}
		}
	}
}

// expireAndDropTTL removes any message whose remaining TTL has reached
// zero from every host's buffer.
func (w *World) expireAndDropTTL(now float64) {
	for _, h := range w.hosts {
		for _, m := range h.Buffer.Messages() {
			if m.Expired(now) {
				h.Buffer.Remove(m.ID)
				w.fireDropped(m, h.ID, h.HasDelivered(m.ID))
			}
		}
	}
}
