package sim

// Host is a mobile node: an identity, a current location, a set of
// interfaces, a bounded message buffer, and a routing strategy.
// The World owns every Host; a Host owns its own Interfaces, Buffer,
// and Router.
type Host struct {
	ID HostID

	// Group is the configured group prefix this host belongs to
	// (Group[i].groupID), and Index is its position within that group,
	// so DisplayName can reproduce "<prefix><index>" identifiers used
	// in logs and reports.
	Group string
	Index int

	Location Point

	Interfaces []*Interface

	Buffer *Buffer

	Router Router

	// Movement advances Location every tick; nil means stationary.
	Movement MovementModel

	// delivered tracks message IDs this host has already delivered to
	// itself as final destination, enforcing idempotent delivery.
	delivered map[string]bool
}

// MovementModel supplies a host's initial position and its path
// forward in time. Implementations live in package movement; World
// only ever calls these two methods.
type MovementModel interface {
	InitialPosition() Point
	NextPath(current Point, elapsedSeconds, deltaSeconds float64) Point
}

// NewHost creates a host with the given identity, buffer capacity, and
// router. The router's Init is not called here; World.AddHost does
// that once the host is registered.
func NewHost(id HostID, group string, index int, bufferCapacity int64, router Router) *Host {
	return &Host{
		ID:        id,
		Group:     group,
		Index:     index,
		Buffer:    NewBuffer(bufferCapacity),
		Router:    router,
		delivered: make(map[string]bool),
	}
}

// DisplayName formats the host as "<group><index>".
func (h *Host) DisplayName() string {
	return h.Group + HostID(h.Index).String()
}

// AddInterface attaches a new interface to the host.
func (h *Host) AddInterface(iface *Interface) {
	h.Interfaces = append(h.Interfaces, iface)
}

// HasDelivered reports whether this host has already completed final
// delivery of the message with the given ID.
func (h *Host) HasDelivered(id string) bool {
	return h.delivered[id]
}

// MarkDelivered records that this host has completed final delivery
// of the message with the given ID. Idempotent: a second call is a
// no-op.
func (h *Host) MarkDelivered(id string) {
	h.delivered[id] = true
}
