package sim

// ConnState is a Connection's place in its up/idle/transferring state
// machine.
type ConnState int

const (
	// StateUpIdle means the link is up and no transfer is in flight.
	StateUpIdle ConnState = iota

	// StateUpTransferring means a message is currently being sent
	// across this connection, in the direction recorded by Sender.
	StateUpTransferring

	// StateDown is terminal: the connection has been torn down and
	// must not be reused.
	StateDown
)

// Connection is the symmetric link between two interfaces, with at
// most one in-flight transfer across it at a time. Because only one
// message may be in flight at all (not merely per direction, matching
// a single-attempt-at-a-time wireless model), Sender/Receiver track
// the active direction.
type Connection struct {
	ID ConnectionID

	A, B InterfaceID

	state ConnState

	// Speed is the effective transfer rate in bytes/second: the
	// minimum of both endpoints' interface speeds.
	Speed float64

	// inFlight is the message currently being transferred, if any.
	inFlight *Message

	// sender/receiver name the direction of the in-flight transfer.
	sender, receiver HostID

	// transferred is the number of bytes of inFlight already moved.
	transferred int64
}

// NewConnection creates a Connection in StateUpIdle between two
// interfaces with the given effective speed.
func NewConnection(a, b *Interface) *Connection {
	speed := a.TransmitSpeed
	if b.TransmitSpeed < speed {
		speed = b.TransmitSpeed
	}
	c := &Connection{
		ID:    NewConnectionID(a.ID, b.ID),
		A:     a.ID,
		B:     b.ID,
		state: StateUpIdle,
		Speed: speed,
	}
	a.addConnection(c)
	b.addConnection(c)
	return c
}

// State returns the connection's current state.
func (c *Connection) State() ConnState { return c.state }

// IsUp reports whether the connection has not been torn down.
func (c *Connection) IsUp() bool { return c.state != StateDown }

// IsTransferring reports whether a message is currently in flight.
func (c *Connection) IsTransferring() bool { return c.state == StateUpTransferring }

// Other returns the interface at the far end of the connection from
// the given interface's host.
func (c *Connection) Other(from HostID) InterfaceID {
	if c.A.Host == from {
		return c.B
	}
	return c.A
}

// Peers returns both hosts spanned by this connection.
func (c *Connection) Peers() (HostID, HostID) {
	return c.A.Host, c.B.Host
}

// InFlight returns the message currently being transferred, if any.
func (c *Connection) InFlight() (*Message, bool) {
	if c.inFlight == nil {
		return nil, false
	}
	return c.inFlight, true
}

// TransferProgress returns bytes transferred and total size of the
// in-flight message.
func (c *Connection) TransferProgress() (transferred, total int64) {
	if c.inFlight == nil {
		return 0, 0
	}
	return c.transferred, c.inFlight.Size
}

// BeginTransfer moves the connection into StateUpTransferring for a
// send from sender to receiver. Returns false if the connection is
// not idle (TRY_LATER_BUSY).
func (c *Connection) BeginTransfer(m *Message, sender, receiver HostID) bool {
	if c.state != StateUpIdle {
		return false
	}
	c.inFlight = m
	c.sender = sender
	c.receiver = receiver
	c.transferred = 0
	c.state = StateUpTransferring
	return true
}

// Advance adds bytes transferred this tick (Δ seconds × Speed) and
// reports whether the transfer has now completed.
func (c *Connection) Advance(deltaSeconds float64) (completed bool) {
	if c.state != StateUpTransferring {
		return false
	}
	c.transferred += int64(deltaSeconds * c.Speed)
	if c.transferred >= c.inFlight.Size {
		return true
	}
	return false
}

// FinishTransfer clears in-flight state and returns the connection to
// idle after a successful delivery.
func (c *Connection) FinishTransfer() (*Message, HostID, HostID) {
	m, from, to := c.inFlight, c.sender, c.receiver
	c.inFlight = nil
	c.transferred = 0
	c.state = StateUpIdle
	return m, from, to
}

// Abort tears down an in-flight transfer without delivering it, e.g.
// when the interfaces leave range mid-transfer. The sender is not
// charged with a successful forward.
func (c *Connection) Abort() (*Message, HostID, HostID) {
	m, from, to := c.inFlight, c.sender, c.receiver
	c.inFlight = nil
	c.transferred = 0
	return m, from, to
}

// TearDown marks the connection permanently down, detaching it from
// both interfaces.
func (c *Connection) TearDown(ifaces map[InterfaceID]*Interface) {
	c.state = StateDown
	if iface, ok := ifaces[c.A]; ok {
		iface.removeConnection(c.ID)
	}
	if iface, ok := ifaces[c.B]; ok {
		iface.removeConnection(c.ID)
	}
}
