package sim

// Router is the message-forwarding strategy attached to a Host. World
// and Connection drive it through this interface; concrete strategies
// live in package router and embed router.Base for the shared
// buffer/FIFO/TTL/delivery machinery.
type Router interface {
	// Init binds the router to its owning host and the world, and is
	// called once before tick 0.
	Init(host *Host, world *World)

	// Update is called once per tick for every host; it is where a
	// strategy decides which buffered messages to offer to which open
	// connections.
	Update()

	// ChangedConnection is called synchronously whenever one of the
	// host's connections transitions up or down.
	ChangedConnection(conn *Connection, up bool)

	// StartTransfer is invoked by the sending side to ask the peer's
	// router whether it may begin receiving m. It may evict messages
	// from the receiver's buffer to make room (router.Base's
	// DefaultStartTransfer does), but does not store m; acceptance
	// happens in ReceiveMessage once the transfer completes.
	StartTransfer(m *Message, from HostID) ResultCode

	// ReceiveMessage delivers a fully-transferred message to this
	// router's host, returning the final result code after buffering,
	// delivery, or rejection.
	ReceiveMessage(m *Message, from HostID) ResultCode

	// CreateNewMessage injects a newly originated message into this
	// router's own buffer.
	CreateNewMessage(m *Message) ResultCode

	// TransferDone is called on the sending side once a transfer to
	// peer completes successfully.
	TransferDone(m *Message, peer HostID)

	// NextMessageToRemove selects a drop victim for the base buffer
	// eviction policy. excludeSending, when true, must not return a
	// message currently mid-transfer on any open connection.
	NextMessageToRemove(excludeSending bool) (*Message, bool)

	// HostID returns the ID of the host this router is attached to.
	HostID() HostID
}
