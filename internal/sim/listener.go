package sim

// ConnectionListener is notified synchronously when interfaces come
// into or go out of range. Routers receive these through Host.Router's
// ChangedConnection method; World-level observers (reports) register
// here directly.
type ConnectionListener interface {
	HostsConnected(a, b HostID, conn *Connection)
	HostsDisconnected(a, b HostID, conn *Connection)
}

// MessageListener observes the message lifecycle for reporting.
type MessageListener interface {
	NewMessage(m *Message, at HostID)
	TransferStarted(m *Message, from, to HostID)
	TransferAborted(m *Message, from, to HostID)
	MessageRelayed(m *Message, from, to HostID)
	MessageDelivered(m *Message, to HostID, firstDelivery bool)
	MessageDropped(m *Message, at HostID, wasDelivered bool)
}

// ConnectionListenerFuncs adapts plain functions to ConnectionListener
// for tests and small ad hoc observers.
type ConnectionListenerFuncs struct {
	OnConnected    func(a, b HostID, conn *Connection)
	OnDisconnected func(a, b HostID, conn *Connection)
}

func (f ConnectionListenerFuncs) HostsConnected(a, b HostID, conn *Connection) {
	if f.OnConnected != nil {
		f.OnConnected(a, b, conn)
	}
}

func (f ConnectionListenerFuncs) HostsDisconnected(a, b HostID, conn *Connection) {
	if f.OnDisconnected != nil {
		f.OnDisconnected(a, b, conn)
	}
}

// MessageListenerFuncs adapts plain functions to MessageListener for
// tests and small ad hoc observers; any field left nil is a no-op.
type MessageListenerFuncs struct {
	OnNewMessage      func(m *Message, at HostID)
	OnTransferStarted func(m *Message, from, to HostID)
	OnTransferAborted func(m *Message, from, to HostID)
	OnRelayed         func(m *Message, from, to HostID)
	OnDelivered       func(m *Message, to HostID, firstDelivery bool)
	OnDropped         func(m *Message, at HostID, wasDelivered bool)
}

func (f MessageListenerFuncs) NewMessage(m *Message, at HostID) {
	if f.OnNewMessage != nil {
		f.OnNewMessage(m, at)
	}
}

func (f MessageListenerFuncs) TransferStarted(m *Message, from, to HostID) {
	if f.OnTransferStarted != nil {
		f.OnTransferStarted(m, from, to)
	}
}

func (f MessageListenerFuncs) TransferAborted(m *Message, from, to HostID) {
	if f.OnTransferAborted != nil {
		f.OnTransferAborted(m, from, to)
	}
}

func (f MessageListenerFuncs) MessageRelayed(m *Message, from, to HostID) {
	if f.OnRelayed != nil {
		f.OnRelayed(m, from, to)
	}
}

func (f MessageListenerFuncs) MessageDelivered(m *Message, to HostID, firstDelivery bool) {
	if f.OnDelivered != nil {
		f.OnDelivered(m, to, firstDelivery)
	}
}

func (f MessageListenerFuncs) MessageDropped(m *Message, at HostID, wasDelivered bool) {
	if f.OnDropped != nil {
		f.OnDropped(m, at, wasDelivered)
	}
}
