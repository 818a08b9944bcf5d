package sim

import "fmt"

// Buffer is a per-host bounded collection of Message references. It
// enforces the invariant Σ size(m) ≤ capacity on every mutation; it
// does not itself choose a drop victim on overflow, that policy
// decision belongs to the Router.
type Buffer struct {
	capacity int64
	used     int64
	messages map[string]*Message
	// order preserves insertion order for FIFO-style iteration; it is
	// not a correctness requirement, only a convenience for the
	// default drop policy and for reports.
	order []string
}

// NewBuffer creates an empty buffer with the given byte capacity.
func NewBuffer(capacity int64) *Buffer {
	return &Buffer{
		capacity: capacity,
		messages: make(map[string]*Message),
	}
}

// Capacity returns the buffer's total byte capacity.
func (b *Buffer) Capacity() int64 { return b.capacity }

// Used returns the number of bytes currently occupied.
func (b *Buffer) Used() int64 { return b.used }

// Free returns the number of bytes available before the invariant
// would be violated.
func (b *Buffer) Free() int64 { return b.capacity - b.used }

// Has reports whether a message with the given ID is currently
// buffered (used to detect duplicate deliveries and enforce that a
// delivered message never re-enters the buffer).
func (b *Buffer) Has(id string) bool {
	_, ok := b.messages[id]
	return ok
}

// Get returns the buffered message with the given ID, if present.
func (b *Buffer) Get(id string) (*Message, bool) {
	m, ok := b.messages[id]
	return m, ok
}

// FitsWithoutEviction reports whether a message of the given size can
// be added without exceeding capacity.
func (b *Buffer) FitsWithoutEviction(size int64) bool {
	return b.used+size <= b.capacity
}

// Add inserts m. Callers must first ensure FitsWithoutEviction(m.Size)
// or have made room via Remove; Add panics on overflow since that
// would violate the buffer invariant and indicates a caller bug, not a
// runtime condition.
func (b *Buffer) Add(m *Message) {
	if b.Has(m.ID) {
		return
	}
	if b.used+m.Size > b.capacity {
		panic(fmt.Sprintf("sim: buffer overflow adding %s: used=%d size=%d capacity=%d", m.ID, b.used, m.Size, b.capacity))
	}
	b.messages[m.ID] = m
	b.order = append(b.order, m.ID)
	b.used += m.Size
}

// Remove evicts the message with the given ID, if present, and
// returns it.
func (b *Buffer) Remove(id string) (*Message, bool) {
	m, ok := b.messages[id]
	if !ok {
		return nil, false
	}
	delete(b.messages, id)
	b.used -= m.Size
	for i, oid := range b.order {
		if oid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return m, true
}

// Messages returns all buffered messages in FIFO insertion order. The
// returned slice is owned by the caller.
func (b *Buffer) Messages() []*Message {
	out := make([]*Message, 0, len(b.order))
	for _, id := range b.order {
		if m, ok := b.messages[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Count returns the number of buffered messages.
func (b *Buffer) Count() int { return len(b.messages) }
