package sim

import (
	"fmt"

	"github.com/google/uuid"
)

// Message is an immutable identity plus per-copy state. Each holder
// keeps its own copy (router.Base stores a Clone on receipt), so
// Properties, HopPath and ReceiveTime differ between holders; routers
// mutate their own copy in place, which is safe because the simulator
// is single-threaded.
type Message struct {
	// ID is the message's unique identity, e.g. a generator-supplied
	// "<prefix><seq>", or "M" plus a UUID when NewMessage gets no ID.
	ID string

	// From is the message's origin host.
	From HostID

	// To is the message's destination host.
	To HostID

	// Size is the payload size in bytes.
	Size int64

	// TTL is the initial time-to-live, in minutes, set at creation.
	TTL float64

	// CreatedAt is the simulated time, in seconds, the message was
	// created.
	CreatedAt float64

	// ReceiveTime is the simulated time, in seconds, the current
	// holder received this copy. Reset on every hop.
	ReceiveTime float64

	// Properties holds strategy-qualified values, e.g.
	// "SprayAndWait.copies".
	Properties map[string]interface{}

	// HopPath is the ordered list of hosts this copy has passed
	// through, starting with From.
	HopPath []HostID
}

// NewMessage creates a message originated by from, addressed to to,
// with the given size (bytes) and TTL (minutes). now is the simulated
// creation time in seconds.
func NewMessage(id string, from, to HostID, size int64, ttl, now float64) *Message {
	if id == "" {
		id = "M" + uuid.NewString()
	}
	return &Message{
		ID:          id,
		From:        from,
		To:          to,
		Size:        size,
		TTL:         ttl,
		CreatedAt:   now,
		ReceiveTime: now,
		Properties:  make(map[string]interface{}),
		HopPath:     []HostID{from},
	}
}

// Clone returns a copy of m suitable for handing to another host on a
// forward: identity, size, TTL and From/To are shared; Properties and
// HopPath are deep-copied so the two holders' strategy state (e.g.
// Spray-and-Wait copy counts) diverge independently.
func (m *Message) Clone() *Message {
	props := make(map[string]interface{}, len(m.Properties))
	for k, v := range m.Properties {
		props[k] = v
	}
	hops := make([]HostID, len(m.HopPath))
	copy(hops, m.HopPath)
	return &Message{
		ID:          m.ID,
		From:        m.From,
		To:          m.To,
		Size:        m.Size,
		TTL:         m.TTL,
		CreatedAt:   m.CreatedAt,
		ReceiveTime: m.ReceiveTime,
		Properties:  props,
		HopPath:     hops,
	}
}

// RemainingTTL returns the message's remaining time-to-live in
// minutes at simulated time now (seconds).
func (m *Message) RemainingTTL(now float64) float64 {
	ageMinutes := (now - m.CreatedAt) / 60.0
	return m.TTL - ageMinutes
}

// Expired reports whether m must be dropped from every buffer at
// simulated time now.
func (m *Message) Expired(now float64) bool {
	return m.RemainingTTL(now) <= 0
}

// AppendHop records that the message has passed through host h. The
// hop path must strictly grow and never repeat a host; callers must
// not append the same host twice in a row.
func (m *Message) AppendHop(h HostID) {
	m.HopPath = append(m.HopPath, h)
}

// Prop fetches a strategy-qualified property, e.g. "SprayAndWait.copies".
func (m *Message) Prop(key string) (interface{}, bool) {
	v, ok := m.Properties[key]
	return v, ok
}

// SetProp sets a strategy-qualified property.
func (m *Message) SetProp(key string, value interface{}) {
	m.Properties[key] = value
}

func (m *Message) String() string {
	return fmt.Sprintf("%s %d->%d (%d bytes, ttl %.1fm)", m.ID, m.From, m.To, m.Size, m.TTL)
}
