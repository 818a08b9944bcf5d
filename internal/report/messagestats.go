// Package report implements the simulation's output reports as
// sim.MessageListener/sim.ConnectionListener implementations that
// accumulate statistics over a run and render them on demand.
package report

import (
	"fmt"
	"io"

	"github.com/AgentDudu/the-one/internal/sim"
)

// MessageStatsReport accumulates the standard delivery-performance
// counters: created, started, aborted, relayed, delivered and dropped
// message counts, plus derived delivery ratio, overhead ratio, and
// average latency/hop-count/buffer-time.
type MessageStatsReport struct {
	Created, Started, Aborted, Relayed, Delivered, Dropped int

	latencySum    float64
	hopCountSum   int
	bufferTimeSum float64
	deliveredOnce map[string]bool

	createdAt map[string]float64
}

// NewMessageStatsReport creates an empty report.
func NewMessageStatsReport() *MessageStatsReport {
	return &MessageStatsReport{
		deliveredOnce: make(map[string]bool),
		createdAt:     make(map[string]float64),
	}
}

func (r *MessageStatsReport) NewMessage(m *sim.Message, at sim.HostID) {
	r.Created++
	r.createdAt[m.ID] = m.CreatedAt
}

func (r *MessageStatsReport) TransferStarted(m *sim.Message, from, to sim.HostID) {
	r.Started++
}

func (r *MessageStatsReport) TransferAborted(m *sim.Message, from, to sim.HostID) {
	r.Aborted++
}

func (r *MessageStatsReport) MessageRelayed(m *sim.Message, from, to sim.HostID) {
	r.Relayed++
}

func (r *MessageStatsReport) MessageDelivered(m *sim.Message, to sim.HostID, firstDelivery bool) {
	r.Delivered++
	if !firstDelivery || r.deliveredOnce[m.ID] {
		return
	}
	r.deliveredOnce[m.ID] = true
	created := m.CreatedAt
	if t, ok := r.createdAt[m.ID]; ok {
		created = t
	}
	r.latencySum += m.ReceiveTime - created
	r.hopCountSum += len(m.HopPath)
	r.bufferTimeSum += m.ReceiveTime - created
}

func (r *MessageStatsReport) MessageDropped(m *sim.Message, at sim.HostID, wasDelivered bool) {
	r.Dropped++
}

// DeliveryRatio returns delivered/created, or 0 if nothing was
// created.
func (r *MessageStatsReport) DeliveryRatio() float64 {
	if r.Created == 0 {
		return 0
	}
	return float64(len(r.deliveredOnce)) / float64(r.Created)
}

// OverheadRatio returns (relayed-delivered)/delivered, the standard
// "extra copies per successful delivery" measure, or 0 if nothing was
// delivered.
func (r *MessageStatsReport) OverheadRatio() float64 {
	delivered := len(r.deliveredOnce)
	if delivered == 0 {
		return 0
	}
	return float64(r.Relayed-delivered) / float64(delivered)
}

// AverageLatency returns the mean delivery latency, in seconds, across
// every message delivered at least once.
func (r *MessageStatsReport) AverageLatency() float64 {
	n := len(r.deliveredOnce)
	if n == 0 {
		return 0
	}
	return r.latencySum / float64(n)
}

// AverageHopCount returns the mean hop-path length across every
// message delivered at least once.
func (r *MessageStatsReport) AverageHopCount() float64 {
	n := len(r.deliveredOnce)
	if n == 0 {
		return 0
	}
	return float64(r.hopCountSum) / float64(n)
}

// AverageBufferTime returns the mean of delivery time minus creation
// time per delivered message, computed the same way as AverageLatency;
// it does not measure how long the final copy stayed in the last
// holder's buffer.
func (r *MessageStatsReport) AverageBufferTime() float64 {
	n := len(r.deliveredOnce)
	if n == 0 {
		return 0
	}
	return r.bufferTimeSum / float64(n)
}

// WriteTo renders a human-readable summary.
func (r *MessageStatsReport) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w,
		"created: %d\nstarted: %d\naborted: %d\nrelayed: %d\ndelivered: %d\ndropped: %d\n"+
			"delivery_ratio: %.4f\noverhead_ratio: %.4f\navg_latency: %.2f\navg_hopcount: %.2f\navg_buffertime: %.2f\n",
		r.Created, r.Started, r.Aborted, r.Relayed, r.Delivered, r.Dropped,
		r.DeliveryRatio(), r.OverheadRatio(), r.AverageLatency(), r.AverageHopCount(), r.AverageBufferTime())
	return int64(n), err
}
