package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/AgentDudu/the-one/internal/sim"
)

// ContactsPerHourReport buckets every contact passed to Record into the
// simulated hour it occurred in, a coarse measure of how contact
// opportunities vary over the run.
type ContactsPerHourReport struct {
	perHour map[int]int
}

// NewContactsPerHourReport creates an empty report.
func NewContactsPerHourReport() *ContactsPerHourReport {
	return &ContactsPerHourReport{perHour: make(map[int]int)}
}

// HostsConnected is a no-op: ConnectionListener carries no simulated
// time, so contacts are counted only through Record.
func (r *ContactsPerHourReport) HostsConnected(a, b sim.HostID, conn *sim.Connection) {}

// HostsDisconnected is unused by this report.
func (r *ContactsPerHourReport) HostsDisconnected(a, b sim.HostID, conn *sim.Connection) {}

// Record buckets one contact event at simulated time now (in seconds)
// into its simulated hour. Callers invoke it once per contact, since
// ConnectionListener itself carries no clock.
func (r *ContactsPerHourReport) Record(now float64) {
	hour := int(now / 3600.0)
	r.perHour[hour]++
}

// WriteTo renders one "hour,count" line per hour that saw at least one
// contact, in chronological order.
func (r *ContactsPerHourReport) WriteTo(w io.Writer) (int64, error) {
	hours := make([]int, 0, len(r.perHour))
	for h := range r.perHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	var total int64
	n, err := fmt.Fprintln(w, "Hour,Contacts")
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, h := range hours {
		n, err = fmt.Fprintf(w, "%d,%d\n", h, r.perHour[h])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// DeliveredMessagesReport lists every first-time delivery with its
// latency and hop count, for per-message post-hoc analysis.
type DeliveredMessagesReport struct {
	rows []deliveredRow
	seen map[string]bool
}

type deliveredRow struct {
	id      string
	from    sim.HostID
	to      sim.HostID
	created float64
	latency float64
	hops    int
}

// NewDeliveredMessagesReport creates an empty report.
func NewDeliveredMessagesReport() *DeliveredMessagesReport {
	return &DeliveredMessagesReport{seen: make(map[string]bool)}
}

func (r *DeliveredMessagesReport) NewMessage(m *sim.Message, at sim.HostID)                {}
func (r *DeliveredMessagesReport) TransferStarted(m *sim.Message, from, to sim.HostID)     {}
func (r *DeliveredMessagesReport) TransferAborted(m *sim.Message, from, to sim.HostID)     {}
func (r *DeliveredMessagesReport) MessageRelayed(m *sim.Message, from, to sim.HostID)      {}
func (r *DeliveredMessagesReport) MessageDropped(m *sim.Message, at sim.HostID, wasDelivered bool) {}

func (r *DeliveredMessagesReport) MessageDelivered(m *sim.Message, to sim.HostID, firstDelivery bool) {
	if !firstDelivery || r.seen[m.ID] {
		return
	}
	r.seen[m.ID] = true
	r.rows = append(r.rows, deliveredRow{
		id:      m.ID,
		from:    m.From,
		to:      m.To,
		created: m.CreatedAt,
		latency: m.ReceiveTime - m.CreatedAt,
		hops:    len(m.HopPath),
	})
}

// WriteTo renders one CSV row per delivered message:
// ID,From,To,Created,Latency,Hops.
func (r *DeliveredMessagesReport) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := fmt.Fprintln(w, "ID,From,To,Created,Latency,Hops")
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, row := range r.rows {
		n, err = fmt.Fprintf(w, "%s,%s,%s,%.2f,%.2f,%d\n",
			row.id, row.from.String(), row.to.String(), row.created, row.latency, row.hops)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
