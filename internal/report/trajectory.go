package report

import (
	"fmt"
	"io"

	"github.com/AgentDudu/the-one/internal/sim"
)

// NodeTrajectoryReport records a (simTime, hostID, x, y) row every
// time it is sampled, for CSV export. Unlike the listener-based
// reports, sampling is driven externally once per tick (trajectory
// reports care about position, which has no dedicated listener
// event).
type NodeTrajectoryReport struct {
	rows []trajectoryRow
}

type trajectoryRow struct {
	simTime float64
	host    sim.HostID
	x, y    float64
}

// NewNodeTrajectoryReport creates an empty trajectory report.
func NewNodeTrajectoryReport() *NodeTrajectoryReport {
	return &NodeTrajectoryReport{}
}

// Sample records every host's current position at simTime.
func (r *NodeTrajectoryReport) Sample(simTime float64, hosts []*sim.Host) {
	for _, h := range hosts {
		r.rows = append(r.rows, trajectoryRow{simTime: simTime, host: h.ID, x: h.Location.X, y: h.Location.Y})
	}
}

// WriteTo renders the recorded rows as CSV: SimTime,HostID,X,Y.
func (r *NodeTrajectoryReport) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := fmt.Fprintln(w, "SimTime,HostID,X,Y")
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, row := range r.rows {
		n, err = fmt.Fprintf(w, "%.2f,%s,%.2f,%.2f\n", row.simTime, row.host.String(), row.x, row.y)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
