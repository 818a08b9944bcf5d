package report_test

import (
	"strings"
	"testing"

	"github.com/AgentDudu/the-one/internal/report"
	"github.com/AgentDudu/the-one/internal/sim"
)

func TestNodeTrajectoryReport_SampleRecordsOneRowPerHost(t *testing.T) {
	r := report.NewNodeTrajectoryReport()
	h1 := sim.NewHost(1, "N", 1, 1000, nil)
	h1.Location = sim.Point{X: 1, Y: 2}
	h2 := sim.NewHost(2, "N", 2, 1000, nil)
	h2.Location = sim.Point{X: 3, Y: 4}

	r.Sample(10, []*sim.Host{h1, h2})

	var sb strings.Builder
	if _, err := r.WriteTo(&sb); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "10.00,1,1.00,2.00\n") {
		t.Fatalf("expected a row for host 1, got %q", out)
	}
	if !strings.Contains(out, "10.00,2,3.00,4.00\n") {
		t.Fatalf("expected a row for host 2, got %q", out)
	}
}

func TestNodeTrajectoryReport_MultipleSamplesAccumulate(t *testing.T) {
	r := report.NewNodeTrajectoryReport()
	h := sim.NewHost(1, "N", 1, 1000, nil)
	h.Location = sim.Point{X: 0, Y: 0}

	r.Sample(0, []*sim.Host{h})
	h.Location = sim.Point{X: 5, Y: 5}
	r.Sample(1, []*sim.Host{h})

	var sb strings.Builder
	r.WriteTo(&sb)
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 { // header + 2 samples
		t.Fatalf("expected header plus 2 sample rows, got %d lines: %v", len(lines), lines)
	}
}
