package report_test

import (
	"strings"
	"testing"

	"github.com/AgentDudu/the-one/internal/report"
	"github.com/AgentDudu/the-one/internal/sim"
)

func TestContactsPerHourReport_BucketsByHour(t *testing.T) {
	r := report.NewContactsPerHourReport()
	r.Record(0)
	r.Record(1800)
	r.Record(3700)
	r.Record(3700)

	var sb strings.Builder
	if _, err := r.WriteTo(&sb); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "0,2\n") {
		t.Fatalf("expected hour 0 to have 2 contacts, got %q", out)
	}
	if !strings.Contains(out, "1,2\n") {
		t.Fatalf("expected hour 1 to have 2 contacts, got %q", out)
	}
}

func TestContactsPerHourReport_HeaderAndOrdering(t *testing.T) {
	r := report.NewContactsPerHourReport()
	r.Record(7200)
	r.Record(0)

	var sb strings.Builder
	r.WriteTo(&sb)
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if lines[0] != "Hour,Contacts" {
		t.Fatalf("expected CSV header first, got %q", lines[0])
	}
	if lines[1] != "0,1" || lines[2] != "2,1" {
		t.Fatalf("expected hours in chronological order, got %v", lines[1:])
	}
}

func TestDeliveredMessagesReport_RecordsOnlyFirstDelivery(t *testing.T) {
	r := report.NewDeliveredMessagesReport()
	m := sim.NewMessage("M1", 1, 2, 1000, 300, 0)
	m.ReceiveTime = 10
	m.HopPath = []sim.HostID{1, 9, 2}

	r.MessageDelivered(m, 2, true)
	r.MessageDelivered(m, 3, true)

	var sb strings.Builder
	if _, err := r.WriteTo(&sb); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	out := sb.String()
	if strings.Count(out, "M1,") != 1 {
		t.Fatalf("expected exactly one row for M1 despite two delivery events, got %q", out)
	}
	if !strings.Contains(out, "M1,1,2,0.00,10.00,3\n") {
		t.Fatalf("expected a row with latency 10 and hop count 3, got %q", out)
	}
}

func TestDeliveredMessagesReport_IgnoresNonFirstDeliveries(t *testing.T) {
	r := report.NewDeliveredMessagesReport()
	m := sim.NewMessage("M1", 1, 2, 1000, 300, 0)
	r.MessageDelivered(m, 2, false)

	var sb strings.Builder
	r.WriteTo(&sb)
	if strings.Contains(sb.String(), "M1") {
		t.Fatalf("expected no row for a non-first delivery, got %q", sb.String())
	}
}
