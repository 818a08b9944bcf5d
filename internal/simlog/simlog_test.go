package simlog_test

import (
	"testing"

	"github.com/AgentDudu/the-one/internal/sim"
	"github.com/AgentDudu/the-one/internal/simlog"
)

func TestAt_PopulatesSimTimeField(t *testing.T) {
	e := simlog.At(12.5)
	if e.Data["sim_time"] != 12.5 {
		t.Fatalf("expected sim_time field 12.5, got %v", e.Data["sim_time"])
	}
}

func TestForHost_PopulatesSimTimeAndHostFields(t *testing.T) {
	e := simlog.ForHost(3, sim.HostID(7))
	if e.Data["sim_time"] != 3.0 {
		t.Fatalf("expected sim_time field 3.0, got %v", e.Data["sim_time"])
	}
	if e.Data["host"] != "7" {
		t.Fatalf("expected host field \"7\", got %v", e.Data["host"])
	}
}
