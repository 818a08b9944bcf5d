package history_test

import (
	"testing"

	"github.com/AgentDudu/the-one/internal/history"
)

func TestManager_OpenCloseRecordsFinishedInterval(t *testing.T) {
	m := history.NewManager()
	m.Open(2, 10)
	if !m.IsOpen(2) {
		t.Fatalf("expected contact with 2 to be open")
	}
	m.Close(2, 25)
	if m.IsOpen(2) {
		t.Fatalf("expected contact with 2 to be closed")
	}
	got := m.Finished(2)
	if len(got) != 1 || got[0].Start != 10 || got[0].End != 25 {
		t.Fatalf("expected one finished interval [10,25], got %v", got)
	}
}

func TestManager_DoubleOpenIsNoop(t *testing.T) {
	m := history.NewManager()
	m.Open(2, 10)
	m.Open(2, 15)
	m.Close(2, 30)
	got := m.Finished(2)
	if len(got) != 1 || got[0].Start != 10 {
		t.Fatalf("expected the second Open to be ignored, keeping start at 10, got %v", got)
	}
}

func TestManager_CloseWithoutOpenIsNoop(t *testing.T) {
	m := history.NewManager()
	m.Close(2, 30)
	if len(m.Finished(2)) != 0 {
		t.Fatalf("expected no finished interval from an unmatched Close")
	}
}

func TestManager_CumulativeContactTime(t *testing.T) {
	m := history.NewManager()
	m.Open(2, 0)
	m.Close(2, 10)
	m.Open(2, 20)
	m.Close(2, 35)

	if got := m.CumulativeContactTime(2, 35, false); got != 25 {
		t.Fatalf("expected 25 seconds of finished contact, got %v", got)
	}

	m.Open(2, 40)
	if got := m.CumulativeContactTime(2, 50, true); got != 35 {
		t.Fatalf("expected 25 finished + 10 open = 35, got %v", got)
	}
	if got := m.CumulativeContactTime(2, 50, false); got != 25 {
		t.Fatalf("expected open contact excluded when includeOpen is false, got %v", got)
	}
}

func TestManager_PeersIncludesFinishedAndOpen(t *testing.T) {
	m := history.NewManager()
	m.Open(2, 0)
	m.Close(2, 10)
	m.Open(3, 5)

	peers := m.Peers()
	seen := map[int]bool{}
	for _, p := range peers {
		seen[int(p)] = true
	}
	if len(peers) != 2 || !seen[2] || !seen[3] {
		t.Fatalf("expected peers {2,3}, got %v", peers)
	}
}
