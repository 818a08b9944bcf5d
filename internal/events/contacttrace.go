package events

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/AgentDudu/the-one/internal/sim"
)

// ContactEvent is one line of an external contact trace: an interface
// pair goes up or down at a given time.
type ContactEvent struct {
	Time    float64
	A, B    sim.InterfaceID
	Up      bool
	Line    int
}

// ParseContactTrace reads a trace in the line format
// "<time> CONN <hostA> <hostB> <up|down>", one event per line,
// requiring strictly non-decreasing time order. A malformed line or
// an out-of-order timestamp is a fatal parse error naming the line
// number.
func ParseContactTrace(r io.Reader) ([]ContactEvent, error) {
	scanner := bufio.NewScanner(r)
	var events []ContactEvent
	lastTime := -1.0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("contact trace line %d: expected 5 fields, got %d: %q", lineNo, len(fields), line)
		}
		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("contact trace line %d: bad time %q: %w", lineNo, fields[0], err)
		}
		if fields[1] != "CONN" {
			return nil, fmt.Errorf("contact trace line %d: expected CONN, got %q", lineNo, fields[1])
		}
		a, err := parseInterfaceID(fields[2])
		if err != nil {
			return nil, fmt.Errorf("contact trace line %d: %w", lineNo, err)
		}
		b, err := parseInterfaceID(fields[3])
		if err != nil {
			return nil, fmt.Errorf("contact trace line %d: %w", lineNo, err)
		}
		var up bool
		switch fields[4] {
		case "up":
			up = true
		case "down":
			up = false
		default:
			return nil, fmt.Errorf("contact trace line %d: expected up/down, got %q", lineNo, fields[4])
		}
		if t < lastTime {
			return nil, fmt.Errorf("contact trace line %d: time %.3f precedes previous event time %.3f; trace must be chronological", lineNo, t, lastTime)
		}
		lastTime = t
		events = append(events, ContactEvent{Time: t, A: a, B: b, Up: up, Line: lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("contact trace: %w", err)
	}
	return events, nil
}

func parseInterfaceID(s string) (sim.InterfaceID, error) {
	parts := strings.SplitN(s, ":", 2)
	hostNum, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return sim.InterfaceID{}, fmt.Errorf("bad host id %q: %w", s, err)
	}
	idx := 0
	if len(parts) == 2 {
		idx, err = strconv.Atoi(parts[1])
		if err != nil {
			return sim.InterfaceID{}, fmt.Errorf("bad interface index %q: %w", s, err)
		}
	}
	return sim.InterfaceID{Host: sim.HostID(hostNum), Index: idx}, nil
}

// ContactTrace replays a parsed, time-sorted ContactEvent list as
// forced connection up/down transitions, independent of the spatial
// connectivity detection World otherwise performs.
type ContactTrace struct {
	events []ContactEvent
	cursor int
}

// NewContactTrace creates a replay source from already-parsed events.
// It stably sorts them by time, so their input order does not matter.
func NewContactTrace(events []ContactEvent) *ContactTrace {
	sorted := append([]ContactEvent(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return &ContactTrace{events: sorted}
}

// FireDue applies every event whose time has arrived, in order.
func (t *ContactTrace) FireDue(world *sim.World, now float64) {
	for t.cursor < len(t.events) && t.events[t.cursor].Time <= now {
		ev := t.events[t.cursor]
		world.ForceConnection(ev.A, ev.B, ev.Up)
		t.cursor++
	}
}
