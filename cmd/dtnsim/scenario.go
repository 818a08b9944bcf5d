package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AgentDudu/the-one/internal/centrality"
	"github.com/AgentDudu/the-one/internal/community"
	"github.com/AgentDudu/the-one/internal/config"
	"github.com/AgentDudu/the-one/internal/events"
	"github.com/AgentDudu/the-one/internal/movement"
	"github.com/AgentDudu/the-one/internal/report"
	"github.com/AgentDudu/the-one/internal/router"
	"github.com/AgentDudu/the-one/internal/sim"
)

// RunScenario builds a World from settings, runs it to Scenario.endTime,
// and returns the accumulated message statistics.
func RunScenario(settings config.Settings) (*report.MessageStatsReport, error) {
	updateInterval, err := settings.GetFloat("Scenario", "updateInterval", 1.0)
	if err != nil {
		return nil, err
	}
	endTime, err := settings.GetFloat("Scenario", "endTime", 3600)
	if err != nil {
		return nil, err
	}
	seed, err := settings.GetInt("Scenario", "seed", 1)
	if err != nil {
		return nil, err
	}
	transmitRange, err := settings.GetFloat("Group", "transmitRange", 10)
	if err != nil {
		return nil, err
	}
	cellSizeMult, err := settings.GetFloat("Scenario", "cellSizeMult", 2.0)
	if err != nil {
		return nil, err
	}
	nrofHosts, err := settings.GetInt("Group", "nrofHosts", 10)
	if err != nil {
		return nil, err
	}
	bufferSize, err := settings.GetInt("Group", "bufferSize", 5_000_000)
	if err != nil {
		return nil, err
	}
	transmitSpeed, err := settings.GetInt("Group", "transmitSpeed", 250_000)
	if err != nil {
		return nil, err
	}
	areaX, err := settings.GetFloat("Group", "areaX", 1000)
	if err != nil {
		return nil, err
	}
	areaY, err := settings.GetFloat("Group", "areaY", 1000)
	if err != nil {
		return nil, err
	}
	randomizeOrder, err := settings.GetBool("Scenario", "randomizeUpdateOrder", false)
	if err != nil {
		return nil, err
	}

	world := sim.NewWorld(updateInterval, int64(seed), cellSizeMult*transmitRange)
	world.RandomizeUpdateOrder = randomizeOrder

	routerName, _ := settings.Get("Group", "router")

	hostIDs := make([]sim.HostID, 0, nrofHosts)
	for i := 0; i < nrofHosts; i++ {
		id := sim.HostID(i + 1)
		hostIDs = append(hostIDs, id)
	}

	var socialGraph *router.StaticSocialGraph
	var peopleRanks map[sim.HostID]float64
	const peopleRankDamping = 0.8
	if routerName == "PeopleRank" {
		socialGraph = router.NewStaticSocialGraph()
		for i := 0; i < len(hostIDs); i++ {
			socialGraph.AddEdge(hostIDs[i], hostIDs[(i+1)%len(hostIDs)])
		}
		peopleRanks = router.ComputeRanks(socialGraph, hostIDs, peopleRankDamping, 20)
	}

	for _, id := range hostIDs {
		r := newRouter(id, routerName, settings, peopleRanks[id])
		if pr, ok := r.(*router.PeopleRank); ok {
			pr.EnableContactUpdates(id, socialGraph, peopleRanks, peopleRankDamping)
		}
		h := sim.NewHost(id, "Group", int(id), int64(bufferSize), r)
		iface := sim.NewInterface(sim.InterfaceID{Host: id, Index: 0}, transmitRange, float64(transmitSpeed))
		h.AddInterface(iface)
		h.Movement = movement.NewRandomWaypoint(0, 0, areaX, areaY, 0.5, 1.5, 0, 120, world.RNG.Sub(fmt.Sprintf("movement.%d", id)))
		world.AddHost(h)
	}

	msgStats := report.NewMessageStatsReport()
	world.AddMessageListener(msgStats)

	if interval, ok := settings.Get("Events", "interval"); ok {
		lo, hi := parseRange(interval, 30, 60)
		sizeLo, sizeHi := parseRange(firstOr(settings, "Events", "size", "500k,1M"), 500_000, 1_000_000)
		ttlLo, ttlHi := parseRange(firstOr(settings, "Events", "ttl", "300,300"), 300, 300)
		gen := events.NewMessageEventGenerator(hostIDs, lo, hi, int64(sizeLo), int64(sizeHi), ttlLo, ttlHi, "M", world.RNG.Sub("events"))
		world.AddEventSource(gen)
	}

	steps := int(endTime / updateInterval)
	for i := 0; i < steps; i++ {
		world.Tick()
	}

	return msgStats, nil
}

func firstOr(s config.Settings, group, key, def string) string {
	v, ok := s.Get(group, key)
	if !ok {
		return def
	}
	return v
}

func parseRange(s string, defLo, defHi float64) (float64, float64) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return defLo, defHi
	}
	lo, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	hi, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return defLo, defHi
	}
	return lo, hi
}

func newRouter(id sim.HostID, name string, settings config.Settings, peopleRank float64) sim.Router {
	switch name {
	case "SprayAndWait":
		copies, _ := settings.GetInt("Group", "nrofCopies", 6)
		binary, _ := settings.GetBool("Group", "binaryMode", true)
		return router.NewSprayAndWait(copies, binary)
	case "SprayAndFocus":
		copies, _ := settings.GetInt("Group", "nrofCopies", 6)
		return router.NewSprayAndFocus(copies)
	case "Prophet":
		return router.NewProphet(router.GRTR, router.FIFO)
	case "ProphetPREP":
		return router.NewProphetPREP()
	case "ProphetRandom":
		return router.NewProphetRandom()
	case "BubbleRap":
		detector := community.NewKClique(id, 3, 600)
		cent := centrality.NewCalculator(centrality.SWindow, 3600, 3, 300)
		return router.NewBubbleRap(detector, cent)
	case "PeopleRank":
		return router.NewPeopleRank(peopleRank)
	case "SimBet":
		return router.NewSimBet()
	default:
		return router.NewEpidemic()
	}
}

// expandSweeps expands every "[a; b; c;]" sweep value found across
// settings into the cartesian product of concrete Settings, one per
// combination.
func expandSweeps(settings config.Settings) []config.Settings {
	type sweepKey struct{ group, key string }
	var keys []sweepKey
	var values [][]string
	for group, kv := range settings {
		for key, v := range kv {
			expanded := config.ExpandSweep(v)
			if len(expanded) > 1 {
				keys = append(keys, sweepKey{group, key})
				values = append(values, expanded)
			}
		}
	}
	if len(keys) == 0 {
		return []config.Settings{settings}
	}

	cloneSettings := func(s config.Settings) config.Settings {
		clone := make(config.Settings, len(s))
		for g, kv := range s {
			clone[g] = make(map[string]string, len(kv))
			for k, v := range kv {
				clone[g][k] = v
			}
		}
		return clone
	}

	var combos []config.Settings
	var recurse func(i int, acc config.Settings)
	recurse = func(i int, acc config.Settings) {
		if i == len(keys) {
			combos = append(combos, acc)
			return
		}
		for _, v := range values[i] {
			next := cloneSettings(acc)
			next[keys[i].group][keys[i].key] = v
			recurse(i+1, next)
		}
	}
	recurse(0, settings)
	return combos
}
