package router

import "github.com/AgentDudu/the-one/internal/sim"

// SocialGraph supplies each host's social neighbors for PeopleRank's
// rank propagation.
type SocialGraph interface {
	Neighbors(host sim.HostID) []sim.HostID
}

// StaticSocialGraph is an undirected social graph built from
// configured friendship edges.
type StaticSocialGraph struct {
	edges map[sim.HostID][]sim.HostID
}

// NewStaticSocialGraph creates an empty social graph.
func NewStaticSocialGraph() *StaticSocialGraph {
	return &StaticSocialGraph{edges: make(map[sim.HostID][]sim.HostID)}
}

// AddEdge records a mutual friendship between a and b.
func (g *StaticSocialGraph) AddEdge(a, b sim.HostID) {
	g.edges[a] = append(g.edges[a], b)
	g.edges[b] = append(g.edges[b], a)
}

// Neighbors returns host's social neighbors.
func (g *StaticSocialGraph) Neighbors(host sim.HostID) []sim.HostID {
	return g.edges[host]
}

// ComputeRanks runs the PeopleRank propagation (a PageRank-style fixed
// point with damping factor d) over the full social graph, returning
// the converged rank of every host in hosts. Ranks are computed once,
// offline, before the simulation starts, and handed to each host's
// PeopleRank router.
func ComputeRanks(graph SocialGraph, hosts []sim.HostID, damping float64, iterations int) map[sim.HostID]float64 {
	n := len(hosts)
	rank := make(map[sim.HostID]float64, n)
	if n == 0 {
		return rank
	}
	for _, h := range hosts {
		rank[h] = 1.0 / float64(n)
	}
	for it := 0; it < iterations; it++ {
		next := make(map[sim.HostID]float64, n)
		for _, h := range hosts {
			sum := 0.0
			for _, nb := range graph.Neighbors(h) {
				deg := len(graph.Neighbors(nb))
				if deg == 0 {
					continue
				}
				sum += rank[nb] / float64(deg)
			}
			next[h] = (1 - damping) + damping*sum
		}
		rank = next
	}
	return rank
}

// PeopleRankPeerView exposes a peer's precomputed social rank.
type PeopleRankPeerView interface {
	Rank() float64
}

// PeopleRank forwards a message to any peer with a higher social rank
// than the current holder, on the premise that higher-ranked (more
// socially central) hosts make better relays. The rank starts at the
// value ComputeRanks assigned offline, then keeps itself current by
// recomputing from the latest rank/degree of each social neighbor
// every time one is contacted.
type PeopleRank struct {
	Base

	rank float64

	graph     SocialGraph
	damping   float64
	neighbors []sim.HostID
	known     map[sim.HostID]float64
}

// NewPeopleRank creates a PeopleRank router with a precomputed rank
// (see ComputeRanks). Call EnableContactUpdates to also recompute that
// rank on contact with social neighbors; without it the rank stays
// fixed at its initial value.
func NewPeopleRank(rank float64) *PeopleRank {
	return &PeopleRank{rank: rank}
}

// EnableContactUpdates wires this router to a social graph so its rank
// keeps itself current instead of staying frozen at the offline
// ComputeRanks snapshot: each neighbor's rank is seeded from
// initialRanks, then refreshed from the neighbor's own live Rank()
// whenever it is actually contacted.
func (r *PeopleRank) EnableContactUpdates(self sim.HostID, graph SocialGraph, initialRanks map[sim.HostID]float64, damping float64) {
	r.graph = graph
	r.damping = damping
	r.neighbors = graph.Neighbors(self)
	r.known = make(map[sim.HostID]float64, len(r.neighbors))
	for _, nb := range r.neighbors {
		r.known[nb] = initialRanks[nb]
	}
}

func (r *PeopleRank) Init(host *sim.Host, world *sim.World) {
	r.Base.Init(host, world)
}

// ChangedConnection refreshes this host's rank from a contacted social
// neighbor's latest rank/degree, per PeopleRank's contact-driven
// update rule. A no-op until EnableContactUpdates has been called, or
// for peers outside the social neighbor set.
func (r *PeopleRank) ChangedConnection(conn *sim.Connection, up bool) {
	if !up || r.graph == nil {
		return
	}
	peer, ok := r.PeerOf(conn)
	if !ok {
		return
	}
	if _, isNeighbor := r.known[peer.ID]; !isNeighbor {
		return
	}
	view, ok := peer.Router.(PeopleRankPeerView)
	if !ok {
		return
	}
	r.known[peer.ID] = view.Rank()

	sum := 0.0
	for _, nb := range r.neighbors {
		deg := len(r.graph.Neighbors(nb))
		if deg == 0 {
			continue
		}
		sum += r.known[nb] / float64(deg)
	}
	r.rank = (1 - r.damping) + r.damping*sum
}

// Rank returns this host's current social rank.
func (r *PeopleRank) Rank() float64 { return r.rank }

func (r *PeopleRank) Update() {
	r.ExchangeDeliverableMessages()

	for _, c := range r.OpenConnections() {
		if c.IsTransferring() {
			continue
		}
		peer, ok := r.PeerOf(c)
		if !ok {
			continue
		}
		view, isPeopleRank := peer.Router.(PeopleRankPeerView)
		if !isPeopleRank || view.Rank() <= r.rank {
			continue
		}
		for _, m := range r.Host().Buffer.Messages() {
			if m.To == peer.ID || peer.Buffer.Has(m.ID) || peer.HasDelivered(m.ID) {
				continue
			}
			if res := r.World().Transfer(c, m, r.Host(), peer); res.OK() {
				break
			}
		}
	}
}

func (r *PeopleRank) StartTransfer(m *sim.Message, from sim.HostID) sim.ResultCode {
	return r.DefaultStartTransfer(m)
}

func (r *PeopleRank) ReceiveMessage(m *sim.Message, from sim.HostID) sim.ResultCode {
	return r.StoreIncoming(m)
}

func (r *PeopleRank) TransferDone(m *sim.Message, peer sim.HostID) {
	r.RecordForward(m.ID)
}
