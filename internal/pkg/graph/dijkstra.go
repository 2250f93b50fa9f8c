package graph

import (
	"container/heap"
	"math"
	"sync"
)

// DijkstraRouter computes shortest-path trees lazily, one per source vertex,
// and keeps them for later queries from the same source. It is safe for
// concurrent use; each tree is computed at most once.
type DijkstraRouter[L any] struct {
	graph *DirectedWeightedGraph[L]
	trees []shortestPathTree
}

type shortestPathTree struct {
	once     sync.Once
	dist     []float64
	prevEdge []EdgeID
}

const noEdge EdgeID = -1

// NewDijkstraRouter freezes g. The graph must not be modified afterwards.
func NewDijkstraRouter[L any](g *DirectedWeightedGraph[L]) *DijkstraRouter[L] {
	return &DijkstraRouter[L]{
		graph: g,
		trees: make([]shortestPathTree, g.VertexCount()),
	}
}

// BuildRoute returns a minimum-weight path from one vertex to another.
// Equal-cost alternatives are resolved the same way on every call.
func (r *DijkstraRouter[L]) BuildRoute(from, to VertexID) (RouteInfo, bool) {
	if !r.graph.valid(from) || !r.graph.valid(to) {
		return RouteInfo{}, false
	}
	tree := r.tree(from)
	if math.IsInf(tree.dist[to], 1) {
		return RouteInfo{}, false
	}

	var edges []EdgeID
	for v := to; v != from; {
		e := tree.prevEdge[v]
		edges = append(edges, e)
		v = r.graph.edges[e].From
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	return RouteInfo{Weight: tree.dist[to], Edges: edges}, true
}

func (r *DijkstraRouter[L]) tree(source VertexID) *shortestPathTree {
	t := &r.trees[source]
	t.once.Do(func() { r.compute(t, source) })
	return t
}

func (r *DijkstraRouter[L]) compute(t *shortestPathTree, source VertexID) {
	n := r.graph.VertexCount()
	t.dist = make([]float64, n)
	t.prevEdge = make([]EdgeID, n)
	for i := range t.dist {
		t.dist[i] = math.Inf(1)
		t.prevEdge[i] = noEdge
	}
	t.dist[source] = 0

	done := make([]bool, n)
	pq := &vertexQueue{{vertex: source}}
	for pq.Len() > 0 {
		item := heap.Pop(pq).(queueItem)
		u := item.vertex
		if done[u] {
			continue
		}
		done[u] = true

		for _, id := range r.graph.incident[u] {
			e := r.graph.edges[id]
			if done[e.To] {
				continue
			}
			if d := t.dist[u] + e.Weight; d < t.dist[e.To] {
				t.dist[e.To] = d
				t.prevEdge[e.To] = id
				heap.Push(pq, queueItem{dist: d, vertex: e.To})
			}
		}
	}
}

type queueItem struct {
	dist   float64
	vertex VertexID
}

// vertexQueue is a min-heap ordered by distance, then vertex id.
type vertexQueue []queueItem

func (q vertexQueue) Len() int { return len(q) }

func (q vertexQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].vertex < q[j].vertex
}

func (q vertexQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *vertexQueue) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *vertexQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
