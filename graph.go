// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import "container/heap"

// GraphNode is one recorded beam-search node (spec.md §3, "Search graph").
type GraphNode struct {
	ID       int
	ParentID int
	Depth    int
	Text     string
	Gain     int
	Pattern  string
	Token    byte
}

// SearchGraph records every node and edge visited during a beam search,
// for post-hoc inspection and best-path reconstruction. Grounded on
// tscrunch.go's container/heap-based PriorityQueue/Graph.Shortest
// machinery, adapted from single-source-shortest-path over exact edge
// costs to a DAG walk over recorded nodes with predicted scores.
type SearchGraph struct {
	Nodes    []GraphNode
	MaxDepth int
	BestID   int
	BestGain int
}

func newSearchGraph() *SearchGraph {
	return &SearchGraph{BestID: -1}
}

// AddNode appends a node and keeps MaxDepth/BestID/BestGain up to date.
func (g *SearchGraph) AddNode(n GraphNode, cumulativeGain int) {
	g.Nodes = append(g.Nodes, n)
	if n.Depth > g.MaxDepth {
		g.MaxDepth = n.Depth
	}
	if g.BestID == -1 || cumulativeGain > g.BestGain {
		g.BestID = n.ID
		g.BestGain = cumulativeGain
	}
}

// BestPath walks parent pointers from id back to the root, returning
// node ids in root-to-leaf order.
func (g *SearchGraph) BestPath(id int) []int {
	byID := make(map[int]GraphNode, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	var path []int
	for id >= 0 {
		path = append(path, id)
		n, ok := byID[id]
		if !ok || n.ParentID == id {
			break
		}
		id = n.ParentID
	}

	// reverse into root-to-leaf order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// rankedItem is one entry in the beam's priority queue: a candidate
// state paired with the sort key used to keep the top-W states.
type rankedItem struct {
	state *SearchState
	key   float64
	index int
}

// rankedQueue is a max-heap of rankedItem by key, then by the state's
// cumulative gain, used by the beam to retain the best W states at each
// iteration, grounded on tscrunch.go's heap.Interface PriorityQueue.
type rankedQueue []*rankedItem

func (q rankedQueue) Len() int { return len(q) }
func (q rankedQueue) Less(i, j int) bool {
	if q[i].key != q[j].key {
		return q[i].key > q[j].key // max-heap: highest key first
	}
	return q[i].state.Gain > q[j].state.Gain // equal keys: higher gain first
}
func (q rankedQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *rankedQueue) Push(x any) {
	item := x.(*rankedItem)
	item.index = len(*q)
	*q = append(*q, item)
}
func (q *rankedQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// topW returns the top-W states from candidates by key, highest first.
func topW(candidates []*SearchState, keys []float64, w int) []*SearchState {
	q := make(rankedQueue, 0, len(candidates))
	heap.Init(&q)
	for i, c := range candidates {
		heap.Push(&q, &rankedItem{state: c, key: keys[i]})
	}

	out := make([]*SearchState, 0, w)
	for q.Len() > 0 && len(out) < w {
		item := heap.Pop(&q).(*rankedItem)
		out = append(out, item.state)
	}
	return out
}
