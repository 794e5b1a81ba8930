// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchGraph_AddNodeTracksBest(t *testing.T) {
	g := newSearchGraph()
	g.AddNode(GraphNode{ID: 0, ParentID: -1, Depth: 0}, 0)
	g.AddNode(GraphNode{ID: 1, ParentID: 0, Depth: 1}, 5)
	g.AddNode(GraphNode{ID: 2, ParentID: 0, Depth: 1}, 3)

	assert.Equal(t, 1, g.MaxDepth)
	assert.Equal(t, 1, g.BestID)
	assert.Equal(t, 5, g.BestGain)
}

func TestSearchGraph_BestPath(t *testing.T) {
	g := newSearchGraph()
	g.AddNode(GraphNode{ID: 0, ParentID: -1, Depth: 0}, 0)
	g.AddNode(GraphNode{ID: 1, ParentID: 0, Depth: 1}, 1)
	g.AddNode(GraphNode{ID: 2, ParentID: 1, Depth: 2}, 2)

	path := g.BestPath(2)
	assert.Equal(t, []int{0, 1, 2}, path)
}

func TestTopW(t *testing.T) {
	states := []*SearchState{{NodeID: 1}, {NodeID: 2}, {NodeID: 3}, {NodeID: 4}}
	keys := []float64{3, 1, 4, 2}

	top := topW(states, keys, 2)
	require.Len(t, top, 2)
	assert.Equal(t, 3, top[0].NodeID, "highest key first")
	assert.Equal(t, 1, top[1].NodeID)
}

func TestTopW_WiderThanCandidates(t *testing.T) {
	states := []*SearchState{{NodeID: 1}, {NodeID: 2}}
	keys := []float64{1, 2}

	top := topW(states, keys, 10)
	assert.Len(t, top, 2)
}
