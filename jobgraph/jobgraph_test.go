package jobgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopoOrderSimpleChain(t *testing.T) {
	a := &Node{ID: "a"}
	b := &Node{ID: "b", DependsOn: []string{"a"}}
	c := &Node{ID: "c", DependsOn: []string{"b"}}

	order, err := TopoOrder([]*Node{c, a, b})
	require.NoError(t, err)
	require.Len(t, order, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(order))
}

func TestTopoOrderDiamond(t *testing.T) {
	a := &Node{ID: "a"}
	b := &Node{ID: "b", DependsOn: []string{"a"}}
	c := &Node{ID: "c", DependsOn: []string{"a"}}
	d := &Node{ID: "d", DependsOn: []string{"b", "c"}}

	order, err := TopoOrder([]*Node{d, c, b, a})
	require.NoError(t, err)
	pos := indexOf(order)
	assert.Less(t, pos["a"], pos["b"])
	assert.Less(t, pos["a"], pos["c"])
	assert.Less(t, pos["b"], pos["d"])
	assert.Less(t, pos["c"], pos["d"])
}

func TestTopoOrderCycle(t *testing.T) {
	a := &Node{ID: "a", DependsOn: []string{"b"}}
	b := &Node{ID: "b", DependsOn: []string{"a"}}

	order, err := TopoOrder([]*Node{a, b})
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, 0, cycleErr.OrderedPackages)
	assert.Equal(t, 2, cycleErr.TotalPackages)
	assert.Len(t, order, 0)
}

func TestTopoOrderUnknownDependency(t *testing.T) {
	a := &Node{ID: "a", DependsOn: []string{"missing"}}
	_, err := TopoOrder([]*Node{a})
	require.Error(t, err)
}

func ids(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func indexOf(nodes []*Node) map[string]int {
	m := make(map[string]int, len(nodes))
	for i, n := range nodes {
		m[n.ID] = i
	}
	return m
}
