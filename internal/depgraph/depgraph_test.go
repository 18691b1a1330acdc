package depgraph

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetDependentsDirectEdge(t *testing.T) {
	g := New()
	g.AddEdge("a.rho", "b.rho")

	require.ElementsMatch(t, []string{"a.rho"}, g.GetDependents("b.rho"))
	require.Empty(t, g.GetDependents("a.rho"))
}

func TestGetDependentsTransitiveClosure(t *testing.T) {
	g := New()
	// c depends on b, b depends on a: changing a must dirty both b and c.
	g.AddEdge("c.rho", "b.rho")
	g.AddEdge("b.rho", "a.rho")

	dependents := g.GetDependents("a.rho")
	sort.Strings(dependents)
	require.Equal(t, []string{"b.rho", "c.rho"}, dependents)
}

func TestGetDependentsNoSelfInclusion(t *testing.T) {
	g := New()
	g.AddEdge("a.rho", "a.rho")

	require.NotContains(t, g.GetDependents("a.rho"), "a.rho")
}

func TestRemoveEdgesFromDropsStaleReferences(t *testing.T) {
	g := New()
	g.AddEdge("a.rho", "b.rho")
	g.AddEdge("a.rho", "c.rho")
	require.ElementsMatch(t, []string{"a.rho"}, g.GetDependents("b.rho"))

	g.RemoveEdgesFrom("a.rho")

	require.Empty(t, g.GetDependents("b.rho"))
	require.Empty(t, g.GetDependents("c.rho"))
}

func TestRemoveEdgesFromThenReAdd(t *testing.T) {
	g := New()
	g.AddEdge("a.rho", "b.rho")
	g.RemoveEdgesFrom("a.rho")
	g.AddEdge("a.rho", "c.rho")

	require.Empty(t, g.GetDependents("b.rho"))
	require.ElementsMatch(t, []string{"a.rho"}, g.GetDependents("c.rho"))
}

func TestGetDependentsDiamond(t *testing.T) {
	g := New()
	// d depends on b and c, both of which depend on a.
	g.AddEdge("d.rho", "b.rho")
	g.AddEdge("d.rho", "c.rho")
	g.AddEdge("b.rho", "a.rho")
	g.AddEdge("c.rho", "a.rho")

	dependents := g.GetDependents("a.rho")
	sort.Strings(dependents)
	require.Equal(t, []string{"b.rho", "c.rho", "d.rho"}, dependents)
}
