package engine

import (
	"sort"

	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

// node is one layer in the dependency graph. Edges point from a layer to
// the layers it consumes.
type node struct {
	Name         string
	Dependencies []string
	Dependents   []string
}

// Graph is the layer dependency graph, reconstructed from operation
// source lists at resolution time; it is never persisted.
type Graph struct {
	Nodes map[string]*node
}

func NewGraph() *Graph {
	return &Graph{Nodes: make(map[string]*node)}
}

func (g *Graph) addNode(name string) *node {
	if n, ok := g.Nodes[name]; ok {
		return n
	}
	n := &node{Name: name}
	g.Nodes[name] = n
	return n
}

func (g *Graph) addDependency(name, dependsOn string) {
	if name == dependsOn {
		return
	}
	n := g.addNode(name)
	d := g.addNode(dependsOn)
	for _, existing := range n.Dependencies {
		if existing == dependsOn {
			return
		}
	}
	n.Dependencies = append(n.Dependencies, dependsOn)
	d.Dependents = append(d.Dependents, name)
}

// BuildGraph derives the dependency graph from every registered layer's
// operation chain, including the ephemeral temp layers that nested
// sub-operations will materialize.
func BuildGraph(layers map[string]*types.Layer) *Graph {
	g := NewGraph()
	for name, layer := range layers {
		g.addNode(name)
		for _, op := range layer.Operations {
			addOpEdges(g, name, name, op)
		}
	}
	return g
}

func addOpEdges(g *Graph, layerName, parent string, op *types.OperationSpec) {
	for _, src := range op.Sources {
		g.addDependency(layerName, src.Layer)
	}
	for _, nested := range op.Nested {
		tempName := types.TempLayerName(parent, nested.Type)
		g.addDependency(layerName, tempName)
		g.addNode(tempName)
		addOpEdges(g, tempName, tempName, nested)
	}
}

// TopologicalSort returns the layer names in dependency order, leaves
// first, using Kahn's algorithm. Names at the same depth come out in
// lexical order so runs are reproducible. A cycle yields a CycleError
// naming the layers on it.
func (g *Graph) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	for name, n := range g.Nodes {
		inDegree[name] = len(n.Dependencies)
	}

	var queue []string
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(g.Nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		var freed []string
		for _, dependent := range g.Nodes[current].Dependents {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				freed = append(freed, dependent)
			}
		}
		sort.Strings(freed)
		queue = append(queue, freed...)
	}

	if len(order) != len(g.Nodes) {
		return nil, errors.NewCycleError(g.findCycle())
	}
	return order, nil
}

// findCycle walks the graph depth first and returns the first cycle path
// it encounters.
func (g *Graph) findCycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string
	var cycle []string

	var dfs func(name string) bool
	dfs = func(name string) bool {
		visited[name] = true
		onStack[name] = true
		stack = append(stack, name)
		for _, dep := range g.Nodes[name].Dependencies {
			if onStack[dep] {
				// Slice the stack from the first occurrence of dep.
				for i, s := range stack {
					if s == dep {
						cycle = append(append([]string{}, stack[i:]...), dep)
						return true
					}
				}
			}
			if !visited[dep] && dfs(dep) {
				return true
			}
		}
		onStack[name] = false
		stack = stack[:len(stack)-1]
		return false
	}

	names := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !visited[name] && dfs(name) {
			break
		}
	}
	return cycle
}

// Subgraph returns the names reachable from root through dependency
// edges, root included.
func (g *Graph) Subgraph(root string) map[string]bool {
	reach := map[string]bool{}
	var walk func(name string)
	walk = func(name string) {
		if reach[name] {
			return
		}
		reach[name] = true
		if n, ok := g.Nodes[name]; ok {
			for _, dep := range n.Dependencies {
				walk(dep)
			}
		}
	}
	walk(root)
	return reach
}
