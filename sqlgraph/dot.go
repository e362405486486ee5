package sqlgraph

import (
	"fmt"
	"strings"
)

// DOT renders the graph in Graphviz format. Nodes are numbered in
// definition order and edges point from a dependency to its dependent.
func (g *Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph {\n")
	fmt.Fprintf(&b, "    label = %q\n", g.control.Name+" "+g.control.Version)
	for i, n := range g.nodes {
		fmt.Fprintf(&b, "    %d [ label = %q shape = %s ]\n", i, n.entity.Key().String(), shapeOf(n.entity.Key().Kind))
	}
	for i, n := range g.nodes {
		for _, d := range n.deps {
			fmt.Fprintf(&b, "    %d -> %d [ ]\n", d, i)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func shapeOf(k Kind) string {
	switch k {
	case KindSchema:
		return "folder"
	case KindEnum, KindType:
		return "box"
	case KindCustomSQL:
		return "note"
	}
	return "ellipse"
}
