package dgraph

import (
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

var graphvizFormats = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"jpg": graphviz.JPG,
	"dot": graphviz.XDOT,
}

//NodeName returns the label of node: names[node] if present, otherwise "x<node>".
func NodeName(names []string, node int) string {
	if node < len(names) && strings.TrimSpace(names[node]) != "" {
		return names[node]
	}
	return fmt.Sprintf("x%d", node)
}

//DrawGraph builds a graphviz graph with one node per variable and one labelled edge per Edge.
//The caller closes both returned values. On error nothing is left open.
func (g Graph) DrawGraph(names []string) (*graphviz.Graphviz, *cgraph.Graph, error) {
	graphViz := graphviz.New()
	graph, err := graphViz.Graph()
	if err != nil {
		graphViz.Close()
		return nil, nil, err
	}
	if err := g.fill(graph, names); err != nil {
		graph.Close()
		graphViz.Close()
		return nil, nil, err
	}
	return graphViz, graph, nil
}

func (g Graph) fill(graph *cgraph.Graph, names []string) error {
	nodes := make([]*cgraph.Node, g.N)
	for ind := 0; ind < g.N; ind++ {
		node, err := graph.CreateNode(fmt.Sprint(ind))
		if err != nil {
			return fmt.Errorf("dgraph: node %d: %w", ind, err)
		}
		node.Set("label", NodeName(names, ind))
		if g.InDegree(ind) == 0 && g.OutDegree(ind) == 0 {
			node.Set("style", "dashed")
		}
		nodes[ind] = node
	}

	for _, e := range g.edges {
		if e.From < 0 || e.From >= g.N || e.To < 0 || e.To >= g.N {
			return fmt.Errorf("dgraph: edge %d -> %d outside %d nodes", e.From, e.To, g.N)
		}
		edge, err := graph.CreateEdge(fmt.Sprintf("%d_%d", e.From, e.To), nodes[e.From], nodes[e.To])
		if err != nil {
			return fmt.Errorf("dgraph: edge %d -> %d: %w", e.From, e.To, err)
		}
		edge.SetLabel(fmt.Sprintf("%.3g", e.Weight))
		if e.Weight < 0 {
			edge.SetColor("red")
		}
	}
	return nil
}

//Render writes the picture of the graph to fileName. figureType is one of png, svg, jpg or dot.
func (g Graph) Render(names []string, figureType, fileName string) error {
	format, ok := graphvizFormats[figureType]
	if !ok {
		return fmt.Errorf("dgraph: unsupported figure type %q", figureType)
	}

	graphViz, graph, err := g.DrawGraph(names)
	if err != nil {
		return err
	}
	defer graphViz.Close()
	defer graph.Close()

	return graphViz.RenderFilename(graph, format, fileName)
}
