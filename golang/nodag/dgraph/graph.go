package dgraph

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotSquare        = errors.New("dgraph: adjacency matrix is not square")
	ErrInvalidTolerance = errors.New("dgraph: tolerance must be a non-negative finite number")
)

//Edge is a directed edge From -> To carrying the matrix weight A[From][To].
type Edge struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Weight float64 `json:"weight"`
}

//Graph is an immutable set of directed edges over the nodes 0..N-1,
//sorted by From and then by To. It never contains self-loops.
type Graph struct {
	N     int
	edges []Edge
}

//Edges returns a copy of the edge set in From, To order.
func (g Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

//Len is the number of edges.
func (g Graph) Len() int { return len(g.edges) }

//Build maps the adjacency matrix a to a graph: every off-diagonal entry with
//|a[i][j]| > tolerance becomes the edge i -> j. With tolerance 0 every non-zero entry is an edge.
func Build(a mat.Matrix, tolerance float64) (Graph, error) {
	if math.IsNaN(tolerance) || math.IsInf(tolerance, 0) || tolerance < 0 {
		return Graph{}, fmt.Errorf("%w, got %g", ErrInvalidTolerance, tolerance)
	}
	if a == nil {
		return Graph{}, fmt.Errorf("%w: nil matrix", ErrNotSquare)
	}
	r, c := a.Dims()
	if r != c {
		return Graph{}, fmt.Errorf("%w: %dx%d", ErrNotSquare, r, c)
	}

	edges := make([]Edge, 0)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			w := a.At(i, j)
			if i != j && math.Abs(w) > tolerance {
				edges = append(edges, Edge{From: i, To: j, Weight: w})
			}
		}
	}
	return Graph{N: r, edges: edges}, nil
}

//HasEdge reports whether from -> to is an edge.
func (g Graph) HasEdge(from, to int) bool {
	k := sort.Search(len(g.edges), func(k int) bool {
		e := g.edges[k]
		return e.From > from || (e.From == from && e.To >= to)
	})
	return k < len(g.edges) && g.edges[k].From == from && g.edges[k].To == to
}

//OutDegree is the number of edges leaving node.
func (g Graph) OutDegree(node int) int {
	degree := 0
	for _, e := range g.edges {
		if e.From == node {
			degree++
		}
	}
	return degree
}

//InDegree is the number of edges entering node.
func (g Graph) InDegree(node int) int {
	degree := 0
	for _, e := range g.edges {
		if e.To == node {
			degree++
		}
	}
	return degree
}

//Adjacency rebuilds the weighted adjacency matrix of the graph.
func (g Graph) Adjacency() *mat.Dense {
	if g.N == 0 {
		return &mat.Dense{}
	}
	a := mat.NewDense(g.N, g.N, nil)
	for _, e := range g.edges {
		a.Set(e.From, e.To, e.Weight)
	}
	return a
}
