package dgraph

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tarstars/nodag/golang/nodag/pgl"
	"github.com/tarstars/nodag/golang/nodag/sem"
	"gonum.org/v1/gonum/mat"
)

func learnedMatrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0.7, 1.2, 0,
		0, 0, -0.4,
		1e-9, 0, 0,
	})
}

func TestBuildExactZero(t *testing.T) {
	g, err := Build(learnedMatrix(), 0)
	require.NoError(t, err)
	require.Equal(t, 3, g.N)
	require.Equal(t, []Edge{
		{From: 0, To: 1, Weight: 1.2},
		{From: 1, To: 2, Weight: -0.4},
		{From: 2, To: 0, Weight: 1e-9},
	}, g.Edges())
	require.False(t, g.HasEdge(0, 0), "diagonal is never an edge")
}

func TestBuildTolerance(t *testing.T) {
	g, err := Build(learnedMatrix(), 1e-6)
	require.NoError(t, err)
	require.Equal(t, 2, g.Len())
	require.True(t, g.HasEdge(0, 1))
	require.True(t, g.HasEdge(1, 2))
	require.False(t, g.HasEdge(2, 0))
	require.False(t, g.HasEdge(1, 0))

	g, err = Build(learnedMatrix(), 0.5)
	require.NoError(t, err)
	require.Equal(t, []Edge{{From: 0, To: 1, Weight: 1.2}}, g.Edges())
}

func TestBuildRejectsBadInput(t *testing.T) {
	_, err := Build(mat.NewDense(2, 3, nil), 0)
	require.ErrorIs(t, err, ErrNotSquare)
	_, err = Build(nil, 0)
	require.ErrorIs(t, err, ErrNotSquare)
	for _, tolerance := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err = Build(learnedMatrix(), tolerance)
		require.ErrorIs(t, err, ErrInvalidTolerance)
	}
}

func TestEdgesAreACopy(t *testing.T) {
	g, err := Build(learnedMatrix(), 0)
	require.NoError(t, err)

	edges := g.Edges()
	edges[0], edges[2] = edges[2], edges[0]
	edges[1].Weight = 100

	require.True(t, g.HasEdge(0, 1))
	require.True(t, g.HasEdge(2, 0))
	require.Equal(t, -0.4, g.Edges()[1].Weight)
}

func TestDegreesAndAdjacency(t *testing.T) {
	g, err := Build(learnedMatrix(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, g.OutDegree(0))
	require.Equal(t, 1, g.InDegree(0))
	require.Equal(t, 0, g.OutDegree(5))

	want := learnedMatrix()
	want.Set(0, 0, 0)
	require.True(t, mat.Equal(want, g.Adjacency()))

	back, err := Build(g.Adjacency(), 0)
	require.NoError(t, err)
	require.Equal(t, g, back)
}

func TestLearnedQuadraticHasSingleEdge(t *testing.T) {
	a0, err := pgl.Zeros(2)
	require.NoError(t, err)
	oracle := sem.Quadratic{Target: mat.NewDense(2, 2, []float64{0, 2, 0, 0})}
	cfg := pgl.Config{MaxIters: 100, LambdaParam: 0.1, StepSize: 0.5, ConvThreshold: 1e-6}

	result, err := pgl.ProximalGradient(context.Background(), a0, cfg, oracle)
	require.NoError(t, err)
	require.Equal(t, pgl.Converged, result.Status)

	g, err := Build(result.Matrix, 0)
	require.NoError(t, err)
	edges := g.Edges()
	require.Len(t, edges, 1)
	require.Equal(t, 0, edges[0].From)
	require.Equal(t, 1, edges[0].To)
	require.InDelta(t, 1.9, edges[0].Weight, 1e-4)
}

func TestModelRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := pgl.Config{MaxIters: 10, LambdaParam: 0.1, StepSize: 0.5, ConvThreshold: 1e-6}
	model := NewModel(cfg, pgl.Result{
		Matrix:      learnedMatrix(),
		Status:      pgl.Exhausted,
		Iterations:  10,
		Loss:        0.25,
		LossHistory: []float64{1, 0.5, 0.25},
	}, []string{"rain", "sprinkler", "wet"})

	fileName := filepath.Join(dir, "model.json")
	require.NoError(t, model.Save(fileName))
	back, err := LoadModel(fileName)
	require.NoError(t, err)
	require.Equal(t, model, back)

	a, err := back.Dense()
	require.NoError(t, err)
	require.True(t, mat.Equal(learnedMatrix(), a))

	raw, err := os.ReadFile(fileName)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"status": "exhausted"`)

	curveName := filepath.Join(dir, "curve.json")
	require.NoError(t, back.DumpLearningCurve(curveName))
	raw, err = os.ReadFile(curveName)
	require.NoError(t, err)
	var dump LearningCurveDump
	require.NoError(t, json.Unmarshal(raw, &dump))
	require.Equal(t, []float64{1, 0.5, 0.25}, dump.Values)
	require.Equal(t, pgl.Exhausted, dump.Status)
}

func TestModelRejectsRaggedMatrix(t *testing.T) {
	_, err := Model{Matrix: [][]float64{{0, 1}, {0}}}.Dense()
	require.ErrorIs(t, err, ErrNotSquare)
	_, err = Model{}.Graph(0)
	require.ErrorIs(t, err, ErrNotSquare)
}

func TestNodeName(t *testing.T) {
	names := []string{"rain", " "}
	require.Equal(t, "rain", NodeName(names, 0))
	require.Equal(t, "x1", NodeName(names, 1))
	require.Equal(t, "x7", NodeName(names, 7))
}

func TestRenderDot(t *testing.T) {
	g, err := Build(learnedMatrix(), 1e-6)
	require.NoError(t, err)

	fileName := filepath.Join(t.TempDir(), "graph.dot")
	require.NoError(t, g.Render([]string{"rain", "sprinkler", "wet"}, "dot", fileName))
	raw, err := os.ReadFile(fileName)
	require.NoError(t, err)
	require.Contains(t, string(raw), "sprinkler")

	require.Error(t, g.Render(nil, "bmp", fileName))

	broken := Graph{N: 2, edges: []Edge{{From: 0, To: 5, Weight: 1}}}
	graphViz, graph, err := broken.DrawGraph(nil)
	require.Error(t, err)
	require.Nil(t, graphViz)
	require.Nil(t, graph)
}
