package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"

	"github.com/tarstars/nodag/golang/nodag/dgraph"
	"github.com/tarstars/nodag/golang/nodag/pgl"
	"github.com/tarstars/nodag/golang/nodag/sem"
	"gonum.org/v1/gonum/mat"
)

func handleError(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func initialMatrix(learnConfig LearnConfig, n int) (*mat.Dense, error) {
	switch learnConfig.Init {
	case "", "zeros":
		return pgl.Zeros(n)
	case "random":
		return pgl.RandomNormal(n, learnConfig.InitStddev, uint64(learnConfig.Seed))
	default:
		return nil, fmt.Errorf("unknown init policy %q", learnConfig.Init)
	}
}

func learn(ctx context.Context, srcConfig string) error {
	var learnConfig LearnConfig
	if err := decodeConfig(srcConfig, &learnConfig); err != nil {
		return err
	}

	x, err := sem.ReadNpy(learnConfig.FileNameData)
	if err != nil {
		return err
	}
	if learnConfig.Standardize {
		x = sem.Standardize(x)
	}
	oracle, err := sem.NewLeastSquares(x)
	if err != nil {
		return err
	}
	if lipschitz, err := oracle.Lipschitz(); err == nil && learnConfig.Optimizer.StepSize*lipschitz > 1 {
		log.Printf("step_size %g exceeds 1/L = %g, the loss may not decrease monotonically", learnConfig.Optimizer.StepSize, 1/lipschitz)
	}

	_, n := x.Dims()
	a0, err := initialMatrix(learnConfig, n)
	if err != nil {
		return err
	}

	opts := []pgl.Option{pgl.WithLogger(log.Default())}
	if learnConfig.ZeroDiagonal {
		opts = append(opts, pgl.WithZeroDiagonal())
	}
	var trace *pgl.Trace
	if learnConfig.FileNameTrace != "" {
		capacity := learnConfig.TraceCapacity
		if capacity == 0 {
			capacity = learnConfig.Optimizer.MaxIters
		}
		if trace, err = pgl.NewTrace(capacity, n); err != nil {
			return err
		}
		opts = append(opts, pgl.WithTrace(trace))
	}

	result, err := pgl.ProximalGradient(ctx, a0, learnConfig.Optimizer, oracle, opts...)
	if err != nil {
		return err
	}
	log.Printf("%s after %d iterations, loss = %g", result.Status, result.Iterations, result.Loss)

	model := dgraph.NewModel(learnConfig.Optimizer, result, learnConfig.Names)
	if err := model.Save(learnConfig.FileNameModel); err != nil {
		return err
	}
	if learnConfig.FileNameMatrix != "" {
		if err := sem.WriteNpy(learnConfig.FileNameMatrix, result.Matrix); err != nil {
			return err
		}
	}
	if trace != nil {
		iterates, err := trace.Flatten()
		if err != nil {
			return err
		}
		log.Printf("%d of %d iterates go to %s", trace.Len(), result.Iterations, learnConfig.FileNameTrace)
		if err := sem.WriteNpy(learnConfig.FileNameTrace, iterates); err != nil {
			return err
		}
	}

	learned, err := dgraph.Build(result.Matrix, learnConfig.Tolerance)
	if err != nil {
		return err
	}
	log.Printf("%d edges between %d variables", learned.Len(), learned.N)
	if learnConfig.FileNamePicture != "" {
		figureType := learnConfig.FigureType
		if figureType == "" {
			figureType = "svg"
		}
		return learned.Render(learnConfig.Names, figureType, learnConfig.FileNamePicture)
	}
	return nil
}

func graph(_ context.Context, srcConfig string) error {
	var graphConfig GraphConfig
	if err := decodeConfig(srcConfig, &graphConfig); err != nil {
		return err
	}

	model, err := dgraph.LoadModel(graphConfig.ModelFileName)
	if err != nil {
		return err
	}
	g, err := model.Graph(graphConfig.Tolerance)
	if err != nil {
		return err
	}
	return g.Render(model.Names, graphConfig.FigureType, graphConfig.PictureFileName)
}

func lcurve(_ context.Context, srcConfig string) error {
	var lcurveConfig LcurveConfig
	if err := decodeConfig(srcConfig, &lcurveConfig); err != nil {
		return err
	}

	model, err := dgraph.LoadModel(lcurveConfig.ModelFileName)
	if err != nil {
		return err
	}
	return model.DumpLearningCurve(lcurveConfig.LearningCurveFileName)
}

func edges(_ context.Context, srcConfig string) error {
	var edgesConfig EdgesConfig
	if err := decodeConfig(srcConfig, &edgesConfig); err != nil {
		return err
	}

	model, err := dgraph.LoadModel(edgesConfig.ModelFileName)
	if err != nil {
		return err
	}
	g, err := model.Graph(edgesConfig.Tolerance)
	if err != nil {
		return err
	}
	for _, e := range g.Edges() {
		fmt.Printf("%s -> %s\t%.6g\n", dgraph.NodeName(model.Names, e.From), dgraph.NodeName(model.Names, e.To), e.Weight)
	}
	return nil
}

func simulate(_ context.Context, srcConfig string) error {
	var simulateConfig SimulateConfig
	if err := decodeConfig(srcConfig, &simulateConfig); err != nil {
		return err
	}

	a, err := sem.ReadNpy(simulateConfig.FileNameAdjacency)
	if err != nil {
		return err
	}
	x, err := sem.Simulate(a, simulateConfig.Samples, simulateConfig.Noise, uint64(simulateConfig.Seed))
	if err != nil {
		return err
	}
	return sem.WriteNpy(simulateConfig.FileNameData, x)
}

var modes = map[string]func(context.Context, string) error{
	"learn":    learn,
	"graph":    graph,
	"lcurve":   lcurve,
	"edges":    edges,
	"simulate": simulate,
}

func main() {
	runMode := flag.String("mode", "learn", "you can select either 'learn', 'graph', 'lcurve', 'edges' or 'simulate' modes")
	config := flag.String("config", "nodag_config.json", "a config file for the run of the program, .json or .hcl")
	memprofile := flag.String("memprofile", "", "write memory profile to `file`")

	flag.Parse()

	run, ok := modes[*runMode]
	if !ok {
		log.Fatalf("unknown mode %q", *runMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	handleError(run(ctx, *config))

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		handleError(err)
		defer func() { handleError(f.Close()) }()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}
}
