package pointgeo_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/pointgeo"
	"github.com/hupe1980/pointgeo/config"
	"github.com/hupe1980/pointgeo/model"
	"github.com/hupe1980/pointgeo/testutil"
)

// Example_setAbstraction samples 32 centroids, groups 16 neighbors within 0.25 of
// each and max-pools the centered coordinates followed by the input features.
func Example_setAbstraction() {
	ctx := context.Background()
	rng := testutil.NewRNG(42)
	xyz := rng.UniformCloud(2, 256, 3)
	feats := rng.UniformCloud(2, 256, 6)

	eng, err := pointgeo.New(pointgeo.WithWorkers(4))
	if err != nil {
		log.Fatal(err)
	}

	stage := config.SetAbstraction{NPoint: 32, Radius: 0.25, NSample: 16, UseXYZ: true}
	out, err := eng.SetAbstraction(ctx, xyz, &feats, stage, nil)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("centroids:", out.Centroids.Shape())
	fmt.Println("features:", out.Features.Shape())
	fmt.Println("indices:", out.Indices.Shape())
	// Output:
	// centroids: (2, 32, 3)
	// features: (2, 32, 9)
	// indices: (2, 32, 16)
}

// Example_interpolate propagates features from eight points on a line to a
// point halfway between two of them.
func Example_interpolate() {
	sparse := testutil.LineCloud(8)
	values := testutil.LineFeatures(8)
	dense, _ := model.NewPointSet(1, 1, 3, []float32{3.5, 0, 0})

	eng, err := pointgeo.New()
	if err != nil {
		log.Fatal(err)
	}
	out, err := eng.Interpolate(context.Background(), dense, sparse, values)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%.4f\n", out.Data[0])
	// Output: 3.2857
}

// Example_metrics collects in-memory statistics while running a query.
func Example_metrics() {
	metrics := &pointgeo.BasicMetricsCollector{}
	eng, _ := pointgeo.New(pointgeo.WithMetricsCollector(metrics))

	xyz := testutil.NewRNG(1).UniformCloud(1, 100, 3)
	_, _, _ = eng.KNN(context.Background(), xyz, xyz, 4)

	stats := metrics.GetStats()
	fmt.Println("queries:", stats.QueryCount, "points:", stats.QueryPoints)
	// Output: queries: 1 points: 100
}
