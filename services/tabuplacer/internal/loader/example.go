package loader

import (
	"strconv"

	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/tpjson"
)

var (
	exampleCapacities = []float64{100, 120, 80, 150, 90}
	exampleDemands    = []float64{30, 50, 25, 40, 35, 60, 20, 45, 15, 55, 30, 25, 40, 30, 20}
)

// ExampleInstance is the built-in demo: 5 servers, 15 applications, 100 iterations, tenure 10, 20 moves per iteration.
func ExampleInstance() *tpjson.InstanceJson {
	ij := tpjson.NewInstanceJson()
	for i, c := range exampleCapacities {
		ij.AddResource(data.ResourceId("S"+strconv.Itoa(i+1)), c)
	}
	for i, d := range exampleDemands {
		ij.AddWorkload(data.WorkloadId("App-"+strconv.Itoa(i+1)), d)
	}
	maxIter := int32(100)
	tenure := int32(10)
	moves := int32(20)
	ij.SolverConfig = &tpjson.SolverConfigJson{
		MaxIterations:        &maxIter,
		TabuTenure:           &tenure,
		MaxMovesPerIteration: &moves,
	}
	return ij
}
