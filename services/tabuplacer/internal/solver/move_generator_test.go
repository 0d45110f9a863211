package solver

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/config"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/costfunc"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
)

func requireValidMoves(t *testing.T, state *costfunc.SolutionState, moves []costfunc.Move) {
	seen := map[string]bool{}
	for _, move := range moves {
		require.NotEqual(t, move.Src, move.Dst)
		rid, ok := state.ResourceOf(move.Workload)
		require.True(t, ok)
		require.Equal(t, rid, move.Src)
		require.False(t, seen[move.GetSignature()], "duplicate %s", move.GetSignature())
		seen[move.GetSignature()] = true
	}
}

func TestMoveCap(t *testing.T) {
	assert.Equal(t, 30, MoveCap(100, 5, 0))
	assert.Equal(t, 12, MoveCap(12, 5, 0))
	assert.Equal(t, 7, MoveCap(100, 5, 7))
	assert.Equal(t, 3, MoveCap(3, 5, 7))
	assert.Equal(t, 0, MoveCap(0, 1, 0))
}

func TestGenerateMovesFullNeighborhood(t *testing.T) {
	inst := twoByTwo(t)
	state := allOn(t, inst, "r1")
	assert.Equal(t, 2, NeighborhoodSize(state))

	mg := NewMoveGenerator(rand.New(rand.NewSource(1)), config.SM_Shuffle)
	moves := mg.GenerateMoves(state, 0)
	assert.Len(t, moves, 2)
	requireValidMoves(t, state, moves)
	// the improving move from the 60.8 state must be in the neighborhood
	assert.Contains(t, moves, costfunc.NewMove("r1", "r2", "w4"))
}

func TestGenerateMovesTruncates(t *testing.T) {
	inst := fiveByFifteen(t)
	state := allOn(t, inst, "s2")
	// 15 workloads * 4 destinations
	assert.Equal(t, 60, NeighborhoodSize(state))
	for _, mode := range []config.SamplingMode{config.SM_Shuffle, config.SM_Reservoir} {
		mg := NewMoveGenerator(rand.New(rand.NewSource(3)), mode)
		moves := mg.GenerateMoves(state, 0)
		assert.Len(t, moves, 30, string(mode))
		requireValidMoves(t, state, moves)

		moves = mg.GenerateMoves(state, 20)
		assert.Len(t, moves, 20, string(mode))
		requireValidMoves(t, state, moves)

		moves = mg.GenerateMoves(state, 1000)
		assert.Len(t, moves, 60, string(mode))
		requireValidMoves(t, state, moves)
	}
}

func TestGenerateMovesEmptySourceContributesNothing(t *testing.T) {
	inst := newInstance(t, []float64{10, 10, 10}, []float64{1, 2})
	state := allOn(t, inst, "s1")
	mg := NewMoveGenerator(rand.New(rand.NewSource(5)), config.SM_Shuffle)
	moves := mg.GenerateMoves(state, 0)
	assert.Len(t, moves, 4)
	for _, move := range moves {
		assert.Equal(t, data.ResourceId("s1"), move.Src)
	}
}

func TestGenerateMovesSingleResource(t *testing.T) {
	inst := newInstance(t, []float64{10}, []float64{5})
	state := allOn(t, inst, "s1")
	for _, mode := range []config.SamplingMode{config.SM_Shuffle, config.SM_Reservoir} {
		moves := NewMoveGenerator(rand.New(rand.NewSource(1)), mode).GenerateMoves(state, 0)
		assert.Empty(t, moves)
	}
}

func TestGenerateMovesNoWorkloads(t *testing.T) {
	inst := newInstance(t, []float64{10, 20}, nil)
	state, err := costfunc.NewSolutionState(inst, nil)
	require.Nil(t, err)
	assert.Empty(t, NewMoveGenerator(rand.New(rand.NewSource(1)), config.SM_Shuffle).GenerateMoves(state, 0))
}

func TestReservoirCoversNeighborhood(t *testing.T) {
	// every move of a 60 move neighborhood shows up across repeated samples of 5
	inst := fiveByFifteen(t)
	state := allOn(t, inst, "s1")
	mg := NewMoveGenerator(rand.New(rand.NewSource(11)), config.SM_Reservoir)
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		for _, move := range mg.GenerateMoves(state, 5) {
			seen[move.GetSignature()] = true
		}
	}
	assert.Len(t, seen, 60)
}
