package solver

import (
	"math/rand"

	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/config"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/costfunc"
)

// MoveGenerator samples the single-relocation neighborhood of a state.
type MoveGenerator struct {
	rng  *rand.Rand
	mode config.SamplingMode
}

func NewMoveGenerator(rng *rand.Rand, mode config.SamplingMode) *MoveGenerator {
	return &MoveGenerator{rng: rng, mode: mode}
}

// NeighborhoodSize is sum(workloads on A) * (resourceCount - 1).
func NeighborhoodSize(state *costfunc.SolutionState) int {
	n := state.Instance().ResourceCount()
	if n < 2 {
		return 0
	}
	return state.Instance().WorkloadCount() * (n - 1)
}

// MoveCap returns how many moves one iteration samples. maxMoves <= 0 means 20 + 2 * resourceCount.
func MoveCap(full int, resourceCount int, maxMoves int) int {
	if maxMoves <= 0 {
		maxMoves = 20 + 2*resourceCount
	}
	if full < maxMoves {
		return full
	}
	return maxMoves
}

// visitMoves enumerates every (w on A, B != A) in instance resource order.
func visitMoves(state *costfunc.SolutionState, visitor func(move costfunc.Move)) {
	rids := state.Instance().ResourceIds()
	for _, src := range rids {
		for _, wid := range state.WorkloadsOn(src) {
			for _, dst := range rids {
				if dst != src {
					visitor(costfunc.NewMove(src, dst, wid))
				}
			}
		}
	}
}

// GenerateMoves returns a uniformly random subset of the neighborhood, in random order.
func (mg *MoveGenerator) GenerateMoves(state *costfunc.SolutionState, maxMoves int) []costfunc.Move {
	full := NeighborhoodSize(state)
	k := MoveCap(full, state.Instance().ResourceCount(), maxMoves)
	if k == 0 {
		return []costfunc.Move{}
	}
	if mg.mode == config.SM_Reservoir {
		return mg.reservoir(state, k)
	}
	moves := make([]costfunc.Move, 0, full)
	visitMoves(state, func(move costfunc.Move) {
		moves = append(moves, move)
	})
	mg.rng.Shuffle(len(moves), func(i, j int) {
		moves[i], moves[j] = moves[j], moves[i]
	})
	return moves[:k]
}

// reservoir keeps k moves in one pass without building the full list.
func (mg *MoveGenerator) reservoir(state *costfunc.SolutionState, k int) []costfunc.Move {
	moves := make([]costfunc.Move, 0, k)
	seen := 0
	visitMoves(state, func(move costfunc.Move) {
		if seen < k {
			moves = append(moves, move)
		} else if j := mg.rng.Intn(seen + 1); j < k {
			moves[j] = move
		}
		seen++
	})
	mg.rng.Shuffle(len(moves), func(i, j int) {
		moves[i], moves[j] = moves[j], moves[i]
	})
	return moves
}
