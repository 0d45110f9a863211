package costfunc

import (
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
)

// Move relocates one workload from Src to Dst.
type Move struct {
	Src      data.ResourceId
	Dst      data.ResourceId
	Workload data.WorkloadId
}

func NewMove(src data.ResourceId, dst data.ResourceId, workload data.WorkloadId) Move {
	return Move{Src: src, Dst: dst, Workload: workload}
}

func (move Move) GetSignature() string {
	return string(move.Src) + "/" + string(move.Workload) + "/" + string(move.Dst)
}

func (move Move) String() string {
	return "move " + string(move.Workload) + " " + string(move.Src) + "->" + string(move.Dst)
}
