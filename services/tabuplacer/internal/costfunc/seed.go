package costfunc

import (
	"context"
	"math/rand"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/klogging"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
)

// AssignmentPolicy builds the initial resource -> workloads mapping.
type AssignmentPolicy interface {
	GetName() string
	Assign(ctx context.Context, inst *data.Instance) (map[data.ResourceId][]data.WorkloadId, error)
}

// RandomAssignmentPolicy puts each workload on a uniformly random resource, ignoring capacity.
type RandomAssignmentPolicy struct {
	Rng *rand.Rand
}

func NewRandomAssignmentPolicy(rng *rand.Rand) *RandomAssignmentPolicy {
	return &RandomAssignmentPolicy{Rng: rng}
}

func (policy *RandomAssignmentPolicy) GetName() string {
	return "random"
}

func (policy *RandomAssignmentPolicy) Assign(ctx context.Context, inst *data.Instance) (map[data.ResourceId][]data.WorkloadId, error) {
	rids := inst.ResourceIds()
	mapping := make(map[data.ResourceId][]data.WorkloadId, len(rids))
	if len(rids) == 0 {
		if inst.WorkloadCount() > 0 {
			return nil, kerror.Create("InvalidInstance", "no resource to place workloads on").
				With("workloadCount", inst.WorkloadCount()).
				WithErrorCode(kerror.EC_INVALID_PARAMETER)
		}
		return mapping, nil
	}
	for _, wl := range inst.Workloads() {
		rid := rids[policy.Rng.Intn(len(rids))]
		mapping[rid] = append(mapping[rid], wl.WorkloadId)
	}
	return mapping, nil
}

// FixedAssignmentPolicy uses a caller supplied mapping as is.
type FixedAssignmentPolicy struct {
	Assignment map[data.ResourceId][]data.WorkloadId
}

func NewFixedAssignmentPolicy(assignment map[data.ResourceId][]data.WorkloadId) *FixedAssignmentPolicy {
	return &FixedAssignmentPolicy{Assignment: assignment}
}

func (policy *FixedAssignmentPolicy) GetName() string {
	return "fixed"
}

func (policy *FixedAssignmentPolicy) Assign(ctx context.Context, inst *data.Instance) (map[data.ResourceId][]data.WorkloadId, error) {
	return policy.Assignment, nil
}

// SeedSolution builds the initial state with policy and checks the partition invariant.
func SeedSolution(ctx context.Context, inst *data.Instance, policy AssignmentPolicy) (*SolutionState, error) {
	mapping, err := policy.Assign(ctx, inst)
	if err != nil {
		return nil, err
	}
	state, err := NewSolutionState(inst, mapping)
	if err != nil {
		klogging.Error(ctx).With("policy", policy.GetName()).WithError(err).Log("SeedSolutionFailed", "")
		return nil, err
	}
	klogging.Debug(ctx).
		With("policy", policy.GetName()).
		With("resources", inst.ResourceCount()).
		With("workloads", inst.WorkloadCount()).
		Log("SeedSolution", "")
	return state, nil
}
