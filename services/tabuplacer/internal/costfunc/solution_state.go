package costfunc

import (
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
)

// SolutionState assigns every workload of an instance to exactly one resource.
// A state is never modified once built; ApplyMove returns a new one.
type SolutionState struct {
	inst     *data.Instance
	mapping  map[data.ResourceId][]data.WorkloadId
	location map[data.WorkloadId]data.ResourceId
}

// NewSolutionState copies mapping and checks it is a partition of the instance's workloads.
// Resources missing from mapping are treated as empty.
func NewSolutionState(inst *data.Instance, mapping map[data.ResourceId][]data.WorkloadId) (*SolutionState, error) {
	ss := &SolutionState{
		inst:     inst,
		mapping:  make(map[data.ResourceId][]data.WorkloadId, inst.ResourceCount()),
		location: make(map[data.WorkloadId]data.ResourceId, inst.WorkloadCount()),
	}
	for _, rid := range inst.ResourceIds() {
		ss.mapping[rid] = []data.WorkloadId{}
	}
	for rid, wls := range mapping {
		if !inst.HasResource(rid) {
			return nil, ConfigurationInconsistency("unknown resource id").With("resourceId", rid)
		}
		list := make([]data.WorkloadId, len(wls))
		copy(list, wls)
		ss.mapping[rid] = list
		for _, wid := range wls {
			if prev, ok := ss.location[wid]; ok {
				return nil, ConfigurationInconsistency("workload assigned twice").
					With("workloadId", wid).
					With("resourceId", rid).
					With("previous", prev)
			}
			ss.location[wid] = rid
		}
	}
	if err := ss.Validate(); err != nil {
		return nil, err
	}
	return ss, nil
}

func ConfigurationInconsistency(msg string) *kerror.Kerror {
	return kerror.Create("ConfigurationInconsistency", msg).WithErrorCode(kerror.EC_INVALID_PARAMETER)
}

// Validate checks the partition invariant against the instance: no omissions, no duplicates, no foreign ids.
func (ss *SolutionState) Validate() error {
	count := 0
	for rid, wls := range ss.mapping {
		if !ss.inst.HasResource(rid) {
			return ConfigurationInconsistency("unknown resource id").With("resourceId", rid)
		}
		for _, wid := range wls {
			if _, ok := ss.inst.GetWorkload(wid); !ok {
				return ConfigurationInconsistency("unknown workload id").With("workloadId", wid).With("resourceId", rid)
			}
			if ss.location[wid] != rid {
				return ConfigurationInconsistency("workload assigned twice").With("workloadId", wid)
			}
			count++
		}
	}
	if count != len(ss.location) {
		return ConfigurationInconsistency("workload assigned twice").With("assigned", count).With("distinct", len(ss.location))
	}
	if count != ss.inst.WorkloadCount() {
		for _, wl := range ss.inst.Workloads() {
			if _, ok := ss.location[wl.WorkloadId]; !ok {
				return ConfigurationInconsistency("workload not assigned").With("workloadId", wl.WorkloadId)
			}
		}
	}
	return nil
}

func (ss *SolutionState) Instance() *data.Instance {
	return ss.inst
}

// Clone returns a deep copy sharing nothing mutable with ss.
func (ss *SolutionState) Clone() *SolutionState {
	clone := &SolutionState{
		inst:     ss.inst,
		mapping:  make(map[data.ResourceId][]data.WorkloadId, len(ss.mapping)),
		location: make(map[data.WorkloadId]data.ResourceId, len(ss.location)),
	}
	for rid, wls := range ss.mapping {
		list := make([]data.WorkloadId, len(wls))
		copy(list, wls)
		clone.mapping[rid] = list
	}
	for wid, rid := range ss.location {
		clone.location[wid] = rid
	}
	return clone
}

// ApplyMove returns a new state with move.Workload moved to the end of move.Dst.
func (ss *SolutionState) ApplyMove(move Move) (*SolutionState, error) {
	if move.Src == move.Dst {
		return nil, ConfigurationInconsistency("move source equals destination").With("move", move.GetSignature())
	}
	if _, ok := ss.mapping[move.Dst]; !ok {
		return nil, ConfigurationInconsistency("unknown resource id").With("resourceId", move.Dst)
	}
	if _, ok := ss.mapping[move.Src]; !ok {
		return nil, ConfigurationInconsistency("unknown resource id").With("resourceId", move.Src)
	}
	rid, ok := ss.location[move.Workload]
	if !ok {
		return nil, ConfigurationInconsistency("unknown workload id").With("workloadId", move.Workload)
	}
	if rid != move.Src {
		return nil, ConfigurationInconsistency("workload not on move source").
			With("workloadId", move.Workload).
			With("src", move.Src).
			With("actual", rid)
	}
	next := ss.Clone()
	srcList := next.mapping[move.Src]
	for i, wid := range srcList {
		if wid == move.Workload {
			next.mapping[move.Src] = append(srcList[:i], srcList[i+1:]...)
			break
		}
	}
	next.mapping[move.Dst] = append(next.mapping[move.Dst], move.Workload)
	next.location[move.Workload] = move.Dst
	return next, nil
}

// Apply zeroes every resource, then repopulates them from the mapping and recomputes loads.
func (ss *SolutionState) Apply(resources []*data.Resource) error {
	index := make(map[data.ResourceId]*data.Resource, len(resources))
	for _, r := range resources {
		r.Reset()
		index[r.ResourceId] = r
	}
	for _, rid := range ss.inst.ResourceIds() {
		wls := ss.mapping[rid]
		r, ok := index[rid]
		if !ok {
			if len(wls) == 0 {
				continue
			}
			return ConfigurationInconsistency("resource not in resource list").With("resourceId", rid)
		}
		for _, wid := range wls {
			wl, ok := ss.inst.GetWorkload(wid)
			if !ok {
				return ConfigurationInconsistency("unknown workload id").With("workloadId", wid).With("resourceId", rid)
			}
			r.Add(wl)
		}
	}
	return nil
}

// Materialize builds a fresh resource list, in instance order, holding this state.
func (ss *SolutionState) Materialize() ([]*data.Resource, error) {
	resources := ss.inst.NewResourceList()
	if err := ss.Apply(resources); err != nil {
		return nil, err
	}
	return resources, nil
}

// Assignment returns a copy of the mapping.
func (ss *SolutionState) Assignment() map[data.ResourceId][]data.WorkloadId {
	ret := make(map[data.ResourceId][]data.WorkloadId, len(ss.mapping))
	for rid, wls := range ss.mapping {
		list := make([]data.WorkloadId, len(wls))
		copy(list, wls)
		ret[rid] = list
	}
	return ret
}

func (ss *SolutionState) ResourceOf(wid data.WorkloadId) (data.ResourceId, bool) {
	rid, ok := ss.location[wid]
	return rid, ok
}

// WorkloadsOn returns the workloads on rid in assignment order. The slice must not be modified.
func (ss *SolutionState) WorkloadsOn(rid data.ResourceId) []data.WorkloadId {
	return ss.mapping[rid]
}
