package data

import (
	"math"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
)

// Instance is the immutable problem input: resources in a fixed order, and the workloads to place.
type Instance struct {
	resources   []*Resource
	workloads   []*Workload
	resourceIdx map[ResourceId]int
	workloadMap map[WorkloadId]*Workload
}

// NewInstance validates ids and numbers. Resources passed in are copied with zero load.
func NewInstance(resources []*Resource, workloads []*Workload) (*Instance, error) {
	inst := &Instance{
		resources:   make([]*Resource, 0, len(resources)),
		workloads:   make([]*Workload, 0, len(workloads)),
		resourceIdx: make(map[ResourceId]int, len(resources)),
		workloadMap: make(map[WorkloadId]*Workload, len(workloads)),
	}
	for _, r := range resources {
		if _, ok := inst.resourceIdx[r.ResourceId]; ok {
			return nil, invalidInstance("duplicate resource id").With("resourceId", r.ResourceId)
		}
		if r.Capacity < 0 || !isFinite(r.Capacity) {
			return nil, invalidInstance("capacity must be finite and not negative").With("resourceId", r.ResourceId).With("capacity", r.Capacity)
		}
		inst.resourceIdx[r.ResourceId] = len(inst.resources)
		inst.resources = append(inst.resources, NewResource(r.ResourceId, r.Capacity))
	}
	for _, wl := range workloads {
		if _, ok := inst.workloadMap[wl.WorkloadId]; ok {
			return nil, invalidInstance("duplicate workload id").With("workloadId", wl.WorkloadId)
		}
		if wl.Demand < 0 || !isFinite(wl.Demand) {
			return nil, invalidInstance("demand must be finite and not negative").With("workloadId", wl.WorkloadId).With("demand", wl.Demand)
		}
		copied := NewWorkload(wl.WorkloadId, wl.Demand)
		inst.workloadMap[wl.WorkloadId] = copied
		inst.workloads = append(inst.workloads, copied)
	}
	return inst, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func invalidInstance(msg string) *kerror.Kerror {
	return kerror.Create("InvalidInstance", msg).WithErrorCode(kerror.EC_INVALID_PARAMETER)
}

func (inst *Instance) ResourceCount() int {
	return len(inst.resources)
}

func (inst *Instance) WorkloadCount() int {
	return len(inst.workloads)
}

// ResourceIds returns ids in instance order.
func (inst *Instance) ResourceIds() []ResourceId {
	ids := make([]ResourceId, len(inst.resources))
	for i, r := range inst.resources {
		ids[i] = r.ResourceId
	}
	return ids
}

func (inst *Instance) Workloads() []*Workload {
	list := make([]*Workload, len(inst.workloads))
	copy(list, inst.workloads)
	return list
}

func (inst *Instance) GetWorkload(id WorkloadId) (*Workload, bool) {
	wl, ok := inst.workloadMap[id]
	return wl, ok
}

func (inst *Instance) HasResource(id ResourceId) bool {
	_, ok := inst.resourceIdx[id]
	return ok
}

// NewResourceList returns fresh empty resources in instance order.
func (inst *Instance) NewResourceList() []*Resource {
	list := make([]*Resource, len(inst.resources))
	for i, r := range inst.resources {
		list[i] = NewResource(r.ResourceId, r.Capacity)
	}
	return list
}

func (inst *Instance) TotalCapacity() float64 {
	total := 0.0
	for _, r := range inst.resources {
		total += r.Capacity
	}
	return total
}

func (inst *Instance) TotalDemand() float64 {
	total := 0.0
	for _, wl := range inst.workloads {
		total += wl.Demand
	}
	return total
}
