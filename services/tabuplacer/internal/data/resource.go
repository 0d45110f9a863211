package data

// Resource is a capacity-bounded host. CurrentLoad always equals the summed demand of Workloads.
type Resource struct {
	ResourceId  ResourceId
	Capacity    float64
	CurrentLoad float64
	Workloads   []WorkloadId
}

func NewResource(id ResourceId, capacity float64) *Resource {
	return &Resource{
		ResourceId: id,
		Capacity:   capacity,
		Workloads:  []WorkloadId{},
	}
}

// Reset drops every workload and zeroes the load; capacity is fixed.
// Workloads gets a new slice so earlier readers keep their view.
func (r *Resource) Reset() {
	r.CurrentLoad = 0
	r.Workloads = []WorkloadId{}
}

func (r *Resource) Add(wl *Workload) {
	r.Workloads = append(r.Workloads, wl.WorkloadId)
	r.CurrentLoad += wl.Demand
}

// Utilization is load/capacity, 0 when capacity is 0.
func (r *Resource) Utilization() float64 {
	if r.Capacity == 0 {
		return 0
	}
	return r.CurrentLoad / r.Capacity
}

// Overload is how far load exceeds capacity, never negative.
func (r *Resource) Overload() float64 {
	if r.CurrentLoad > r.Capacity {
		return r.CurrentLoad - r.Capacity
	}
	return 0
}

func (r *Resource) Clone() *Resource {
	wls := make([]WorkloadId, len(r.Workloads))
	copy(wls, r.Workloads)
	return &Resource{
		ResourceId:  r.ResourceId,
		Capacity:    r.Capacity,
		CurrentLoad: r.CurrentLoad,
		Workloads:   wls,
	}
}
