package data

type Workload struct {
	WorkloadId WorkloadId
	Demand     float64
}

func NewWorkload(id WorkloadId, demand float64) *Workload {
	return &Workload{WorkloadId: id, Demand: demand}
}
