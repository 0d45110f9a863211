package data

type ResourceId string

type WorkloadId string
