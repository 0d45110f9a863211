package kmetrics

import (
	"context"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/klogging"
	"go.opencensus.io/metric/metricdata"
)

// KmetricsRegistry implements the opencensus metricproducer.Producer interface.
type KmetricsRegistry struct {
	mu          sync.Mutex // held only while registering
	collection  unsafe.Pointer // *KmetricsCollection
	globalTags  map[string]string
	allTagNames map[string]string // tag name -> first metric using it
}

func NewKmetricsRegistry() *KmetricsRegistry {
	return &KmetricsRegistry{
		collection:  unsafe.Pointer(newKmetricsCollection()),
		globalTags:  make(map[string]string),
		allTagNames: make(map[string]string),
	}
}

var kmetricsRegistry = NewKmetricsRegistry()

func GetKmetricsRegistry() *KmetricsRegistry {
	return kmetricsRegistry
}

func (registry *KmetricsRegistry) load() *KmetricsCollection {
	return (*KmetricsCollection)(atomic.LoadPointer(&registry.collection))
}

func (registry *KmetricsRegistry) RegisterKmetric(km *Kmetric) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.checkForTagNameConflicts(km.tagNames)
	for _, tagName := range km.tagNames {
		if _, ok := registry.allTagNames[tagName]; !ok {
			registry.allTagNames[tagName] = km.metricName
		}
	}
	next := registry.load().clone()
	next.dict[km.metricName] = km
	atomic.StorePointer(&registry.collection, unsafe.Pointer(next))
}

func (registry *KmetricsRegistry) RegisterGaugeGroup(gg *GaugeGroup) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.checkForTagNameConflicts(gg.tagNames)
	next := registry.load().clone()
	next.gaugeGroups[gg.metricName] = gg
	atomic.StorePointer(&registry.collection, unsafe.Pointer(next))
}

// Read returns every registered metric, global tags attached.
func (registry *KmetricsRegistry) Read() []*metricdata.Metric {
	collection := registry.load()
	list := []*metricdata.Metric{}
	for _, km := range collection.dict {
		list = append(list, registry.attachGlobalTags(km.ReadCount()))
		if !km.countOnly {
			list = append(list, registry.attachGlobalTags(km.ReadSum()))
		}
	}
	for _, gg := range collection.gaugeGroups {
		list = append(list, registry.attachGlobalTags(gg.Read()))
	}
	return list
}

func (registry *KmetricsRegistry) attachGlobalTags(m *metricdata.Metric) *metricdata.Metric {
	for key, value := range registry.globalTags {
		m.Descriptor.LabelKeys = append(m.Descriptor.LabelKeys, metricdata.LabelKey{Key: key})
		for _, ts := range m.TimeSeries {
			ts.LabelValues = append(ts.LabelValues, metricdata.NewLabelValue(value))
		}
	}
	return m
}

// AddGlobalTag attaches key=value to every exported series, e.g. the run id.
func (registry *KmetricsRegistry) AddGlobalTag(key, value string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if metricName, exists := registry.allTagNames[key]; exists {
		klogging.Fatal(context.Background()).With("tagName", key).With("metricName", metricName).Log("TagNameConflict", "global tag name conflicts with a metric tag")
		return
	}
	registry.globalTags[key] = value
}

func (registry *KmetricsRegistry) checkForTagNameConflicts(tagNames []string) {
	for _, tagName := range tagNames {
		if _, exists := registry.globalTags[tagName]; exists {
			panic(kerror.Create("TagNameConflict", "metric tag name conflicts with a global tag").With("tagName", tagName))
		}
	}
}

// KmetricsCollection is never mutated after it is published.
type KmetricsCollection struct {
	dict        map[string]*Kmetric
	gaugeGroups map[string]*GaugeGroup
}

func newKmetricsCollection() *KmetricsCollection {
	return &KmetricsCollection{
		dict:        make(map[string]*Kmetric),
		gaugeGroups: make(map[string]*GaugeGroup),
	}
}

func (collection *KmetricsCollection) clone() *KmetricsCollection {
	next := newKmetricsCollection()
	for k, v := range collection.dict {
		next.dict[k] = v
	}
	for k, v := range collection.gaugeGroups {
		next.gaugeGroups[k] = v
	}
	return next
}
