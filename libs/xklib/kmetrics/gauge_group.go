package kmetrics

import (
	"sync"
	"time"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"go.opencensus.io/metric/metricdata"
	"go.opencensus.io/resource"
)

// GaugeGroup is a set of gauges sharing one name, replaced as a whole on every update.
// It fits "current value per resource" style data where series come and go between runs.
type GaugeGroup struct {
	mu          sync.Mutex
	metricName  string
	description string
	tagNames    []string
	startTime   time.Time
	dict        map[string]*GaugeTimeSequence
}

func NewGaugeGroup(name, desc string, tagNames ...string) *GaugeGroup {
	gg := &GaugeGroup{
		metricName:  name,
		description: desc,
		tagNames:    tagNames,
		startTime:   time.Now(),
		dict:        make(map[string]*GaugeTimeSequence),
	}
	GetKmetricsRegistry().RegisterGaugeGroup(gg)
	return gg
}

// UpdateValues replaces every sequence in the group.
func (gg *GaugeGroup) UpdateValues(seqs ...*GaugeTimeSequence) {
	dict := make(map[string]*GaugeTimeSequence, len(seqs))
	for _, seq := range seqs {
		dict[seq.Key] = seq
	}
	gg.mu.Lock()
	defer gg.mu.Unlock()
	gg.dict = dict
}

func (gg *GaugeGroup) Len() int {
	gg.mu.Lock()
	defer gg.mu.Unlock()
	return len(gg.dict)
}

func (gg *GaugeGroup) Read() *metricdata.Metric {
	keys := make([]metricdata.LabelKey, len(gg.tagNames))
	for i, tagName := range gg.tagNames {
		keys[i] = metricdata.LabelKey{Key: tagName}
	}
	gg.mu.Lock()
	series := make([]*metricdata.TimeSeries, 0, len(gg.dict))
	for _, ts := range gg.dict {
		series = append(series, ts.read(gg.startTime))
	}
	gg.mu.Unlock()
	return &metricdata.Metric{
		Descriptor: metricdata.Descriptor{
			Name:        gg.metricName,
			Description: gg.description,
			Unit:        metricdata.UnitDimensionless,
			Type:        metricdata.TypeGaugeInt64,
			LabelKeys:   keys,
		},
		Resource:   &resource.Resource{Type: resourceType, Labels: map[string]string{}},
		TimeSeries: series,
	}
}

// GaugeTimeSequence is one tag value combination inside a GaugeGroup.
type GaugeTimeSequence struct {
	Key         string
	labelValues []metricdata.LabelValue
	Value       int64
}

func (gg *GaugeGroup) NewSequence(value int64, tags ...string) *GaugeTimeSequence {
	if len(tags) != len(gg.tagNames) {
		panic(kerror.Create("TagsCountDoesNotMatch", "").
			With("metric", gg.metricName).
			With("expectedLen", len(gg.tagNames)).
			With("gotLen", len(tags)).
			WithErrorCode(kerror.EC_INVALID_PARAMETER))
	}
	values := make([]metricdata.LabelValue, len(tags))
	for i, item := range tags {
		values[i] = metricdata.NewLabelValue(item)
	}
	return &GaugeTimeSequence{
		Key:         makeSequenceKey(tags...),
		labelValues: values,
		Value:       value,
	}
}

func (gts *GaugeTimeSequence) read(start time.Time) *metricdata.TimeSeries {
	return &metricdata.TimeSeries{
		LabelValues: gts.labelValues,
		Points:      []metricdata.Point{{Time: time.Now(), Value: gts.Value}},
		StartTime:   start,
	}
}
