package kmetrics

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/klogging"
	"go.opencensus.io/metric/metricdata"
	"go.opencensus.io/resource"
)

const resourceType = "tabuplacer"

// Kmetric is one logical metric. It is exported as two series names, "<name>_count" and "<name>_sum"
// (unless CountOnly), and each name carries one TimeSequence per distinct tag value combination.
type Kmetric struct {
	mu          sync.Mutex // held only while adding a TimeSequence
	metricName  string
	description string
	tagNames    []string
	collection  unsafe.Pointer // *TimeSequenceCollection
	startTime   time.Time
	countOnly   bool
}

func CreateKmetric(ctx context.Context, name string, description string, tags []string) *Kmetric {
	km := &Kmetric{
		metricName:  name,
		description: description,
		tagNames:    tags,
		startTime:   time.Now(),
	}
	km.collection = unsafe.Pointer(newTimeSequenceCollection())
	GetKmetricsRegistry().RegisterKmetric(km)
	return km
}

func (km *Kmetric) CountOnly() *Kmetric {
	km.countOnly = true
	return km
}

func (km *Kmetric) Name() string {
	return km.metricName
}

func makeSequenceKey(tags ...string) string {
	return strings.Join(tags, "-")
}

func (km *Kmetric) loadCollection() *TimeSequenceCollection {
	return (*TimeSequenceCollection)(atomic.LoadPointer(&km.collection))
}

// GetTimeSequence returns the sequence for the given tag values, creating it on first use.
// tags must line up with the tag names given to CreateKmetric.
func (km *Kmetric) GetTimeSequence(ctx context.Context, tags ...string) *TimeSequence {
	key := makeSequenceKey(tags...)
	if seq, ok := km.loadCollection().dict[key]; ok {
		return seq
	}

	km.mu.Lock()
	defer km.mu.Unlock()
	old := km.loadCollection()
	if seq, ok := old.dict[key]; ok {
		return seq
	}

	seq := newTimeSequence(ctx, key, km, tags)
	next := newTimeSequenceCollection()
	for k, v := range old.dict {
		next.dict[k] = v
	}
	next.dict[key] = seq
	atomic.StorePointer(&km.collection, unsafe.Pointer(next))
	return seq
}

func (km *Kmetric) labelKeys() []metricdata.LabelKey {
	keys := make([]metricdata.LabelKey, len(km.tagNames))
	for i, tagName := range km.tagNames {
		keys[i] = metricdata.LabelKey{Key: tagName}
	}
	return keys
}

func (km *Kmetric) read(suffix string, pick func(ts *TimeSequence) *metricdata.TimeSeries) *metricdata.Metric {
	series := []*metricdata.TimeSeries{}
	for _, ts := range km.loadCollection().dict {
		series = append(series, pick(ts))
	}
	return &metricdata.Metric{
		Descriptor: metricdata.Descriptor{
			Name:        km.metricName + suffix,
			Description: km.description,
			Unit:        metricdata.UnitDimensionless,
			Type:        metricdata.TypeCumulativeInt64,
			LabelKeys:   km.labelKeys(),
		},
		Resource:   &resource.Resource{Type: resourceType, Labels: map[string]string{}},
		TimeSeries: series,
	}
}

func (km *Kmetric) ReadSum() *metricdata.Metric {
	return km.read("_sum", (*TimeSequence).ReadSum)
}

func (km *Kmetric) ReadCount() *metricdata.Metric {
	return km.read("_count", (*TimeSequence).ReadCount)
}

// TimeSequenceCollection is never mutated after it is published; adding a sequence swaps in a copy.
type TimeSequenceCollection struct {
	dict map[string]*TimeSequence
}

func newTimeSequenceCollection() *TimeSequenceCollection {
	return &TimeSequenceCollection{dict: map[string]*TimeSequence{}}
}

// TimeSequence holds the counters for one tag value combination.
type TimeSequence struct {
	parent      *Kmetric
	key         string
	labelValues []metricdata.LabelValue
	count       int64
	sum         int64
}

func newTimeSequence(ctx context.Context, key string, parent *Kmetric, tagValues []string) *TimeSequence {
	if len(tagValues) != len(parent.tagNames) {
		panic(kerror.Create("InvalidTagValues", "number of tag values does not match tag name list").
			With("metric", parent.metricName).
			With("expectedLen", len(parent.tagNames)).
			With("gotLen", len(tagValues)).
			WithErrorCode(kerror.EC_INVALID_PARAMETER))
	}
	values := make([]metricdata.LabelValue, len(tagValues))
	for i, item := range tagValues {
		values[i] = metricdata.NewLabelValue(item)
	}
	metricName := parent.metricName
	go func() {
		// logging from here could re-enter a metrics reporter that is creating this very sequence
		klogging.Verbose(ctx).With("metric", metricName).With("tagKey", key).Log("CreateTimeSequence", "")
	}()
	return &TimeSequence{
		parent:      parent,
		key:         key,
		labelValues: values,
	}
}

func (ts *TimeSequence) Add(val int64) {
	atomic.AddInt64(&ts.count, 1)
	atomic.AddInt64(&ts.sum, val)
}

// Touch makes the sequence visible at zero before the first Add.
func (ts *TimeSequence) Touch() {}

func (ts *TimeSequence) Get() (count int64, sum int64) {
	return atomic.LoadInt64(&ts.count), atomic.LoadInt64(&ts.sum)
}

func (ts *TimeSequence) point(v int64) *metricdata.TimeSeries {
	return &metricdata.TimeSeries{
		LabelValues: ts.labelValues,
		Points:      []metricdata.Point{{Time: time.Now(), Value: v}},
		StartTime:   ts.parent.startTime,
	}
}

func (ts *TimeSequence) ReadSum() *metricdata.TimeSeries {
	return ts.point(atomic.LoadInt64(&ts.sum))
}

func (ts *TimeSequence) ReadCount() *metricdata.TimeSeries {
	return ts.point(atomic.LoadInt64(&ts.count))
}
