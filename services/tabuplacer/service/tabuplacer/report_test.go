package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/data"
)

func TestFormatResource(t *testing.T) {
	wa, wb := data.NewWorkload("App-1", 30), data.NewWorkload("App-7", 20)
	r := data.NewResource("S1", 100)
	inst, err := data.NewInstance([]*data.Resource{r}, []*data.Workload{wa, wb})
	require.Nil(t, err)
	r.Add(wa)
	r.Add(wb)
	assert.Equal(t, "S1: 50/100 (50.0%) - [App-1(30) App-7(20)]", formatResource(inst, r))
}

func TestBalanceChart(t *testing.T) {
	half := data.NewResource("S1", 100)
	half.Add(data.NewWorkload("a", 50))
	over := data.NewResource("S22", 10)
	over.Add(data.NewWorkload("b", 15))

	buf := &bytes.Buffer{}
	writeBalanceChart(buf, []*data.Resource{half, over})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, 20, strings.Count(lines[0], "#"))
	assert.True(t, strings.HasPrefix(lines[0], "S1  |"))
	assert.Equal(t, chartWidth, strings.Count(lines[1], "#"))
	assert.True(t, strings.HasSuffix(lines[1], "150.0%!"))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", sparkline(nil))
	assert.Equal(t, "▁▁▁", sparkline([]float64{2, 2, 2}))
	assert.Equal(t, "█▅▁", sparkline([]float64{1, 0.6, 0}))

	buf := &bytes.Buffer{}
	writeTrace(buf, []float64{1, 0.5, 0.75})
	assert.Contains(t, buf.String(), "start=1.0000 end=0.7500 min=0.5000 points=3")
}
