package jobsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procfleet/decode"
	"procfleet/future"
	"procfleet/status"
)

func TestFromSliceIteration(t *testing.T) {
	specs := []future.JobSpec{
		{Path: "true"},
		{Path: "false"},
	}
	src := FromSlice(specs, decode.NewBooleanDecoder())

	require.True(t, src.HasNext())
	s0, d0 := src.Next()
	assert.Equal(t, "true", s0.Path)
	assert.Equal(t, decode.TagBoolean, d0.Tag())

	require.True(t, src.HasNext())
	s1, _ := src.Next()
	assert.Equal(t, "false", s1.Path)

	assert.False(t, src.HasNext())
}

func TestFromSliceWithCallbackRecordsCompletions(t *testing.T) {
	specs := []future.JobSpec{{Path: "true"}, {Path: "false"}}
	var got []Completion
	src := FromSliceWithCallback(specs, decode.NewBooleanDecoder(), func(c Completion) {
		got = append(got, c)
	})

	for src.HasNext() {
		spec, _ := src.Next()
		src.OnComplete(Completion{Spec: spec, Status: status.Ok(), Value: decode.Boolean(true)})
	}

	require.Len(t, got, 2)
	assert.Equal(t, "true", got[0].Spec.Path)
	assert.Equal(t, "false", got[1].Spec.Path)
}

func TestPidsFromSlice(t *testing.T) {
	specs := []future.JobSpec{{Path: "true"}, {Path: "true"}}
	var completed []int
	src := PidsFromSlice(specs, func(index int, spec future.JobSpec, pid int, st status.Status) {
		completed = append(completed, index)
	})

	i := 0
	for src.HasNext() {
		spec := src.Next()
		src.OnComplete(i, spec, 1000+i, status.Ok())
		i++
	}

	assert.Equal(t, []int{0, 1}, completed)
}
