package anim

import (
	"sort"

	"github.com/crowdware/raidkit/pkg/math"
)

// track is one sampled animation curve: parallel keyframe times and
// values with comps floats per key.
type track struct {
	times  []float32
	values []float32
	comps  int
}

// bracket locates the key pair around t. The returned alpha is 0 when t
// clamps to the first key and 1 when it clamps to the last.
func (tr *track) bracket(t float32) (i0, i1 int, alpha float32) {
	n := len(tr.times)
	if n == 1 || t <= tr.times[0] {
		return 0, 0, 0
	}
	if t >= tr.times[n-1] {
		return n - 1, n - 1, 0
	}
	// First key strictly after t.
	hi := sort.Search(n, func(i int) bool { return tr.times[i] > t })
	lo := hi - 1
	span := tr.times[hi] - tr.times[lo]
	if span <= 0 {
		return lo, hi, 0
	}
	return lo, hi, (t - tr.times[lo]) / span
}

func (tr *track) sampleVec3(t float32) [3]float32 {
	i0, i1, alpha := tr.bracket(t)
	a := [3]float32{tr.values[i0*3], tr.values[i0*3+1], tr.values[i0*3+2]}
	if i0 == i1 {
		return a
	}
	b := [3]float32{tr.values[i1*3], tr.values[i1*3+1], tr.values[i1*3+2]}
	return math.LerpVec3(a, b, alpha)
}

func (tr *track) sampleQuat(t float32) math.Quat {
	i0, i1, alpha := tr.bracket(t)
	a := math.QuatFromArray([4]float32{
		tr.values[i0*4], tr.values[i0*4+1], tr.values[i0*4+2], tr.values[i0*4+3],
	}).Normalize()
	if i0 == i1 {
		return a
	}
	b := math.QuatFromArray([4]float32{
		tr.values[i1*4], tr.values[i1*4+1], tr.values[i1*4+2], tr.values[i1*4+3],
	}).Normalize()
	return a.Nlerp(b, alpha)
}
