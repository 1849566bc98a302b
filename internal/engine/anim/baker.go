package anim

import (
	"errors"
	"fmt"
	gomath "math"
	"path/filepath"

	"github.com/crowdware/raidkit/internal/logger"
	"github.com/crowdware/raidkit/pkg/gltf"
	"github.com/crowdware/raidkit/pkg/math"
)

// BakeFPS is the fixed output sample rate of baked palettes.
const BakeFPS = 30

var (
	// ErrNoSkin means the base model declares no skins to bake against.
	ErrNoSkin = errors.New("model has no skins")

	// ErrEmptySkin means the first skin has an empty joint list.
	ErrEmptySkin = errors.New("skin has no joints")
)

// FrameSet is a baked skinning palette: FrameCount frames of JointCount
// column-major 4x4 matrices, contiguous as [frame][joint][16]. Matrices
// are already multiplied with the inverse bind matrices, ready for a
// skinning shader.
type FrameSet struct {
	JointCount int
	FrameCount int
	Duration   float32
	Palette    []float32
}

// Joint returns the 16 palette floats for one frame and joint.
func (fs *FrameSet) Joint(frame, joint int) []float32 {
	base := (frame*fs.JointCount + joint) * 16
	return fs.Palette[base : base+16]
}

// skeleton is the base model's node hierarchy with default local poses.
// Matrix-authored nodes keep their static matrix and are never animated.
type skeleton struct {
	parents        []int
	defaultLocal   []math.Mat4
	matrixAuthored []bool
	defaultT       [][3]float32
	defaultR       []math.Quat
	defaultS       [][3]float32
}

// nodeTracks holds the sampled curves retargeted onto one base node.
type nodeTracks struct {
	translation *track
	rotation    *track
	scale       *track
}

// Bake resamples the first animation of animPath onto the skeleton and
// first skin of modelPath at 30 Hz. animPath may equal modelPath (or be
// empty) to animate a model from its own file; a distinct file is
// retargeted by node name. Only the first skin and first animation of
// each file are used; files with several must be split by the caller.
func Bake(modelPath, animPath string) (*FrameSet, error) {
	modelBase, _ := gltf.SplitFragment(modelPath)
	animBase, _ := gltf.SplitFragment(animPath)
	if animBase == "" {
		animBase = modelBase
	}

	doc, err := gltf.Load(modelBase)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", modelBase, err)
	}
	if len(doc.Skins) == 0 {
		return nil, fmt.Errorf("%s: %w", modelBase, ErrNoSkin)
	}
	skin := &doc.Skins[0]
	if len(skin.Joints) == 0 {
		return nil, fmt.Errorf("%s: %w", modelBase, ErrEmptySkin)
	}

	sameFile := samePath(modelBase, animBase)
	animDoc := doc
	if !sameFile {
		animDoc, err = gltf.Load(animBase)
		if err != nil {
			return nil, fmt.Errorf("load animation %s: %w", animBase, err)
		}
	}
	if len(animDoc.Animations) == 0 {
		return nil, fmt.Errorf("%s: %w", animBase, ErrNoAnimations)
	}
	animation := &animDoc.Animations[0]

	skel := buildSkeleton(doc)
	tracks := bindTracks(skel, doc, animDoc, animation, sameFile)

	duration := clipDuration(animDoc, animation)
	frameCount := 1
	if duration > 0.0001 {
		frameCount = int(gomath.Ceil(float64(duration)*BakeFPS)) + 1
		if frameCount < 2 {
			frameCount = 2
		}
	}

	ibms := inverseBinds(doc, skin)

	fs := &FrameSet{
		JointCount: len(skin.Joints),
		FrameCount: frameCount,
		Duration:   duration,
		Palette:    make([]float32, 0, frameCount*len(skin.Joints)*16),
	}

	nodeCount := len(doc.Nodes)
	locals := make([]math.Mat4, nodeCount)
	globals := make([]math.Mat4, nodeCount)
	computed := make([]bool, nodeCount)
	var stack []int

	for f := 0; f < frameCount; f++ {
		var t float32
		if frameCount > 1 {
			t = duration * float32(f) / float32(frameCount-1)
		}

		copy(locals, skel.defaultLocal)
		for ni, tr := range tracks {
			locals[ni] = skel.sampleLocal(ni, tr, t)
		}

		for i := range computed {
			computed[i] = false
		}
		for _, joint := range skin.Joints {
			if joint < 0 || joint >= nodeCount {
				return nil, fmt.Errorf("%s: skin joint index %d out of range", modelBase, joint)
			}
			// Walk up to the nearest computed ancestor, then resolve the
			// chain top-down. Each node settles at most once per frame.
			stack = stack[:0]
			for n := joint; n >= 0 && !computed[n]; n = skel.parents[n] {
				stack = append(stack, n)
			}
			for k := len(stack) - 1; k >= 0; k-- {
				n := stack[k]
				if p := skel.parents[n]; p >= 0 {
					globals[n] = globals[p].Mul(locals[n])
				} else {
					globals[n] = locals[n]
				}
				computed[n] = true
			}
		}

		for j, joint := range skin.Joints {
			m := globals[joint].Mul(ibms[j])
			fs.Palette = append(fs.Palette, m[:]...)
		}
	}
	return fs, nil
}

func samePath(a, b string) bool {
	if a == b {
		return true
	}
	aa, errA := filepath.Abs(a)
	ab, errB := filepath.Abs(b)
	return errA == nil && errB == nil && aa == ab
}

// buildSkeleton derives parent links by scanning child lists and computes
// every node's default local transform.
func buildSkeleton(doc *gltf.Document) *skeleton {
	n := len(doc.Nodes)
	s := &skeleton{
		parents:        make([]int, n),
		defaultLocal:   make([]math.Mat4, n),
		matrixAuthored: make([]bool, n),
		defaultT:       make([][3]float32, n),
		defaultR:       make([]math.Quat, n),
		defaultS:       make([][3]float32, n),
	}
	for i := range s.parents {
		s.parents[i] = -1
	}
	for i := range doc.Nodes {
		for _, c := range doc.Nodes[i].Children {
			if c >= 0 && c < n {
				s.parents[c] = i
			}
		}
	}

	for i := range doc.Nodes {
		node := &doc.Nodes[i]
		if node.Matrix != nil {
			s.matrixAuthored[i] = true
			s.defaultLocal[i] = math.Mat4(*node.Matrix)
			continue
		}
		s.defaultT[i] = [3]float32{}
		if node.Translation != nil {
			s.defaultT[i] = *node.Translation
		}
		s.defaultR[i] = math.QuatIdentity()
		if node.Rotation != nil {
			s.defaultR[i] = math.QuatFromArray(*node.Rotation).Normalize()
		}
		s.defaultS[i] = [3]float32{1, 1, 1}
		if node.Scale != nil {
			s.defaultS[i] = *node.Scale
		}
		s.defaultLocal[i] = math.Compose(s.defaultT[i], s.defaultR[i], s.defaultS[i])
	}
	return s
}

// sampleLocal composes a node's local transform at time t, falling back
// to the default pose for components without a track.
func (s *skeleton) sampleLocal(ni int, tr *nodeTracks, t float32) math.Mat4 {
	translation := s.defaultT[ni]
	if tr.translation != nil {
		translation = tr.translation.sampleVec3(t)
	}
	rotation := s.defaultR[ni]
	if tr.rotation != nil {
		rotation = tr.rotation.sampleQuat(t)
	}
	scale := s.defaultS[ni]
	if tr.scale != nil {
		scale = tr.scale.sampleVec3(t)
	}
	return math.Compose(translation, rotation, scale)
}

// bindTracks reads the animation's channels and attaches them to base
// model nodes. Cross-file channels are retargeted by node name; channels
// that cannot be mapped, target matrix-authored nodes, or reference
// broken accessors are dropped with a log line.
func bindTracks(skel *skeleton, doc, animDoc *gltf.Document, a *gltf.Animation, sameFile bool) map[int]*nodeTracks {
	var mapper *nodeMapper
	if !sameFile {
		names := make([]string, len(doc.Nodes))
		for i := range doc.Nodes {
			names[i] = doc.Nodes[i].Name
		}
		mapper = newNodeMapper(names)
	}

	tracks := make(map[int]*nodeTracks)
	for ci, ch := range a.Channels {
		if ch.Sampler < 0 || ch.Sampler >= len(a.Samplers) {
			logger.Sugar.Warnf("channel %d: sampler %d out of range", ci, ch.Sampler)
			continue
		}
		if ch.Target.Node == nil {
			continue
		}
		src := *ch.Target.Node
		if src < 0 || src >= len(animDoc.Nodes) {
			logger.Sugar.Warnf("channel %d: target node %d out of range", ci, src)
			continue
		}

		target := src
		if !sameFile {
			name := animDoc.Nodes[src].Name
			mapped, ok := mapper.resolve(name)
			if !ok {
				logger.Sugar.Warnf("channel %d: no base node matches %q, dropped", ci, name)
				continue
			}
			target = mapped
		}
		if target >= len(skel.matrixAuthored) {
			continue
		}
		if skel.matrixAuthored[target] {
			logger.Sugar.Debugf("channel %d: node %d is matrix-authored, ignored", ci, target)
			continue
		}

		var comps int
		switch ch.Target.Path {
		case gltf.PathTranslation, gltf.PathScale:
			comps = 3
		case gltf.PathRotation:
			comps = 4
		default:
			logger.Sugar.Debugf("channel %d: path %q unsupported, ignored", ci, ch.Target.Path)
			continue
		}

		sampler := &a.Samplers[ch.Sampler]
		times, err := animDoc.Floats(sampler.Input, 1)
		if err != nil || len(times) == 0 {
			logger.Sugar.Warnf("channel %d: time accessor unavailable: %v", ci, err)
			continue
		}
		values, err := animDoc.Floats(sampler.Output, comps)
		if err != nil || len(values) != len(times)*comps {
			logger.Sugar.Warnf("channel %d: value accessor unavailable: %v", ci, err)
			continue
		}

		tr := tracks[target]
		if tr == nil {
			tr = &nodeTracks{}
			tracks[target] = tr
		}
		curve := &track{times: times, values: values, comps: comps}
		switch ch.Target.Path {
		case gltf.PathTranslation:
			tr.translation = curve
		case gltf.PathRotation:
			tr.rotation = curve
		case gltf.PathScale:
			tr.scale = curve
		}
	}
	return tracks
}

// inverseBinds reads the skin's inverse bind matrices, defaulting to
// identity per joint when absent or unreadable.
func inverseBinds(doc *gltf.Document, skin *gltf.Skin) []math.Mat4 {
	out := make([]math.Mat4, len(skin.Joints))
	for i := range out {
		out[i] = math.Identity()
	}
	if skin.InverseBindMatrices == nil {
		return out
	}
	vals, err := doc.Floats(*skin.InverseBindMatrices, 16)
	if err != nil {
		logger.Sugar.Warnf("inverse bind matrices unavailable: %v", err)
		return out
	}
	for i := range out {
		if (i+1)*16 > len(vals) {
			break
		}
		copy(out[i][:], vals[i*16:(i+1)*16])
	}
	return out
}
