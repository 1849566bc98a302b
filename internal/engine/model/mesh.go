package model

import (
	"errors"
	"fmt"

	"github.com/crowdware/raidkit/internal/logger"
	"github.com/crowdware/raidkit/pkg/gltf"
	"github.com/crowdware/raidkit/pkg/math"
)

var (
	// ErrMissingPosition means a contributing primitive carried no usable
	// POSITION attribute. Geometry without positions is never emitted.
	ErrMissingPosition = errors.New("primitive has no POSITION attribute")

	// ErrSelectorNotFound means a fragment selector matched neither a mesh
	// name nor a node name in the document.
	ErrSelectorNotFound = errors.New("selector not found")

	// ErrNoGeometry means the selection resolved but produced zero vertices.
	ErrNoGeometry = errors.New("no geometry under selection")
)

// bbox bounds for the unit-cube centering heuristic. Tile meshes are
// authored in [0,1]^3 and expected at the cell center, so a mesh whose
// extents fit the unit cube (with tolerance) is shifted by -0.5.
const (
	cubeMin = -0.001
	cubeMax = 1.001
)

// Load decodes the scene file at path and assembles its vertex stream.
// The path may carry a fragment: "model.glb#Body#Head" selects the named
// meshes (by mesh name, then by node name as a fallback); without a
// fragment every mesh in the file contributes.
func Load(path string) (*Mesh, error) {
	base, selectors := gltf.SplitFragment(path)

	doc, err := gltf.Load(base)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", base, err)
	}
	for _, w := range doc.Warnings() {
		logger.Sugar.Warnf("model %s: %s", base, w)
	}

	return Assemble(doc, selectors)
}

// Assemble flattens the selected meshes of doc into one triangle-list
// vertex stream. Indexed primitives are expanded, missing normals are
// synthesized flat per triangle, and unskinned vertices receive the
// neutral joint binding {0,0,0,0} / {1,0,0,0}.
func Assemble(doc *gltf.Document, selectors []string) (*Mesh, error) {
	meshes, err := selectMeshes(doc, selectors)
	if err != nil {
		return nil, err
	}

	var b builder
	for _, mi := range meshes {
		for pi := range doc.Meshes[mi].Primitives {
			prim := &doc.Meshes[mi].Primitives[pi]
			if err := b.addPrimitive(doc, prim); err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", doc.Meshes[mi].Name, pi, err)
			}
		}
	}
	if len(b.pos) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoGeometry, selectors)
	}

	out := &Mesh{
		Positions:   b.pos,
		Normals:     b.norm,
		UVs:         b.uv,
		Colors:      b.col,
		Joints:      b.joints,
		Weights:     b.weights,
		TexturePath: b.texture,
	}
	centerUnitCube(out.Positions)
	return out, nil
}

// selectMeshes resolves fragment selectors to mesh indices. A selector
// matches a mesh by name first; failing that, a node whose name matches
// and that references a mesh stands in for it.
func selectMeshes(doc *gltf.Document, selectors []string) ([]int, error) {
	if len(selectors) == 0 {
		all := make([]int, len(doc.Meshes))
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	out := make([]int, 0, len(selectors))
	for _, sel := range selectors {
		mi := -1
		for i := range doc.Meshes {
			if doc.Meshes[i].Name == sel {
				mi = i
				break
			}
		}
		if mi < 0 {
			for i := range doc.Nodes {
				n := &doc.Nodes[i]
				if n.Name == sel && n.Mesh != nil && *n.Mesh >= 0 && *n.Mesh < len(doc.Meshes) {
					mi = *n.Mesh
					break
				}
			}
		}
		if mi < 0 {
			return nil, fmt.Errorf("%w: %q", ErrSelectorNotFound, sel)
		}
		out = append(out, mi)
	}
	return out, nil
}

// builder accumulates the flat stream across primitives. Optional
// attributes stay empty until the first primitive that carries them;
// from then on every vertex gets a value, zero-padded where the source
// had none, so the parallel-array invariant holds across mixed inputs.
type builder struct {
	pos, norm, uv, col, weights []float32
	joints                      []uint32
	hasUV, hasColor             bool
	texture                     string
}

func (b *builder) addPrimitive(doc *gltf.Document, prim *gltf.Primitive) error {
	if prim.Mode != nil && *prim.Mode != gltf.PrimitiveTriangles {
		logger.Sugar.Debugf("skipping non-triangle primitive (mode %d)", *prim.Mode)
		return nil
	}

	posAcc, ok := prim.Attributes["POSITION"]
	if !ok {
		return ErrMissingPosition
	}
	positions, err := doc.Floats(posAcc, 3)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingPosition, err)
	}
	srcCount := len(positions) / 3

	// Optional attributes degrade to absent when unreadable.
	normals := b.optionalFloats(doc, prim, "NORMAL", 3, srcCount)
	uvs := b.optionalFloats(doc, prim, "TEXCOORD_0", 2, srcCount)
	colors := b.optionalFloats(doc, prim, "COLOR_0", 4, srcCount)
	weights := b.optionalFloats(doc, prim, "WEIGHTS_0", 4, srcCount)

	var joints []uint32
	if acc, ok := prim.Attributes["JOINTS_0"]; ok {
		joints, err = doc.UInts(acc, 4)
		if err != nil || len(joints) != srcCount*4 {
			logger.Sugar.Warnf("attribute JOINTS_0 unavailable: %v", err)
			joints = nil
		}
	}
	if joints == nil || weights == nil {
		joints, weights = nil, nil
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = doc.UInts(*prim.Indices, 1)
		if err != nil {
			logger.Sugar.Warnf("index accessor unavailable, skipping primitive: %v", err)
			return nil
		}
	} else {
		indices = make([]uint32, srcCount)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	// Expand to a non-indexed list, primitive-local first so flat normal
	// synthesis never crosses primitive boundaries.
	n := len(indices)
	ppos := make([]float32, 0, n*3)
	for _, idx := range indices {
		if int(idx) >= srcCount {
			return fmt.Errorf("index %d out of range (%d vertices)", idx, srcCount)
		}
		ppos = append(ppos, positions[idx*3], positions[idx*3+1], positions[idx*3+2])
	}

	var pnorm []float32
	if normals != nil {
		pnorm = make([]float32, 0, n*3)
		for _, idx := range indices {
			pnorm = append(pnorm, normals[idx*3], normals[idx*3+1], normals[idx*3+2])
		}
	} else {
		pnorm = flatNormals(ppos)
	}

	b.appendOptional(&b.uv, &b.hasUV, uvs, indices, 2)
	b.appendOptional(&b.col, &b.hasColor, colors, indices, 4)

	for _, idx := range indices {
		if joints != nil {
			b.joints = append(b.joints, joints[idx*4], joints[idx*4+1], joints[idx*4+2], joints[idx*4+3])
			b.weights = append(b.weights, weights[idx*4], weights[idx*4+1], weights[idx*4+2], weights[idx*4+3])
		} else {
			b.joints = append(b.joints, 0, 0, 0, 0)
			b.weights = append(b.weights, 1, 0, 0, 0)
		}
	}

	b.pos = append(b.pos, ppos...)
	b.norm = append(b.norm, pnorm...)

	if b.texture == "" && prim.Material != nil {
		b.texture = doc.BaseColorTexturePath(*prim.Material)
	}
	return nil
}

// optionalFloats reads a float attribute, returning nil when it is
// absent, malformed, or out of bounds. Losing an optional attribute is
// never fatal; the primitive just renders without it.
func (b *builder) optionalFloats(doc *gltf.Document, prim *gltf.Primitive, name string, comps, srcCount int) []float32 {
	acc, ok := prim.Attributes[name]
	if !ok {
		return nil
	}
	vals, err := doc.Floats(acc, comps)
	if err != nil || len(vals) != srcCount*comps {
		logger.Sugar.Warnf("attribute %s unavailable: %v", name, err)
		return nil
	}
	return vals
}

// appendOptional keeps an optional array aligned with the position count:
// the first primitive that has the attribute backfills zeros for earlier
// vertices, and later primitives without it are zero-padded.
func (b *builder) appendOptional(dst *[]float32, has *bool, src []float32, indices []uint32, comps int) {
	existing := len(b.pos) / 3
	if src != nil && !*has {
		*has = true
		*dst = append(*dst, make([]float32, existing*comps)...)
	}
	if !*has {
		return
	}
	if src == nil {
		*dst = append(*dst, make([]float32, len(indices)*comps)...)
		return
	}
	for _, idx := range indices {
		base := int(idx) * comps
		*dst = append(*dst, src[base:base+comps]...)
	}
}

// flatNormals synthesizes one face normal per triangle of the expanded
// positions, repeated for its three vertices. Degenerate triangles get
// the zero normal.
func flatNormals(pos []float32) []float32 {
	out := make([]float32, len(pos))
	for t := 0; t+9 <= len(pos); t += 9 {
		a := math.Vec3{X: pos[t], Y: pos[t+1], Z: pos[t+2]}
		b := math.Vec3{X: pos[t+3], Y: pos[t+4], Z: pos[t+5]}
		c := math.Vec3{X: pos[t+6], Y: pos[t+7], Z: pos[t+8]}

		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		for v := 0; v < 3; v++ {
			out[t+v*3] = n.X
			out[t+v*3+1] = n.Y
			out[t+v*3+2] = n.Z
		}
	}
	return out
}

// centerUnitCube shifts tile-style meshes authored in the unit cube to
// straddle the origin. Meshes with any extent outside [0,1] (tolerance
// 0.001) are left alone.
func centerUnitCube(pos []float32) {
	if len(pos) == 0 {
		return
	}
	min := [3]float32{pos[0], pos[1], pos[2]}
	max := min
	for i := 3; i+3 <= len(pos); i += 3 {
		for a := 0; a < 3; a++ {
			v := pos[i+a]
			if v < min[a] {
				min[a] = v
			}
			if v > max[a] {
				max[a] = v
			}
		}
	}
	for a := 0; a < 3; a++ {
		if min[a] < cubeMin || max[a] > cubeMax {
			return
		}
	}
	for i := 0; i < len(pos); i++ {
		pos[i] -= 0.5
	}
}
