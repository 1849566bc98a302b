// Package model assembles GPU-ready vertex streams from glTF scene files.
package model

// Mesh holds the flat, non-indexed vertex stream for one mesh selection.
// All arrays run parallel: Positions and Normals are always populated and
// equal in vertex count; UVs and Colors are either empty or exactly
// matched; Joints and Weights are always populated so the same layout
// serves static and skinned draws.
type Mesh struct {
	Positions []float32 // 3 per vertex
	Normals   []float32 // 3 per vertex
	UVs       []float32 // 2 per vertex, empty when no primitive had UVs
	Colors    []float32 // 4 per vertex, empty when no primitive had colors
	Joints    []uint32  // 4 per vertex, zero when unskinned
	Weights   []float32 // 4 per vertex, {1,0,0,0} when unskinned

	// TexturePath is the resolved base color texture of the first textured
	// primitive, for the renderer to bind. Empty when untextured.
	TexturePath string
}

// VertexCount returns the number of emitted vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// HasUV reports whether the stream carries texture coordinates.
func (m *Mesh) HasUV() bool {
	return len(m.UVs) > 0
}
