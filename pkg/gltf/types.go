// Package gltf provides a parser for glTF 2.0 scene-interchange files
// (.gltf JSON and .glb binary) plus typed, bounds-checked accessor reads
// over the raw binary buffers.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package gltf

// Document is the decoded root of a glTF file. It is immutable after Load:
// callers must not modify nodes, buffers, or any other slice it owns.
type Document struct {
	Asset       Asset        `json:"asset"`
	Scenes      []Scene      `json:"scenes,omitempty"`
	Nodes       []Node       `json:"nodes,omitempty"`
	Meshes      []Mesh       `json:"meshes,omitempty"`
	Accessors   []Accessor   `json:"accessors,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
	Textures    []Texture    `json:"textures,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Skins       []Skin       `json:"skins,omitempty"`
	Animations  []Animation  `json:"animations,omitempty"`

	// baseDir is the directory of the source file, used to resolve
	// relative buffer and image URIs.
	baseDir string

	// warnings collects non-fatal decode diagnostics (missing external
	// buffer files and the like) for the caller's log sink.
	warnings []string
}

// BaseDir returns the directory containing the loaded file.
func (d *Document) BaseDir() string {
	return d.baseDir
}

// Warnings returns non-fatal diagnostics collected during Load.
func (d *Document) Warnings() []string {
	return d.warnings
}

// Asset holds glTF file metadata. Version must begin with "2.".
type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

// Scene is a set of root node indices.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// Node is one entry in the transform hierarchy. A node carries either an
// explicit column-major Matrix or a Translation/Rotation/Scale triple,
// never both.
type Node struct {
	Name        string       `json:"name,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Skin        *int         `json:"skin,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"`
	Scale       *[3]float32  `json:"scale,omitempty"`
}

// Mesh is a named list of primitive batches.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive is one drawable batch: attribute accessors plus optional
// indices and material. Attribute keys follow the glTF semantics
// (POSITION, NORMAL, TEXCOORD_0, COLOR_0, JOINTS_0, WEIGHTS_0).
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"`
}

// PrimitiveTriangles is the default (and only supported) primitive mode.
const PrimitiveTriangles = 4

// Accessor is a typed view over a region of a buffer.
type Accessor struct {
	Name          string          `json:"name,omitempty"`
	BufferView    *int            `json:"bufferView,omitempty"`
	ByteOffset    int             `json:"byteOffset,omitempty"`
	ComponentType int             `json:"componentType"`
	Count         int             `json:"count"`
	Type          string          `json:"type"`
	Sparse        *AccessorSparse `json:"sparse,omitempty"`
}

// AccessorSparse marks sparse storage. Sparse accessors are not supported;
// reads against them fail. Only Count is decoded.
type AccessorSparse struct {
	Count int `json:"count"`
}

// Component type constants (glTF componentType values).
const (
	ComponentByte          = 5120
	ComponentUnsignedByte  = 5121
	ComponentShort         = 5122
	ComponentUnsignedShort = 5123
	ComponentUnsignedInt   = 5125
	ComponentFloat         = 5126
)

// Accessor element type constants (glTF accessor.type values).
const (
	TypeScalar = "SCALAR"
	TypeVec2   = "VEC2"
	TypeVec3   = "VEC3"
	TypeVec4   = "VEC4"
	TypeMat4   = "MAT4"
)

// BufferView is a byte range within a buffer, optionally strided.
type BufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	ByteStride *int `json:"byteStride,omitempty"`
}

// Buffer is a raw binary data container. Data is populated during Load
// from the URI, an embedded data URI, or the GLB binary chunk; it stays
// nil when the external file is missing.
type Buffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
	Data       []byte `json:"-"`
}

// Material carries the subset of glTF material data the pipeline surfaces:
// the base color texture reference.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
}

// PBRMetallicRoughness is the metallic-roughness material model.
type PBRMetallicRoughness struct {
	BaseColorFactor  *[4]float32  `json:"baseColorFactor,omitempty"`
	BaseColorTexture *TextureInfo `json:"baseColorTexture,omitempty"`
}

// TextureInfo references a texture by index.
type TextureInfo struct {
	Index int `json:"index"`
}

// Texture pairs an image source with sampling parameters.
type Texture struct {
	Name   string `json:"name,omitempty"`
	Source *int   `json:"source,omitempty"`
}

// Image is a texture image source, referenced by URI or buffer view.
type Image struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
}

// Skin binds mesh-space vertices to a skeleton: an ordered joint node list
// plus an optional accessor of per-joint inverse bind matrices.
type Skin struct {
	Name                string `json:"name,omitempty"`
	InverseBindMatrices *int   `json:"inverseBindMatrices,omitempty"`
	Skeleton            *int   `json:"skeleton,omitempty"`
	Joints              []int  `json:"joints"`
}

// Animation is a named list of channels binding samplers to node transforms.
type Animation struct {
	Name     string        `json:"name,omitempty"`
	Channels []AnimChannel `json:"channels"`
	Samplers []AnimSampler `json:"samplers"`
}

// AnimChannel connects a sampler to a target node and transform path.
type AnimChannel struct {
	Sampler int        `json:"sampler"`
	Target  AnimTarget `json:"target"`
}

// AnimTarget names the animated node and property.
type AnimTarget struct {
	Node *int   `json:"node,omitempty"`
	Path string `json:"path"`
}

// AnimSampler holds the keyframe time (input) and value (output) accessors.
type AnimSampler struct {
	Input         int    `json:"input"`
	Output        int    `json:"output"`
	Interpolation string `json:"interpolation,omitempty"`
}

// Animation path constants.
const (
	PathTranslation = "translation"
	PathRotation    = "rotation"
	PathScale       = "scale"
	PathWeights     = "weights"
)

// glbHeader is the 12-byte GLB file header.
type glbHeader struct {
	Magic   uint32 // must be 0x46546C67 ("glTF")
	Version uint32 // must be 2
	Length  uint32
}

// glbChunkHeader precedes each GLB chunk.
type glbChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}

const (
	glbMagic     = 0x46546C67 // "glTF" little-endian
	glbVersion   = 2
	glbChunkJSON = 0x4E4F534A // "JSON"
	glbChunkBIN  = 0x004E4942 // "BIN\0"
)
