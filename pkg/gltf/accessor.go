package gltf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Accessor read errors. Callers generally downgrade these to "attribute
// unavailable" rather than failing a whole load; position data is the
// exception and stays fatal at the assembly layer.
var (
	ErrAccessorRange       = errors.New("accessor index out of range")
	ErrAccessorSparse      = errors.New("sparse accessors not supported")
	ErrAccessorNoView      = errors.New("accessor has no bufferView")
	ErrAccessorShape       = errors.New("accessor type/shape mismatch")
	ErrAccessorBounds      = errors.New("accessor byte range exceeds buffer size")
	ErrAccessorComponent   = errors.New("unsupported accessor component type")
	ErrAccessorViewInvalid = errors.New("accessor references invalid bufferView or buffer")
)

// componentSize returns the byte size of a glTF component type, or 0 for
// unknown types.
func componentSize(componentType int) int {
	switch componentType {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	case ComponentUnsignedInt, ComponentFloat:
		return 4
	default:
		return 0
	}
}

// typeComponentCount returns the number of components per element for an
// accessor type string, or 0 for unsupported types.
func typeComponentCount(accessorType string) int {
	switch accessorType {
	case TypeScalar:
		return 1
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4:
		return 4
	case TypeMat4:
		return 16
	default:
		return 0
	}
}

// accessorView is a resolved, bounds-checked window over a buffer: base is
// the byte offset of element 0, stride the distance between elements.
type accessorView struct {
	data     []byte
	base     int
	stride   int
	elemSize int
	count    int
}

// resolve validates an accessor against the expected component count and
// size, resolves a zero stride to tight packing, and performs the mandatory
// bounds check: the declared range [base, base+stride*(count-1)+elemSize)
// must fit inside the backing buffer. Malformed and truncated files are
// common; no read may run past the loaded bytes.
func (d *Document) resolve(accessorIndex, wantComponents, compSize int) (accessorView, error) {
	var v accessorView
	if accessorIndex < 0 || accessorIndex >= len(d.Accessors) {
		return v, fmt.Errorf("%w: %d", ErrAccessorRange, accessorIndex)
	}
	acc := &d.Accessors[accessorIndex]

	if acc.Sparse != nil {
		return v, ErrAccessorSparse
	}
	if acc.BufferView == nil {
		return v, ErrAccessorNoView
	}
	if typeComponentCount(acc.Type) != wantComponents {
		return v, fmt.Errorf("%w: type %s, want %d components", ErrAccessorShape, acc.Type, wantComponents)
	}
	if componentSize(acc.ComponentType) != compSize {
		return v, fmt.Errorf("%w: componentType %d", ErrAccessorComponent, acc.ComponentType)
	}

	viewIdx := *acc.BufferView
	if viewIdx < 0 || viewIdx >= len(d.BufferViews) {
		return v, ErrAccessorViewInvalid
	}
	bv := &d.BufferViews[viewIdx]
	if bv.Buffer < 0 || bv.Buffer >= len(d.Buffers) {
		return v, ErrAccessorViewInvalid
	}

	v.data = d.Buffers[bv.Buffer].Data
	v.elemSize = compSize * wantComponents
	v.stride = v.elemSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		v.stride = *bv.ByteStride
	}
	v.base = bv.ByteOffset + acc.ByteOffset
	v.count = acc.Count

	if v.count > 0 {
		end := v.base + v.stride*(v.count-1) + v.elemSize
		if v.base < 0 || end > len(v.data) {
			return accessorView{}, fmt.Errorf("%w: need [%d,%d), have %d bytes",
				ErrAccessorBounds, v.base, end, len(v.data))
		}
	}
	return v, nil
}

// Floats reads a float32 accessor as a flat array of count*componentCount
// values. componentCount must match the accessor's element shape
// (1 scalar, 2 vec2, 3 vec3, 4 vec4, 16 mat4). On any failure the result
// is nil and no partial data is produced.
func (d *Document) Floats(accessorIndex, componentCount int) ([]float32, error) {
	v, err := d.resolve(accessorIndex, componentCount, 4)
	if err != nil {
		return nil, err
	}
	if aerr := d.requireFloat(accessorIndex); aerr != nil {
		return nil, aerr
	}

	out := make([]float32, v.count*componentCount)
	for i := 0; i < v.count; i++ {
		elem := v.data[v.base+i*v.stride:]
		for c := 0; c < componentCount; c++ {
			bits := binary.LittleEndian.Uint32(elem[c*4:])
			out[i*componentCount+c] = math.Float32frombits(bits)
		}
	}
	return out, nil
}

// requireFloat rejects non-float component types that share the 4-byte size
// (UNSIGNED_INT) before a float read.
func (d *Document) requireFloat(accessorIndex int) error {
	if d.Accessors[accessorIndex].ComponentType != ComponentFloat {
		return fmt.Errorf("%w: componentType %d, want FLOAT",
			ErrAccessorComponent, d.Accessors[accessorIndex].ComponentType)
	}
	return nil
}

// UInts reads an unsigned integer accessor (8-, 16-, or 32-bit components)
// as a flat array of count*componentCount values widened to uint32. Used
// for primitive indices (componentCount 1) and joint indices
// (componentCount 4).
func (d *Document) UInts(accessorIndex, componentCount int) ([]uint32, error) {
	if accessorIndex < 0 || accessorIndex >= len(d.Accessors) {
		return nil, fmt.Errorf("%w: %d", ErrAccessorRange, accessorIndex)
	}
	compType := d.Accessors[accessorIndex].ComponentType

	var compSize int
	switch compType {
	case ComponentUnsignedByte:
		compSize = 1
	case ComponentUnsignedShort:
		compSize = 2
	case ComponentUnsignedInt:
		compSize = 4
	default:
		return nil, fmt.Errorf("%w: componentType %d, want unsigned", ErrAccessorComponent, compType)
	}

	v, err := d.resolve(accessorIndex, componentCount, compSize)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, v.count*componentCount)
	for i := 0; i < v.count; i++ {
		elem := v.data[v.base+i*v.stride:]
		for c := 0; c < componentCount; c++ {
			switch compSize {
			case 1:
				out[i*componentCount+c] = uint32(elem[c])
			case 2:
				out[i*componentCount+c] = uint32(binary.LittleEndian.Uint16(elem[c*2:]))
			case 4:
				out[i*componentCount+c] = binary.LittleEndian.Uint32(elem[c*4:])
			}
		}
	}
	return out, nil
}
