package gltf

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// f32bytes packs float32 values little-endian.
func f32bytes(vals ...float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// accessorDoc builds a single-buffer document with one accessor.
func accessorDoc(data []byte, acc Accessor, stride *int) *Document {
	acc.BufferView = intPtr(0)
	return &Document{
		Accessors: []Accessor{acc},
		BufferViews: []BufferView{
			{Buffer: 0, ByteLength: len(data), ByteStride: stride},
		},
		Buffers: []Buffer{{ByteLength: len(data), Data: data}},
	}
}

func intPtr(v int) *int { return &v }

func TestFloatsTightlyPacked(t *testing.T) {
	data := f32bytes(1, 2, 3, 4, 5, 6)
	doc := accessorDoc(data, Accessor{ComponentType: ComponentFloat, Count: 2, Type: TypeVec3}, nil)

	got, err := doc.Floats(0, 3)
	if err != nil {
		t.Fatalf("Floats: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected count*components=6 values, got %d", len(got))
	}
	want := []float32{1, 2, 3, 4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFloatsInterleavedStride(t *testing.T) {
	// Two vec3 positions interleaved with a vec2 uv: stride 20 bytes.
	data := f32bytes(
		1, 2, 3, 9, 9, // position 0 + uv
		4, 5, 6, 9, 9, // position 1 + uv
	)
	doc := accessorDoc(data, Accessor{ComponentType: ComponentFloat, Count: 2, Type: TypeVec3}, intPtr(20))

	got, err := doc.Floats(0, 3)
	if err != nil {
		t.Fatalf("Floats: %v", err)
	}
	want := []float32{1, 2, 3, 4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFloatsBoundsCheck(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		count int
	}{
		{"empty buffer", nil, 2},
		{"one element short", f32bytes(1, 2, 3), 2},
		{"truncated last component", f32bytes(1, 2, 3, 4, 5, 6)[:23], 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := accessorDoc(tt.data, Accessor{ComponentType: ComponentFloat, Count: tt.count, Type: TypeVec3}, nil)
			got, err := doc.Floats(0, 3)
			if !errors.Is(err, ErrAccessorBounds) {
				t.Errorf("expected ErrAccessorBounds, got %v", err)
			}
			if got != nil {
				t.Errorf("expected nil output on bounds failure, got %d values", len(got))
			}
		})
	}
}

func TestFloatsStrideBounds(t *testing.T) {
	// Buffer holds exactly 2 tightly packed vec3 elements; a 16-byte stride
	// pushes the second element past the end.
	data := f32bytes(1, 2, 3, 4, 5, 6)
	doc := accessorDoc(data, Accessor{ComponentType: ComponentFloat, Count: 2, Type: TypeVec3}, intPtr(16))

	if _, err := doc.Floats(0, 3); !errors.Is(err, ErrAccessorBounds) {
		t.Errorf("expected ErrAccessorBounds with oversized stride, got %v", err)
	}
}

func TestFloatsShapeMismatch(t *testing.T) {
	data := f32bytes(1, 2, 3, 4)
	doc := accessorDoc(data, Accessor{ComponentType: ComponentFloat, Count: 2, Type: TypeVec2}, nil)

	if _, err := doc.Floats(0, 3); !errors.Is(err, ErrAccessorShape) {
		t.Errorf("expected ErrAccessorShape reading VEC2 as vec3, got %v", err)
	}
}

func TestFloatsRejectsIntegerComponents(t *testing.T) {
	data := []byte{1, 0, 0, 0, 2, 0, 0, 0}
	doc := accessorDoc(data, Accessor{ComponentType: ComponentUnsignedInt, Count: 2, Type: TypeScalar}, nil)

	if _, err := doc.Floats(0, 1); !errors.Is(err, ErrAccessorComponent) {
		t.Errorf("expected ErrAccessorComponent for UNSIGNED_INT float read, got %v", err)
	}
}

func TestFloatsSparseUnsupported(t *testing.T) {
	data := f32bytes(1, 2, 3)
	doc := accessorDoc(data, Accessor{
		ComponentType: ComponentFloat, Count: 1, Type: TypeVec3,
		Sparse: &AccessorSparse{Count: 1},
	}, nil)

	if _, err := doc.Floats(0, 3); !errors.Is(err, ErrAccessorSparse) {
		t.Errorf("expected ErrAccessorSparse, got %v", err)
	}
}

func TestUIntsWidening(t *testing.T) {
	tests := []struct {
		name     string
		compType int
		data     []byte
	}{
		{"u8", ComponentUnsignedByte, []byte{0, 1, 2, 250}},
		{"u16", ComponentUnsignedShort, []byte{0, 0, 1, 0, 2, 0, 250, 0}},
		{"u32", ComponentUnsignedInt, []byte{0, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0, 250, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := accessorDoc(tt.data, Accessor{ComponentType: tt.compType, Count: 4, Type: TypeScalar}, nil)
			got, err := doc.UInts(0, 1)
			if err != nil {
				t.Fatalf("UInts: %v", err)
			}
			want := []uint32{0, 1, 2, 250}
			if len(got) != len(want) {
				t.Fatalf("expected %d values, got %d", len(want), len(got))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
				}
			}
		})
	}
}

func TestUIntsJointsVec4(t *testing.T) {
	// Two vertices of u8 joint indices.
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	doc := accessorDoc(data, Accessor{ComponentType: ComponentUnsignedByte, Count: 2, Type: TypeVec4}, nil)

	got, err := doc.UInts(0, 4)
	if err != nil {
		t.Fatalf("UInts: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("expected 8 values, got %d", len(got))
	}
	for i := 0; i < 8; i++ {
		if got[i] != uint32(i) {
			t.Errorf("index %d: got %d, want %d", i, got[i], i)
		}
	}
}

func TestUIntsRejectsFloat(t *testing.T) {
	data := f32bytes(1, 2)
	doc := accessorDoc(data, Accessor{ComponentType: ComponentFloat, Count: 2, Type: TypeScalar}, nil)

	if _, err := doc.UInts(0, 1); !errors.Is(err, ErrAccessorComponent) {
		t.Errorf("expected ErrAccessorComponent for FLOAT index read, got %v", err)
	}
}

func TestUIntsBounds(t *testing.T) {
	data := []byte{0, 1, 2}
	doc := accessorDoc(data, Accessor{ComponentType: ComponentUnsignedShort, Count: 2, Type: TypeScalar}, nil)

	got, err := doc.UInts(0, 1)
	if !errors.Is(err, ErrAccessorBounds) {
		t.Errorf("expected ErrAccessorBounds, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil output, got %v", got)
	}
}

func TestAccessorIndexOutOfRange(t *testing.T) {
	doc := &Document{}
	if _, err := doc.Floats(0, 3); !errors.Is(err, ErrAccessorRange) {
		t.Errorf("expected ErrAccessorRange, got %v", err)
	}
	if _, err := doc.UInts(-1, 1); !errors.Is(err, ErrAccessorRange) {
		t.Errorf("expected ErrAccessorRange, got %v", err)
	}
}
