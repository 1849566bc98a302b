package gltf

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Common errors returned by the parser.
var (
	ErrInvalidVersion   = errors.New("invalid glTF version: must be 2.x")
	ErrInvalidGLBMagic  = errors.New("invalid GLB magic number")
	ErrInvalidGLBHeader = errors.New("invalid GLB version: must be 2")
	ErrMissingJSONChunk = errors.New("GLB file missing JSON chunk")
	ErrInvalidDataURI   = errors.New("invalid buffer data URI")
)

// SplitFragment separates a model path from its `#`-delimited selector
// suffix. "castle.glb#Tower#Gate" yields ("castle.glb", ["Tower", "Gate"]);
// a path without a fragment yields (path, nil). Empty sub-selectors are
// dropped, so a bare trailing "#" selects all meshes.
func SplitFragment(path string) (string, []string) {
	base, frag, found := strings.Cut(path, "#")
	if !found {
		return path, nil
	}
	var selectors []string
	for _, s := range strings.Split(frag, "#") {
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return base, selectors
}

// Load reads and decodes a glTF or GLB file. The format is detected from
// the extension; with an ambiguous extension the GLB magic is probed first
// and JSON is the fallback. External buffers referenced by relative URI are
// resolved against the file's directory; a missing buffer file is recorded
// as a warning and leaves that buffer empty rather than failing the load.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Decode(data, filepath.Ext(path), filepath.Dir(path))
}

// Decode parses in-memory glTF/GLB bytes. ext hints the container format
// (".glb" or ".gltf"); baseDir resolves relative buffer URIs.
func Decode(data []byte, ext string, baseDir string) (*Document, error) {
	isGLB := strings.EqualFold(ext, ".glb")
	if !isGLB && !strings.EqualFold(ext, ".gltf") {
		isGLB = len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == glbMagic
	}

	var (
		jsonData []byte
		binChunk []byte
		err      error
	)
	if isGLB {
		jsonData, binChunk, err = splitGLB(data)
		if err != nil {
			return nil, err
		}
	} else {
		jsonData = data
	}

	var doc Document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("parsing glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, ErrInvalidVersion
	}

	doc.baseDir = baseDir
	doc.loadBuffers(binChunk)
	return &doc, nil
}

// splitGLB extracts the JSON and BIN chunks from a GLB container.
func splitGLB(data []byte) (jsonData, binData []byte, err error) {
	r := bytes.NewReader(data)

	var header glbHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, fmt.Errorf("reading GLB header: %w", err)
	}
	if header.Magic != glbMagic {
		return nil, nil, ErrInvalidGLBMagic
	}
	if header.Version != glbVersion {
		return nil, nil, ErrInvalidGLBHeader
	}

	for {
		var chunk glbChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, fmt.Errorf("reading GLB chunk header: %w", err)
		}

		chunkData := make([]byte, chunk.ChunkLength)
		if _, err := io.ReadFull(r, chunkData); err != nil {
			return nil, nil, fmt.Errorf("reading GLB chunk data: %w", err)
		}

		switch chunk.ChunkType {
		case glbChunkJSON:
			jsonData = chunkData
		case glbChunkBIN:
			binData = chunkData
		}
	}

	if jsonData == nil {
		return nil, nil, ErrMissingJSONChunk
	}
	return jsonData, binData, nil
}

// loadBuffers populates Buffer.Data from the GLB binary chunk, data URIs,
// or external files. Failures are downgraded to warnings; downstream
// accessor bounds checks treat the affected attributes as unavailable.
func (d *Document) loadBuffers(binChunk []byte) {
	for i := range d.Buffers {
		buf := &d.Buffers[i]

		if buf.URI == "" {
			if i == 0 && binChunk != nil {
				buf.Data = binChunk
			} else {
				d.warnf("buffer %d has no URI and no GLB binary chunk", i)
			}
			continue
		}

		data, err := d.resolveBufferURI(buf.URI)
		if err != nil {
			d.warnf("buffer %d: %v", i, err)
			continue
		}
		buf.Data = data

		if len(buf.Data) < buf.ByteLength {
			d.warnf("buffer %d: declared %d bytes, loaded %d", i, buf.ByteLength, len(buf.Data))
		}
	}
}

// resolveBufferURI loads buffer bytes from a data URI or a file path.
// Relative paths resolve against the document's base directory; absolute
// paths pass through unchanged.
func (d *Document) resolveBufferURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		return decodeDataURI(uri)
	}

	full := uri
	if !filepath.IsAbs(uri) {
		full = filepath.Join(d.baseDir, uri)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("loading buffer file %q: %w", uri, err)
	}
	return data, nil
}

// decodeDataURI decodes a base64 data URI of the form
// data:[<mediatype>][;base64],<data>.
func decodeDataURI(uri string) ([]byte, error) {
	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, ErrInvalidDataURI
	}

	header := uri[5:commaIdx]
	if !strings.Contains(header, "base64") {
		return nil, fmt.Errorf("unsupported data URI encoding: %s", header)
	}

	data, err := base64.StdEncoding.DecodeString(uri[commaIdx+1:])
	if err != nil {
		return nil, fmt.Errorf("decoding base64 buffer: %w", err)
	}
	return data, nil
}

// BaseColorTexturePath resolves the base color texture of a material to a
// filesystem path, or "" when the material has none or the image is
// embedded. Relative image URIs resolve against the document's directory;
// data URIs and absolute paths pass through unresolved.
func (d *Document) BaseColorTexturePath(materialIndex int) string {
	if materialIndex < 0 || materialIndex >= len(d.Materials) {
		return ""
	}
	pbr := d.Materials[materialIndex].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorTexture == nil {
		return ""
	}
	texIdx := pbr.BaseColorTexture.Index
	if texIdx < 0 || texIdx >= len(d.Textures) || d.Textures[texIdx].Source == nil {
		return ""
	}
	imgIdx := *d.Textures[texIdx].Source
	if imgIdx < 0 || imgIdx >= len(d.Images) {
		return ""
	}
	uri := d.Images[imgIdx].URI
	if uri == "" || strings.HasPrefix(uri, "data:") || filepath.IsAbs(uri) {
		return uri
	}
	return filepath.Join(d.baseDir, uri)
}

func (d *Document) warnf(format string, args ...any) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}
