// Package gpu holds the GPU-facing layouts of engine data.
package gpu

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-graph/engine/camera"
	"github.com/Carmen-Shannon/oxy-graph/engine/geom"
	"github.com/cogentcore/webgpu/wgpu"
)

// CameraUniformSource is the WGSL definition of the CameraUniform struct.
// Matches CameraUniform layout exactly (176 bytes, std140/WGSL aligned).
//
//go:embed assets/camera_uniform.wgsl
var CameraUniformSource string

// CameraUniform is the GPU-aligned camera uniform: view-projection matrix,
// world position and the six world-space frustum planes as (normal, offset)
// with outward-facing normals.
type CameraUniform struct {
	ViewProj [16]float32   // offset   0: mat4x4<f32>
	Position [3]float32    // offset  64: vec3<f32>
	_pad     float32       // offset  76: vec3 padding
	Planes   [6][4]float32 // offset  80: array<vec4<f32>, 6>
}

// Size returns the size of the CameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (176)
func (u *CameraUniform) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the CameraUniform into a little-endian byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (u *CameraUniform) Marshal() []byte {
	buf := make([]byte, u.Size())
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
	for i := range 16 {
		put(i*4, u.ViewProj[i])
	}
	for i := range 3 {
		put(64+i*4, u.Position[i])
	}
	for p := range 6 {
		for i := range 4 {
			put(80+p*16+i*4, u.Planes[p][i])
		}
	}
	return buf
}

// CameraUniformFrom captures the derived state of cam as of its last Update.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - CameraUniform: the uniform data
func CameraUniformFrom(cam camera.Camera) CameraUniform {
	var u CameraUniform
	u.ViewProj = cam.ViewProj()
	u.Position = cam.Position()
	f := cam.WorldFrustum()
	for i, pl := range f.Planes {
		u.Planes[i] = planeVec(pl)
	}
	return u
}

func planeVec(pl geom.Plane) [4]float32 {
	return [4]float32{pl.Normal[0], pl.Normal[1], pl.Normal[2], pl.Offset}
}

// CameraBufferDescriptor describes a uniform buffer sized for one CameraUniform.
//
// Parameters:
//   - label: debug label of the buffer
//
// Returns:
//   - *wgpu.BufferDescriptor: the descriptor
func CameraBufferDescriptor(label string) *wgpu.BufferDescriptor {
	var u CameraUniform
	return &wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(u.Size()),
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	}
}
