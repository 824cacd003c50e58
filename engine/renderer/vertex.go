package renderer

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/wobble/engine/core"
)

const (
	// SwapchainBufferCount is the requested number of swapchain images (triple buffering).
	SwapchainBufferCount uint32 = 3
	// InstanceCount is the number of triangle copies issued by the single draw call.
	InstanceCount uint32 = 1000
)

// ClearColor is the background the render pass clears to.
var ClearColor = [4]float32{0.1, 0.1, 0.1, 1.0}

// Vertex is the per-vertex input of the pipeline: location 0 is the 2D
// position, location 1 the RGBA color.
type Vertex struct {
	Position mgl32.Vec2
	Color    mgl32.Vec4
}

const (
	VertexStride         = uint32(unsafe.Sizeof(Vertex{}))
	VertexPositionOffset = uint32(unsafe.Offsetof(Vertex{}.Position))
	VertexColorOffset    = uint32(unsafe.Offsetof(Vertex{}.Color))
)

// Triangle is the mesh uploaded once at startup and drawn every frame.
var Triangle = [3]Vertex{
	{Position: mgl32.Vec2{-0.5, -0.25}, Color: mgl32.Vec4{1.0, 0.0, 0.0, 1.0}},
	{Position: mgl32.Vec2{0.0, 0.5}, Color: mgl32.Vec4{0.0, 1.0, 0.0, 1.0}},
	{Position: mgl32.Vec2{0.25, -0.1}, Color: mgl32.Vec4{0.0, 0.0, 1.0, 1.0}},
}

// VertexBytes returns the raw bytes of vertices, laid out as the pipeline expects.
func VertexBytes(vertices []Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(VertexStride))
}

// PushConstants is the per-frame block read by the vertex shader. The field
// order matches the shader's push constant struct.
type PushConstants struct {
	Time   float32
	MouseX float32
	MouseY float32
}

const PushConstantsSize = uint32(unsafe.Sizeof(PushConstants{}))

// NewPushConstants builds the constants of one frame from the elapsed time in
// seconds and the last known normalized cursor position.
func NewPushConstants(elapsed float32, mouse core.MousePosition) PushConstants {
	return PushConstants{
		Time:   elapsed,
		MouseX: mouse.X,
		MouseY: mouse.Y,
	}
}

// Bytes returns the constants as they are uploaded with the draw.
func (pc *PushConstants) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(pc)), PushConstantsSize)
}
