package shaders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriangleSourceEmbedded(t *testing.T) {
	src := TriangleSource()
	assert.NotEmpty(t, src)

	for _, want := range []string{
		"@vertex",
		"@fragment",
		"fn " + VertexEntryPoint,
		"fn " + FragmentEntryPoint,
		"var<push_constant>",
		"@builtin(instance_index)",
		"@location(0) position: vec2<f32>",
		"@location(1) color: vec4<f32>",
	} {
		assert.True(t, strings.Contains(src, want), "shader source missing %q", want)
	}
}

func TestPushConstantFieldOrder(t *testing.T) {
	src := TriangleSource()
	timeAt := strings.Index(src, "time: f32")
	xAt := strings.Index(src, "mouse_x: f32")
	yAt := strings.Index(src, "mouse_y: f32")

	assert.Positive(t, timeAt)
	assert.Less(t, timeAt, xAt)
	assert.Less(t, xAt, yAt)
}

func TestBytesToWords(t *testing.T) {
	// SPIR-V magic number, little-endian
	words := BytesToWords([]byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00, 0xff})
	assert.Equal(t, []uint32{0x07230203, 0x00010000}, words)
	assert.Empty(t, BytesToWords(nil))
}
