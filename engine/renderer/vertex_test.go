package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/spaghettifunk/wobble/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexLayout(t *testing.T) {
	assert.Equal(t, uint32(24), VertexStride)
	assert.Equal(t, uint32(0), VertexPositionOffset)
	assert.Equal(t, uint32(8), VertexColorOffset)
}

func TestVertexBytes(t *testing.T) {
	raw := VertexBytes(Triangle[:])
	require.Len(t, raw, 3*int(VertexStride))

	// second vertex, green channel
	off := int(VertexStride) + int(VertexColorOffset) + 4
	assert.Equal(t, float32(1.0), math.Float32frombits(binary.LittleEndian.Uint32(raw[off:])))

	assert.Nil(t, VertexBytes(nil))
}

func TestPushConstantsPacking(t *testing.T) {
	assert.Equal(t, uint32(12), PushConstantsSize)

	pc := NewPushConstants(2.5, core.MousePosition{X: 0.25, Y: 0.75})
	raw := pc.Bytes()
	require.Len(t, raw, 12)

	assert.Equal(t, float32(2.5), math.Float32frombits(binary.LittleEndian.Uint32(raw[0:])))
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.LittleEndian.Uint32(raw[4:])))
	assert.Equal(t, float32(0.75), math.Float32frombits(binary.LittleEndian.Uint32(raw[8:])))
}

func TestTriangleColors(t *testing.T) {
	assert.Equal(t, float32(1), Triangle[0].Color.X())
	assert.Equal(t, float32(1), Triangle[1].Color.Y())
	assert.Equal(t, float32(1), Triangle[2].Color.Z())
	for _, v := range Triangle {
		assert.Equal(t, float32(1), v.Color.W())
	}
}
