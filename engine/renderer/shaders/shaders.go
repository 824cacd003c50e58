// Package shaders holds the WGSL sources of the pipeline and compiles them
// to SPIR-V for the Vulkan backend.
package shaders

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed triangle.wgsl
var triangleSource string

const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// TriangleSource returns the WGSL source with both entry points.
func TriangleSource() string {
	return triangleSource
}

// Compile translates WGSL source into SPIR-V words.
func Compile(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("spir-v output is %d bytes, not a multiple of 4", len(spirvBytes))
	}
	return BytesToWords(spirvBytes), nil
}

// BytesToWords reassembles little-endian SPIR-V bytes into 32-bit words.
// Trailing bytes that do not fill a word are dropped.
func BytesToWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}
