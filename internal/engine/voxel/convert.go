package voxel

import "github.com/Faultbox/voxview/pkg/formats"

// FromVox converts a MagicaVoxel model (Z up) into a Y-up grid.
// File (x, y, z) lands at grid (x, z, SizeY-1-y), which keeps the handedness.
func FromVox(m *formats.VoxModel) *Grid {
	g := NewGrid(int(m.SizeX), int(m.SizeZ), int(m.SizeY))
	for _, v := range m.Voxels {
		g.Set(int(v.X), int(v.Z), int(m.SizeY)-1-int(v.Y), v.Color)
	}
	return g
}

// PaletteRGBA packs a palette into the 256x1 RGBA texture sampled by voxel shaders.
func PaletteRGBA(p *[256]formats.VoxColor) []byte {
	out := make([]byte, 256*4)
	for i, c := range p {
		out[i*4] = c.R
		out[i*4+1] = c.G
		out[i*4+2] = c.B
		out[i*4+3] = c.A
	}
	return out
}

// Box returns the six quads of a solid box spanning size voxels from the origin.
func Box(size [3]int, material uint8) []Quad {
	quads := make([]Quad, 0, 6)
	for a := AxisX; a <= AxisZ; a++ {
		u, v := planeAxes(a)
		for _, positive := range []bool{false, true} {
			layer := 0
			if positive {
				layer = size[a]
			}
			quads = append(quads, Quad{
				Axis:     a,
				Positive: positive,
				Layer:    layer,
				W:        size[u],
				H:        size[v],
				Material: material,
			})
		}
	}
	return quads
}
