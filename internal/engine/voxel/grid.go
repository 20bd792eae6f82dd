// Package voxel holds dense voxel grids and turns them into face quads.
package voxel

import "fmt"

// Empty is the cell value of an unoccupied voxel. Values 1..255 index the palette.
const Empty uint8 = 0

// Grid is a dense voxel volume indexed x + y*SizeX + z*SizeX*SizeY.
// Y is up.
type Grid struct {
	SizeX, SizeY, SizeZ int
	Cells               []uint8
}

// NewGrid allocates an empty grid.
func NewGrid(sx, sy, sz int) *Grid {
	if sx < 0 || sy < 0 || sz < 0 {
		panic(fmt.Sprintf("voxel: negative grid size %dx%dx%d", sx, sy, sz))
	}
	return &Grid{
		SizeX: sx,
		SizeY: sy,
		SizeZ: sz,
		Cells: make([]uint8, sx*sy*sz),
	}
}

// Size returns the grid dimensions as an array indexable by axis.
func (g *Grid) Size() [3]int {
	return [3]int{g.SizeX, g.SizeY, g.SizeZ}
}

// InBounds reports whether the coordinate lies inside the grid.
func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < g.SizeX && y < g.SizeY && z < g.SizeZ
}

func (g *Grid) index(x, y, z int) int {
	return x + y*g.SizeX + z*g.SizeX*g.SizeY
}

// At returns the cell value, Empty outside the grid.
func (g *Grid) At(x, y, z int) uint8 {
	if !g.InBounds(x, y, z) {
		return Empty
	}
	return g.Cells[g.index(x, y, z)]
}

// Set writes a cell. Out-of-range writes are ignored.
func (g *Grid) Set(x, y, z int, v uint8) {
	if !g.InBounds(x, y, z) {
		return
	}
	g.Cells[g.index(x, y, z)] = v
}

// Solid reports whether the cell is occupied.
func (g *Grid) Solid(x, y, z int) bool {
	return g.At(x, y, z) != Empty
}

// Count returns the number of occupied cells.
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.Cells {
		if c != Empty {
			n++
		}
	}
	return n
}

// Fill sets every cell to v.
func (g *Grid) Fill(v uint8) {
	for i := range g.Cells {
		g.Cells[i] = v
	}
}

// at3 reads a cell by an axis-indexed coordinate.
func (g *Grid) at3(p [3]int) uint8 {
	return g.At(p[0], p[1], p[2])
}
