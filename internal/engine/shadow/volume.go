package shadow

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/voxview/internal/engine/camera"
	"github.com/Faultbox/voxview/internal/engine/gpu"
	"github.com/Faultbox/voxview/internal/engine/shader"
	"github.com/Faultbox/voxview/internal/engine/voxel"
	"github.com/Faultbox/voxview/internal/logger"
)

// MaxVolumeDim caps each axis of the occupancy grid.
const MaxVolumeDim = 256

// Volume is a world-aligned occupancy grid sampled by ray marching toward the light.
type Volume struct {
	Origin mgl32.Vec3
	Cell   float32
	Dims   [3]int

	dev   gpu.Device
	tex   uint32
	cells []byte
	dirty bool
}

var _ Technique = (*Volume)(nil)

// NewVolume creates an empty volume covering bounds with cubic cells of size cell.
// The cell grows when an axis would exceed MaxVolumeDim.
func NewVolume(dev gpu.Device, bounds AABB, cell float32) (*Volume, error) {
	if bounds.IsEmpty() {
		return nil, fmt.Errorf("shadow volume: empty bounds")
	}
	if cell <= 0 {
		return nil, fmt.Errorf("shadow volume: invalid cell size %g", cell)
	}

	extent := bounds.Max.Sub(bounds.Min)
	largest := max(extent[0], extent[1], extent[2])
	if largest/cell > MaxVolumeDim {
		grown := largest / MaxVolumeDim
		logger.Warn("shadow volume cell enlarged",
			zap.Float32("requested", cell),
			zap.Float32("used", grown))
		cell = grown
	}

	v := &Volume{Origin: bounds.Min, Cell: cell, dev: dev}
	for i := 0; i < 3; i++ {
		v.Dims[i] = max(1, int(extent[i]/cell+0.999))
	}
	v.cells = make([]byte, v.Dims[0]*v.Dims[1]*v.Dims[2])
	v.tex = dev.CreateTexture3D(v.cells, int32(v.Dims[0]), int32(v.Dims[1]), int32(v.Dims[2]))

	logger.Debug("shadow volume created",
		zap.Ints("dims", v.Dims[:]),
		zap.Float32("cell", cell))
	return v, nil
}

// Size returns the world extent covered by the grid.
func (v *Volume) Size() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(v.Dims[0]) * v.Cell,
		float32(v.Dims[1]) * v.Cell,
		float32(v.Dims[2]) * v.Cell,
	}
}

// cellOf returns the cell containing world point p.
func (v *Volume) cellOf(p mgl32.Vec3) (x, y, z int, ok bool) {
	rel := p.Sub(v.Origin).Mul(1 / v.Cell)
	if rel[0] < 0 || rel[1] < 0 || rel[2] < 0 {
		return 0, 0, 0, false
	}
	x, y, z = int(rel[0]), int(rel[1]), int(rel[2])
	if x >= v.Dims[0] || y >= v.Dims[1] || z >= v.Dims[2] {
		return 0, 0, 0, false
	}
	return x, y, z, true
}

func (v *Volume) index(x, y, z int) int {
	return x + y*v.Dims[0] + z*v.Dims[0]*v.Dims[1]
}

// AddShape marks the cells holding the solid voxels of g placed by model.
// It returns how many voxels landed inside the volume.
func (v *Volume) AddShape(g *voxel.Grid, model mgl32.Mat4) int {
	n := 0
	for z := 0; z < g.SizeZ; z++ {
		for y := 0; y < g.SizeY; y++ {
			for x := 0; x < g.SizeX; x++ {
				if !g.Solid(x, y, z) {
					continue
				}
				center := mgl32.Vec3{float32(x) + 0.5, float32(y) + 0.5, float32(z) + 0.5}
				cx, cy, cz, ok := v.cellOf(mgl32.TransformCoordinate(center, model))
				if !ok {
					continue
				}
				v.cells[v.index(cx, cy, cz)] = 255
				n++
			}
		}
	}
	if n > 0 {
		v.dirty = true
	}
	return n
}

// Occupied reports whether world point p falls in a filled cell.
func (v *Volume) Occupied(p mgl32.Vec3) bool {
	x, y, z, ok := v.cellOf(p)
	return ok && v.cells[v.index(x, y, z)] != 0
}

// UpdateTexture uploads the occupancy grid if it changed since the last upload.
func (v *Volume) UpdateTexture() {
	if !v.dirty {
		return
	}
	v.dev.UpdateTexture3D(v.tex, v.cells, int32(v.Dims[0]), int32(v.Dims[1]), int32(v.Dims[2]))
	v.dirty = false
}

// Render uploads pending changes. The volume is static, so casters are not drawn.
func (v *Volume) Render(_ *camera.Camera, _ func()) {
	v.UpdateTexture()
}

// Push binds the volume texture to VolumeUnit and uploads its placement.
func (v *Volume) Push(p *shader.Program, lightSpace mgl32.Mat4) {
	v.dev.BindTexture(VolumeUnit, gpu.Texture3D, v.tex)
	p.SetInt("shadowMode", modeVolume)
	p.SetInt("shadowMap", MapUnit)
	p.SetInt("shadowVolume", VolumeUnit)
	p.SetMat4("lightSpace", lightSpace)
	p.SetVec3("volumeOrigin", v.Origin)
	p.SetVec3("volumeSize", v.Size())
	p.SetFloat("volumeStep", v.Cell*0.5)
}

// Destroy releases the 3D texture.
func (v *Volume) Destroy() {
	if v.tex == 0 {
		return
	}
	v.dev.DeleteTexture(v.tex)
	v.tex = 0
}
