// Package formats parses the viewer's input files: MagicaVoxel .vox models and scene XML.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// VOX format errors.
var (
	ErrInvalidVoxMagic   = errors.New("invalid VOX magic: expected 'VOX '")
	ErrTruncatedVoxData  = errors.New("truncated VOX data")
	ErrMissingVoxMain    = errors.New("VOX file has no MAIN chunk")
	ErrVoxObjectNotFound = errors.New("VOX object not found")
	ErrInvalidVoxSize    = errors.New("invalid VOX model size")
)

// MaxVoxSize is the largest model extent MagicaVoxel writes along any axis.
const MaxVoxSize = 256

// Voxel is one occupied cell in file coordinates (Z up).
type Voxel struct {
	X, Y, Z uint8
	Color   uint8 // palette index 1..255
}

// VoxModel is a single model from a SIZE/XYZI chunk pair.
type VoxModel struct {
	SizeX, SizeY, SizeZ int32
	Voxels              []Voxel
}

// VoxColor is an RGBA palette entry.
type VoxColor struct {
	R, G, B, A uint8
}

// VoxObject is a named shape from the scene graph.
type VoxObject struct {
	Name        string
	Model       int
	Translation [3]int32
}

// Vox is a parsed MagicaVoxel file.
type Vox struct {
	Version int32
	Models  []VoxModel
	// Palette[i] is the color of palette index i; Palette[0] is unused.
	Palette    [256]VoxColor
	HasPalette bool
	Objects    []VoxObject
}

// voxChunk is a raw chunk header plus its payloads.
type voxChunk struct {
	ID       string
	Content  []byte
	Children []byte
}

// scene graph nodes collected before object names are resolved.
type voxTransform struct {
	attrs       map[string]string
	child       int32
	translation [3]int32
}

type voxGroup struct {
	children []int32
}

type voxShape struct {
	models []int32
}

// ParseVox parses a .vox file from raw bytes.
func ParseVox(data []byte) (*Vox, error) {
	if len(data) < 8 {
		return nil, ErrTruncatedVoxData
	}
	if string(data[:4]) != "VOX " {
		return nil, ErrInvalidVoxMagic
	}

	vox := &Vox{
		Version: int32(binary.LittleEndian.Uint32(data[4:8])),
		Palette: DefaultVoxPalette(),
	}

	r := bytes.NewReader(data[8:])
	main, err := readVoxChunk(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingVoxMain
		}
		return nil, err
	}
	if main.ID != "MAIN" {
		return nil, fmt.Errorf("%w: first chunk is %q", ErrMissingVoxMain, main.ID)
	}

	transforms := make(map[int32]*voxTransform)
	groups := make(map[int32]*voxGroup)
	shapes := make(map[int32]*voxShape)

	var pendingSize *VoxModel
	children := bytes.NewReader(main.Children)
	for children.Len() > 0 {
		c, err := readVoxChunk(children)
		if err != nil {
			return nil, err
		}

		switch c.ID {
		case "PACK":
			// Model count is implied by the SIZE/XYZI pairs that follow.
		case "SIZE":
			if len(c.Content) < 12 {
				return nil, fmt.Errorf("%w: SIZE chunk", ErrTruncatedVoxData)
			}
			m := &VoxModel{
				SizeX: int32(binary.LittleEndian.Uint32(c.Content[0:])),
				SizeY: int32(binary.LittleEndian.Uint32(c.Content[4:])),
				SizeZ: int32(binary.LittleEndian.Uint32(c.Content[8:])),
			}
			for _, n := range [3]int32{m.SizeX, m.SizeY, m.SizeZ} {
				if n < 1 || n > MaxVoxSize {
					return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidVoxSize, m.SizeX, m.SizeY, m.SizeZ)
				}
			}
			pendingSize = m
		case "XYZI":
			if pendingSize == nil {
				return nil, fmt.Errorf("XYZI chunk without preceding SIZE")
			}
			voxels, err := parseXYZI(c.Content, pendingSize)
			if err != nil {
				return nil, err
			}
			pendingSize.Voxels = voxels
			vox.Models = append(vox.Models, *pendingSize)
			pendingSize = nil
		case "RGBA":
			if len(c.Content) < 1024 {
				return nil, fmt.Errorf("%w: RGBA chunk", ErrTruncatedVoxData)
			}
			// Entry i of the chunk is palette index i+1; the last entry is unused.
			for i := 0; i < 255; i++ {
				o := i * 4
				vox.Palette[i+1] = VoxColor{R: c.Content[o], G: c.Content[o+1], B: c.Content[o+2], A: c.Content[o+3]}
			}
			vox.Palette[0] = VoxColor{}
			vox.HasPalette = true
		case "nTRN":
			id, t, err := parseTransformNode(c.Content)
			if err != nil {
				return nil, err
			}
			transforms[id] = t
		case "nGRP":
			id, g, err := parseGroupNode(c.Content)
			if err != nil {
				return nil, err
			}
			groups[id] = g
		case "nSHP":
			id, s, err := parseShapeNode(c.Content)
			if err != nil {
				return nil, err
			}
			shapes[id] = s
		default:
			// MATL, LAYR, rOBJ, rCAM, NOTE, IMAP and future chunks are not needed.
		}
	}

	vox.Objects = resolveVoxObjects(transforms, groups, shapes, len(vox.Models))
	return vox, nil
}

// ParseVoxFile parses a .vox file from disk.
func ParseVoxFile(path string) (*Vox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading VOX file: %w", err)
	}
	return ParseVox(data)
}

// Model returns the model for a named object. An empty name selects the first model.
func (v *Vox) Model(name string) (*VoxModel, error) {
	if name == "" {
		if len(v.Models) == 0 {
			return nil, fmt.Errorf("%w: file has no models", ErrVoxObjectNotFound)
		}
		return &v.Models[0], nil
	}
	for _, obj := range v.Objects {
		if obj.Name == name {
			return &v.Models[obj.Model], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrVoxObjectNotFound, name)
}

// ObjectNames returns the names of all named objects, sorted.
func (v *Vox) ObjectNames() []string {
	names := make([]string, 0, len(v.Objects))
	for _, obj := range v.Objects {
		names = append(names, obj.Name)
	}
	sort.Strings(names)
	return names
}

func readVoxChunk(r *bytes.Reader) (voxChunk, error) {
	var header struct {
		ID           [4]byte
		ContentSize  int32
		ChildrenSize int32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.EOF) {
			return voxChunk{}, err
		}
		return voxChunk{}, fmt.Errorf("%w: chunk header", ErrTruncatedVoxData)
	}
	if header.ContentSize < 0 || header.ChildrenSize < 0 ||
		int64(header.ContentSize)+int64(header.ChildrenSize) > int64(r.Len()) {
		return voxChunk{}, fmt.Errorf("%w: chunk %q", ErrTruncatedVoxData, string(header.ID[:]))
	}

	c := voxChunk{
		ID:       string(header.ID[:]),
		Content:  make([]byte, header.ContentSize),
		Children: make([]byte, header.ChildrenSize),
	}
	// Sizes were checked against the remaining length above.
	_, _ = io.ReadFull(r, c.Content)
	_, _ = io.ReadFull(r, c.Children)
	return c, nil
}

func parseXYZI(content []byte, size *VoxModel) ([]Voxel, error) {
	if len(content) < 4 {
		return nil, fmt.Errorf("%w: XYZI chunk", ErrTruncatedVoxData)
	}
	n := int(binary.LittleEndian.Uint32(content))
	if n < 0 || len(content) < 4+n*4 {
		return nil, fmt.Errorf("%w: XYZI declares %d voxels", ErrTruncatedVoxData, n)
	}

	voxels := make([]Voxel, 0, n)
	for i := 0; i < n; i++ {
		o := 4 + i*4
		v := Voxel{X: content[o], Y: content[o+1], Z: content[o+2], Color: content[o+3]}
		if int32(v.X) >= size.SizeX || int32(v.Y) >= size.SizeY || int32(v.Z) >= size.SizeZ || v.Color == 0 {
			continue
		}
		voxels = append(voxels, v)
	}
	return voxels, nil
}

// voxReader reads the scene-graph primitive types.
type voxReader struct {
	r *bytes.Reader
}

func (vr voxReader) readInt() (int32, error) {
	var v int32
	if err := binary.Read(vr.r, binary.LittleEndian, &v); err != nil {
		return 0, fmt.Errorf("%w: scene node", ErrTruncatedVoxData)
	}
	return v, nil
}

func (vr voxReader) readString() (string, error) {
	n, err := vr.readInt()
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > vr.r.Len() {
		return "", fmt.Errorf("%w: string of %d bytes", ErrTruncatedVoxData, n)
	}
	b := make([]byte, n)
	_, _ = io.ReadFull(vr.r, b)
	return string(b), nil
}

func (vr voxReader) readDict() (map[string]string, error) {
	n, err := vr.readInt()
	if err != nil {
		return nil, err
	}
	d := make(map[string]string, min(max(n, 0), 64))
	for i := int32(0); i < n; i++ {
		k, err := vr.readString()
		if err != nil {
			return nil, err
		}
		v, err := vr.readString()
		if err != nil {
			return nil, err
		}
		d[k] = v
	}
	return d, nil
}

func parseTransformNode(content []byte) (int32, *voxTransform, error) {
	vr := voxReader{r: bytes.NewReader(content)}
	id, err := vr.readInt()
	if err != nil {
		return 0, nil, err
	}
	attrs, err := vr.readDict()
	if err != nil {
		return 0, nil, err
	}
	child, err := vr.readInt()
	if err != nil {
		return 0, nil, err
	}
	// reserved id, layer id
	for i := 0; i < 2; i++ {
		if _, err := vr.readInt(); err != nil {
			return 0, nil, err
		}
	}
	frames, err := vr.readInt()
	if err != nil {
		return 0, nil, err
	}

	t := &voxTransform{attrs: attrs, child: child}
	for i := int32(0); i < frames; i++ {
		frame, err := vr.readDict()
		if err != nil {
			return 0, nil, err
		}
		if i == 0 {
			if s, ok := frame["_t"]; ok {
				_, _ = fmt.Sscan(s, &t.translation[0], &t.translation[1], &t.translation[2])
			}
		}
	}
	return id, t, nil
}

func parseGroupNode(content []byte) (int32, *voxGroup, error) {
	vr := voxReader{r: bytes.NewReader(content)}
	id, err := vr.readInt()
	if err != nil {
		return 0, nil, err
	}
	if _, err := vr.readDict(); err != nil {
		return 0, nil, err
	}
	n, err := vr.readInt()
	if err != nil {
		return 0, nil, err
	}
	g := &voxGroup{}
	for i := int32(0); i < n; i++ {
		c, err := vr.readInt()
		if err != nil {
			return 0, nil, err
		}
		g.children = append(g.children, c)
	}
	return id, g, nil
}

func parseShapeNode(content []byte) (int32, *voxShape, error) {
	vr := voxReader{r: bytes.NewReader(content)}
	id, err := vr.readInt()
	if err != nil {
		return 0, nil, err
	}
	if _, err := vr.readDict(); err != nil {
		return 0, nil, err
	}
	n, err := vr.readInt()
	if err != nil {
		return 0, nil, err
	}
	s := &voxShape{}
	for i := int32(0); i < n; i++ {
		m, err := vr.readInt()
		if err != nil {
			return 0, nil, err
		}
		if _, err := vr.readDict(); err != nil {
			return 0, nil, err
		}
		s.models = append(s.models, m)
	}
	return id, s, nil
}

// resolveVoxObjects walks the scene graph from the root transform and names
// every shape whose transform carries a _name. Translations accumulate down the tree.
func resolveVoxObjects(transforms map[int32]*voxTransform, groups map[int32]*voxGroup, shapes map[int32]*voxShape, modelCount int) []VoxObject {
	var objects []VoxObject

	var walk func(id int32, offset [3]int32, depth int)
	walk = func(id int32, offset [3]int32, depth int) {
		t, ok := transforms[id]
		if !ok || depth > 64 {
			return
		}
		for i := range offset {
			offset[i] += t.translation[i]
		}

		if s, ok := shapes[t.child]; ok {
			name := t.attrs["_name"]
			if name == "" || len(s.models) == 0 {
				return
			}
			model := int(s.models[0])
			if model < 0 || model >= modelCount {
				return
			}
			objects = append(objects, VoxObject{Name: name, Model: model, Translation: offset})
			return
		}
		if g, ok := groups[t.child]; ok {
			for _, c := range g.children {
				walk(c, offset, depth+1)
			}
		}
	}
	walk(0, [3]int32{}, 0)

	return objects
}

// DefaultVoxPalette returns the palette used when a file has no RGBA chunk:
// a 6-level color cube followed by red, green, blue and gray ramps.
func DefaultVoxPalette() [256]VoxColor {
	var p [256]VoxColor
	levels := [6]uint8{0xff, 0xcc, 0x99, 0x66, 0x33, 0x00}
	i := 1
	for _, r := range levels {
		for _, g := range levels {
			for _, b := range levels {
				if r == 0 && g == 0 && b == 0 {
					continue
				}
				p[i] = VoxColor{R: r, G: g, B: b, A: 0xff}
				i++
			}
		}
	}

	ramp := [10]uint8{0xee, 0xdd, 0xbb, 0xaa, 0x88, 0x77, 0x55, 0x44, 0x22, 0x11}
	for channel := 0; channel < 4; channel++ {
		for _, l := range ramp {
			c := VoxColor{A: 0xff}
			switch channel {
			case 0:
				c.R = l
			case 1:
				c.G = l
			case 2:
				c.B = l
			default:
				c.R, c.G, c.B = l, l, l
			}
			p[i] = c
			i++
		}
	}
	return p
}
