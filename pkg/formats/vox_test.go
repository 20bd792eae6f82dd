package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// voxBuilder assembles .vox files chunk by chunk for tests.
type voxBuilder struct {
	children bytes.Buffer
}

func (b *voxBuilder) chunk(id string, content []byte) {
	b.children.WriteString(id)
	binary.Write(&b.children, binary.LittleEndian, int32(len(content)))
	binary.Write(&b.children, binary.LittleEndian, int32(0))
	b.children.Write(content)
}

func (b *voxBuilder) model(sx, sy, sz int32, voxels []Voxel) {
	size := new(bytes.Buffer)
	binary.Write(size, binary.LittleEndian, [3]int32{sx, sy, sz})
	b.chunk("SIZE", size.Bytes())

	xyzi := new(bytes.Buffer)
	binary.Write(xyzi, binary.LittleEndian, int32(len(voxels)))
	for _, v := range voxels {
		xyzi.Write([]byte{v.X, v.Y, v.Z, v.Color})
	}
	b.chunk("XYZI", xyzi.Bytes())
}

func (b *voxBuilder) bytes() []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("VOX ")
	binary.Write(buf, binary.LittleEndian, int32(150))
	buf.WriteString("MAIN")
	binary.Write(buf, binary.LittleEndian, int32(0))
	binary.Write(buf, binary.LittleEndian, int32(b.children.Len()))
	buf.Write(b.children.Bytes())
	return buf.Bytes()
}

func writeVoxString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, int32(len(s)))
	buf.WriteString(s)
}

func writeVoxDict(buf *bytes.Buffer, d [][2]string) {
	binary.Write(buf, binary.LittleEndian, int32(len(d)))
	for _, kv := range d {
		writeVoxString(buf, kv[0])
		writeVoxString(buf, kv[1])
	}
}

func transformNode(id, child int32, name, translation string) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, id)
	var attrs [][2]string
	if name != "" {
		attrs = append(attrs, [2]string{"_name", name})
	}
	writeVoxDict(buf, attrs)
	binary.Write(buf, binary.LittleEndian, []int32{child, -1, 0, 1})
	var frame [][2]string
	if translation != "" {
		frame = append(frame, [2]string{"_t", translation})
	}
	writeVoxDict(buf, frame)
	return buf.Bytes()
}

func groupNode(id int32, children ...int32) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, id)
	writeVoxDict(buf, nil)
	binary.Write(buf, binary.LittleEndian, int32(len(children)))
	binary.Write(buf, binary.LittleEndian, children)
	return buf.Bytes()
}

func shapeNode(id, model int32) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, id)
	writeVoxDict(buf, nil)
	binary.Write(buf, binary.LittleEndian, int32(1))
	binary.Write(buf, binary.LittleEndian, model)
	writeVoxDict(buf, nil)
	return buf.Bytes()
}

func TestParseVox_SingleModel(t *testing.T) {
	b := &voxBuilder{}
	b.model(2, 3, 4, []Voxel{{0, 0, 0, 1}, {1, 2, 3, 200}})

	vox, err := ParseVox(b.bytes())
	if err != nil {
		t.Fatalf("ParseVox failed: %v", err)
	}

	if vox.Version != 150 {
		t.Errorf("expected version 150, got %d", vox.Version)
	}
	if len(vox.Models) != 1 {
		t.Fatalf("expected 1 model, got %d", len(vox.Models))
	}
	m := vox.Models[0]
	if m.SizeX != 2 || m.SizeY != 3 || m.SizeZ != 4 {
		t.Errorf("unexpected size %dx%dx%d", m.SizeX, m.SizeY, m.SizeZ)
	}
	if len(m.Voxels) != 2 || m.Voxels[1] != (Voxel{1, 2, 3, 200}) {
		t.Errorf("unexpected voxels %v", m.Voxels)
	}
	if vox.HasPalette {
		t.Error("expected default palette")
	}
	if vox.Palette[1] != (VoxColor{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("expected white at index 1, got %v", vox.Palette[1])
	}
}

func TestParseVox_Palette(t *testing.T) {
	b := &voxBuilder{}
	b.model(1, 1, 1, []Voxel{{0, 0, 0, 1}})
	rgba := make([]byte, 1024)
	rgba[0], rgba[1], rgba[2], rgba[3] = 10, 20, 30, 255
	rgba[4*254] = 99
	b.chunk("RGBA", rgba)

	vox, err := ParseVox(b.bytes())
	if err != nil {
		t.Fatalf("ParseVox failed: %v", err)
	}
	if !vox.HasPalette {
		t.Error("expected palette from file")
	}
	if vox.Palette[1] != (VoxColor{10, 20, 30, 255}) {
		t.Errorf("chunk entry 0 should be index 1, got %v", vox.Palette[1])
	}
	if vox.Palette[255].R != 99 {
		t.Errorf("chunk entry 254 should be index 255, got %v", vox.Palette[255])
	}
}

func TestParseVox_SkipsUnknownChunks(t *testing.T) {
	b := &voxBuilder{}
	b.chunk("PACK", []byte{1, 0, 0, 0})
	b.chunk("MATL", []byte("some material data"))
	b.model(1, 1, 1, []Voxel{{0, 0, 0, 5}})
	b.chunk("NOTE", nil)

	vox, err := ParseVox(b.bytes())
	if err != nil {
		t.Fatalf("ParseVox failed: %v", err)
	}
	if len(vox.Models) != 1 {
		t.Errorf("expected 1 model, got %d", len(vox.Models))
	}
}

func TestParseVox_DropsOutOfRangeVoxels(t *testing.T) {
	b := &voxBuilder{}
	b.model(2, 2, 2, []Voxel{{0, 0, 0, 1}, {2, 0, 0, 1}, {1, 1, 1, 0}})

	vox, err := ParseVox(b.bytes())
	if err != nil {
		t.Fatal(err)
	}
	if n := len(vox.Models[0].Voxels); n != 1 {
		t.Errorf("expected 1 valid voxel, got %d", n)
	}
}

func TestParseVox_NamedObjects(t *testing.T) {
	b := &voxBuilder{}
	b.model(1, 1, 1, []Voxel{{0, 0, 0, 1}})
	b.model(2, 2, 2, []Voxel{{1, 1, 1, 2}})

	// root transform 0 -> group 1 -> transforms 2,4 -> shapes 3,5
	b.chunk("nTRN", transformNode(0, 1, "", "10 0 0"))
	b.chunk("nGRP", groupNode(1, 2, 4))
	b.chunk("nTRN", transformNode(2, 3, "door", "1 2 3"))
	b.chunk("nSHP", shapeNode(3, 0))
	b.chunk("nTRN", transformNode(4, 5, "table", ""))
	b.chunk("nSHP", shapeNode(5, 1))

	vox, err := ParseVox(b.bytes())
	if err != nil {
		t.Fatalf("ParseVox failed: %v", err)
	}

	names := vox.ObjectNames()
	if len(names) != 2 || names[0] != "door" || names[1] != "table" {
		t.Fatalf("unexpected objects %v", names)
	}

	m, err := vox.Model("table")
	if err != nil {
		t.Fatalf("Model(table) failed: %v", err)
	}
	if m.SizeX != 2 {
		t.Errorf("expected table to be model 1, got size %d", m.SizeX)
	}

	for _, obj := range vox.Objects {
		if obj.Name == "door" && obj.Translation != [3]int32{11, 2, 3} {
			t.Errorf("expected accumulated translation, got %v", obj.Translation)
		}
	}

	if _, err := vox.Model("window"); !errors.Is(err, ErrVoxObjectNotFound) {
		t.Errorf("expected ErrVoxObjectNotFound, got %v", err)
	}
	if m, err := vox.Model(""); err != nil || m.SizeX != 1 {
		t.Errorf("empty name should select the first model: %v", err)
	}
}

func TestParseVox_Errors(t *testing.T) {
	valid := func() []byte {
		b := &voxBuilder{}
		b.model(1, 1, 1, []Voxel{{0, 0, 0, 1}})
		return b.bytes()
	}
	sized := func(sx, sy, sz int32) []byte {
		b := &voxBuilder{}
		b.model(sx, sy, sz, nil)
		return b.bytes()
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncatedVoxData},
		{"bad magic", append([]byte("VOXX"), valid()[4:]...), ErrInvalidVoxMagic},
		{"no main", []byte("VOX \x96\x00\x00\x00"), ErrMissingVoxMain},
		{"truncated", valid()[:len(valid())-3], ErrTruncatedVoxData},
		{"negative size", sized(-1, 1, 1), ErrInvalidVoxSize},
		{"zero size", sized(4, 0, 4), ErrInvalidVoxSize},
		{"huge size", sized(1, 1, 1<<20), ErrInvalidVoxSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVox(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDefaultVoxPalette(t *testing.T) {
	p := DefaultVoxPalette()

	if p[0] != (VoxColor{}) {
		t.Error("index 0 must stay empty")
	}
	seen := make(map[VoxColor]bool)
	for i := 1; i < 256; i++ {
		if p[i].A != 0xff {
			t.Fatalf("index %d is not opaque", i)
		}
		if seen[p[i]] {
			t.Fatalf("index %d duplicates an earlier color %v", i, p[i])
		}
		seen[p[i]] = true
	}
	if p[255] != (VoxColor{0x11, 0x11, 0x11, 0xff}) {
		t.Errorf("expected darkest gray last, got %v", p[255])
	}
}

func TestParseVox_MaxSize(t *testing.T) {
	b := &voxBuilder{}
	b.model(MaxVoxSize, MaxVoxSize, MaxVoxSize, []Voxel{{255, 255, 255, 3}})

	vox, err := ParseVox(b.bytes())
	if err != nil {
		t.Fatal(err)
	}
	if m := vox.Models[0]; m.SizeX != MaxVoxSize || len(m.Voxels) != 1 {
		t.Errorf("unexpected model %dx%dx%d with %d voxels", m.SizeX, m.SizeY, m.SizeZ, len(m.Voxels))
	}
}
