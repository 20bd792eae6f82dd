package voxel

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func randomGrid(seed int64, sx, sy, sz int, materials int) *Grid {
	rng := rand.New(rand.NewSource(seed))
	g := NewGrid(sx, sy, sz)
	for i := range g.Cells {
		if rng.Intn(3) == 0 {
			continue
		}
		g.Cells[i] = uint8(1 + rng.Intn(materials))
	}
	return g
}

func faceSet(t *testing.T, quads []Quad) map[Face]int {
	t.Helper()
	set := make(map[Face]int)
	for _, q := range quads {
		for _, f := range q.Faces() {
			set[f]++
		}
	}
	return set
}

func TestSingleVoxel(t *testing.T) {
	g := NewGrid(1, 1, 1)
	g.Set(0, 0, 0, 7)

	for _, m := range []Mesher{Greedy{}, Naive{}} {
		quads := m.Mesh(g)
		if len(quads) != 6 {
			t.Errorf("%s: expected 6 quads, got %d", m.Name(), len(quads))
		}
		for _, q := range quads {
			if q.Material != 7 || q.Area() != 1 {
				t.Errorf("%s: unexpected quad %+v", m.Name(), q)
			}
		}
	}
}

func TestGreedyMergesBar(t *testing.T) {
	g := NewGrid(4, 1, 1)
	g.Fill(1)

	quads := Greedy{}.Mesh(g)
	// A 4x1x1 bar is one cuboid: six merged faces.
	if len(quads) != 6 {
		t.Fatalf("expected 6 quads, got %d", len(quads))
	}
	if n := len(Naive{}.Mesh(g)); n != 18 {
		t.Errorf("expected 18 naive quads, got %d", n)
	}
}

func TestGreedyKeepsMaterialsApart(t *testing.T) {
	g := NewGrid(2, 1, 1)
	g.Set(0, 0, 0, 1)
	g.Set(1, 0, 0, 2)

	quads := Greedy{}.Mesh(g)
	// No merge across materials: 2 ends + 4 sides per voxel.
	if len(quads) != 10 {
		t.Fatalf("expected 10 quads, got %d", len(quads))
	}
	for _, q := range quads {
		if q.Area() != 1 {
			t.Errorf("merged across materials: %+v", q)
		}
	}
}

func TestNoInternalFaces(t *testing.T) {
	g := NewGrid(3, 3, 3)
	g.Fill(1)

	for _, m := range []Mesher{Greedy{}, Naive{}} {
		for f := range faceSet(t, m.Mesh(g)) {
			if f.Positive && f.Layer != 3 || !f.Positive && f.Layer != 0 {
				t.Errorf("%s: internal face %+v", m.Name(), f)
			}
		}
	}
	if n := len(Greedy{}.Mesh(g)); n != 6 {
		t.Errorf("expected solid cube to mesh to 6 quads, got %d", n)
	}
}

func TestGreedyCoversNaiveFaces(t *testing.T) {
	tests := []struct {
		name       string
		sx, sy, sz int
		materials  int
		seed       int64
	}{
		{"single material", 8, 8, 8, 1, 1},
		{"two materials", 8, 6, 5, 2, 2},
		{"many materials", 6, 6, 6, 8, 3},
		{"flat", 16, 1, 16, 1, 4},
		{"thin column", 1, 12, 1, 3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := randomGrid(tt.seed, tt.sx, tt.sy, tt.sz, tt.materials)

			greedy := Greedy{}.Mesh(g)
			naive := Naive{}.Mesh(g)

			if len(greedy) > len(naive) {
				t.Errorf("greedy emitted %d quads, naive %d", len(greedy), len(naive))
			}

			gs := faceSet(t, greedy)
			ns := faceSet(t, naive)
			for f, n := range gs {
				if n != 1 {
					t.Errorf("face %+v covered %d times", f, n)
				}
			}
			if !reflect.DeepEqual(gs, ns) {
				t.Errorf("face sets differ: greedy %d faces, naive %d faces", len(gs), len(ns))
			}
		})
	}
}

func TestMeshDeterministic(t *testing.T) {
	g := randomGrid(42, 7, 5, 9, 4)
	first := Greedy{}.Mesh(g)
	for i := 0; i < 3; i++ {
		if again := (Greedy{}).Mesh(g); !reflect.DeepEqual(first, again) {
			t.Fatal("greedy output changed between runs")
		}
	}
}

func TestEmptyGrid(t *testing.T) {
	for _, g := range []*Grid{NewGrid(0, 0, 0), NewGrid(4, 4, 4)} {
		if q := (Greedy{}).Mesh(g); len(q) != 0 {
			t.Errorf("expected no quads, got %d", len(q))
		}
	}
}

func TestGeometry(t *testing.T) {
	g := randomGrid(7, 5, 5, 5, 3)
	quads := Greedy{}.Mesh(g)
	vertices, indices := Geometry(quads)

	if len(vertices) < len(quads)*4*FloatsPerVertex || len(vertices)%FloatsPerVertex != 0 {
		t.Fatalf("expected at least %d floats, got %d", len(quads)*4*FloatsPerVertex, len(vertices))
	}
	if len(indices) < len(quads)*6 || len(indices)%3 != 0 {
		t.Fatalf("expected at least %d indices, got %d", len(quads)*6, len(indices))
	}
	if int(Layout.Stride()) != FloatsPerVertex {
		t.Fatalf("layout stride %d does not match %d", Layout.Stride(), FloatsPerVertex)
	}

	vertex := func(i uint32) (pos, normal mgl32.Vec3) {
		o := int(i) * FloatsPerVertex
		return mgl32.Vec3{vertices[o], vertices[o+1], vertices[o+2]},
			mgl32.Vec3{vertices[o+3], vertices[o+4], vertices[o+5]}
	}

	var area float32
	for tri := 0; tri < len(indices); tri += 3 {
		p0, n := vertex(indices[tri])
		p1, _ := vertex(indices[tri+1])
		p2, _ := vertex(indices[tri+2])

		for _, p := range []mgl32.Vec3{p0, p1, p2} {
			for _, c := range p {
				if c != float32(int(c)) {
					t.Fatalf("vertex %v is off the lattice", p)
				}
			}
		}

		// Counter-clockwise seen from outside: the winding normal matches the face normal.
		w := p1.Sub(p0).Cross(p2.Sub(p0))
		if w.Dot(n) <= 0 {
			t.Fatalf("triangle %d winds against its normal %v", tri/3, n)
		}
		area += w.Len() / 2
	}

	want := 0
	for _, q := range quads {
		want += q.Area()
	}
	if area != float32(want) {
		t.Fatalf("triangles cover %g unit faces, quads cover %d", area, want)
	}
}

// latticeMesh reads Geometry output back as integer positions and triangles.
func latticeMesh(vertices []float32, indices []uint32) (points [][3]int, tris [][3]int) {
	for o := 0; o < len(vertices); o += FloatsPerVertex {
		points = append(points, [3]int{int(vertices[o]), int(vertices[o+1]), int(vertices[o+2])})
	}
	for i := 0; i < len(indices); i += 3 {
		tris = append(tris, [3]int{int(indices[i]), int(indices[i+1]), int(indices[i+2])})
	}
	return points, tris
}

// strictlyInside reports whether p lies on segment a-b but is neither endpoint.
func strictlyInside(p, a, b [3]int) bool {
	var ab, ap [3]int
	for i := range p {
		ab[i], ap[i] = b[i]-a[i], p[i]-a[i]
	}
	cross := [3]int{
		ab[1]*ap[2] - ab[2]*ap[1],
		ab[2]*ap[0] - ab[0]*ap[2],
		ab[0]*ap[1] - ab[1]*ap[0],
	}
	if cross != [3]int{} {
		return false
	}
	dot := ab[0]*ap[0] + ab[1]*ap[1] + ab[2]*ap[2]
	return dot > 0 && dot < ab[0]*ab[0]+ab[1]*ab[1]+ab[2]*ab[2]
}

func assertNoTJunctions(t *testing.T, vertices []float32, indices []uint32) {
	t.Helper()
	points, tris := latticeMesh(vertices, indices)
	distinct := make(map[[3]int]struct{}, len(points))
	for _, p := range points {
		distinct[p] = struct{}{}
	}

	for n, tri := range tris {
		for e := 0; e < 3; e++ {
			a, b := points[tri[e]], points[tri[(e+1)%3]]
			for p := range distinct {
				if strictlyInside(p, a, b) {
					t.Fatalf("vertex %v lies inside edge %v-%v of triangle %d", p, a, b, n)
				}
			}
		}
	}
}

func TestGeometrySplitsLShape(t *testing.T) {
	g := NewGrid(2, 1, 2)
	g.Set(0, 0, 0, 1)
	g.Set(1, 0, 0, 1)
	g.Set(0, 0, 1, 1)

	quads := Greedy{}.Mesh(g)
	vertices, indices := Geometry(quads)
	assertNoTJunctions(t, vertices, indices)

	// The top face merges into a 2x1 and a 1x1 quad; the wide quad's edge
	// must pick up the corner the two share at (1,1,1).
	var top int
	for _, q := range quads {
		if q.Axis == AxisY && q.Positive {
			top++
		}
	}
	if top != 2 {
		t.Fatalf("expected 2 top quads, got %d", top)
	}
	shared := 0
	for o := 0; o < len(vertices); o += FloatsPerVertex {
		up := vertices[o+4] == 1
		if up && vertices[o] == 1 && vertices[o+1] == 1 && vertices[o+2] == 1 {
			shared++
		}
	}
	if shared != 2 {
		t.Fatalf("corner (1,1,1) emitted %d times on the top face, expected once per top quad", shared)
	}
}

func TestGeometryNoTJunctions(t *testing.T) {
	tests := []struct {
		seed       int64
		sx, sy, sz int
		materials  int
	}{
		{seed: 1, sx: 4, sy: 4, sz: 4, materials: 1},
		{seed: 2, sx: 6, sy: 3, sz: 5, materials: 2},
		{seed: 3, sx: 5, sy: 5, sz: 5, materials: 4},
		{seed: 4, sx: 8, sy: 2, sz: 8, materials: 1},
	}

	for _, tt := range tests {
		g := randomGrid(tt.seed, tt.sx, tt.sy, tt.sz, tt.materials)
		for _, m := range []Mesher{Greedy{}, Naive{}} {
			vertices, indices := Geometry(m.Mesh(g))
			assertNoTJunctions(t, vertices, indices)
		}
	}
}

func TestGeometryPlainBox(t *testing.T) {
	vertices, indices := Geometry(Box([3]int{3, 2, 4}, 0))
	if len(vertices) != 24*FloatsPerVertex || len(indices) != 36 {
		t.Fatalf("expected 24 vertices and 36 indices, got %d and %d", len(vertices)/FloatsPerVertex, len(indices))
	}
}

func TestNewMesher(t *testing.T) {
	tests := []struct {
		strategy string
		shader   string
		wantErr  bool
	}{
		{StrategyGreedy, "voxel_gm.vert", false},
		{StrategyNaive, "voxel.vert", false},
		{"", "voxel_gm.vert", false},
		{"marching", "", true},
	}
	for _, tt := range tests {
		m, err := NewMesher(tt.strategy)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewMesher(%q): expected error", tt.strategy)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NewMesher(%q): %v", tt.strategy, err)
		}
		if m.VertexShader() != tt.shader {
			t.Errorf("NewMesher(%q) pairs with %s, want %s", tt.strategy, m.VertexShader(), tt.shader)
		}
	}
}

func TestGridBounds(t *testing.T) {
	g := NewGrid(2, 3, 4)
	g.Set(1, 2, 3, 9)
	g.Set(5, 0, 0, 9)

	if g.At(1, 2, 3) != 9 {
		t.Error("expected stored value")
	}
	if g.At(-1, 0, 0) != Empty || g.At(2, 0, 0) != Empty {
		t.Error("expected Empty outside the grid")
	}
	if g.Count() != 1 {
		t.Errorf("expected 1 occupied cell, got %d", g.Count())
	}
}
