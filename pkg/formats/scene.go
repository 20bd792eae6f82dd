package formats

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Scene format errors.
var (
	ErrEmptyScene    = errors.New("scene XML has no root element")
	ErrInvalidRoot   = errors.New("scene XML root must be <scene>")
	ErrInvalidVector = errors.New("invalid vector attribute")
	ErrInvalidScalar = errors.New("invalid numeric attribute")
	ErrMultipleRoots = errors.New("scene XML has more than one root element")
)

// SceneNode is one element of a scene description.
type SceneNode struct {
	Name     string
	Attrs    map[string]string
	Children []*SceneNode
	// Line is the 1-based line of the start tag, for error messages.
	Line int
}

// ParseScene parses a scene XML document into a node tree rooted at <scene>.
func ParseScene(data []byte) (*SceneNode, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		root  *SceneNode
		stack []*SceneNode
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing scene XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line, _ := dec.InputPos()
			n := &SceneNode{
				Name:  t.Name.Local,
				Attrs: make(map[string]string, len(t.Attr)),
				Line:  line,
			}
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, ErrMultipleRoots
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, ErrEmptyScene
	}
	if root.Name != "scene" {
		return nil, fmt.Errorf("%w, got <%s>", ErrInvalidRoot, root.Name)
	}
	return root, nil
}

// ParseSceneFile parses a scene XML file from disk.
func ParseSceneFile(path string) (*SceneNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	return ParseScene(data)
}

// Attr returns a raw attribute value.
func (n *SceneNode) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// Text returns an attribute or def when absent.
func (n *SceneNode) Text(name, def string) string {
	if v, ok := n.Attrs[name]; ok {
		return v
	}
	return def
}

// Float parses a scalar attribute, returning def when absent.
func (n *SceneNode) Float(name string, def float32) (float32, error) {
	v, ok := n.Attrs[name]
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		return def, fmt.Errorf("%w: <%s %s=%q> at line %d", ErrInvalidScalar, n.Name, name, v, n.Line)
	}
	return float32(f), nil
}

// Vec2 parses a space-separated two-component attribute, returning def when absent.
func (n *SceneNode) Vec2(name string, def [2]float32) ([2]float32, error) {
	v, ok := n.Attrs[name]
	if !ok {
		return def, nil
	}
	f, err := n.floats(name, v, 2, 2)
	if err != nil {
		return def, err
	}
	return [2]float32{f[0], f[1]}, nil
}

// Vec3 parses a space-separated three-component attribute, returning def when absent.
func (n *SceneNode) Vec3(name string, def [3]float32) ([3]float32, error) {
	v, ok := n.Attrs[name]
	if !ok {
		return def, nil
	}
	f, err := n.floats(name, v, 3, 3)
	if err != nil {
		return def, err
	}
	return [3]float32{f[0], f[1], f[2]}, nil
}

// Color parses "r g b" or "r g b a" with components in 0..1. Alpha defaults to 1.
func (n *SceneNode) Color(name string, def [4]float32) ([4]float32, error) {
	v, ok := n.Attrs[name]
	if !ok {
		return def, nil
	}
	f, err := n.floats(name, v, 3, 4)
	if err != nil {
		return def, err
	}
	c := [4]float32{f[0], f[1], f[2], 1}
	if len(f) == 4 {
		c[3] = f[3]
	}
	return c, nil
}

func (n *SceneNode) floats(name, v string, minCount, maxCount int) ([]float32, error) {
	fields := strings.Fields(v)
	if len(fields) < minCount || len(fields) > maxCount {
		return nil, fmt.Errorf("%w: <%s %s=%q> at line %d: want %d components", ErrInvalidVector, n.Name, name, v, n.Line, minCount)
	}
	out := make([]float32, len(fields))
	for i, s := range fields {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: <%s %s=%q> at line %d", ErrInvalidVector, n.Name, name, v, n.Line)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// Count returns how many nodes in the subtree, including n, have the given element name.
func (n *SceneNode) Count(name string) int {
	c := 0
	if n.Name == name {
		c++
	}
	for _, child := range n.Children {
		c += child.Count(name)
	}
	return c
}
