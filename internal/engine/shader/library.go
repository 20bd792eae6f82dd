package shader

import (
	"bufio"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/voxview/internal/assets"
	"github.com/Faultbox/voxview/internal/engine/gpu"
	"github.com/Faultbox/voxview/internal/logger"
)

//go:embed glsl
var builtin embed.FS

const maxIncludeDepth = 8

// Library resolves shader sources from the built-in set, optionally
// overridden file by file from a directory on disk.
type Library struct {
	dev    gpu.Device
	assets *assets.Manager
}

// NewLibrary creates a library. overrideDir may be empty.
func NewLibrary(dev gpu.Device, overrideDir string) (*Library, error) {
	glsl, err := fs.Sub(builtin, "glsl")
	if err != nil {
		return nil, err
	}

	m := assets.NewManager()
	m.AddFS("builtin", glsl)
	if overrideDir != "" {
		if err := m.AddDir(overrideDir); err != nil {
			return nil, fmt.Errorf("shader dir: %w", err)
		}
		logger.Info("shader overrides enabled", zap.String("dir", overrideDir))
	}

	return &Library{dev: dev, assets: m}, nil
}

// Source returns the named source with #include "file" lines expanded.
func (l *Library) Source(name string) (string, error) {
	return l.expand(name, 0)
}

func (l *Library) expand(name string, depth int) (string, error) {
	if depth > maxIncludeDepth {
		return "", fmt.Errorf("%s: includes nested deeper than %d", name, maxIncludeDepth)
	}

	data, err := l.assets.Load(name)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		trimmed := strings.TrimSpace(text)
		if !strings.HasPrefix(trimmed, "#include") {
			out.WriteString(text)
			out.WriteByte('\n')
			continue
		}

		inc := strings.Trim(strings.TrimSpace(strings.TrimPrefix(trimmed, "#include")), `"<>`)
		if inc == "" {
			return "", fmt.Errorf("%s:%d: empty #include", name, line)
		}
		src, err := l.expand(inc, depth+1)
		if err != nil {
			return "", fmt.Errorf("%s:%d: %w", name, line, err)
		}
		out.WriteString(src)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return out.String(), nil
}

// Load compiles the program built from two source files.
// Errors name both files and carry the driver's log.
func (l *Library) Load(vertFile, fragFile string) (*Program, error) {
	name := vertFile + "+" + fragFile

	vs, err := l.Source(vertFile)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	fsrc, err := l.Source(fragFile)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}

	p, err := Compile(l.dev, name, vs, fsrc)
	if err != nil {
		return nil, err
	}
	logger.Debug("shader compiled", zap.String("program", name), zap.Uint32("id", p.ID))
	return p, nil
}
