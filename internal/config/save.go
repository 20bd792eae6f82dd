package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SavePath is the file settings are written back to: the file the config was
// loaded from, or config.yaml in the user's config directory.
func (c *Config) SavePath() string {
	if c.source != "" {
		return c.source
	}
	return filepath.Join(ConfigDir(), "config.yaml")
}

// SaveDisplay records the clear color and skybox toggle, then writes them to
// SavePath. Only those two settings change in the file; values that came from
// flags are not persisted.
func (c *Config) SaveDisplay(clearColor [4]float32, skybox bool) (string, error) {
	c.Render.ClearColor = clearColor
	c.Render.Skybox = skybox

	path := c.SavePath()
	file := Default()
	if err := loadFromFile(file, path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return path, fmt.Errorf("reading %s: %w", path, err)
	}
	file.Render.ClearColor = clearColor
	file.Render.Skybox = skybox
	return path, file.SaveTo(path)
}

// SaveTo writes the config to path, creating parent directories. The file is
// replaced by rename so a failed write never leaves it half written.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
