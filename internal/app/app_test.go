package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/voxview/internal/config"
	"github.com/Faultbox/voxview/internal/engine/ui"
)

func TestSplitScenePath(t *testing.T) {
	abs, err := filepath.Abs(filepath.Join("..", "levels", "main.xml"))
	if err != nil {
		t.Fatal(err)
	}
	absDir := filepath.Join(string(os.PathSeparator), "data", "scenes")

	tests := []struct {
		in       string
		wantRoot string
		wantName string
	}{
		{"main.xml", ".", "main.xml"},
		{"levels/main.xml", ".", "levels/main.xml"},
		{"./levels//main.xml", ".", "levels/main.xml"},
		{"../levels/main.xml", filepath.Dir(abs), "main.xml"},
		{filepath.Join(absDir, "main.xml"), absDir, "main.xml"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			root, name := splitScenePath(tt.in)
			if root != tt.wantRoot || name != tt.wantName {
				t.Errorf("splitScenePath(%q) = %q, %q; want %q, %q", tt.in, root, name, tt.wantRoot, tt.wantName)
			}
		})
	}
}

func TestSaveSettingsWritesPanelValues(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("APPDATA", dir)

	a := &App{cfg: config.Default()}
	a.panel = ui.NewDebugPanel(a.cfg.Render.ClearColor, false)
	a.panel.ClearColor = [4]float32{0.5, 0.25, 0, 1}
	a.panel.Skybox = true

	a.saveSettings()

	data, err := os.ReadFile(a.cfg.SavePath())
	if err != nil {
		t.Fatalf("settings file not written: %v", err)
	}
	if a.cfg.Render.ClearColor != a.panel.ClearColor || !a.cfg.Render.Skybox {
		t.Errorf("config not updated from panel: %+v", a.cfg.Render)
	}
	if !strings.Contains(string(data), "skybox: true") {
		t.Errorf("skybox toggle not saved:\n%s", data)
	}
}
