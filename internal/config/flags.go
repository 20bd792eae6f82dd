package config

import (
	"flag"
	"strings"
)

// DefaultSceneFile is loaded when no scene argument is given, and appended to directory arguments.
const DefaultSceneFile = "main.xml"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagWidth     = flag.Int("width", 0, "Window width")
	flagHeight    = flag.Int("height", 0, "Window height")
	flagMeshing   = flag.String("meshing", "", "Voxel meshing strategy (greedy or naive)")
	flagShadowRes = flag.Int("shadow-res", 0, "Shadow map resolution")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SceneArg returns the positional scene argument, or "" when none was given.
func SceneArg() string {
	return flag.Arg(0)
}

// ResolveScenePath turns the positional argument into a scene file path.
// Anything naming an .xml file is used as-is; otherwise the argument is treated
// as a directory and main.xml is appended.
func ResolveScenePath(arg string) string {
	if arg == "" {
		return DefaultSceneFile
	}
	if strings.Contains(arg, ".xml") {
		return arg
	}
	if strings.HasSuffix(arg, "/") || strings.HasSuffix(arg, "\\") {
		return arg + DefaultSceneFile
	}
	return arg + "/" + DefaultSceneFile
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagMeshing != "" {
		cfg.Render.Meshing = *flagMeshing
	}
	if *flagShadowRes > 0 {
		cfg.Render.ShadowResolution = int32(*flagShadowRes)
	}
	cfg.ScenePath = ResolveScenePath(SceneArg())
}
