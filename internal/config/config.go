// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Render   RenderConfig   `yaml:"render"`
	Camera   CameraConfig   `yaml:"camera"`
	Light    LightConfig    `yaml:"light"`
	Debug    DebugConfig    `yaml:"debug"`
	Logging  LoggingConfig  `yaml:"logging"`

	// ScenePath is resolved from the positional argument, never read from YAML.
	ScenePath string `yaml:"-"`

	// source is the file the config was loaded from, if any.
	source string
}

// GraphicsConfig holds window settings.
type GraphicsConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Meshing strategies.
const (
	MeshingGreedy = "greedy"
	MeshingNaive  = "naive"
)

// Shadow techniques.
const (
	ShadowMap    = "map"
	ShadowVolume = "volume"
)

// RenderConfig holds pipeline settings.
type RenderConfig struct {
	Meshing          string     `yaml:"meshing"`
	ShadowResolution int32      `yaml:"shadow_resolution"`
	ShadowTechnique  string     `yaml:"shadow_technique"`
	VolumeCell       float32    `yaml:"volume_cell"`
	Skybox           bool       `yaml:"skybox"`
	ClearColor       [4]float32 `yaml:"clear_color"`
	FOV              float32    `yaml:"fov"`
	Near             float32    `yaml:"near"`
	Far              float32    `yaml:"far"`
	ShaderDir        string     `yaml:"shader_dir"`
}

// CameraConfig holds the initial camera placement and navigation speeds.
type CameraConfig struct {
	Position    [3]float32 `yaml:"position"`
	Speed       float32    `yaml:"speed"`
	Sensitivity float32    `yaml:"sensitivity"`
}

// LightConfig holds the point light defaults.
type LightConfig struct {
	Position [3]float32 `yaml:"position"`
	Color    [3]float32 `yaml:"color"`
	Speed    float32    `yaml:"speed"`
}

// DebugConfig holds developer tooling settings.
type DebugConfig struct {
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Title:  "OpenGL",
			Width:  1280,
			Height: 720,
		},
		Render: RenderConfig{
			Meshing:          MeshingGreedy,
			ShadowResolution: 4096,
			ShadowTechnique:  ShadowMap,
			VolumeCell:       0.5,
			Skybox:           false,
			ClearColor:       [4]float32{0.35, 0.54, 0.8, 1},
			FOV:              45,
			Near:             0.1,
			Far:              500,
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 2.5, 10},
			Speed:       10,
			Sensitivity: 0.15,
		},
		Light: LightConfig{
			Position: [3]float32{-35, 130, -132},
			Color:    [3]float32{1, 1, 1},
			Speed:    20,
		},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		ScenePath: DefaultSceneFile,
	}
}
