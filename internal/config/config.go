// Package config handles server configuration loading and management.
package config

// Config holds all server settings.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Shell   ShellConfig   `yaml:"shell"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadMB    int      `yaml:"max_upload_mb"`
}

// StorageConfig holds on-disk layout settings.
type StorageConfig struct {
	UploadDir string `yaml:"upload_dir"` // staged uploads, removed after processing
	StlDir    string `yaml:"stl_dir"`    // per-project STL storage
	ExportDir string `yaml:"export_dir"` // background export output
}

// MeshConfig holds tessellation settings.
type MeshConfig struct {
	LinearTolerance  float64 `yaml:"linear_tolerance"`
	AngularTolerance float64 `yaml:"angular_tolerance"`
	Center           bool    `yaml:"center"`
	Kernel           string  `yaml:"kernel"` // "facet" or "sdfx"
}

// ShellConfig holds bounding-shell defaults.
type ShellConfig struct {
	WallThickness float64 `yaml:"wall_thickness"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
			MaxUploadMB:    100,
		},
		Storage: StorageConfig{
			UploadDir: "temp",
			StlDir:    "stl_storage",
			ExportDir: "exports",
		},
		Mesh: MeshConfig{
			LinearTolerance:  0.1,
			AngularTolerance: 0.5,
			Center:           false,
			Kernel:           "facet",
		},
		Shell: ShellConfig{
			WallThickness: 2.0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
