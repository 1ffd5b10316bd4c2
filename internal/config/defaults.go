package config

// Default configuration values.
const (
	DefaultSnogray         = "snogray"
	DefaultPbrt            = "pbrt"
	DefaultThreshold       = 0.002
	DefaultUpdate          = string(UpdateNo)
	DefaultRefSubdir       = "REFS"
	DefaultOutputExt       = "exr"
	DefaultRefExt          = "png"
	DefaultDownsampleWidth = 160
)

// ApplyDefaults fills in default values for unset configuration fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Snogray == "" {
		cfg.Snogray = DefaultSnogray
	}
	if cfg.Pbrt == "" {
		cfg.Pbrt = DefaultPbrt
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Update == "" {
		cfg.Update = DefaultUpdate
	}
	if cfg.RefSubdir == "" {
		cfg.RefSubdir = DefaultRefSubdir
	}
	if cfg.OutputExt == "" {
		cfg.OutputExt = DefaultOutputExt
	}
	if cfg.RefExt == "" {
		cfg.RefExt = DefaultRefExt
	}
	if cfg.DownsampleWidth == 0 {
		cfg.DownsampleWidth = DefaultDownsampleWidth
	}
}
