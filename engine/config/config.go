// Package config loads and saves application settings for the engine and its
// tools. Files may be TOML, YAML or JSON; the format follows the extension.
//
// Values read from a file are laid over Default, so a partial file only
// overrides the settings it names. Zero values in a file (0, false, "") keep
// the default.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-graph/engine/camera"
	"github.com/Carmen-Shannon/oxy-graph/engine/xform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/jinzhu/copier"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for config paths whose extension names no codec.
var ErrUnknownFormat = errors.New("config: unknown format")

// Config is the full settings document.
type Config struct {
	Window     WindowConfig     `toml:"window" yaml:"window" json:"window"`
	Engine     EngineConfig     `toml:"engine" yaml:"engine" json:"engine"`
	Camera     CameraConfig     `toml:"camera" yaml:"camera" json:"camera"`
	FreeCamera FreeCameraConfig `toml:"free_camera" yaml:"free_camera" json:"free_camera"`
	Scene      SceneConfig      `toml:"scene" yaml:"scene" json:"scene"`
	Log        LogConfig        `toml:"log" yaml:"log" json:"log"`
}

type WindowConfig struct {
	Title  string `toml:"title" yaml:"title" json:"title"`
	Width  int    `toml:"width" yaml:"width" json:"width"`
	Height int    `toml:"height" yaml:"height" json:"height"`
}

type EngineConfig struct {
	// TickRate caps frames per second in Run. 0 leaves it uncapped.
	TickRate        int     `toml:"tick_rate" yaml:"tick_rate" json:"tick_rate"`
	Profiling       bool    `toml:"profiling" yaml:"profiling" json:"profiling"`
	// ProfileInterval is in seconds.
	ProfileInterval float64 `toml:"profile_interval" yaml:"profile_interval" json:"profile_interval"`
	CullWorkers     int     `toml:"cull_workers" yaml:"cull_workers" json:"cull_workers"`
}

type CameraConfig struct {
	FovDegrees float32 `toml:"fov_degrees" yaml:"fov_degrees" json:"fov_degrees"`
	Near       float32 `toml:"near" yaml:"near" json:"near"`
	Far        float32 `toml:"far" yaml:"far" json:"far"`
	Infinite   bool    `toml:"infinite" yaml:"infinite" json:"infinite"`
	Reversed   bool    `toml:"reversed" yaml:"reversed" json:"reversed"`
}

type FreeCameraConfig struct {
	Speed               float32 `toml:"speed" yaml:"speed" json:"speed"`
	BoostMultiplier     float32 `toml:"boost_multiplier" yaml:"boost_multiplier" json:"boost_multiplier"`
	RotationSensitivity float32 `toml:"rotation_sensitivity" yaml:"rotation_sensitivity" json:"rotation_sensitivity"`
	Damping             float32 `toml:"damping" yaml:"damping" json:"damping"`
}

type SceneConfig struct {
	// Path is the scene document loaded at startup, if any.
	Path string `toml:"path" yaml:"path" json:"path"`
}

type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level" yaml:"level" json:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "oxy-graph",
			Width:  1280,
			Height: 720,
		},
		Engine: EngineConfig{
			TickRate:        60,
			ProfileInterval: 1,
		},
		Camera: CameraConfig{
			FovDegrees: 60,
			Near:       0.1,
			Far:        1000,
		},
		FreeCamera: FreeCameraConfig{
			Speed:               5,
			BoostMultiplier:     4,
			RotationSensitivity: 0.005,
			Damping:             12,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

type format int

const (
	formatTOML format = iota
	formatYAML
	formatJSON
)

func formatFor(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".json":
		return formatJSON, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Load reads the settings file at path and lays it over Default.
//
// Parameters:
//   - path: a .toml, .yaml, .yml or .json file
//
// Returns:
//   - Config: the merged settings
//   - error: ErrUnknownFormat, a read error or a decode error
func Load(path string) (Config, error) {
	f, err := formatFor(path)
	if err != nil {
		return Default(), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("config: %w", err)
	}
	return decode(data, f)
}

func decode(data []byte, f format) (Config, error) {
	var loaded Config
	var err error
	switch f {
	case formatTOML:
		err = toml.Unmarshal(data, &loaded)
	case formatYAML:
		err = yaml.Unmarshal(data, &loaded)
	case formatJSON:
		err = json.Unmarshal(data, &loaded)
	default:
		err = ErrUnknownFormat
	}
	if err != nil {
		return Default(), fmt.Errorf("config: decode: %w", err)
	}
	cfg := Default()
	if err := overlay(&cfg, &loaded); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// overlay copies every non-zero field of src onto dst, section by section.
func overlay(dst, src *Config) error {
	opt := copier.Option{IgnoreEmpty: true, DeepCopy: true}
	pairs := []struct{ to, from any }{
		{&dst.Window, &src.Window},
		{&dst.Engine, &src.Engine},
		{&dst.Camera, &src.Camera},
		{&dst.FreeCamera, &src.FreeCamera},
		{&dst.Scene, &src.Scene},
		{&dst.Log, &src.Log},
	}
	for _, p := range pairs {
		if err := copier.CopyWithOption(p.to, p.from, opt); err != nil {
			return fmt.Errorf("config: overlay: %w", err)
		}
	}
	return nil
}

// Save writes cfg to path in the format named by its extension, creating the
// parent directory if needed.
//
// Parameters:
//   - path: a .toml, .yaml, .yml or .json file
//   - cfg: settings to write
//
// Returns:
//   - error: ErrUnknownFormat, an encode error or a write error
func Save(path string, cfg Config) error {
	f, err := formatFor(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	switch f {
	case formatTOML:
		err = toml.NewEncoder(&buf).Encode(cfg)
	case formatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(cfg)
		if err == nil {
			err = enc.Close()
		}
	case formatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "\t")
		err = enc.Encode(cfg)
	}
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Flags returns the camera projection flags these settings select.
func (c CameraConfig) Flags() camera.Flags {
	var flags camera.Flags
	if c.Infinite {
		flags |= camera.FlagInfinite
	}
	if c.Reversed {
		flags |= camera.FlagReversed
	}
	return flags
}

// Options returns camera builder options for a perspective camera with the
// given aspect ratio.
func (c CameraConfig) Options(aspect float32) []camera.CameraBuilderOption {
	return []camera.CameraBuilderOption{
		camera.WithPerspective(mgl32.DegToRad(c.FovDegrees), aspect, c.Near, c.Far, c.Flags()),
	}
}

// Options returns builder options for a FreeCamera XForm.
func (c FreeCameraConfig) Options() []xform.FreeCameraOption {
	return []xform.FreeCameraOption{
		xform.WithSpeed(c.Speed),
		xform.WithBoostMultiplier(c.BoostMultiplier),
		xform.WithRotationSensitivity(c.RotationSensitivity),
		xform.WithDamping(c.Damping),
	}
}

// Interval returns ProfileInterval as a duration.
func (c EngineConfig) Interval() time.Duration {
	return time.Duration(c.ProfileInterval * float64(time.Second))
}

// SlogLevel parses Level, falling back to Info for unrecognized names.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
