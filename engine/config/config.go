// Package config loads the TOML document that configures the window, renderer and engine, and
// converts it into the builder options of those packages.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine"
	"github.com/Carmen-Shannon/oxy-polyline/engine/camera"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-polyline/engine/window"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config is the top-level document.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Engine   EngineConfig   `toml:"engine"`
}

// WindowConfig is the [window] table.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// RendererConfig is the [renderer] table.
type RendererConfig struct {
	MSAA            int    `toml:"msaa"`
	PresentMode     string `toml:"present_mode"`
	Hdr             bool   `toml:"hdr"`
	FramesInFlight  int    `toml:"frames_in_flight"`
	ShaderHotReload bool   `toml:"shader_hot_reload"`
}

// EngineConfig is the [engine] table.
type EngineConfig struct {
	TickRate         float64 `toml:"tick_rate"`
	RenderFrameLimit float64 `toml:"render_frame_limit"`
	Profiling        bool    `toml:"profiling"`
}

// Default returns the configuration used for keys a document leaves out.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "oxy-polyline",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			MSAA:           int(renderer.MSAA4x),
			PresentMode:    "vsync",
			FramesInFlight: 2,
		},
		Engine: EngineConfig{
			TickRate: 60,
		},
	}
}

// Parse decodes a TOML document over the defaults. Unknown keys are rejected.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the decoded configuration
//   - error: a decode or validation error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("config: unknown keys:\n%s", strict.String())
		}
		return Config{}, fmt.Errorf("config: failed to decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the TOML file at path.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the decoded configuration
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Marshal encodes c as a TOML document.
func (c Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: failed to encode: %w", err)
	}
	return data, nil
}

// Validate checks every value against the range its consumer accepts.
//
// Returns:
//   - error: the first invalid value, wrapping ErrInvalid
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	switch renderer.MSAASampleCount(c.Renderer.MSAA) {
	case renderer.MSAAOff, renderer.MSAA4x, renderer.MSAA8x, renderer.MSAA16x:
	default:
		return fmt.Errorf("%w: renderer.msaa %d (want 1, 4, 8 or 16)", ErrInvalid, c.Renderer.MSAA)
	}
	switch c.Renderer.PresentMode {
	case "vsync", "fifo", "uncapped", "immediate":
	default:
		return fmt.Errorf("%w: renderer.present_mode %q", ErrInvalid, c.Renderer.PresentMode)
	}
	if c.Renderer.FramesInFlight < 1 {
		return fmt.Errorf("%w: renderer.frames_in_flight %d", ErrInvalid, c.Renderer.FramesInFlight)
	}
	if c.Engine.TickRate < 0 || c.Engine.RenderFrameLimit < 0 {
		return fmt.Errorf("%w: negative engine rate", ErrInvalid)
	}
	return nil
}

// WindowOptions returns the window builder options of the [window] table.
func (c Config) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(common.Coalesce(c.Window.Title, Default().Window.Title)),
		window.WithWidth(c.Window.Width),
		window.WithHeight(c.Window.Height),
	}
}

// RendererOptions returns the renderer builder options of the [renderer] table.
func (c Config) RendererOptions() []renderer.RendererBuilderOption {
	return []renderer.RendererBuilderOption{
		renderer.WithMSAA(renderer.MSAASampleCount(c.Renderer.MSAA)),
		renderer.WithPresentMode(renderer.ParsePresentMode(c.Renderer.PresentMode)),
		renderer.WithShaderHotReload(c.Renderer.ShaderHotReload),
	}
}

// MaterialOptions returns the material plugin options of the [renderer] table.
func (c Config) MaterialOptions() []material.PluginBuilderOption {
	return []material.PluginBuilderOption{
		material.WithFramesInFlight(c.Renderer.FramesInFlight),
	}
}

// CameraOptions returns the main camera options of the [renderer] table.
func (c Config) CameraOptions() []camera.CameraBuilderOption {
	if !c.Renderer.Hdr {
		return nil
	}
	return []camera.CameraBuilderOption{camera.WithHdr()}
}

// EngineOptions returns the engine builder options of the [engine] table. The renderer
// options are included, so an engine built from them creates a configured renderer.
func (c Config) EngineOptions() []engine.EngineBuilderOption {
	return []engine.EngineBuilderOption{
		engine.WithTickRate(c.Engine.TickRate),
		engine.WithRenderFrameLimit(c.Engine.RenderFrameLimit),
		engine.WithProfiling(c.Engine.Profiling),
		engine.WithRendererOptions(c.RendererOptions()...),
	}
}
