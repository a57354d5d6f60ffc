package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AspectRatio of the game preview: free, or a fixed width:height.
type AspectRatio struct {
	Free   bool
	Width  float32
	Height float32
}

func (a AspectRatio) MarshalYAML() (any, error) {
	if a.Free {
		return "free", nil
	}
	return map[string]float32{"width": a.Width, "height": a.Height}, nil
}

func (a *AspectRatio) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if strings.EqualFold(node.Value, "free") {
			*a = AspectRatio{Free: true}
			return nil
		}
		return fmt.Errorf("aspect_ratio: expected \"free\" or {width, height}, got %q", node.Value)
	}
	var fixed struct {
		Width  float32 `yaml:"width"`
		Height float32 `yaml:"height"`
	}
	if err := node.Decode(&fixed); err != nil {
		return err
	}
	if fixed.Width <= 0 || fixed.Height <= 0 {
		return errors.New("aspect_ratio: width and height must be positive")
	}
	*a = AspectRatio{Width: fixed.Width, Height: fixed.Height}
	return nil
}

// Settings are the persistent editor preferences.
type Settings struct {
	// Density is the number of grid steps per beat used when attaching beats.
	Density uint32 `yaml:"density"`
	// Zoom scales the timeline's pixels per second.
	Zoom float32 `yaml:"zoom"`
	// IndicatorPosition is where the current-time line sits, as a fraction of the
	// viewport height from the top.
	IndicatorPosition     float32     `yaml:"indicator_position"`
	AspectRatio           AspectRatio `yaml:"aspect_ratio"`
	ShowLineAnchor        bool        `yaml:"show_line_anchor"`
	HighlightSelectedLine bool        `yaml:"highlight_selected_line"`
	// SystemClipboard mirrors copies to the OS clipboard.
	SystemClipboard bool `yaml:"system_clipboard"`
	// HistoryLimit bounds the undo stack; 0 keeps everything.
	HistoryLimit int `yaml:"history_limit"`
	// Hotkeys rebinds actions: action id -> chord, e.g. "phichain.undo: ctrl+u".
	Hotkeys map[string]string `yaml:"hotkeys,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		Density:               4,
		Zoom:                  1,
		IndicatorPosition:     0.9,
		AspectRatio:           AspectRatio{Free: true},
		HighlightSelectedLine: true,
	}
}

func (s *Settings) normalize() {
	d := DefaultSettings()
	if s.Density == 0 {
		s.Density = d.Density
	}
	if s.Zoom <= 0 {
		s.Zoom = d.Zoom
	}
	if s.IndicatorPosition < 0 || s.IndicatorPosition > 1 {
		s.IndicatorPosition = d.IndicatorPosition
	}
	if s.HistoryLimit < 0 {
		s.HistoryLimit = 0
	}
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.phichain).
	if v := strings.TrimSpace(os.Getenv("PHICHAIN_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".phichain"), nil
}

func SettingsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.yaml"), nil
}

// LoadSettings reads settings.yaml. A missing file yields the defaults; fields absent from
// the file keep their default values.
func LoadSettings() (Settings, error) {
	s := DefaultSettings()
	path, err := SettingsPath()
	if err != nil {
		return s, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, IOError{Op: "read", Path: path, Err: err}
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("parse %s: %w", path, err)
	}
	s.normalize()
	return s, nil
}

func SaveSettings(s Settings) error {
	path, err := SettingsPath()
	if err != nil {
		return err
	}
	s.normalize()
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return writeWithBackup(path, b)
}
