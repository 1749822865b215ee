package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/modernconfig/internal/config/layer"
	"github.com/dshills/modernconfig/internal/config/loader"
)

// DefaultSettingsFile is read when no settings path is given.
const DefaultSettingsFile = "modernconfig.toml"

// Settings controls the library itself, not any mod.
type Settings struct {
	// Dir holds one <modid>.json file per mod.
	Dir string
	// Indent is the indentation of written files.
	Indent string
	// Watch enables live reload of edited files.
	Watch bool
	// Debounce is the quiet period before an edited file is reloaded.
	Debounce time.Duration
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Dir:      "config",
		Indent:   "  ",
		Watch:    false,
		Debounce: 100 * time.Millisecond,
		LogLevel: "info",
	}
}

// SettingKeys lists the dotted keys of every library setting.
var SettingKeys = []string{"dir", "indent", "watch.enabled", "watch.debounce", "log.level"}

// LoadSettings reads settings from path (DefaultSettingsFile when empty)
// and the MODERNCONFIG_ environment, which takes precedence. A missing
// file leaves the defaults.
func LoadSettings(path string) (Settings, error) {
	return LoadSettingsWithFS(loader.DefaultFS(), path)
}

// LoadSettingsWithFS is LoadSettings on a custom file system.
func LoadSettingsWithFS(fs loader.FileSystem, path string) (Settings, error) {
	m, err := SettingsLayers(fs, path)
	if err != nil {
		return Settings{}, err
	}
	return SettingsFromLayers(m)
}

// SettingsLayers stacks the built-in defaults, the settings file and the
// environment. Hosts may add a layer.SourceFlags layer on top before
// decoding with SettingsFromLayers.
func SettingsLayers(fs loader.FileSystem, path string) (*layer.Manager, error) {
	if path == "" {
		path = DefaultSettingsFile
	}

	fileMap, err := loader.NewTOMLLoaderWithFS(fs, path).Load()
	if err != nil {
		var lerr *loader.ParseError
		if errors.As(err, &lerr) {
			return nil, &ParseError{
				Path:    lerr.Path,
				Line:    lerr.Line,
				Column:  lerr.Column,
				Message: lerr.Message,
				Err:     lerr.Err,
			}
		}
		return nil, err
	}

	envMap, err := loader.NewEnvLoader(loader.EnvPrefix).Load()
	if err != nil {
		return nil, err
	}

	m := layer.NewManager()
	m.AddLayer(layer.NewLayerWithData(layer.SourceDefaults, defaultsMap()))
	file := layer.NewLayerWithData(layer.SourceFile, fileMap)
	file.Path = path
	m.AddLayer(file)
	m.AddLayer(layer.NewLayerWithData(layer.SourceEnv, envMap))
	return m, nil
}

// SettingsFromLayers decodes the merged layers.
func SettingsFromLayers(m *layer.Manager) (Settings, error) {
	return decodeSettings(m.Merge())
}

// FlagsLayer returns a layer holding the non-zero fields of s, for
// overrides given by the host or on the command line.
func FlagsLayer(s Settings) *layer.Layer {
	data := make(map[string]any)
	if s.Dir != "" {
		data["dir"] = s.Dir
	}
	if s.Indent != "" {
		data["indent"] = s.Indent
	}
	watch := make(map[string]any)
	if s.Watch {
		watch["enabled"] = true
	}
	if s.Debounce > 0 {
		watch["debounce"] = s.Debounce
	}
	if len(watch) > 0 {
		data["watch"] = watch
	}
	if s.LogLevel != "" {
		data["log"] = map[string]any{"level": s.LogLevel}
	}
	return layer.NewLayerWithData(layer.SourceFlags, data)
}

func defaultsMap() map[string]any {
	d := DefaultSettings()
	return map[string]any{
		"dir":    d.Dir,
		"indent": d.Indent,
		"watch": map[string]any{
			"enabled":  d.Watch,
			"debounce": d.Debounce,
		},
		"log": map[string]any{"level": d.LogLevel},
	}
}

func decodeSettings(m map[string]any) (Settings, error) {
	s := DefaultSettings()

	if v, ok := loader.Lookup(m, "dir"); ok {
		str, ok := v.(string)
		if !ok || str == "" {
			return s, settingError("dir", v)
		}
		s.Dir = str
	}

	if v, ok := loader.Lookup(m, "indent"); ok {
		switch iv := v.(type) {
		case string:
			s.Indent = iv
		case int64:
			if iv < 0 || iv > 8 {
				return s, settingError("indent", v)
			}
			s.Indent = strings.Repeat(" ", int(iv))
		default:
			return s, settingError("indent", v)
		}
	}

	if v, ok := loader.Lookup(m, "watch.enabled"); ok {
		switch b := v.(type) {
		case bool:
			s.Watch = b
		case int64:
			s.Watch = b != 0
		default:
			return s, settingError("watch.enabled", v)
		}
	}

	if v, ok := loader.Lookup(m, "watch.debounce"); ok {
		d, err := toDuration(v)
		if err != nil || d < 0 {
			return s, settingError("watch.debounce", v)
		}
		s.Debounce = d
	}

	if v, ok := loader.Lookup(m, "log.level"); ok {
		str, ok := v.(string)
		if !ok {
			return s, settingError("log.level", v)
		}
		s.LogLevel = strings.ToLower(str)
	}

	return s, nil
}

// toDuration accepts a duration, a duration string or a number of
// milliseconds.
func toDuration(v any) (time.Duration, error) {
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case int64:
		return time.Duration(d) * time.Millisecond, nil
	case string:
		return time.ParseDuration(d)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func settingError(path string, v any) error {
	return fmt.Errorf("%w: %s = %v (%T)", ErrInvalidSetting, path, v, v)
}
