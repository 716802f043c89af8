package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// panelsKey is the top-level key holding the panel records.
const panelsKey = "panels"

// Load reads and decodes the configuration file at path.
// The format is chosen by extension: .yaml/.yml, .toml and .lua are
// recognised and anything else is read as JSON.
//
// A missing file or a file that cannot be parsed yields a *LoadError.
// Individual panel records that fail to decode or validate are dropped and
// reported in Config.Warnings.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Path: path, Kind: ErrFileNotFound, Err: err}
		}
		return nil, &LoadError{Path: path, Kind: ErrParse, Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Path: path, Kind: ErrParse, Err: fmt.Errorf("is a directory"), ModTime: info.ModTime()}
	}

	raw, err := readRaw(path)
	if err != nil {
		return nil, &LoadError{Path: path, Kind: ErrParse, Err: err, ModTime: info.ModTime()}
	}

	cfg, err := Decode(raw)
	if err != nil {
		return nil, &LoadError{Path: path, Kind: ErrParse, Err: err, ModTime: info.ModTime()}
	}
	cfg.Path = path
	cfg.ModTime = info.ModTime()
	return cfg, nil
}

// ModTime returns the modification time of path, or the zero time when the
// file cannot be stat'ed.
func ModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// HasChanged reports whether the file at path differs from the one last
// loaded at lastModified. A file that has disappeared counts as changed only
// when a timestamp was known.
func HasChanged(path string, lastModified time.Time) bool {
	info, err := os.Stat(path)
	if err != nil {
		return !lastModified.IsZero()
	}
	return !info.ModTime().Equal(lastModified)
}

// readRaw parses the file into generic key/value data.
func readRaw(path string) (map[string]any, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".lua" {
		return parseLua(path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	switch ext {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	case ".toml":
		v.SetConfigType("toml")
	default:
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return v.AllSettings(), nil
}

// Decode converts generic key/value data into a Config. Bar settings that
// fail to decode are an error; panel records are decoded one by one and
// rejected individually.
func Decode(raw map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	settings := make(map[string]any, len(raw))
	var records any
	for k, v := range raw {
		if strings.EqualFold(k, panelsKey) {
			records = v
			continue
		}
		settings[k] = v
	}

	if err := decodeInto(settings, &cfg, nil); err != nil {
		return nil, fmt.Errorf("bar settings: %w", err)
	}

	list, err := recordList(records)
	if err != nil {
		return nil, err
	}

	validator := NewValidator()
	for i, record := range list {
		field := fmt.Sprintf("panels[%d]", i)

		fields, ok := record.(map[string]any)
		if !ok {
			cfg.Warnings = append(cfg.Warnings, ValidationError{Field: field, Message: "record is not an object"})
			continue
		}

		p := DefaultPanelConfig()
		var md mapstructure.Metadata
		if err := decodeInto(fields, &p, &md); err != nil {
			cfg.Warnings = append(cfg.Warnings, ValidationError{Field: field, Message: err.Error()})
			continue
		}
		for _, key := range md.Unused {
			cfg.Warnings = append(cfg.Warnings, ValidationError{Field: field, Message: "unknown field " + key})
		}
		p.Index = i
		if p.FontSize < 0 {
			p.FontSize = 0
		}
		ExpandEnvPanel(&p)

		result := validator.ValidatePanel(&p)
		cfg.Warnings = append(cfg.Warnings, prefixed(field, result.Warnings)...)
		if !result.IsValid() {
			cfg.Warnings = append(cfg.Warnings, prefixed(field, result.Errors)...)
			continue
		}
		cfg.Panels = append(cfg.Panels, p)
	}

	result := validator.ValidateSettings(&cfg)
	if !result.IsValid() {
		cfg.Warnings = append(cfg.Warnings, result.Errors...)
		cfg.BarHeight = DefaultBarHeight
	}
	cfg.Warnings = append(cfg.Warnings, result.Warnings...)
	if cfg.BarHeight == 0 {
		cfg.BarHeight = DefaultBarHeight
	}

	return &cfg, nil
}

func recordList(records any) ([]any, error) {
	switch r := records.(type) {
	case nil:
		return nil, nil
	case []any:
		return r, nil
	case []map[string]any:
		list := make([]any, len(r))
		for i := range r {
			list[i] = r[i]
		}
		return list, nil
	default:
		return nil, fmt.Errorf("panels must be a list, got %T", records)
	}
}

func decodeInto(input map[string]any, out any, md *mapstructure.Metadata) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		Metadata:         md,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func prefixed(field string, errs []ValidationError) []ValidationError {
	out := make([]ValidationError, len(errs))
	for i, e := range errs {
		out[i] = ValidationError{Field: field + "." + e.Field, Message: e.Message}
	}
	return out
}
