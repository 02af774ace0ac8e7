package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	yaml "go.yaml.in/yaml/v3"
)

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// Path is the optional config file (.json, .yaml or .yml).
	Path string
	// Required makes a missing Path an error. Set it when the path came
	// from an explicit flag rather than the default.
	Required bool
	// EnvFile is loaded into the process environment first (without
	// overriding variables that are already set). Missing is not an error.
	EnvFile string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load reads the env file, the optional config file and the environment,
// in that order of increasing precedence, and fills in defaults.
// It does not validate credentials; call Validate for that.
func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
		}
	}

	cfg := &Config{}
	if opts.Path != "" {
		b, err := os.ReadFile(opts.Path)
		switch {
		case err == nil:
			parsed, err := Parse(opts.Path, b)
			if err != nil {
				return nil, err
			}
			cfg = parsed
		case errors.Is(err, fs.ErrNotExist) && !opts.Required:
		default:
			return nil, err
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	ApplyEnv(cfg, lookup)
	cfg.applyDefaults()
	return cfg, nil
}

// Parse decodes a config file strictly: unknown keys and trailing data are
// rejected. YAML is converted to JSON first so both formats share the
// same decoder.
func Parse(path string, data []byte) (*Config, error) {
	jb, err := coerceToJSONBytes(path, data)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("%s: invalid config: trailing data", path)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func coerceToJSONBytes(path string, data []byte) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return data, nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%s: yaml unmarshal: %w", path, err)
	}
	// An empty YAML document decodes to nil; treat it as an empty object.
	if v == nil {
		return []byte("{}"), nil
	}
	j, err := json.Marshal(stringKeys(v))
	if err != nil {
		return nil, fmt.Errorf("%s: yaml->json marshal: %w", path, err)
	}
	return j, nil
}

// stringKeys rewrites map[any]any nodes so the tree can be JSON-marshaled.
func stringKeys(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = stringKeys(v)
		}
		return m
	case map[string]any:
		for k, v := range x {
			x[k] = stringKeys(v)
		}
		return x
	case []any:
		for i := range x {
			x[i] = stringKeys(x[i])
		}
		return x
	default:
		return in
	}
}
