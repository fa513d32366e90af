// Package config loads the statusbar configuration file. A file is TOML
// unless its extension is .yml or .yaml. Loading expands ${VAR} and
// ${VAR:-default} references, validates the result against the embedded
// JSON Schema, then decodes it over Default().
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/grovetools/statusbar/block"
	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/pkg/paths"
	"github.com/grovetools/statusbar/schema"
	"github.com/grovetools/statusbar/util/pathutil"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable that points at a config file.
const EnvConfig = "STATUSBAR_CONFIG"

// Format is the syntax of a configuration file.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the syntax from a file name.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

var (
	validatorOnce sync.Once
	validator     *schema.Validator
	validatorErr  error
)

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	cfg, err := Parse(data, FormatFor(path))
	if err != nil {
		if statusErr, ok := errors.As(err); ok {
			return nil, statusErr.WithDetail("path", path)
		}
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// LoadDefault finds the configuration file (see FindConfigFile) and loads it.
func LoadDefault(explicit string) (*Config, error) {
	path, err := FindConfigFile(explicit)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// LoadOrFallback behaves like LoadDefault, except that a missing file
// yields Fallback() when no path was given explicitly.
func LoadOrFallback(explicit string) (*Config, error) {
	cfg, err := LoadDefault(explicit)
	if err != nil && explicit == "" && errors.Is(err, errors.ErrCodeConfigNotFound) {
		return Fallback(), nil
	}
	return cfg, err
}

// Parse decodes, validates and applies configuration data.
func Parse(data []byte, format Format) (*Config, error) {
	raw, err := decodeRaw([]byte(expandEnvVars(string(data))), format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config").
			WithDetail("format", string(format))
	}

	v, err := getValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to load config schema")
	}
	if err := v.Validate(raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "schema validation failed")
	}

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "yaml",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       block.DurationHook(),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create config decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeRaw(data []byte, format Format) (map[string]interface{}, error) {
	raw := make(map[string]interface{})
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		err = toml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = make(map[string]interface{})
	}
	return raw, nil
}

func getValidator() (*schema.Validator, error) {
	validatorOnce.Do(func() {
		validator, validatorErr = schema.NewValidator()
	})
	return validator, validatorErr
}

// FindConfigFile resolves the configuration file in this order: the
// explicit path, $STATUSBAR_CONFIG, then config.toml, config.yml and
// config.yaml in the config directory.
func FindConfigFile(explicit string) (string, error) {
	if explicit != "" {
		return checkFile(pathutil.Expand(explicit))
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return checkFile(pathutil.Expand(env))
	}

	dir := paths.ConfigDir()
	for _, name := range []string{"config.toml", "config.yml", "config.yaml"} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.ConfigNotFound(filepath.Join(dir, "config.toml"))
}

func checkFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", errors.ConfigNotFound(path)
	}
	return path, nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} references.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}
