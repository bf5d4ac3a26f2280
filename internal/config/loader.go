package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables read by Load.
const EnvPrefix = "DEVTRACK_"

// Load builds the configuration from Default, the YAML file at path and
// DEVTRACK_ environment variables, later sources winning. An empty path
// selects DefaultPath. A missing file is not an error.
//
// The file must sit under ~/.config/devtrack or /etc/devtrack (after
// resolving symlinks), be mode 0600 or 0400, and be at most 1MB.
//
// Environment names drop the prefix and split once on underscore into
// section and key:
//
//	DEVTRACK_MATCHER_MANY_THRESHOLD -> matcher.many_threshold
//	DEVTRACK_EMBEDDINGS_API_KEY     -> embeddings.api_key
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	content, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if content != nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("reading %s environment: %w", EnvPrefix, err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps DEVTRACK_SECTION_FIELD_NAME to section.field_name.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	if section, field, ok := strings.Cut(key, "_"); ok {
		return section + "." + field
	}
	return key
}
