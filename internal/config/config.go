package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/stoewer/go-strcase"

	"github.com/zbysir/mermaidinit"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nesting levels: MERMAID_INIT_MERMAID__FONT_FAMILY sets mermaid.fontFamily.
const EnvPrefix = "MERMAID_INIT_"

// DefaultFile is read when no --config flag is given.
const DefaultFile = "mermaid-init.yml"

type Config struct {
	// Renderer is the path of the diagram library script.
	Renderer   string `koanf:"renderer" yaml:"renderer"`
	GlobalName string `koanf:"globalName" yaml:"globalName"`

	Mermaid       mermaidinit.RendererConfig `koanf:"mermaid" yaml:"mermaid"`
	ExtraCSS      string                     `koanf:"extraCss" yaml:"extraCss"`
	FallbackDelay time.Duration              `koanf:"fallbackDelay" yaml:"fallbackDelay"`

	Concurrency int    `koanf:"concurrency" yaml:"concurrency"`
	OutDir      string `koanf:"outDir" yaml:"outDir"`
	LogLevel    string `koanf:"logLevel" yaml:"logLevel"`
}

func DefaultConfig() *Config {
	return &Config{
		GlobalName:    mermaidinit.DefaultRendererName,
		Mermaid:       mermaidinit.DefaultRendererConfig,
		FallbackDelay: mermaidinit.DefaultFallbackDelay,
		Concurrency:   4,
		LogLevel:      "info",
	}
}

// Load reads the YAML file at path if it exists, then overlays MERMAID_INIT_*
// environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	parts := strings.Split(strings.TrimPrefix(s, EnvPrefix), "__")
	for i, p := range parts {
		parts[i] = strcase.LowerCamelCase(strings.ToLower(p))
	}
	return strings.Join(parts, ".")
}

var validSecurityLevels = map[string]bool{
	"strict":     true,
	"loose":      true,
	"antiscript": true,
	"sandbox":    true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func (c *Config) Validate() error {
	if c.GlobalName == "" {
		return fmt.Errorf("globalName is required")
	}
	if !validSecurityLevels[c.Mermaid.SecurityLevel] {
		return fmt.Errorf("invalid mermaid.securityLevel %q: must be one of strict, loose, antiscript, sandbox", c.Mermaid.SecurityLevel)
	}
	if c.FallbackDelay < 0 {
		return fmt.Errorf("fallbackDelay must be non-negative")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid logLevel %q", c.LogLevel)
	}
	if c.ExtraCSS != "" {
		if err := mermaidinit.ValidateCSS(c.ExtraCSS); err != nil {
			return fmt.Errorf("invalid extraCss: %w", err)
		}
	}
	return nil
}

// ActivatorOptions translates the configuration into activator options.
func (c *Config) ActivatorOptions() []mermaidinit.Option {
	return []mermaidinit.Option{
		mermaidinit.WithRendererName(c.GlobalName),
		mermaidinit.WithRendererConfig(c.Mermaid),
		mermaidinit.WithExtraCSS(c.ExtraCSS),
		mermaidinit.WithFallbackDelay(c.FallbackDelay),
	}
}
