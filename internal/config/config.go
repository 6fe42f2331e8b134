// Package config loads replkit settings from the embedded defaults merged
// with an optional user YAML file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/replkit/pkg/logger"
	"github.com/oakwood-commons/replkit/pkg/settings"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

const (
	StyleGhost = "ghost"
	StyleCycle = "cycle"
)

// ErrInvalid marks configuration values that fail validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the merged configuration.
type Config struct {
	App        AppConfig              `yaml:"app" yamlcomment:"Application identity"`
	Completion CompletionConfig       `yaml:"completion" yamlcomment:"Completion behavior"`
	UI         UIConfig               `yaml:"ui" yamlcomment:"Terminal presentation"`
	Log        LogConfig              `yaml:"log" yamlcomment:"Diagnostic logging"`
	Themes     map[string]ThemeConfig `yaml:"themes" yamlcomment:"Named color themes (256-color numbers or hex strings)"`
}

type AppConfig struct {
	Name   string `yaml:"name" yamlcomment:"Name shown in the banner"`
	Prompt string `yaml:"prompt" yamlcomment:"Prompt printed before the input line"`
}

type CompletionConfig struct {
	Style          string   `yaml:"style" yamlcomment:"ghost (inline text and menu) or cycle (Tab replaces the word)"`
	MenuRows       int      `yaml:"menu_rows" yamlcomment:"Menu rows visible at once"`
	HandlerTimeout Duration `yaml:"handler_timeout" yamlcomment:"Upper bound for one value handler call (0 disables)"`
	CaseSensitive  bool     `yaml:"case_sensitive" yamlcomment:"Match command and argument names case-sensitively"`
}

type UIConfig struct {
	Theme     string `yaml:"theme" yamlcomment:"Theme name from the themes section"`
	NoColor   bool   `yaml:"no_color" yamlcomment:"Disable all styling"`
	Highlight bool   `yaml:"highlight" yamlcomment:"Color the input line by token class"`
}

type LogConfig struct {
	Level string `yaml:"level" yamlcomment:"debug, info, warn or error"`
	File  string `yaml:"file" yamlcomment:"Log file; empty discards logs in interactive mode"`
}

// ColorValue stores a color token (number or name) and marshals numerics as YAML ints.
type ColorValue string

func (c ColorValue) MarshalYAML() (interface{}, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	*c = ColorValue(value.Value)
	return nil
}

// ThemeConfig is the YAML form of a theme. Empty colors render unstyled.
type ThemeConfig struct {
	Prompt          ColorValue `yaml:"prompt"`
	Input           ColorValue `yaml:"input"`
	Ghost           ColorValue `yaml:"ghost"`
	MenuItem        ColorValue `yaml:"menu_item"`
	MenuSelectedFG  ColorValue `yaml:"menu_selected_fg"`
	MenuSelectedBG  ColorValue `yaml:"menu_selected_bg"`
	MenuDescription ColorValue `yaml:"menu_description"`
	Indicator       ColorValue `yaml:"indicator"`
	Group           ColorValue `yaml:"group"`
	Command         ColorValue `yaml:"command"`
	Argument        ColorValue `yaml:"argument"`
	Value           ColorValue `yaml:"value"`
	Error           ColorValue `yaml:"error"`
	Pipe            ColorValue `yaml:"pipe"`
	Output          ColorValue `yaml:"output"`
	Status          ColorValue `yaml:"status"`
}

// Duration is a time.Duration written as "2s" in YAML.
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil || value.Value == "" {
		*d = 0
		return nil
	}
	if n, err := strconv.Atoi(value.Value); err == nil {
		*d = Duration(time.Duration(n) * time.Millisecond)
		return nil
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q", value.Line, value.Value)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// DefaultConfigYAML returns a copy of the embedded default config.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default decodes the embedded defaults.
func Default() (*Config, error) {
	if len(embeddedDefaultConfig) == 0 {
		return nil, fmt.Errorf("embedded default config is empty")
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(embeddedDefaultConfig, cfg); err != nil {
		return nil, fmt.Errorf("decode embedded default config: %w", err)
	}
	if cfg.Themes == nil {
		cfg.Themes = map[string]ThemeConfig{}
	}
	return cfg, nil
}

// Load merges the file at path over the defaults. An empty path yields
// the defaults alone.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.Merge(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Merge overlays YAML data onto c. Scalars present in data replace the
// current values; themes merge color by color.
func (c *Config) Merge(data []byte) error {
	next := *c
	next.Themes = nil
	if err := yaml.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	merged := make(map[string]ThemeConfig, len(c.Themes)+len(next.Themes))
	for name, th := range c.Themes {
		merged[name] = th
	}
	for name, th := range next.Themes {
		merged[name] = mergeTheme(merged[name], th)
	}
	next.Themes = merged
	*c = next
	return nil
}

func mergeTheme(base, override ThemeConfig) ThemeConfig {
	bv := reflect.ValueOf(&base).Elem()
	ov := reflect.ValueOf(override)
	for i := 0; i < ov.NumField(); i++ {
		if v := ov.Field(i); v.String() != "" {
			bv.Field(i).Set(v)
		}
	}
	return base
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Completion.Style {
	case StyleGhost, StyleCycle:
	default:
		return fmt.Errorf("%w: completion.style %q (want %s or %s)", ErrInvalid, c.Completion.Style, StyleGhost, StyleCycle)
	}
	if c.Completion.MenuRows < 1 {
		return fmt.Errorf("%w: completion.menu_rows must be at least 1", ErrInvalid)
	}
	if c.Completion.HandlerTimeout < 0 {
		return fmt.Errorf("%w: completion.handler_timeout must not be negative", ErrInvalid)
	}
	if _, ok := c.Themes[c.UI.Theme]; !ok {
		return fmt.Errorf("%w: unknown theme %q (available: %s)", ErrInvalid, c.UI.Theme, strings.Join(c.ThemeNames(), ", "))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return nil
}

// ThemeNames lists the configured themes in order.
func (c *Config) ThemeNames() []string {
	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Theme returns the selected theme.
func (c *Config) Theme() ThemeConfig {
	return c.Themes[c.UI.Theme]
}

// YAML renders the config with a comment above each documented key.
func (c *Config) YAML() (string, error) {
	var doc yaml.Node
	if err := doc.Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	annotate(&doc, reflect.TypeOf(*c))
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(out), nil
}

// annotate copies yamlcomment tags onto the matching mapping keys.
func annotate(node *yaml.Node, t reflect.Type) {
	if node.Kind != yaml.MappingNode || t.Kind() != reflect.Struct {
		return
	}
	fields := map[string]reflect.StructField{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.Split(f.Tag.Get("yaml"), ",")[0]
		if name != "" {
			fields[name] = f
		}
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		f, ok := fields[key.Value]
		if !ok {
			continue
		}
		if comment := f.Tag.Get("yamlcomment"); comment != "" {
			key.HeadComment = comment
		}
		annotate(val, f.Type)
	}
}

// Path picks the config file: the explicit flag value, then the
// REPLKIT_CONFIG variable, then $XDG_CONFIG_HOME/replkit/config.yaml when
// that file exists. An empty result means defaults only.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(settings.ConfigEnvVar); env != "" {
		return env
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return ""
		}
		base = dir
	}
	candidate := filepath.Join(base, settings.CliBinaryName, "config.yaml")
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}
