package buildconfig

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// DefaultLanguage is used when the config names no language.
const DefaultLanguage = "generic"

// Well-known top-level keys.
const (
	KeyLanguage = "language"
	KeyEnv      = "env"
	KeyEnvFile  = "env_file"
	KeyCache    = "cache"
	KeyJobs     = "jobs"
)

// Config is the resolved, read-only option set driving one script generation.
type Config struct {
	data map[string]any
	// dir anchors relative env_file paths; empty means the working directory.
	dir string
}

// New creates a Config from an already-decoded mapping. The mapping is
// copied so later changes to it are not observed.
func New(data map[string]any) *Config {
	return &Config{data: deepCopyMap(data)}
}

// Parse decodes a YAML (or JSON) build description. Numeric scalars are kept
// as Number values holding their literal text.
func Parse(data []byte) (*Config, error) {
	raw, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse build config: %w", err)
	}
	return &Config{data: raw}, nil
}

// Load reads and parses a build description from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read build config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Get returns the raw value of key.
func (c *Config) Get(key string) (any, bool) {
	v, ok := c.data[key]
	return v, ok
}

// Keys returns the top-level keys in sorted order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the underlying mapping.
func (c *Config) Map() map[string]any {
	return deepCopyMap(c.data)
}

// Language returns the configured language, lower-cased.
func (c *Config) Language() string {
	if s, ok := c.data[KeyLanguage].(string); ok && s != "" {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return DefaultLanguage
}

// StageCommands returns the user-supplied commands for a lifecycle stage.
// A stage given as a single string yields one command.
func (c *Config) StageCommands(stage string) ([]string, bool) {
	v, ok := c.data[stage]
	if !ok || v == nil {
		return nil, false
	}
	return stringList(v), true
}

// Resolve merges defaults with the user's values and decodes the result into
// out, which must be a pointer to a struct with mapstructure tags. Every
// tagged field must resolve to a non-nil value; the first one that does not
// is reported as a ConfigurationError.
func (c *Config) Resolve(plugin string, defaults map[string]any, out any) error {
	merged := make(map[string]any, len(defaults)+len(c.data))
	maps.Copy(merged, defaults)
	for k, v := range c.data {
		if v != nil {
			merged[k] = v
		}
	}

	for _, name := range optionNames(out) {
		if v, ok := merged[name]; !ok || v == nil {
			return &ConfigurationError{Plugin: plugin, Option: name}
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return &ConfigurationError{Plugin: plugin, Err: err}
	}
	if err := decoder.Decode(merged); err != nil {
		return &ConfigurationError{Plugin: plugin, Err: err}
	}
	return nil
}

// optionNames lists the mapstructure keys of the struct out points to.
func optionNames(out any) []string {
	t := reflect.TypeOf(out)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("mapstructure")
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return []string{fmt.Sprint(t)}
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
