package buildconfig

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// EnvVar is one user-declared environment variable.
type EnvVar struct {
	Name   string
	Value  string
	Secret bool
}

// Env returns the variables declared under the env key, followed by those
// read from the env_file dotenv files.
//
// Entries are either "NAME=value" strings or mappings with name, value and
// an optional secret flag. A string entry starting with "SECURE " is secret.
// Secret values are exported without being echoed. Dotenv values are always
// secret. Whitespace around the name and the value is dropped.
func (c *Config) Env() ([]EnvVar, error) {
	vars, err := c.inlineEnv()
	if err != nil {
		return nil, err
	}
	fileVars, err := c.fileEnv()
	if err != nil {
		return nil, err
	}
	return append(vars, fileVars...), nil
}

func (c *Config) inlineEnv() ([]EnvVar, error) {
	raw, ok := c.data[KeyEnv]
	if !ok || raw == nil {
		return nil, nil
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	default:
		items = []any{v}
	}

	vars := make([]EnvVar, 0, len(items))
	for i, item := range items {
		ev, err := parseEnvItem(item)
		if err != nil {
			return nil, &ConfigurationError{Plugin: "env", Option: fmt.Sprintf("env[%d]", i), Err: err}
		}
		vars = append(vars, ev)
	}
	return vars, nil
}

// securePrefix marks a string entry whose value must not be echoed.
const securePrefix = "SECURE "

func parseEnvItem(item any) (EnvVar, error) {
	switch v := item.(type) {
	case string:
		entry, secret := strings.CutPrefix(strings.TrimSpace(v), securePrefix)
		name, value, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return EnvVar{}, fmt.Errorf("expected NAME=value, got %q", v)
		}
		return EnvVar{Name: name, Value: strings.TrimSpace(value), Secret: secret}, nil
	case map[string]any:
		name, _ := v["name"].(string)
		if name == "" {
			return EnvVar{}, fmt.Errorf("missing name")
		}
		ev := EnvVar{Name: name}
		if value, ok := v["value"]; ok && value != nil {
			ev.Value = fmt.Sprint(value)
		}
		if secret, ok := v["secret"].(bool); ok {
			ev.Secret = secret
		}
		return ev, nil
	default:
		return EnvVar{}, fmt.Errorf("unsupported entry %v", item)
	}
}

// fileEnv reads the env_file entries. Variables of one file are sorted by
// name; a later file overrides an earlier one.
func (c *Config) fileEnv() ([]EnvVar, error) {
	raw, ok := c.data[KeyEnvFile]
	if !ok || raw == nil {
		return nil, nil
	}

	var vars []EnvVar
	index := make(map[string]int)
	for _, name := range stringList(raw) {
		path := name
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, &ConfigurationError{Plugin: "env", Option: KeyEnvFile, Err: err}
		}

		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ev := EnvVar{Name: k, Value: values[k], Secret: true}
			if i, seen := index[k]; seen {
				vars[i] = ev
				continue
			}
			index[k] = len(vars)
			vars = append(vars, ev)
		}
	}
	return vars, nil
}
