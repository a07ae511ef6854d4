package processors

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrInvalidConfig is returned when configuration input has an unsupported
// shape.
var ErrInvalidConfig = errors.New("invalid pass config")

// Config holds pass options keyed by pass name, then option name.
type Config map[string]map[string]any

// Set assigns one option.
func (c Config) Set(pass, option string, value any) {
	if c[pass] == nil {
		c[pass] = make(map[string]any)
	}

	c[pass][option] = normalizeValue(value)
}

// Merge copies the options of other into c, overriding existing values.
func (c Config) Merge(other Config) Config {
	for pass, opts := range other {
		for option, value := range opts {
			c.Set(pass, option, value)
		}
	}

	return c
}

// Get returns one option.
func (c Config) Get(pass, option string) (any, bool) {
	v, ok := c[pass][option]

	return v, ok
}

// Strings renders c as sorted "pass.option=value" entries.
func (c Config) Strings() []string {
	var out []string

	for _, pass := range sortedKeys(c) {
		for _, option := range sortedKeys(c[pass]) {
			out = append(out, fmt.Sprintf("%s.%s=%v", pass, option, c[pass][option]))
		}
	}

	return out
}

// NormalizeConfig converts the accepted configuration shapes into a
// [Config]. These inputs are equivalent:
//
//	map[string]any{"operationId": map[string]any{"hash": false}}
//	map[string]any{"operationId.hash": false}
//	[]string{"operationId.hash=false"}
//
// Mappings may mix nested and dotted keys. The strings "true" and "false"
// become booleans.
func NormalizeConfig(v any) (Config, error) {
	out := Config{}

	err := out.add(v)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (c Config) add(v any) error {
	switch val := v.(type) {
	case nil:
		return nil
	case Config:
		c.Merge(val)
	case map[string]map[string]any:
		c.Merge(Config(val))
	case map[string]any:
		for _, key := range sortedKeys(val) {
			err := c.addKey(key, val[key])
			if err != nil {
				return err
			}
		}

	case map[string]string:
		for _, key := range sortedKeys(val) {
			err := c.addKey(key, val[key])
			if err != nil {
				return err
			}
		}

	case []string:
		for _, entry := range val {
			err := c.addEntry(entry)
			if err != nil {
				return err
			}
		}

	case []any:
		for _, item := range val {
			err := c.add(item)
			if err != nil {
				return err
			}
		}

	case string:
		return c.addEntry(val)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidConfig, v)
	}

	return nil
}

func (c Config) addKey(key string, value any) error {
	if pass, option, ok := strings.Cut(key, "."); ok {
		if pass == "" || option == "" {
			return fmt.Errorf("%w: key %q", ErrInvalidConfig, key)
		}

		c.Set(pass, option, value)

		return nil
	}

	switch opts := value.(type) {
	case map[string]any:
		for option, v := range opts {
			c.Set(key, option, v)
		}

	case map[string]string:
		for option, v := range opts {
			c.Set(key, option, v)
		}

	case nil:
		if c[key] == nil {
			c[key] = make(map[string]any)
		}

	default:
		return fmt.Errorf("%w: %q must hold a mapping of options, got %T", ErrInvalidConfig, key, value)
	}

	return nil
}

func (c Config) addEntry(entry string) error {
	key, value, ok := strings.Cut(entry, "=")
	if !ok {
		return fmt.Errorf("%w: entry %q is not key=value", ErrInvalidConfig, entry)
	}

	key = strings.TrimSpace(key)
	if !strings.Contains(key, ".") {
		return fmt.Errorf("%w: entry %q must name pass.option", ErrInvalidConfig, entry)
	}

	return c.addKey(key, strings.TrimSpace(value))
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case string:
		switch strings.ToLower(val) {
		case "true":
			return true
		case "false":
			return false
		}

	case []string:
		out := make([]any, 0, len(val))
		for _, s := range val {
			out = append(out, s)
		}

		return out
	}

	return v
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
