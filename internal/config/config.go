// Package config loads simulation settings from a Java-properties-
// style file (magiconair/properties), expands [a; b; c;] sweep lists
// and %%Group.Key%% cross-references, and validates the resulting
// settings, aggregating every problem found via go-multierror instead
// of failing on the first one.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/magiconair/properties"
)

// Settings is a dotted-namespace view over a loaded properties file:
// "Group.Key=value" lines become Settings["Group"]["Key"].
type Settings map[string]map[string]string

// Load reads a properties file from path, expands %%Group.Key%%
// substitutions, and groups keys by their leading namespace segment.
func Load(path string) (Settings, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("config: loading %s: %w", path, err)
	}

	raw := make(map[string]string, len(p.Keys()))
	for _, k := range p.Keys() {
		raw[k] = p.GetString(k, "")
	}

	expanded, err := expandReferences(raw)
	if err != nil {
		return nil, err
	}

	out := make(Settings)
	for k, v := range expanded {
		group, key := splitNamespace(k)
		if out[group] == nil {
			out[group] = make(map[string]string)
		}
		out[group][key] = v
	}
	return out, nil
}

func splitNamespace(key string) (group, rest string) {
	i := strings.IndexByte(key, '.')
	if i < 0 {
		return "", key
	}
	return key[:i], key[i+1:]
}

// expandReferences resolves every %%Group.Key%% token in every value
// against the raw key/value map, in up to a handful of passes so a
// reference can itself resolve to a value containing further
// references.
func expandReferences(raw map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	for pass := 0; pass < 8; pass++ {
		changed := false
		for k, v := range out {
			resolved, did, err := resolveOnce(v, out)
			if err != nil {
				return nil, fmt.Errorf("config: %s: %w", k, err)
			}
			if did {
				out[k] = resolved
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return out, nil
}

func resolveOnce(v string, all map[string]string) (string, bool, error) {
	const marker = "%%"
	start := strings.Index(v, marker)
	if start < 0 {
		return v, false, nil
	}
	end := strings.Index(v[start+len(marker):], marker)
	if end < 0 {
		return v, false, fmt.Errorf("unterminated %%%% reference in %q", v)
	}
	end += start + len(marker)
	ref := v[start+len(marker) : end]
	val, ok := all[ref]
	if !ok {
		return v, false, fmt.Errorf("reference %%%%%s%%%% has no matching setting", ref)
	}
	return v[:start] + val + v[end+len(marker):], true, nil
}

// ExpandSweep parses a "[a; b; c;]" sweep list into its individual
// values. A plain (non-bracketed) value is returned as a single-
// element slice unchanged.
func ExpandSweep(value string) []string {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return []string{value}
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]")
	parts := strings.Split(inner, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Get returns the raw string for Group.Key, and whether it was set.
func (s Settings) Get(group, key string) (string, bool) {
	g, ok := s[group]
	if !ok {
		return "", false
	}
	v, ok := g[key]
	return v, ok
}

// GetFloat returns the float64 value of Group.Key, or def if unset.
// Parse failures are collected into the returned error, not silently
// defaulted.
func (s Settings) GetFloat(group, key string, def float64) (float64, error) {
	v, ok := s.Get(group, key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("config: %s.%s=%q is not a number: %w", group, key, v, err)
	}
	return f, nil
}

// GetInt returns the int value of Group.Key, or def if unset.
func (s Settings) GetInt(group, key string, def int) (int, error) {
	v, ok := s.Get(group, key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("config: %s.%s=%q is not an integer: %w", group, key, v, err)
	}
	return n, nil
}

// GetBool returns the bool value of Group.Key, or def if unset.
func (s Settings) GetBool(group, key string, def bool) (bool, error) {
	v, ok := s.Get(group, key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("config: %s.%s=%q is not a boolean: %w", group, key, v, err)
	}
	return b, nil
}

// Validator checks one aspect of a loaded Settings and returns a
// non-nil error describing what is wrong, if anything.
type Validator func(Settings) error

// Validate runs every validator against s, aggregating every failure
// (rather than stopping at the first) via go-multierror so a user
// fixing a config file sees every problem in one pass.
func Validate(s Settings, validators ...Validator) error {
	var result *multierror.Error
	for _, v := range validators {
		if err := v(s); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// RequirePositiveFloat builds a Validator that fails if Group.Key is
// set but not a positive number.
func RequirePositiveFloat(group, key string) Validator {
	return func(s Settings) error {
		v, ok := s.Get(group, key)
		if !ok {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%s.%s must be a positive number, got %q", group, key, v)
		}
		return nil
	}
}

// RequireGroup builds a Validator that fails if group has no settings
// at all.
func RequireGroup(group string) Validator {
	return func(s Settings) error {
		if _, ok := s[group]; !ok {
			return fmt.Errorf("missing required settings group %q", group)
		}
		return nil
	}
}
