package roles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Decode builds a registry from the defaults merged with overrides read from
// configuration. Each key of raw is a role name; values follow Profile's
// mapstructure tags. An override replaces the whole profile of that name.
func Decode(raw map[string]any) (*Registry, error) {
	merged := make(map[string]Profile)
	order := make([]string, 0)
	for _, p := range Defaults() {
		key := strings.ToLower(p.Name)
		merged[key] = p
		order = append(order, key)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := raw[name]
		var p Profile
		cfg := &mapstructure.DecoderConfig{
			Result:           &p,
			TagName:          "mapstructure",
			WeaklyTypedInput: true,
		}
		decoder, err := mapstructure.NewDecoder(cfg)
		if err != nil {
			return nil, fmt.Errorf("role %q: %w", name, err)
		}
		if err := decoder.Decode(value); err != nil {
			return nil, fmt.Errorf("role %q: %w", name, err)
		}
		if strings.TrimSpace(p.Name) == "" {
			// viper lowercases keys, keep the built-in spelling when there is one
			p.Name = name
			if existing, ok := merged[strings.ToLower(strings.TrimSpace(name))]; ok {
				p.Name = existing.Name
			}
		}

		key := strings.ToLower(strings.TrimSpace(p.Name))
		if _, ok := merged[key]; !ok {
			order = append(order, key)
		}
		merged[key] = p
	}

	profiles := make([]Profile, 0, len(order))
	for _, key := range order {
		profiles = append(profiles, merged[key])
	}

	return NewRegistry(profiles...)
}
