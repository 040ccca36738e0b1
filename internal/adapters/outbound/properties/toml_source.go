package properties

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the workspace-level properties file.
const FileName = "buildgate.properties.toml"

// TOMLSource implements domain.PropertySource. Properties are read from the
// workspace file, then the user file under Home, then Overrides; later
// sources win.
type TOMLSource struct {
	Home      string
	Overrides map[string]string
}

// New creates a TOMLSource reading the user file from the current user's
// home directory.
func New(overrides map[string]string) *TOMLSource {
	home, _ := os.UserHomeDir()
	return &TOMLSource{Home: home, Overrides: overrides}
}

// Properties returns the merged properties visible from root.
func (s *TOMLSource) Properties(root string) (map[string]string, error) {
	props := make(map[string]string)

	paths := []string{filepath.Join(root, FileName)}
	if s.Home != "" {
		paths = append(paths, filepath.Join(s.Home, ".buildgate", "properties.toml"))
	}
	for _, p := range paths {
		if err := readInto(p, props); err != nil {
			return nil, err
		}
	}
	for k, v := range s.Overrides {
		props[k] = v
	}
	return props, nil
}

func readInto(path string, props map[string]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	flatten("", raw, props)
	return nil
}

// flatten turns nested tables into dotted keys: [nexus] user = "x" -> nexus.user.
func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// ParseOverrides parses repeated key=value flags.
func ParseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid property %q (want key=value)", p)
		}
		out[k] = v
	}
	return out, nil
}

// Keys returns the property names in order, for display without values.
func Keys(props map[string]string) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
