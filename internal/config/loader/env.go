package loader

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is the prefix of the library's environment variables.
const EnvPrefix = "MODERNCONFIG_"

// EnvLoader loads settings from environment variables.
type EnvLoader struct {
	prefix   string            // Environment variable prefix (e.g., "MODERNCONFIG_")
	mapping  map[string]string // Env var -> settings path
	rawPaths map[string]bool   // Settings paths whose values are never type-guessed
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "MODERNCONFIG_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:   prefix,
		mapping:  defaultEnvMapping(prefix),
		rawPaths: defaultStringPaths(),
	}
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:   prefix,
		mapping:  mapping,
		rawPaths: defaultStringPaths(),
	}
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "DIR":       "dir",
		prefix + "INDENT":    "indent",
		prefix + "WATCH":     "watch.enabled",
		prefix + "DEBOUNCE":  "watch.debounce",
		prefix + "LOG_LEVEL": "log.level",
	}
}

// defaultStringPaths lists the string-typed settings. MODERNCONFIG_DIR=2024
// names a directory, not a number.
func defaultStringPaths() map[string]bool {
	return map[string]bool{
		"dir":       true,
		"indent":    true,
		"log.level": true,
	}
}

// Load reads environment variables and returns a nested map.
// Empty values are kept; they are set, not unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	m := make(map[string]any)

	for env, path := range l.mapping {
		if val, ok := os.LookupEnv(env); ok {
			setByPath(m, path, l.value(path, val))
		}
	}

	// Prefixed variables without a mapping: MODERNCONFIG_WATCH_DEBOUNCE
	// becomes watch.debounce.
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		if _, mapped := l.mapping[name]; mapped {
			continue
		}
		path := l.envToPath(name)
		setByPath(m, path, l.value(path, value))
	}

	return m, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, path string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = path
}

func (l *EnvLoader) value(path, raw string) any {
	if l.rawPaths[path] {
		return raw
	}
	return parseValue(raw)
}

// envToPath converts MODERNCONFIG_LOG_LEVEL to log.level: the first
// segment is the section, the rest form a camelCase key.
func (l *EnvLoader) envToPath(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, l.prefix), "_")

	section := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return section
	}

	key := strings.ToLower(parts[1])
	for _, part := range parts[2:] {
		if part != "" {
			key += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return section + "." + key
}

// parseValue attempts to parse the string value into an appropriate type.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	// Only with a decimal point, to avoid misreading ints
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}

	current[parts[len(parts)-1]] = value
}
