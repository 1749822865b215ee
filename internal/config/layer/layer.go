// Package layer stacks the sources of the library settings. Higher
// priority layers override values from lower priority layers, and every
// effective value can be traced back to the layer that provided it.
package layer

// Layer represents a single settings source.
type Layer struct {
	// Name identifies the layer (e.g., "defaults", "file", "environment").
	Name string

	// Priority determines merge order (higher overrides lower).
	Priority int

	// Source indicates where this layer was loaded from.
	Source Source

	// Path is the file path (if loaded from file).
	Path string

	// Data holds the settings as a nested map.
	Data map[string]any
}

// NewLayer creates an empty layer with the standard name and priority
// for source.
func NewLayer(source Source) *Layer {
	return NewLayerWithData(source, nil)
}

// NewLayerWithData creates a layer holding data.
func NewLayerWithData(source Source, data map[string]any) *Layer {
	if data == nil {
		data = make(map[string]any)
	}
	return &Layer{
		Name:     source.String(),
		Source:   source,
		Priority: DefaultPriority(source),
		Data:     data,
	}
}

// Clone creates a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	return &Layer{
		Name:     l.Name,
		Priority: l.Priority,
		Source:   l.Source,
		Path:     l.Path,
		Data:     cloneMap(l.Data),
	}
}

// Source indicates where a settings layer came from.
type Source uint8

const (
	// SourceDefaults represents the built-in settings.
	SourceDefaults Source = iota
	// SourceFile represents the settings file.
	SourceFile
	// SourceEnv represents MODERNCONFIG_ environment variables.
	SourceEnv
	// SourceFlags represents options passed by the host or command line.
	SourceFlags
)

// String returns a human-readable name for the source.
func (s Source) String() string {
	switch s {
	case SourceDefaults:
		return "defaults"
	case SourceFile:
		return "file"
	case SourceEnv:
		return "environment"
	case SourceFlags:
		return "flags"
	default:
		return "unknown"
	}
}

// cloneMap creates a deep copy of a map.
func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for key, val := range src {
		switch v := val.(type) {
		case map[string]any:
			dst[key] = cloneMap(v)
		case []any:
			dst[key] = cloneSlice(v)
		default:
			dst[key] = val
		}
	}

	return dst
}

// cloneSlice creates a deep copy of a slice.
func cloneSlice(src []any) []any {
	if src == nil {
		return nil
	}

	dst := make([]any, len(src))
	for i, val := range src {
		switch v := val.(type) {
		case map[string]any:
			dst[i] = cloneMap(v)
		case []any:
			dst[i] = cloneSlice(v)
		default:
			dst[i] = val
		}
	}

	return dst
}
