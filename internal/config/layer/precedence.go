package layer

// Standard priority levels for settings layers.
const (
	PriorityDefaults = 0
	PriorityFile     = 100
	PriorityEnv      = 500
	PriorityFlags    = 600
)

// DefaultPriority returns the default priority for a given source.
func DefaultPriority(source Source) int {
	switch source {
	case SourceFile:
		return PriorityFile
	case SourceEnv:
		return PriorityEnv
	case SourceFlags:
		return PriorityFlags
	default:
		return PriorityDefaults
	}
}
