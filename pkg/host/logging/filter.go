package logging

// CategoryFilter decides whether a log event is emitted, based on the
// event's category and level. Each category can carry its own threshold
// override; categories without an override use the default level.
type CategoryFilter struct {
	defaultLevel Level
	categories   map[string]Level
}

// NewCategoryFilter builds a filter from a default threshold and a set
// of per-category overrides. The override map is copied, so later
// mutation by the caller does not affect the filter.
func NewCategoryFilter(defaultLevel Level, overrides map[string]Level) *CategoryFilter {
	categories := make(map[string]Level, len(overrides))
	for category, level := range overrides {
		categories[category] = level
	}
	return &CategoryFilter{defaultLevel: defaultLevel, categories: categories}
}

// Enabled reports whether an event for the category at the given level
// passes the filter. A None threshold suppresses the category entirely.
func (f *CategoryFilter) Enabled(category string, level Level) bool {
	threshold := f.defaultLevel
	if override, ok := f.categories[category]; ok {
		threshold = override
	}
	return level.Enabled(threshold)
}

// DefaultLevel returns the threshold applied to categories without an
// override.
func (f *CategoryFilter) DefaultLevel() Level {
	return f.defaultLevel
}
