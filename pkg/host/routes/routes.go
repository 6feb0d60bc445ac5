package routes

import (
	"sort"
	"strings"
	"sync"

	hosterrors "github.com/jvano/azure-webjobs-sdk-script/pkg/host/errors"
)

// ReservedPrefix is the route segment reserved for the host's own
// endpoints. No function route may fall under it.
const ReservedPrefix = "admin"

// Entry is one function's claim on a route slot.
type Entry struct {
	Function string

	// Route is the normalized template (surrounding slashes trimmed).
	Route string

	// Methods are the allowed HTTP methods, upper-cased. Empty means
	// all methods.
	Methods []string
}

// Table owns the route assignments of one configuration generation. A
// table is populated during host initialization and replaced wholesale
// when the host reloads; it is never migrated between generations.
type Table struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewTable returns an empty route table.
func NewTable() *Table {
	return &Table{entries: make(map[string]Entry)}
}

// DefaultRoute returns the route a function claims when its HTTP
// trigger declares no template: the function's own name.
func DefaultRoute(functionName string) string {
	return functionName
}

// Normalize trims surrounding whitespace and slashes from a route
// template. Comparisons between normalized routes are case-insensitive
// but the stored template keeps its casing.
func Normalize(route string) string {
	return strings.Trim(strings.TrimSpace(route), "/")
}

// Validate checks a candidate route registration against the table and
// inserts it on success. Re-registering the same function replaces its
// previous claim instead of conflicting with it.
func (t *Table) Validate(function, route string, methods []string) error {
	normalized := Normalize(route)

	// The admin prefix is reserved whether the route is exactly it or
	// lexically under it.
	first := normalized
	if i := strings.Index(first, "/"); i >= 0 {
		first = first[:i]
	}
	if strings.EqualFold(first, ReservedPrefix) {
		return hosterrors.NewConfigurationError(function,
			"the specified route conflicts with one or more built in routes")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for name, existing := range t.entries {
		if name == function {
			continue
		}
		if strings.EqualFold(existing.Route, normalized) && methodsIntersect(existing.Methods, methods) {
			return hosterrors.NewRouteConflictError(function, name, normalized)
		}
	}

	t.entries[function] = Entry{
		Function: function,
		Route:    normalized,
		Methods:  normalizeMethods(methods),
	}
	return nil
}

// Lookup returns the entry registered for a function.
func (t *Table) Lookup(function string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.entries[function]
	return entry, ok
}

// Entries returns a snapshot of every registration, sorted by function
// name.
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entry, 0, len(t.entries))
	for _, entry := range t.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Function < out[j].Function })
	return out
}

// Len returns the number of registrations.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// methodsIntersect reports whether two allowed-method sets share a
// member. An empty set means all methods and intersects everything.
func methodsIntersect(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	for _, ma := range a {
		for _, mb := range b {
			if strings.EqualFold(ma, mb) {
				return true
			}
		}
	}
	return false
}

func normalizeMethods(methods []string) []string {
	if len(methods) == 0 {
		return nil
	}
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = strings.ToUpper(m)
	}
	return out
}
