package logging

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ScopeFieldPrefix is prepended to every scope-sourced field name when a
// log event is emitted, so scope properties never collide with event
// fields of the same name.
const ScopeFieldPrefix = "scope_"

type scopeContextKey struct{}

// scopeNode is one frame of the active scope stack. Nodes are immutable
// once created; pushing a scope allocates a new node pointing at its
// parent, so sibling contexts never observe each other's scopes.
type scopeNode struct {
	parent *scopeNode
	props  map[string]interface{}
}

// WithScope pushes a property mapping onto the scope stack carried by
// ctx and returns the derived context. The scope stays active for
// exactly the operations that receive the derived context; dropping the
// context pops the scope. Empty mappings are not pushed.
func WithScope(ctx context.Context, props map[string]interface{}) context.Context {
	if len(props) == 0 {
		return ctx
	}
	copied := make(map[string]interface{}, len(props))
	for k, v := range props {
		copied[k] = v
	}
	parent, _ := ctx.Value(scopeContextKey{}).(*scopeNode)
	return context.WithValue(ctx, scopeContextKey{}, &scopeNode{parent: parent, props: copied})
}

// WithScopeTemplate pushes a single-property scope described by a
// "{name}" template and its positional value. A template without braces
// is used verbatim as the property name.
func WithScopeTemplate(ctx context.Context, template string, value interface{}) context.Context {
	name := template
	if open := strings.Index(template, "{"); open >= 0 {
		if close := strings.Index(template[open:], "}"); close > 1 {
			name = template[open+1 : open+close]
		}
	}
	return WithScope(ctx, map[string]interface{}{name: value})
}

// ScopeProperties returns the union of every scope mapping active on
// ctx, with inner scopes winning key collisions. It returns nil when no
// scope is active.
func ScopeProperties(ctx context.Context) map[string]interface{} {
	node, _ := ctx.Value(scopeContextKey{}).(*scopeNode)
	if node == nil {
		return nil
	}
	var stack []*scopeNode
	for n := node; n != nil; n = n.parent {
		stack = append(stack, n)
	}
	merged := make(map[string]interface{})
	for i := len(stack) - 1; i >= 0; i-- {
		for k, v := range stack[i].props {
			merged[k] = v
		}
	}
	return merged
}

// scopeFields flattens the active scope union into zap fields, sorted
// by name so emitted events are deterministic.
func scopeFields(ctx context.Context) []zap.Field {
	props := ScopeProperties(ctx)
	if len(props) == 0 {
		return nil
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	fields := make([]zap.Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, zap.Any(ScopeFieldPrefix+name, props[name]))
	}
	return fields
}
