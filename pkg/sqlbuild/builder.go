// Package sqlbuild assembles parameterized SELECT statements from a fixed
// prefix, a set of optional predicates, and a fixed suffix. It is the
// mechanism behind every filterable list query in the registry.
package sqlbuild

import (
	"reflect"
	"strings"
)

// Fragment is a piece of trusted SQL text. Fragments are never escaped:
// the safety of the whole mechanism rests on call sites passing only
// compile-time constants here, never request-derived strings. Bound values
// are the only runtime-variable part of a built statement.
type Fragment string

// Builder composes a statement as prefix [WHERE (c1) AND (c2) ...] suffix.
// Parameter order is prefix params, condition params in the order added,
// then suffix params.
type Builder struct {
	prefix       Fragment
	prefixParams []any
	conditions   []Fragment
	params       []any
	suffix       Fragment
	suffixParams []any
}

// New creates a Builder with the given prefix fragment and its parameters.
func New(prefix Fragment, params ...any) *Builder {
	return &Builder{prefix: prefix, prefixParams: params}
}

// Suffix sets the trailing fragment (typically ORDER BY and pagination)
// and its parameters.
func (b *Builder) Suffix(suffix Fragment, params ...any) *Builder {
	b.suffix = suffix
	b.suffixParams = params
	return b
}

// Condition adds an optional predicate. The predicate is skipped entirely
// when every bound value is nil (or an untyped nil pointer), so callers can
// pass optional filters straight through. A fragment with an internal OR
// must bind the same number of values as it has placeholders.
func (b *Builder) Condition(fragment Fragment, values ...any) *Builder {
	for _, v := range values {
		if isNil(v) {
			return b
		}
	}
	b.conditions = append(b.conditions, fragment)
	b.params = append(b.params, values...)
	return b
}

// Build returns the statement text and the ordered parameter list. Each
// present condition is wrapped in parentheses so internal ORs cannot leak
// precedence; WHERE is emitted only when at least one condition is present.
func (b *Builder) Build() (string, []any) {
	var sb strings.Builder
	sb.WriteString(string(b.prefix))

	for i, c := range b.conditions {
		if i == 0 {
			sb.WriteString(" WHERE (")
		} else {
			sb.WriteString(" AND (")
		}
		sb.WriteString(string(c))
		sb.WriteString(")")
	}

	if b.suffix != "" {
		sb.WriteString(" ")
		sb.WriteString(string(b.suffix))
	}

	params := make([]any, 0, len(b.prefixParams)+len(b.params)+len(b.suffixParams))
	params = append(params, b.prefixParams...)
	params = append(params, b.params...)
	params = append(params, b.suffixParams...)
	return sb.String(), params
}

// isNil reports whether v is nil, including typed nil pointers coming from
// optional filter fields.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
