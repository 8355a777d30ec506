package target

import "github.com/mark3labs/swagger2client/internal/spec"

// TypeKey classifies a schema for type lookup.
type TypeKey string

const (
	KeyString  TypeKey = "string"
	KeyInteger TypeKey = "integer"
	KeyNumber  TypeKey = "number"
	KeyBoolean TypeKey = "boolean"
	KeyObject  TypeKey = "object"
	KeyNull    TypeKey = "null"
	KeyMap     TypeKey = "map"
	KeySet     TypeKey = "set"
	KeyArray   TypeKey = "array"
)

// Keys is the closed set of type keys, in a stable order.
var Keys = []TypeKey{KeyString, KeyInteger, KeyNumber, KeyBoolean, KeyObject, KeyNull, KeyMap, KeySet, KeyArray}

// Unresolved is returned for keys a table has no syntax for. Callers render
// the value unqualified.
const Unresolved = ""

// Known reports whether k belongs to the closed key set.
func (k TypeKey) Known() bool {
	for _, key := range Keys {
		if key == k {
			return true
		}
	}
	return false
}

// KeyOf maps a schema to its type key; schemas without a type map to "".
func KeyOf(s *spec.Schema) TypeKey {
	return TypeKey(s.Kind())
}

type TypeEntry struct {
	Default string
	// Formats overrides Default for specific schema formats.
	Formats map[string]string
}

// TypeTable maps type keys to target syntax. The zero value resolves nothing.
type TypeTable map[TypeKey]TypeEntry

// Resolve returns the syntax for key and format, or Unresolved.
func (t TypeTable) Resolve(key TypeKey, format string) string {
	if !key.Known() {
		return Unresolved
	}
	e, ok := t[key]
	if !ok {
		return Unresolved
	}
	if v, ok := e.Formats[format]; ok && format != "" {
		return v
	}
	return e.Default
}

// TypeExpr renders the full type of s for t: references become the cased
// schema name and containers are parameterised with their element types
// when the table has syntax for them.
func TypeExpr(t Target, s *spec.Schema) string {
	if s != nil && s.Ref != "" {
		if name := s.RefName(); name != "" {
			return t.TypeName(name)
		}
	}
	table := t.Types()
	key := KeyOf(s)
	base := table.Resolve(key, formatOf(s))
	if base == Unresolved {
		return Unresolved
	}
	switch key {
	case KeySet, KeyArray:
		item := elemExpr(t, s.Items)
		if item == Unresolved {
			return Unresolved
		}
		if key == KeySet && !t.IsHashable(item) {
			base = table.Resolve(KeyArray, "")
		}
		return base + "<" + item + ">"
	case KeyMap:
		k := table.Resolve(KeyString, "")
		v := elemExpr(t, s.AdditionalProperties)
		if k == Unresolved || v == Unresolved {
			return Unresolved
		}
		return base + "<" + k + ", " + v + ">"
	}
	return base
}

// elemExpr is TypeExpr for container members, where a missing or untyped
// schema means "any value".
func elemExpr(t Target, s *spec.Schema) string {
	if s == nil || (s.Ref == "" && KeyOf(s) == "") {
		return t.Types().Resolve(KeyObject, "")
	}
	return TypeExpr(t, s)
}

func formatOf(s *spec.Schema) string {
	if s == nil {
		return ""
	}
	return s.Format
}
