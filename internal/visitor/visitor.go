// Package visitor assembles the generation context for a target by walking
// the service model and calling the target's naming, typing, request and
// server methods.
package visitor

import (
	"errors"
	"fmt"

	"github.com/mark3labs/swagger2client/internal/spec"
	"github.com/mark3labs/swagger2client/internal/target"
	"github.com/rs/zerolog"
)

type Option func(*config)

type config struct {
	log zerolog.Logger
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *config) { c.log = log }
}

// Build returns the generation context of sm for t. Operations whose
// request cannot be synthesized are left out; their errors are joined into
// the returned error while the context for everything else is still
// returned.
func Build(t target.Target, sm *spec.ServiceModel, opts ...Option) (*target.GenerateArguments, error) {
	cfg := &config{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(cfg)
	}
	if t == nil || sm == nil {
		return nil, fmt.Errorf("visitor: nil target or service model")
	}
	log := cfg.log.With().Str("target", t.Name()).Logger()

	args := &target.GenerateArguments{
		Title:       sm.Title,
		Version:     sm.Version,
		Description: sm.Description,
		Target:      t.Name(),
		Servers:     t.Servers(sm.Servers),
		Operations:  []target.OperationArgs{},
	}
	c := newCollector(t, log)
	for i := range sm.Schemas {
		c.used[componentName(t, &sm.Schemas[i])] = true
	}
	for i := range sm.Schemas {
		s := &sm.Schemas[i]
		c.add(componentName(t, s), s.Name, s)
	}

	var errs []error
	for i := range sm.Operations {
		op := &sm.Operations[i]
		stmts, err := t.RequestStatements(op)
		if err != nil {
			log.Warn().Err(err).Str("operation", op.ID).Msg("skipping operation")
			errs = append(errs, err)
			continue
		}
		if op.RequestBody != nil && op.RequestBody.Ref == "" && op.RequestBody.HasProperties() {
			op = c.body(op)
		}
		args.Operations = append(args.Operations, operationArgs(t, op, stmts))
	}
	args.Schemas = c.schemas
	log.Debug().
		Int("operations", len(args.Operations)).
		Int("schemas", len(args.Schemas)).
		Int("skipped", len(errs)).
		Msg("built generation context")
	return args, errors.Join(errs...)
}

func operationArgs(t target.Target, op *spec.Operation, stmts string) target.OperationArgs {
	doc := op.Description
	if doc == "" {
		doc = op.Summary
	}
	return target.OperationArgs{
		Name:              t.OperationID(op),
		Raw:               target.RawOperationID(op),
		Method:            t.HTTPMethod(string(op.Method)),
		Path:              t.PathURL(op.Path),
		Summary:           op.Summary,
		Doc:               t.ModelDoc(&spec.Schema{Description: doc}),
		Params:            t.OperationParams(op),
		ParamsType:        target.ParamsTypeName(t, op),
		Arguments:         target.Arguments(t, op),
		RequestStatements: stmts,
		Deprecated:        op.Deprecated,
		Tags:              op.Tags,
	}
}

// collector accumulates the schemas of a generation context. Inline
// objects, string enums and oneOf unions found inside a schema become named
// schemas of their own; names are kept unique across the context.
type collector struct {
	t       target.Target
	log     zerolog.Logger
	schemas []target.SchemaArgs
	used    map[string]bool
}

func newCollector(t target.Target, log zerolog.Logger) *collector {
	return &collector{t: t, log: log, schemas: []target.SchemaArgs{}, used: map[string]bool{}}
}

// nameFor picks the naming method for the kind of schema s renders as.
func nameFor(t target.Target, s *spec.Schema) func(string) string {
	switch {
	case isStringEnum(s):
		return t.EnumName
	case len(s.OneOf) == 0 && s.HasProperties():
		return t.InterfaceName
	}
	return t.TypeName
}

func componentName(t target.Target, s *spec.Schema) string { return nameFor(t, s)(s.Name) }

// claim reserves the name that name(raw) gives, numbering raw until the
// name is free. It returns the name and the raw name it came from.
func (c *collector) claim(raw string, name func(string) string) (string, string) {
	n, r := name(raw), raw
	for i := 2; c.used[n]; i++ {
		r = fmt.Sprintf("%s %d", raw, i)
		n = name(r)
	}
	if r != raw {
		c.log.Warn().Str("name", name(raw)).Str("renamed", n).Msg("synthesized type name already taken")
	}
	c.used[n] = true
	return n, r
}

// body synthesizes the type of op's inline request body and returns op with
// the body named after it, so argument types refer to the claimed name.
func (c *collector) body(op *spec.Operation) *spec.Operation {
	name, raw := c.claim(target.RawOperationID(op)+" body", c.t.TypeName)
	b := *op.RequestBody
	b.Name = raw
	named := *op
	named.RequestBody = &b
	c.add(name, raw, &b)
	return &named
}

// synthesize adds a schema for the inline s under a fresh name derived from
// raw and returns that name.
func (c *collector) synthesize(raw string, s *spec.Schema) string {
	n, r := c.claim(raw, nameFor(c.t, s))
	c.add(n, r, s)
	return n
}

// add converts s, named name in the target and raw in the document. The
// schema is placed ahead of any nested schema it synthesizes.
func (c *collector) add(name, raw string, s *spec.Schema) {
	idx := len(c.schemas)
	c.schemas = append(c.schemas, target.SchemaArgs{})
	sa := target.SchemaArgs{
		Name: name,
		Raw:  raw,
		Doc:  c.t.ModelDoc(s),
	}
	switch {
	case isStringEnum(s):
		sa.Kind = target.KindEnum
		for _, v := range s.Enum {
			str, _ := v.(string)
			sa.Variants = append(sa.Variants, target.VariantArgs{Name: c.t.EnumMemberName(str), Raw: str})
		}
	case len(s.OneOf) > 0:
		sa.Kind = target.KindUnion
		for i, alt := range s.OneOf {
			vr := fmt.Sprintf("variant %d", i)
			sa.Variants = append(sa.Variants, target.VariantArgs{
				Name: c.t.UnionVariantName(vr),
				Raw:  vr,
				Type: c.orObject(c.typeOf(raw+" "+vr, alt)),
			})
		}
	case s.HasProperties():
		sa.Kind = target.KindObject
		for _, p := range s.Properties {
			sa.Fields = append(sa.Fields, c.field(raw, s, p))
		}
	default:
		sa.Kind = target.KindAlias
		sa.Type = c.containerOf(raw, s)
	}
	c.schemas[idx] = sa
}

func (c *collector) field(ownerRaw string, owner *spec.Schema, p spec.Property) target.FieldArgs {
	required := owner.IsRequired(p.Name)
	typ := c.orObject(c.typeOf(ownerRaw+" "+p.Name, p.Schema))
	if !required || (p.Schema != nil && p.Schema.Nullable) {
		typ = c.t.Optional(typ)
	}
	return target.FieldArgs{
		Name:     c.t.VariableName(p.Name),
		Raw:      p.Name,
		Type:     typ,
		Doc:      c.t.FieldDoc(p.Schema),
		Required: required,
	}
}

// typeOf returns the type expression of s, synthesizing a schema named
// after raw when s is an inline object, string enum or union.
func (c *collector) typeOf(raw string, s *spec.Schema) string {
	if s == nil || s.Ref != "" {
		return target.TypeExpr(c.t, s)
	}
	if isNamed(s) {
		return c.synthesize(raw, s)
	}
	return c.containerOf(raw, s)
}

// containerOf renders s with inline array items or map values that need a
// schema of their own replaced by a reference to it.
func (c *collector) containerOf(raw string, s *spec.Schema) string {
	if s == nil {
		return target.TypeExpr(c.t, s)
	}
	typed := *s
	switch {
	case s.Items != nil && s.Items.Ref == "" && isNamed(s.Items):
		typed.Items = refTo(c.synthesize(raw+" item", s.Items))
	case s.AdditionalProperties != nil && s.AdditionalProperties.Ref == "" && isNamed(s.AdditionalProperties):
		typed.AdditionalProperties = refTo(c.synthesize(raw+" value", s.AdditionalProperties))
	}
	return target.TypeExpr(c.t, &typed)
}

// isNamed reports whether an inline s gets a synthesized schema.
func isNamed(s *spec.Schema) bool {
	return isStringEnum(s) || s.HasProperties() || len(s.OneOf) > 0
}

// refTo refers to a synthesized schema by its target name. Target names
// come back unchanged from TypeName, so TypeExpr renders name as is.
func refTo(name string) *spec.Schema {
	return &spec.Schema{Ref: "#/components/schemas/" + name}
}

// orObject stands in the target's free-form object type for a type it
// cannot express.
func (c *collector) orObject(typ string) string {
	if typ == target.Unresolved {
		return c.t.Types().Resolve(target.KeyObject, "")
	}
	return typ
}

// isStringEnum reports whether s enumerates non-empty string values only.
func isStringEnum(s *spec.Schema) bool {
	if s == nil || len(s.Enum) == 0 || (s.Type != "" && s.Type != "string") {
		return false
	}
	for _, v := range s.Enum {
		if str, ok := v.(string); !ok || str == "" {
			return false
		}
	}
	return true
}
