package spec

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// BuildOption configures how the ServiceModel is built from an OpenAPI doc.
type BuildOption func(*buildConfig)

type buildConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[HttpMethod]struct{}
	pathRes     []*regexp.Regexp
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		c.includeTags = addTags(c.includeTags, tags)
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		c.excludeTags = addTags(c.excludeTags, tags)
	}
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

// WithMethods keeps only operations using one of the provided HTTP methods.
func WithMethods(methods []HttpMethod) BuildOption {
	return func(c *buildConfig) {
		for _, m := range methods {
			if c.methods == nil {
				c.methods = make(map[HttpMethod]struct{}, len(methods))
			}
			c.methods[HttpMethod(strings.ToLower(string(m)))] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only operations whose path matches at least one of
// the provided regular expressions. An invalid pattern matches nothing.
func WithPathPatterns(patterns []string) BuildOption {
	return func(c *buildConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				re = regexp.MustCompile("a^$")
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// preferredMediaTypes lists request media types in the order a request body
// representation is picked; anything else falls back to the first sorted key.
var preferredMediaTypes = []string{
	"application/json",
	"multipart/form-data",
	"application/x-www-form-urlencoded",
}

// builder converts kin-openapi values into the IM, consulting the document's
// declaration order for properties and server variables.
type builder struct {
	order *declarationOrder
}

// BuildServiceModel converts a loaded document into the Internal Model (IM),
// applying the tag, method and path filters.
func BuildServiceModel(ctx context.Context, d *Document, opts ...BuildOption) (*ServiceModel, error) {
	if d == nil || d.Spec == nil {
		return nil, fmt.Errorf("nil document")
	}
	doc := d.Spec

	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	b := &builder{order: d.order}
	if b.order == nil {
		b.order = indexDeclarationOrder(d.Raw, d.SourceVersion)
	}

	sm := &ServiceModel{}
	if doc.Info != nil {
		sm.Title = safeStr(doc.Info.Title)
		sm.Version = safeStr(doc.Info.Version)
		sm.Description = safeStr(doc.Info.Description)
	}

	for i, s := range doc.Servers {
		if s == nil {
			continue
		}
		sm.Servers = append(sm.Servers, b.server(s, fmt.Sprintf("#/servers/%d", i)))
	}

	if doc.Components != nil {
		names := make([]string, 0, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ref := doc.Components.Schemas[name]
			if ref == nil {
				continue
			}
			s := b.schema(ref, "#/components/schemas/"+escapePointer(name), true)
			s.Name = name
			sm.Schemas = append(sm.Schemas, *s)
		}
	}

	pathKeys := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	for _, p := range pathKeys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		for _, pair := range []struct {
			m HttpMethod
			o *openapi3.Operation
		}{
			{GET, item.Get},
			{POST, item.Post},
			{PUT, item.Put},
			{DELETE, item.Delete},
			{PATCH, item.Patch},
			{HEAD, item.Head},
			{OPTIONS, item.Options},
			{TRACE, item.Trace},
		} {
			if pair.o == nil || !cfg.allowOperation(pair.m, p) {
				continue
			}
			op := b.operation(p, pair.m, item, pair.o)
			if !allowByTags(op.Tags, cfg) {
				continue
			}
			sm.Operations = append(sm.Operations, op)
		}
	}

	sm.Tags = collectSortedTags(sm.Operations)
	return sm, nil
}

func (c *buildConfig) allowOperation(m HttpMethod, path string) bool {
	if len(c.methods) > 0 {
		if _, ok := c.methods[m]; !ok {
			return false
		}
	}
	if len(c.pathRes) == 0 {
		return true
	}
	for _, re := range c.pathRes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func allowByTags(tags []string, cfg *buildConfig) bool {
	if len(cfg.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := cfg.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := cfg.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

func (b *builder) server(s *openapi3.Server, ptr string) Server {
	out := Server{URL: safeStr(s.URL), Description: safeStr(s.Description)}
	names := make([]string, 0, len(s.Variables))
	for name := range s.Variables {
		names = append(names, name)
	}
	for _, name := range b.order.ordered(ptr+"/variables", names) {
		v := s.Variables[name]
		sv := ServerVariable{Name: name}
		if v != nil {
			sv.Default = v.Default
			sv.Description = safeStr(v.Description)
			sv.Enum = append([]string(nil), v.Enum...)
		}
		out.Variables = append(out.Variables, sv)
	}
	return out
}

func (b *builder) operation(path string, m HttpMethod, item *openapi3.PathItem, o *openapi3.Operation) Operation {
	opPtr := "#/paths/" + escapePointer(path) + "/" + string(m)
	op := Operation{
		ID:          string(m) + " " + path,
		Method:      m,
		Path:        path,
		OperationID: safeStr(o.OperationID),
		Summary:     safeStr(o.Summary),
		Description: safeStr(o.Description),
		Deprecated:  o.Deprecated,
		Parameters:  b.mergeParameters(item.Parameters, o.Parameters, "#/paths/"+escapePointer(path), opPtr),
	}
	for _, t := range o.Tags {
		if t = strings.TrimSpace(t); t != "" {
			op.Tags = append(op.Tags, t)
		}
	}

	if o.RequestBody == nil || o.RequestBody.Value == nil {
		return op
	}
	rb := o.RequestBody.Value
	op.RequestBodyRequired = rb.Required
	mime := pickMediaType(rb.Content)
	if mime == "" {
		return op
	}
	op.RequestMediaType = mime

	bodyPtr := opPtr + "/requestBody"
	if o.RequestBody.Ref != "" {
		bodyPtr = o.RequestBody.Ref
	}
	mt := rb.Content[mime]
	if mt == nil || mt.Schema == nil {
		op.RequestBody = &Schema{Type: "object"}
		return op
	}
	op.RequestBody = b.schema(mt.Schema, bodyPtr+"/content/"+escapePointer(mime)+"/schema", true)
	// Swagger 2.0 bodies only know their order at the operation level.
	if mt.Schema.Ref == "" && b.order.members(bodyPtr+"/content/"+escapePointer(mime)+"/schema/properties") == nil {
		if declared := b.order.members(opPtr + "/requestBody"); declared != nil {
			op.RequestBody.Properties = reorderProperties(op.RequestBody.Properties, declared)
		}
	}
	return op
}

// mergeParameters merges path-level and operation-level parameters in
// declaration order; an operation-level parameter replaces the path-level
// one with the same location and name in place.
func (b *builder) mergeParameters(base, own openapi3.Parameters, basePtr, ownPtr string) []Parameter {
	var out []Parameter
	index := map[string]int{}
	add := func(refs openapi3.Parameters, ptr string) {
		for i, pref := range refs {
			pm, ok := b.parameter(pref, fmt.Sprintf("%s/parameters/%d", ptr, i))
			if !ok {
				continue
			}
			key := paramKey(pm.In, pm.Name)
			if i, seen := index[key]; seen && !pm.IsReference() {
				out[i] = pm
				continue
			}
			index[key] = len(out)
			out = append(out, pm)
		}
	}
	add(base, basePtr)
	add(own, ownPtr)
	return out
}

func (b *builder) parameter(pref *openapi3.ParameterRef, ptr string) (Parameter, bool) {
	if pref == nil {
		return Parameter{}, false
	}
	if pref.Value == nil {
		if pref.Ref == "" {
			return Parameter{}, false
		}
		name := pref.Ref[strings.LastIndex(pref.Ref, "/")+1:]
		return Parameter{Name: name, Ref: pref.Ref}, true
	}
	p := pref.Value
	pm := Parameter{
		Name:        safeStr(p.Name),
		In:          safeStr(p.In),
		Description: safeStr(p.Description),
		Required:    p.Required,
	}
	if p.Schema != nil {
		if pref.Ref != "" {
			ptr = pref.Ref
		}
		pm.Schema = b.schema(p.Schema, ptr+"/schema", true)
	}
	return pm, true
}

func pickMediaType(content openapi3.Content) string {
	if len(content) == 0 {
		return ""
	}
	for _, m := range preferredMediaTypes {
		if _, ok := content[m]; ok {
			return m
		}
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}

// schema converts ref. When expand is set and ref points at another schema,
// the target's members are copied in (one level only, so recursive schemas
// terminate); nested references stay as Ref-only placeholders.
func (b *builder) schema(ref *openapi3.SchemaRef, ptr string, expand bool) *Schema {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" {
		s := &Schema{Ref: ref.Ref}
		s.Name = s.RefName()
		if ref.Value == nil {
			return s
		}
		if expand {
			b.fill(s, ref.Value, ref.Ref)
		} else {
			s.Type = safeStr(ref.Value.Type)
			s.Description = safeStr(ref.Value.Description)
		}
		return s
	}
	if ref.Value == nil {
		return &Schema{Type: "object"}
	}
	s := &Schema{}
	b.fill(s, ref.Value, ptr)
	return s
}

func (b *builder) fill(s *Schema, v *openapi3.Schema, ptr string) {
	s.Type = safeStr(v.Type)
	s.Format = safeStr(v.Format)
	s.Description = safeStr(v.Description)
	s.Nullable = v.Nullable
	s.UniqueItems = v.UniqueItems
	s.Required = append([]string(nil), v.Required...)
	if len(v.Enum) > 0 {
		s.Enum = append([]any(nil), v.Enum...)
	}
	s.Items = b.schema(v.Items, ptr+"/items", false)
	for i, alt := range v.OneOf {
		if vs := b.schema(alt, fmt.Sprintf("%s/oneOf/%d", ptr, i), false); vs != nil {
			s.OneOf = append(s.OneOf, vs)
		}
	}
	if ap := v.AdditionalProperties.Schema; ap != nil {
		s.AdditionalProperties = b.schema(ap, ptr+"/additionalProperties", false)
	} else if has := v.AdditionalProperties.Has; has != nil && *has {
		s.AdditionalProperties = &Schema{}
	}
	if len(v.Properties) == 0 {
		return
	}
	names := make([]string, 0, len(v.Properties))
	for name := range v.Properties {
		names = append(names, name)
	}
	for _, name := range b.order.ordered(ptr+"/properties", names) {
		s.Properties = append(s.Properties, Property{
			Name:   name,
			Schema: b.schema(v.Properties[name], ptr+"/properties/"+escapePointer(name), false),
		})
	}
}

func reorderProperties(props []Property, declared []string) []Property {
	byName := make(map[string]Property, len(props))
	names := make([]string, 0, len(props))
	for _, p := range props {
		byName[p.Name] = p
		names = append(names, p.Name)
	}
	o := &declarationOrder{keys: map[string][]string{"": declared}}
	out := make([]Property, 0, len(props))
	for _, n := range o.ordered("", names) {
		out = append(out, byName[n])
	}
	return out
}

func paramKey(in, name string) string { return in + ":" + name }

func safeStr(s string) string { return strings.TrimSpace(s) }

func collectSortedTags(ops []Operation) []string {
	set := make(map[string]struct{})
	for _, op := range ops {
		for _, t := range op.Tags {
			set[t] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
