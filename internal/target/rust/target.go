// Package rust renders an async reqwest client with serde models.
package rust

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/mark3labs/swagger2client/internal/spec"
	"github.com/mark3labs/swagger2client/internal/target"
	"github.com/rs/zerolog"
)

const Name = "rust"

const (
	SourceFile = "generated.rs"
	// ContextFile holds the JSON dump of the generation context.
	ContextFile = "generated.json"
)

//go:embed templates/api.rs.tmpl reserved-words.txt
var assets embed.FS

// Models sit in a module at 4 spaces, fields and method bodies at 8.
const (
	modelIndent = 4
	fieldIndent = 8
	stmtSep     = "\n        "
)

var types = target.TypeTable{
	target.KeyString:  {Default: "String", Formats: map[string]string{"binary": "Vec<u8>", "byte": "Vec<u8>"}},
	target.KeyInteger: {Default: "i64", Formats: map[string]string{"int32": "i32"}},
	target.KeyNumber:  {Default: "f64", Formats: map[string]string{"float": "f32"}},
	target.KeyBoolean: {Default: "bool"},
	target.KeyObject:  {Default: "serde_json::Value"},
	target.KeyNull:    {Default: "()"},
	target.KeyMap:     {Default: "std::collections::HashMap"},
	target.KeySet:     {Default: "std::collections::HashSet"},
	target.KeyArray:   {Default: "Vec"},
}

type Target struct {
	tmpl     *template.Template
	reserved target.ReservedWords
	log      zerolog.Logger
}

var _ target.Target = (*Target)(nil)

// New loads the embedded template and reserved-word list.
func New(log zerolog.Logger) (*Target, error) {
	tmpl, err := target.ParseTemplate(assets, "templates/api.rs.tmpl")
	if err != nil {
		return nil, fmt.Errorf("rust: %w", err)
	}
	reserved, err := target.LoadReservedWords(assets, "reserved-words.txt")
	if err != nil {
		return nil, fmt.Errorf("rust: %w", err)
	}
	return &Target{tmpl: tmpl, reserved: reserved, log: log.With().Str("target", Name).Logger()}, nil
}

func (t *Target) Name() string { return Name }

func (t *Target) TypeName(raw string) string {
	if raw == "" {
		t.log.Warn().Msg("empty name passed to TypeName")
		return ""
	}
	return t.reserved.Escape(target.LegalStart(target.PascalCase(target.SubstituteIllegal(raw))))
}

func (t *Target) VariableName(raw string) string {
	return t.reserved.Escape(target.LegalStart(target.SnakeCase(target.SubstituteIllegal(raw))))
}

func (t *Target) EnumName(raw string) string         { return t.TypeName(raw) }
func (t *Target) EnumMemberName(raw string) string   { return t.TypeName(raw) }
func (t *Target) InterfaceName(raw string) string    { return t.TypeName(raw) }
func (t *Target) UnionVariantName(raw string) string { return t.TypeName(raw) }

func (t *Target) Types() target.TypeTable { return types }

func (t *Target) Optional(typ string) string {
	if typ == target.Unresolved || strings.HasPrefix(typ, "Option<") {
		return typ
	}
	return "Option<" + typ + ">"
}

// hashable lists the type names that implement Eq and Hash. Generated
// structs only derive PartialEq, and floats, serde_json::Value and the std
// collections never implement Hash, so anything else falls back to Vec.
var hashable = map[string]bool{
	"String": true, "Vec": true, "Option": true, "u8": true,
	"i32": true, "i64": true, "bool": true, "()": true,
}

func (t *Target) IsHashable(typ string) bool {
	if typ == target.Unresolved {
		return false
	}
	for _, name := range strings.FieldsFunc(typ, func(r rune) bool { return r == '<' || r == '>' || r == ',' || r == ' ' }) {
		if !hashable[name] {
			return false
		}
	}
	return true
}

func (t *Target) ModelDoc(s *spec.Schema) string { return docComment(modelIndent, s) }
func (t *Target) FieldDoc(s *spec.Schema) string { return docComment(fieldIndent, s) }

func docComment(indent int, s *spec.Schema) string {
	if s == nil || s.Description == "" {
		return ""
	}
	pad := strings.Repeat(" ", indent)
	lines := strings.Split(strings.TrimSpace(s.Description), "\n")
	return "/// " + strings.Join(lines, "\n"+pad+"/// ")
}

func (t *Target) OperationID(op *spec.Operation) string {
	return t.VariableName(target.RawOperationID(op))
}

func (t *Target) HTTPMethod(method string) string { return method }

// interpolate renders a placeholder as a captured format! argument.
func (t *Target) interpolate(name string) string { return "{" + t.VariableName(name) + "}" }

func (t *Target) PathURL(path string) string {
	return target.RewritePlaceholders(target.StripLeadingSlash(path), t.interpolate)
}

func (t *Target) URL(tmpl string) string {
	return target.WithTrailingSlash(target.RewritePlaceholders(tmpl, t.interpolate))
}

func (t *Target) Servers(servers []spec.Server) []target.Server {
	return target.BuildServers(servers, t.URL, t.VariableName)
}

func (t *Target) RequestStatements(op *spec.Operation) (string, error) {
	var stmts []string
	for _, p := range target.QueryParameters(op) {
		v := t.VariableName(p.Name)
		stmts = append(stmts, fmt.Sprintf("if let Some(%s) = &%s { __req = __req.query(&[(%q, %s)]); }", v, v, p.Name, v))
	}
	if op.RequestBody == nil {
		return strings.Join(stmts, stmtSep), nil
	}
	if !target.IsFormData(op.RequestMediaType) {
		stmts = append(stmts,
			fmt.Sprintf("__req = __req.header(\"Content-Type\", %q);", op.RequestMediaType),
			"__req = __req.body(serde_json::to_string(&body)?);",
		)
		return strings.Join(stmts, stmtSep), nil
	}

	fields, err := target.FormFields(op)
	if err != nil {
		return "", err
	}
	stmts = append(stmts, "let mut __form = reqwest::multipart::Form::new();")
	for _, f := range fields {
		v := t.VariableName(f.Name)
		if f.Required {
			stmts = append(stmts, fmt.Sprintf("__form = __form.text(%q, body.%s.to_string());", f.Name, v))
			continue
		}
		stmts = append(stmts, fmt.Sprintf("if let Some(v) = &body.%s { __form = __form.text(%q, v.to_string()); }", v, f.Name))
	}
	stmts = append(stmts, "__req = __req.multipart(__form);")
	return strings.Join(stmts, stmtSep), nil
}

// OperationParams renders "()", a single typed argument, or a destructured
// parameter struct named after the operation.
func (t *Target) OperationParams(op *spec.Operation) string {
	args := target.Arguments(t, op)
	switch len(args) {
	case 0:
		return "()"
	case 1:
		return "(" + args[0].Name + ": " + args[0].Type + ")"
	}
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name
	}
	agg := target.ParamsTypeName(t, op)
	return "(" + agg + " { " + strings.Join(names, ", ") + " }: " + agg + ")"
}

func (t *Target) Generate(args *target.GenerateArguments) (map[string]string, error) {
	src, err := target.Render(t.tmpl, args)
	if err != nil {
		return nil, fmt.Errorf("rust: %w", err)
	}
	dump, err := json.MarshalIndent(args, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("rust: marshal context: %w", err)
	}
	t.log.Debug().Int("operations", len(args.Operations)).Int("schemas", len(args.Schemas)).Msg("rendered crate module")
	return map[string]string{
		SourceFile:  src,
		ContextFile: string(dump) + "\n",
	}, nil
}
