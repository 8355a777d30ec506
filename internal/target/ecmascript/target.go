// Package ecmascript renders an ES module client that uses fetch.
package ecmascript

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/mark3labs/swagger2client/internal/spec"
	"github.com/mark3labs/swagger2client/internal/target"
	"github.com/rs/zerolog"
)

// Name is the canonical language name.
const Name = "ecmascript"

// OutputFile is the single file Generate produces.
const OutputFile = "Generated.js"

//go:embed templates/api.js.tmpl reserved-words.txt
var assets embed.FS

// stmtSep joins request statements at the indentation of a method body.
const stmtSep = "\n    "

type Target struct {
	tmpl     *template.Template
	reserved target.ReservedWords
	log      zerolog.Logger
}

var _ target.Target = (*Target)(nil)

// New loads the embedded template and reserved-word list.
func New(log zerolog.Logger) (*Target, error) {
	tmpl, err := target.ParseTemplate(assets, "templates/api.js.tmpl")
	if err != nil {
		return nil, fmt.Errorf("ecmascript: %w", err)
	}
	reserved, err := target.LoadReservedWords(assets, "reserved-words.txt")
	if err != nil {
		return nil, fmt.Errorf("ecmascript: %w", err)
	}
	return &Target{tmpl: tmpl, reserved: reserved, log: log.With().Str("target", Name).Logger()}, nil
}

func (t *Target) Name() string { return Name }

func (t *Target) TypeName(raw string) string {
	return t.reserved.Escape(target.LegalStart(target.PascalCase(target.SubstituteIllegal(raw))))
}

func (t *Target) VariableName(raw string) string {
	return t.reserved.Escape(target.LegalStart(target.CamelCase(target.SubstituteIllegal(raw))))
}

func (t *Target) EnumName(raw string) string         { return t.TypeName(raw) }
func (t *Target) EnumMemberName(raw string) string   { return t.TypeName(raw) }
func (t *Target) InterfaceName(raw string) string    { return t.TypeName(raw) }
func (t *Target) UnionVariantName(raw string) string { return t.TypeName(raw) }

// Types is empty: the generated module is untyped.
func (t *Target) Types() target.TypeTable { return target.TypeTable{} }

func (t *Target) Optional(typ string) string { return typ }

func (t *Target) IsHashable(string) bool { return false }

func (t *Target) ModelDoc(s *spec.Schema) string { return lineComment(s) }
func (t *Target) FieldDoc(s *spec.Schema) string { return lineComment(s) }

func lineComment(s *spec.Schema) string {
	if s == nil || s.Description == "" {
		return ""
	}
	return "// " + strings.ReplaceAll(s.Description, "\n", "\n// ")
}

func (t *Target) OperationID(op *spec.Operation) string {
	return t.VariableName(target.RawOperationID(op))
}

func (t *Target) HTTPMethod(method string) string { return strings.ToUpper(method) }

func (t *Target) interpolate(name string) string { return "${" + t.VariableName(name) + "}" }

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
		stmts = append(stmts, fmt.Sprintf("if (%s != null) __url.searchParams.set(%q, %s)", v, p.Name, v))
	}
	if op.RequestBody == nil {
		return strings.Join(stmts, stmtSep), nil
	}
	if !target.IsFormData(op.RequestMediaType) {
		stmts = append(stmts,
			fmt.Sprintf("__reqBody.headers = { \"Content-Type\": %q }", op.RequestMediaType),
			"__reqBody.body = JSON.stringify(body)",
		)
		return strings.Join(stmts, stmtSep), nil
	}

	fields, err := target.FormFields(op)
	if err != nil {
		return "", err
	}
	stmts = append(stmts, "const __formData = new FormData()")
	for _, f := range fields {
		v := t.VariableName(f.Name)
		appendStmt := fmt.Sprintf("__formData.append(%q, body.%s)", f.Name, v)
		if f.Required {
			stmts = append(stmts, appendStmt)
			continue
		}
		stmts = append(stmts, fmt.Sprintf("if (body.%s != null) {%s  %s%s}", v, stmtSep, appendStmt, stmtSep))
	}
	stmts = append(stmts, "__reqBody.body = __formData")
	return strings.Join(stmts, stmtSep), nil
}

func (t *Target) OperationParams(op *spec.Operation) string {
	args := target.CallArguments(op, t.VariableName)
	switch len(args) {
	case 0:
		return "()"
	case 1:
		return "(" + args[0] + ")"
	}
	return "({ " + strings.Join(args, ", ") + " })"
}

func (t *Target) Generate(args *target.GenerateArguments) (map[string]string, error) {
	out, err := target.Render(t.tmpl, args)
	if err != nil {
		return nil, fmt.Errorf("ecmascript: %w", err)
	}
	t.log.Debug().Int("operations", len(args.Operations)).Int("bytes", len(out)).Msg("rendered module")
	return map[string]string{OutputFile: out}, nil
}
