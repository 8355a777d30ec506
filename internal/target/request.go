package target

import (
	"strings"

	"github.com/mark3labs/swagger2client/internal/spec"
)

// ResolvedParameters drops reference parameters, which the targets cannot
// render.
func ResolvedParameters(op *spec.Operation) []spec.Parameter {
	if op == nil {
		return nil
	}
	out := make([]spec.Parameter, 0, len(op.Parameters))
	for _, p := range op.Parameters {
		if !p.IsReference() {
			out = append(out, p)
		}
	}
	return out
}

// QueryParameters returns the resolved query parameters in declaration order.
func QueryParameters(op *spec.Operation) []spec.Parameter {
	var out []spec.Parameter
	for _, p := range ResolvedParameters(op) {
		if p.In == spec.InQuery {
			out = append(out, p)
		}
	}
	return out
}

// IsFormData reports whether a media type denotes multipart form data.
func IsFormData(mediaType string) bool {
	mt, _, _ := strings.Cut(mediaType, ";")
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(mt)), "form-data")
}

// FormField is one member of a form-data body.
type FormField struct {
	Name     string
	Required bool
}

// FormFields lists the properties of op's form-data body in declaration
// order. A body without properties is a *ConfigError.
func FormFields(op *spec.Operation) ([]FormField, error) {
	body := op.RequestBody
	if !body.HasProperties() {
		return nil, &ConfigError{
			Operation: op.ID,
			Reason:    "form-data request body declares no properties",
		}
	}
	fields := make([]FormField, 0, len(body.Properties))
	for _, p := range body.Properties {
		fields = append(fields, FormField{Name: p.Name, Required: body.IsRequired(p.Name)})
	}
	return fields, nil
}

// BodyArgument is the name of the call argument carrying the request body.
const BodyArgument = "body"

// CallArguments returns one name per resolved parameter, cased by variable,
// followed by BodyArgument when op has a request body.
func CallArguments(op *spec.Operation, variable func(string) string) []string {
	params := ResolvedParameters(op)
	out := make([]string, 0, len(params)+1)
	for _, p := range params {
		out = append(out, variable(p.Name))
	}
	if op != nil && op.RequestBody != nil {
		out = append(out, BodyArgument)
	}
	return out
}

// BodyTypeName names the type synthesized for an inline request body. A
// body schema that already carries a name keeps it.
func BodyTypeName(t Target, op *spec.Operation) string {
	if op != nil && op.RequestBody != nil && op.RequestBody.Name != "" {
		return t.TypeName(op.RequestBody.Name)
	}
	return t.TypeName(RawOperationID(op) + " body")
}

// Arguments returns the typed call arguments of op for t, in the order of
// CallArguments. Query parameters are always optional since the request
// statements omit absent values.
func Arguments(t Target, op *spec.Operation) []ArgumentArgs {
	params := ResolvedParameters(op)
	out := make([]ArgumentArgs, 0, len(params)+1)
	for _, p := range params {
		typ := TypeExpr(t, p.Schema)
		if typ == Unresolved {
			typ = t.Types().Resolve(KeyObject, "")
		}
		if p.In == spec.InQuery || !p.Required {
			typ = t.Optional(typ)
		}
		out = append(out, ArgumentArgs{
			Name:     t.VariableName(p.Name),
			Raw:      p.Name,
			In:       p.In,
			Type:     typ,
			Required: p.Required,
		})
	}
	if op == nil || op.RequestBody == nil {
		return out
	}
	body := op.RequestBody
	var typ string
	switch {
	case body.Ref != "":
		typ = TypeExpr(t, body)
	case body.HasProperties():
		typ = BodyTypeName(t, op)
	default:
		typ = TypeExpr(t, body)
	}
	if typ == Unresolved {
		typ = t.Types().Resolve(KeyObject, "")
	}
	return append(out, ArgumentArgs{
		Name:     BodyArgument,
		Raw:      BodyArgument,
		In:       "body",
		Type:     typ,
		Required: true,
	})
}
