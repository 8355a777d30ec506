// Package target defines the contract every output-language backend
// implements, together with the helpers backends share: identifier casing,
// the type table, request-synthesis building blocks, server templating and
// template rendering.
package target

import (
	"errors"
	"fmt"

	"github.com/mark3labs/swagger2client/internal/spec"
)

// Target is one output language. Implementations hold no mutable state after
// construction, so every method may be called concurrently.
type Target interface {
	// Name is the canonical language name, e.g. "rust".
	Name() string

	TypeName(raw string) string
	VariableName(raw string) string
	EnumName(raw string) string
	EnumMemberName(raw string) string
	InterfaceName(raw string) string
	UnionVariantName(raw string) string

	Types() TypeTable
	Optional(typ string) string
	IsHashable(typ string) bool

	ModelDoc(s *spec.Schema) string
	FieldDoc(s *spec.Schema) string

	OperationID(op *spec.Operation) string
	HTTPMethod(method string) string

	PathURL(path string) string
	URL(template string) string
	Servers(servers []spec.Server) []Server

	// RequestStatements renders the statements that attach query parameters
	// and the request body. A form-data body without declared properties
	// yields a *ConfigError.
	RequestStatements(op *spec.Operation) (string, error)
	// OperationParams renders the parameter list of the generated call.
	OperationParams(op *spec.Operation) string

	// Generate renders the assembled context into output file name -> content.
	Generate(args *GenerateArguments) (map[string]string, error)
}

// ErrConfiguration marks malformed input that prevents an operation from
// being generated.
var ErrConfiguration = errors.New("configuration error")

// ConfigError reports a malformed operation. It matches ErrConfiguration
// under errors.Is.
type ConfigError struct {
	Operation string
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Operation, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// Server is a rendered server entry.
type Server struct {
	URL          string        `json:"url"`
	Description  string        `json:"description"`
	Variables    []string      `json:"variables"`
	Replacements []Replacement `json:"replacements"`
}

// Replacement pairs a literal URL placeholder with the cased variable that
// substitutes it.
type Replacement struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Default string `json:"default,omitempty"`
}

// GenerateArguments is the read-only context handed to a target's template.
type GenerateArguments struct {
	Title       string          `json:"title"`
	Version     string          `json:"version"`
	Description string          `json:"description,omitempty"`
	Target      string          `json:"target"`
	Servers     []Server        `json:"servers"`
	Operations  []OperationArgs `json:"operations"`
	Schemas     []SchemaArgs    `json:"schemas"`
}

type OperationArgs struct {
	Name              string         `json:"name"`
	Raw               string         `json:"raw"`
	Method            string         `json:"method"`
	Path              string         `json:"path"`
	Summary           string         `json:"summary,omitempty"`
	Doc               string         `json:"doc,omitempty"`
	Params            string         `json:"params"`
	ParamsType        string         `json:"paramsType"`
	Arguments         []ArgumentArgs `json:"arguments"`
	RequestStatements string         `json:"requestStatements"`
	Deprecated        bool           `json:"deprecated,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
}

// ArgumentArgs is one call argument: a resolved parameter or the body.
type ArgumentArgs struct {
	Name     string `json:"name"`
	Raw      string `json:"raw"`
	In       string `json:"in"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Schema kinds rendered by the templates.
const (
	KindObject = "object"
	KindEnum   = "enum"
	KindAlias  = "alias"
	// KindUnion is a oneOf; each variant wraps one alternative's type.
	KindUnion = "union"
)

type SchemaArgs struct {
	Name     string        `json:"name"`
	Raw      string        `json:"raw"`
	Doc      string        `json:"doc,omitempty"`
	Kind     string        `json:"kind"`
	Type     string        `json:"type,omitempty"`
	Fields   []FieldArgs   `json:"fields,omitempty"`
	Variants []VariantArgs `json:"variants,omitempty"`
}

type FieldArgs struct {
	Name     string `json:"name"`
	Raw      string `json:"raw"`
	Type     string `json:"type"`
	Doc      string `json:"doc,omitempty"`
	Required bool   `json:"required"`
}

type VariantArgs struct {
	Name string `json:"name"`
	Raw  string `json:"raw"`
	Type string `json:"type,omitempty"`
}

// RawOperationID returns the name an operation is identified by before
// casing: the declared operationId, else the summary, else method and path.
func RawOperationID(op *spec.Operation) string {
	switch {
	case op == nil:
		return ""
	case op.OperationID != "":
		return op.OperationID
	case op.Summary != "":
		return op.Summary
	}
	return string(op.Method) + " " + op.Path
}

// ParamsTypeName names the aggregate that groups an operation's arguments.
func ParamsTypeName(t Target, op *spec.Operation) string {
	return t.TypeName(RawOperationID(op) + " params")
}
