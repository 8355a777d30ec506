package spec

// Internal Model (IM) definitions consumed by the visitor and the targets.
// Values are built once by BuildServiceModel and treated as read-only afterwards.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

// Parameter locations.
const (
	InQuery  = "query"
	InPath   = "path"
	InHeader = "header"
	InCookie = "cookie"
)

type ServiceModel struct {
	Title       string
	Version     string
	Description string
	Servers     []Server
	Tags        []string
	Operations  []Operation
	Schemas     []Schema // sorted by name
}

type Server struct {
	URL         string
	Description string
	Variables   []ServerVariable // declaration order
}

type ServerVariable struct {
	Name        string
	Default     string
	Description string
	Enum        []string
}

type Operation struct {
	ID          string // method+path
	Method      HttpMethod
	Path        string
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	Parameters  []Parameter
	// RequestBody is the schema of the preferred request media type, nil when
	// the operation takes no body.
	RequestBody         *Schema
	RequestMediaType    string
	RequestBodyRequired bool
}

type Parameter struct {
	Name        string
	In          string // path|query|header|cookie
	Description string
	Required    bool
	Schema      *Schema
	// Ref is set only when the parameter is a reference that could not be
	// resolved to a concrete definition.
	Ref string
}

// IsReference reports whether p is an unresolved reference parameter.
func (p Parameter) IsReference() bool { return p.Ref != "" }

type Schema struct {
	Name                 string
	Type                 string
	Format               string
	Description          string
	Ref                  string // "#/components/schemas/Pet" when this is a reference
	Properties           []Property
	Required             []string
	Items                *Schema
	AdditionalProperties *Schema
	Enum                 []any
	OneOf                []*Schema
	Nullable             bool
	UniqueItems          bool
}

// Property is a named schema member; Schema.Properties keeps declaration order.
type Property struct {
	Name   string
	Schema *Schema
}

// IsRequired reports whether the named property is listed as required.
func (s *Schema) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

func (s *Schema) HasProperties() bool { return s != nil && len(s.Properties) > 0 }

// RefName returns the last segment of Ref, e.g. "Pet" for "#/components/schemas/Pet".
func (s *Schema) RefName() string {
	if s == nil || s.Ref == "" {
		return ""
	}
	for i := len(s.Ref) - 1; i >= 0; i-- {
		if s.Ref[i] == '/' {
			return s.Ref[i+1:]
		}
	}
	return s.Ref
}

// Kind classifies the schema into the container vocabulary used by the
// targets' type tables: "null", "array", "set", "map", or the primitive type.
func (s *Schema) Kind() string {
	if s == nil {
		return "null"
	}
	switch s.Type {
	case "null":
		return "null"
	case "array":
		if s.UniqueItems {
			return "set"
		}
		return "array"
	case "object", "":
		if s.AdditionalProperties != nil && len(s.Properties) == 0 {
			return "map"
		}
		if s.Type == "" && s.Items != nil {
			return "array"
		}
		if s.Type == "" && len(s.Properties) == 0 {
			return ""
		}
		return "object"
	}
	return s.Type
}
