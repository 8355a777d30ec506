package spec

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const sampleSpec = `openapi: 3.0.0
info:
  title: Sample API
  version: "1.0.0"
  description: Demo
servers:
  - url: https://{region}.example.com/{basePath}
    variables:
      region:
        default: eu
        enum: [eu, us]
      basePath:
        default: v1
paths:
  /pets:
    parameters:
      - in: query
        name: limit
        required: false
        schema:
          type: integer
    get:
      summary: List pets
      description: Returns all pets
      tags: [read, animal]
      parameters:
        - in: query
          name: limit
          required: true
          schema:
            type: integer
        - in: query
          name: cursor
          schema:
            type: string
      responses:
        "200":
          description: ok
    post:
      operationId: createPet
      summary: Create pet
      tags: [write, animal]
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
      responses:
        "201":
          description: created
  /pets/{petId}/photo:
    put:
      operationId: uploadPhoto
      tags: [write]
      parameters:
        - in: path
          name: petId
          required: true
          schema:
            type: string
      requestBody:
        content:
          multipart/form-data:
            schema:
              type: object
              required: [name]
              properties:
                name:
                  type: string
                nickname:
                  type: string
                age:
                  type: integer
      responses:
        "204":
          description: stored
  /admin:
    get:
      summary: Admin only
      tags: [admin]
      responses:
        "200": { description: ok }
components:
  schemas:
    Pet:
      type: object
      required: [name, id]
      properties:
        name:
          type: string
        id:
          type: integer
          format: int64
        tags:
          type: array
          uniqueItems: true
          items:
            type: string
        owner:
          $ref: '#/components/schemas/Owner'
    Owner:
      type: object
      description: Somebody who owns pets
      properties:
        pets:
          type: array
          items:
            $ref: '#/components/schemas/Pet'
        labels:
          type: object
          additionalProperties:
            type: string
`

func loadDoc(t *testing.T, spec string) *Document {
	t.Helper()
	doc, err := ParseDocument(context.Background(), []byte(strings.TrimSpace(spec)), "sample.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return doc
}

func findOperation(t *testing.T, sm *ServiceModel, m HttpMethod, path string) Operation {
	t.Helper()
	for _, op := range sm.Operations {
		if op.Method == m && op.Path == path {
			return op
		}
	}
	t.Fatalf("operation %s %s not found", m, path)
	return Operation{}
}

func propertyNames(s *Schema) []string {
	names := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		names = append(names, p.Name)
	}
	return names
}

func TestBuildServiceModel_Basic(t *testing.T) {
	t.Parallel()
	sm, err := BuildServiceModel(context.Background(), loadDoc(t, sampleSpec))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if sm.Title != "Sample API" {
		t.Errorf("title: got %q", sm.Title)
	}
	if len(sm.Operations) != 4 {
		t.Fatalf("operations: got %d", len(sm.Operations))
	}
	if len(sm.Schemas) != 2 || sm.Schemas[0].Name != "Owner" || sm.Schemas[1].Name != "Pet" {
		t.Fatalf("schemas: expected [Owner Pet], got %+v", sm.Schemas)
	}

	pet := sm.Schemas[1]
	if got := strings.Join(propertyNames(&pet), ","); got != "name,id,tags,owner" {
		t.Errorf("pet properties: expected declaration order, got %s", got)
	}
	if pet.Properties[2].Schema.Kind() != "set" {
		t.Errorf("pet.tags: expected set kind, got %q", pet.Properties[2].Schema.Kind())
	}
	if owner := pet.Properties[3].Schema; owner.Ref == "" || owner.RefName() != "Owner" {
		t.Errorf("pet.owner: expected reference to Owner, got %+v", owner)
	}

	labels := sm.Schemas[0].Properties[1].Schema
	if labels.Kind() != "map" || labels.AdditionalProperties == nil {
		t.Errorf("owner.labels: expected map kind, got %q", labels.Kind())
	}
}

func TestBuildServiceModel_ParametersKeepDeclarationOrder(t *testing.T) {
	t.Parallel()
	sm, err := BuildServiceModel(context.Background(), loadDoc(t, sampleSpec))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	op := findOperation(t, sm, GET, "/pets")
	if len(op.Parameters) != 2 {
		t.Fatalf("get /pets: expected 2 parameters, got %d", len(op.Parameters))
	}
	if op.Parameters[0].Name != "limit" || op.Parameters[1].Name != "cursor" {
		t.Fatalf("get /pets: unexpected order %+v", op.Parameters)
	}
	if !op.Parameters[0].Required {
		t.Fatalf("get /pets: expected limit to be required after override")
	}
}

func TestBuildServiceModel_RequestBodies(t *testing.T) {
	t.Parallel()
	sm, err := BuildServiceModel(context.Background(), loadDoc(t, sampleSpec))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	post := findOperation(t, sm, POST, "/pets")
	if post.RequestBody == nil || !post.RequestBodyRequired {
		t.Fatalf("post /pets: expected required request body")
	}
	if post.RequestMediaType != "application/json" {
		t.Fatalf("post /pets: expected JSON media type, got %q", post.RequestMediaType)
	}
	if got := strings.Join(propertyNames(post.RequestBody), ","); got != "name,id,tags,owner" {
		t.Fatalf("post /pets: expected referenced properties expanded, got %s", got)
	}

	put := findOperation(t, sm, PUT, "/pets/{petId}/photo")
	if put.RequestMediaType != "multipart/form-data" {
		t.Fatalf("put photo: expected form data, got %q", put.RequestMediaType)
	}
	if got := strings.Join(propertyNames(put.RequestBody), ","); got != "name,nickname,age" {
		t.Fatalf("put photo: expected declaration order, got %s", got)
	}
	if !put.RequestBody.IsRequired("name") || put.RequestBody.IsRequired("nickname") {
		t.Fatalf("put photo: unexpected required set %v", put.RequestBody.Required)
	}
}

func TestBuildServiceModel_ServerVariables(t *testing.T) {
	t.Parallel()
	sm, err := BuildServiceModel(context.Background(), loadDoc(t, sampleSpec))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(sm.Servers) != 1 {
		t.Fatalf("servers: got %d", len(sm.Servers))
	}
	vars := sm.Servers[0].Variables
	if len(vars) != 2 || vars[0].Name != "region" || vars[1].Name != "basePath" {
		t.Fatalf("server variables: expected [region basePath], got %+v", vars)
	}
	if vars[0].Default != "eu" || len(vars[0].Enum) != 2 {
		t.Fatalf("server variables: region not captured %+v", vars[0])
	}
}

func TestBuildServiceModel_TagFiltering(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, sampleSpec)

	sm, err := BuildServiceModel(context.Background(), doc, WithIncludeTags([]string{"read"}))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(sm.Operations) != 1 {
		t.Fatalf("include tags: expected 1 operation, got %d", len(sm.Operations))
	}
	if sm.Operations[0].Method != GET || sm.Operations[0].Path != "/pets" {
		t.Fatalf("include tags: wrong operation %s", sm.Operations[0].ID)
	}
	if len(sm.Tags) == 0 || sm.Tags[0] != "animal" {
		t.Fatalf("tags: expected to contain 'animal', got %v", sm.Tags)
	}

	sm2, err := BuildServiceModel(context.Background(), doc, WithExcludeTags([]string{"admin"}))
	if err != nil {
		t.Fatalf("build2: %v", err)
	}
	for _, op := range sm2.Operations {
		if op.Path == "/admin" {
			t.Fatalf("exclude tags: /admin should be filtered out")
		}
	}
}

func TestBuildServiceModel_MethodAndPathFilters(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, sampleSpec)

	sm, err := BuildServiceModel(context.Background(), doc, WithMethods([]HttpMethod{"POST"}), WithPathPatterns([]string{"^/pets$"}))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(sm.Operations) != 1 {
		t.Fatalf("filters: expected 1 operation, got %d", len(sm.Operations))
	}
	if sm.Operations[0].Method != POST || sm.Operations[0].Path != "/pets" {
		t.Fatalf("filters: wrong operation %s", sm.Operations[0].ID)
	}
}

func TestBuildServiceModel_V2FormDataOrder(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, `swagger: "2.0"
info: { title: t, version: "1.0.0" }
consumes: [multipart/form-data]
paths:
  /upload:
    post:
      operationId: upload
      parameters:
      - in: formData
        name: zeta
        type: string
        required: true
      - in: formData
        name: alpha
        type: string
      responses: { '200': { description: ok } }
`)
	sm, err := BuildServiceModel(context.Background(), doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	op := findOperation(t, sm, POST, "/upload")
	if op.RequestBody == nil {
		t.Fatalf("upload: expected request body")
	}
	if got := strings.Join(propertyNames(op.RequestBody), ","); got != "zeta,alpha" {
		t.Fatalf("upload: expected formData declaration order, got %s", got)
	}
}

func TestBuildServiceModel_NilDocument(t *testing.T) {
	t.Parallel()
	if _, err := BuildServiceModel(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil document")
	}
}

func TestBuildServiceModel_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sm, err := BuildServiceModel(ctx, loadDoc(t, sampleSpec))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if sm != nil {
		t.Fatalf("expected no model after cancellation")
	}
}

func TestBuildServiceModel_OneOfVariants(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, `openapi: 3.0.0
info: { title: t, version: "1.0.0" }
paths: {}
components:
  schemas:
    Cat:
      type: object
      properties:
        purrs: { type: boolean }
    Animal:
      oneOf:
        - $ref: '#/components/schemas/Cat'
        - type: string
`)
	sm, err := BuildServiceModel(context.Background(), doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var animal *Schema
	for i := range sm.Schemas {
		if sm.Schemas[i].Name == "Animal" {
			animal = &sm.Schemas[i]
		}
	}
	if animal == nil {
		t.Fatalf("Animal schema missing")
	}
	if len(animal.OneOf) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(animal.OneOf))
	}
	if animal.OneOf[0].RefName() != "Cat" || animal.OneOf[1].Type != "string" {
		t.Fatalf("unexpected variants: %+v %+v", animal.OneOf[0], animal.OneOf[1])
	}
}
