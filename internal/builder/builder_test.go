package builder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kolah/specmodel/internal/loader"
	"github.com/kolah/specmodel/internal/model"
	"github.com/kolah/specmodel/internal/registry"
	"github.com/kolah/specmodel/internal/schema"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, doc string) (*model.Specification, error) {
	t.Helper()
	root, err := loader.Parse([]byte(doc))
	require.NoError(t, err)
	return Build(root, schema.NewRegistry(nil))
}

func TestBuild(t *testing.T) {
	spec, err := build(t, `
openapi: 3.0.3
paths:
  /users/{id}:
    summary: a single user
    parameters:
      - name: id
        in: path
        required: true
        schema:
          type: integer
          format: int64
      - name: trace
        in: header
        schema:
          type: string
    get:
      operationId: getUser
      summary: Fetch a user
      parameters:
        - name: trace
          in: header
          description: overrides the path-level header
          schema:
            type: string
            default: none
        - name: fields
          in: query
          schema:
            type: array
            items:
              type: string
      responses:
        "200":
          description: the user
          content:
            application/json:
              schema:
                type: object
                properties:
                  id:
                    type: integer
                required: [id]
        "404":
          description: not found
    delete:
      responses:
        "204":
          description: deleted
  /users:
    post:
      operationId: createUser
      requestBody:
        description: new user
        required: true
        content:
          application/json:
            schema:
              type: object
      responses:
        "201":
          description: created
`)
	require.NoError(t, err)

	want := &model.Specification{Endpoints: []model.Endpoint{
		{
			Path: model.Path{Path: "/users/{id}", Parameters: []model.Parameter{
				{Name: "id", Location: model.LocationPath, Required: true, DataType: model.Integer{Format: "int64"}},
				{Name: "trace", Location: model.LocationHeader, Description: "overrides the path-level header", DataType: model.String{Default: ptr("none")}, DefaultValue: "none"},
				{Name: "fields", Location: model.LocationQuery, DataType: model.Array{ItemType: model.String{}}},
			}},
			Method:      model.MethodGet,
			OperationID: "getUser",
			Summary:     "Fetch a user",
			Responses: []model.Response{
				{
					StatusCode:  "200",
					Description: "the user",
					Content: &model.Content{
						MediaType: "application/json",
						DataType: model.Object{Properties: []model.ObjectProperty{
							{Name: "id", DataType: model.Integer{}, IsRequired: true},
						}},
					},
				},
				{StatusCode: "404", Description: "not found"},
			},
		},
		{
			Path: model.Path{Path: "/users/{id}", Parameters: []model.Parameter{
				{Name: "id", Location: model.LocationPath, Required: true, DataType: model.Integer{Format: "int64"}},
				{Name: "trace", Location: model.LocationHeader, DataType: model.String{}},
			}},
			Method:    model.MethodDelete,
			Responses: []model.Response{{StatusCode: "204", Description: "deleted"}},
		},
		{
			Path:        model.Path{Path: "/users"},
			Method:      model.MethodPost,
			OperationID: "createUser",
			RequestBody: &model.RequestBody{
				Description: "new user",
				Required:    true,
				Content:     model.Content{MediaType: "application/json", DataType: model.Object{AdditionalProperties: true}},
			},
			Responses: []model.Response{{StatusCode: "201", Description: "created"}},
		},
	}}

	require.Empty(t, cmp.Diff(want, spec))
}

func ptr[T any](v T) *T { return &v }

func TestBuildUnsupportedContent(t *testing.T) {
	tests := []struct {
		name           string
		operation      string
		wantStatusCode string
		wantMediaTypes []string
	}{
		{
			name: "request body with two media types",
			operation: `
      requestBody:
        content:
          application/json:
            schema: {type: string}
          application/xml:
            schema: {type: string}
      responses: {}
`,
			wantMediaTypes: []string{"application/json", "application/xml"},
		},
		{
			name: "request body without content",
			operation: `
      requestBody:
        description: nothing
      responses: {}
`,
		},
		{
			name: "response with two media types",
			operation: `
      responses:
        "200":
          description: ok
          content:
            text/plain:
              schema: {type: string}
            text/html:
              schema: {type: string}
`,
			wantStatusCode: "200",
			wantMediaTypes: []string{"text/plain", "text/html"},
		},
		{
			name: "response with empty content",
			operation: `
      responses:
        default:
          description: error
          content: {}
`,
			wantStatusCode: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := build(t, "paths:\n  /things:\n    post:\n"+tt.operation)
			require.ErrorIs(t, err, ErrUnsupportedContent)

			var unsupported *UnsupportedContentError
			require.ErrorAs(t, err, &unsupported)
			require.Equal(t, model.MethodPost, unsupported.Method)
			require.Equal(t, "/things", unsupported.Path)
			require.Equal(t, tt.wantStatusCode, unsupported.StatusCode)
			require.Equal(t, tt.wantMediaTypes, unsupported.MediaTypes)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		wantErr     error
		errContains string
	}{
		{
			name:        "parameter without schema",
			doc:         "paths:\n  /a:\n    get:\n      parameters:\n        - name: q\n          in: query\n      responses: {}\n",
			wantErr:     schema.ErrSchema,
			errContains: "GET /a: parameter q",
		},
		{
			name:        "invalid parameter location",
			doc:         "paths:\n  /a:\n    get:\n      parameters:\n        - name: q\n          in: body\n          schema: {type: string}\n      responses: {}\n",
			wantErr:     schema.ErrSchema,
			errContains: "invalid parameter location",
		},
		{
			name:        "media type without schema",
			doc:         "paths:\n  /a:\n    get:\n      responses:\n        '200':\n          description: ok\n          content:\n            application/json: {}\n",
			wantErr:     schema.ErrSchema,
			errContains: "GET /a: response 200",
		},
		{
			name:        "unconvertible schema",
			doc:         "paths:\n  /a:\n    put:\n      requestBody:\n        content:\n          application/json:\n            schema: {type: file}\n      responses: {}\n",
			wantErr:     registry.ErrNoConverterFound,
			errContains: "PUT /a: requestBody: application/json",
		},
		{
			name:        "path-level parameter error",
			doc:         "paths:\n  /a:\n    parameters:\n      - name: id\n        in: path\n    get:\n      responses: {}\n",
			wantErr:     schema.ErrSchema,
			errContains: "path /a: parameter id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := build(t, tt.doc)
			require.ErrorIs(t, err, tt.wantErr)
			require.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestBuildWithoutPathsOrResponses(t *testing.T) {
	spec, err := build(t, "openapi: 3.1.0\ninfo:\n  title: empty\n")
	require.NoError(t, err)
	require.Empty(t, spec.Endpoints)

	spec, err = build(t, "paths:\n  /ping:\n    get:\n      operationId: ping\n")
	require.NoError(t, err)
	require.Len(t, spec.Endpoints, 1)
	require.Empty(t, spec.Endpoints[0].Responses)

	_, err = Build([]any{"not", "a", "document"}, schema.NewRegistry(nil))
	require.Error(t, err)
}

func TestBuildParameterContent(t *testing.T) {
	spec, err := build(t, `
paths:
  /search:
    get:
      parameters:
        - name: filter
          in: query
          content:
            application/json:
              schema:
                type: object
      responses: {}
`)
	require.NoError(t, err)
	require.Equal(t, model.KindObject, spec.Endpoints[0].Path.Parameters[0].DataType.Kind())
}
