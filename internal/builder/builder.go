// Package builder walks a resolved OpenAPI document and assembles the
// model.Specification, converting every schema it meets through a registry.
package builder

import (
	"fmt"
	"strings"

	"github.com/kolah/specmodel/internal/loader"
	"github.com/kolah/specmodel/internal/model"
	"github.com/kolah/specmodel/internal/schema"
)

var methods = map[string]model.Method{
	"get":     model.MethodGet,
	"post":    model.MethodPost,
	"put":     model.MethodPut,
	"delete":  model.MethodDelete,
	"patch":   model.MethodPatch,
	"head":    model.MethodHead,
	"options": model.MethodOptions,
	"trace":   model.MethodTrace,
}

type builder struct {
	registry *schema.Registry
}

// Build converts a resolved document into a Specification. Paths and
// operations keep document order; keys of a path item that are not HTTP
// methods are not operations.
func Build(root any, reg *schema.Registry) (*model.Specification, error) {
	doc, ok := root.(*loader.Mapping)
	if !ok {
		return nil, fmt.Errorf("document root is %T, not a mapping", root)
	}

	b := &builder{registry: reg}
	spec := &model.Specification{}

	paths := loader.Child(doc, "paths")
	if paths == nil {
		return spec, nil
	}

	for pathStr, rawItem := range paths.FromOldest() {
		item, ok := rawItem.(*loader.Mapping)
		if !ok {
			return nil, fmt.Errorf("path %s: expected a mapping, got %T", pathStr, rawItem)
		}
		endpoints, err := b.buildPath(pathStr, item)
		if err != nil {
			return nil, err
		}
		spec.Endpoints = append(spec.Endpoints, endpoints...)
	}
	return spec, nil
}

func (b *builder) buildPath(pathStr string, item *loader.Mapping) ([]model.Endpoint, error) {
	shared, err := b.buildParameters(item)
	if err != nil {
		return nil, fmt.Errorf("path %s: %w", pathStr, err)
	}

	var endpoints []model.Endpoint
	for key, rawOp := range item.FromOldest() {
		method, ok := methods[strings.ToLower(key)]
		if !ok {
			continue
		}
		op, ok := rawOp.(*loader.Mapping)
		if !ok {
			return nil, fmt.Errorf("%s %s: expected a mapping, got %T", method, pathStr, rawOp)
		}
		endpoint, err := b.buildOperation(method, pathStr, shared, op)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, pathStr, err)
		}
		endpoints = append(endpoints, endpoint)
	}
	return endpoints, nil
}

func (b *builder) buildOperation(method model.Method, pathStr string, shared []model.Parameter, op *loader.Mapping) (model.Endpoint, error) {
	own, err := b.buildParameters(op)
	if err != nil {
		return model.Endpoint{}, err
	}

	endpoint := model.Endpoint{
		Path:        model.Path{Path: pathStr, Parameters: mergeParameters(shared, own)},
		Method:      method,
		OperationID: loader.String(op, "operationId"),
		Summary:     loader.String(op, "summary"),
	}

	if rawBody, ok := op.Get("requestBody"); ok && rawBody != nil {
		body, ok := rawBody.(*loader.Mapping)
		if !ok {
			return model.Endpoint{}, fmt.Errorf("requestBody: expected a mapping, got %T", rawBody)
		}
		content, err := b.buildContent(loader.Child(body, "content"), method, pathStr, "")
		if err != nil {
			return model.Endpoint{}, fmt.Errorf("requestBody: %w", err)
		}
		endpoint.RequestBody = &model.RequestBody{
			Description: loader.String(body, "description"),
			Required:    loader.Bool(body, "required"),
			Content:     content,
		}
	}

	responses := loader.Child(op, "responses")
	if responses == nil {
		return endpoint, nil
	}
	for code, rawResp := range responses.FromOldest() {
		resp, ok := rawResp.(*loader.Mapping)
		if !ok {
			return model.Endpoint{}, fmt.Errorf("response %s: expected a mapping, got %T", code, rawResp)
		}
		response := model.Response{
			StatusCode:  code,
			Description: loader.String(resp, "description"),
		}
		if loader.Has(resp, "content") {
			content, err := b.buildContent(loader.Child(resp, "content"), method, pathStr, code)
			if err != nil {
				return model.Endpoint{}, fmt.Errorf("response %s: %w", code, err)
			}
			response.Content = &content
		}
		endpoint.Responses = append(endpoint.Responses, response)
	}

	return endpoint, nil
}

// buildParameters converts the parameters declared directly on owner.
func (b *builder) buildParameters(owner *loader.Mapping) ([]model.Parameter, error) {
	raw, ok := owner.Get("parameters")
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("parameters: expected a list, got %T", raw)
	}

	params := make([]model.Parameter, 0, len(list))
	for i, rawParam := range list {
		p, ok := rawParam.(*loader.Mapping)
		if !ok {
			return nil, fmt.Errorf("parameter %d: expected a mapping, got %T", i, rawParam)
		}
		param, err := b.buildParameter(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", loader.String(p, "name"), err)
		}
		params = append(params, param)
	}
	return params, nil
}

func (b *builder) buildParameter(p *loader.Mapping) (model.Parameter, error) {
	param := model.Parameter{
		Name:        loader.String(p, "name"),
		Location:    model.ParameterLocation(loader.String(p, "in")),
		Description: loader.String(p, "description"),
		Required:    loader.Bool(p, "required"),
	}
	if !param.Location.Valid() {
		return param, &schema.SchemaError{Keyword: "in", Message: fmt.Sprintf("invalid parameter location %q", param.Location)}
	}

	s := loader.Child(p, "schema")
	if s == nil {
		// Parameters may describe their value through content instead.
		if content := loader.Child(p, "content"); content != nil && content.Len() == 1 {
			for _, mt := range content.FromOldest() {
				s = loader.Child(asMapping(mt), "schema")
			}
		}
	}
	if s == nil {
		return param, &schema.SchemaError{Keyword: "schema", Message: "parameter has no schema"}
	}

	dt, err := b.registry.Convert(s)
	if err != nil {
		return param, err
	}
	param.DataType = dt
	if def, ok := s.Get("default"); ok {
		param.DefaultValue = loader.Plain(def)
	}
	return param, nil
}

// mergeParameters returns the path-level parameters not redeclared by the
// operation, followed by the operation's own. Parameters are identified by
// name and location.
func mergeParameters(shared, own []model.Parameter) []model.Parameter {
	if len(shared) == 0 {
		return own
	}
	type key struct {
		name     string
		location model.ParameterLocation
	}
	overridden := make(map[key]bool, len(own))
	for _, p := range own {
		overridden[key{p.Name, p.Location}] = true
	}

	merged := make([]model.Parameter, 0, len(shared)+len(own))
	for _, p := range shared {
		if !overridden[key{p.Name, p.Location}] {
			merged = append(merged, p)
		}
	}
	return append(merged, own...)
}

func (b *builder) buildContent(content *loader.Mapping, method model.Method, pathStr, statusCode string) (model.Content, error) {
	if content == nil || content.Len() != 1 {
		var mediaTypes []string
		if content != nil {
			for mt := range content.FromOldest() {
				mediaTypes = append(mediaTypes, mt)
			}
		}
		return model.Content{}, &UnsupportedContentError{
			Method:     method,
			Path:       pathStr,
			StatusCode: statusCode,
			MediaTypes: mediaTypes,
		}
	}

	var (
		mediaType string
		media     *loader.Mapping
	)
	for mt, raw := range content.FromOldest() {
		mediaType, media = mt, asMapping(raw)
	}

	s := loader.Child(media, "schema")
	if s == nil {
		return model.Content{}, &schema.SchemaError{Keyword: "schema", Message: fmt.Sprintf("media type %s has no schema", mediaType)}
	}
	dt, err := b.registry.Convert(s)
	if err != nil {
		return model.Content{}, fmt.Errorf("%s: %w", mediaType, err)
	}
	return model.Content{MediaType: mediaType, DataType: dt}, nil
}

func asMapping(v any) *loader.Mapping {
	m, _ := v.(*loader.Mapping)
	return m
}
