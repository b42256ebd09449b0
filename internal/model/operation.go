package model

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

type ParameterLocation string

const (
	LocationQuery  ParameterLocation = "query"
	LocationHeader ParameterLocation = "header"
	LocationPath   ParameterLocation = "path"
	LocationCookie ParameterLocation = "cookie"
)

// Valid reports whether l is one of the four OpenAPI parameter locations.
func (l ParameterLocation) Valid() bool {
	switch l {
	case LocationQuery, LocationHeader, LocationPath, LocationCookie:
		return true
	}
	return false
}

type Parameter struct {
	Name        string
	Location    ParameterLocation
	Description string
	Required    bool
	DataType    DataType
	// DefaultValue is the raw default of the parameter schema, nil if absent
	DefaultValue any
}

type Content struct {
	MediaType string
	DataType  DataType
}

type RequestBody struct {
	Description string
	Required    bool
	Content     Content
}

type Response struct {
	StatusCode  string
	Description string
	// Content is nil when the response has no body
	Content *Content
}

type Path struct {
	Path       string
	Parameters []Parameter
}

type Endpoint struct {
	Path        Path
	Method      Method
	OperationID string
	Summary     string
	RequestBody *RequestBody
	Responses   []Response
}
