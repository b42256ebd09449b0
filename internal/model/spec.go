package model

// Specification is the root of the model: every endpoint in document order.
type Specification struct {
	Endpoints []Endpoint
}

// Endpoint returns the endpoint for method and path template.
func (s *Specification) Endpoint(method Method, path string) (Endpoint, bool) {
	for _, e := range s.Endpoints {
		if e.Method == method && e.Path.Path == path {
			return e, true
		}
	}
	return Endpoint{}, false
}

// DataTypes returns every distinct named data type reachable from the
// endpoints, in the order they are first encountered. A named type that is
// referenced from several places is returned once.
func (s *Specification) DataTypes() []DataType {
	var (
		result []DataType
		seen   = make(map[uint64][]DataType)
	)

	collect := func(dt DataType) bool {
		if dt.Base().Name == "" {
			return true
		}
		h := Hash(dt)
		for _, other := range seen[h] {
			if Equal(dt, other) {
				// Members of an already collected type were collected with it.
				return false
			}
		}
		seen[h] = append(seen[h], dt)
		result = append(result, dt)
		return true
	}

	for _, e := range s.Endpoints {
		for _, p := range e.Path.Parameters {
			Walk(p.DataType, collect)
		}
		if e.RequestBody != nil {
			Walk(e.RequestBody.Content.DataType, collect)
		}
		for _, r := range e.Responses {
			if r.Content != nil {
				Walk(r.Content.DataType, collect)
			}
		}
	}
	return result
}
