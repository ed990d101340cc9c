package openapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Operation documents one route. Path parameters written as :name are picked
// up from the path.
type Operation struct {
	doc    *Document
	method string
	path   string
	op     *openapi3.Operation
}

func (d *Document) Route(method, path string) *Operation {
	o := &Operation{
		doc:    d,
		method: strings.ToUpper(method),
		path:   path,
		op:     &openapi3.Operation{Responses: openapi3.NewResponses()},
	}
	for _, part := range strings.Split(path, "/") {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			o.param(name, "path").Required = true
		}
	}
	return o
}

func (o *Operation) Summary(summary string) *Operation {
	o.op.Summary = summary
	return o
}

func (o *Operation) Tags(tags ...string) *Operation {
	o.op.Tags = append(o.op.Tags, tags...)
	return o
}

func (o *Operation) PathParam(name, description string) *Operation {
	p := o.param(name, "path")
	p.Description = description
	p.Required = true
	return o
}

func (o *Operation) QueryParam(name, description string) *Operation {
	o.param(name, "query").Description = description
	return o
}

func (o *Operation) param(name, in string) *openapi3.Parameter {
	for _, ref := range o.op.Parameters {
		if ref.Value != nil && ref.Value.Name == name && ref.Value.In == in {
			return ref.Value
		}
	}

	p := &openapi3.Parameter{
		Name:   name,
		In:     in,
		Schema: openapi3.NewStringSchema().NewRef(),
	}
	o.op.Parameters = append(o.op.Parameters, &openapi3.ParameterRef{Value: p})
	return p
}

// Body documents a JSON request body shaped like example. Form posts with the
// same field names are accepted too.
func (o *Operation) Body(example any) *Operation {
	schema := o.doc.schemaRef(example)
	o.op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithContent(openapi3.Content{
				echoJSON: openapi3.NewMediaType().WithSchemaRef(schema),
				echoForm: openapi3.NewMediaType().WithSchemaRef(schema),
			}),
	}
	return o
}

// Response documents a status. A nil example documents a response without a
// body.
func (o *Operation) Response(status int, example any, description string) *Operation {
	resp := openapi3.NewResponse().WithDescription(description)
	if example != nil {
		resp.Content = openapi3.NewContentWithJSONSchemaRef(o.doc.schemaRef(example))
	}
	o.op.Responses.Set(strconv.Itoa(status), &openapi3.ResponseRef{Value: resp})
	return o
}

// Error documents an error status with the standard {"message": ...} body.
func (o *Operation) Error(status int, description string) *Operation {
	return o.Response(status, ErrorBody{}, description)
}

// RequiresAuth marks the route as needing the named cookie scheme.
func (o *Operation) RequiresAuth(scheme string) *Operation {
	o.op.Security = openapi3.NewSecurityRequirements().With(openapi3.NewSecurityRequirement().Authenticate(scheme))
	return o.Error(http.StatusUnauthorized, "Not signed in")
}

func (o *Operation) Add() {
	o.doc.addOperation(o.method, o.path, o.op)
}

// ErrorBody is what echo writes for an *echo.HTTPError.
type ErrorBody struct {
	Message string `json:"message"`
}

const (
	echoJSON = "application/json"
	echoForm = "application/x-www-form-urlencoded"
)

func echoPathToOpenAPI(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			parts[i] = "{" + name + "}"
		}
	}
	return strings.Join(parts, "/")
}
