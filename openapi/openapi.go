// Package openapi describes the JSON API as an OpenAPI 3 document built
// alongside route registration.
package openapi

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

type Document struct {
	mu      sync.RWMutex
	spec    *openapi3.T
	schemas *schemaRegistry
}

func New(title, version string) *Document {
	return &Document{
		spec: &openapi3.T{
			OpenAPI: "3.0.3",
			Info: &openapi3.Info{
				Title:   title,
				Version: version,
			},
			Paths:      openapi3.NewPaths(),
			Components: &openapi3.Components{Schemas: make(openapi3.Schemas)},
		},
		schemas: newSchemaRegistry(),
	}
}

func (d *Document) Description(desc string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spec.Info.Description = desc
	return d
}

func (d *Document) Server(url string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spec.Servers = append(d.spec.Servers, &openapi3.Server{URL: url})
	return d
}

func (d *Document) Tag(name, description string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spec.Tags = append(d.spec.Tags, &openapi3.Tag{Name: name, Description: description})
	return d
}

// CookieAuth declares a session cookie security scheme that routes can require.
func (d *Document) CookieAuth(scheme, cookieName string) *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.spec.Components.SecuritySchemes == nil {
		d.spec.Components.SecuritySchemes = make(openapi3.SecuritySchemes)
	}
	d.spec.Components.SecuritySchemes[scheme] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type: "apiKey",
			In:   "cookie",
			Name: cookieName,
		},
	}
	return d
}

func (d *Document) Spec() *openapi3.T {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.spec
}

func (d *Document) JSON() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return json.MarshalIndent(d.spec, "", "  ")
}

func (d *Document) YAML() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	intermediate, err := d.spec.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(intermediate)
}

func (d *Document) JSONHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := d.JSON()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render API document")
		}
		return c.JSONBlob(http.StatusOK, data)
	}
}

func (d *Document) YAMLHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := d.YAML()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render API document")
		}
		return c.Blob(http.StatusOK, "application/yaml", data)
	}
}

// schemaRef converts an example value to a schema, registering named structs
// as components.
func (d *Document) schemaRef(example any) *openapi3.SchemaRef {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.schemas.ref(d.spec.Components.Schemas, example)
}

func (d *Document) addOperation(method, path string, op *openapi3.Operation) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.spec.AddOperation(echoPathToOpenAPI(path), method, op)
}
