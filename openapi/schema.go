package openapi

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

var timeType = reflect.TypeOf(time.Time{})

// schemaRegistry names each Go struct type once. Two types with the same name
// from different packages get numbered suffixes.
type schemaRegistry struct {
	names map[reflect.Type]string
	taken map[string]bool
}

func newSchemaRegistry() *schemaRegistry {
	return &schemaRegistry{
		names: make(map[reflect.Type]string),
		taken: make(map[string]bool),
	}
}

func (r *schemaRegistry) ref(components openapi3.Schemas, example any) *openapi3.SchemaRef {
	if example == nil {
		return openapi3.NewObjectSchema().NewRef()
	}
	return r.schemaFor(components, reflect.TypeOf(example))
}

func (r *schemaRegistry) schemaFor(components openapi3.Schemas, t reflect.Type) *openapi3.SchemaRef {
	switch t.Kind() {
	case reflect.Pointer:
		inner := r.schemaFor(components, t.Elem())
		if inner.Ref != "" {
			schema := openapi3.NewSchema()
			schema.AllOf = openapi3.SchemaRefs{inner}
			schema.Nullable = true
			return schema.NewRef()
		}
		inner.Value.Nullable = true
		return inner
	case reflect.String:
		return openapi3.NewStringSchema().NewRef()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return openapi3.NewIntegerSchema().NewRef()
	case reflect.Float32, reflect.Float64:
		return openapi3.NewFloat64Schema().NewRef()
	case reflect.Bool:
		return openapi3.NewBoolSchema().NewRef()
	case reflect.Slice, reflect.Array:
		schema := openapi3.NewArraySchema()
		schema.Items = r.schemaFor(components, t.Elem())
		return schema.NewRef()
	case reflect.Map:
		schema := openapi3.NewObjectSchema()
		schema.AdditionalProperties = openapi3.AdditionalProperties{Schema: r.schemaFor(components, t.Elem())}
		return schema.NewRef()
	case reflect.Struct:
		if t == timeType {
			return openapi3.NewDateTimeSchema().NewRef()
		}
		return r.structRef(components, t)
	default:
		return openapi3.NewObjectSchema().NewRef()
	}
}

func (r *schemaRegistry) structRef(components openapi3.Schemas, t reflect.Type) *openapi3.SchemaRef {
	if t.Name() == "" {
		return r.buildStruct(components, t).NewRef()
	}

	if name, ok := r.names[t]; ok {
		return openapi3.NewSchemaRef("#/components/schemas/"+name, components[name].Value)
	}

	name := t.Name()
	for i := 2; r.taken[name]; i++ {
		name = t.Name() + strconv.Itoa(i)
	}
	// Registered before building so self-references resolve to the same schema.
	r.names[t] = name
	r.taken[name] = true
	schema := openapi3.NewObjectSchema()
	components[name] = schema.NewRef()

	*schema = *r.buildStruct(components, t)
	return openapi3.NewSchemaRef("#/components/schemas/"+name, schema)
}

func (r *schemaRegistry) buildStruct(components openapi3.Schemas, t reflect.Type) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Properties = make(openapi3.Schemas)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		// Fields of embedded structs are promoted even when the struct type
		// itself is unexported.
		if field.Anonymous && name == "" {
			embedded := field.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				inner := r.buildStruct(components, embedded)
				for prop, ref := range inner.Properties {
					schema.Properties[prop] = ref
				}
				schema.Required = append(schema.Required, inner.Required...)
				continue
			}
		}

		if !field.IsExported() {
			continue
		}

		if name == "" {
			name = field.Name
		}

		schema.Properties[name] = r.schemaFor(components, field.Type)
		if !strings.Contains(opts, "omitempty") {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema
}
