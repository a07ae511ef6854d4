package annotations

import (
	"go.jacobcolvin.com/oagen/node"
)

var refRename = map[string]string{"ref": "$ref"}

var schemaProperties = []string{
	"ref", "title", "description", "type", "format", "required", "properties",
	"items", "enum", "default", "example", "examples", "nullable", "deprecated",
	"readOnly", "writeOnly", "minimum", "maximum", "exclusiveMinimum",
	"exclusiveMaximum", "multipleOf", "minLength", "maxLength", "pattern",
	"minItems", "maxItems", "uniqueItems", "minProperties", "maxProperties",
	"allOf", "oneOf", "anyOf", "not", "additionalProperties", "discriminator",
	"xml", "externalDocs", "const",
}

var schemaNested = map[string]node.Nest{
	Property:              {Property: "properties", Key: "property"},
	Items:                 {Property: "items", Single: true},
	AdditionalProperties:  {Property: "additionalProperties", Single: true},
	Discriminator:         {Property: "discriminator", Single: true},
	XML:                   {Property: "xml", Single: true},
	ExternalDocumentation: {Property: "externalDocs", Single: true},
}

var contentNested = map[string]node.Nest{
	MediaType:   {Property: "content", Key: "mediaType"},
	JSONContent: {Property: "content", Fixed: "application/json", Wrap: "schema"},
	XMLContent:  {Property: "content", Fixed: "application/xml", Wrap: "schema"},
}

var operationProperties = []string{
	"path", "tags", "summary", "description", "externalDocs", "operationId",
	"parameters", "requestBody", "responses", "callbacks", "deprecated",
	"security", "servers",
}

// Specs returns fresh specs for every built-in kind.
func Specs() []*node.KindSpec {
	specs := []*node.KindSpec{
		{
			Name:            OpenAPI,
			DefaultProperty: "openapi",
			Properties:      []string{"openapi", "info", "servers", "paths", "components", "security", "tags", "externalDocs"},
			Fixed:           map[string]any{"openapi": "3.0.0"},
			Nested: map[string]node.Nest{
				Info:                  {Property: "info", Single: true},
				Server:                {Property: "servers"},
				PathItem:              {Property: "paths", Key: "path"},
				Components:            {Property: "components", Single: true},
				Tag:                   {Property: "tags"},
				ExternalDocumentation: {Property: "externalDocs", Single: true},
			},
		},
		{
			Name:            Info,
			DefaultProperty: "title",
			Properties:      []string{"title", "description", "termsOfService", "contact", "license", "version"},
			Nested: map[string]node.Nest{
				Contact: {Property: "contact", Single: true},
				License: {Property: "license", Single: true},
			},
		},
		{Name: Contact, DefaultProperty: "name", Properties: []string{"name", "url", "email"}},
		{Name: License, DefaultProperty: "name", Properties: []string{"name", "identifier", "url"}},
		{
			Name:            Server,
			DefaultProperty: "url",
			Properties:      []string{"url", "description", "variables"},
			Key:             []string{"url"},
			Nested: map[string]node.Nest{
				ServerVariable: {Property: "variables", Key: "serverVariable"},
			},
		},
		{
			Name:            ServerVariable,
			DefaultProperty: "serverVariable",
			Properties:      []string{"serverVariable", "enum", "default", "description"},
			Hidden:          []string{"serverVariable"},
			Key:             []string{"serverVariable"},
		},
		{
			Name:            Tag,
			DefaultProperty: "name",
			Properties:      []string{"name", "description", "externalDocs"},
			Key:             []string{"name"},
			Nested: map[string]node.Nest{
				ExternalDocumentation: {Property: "externalDocs", Single: true},
			},
		},
		{Name: ExternalDocumentation, DefaultProperty: "url", Properties: []string{"description", "url"}},
		pathItemSpec(),
		{
			Name:            RequestBody,
			DefaultProperty: "request",
			Properties:      []string{"ref", "request", "description", "content", "required"},
			Hidden:          []string{"request"},
			Rename:          refRename,
			Key:             []string{"request"},
			Nested:          contentNested,
		},
		{
			Name:            Response,
			DefaultProperty: "response",
			Properties:      []string{"ref", "response", "description", "headers", "content", "links"},
			Hidden:          []string{"response"},
			Rename:          refRename,
			Key:             []string{"response"},
			Nested: merge(contentNested, map[string]node.Nest{
				Header: {Property: "headers", Key: "header"},
				Link:   {Property: "links", Key: "link"},
			}),
		},
		{
			Name:            MediaType,
			DefaultProperty: "mediaType",
			Properties:      []string{"mediaType", "schema", "example", "examples", "encoding"},
			Hidden:          []string{"mediaType"},
			Key:             []string{"mediaType"},
			Nested: map[string]node.Nest{
				Schema:   {Property: "schema", Single: true},
				Examples: {Property: "examples", Key: "example"},
			},
		},
		schemaSpec(Schema, "schema"),
		schemaSpec(Property, "property"),
		schemaSpec(Items, ""),
		schemaSpec(AdditionalProperties, ""),
		schemaSpec(JSONContent, ""),
		schemaSpec(XMLContent, ""),
		{
			Name:            Discriminator,
			DefaultProperty: "propertyName",
			Properties:      []string{"propertyName", "mapping"},
		},
		{
			Name:            XML,
			DefaultProperty: "name",
			Properties:      []string{"name", "namespace", "prefix", "attribute", "wrapped"},
		},
		componentsSpec(),
		{
			Name:            Examples,
			DefaultProperty: "example",
			Properties:      []string{"ref", "example", "summary", "description", "value", "externalValue"},
			Hidden:          []string{"example"},
			Rename:          refRename,
			Key:             []string{"example"},
		},
		{
			Name:            Header,
			DefaultProperty: "header",
			Properties:      []string{"ref", "header", "description", "required", "deprecated", "allowEmptyValue", "schema"},
			Hidden:          []string{"header"},
			Rename:          refRename,
			Key:             []string{"header"},
			Nested: map[string]node.Nest{
				Schema: {Property: "schema", Single: true},
			},
		},
		{
			Name:            Link,
			DefaultProperty: "link",
			Properties:      []string{"ref", "link", "operationRef", "operationId", "parameters", "requestBody", "description", "server"},
			Hidden:          []string{"link"},
			Rename:          refRename,
			Key:             []string{"link"},
		},
		{
			Name:            SecurityScheme,
			DefaultProperty: "securityScheme",
			Properties: []string{
				"ref", "securityScheme", "type", "description", "name", "in", "scheme",
				"bearerFormat", "flows", "openIdConnectUrl",
			},
			Hidden: []string{"securityScheme"},
			Rename: refRename,
			Key:    []string{"securityScheme"},
			Nested: map[string]node.Nest{
				Flow: {Property: "flows", Key: "flow"},
			},
		},
		{
			Name:            Flow,
			DefaultProperty: "flow",
			Properties:      []string{"flow", "authorizationUrl", "tokenUrl", "refreshUrl", "scopes"},
			Hidden:          []string{"flow"},
			Key:             []string{"flow"},
		},
		{Name: Definition, Deprecated: &node.Deprecation{Replacement: Schema}},
		{Name: Swagger, Deprecated: &node.Deprecation{Replacement: OpenAPI, Message: "OpenAPI 3 documents start with @OA\\OpenApi()."}},
	}

	for _, kind := range Operations {
		specs = append(specs, operationSpec(kind))
	}

	for _, kind := range Parameters {
		specs = append(specs, parameterSpec(kind))
	}

	return specs
}

func componentsSpec() *node.KindSpec {
	nested := make(map[string]node.Nest)
	for kind, group := range ComponentGroups {
		nested[kind] = node.Nest{Property: group, Key: ComponentKeys[kind]}
	}

	for _, p := range Parameters {
		nested[p] = node.Nest{Property: "parameters", Key: "parameter"}
	}

	return &node.KindSpec{
		Name: Components,
		Properties: []string{
			"schemas", "responses", "parameters", "examples", "requestBodies",
			"headers", "securitySchemes", "links",
		},
		Nested: nested,
	}
}

func pathItemSpec() *node.KindSpec {
	nested := map[string]node.Nest{
		Server: {Property: "servers"},
	}

	for _, op := range Operations {
		nested[op] = node.Nest{Property: Method(op), Single: true}
	}

	for _, p := range Parameters {
		nested[p] = node.Nest{Property: "parameters"}
	}

	props := []string{"ref", "path", "summary", "description"}
	for _, op := range Operations {
		props = append(props, Method(op))
	}

	props = append(props, "servers", "parameters")

	return &node.KindSpec{
		Name:            PathItem,
		DefaultProperty: "path",
		Properties:      props,
		Hidden:          []string{"path"},
		Rename:          refRename,
		Key:             []string{"path"},
		Nested:          nested,
	}
}

func operationSpec(kind string) *node.KindSpec {
	nested := map[string]node.Nest{
		RequestBody:           {Property: "requestBody", Single: true},
		Response:              {Property: "responses", Key: "response"},
		ExternalDocumentation: {Property: "externalDocs", Single: true},
		Server:                {Property: "servers"},
	}

	for _, p := range Parameters {
		nested[p] = node.Nest{Property: "parameters"}
	}

	return &node.KindSpec{
		Name:            kind,
		DefaultProperty: "path",
		Properties:      operationProperties,
		Hidden:          []string{"path"},
		Key:             []string{"path"},
		Nested:          nested,
	}
}

func parameterSpec(kind string) *node.KindSpec {
	spec := &node.KindSpec{
		Name:            kind,
		DefaultProperty: "name",
		Properties: []string{
			"ref", "parameter", "name", "in", "description", "required", "deprecated",
			"allowEmptyValue", "style", "explode", "allowReserved", "schema", "example",
			"examples", "content",
		},
		Hidden: []string{"parameter"},
		Rename: refRename,
		Key:    []string{"parameter", "name", "in"},
		Nested: merge(contentNested, map[string]node.Nest{
			Schema:   {Property: "schema", Single: true},
			Examples: {Property: "examples", Key: "example"},
		}),
	}

	switch kind {
	case PathParameter:
		spec.Fixed = map[string]any{"in": "path", "required": true}
	case QueryParameter:
		spec.Fixed = map[string]any{"in": "query"}
	case HeaderParameter:
		spec.Fixed = map[string]any{"in": "header"}
	case CookieParameter:
		spec.Fixed = map[string]any{"in": "cookie"}
	}

	return spec
}

func schemaSpec(kind, key string) *node.KindSpec {
	props := schemaProperties

	spec := &node.KindSpec{
		Name:   kind,
		Rename: refRename,
		Nested: schemaNested,
	}

	if key != "" {
		props = append([]string{key}, props...)
		spec.DefaultProperty = key
		spec.Hidden = []string{key}
		spec.Key = []string{key}
	}

	spec.Properties = props

	return spec
}

func merge(maps ...map[string]node.Nest) map[string]node.Nest {
	out := make(map[string]node.Nest)

	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}

	return out
}
