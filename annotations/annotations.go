// Package annotations declares the OpenAPI annotation kinds understood by the
// generator.
//
// Kinds are registered under [Namespace] in a [node.Registry]. The default
// alias [DefaultAlias] makes them available as @OA\Name(...) in
// documentation blocks.
package annotations

import (
	"slices"
	"strings"

	"go.jacobcolvin.com/oagen/node"
)

// Namespace is the fully-qualified namespace of the built-in kinds.
const Namespace = `OpenApi\Annotations`

// DefaultAlias is the short prefix registered for [Namespace].
const DefaultAlias = "oa"

// Kind names.
const (
	OpenAPI               = "OpenApi"
	Info                  = "Info"
	Contact               = "Contact"
	License               = "License"
	Server                = "Server"
	ServerVariable        = "ServerVariable"
	Tag                   = "Tag"
	ExternalDocumentation = "ExternalDocumentation"
	PathItem              = "PathItem"
	Get                   = "Get"
	Post                  = "Post"
	Put                   = "Put"
	Patch                 = "Patch"
	Delete                = "Delete"
	Head                  = "Head"
	Options               = "Options"
	Trace                 = "Trace"
	Parameter             = "Parameter"
	PathParameter         = "PathParameter"
	QueryParameter        = "QueryParameter"
	HeaderParameter       = "HeaderParameter"
	CookieParameter       = "CookieParameter"
	RequestBody           = "RequestBody"
	Response              = "Response"
	MediaType             = "MediaType"
	JSONContent           = "JsonContent"
	XMLContent            = "XmlContent"
	Schema                = "Schema"
	Property              = "Property"
	Items                 = "Items"
	AdditionalProperties  = "AdditionalProperties"
	Discriminator         = "Discriminator"
	XML                   = "Xml"
	Components            = "Components"
	Examples              = "Examples"
	Header                = "Header"
	Link                  = "Link"
	SecurityScheme        = "SecurityScheme"
	Flow                  = "Flow"

	// Deprecated kinds from the Swagger 2 era.
	Definition = "Definition"
	Swagger    = "Swagger"
)

// Operations lists the operation kinds in path item order.
var Operations = []string{Get, Put, Post, Delete, Options, Head, Patch, Trace}

// Parameters lists every parameter kind.
var Parameters = []string{Parameter, PathParameter, QueryParameter, HeaderParameter, CookieParameter}

// SchemaKinds lists the kinds that carry schema properties.
var SchemaKinds = []string{Schema, Property, Items, AdditionalProperties, JSONContent, XMLContent}

// ComponentKeys maps each kind stored in Components to the property naming
// it.
var ComponentKeys = map[string]string{
	Schema:         "schema",
	Response:       "response",
	Parameter:      "parameter",
	RequestBody:    "request",
	Examples:       "example",
	Header:         "header",
	SecurityScheme: "securityScheme",
	Link:           "link",
}

// ComponentGroups maps each kind stored in Components to its group.
var ComponentGroups = map[string]string{
	Schema:         "schemas",
	Response:       "responses",
	Parameter:      "parameters",
	RequestBody:    "requestBodies",
	Examples:       "examples",
	Header:         "headers",
	SecurityScheme: "securitySchemes",
	Link:           "links",
}

// Component returns the key property and group of a kind stored in
// Components. Every parameter kind is stored as a parameter.
func Component(kind string) (key, group string, ok bool) {
	if IsParameter(kind) {
		kind = Parameter
	}

	group, ok = ComponentGroups[kind]
	if !ok {
		return "", "", false
	}

	return ComponentKeys[kind], group, true
}

// IsOperation reports whether kind is an operation kind.
func IsOperation(kind string) bool {
	return slices.Contains(Operations, kind)
}

// IsParameter reports whether kind is a parameter kind.
func IsParameter(kind string) bool {
	return slices.Contains(Parameters, kind)
}

// Method returns the lower-case HTTP method of an operation kind.
func Method(kind string) string {
	if !IsOperation(kind) {
		return ""
	}

	return strings.ToLower(kind)
}

// TagName formats a kind name as it is written in documentation blocks, for use
// in diagnostics.
func TagName(kind string) string {
	return `@OA\` + kind + `()`
}

// Register adds every built-in kind to reg under [Namespace].
func Register(reg *node.Registry) error {
	return reg.Register(Namespace, Specs()...)
}

// NewRegistry returns a registry holding the built-in kinds.
func NewRegistry() *node.Registry {
	reg := node.NewRegistry()

	err := Register(reg)
	if err != nil {
		// Built-in names are unique.
		panic(err)
	}

	return reg
}
