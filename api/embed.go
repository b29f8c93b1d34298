package api

import _ "embed"

// OpenAPI is the REST API description served at /docs/openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
