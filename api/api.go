// Package api embeds the OpenAPI description of the fleet HTTP API. The
// echo adapter validates requests against it and serves it to Swagger UI.
package api

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// BasePath is the server url every path in the document is relative to.
const BasePath = "/api/v1"

//go:embed openapi.yaml
var Document []byte

// Load parses Document and checks it is well formed.
func Load() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(Document)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err = doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}
