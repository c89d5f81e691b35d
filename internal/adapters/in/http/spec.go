package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

//go:embed openapi.json
var openAPIDocument []byte

// CourierEventSchema names the webhook payload schema in the document.
const CourierEventSchema = "CourierEvent"

var registerDocOnce sync.Once

// Spec is the parsed OpenAPI document of the service.
type Spec struct {
	doc *openapi3.T
}

// LoadSpec parses and validates the embedded document and publishes it to
// the swagger UI.
func LoadSpec(ctx context.Context) (*Spec, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	if doc.Components == nil || doc.Components.Schemas[CourierEventSchema] == nil {
		return nil, fmt.Errorf("openapi document has no %s schema", CourierEventSchema)
	}

	registerDocOnce.Do(func() {
		swag.Register(swag.Name, swaggerDoc{})
	})

	return &Spec{doc: doc}, nil
}

// ValidateCourierEvent checks a raw webhook body against the CourierEvent
// schema.
func (s *Spec) ValidateCourierEvent(body []byte) error {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return fmt.Errorf("body is not JSON: %w", err)
	}
	return s.doc.Components.Schemas[CourierEventSchema].Value.VisitJSON(value)
}

type swaggerDoc struct{}

func (swaggerDoc) ReadDoc() string {
	return string(openAPIDocument)
}
