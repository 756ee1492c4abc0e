package mock

import "github.com/JimmyYuu29/cartarev"

var _ cartarev.SchemaRegistry = (*SchemaRegistry)(nil)

// SchemaRegistry is a mock implementation of cartarev.SchemaRegistry.
type SchemaRegistry struct {
	SchemaFn   func(docType string) (*cartarev.DocumentSchema, error)
	DocTypesFn func() []string
}

func (r *SchemaRegistry) Schema(docType string) (*cartarev.DocumentSchema, error) {
	return r.SchemaFn(docType)
}

func (r *SchemaRegistry) DocTypes() []string {
	return r.DocTypesFn()
}
