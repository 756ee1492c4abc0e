package main

import "fmt"

// Run executes the schemas command.
func (c *SchemasCmd) Run(deps *Dependencies) error {
	docTypes := deps.Schemas.DocTypes()
	if len(docTypes) == 0 {
		fmt.Fprintln(deps.Stdout, "No document types registered.")
		return nil
	}

	for _, docType := range docTypes {
		schema, err := deps.Schemas.Schema(docType)
		if err != nil {
			return err
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  (%d fields, %d blocks)\n",
			schema.DocType, schema.Title, len(schema.Fields), len(schema.Blocks))
	}

	return nil
}
