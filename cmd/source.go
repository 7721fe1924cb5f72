package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/attrition-dashboard/internal/config"
	"github.com/sells-group/attrition-dashboard/internal/dataset"
)

// newSource builds the dataset source from config, applying the schema
// override file when one is set.
func newSource(c *config.Config) (*dataset.Source, error) {
	schema := dataset.DefaultSchema()
	if c.Data.SchemaFile != "" {
		s, err := dataset.LoadSchemaFile(c.Data.SchemaFile)
		if err != nil {
			return nil, eris.Wrap(err, "load schema file")
		}
		schema = s
	}
	return dataset.NewSource(c.Data.Path, schema), nil
}

// addFilterFlags registers the repeatable --department and --education flags.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("department", nil, "keep rows in this department (repeatable)")
	cmd.Flags().StringArray("education", nil, "keep rows with this education field (repeatable)")
}

func selectionFromFlags(cmd *cobra.Command) (dataset.Selection, error) {
	depts, err := cmd.Flags().GetStringArray("department")
	if err != nil {
		return dataset.Selection{}, eris.Wrap(err, "read --department")
	}
	edu, err := cmd.Flags().GetStringArray("education")
	if err != nil {
		return dataset.Selection{}, eris.Wrap(err, "read --education")
	}
	return dataset.Selection{Departments: depts, EducationFields: edu}, nil
}
