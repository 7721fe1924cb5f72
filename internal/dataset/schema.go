package dataset

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Column names the dashboard reads directly.
const (
	ColDepartment     = "Department"
	ColEducationField = "EducationField"
	ColAttrition      = "Attrition"
	ColAge            = "Age"
	ColMonthlyIncome  = "MonthlyIncome"
)

// AttritionYes marks a departed employee in the Attrition column.
const AttritionYes = "Yes"

// ColumnType is the storage kind of a column.
type ColumnType int

const (
	Categorical ColumnType = iota
	Numeric
)

func (t ColumnType) String() string {
	if t == Numeric {
		return "numeric"
	}
	return "categorical"
}

// ParseColumnType accepts the names used in schema files.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numeric", "number", "float", "int":
		return Numeric, nil
	case "categorical", "string", "text":
		return Categorical, nil
	default:
		return Categorical, eris.Errorf("schema: unknown column type %q", s)
	}
}

// ColumnSpec declares one required column. Allowed, when set, restricts a
// categorical column to a fixed domain.
type ColumnSpec struct {
	Name    string
	Type    ColumnType
	Allowed []string
}

// Schema lists the columns a dataset must provide. Columns not listed are
// kept and typed by inference.
type Schema struct {
	Columns []ColumnSpec
}

// DefaultSchema is the employee layout the dashboard is built around.
func DefaultSchema() Schema {
	return Schema{Columns: []ColumnSpec{
		{Name: ColDepartment, Type: Categorical},
		{Name: ColEducationField, Type: Categorical},
		{Name: ColAttrition, Type: Categorical, Allowed: []string{"Yes", "No"}},
		{Name: ColAge, Type: Numeric},
		{Name: ColMonthlyIncome, Type: Numeric},
	}}
}

// Spec returns the declaration for name, if any.
func (s Schema) Spec(name string) (ColumnSpec, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

type schemaFile struct {
	Columns []struct {
		Name    string   `yaml:"name"`
		Type    string   `yaml:"type"`
		Allowed []string `yaml:"allowed"`
	} `yaml:"columns"`
}

// LoadSchemaFile reads a YAML schema descriptor:
//
//	columns:
//	  - name: Attrition
//	    type: categorical
//	    allowed: ["Yes", "No"]
//	  - name: Age
//	    type: numeric
//
// The columns the dashboard reads are always required; the file may change
// their allowed values and add further required columns.
func LoadSchemaFile(path string) (Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, eris.Wrapf(err, "schema: read %s", path)
	}

	var f schemaFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Schema{}, eris.Wrapf(err, "schema: parse %s", path)
	}

	sch := DefaultSchema()
	for _, c := range f.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return Schema{}, eris.Errorf("schema: %s: column without a name", path)
		}
		typ, err := ParseColumnType(c.Type)
		if err != nil {
			return Schema{}, eris.Wrapf(err, "schema: %s: column %q", path, name)
		}
		spec := ColumnSpec{Name: name, Type: typ, Allowed: c.Allowed}

		if base, ok := sch.Spec(name); ok {
			if base.Type != typ {
				return Schema{}, eris.Errorf("schema: %s: column %q must be %s", path, name, base.Type)
			}
			sch.replace(spec)
			continue
		}
		sch.Columns = append(sch.Columns, spec)
	}
	return sch, nil
}

func (s *Schema) replace(spec ColumnSpec) {
	for i := range s.Columns {
		if s.Columns[i].Name == spec.Name {
			s.Columns[i] = spec
			return
		}
	}
}
