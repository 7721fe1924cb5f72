package dataset

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when the dataset file does not exist.
var ErrNotFound = eris.New("dataset: file not found")

// ErrEmptyData is returned when the file has no header or no data rows.
var ErrEmptyData = eris.New("dataset: file has no rows or columns")

// SchemaError reports a required column that is absent or holds values of the
// wrong kind.
type SchemaError struct {
	Column  string
	Problem string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset: column %q %s", e.Column, e.Problem)
}

// UserMessage turns a load failure into the message shown in place of the
// dashboard. Internal details of unexpected errors are not exposed.
func UserMessage(path string, err error) string {
	file := filepath.Base(path)
	dir := filepath.Base(filepath.Dir(path))

	var schemaErr *SchemaError
	switch {
	case eris.Is(err, ErrNotFound):
		return fmt.Sprintf("'%s' not found. Make sure it's inside the '%s' folder.", file, dir)
	case eris.Is(err, ErrEmptyData):
		return fmt.Sprintf("'%s' is empty. Add data to the CSV.", file)
	case errors.As(err, &schemaErr):
		return fmt.Sprintf("'%s' has an invalid layout: column '%s' %s.", file, schemaErr.Column, schemaErr.Problem)
	default:
		return fmt.Sprintf("'%s' could not be read. Check that it is a valid CSV file.", file)
	}
}
