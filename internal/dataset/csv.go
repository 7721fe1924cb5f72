package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// record is one data row and the file line it starts on.
type record struct {
	line   int
	fields []string
}

// readCSV reads the header row and every data row of r. Rows wider than the
// header are rejected as they are read; shorter rows are kept and padded
// later. Blank lines are skipped, so line numbers come from the reader, not
// from row counts. A leading byte-order mark and surrounding spaces are
// removed from header names only.
func readCSV(ctx context.Context, r io.Reader) ([]string, []record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "csv: read header")
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	var rows []record
	for {
		if ctx.Err() != nil {
			return nil, nil, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}

		fields, err := reader.Read()
		if err == io.EOF {
			return header, rows, nil
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "csv: read row")
		}

		line, _ := reader.FieldPos(0)
		if len(fields) > len(header) {
			return nil, nil, eris.Errorf("dataset: line %d has %d fields, header has %d", line, len(fields), len(header))
		}
		rows = append(rows, record{line: line, fields: fields})
	}
}
