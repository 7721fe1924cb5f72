package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// blankTokens are read as missing values, as in the usual dataframe readers.
var blankTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"NULL": true,
	"null": true,
	"#N/A": true,
}

func isBlank(s string) bool { return blankTokens[s] }

// Load reads and validates the CSV file at path.
func Load(ctx context.Context, path string, schema Schema) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(ErrNotFound, "dataset: open %s", path)
		}
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	return Parse(ctx, f, schema)
}

// Parse reads CSV from r and types its columns against schema.
func Parse(ctx context.Context, r io.Reader, schema Schema) (*Dataset, error) {
	header, rows, err := readCSV(ctx, r)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: parse")
	}
	if len(header) == 0 || len(rows) == 0 {
		return nil, eris.Wrap(ErrEmptyData, "dataset: parse")
	}

	names, err := headerNames(header)
	if err != nil {
		return nil, err
	}
	for _, spec := range schema.Columns {
		if !contains(names, spec.Name) {
			return nil, &SchemaError{Column: spec.Name, Problem: "is missing"}
		}
	}

	lines := make([]int, len(rows))
	for i, row := range rows {
		lines[i] = row.line
	}

	columns := make([]*Column, len(names))
	for j, name := range names {
		cells := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row.fields) {
				cells[i] = row.fields[j]
			}
		}

		col, err := buildColumn(name, cells, lines, schema)
		if err != nil {
			return nil, err
		}
		columns[j] = col
	}

	return New(columns), nil
}

func headerNames(header []string) ([]string, error) {
	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[h] {
			return nil, &SchemaError{Column: h, Problem: "appears more than once"}
		}
		seen[h] = true
		names[i] = h
	}
	return names, nil
}

// buildColumn types one column. lines[i] is the file line of cells[i].
// Categorical text is kept as written except that blank tokens become "";
// numbers may carry surrounding spaces.
func buildColumn(name string, cells []string, lines []int, schema Schema) (*Column, error) {
	spec, declared := schema.Spec(name)
	if !declared {
		if nums, ok := parseNumeric(cells); ok {
			return &Column{Name: name, Type: Numeric, nums: nums}, nil
		}
		return &Column{Name: name, Type: Categorical, text: cells}, nil
	}

	if spec.Type == Numeric {
		nums := make([]float64, len(cells))
		for i, cell := range cells {
			cell = strings.TrimSpace(cell)
			if isBlank(cell) {
				nums[i] = math.NaN()
				continue
			}
			f, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, &SchemaError{
					Column:  name,
					Problem: fmt.Sprintf("must be numeric (line %d has %q)", lines[i], cell),
				}
			}
			nums[i] = f
		}
		return &Column{Name: name, Type: Numeric, nums: nums}, nil
	}

	if len(spec.Allowed) > 0 {
		for i, cell := range cells {
			if isBlank(cell) || contains(spec.Allowed, cell) {
				continue
			}
			return nil, &SchemaError{
				Column:  name,
				Problem: fmt.Sprintf("has unexpected value %q on line %d (allowed: %s)", cell, lines[i], strings.Join(spec.Allowed, ", ")),
			}
		}
	}
	for i, cell := range cells {
		if isBlank(cell) {
			cells[i] = ""
		}
	}
	return &Column{Name: name, Type: Categorical, text: cells}, nil
}

// parseNumeric reports whether every non-blank cell is a number and at least
// one cell is non-blank.
func parseNumeric(cells []string) ([]float64, bool) {
	nums := make([]float64, len(cells))
	seen := false
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if isBlank(cell) {
			nums[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		nums[i] = f
		seen = true
	}
	return nums, seen
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Source owns the process-wide Dataset. The first successful load is kept
// for the life of the Source; failed loads are retried on the next call.
// Replacing the file on disk does not invalidate the cache; call Reset.
type Source struct {
	path   string
	schema Schema

	mu     sync.Mutex
	cached *Dataset
	loads  int
}

// NewSource creates a Source for the CSV file at path.
func NewSource(path string, schema Schema) *Source {
	return &Source{path: path, schema: schema}
}

// Path returns the file the Source reads.
func (s *Source) Path() string { return s.path }

// Dataset returns the cached Dataset, loading it on first use.
func (s *Source) Dataset(ctx context.Context) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return s.cached, nil
	}

	start := time.Now()
	s.loads++
	ds, err := Load(ctx, s.path, s.schema)
	if err != nil {
		zap.L().Error("dataset: load failed",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return nil, err
	}

	zap.L().Info("dataset: loaded",
		zap.String("path", s.path),
		zap.Int("rows", ds.Len()),
		zap.Int("columns", len(ds.Columns())),
		zap.Strings("numeric_columns", ds.NumericColumns()),
		zap.Duration("elapsed", time.Since(start)),
	)
	s.cached = ds
	return ds, nil
}

// Reset drops the cached Dataset so the next call re-reads the file.
func (s *Source) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
}

// Loads returns how many times the file has been read.
func (s *Source) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}
