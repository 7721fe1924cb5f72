package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/attrition-dashboard/internal/config"
	"github.com/sells-group/attrition-dashboard/internal/dashboard"
	"github.com/sells-group/attrition-dashboard/internal/dataset"
)

const employees = `Age,Attrition,Department,EducationField,MonthlyIncome,JobRole
41,Yes,Sales,Life Sciences,5993,Sales Executive
49,No,Research & Development,Life Sciences,5130,Research Scientist
37,Yes,Research & Development,Other,2090,Laboratory Technician
33,No,Research & Development,Life Sciences,2909,Research Scientist
27,No,Sales,Medical,3468,Sales Representative
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "employee_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func serviceFor(path string) *dashboard.Service {
	return dashboard.NewService(dataset.NewSource(path, dataset.DefaultSchema()))
}

func TestRunReport_AllRows(t *testing.T) {
	var out bytes.Buffer
	err := runReport(context.Background(), &out, serviceFor(writeCSV(t, employees)), dataset.Selection{}, 0)
	require.NoError(t, err)

	s := out.String()
	assert.True(t, strings.HasPrefix(s, "Employee Attrition Dashboard\n"))
	assert.Contains(t, s, "Department: all")
	assert.Contains(t, s, "Total Employees")
	assert.Contains(t, s, "40.0")
	assert.Contains(t, s, "$3,918")
	assert.Contains(t, s, "Attrition by Department")
	assert.Contains(t, s, "Attrition by Education Field")
	assert.Contains(t, s, "60.0%")
	assert.Contains(t, s, "Correlation Heatmap")
	assert.Contains(t, s, "1.00")
	assert.Contains(t, s, "Laboratory Technician")
	assert.Contains(t, s, "5 of 5 rows")
}

func TestRunReport_FilteredAndCapped(t *testing.T) {
	var out bytes.Buffer
	sel := dataset.Selection{Departments: []string{"Research & Development"}}
	err := runReport(context.Background(), &out, serviceFor(writeCSV(t, employees)), sel, 2)
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "Department: Research & Development")
	assert.Contains(t, s, "Education Field: all")
	assert.Contains(t, s, "2 of 3 rows")
	assert.NotContains(t, s, "Sales Executive")
}

func TestRunReport_NoMatches(t *testing.T) {
	var out bytes.Buffer
	sel := dataset.Selection{Departments: []string{"R&D"}}
	err := runReport(context.Background(), &out, serviceFor(writeCSV(t, employees)), sel, 0)
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "No rows.")
	assert.Contains(t, s, "No attrition data for the current filters.")
	assert.Contains(t, s, "No rows match the current filters.")
	assert.Contains(t, s, "0 of 0 rows")
}

func TestRunReport_MissingFile(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "data", "employee_data.csv")
	err := runReport(context.Background(), &out, serviceFor(path), dataset.Selection{}, 0)
	require.Error(t, err)
	assert.Equal(t, "'employee_data.csv' not found. Make sure it's inside the 'data' folder.", err.Error())
	assert.Empty(t, out.String())
}

func TestRunExport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "attrition.xlsx")
	sel := dataset.Selection{EducationFields: []string{"Life Sciences"}}

	require.NoError(t, runExport(context.Background(), serviceFor(writeCSV(t, employees)), sel, out))

	f, err := xlsx.OpenFile(out)
	require.NoError(t, err)
	require.NotEmpty(t, f.Sheets)
	assert.Len(t, f.Sheets[0].Rows, 4, "header plus three Life Sciences rows")
}

func TestRunExport_MissingFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "attrition.xlsx")

	err := runExport(context.Background(), serviceFor(filepath.Join(dir, "missing.csv")), dataset.Selection{}, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoFileExists(t, out)
}

func TestRunExport_BadOutputPath(t *testing.T) {
	out := filepath.Join(t.TempDir(), "no", "such", "dir", "x.xlsx")
	err := runExport(context.Background(), serviceFor(writeCSV(t, employees)), dataset.Selection{}, out)
	assert.Error(t, err)
}

func TestRunExport_WriteFailureLeavesNoFile(t *testing.T) {
	old := writeWorkbook
	t.Cleanup(func() { writeWorkbook = old })
	writeWorkbook = func(w io.Writer, _ *dataset.View) error {
		_, _ = w.Write([]byte("PK\x03\x04partial"))
		return errors.New("disk full")
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "attrition.xlsx")
	err := runExport(context.Background(), serviceFor(writeCSV(t, employees)), dataset.Selection{}, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoFileExists(t, out)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunExport_WriteFailureKeepsPreviousFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "attrition.xlsx")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0o644))

	old := writeWorkbook
	t.Cleanup(func() { writeWorkbook = old })
	writeWorkbook = func(io.Writer, *dataset.View) error { return errors.New("disk full") }

	require.Error(t, runExport(context.Background(), serviceFor(writeCSV(t, employees)), dataset.Selection{}, out))
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(got))
}

func TestNewSource_SchemaFile(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(schemaPath, []byte("columns:\n  - name: JobRole\n    type: categorical\n"), 0o644))

	src, err := newSource(&config.Config{Data: config.DataConfig{Path: writeCSV(t, employees), SchemaFile: schemaPath}})
	require.NoError(t, err)
	ds, err := src.Dataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())

	_, err = newSource(&config.Config{Data: config.DataConfig{Path: "x.csv", SchemaFile: filepath.Join(dir, "missing.yaml")}})
	assert.Error(t, err)
}

func TestSelectionFromFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "t"}
	addFilterFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--department", "Sales", "--department", "Research & Development", "--education", "Medical",
	}))

	sel, err := selectionFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sales", "Research & Development"}, sel.Departments)
	assert.Equal(t, []string{"Medical"}, sel.EducationFields)

	_, err = selectionFromFlags(&cobra.Command{Use: "bare"})
	assert.Error(t, err)
}

// getFreePort returns a free TCP port on localhost.
func getFreePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

func TestRunServe_Lifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := &config.Config{
		Data:   config.DataConfig{Path: writeCSV(t, employees)},
		Server: config.ServerConfig{Port: getFreePort(t), ReadTimeoutSecs: 5, WriteTimeoutSecs: 5},
		Chart:  config.ChartConfig{WidthIn: 6, HeightIn: 4, PieSizeIn: 4},
	}

	errCh := make(chan error, 1)
	go func() { errCh <- runServe(ctx, c) }()

	// Wait for server to be ready.
	var ready bool
	for i := 0; i < 50; i++ {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", c.Server.Port))
		if err == nil {
			resp.Body.Close()
			ready = resp.StatusCode == http.StatusOK
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.True(t, ready, "server did not become ready in time")

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/options", c.Server.Port))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Graceful shutdown.
	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestRunServe_BadSchemaFile(t *testing.T) {
	c := &config.Config{Data: config.DataConfig{Path: "x.csv", SchemaFile: filepath.Join(t.TempDir(), "missing.yaml")}}
	assert.Error(t, runServe(context.Background(), c))
}
