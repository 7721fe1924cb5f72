package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/attrition-dashboard/internal/dashboard"
	"github.com/sells-group/attrition-dashboard/internal/dataset"
	"github.com/sells-group/attrition-dashboard/internal/export"
)

var exportOut string

var writeWorkbook = export.WriteXLSX

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered rows and KPIs to an .xlsx file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("export"); err != nil {
			return err
		}
		sel, err := selectionFromFlags(cmd)
		if err != nil {
			return err
		}
		src, err := newSource(cfg)
		if err != nil {
			return err
		}
		return runExport(cmd.Context(), dashboard.NewService(src), sel, exportOut)
	},
}

func runExport(ctx context.Context, svc *dashboard.Service, sel dataset.Selection, out string) error {
	v, err := svc.View(ctx, sel)
	if err != nil {
		return eris.New(dataset.UserMessage(svc.Source().Path(), err))
	}

	if err := writeFileAtomic(out, func(w io.Writer) error { return writeWorkbook(w, v) }); err != nil {
		return err
	}

	zap.L().Info("export complete",
		zap.String("out", out),
		zap.Int("rows", v.Len()),
	)
	return nil
}

// writeFileAtomic writes to a temporary file beside path and renames it into
// place, so a failed write leaves no partial file at path.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "chmod %s", path)
	}
	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "close %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "rename to %s", path)
	}
	return nil
}

func init() {
	addFilterFlags(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output .xlsx path (required)")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}
