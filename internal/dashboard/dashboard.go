// Package dashboard assembles everything one dashboard render shows: the
// filter options, the KPIs, the four charts and the table preview.
package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/attrition-dashboard/internal/chart"
	"github.com/sells-group/attrition-dashboard/internal/dataset"
	"github.com/sells-group/attrition-dashboard/internal/kpi"
)

// Titles shown on the page.
const (
	Title          = "Employee Attrition Dashboard"
	DepartmentBars = "Attrition by Department"
	EducationBars  = "Attrition by Education Field"
	AttritionPie   = "Attrition Distribution"
	Correlation    = "Correlation Heatmap"
	DatasetTable   = "Employee Dataset"
)

// Options are the values offered by the sidebar filters. They always come
// from the full dataset, never from the filtered view.
type Options struct {
	Departments     []string `json:"departments"`
	EducationFields []string `json:"education_fields"`
}

// Page is one complete render.
type Page struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Options   Options           `json:"options"`
	Selection dataset.Selection `json:"selection"`
	KPIs      kpi.Set           `json:"kpis"`
	Metrics   []kpi.Metric      `json:"metrics"`

	DepartmentChart *chart.CountChart `json:"department_chart,omitempty"`
	EducationChart  *chart.CountChart `json:"education_chart,omitempty"`
	AttritionPie    *chart.PieChart   `json:"attrition_pie,omitempty"`
	Correlation     *chart.Heatmap    `json:"correlation,omitempty"`
	Table           *chart.Table      `json:"table,omitempty"`

	// Error replaces everything but Title when the data could not be loaded.
	Error string `json:"error,omitempty"`
}

// OptionsOf lists the distinct filter values of ds in first-appearance order.
func OptionsOf(ds *dataset.Dataset) Options {
	return Options{
		Departments:     dataset.Distinct(ds, dataset.ColDepartment),
		EducationFields: dataset.Distinct(ds, dataset.ColEducationField),
	}
}

// Render builds the page for sel. It does not touch ds.
func Render(ds *dataset.Dataset, sel dataset.Selection) *Page {
	v := dataset.Filter(ds, sel)
	set := kpi.Aggregate(v)

	dept := chart.CountBy(v, dataset.ColDepartment, dataset.ColAttrition, chart.Set2)
	dept.Title = DepartmentBars
	edu := chart.CountBy(v, dataset.ColEducationField, dataset.ColAttrition, chart.Set1)
	edu.Title = EducationBars
	pie := chart.Distribution(v, dataset.ColAttrition, chart.PieColors)
	pie.Title = AttritionPie
	heat := chart.Correlate(v)
	heat.Title = Correlation
	tbl := chart.Preview(v)
	tbl.Title = DatasetTable

	return &Page{
		Title:           Title,
		Options:         OptionsOf(ds),
		Selection:       sel,
		KPIs:            set,
		Metrics:         set.Metrics(),
		DepartmentChart: dept,
		EducationChart:  edu,
		AttritionPie:    pie,
		Correlation:     heat,
		Table:           tbl,
	}
}

// ErrorPage is the page shown when the dataset is unavailable.
func ErrorPage(msg string) *Page {
	return &Page{Title: Title, Error: msg}
}

// Service renders pages from a cached dataset source.
type Service struct {
	source *dataset.Source
}

// NewService creates a Service reading from src.
func NewService(src *dataset.Source) *Service {
	return &Service{source: src}
}

// Source returns the underlying dataset source.
func (s *Service) Source() *dataset.Source { return s.source }

// Page renders sel. When the dataset cannot be loaded it returns an error
// page carrying the user-facing message together with the load error.
func (s *Service) Page(ctx context.Context, sel dataset.Selection) (*Page, error) {
	id := uuid.NewString()
	start := time.Now()
	log := zap.L().With(zap.String("render_id", id))

	ds, err := s.source.Dataset(ctx)
	if err != nil {
		log.Warn("dashboard: dataset unavailable", zap.Error(err))
		p := ErrorPage(dataset.UserMessage(s.source.Path(), err))
		p.ID = id
		return p, err
	}

	p := Render(ds, sel)
	p.ID = id
	log.Debug("dashboard: rendered",
		zap.Strings("departments", sel.Departments),
		zap.Strings("education_fields", sel.EducationFields),
		zap.Int("rows", p.KPIs.Count),
		zap.Int("total_rows", ds.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return p, nil
}

// Options returns the filter options of the full dataset.
func (s *Service) Options(ctx context.Context) (Options, error) {
	ds, err := s.source.Dataset(ctx)
	if err != nil {
		return Options{}, err
	}
	return OptionsOf(ds), nil
}

// View returns the filtered rows for sel.
func (s *Service) View(ctx context.Context, sel dataset.Selection) (*dataset.View, error) {
	ds, err := s.source.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return dataset.Filter(ds, sel), nil
}
