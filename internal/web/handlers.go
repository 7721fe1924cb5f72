package web

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/attrition-dashboard/internal/chart"
	"github.com/sells-group/attrition-dashboard/internal/dashboard"
	"github.com/sells-group/attrition-dashboard/internal/dataset"
	"github.com/sells-group/attrition-dashboard/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Query parameters carrying the sidebar selection. Each may repeat.
const (
	paramDepartment = "department"
	paramEducation  = "education"
)

// selectionFrom reads the filter selection from the query string. Empty
// values are ignored.
func selectionFrom(r *http.Request) dataset.Selection {
	q := r.URL.Query()
	return dataset.Selection{
		Departments:     nonEmpty(q[paramDepartment]),
		EducationFields: nonEmpty(q[paramEducation]),
	}
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("web: encode response", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pageView is a Page plus its charts encoded for <img> tags.
type pageView struct {
	*dashboard.Page

	DepartmentSVG template.URL
	EducationSVG  template.URL
	PieSVG        template.URL
	HeatmapSVG    template.URL
	PieNote       string
	HeatmapNote   string
}

func svgURL(svg []byte) template.URL {
	return template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg))
}

func (s *Server) viewOf(p *dashboard.Page) (*pageView, error) {
	pv := &pageView{Page: p}

	svg, err := p.DepartmentChart.SVG(s.bars)
	if err != nil {
		return nil, err
	}
	pv.DepartmentSVG = svgURL(svg)

	if svg, err = p.EducationChart.SVG(s.bars); err != nil {
		return nil, err
	}
	pv.EducationSVG = svgURL(svg)

	if p.AttritionPie.Empty() {
		pv.PieNote = chart.NoPieData
	} else {
		if svg, err = p.AttritionPie.SVG(s.pie); err != nil {
			return nil, err
		}
		pv.PieSVG = svgURL(svg)
	}

	if p.Correlation.Empty() {
		pv.HeatmapNote = p.Correlation.Placeholder
	} else {
		if svg, err = p.Correlation.SVG(s.bars); err != nil {
			return nil, err
		}
		pv.HeatmapSVG = svgURL(svg)
	}
	return pv, nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Page(r.Context(), selectionFrom(r))
	if err != nil {
		s.renderHTML(w, http.StatusServiceUnavailable, "error.html", p)
		return
	}

	pv, err := s.viewOf(p)
	if err != nil {
		zap.L().Error("web: render charts", zap.String("render_id", p.ID), zap.Error(err))
		s.renderHTML(w, http.StatusInternalServerError, "error.html", dashboard.ErrorPage("The charts could not be drawn."))
		return
	}
	s.renderHTML(w, http.StatusOK, "dashboard.html", pv)
}

// renderHTML buffers the output; a template failure yields a plain 500.
func (s *Server) renderHTML(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		zap.L().Error("web: execute template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Page(r.Context(), selectionFrom(r))
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": p.Error})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAPIOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.svc.Options(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": dataset.UserMessage(s.svc.Source().Path(), err),
		})
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// handleAPIReload drops the cached dataset and loads the file again.
func (s *Server) handleAPIReload(w http.ResponseWriter, r *http.Request) {
	src := s.svc.Source()
	src.Reset()
	ds, err := src.Dataset(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": dataset.UserMessage(src.Path(), err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "reloaded", "rows": ds.Len()})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.View(r.Context(), selectionFrom(r))
	if err != nil {
		http.Error(w, dataset.UserMessage(s.svc.Source().Path(), err), http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, v); err != nil {
		zap.L().Error("web: export", zap.Error(err))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="employee_attrition.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
