// Package kpi computes the headline figures shown above the dashboard charts.
package kpi

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/attrition-dashboard/internal/dataset"
)

// NoValue is reported for an average over no rows.
const NoValue = 0

// Set holds the four KPIs for one filtered view.
type Set struct {
	Count            int     `json:"count"`
	AttritionRatePct float64 `json:"attrition_rate_pct"`
	AvgAge           int     `json:"avg_age"`
	AvgIncome        int     `json:"avg_income"`
}

// Aggregate computes the KPIs of v. An empty view yields zeros.
func Aggregate(v *dataset.View) Set {
	s := Set{Count: v.Len()}
	if s.Count == 0 {
		s.AvgAge = NoValue
		s.AvgIncome = NoValue
		return s
	}

	yes := 0
	for _, a := range v.Texts(dataset.ColAttrition) {
		if a == dataset.AttritionYes {
			yes++
		}
	}
	s.AttritionRatePct = 100 * float64(yes) / float64(s.Count)
	s.AvgAge = TruncatedMean(v.Floats(dataset.ColAge))
	s.AvgIncome = TruncatedMean(v.Floats(dataset.ColMonthlyIncome))
	return s
}

// TruncatedMean averages the non-NaN values and truncates toward zero.
// With nothing to average it returns NoValue.
func TruncatedMean(values []float64) int {
	present := make(stats.Float64Data, 0, len(values))
	for _, x := range values {
		if !math.IsNaN(x) {
			present = append(present, x)
		}
	}

	mean, err := stats.Mean(present)
	if err != nil {
		return NoValue
	}
	return int(mean)
}

// Metric is one labeled KPI as displayed.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var printer = message.NewPrinter(language.English)

// Metrics formats s in display order: headcount, attrition rate, age, income.
func (s Set) Metrics() []Metric {
	return []Metric{
		{Label: "Total Employees", Value: printer.Sprintf("%d", s.Count)},
		{Label: "Attrition Rate (%)", Value: fmt.Sprintf("%.1f", s.AttritionRatePct)},
		{Label: "Average Age", Value: fmt.Sprintf("%d", s.AvgAge)},
		{Label: "Avg Monthly Income", Value: "$" + printer.Sprintf("%d", s.AvgIncome)},
	}
}
