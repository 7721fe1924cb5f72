package dataset

// Selection holds the values chosen for each filter dimension. An empty list
// places no constraint on its dimension.
type Selection struct {
	Departments     []string `json:"departments"`
	EducationFields []string `json:"education_fields"`
}

// IsEmpty returns true if no filter values are chosen.
func (s Selection) IsEmpty() bool {
	return len(s.Departments) == 0 && len(s.EducationFields) == 0
}

// constraints maps column name to its allowed values, omitting dimensions
// with nothing selected.
func (s Selection) constraints() map[string]map[string]bool {
	out := make(map[string]map[string]bool, 2)
	if len(s.Departments) > 0 {
		out[ColDepartment] = toSet(s.Departments)
	}
	if len(s.EducationFields) > 0 {
		out[ColEducationField] = toSet(s.EducationFields)
	}
	return out
}

// Filter returns the rows of ds matching sel, in their original order.
// Values within a dimension are OR-combined; dimensions are AND-combined.
func Filter(ds *Dataset, sel Selection) *View {
	if sel.IsEmpty() {
		return ds.All()
	}
	sets := sel.constraints()

	cols := make(map[*Column]map[string]bool, len(sets))
	for name, set := range sets {
		c, ok := ds.Column(name)
		if !ok {
			// A constrained dimension the data lacks matches nothing.
			return &View{ds: ds, rows: []int{}}
		}
		cols[c] = set
	}

	rows := make([]int, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		pass := true
		for c, set := range cols {
			if !set[c.Text(i)] {
				pass = false
				break
			}
		}
		if pass {
			rows = append(rows, i)
		}
	}
	return &View{ds: ds, rows: rows}
}

// Distinct returns the non-missing values of column name in order of first
// appearance. These are the selectable filter options for that column. Blank
// tokens such as "NA" were already read as missing at load time.
func Distinct(ds *Dataset, name string) []string {
	return DistinctIn(ds.All(), name)
}

// DistinctIn is Distinct restricted to the rows of v.
func DistinctIn(v *View, name string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, val := range v.Texts(name) {
		if val == "" || seen[val] {
			continue
		}
		seen[val] = true
		out = append(out, val)
	}
	return out
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
