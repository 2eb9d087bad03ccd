package domain

import "fmt"

// Row is a single life-table entry: the state of a hypothetical cohort at the
// start of one age interval.
type Row struct {
	Age       int     `json:"age"`   // lower bound of the age interval
	Label     string  `json:"label"` // raw age value, e.g. "26-27" or "100+"
	Mortality float64 `json:"qx"`    // qx: probability of dying within the interval
	Survivors float64 `json:"lx"`    // lx: cohort members alive at this age
}

// LifeTable is an ordered sequence of rows ending in the open-ended terminal
// age group. Tables are loaded once and never mutated.
type LifeTable struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
	Rows []Row  `json:"rows"`
}

// TableRef is a lightweight reference to a table file on disk.
type TableRef struct {
	Name string
	Path string
}

// MinAge returns the youngest age in the table.
func (t LifeTable) MinAge() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return t.Rows[0].Age
}

// MaxAge returns the terminal age, i.e. the start of the open-ended last group.
func (t LifeTable) MaxAge() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return t.Rows[len(t.Rows)-1].Age
}

// Terminal returns the open-ended last row.
func (t LifeTable) Terminal() Row {
	if len(t.Rows) == 0 {
		return Row{}
	}
	return t.Rows[len(t.Rows)-1]
}

// SurvivorsAt returns lx for the given age and whether the age is present.
func (t LifeTable) SurvivorsAt(age int) (float64, bool) {
	for _, r := range t.Rows {
		if r.Age == age {
			return r.Survivors, true
		}
		if r.Age > age {
			break
		}
	}
	return 0, false
}

// Validate checks the life-table invariants: at least one row, ages strictly
// increasing, qx within [0, 1], lx non-negative and non-increasing.
func (t LifeTable) Validate() error {
	if len(t.Rows) == 0 {
		return invalidTable(t.Path, "table has no rows")
	}

	for i, r := range t.Rows {
		if r.Age < 0 {
			return invalidTable(t.Path, fmt.Sprintf("row %d: negative age %d", i, r.Age))
		}
		if r.Mortality < 0 || r.Mortality > 1 {
			return invalidTable(t.Path, fmt.Sprintf("row %d (age %d): qx %g outside [0, 1]", i, r.Age, r.Mortality))
		}
		if r.Survivors < 0 {
			return invalidTable(t.Path, fmt.Sprintf("row %d (age %d): negative lx %g", i, r.Age, r.Survivors))
		}
		if i == 0 {
			continue
		}
		prev := t.Rows[i-1]
		if r.Age <= prev.Age {
			return invalidTable(t.Path, fmt.Sprintf("row %d: age %d does not increase after %d", i, r.Age, prev.Age))
		}
		if r.Survivors > prev.Survivors {
			return invalidTable(t.Path, fmt.Sprintf("row %d (age %d): lx %g rises above %g", i, r.Age, r.Survivors, prev.Survivors))
		}
	}

	return nil
}

func invalidTable(path, msg string) error {
	return &OpError{
		Op:   "lifetable.validate",
		Kind: KindInvalidInput,
		Path: path,
		Err:  fmt.Errorf("%s: %w", msg, ErrInvalidInput),
	}
}
