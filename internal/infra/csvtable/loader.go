package csvtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nick-merrill/life-expectancy/internal/domain"
	"github.com/nick-merrill/life-expectancy/internal/ports"
)

// Required columns. CDC exports carry more (dx, Lx, Tx, ex); extras are ignored.
const (
	colAge = "age"
	colQx  = "qx"
	colLx  = "lx"
)

// leadingDigits pulls the lower bound out of age labels like "26-27" or "100+".
var leadingDigits = regexp.MustCompile(`^\d+`)

type Loader struct {
	tablesDir string
}

type Option func(*Loader)

func WithTablesDir(dir string) Option {
	return func(l *Loader) { l.tablesDir = dir }
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{tablesDir: "tables"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.TableLoader = (*Loader)(nil)

// LoadTable reads one CSV life table. The header must name age, qx and lx
// (case-insensitive); the table is validated before it is returned.
func (l *Loader) LoadTable(path string) (domain.LifeTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.LifeTable{}, &domain.OpError{
			Op:   "csvtable.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		msg := "cannot read header"
		if errors.Is(err, io.EOF) {
			msg = "file is empty"
		}
		return domain.LifeTable{}, invalidRow(path, 1, fmt.Sprintf("%s: %v", msg, err))
	}

	cols, err := mapColumns(path, header)
	if err != nil {
		return domain.LifeTable{}, err
	}

	var rows []domain.Row
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return domain.LifeTable{}, invalidRow(path, line, err.Error())
		}

		row, err := mapRow(path, line, rec, cols)
		if err != nil {
			return domain.LifeTable{}, err
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return domain.LifeTable{}, invalidRow(path, line, "no data rows")
	}

	t := domain.LifeTable{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path: path,
		Rows: rows,
	}
	if err := t.Validate(); err != nil {
		return domain.LifeTable{}, err
	}
	return t, nil
}

func (l *Loader) ListTables(root string) ([]domain.TableRef, error) {
	dir := filepath.Join(root, l.tablesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "csvtable.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.TableRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		refs = append(refs, domain.TableRef{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(dir, name),
		})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

type columns struct {
	age, qx, lx int
}

func mapColumns(path string, header []string) (columns, error) {
	cols := columns{age: -1, qx: -1, lx: -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		switch name {
		case colAge:
			cols.age = i
		case colQx:
			cols.qx = i
		case colLx:
			cols.lx = i
		}
	}

	for _, c := range []struct {
		name string
		idx  int
	}{
		{colAge, cols.age},
		{colQx, cols.qx},
		{colLx, cols.lx},
	} {
		if c.idx < 0 {
			return columns{}, &domain.OpError{
				Op:   "csvtable.load",
				Kind: domain.KindInvalidInput,
				Path: path,
				Err:  fmt.Errorf("missing required column %q: %w", c.name, domain.ErrInvalidInput),
			}
		}
	}
	return cols, nil
}

func mapRow(path string, line int, rec []string, cols columns) (domain.Row, error) {
	if len(rec) <= cols.age || len(rec) <= cols.qx || len(rec) <= cols.lx {
		return domain.Row{}, invalidRow(path, line, "row has fewer cells than the header")
	}

	label := strings.TrimSpace(rec[cols.age])
	digits := leadingDigits.FindString(label)
	if digits == "" {
		return domain.Row{}, invalidRow(path, line, fmt.Sprintf("age %q has no leading digits", label))
	}
	age, err := strconv.Atoi(digits)
	if err != nil {
		return domain.Row{}, invalidRow(path, line, fmt.Sprintf("age %q: %v", label, err))
	}

	qx, err := parseNumber(rec[cols.qx])
	if err != nil {
		return domain.Row{}, invalidRow(path, line, fmt.Sprintf("qx: %v", err))
	}
	lx, err := parseNumber(rec[cols.lx])
	if err != nil {
		return domain.Row{}, invalidRow(path, line, fmt.Sprintf("lx: %v", err))
	}

	return domain.Row{Age: age, Label: label, Mortality: qx, Survivors: lx}, nil
}

// parseNumber accepts CDC-style values with thousands commas ("94,509").
func parseNumber(s string) (float64, error) {
	v := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if v == "" {
		return 0, errors.New("empty value")
	}
	return strconv.ParseFloat(v, 64)
}

func invalidRow(path string, line int, msg string) error {
	return &domain.OpError{
		Op:   "csvtable.load",
		Kind: domain.KindInvalidInput,
		Path: path,
		Err:  fmt.Errorf("line %d: %s: %w", line, msg, domain.ErrInvalidInput),
	}
}
