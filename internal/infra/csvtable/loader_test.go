package csvtable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nick-merrill/life-expectancy/internal/domain"
)

func writeTable(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadTable_Valid(t *testing.T) {
	p := writeTable(t, "us-2021.csv", `age,qx,lx,dx,ex
0-1,0.005,"100,000",500,76.5
1-2,0.0004,"99,500",40,75.9
100+,1.0,450,450,2.1
`)

	l := NewLoader()
	tab, err := l.LoadTable(p)
	if err != nil {
		t.Fatalf("LoadTable error: %v", err)
	}

	if tab.Name != "us-2021" {
		t.Fatalf("expected name=us-2021, got=%s", tab.Name)
	}
	if len(tab.Rows) != 3 {
		t.Fatalf("expected 3 rows, got=%d", len(tab.Rows))
	}
	if tab.Rows[0].Age != 0 || tab.Rows[0].Label != "0-1" {
		t.Fatalf("expected first row age=0 label=0-1, got age=%d label=%s", tab.Rows[0].Age, tab.Rows[0].Label)
	}
	if tab.Rows[0].Survivors != 100000 {
		t.Fatalf("expected lx=100000, got=%g", tab.Rows[0].Survivors)
	}
	if tab.Rows[1].Mortality != 0.0004 {
		t.Fatalf("expected qx=0.0004, got=%g", tab.Rows[1].Mortality)
	}
	if tab.Rows[2].Age != 100 || tab.Rows[2].Label != "100+" {
		t.Fatalf("expected terminal age=100 label=100+, got age=%d label=%s", tab.Rows[2].Age, tab.Rows[2].Label)
	}
}

func TestLoadTable_HeaderCaseAndExtras(t *testing.T) {
	p := writeTable(t, "flex.csv", "\ufeffAge, Qx ,LX\n65,0.02,80000\n66,0.021,78400\n67,1,76754\n")

	l := NewLoader()
	tab, err := l.LoadTable(p)
	if err != nil {
		t.Fatalf("LoadTable error: %v", err)
	}
	if len(tab.Rows) != 3 {
		t.Fatalf("expected 3 rows, got=%d", len(tab.Rows))
	}
	if tab.Rows[0].Age != 65 || tab.Rows[0].Survivors != 80000 {
		t.Fatalf("unexpected first row: %+v", tab.Rows[0])
	}
}

func TestLoadTable_MissingFile(t *testing.T) {
	l := NewLoader()
	_, err := l.LoadTable(filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected kind=not_found, got=%v", err)
	}
}

func TestLoadTable_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"header only", "age,qx,lx\n"},
		{"missing qx column", "age,lx\n0,100000\n"},
		{"age without digits", "age,qx,lx\nnewborn,0.005,100000\n"},
		{"qx not a number", "age,qx,lx\n0,none,100000\n"},
		{"lx not a number", "age,qx,lx\n0,0.005,many\n"},
		{"short row", "age,qx,lx\n0,0.005\n"},
		{"qx above one", "age,qx,lx\n0,1.5,100000\n"},
		{"lx rises", "age,qx,lx\n0,0.005,100000\n1,0.001,100500\n"},
		{"age repeats", "age,qx,lx\n0,0.005,100000\n0,0.001,99500\n"},
	}

	l := NewLoader()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := writeTable(t, "bad.csv", tc.content)
			_, err := l.LoadTable(p)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !domain.IsKind(err, domain.KindInvalidInput) {
				t.Fatalf("expected kind=invalid_input, got=%v", err)
			}
		})
	}
}

func TestListTables(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "tables")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"us-total-population.csv", "us-female.CSV", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("age,qx,lx\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	l := NewLoader()
	refs, err := l.ListTables(root)
	if err != nil {
		t.Fatalf("ListTables error: %v", err)
	}

	if len(refs) != 2 {
		t.Fatalf("expected 2 tables, got=%d", len(refs))
	}
	if refs[0].Name != "us-female" || refs[1].Name != "us-total-population" {
		t.Fatalf("unexpected order: %s, %s", refs[0].Name, refs[1].Name)
	}
	if refs[1].Path != filepath.Join(dir, "us-total-population.csv") {
		t.Fatalf("unexpected path: %s", refs[1].Path)
	}
}

func TestListTables_MissingDir(t *testing.T) {
	l := NewLoader()
	_, err := l.ListTables(t.TempDir())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected kind=not_found, got=%v", err)
	}
}
