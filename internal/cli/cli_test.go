package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nick-merrill/life-expectancy/internal/domain"
)

// --- looksLikePath ---

func TestLooksLikePath(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"us-total-population", false},
		{"us-total-population.csv", false},
		{"./us.csv", true},
		{"tables/us.csv", true},
		{"/abs/path/us.csv", true},
	}
	for _, c := range cases {
		if got := looksLikePath(c.input); got != c.want {
			t.Errorf("looksLikePath(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

// --- hasCSVExt ---

func TestHasCSVExt(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"us.csv", true},
		{"US.CSV", true},
		{"us.yaml", false},
		{"us", false},
		{"", false},
	}
	for _, c := range cases {
		if got := hasCSVExt(c.input); got != c.want {
			t.Errorf("hasCSVExt(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

// --- fileExists ---

func TestFileExists_True(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "exists.txt")
	if err := os.WriteFile(p, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !fileExists(p) {
		t.Errorf("expected fileExists=true for %s", p)
	}
}

func TestFileExists_False(t *testing.T) {
	tmp := t.TempDir()
	if fileExists(filepath.Join(tmp, "not_there.txt")) {
		t.Error("expected fileExists=false for non-existent file")
	}
}

// --- tableName ---

func TestTableName(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"/ws/tables/us-total-population.csv", "us-total-population"},
		{"tables/us.CSV", "us"},
		{"us", "us"},
	}
	for _, c := range cases {
		if got := tableName(c.input); got != c.want {
			t.Errorf("tableName(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

// --- groupThousands ---

func TestGroupThousands(t *testing.T) {
	cases := []struct {
		input float64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{94523, "94,523"},
		{3047552, "3,047,552"},
	}
	for _, c := range cases {
		if got := groupThousands(c.input); got != c.want {
			t.Errorf("groupThousands(%v) = %q, want %q", c.input, got, c.want)
		}
	}
}

// --- printAnalysis ---

func sampleAnalysis(t *testing.T) domain.Analysis {
	t.Helper()

	table := domain.LifeTable{
		Name: "us-total-population",
		Rows: []domain.Row{
			{Age: 60, Label: "60-61", Mortality: 0.1, Survivors: 1000},
			{Age: 61, Label: "61-62", Mortality: 0.5, Survivors: 900},
			{Age: 62, Label: "62+", Mortality: 1.0, Survivors: 450},
		},
	}
	dist, err := domain.NewConditional(table, 60)
	if err != nil {
		t.Fatalf("unexpected error building distribution: %v", err)
	}

	return domain.Analysis{
		Table:        table.Name,
		TablePath:    "/ws/tables/us-total-population.csv",
		Distribution: dist,
		Summary:      domain.Summarize(dist),
	}
}

func TestPrintAnalysis_JSON_ValidOutput(t *testing.T) {
	a := sampleAnalysis(t)

	var buf bytes.Buffer
	if err := printAnalysis(&buf, a, "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if payload["table"] != "us-total-population" {
		t.Errorf("expected table=us-total-population, got %v", payload["table"])
	}
	if payload["summary"] == nil {
		t.Error("expected 'summary' key in JSON output")
	}
	if payload["distribution"] == nil {
		t.Error("expected 'distribution' key in JSON output")
	}
}

func TestPrintAnalysis_Text_QuotesOdds(t *testing.T) {
	a := sampleAnalysis(t)

	var buf bytes.Buffer
	if err := printAnalysis(&buf, a, "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Based on the given data and assumptions, someone at age 60 has a") {
		t.Errorf("expected odds header in text output, got:\n%s", out)
	}
	if !strings.Contains(out, "50% chance of dying before 61.0 years old. That's 52 weeks after age 60") {
		t.Errorf("expected median line in text output, got:\n%s", out)
	}
	if !strings.Contains(out, "1,000 alive at age 60") {
		t.Errorf("expected cohort size in text output, got:\n%s", out)
	}
}

func TestPrintAnalysis_EmptyFormat_IsText(t *testing.T) {
	var buf bytes.Buffer
	if err := printAnalysis(&buf, sampleAnalysis(t), ""); err != nil {
		t.Fatalf("empty format should behave like text, got error: %v", err)
	}
}

func TestPrintAnalysis_UnknownFormat_ReturnsError(t *testing.T) {
	var buf bytes.Buffer
	err := printAnalysis(&buf, sampleAnalysis(t), "xml")
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "xml") {
		t.Errorf("expected error to mention format, got: %v", err)
	}
}

// --- buildAnalyzeRequest ---

func writeTestWorkspace(t *testing.T) (*workspaceCtx, string) {
	t.Helper()

	tmp := t.TempDir()
	tablesDir := filepath.Join(tmp, "tables")
	if err := os.MkdirAll(tablesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	tablePath := filepath.Join(tablesDir, "us-total-population.csv")
	if err := os.WriteFile(tablePath, []byte("age,qx,lx\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return newWorkspaceCtx(tmp, domain.DefaultConfig()), tablePath
}

func TestBuildAnalyzeRequest_Defaults(t *testing.T) {
	ws, tablePath := writeTestWorkspace(t)

	req, err := buildAnalyzeRequest(analyzeCmd(), ws, analyzeFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.TablePath != tablePath {
		t.Errorf("expected table path %q, got %q", tablePath, req.TablePath)
	}
	if req.MinAge != 0 {
		t.Errorf("expected min age 0, got %d", req.MinAge)
	}
	if req.Optimistic {
		t.Error("expected optimistic=false by default")
	}
	wantChart := filepath.Join(ws.root, "charts", "us-total-population-from-0.png")
	if req.ChartPath != wantChart {
		t.Errorf("expected chart path %q, got %q", wantChart, req.ChartPath)
	}
}

func TestBuildAnalyzeRequest_ProfileOverridesDefaults(t *testing.T) {
	ws, _ := writeTestWorkspace(t)

	profiles := "profiles:\n  - name: retirement\n    min_age: 65\n    optimistic: true\n    percentiles: [25, 50, 75]\n"
	if err := os.WriteFile(filepath.Join(ws.root, "profiles.yaml"), []byte(profiles), 0o644); err != nil {
		t.Fatal(err)
	}

	req, err := buildAnalyzeRequest(analyzeCmd(), ws, analyzeFlags{profile: "retirement"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.MinAge != 65 {
		t.Errorf("expected profile min age 65, got %d", req.MinAge)
	}
	if !req.Optimistic {
		t.Error("expected profile optimistic=true")
	}
	if len(req.Percentiles) != 3 || req.Percentiles[0] != 25 {
		t.Errorf("expected profile percentiles [25 50 75], got %v", req.Percentiles)
	}
}

func TestBuildAnalyzeRequest_FlagBeatsProfile(t *testing.T) {
	ws, _ := writeTestWorkspace(t)

	profiles := "profiles:\n  - name: retirement\n    min_age: 65\n"
	if err := os.WriteFile(filepath.Join(ws.root, "profiles.yaml"), []byte(profiles), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := analyzeCmd()
	if err := cmd.Flags().Set("min-age", "70"); err != nil {
		t.Fatal(err)
	}

	req, err := buildAnalyzeRequest(cmd, ws, analyzeFlags{profile: "retirement", minAge: 70})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.MinAge != 70 {
		t.Errorf("expected flag min age 70 to beat profile, got %d", req.MinAge)
	}
}

func TestBuildAnalyzeRequest_NoChart(t *testing.T) {
	ws, _ := writeTestWorkspace(t)

	req, err := buildAnalyzeRequest(analyzeCmd(), ws, analyzeFlags{noChart: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ChartPath != "" {
		t.Errorf("expected empty chart path with no-chart, got %q", req.ChartPath)
	}
}

func TestBuildAnalyzeRequest_UnknownProfileFails(t *testing.T) {
	ws, _ := writeTestWorkspace(t)

	_, err := buildAnalyzeRequest(analyzeCmd(), ws, analyzeFlags{profile: "nope"})
	if err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

// --- command structure ---

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, expected := range []string{"analyze", "tables", "profiles", "validate", "init", "version"} {
		if !names[expected] {
			t.Errorf("expected subcommand %q to be registered", expected)
		}
	}
}

func TestAnalyzeCmd_Flags(t *testing.T) {
	cmd := analyzeCmd()
	if cmd.Use != "analyze" {
		t.Errorf("expected Use=analyze, got %q", cmd.Use)
	}
	for _, flag := range []string{"workspace", "table", "min-age", "profile", "optimistic", "percentiles", "chart", "no-chart", "format"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag on analyze command", flag)
		}
	}
}

func TestValidateCmd_Flags(t *testing.T) {
	cmd := validateCmd()
	if cmd.Use != "validate" {
		t.Errorf("expected Use=validate, got %q", cmd.Use)
	}
	for _, flag := range []string{"table", "workspace"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag on validate command", flag)
		}
	}
}

func TestTablesCmd_HasListSubcommand(t *testing.T) {
	cmd := tablesCmd()
	found := false
	for _, sub := range cmd.Commands() {
		if sub.Use == "list" {
			found = true
		}
	}
	if !found {
		t.Error("expected 'list' subcommand under tables")
	}
}

func TestProfilesCmd_HasListSubcommand(t *testing.T) {
	cmd := profilesCmd()
	found := false
	for _, sub := range cmd.Commands() {
		if sub.Use == "list" {
			found = true
		}
	}
	if !found {
		t.Error("expected 'list' subcommand under profiles")
	}
}

func TestInitCmd_Flags(t *testing.T) {
	cmd := initCmd()
	if cmd.Name() != "init" {
		t.Errorf("expected command name init, got %q", cmd.Name())
	}
	if cmd.Flags().Lookup("force") == nil {
		t.Error("expected --force flag on init command")
	}
	if err := cmd.Args(cmd, []string{"a", "b"}); err == nil {
		t.Error("expected at most one positional argument")
	}
}

// --- end to end ---

func scaffoldWorkspace(t *testing.T) string {
	t.Helper()

	ws := t.TempDir()
	cmd := newRootCmd()
	cmd.SetArgs([]string{"init", ws})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}
	return ws
}

func TestAnalyzeCmd_EndToEnd(t *testing.T) {
	ws := scaffoldWorkspace(t)
	chart := filepath.Join(ws, "out.png")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"analyze", "--workspace", ws, "--min-age", "65", "--chart", chart})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	b, err := os.ReadFile(chart)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("expected a PNG, got %q", b[:4])
	}
}

func TestAnalyzeCmd_EndToEnd_MinAgeOutOfRange(t *testing.T) {
	ws := scaffoldWorkspace(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"analyze", "--workspace", ws, "--min-age", "150", "--no-chart"})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for a min age above the table maximum")
	}
	if !domain.IsKind(err, domain.KindOutOfRange) {
		t.Fatalf("expected kind=out_of_range, got %v", err)
	}
}

// --- resolveWorkspaceRoot ---

func TestResolveWorkspaceRoot_ExplicitPath(t *testing.T) {
	tmp := t.TempDir()
	got, err := resolveWorkspaceRoot(tmp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != tmp {
		t.Errorf("expected %q, got %q", tmp, got)
	}
}

func TestResolveWorkspaceRoot_RelativePath(t *testing.T) {
	got, err := resolveWorkspaceRoot(".")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %q", got)
	}
}

// --- resolveTablePath ---

func TestResolveTablePath_NameWithExt(t *testing.T) {
	ws, tablePath := writeTestWorkspace(t)

	got, err := resolveTablePath(ws, "us-total-population.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != tablePath {
		t.Errorf("expected %q, got %q", tablePath, got)
	}
}

func TestResolveTablePath_RelativePathJoinsRoot(t *testing.T) {
	ws, tablePath := writeTestWorkspace(t)

	got, err := resolveTablePath(ws, "tables/us-total-population.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != tablePath {
		t.Errorf("expected %q, got %q", tablePath, got)
	}
}

func TestResolveTablePath_Unknown(t *testing.T) {
	ws, _ := writeTestWorkspace(t)

	_, err := resolveTablePath(ws, "mars-colony")
	if err == nil {
		t.Fatal("expected error for unknown table")
	}
	if !strings.Contains(err.Error(), "mars-colony") {
		t.Errorf("expected error to name the table, got: %v", err)
	}
}
