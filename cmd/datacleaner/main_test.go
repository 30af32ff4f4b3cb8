package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/datacleaner/internal/config"
	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/core/regions"
	"github.com/JonMunkholm/datacleaner/internal/recipe"
)

func testConfig() *config.Config {
	return &config.Config{
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			Timeout:       time.Minute,
			Encoding:      "utf-8",
		},
		Session: config.SessionConfig{TTL: time.Hour, MaxProjects: 10},
		Export:  config.ExportConfig{Delimiter: ",", PreviewRows: 50},
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(testConfig())
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data/alumnos.csv", "RUN;NOMBRE_COMPLETO;Región\n11111111-1;  ana   pérez ;metropolitana\n")
	writeFile(t, dir, "data/docentes.csv", "rut,nombre\n12345678-5,LUIS SOTO\n")
	recipePath := writeFile(t, dir, "recipe.yaml", `fields: [RUT, Nombre, Región]
sources:
  - id: alumnos
    path: data/alumnos.csv
    mapping: {RUN: RUT, NOMBRE_COMPLETO: Nombre, Región: Región}
  - path: data/docentes.csv
    automap: true
export:
  path: out/limpio.csv
`)
	os.MkdirAll(filepath.Join(dir, "out"), 0o755)

	stdout, _, err := execute(t, "run", "-f", recipePath, "--delimiter", "semicolon", "--preview", "5")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, want := range []string{"2 fuentes, 2 filas consolidadas", "Mostrando las primeras 2 de 2 filas.", "Ana Pérez"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("report missing %q:\n%s", want, stdout)
		}
	}

	got, err := os.ReadFile(filepath.Join(dir, "out", "limpio.csv"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := `"RUT";"Nombre";"Región"` + "\r\n" +
		`"11.111.111-1";"Ana Pérez";"Región Metropolitana de Santiago"` + "\r\n" +
		`"12.345.678-5";"Luis Soto";""` + "\r\n"
	if string(got) != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}

func TestRun_Stdout(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "RUT\n1-9\n")
	recipePath := writeFile(t, dir, "r.yaml", "fields: [RUT]\nsources: [{path: a.csv, automap: true}]\n")

	stdout, stderr, err := execute(t, "run", "-f", recipePath, "-o", "-")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout != "\"RUT\"\r\n\"1-9\"\r\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "1 fuentes") {
		t.Errorf("report not on stderr: %q", stderr)
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	missing := writeFile(t, dir, "missing.yaml", "fields: [RUT]\nsources: [{path: nope.csv}]\n")
	strict := writeFile(t, dir, "strict.yaml", "fields: [RUT]\nsources: [{path: nope.csv}]\ncolumnRules: [{column: RUT, rules: [shout]}]\n")

	if _, _, err := execute(t, "run"); err == nil {
		t.Error("run without -f succeeded")
	}
	if _, _, err := execute(t, "run", "-f", missing); err == nil || !strings.Contains(err.Error(), "nope.csv") {
		t.Errorf("missing source error = %v", err)
	}
	_, _, err := execute(t, "run", "-f", strict, "--strict")
	if err == nil || core.MapError(err).Code != "PIPE006" {
		t.Errorf("strict error = %v", err)
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "alumnos.csv", "rut;nombre;telefono\n1-9;ana;1\n2-7;luis;2\n")

	stdout, _, err := execute(t, "inspect", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"alumnos.csv: 2 filas", `';'`, "coincidencia 50%", "(ignorar)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("inspect output missing %q:\n%s", want, stdout)
		}
	}
}

func TestInspect_EmitRecipe(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "alumnos.csv", "RUT,Nombre,telefono\n1-9,ana,1\n")

	stdout, _, err := execute(t, "inspect", "--fields", "RUT,Nombre", "--emit-recipe", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}

	r, err := recipe.Parse(strings.NewReader(stdout), "")
	if err != nil {
		t.Fatalf("emitted recipe does not parse: %v\n%s", err, stdout)
	}
	if err := r.Validate(true); err != nil {
		t.Errorf("emitted recipe invalid: %v", err)
	}
	if r.Sources[0].ID != "alumnos" || r.Sources[0].Mapping["Nombre"] != "Nombre" {
		t.Errorf("source = %+v", r.Sources[0])
	}
	if _, ok := r.Sources[0].Mapping["telefono"]; ok {
		t.Error("ignored header emitted")
	}
	if len(r.ColumnRules) != 2 {
		t.Errorf("columnRules = %v", r.ColumnRules)
	}
}

func TestRules(t *testing.T) {
	stdout, _, err := execute(t, "rules")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(stdout), "\n"); len(lines) != len(core.RuleKinds) {
		t.Errorf("listed %d rules, want %d", len(lines), len(core.RuleKinds))
	}

	stdout, _, err = execute(t, "rules", "--apply", "trim,normalizeRut", " 12345678-5 ", "x")
	if err != nil {
		t.Fatalf("rules --apply: %v", err)
	}
	if stdout != "12.345.678-5\nx\n" {
		t.Errorf("applied = %q", stdout)
	}

	if _, _, err := execute(t, "rules", "--apply", "shout", "x"); err == nil {
		t.Error("unknown rule accepted")
	}
}

func TestRules_Regions(t *testing.T) {
	stdout, _, err := execute(t, "rules", "--regions")
	if err != nil {
		t.Fatalf("rules --regions: %v", err)
	}

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	if want := len(regions.Aliases()) + 2; len(lines) != want {
		t.Fatalf("got %d lines, want %d (header, rule, one per alias)", len(lines), want)
	}

	found := false
	for _, line := range lines {
		if strings.HasPrefix(line, "LOS LAGOS ") && strings.Contains(line, "Región de Los Lagos") {
			found = true
		}
	}
	if !found {
		t.Errorf("no LOS LAGOS row in\n%s", stdout)
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	rows := []core.Row{
		{"a": "Región", "b": 1},
		{"a": "x", "b": nil},
	}
	if err := renderTable(&buf, []string{"a", "b"}, rows); err != nil {
		t.Fatal(err)
	}

	want := "a      | b\n" +
		"-------+--\n" +
		"Región | 1\n" +
		"x      |\n"
	if buf.String() != want {
		t.Errorf("table =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, recipe.ErrInvalid)
	if !strings.Contains(buf.String(), "PIPE006") || !strings.Contains(buf.String(), "error: invalid recipe") {
		t.Errorf("printError = %q", buf.String())
	}
}
