package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/convdiff/internal/domain"
)

func solvedDomain(t *testing.T) *domain.Domain {
	t.Helper()
	d, err := domain.New(0.5, 1, 0.25)
	if err != nil {
		t.Fatalf("domain: %v", err)
	}
	if err := d.Solve(context.Background()); err != nil {
		t.Fatalf("solve: %v", err)
	}
	return d
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	d := solvedDomain(t)
	runID, err := st.Save(RunMetadata{
		Model:   "reference",
		Solver:  "gauss-seidel",
		Metrics: map[string]float64{"stability": 1},
	}, d)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "reference_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.TimeSteps != 3 || meta.Points != 5 {
		t.Errorf("expected 3×5 grid, got %d×%d", meta.TimeSteps, meta.Points)
	}
	if meta.Dx != d.Dx() || meta.Dt != d.Dt() {
		t.Errorf("steps not recorded: dx=%v dt=%v", meta.Dx, meta.Dt)
	}
	if meta.Metrics["stability"] != 1 {
		t.Errorf("metrics lost: %v", meta.Metrics)
	}

	rows, times, err := st.LoadGrid(runID)
	if err != nil {
		t.Fatalf("load grid failed: %v", err)
	}
	g, _ := d.Grid()
	if diff := cmp.Diff(g.Rows(), rows); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Times(3, d.Dt()), times); diff != "" {
		t.Errorf("times mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreSaveUnsolved(t *testing.T) {
	st := New(t.TempDir())
	d, err := domain.New(1, 1, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save(RunMetadata{Model: "reference"}, d); !errors.Is(err, domain.ErrNotSolved) {
		t.Errorf("expected ErrNotSolved, got %v", err)
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("expected empty list, got %v (%v)", runs, err)
	}

	d := solvedDomain(t)
	first, _ := st.Save(RunMetadata{Model: "a"}, d)
	second, _ := st.Save(RunMetadata{Model: "b"}, d)
	if err := os.MkdirAll(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("expected oldest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestLoadGridMalformed(t *testing.T) {
	dir := t.TempDir()
	runDir := filepath.Join(dir, "bad")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	data := "t,x0\n0,1\n0.1,oops\n"
	if err := os.WriteFile(filepath.Join(runDir, gridFile), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := New(dir).LoadGrid("bad"); !errors.Is(err, ErrMalformedGrid) {
		t.Errorf("expected ErrMalformedGrid, got %v", err)
	}
	if _, _, err := New(dir).LoadGrid("missing"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := [][]float64{{1.5, 0.25}, {0.1, 1e-9}}
	if err := WriteCSV(&buf, rows, []float64{0, 0.5}); err != nil {
		t.Fatal(err)
	}
	want := "t,x0,x1\n0,1.5,0.25\n0.5,0.1,1e-09\n"
	if buf.String() != want {
		t.Errorf("unexpected csv:\n%s", buf.String())
	}

	if err := WriteCSV(&buf, rows, []float64{0}); err == nil {
		t.Error("expected error for mismatched times")
	}
}

func TestExportJSON(t *testing.T) {
	meta := RunMetadata{ID: "r1", Model: "reference", Points: 3, Dx: 0.5}
	rows := [][]float64{{1, 2, 3}}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, rows, []float64{0}); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Run.ID != "r1" || len(got.Levels) != 1 {
		t.Errorf("unexpected export %+v", got)
	}
	if diff := cmp.Diff([]float64{0, 0.5, 1}, got.X); diff != "" {
		t.Errorf("x mismatch (-want +got):\n%s", diff)
	}
}
