package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/chime/internal/arena"
	"github.com/san-kum/chime/internal/sim"
)

func testRecorder() *sim.Recorder {
	rec := sim.NewRecorder(1)
	rec.Samples = []sim.Sample{
		{Time: 0, Ball: arena.Ball{Vel: arena.Vec2{X: 700, Y: -700}}},
		{Time: 0.016, Ball: arena.Ball{Pos: arena.Vec2{X: 11.2, Y: -11.33}, Vel: arena.Vec2{X: 700, Y: -708.16}}},
	}
	rec.Contacts = []arena.Contact{
		{Time: 0.35, Angle: -45, Sector: 7, Impact: 990.5},
	}
	return rec
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{
		Preset:     "musical",
		Dt:         0.016,
		Duration:   1,
		Integrator: "euler",
		Gravity:    510,
		Damping:    1,
		Sectors:    8,
		Metrics:    map[string]float64{"energy_drift": 0.01},
	}, testRecorder())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "musical_") {
		t.Errorf("run id %q should start with the preset", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID || meta.Sectors != 8 || meta.Contacts != 1 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["energy_drift"] != 0.01 {
		t.Errorf("expected energy_drift 0.01, got %f", meta.Metrics["energy_drift"])
	}

	samples, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[1].Ball.Pos.Y != -11.33 || samples[1].Ball.Vel.Y != -708.16 {
		t.Errorf("sample 1 = %+v", samples[1])
	}

	contacts, err := st.LoadContacts(runID)
	if err != nil {
		t.Fatalf("load contacts failed: %v", err)
	}
	if len(contacts) != 1 || contacts[0].Sector != 7 || contacts[0].Angle != -45 {
		t.Errorf("contacts = %+v", contacts)
	}
}

func TestStoreFiles(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	runID, err := st.Save(RunMetadata{}, testRecorder())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(runID, "run_") {
		t.Errorf("run id %q should default to run_", runID)
	}

	data, err := os.ReadFile(filepath.Join(dir, runID, "contacts.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "time,angle,sector,impact" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "0.350000,-45.000000,7,990.500000" {
		t.Errorf("row = %q", lines[1])
	}

	var buf bytes.Buffer
	if err := st.CopyTrajectory(runID, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "time,x,y,vx,vy\n") {
		t.Errorf("trajectory starts with %q", buf.String()[:20])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if _, err := st.Latest(); !errors.Is(err, ErrNoRuns) {
		t.Errorf("Latest on empty store: %v", err)
	}

	first, _ := st.Save(RunMetadata{Preset: "a"}, testRecorder())
	second, _ := st.Save(RunMetadata{Preset: "b"}, testRecorder())

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("runs out of order: %s, %s", runs[0].ID, runs[1].ID)
	}

	latest, err := st.Latest()
	if err != nil || latest != second {
		t.Errorf("Latest = %q, %v", latest, err)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{Preset: "musical", Sectors: 8}, testRecorder())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(runID, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if data.Run.ID != runID || data.Steps != 2 || len(data.Contacts) != 1 {
		t.Errorf("export = %+v", data)
	}
	if data.Samples[0].VX != 700 {
		t.Errorf("sample vx = %f", data.Samples[0].VX)
	}

	if err := st.ExportJSON("missing", &buf); err == nil {
		t.Error("expected error for missing run")
	}
}
