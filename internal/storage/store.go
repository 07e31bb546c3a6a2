package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/chime/internal/arena"
	"github.com/san-kum/chime/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	contactsFile   = "contacts.csv"
)

var ErrNoRuns = errors.New("storage: no runs found")

var (
	trajectoryHeader = []string{"time", "x", "y", "vx", "vy"}
	contactsHeader   = []string{"time", "angle", "sector", "impact"}
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Gravity    float64            `json:"gravity"`
	Damping    float64            `json:"damping"`
	Radius     float64            `json:"outer_radius,omitempty"`
	BallRadius float64            `json:"ball_radius,omitempty"`
	Sectors    int                `json:"sectors"`
	Contacts   int                `json:"contacts"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a new run directory and returns its id. ID and Timestamp of
// meta are filled in here.
func (s *Store) Save(meta RunMetadata, rec *sim.Recorder) (string, error) {
	now := time.Now()
	name := meta.Preset
	if name == "" {
		name = "run"
	}
	meta.ID = fmt.Sprintf("%s_%d", name, now.UnixNano())
	meta.Timestamp = now
	meta.Contacts = len(rec.Contacts)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, trajectoryFile), func(w io.Writer) error {
		return WriteTrajectory(w, rec.Samples)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, contactsFile), func(w io.Writer) error {
		return WriteContacts(w, rec.Contacts)
	}); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func WriteTrajectory(w io.Writer, samples []sim.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trajectoryHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			formatFloat(s.Time),
			formatFloat(s.Ball.Pos.X),
			formatFloat(s.Ball.Pos.Y),
			formatFloat(s.Ball.Vel.X),
			formatFloat(s.Ball.Vel.Y),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteContacts(w io.Writer, contacts []arena.Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(contactsHeader); err != nil {
		return err
	}
	for _, c := range contacts {
		row := []string{
			formatFloat(c.Time),
			formatFloat(c.Angle),
			strconv.Itoa(c.Sector),
			formatFloat(c.Impact),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

// Latest returns the id of the newest run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrNoRuns
	}
	return runs[len(runs)-1].ID, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) readRecords(runID, name string, width int) ([][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, 0, len(records))
	for i, record := range records {
		if i == 0 || len(record) < width {
			continue
		}
		row := make([]float64, width)
		ok := true
		for j := 0; j < width; j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				ok = false
				break
			}
			row[j] = v
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *Store) LoadTrajectory(runID string) ([]sim.Sample, error) {
	rows, err := s.readRecords(runID, trajectoryFile, len(trajectoryHeader))
	if err != nil {
		return nil, err
	}
	samples := make([]sim.Sample, len(rows))
	for i, r := range rows {
		samples[i] = sim.Sample{
			Time: r[0],
			Ball: arena.Ball{
				Pos: arena.Vec2{X: r[1], Y: r[2]},
				Vel: arena.Vec2{X: r[3], Y: r[4]},
			},
		}
	}
	return samples, nil
}

func (s *Store) LoadContacts(runID string) ([]arena.Contact, error) {
	rows, err := s.readRecords(runID, contactsFile, len(contactsHeader))
	if err != nil {
		return nil, err
	}
	contacts := make([]arena.Contact, len(rows))
	for i, r := range rows {
		contacts[i] = arena.Contact{
			Time:   r[0],
			Angle:  r[1],
			Sector: int(r[2]),
			Impact: r[3],
		}
	}
	return contacts, nil
}

// CopyTrajectory streams the stored trajectory CSV unchanged to w.
func (s *Store) CopyTrajectory(runID string, w io.Writer) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
