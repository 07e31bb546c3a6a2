package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/chime/internal/sim"
)

type ExportSample struct {
	Time float64 `json:"t"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VX   float64 `json:"vx"`
	VY   float64 `json:"vy"`
}

type ExportContact struct {
	Time   float64 `json:"t"`
	Angle  float64 `json:"angle"`
	Sector int     `json:"sector"`
	Impact float64 `json:"impact"`
}

type ExportData struct {
	Run      RunMetadata     `json:"run"`
	Steps    int             `json:"steps"`
	Samples  []ExportSample  `json:"samples"`
	Contacts []ExportContact `json:"contacts"`
}

// ExportJSON writes the run with its trajectory and contacts as one
// indented JSON document.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	contacts, err := s.LoadContacts(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:      *meta,
		Steps:    len(samples),
		Samples:  make([]ExportSample, len(samples)),
		Contacts: make([]ExportContact, len(contacts)),
	}
	for i, smp := range samples {
		data.Samples[i] = exportSample(smp)
	}
	for i, c := range contacts {
		data.Contacts[i] = ExportContact{Time: c.Time, Angle: c.Angle, Sector: c.Sector, Impact: c.Impact}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func exportSample(s sim.Sample) ExportSample {
	return ExportSample{
		Time: s.Time,
		X:    s.Ball.Pos.X,
		Y:    s.Ball.Pos.Y,
		VX:   s.Ball.Vel.X,
		VY:   s.Ball.Vel.Y,
	}
}
