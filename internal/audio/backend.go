package audio

import (
	"log/slog"
	"time"
)

// DefaultNotes pairs with the default xylophone sample names.
var DefaultNotes = []string{"A4", "B4", "C5", "C6", "D5", "E5", "F5", "G5"}

type Options struct {
	Backend   string // wav, synth or none
	Sectors   int
	Paths     []string
	Notes     []string
	Volume    float64
	MinImpact float64
}

// Open builds a bank for opts and starts the matching device. A device that
// fails to open is logged and leaves every cue silent. The returned close
// func is always non-nil.
func Open(opts Options, log *slog.Logger) (*Bank, func(), error) {
	if log == nil {
		log = slog.Default()
	}
	bank, err := NewBank(opts.Sectors, log)
	if err != nil {
		return nil, func() {}, err
	}
	bank.SetMinImpact(opts.MinImpact)

	switch opts.Backend {
	case "wav":
		out, err := OpenSpeaker(SampleRate, 100*time.Millisecond)
		if err != nil {
			log.Warn("audio disabled", "backend", opts.Backend, "err", err)
			return bank, func() {}, nil
		}
		out.SetVolume(opts.Volume)
		n := LoadWAVBank(bank, opts.Paths, out, log)
		log.Info("sound bank ready", "backend", opts.Backend, "loaded", n, "sectors", bank.Len())
		return bank, out.Close, nil

	case "synth":
		s := NewSynth()
		if err := s.Start(); err != nil {
			log.Warn("audio disabled", "backend", opts.Backend, "err", err)
			return bank, func() {}, nil
		}
		s.SetVolume(opts.Volume)
		notes := opts.Notes
		if len(notes) == 0 {
			notes = DefaultNotes
		}
		n, err := LoadSynthBank(bank, notes, s)
		if err != nil {
			log.Warn("some notes ignored", "err", err)
		}
		log.Info("sound bank ready", "backend", opts.Backend, "loaded", n, "sectors", bank.Len())
		return bank, s.Stop, nil
	}

	log.Debug("audio off", "backend", opts.Backend)
	return bank, func() {}, nil
}
