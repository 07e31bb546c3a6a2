package audio

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

const SampleRate = beep.SampleRate(44100)

// Output feeds every cue into one mixer. When opened with OpenSpeaker the
// mixer is played by the system speaker and guarded by the speaker lock.
type Output struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	rate   beep.SampleRate
	volume float64
	lock   func()
	unlock func()
	device bool
}

// NewOutput returns an output that is not attached to any device. Useful
// for tests and for draining the mixer manually.
func NewOutput(rate beep.SampleRate) *Output {
	return &Output{
		mixer:  &beep.Mixer{},
		rate:   rate,
		lock:   func() {},
		unlock: func() {},
	}
}

// OpenSpeaker initialises the speaker and starts playing the mixer.
func OpenSpeaker(rate beep.SampleRate, buffer time.Duration) (*Output, error) {
	if err := speaker.Init(rate, rate.N(buffer)); err != nil {
		return nil, fmt.Errorf("audio: speaker init: %w", err)
	}
	o := NewOutput(rate)
	o.lock, o.unlock = speaker.Lock, speaker.Unlock
	o.device = true
	speaker.Play(o.mixer)
	return o, nil
}

// SetVolume sets gain in powers of two; 0 is unity, -1 halves.
func (o *Output) SetVolume(v float64) {
	o.mu.Lock()
	o.volume = v
	o.mu.Unlock()
}

func (o *Output) Rate() beep.SampleRate { return o.rate }

// Pending is the number of streamers still playing.
func (o *Output) Pending() int {
	o.lock()
	defer o.unlock()
	return o.mixer.Len()
}

// Mixer exposes the underlying mixer; callers must not use it concurrently
// with a speaker-backed output.
func (o *Output) Mixer() *beep.Mixer { return o.mixer }

func (o *Output) add(s beep.Streamer) {
	o.mu.Lock()
	vol := o.volume
	o.mu.Unlock()

	if vol != 0 {
		s = &effects.Volume{Streamer: s, Base: 2, Volume: vol}
	}
	o.lock()
	o.mixer.Add(s)
	o.unlock()
}

func (o *Output) Close() {
	o.lock()
	o.mixer.Clear()
	o.unlock()
	if o.device {
		speaker.Close()
	}
}

// WAVCue replays a decoded buffer from the start on every Play.
type WAVCue struct {
	buf *beep.Buffer
	out *Output
}

func (c *WAVCue) Play() {
	c.out.add(c.buf.Streamer(0, c.buf.Len()))
}

func (c *WAVCue) Len() int { return c.buf.Len() }

// LoadWAV decodes path fully into memory, resampled to rate.
func LoadWAV(path string, rate beep.SampleRate) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stream, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	var s beep.Streamer = stream
	if format.SampleRate != rate {
		s = beep.Resample(4, format.SampleRate, rate, stream)
	}
	buf := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	buf.Append(s)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return buf, nil
}

// LoadWAVBank fills bank slot i from paths[i]. Empty paths and files that
// fail to load are logged and left silent. Returns the number loaded.
func LoadWAVBank(bank *Bank, paths []string, out *Output, log *slog.Logger) int {
	if log == nil {
		log = slog.Default()
	}
	loaded := 0
	for i := 0; i < bank.Len(); i++ {
		if i >= len(paths) || paths[i] == "" {
			log.Warn("no sound for sector", "sector", i)
			continue
		}
		log.Debug("loading sound", "sector", i, "path", paths[i])
		buf, err := LoadWAV(paths[i], out.Rate())
		if err != nil {
			log.Warn("sound unavailable", "sector", i, "path", paths[i], "err", err)
			continue
		}
		if err := bank.Set(i, &WAVCue{buf: buf, out: out}); err != nil {
			log.Warn("sound not stored", "sector", i, "err", err)
			continue
		}
		loaded++
	}
	return loaded
}
