package audio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	synthRate  = 44100
	BufferSize = 1024
	maxVoices  = 32
)

// partials of a struck bar, relative to the fundamental
var barPartials = [...]struct{ ratio, gain, decay float64 }{
	{1, 1, 1.2},
	{3.93, 0.35, 0.4},
	{9.54, 0.12, 0.15},
}

type voice struct {
	freq float64
	amp  float64
	age  float64
}

func (v *voice) sample() float64 {
	s := 0.0
	for _, p := range barPartials {
		s += p.gain * math.Exp(-v.age/p.decay) * math.Sin(2*math.Pi*v.freq*p.ratio*v.age)
	}
	return s * v.amp
}

func (v *voice) done() bool { return v.age > barPartials[0].decay*6 }

// Synth renders struck-bar tones to the default output device.
type Synth struct {
	Stream *portaudio.Stream

	mu     sync.Mutex
	voices []voice
	gain   float64

	filter    [2]float64
	delay     [2][]float64
	delayHead int

	Active bool
}

func NewSynth() *Synth {
	delayLen := int(float64(synthRate) * 0.25)
	return &Synth{
		gain:  0.3,
		delay: [2][]float64{make([]float64, delayLen), make([]float64, delayLen)},
	}
}

func (s *Synth) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio: portaudio init: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, synthRate, BufferSize, s.Process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audio: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audio: start stream: %w", err)
	}
	s.Stream = stream
	s.Active = true
	return nil
}

func (s *Synth) Stop() {
	if s.Stream != nil {
		s.Stream.Stop()
		s.Stream.Close()
		s.Stream = nil
	}
	if s.Active {
		portaudio.Terminate()
	}
	s.Active = false
}

// SetVolume uses the same powers-of-two scale as Output.SetVolume.
func (s *Synth) SetVolume(v float64) {
	s.mu.Lock()
	s.gain = 0.3 * math.Pow(2, v)
	s.mu.Unlock()
}

// Trigger starts a tone. The oldest voice is dropped when the pool is full.
func (s *Synth) Trigger(freq, amp float64) {
	if freq <= 0 || amp <= 0 {
		return
	}
	s.mu.Lock()
	if len(s.voices) >= maxVoices {
		s.voices = s.voices[1:]
	}
	s.voices = append(s.voices, voice{freq: freq, amp: amp})
	s.mu.Unlock()
}

func (s *Synth) Voices() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.voices)
}

func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

// Process is the stream callback. It is exported so buffers can be
// rendered without a device.
func (s *Synth) Process(out [][]float32) {
	const dt = 1.0 / synthRate

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range out[0] {
		dry := 0.0
		for j := range s.voices {
			dry += s.voices[j].sample()
			s.voices[j].age += dt
		}

		l := lpf(dry, 6000, dt, s.filter[0])
		r := lpf(dry, 6000, dt, s.filter[1])
		s.filter[0], s.filter[1] = l, r

		dl := s.delay[0][s.delayHead]
		dr := s.delay[1][s.delayHead]
		mixL := l + dl*0.25 + dr*0.05
		mixR := r + dr*0.25 + dl*0.05
		s.delay[0][s.delayHead] = mixL * 0.4
		s.delay[1][s.delayHead] = mixR * 0.4
		s.delayHead = (s.delayHead + 1) % len(s.delay[0])

		out[0][i] = float32(clip(mixL * s.gain))
		if len(out) > 1 {
			out[1][i] = float32(clip(mixR * s.gain))
		}
	}

	live := s.voices[:0]
	for _, v := range s.voices {
		if !v.done() {
			live = append(live, v)
		}
	}
	s.voices = live
}

func clip(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}

// SynthCue plays one pitch on a shared synth.
type SynthCue struct {
	synth *Synth
	freq  float64
	amp   float64
}

func NewSynthCue(s *Synth, freq float64) *SynthCue {
	return &SynthCue{synth: s, freq: freq, amp: 0.8}
}

func (c *SynthCue) Play() { c.synth.Trigger(c.freq, c.amp) }

var semitones = map[byte]int{'C': -9, 'D': -7, 'E': -5, 'F': -4, 'G': -2, 'A': 0, 'B': 2}

// NoteFreq converts scientific pitch names such as "A4", "C#5" or "Eb3" to
// equal-tempered frequencies with A4 = 440 Hz.
func NoteFreq(name string) (float64, error) {
	n := strings.TrimSpace(name)
	if len(n) < 2 {
		return 0, fmt.Errorf("audio: bad note %q", name)
	}
	step, ok := semitones[strings.ToUpper(n[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("audio: bad note %q", name)
	}
	rest := n[1:]
	switch rest[0] {
	case '#':
		step++
		rest = rest[1:]
	case 'b':
		step--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("audio: bad octave in %q: %w", name, err)
	}
	step += (octave - 4) * 12
	return 440 * math.Pow(2, float64(step)/12), nil
}

// LoadSynthBank assigns notes[i] to slot i. Missing or invalid notes leave
// the slot silent.
func LoadSynthBank(bank *Bank, notes []string, s *Synth) (int, error) {
	loaded := 0
	var firstErr error
	for i := 0; i < bank.Len() && i < len(notes); i++ {
		f, err := NoteFreq(notes[i])
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := bank.Set(i, NewSynthCue(s, f)); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, firstErr
}
