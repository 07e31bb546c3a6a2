package sim

import "github.com/san-kum/chime/internal/arena"

type Sample struct {
	Time float64
	Ball arena.Ball
}

// Recorder keeps every stride-th ball sample and every contact.
type Recorder struct {
	stride   int
	Samples  []Sample
	Contacts []arena.Contact
}

func NewRecorder(stride int) *Recorder {
	if stride < 1 {
		stride = 1
	}
	return &Recorder{stride: stride}
}

func (r *Recorder) OnFrame(f Frame) {
	if f.Index%r.stride == 0 {
		r.Samples = append(r.Samples, Sample{Time: f.Time, Ball: f.Ball})
	}
	if f.Hit {
		r.Contacts = append(r.Contacts, f.Contact)
	}
}

func (r *Recorder) Reset() {
	r.Samples = r.Samples[:0]
	r.Contacts = r.Contacts[:0]
}
