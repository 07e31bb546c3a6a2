package sim

import (
	"context"
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chime/internal/arena"
)

type countingSurface struct {
	rendered  []Frame
	presented int
	failAt    int
}

func (s *countingSurface) Render(f Frame) error {
	if s.failAt > 0 && len(s.rendered)+1 == s.failAt {
		return errors.New("lost context")
	}
	s.rendered = append(s.rendered, f)
	return nil
}

func (s *countingSurface) Present() error {
	s.presented++
	return nil
}

type jumpClock struct {
	ticks []time.Duration
	i     int
}

func (c *jumpClock) Now() time.Duration {
	if c.i >= len(c.ticks) {
		return c.ticks[len(c.ticks)-1]
	}
	t := c.ticks[c.i]
	c.i++
	return t
}

func newWorld() *arena.Simulation {
	a, err := arena.NewArena(arena.Vec2{}, 350, 20)
	Expect(err).NotTo(HaveOccurred())
	w, err := arena.NewSimulation(arena.Config{
		Arena:   a,
		Params:  arena.Params{Gravity: 510, Damping: 1},
		Sectors: 8,
		Initial: arena.Ball{Vel: arena.Vec2{X: 700, Y: 700}},
	})
	Expect(err).NotTo(HaveOccurred())
	return w
}

var _ = Describe("Simulator", func() {
	var (
		world   *arena.Simulation
		surface *countingSurface
		cfg     Config
	)

	BeforeEach(func() {
		world = newWorld()
		surface = &countingSurface{}
		cfg = Config{MaxDt: 0.05}
	})

	Describe("New", func() {
		It("rejects a missing simulation", func() {
			_, err := New(nil, NewStepClock(0.01), nil, nil, cfg)
			Expect(err).To(MatchError(ErrInvalidConfig))
		})

		It("rejects a non-positive max dt", func() {
			_, err := New(world, NewStepClock(0.01), nil, nil, Config{})
			Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue())
		})

		It("rejects a non-finite max dt", func() {
			for _, dt := range []float64{math.NaN(), math.Inf(1)} {
				_, err := New(world, NewStepClock(0.01), nil, nil, Config{MaxDt: dt})
				Expect(err).To(MatchError(ErrInvalidConfig))
			}
		})

		It("rejects negative bounds", func() {
			_, err := New(world, NewStepClock(0.01), nil, nil, Config{MaxDt: 1, FPS: -1})
			Expect(err).To(MatchError(ErrInvalidConfig))
			_, err = New(world, NewStepClock(0.01), nil, nil, Config{MaxDt: 1, MaxFrames: -1})
			Expect(err).To(MatchError(ErrInvalidConfig))
		})
	})

	Describe("Run", func() {
		It("stops when quit is requested", func() {
			polls := 0
			quit := QuitFunc(func() bool {
				polls++
				return polls > 5
			})
			s, err := New(world, NewStepClock(0.01), surface, quit, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Run(context.Background())).To(Succeed())
			Expect(s.Frames()).To(Equal(5))
			Expect(surface.rendered).To(HaveLen(5))
			Expect(surface.presented).To(Equal(5))
		})

		It("stops at the frame bound", func() {
			cfg.MaxFrames = 120
			s, err := New(world, NewStepClock(0.01), surface, nil, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Run(context.Background())).To(Succeed())
			Expect(s.Frames()).To(Equal(120))
			Expect(world.Time()).To(BeNumerically("~", 1.2, 1e-6))
		})

		It("returns the context error when cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			s, err := New(world, NewStepClock(0.01), surface, nil, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Run(ctx)).To(MatchError(context.Canceled))
			Expect(surface.rendered).To(BeEmpty())
		})

		It("wraps surface failures with the frame number", func() {
			surface.failAt = 3
			s, err := New(world, NewStepClock(0.01), surface, nil, cfg)
			Expect(err).NotTo(HaveOccurred())

			err = s.Run(context.Background())
			var stepErr *StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Frame).To(Equal(2))
		})

		It("sleeps off the rest of the frame budget", func() {
			cfg.FPS = 60
			cfg.MaxFrames = 3
			s, err := New(world, NewStepClock(0.01), surface, nil, cfg)
			Expect(err).NotTo(HaveOccurred())

			var slept []time.Duration
			s.sleep = func(d time.Duration) { slept = append(slept, d) }

			Expect(s.Run(context.Background())).To(Succeed())
			Expect(slept).To(HaveLen(3))
			for _, d := range slept {
				Expect(d).To(BeNumerically("<=", time.Second/60))
			}
		})
	})

	Describe("Frame", func() {
		It("clamps a stalled clock to max dt", func() {
			clock := &jumpClock{ticks: []time.Duration{0, 10 * time.Second, 10 * time.Second}}
			s, err := New(world, clock, surface, nil, cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Frame()
			Expect(err).NotTo(HaveOccurred())
			Expect(surface.rendered[0].Dt).To(Equal(0.05))

			_, err = s.Frame()
			Expect(err).NotTo(HaveOccurred())
			Expect(surface.rendered[1].Dt).To(BeZero())
		})

		It("delivers contacts to listeners and observers", func() {
			var heard []int
			world.AddListener(arena.ContactFunc(func(c arena.Contact) { heard = append(heard, c.Sector) }))
			rec := NewRecorder(10)
			cfg.MaxFrames = 600
			s, err := New(world, NewStepClock(1.0/60), nil, nil, cfg)
			Expect(err).NotTo(HaveOccurred())
			s.AddObserver(rec)

			Expect(s.Run(context.Background())).To(Succeed())

			Expect(heard).NotTo(BeEmpty())
			Expect(rec.Contacts).To(HaveLen(len(heard)))
			for i, c := range rec.Contacts {
				Expect(c.Sector).To(Equal(heard[i]))
				Expect(c.Sector).To(BeNumerically(">=", 0))
				Expect(c.Sector).To(BeNumerically("<", 8))
			}
			Expect(rec.Samples).To(HaveLen(60))
		})

		It("keeps the ball inside the arena every frame", func() {
			limit := world.Arena().Containment()
			cfg.MaxFrames = 2000
			s, err := New(world, NewStepClock(1.0/60), nil, nil, cfg)
			Expect(err).NotTo(HaveOccurred())
			s.AddObserver(ObserverFunc(func(f Frame) {
				Expect(f.Ball.Pos.Len()).To(BeNumerically("<=", limit+1e-9))
			}))
			Expect(s.Run(context.Background())).To(Succeed())
		})
	})

	Describe("Resync", func() {
		It("drops the time spent paused", func() {
			clock := &jumpClock{ticks: []time.Duration{0, 10 * time.Millisecond, 5 * time.Second, 5*time.Second + 10*time.Millisecond}}
			s, err := New(world, clock, surface, nil, cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Frame()
			Expect(err).NotTo(HaveOccurred())
			s.Resync()
			_, err = s.Frame()
			Expect(err).NotTo(HaveOccurred())
			Expect(surface.rendered[1].Dt).To(BeNumerically("~", 0.01, 1e-9))
		})
	})

	Describe("Reset", func() {
		It("restores the initial ball", func() {
			s, err := New(world, NewStepClock(0.01), nil, nil, cfg)
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 10; i++ {
				_, err := s.Frame()
				Expect(err).NotTo(HaveOccurred())
			}
			s.Reset()
			Expect(world.Time()).To(BeZero())
			Expect(world.Ball().Pos).To(Equal(arena.Vec2{}))
		})
	})
})

var _ = DescribeTable("ClampDt",
	func(dt, want float64) {
		Expect(ClampDt(dt, 0.05)).To(Equal(want))
	},
	Entry("in range", 0.016, 0.016),
	Entry("zero", 0.0, 0.0),
	Entry("negative", -1.0, 0.0),
	Entry("too large", 3.0, 0.05),
	Entry("nan", math.NaN(), 0.0),
	Entry("inf", math.Inf(1), 0.05),
)

var _ = Describe("StepClock", func() {
	It("starts at zero and advances by the step", func() {
		c := NewStepClock(0.5)
		Expect(c.Now()).To(Equal(time.Duration(0)))
		Expect(c.Now()).To(Equal(500 * time.Millisecond))
		Expect(c.Now()).To(Equal(time.Second))
	})
})
