package metrics

import "github.com/san-kum/chime/internal/sim"

// ContactRate is wall contacts per simulated second.
type ContactRate struct {
	name     string
	contacts int
	elapsed  float64
}

func NewContactRate() *ContactRate {
	return &ContactRate{
		name: "contact_rate",
	}
}

func (c *ContactRate) Name() string {
	return c.name
}

func (c *ContactRate) OnFrame(f sim.Frame) {
	if f.Hit {
		c.contacts++
	}
	c.elapsed += f.Dt
}

func (c *ContactRate) Value() float64 {
	if c.elapsed == 0 {
		return 0
	}
	return float64(c.contacts) / c.elapsed
}

func (c *ContactRate) Reset() {
	c.contacts = 0
	c.elapsed = 0
}
