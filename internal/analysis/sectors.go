package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/chime/internal/arena"
)

// SectorHistogram counts contacts per sector. Sectors outside [0, n) are
// ignored.
func SectorHistogram(contacts []arena.Contact, n int) []int {
	if n < 1 {
		return nil
	}
	hist := make([]int, n)
	for _, c := range contacts {
		if c.Sector >= 0 && c.Sector < n {
			hist[c.Sector]++
		}
	}
	return hist
}

type ContactStats struct {
	Count        int
	Rate         float64 // contacts per second
	MeanInterval float64
	MeanImpact   float64
	MaxImpact    float64
}

func Contacts(contacts []arena.Contact, duration float64) ContactStats {
	st := ContactStats{Count: len(contacts)}
	if len(contacts) == 0 {
		return st
	}
	if duration > 0 {
		st.Rate = float64(len(contacts)) / duration
	}
	sum := 0.0
	for _, c := range contacts {
		sum += c.Impact
		if c.Impact > st.MaxImpact {
			st.MaxImpact = c.Impact
		}
	}
	st.MeanImpact = sum / float64(len(contacts))
	if len(contacts) > 1 {
		st.MeanInterval = (contacts[len(contacts)-1].Time - contacts[0].Time) / float64(len(contacts)-1)
	}
	return st
}

// HistogramBars renders one bar per sector scaled to width characters.
func HistogramBars(hist []int, width int) string {
	peak := 0
	for _, h := range hist {
		if h > peak {
			peak = h
		}
	}
	var sb strings.Builder
	for i, h := range hist {
		n := 0
		if peak > 0 {
			n = h * width / peak
		}
		fmt.Fprintf(&sb, "%3d %6.1f° │%s %d\n", i, arena.SectorCenter(i, len(hist)), strings.Repeat("█", n), h)
	}
	return sb.String()
}
