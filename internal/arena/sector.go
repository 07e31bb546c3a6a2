package arena

import "math"

// SectorIndex maps a contact angle in degrees onto one of n equal sectors.
// Sector 0 is centered on 0 degrees and indices grow counter-clockwise.
// Returns 0 when n < 1 or the angle is not finite.
//
// The angle is reduced into [0, 360) before the half-sector offset is
// applied, so angles a whole number of turns apart always share a sector.
// An angle within a rounding error of a sector edge may land on either side.
func SectorIndex(angle float64, n int) int {
	if n < 1 || !isFinite(angle) {
		return 0
	}
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	width := 360.0 / float64(n)
	return int(math.Mod(a+width/2, 360)/width) % n
}

// SectorCenter is the angle in degrees at the middle of sector i.
func SectorCenter(i, n int) float64 {
	if n < 1 {
		return 0
	}
	return float64(i%n) * 360.0 / float64(n)
}

// SectorBounds returns the start and end angles of sector i in degrees.
func SectorBounds(i, n int) (from, to float64) {
	if n < 1 {
		return 0, 360
	}
	half := 180.0 / float64(n)
	c := SectorCenter(i, n)
	return c - half, c + half
}
