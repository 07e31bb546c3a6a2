// Package analysis summarises recorded runs.
//
//   - [Spectrum] and [DominantFrequency]: periodicity of a sampled signal,
//     e.g. the bounce rate in the ball's height
//   - [SectorHistogram]: how often each sound sector was struck
//   - [Trace] and [Phase]: 2D point sets rendered with [PhasePortraitToASCII]
//
// A bouncing ball that settles into a regular orbit shows a sharp peak:
//
//	f := analysis.DominantFrequency(analysis.Heights(samples), dt)
package analysis
