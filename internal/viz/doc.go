// Package viz is the terminal front end, built on Bubble Tea.
//
//   - [Model]: live view of one simulation on a braille [Canvas]
//   - [RunInteractive]: preset picker and parameter editor that starts a Model
//   - Theme selection with 4 built-in colour schemes
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset the ball
//	S     - Toggle sector spokes
//	T     - Cycle colour themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
