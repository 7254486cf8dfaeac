// Package viz renders a running simulation in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: ticks the simulation with wall-clock dt and draws it
//   - [Canvas]: braille canvas, 2x4 dots per cell, one colour per cell
//   - [Viewport]: maps world coordinates to canvas dots and mouse cells back
//   - [GIFRecorder]: rasterises frames to an animated GIF
//
// # Input
//
//	Space  - Pause/Resume
//	Click  - Spawn a body (or press the pause button in the corner)
//	X      - Remove the body under the cursor
//	P      - Toggle trajectory previews
//	G      - Start/save GIF recording
//	T      - Cycle themes
//	?      - Help
//
// The pause button's cells are registered with the simulation as a reserved
// region, so a click on it never spawns a body.
package viz
