// Package viz renders solved space-time grids in the terminal.
//
// Everything here reads a grid through the [Source] query interface
// (TimeSteps, Width, At), which a solved domain satisfies directly and
// [Rows] provides for grids loaded from disk.
//
//   - [PlotProfile] and [PlotSeries]: static asciigraph charts of one time
//     level or one grid point over time
//   - [Viewer]: Bubble Tea program stepping through time levels on a
//     Braille [Canvas]
//
// # Key Bindings
//
//	Space    - Play/Pause
//	←/→ h/l  - Previous/next time level
//	↑/↓ k/j  - Move the probe point
//	Home/End - First/last level
//	T        - Cycle color themes
//	?        - Show help overlay
//	Q        - Quit
package viz
