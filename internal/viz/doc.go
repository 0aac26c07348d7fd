// Package viz renders kinsens results for the terminal.
//
// Styles are lipgloss definitions shared by every command. [Profile] draws a
// species trajectory with asciigraph after resampling the adaptive time grid
// onto evenly spaced points, and [Sparkline] gives a one-line overview of the
// same data.
package viz
