// Package viz renders trajectories for the terminal and for files.
//
//   - [Plot] and [PlotMany]: asciigraph line charts of one or several runs
//   - [SavePlot]: PNG/SVG/PDF rendering through gonum/plot
//   - [ModeStrip] and [SparklineChart]: one-line summaries of a run's
//     explicit/implicit decisions and stiffness estimate
//   - [Table]: lipgloss report tables used by the CLI
package viz
