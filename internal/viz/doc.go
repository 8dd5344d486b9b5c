// Package viz renders run reports for the terminal: lipgloss panels for
// metrics and parameters, sparklines, and a braille plan view of a hull's
// track on the water.
package viz
