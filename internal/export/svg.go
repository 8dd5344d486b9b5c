// Package export renders stored runs into formats other tools can open.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/boatsim/internal/analysis"
	"github.com/san-kum/boatsim/internal/viz"
)

// TrackSVG draws a run's track top-down, +X to the right and +Y up, with both
// axes on one scale. The start is marked in the theme's success color and the
// end in its accent color; a scale bar sits in the lower left corner.
func TrackSVG(tr *analysis.Track, width, height int, theme viz.Theme) string {
	if tr == nil || tr.Len() < 2 || width < 1 || height < 1 {
		return ""
	}

	minX, maxX := tr.X[0], tr.X[0]
	minY, maxY := tr.Y[0], tr.Y[0]
	for i := range tr.X {
		minX, maxX = math.Min(minX, tr.X[i]), math.Max(maxX, tr.X[i])
		minY, maxY = math.Min(minY, tr.Y[i]), math.Max(maxY, tr.Y[i])
	}

	pad := 0.1 * math.Max(maxX-minX, maxY-minY)
	if pad == 0 {
		pad = 1
	}
	spanX := maxX - minX + 2*pad
	spanY := maxY - minY + 2*pad
	perPx := math.Max(spanX/float64(width), spanY/float64(height))
	offX := minX - pad - (float64(width)*perPx-spanX)/2
	offY := minY - pad - (float64(height)*perPx-spanY)/2

	px := func(x, y float64) (float64, float64) {
		return (x - offX) / perPx, float64(height) - (y-offY)/perPx
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, theme.Primary)

	for i := range tr.X {
		x, y := px(tr.X[i], tr.Y[i])
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")

	sx, sy := px(tr.X[0], tr.Y[0])
	fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"4\" fill=\"%s\"/>\n", sx, sy, theme.Success)
	last := tr.Len() - 1
	ex, ey := px(tr.X[last], tr.Y[last])
	fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"4\" fill=\"%s\"/>\n", ex, ey, theme.Accent)

	bar := niceLength(float64(width) * perPx / 5)
	barPx := bar / perPx
	fmt.Fprintf(&sb, "<g stroke=\"%s\" fill=\"%s\" font-family=\"monospace\" font-size=\"11\">\n", theme.Muted, theme.Muted)
	fmt.Fprintf(&sb, "<line x1=\"10\" y1=\"%d\" x2=\"%.1f\" y2=\"%d\"/>\n", height-10, 10+barPx, height-10)
	fmt.Fprintf(&sb, "<text x=\"10\" y=\"%d\" stroke=\"none\">%s m</text>\n</g>\n", height-14, formatLength(bar))

	sb.WriteString("</svg>\n")
	return sb.String()
}

// niceLength rounds v down to 1, 2 or 5 times a power of ten.
func niceLength(v float64) float64 {
	if v <= 0 {
		return 1
	}
	p := math.Pow(10, math.Floor(math.Log10(v)))
	switch m := v / p; {
	case m >= 5:
		return 5 * p
	case m >= 2:
		return 2 * p
	}
	return p
}

func formatLength(v float64) string {
	if v >= 1 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%g", v)
}
