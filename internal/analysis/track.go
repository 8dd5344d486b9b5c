package analysis

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/boatsim/internal/dynamo"
)

// Navigation reads SI quantities from a vessel state.
type Navigation interface {
	Position(x dynamo.State) mgl64.Vec3
	Heading(x dynamo.State) float64
	Speed(x dynamo.State) float64
}

// Track is a run reduced to what the manoeuvre analyses need.
type Track struct {
	Times    []float64
	X, Y     []float64
	Headings []float64 // unwrapped, radians
	Speeds   []float64
}

// NewTrack samples every recorded state of r. Headings are unwrapped so a
// full circle reads as 2π rather than jumping back to zero.
func NewTrack(nav Navigation, r *dynamo.Result) *Track {
	n := len(r.States)
	tr := &Track{
		Times:    make([]float64, 0, n),
		X:        make([]float64, 0, n),
		Y:        make([]float64, 0, n),
		Headings: make([]float64, 0, n),
		Speeds:   make([]float64, 0, n),
	}

	for i, x := range r.States {
		p := nav.Position(x)
		h := nav.Heading(x)
		if i > 0 {
			prev := tr.Headings[i-1]
			h = prev + wrap(h-prev)
		}
		tr.Times = append(tr.Times, r.Times[i])
		tr.X = append(tr.X, p.X())
		tr.Y = append(tr.Y, p.Y())
		tr.Headings = append(tr.Headings, h)
		tr.Speeds = append(tr.Speeds, nav.Speed(x))
	}
	return tr
}

func (t *Track) Len() int { return len(t.Times) }

func wrap(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}

// TrackToASCII draws the track top-down with +X to the right and +Y up.
func TrackToASCII(tr *Track, width, height int) string {
	if tr == nil || tr.Len() == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := tr.X[0], tr.X[0]
	minY, maxY := tr.Y[0], tr.Y[0]
	for i := range tr.X {
		minX = math.Min(minX, tr.X[i])
		maxX = math.Max(maxX, tr.X[i])
		minY = math.Min(minY, tr.Y[i])
		maxY = math.Max(maxY, tr.Y[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	minY -= rangeY * 0.05
	rangeX *= 1.1
	rangeY *= 1.1

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	cell := func(x, y float64) (int, int) {
		col := int((x - minX) / rangeX * float64(width-1))
		row := height - 1 - int((y-minY)/rangeY*float64(height-1))
		return row, col
	}

	for i := range tr.X {
		row, col := cell(tr.X[i], tr.Y[i])
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	row, col := cell(tr.X[0], tr.Y[0])
	if row >= 0 && row < height && col >= 0 && col < width {
		canvas[row][col] = 'S'
	}
	last := tr.Len() - 1
	row, col = cell(tr.X[last], tr.Y[last])
	if row >= 0 && row < height && col >= 0 && col < width {
		canvas[row][col] = 'E'
	}

	var sb strings.Builder
	for _, r := range canvas {
		sb.WriteString(strings.TrimRight(string(r), " "))
		sb.WriteRune('\n')
	}
	return sb.String()
}
