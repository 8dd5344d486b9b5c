package viz

import (
	"math"
	"strings"
)

const brailleBlank = 0x2800

// Each braille cell is two dots wide and four tall.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Plan is a braille canvas over a patch of water, +X to the right and +Y up.
// Both axes share one scale so turning circles stay round.
type Plan struct {
	cols, rows int
	cells      [][]rune

	minX, minY float64
	perDot     float64 // meters per dot
}

// NewPlan sizes a canvas of cols x rows cells to fit every point of xs, ys.
func NewPlan(cols, rows int, xs, ys []float64) *Plan {
	p := &Plan{cols: cols, rows: rows, cells: make([][]rune, rows), perDot: 1}
	for i := range p.cells {
		p.cells[i] = []rune(strings.Repeat(string(rune(brailleBlank)), cols))
	}
	if len(xs) == 0 || cols < 1 || rows < 1 {
		return p
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}

	dotsX, dotsY := float64(cols*2-1), float64(rows*4-1)
	p.perDot = math.Max((maxX-minX)/math.Max(dotsX, 1), (maxY-minY)/math.Max(dotsY, 1))
	if p.perDot == 0 {
		p.perDot = 1
	}
	// center the shorter axis
	p.minX = minX - (dotsX*p.perDot-(maxX-minX))/2
	p.minY = minY - (dotsY*p.perDot-(maxY-minY))/2
	return p
}

// Scale is the number of meters one dot covers.
func (p *Plan) Scale() float64 { return p.perDot }

func (p *Plan) dot(x, y float64) (int, int) {
	dx := int(math.Round((x - p.minX) / p.perDot))
	dy := p.rows*4 - 1 - int(math.Round((y-p.minY)/p.perDot))
	return dx, dy
}

func (p *Plan) set(dx, dy int) {
	if dx < 0 || dy < 0 {
		return
	}
	col, row := dx/2, dy/4
	if col >= p.cols || row >= p.rows {
		return
	}
	p.cells[row][col] |= dotBits[dy%4][dx%2]
}

// Point marks a single position.
func (p *Plan) Point(x, y float64) {
	p.set(p.dot(x, y))
}

// Line joins two positions with Bresenham's algorithm.
func (p *Plan) Line(x0, y0, x1, y1 float64) {
	ax, ay := p.dot(x0, y0)
	bx, by := p.dot(x1, y1)

	dx, dy := absInt(bx-ax), -absInt(by-ay)
	sx, sy := 1, 1
	if ax > bx {
		sx = -1
	}
	if ay > by {
		sy = -1
	}
	e := dx + dy
	for {
		p.set(ax, ay)
		if ax == bx && ay == by {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			ax += sx
		}
		if e2 <= dx {
			e += dx
			ay += sy
		}
	}
}

// Path draws the polyline through xs, ys.
func (p *Plan) Path(xs, ys []float64) {
	if len(xs) == 1 {
		p.Point(xs[0], ys[0])
	}
	for i := 1; i < len(xs); i++ {
		p.Line(xs[i-1], ys[i-1], xs[i], ys[i])
	}
}

func (p *Plan) String() string {
	var b strings.Builder
	for _, row := range p.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
