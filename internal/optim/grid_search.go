package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/boatsim/internal/experiment"
)

// Builder makes a ready-to-run experiment for one point of the grid.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// GridSearch tries every combination of the parameter ranges and keeps the
// one with the best value of a result metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64

	// Maximize flips the objective; the default minimizes.
	Maximize bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Candidate is one evaluated grid point.
type Candidate struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("grid search: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	if g.Maximize {
		best = math.Inf(-1)
	}
	var bestParams map[string]float64
	var lastErr error

	err := g.walk(ctx, 0, make(map[string]float64), func(c Candidate) {
		if c.Err != nil {
			lastErr = c.Err
			return
		}
		if g.better(c.Value, best) {
			best = c.Value
			bestParams = c.Params
		}
	}, build, metricName)
	if err != nil {
		return bestParams, best, err
	}

	if bestParams == nil {
		if lastErr == nil {
			lastErr = fmt.Errorf("grid search: metric %s never reported", metricName)
		}
		return nil, 0, lastErr
	}
	return bestParams, best, nil
}

func (g *GridSearch) better(v, best float64) bool {
	if math.IsNaN(v) {
		return false
	}
	if g.Maximize {
		return v > best
	}
	return v < best
}

func (g *GridSearch) walk(
	ctx context.Context,
	depth int,
	current map[string]float64,
	visit func(Candidate),
	build Builder,
	metricName string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		visit(g.evaluate(ctx, current, build, metricName))
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.walk(ctx, depth+1, newParams, visit, build, metricName); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) evaluate(ctx context.Context, params map[string]float64, build Builder, metricName string) Candidate {
	c := Candidate{Params: params}

	exp, err := build(params)
	if err != nil {
		c.Err = err
		return c
	}
	result, err := exp.Run(ctx)
	if err != nil {
		c.Err = err
		return c
	}

	val, ok := result.Metrics[metricName]
	if !ok {
		c.Err = fmt.Errorf("grid search: unknown metric %s", metricName)
		return c
	}
	c.Value = val
	return c
}
