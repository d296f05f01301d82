package ml

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ParamGrid spans the hyper parameter search space for the logistic solver.
type ParamGrid struct {
	C   []float64
	Tol []float64
}

// DefaultGrid covers 20 log-spaced regularisation strengths
// and three tolerance levels.
func DefaultGrid() ParamGrid {
	return ParamGrid{
		C:   floats.LogSpan(make([]float64, 20), 0.0001, 10000),
		Tol: []float64{0.0001, 0.001, 0.01},
	}
}

// Params is one point of the search space.
type Params struct {
	C   float64 `json:"c"`
	Tol float64 `json:"tol"`
}

// GridSearch picks the parameter combination with the best mean accuracy
// across the inner folds and refits it on the full input.
// Ties resolve to the earliest combination, so a fixed inner seed
// makes the selection reproducible.
type GridSearch struct {
	Grid    ParamGrid
	Inner   StratifiedKFold
	MaxIter int
}

// Fit searches the grid on x,y and returns the refitted best model.
func (g GridSearch) Fit(x *mat.Dense, y []int) (*OneVsRest, Params, error) {
	folds, err := g.Inner.Split(y)
	if err != nil {
		return nil, Params{}, fmt.Errorf("could not split for parameter search: %w", err)
	}

	grid := g.Grid
	if len(grid.C) == 0 || len(grid.Tol) == 0 {
		grid = DefaultGrid()
	}

	best := Params{}
	bestScore := -1.0
	for _, c := range grid.C {
		for _, tol := range grid.Tol {
			score := 0.0
			for _, fold := range folds {
				clf := NewOneVsRest(QuasiNewton{C: c, Tol: tol, MaxIter: g.MaxIter})
				if err := clf.Fit(Rows(x, fold.Train), Select(y, fold.Train)); err != nil {
					return nil, Params{}, fmt.Errorf("could not fit candidate c=%f tol=%f: %w", c, tol, err)
				}
				pred, err := clf.Predict(Rows(x, fold.Test))
				if err != nil {
					return nil, Params{}, fmt.Errorf("could not predict candidate c=%f tol=%f: %w", c, tol, err)
				}
				score += Accuracy(Select(y, fold.Test), pred)
			}
			score /= float64(len(folds))
			if score > bestScore {
				bestScore = score
				best = Params{C: c, Tol: tol}
			}
		}
	}

	log.Debug().
		Float64("c", best.C).
		Float64("tol", best.Tol).
		Float64("score", bestScore).
		Msg("parameter fitting done")

	model := NewOneVsRest(QuasiNewton{C: best.C, Tol: best.Tol, MaxIter: g.MaxIter})
	if err := model.Fit(x, y); err != nil {
		return nil, Params{}, fmt.Errorf("could not refit best model: %w", err)
	}
	return model, best, nil
}
