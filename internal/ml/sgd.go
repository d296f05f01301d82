package ml

import (
	"fmt"
	"io/ioutil"

	"github.com/cdipaolo/goml/base"
	"github.com/cdipaolo/goml/linear"
	"gonum.org/v1/gonum/mat"
)

const (
	defaultAlpha         = 0.1
	defaultGradAscentMax = 1000
)

// GradientAscent trains the binary logistic model with goml's batch gradient ascent.
// It trades the tighter convergence of the quasi-newton solver for cheap iterations.
type GradientAscent struct {
	Alpha   float64
	Reg     float64
	MaxIter int
}

func (g GradientAscent) Solve(x *mat.Dense, y []int) (Binary, error) {
	n, _ := x.Dims()
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("inconsistent training size %d vs %d: %w", n, len(y), DegenerateErr)
	}

	alpha := g.Alpha
	if alpha <= 0 {
		alpha = defaultAlpha
	}
	maxIter := g.MaxIter
	if maxIter <= 0 {
		maxIter = defaultGradAscentMax
	}

	targets := make([]float64, n)
	for i, t := range y {
		if t > 0 {
			targets[i] = 1
		}
	}

	model := linear.NewLogistic(base.BatchGA, alpha, g.Reg, maxIter, RawRows(x), targets)
	model.Output = ioutil.Discard

	if err := model.Learn(); err != nil {
		return nil, fmt.Errorf("could not fit logistic model: %w", err)
	}

	return gomlModel{model: model}, nil
}

type gomlModel struct {
	model *linear.Logistic
}

func (m gomlModel) Score(x []float64) float64 {
	p, err := m.model.Predict(x)
	if err != nil || len(p) == 0 {
		return 0
	}
	return p[0]
}
