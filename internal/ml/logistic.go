package ml

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

const (
	defaultC       = 1.0
	defaultTol     = 0.0001
	defaultMaxIter = 100
)

// Binary produces a positive class probability for a feature vector.
type Binary interface {
	Score(x []float64) float64
}

// Solver trains a binary classifier from feature rows and 0/1 targets.
type Solver interface {
	Solve(x *mat.Dense, y []int) (Binary, error)
}

// QuasiNewton trains a regularised binary logistic model with the lbfgs optimiser.
type QuasiNewton struct {
	C       float64
	Tol     float64
	MaxIter int
}

func (q QuasiNewton) Solve(x *mat.Dense, y []int) (Binary, error) {
	n, d := x.Dims()
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("inconsistent training size %d vs %d: %w", n, len(y), DegenerateErr)
	}

	c := q.C
	if c <= 0 {
		c = defaultC
	}
	tol := q.Tol
	if tol <= 0 {
		tol = defaultTol
	}
	maxIter := q.MaxIter
	if maxIter <= 0 {
		maxIter = defaultMaxIter
	}

	// signed targets for the log loss
	signed := make([]float64, n)
	for i, t := range y {
		if t > 0 {
			signed[i] = 1
		} else {
			signed[i] = -1
		}
	}

	problem := optimize.Problem{
		Func: func(w []float64) float64 {
			loss := 0.0
			for i := 0; i < n; i++ {
				row := x.RawRowView(i)
				z := w[d]
				for j := 0; j < d; j++ {
					z += w[j] * row[j]
				}
				loss += logLoss(signed[i] * z)
			}
			// the intercept stays unregularised
			for j := 0; j < d; j++ {
				loss += w[j] * w[j] / (2 * c)
			}
			return loss
		},
		Grad: func(grad, w []float64) {
			for j := range grad {
				grad[j] = 0
			}
			for i := 0; i < n; i++ {
				row := x.RawRowView(i)
				z := w[d]
				for j := 0; j < d; j++ {
					z += w[j] * row[j]
				}
				g := -signed[i] * sigmoid(-signed[i]*z)
				for j := 0; j < d; j++ {
					grad[j] += g * row[j]
				}
				grad[d] += g
			}
			for j := 0; j < d; j++ {
				grad[j] += w[j] / c
			}
		},
	}

	w := make([]float64, d+1)
	settings := &optimize.Settings{
		GradientThreshold: tol,
		MajorIterations:   maxIter,
	}

	result, err := optimize.Minimize(problem, w, settings, &optimize.LBFGS{})
	if err != nil {
		if result == nil {
			return nil, fmt.Errorf("could not fit logistic model: %w", err)
		}
		log.Warn().Err(err).Str("status", fmt.Sprintf("%v", result.Status)).Msg("optimisation stopped early")
	}

	weights := make([]float64, d)
	copy(weights, result.X[:d])

	return linearModel{w: weights, bias: result.X[d]}, nil
}

type linearModel struct {
	w    []float64
	bias float64
}

func (m linearModel) Score(x []float64) float64 {
	z := m.bias
	for j, w := range m.w {
		z += w * x[j]
	}
	return sigmoid(z)
}

// sigmoid avoids overflow for large negative arguments.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// logLoss computes log(1+exp(-z)) in a numerically stable way.
func logLoss(z float64) float64 {
	if z > 0 {
		return math.Log1p(math.Exp(-z))
	}
	return -z + math.Log1p(math.Exp(z))
}
