package ml

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// OneVsRest lifts a binary solver to multi-class and multi-label problems
// by fitting one binary model per class.
type OneVsRest struct {
	solver  Solver
	classes []int
	models  []Binary
}

// NewOneVsRest creates a one-vs-rest classifier on top of the given solver.
func NewOneVsRest(solver Solver) *OneVsRest {
	return &OneVsRest{
		solver: solver,
	}
}

// Classes returns the class ids the model was fitted on, in ascending order.
func (o *OneVsRest) Classes() []int {
	return o.classes
}

// Fit trains one binary model per distinct class in y. A random slice of
// the data may well carry a single class, so uniform targets fall back to
// a constant score instead of failing the whole fit.
func (o *OneVsRest) Fit(x *mat.Dense, y []int) error {
	n, _ := x.Dims()
	if n == 0 || n != len(y) {
		return fmt.Errorf("inconsistent training size %d vs %d: %w", n, len(y), DegenerateErr)
	}

	classes := Classes(y)
	models := make([]Binary, len(classes))
	for m, class := range classes {
		targets := make([]int, n)
		for i, c := range y {
			if c == class {
				targets[i] = 1
			}
		}
		model, err := o.fit(x, targets)
		if err != nil {
			return fmt.Errorf("could not fit model for class %d: %w", class, err)
		}
		models[m] = model
	}

	o.classes = classes
	o.models = models
	return nil
}

// FitIndicator trains one binary model per column of the indicator matrix y.
func (o *OneVsRest) FitIndicator(x *mat.Dense, y *mat.Dense) error {
	n, _ := x.Dims()
	rows, width := y.Dims()
	if n != rows {
		return fmt.Errorf("inconsistent training size %d vs %d: %w", n, rows, DegenerateErr)
	}
	if width < 2 {
		return fmt.Errorf("need at least two label columns, got %d: %w", width, DegenerateErr)
	}

	classes := make([]int, width)
	models := make([]Binary, width)
	for j := 0; j < width; j++ {
		targets := make([]int, n)
		for i := 0; i < n; i++ {
			if y.At(i, j) > 0 {
				targets[i] = 1
			}
		}
		model, err := o.fit(x, targets)
		if err != nil {
			return fmt.Errorf("could not fit model for label %d: %w", j, err)
		}
		classes[j] = j
		models[j] = model
	}

	o.classes = classes
	o.models = models
	return nil
}

// fit solves the binary subproblem, degrading to a constant score when
// the targets carry a single value and leave the solver nothing to learn.
func (o *OneVsRest) fit(x *mat.Dense, targets []int) (Binary, error) {
	positives := 0
	for _, t := range targets {
		if t > 0 {
			positives++
		}
	}
	switch positives {
	case 0:
		return constant(0), nil
	case len(targets):
		return constant(1), nil
	}
	return o.solver.Solve(x, targets)
}

// constant scores every input with the same value.
type constant float64

func (c constant) Score(_ []float64) float64 {
	return float64(c)
}

// Scores returns the raw per-class probabilities, one column per class.
func (o *OneVsRest) Scores(x *mat.Dense) (*mat.Dense, error) {
	if len(o.models) == 0 {
		return nil, NoFitErr
	}
	n, _ := x.Dims()
	scores := mat.NewDense(n, len(o.models), nil)
	for i := 0; i < n; i++ {
		row := x.RawRowView(i)
		for m, model := range o.models {
			scores.Set(i, m, model.Score(row))
		}
	}
	return scores, nil
}

// Probs returns the per-class probabilities normalised to sum to one per row.
func (o *OneVsRest) Probs(x *mat.Dense) (*mat.Dense, error) {
	scores, err := o.Scores(x)
	if err != nil {
		return nil, err
	}
	n, k := scores.Dims()
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < k; j++ {
			sum += scores.At(i, j)
		}
		if sum == 0 {
			for j := 0; j < k; j++ {
				scores.Set(i, j, 1/float64(k))
			}
			continue
		}
		for j := 0; j < k; j++ {
			scores.Set(i, j, scores.At(i, j)/sum)
		}
	}
	return scores, nil
}

// Predict returns the class with the highest probability per row.
func (o *OneVsRest) Predict(x *mat.Dense) ([]int, error) {
	scores, err := o.Scores(x)
	if err != nil {
		return nil, err
	}
	n, k := scores.Dims()
	pred := make([]int, n)
	for i := 0; i < n; i++ {
		best := 0
		for j := 1; j < k; j++ {
			if scores.At(i, j) > scores.At(i, best) {
				best = j
			}
		}
		pred[i] = o.classes[best]
	}
	return pred, nil
}
