package ml

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var (
	NoFitErr      = errors.New("model not fitted")
	DegenerateErr = errors.New("degenerate training data")
)

// Classifier fits on a feature matrix and predicts class ids.
type Classifier interface {
	Fit(x *mat.Dense, y []int) error
	Predict(x *mat.Dense) ([]int, error)
	Probs(x *mat.Dense) (*mat.Dense, error)
}

// Rows gathers the given rows of x into a new matrix.
func Rows(x *mat.Dense, idx []int) *mat.Dense {
	_, d := x.Dims()
	out := mat.NewDense(len(idx), d, nil)
	for i, id := range idx {
		out.SetRow(i, x.RawRowView(id))
	}
	return out
}

// Select gathers the given elements of y into a new slice.
func Select(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, id := range idx {
		out[i] = y[id]
	}
	return out
}

// RawRows exposes the matrix as a slice of row vectors.
func RawRows(x *mat.Dense) [][]float64 {
	n, _ := x.Dims()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = x.RawRowView(i)
	}
	return rows
}

// Col copies the given column of x into a new slice.
func Col(x *mat.Dense, j int) []float64 {
	n, _ := x.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = x.At(i, j)
	}
	return out
}

// Classes returns the distinct class ids in ascending order.
func Classes(y []int) []int {
	seen := make(map[int]struct{})
	classes := make([]int, 0)
	for _, c := range y {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			classes = append(classes, c)
		}
	}
	sort.Ints(classes)
	return classes
}
