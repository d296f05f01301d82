package ml

import (
	"fmt"

	randomforest "github.com/malaschitz/randomForest"
	"gonum.org/v1/gonum/mat"
)

// Forest adapts the random forest to the Classifier surface.
type Forest struct {
	trees   int
	classes []int
	forest  *randomforest.Forest
}

// NewForest creates a random forest classifier with n trees.
func NewForest(n int) *Forest {
	return &Forest{
		trees: n,
	}
}

// Fit trains the forest, mapping the class ids to a compact range.
func (f *Forest) Fit(x *mat.Dense, y []int) error {
	n, _ := x.Dims()
	if n != len(y) {
		return fmt.Errorf("inconsistent training size %d vs %d: %w", n, len(y), DegenerateErr)
	}

	classes := Classes(y)
	if len(classes) < 2 {
		return fmt.Errorf("need at least two classes, got %d: %w", len(classes), DegenerateErr)
	}
	compact := make(map[int]int, len(classes))
	for i, c := range classes {
		compact[c] = i
	}

	yy := make([]int, n)
	for i, c := range y {
		yy[i] = compact[c]
	}

	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: RawRows(x), Class: yy}
	forest.Train(f.trees)

	f.classes = classes
	f.forest = forest
	return nil
}

// Probs returns the vote share per class, one column per class.
func (f *Forest) Probs(x *mat.Dense) (*mat.Dense, error) {
	if f.forest == nil {
		return nil, NoFitErr
	}
	n, _ := x.Dims()
	probs := mat.NewDense(n, len(f.classes), nil)
	for i := 0; i < n; i++ {
		votes := f.forest.Vote(x.RawRowView(i))
		for j := 0; j < len(f.classes) && j < len(votes); j++ {
			probs.Set(i, j, votes[j])
		}
	}
	return probs, nil
}

// Predict returns the class with the most votes per row.
func (f *Forest) Predict(x *mat.Dense) ([]int, error) {
	probs, err := f.Probs(x)
	if err != nil {
		return nil, err
	}
	n, k := probs.Dims()
	pred := make([]int, n)
	for i := 0; i < n; i++ {
		best := 0
		for j := 1; j < k; j++ {
			if probs.At(i, j) > probs.At(i, best) {
				best = j
			}
		}
		pred[i] = f.classes[best]
	}
	return pred, nil
}
