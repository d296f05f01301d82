package eval

import (
	"fmt"
	"sort"

	"github.com/drakos74/free-embed/internal/ml"
	"gonum.org/v1/gonum/mat"
)

// Metrics is one row of classification scores.
type Metrics struct {
	Accuracy float64 `json:"accuracy"`
	F1Micro  float64 `json:"f1micro"`
	F1Macro  float64 `json:"f1macro"`
	AUC      float64 `json:"auc"`
}

// predictor evaluates one train/test fold of the labelled embedding rows.
type predictor interface {
	evaluate(x *mat.Dense, fold ml.Fold) (Metrics, error)
	size() int
}

// singleLabel fits a fresh classifier per fold and scores plain class ids.
type singleLabel struct {
	y        []int
	classes  int
	positive int
	factory  func() ml.Classifier
}

func newSingleLabel(y []int, classes int, factory func() ml.Classifier) *singleLabel {
	positive := 0
	if classes == 2 {
		ids := ml.Classes(y)
		positive = ids[1]
	}
	return &singleLabel{
		y:        y,
		classes:  classes,
		positive: positive,
		factory:  factory,
	}
}

func (p *singleLabel) size() int {
	return len(p.y)
}

func (p *singleLabel) evaluate(x *mat.Dense, fold ml.Fold) (Metrics, error) {
	clf := p.factory()

	xtr := ml.Rows(x, fold.Train)
	ytr := ml.Select(p.y, fold.Train)
	if err := clf.Fit(xtr, ytr); err != nil {
		return Metrics{}, fmt.Errorf("could not fit classifier: %w", err)
	}

	xte := ml.Rows(x, fold.Test)
	yte := ml.Select(p.y, fold.Test)
	pred, err := clf.Predict(xte)
	if err != nil {
		return Metrics{}, fmt.Errorf("could not predict: %w", err)
	}
	probs, err := clf.Probs(xte)
	if err != nil {
		return Metrics{}, fmt.Errorf("could not compute probabilities: %w", err)
	}

	return scoreSingle(yte, pred, probs, p.classes, p.positive), nil
}

// scoreSingle computes the metric row for single-label predictions.
// The auc stays 0 unless the dataset carries exactly two classes,
// in which case the probability column of the larger class id scores it.
// A fold whose training slice held a single class yields one probability
// column only, its auc stays at the sentinel as well.
func scoreSingle(yte, pred []int, probs *mat.Dense, classes, positive int) Metrics {
	m := Metrics{
		Accuracy: ml.Accuracy(yte, pred),
		F1Micro:  ml.F1Micro(yte, pred),
		F1Macro:  ml.F1Macro(yte, pred),
	}
	if _, cols := probs.Dims(); classes == 2 && cols == 2 {
		m.AUC = ml.AUC(yte, ml.Col(probs, 1), positive)
	}
	return m
}

// multiLabel fits one binary model per label column and keeps the top
// scored labels per test node.
type multiLabel struct {
	y       *mat.Dense
	classes int
	mode    TopKMode
	k       int
	cut     float64
	factory func() *ml.OneVsRest
}

func (p *multiLabel) size() int {
	n, _ := p.y.Dims()
	return n
}

func (p *multiLabel) evaluate(x *mat.Dense, fold ml.Fold) (Metrics, error) {
	clf := p.factory()

	xtr := ml.Rows(x, fold.Train)
	ytr := indicatorRows(p.y, fold.Train)
	if err := clf.FitIndicator(xtr, ytr); err != nil {
		return Metrics{}, fmt.Errorf("could not fit classifier: %w", err)
	}

	xte := ml.Rows(x, fold.Test)
	yte := indicatorRows(p.y, fold.Test)
	scores, err := clf.Scores(xte)
	if err != nil {
		return Metrics{}, fmt.Errorf("could not compute scores: %w", err)
	}

	pred := p.topLabels(scores, yte)

	m := Metrics{
		Accuracy: ml.AccuracyIndicator(yte, pred),
		F1Micro:  ml.F1MicroIndicator(yte, pred),
		F1Macro:  ml.F1MacroIndicator(yte, pred),
	}
	if p.classes == 2 {
		m.AUC = ml.AUC(indicatorCol(yte, 1), ml.Col(scores, 1), 1)
	}
	return m, nil
}

// topLabels converts the per label scores into an indicator prediction
// aligned with the columns of the ground truth.
func (p *multiLabel) topLabels(scores, truth *mat.Dense) *mat.Dense {
	n, width := truth.Dims()
	sets := make([][]int, n)
	for i := 0; i < n; i++ {
		if p.mode == Threshold {
			set := make([]int, 0)
			for j := 0; j < width; j++ {
				if scores.At(i, j) >= p.cut {
					set = append(set, j)
				}
			}
			sets[i] = set
			continue
		}

		k := p.k
		if p.mode == OracleK {
			k = 0
			for j := 0; j < width; j++ {
				if truth.At(i, j) > 0 {
					k++
				}
			}
		}
		sets[i] = topIndices(scores.RawRowView(i), k)
	}
	return ml.Binarize(sets, width)
}

// topIndices returns the indices of the k highest scores.
func topIndices(scores []float64, k int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if scores[idx[a]] == scores[idx[b]] {
			return idx[a] < idx[b]
		}
		return scores[idx[a]] < scores[idx[b]]
	})
	if k > len(idx) {
		k = len(idx)
	}
	if k <= 0 {
		return []int{}
	}
	return idx[len(idx)-k:]
}

func indicatorRows(y *mat.Dense, idx []int) *mat.Dense {
	_, width := y.Dims()
	out := mat.NewDense(len(idx), width, nil)
	for i, id := range idx {
		out.SetRow(i, y.RawRowView(id))
	}
	return out
}

func indicatorCol(y *mat.Dense, j int) []int {
	n, _ := y.Dims()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		if y.At(i, j) > 0 {
			out[i] = 1
		}
	}
	return out
}
