package ml

import (
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Accuracy is the fraction of matching predictions.
func Accuracy(truth, pred []int) float64 {
	if len(truth) == 0 || len(truth) != len(pred) {
		return 0
	}
	hits := 0
	for i, t := range truth {
		if pred[i] == t {
			hits++
		}
	}
	return float64(hits) / float64(len(truth))
}

type confusion struct {
	tp, fp, fn float64
}

func confusionByClass(truth, pred []int) map[int]*confusion {
	counts := make(map[int]*confusion)
	track := func(c int) *confusion {
		if _, ok := counts[c]; !ok {
			counts[c] = &confusion{}
		}
		return counts[c]
	}
	for i, t := range truth {
		p := pred[i]
		if p == t {
			track(t).tp++
			continue
		}
		track(t).fn++
		track(p).fp++
	}
	return counts
}

// F1Micro is the f1 score with globally counted true/false positives.
func F1Micro(truth, pred []int) float64 {
	counts := confusionByClass(truth, pred)
	var tp, fp, fn float64
	for _, c := range counts {
		tp += c.tp
		fp += c.fp
		fn += c.fn
	}
	return f1(tp, fp, fn)
}

// F1Macro is the unweighted mean of the per class f1 scores.
func F1Macro(truth, pred []int) float64 {
	counts := confusionByClass(truth, pred)
	if len(counts) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		sum += f1(c.tp, c.fp, c.fn)
	}
	return sum / float64(len(counts))
}

func f1(tp, fp, fn float64) float64 {
	denom := 2*tp + fp + fn
	if denom == 0 {
		return 0
	}
	return 2 * tp / denom
}

// AccuracyIndicator is the exact match ratio between indicator matrices.
func AccuracyIndicator(truth, pred *mat.Dense) float64 {
	n, k := truth.Dims()
	if n == 0 {
		return 0
	}
	hits := 0
	for i := 0; i < n; i++ {
		match := true
		for j := 0; j < k; j++ {
			if truth.At(i, j) != pred.At(i, j) {
				match = false
				break
			}
		}
		if match {
			hits++
		}
	}
	return float64(hits) / float64(n)
}

func confusionByColumn(truth, pred *mat.Dense) []confusion {
	n, k := truth.Dims()
	counts := make([]confusion, k)
	for j := 0; j < k; j++ {
		for i := 0; i < n; i++ {
			t := truth.At(i, j) > 0
			p := pred.At(i, j) > 0
			switch {
			case t && p:
				counts[j].tp++
			case !t && p:
				counts[j].fp++
			case t && !p:
				counts[j].fn++
			}
		}
	}
	return counts
}

// F1MicroIndicator is the micro averaged f1 score over indicator columns.
func F1MicroIndicator(truth, pred *mat.Dense) float64 {
	counts := confusionByColumn(truth, pred)
	var tp, fp, fn float64
	for _, c := range counts {
		tp += c.tp
		fp += c.fp
		fn += c.fn
	}
	return f1(tp, fp, fn)
}

// F1MacroIndicator is the mean of the per column f1 scores.
func F1MacroIndicator(truth, pred *mat.Dense) float64 {
	counts := confusionByColumn(truth, pred)
	if len(counts) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		sum += f1(c.tp, c.fp, c.fn)
	}
	return sum / float64(len(counts))
}

// AUC is the area under the ROC curve for the given positive class scores.
// It returns 0 when only one class is present in the ground truth.
func AUC(truth []int, scores []float64, positive int) float64 {
	if len(truth) == 0 || len(truth) != len(scores) {
		return 0
	}

	y := make([]float64, len(scores))
	copy(y, scores)
	classes := make([]bool, len(truth))
	positives := 0
	for i, t := range truth {
		if t == positive {
			classes[i] = true
			positives++
		}
	}
	if positives == 0 || positives == len(truth) {
		return 0
	}

	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}
