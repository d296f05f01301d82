package ml

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Binarize turns label sets into a binary indicator matrix, one row per set.
// With classes > 0 the columns are fixed to the ids [0,classes) and ids outside
// that range are ignored. Otherwise the columns follow the sorted distinct
// labels across all sets, so repeated calls on the same input line up.
func Binarize(sets [][]int, classes int) *mat.Dense {
	if classes > 0 {
		out := mat.NewDense(len(sets), classes, nil)
		for i, set := range sets {
			for _, l := range set {
				if l >= 0 && l < classes {
					out.Set(i, l, 1)
				}
			}
		}
		return out
	}

	vocab := make(map[int]int)
	labels := make([]int, 0)
	for _, set := range sets {
		for _, l := range set {
			if _, ok := vocab[l]; !ok {
				vocab[l] = 0
				labels = append(labels, l)
			}
		}
	}
	sort.Ints(labels)
	for i, l := range labels {
		vocab[l] = i
	}

	out := mat.NewDense(len(sets), len(labels), nil)
	for i, set := range sets {
		for _, l := range set {
			out.Set(i, vocab[l], 1)
		}
	}
	return out
}
