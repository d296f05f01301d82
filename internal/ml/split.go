package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

const (
	defaultSplits = 10
	defaultFolds  = 5
)

// Fold is one train/test partition of row indices.
type Fold struct {
	Train []int
	Test  []int
}

// ShuffleSplit yields repeated randomised train/test partitions with a fixed
// train fraction. The partitions are drawn from a seeded source, so the same
// seed reproduces the same sequence.
type ShuffleSplit struct {
	Splits int
	Train  float64
	Seed   int64
}

// Split partitions the indices [0,n).
func (s ShuffleSplit) Split(n int) ([]Fold, error) {
	if n < 2 {
		return nil, fmt.Errorf("cannot split %d rows: %w", n, DegenerateErr)
	}

	splits := s.Splits
	if splits <= 0 {
		splits = defaultSplits
	}

	nTrain := int(math.Floor(s.Train * float64(n)))
	if nTrain < 1 {
		nTrain = 1
	}
	if nTrain > n-1 {
		nTrain = n - 1
	}

	rnd := rand.New(rand.NewSource(s.Seed))
	folds := make([]Fold, splits)
	for i := range folds {
		perm := rnd.Perm(n)
		folds[i] = Fold{
			Train: perm[:nTrain],
			Test:  perm[nTrain:],
		}
	}
	return folds, nil
}

// StratifiedKFold yields k shuffled folds preserving the class distribution,
// per class fold sizes differ by at most one.
type StratifiedKFold struct {
	Folds int
	Seed  int64
}

// Split partitions the indices of y by class.
func (s StratifiedKFold) Split(y []int) ([]Fold, error) {
	k := s.Folds
	if k <= 1 {
		k = defaultFolds
	}
	n := len(y)
	if n < k {
		return nil, fmt.Errorf("cannot split %d rows into %d folds: %w", n, k, DegenerateErr)
	}

	byClass := make(map[int][]int)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	rnd := rand.New(rand.NewSource(s.Seed))
	assigned := make([]int, n)
	next := 0
	for _, c := range classes {
		idx := byClass[c]
		rnd.Shuffle(len(idx), func(i, j int) {
			idx[i], idx[j] = idx[j], idx[i]
		})
		for _, id := range idx {
			assigned[id] = next % k
			next++
		}
	}

	folds := make([]Fold, k)
	for f := 0; f < k; f++ {
		train := make([]int, 0, n)
		test := make([]int, 0, n/k+1)
		for i := 0; i < n; i++ {
			if assigned[i] == f {
				test = append(test, i)
			} else {
				train = append(train, i)
			}
		}
		folds[f] = Fold{Train: train, Test: test}
	}
	return folds, nil
}
