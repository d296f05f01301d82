package ml

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func coverage(t *testing.T, n int, fold Fold) {
	t.Helper()
	seen := make(map[int]int)
	for _, i := range fold.Train {
		seen[i]++
	}
	for _, i := range fold.Test {
		seen[i]++
	}
	assert.Equal(t, n, len(seen))
	for i, c := range seen {
		assert.Equal(t, 1, c, "index %d appears %d times", i, c)
		assert.True(t, i >= 0 && i < n)
	}
}

func TestShuffleSplit_Split(t *testing.T) {

	type test struct {
		n      int
		splits int
		train  float64
		nTrain int
	}

	tests := map[string]test{
		"half": {
			n:      20,
			splits: 10,
			train:  0.5,
			nTrain: 10,
		},
		"floor": {
			n:      5,
			splits: 3,
			train:  0.5,
			nTrain: 2,
		},
		"clamp-low": {
			n:      10,
			splits: 2,
			train:  0.01,
			nTrain: 1,
		},
		"clamp-high": {
			n:      4,
			splits: 2,
			train:  0.99,
			nTrain: 3,
		},
		"default-splits": {
			n:      6,
			splits: 0,
			train:  0.5,
			nTrain: 3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ss := ShuffleSplit{Splits: tt.splits, Train: tt.train, Seed: 2}
			folds, err := ss.Split(tt.n)
			assert.NoError(t, err)

			expected := tt.splits
			if expected <= 0 {
				expected = 10
			}
			assert.Equal(t, expected, len(folds))

			for _, fold := range folds {
				assert.Equal(t, tt.nTrain, len(fold.Train))
				assert.Equal(t, tt.n-tt.nTrain, len(fold.Test))
				coverage(t, tt.n, fold)
			}
		})
	}
}

func TestShuffleSplit_Reproducible(t *testing.T) {
	ss := ShuffleSplit{Splits: 10, Train: 0.3, Seed: 2}

	first, err := ss.Split(50)
	assert.NoError(t, err)
	second, err := ss.Split(50)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestShuffleSplit_TooSmall(t *testing.T) {
	ss := ShuffleSplit{Splits: 2, Train: 0.5, Seed: 2}
	_, err := ss.Split(1)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, DegenerateErr))
}

func TestStratifiedKFold_Split(t *testing.T) {

	// 12 of class 0, 8 of class 1
	y := make([]int, 0, 20)
	for i := 0; i < 12; i++ {
		y = append(y, 0)
	}
	for i := 0; i < 8; i++ {
		y = append(y, 1)
	}

	kf := StratifiedKFold{Folds: 4, Seed: 11}
	folds, err := kf.Split(y)
	assert.NoError(t, err)
	assert.Equal(t, 4, len(folds))

	testCount := make(map[int]int)
	for _, fold := range folds {
		coverage(t, len(y), fold)

		perClass := map[int]int{}
		for _, i := range fold.Test {
			perClass[y[i]]++
			testCount[i]++
		}
		// exact per class balance for these counts
		assert.Equal(t, 3, perClass[0])
		assert.Equal(t, 2, perClass[1])
	}

	// each index lands in exactly one test fold
	assert.Equal(t, len(y), len(testCount))
	for _, c := range testCount {
		assert.Equal(t, 1, c)
	}
}

func TestStratifiedKFold_UnevenClasses(t *testing.T) {

	y := []int{0, 0, 0, 0, 0, 1, 1, 2, 2, 2}

	kf := StratifiedKFold{Folds: 3, Seed: 5}
	folds, err := kf.Split(y)
	assert.NoError(t, err)

	for _, fold := range folds {
		coverage(t, len(y), fold)

		perClass := map[int]int{}
		for _, i := range fold.Test {
			perClass[y[i]]++
		}
		// fold sizes per class differ by at most one
		assert.True(t, perClass[0] >= 1 && perClass[0] <= 2)
		assert.True(t, perClass[1] <= 1)
		assert.Equal(t, 1, perClass[2])
	}
}

func TestStratifiedKFold_Reproducible(t *testing.T) {

	y := make([]int, 30)
	for i := range y {
		y[i] = i % 3
	}

	kf := StratifiedKFold{Folds: 5, Seed: 42}
	first, err := kf.Split(y)
	assert.NoError(t, err)
	second, err := kf.Split(y)
	assert.NoError(t, err)

	for i := range first {
		sort.Ints(first[i].Test)
		sort.Ints(second[i].Test)
	}
	assert.Equal(t, first, second)
}

func TestStratifiedKFold_TooSmall(t *testing.T) {
	kf := StratifiedKFold{Folds: 5, Seed: 1}
	_, err := kf.Split([]int{0, 1})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, DegenerateErr))
}
