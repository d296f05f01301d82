package eval

import (
	"fmt"

	"github.com/drakos74/free-embed/internal/ml"
)

// Scheme selects how an embedding gets evaluated.
type Scheme string

const (
	// SchemeRatio runs repeated shuffle splits per training ratio.
	SchemeRatio Scheme = "tr"
	// SchemeCV runs a repeated stratified cross validation with parameter search.
	SchemeCV Scheme = "cv"
)

// TopKMode picks how many labels a multi-label prediction keeps per node.
type TopKMode string

const (
	// OracleK keeps as many labels as the ground truth of the test node carries.
	// This leaks the true label count into the prediction and flatters the
	// scores, it is the historical default of embedding benchmarks.
	OracleK TopKMode = "oracle"
	// FixedK keeps a constant number of labels per node.
	FixedK TopKMode = "fixed"
	// Threshold keeps all labels whose score clears the cut.
	Threshold TopKMode = "threshold"
)

// Classifier kinds.
const (
	LogReg    = "logreg"
	LogRegSGD = "logreg-sgd"
	ForestClf = "forest"
)

// Config wires an evaluation run.
type Config struct {
	DataDir    string    `json:"data_dir"`
	OutDir     string    `json:"out_dir"`
	Ratios     []float64 `json:"ratios"`
	MultiLabel bool      `json:"multi_label"`
	Classifier string    `json:"classifier"`
	Mode       TopKMode  `json:"mode"`
	K          int       `json:"k"`
	Cut        float64   `json:"cut"`
	Seed       int64     `json:"seed"`
	Splits     int       `json:"splits"`
	Folds      int       `json:"folds"`
	Repeats    int       `json:"repeats"`
	MaxIter    int       `json:"max_iter"`
	Trees      int       `json:"trees"`
}

func (c Config) withDefaults() Config {
	if len(c.Ratios) == 0 {
		c.Ratios = []float64{0.1, 0.3, 0.5}
	}
	if c.Seed == 0 {
		c.Seed = 2
	}
	if c.Splits <= 0 {
		c.Splits = 10
	}
	if c.Folds <= 1 {
		c.Folds = 5
	}
	if c.Repeats <= 0 {
		c.Repeats = 10
	}
	if c.MaxIter <= 0 {
		c.MaxIter = 100
	}
	if c.Trees <= 0 {
		c.Trees = 100
	}
	if c.Classifier == "" {
		c.Classifier = LogReg
	}
	if c.Mode == "" {
		c.Mode = OracleK
	}
	if c.K <= 0 {
		c.K = 1
	}
	if c.Cut <= 0 {
		c.Cut = 0.5
	}
	return c
}

// classifier builds the factory for the configured classifier kind.
func (c Config) classifier() (func() ml.Classifier, error) {
	switch c.Classifier {
	case LogReg:
		return func() ml.Classifier {
			return ml.NewOneVsRest(ml.QuasiNewton{MaxIter: c.MaxIter})
		}, nil
	case LogRegSGD:
		return func() ml.Classifier {
			return ml.NewOneVsRest(ml.GradientAscent{MaxIter: c.MaxIter * 10})
		}, nil
	case ForestClf:
		return func() ml.Classifier {
			return ml.NewForest(c.Trees)
		}, nil
	}
	return nil, fmt.Errorf("unknown classifier '%s'", c.Classifier)
}

// solver builds the one-vs-rest factory used for multi-label problems,
// which need the per-label marginal scores.
func (c Config) solver() (func() *ml.OneVsRest, error) {
	switch c.Classifier {
	case LogReg:
		return func() *ml.OneVsRest {
			return ml.NewOneVsRest(ml.QuasiNewton{MaxIter: c.MaxIter})
		}, nil
	case LogRegSGD:
		return func() *ml.OneVsRest {
			return ml.NewOneVsRest(ml.GradientAscent{MaxIter: c.MaxIter * 10})
		}, nil
	}
	return nil, fmt.Errorf("multi-label evaluation supports only the one-vs-rest logistic, got '%s'", c.Classifier)
}
