package ml

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/ensemble"
	"github.com/sjwhitworth/golearn/evaluation"
	"github.com/sjwhitworth/golearn/filters"
)

const referenceTrees = 100

// PreProcessAttributes discretises the float attributes with Chi-Merge.
func PreProcessAttributes(inst *base.DenseInstances) (*base.LazilyFilteredInstances, error) {
	filt := filters.NewChiMergeFilter(inst, 0.999)
	for _, a := range base.NonClassFloatAttributes(inst) {
		filt.AddAttribute(a)
	}
	err := filt.Train()
	if err != nil {
		return nil, err
	}
	return base.NewLazilyFilteredInstances(inst, filt), nil
}

// ReferenceForest runs an independent random forest pipeline on a csv feature
// file and returns its test accuracy. It cross checks the in-process
// classifiers with an implementation that shares none of their code.
func ReferenceForest(fileName string, ratio float64, debug bool) (float64, error) {

	rand.Seed(74153629)

	inst, err := base.ParseCSVToInstances(fileName, false)
	if err != nil {
		return 0.0, fmt.Errorf("could not parse feature file '%s': %w", fileName, err)
	}

	filtered, err := PreProcessAttributes(inst)
	if err != nil {
		return 0.0, fmt.Errorf("could not discretise attributes: %w", err)
	}

	features := len(base.NonClassFloatAttributes(inst))
	if features > 3 {
		features = 3
	}

	trainData, testData := base.InstancesTrainTestSplit(filtered, ratio)

	forest := ensemble.NewRandomForest(referenceTrees, features)
	err = forest.Fit(trainData)
	if err != nil {
		return 0.0, fmt.Errorf("could not fit reference forest: %w", err)
	}
	predictions, err := forest.Predict(testData)
	if err != nil {
		return 0.0, fmt.Errorf("could not predict with reference forest: %w", err)
	}

	cf, err := evaluation.GetConfusionMatrix(testData, predictions)
	if err != nil {
		return 0.0, fmt.Errorf("could not compute confusion matrix: %w", err)
	}

	if debug {
		log.Info().Str("summary", evaluation.GetSummary(cf)).Msg("reference forest performance")
	}

	return evaluation.GetAccuracy(cf), nil
}
