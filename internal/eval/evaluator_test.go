package eval

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/free-embed/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// testDataDir writes a label file the loader will pick up for the dataset name.
func testDataDir(t *testing.T, name, labels string) string {
	dir := filepath.Join(t.TempDir(), name)
	err := os.MkdirAll(dir, 0700)
	require.NoError(t, err)
	err = ioutil.WriteFile(dataset.LabelPath(dir), []byte(labels), 0644)
	require.NoError(t, err)
	return dir
}

// separable lays out two well separated clusters of ten points each,
// nodes 0..9 around the origin, nodes 10..19 around (5,5).
func separable() (*mat.Dense, string) {
	x := mat.NewDense(20, 2, nil)
	labels := ""
	for i := 0; i < 10; i++ {
		o := float64(i) * 0.05
		x.SetRow(i, []float64{o, 0.5 - o})
		x.SetRow(10+i, []float64{5 + o, 5.5 - o})
	}
	for i := 0; i < 10; i++ {
		labels += fmt.Sprintf("%d 0\n", i)
	}
	for i := 10; i < 20; i++ {
		labels += fmt.Sprintf("%d 1\n", i)
	}
	return x, labels
}

func TestEvaluator_MissingLabels(t *testing.T) {
	_, err := New(Config{DataDir: filepath.Join(t.TempDir(), "nowhere")})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, dataset.DataLoadErr))
}

func TestEvaluator_SeparableScenario(t *testing.T) {

	x, labels := separable()
	dir := testDataDir(t, "blobs", labels)

	evaluator, err := New(Config{DataDir: dir, Ratios: []float64{0.8}})
	require.NoError(t, err)

	table, err := evaluator.Evaluate(MatrixSource{Matrix: x}, SchemeRatio)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	assert.Equal(t, 0.8, row.Group)
	assert.Equal(t, 10, row.Splits)
	assert.Equal(t, 1.0, row.Metrics.Accuracy)
	assert.Equal(t, 1.0, row.Metrics.F1Micro)
	assert.Equal(t, 1.0, row.Metrics.F1Macro)
	// perfectly separated probabilities rank cleanly
	assert.Equal(t, 1.0, row.Metrics.AUC)
}

// four points on the unit square, split half/half: some shuffle splits
// draw a single class for training, the run still produces a full table.
func TestEvaluator_FourPoints(t *testing.T) {

	x := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	dir := testDataDir(t, "square", "0 0\n1 0\n2 1\n3 1\n")

	evaluator, err := New(Config{DataDir: dir, Ratios: []float64{0.5}})
	require.NoError(t, err)

	table, err := evaluator.Evaluate(MatrixSource{Matrix: x}, SchemeRatio)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	assert.Equal(t, 0.5, row.Group)
	assert.Equal(t, 10, row.Splits)
	assert.True(t, row.Metrics.Accuracy >= 0 && row.Metrics.Accuracy <= 1)
	assert.True(t, row.Metrics.F1Micro >= 0 && row.Metrics.F1Micro <= 1)
	assert.True(t, row.Metrics.F1Macro >= 0 && row.Metrics.F1Macro <= 1)
	assert.True(t, row.Metrics.AUC >= 0 && row.Metrics.AUC <= 1)

	// the same seed reproduces the same table
	again, err := evaluator.Evaluate(MatrixSource{Matrix: x}, SchemeRatio)
	require.NoError(t, err)
	assert.Equal(t, row.Metrics, again.Rows[0].Metrics)
}

func TestEvaluator_SingleClassLabels(t *testing.T) {

	dir := testDataDir(t, "flat", "0 0\n1 0\n2 0\n3 0\n")

	_, err := New(Config{DataDir: dir})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, dataset.DataLoadErr))
}

func TestEvaluator_Reproducible(t *testing.T) {

	x, labels := separable()
	dir := testDataDir(t, "blobs", labels)

	evaluator, err := New(Config{DataDir: dir})
	require.NoError(t, err)

	first, err := evaluator.EvaluateRatio(MatrixSource{Matrix: x}, 0.5)
	require.NoError(t, err)
	second, err := evaluator.EvaluateRatio(MatrixSource{Matrix: x}, 0.5)
	require.NoError(t, err)

	assert.Len(t, first, 10)
	assert.Equal(t, first, second)
	for _, m := range first {
		assert.True(t, m.Accuracy >= 0 && m.Accuracy <= 1)
		assert.True(t, m.F1Micro >= 0 && m.F1Micro <= 1)
		assert.True(t, m.F1Macro >= 0 && m.F1Macro <= 1)
	}
}

// repeated calls must start from a clean slate, no rows leak across calls.
func TestEvaluator_IndependentCalls(t *testing.T) {

	x, labels := separable()
	dir := testDataDir(t, "blobs", labels)

	evaluator, err := New(Config{DataDir: dir, Ratios: []float64{0.5, 0.8}})
	require.NoError(t, err)

	first, err := evaluator.Evaluate(MatrixSource{Matrix: x}, SchemeRatio)
	require.NoError(t, err)
	second, err := evaluator.Evaluate(MatrixSource{Matrix: x}, SchemeRatio)
	require.NoError(t, err)

	require.Len(t, first.Rows, 2)
	require.Len(t, second.Rows, 2)
	for i, row := range first.Rows {
		assert.Equal(t, 10, row.Splits)
		assert.Equal(t, 10, second.Rows[i].Splits)
		assert.Equal(t, row.Metrics, second.Rows[i].Metrics)
	}
}

func TestEvaluator_AUCZeroForMultiClass(t *testing.T) {

	// three clusters, nodes 0..5 / 6..11 / 12..17
	x := mat.NewDense(18, 2, nil)
	labels := ""
	centers := [][2]float64{{0, 0}, {5, 5}, {10, 0}}
	for c, center := range centers {
		for i := 0; i < 6; i++ {
			row := c*6 + i
			x.SetRow(row, []float64{center[0] + float64(i)*0.1, center[1] - float64(i)*0.1})
			labels += fmt.Sprintf("%d %d\n", row, c)
		}
	}
	dir := testDataDir(t, "triple", labels)

	evaluator, err := New(Config{DataDir: dir, Ratios: []float64{0.7}})
	require.NoError(t, err)

	table, err := evaluator.Evaluate(MatrixSource{Matrix: x}, SchemeRatio)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, 0.0, table.Rows[0].Metrics.AUC)
	assert.True(t, table.Rows[0].Metrics.Accuracy > 0)
}

func TestEvaluator_UnsupportedScheme(t *testing.T) {

	x, labels := separable()
	dir := testDataDir(t, "blobs", labels)

	evaluator, err := New(Config{DataDir: dir})
	require.NoError(t, err)

	_, err = evaluator.Evaluate(MatrixSource{Matrix: x}, Scheme("bootstrap"))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, SchemeErr))
}

func TestEvaluator_IndexOutsideEmbedding(t *testing.T) {

	_, labels := separable()
	dir := testDataDir(t, "blobs", labels)

	evaluator, err := New(Config{DataDir: dir})
	require.NoError(t, err)

	// embedding has fewer rows than the highest labelled node id
	x := mat.NewDense(10, 2, nil)
	_, err = evaluator.Evaluate(MatrixSource{Matrix: x}, SchemeRatio)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, IndexErr))
}

func TestEvaluator_LabelIndexRestriction(t *testing.T) {

	// only the even nodes carry labels, the embedding holds all twenty
	x, _ := separable()
	labels := ""
	for i := 0; i < 20; i += 2 {
		class := "0"
		if i >= 10 {
			class = "1"
		}
		labels += fmt.Sprintf("%d %s\n", i, class)
	}
	dir := testDataDir(t, "partial", labels)

	evaluator, err := New(Config{DataDir: dir, Ratios: []float64{0.5}})
	require.NoError(t, err)

	table, err := evaluator.Evaluate(MatrixSource{Matrix: x}, SchemeRatio)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, 1.0, table.Rows[0].Metrics.Accuracy)
}

func TestEvaluator_CrossValidation(t *testing.T) {

	x, labels := separable()
	dir := testDataDir(t, "blobs", labels)

	evaluator, err := New(Config{
		DataDir: dir,
		Folds:   2,
		Repeats: 2,
		MaxIter: 20,
	})
	require.NoError(t, err)

	table, err := evaluator.Evaluate(MatrixSource{Matrix: x}, SchemeCV)
	require.NoError(t, err)

	// one row per repetition, two folds each
	require.Len(t, table.Rows, 2)
	for rep, row := range table.Rows {
		assert.Equal(t, float64(rep), row.Group)
		assert.Equal(t, 2, row.Splits)
		assert.True(t, row.Metrics.Accuracy >= 0 && row.Metrics.Accuracy <= 1)
	}
}

func TestEvaluator_CrossValidationRejectsMultiLabel(t *testing.T) {

	dir := testDataDir(t, "multi", "0 0,1\n1 1\n2 0\n3 0,1\n4 1\n5 0\n")

	evaluator, err := New(Config{DataDir: dir, MultiLabel: true})
	require.NoError(t, err)

	x := mat.NewDense(6, 2, []float64{0, 0, 1, 1, 0, 1, 1, 0, 0.5, 0.5, 0.2, 0.8})
	_, err = evaluator.Evaluate(MatrixSource{Matrix: x}, SchemeCV)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, SchemeErr))
}

func TestEvaluator_MultiLabelOracle(t *testing.T) {

	// nodes carry one or two of the labels {0,1}, clusters match label 0
	labels := ""
	x := mat.NewDense(12, 2, nil)
	for i := 0; i < 6; i++ {
		x.SetRow(i, []float64{float64(i) * 0.1, 0})
		labels += fmt.Sprintf("%d 0\n", i)
	}
	for i := 6; i < 12; i++ {
		x.SetRow(i, []float64{5 + float64(i)*0.1, 5})
		labels += fmt.Sprintf("%d 0,1\n", i)
	}
	dir := testDataDir(t, "multi", labels)

	evaluator, err := New(Config{DataDir: dir, Ratios: []float64{0.5}, MultiLabel: true})
	require.NoError(t, err)

	table, err := evaluator.Evaluate(MatrixSource{Matrix: x}, SchemeRatio)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	m := table.Rows[0].Metrics
	assert.True(t, m.Accuracy >= 0 && m.Accuracy <= 1)
	assert.True(t, m.F1Micro >= 0 && m.F1Micro <= 1)
	assert.True(t, m.F1Macro >= 0 && m.F1Macro <= 1)
}

func TestEvaluator_Probs(t *testing.T) {

	x, labels := separable()
	dir := testDataDir(t, "blobs", labels)

	evaluator, err := New(Config{DataDir: dir})
	require.NoError(t, err)

	probs, err := evaluator.Probs(MatrixSource{Matrix: x})
	require.NoError(t, err)

	n, k := probs.Dims()
	assert.Equal(t, 20, n)
	assert.Equal(t, 2, k)
	for i := 0; i < n; i++ {
		assert.InDelta(t, 1.0, probs.At(i, 0)+probs.At(i, 1), 1e-9)
	}
}

// multi-label probabilities stay raw marginals, the rows are not
// normalised the way the single label surface is.
func TestEvaluator_ProbsMultiLabel(t *testing.T) {

	labels := ""
	x := mat.NewDense(12, 2, nil)
	for i := 0; i < 6; i++ {
		x.SetRow(i, []float64{float64(i) * 0.1, 0})
		labels += fmt.Sprintf("%d 0\n", i)
	}
	for i := 6; i < 12; i++ {
		x.SetRow(i, []float64{5 + float64(i)*0.1, 5})
		labels += fmt.Sprintf("%d 0,1\n", i)
	}
	dir := testDataDir(t, "multi", labels)

	evaluator, err := New(Config{DataDir: dir, MultiLabel: true})
	require.NoError(t, err)

	probs, err := evaluator.Probs(MatrixSource{Matrix: x})
	require.NoError(t, err)

	n, k := probs.Dims()
	assert.Equal(t, 12, n)
	assert.Equal(t, 2, k)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			p := probs.At(i, j)
			assert.True(t, p >= 0 && p <= 1, "row %d col %d got %f", i, j, p)
		}
	}
	// every node carries label 0, its marginal saturates while the
	// second column still scores on its own, the row exceeds one
	assert.Equal(t, 1.0, probs.At(11, 0))
	assert.True(t, probs.At(11, 0)+probs.At(11, 1) > 1)
}

func TestEvaluator_ArtifactsMissing(t *testing.T) {

	_, labels := separable()
	dir := testDataDir(t, "blobs", labels)

	evaluator, err := New(Config{DataDir: dir, OutDir: t.TempDir(), Ratios: []float64{0.5}})
	require.NoError(t, err)

	_, err = evaluator.EvaluateArtifacts()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, dataset.DataLoadErr))
}
