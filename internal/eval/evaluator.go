package eval

import (
	"errors"
	"fmt"
	"time"

	"github.com/drakos74/free-embed/internal/dataset"
	"github.com/drakos74/free-embed/internal/metrics"
	"github.com/drakos74/free-embed/internal/ml"
	"github.com/drakos74/free-embed/internal/storage"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

var (
	SchemeErr = errors.New("unsupported evaluation scheme")
	IndexErr  = errors.New("label index outside embedding")
)

// Evaluator scores embeddings by their downstream node classification power.
// Construction loads the ground truth eagerly, so a broken dataset
// surfaces before any model gets trained.
type Evaluator struct {
	cfg       Config
	dataset   string
	labels    dataset.Labels
	indicator *mat.Dense
	predictor predictor
	store     storage.Persistence
}

// New creates an evaluator for the dataset in cfg.DataDir.
func New(cfg Config) (*Evaluator, error) {
	cfg = cfg.withDefaults()
	name := dataset.Name(cfg.DataDir)

	e := &Evaluator{
		cfg:     cfg,
		dataset: name,
		store:   storage.NewVoidStorage(),
	}

	if cfg.MultiLabel {
		labels, err := dataset.LoadMultiLabels(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		if labels.Size() == 0 {
			return nil, fmt.Errorf("no labels in '%s': %w", cfg.DataDir, dataset.DataLoadErr)
		}
		factory, err := cfg.solver()
		if err != nil {
			return nil, err
		}
		e.labels = labels
		e.indicator = ml.Binarize(labels.Sets, 0)
		e.predictor = &multiLabel{
			y:       e.indicator,
			classes: labels.Classes,
			mode:    cfg.Mode,
			k:       cfg.K,
			cut:     cfg.Cut,
			factory: factory,
		}
	} else {
		labels, err := dataset.LoadLabels(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		if labels.Size() == 0 {
			return nil, fmt.Errorf("no labels in '%s': %w", cfg.DataDir, dataset.DataLoadErr)
		}
		factory, err := cfg.classifier()
		if err != nil {
			return nil, err
		}
		e.labels = labels
		e.predictor = newSingleLabel(labels.Single, labels.Classes, factory)
	}

	if e.labels.Classes < 2 {
		return nil, fmt.Errorf("need at least two classes in '%s', got %d: %w",
			cfg.DataDir, e.labels.Classes, dataset.DataLoadErr)
	}

	log.Info().
		Str("dataset", name).
		Int("nodes", e.labels.Size()).
		Int("classes", e.labels.Classes).
		Bool("multi-label", cfg.MultiLabel).
		Msg("evaluator ready")

	return e, nil
}

// WithStorage persists every result table with the given storage.
func (e *Evaluator) WithStorage(store storage.Persistence) *Evaluator {
	e.store = store
	return e
}

// Dataset returns the dataset name the evaluator was built for.
func (e *Evaluator) Dataset() string {
	return e.dataset
}

// Evaluate loads the embedding from the source once and scores it
// with the given scheme. Every call starts from a clean slate.
func (e *Evaluator) Evaluate(src Source, scheme Scheme) (*Table, error) {
	if scheme == "" {
		scheme = SchemeRatio
	}

	x, err := src.Embedding()
	if err != nil {
		return nil, fmt.Errorf("could not resolve embedding: %w", err)
	}
	labelled, err := e.labelled(x)
	if err != nil {
		return nil, err
	}

	c := newCollector()
	switch scheme {
	case SchemeRatio:
		for _, tr := range e.cfg.Ratios {
			log.Debug().Float64("tr", tr).Msg("evaluating ratio")
			if err := e.evaluateRatio(labelled, tr, c); err != nil {
				return nil, err
			}
		}
	case SchemeCV:
		if err := e.evaluateCV(labelled, c); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("'%s': %w", scheme, SchemeErr)
	}

	return e.finish(c, scheme), nil
}

// EvaluateArtifacts scores the per ratio embedding artifacts from the
// output directory, loading one embedding per training ratio.
func (e *Evaluator) EvaluateArtifacts() (*Table, error) {
	c := newCollector()
	for _, tr := range e.cfg.Ratios {
		path := dataset.ArtifactPath(e.cfg.DataDir, e.cfg.OutDir, tr)
		x, err := dataset.Embedding(path)
		if err != nil {
			return nil, fmt.Errorf("could not load artifact for tr=%g: %w", tr, err)
		}
		labelled, err := e.labelled(x)
		if err != nil {
			return nil, err
		}
		log.Debug().Float64("tr", tr).Str("path", path).Msg("evaluating artifact")
		if err := e.evaluateRatio(labelled, tr, c); err != nil {
			return nil, err
		}
	}
	return e.finish(c, SchemeRatio), nil
}

// EvaluateRatio runs the shuffle splits for a single training ratio
// and returns the per split metric rows.
func (e *Evaluator) EvaluateRatio(src Source, tr float64) ([]Metrics, error) {
	x, err := src.Embedding()
	if err != nil {
		return nil, fmt.Errorf("could not resolve embedding: %w", err)
	}
	labelled, err := e.labelled(x)
	if err != nil {
		return nil, err
	}
	c := newCollector()
	if err := e.evaluateRatio(labelled, tr, c); err != nil {
		return nil, err
	}
	return c.rows[tr], nil
}

func (e *Evaluator) evaluateRatio(x *mat.Dense, tr float64, c *collector) error {
	ss := ml.ShuffleSplit{
		Splits: e.cfg.Splits,
		Train:  tr,
		Seed:   e.cfg.Seed,
	}
	folds, err := ss.Split(e.predictor.size())
	if err != nil {
		return fmt.Errorf("could not split for tr=%g: %w", tr, err)
	}

	for _, fold := range folds {
		m, err := e.predictor.evaluate(x, fold)
		if err != nil {
			return fmt.Errorf("evaluation failed for tr=%g: %w", tr, err)
		}
		metrics.Observer.IncrementSplits(e.dataset, string(SchemeRatio))
		metrics.Observer.IncrementFits(e.cfg.Classifier)
		c.add(tr, m)
	}
	return nil
}

// evaluateCV runs the repeated stratified cross validation with a nested
// parameter search. The parameter search sees only the outer training fold.
func (e *Evaluator) evaluateCV(x *mat.Dense, c *collector) error {
	if e.cfg.MultiLabel {
		return fmt.Errorf("cross validation supports only single label data: %w", SchemeErr)
	}

	p, ok := e.predictor.(*singleLabel)
	if !ok {
		return fmt.Errorf("cross validation supports only single label data: %w", SchemeErr)
	}
	y := p.y

	for rep := 0; rep < e.cfg.Repeats; rep++ {
		// derive disjoint fold seeds per repetition
		base := e.cfg.Seed + int64(2*rep)
		outer := ml.StratifiedKFold{Folds: e.cfg.Folds, Seed: base}
		inner := ml.StratifiedKFold{Folds: e.cfg.Folds, Seed: base + 1}

		folds, err := outer.Split(y)
		if err != nil {
			return fmt.Errorf("could not split repetition %d: %w", rep, err)
		}

		for _, fold := range folds {
			gs := ml.GridSearch{
				Grid:    ml.DefaultGrid(),
				Inner:   inner,
				MaxIter: e.cfg.MaxIter,
			}
			xtr := ml.Rows(x, fold.Train)
			ytr := ml.Select(y, fold.Train)
			model, params, err := gs.Fit(xtr, ytr)
			if err != nil {
				return fmt.Errorf("parameter search failed in repetition %d: %w", rep, err)
			}
			log.Debug().
				Int("rep", rep).
				Float64("c", params.C).
				Float64("tol", params.Tol).
				Msg("selected parameters")

			xte := ml.Rows(x, fold.Test)
			yte := ml.Select(y, fold.Test)
			pred, err := model.Predict(xte)
			if err != nil {
				return fmt.Errorf("prediction failed in repetition %d: %w", rep, err)
			}
			probs, err := model.Probs(xte)
			if err != nil {
				return fmt.Errorf("probabilities failed in repetition %d: %w", rep, err)
			}

			metrics.Observer.IncrementSplits(e.dataset, string(SchemeCV))
			metrics.Observer.IncrementFits(LogReg)
			c.add(float64(rep), scoreSingle(yte, pred, probs, p.classes, p.positive))
		}
	}
	return nil
}

// Probs fits the classifier on the full labelled set and returns the
// per class probabilities for that same set. Single label rows are
// normalised to sum to one; multi-label rows keep the raw per label
// marginals, one independent model per column, so they need not sum
// to one.
func (e *Evaluator) Probs(src Source) (*mat.Dense, error) {
	x, err := src.Embedding()
	if err != nil {
		return nil, fmt.Errorf("could not resolve embedding: %w", err)
	}
	labelled, err := e.labelled(x)
	if err != nil {
		return nil, err
	}

	var probs *mat.Dense
	if e.cfg.MultiLabel {
		clf := ml.NewOneVsRest(ml.QuasiNewton{MaxIter: e.cfg.MaxIter})
		if err := clf.FitIndicator(labelled, e.indicator); err != nil {
			return nil, fmt.Errorf("could not fit on full set: %w", err)
		}
		probs, err = clf.Scores(labelled)
		if err != nil {
			return nil, err
		}
		if e.labels.Classes == 2 {
			auc := ml.AUC(indicatorCol(e.indicator, 1), ml.Col(probs, 1), 1)
			log.Debug().Float64("roc", auc).Msg("full set roc")
		}
	} else {
		clf := ml.NewOneVsRest(ml.QuasiNewton{MaxIter: e.cfg.MaxIter})
		if err := clf.Fit(labelled, e.labels.Single); err != nil {
			return nil, fmt.Errorf("could not fit on full set: %w", err)
		}
		probs, err = clf.Probs(labelled)
		if err != nil {
			return nil, err
		}
		if e.labels.Classes == 2 {
			p := e.predictor.(*singleLabel)
			auc := ml.AUC(e.labels.Single, ml.Col(probs, 1), p.positive)
			log.Debug().Float64("roc", auc).Msg("full set roc")
		}
	}

	return probs, nil
}

// Reference cross checks the labelled embedding rows with the
// independent forest pipeline and returns its accuracy.
func (e *Evaluator) Reference(src Source, tr float64, debug bool) (float64, error) {
	if e.cfg.MultiLabel {
		return 0, fmt.Errorf("reference check supports only single label data: %w", SchemeErr)
	}

	x, err := src.Embedding()
	if err != nil {
		return 0, fmt.Errorf("could not resolve embedding: %w", err)
	}
	labelled, err := e.labelled(x)
	if err != nil {
		return 0, err
	}

	fn, err := dataset.WriteFeatureFile(e.cfg.OutDir, fmt.Sprintf("%s_features", e.dataset), labelled, e.labels.Single)
	if err != nil {
		return 0, fmt.Errorf("could not write feature file: %w", err)
	}
	return ml.ReferenceForest(fn, tr, debug)
}

// labelled restricts the embedding to the rows carrying labels.
func (e *Evaluator) labelled(x *mat.Dense) (*mat.Dense, error) {
	n, _ := x.Dims()
	for _, id := range e.labels.Index {
		if id < 0 || id >= n {
			return nil, fmt.Errorf("label index %d for embedding with %d rows: %w", id, n, IndexErr)
		}
	}
	return ml.Rows(x, e.labels.Index), nil
}

func (e *Evaluator) finish(c *collector, scheme Scheme) *Table {
	table := c.table(e.dataset, scheme)
	metrics.Observer.IncrementEvaluations(e.dataset, string(scheme))

	key := storage.Key{
		Hash:    time.Now().Unix(),
		Dataset: e.dataset,
		Label:   string(scheme),
	}
	if err := e.store.Store(key, table); err != nil {
		log.Warn().Err(err).Str("dataset", e.dataset).Msg("could not persist results")
	}

	return table
}
