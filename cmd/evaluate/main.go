package main

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/drakos74/free-embed/internal/config"
	"github.com/drakos74/free-embed/internal/eval"
	"github.com/drakos74/free-embed/internal/metrics"
	"github.com/drakos74/free-embed/internal/storage"
	"github.com/drakos74/free-embed/internal/storage/file/json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {

	var (
		configFile = flag.String("config", "", "json config file, flags override its values")
		dataDir    = flag.String("data", "", "dataset directory holding the label file")
		outDir     = flag.String("out", "", "output directory for artifacts and feature files")
		embedding  = flag.String("embedding", "", "embedding file to evaluate")
		ratios     = flag.String("tr", "", "comma separated training ratios")
		scheme     = flag.String("scheme", string(eval.SchemeRatio), "evaluation scheme, tr or cv")
		multiLabel = flag.Bool("multi-label", false, "treat the ground truth as multi-label")
		classifier = flag.String("classifier", eval.LogReg, "classifier kind, logreg, logreg-sgd or forest")
		artifacts  = flag.Bool("artifacts", false, "evaluate the per ratio embedding artifacts instead of a single embedding")
		reference  = flag.Bool("reference", false, "cross check with the independent forest pipeline")
		probs      = flag.Bool("probs", false, "store the full set class probabilities next to the results")
		store      = flag.Bool("store", false, "persist the result table as a json blob")
		serve      = flag.Bool("metrics", false, "expose the prometheus scrape endpoint")
		debug      = flag.Bool("debug", false, "verbose logging")
	)
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := eval.Config{}
	if *configFile != "" {
		config.MustLoad(*configFile, &cfg)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *outDir != "" {
		cfg.OutDir = *outDir
	}
	if *multiLabel {
		cfg.MultiLabel = true
	}
	if *classifier != "" {
		cfg.Classifier = *classifier
	}
	if *ratios != "" {
		cfg.Ratios = parseRatios(*ratios)
	}

	if cfg.DataDir == "" {
		log.Error().Msg("no dataset directory given")
		flag.Usage()
		os.Exit(1)
	}

	if *serve {
		go func() {
			if err := metrics.StartServer(); err != nil {
				log.Error().Err(err).Msg("metrics endpoint failed")
			}
		}()
	}

	evaluator, err := eval.New(cfg)
	if err != nil {
		log.Error().Err(err).Str("data", cfg.DataDir).Msg("could not create evaluator")
		os.Exit(1)
	}
	if *store {
		results, err := json.BlobShard(storage.ResultsDir)(evaluator.Dataset())
		if err != nil {
			log.Error().Err(err).Msg("could not create results store")
			os.Exit(1)
		}
		evaluator.WithStorage(results)
	}

	var table *eval.Table
	if *artifacts {
		table, err = evaluator.EvaluateArtifacts()
	} else {
		if *embedding == "" {
			log.Error().Msg("no embedding file given")
			flag.Usage()
			os.Exit(1)
		}
		table, err = evaluator.Evaluate(eval.FileSource{Path: *embedding}, eval.Scheme(*scheme))
	}
	if err != nil {
		log.Error().Err(err).Msg("evaluation failed")
		os.Exit(1)
	}

	table.Render(os.Stdout)

	if *probs {
		scores, err := evaluator.Probs(eval.FileSource{Path: *embedding})
		if err != nil {
			log.Error().Err(err).Msg("could not compute full set probabilities")
			os.Exit(1)
		}
		blob, err := json.BlobShard(storage.ProbsDir)(evaluator.Dataset())
		if err != nil {
			log.Error().Err(err).Msg("could not create probs store")
			os.Exit(1)
		}
		key := storage.Key{Hash: time.Now().Unix(), Dataset: evaluator.Dataset(), Label: *scheme}
		if err := blob.Store(key, scores.RawMatrix().Data); err != nil {
			log.Error().Err(err).Msg("could not store probabilities")
		}
	}

	if *reference {
		accuracy, err := evaluator.Reference(eval.FileSource{Path: *embedding}, 0.7, *debug)
		if err != nil {
			log.Error().Err(err).Msg("reference check failed")
			os.Exit(1)
		}
		log.Info().Float64("accuracy", accuracy).Msg("reference forest")
	}
}

func parseRatios(raw string) []float64 {
	parts := strings.Split(raw, ",")
	ratios := make([]float64, 0, len(parts))
	for _, part := range parts {
		tr, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || tr <= 0 || tr >= 1 {
			log.Warn().Str("tr", part).Msg("skipping invalid training ratio")
			continue
		}
		ratios = append(ratios, tr)
	}
	return ratios
}
