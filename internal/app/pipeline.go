package app

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ayusman/videostrip/internal/config"
	"github.com/ayusman/videostrip/internal/features"
	"github.com/ayusman/videostrip/internal/overlap"
	"github.com/ayusman/videostrip/internal/report"
	"github.com/ayusman/videostrip/internal/sharpness"
	"github.com/ayusman/videostrip/internal/sink"
	"github.com/ayusman/videostrip/internal/store"
)

// pipeline holds the per-run components built from the configuration.
type pipeline struct {
	extractor features.Extractor
	estimator *overlap.Estimator
	scorer    sharpness.Scorer
	sink      *sink.FileSink
	tsv       *report.TSVWriter
	catalog   *store.Store
	recorder  *store.Recorder
}

func buildPipeline(cfg *config.Config, log *zap.SugaredLogger) (*pipeline, error) {
	p := &pipeline{}

	ext, err := features.New(cfg.Extractor, features.Config{
		MaxFeatures: cfg.Features,
		Workers:     cfg.Workers,
	})
	if err != nil {
		return nil, err
	}
	p.extractor = ext
	p.estimator = overlap.NewEstimator(ext, log)

	if p.scorer, err = sharpness.New(cfg.Scorer, cfg.Workers); err != nil {
		return nil, errors.CombineErrors(err, p.close())
	}

	if p.sink, err = sink.NewFileSink(cfg.OutputPrefix, cfg.Format, cfg.Quality); err != nil {
		return nil, errors.CombineErrors(err, p.close())
	}

	if path := cfg.ReportPath(); path != "" {
		if p.tsv, err = report.CreateTSV(path); err != nil {
			return nil, errors.CombineErrors(err, p.close())
		}
		log.Debugw("Writing report", "path", path)
	}

	log.Debugw("Pipeline ready",
		"extractor", ext.Name(),
		"scorer", p.scorer.Name(),
		"format", p.sink.Format,
		"workers", cfg.Workers)
	return p, nil
}

// report returns the writer every committed FrameRecord goes to.
func (p *pipeline) report() report.Writer {
	var ws []report.Writer
	if p.tsv != nil {
		ws = append(ws, p.tsv)
	}
	if p.recorder != nil {
		ws = append(ws, p.recorder)
	}
	return report.Multi(ws...)
}

// close flushes the report and releases every component.
func (p *pipeline) close() error {
	var err error
	if p.tsv != nil {
		err = errors.CombineErrors(err, p.tsv.Close())
	}
	if p.estimator != nil {
		err = errors.CombineErrors(err, p.estimator.Close())
	}
	if p.extractor != nil {
		err = errors.CombineErrors(err, p.extractor.Close())
	}
	if p.catalog != nil {
		err = errors.CombineErrors(err, p.catalog.Close())
	}
	return err
}
