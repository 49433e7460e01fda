package main

import (
	"context"
	"os"

	"healthcorr/adapters/codebook"
	"healthcorr/adapters/excel"
	"healthcorr/adapters/stats/engine"
	"healthcorr/app"
	"healthcorr/internal"
	"healthcorr/internal/dataset"
	"healthcorr/internal/errors"
)

type loadOptions struct {
	codebook string
	sheet    string
	minValid int
	workers  int
	logLevel string
}

func (o *loadOptions) logger() *internal.Logger {
	return internal.NewLoggerTo(os.Stderr, internal.ParseLogLevel(o.logLevel))
}

func (o *loadOptions) engine() *engine.StatsEngine {
	return engine.NewStatsEngine(engine.Options{Workers: o.workers})
}

// load reads file and returns a natural-order session
func (o *loadOptions) load(ctx context.Context, file string) (*app.Session, error) {
	logger := o.logger()

	cb, err := codebook.Load(o.codebook)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load codebook")
	}

	reader := excel.NewDataReader(file, o.sheet, logger)
	svc := app.NewHeatmapService(reader, dataset.NewProcessor(o.minValid, logger), o.engine(), nil, logger)
	return svc.Load(ctx, cb, app.DefaultScheme)
}
